package app

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/web"
	"github.com/blackwell-systems/bookpipe/internal/zlib"
)

func newServeCmd() *cobra.Command {
	var (
		host string
		port int
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the web dashboard",
		Long: `Start the web dashboard.

The dashboard offers search, download, upload and catalog generation
forms, a filterable book table, and JSON endpoints under /api. It keeps
running when the Z-Library login or cloud setup fails; the affected
actions are disabled and reported in /api/status.

Examples:
  bookpipe serve
  bookpipe serve --host 0.0.0.0 --port 8080`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if cmd.Flags().Changed("host") {
				cfg.Serve.Host = host
			}
			if cmd.Flags().Changed("port") {
				cfg.Serve.Port = port
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, cancel := commandContext(cmd)
			defer cancel()

			var initial web.Status
			zl := zlib.New(cfg.Zlib.BaseURL, cfg.Zlib.Timeout)
			if err := cfg.RequireZlib(); err != nil {
				warn("Z-Library disabled: %v", err)
			} else if err := zl.Login(ctx, cfg.Zlib.Email, cfg.Zlib.Password); err != nil {
				warn("Z-Library login failed: %v", err)
			} else {
				initial.ZlibAuthenticated = true
			}

			deps := web.Deps{
				Store:       store,
				Searcher:    zl,
				Downloader:  newDownloader(zl),
				Pages:       newPages(true),
				SearchCount: cfg.Search.EffectiveCount(0),
				Logger:      logger.Named("web"),
			}
			st, err := cloudStorage()
			if err != nil {
				warn("Cloud storage disabled: %v", err)
			}
			if st != nil {
				deps.Uploader = newUploader(st)
				initial.CloudBackend = cfg.Cloud.Backend
			}
			if err := lib.EnsureDir(); err != nil {
				return fmt.Errorf("creating library dir: %w", err)
			}

			addr := cfg.Serve.Addr()
			logger.Info("starting dashboard", zap.String("addr", addr))
			ok("Dashboard at http://%s (Ctrl+C to stop)", addr)
			return web.New(deps, initial).ListenAndServe(ctx, addr)
		},
	}

	cmd.Flags().StringVar(&host, "host", "", "Listen host (default: serve.host)")
	cmd.Flags().IntVarP(&port, "port", "p", 0, "Listen port (default: serve.port)")
	return cmd
}
