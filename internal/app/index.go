package app

import (
	"fmt"
	"os/exec"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/cloud"
)

func newIndexCmd() *cobra.Command {
	var (
		flagOpen    bool
		flagStats   bool
		flagPublish bool
		flagOutput  string
	)

	cmd := &cobra.Command{
		Use:   "index",
		Short: "Generate the static HTML catalog",
		Long: `Generate a self-contained HTML page listing every tracked book with
covers, links and in-page filtering by text, status, language and format.
Open it in any web browser; no server is needed.

Examples:
  bookpipe index
  bookpipe index --stats --open
  bookpipe index --publish        Also upload the page to cloud storage`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			pages := newPages(flagStats)
			if flagOutput != "" {
				pages.Output = flagOutput
			}

			path, err := pages.Generate()
			if err != nil {
				return err
			}
			stats := store.ComputeStatistics()
			ok("Generated catalog with %d books: %s", stats.TotalCount, path)
			if pages.StatsOutput != "" {
				ok("Generated statistics page: %s", pages.StatsOutput)
			}

			if flagPublish {
				st, err := cloudStorage()
				if err != nil {
					return err
				}
				if st == nil {
					return fmt.Errorf("--publish needs a cloud backend (set cloud.backend)")
				}
				pub, isPub := st.(cloud.Publisher)
				if !isPub {
					return fmt.Errorf("cloud backend %q cannot publish pages", cfg.Cloud.Backend)
				}
				ctx, cancel := commandContext(cmd)
				defer cancel()
				link, err := pages.Publish(ctx, pub)
				if err != nil {
					return fmt.Errorf("publishing catalog: %w", err)
				}
				ok("Published: %s", link)
			}

			abs, _ := filepath.Abs(path)
			if flagOpen {
				err := openFile(abs)
				if err == nil {
					return nil
				}
				warn("Could not open browser: %v", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "\nOpen in browser:\n  file://%s\n", abs)
			return nil
		},
	}

	cmd.Flags().BoolVar(&flagOpen, "open", false, "Open the generated catalog in the default browser")
	cmd.Flags().BoolVar(&flagStats, "stats", false, "Also write the statistics page (catalog.stats_output)")
	cmd.Flags().BoolVar(&flagPublish, "publish", false, "Upload the catalog page to the cloud backend")
	cmd.Flags().StringVarP(&flagOutput, "output", "o", "", "Catalog path (default: catalog.output)")
	return cmd
}

// openCommand is the platform's "open with default handler" command line.
func openCommand(path string) []string {
	switch runtime.GOOS {
	case "darwin":
		return []string{"open", path}
	case "windows":
		return []string{"cmd", "/c", "start", "", path}
	default:
		return []string{"xdg-open", path}
	}
}

// openFile hands path to the desktop without waiting for the viewer.
func openFile(path string) error {
	argv := openCommand(path)
	if err := exec.Command(argv[0], argv[1:]...).Start(); err != nil {
		return fmt.Errorf("opening %s with %s: %w", path, argv[0], err)
	}
	return nil
}
