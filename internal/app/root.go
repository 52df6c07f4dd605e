package app

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/config"
	"github.com/blackwell-systems/bookpipe/internal/library"
	"github.com/blackwell-systems/bookpipe/internal/logctx"
	"github.com/blackwell-systems/bookpipe/internal/tui"
	"github.com/blackwell-systems/bookpipe/internal/util"
)

var (
	cfg    *config.Config
	logger *zap.Logger
	store  *catalog.Store
	lib    *library.Manager

	flagNoColor       bool
	flagNoInteractive bool
	flagConfig        string
	flagLogLevel      string
)

var rootCmd = &cobra.Command{
	Use:   "bookpipe",
	Short: "Search, download, upload and catalog books",
	Long: `bookpipe automates a personal book library.

It searches Z-Library, tracks every result in a metadata file, downloads
books and covers, uploads them to cloud storage, and renders a static HTML
catalog. The same operations are available from a web dashboard.

Run 'bookpipe' with no arguments to launch the interactive menu.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		if tui.ShouldUseTUI(cmd) {
			return runHub(cmd)
		}
		return cmd.Help()
	},
}

// Execute is the entry point called from main.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("error:"), err)
		os.Exit(1)
	}
}

// commandsWithoutConfig run even when the config cannot be loaded.
var commandsWithoutConfig = map[string]bool{
	"init":          true,
	"version":       true,
	"completion":    true,
	"validate-name": true,
	"help":          true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().BoolVar(&flagNoInteractive, "no-interactive", false, "Disable interactive TUI mode")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file path (default: ~/.config/bookpipe/config.yml)")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error (overrides log.level)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		util.InitColor(flagNoColor)

		var err error
		cfg, err = config.Load(flagConfig)
		if err != nil {
			if !commandsWithoutConfig[cmd.Name()] {
				return fmt.Errorf("loading config: %w", err)
			}
			cfg = config.Defaults()
		}
		return setup(cfg)
	}

	rootCmd.PersistentPostRun = func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	}

	rootCmd.AddCommand(
		newInitCmd(),
		newSearchCmd(),
		newDownloadCmd(),
		newUploadCmd(),
		newIndexCmd(),
		newStatusCmd(),
		newBooksCmd(),
		newRunCmd(),
		newResetCmd(),
		newRemoveCmd(),
		newServeCmd(),
		newValidateNameCmd(),
		newVersionCmd(),
		newCompletionCmd(),
	)
}

// setup builds the logger, store and library from c.
func setup(c *config.Config) error {
	lc := logctx.Config{
		Level:      c.Log.Level,
		Format:     c.Log.Format,
		File:       c.Log.File,
		MaxSizeMB:  c.Log.MaxSizeMB,
		MaxBackups: c.Log.MaxBackups,
		MaxAgeDays: c.Log.MaxAgeDays,
	}
	if flagLogLevel != "" {
		lc.Level = flagLogLevel
	}
	l, err := logctx.New(lc)
	if err != nil {
		return fmt.Errorf("creating logger: %w", err)
	}

	cfg = c
	logger = l
	store = catalog.NewStore(c.Store.Path, logger.Named("store"))
	lib = library.New(c.Library.Dir)
	return nil
}

// ok prints a green success line.
func ok(format string, a ...interface{}) {
	fmt.Println(color.GreenString("✓"), fmt.Sprintf(format, a...))
}

// warn prints a yellow warning line.
func warn(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.YellowString("!"), fmt.Sprintf(format, a...))
}

// failed prints a red failure line without exiting.
func failed(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, color.RedString("✗"), fmt.Sprintf(format, a...))
}

// header prints a cyan section heading.
func header(format string, a ...interface{}) {
	fmt.Println(color.CyanString(fmt.Sprintf(format, a...)))
}
