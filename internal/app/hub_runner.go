package app

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/catalog"
	"github.com/blackwell-systems/bookpipe/internal/pipeline"
	"github.com/blackwell-systems/bookpipe/internal/tui"
)

func buildHubContext() tui.HubContext {
	records := store.GetAll()
	pending := 0
	for _, r := range records {
		if r.Status == catalog.StatusPending {
			pending++
		}
	}
	return tui.HubContext{
		BookCount:       len(records),
		PendingCount:    pending,
		UploadableCount: len(pipeline.UploadCandidates(records)),
		CloudEnabled:    cfg.CloudEnabled(),
		ZlibConfigured:  cfg.RequireZlib() == nil,
	}
}

// runHub shows the menu, runs the chosen command, and returns to the menu
// until the user quits.
func runHub(root *cobra.Command) error {
	if cfg.RequireZlib() != nil && len(store.GetAll()) == 0 {
		fmt.Println()
		fmt.Println(color.YellowString("Z-Library is not configured yet."))
		fmt.Println()
		fmt.Println("Run this to get started:")
		fmt.Printf("  %s\n", color.CyanString("bookpipe init --email you@example.com"))
		fmt.Printf("  %s\n", color.CyanString("export ZLIBRARY_PASSWORD=..."))
		fmt.Println()
	}

	for {
		action, err := tui.RunHub(buildHubContext())
		if err != nil {
			return err
		}
		if action == "" || action == "quit" {
			return nil
		}

		cmd, cancelled, err := hubCommand(action)
		if err != nil {
			return err
		}
		if cancelled {
			continue
		}
		if cmd == nil {
			warn("Unknown action: %s", action)
			continue
		}
		cmd.SetContext(root.Context())

		if err := cmd.Execute(); err != nil {
			if errors.Is(err, tui.ErrCancelled) {
				continue
			}
			warn("Command failed: %v", err)
		}

		fmt.Println("\nPress Enter to return to menu...")
		fmt.Scanln() //nolint:errcheck
	}
}

// hubCommand maps a menu key to a ready-to-run command. cancelled is true
// when a prompt was dismissed.
func hubCommand(action string) (cmd *cobra.Command, cancelled bool, err error) {
	// Explicit args keep cobra from reparsing os.Args.
	args := []string{}
	switch action {
	case "search", "run":
		title := "Search Z-Library"
		if action == "run" {
			title = "Run full pipeline"
		}
		form, err := tui.RunSearchForm(title, cfg.Search.EffectiveCount(0))
		if err != nil {
			return nil, false, err
		}
		if form == nil {
			return nil, true, nil
		}
		if action == "run" {
			cmd = newRunCmd()
		} else {
			cmd = newSearchCmd()
		}
		args = []string{form.Query, "--count", strconv.Itoa(form.Count)}
	case "download":
		cmd = newDownloadCmd()
	case "upload":
		cmd = newUploadCmd()
	case "index":
		cmd = newIndexCmd()
		args = []string{"--stats"}
	case "books":
		cmd = newBooksCmd()
	case "status":
		cmd = newStatusCmd()
	case "retry":
		cmd = newResetCmd()
	}
	if cmd != nil {
		cmd.SetArgs(args)
		cmd.SilenceUsage = true
	}
	return cmd, false, nil
}
