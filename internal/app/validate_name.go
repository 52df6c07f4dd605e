package app

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/naming"
)

func newValidateNameCmd() *cobra.Command {
	var profile string

	cmd := &cobra.Command{
		Use:   "validate-name <name>...",
		Short: "Check file names against filesystem rules",
		Long: `Check whether names are usable as file names.

The windows profile also rejects reserved device names such as CON or
LPT1 (with or without an extension). The default profile follows
naming.profile, where auto picks the rules of the current OS.

Examples:
  bookpipe validate-name report.pdf con.txt
  bookpipe validate-name --profile posix "aux.epub"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := resolveProfile(profile)
			if err != nil {
				return err
			}

			invalid := 0
			out := cmd.OutOrStdout()
			for _, name := range args {
				valid, reason := naming.Validate(name, p)
				if valid {
					fmt.Fprintf(out, "%s %s\n", color.GreenString("ok     "), name)
					continue
				}
				invalid++
				fmt.Fprintf(out, "%s %s: %s\n", color.RedString("invalid"), name, reason)
			}
			if invalid > 0 {
				return fmt.Errorf("%d of %d name(s) invalid", invalid, len(args))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&profile, "profile", "", "Validation profile: auto, windows or posix (default: naming.profile)")
	return cmd
}

// resolveProfile picks the flag value, then naming.profile.
func resolveProfile(flag string) (naming.Profile, error) {
	if flag == "" && cfg != nil {
		flag = cfg.Naming.Profile
	}
	return naming.ParseProfile(flag)
}
