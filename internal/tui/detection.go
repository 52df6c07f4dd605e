package tui

import (
	"github.com/spf13/cobra"

	"github.com/blackwell-systems/bookpipe/internal/util"
)

// scriptFlags are boolean flags whose presence means the caller wants
// plain, parseable output.
var scriptFlags = []string{"no-interactive", "json", "plain"}

// ShouldUseTUI reports whether cmd may take over the terminal: stdout must
// be a TTY and none of scriptFlags may be set.
func ShouldUseTUI(cmd *cobra.Command) bool {
	if !util.IsTTY() {
		return false
	}
	for _, name := range scriptFlags {
		if on, err := cmd.Flags().GetBool(name); err == nil && on {
			return false
		}
	}
	return true
}
