package util

import (
	"os"

	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

// IsTTY reports whether stdout is an interactive terminal.
func IsTTY() bool {
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// InitColor turns colored output off for --no-color, NO_COLOR, or when
// stdout is not a terminal.
func InitColor(noColor bool) {
	_, envNoColor := os.LookupEnv("NO_COLOR")
	color.NoColor = noColor || envNoColor || !IsTTY()
}
