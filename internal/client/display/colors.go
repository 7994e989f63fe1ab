package display

import (
	"os"

	"golang.org/x/term"
)

// Terminal color codes, blanked by DisableColors
var (
	Reset   = "\033[0m"
	Red     = "\033[31m"
	Green   = "\033[32m"
	Yellow  = "\033[33m"
	Blue    = "\033[34m"
	Magenta = "\033[35m"
	Cyan    = "\033[36m"
	White   = "\033[37m"
)

// DisableColors turns every color code into the empty string
func DisableColors() {
	Reset, Red, Green, Yellow, Blue, Magenta, Cyan, White = "", "", "", "", "", "", "", ""
}

// AutoColors disables colors when stdout is not a terminal
func AutoColors() {
	if !term.IsTerminal(int(os.Stdout.Fd())) {
		DisableColors()
	}
}

// Prompt returns a colored prompt string
func Prompt(text string) string {
	return Yellow + text + " > " + Reset
}
