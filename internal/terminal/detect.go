// Package terminal reports whether genv may prompt.
package terminal

import (
	"os"

	"golang.org/x/term"
)

var isTerminal = term.IsTerminal

// IsInteractive reports whether stdin and stderr are both terminals. Prompts render on stderr,
// so stdout may be redirected without disabling them.
func IsInteractive() bool {
	return isTerminal(int(os.Stdin.Fd())) && isTerminal(int(os.Stderr.Fd()))
}
