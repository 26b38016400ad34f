package warnings

import (
	"io"

	"github.com/fatih/color"
)

// Print writes each warning to w, critical ones in red and the rest in yellow.
func Print(w io.Writer, items []Warning) {
	if w == nil {
		return
	}
	warnColor := color.New(color.FgYellow)
	critColor := color.New(color.FgRed)
	for _, item := range items {
		c := warnColor
		if item.severityOrDefault() == SeverityCritical {
			c = critColor
		}
		_, _ = c.Fprintln(w, item.String())
	}
}
