// Package output creates lipgloss renderers with consistent color profile
// handling across the CLI.
package output

import (
	"io"
	"os"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
)

// ColorProfile returns the color profile for w. NO_COLOR forces Ascii;
// otherwise terminals are detected and anything else gets Ascii.
func ColorProfile(w io.Writer) termenv.Profile {
	if os.Getenv("NO_COLOR") != "" {
		return termenv.Ascii
	}
	f, ok := w.(*os.File)
	if !ok {
		return termenv.Ascii
	}
	return termenv.NewOutput(f).EnvColorProfile()
}

// NewRenderer returns a renderer writing to w with the profile chosen by
// ColorProfile.
func NewRenderer(w io.Writer) *lipgloss.Renderer {
	if w == nil {
		w = os.Stdout
	}
	return lipgloss.NewRenderer(w, termenv.WithProfile(ColorProfile(w)))
}
