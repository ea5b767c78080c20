package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"

	"github.com/charmbracelet/lipgloss"
	"go.trai.ch/corepm/internal/ui/output"
	"go.trai.ch/corepm/internal/ui/style"
)

type printer struct {
	w       io.Writer
	r       *lipgloss.Renderer
	heading lipgloss.Style
	label   lipgloss.Style
	muted   lipgloss.Style
	ok      lipgloss.Style
}

func newPrinter(w io.Writer) *printer {
	r := output.NewRenderer(w)
	return &printer{
		w:       w,
		r:       r,
		heading: r.NewStyle().Bold(true).Foreground(style.Iris),
		label:   r.NewStyle().Bold(true),
		muted:   r.NewStyle().Foreground(style.Slate),
		ok:      r.NewStyle().Foreground(style.Green),
	}
}

func (p *printer) line(s string) {
	_, _ = fmt.Fprintln(p.w, s)
}

// field prints "label: value", skipping empty values.
func (p *printer) field(label, value string) {
	if value == "" {
		return
	}
	p.line(p.label.Render(label+":") + " " + value)
}

// list prints a labelled block with one indented entry per item.
func (p *printer) list(label string, items []string) {
	if len(items) == 0 {
		return
	}
	p.line(p.label.Render(label + ":"))
	for _, item := range items {
		p.line("  " + item)
	}
}

// table prints rows of two columns with the first padded to a common width.
func (p *printer) table(rows [][2]string) {
	width := 0
	for _, row := range rows {
		width = max(width, lipgloss.Width(row[0]))
	}
	col := p.r.NewStyle().Width(width + 2)
	for _, row := range rows {
		if row[1] == "" {
			p.line(row[0])
			continue
		}
		p.line(col.Render(row[0]) + p.muted.Render(row[1]))
	}
}

func sortedKeys[V any](m map[string]V) []string {
	return slices.Sorted(maps.Keys(m))
}
