package main

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

var (
	setStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("#98FB98"))

	zeroStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#87CEEB"))

	freeStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666"))
)

// renderDump colours a dump: non-zero allocated bytes, zero allocated bytes
// and free bytes past offset each get their own style. Unstyled dumps are
// returned unchanged.
func renderDump(dump string, offset int, styled bool) string {
	if !styled {
		return dump
	}

	var b strings.Builder
	b.Grow(len(dump) * 4)
	idx := 0
	for _, line := range strings.SplitAfter(dump, "\n") {
		for _, group := range strings.Fields(line) {
			style := freeStyle
			switch {
			case idx >= offset:
			case group == "00":
				style = zeroStyle
			default:
				style = setStyle
			}
			b.WriteString(style.Render(group))
			b.WriteByte(' ')
			idx++
		}
		if strings.HasSuffix(line, "\n") {
			b.WriteByte('\n')
		}
	}
	return b.String()
}
