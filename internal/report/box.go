package report

import (
	"strings"

	"github.com/mattn/go-runewidth"
)

const (
	minReportWidth     = 40
	defaultReportWidth = 64
)

// Render lays the report out as a fixed-width double-border box. width is the
// total outer width including the frame; display widths are measured with
// go-runewidth so wide runes and emoji don't break the frame.
func Render(r Report, width int) string {
	if width <= 0 {
		width = defaultReportWidth
	}
	if width < minReportWidth {
		width = minReportWidth
	}
	inner := width - 2

	var b strings.Builder

	top := "╔" + strings.Repeat("═", inner) + "╗"
	div := "╠" + strings.Repeat("═", inner) + "╣"
	bottom := "╚" + strings.Repeat("═", inner) + "╝"

	b.WriteString(top + "\n")
	b.WriteString(boxLine("📊 DAILY MARKET INTELLIGENCE — "+r.GeneratedAt.Format("Jan 02, 2006"), inner) + "\n")

	for _, sec := range r.Sections {
		b.WriteString(div + "\n")
		b.WriteString(boxLine(sec.Heading, inner) + "\n")
		for _, line := range sec.Lines {
			b.WriteString(boxLine(line, inner) + "\n")
		}
	}

	b.WriteString(bottom + "\n")
	b.WriteString("Generated: " + r.GeneratedAt.Format("2006-01-02 15:04:05"))

	return b.String()
}

// boxLine pads (or truncates) one content row to the inner width between the
// two frame runes.
func boxLine(content string, inner int) string {
	content = "  " + content
	if runewidth.StringWidth(content) > inner {
		content = runewidth.Truncate(content, inner, "…")
	}
	return "║" + runewidth.FillRight(content, inner) + "║"
}
