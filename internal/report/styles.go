package report

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/sentiment"
)

var (
	buyColor     = lipgloss.Color("#4ECCA3") // green, extreme fear / buy zone
	cautionColor = lipgloss.Color("#FFC107") // amber
	neutralColor = lipgloss.Color("#EAEAEA") // off white
	greedColor   = lipgloss.Color("#FFA657") // orange
	dangerColor  = lipgloss.Color("#E94560") // red, extreme greed
	dimColor     = lipgloss.Color("#6E7681") // gray

	headerStyle = lipgloss.NewStyle().Bold(true)
	adviceStyle = lipgloss.NewStyle().Foreground(dimColor)
)

// moodStyle picks the signal color for a sentiment score, same bands as the
// estimator buckets.
func moodStyle(score int) lipgloss.Style {
	var c lipgloss.Color
	switch {
	case score <= 25:
		c = buyColor
	case score <= 40:
		c = cautionColor
	case score <= 60:
		c = neutralColor
	case score <= 75:
		c = greedColor
	default:
		c = dangerColor
	}
	return lipgloss.NewStyle().Foreground(c).Bold(true)
}

// RenderSummary is the short styled market-mood block printed when the tool
// runs without flags.
func RenderSummary(mood sentiment.Reading, indicator *collector.FearGreedReading) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("📊 Market Mood: "+strings.ToUpper(string(mood.Label))) + "\n")
	if indicator != nil {
		b.WriteString(fmt.Sprintf("   Fear & Greed: %d/100 (%s)\n", indicator.Value, indicator.Classification))
	} else {
		b.WriteString("   Fear & Greed: unavailable\n")
	}
	b.WriteString("   " + moodStyle(mood.Score).Render(fmt.Sprintf("Signal: %d/100", mood.Score)) + "\n")
	b.WriteString("   " + adviceStyle.Render("→ "+mood.Advice))

	return b.String()
}
