package report

import (
	"fmt"
	"strings"
	"time"

	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/processor"
	"github.com/dailyintel/briefing/internal/sentiment"
)

// Section is one titled block of report lines.
type Section struct {
	Heading string
	Lines   []string
}

// Report is the single-use output of one pipeline run.
type Report struct {
	GeneratedAt time.Time
	Sections    []Section
}

// Section headings per source category, in render order.
var sourceSections = []struct {
	source  string
	heading string
}{
	{collector.SourceReddit, "🧠 AI & COMMUNITY INTELLIGENCE"},
	{collector.SourceBlog, "📰 TECH SECTOR NEWS"},
	{collector.SourceX, "🐦 TRENDING ON X"},
	{collector.SourceProductHunt, "🚀 PRODUCT LAUNCHES"},
}

// Builder assembles a Report out of processed items and a sentiment reading.
type Builder struct {
	MaxLinesPerSection int
	// IncludeSnippets adds a snippet line under each item (extended report).
	IncludeSnippets bool
	WatchNotes      []string
}

// Build groups items by source category and appends the market-mood and
// watch sections. Categories with no items still get their (empty) section so
// a degraded run renders the full frame.
func (b *Builder) Build(now time.Time, items []processor.ProcessedItem, mood sentiment.Reading, indicator *collector.FearGreedReading) Report {
	maxLines := b.MaxLinesPerSection
	if maxLines <= 0 {
		maxLines = 3
	}

	grouped := processor.GroupBySource(items)

	sections := make([]Section, 0, len(sourceSections)+2)
	for _, sec := range sourceSections {
		sections = append(sections, Section{
			Heading: sec.heading,
			Lines:   b.itemLines(grouped[sec.source], maxLines),
		})
	}

	sections = append(sections, Section{
		Heading: "📈 MARKET MOOD",
		Lines:   capLines(b.moodLines(mood, indicator), maxLines),
	})

	if len(b.WatchNotes) > 0 {
		watch := make([]string, 0, len(b.WatchNotes))
		for _, note := range b.WatchNotes {
			watch = append(watch, "• "+note)
		}
		sections = append(sections, Section{
			Heading: "🎯 TODAY'S WATCH",
			Lines:   capLines(watch, maxLines),
		})
	}

	return Report{GeneratedAt: now, Sections: sections}
}

func (b *Builder) itemLines(items []processor.ProcessedItem, maxLines int) []string {
	lines := make([]string, 0, maxLines)
	for _, it := range items {
		if len(lines) >= maxLines {
			break
		}
		lines = append(lines, fmt.Sprintf("• [%s] %s", itemLabel(it), it.Title))
		if b.IncludeSnippets && it.Snippet != "" && len(lines) < maxLines {
			lines = append(lines, "  "+it.Snippet)
		}
	}
	return lines
}

func (b *Builder) moodLines(mood sentiment.Reading, indicator *collector.FearGreedReading) []string {
	var lines []string
	if indicator != nil {
		lines = append(lines, fmt.Sprintf("Fear & Greed: %d/100 (%s)", indicator.Value, indicator.Classification))
	} else {
		lines = append(lines, "Fear & Greed: unavailable")
	}
	lines = append(lines,
		fmt.Sprintf("Sentiment: %s (%d/100)", strings.ToUpper(string(mood.Label)), mood.Score),
		"→ "+mood.Advice,
	)
	if b.IncludeSnippets {
		for _, sig := range mood.Signals {
			lines = append(lines, "· "+sig)
		}
	}
	return lines
}

// itemLabel picks the bracketed source tag shown before each title.
func itemLabel(it processor.ProcessedItem) string {
	switch it.Source {
	case collector.SourceReddit:
		if sub := rawString(it.RawData, "subreddit"); sub != "" {
			return "r/" + sub
		}
		return "reddit"
	case collector.SourceBlog:
		if feed := rawString(it.RawData, "feed"); feed != "" {
			return feed
		}
		return "blog"
	case collector.SourceX:
		return "X"
	case collector.SourceProductHunt:
		return "Product Hunt"
	default:
		return it.Source
	}
}

func rawString(raw map[string]any, key string) string {
	if raw == nil {
		return ""
	}
	if v, ok := raw[key].(string); ok {
		return strings.TrimSpace(v)
	}
	return ""
}

func capLines(lines []string, max int) []string {
	if max > 0 && len(lines) > max {
		return lines[:max]
	}
	return lines
}
