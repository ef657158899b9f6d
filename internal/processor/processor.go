package processor

import (
	"crypto/sha1"
	"encoding/hex"
	"sort"
	"strings"
	"time"

	"github.com/dailyintel/briefing/internal/collector"
)

const snippetLimit = 200

// ProcessedItem is the cleaned shape handed to the renderer and the archive.
type ProcessedItem struct {
	ID          string
	Title       string
	URL         string
	Source      string
	Snippet     string
	PublishedAt time.Time
	HotScore    float64
	RawData     map[string]any
}

// Processor does basic cleanup, URL dedupe and ordering between collection
// and rendering.
type Processor struct{}

func New() *Processor {
	return &Processor{}
}

func (p *Processor) Process(items []collector.NewsItem) []ProcessedItem {
	out := make([]ProcessedItem, 0, len(items))
	seen := make(map[string]struct{})

	for _, it := range items {
		title := strings.TrimSpace(toValidUTF8(it.Title))
		if title == "" || it.URL == "" {
			continue
		}

		id := hashURL(it.URL)
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}

		snippet := truncateRunes(strings.TrimSpace(toValidUTF8(it.Snippet)), snippetLimit)

		out = append(out, ProcessedItem{
			ID:          id,
			Title:       title,
			URL:         it.URL,
			Source:      it.Source,
			Snippet:     snippet,
			PublishedAt: it.PublishedAt,
			HotScore:    it.HotScore,
			RawData:     it.RawData,
		})
	}

	// Hottest first; the report truncates each section from the top.
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].HotScore > out[j].HotScore
	})

	return out
}

// GroupBySource splits processed items into per-category slices, keeping the
// hot-score order within each category.
func GroupBySource(items []ProcessedItem) map[string][]ProcessedItem {
	grouped := make(map[string][]ProcessedItem)
	for _, it := range items {
		grouped[it.Source] = append(grouped[it.Source], it)
	}
	return grouped
}

func hashURL(url string) string {
	h := sha1.New()
	h.Write([]byte(url))
	return hex.EncodeToString(h.Sum(nil))
}

// toValidUTF8 normalizes scraped text; some pages hand back mixed encodings.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunes cuts at rune boundaries and appends an ellipsis, so multi-byte
// text is never split mid-character.
func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit]) + "…"
}
