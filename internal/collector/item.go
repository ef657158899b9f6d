package collector

import "time"

// Source categories. Every fetcher tags its items with exactly one of these,
// and the report groups sections by them.
const (
	SourceReddit      = "reddit"
	SourceBlog        = "blog"
	SourceX           = "x"
	SourceProductHunt = "producthunt"
)

// NewsItem is the normalized shape every source produces. Items are built once
// by a fetcher and never mutated afterwards.
type NewsItem struct {
	Title       string
	URL         string
	Source      string
	Snippet     string
	PublishedAt time.Time
	HotScore    float64
	RawData     map[string]any
}

// Fetcher abstracts a single data source.
type Fetcher interface {
	Name() string
	Fetch() ([]NewsItem, error)
}
