package collector

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/mmcdole/gofeed"
)

const (
	blogFeedTimeout  = 10 * time.Second
	blogSnippetLimit = 280
)

// BlogFetcher reads the RSS/Atom feeds of a set of tech blogs. One broken or
// unreachable feed never takes the others down.
type BlogFetcher struct {
	Feeds    []string
	MaxItems int
}

func (b *BlogFetcher) Name() string {
	return "techblogs"
}

func (b *BlogFetcher) Fetch() ([]NewsItem, error) {
	log.Println("fetch tech blog feeds...")

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		items   []NewsItem
		errored int
	)

	for _, feedURL := range b.Feeds {
		wg.Add(1)
		go func(feedURL string) {
			defer wg.Done()

			got, err := fetchFeed(feedURL, b.perFeedLimit())
			if err != nil {
				log.Printf("techblogs: fetch %s: %v", feedURL, err)
				mu.Lock()
				errored++
				mu.Unlock()
				return
			}

			mu.Lock()
			items = append(items, got...)
			mu.Unlock()
		}(feedURL)
	}
	wg.Wait()

	if len(items) == 0 {
		if errored == len(b.Feeds) && errored > 0 {
			return nil, fmt.Errorf("techblogs: all %d feeds failed", errored)
		}
		log.Println("techblogs: no entries fetched")
		return nil, nil
	}

	if b.MaxItems > 0 && len(items) > b.MaxItems {
		items = items[:b.MaxItems]
	}
	return items, nil
}

func (b *BlogFetcher) perFeedLimit() int {
	if b.MaxItems <= 0 || len(b.Feeds) == 0 {
		return 5
	}
	n := b.MaxItems/len(b.Feeds) + 1
	if n < 2 {
		n = 2
	}
	return n
}

func fetchFeed(feedURL string, limit int) ([]NewsItem, error) {
	ctx, cancel := context.WithTimeout(context.Background(), blogFeedTimeout)
	defer cancel()

	fp := gofeed.NewParser()
	feed, err := fp.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, err
	}

	items := make([]NewsItem, 0, limit)
	for _, entry := range feed.Items {
		if len(items) >= limit {
			break
		}
		if entry.Title == "" || entry.Link == "" {
			continue
		}

		published := time.Now()
		if entry.PublishedParsed != nil {
			published = *entry.PublishedParsed
		} else if entry.UpdatedParsed != nil {
			published = *entry.UpdatedParsed
		}

		items = append(items, NewsItem{
			Title:       entry.Title,
			URL:         entry.Link,
			Source:      SourceBlog,
			Snippet:     cleanSnippet(entry.Description, blogSnippetLimit),
			PublishedAt: published,
			RawData: map[string]any{
				"feed": feed.Title,
			},
		})
	}
	return items, nil
}

var htmlTagRe = regexp.MustCompile(`<[^>]*>`)

// cleanSnippet strips markup and collapses whitespace; feed descriptions
// often arrive as HTML fragments.
func cleanSnippet(s string, limit int) string {
	s = htmlTagRe.ReplaceAllString(s, " ")
	s = strings.Join(strings.Fields(s), " ")
	rs := []rune(s)
	if limit > 0 && len(rs) > limit {
		s = strings.TrimSpace(string(rs[:limit])) + "…"
	}
	return s
}
