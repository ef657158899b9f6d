package collector

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"sync"
	"time"
)

const (
	redditBaseURL          = "https://www.reddit.com"
	redditMaxResponseBytes = 2 << 20 // 2MB
	redditConcurrency      = 3
	redditClientTimeout    = 10 * time.Second
	// Reddit blocks the default Go user agent; a descriptive one is fine.
	redditUserAgent = "daily-briefing/1.0 (personal morning digest)"
)

// RedditFetcher pulls the top posts of the day from a set of subreddits via
// the public JSON listing API, no OAuth required.
type RedditFetcher struct {
	Subreddits []string
	MaxItems   int
}

func (r *RedditFetcher) Name() string {
	return "reddit"
}

type redditListing struct {
	Data struct {
		Children []struct {
			Data redditPost `json:"data"`
		} `json:"children"`
	} `json:"data"`
}

type redditPost struct {
	ID          string  `json:"id"`
	Title       string  `json:"title"`
	Selftext    string  `json:"selftext"`
	Permalink   string  `json:"permalink"`
	Subreddit   string  `json:"subreddit"`
	Author      string  `json:"author"`
	Score       int     `json:"score"`
	NumComments int     `json:"num_comments"`
	CreatedUTC  float64 `json:"created_utc"`
	Stickied    bool    `json:"stickied"`
}

func (r *RedditFetcher) Fetch() ([]NewsItem, error) {
	log.Println("fetch Reddit top posts...")

	client := &http.Client{Timeout: redditClientTimeout}

	var (
		mu      sync.Mutex
		wg      sync.WaitGroup
		sem     = make(chan struct{}, redditConcurrency)
		items   []NewsItem
		errored int
	)

	for _, sub := range r.Subreddits {
		wg.Add(1)
		sem <- struct{}{}
		go func(sub string) {
			defer wg.Done()
			defer func() { <-sem }()

			posts, err := fetchSubredditTop(client, sub, r.perSubLimit())
			if err != nil {
				log.Printf("reddit: fetch r/%s: %v", sub, err)
				mu.Lock()
				errored++
				mu.Unlock()
				return
			}

			mu.Lock()
			items = append(items, posts...)
			mu.Unlock()
		}(sub)
	}
	wg.Wait()

	if len(items) == 0 {
		if errored == len(r.Subreddits) && errored > 0 {
			return nil, fmt.Errorf("reddit: all %d subreddits failed", errored)
		}
		log.Println("reddit: no posts fetched")
		return nil, nil
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].HotScore > items[j].HotScore
	})
	if r.MaxItems > 0 && len(items) > r.MaxItems {
		items = items[:r.MaxItems]
	}

	return items, nil
}

// perSubLimit spreads the item budget across subreddits so one very active
// sub cannot fill the whole quota.
func (r *RedditFetcher) perSubLimit() int {
	if r.MaxItems <= 0 || len(r.Subreddits) == 0 {
		return 10
	}
	n := r.MaxItems/len(r.Subreddits) + 1
	if n < 3 {
		n = 3
	}
	return n
}

func fetchSubredditTop(client *http.Client, sub string, limit int) ([]NewsItem, error) {
	url := fmt.Sprintf("%s/r/%s/top.json?limit=%d&t=day", redditBaseURL, sub, limit)
	req, err := http.NewRequest(http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", redditUserAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, redditMaxResponseBytes))
	if err != nil {
		return nil, err
	}
	return parseRedditListing(body)
}

// parseRedditListing converts one subreddit listing response into NewsItems.
// Stickied posts are moderator announcements, not news, and are skipped.
func parseRedditListing(body []byte) ([]NewsItem, error) {
	var listing redditListing
	if err := json.Unmarshal(body, &listing); err != nil {
		return nil, fmt.Errorf("unmarshal listing: %w", err)
	}

	items := make([]NewsItem, 0, len(listing.Data.Children))
	for _, child := range listing.Data.Children {
		p := child.Data
		if p.Title == "" || p.Stickied {
			continue
		}
		items = append(items, NewsItem{
			Title:       p.Title,
			URL:         redditBaseURL + p.Permalink,
			Source:      SourceReddit,
			Snippet:     p.Selftext,
			PublishedAt: time.Unix(int64(p.CreatedUTC), 0),
			HotScore:    float64(p.Score),
			RawData: map[string]any{
				"subreddit": p.Subreddit,
				"author":    p.Author,
				"comments":  p.NumComments,
				"score":     p.Score,
			},
		})
	}
	return items, nil
}
