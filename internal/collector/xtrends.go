package collector

import (
	"io"
	"log"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/gocolly/colly/v2"
)

const (
	xTrendsURL          = "https://trends24.in/"
	xTrendsMaxBodyBytes = 2 << 20 // 2MB, guards against oversized HTML
	xTrendsTimeout      = 15 * time.Second
	xTrendsUserAgent    = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// XTrendsFetcher collects trending X (Twitter) topics from trends24.in, with a
// plain-HTTP regex pass and getdaytrends.com as fallbacks when the DOM parse
// comes up empty.
type XTrendsFetcher struct {
	MaxItems int
}

func (x *XTrendsFetcher) Name() string {
	return "x_trends"
}

func (x *XTrendsFetcher) Fetch() ([]NewsItem, error) {
	log.Println("fetch X (Twitter) trends...")

	list := x.fetchWithColly()
	if len(list) == 0 {
		list = x.fetchWithHTTP()
	}
	if len(list) == 0 {
		list = x.fetchFromGetdaytrends()
	}

	if len(list) == 0 {
		log.Println("x_trends: got 0 topics")
		return nil, nil
	}

	max := x.MaxItems
	if max <= 0 {
		max = 10
	}
	if len(list) > max {
		list = list[:max]
	}

	now := time.Now()
	results := make([]NewsItem, 0, len(list))
	for i, t := range list {
		// Rank is the only popularity signal the page exposes.
		score := float64(max - i)
		if score < 1 {
			score = 1
		}
		results = append(results, NewsItem{
			Title:       t.title,
			URL:         t.url,
			Source:      SourceX,
			Snippet:     "Trending on X",
			PublishedAt: now,
			HotScore:    score,
			RawData:     map[string]any{"rank": i + 1},
		})
	}
	return results, nil
}

type xTrend struct {
	title string
	url   string
}

func (x *XTrendsFetcher) fetchWithColly() []xTrend {
	c := colly.NewCollector(
		colly.AllowedDomains("trends24.in", "www.trends24.in"),
		colly.UserAgent(xTrendsUserAgent),
	)
	c.SetRequestTimeout(xTrendsTimeout)

	var list []xTrend
	seen := make(map[string]bool)

	c.OnHTML("a.trend-link[href*='twitter.com/search'], a[href*='twitter.com/search']", func(e *colly.HTMLElement) {
		href, _ := e.DOM.Attr("href")
		href = strings.TrimSpace(href)
		if href == "" || seen[href] {
			return
		}
		title := strings.TrimSpace(e.DOM.Text())
		if title == "" {
			return
		}
		seen[href] = true
		list = append(list, xTrend{title: title, url: toXSearchURL(href)})
	})

	if err := c.Visit(xTrendsURL); err != nil {
		log.Printf("x_trends (colly): %v", err)
		return nil
	}
	return list
}

// fetchWithHTTP GETs the page directly and pulls trend links out with regexes.
func (x *XTrendsFetcher) fetchWithHTTP() []xTrend {
	body, err := x.httpGet(xTrendsURL)
	if err != nil {
		return nil
	}
	list := parseTrendLinks(body)
	if len(list) > 0 {
		return list
	}
	// Worldwide board empty, try the US board.
	bodyUS, err := x.httpGet("https://trends24.in/united-states/")
	if err != nil {
		return nil
	}
	return parseTrendLinks(bodyUS)
}

func (x *XTrendsFetcher) httpGet(pageURL string) (string, error) {
	client := &http.Client{Timeout: xTrendsTimeout}
	req, err := http.NewRequest(http.MethodGet, pageURL, nil)
	if err != nil {
		return "", err
	}
	req.Header.Set("User-Agent", xTrendsUserAgent)
	resp, err := client.Do(req)
	if err != nil {
		log.Printf("x_trends (http): %v", err)
		return "", err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return "", nil
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, xTrendsMaxBodyBytes))
	if err != nil {
		return "", err
	}
	return string(body), nil
}

var (
	trendLinkRe     = regexp.MustCompile(`<a\s+[^>]*href="(https://twitter\.com/search\?q=[^"]+)"[^>]*>([^<]+)</a>`)
	trendHrefOnlyRe = regexp.MustCompile(`href="(https://twitter\.com/search\?q=([^"]+))"`)
)

// parseTrendLinks extracts twitter.com/search links and their titles from raw
// HTML, tolerating both anchor formats the site has used.
func parseTrendLinks(html string) []xTrend {
	seen := make(map[string]bool)
	var list []xTrend

	for _, m := range trendLinkRe.FindAllStringSubmatch(html, -1) {
		if len(m) != 3 {
			continue
		}
		href := m[1]
		title := strings.TrimSpace(m[2])
		if title == "" || len(title) > 200 || seen[href] {
			continue
		}
		seen[href] = true
		list = append(list, xTrend{title: title, url: toXSearchURL(href)})
	}

	// Href-only anchors: decode the q= value and use it as the title.
	if len(list) == 0 {
		for _, m := range trendHrefOnlyRe.FindAllStringSubmatch(html, -1) {
			if len(m) < 3 || seen[m[1]] {
				continue
			}
			href := m[1]
			seen[href] = true
			title := m[2]
			if dec, err := url.QueryUnescape(title); err == nil && dec != "" {
				title = dec
			}
			if len(title) > 200 {
				title = title[:200]
			}
			list = append(list, xTrend{title: title, url: toXSearchURL(href)})
		}
	}
	return list
}

func toXSearchURL(twitterSearchURL string) string {
	if strings.Contains(twitterSearchURL, "twitter.com") {
		return "https://x.com/search?" + strings.TrimPrefix(twitterSearchURL, "https://twitter.com/search?")
	}
	return twitterSearchURL
}

var getdaytrendsRe = regexp.MustCompile(`<a\s+href="https://getdaytrends\.com/trend/([^"]+)/?"[^>]*>([^<]+)</a>`)

// fetchFromGetdaytrends parses the getdaytrends.com worldwide board, where
// links look like /trend/<topic>/.
func (x *XTrendsFetcher) fetchFromGetdaytrends() []xTrend {
	body, err := x.httpGet("https://getdaytrends.com/")
	if err != nil {
		return nil
	}
	seen := make(map[string]bool)
	var list []xTrend
	for _, m := range getdaytrendsRe.FindAllStringSubmatch(body, -1) {
		if len(m) < 3 {
			continue
		}
		pathPart := m[1] // URL-encoded topic
		linkText := strings.TrimSpace(m[2])
		if linkText == "" || len(linkText) > 200 {
			continue
		}
		title := linkText
		if dec, err := url.QueryUnescape(pathPart); err == nil && dec != "" {
			title = dec
		}
		if seen[title] {
			continue
		}
		seen[title] = true
		list = append(list, xTrend{
			title: title,
			url:   "https://x.com/search?q=" + url.QueryEscape(title),
		})
	}
	return list
}
