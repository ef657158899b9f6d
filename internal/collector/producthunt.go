package collector

import (
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gocolly/colly/v2"
)

const productHuntURL = "https://www.producthunt.com/"

// ProductHuntFetcher scrapes today's launches from the Product Hunt front
// page. The markup changes often, so selectors are layered best-effort.
type ProductHuntFetcher struct {
	MaxItems int
}

func (p *ProductHuntFetcher) Name() string {
	return "producthunt"
}

func (p *ProductHuntFetcher) Fetch() ([]NewsItem, error) {
	log.Println("fetch Product Hunt launches...")

	c := colly.NewCollector(
		colly.AllowedDomains("www.producthunt.com", "producthunt.com"),
		colly.UserAgent("daily-briefing/1.0"),
	)
	c.SetRequestTimeout(10 * time.Second)

	results := make([]NewsItem, 0, 20)
	now := time.Now()
	seen := make(map[string]bool)

	c.OnHTML("[data-test^='post-item'], section[data-test^='post']", func(e *colly.HTMLElement) {
		nameSel := e.DOM.Find("a[data-test^='post-name']")
		if nameSel.Length() == 0 {
			nameSel = e.DOM.Find("a[href^='/posts/']").First()
		}
		if nameSel.Length() == 0 {
			return
		}

		name := strings.TrimSpace(nameSel.Text())
		href, _ := nameSel.Attr("href")
		href = strings.TrimSpace(href)
		if name == "" || href == "" {
			return
		}
		fullURL := href
		if strings.HasPrefix(href, "/") {
			fullURL = "https://www.producthunt.com" + href
		}
		if seen[fullURL] {
			return
		}
		seen[fullURL] = true

		// Post names render as "1. Name — tagline" on some layouts; split off
		// the tagline when present.
		tagline := ""
		if idx := strings.Index(name, " — "); idx > 0 {
			tagline = strings.TrimSpace(name[idx+len(" — "):])
			name = strings.TrimSpace(name[:idx])
		}
		if tagline == "" {
			tagline = firstTagline(e.DOM)
		}

		votes := parseVotes(e.DOM.Find("button[data-test='vote-button']").Text())
		if votes == 0 {
			votes = parseVotes(e.ChildText("[class*='vote']"))
		}

		results = append(results, NewsItem{
			Title:       name,
			URL:         fullURL,
			Source:      SourceProductHunt,
			Snippet:     tagline,
			PublishedAt: now,
			HotScore:    float64(votes),
			RawData: map[string]any{
				"votes": votes,
			},
		})
	})

	if err := c.Visit(productHuntURL); err != nil {
		log.Printf("producthunt: visit failed: %v", err)
		return nil, err
	}

	if len(results) == 0 {
		log.Println("producthunt: got 0 launches")
		return nil, nil
	}

	if p.MaxItems > 0 && len(results) > p.MaxItems {
		results = results[:p.MaxItems]
	}
	return results, nil
}

// firstTagline finds the short descriptive line inside a post card: the first
// reasonably sized text node that is not a vote count.
func firstTagline(s *goquery.Selection) string {
	var tagline string
	s.Find("a[data-test^='post-tagline'], div, p").EachWithBreak(func(i int, el *goquery.Selection) bool {
		t := strings.TrimSpace(el.Text())
		if len(t) < 10 || len(t) > 200 {
			return true
		}
		if _, err := strconv.Atoi(strings.ReplaceAll(t, ",", "")); err == nil {
			return true
		}
		tagline = t
		return false
	})
	return tagline
}

// parseVotes turns "1,024" or "1.2k" vote labels into an integer.
func parseVotes(text string) int {
	text = strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if text == "" {
		return 0
	}

	multiplier := 1.0
	if strings.HasSuffix(text, "k") || strings.HasSuffix(text, "K") {
		multiplier = 1000
		text = strings.TrimSuffix(strings.TrimSuffix(text, "k"), "K")
	}

	f, err := strconv.ParseFloat(strings.TrimSpace(text), 64)
	if err != nil {
		return 0
	}
	return int(f * multiplier)
}
