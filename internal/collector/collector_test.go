package collector

import (
	"testing"
)

func TestParseRedditListingSkipsStickied(t *testing.T) {
	body := []byte(`{
		"data": {"children": [
			{"data": {"title": "Pinned rules post", "permalink": "/r/test/1", "stickied": true, "score": 9999}},
			{"data": {"title": "Real news", "permalink": "/r/test/2", "subreddit": "test", "score": 120, "num_comments": 14, "created_utc": 1700000000}},
			{"data": {"title": "", "permalink": "/r/test/3", "score": 5}}
		]}
	}`)

	items, err := parseRedditListing(body)
	if err != nil {
		t.Fatalf("parseRedditListing: %v", err)
	}
	if len(items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(items))
	}

	it := items[0]
	if it.Title != "Real news" {
		t.Fatalf("title = %q", it.Title)
	}
	if it.URL != "https://www.reddit.com/r/test/2" {
		t.Fatalf("url = %q", it.URL)
	}
	if it.Source != SourceReddit {
		t.Fatalf("source = %q, want %q", it.Source, SourceReddit)
	}
	if it.HotScore != 120 {
		t.Fatalf("hot score = %v, want 120", it.HotScore)
	}
	if it.RawData["subreddit"] != "test" {
		t.Fatalf("subreddit raw data = %v", it.RawData["subreddit"])
	}
}

func TestParseRedditListingBadJSON(t *testing.T) {
	if _, err := parseRedditListing([]byte("<html>rate limited</html>")); err == nil {
		t.Fatalf("expected error for non-JSON body")
	}
}

func TestParseFearGreed(t *testing.T) {
	body := []byte(`{"data": [{"value": "39", "value_classification": "Fear", "timestamp": "1700000000"}]}`)

	r, err := parseFearGreed(body)
	if err != nil {
		t.Fatalf("parseFearGreed: %v", err)
	}
	if r.Value != 39 {
		t.Fatalf("value = %d, want 39", r.Value)
	}
	if r.Classification != "Fear" {
		t.Fatalf("classification = %q, want Fear", r.Classification)
	}
	if r.FetchedAt.Unix() != 1700000000 {
		t.Fatalf("fetched at = %v, want unix 1700000000", r.FetchedAt)
	}
}

func TestParseFearGreedRejectsBadValues(t *testing.T) {
	cases := []string{
		`{"data": []}`,
		`{"data": [{"value": "abc"}]}`,
		`{"data": [{"value": "150"}]}`,
		`not json`,
	}
	for _, body := range cases {
		if _, err := parseFearGreed([]byte(body)); err == nil {
			t.Fatalf("expected error for body %q", body)
		}
	}
}

func TestIsAllowedFngURL(t *testing.T) {
	cases := []struct {
		url  string
		want bool
	}{
		{"https://api.alternative.me/fng/", true},
		{"https://www.api.alternative.me/fng/", true},
		{"http://api.alternative.me/fng/", false},
		{"https://evil.example.com/fng/", false},
		{"://bad", false},
	}
	for _, c := range cases {
		if got := isAllowedFngURL(c.url); got != c.want {
			t.Fatalf("isAllowedFngURL(%q) = %v, want %v", c.url, got, c.want)
		}
	}
}

func TestParseVotes(t *testing.T) {
	cases := []struct {
		text string
		want int
	}{
		{"1,024", 1024},
		{"1.2k", 1200},
		{"87", 87},
		{"", 0},
		{"n/a", 0},
	}
	for _, c := range cases {
		if got := parseVotes(c.text); got != c.want {
			t.Fatalf("parseVotes(%q) = %d, want %d", c.text, got, c.want)
		}
	}
}

func TestParseTrendLinks(t *testing.T) {
	html := `
		<li><a class="trend-link" href="https://twitter.com/search?q=%23GoLang">#GoLang</a></li>
		<li><a class="trend-link" href="https://twitter.com/search?q=%23GoLang">#GoLang dup</a></li>
		<li><a class="trend-link" href="https://twitter.com/search?q=OpenAI">OpenAI</a></li>`

	list := parseTrendLinks(html)
	if len(list) != 2 {
		t.Fatalf("expected 2 trends, got %d: %+v", len(list), list)
	}
	if list[0].title != "#GoLang" {
		t.Fatalf("title = %q", list[0].title)
	}
	if list[0].url != "https://x.com/search?q=%23GoLang" {
		t.Fatalf("url not rewritten to x.com: %q", list[0].url)
	}
}

func TestParseTrendLinksHrefOnlyFallback(t *testing.T) {
	html := `<a href="https://twitter.com/search?q=%23Bitcoin"><span>icon</span></a>`

	list := parseTrendLinks(html)
	if len(list) != 1 {
		t.Fatalf("expected 1 trend from href-only anchor, got %d", len(list))
	}
	if list[0].title != "#Bitcoin" {
		t.Fatalf("decoded title = %q, want #Bitcoin", list[0].title)
	}
}

func TestToXSearchURL(t *testing.T) {
	got := toXSearchURL("https://twitter.com/search?q=test")
	if got != "https://x.com/search?q=test" {
		t.Fatalf("toXSearchURL = %q", got)
	}
	passthrough := toXSearchURL("https://example.com/other")
	if passthrough != "https://example.com/other" {
		t.Fatalf("non-twitter URL should pass through: %q", passthrough)
	}
}

func TestCleanSnippet(t *testing.T) {
	in := "<p>Some   <b>bold</b>\nnews</p>"
	if got := cleanSnippet(in, 100); got != "Some bold news" {
		t.Fatalf("cleanSnippet = %q", got)
	}

	long := cleanSnippet("word word word word", 9)
	if got := []rune(long); got[len(got)-1] != '…' {
		t.Fatalf("long snippet should end with ellipsis: %q", long)
	}
}
