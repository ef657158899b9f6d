package briefing

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/processor"
	"github.com/dailyintel/briefing/internal/report"
	"github.com/dailyintel/briefing/internal/sentiment"
)

type stubFetcher struct {
	name  string
	items []collector.NewsItem
	err   error
}

func (s *stubFetcher) Name() string { return s.name }

func (s *stubFetcher) Fetch() ([]collector.NewsItem, error) {
	return s.items, s.err
}

func newTestPipeline(fetchers ...collector.Fetcher) *Pipeline {
	return &Pipeline{
		Fetchers:  fetchers,
		Estimator: sentiment.NewEstimator([]string{"rally"}, []string{"crash"}),
		Processor: processor.New(),
		Builder:   &report.Builder{MaxLinesPerSection: 3},
		Width:     64,
		Indicator: func() (collector.FearGreedReading, error) {
			return collector.FearGreedReading{Value: 35, Classification: "Fear", FetchedAt: time.Now()}, nil
		},
	}
}

func TestRunSurvivesSingleSourceFailure(t *testing.T) {
	okFetcher := &stubFetcher{
		name: "good",
		items: []collector.NewsItem{{
			Title:       "Reasoning model breakthrough",
			URL:         "https://example.com/story",
			Source:      collector.SourceReddit,
			PublishedAt: time.Now(),
			HotScore:    42,
			RawData:     map[string]any{"subreddit": "Artificial"},
		}},
	}
	badFetcher := &stubFetcher{name: "bad", err: errors.New("rate limited")}

	p := newTestPipeline(okFetcher, badFetcher)

	res, err := p.Run()
	if err != nil {
		t.Fatalf("Run should tolerate one failed source: %v", err)
	}
	if res.SourcesOK != 1 || res.SourcesFailed != 1 {
		t.Fatalf("sources ok=%d failed=%d, want 1/1", res.SourcesOK, res.SourcesFailed)
	}
	if !strings.Contains(res.Text, "Reasoning model breakthrough") {
		t.Fatalf("surviving source's item missing from report:\n%s", res.Text)
	}
}

func TestRunAllSourcesFailedStillRenders(t *testing.T) {
	p := newTestPipeline(
		&stubFetcher{name: "a", err: errors.New("down")},
		&stubFetcher{name: "b", err: errors.New("also down")},
	)

	res, err := p.Run()
	if !errors.Is(err, ErrNoContent) {
		t.Fatalf("err = %v, want ErrNoContent", err)
	}
	if res == nil || res.Text == "" {
		t.Fatalf("degraded run must still render a report")
	}
	if !strings.Contains(res.Text, "MARKET MOOD") {
		t.Fatalf("degraded report should keep the mood section:\n%s", res.Text)
	}
}

func TestRunUsesIndicatorForMood(t *testing.T) {
	p := newTestPipeline(&stubFetcher{
		name: "good",
		items: []collector.NewsItem{{
			Title:  "quiet day",
			URL:    "https://example.com/x",
			Source: collector.SourceBlog,
		}},
	})

	res, err := p.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Mood.Label != sentiment.LabelCautious {
		t.Fatalf("mood = %q, want cautious at indicator 35", res.Mood.Label)
	}
	if res.Indicator == nil || res.Indicator.Value != 35 {
		t.Fatalf("indicator reading not carried into result: %+v", res.Indicator)
	}
}

func TestRunTalliesKeywordsAfterDedupe(t *testing.T) {
	story := collector.NewsItem{
		Title:  "Markets rally into the close",
		URL:    "https://example.com/same-story",
		Source: collector.SourceBlog,
	}

	// Two sources carrying the same URL must tilt the score once, not twice.
	p := newTestPipeline(
		&stubFetcher{name: "a", items: []collector.NewsItem{story}},
		&stubFetcher{name: "b", items: []collector.NewsItem{story}},
	)
	p.Indicator = func() (collector.FearGreedReading, error) {
		return collector.FearGreedReading{Value: 50, Classification: "Neutral"}, nil
	}

	res, err := p.Run()
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if len(res.Items) != 1 {
		t.Fatalf("duplicate URL not collapsed: %d items", len(res.Items))
	}
	if res.Mood.Score != 52 {
		t.Fatalf("score = %d, want 52 from a single keyword hit", res.Mood.Score)
	}
}

func TestRunIndicatorFailureFallsBackToNeutral(t *testing.T) {
	p := newTestPipeline(&stubFetcher{
		name: "good",
		items: []collector.NewsItem{{
			Title:  "still news",
			URL:    "https://example.com/y",
			Source: collector.SourceBlog,
		}},
	})
	p.Indicator = func() (collector.FearGreedReading, error) {
		return collector.NeutralFearGreed(), errors.New("api down")
	}

	res, err := p.Run()
	if err != nil {
		t.Fatalf("indicator failure must not fail the run: %v", err)
	}
	if res.Mood.Label != sentiment.LabelNeutral {
		t.Fatalf("mood = %q, want neutral fallback", res.Mood.Label)
	}
	if res.Indicator != nil {
		t.Fatalf("failed indicator should be nil in the result")
	}
	if !strings.Contains(res.Text, "Fear & Greed: unavailable") {
		t.Fatalf("report should show the indicator as unavailable:\n%s", res.Text)
	}
}

func TestWriteBriefingFile(t *testing.T) {
	dir := t.TempDir()
	if err := writeBriefingFile(dir, "2026-01-02", "report body"); err != nil {
		t.Fatalf("writeBriefingFile: %v", err)
	}

	// A second write for the same date overwrites, not appends.
	if err := writeBriefingFile(dir, "2026-01-02", "updated body"); err != nil {
		t.Fatalf("writeBriefingFile rewrite: %v", err)
	}
}
