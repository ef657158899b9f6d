package briefing

import (
	"errors"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/processor"
	"github.com/dailyintel/briefing/internal/report"
	"github.com/dailyintel/briefing/internal/sentiment"
	"github.com/dailyintel/briefing/internal/storage"
)

// ErrNoContent means not a single source produced an item this run. The
// report is still rendered (empty sections), but callers should treat the run
// as failed.
var ErrNoContent = errors.New("no source produced any content")

// Pipeline wires collect → estimate → render for one run. Stateless between
// runs; archives are side outputs, never inputs.
type Pipeline struct {
	Fetchers  []collector.Fetcher
	Estimator *sentiment.Estimator
	Processor *processor.Processor
	Builder   *report.Builder
	Width     int

	// Indicator fetches the Fear & Greed reading; defaults to the live API.
	Indicator func() (collector.FearGreedReading, error)

	// OutputDir receives briefings/YYYY-MM-DD.md files; empty disables it.
	OutputDir string
	// Store archives briefings and items when configured; nil disables it.
	Store *storage.Store
}

// Result carries everything one run produced.
type Result struct {
	Report        report.Report
	Text          string
	Mood          sentiment.Reading
	Indicator     *collector.FearGreedReading
	Items         []processor.ProcessedItem
	SourcesOK     int
	SourcesFailed int
}

// Run executes the whole pipeline once. Individual source failures are logged
// and excluded; only a fully empty collection is an error, and even then the
// returned Result holds a rendered (degraded) report.
func (p *Pipeline) Run() (*Result, error) {
	log.Println("start briefing run...")

	collected, ok, failed := p.collect()

	var indicator *collector.FearGreedReading
	fetchIndicator := p.Indicator
	if fetchIndicator == nil {
		fetchIndicator = collector.FetchFearGreed
	}
	if reading, err := fetchIndicator(); err != nil {
		log.Printf("indicator: %v", err)
	} else {
		indicator = &reading
	}

	items := p.Processor.Process(collected)
	mood := p.Estimator.Estimate(indicator, items)

	now := time.Now()
	rep := p.Builder.Build(now, items, mood, indicator)
	text := report.Render(rep, p.Width)

	res := &Result{
		Report:        rep,
		Text:          text,
		Mood:          mood,
		Indicator:     indicator,
		Items:         items,
		SourcesOK:     ok,
		SourcesFailed: failed,
	}

	if len(items) == 0 {
		return res, fmt.Errorf("%w (%d sources failed)", ErrNoContent, failed)
	}

	p.archive(res, now)

	log.Printf("briefing run done: %d items from %d sources (%d failed)", len(items), ok, failed)
	return res, nil
}

// collect fans out one goroutine per fetcher; each source fails on its own.
func (p *Pipeline) collect() (items []collector.NewsItem, ok, failed int) {
	var (
		mu sync.Mutex
		wg sync.WaitGroup
	)

	for _, f := range p.Fetchers {
		fetcher := f
		wg.Add(1)
		go func() {
			defer wg.Done()
			name := fetcher.Name()
			got, err := fetcher.Fetch()
			if err != nil {
				log.Printf("fetch %s error: %v", name, err)
				mu.Lock()
				failed++
				mu.Unlock()
				return
			}
			if len(got) == 0 {
				log.Printf("fetch %s got 0 items", name)
			}
			mu.Lock()
			items = append(items, got...)
			ok++
			mu.Unlock()
		}()
	}
	wg.Wait()

	return items, ok, failed
}

// archive writes the side outputs. Failures here are logged, never fatal: the
// briefing was already produced.
func (p *Pipeline) archive(res *Result, now time.Time) {
	date := now.Format("2006-01-02")

	if p.OutputDir != "" {
		if err := writeBriefingFile(p.OutputDir, date, res.Text); err != nil {
			log.Printf("archive file: %v", err)
		}
	}

	if p.Store != nil {
		if err := p.Store.SaveItems(res.Items); err != nil {
			log.Printf("archive items: %v", err)
		}
		if err := p.Store.SaveBriefing(date, string(res.Mood.Label), res.Mood.Score, res.Text, now); err != nil {
			log.Printf("archive briefing: %v", err)
		}
	}
}

func writeBriefingFile(dir, date, text string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(dir, date+".md")
	if err := os.WriteFile(path, []byte(text+"\n"), 0o644); err != nil {
		return err
	}
	log.Printf("briefing saved to %s", path)
	return nil
}
