package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/dailyintel/briefing/internal/briefing"
	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/config"
	"github.com/dailyintel/briefing/internal/processor"
	"github.com/dailyintel/briefing/internal/report"
	"github.com/dailyintel/briefing/internal/scheduler"
	"github.com/dailyintel/briefing/internal/sentiment"
	"github.com/dailyintel/briefing/internal/storage"
)

func main() {
	today := flag.Bool("today", false, "generate and print today's briefing")
	full := flag.Bool("full", false, "generate the extended briefing (more lines, snippets, signals)")
	daemon := flag.Bool("daemon", false, "keep running and regenerate on the configured schedule")
	settingsPath := flag.String("config", "", "path to the settings file (default $BRIEFING_CONFIG or config.json)")
	flag.Parse()

	cfg := config.Load()
	if *settingsPath != "" {
		cfg.SettingsPath = *settingsPath
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("load settings %s: %v", cfg.SettingsPath, err)
	}

	switch {
	case *daemon:
		runDaemon(cfg, settings)
	case *today || *full:
		runOnce(cfg, settings, *full)
	default:
		quickSummary(settings)
	}
}

// runOnce generates a single briefing. The report is printed even when every
// source failed; the exit code then reflects the failure.
func runOnce(cfg *config.Config, settings config.Settings, full bool) {
	p := buildPipeline(cfg, settings, full)

	res, err := p.Run()
	fmt.Println(res.Text)
	if err != nil {
		log.Printf("briefing degraded: %v", err)
		os.Exit(1)
	}
}

func runDaemon(cfg *config.Config, settings config.Settings) {
	p := buildPipeline(cfg, settings, false)

	s, err := scheduler.New(cfg.CronSpec, func() {
		res, err := p.Run()
		fmt.Println(res.Text)
		if err != nil {
			log.Printf("briefing degraded: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}

	log.Printf("daemon mode: regenerating on %q", cfg.CronSpec)
	s.Start()
	select {}
}

// quickSummary is the flagless mode: just the market mood, no collection.
func quickSummary(settings config.Settings) {
	var indicator *collector.FearGreedReading
	if reading, err := collector.FetchFearGreed(); err != nil {
		log.Printf("indicator: %v", err)
	} else {
		indicator = &reading
	}

	est := sentiment.NewEstimator(settings.PositiveKeywords, settings.NegativeKeywords)
	mood := est.Estimate(indicator, nil)

	fmt.Println()
	fmt.Println(report.RenderSummary(mood, indicator))
	fmt.Println()
}

func buildPipeline(cfg *config.Config, settings config.Settings, full bool) *briefing.Pipeline {
	maxLines := settings.MaxLinesPerSection
	if full {
		// The extended report carries snippets and signals, so triple the
		// per-section budget.
		maxLines *= 3
	}

	var store *storage.Store
	if cfg.PostgresDSN != "" {
		var err error
		store, err = storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
		if err != nil {
			log.Printf("warn: archive disabled, init store failed: %v", err)
			store = nil
		}
	}

	return &briefing.Pipeline{
		Fetchers:  buildFetchers(settings),
		Estimator: sentiment.NewEstimator(settings.PositiveKeywords, settings.NegativeKeywords),
		Processor: processor.New(),
		Builder: &report.Builder{
			MaxLinesPerSection: maxLines,
			IncludeSnippets:    full,
			WatchNotes:         settings.WatchNotes,
		},
		Width:     settings.ReportWidth,
		OutputDir: settings.OutputDir,
		Store:     store,
	}
}

func buildFetchers(settings config.Settings) []collector.Fetcher {
	var fetchers []collector.Fetcher
	if settings.SourceEnabled(collector.SourceReddit) {
		fetchers = append(fetchers, &collector.RedditFetcher{
			Subreddits: settings.Subreddits,
			MaxItems:   settings.MaxItemsPerSource,
		})
	}
	if settings.SourceEnabled(collector.SourceBlog) {
		fetchers = append(fetchers, &collector.BlogFetcher{
			Feeds:    settings.Feeds,
			MaxItems: settings.MaxItemsPerSource,
		})
	}
	if settings.SourceEnabled(collector.SourceX) {
		fetchers = append(fetchers, &collector.XTrendsFetcher{
			MaxItems: settings.MaxItemsPerSource,
		})
	}
	if settings.SourceEnabled(collector.SourceProductHunt) {
		fetchers = append(fetchers, &collector.ProductHuntFetcher{
			MaxItems: settings.MaxItemsPerSource,
		})
	}
	return fetchers
}
