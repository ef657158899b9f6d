package main

import (
	"crypto/subtle"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dailyintel/briefing/internal/api"
	"github.com/dailyintel/briefing/internal/briefing"
	"github.com/dailyintel/briefing/internal/collector"
	"github.com/dailyintel/briefing/internal/config"
	"github.com/dailyintel/briefing/internal/processor"
	"github.com/dailyintel/briefing/internal/report"
	"github.com/dailyintel/briefing/internal/scheduler"
	"github.com/dailyintel/briefing/internal/sentiment"
	"github.com/dailyintel/briefing/internal/storage"
)

// Long-running entry: regenerates the briefing on schedule and serves the
// archive over HTTP.
func main() {
	cfg := config.Load()
	if cfg.PostgresDSN == "" {
		log.Fatal("POSTGRES_DSN is required for the api server (it serves the archive)")
	}

	settings, err := config.LoadSettings(cfg.SettingsPath)
	if err != nil {
		log.Fatalf("load settings %s: %v", cfg.SettingsPath, err)
	}

	store, err := storage.NewStore(cfg.PostgresDSN, cfg.RedisAddr)
	if err != nil {
		log.Fatalf("init store failed: %v", err)
	}

	p := &briefing.Pipeline{
		Fetchers:  buildFetchers(settings),
		Estimator: sentiment.NewEstimator(settings.PositiveKeywords, settings.NegativeKeywords),
		Processor: processor.New(),
		Builder: &report.Builder{
			MaxLinesPerSection: settings.MaxLinesPerSection,
			WatchNotes:         settings.WatchNotes,
		},
		Width:     settings.ReportWidth,
		OutputDir: settings.OutputDir,
		Store:     store,
	}

	s, err := scheduler.New(cfg.CronSpec, func() {
		if _, err := p.Run(); err != nil {
			log.Printf("briefing run failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("init scheduler failed: %v", err)
	}
	s.Start()

	r := gin.Default()
	if cfg.BasicAuthUser != "" && cfg.BasicAuthPass != "" {
		r.Use(basicAuthMiddleware(cfg.BasicAuthUser, cfg.BasicAuthPass))
	}

	apiServer := api.NewServer(store)
	apiServer.RegisterRoutes(r)

	addr := ":" + cfg.AppPort
	log.Printf("starting api server at %s ...", addr)
	if err := r.Run(addr); err != nil {
		log.Fatalf("server exit: %v", err)
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

// basicAuthMiddleware puts the whole site behind one shared password when
// APP_BASIC_USER / APP_BASIC_PASS are set. /health stays open for probes.
func basicAuthMiddleware(user, pass string) gin.HandlerFunc {
	const realm = "Restricted"
	uBytes := []byte(user)
	pBytes := []byte(pass)

	return func(c *gin.Context) {
		if c.Request.URL.Path == "/health" {
			c.Next()
			return
		}
		u, p, okAuth := c.Request.BasicAuth()
		if !okAuth ||
			subtle.ConstantTimeCompare([]byte(u), uBytes) != 1 ||
			subtle.ConstantTimeCompare([]byte(p), pBytes) != 1 {
			c.Header("WWW-Authenticate", `Basic realm="`+realm+`"`)
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Next()
	}
}
