package config

import (
	"encoding/json"
	"errors"
	"io/fs"
	"log"
	"os"
)

// Config holds process-level knobs read from the environment.
type Config struct {
	AppPort string

	// Archive is optional: an empty DSN disables the database archive and the
	// briefing tool runs standalone.
	PostgresDSN string
	RedisAddr   string

	CronSpec string

	BasicAuthUser string
	BasicAuthPass string

	SettingsPath string
}

func Load() *Config {
	cfg := &Config{
		AppPort:       getEnv("APP_PORT", "9000"),
		PostgresDSN:   getEnv("POSTGRES_DSN", ""),
		RedisAddr:     getEnv("REDIS_ADDR", ""),
		CronSpec:      getEnv("CRON_SPEC", "0 */6 * * *"),
		BasicAuthUser: getEnv("APP_BASIC_USER", ""),
		BasicAuthPass: getEnv("APP_BASIC_PASS", ""),
		SettingsPath:  getEnv("BRIEFING_CONFIG", "config.json"),
	}

	log.Printf("config loaded: port=%s cron=%s settings=%s", cfg.AppPort, cfg.CronSpec, cfg.SettingsPath)
	return cfg
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// Settings is the user-editable document: which sources run, what to look
// for, and how the report is shaped.
type Settings struct {
	Sources            []string `json:"sources"`
	Subreddits         []string `json:"subreddits"`
	Feeds              []string `json:"feeds"`
	PositiveKeywords   []string `json:"positive_keywords"`
	NegativeKeywords   []string `json:"negative_keywords"`
	WatchNotes         []string `json:"watch_notes"`
	MaxItemsPerSource  int      `json:"max_items_per_source"`
	MaxLinesPerSection int      `json:"max_lines_per_section"`
	ReportWidth        int      `json:"report_width"`
	OutputDir          string   `json:"output_dir"`
}

func DefaultSettings() Settings {
	return Settings{
		Sources:    []string{"reddit", "blog", "x", "producthunt"},
		Subreddits: []string{"Artificial", "AI_Agents", "MachineLearning", "Bitcoin", "CryptoCurrency"},
		Feeds: []string{
			"https://techcrunch.com/feed/",
			"https://www.theverge.com/rss/index.xml",
			"https://feeds.arstechnica.com/arstechnica/index",
		},
		PositiveKeywords: []string{"surge", "record", "breakthrough", "rally", "beats", "growth", "adoption", "milestone"},
		NegativeKeywords: []string{"crash", "lawsuit", "layoffs", "ban", "plunge", "selloff", "breach", "recession"},
		WatchNotes: []string{
			"Earnings season continues (AMZN, GOOGL upcoming)",
			"AI capex guidance from cloud providers",
			"Bitcoin sentiment extremes, contrarian plays",
		},
		MaxItemsPerSource:  10,
		MaxLinesPerSection: 3,
		ReportWidth:        64,
		OutputDir:          "briefings",
	}
}

// LoadSettings reads the settings document at path and merges it over the
// defaults, field by field: anything the file leaves out keeps its default.
// A missing file is not an error, defaults apply wholesale.
func LoadSettings(path string) (Settings, error) {
	def := DefaultSettings()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return def, nil
		}
		return def, err
	}

	var file Settings
	if err := json.Unmarshal(data, &file); err != nil {
		return def, err
	}
	return mergeSettings(def, file), nil
}

func mergeSettings(def, file Settings) Settings {
	out := def
	if len(file.Sources) > 0 {
		out.Sources = file.Sources
	}
	if len(file.Subreddits) > 0 {
		out.Subreddits = file.Subreddits
	}
	if len(file.Feeds) > 0 {
		out.Feeds = file.Feeds
	}
	if len(file.PositiveKeywords) > 0 {
		out.PositiveKeywords = file.PositiveKeywords
	}
	if len(file.NegativeKeywords) > 0 {
		out.NegativeKeywords = file.NegativeKeywords
	}
	if len(file.WatchNotes) > 0 {
		out.WatchNotes = file.WatchNotes
	}
	if file.MaxItemsPerSource > 0 {
		out.MaxItemsPerSource = file.MaxItemsPerSource
	}
	if file.MaxLinesPerSection > 0 {
		out.MaxLinesPerSection = file.MaxLinesPerSection
	}
	if file.ReportWidth > 0 {
		out.ReportWidth = file.ReportWidth
	}
	if file.OutputDir != "" {
		out.OutputDir = file.OutputDir
	}
	return out
}

// SourceEnabled reports whether a source id appears in the enabled list.
func (s Settings) SourceEnabled(source string) bool {
	for _, enabled := range s.Sources {
		if normalizeSource(enabled) == source {
			return true
		}
	}
	return false
}

// normalizeSource keeps old settings files working: "twitter" means "x".
func normalizeSource(s string) string {
	if s == "twitter" {
		return "x"
	}
	return s
}
