package storage

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/datatypes"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/dailyintel/briefing/internal/processor"
)

const listCacheTTL = 5 * time.Minute

// Briefing is one archived report, one row per day.
type Briefing struct {
	ID          uint      `gorm:"primaryKey" json:"id"`
	Date        string    `gorm:"size:10;uniqueIndex" json:"date"` // YYYY-MM-DD
	Mood        string    `gorm:"size:32" json:"mood"`
	Score       int       `json:"score"`
	Body        string    `gorm:"type:text" json:"body"`
	GeneratedAt time.Time `json:"generatedAt"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Item is one collected news item; URL is the idempotency key across runs.
type Item struct {
	ID            string            `gorm:"primaryKey;size:40" json:"id"`
	Title         string            `gorm:"size:512" json:"title"`
	URL           string            `gorm:"size:1024;uniqueIndex" json:"url"`
	Source        string            `gorm:"size:64;index" json:"source"`
	Snippet       string            `gorm:"size:600" json:"snippet"`
	PublishedAt   time.Time         `gorm:"index" json:"publishedAt"`
	PublishedDate string            `gorm:"size:10;index" json:"publishedDate"`
	HotScore      float64           `gorm:"index" json:"hotScore"`
	ExtraData     datatypes.JSONMap `gorm:"type:jsonb" json:"extraData"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type Store struct {
	DB    *gorm.DB
	Redis *redis.Client
}

// NewStore opens the archive database and, when an address is given, the
// redis cache. A dead redis degrades to DB-only with a warning.
func NewStore(dsn, redisAddr string) (*Store, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	if err := db.AutoMigrate(&Briefing{}, &Item{}); err != nil {
		return nil, err
	}

	var rdb *redis.Client
	if redisAddr != "" {
		rdb = redis.NewClient(&redis.Options{Addr: redisAddr})

		ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
		defer cancel()
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.Printf("warn: redis ping failed: %v", err)
		}
	}

	return &Store{DB: db, Redis: rdb}, nil
}

// toValidUTF8 guards against invalid byte sequences reaching PostgreSQL;
// scraped sources occasionally hand back broken encodings.
func toValidUTF8(s string) string {
	return strings.ToValidUTF8(s, "�")
}

// truncateRunesDB caps a string at a rune count so it fits the column width
// even if an upstream limit was missed.
func truncateRunesDB(s string, limit int) string {
	if limit <= 0 {
		return ""
	}
	s = strings.TrimSpace(s)
	rs := []rune(s)
	if len(rs) <= limit {
		return s
	}
	return string(rs[:limit])
}

// SaveBriefing upserts the day's briefing keyed on its date.
func (s *Store) SaveBriefing(date, mood string, score int, body string, generatedAt time.Time) error {
	b := &Briefing{
		Date:        date,
		Mood:        mood,
		Score:       score,
		Body:        toValidUTF8(body),
		GeneratedAt: generatedAt,
	}
	if err := s.DB.Where("date = ?", date).FirstOrCreate(b).Error; err != nil {
		return err
	}
	return s.DB.Model(b).Updates(map[string]any{
		"mood":         mood,
		"score":        score,
		"body":         b.Body,
		"generated_at": generatedAt,
	}).Error
}

// SaveItems upserts collected items; already-seen URLs get refreshed scores.
func (s *Store) SaveItems(items []processor.ProcessedItem) error {
	for _, it := range items {
		title := truncateRunesDB(toValidUTF8(it.Title), 512)
		snippet := truncateRunesDB(toValidUTF8(it.Snippet), 600)
		n := &Item{
			ID:            it.ID,
			Title:         title,
			URL:           it.URL,
			Source:        it.Source,
			Snippet:       snippet,
			PublishedAt:   it.PublishedAt,
			PublishedDate: it.PublishedAt.Format("2006-01-02"),
			HotScore:      it.HotScore,
			ExtraData:     datatypes.JSONMap(it.RawData),
		}

		if err := s.DB.Where("url = ?", it.URL).FirstOrCreate(n).Error; err != nil {
			return err
		}
		_ = s.DB.Model(n).Updates(map[string]any{
			"title":     title,
			"snippet":   snippet,
			"hot_score": it.HotScore,
		}).Error
	}

	// Cached lists expire on their own short TTL; no invalidation sweep.
	return nil
}

// ListBriefings returns the archive newest-first, with a redis read-through.
func (s *Store) ListBriefings(limit int) ([]Briefing, error) {
	if limit <= 0 || limit > 365 {
		limit = 10
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("briefing:list:%d", limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Briefing
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	var list []Briefing
	if err := s.DB.Order("date DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}

// LatestBriefing returns the most recent archived briefing, or nil when the
// archive is empty.
func (s *Store) LatestBriefing() (*Briefing, error) {
	list, err := s.ListBriefings(1)
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, nil
	}
	return &list[0], nil
}

// ListItems returns archived items, optionally filtered by source, hottest
// day first, with the same redis read-through as ListBriefings.
func (s *Store) ListItems(source string, limit int) ([]Item, error) {
	if limit <= 0 || limit > 1000 {
		limit = 20
	}

	ctx := context.Background()
	cacheKey := fmt.Sprintf("item:list:%s:%d", source, limit)

	if s.Redis != nil {
		if bs, err := s.Redis.Get(ctx, cacheKey).Bytes(); err == nil {
			var cached []Item
			if err := json.Unmarshal(bs, &cached); err == nil {
				return cached, nil
			}
		}
	}

	db := s.DB.Model(&Item{})
	if source != "" {
		db = db.Where("source = ?", source)
	}

	var list []Item
	if err := db.Order("published_date DESC").Order("hot_score DESC").Limit(limit).Find(&list).Error; err != nil {
		return nil, err
	}

	if s.Redis != nil && len(list) > 0 {
		if bs, err := json.Marshal(list); err == nil {
			_ = s.Redis.Set(ctx, cacheKey, bs, listCacheTTL).Err()
		}
	}

	return list, nil
}
