package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/dailyintel/briefing/internal/storage"
)

type Server struct {
	store *storage.Store
}

func NewServer(store *storage.Store) *Server {
	return &Server{store: store}
}

func (s *Server) RegisterRoutes(r *gin.Engine) {
	r.GET("/health", s.health)

	v1 := r.Group("/api/v1")
	{
		v1.GET("/briefings", s.listBriefings)
		v1.GET("/briefings/latest", s.latestBriefing)
		v1.GET("/mood", s.mood)
		v1.GET("/items", s.listItems)
	}
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (s *Server) listBriefings(c *gin.Context) {
	limit := queryInt(c, "limit", 10)

	list, err := s.store.ListBriefings(limit)
	if err != nil {
		internalError(c)
		return
	}
	ok(c, list)
}

func (s *Server) latestBriefing(c *gin.Context) {
	b, err := s.store.LatestBriefing()
	if err != nil {
		internalError(c)
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no briefing archived yet",
		})
		return
	}
	ok(c, b)
}

// mood returns the sentiment snapshot of the latest archived briefing.
func (s *Server) mood(c *gin.Context) {
	b, err := s.store.LatestBriefing()
	if err != nil {
		internalError(c)
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{
			"code":    "not_found",
			"message": "no briefing archived yet",
		})
		return
	}
	ok(c, gin.H{
		"date":  b.Date,
		"mood":  b.Mood,
		"score": b.Score,
	})
}

func (s *Server) listItems(c *gin.Context) {
	source := c.Query("source")
	limit := queryInt(c, "limit", 20)

	items, err := s.store.ListItems(source, limit)
	if err != nil {
		internalError(c)
		return
	}
	ok(c, items)
}

func queryInt(c *gin.Context, key string, def int) int {
	n, err := strconv.Atoi(c.DefaultQuery(key, strconv.Itoa(def)))
	if err != nil || n <= 0 {
		return def
	}
	return n
}

func ok(c *gin.Context, data any) {
	c.JSON(http.StatusOK, gin.H{
		"code":    "ok",
		"message": "success",
		"data":    data,
	})
}

func internalError(c *gin.Context) {
	c.JSON(http.StatusInternalServerError, gin.H{
		"code":    "internal_error",
		"message": "internal server error",
	})
}
