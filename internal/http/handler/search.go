package handler

import (
	"net/http"
	"strconv"

	"github.com/edirooss/museq-server/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SearchHandler serves prefix search and recommendation reads. Both consult
// a single engine structure and never touch history.
type SearchHandler struct {
	log *zap.Logger
	svc *service.QueueService
}

// NewSearchHandler constructs a SearchHandler instance.
func NewSearchHandler(log *zap.Logger, svc *service.QueueService) *SearchHandler {
	return &SearchHandler{log: log.Named("search"), svc: svc}
}

// SearchSongs handles GET /search/songs?prefix=p. The prefix matches the
// case-folded, letters-only form of the title; exact terminal matches only.
func (h *SearchHandler) SearchSongs(c *gin.Context) {
	h.respond(c, h.svc.SearchSongs(c.Query("prefix")))
}

// SearchArtists handles GET /search/artists?prefix=p.
func (h *SearchHandler) SearchArtists(c *gin.Context) {
	h.respond(c, h.svc.SearchArtists(c.Query("prefix")))
}

// Recommendations handles GET /recommendations?limit=N. A missing or
// non-positive limit returns the whole index, descending by priority.
func (h *SearchHandler) Recommendations(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			c.Error(err)
			c.JSON(http.StatusBadRequest, gin.H{"message": "invalid limit"})
			return
		}
		limit = n
	}

	h.respond(c, h.svc.Recommendations(limit))
}

func (h *SearchHandler) respond(c *gin.Context, ids []int64) {
	if ids == nil {
		ids = []int64{}
	}
	c.Header("X-Total-Count", strconv.Itoa(len(ids)))
	c.JSON(http.StatusOK, ids)
}
