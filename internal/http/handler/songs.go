package handler

import (
	"errors"
	"net/http"
	"strconv"

	museqredis "github.com/edirooss/museq-server/internal/redis"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// SongsHandler serves catalog reads. The catalog is an external
// collaborator of the queue engine; these routes never touch the queue.
type SongsHandler struct {
	log  *zap.Logger
	repo *museqredis.SongRepository
}

// NewSongsHandler constructs a SongsHandler instance.
func NewSongsHandler(log *zap.Logger, repo *museqredis.SongRepository) *SongsHandler {
	return &SongsHandler{log: log.Named("songs"), repo: repo}
}

// GetSongList handles GET /songs.
func (h *SongsHandler) GetSongList(c *gin.Context) {
	songs, err := h.repo.GetAll(c.Request.Context())
	if err != nil {
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}
	c.Header("X-Total-Count", strconv.Itoa(len(songs)))
	if len(songs) == 0 {
		c.JSON(http.StatusOK, []any{})
		return
	}
	c.JSON(http.StatusOK, songs)
}

// GetSong handles GET /songs/:id.
func (h *SongsHandler) GetSong(c *gin.Context) {
	s, err := h.repo.GetByID(c.Request.Context(), songID(c))
	if err != nil {
		if errors.Is(err, museqredis.ErrSongNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
			return
		}
		c.Error(err)
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, s)
}
