package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/edirooss/museq-server/internal/engine"
	"github.com/edirooss/museq-server/internal/service"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// QueueHandler provides the HTTP surface over the playback queue.
//
// Supported operations:
//   - GET    /queue                     → ordered snapshot from head
//   - GET    /queue/current             → the song under the cursor
//   - POST   /queue/songs               → append a song
//   - DELETE /queue/songs/{id}          → remove first occurrence
//   - POST   /queue/skip-next|skip-prev → move the cursor
//   - POST   /queue/songs/{id}/move-up|move-down
//   - POST   /queue/rotate              → shift the window
//   - PUT    /queue/songs/{id}/priority → re-score for recommendations
//   - POST   /queue/undo, /queue/redo
//   - GET    /queue/upcoming, POST /queue/upcoming, POST /queue/upcoming/next
type QueueHandler struct {
	log *zap.Logger
	svc *service.QueueService
}

// NewQueueHandler constructs a QueueHandler instance.
func NewQueueHandler(log *zap.Logger, svc *service.QueueService) *QueueHandler {
	return &QueueHandler{log: log.Named("queue"), svc: svc}
}

// GetQueue handles GET /queue.
func (h *QueueHandler) GetQueue(c *gin.Context) {
	snap := h.svc.Snapshot()
	c.Header("X-Total-Count", strconv.Itoa(len(snap)))
	c.JSON(http.StatusOK, gin.H{
		"queue":   snap,
		"current": h.svc.Current(),
	})
}

// GetCurrent handles GET /queue/current. A sentinel id of -1 means the
// queue is empty; that maps to 404 rather than a magic body.
func (h *QueueHandler) GetCurrent(c *gin.Context) {
	id := h.svc.Current()
	if id == engine.NoSong {
		c.JSON(http.StatusNotFound, gin.H{"message": "queue is empty"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// AddSong handles POST /queue/songs.
func (h *QueueHandler) AddSong(c *gin.Context) {
	var req service.AddSongParams
	if err := bind(c, &req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.svc.AddSong(c.Request.Context(), req); err != nil {
		c.Error(err)
		c.JSON(http.StatusUnprocessableEntity, gin.H{"message": err.Error()})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"id": req.ID})
}

// RemoveSong handles DELETE /queue/songs/:id.
func (h *QueueHandler) RemoveSong(c *gin.Context) {
	id := songID(c)
	if err := h.svc.RemoveSong(id); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// SkipNext handles POST /queue/skip-next.
func (h *QueueHandler) SkipNext(c *gin.Context) {
	h.skip(c, true)
}

// SkipPrev handles POST /queue/skip-prev.
func (h *QueueHandler) SkipPrev(c *gin.Context) {
	h.skip(c, false)
}

func (h *QueueHandler) skip(c *gin.Context, forward bool) {
	if err := h.svc.Skip(forward); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"current": h.svc.Current()})
}

// MoveUp handles POST /queue/songs/:id/move-up.
func (h *QueueHandler) MoveUp(c *gin.Context) {
	if err := h.svc.MoveUp(songID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": h.svc.Snapshot()})
}

// MoveDown handles POST /queue/songs/:id/move-down.
func (h *QueueHandler) MoveDown(c *gin.Context) {
	if err := h.svc.MoveDown(songID(c)); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": h.svc.Snapshot()})
}

// Rotate handles POST /queue/rotate.
func (h *QueueHandler) Rotate(c *gin.Context) {
	var req struct {
		Forward bool `json:"forward"`
	}
	if err := bind(c, &req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.svc.Rotate(req.Forward); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": h.svc.Snapshot()})
}

// UpdatePriority handles PUT /queue/songs/:id/priority.
func (h *QueueHandler) UpdatePriority(c *gin.Context) {
	var req struct {
		Likes     int64 `json:"likes"`
		PlayCount int64 `json:"play_count"`
	}
	if err := bind(c, &req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	if err := h.svc.UpdatePriority(songID(c), req.Likes, req.PlayCount); err != nil {
		h.fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// Undo handles POST /queue/undo.
func (h *QueueHandler) Undo(c *gin.Context) {
	if err := h.svc.Undo(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": h.svc.Snapshot()})
}

// Redo handles POST /queue/redo.
func (h *QueueHandler) Redo(c *gin.Context) {
	if err := h.svc.Redo(); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"queue": h.svc.Snapshot()})
}

// GetUpcoming handles GET /queue/upcoming.
func (h *QueueHandler) GetUpcoming(c *gin.Context) {
	hints := h.svc.Upcoming()
	c.Header("X-Total-Count", strconv.Itoa(len(hints)))
	c.JSON(http.StatusOK, hints)
}

// AddUpcoming handles POST /queue/upcoming.
func (h *QueueHandler) AddUpcoming(c *gin.Context) {
	var req struct {
		ID int64 `json:"id"`
	}
	if err := bind(c, &req); err != nil {
		c.Error(err)
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	h.svc.EnqueueUpcoming(req.ID)
	c.Status(http.StatusAccepted)
}

// PopUpcoming handles POST /queue/upcoming/next.
func (h *QueueHandler) PopUpcoming(c *gin.Context) {
	id, err := h.svc.NextUpcoming()
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id})
}

// fail maps service errors onto status codes: missing entities are 404,
// empty-structure and full-index preconditions are 409, the rest are 500.
func (h *QueueHandler) fail(c *gin.Context, err error) {
	c.Error(err)

	switch {
	case errors.Is(err, service.ErrSongNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": err.Error()})
	case errors.Is(err, service.ErrEmptyQueue),
		errors.Is(err, service.ErrQueueTooSmall),
		errors.Is(err, service.ErrPopularityFull),
		errors.Is(err, service.ErrNothingToUndo),
		errors.Is(err, service.ErrNothingToRedo),
		errors.Is(err, service.ErrNoUpcoming):
		c.JSON(http.StatusConflict, gin.H{"message": err.Error()})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"message": err.Error()})
	}
}

// songID returns the already-validated ":id" path param (see
// middleware.RequireValidSongID).
func songID(c *gin.Context) int64 {
	id, _ := strconv.ParseInt(c.Param("id"), 10, 64)
	return id
}
