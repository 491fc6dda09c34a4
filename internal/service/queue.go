package service

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/edirooss/museq-server/internal/domain/song"
	"github.com/edirooss/museq-server/internal/engine"
	"go.uber.org/zap"
)

var (
	ErrSongNotFound   = errors.New("song not found in queue")
	ErrEmptyQueue     = errors.New("queue is empty")
	ErrQueueTooSmall  = errors.New("queue too small to rotate")
	ErrPopularityFull = errors.New("popularity index at capacity")
	ErrNothingToUndo  = errors.New("nothing to undo")
	ErrNothingToRedo  = errors.New("nothing to redo")
	ErrNoUpcoming     = errors.New("no upcoming songs buffered")
)

// SongCatalog is the slice of the external catalog the queue service
// consumes: metadata lookup by id. *redis.SongRepository satisfies it.
type SongCatalog interface {
	GetByID(ctx context.Context, id int64) (*song.Song, error)
}

// QueueService owns the engine and is its single serialization point: the
// engine presumes exclusive access per call, so every method spans its
// engine work with one mutex. The catalog (optional) enriches add requests
// that arrive as a bare song id.
type QueueService struct {
	log     *zap.Logger
	catalog SongCatalog

	mu  sync.Mutex
	eng *engine.Engine
}

// NewQueueService builds the service around a fresh engine.
func NewQueueService(log *zap.Logger, heapCapacity int, catalog SongCatalog) (*QueueService, error) {
	if log == nil {
		log = zap.NewNop()
	}
	log = log.Named("queue-service")

	eng, err := engine.New(log, heapCapacity)
	if err != nil {
		return nil, fmt.Errorf("engine: %w", err)
	}

	return &QueueService{log: log, catalog: catalog, eng: eng}, nil
}

// AddSongParams carries an add request. Title/Artist may be empty when the
// caller expects catalog enrichment.
type AddSongParams struct {
	ID        int64  `json:"id"`
	Title     string `json:"title"`
	Artist    string `json:"artist"`
	Likes     int64  `json:"likes"`
	PlayCount int64  `json:"play_count"`
}

// AddSong appends a song to the playback queue. When title and artist are
// both empty and a catalog is wired, the request is enriched from it;
// an id unknown to the catalog is rejected rather than indexed blank.
func (s *QueueService) AddSong(ctx context.Context, p AddSongParams) error {
	if p.Title == "" && p.Artist == "" && s.catalog != nil {
		doc, err := s.catalog.GetByID(ctx, p.ID)
		if err != nil {
			return fmt.Errorf("catalog lookup: %w", err)
		}
		p.Title, p.Artist = doc.Title, doc.Artist
		p.Likes, p.PlayCount = doc.Likes, doc.PlayCount
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.AddSong(p.ID, p.Title, p.Artist, p.Likes, p.PlayCount) {
		return fmt.Errorf("add song %d: engine rejected", p.ID)
	}
	return nil
}

// RemoveSong unlinks the first queue entry carrying id.
func (s *QueueService) RemoveSong(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.RemoveSong(id) {
		return ErrSongNotFound
	}
	return nil
}

// Skip advances (or retreats) the playback cursor one song.
func (s *QueueService) Skip(forward bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var ok bool
	if forward {
		ok = s.eng.SkipNext()
	} else {
		ok = s.eng.SkipPrev()
	}
	if !ok {
		return ErrEmptyQueue
	}
	return nil
}

// MoveUp swaps the song with its predecessor in the ring.
func (s *QueueService) MoveUp(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.MoveUp(id) {
		return ErrSongNotFound
	}
	return nil
}

// MoveDown swaps the song with its successor in the ring.
func (s *QueueService) MoveDown(id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.MoveDown(id) {
		return ErrSongNotFound
	}
	return nil
}

// Rotate shifts the queue window without touching history.
func (s *QueueService) Rotate(forward bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.RotateQueue(forward) {
		return ErrQueueTooSmall
	}
	return nil
}

// UpdatePriority re-scores a song in the popularity index.
func (s *QueueService) UpdatePriority(id, likes, playCount int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.UpdatePriority(id, likes, playCount) {
		return ErrPopularityFull
	}
	return nil
}

// Undo reverses the newest recorded edit.
func (s *QueueService) Undo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.Undo() {
		return ErrNothingToUndo
	}
	return nil
}

// Redo re-executes the newest undone edit.
func (s *QueueService) Redo() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.eng.Redo() {
		return ErrNothingToRedo
	}
	return nil
}

// Current returns the cursor's song id, engine.NoSong when empty.
func (s *QueueService) Current() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.CurrentSong()
}

// Snapshot returns the queue's song ids in ring order from head.
func (s *QueueService) Snapshot() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.QueueSnapshot()
}

// Size returns the number of queued entries.
func (s *QueueService) Size() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.QueueSize()
}

// Recommendations returns up to limit ids by descending popularity.
func (s *QueueService) Recommendations(limit int) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Recommendations(limit)
}

// SearchSongs looks up songs whose folded title equals prefix.
func (s *QueueService) SearchSongs(prefix string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.SearchSongs(prefix)
}

// SearchArtists looks up songs whose folded artist equals prefix.
func (s *QueueService) SearchArtists(prefix string) []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.SearchArtists(prefix)
}

// EnqueueUpcoming appends a prefetch hint.
func (s *QueueService) EnqueueUpcoming(id int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.eng.EnqueueUpcoming(id)
}

// NextUpcoming consumes the oldest prefetch hint.
func (s *QueueService) NextUpcoming() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id, ok := s.eng.DequeueUpcoming()
	if !ok {
		return engine.NoSong, ErrNoUpcoming
	}
	return id, nil
}

// Upcoming returns the buffered prefetch hints front-to-back.
func (s *QueueService) Upcoming() []int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.UpcomingSnapshot()
}

// DebugState exposes the engine's primitive view for diagnostics.
func (s *QueueService) DebugState() engine.State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.eng.Snapshot()
}
