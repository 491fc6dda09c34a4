// Package engine implements the in-memory music queue engine: a circular
// playback queue with a cursor, a popularity max-heap, two prefix tries
// (titles, artists), undo/redo operation stacks and a prefetch FIFO, all
// coordinated by the Engine facade.
//
// The engine owns no I/O and is not safe for concurrent use; callers
// serialize access around every public call (see service.QueueService).
package engine

import (
	"fmt"

	"github.com/edirooss/museq-server/internal/domain/song"
	"go.uber.org/zap"
)

// NoSong is the sentinel returned by CurrentSong on an empty queue.
const NoSong int64 = -1

// Engine is the sole mutator of the composed structures. Every queue or
// priority edit records exactly one reverse operation on the undo stack
// (clearing redo); rotation and prefetch hints are not recorded, and read
// calls record nothing.
type Engine struct {
	log *zap.Logger

	queue      *playbackQueue
	popularity *popularityHeap
	titles     *searchTrie
	artists    *searchTrie
	undo       *opStack
	redo       *opStack
	upcoming   *upcomingBuffer
}

// New builds an engine whose popularity index tracks at most heapCapacity
// distinct song ids.
func New(log *zap.Logger, heapCapacity int) (*Engine, error) {
	if heapCapacity <= 0 {
		return nil, fmt.Errorf("heap capacity must be > 0, got %d", heapCapacity)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &Engine{
		log:        log.Named("engine"),
		queue:      newPlaybackQueue(),
		popularity: newPopularityHeap(heapCapacity),
		titles:     newSearchTrie(),
		artists:    newSearchTrie(),
		undo:       newOpStack(),
		redo:       newOpStack(),
		upcoming:   newUpcomingBuffer(),
	}, nil
}

// record pushes the reverse operation for a committed edit and clears redo;
// a fresh edit invalidates any replay line.
func (e *Engine) record(op Operation) {
	e.undo.push(op)
	e.redo.clear()
}

// AddSong appends the song to the queue, indexes its title and artist, and
// upserts its popularity score. The queue edit is the commit point: the
// indices only see songs the queue accepted. A full popularity index does
// not fail the add — it is an index, not a mirror — the song just goes
// unranked.
func (e *Engine) AddSong(id int64, title, artist string, likes, playCount int64) bool {
	entry := e.queue.insertEnd(id)
	if entry == nil {
		return false
	}

	e.titles.insert(title, id)
	e.artists.insert(artist, id)

	prio := song.Priority(likes, playCount)
	if !e.popularity.updatePriority(id, prio) {
		e.log.Warn("popularity index full, song left unranked", zap.Int64("song_id", id))
	}

	e.record(Operation{Kind: OpAdd, SongID: id, OldPosition: e.queue.size - 1, OldPriority: prio})
	e.logOp(OpAdd, id)
	return true
}

// RemoveSong unlinks the first queue entry carrying id. The tries and the
// popularity heap keep the song; both indices are historical.
func (e *Engine) RemoveSong(id int64) bool {
	entry := e.queue.findByID(id)
	if entry == nil {
		return false
	}

	pos := e.queue.positionOf(entry)
	e.queue.remove(entry)

	e.record(Operation{Kind: OpRemove, SongID: id, OldPosition: pos})
	e.logOp(OpRemove, id)
	return true
}

// SkipNext advances the cursor one link forward. Fails only on an empty
// queue; on a single-entry ring it lands back on the same song.
func (e *Engine) SkipNext() bool {
	return e.skip(true)
}

// SkipPrev retreats the cursor one link.
func (e *Engine) SkipPrev() bool {
	return e.skip(false)
}

func (e *Engine) skip(forward bool) bool {
	if e.queue.size == 0 {
		return false
	}

	old := e.queue.current.songID
	if forward {
		e.queue.current = e.queue.current.next
	} else {
		e.queue.current = e.queue.current.prev
	}

	e.record(Operation{Kind: OpSkip, SongID: old, OldPosition: -1})
	e.logOp(OpSkip, old)
	return true
}

// MoveUp swaps the first entry carrying id with its predecessor.
func (e *Engine) MoveUp(id int64) bool {
	entry := e.queue.findByID(id)
	if entry == nil {
		return false
	}

	e.queue.moveUp(entry)
	e.record(Operation{Kind: OpMoveUp, SongID: id, OldPosition: -1})
	e.logOp(OpMoveUp, id)
	return true
}

// MoveDown swaps the first entry carrying id with its successor. Moving the
// tail down relocates it before the head; the ring has no edge to fall off.
func (e *Engine) MoveDown(id int64) bool {
	entry := e.queue.findByID(id)
	if entry == nil {
		return false
	}

	e.queue.moveDown(entry)
	e.record(Operation{Kind: OpMoveDown, SongID: id, OldPosition: -1})
	e.logOp(OpMoveDown, id)
	return true
}

// RotateQueue shifts the head/tail window one link. Not recorded for undo.
// Returns false when fewer than two entries make rotation meaningless.
func (e *Engine) RotateQueue(forward bool) bool {
	if e.queue.size < 2 {
		return false
	}
	e.queue.rotate(forward)
	e.log.Debug("queue operation", zap.String("op", "rotate"), zap.Bool("forward", forward))
	return true
}

// UpdatePriority re-scores id in the popularity index (inserting it when
// unseen) and records the previous score. Returns false when the song was
// unseen and the index is at capacity.
func (e *Engine) UpdatePriority(id int64, likes, playCount int64) bool {
	prio := song.Priority(likes, playCount)

	old, existed := e.popularity.priorityOf(id)
	if !existed {
		old = prio
	}
	if !e.popularity.updatePriority(id, prio) {
		return false
	}

	e.record(Operation{Kind: OpUpdatePriority, SongID: id, OldPosition: -1, OldPriority: old})
	e.logOp(OpUpdatePriority, id)
	return true
}

// Undo pops the newest recorded edit, echoes it onto the redo stack, and
// applies its reverse through the unrecorded primitives, so no nested
// record is ever pushed and a later Redo sees the original op.
//
// Reversal table: ADD removes the first matching entry; REMOVE re-appends
// at the tail (position restoration is best-effort); MOVE_UP and MOVE_DOWN
// invert each other; SKIP and UPDATE_PRIORITY do not reverse. When the
// song an op names has since left the queue the reversal is skipped and the
// op is still consumed.
func (e *Engine) Undo() bool {
	op, ok := e.undo.pop()
	if !ok {
		return false
	}
	e.redo.push(op)

	switch op.Kind {
	case OpAdd:
		if entry := e.queue.findByID(op.SongID); entry != nil {
			e.queue.remove(entry)
		}
	case OpRemove:
		e.queue.insertEnd(op.SongID)
	case OpMoveUp:
		e.queue.moveDown(e.queue.findByID(op.SongID))
	case OpMoveDown:
		e.queue.moveUp(e.queue.findByID(op.SongID))
	case OpSkip, OpUpdatePriority:
		// no reverse direction for these kinds
	}

	e.log.Debug("undo", zap.Stringer("kind", op.Kind), zap.Int64("song_id", op.SongID))
	return true
}

// Redo pops the newest undone edit and re-executes it without re-recording.
// Re-executed ADDs only re-enter the queue — the tries and the heap never
// dropped the song. SKIP replays as a forward skip; UPDATE_PRIORITY carries
// only the pre-edit score, so it has nothing to replay.
func (e *Engine) Redo() bool {
	op, ok := e.redo.pop()
	if !ok {
		return false
	}

	switch op.Kind {
	case OpAdd:
		e.queue.insertEnd(op.SongID)
	case OpRemove:
		if entry := e.queue.findByID(op.SongID); entry != nil {
			e.queue.remove(entry)
		}
	case OpMoveUp:
		e.queue.moveUp(e.queue.findByID(op.SongID))
	case OpMoveDown:
		e.queue.moveDown(e.queue.findByID(op.SongID))
	case OpSkip:
		if e.queue.size > 0 {
			e.queue.current = e.queue.current.next
		}
	case OpUpdatePriority:
		// record holds the old score only; nothing to replay
	}

	e.log.Debug("redo", zap.Stringer("kind", op.Kind), zap.Int64("song_id", op.SongID))
	return true
}

// CurrentSong returns the cursor's song id, or NoSong on an empty queue.
func (e *Engine) CurrentSong() int64 {
	if e.queue.current == nil {
		return NoSong
	}
	return e.queue.current.songID
}

// QueueSize returns the number of queue entries.
func (e *Engine) QueueSize() int {
	return e.queue.size
}

// QueueSnapshot returns the song ids in ring order starting at head.
func (e *Engine) QueueSnapshot() []int64 {
	return e.queue.snapshot()
}

// Recommendations returns up to limit song ids in non-increasing priority
// order; ties keep heap array order (left-child preference). limit <= 0
// means everything, mirroring the full index. Extraction runs on a clone,
// so the live index is invariant under any number of calls.
func (e *Engine) Recommendations(limit int) []int64 {
	n := e.popularity.len()
	if limit <= 0 || limit > n {
		limit = n
	}

	c := e.popularity.clone()
	out := make([]int64, 0, limit)
	for i := 0; i < limit; i++ {
		out = append(out, c.extractMax().songID)
	}
	return out
}

// SearchSongs returns the ids of songs whose folded title equals prefix,
// newest insertion first.
func (e *Engine) SearchSongs(prefix string) []int64 {
	return e.titles.searchPrefix(prefix)
}

// SearchArtists is SearchSongs over the artist index.
func (e *Engine) SearchArtists(prefix string) []int64 {
	return e.artists.searchPrefix(prefix)
}

// EnqueueUpcoming appends a prefetch hint. Hints never touch the queue.
func (e *Engine) EnqueueUpcoming(id int64) {
	e.upcoming.enqueue(id)
}

// DequeueUpcoming pops the oldest prefetch hint.
func (e *Engine) DequeueUpcoming() (int64, bool) {
	return e.upcoming.dequeue()
}

// PeekUpcoming returns the oldest prefetch hint without consuming it.
func (e *Engine) PeekUpcoming() (int64, bool) {
	return e.upcoming.peek()
}

// UpcomingSnapshot returns the buffered hints front-to-back.
func (e *Engine) UpcomingSnapshot() []int64 {
	return e.upcoming.items()
}

// UndoDepth returns the number of undoable records.
func (e *Engine) UndoDepth() int {
	return e.undo.len()
}

// RedoDepth returns the number of redoable records.
func (e *Engine) RedoDepth() int {
	return e.redo.len()
}

// State is a primitive view of the engine for diagnostics.
type State struct {
	Queue          []int64
	Current        int64
	PopularitySize int
	UndoDepth      int
	RedoDepth      int
	Upcoming       []int64
}

// Snapshot collects a State. Read-only; touches no history.
func (e *Engine) Snapshot() State {
	return State{
		Queue:          e.queue.snapshot(),
		Current:        e.CurrentSong(),
		PopularitySize: e.popularity.len(),
		UndoDepth:      e.undo.len(),
		RedoDepth:      e.redo.len(),
		Upcoming:       e.upcoming.items(),
	}
}

func (e *Engine) logOp(kind OpKind, id int64) {
	e.log.Debug("queue operation", zap.Stringer("op", kind), zap.Int64("song_id", id))
}
