package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(nil, 16)
	require.NoError(t, err)
	return e
}

func addThree(t *testing.T, e *Engine) {
	t.Helper()
	require.True(t, e.AddSong(1, "Alpha", "AX", 0, 0))
	require.True(t, e.AddSong(2, "Beta", "BX", 0, 0))
	require.True(t, e.AddSong(3, "Gamma", "CX", 0, 0))
}

func TestNewRejectsBadCapacity(t *testing.T) {
	_, err := New(nil, 0)
	assert.Error(t, err)
	_, err = New(nil, -1)
	assert.Error(t, err)
}

func TestEmptyThenAddThenCurrent(t *testing.T) {
	e := newTestEngine(t)

	assert.Equal(t, NoSong, e.CurrentSong())
	assert.Zero(t, e.QueueSize())

	require.True(t, e.AddSong(1, "Alpha", "AX", 0, 0))
	assert.Equal(t, int64(1), e.CurrentSong())
	assert.Equal(t, 1, e.QueueSize())
}

func TestCircularitySkipsWrap(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	start := e.CurrentSong()
	require.True(t, e.SkipNext())
	require.True(t, e.SkipNext())
	require.True(t, e.SkipNext())
	assert.Equal(t, start, e.CurrentSong(), "three skips over three songs wrap around")
	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot())
}

func TestSkipPrevWrapsBackward(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.SkipPrev())
	assert.Equal(t, int64(3), e.CurrentSong())
}

func TestSkipFailsOnEmpty(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.SkipNext())
	assert.False(t, e.SkipPrev())
	assert.Zero(t, e.UndoDepth(), "failed edits record nothing")
}

func TestUndoAddThenRedo(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.Undo())
	assert.Equal(t, []int64{1, 2}, e.QueueSnapshot())
	assert.Equal(t, 2, e.QueueSize())
	assert.Equal(t, 1, e.RedoDepth(), "undone op sits atop the redo stack")

	require.True(t, e.Redo())
	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot())
	assert.Zero(t, e.RedoDepth())
}

func TestUndoAddRestoresPreAddView(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.AddSong(1, "Alpha", "AX", 0, 0))

	size, current, snap := e.QueueSize(), e.CurrentSong(), e.QueueSnapshot()

	require.True(t, e.AddSong(2, "Beta", "BX", 0, 0))
	require.True(t, e.Undo())

	assert.Equal(t, size, e.QueueSize())
	assert.Equal(t, current, e.CurrentSong())
	assert.Equal(t, snap, e.QueueSnapshot())
}

func TestUndoOnEmptyHistory(t *testing.T) {
	e := newTestEngine(t)
	assert.False(t, e.Undo())
	assert.False(t, e.Redo())
}

func TestNewEditClearsRedo(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.Undo())
	require.Equal(t, 1, e.RedoDepth())

	require.True(t, e.AddSong(4, "Delta", "DX", 0, 0))
	assert.Zero(t, e.RedoDepth(), "a fresh edit invalidates the replay line")
}

func TestUndoRemoveReappendsAtTail(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.RemoveSong(2))
	assert.Equal(t, []int64{1, 3}, e.QueueSnapshot())

	require.True(t, e.Undo())
	// position restoration is best-effort: the song returns at the tail
	assert.Equal(t, []int64{1, 3, 2}, e.QueueSnapshot())
}

func TestMoveSequence(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.MoveUp(3))
	assert.Equal(t, []int64{1, 3, 2}, e.QueueSnapshot())

	require.True(t, e.MoveUp(3))
	assert.Equal(t, []int64{3, 1, 2}, e.QueueSnapshot())

	require.True(t, e.MoveDown(3))
	assert.Equal(t, []int64{1, 3, 2}, e.QueueSnapshot())
}

func TestMoveUpThenDownRoundTrips(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.MoveUp(3))
	require.True(t, e.MoveDown(3))
	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot())
}

func TestUndoMoves(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.MoveUp(3))
	require.True(t, e.Undo())
	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot())

	require.True(t, e.MoveDown(1))
	require.True(t, e.Undo())
	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot())
}

func TestMoveNotFound(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	assert.False(t, e.MoveUp(42))
	assert.False(t, e.MoveDown(42))
	assert.False(t, e.RemoveSong(42))
	assert.Equal(t, 3, e.UndoDepth(), "failed edits record nothing")
}

func TestRotateQueue(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	depth := e.UndoDepth()
	require.True(t, e.RotateQueue(true))
	assert.Equal(t, []int64{2, 3, 1}, e.QueueSnapshot())
	assert.Equal(t, depth, e.UndoDepth(), "rotation is not recorded for undo")

	require.True(t, e.RotateQueue(false))
	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot())

	empty := newTestEngine(t)
	assert.False(t, empty.RotateQueue(true))
}

func TestRecommendationsOrdering(t *testing.T) {
	e := newTestEngine(t)

	require.True(t, e.UpdatePriority(10, 3, 4)) // 2*3+4 = 10
	require.True(t, e.UpdatePriority(11, 1, 2)) // 4
	require.True(t, e.UpdatePriority(12, 10, 0)) // 20

	assert.Equal(t, []int64{12, 10, 11}, e.Recommendations(3))
}

func TestRecommendationsClampAndNonDestructive(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.UpdatePriority(1, 1, 0))
	require.True(t, e.UpdatePriority(2, 2, 0))
	require.True(t, e.UpdatePriority(3, 3, 0))

	all := e.Recommendations(0)
	assert.Len(t, all, 3, "non-positive limit means the whole index")
	assert.Equal(t, []int64{3, 2, 1}, all)

	assert.Equal(t, all, e.Recommendations(100))
	assert.Equal(t, []int64{3}, e.Recommendations(1))

	for i := 0; i < 5; i++ {
		e.Recommendations(2)
	}
	assert.Equal(t, 3, e.Snapshot().PopularitySize, "reads must not shrink the live index")
}

func TestRecommendationsDescendingProperty(t *testing.T) {
	e := newTestEngine(t)
	likes := []int64{5, 1, 9, 3, 9, 0, 7}
	for i, l := range likes {
		require.True(t, e.UpdatePriority(int64(100+i), l, int64(i)))
	}

	ids := e.Recommendations(0)
	require.Len(t, ids, len(likes))

	prev := ids[0]
	for _, id := range ids[1:] {
		pa, ok := e.popularity.priorityOf(prev)
		require.True(t, ok)
		pb, ok := e.popularity.priorityOf(id)
		require.True(t, ok)
		assert.GreaterOrEqual(t, pa, pb)
		prev = id
	}
}

func TestUpdatePriorityRecordsOldScore(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.UpdatePriority(5, 1, 1)) // 3
	require.True(t, e.UpdatePriority(5, 4, 2)) // 10

	op, ok := e.undo.peek()
	require.True(t, ok)
	assert.Equal(t, OpUpdatePriority, op.Kind)
	assert.Equal(t, 3.0, op.OldPriority)
}

func TestUpdatePriorityFailsWhenIndexFull(t *testing.T) {
	e, err := New(nil, 2)
	require.NoError(t, err)

	require.True(t, e.UpdatePriority(1, 1, 0))
	require.True(t, e.UpdatePriority(2, 1, 0))
	depth := e.UndoDepth()

	assert.False(t, e.UpdatePriority(3, 1, 0))
	assert.Equal(t, depth, e.UndoDepth(), "failed upsert records nothing")

	assert.True(t, e.UpdatePriority(1, 9, 0), "resident ids still update at capacity")
}

func TestSearchFolding(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.AddSong(7, "Señorita", "Shawn", 0, 0))

	assert.Nil(t, e.SearchSongs("se"), "the ñ is skipped, so the folded key is seorita")
	assert.Equal(t, []int64{7}, e.SearchSongs("seorita"))
	assert.Equal(t, []int64{7}, e.SearchArtists("shawn"))
}

func TestSearchAfterAdd(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.AddSong(1, "Blue Train", "Coltrane", 0, 0))

	assert.Equal(t, []int64{1}, e.SearchSongs("bluetrain"))
	assert.Nil(t, e.SearchSongs("blue"))
}

func TestRemoveLeavesIndicesAlone(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.AddSong(1, "Alpha", "AX", 5, 0))
	require.True(t, e.RemoveSong(1))

	assert.Equal(t, []int64{1}, e.SearchSongs("alpha"), "search index is historical")
	assert.Equal(t, []int64{1}, e.Recommendations(0), "popularity index is historical")
	assert.Zero(t, e.QueueSize())
}

func TestRemoveCurrentAdvancesCursor(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.RemoveSong(1))
	assert.Equal(t, int64(2), e.CurrentSong())
}

func TestSkipRecordsOldCurrent(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	require.True(t, e.SkipNext())
	op, ok := e.undo.peek()
	require.True(t, ok)
	assert.Equal(t, OpSkip, op.Kind)
	assert.Equal(t, int64(1), op.SongID)

	// undo of SKIP is a recorded no-op: the op moves to redo, cursor stays
	require.True(t, e.Undo())
	assert.Equal(t, int64(2), e.CurrentSong())
	assert.Equal(t, 1, e.RedoDepth())
}

func TestDuplicateSongIDs(t *testing.T) {
	e := newTestEngine(t)
	require.True(t, e.AddSong(5, "Twin", "A", 0, 0))
	require.True(t, e.AddSong(5, "Twin", "A", 0, 0))

	assert.Equal(t, []int64{5, 5}, e.QueueSnapshot())
	assert.Equal(t, 1, e.Snapshot().PopularitySize, "the heap holds one entry per id")

	require.True(t, e.RemoveSong(5))
	assert.Equal(t, []int64{5}, e.QueueSnapshot(), "first occurrence goes")
}

func TestUpcomingBufferIndependence(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)

	e.EnqueueUpcoming(2)
	e.EnqueueUpcoming(3)

	id, ok := e.PeekUpcoming()
	require.True(t, ok)
	assert.Equal(t, int64(2), id)

	assert.Equal(t, []int64{2, 3}, e.UpcomingSnapshot())

	id, ok = e.DequeueUpcoming()
	require.True(t, ok)
	assert.Equal(t, int64(2), id)

	assert.Equal(t, []int64{1, 2, 3}, e.QueueSnapshot(), "prefetch hints never touch the queue")
	assert.Zero(t, e.RedoDepth())
}

func TestSnapshotView(t *testing.T) {
	e := newTestEngine(t)
	addThree(t, e)
	require.True(t, e.SkipNext())
	e.EnqueueUpcoming(3)

	st := e.Snapshot()
	assert.Equal(t, []int64{1, 2, 3}, st.Queue)
	assert.Equal(t, int64(2), st.Current)
	assert.Equal(t, 3, st.PopularitySize)
	assert.Equal(t, 4, st.UndoDepth)
	assert.Zero(t, st.RedoDepth)
	assert.Equal(t, []int64{3}, st.Upcoming)
}

// Mixed-operation sequence holding the cross-structure invariants between calls.
func TestInterleavedOperationsStayConsistent(t *testing.T) {
	e := newTestEngine(t)

	require.True(t, e.AddSong(1, "One", "A", 1, 0))
	require.True(t, e.AddSong(2, "Two", "B", 2, 0))
	require.True(t, e.AddSong(3, "Three", "C", 3, 0))
	require.True(t, e.SkipNext())
	require.True(t, e.MoveUp(3))
	require.True(t, e.RemoveSong(1))
	require.True(t, e.Undo())
	require.True(t, e.UpdatePriority(2, 10, 0))
	require.True(t, e.RotateQueue(true))

	snap := e.QueueSnapshot()
	assert.Equal(t, e.QueueSize(), len(snap))
	assert.Contains(t, snap, e.CurrentSong())
	assert.Equal(t, []int64{2, 3, 1}, e.Recommendations(0))
}
