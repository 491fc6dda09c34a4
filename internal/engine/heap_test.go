package engine

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHeapRejectsNonPositiveCapacity(t *testing.T) {
	assert.Nil(t, newPopularityHeap(0))
	assert.Nil(t, newPopularityHeap(-3))
}

func TestHeapInsertAndExtractDescending(t *testing.T) {
	h := newPopularityHeap(8)

	require.True(t, h.insert(1, 10))
	require.True(t, h.insert(2, 4))
	require.True(t, h.insert(3, 20))
	require.True(t, h.insert(4, 15))

	var got []int64
	for h.len() > 0 {
		got = append(got, h.extractMax().songID)
	}
	assert.Equal(t, []int64{3, 4, 1, 2}, got)
}

func TestHeapSentinelsOnEmpty(t *testing.T) {
	h := newPopularityHeap(2)

	assert.Equal(t, noEntry, h.peek())
	assert.Equal(t, noEntry, h.extractMax())
	assert.Equal(t, int64(-1), noEntry.songID)
	assert.Equal(t, -1.0, noEntry.priority)
}

func TestHeapCapacityIsFixed(t *testing.T) {
	h := newPopularityHeap(2)

	require.True(t, h.insert(1, 1))
	require.True(t, h.insert(2, 2))
	assert.False(t, h.insert(3, 3), "insert past capacity must fail")
	assert.Equal(t, 2, h.len())

	// updates to resident ids still work at capacity
	assert.True(t, h.updatePriority(1, 9))
	assert.Equal(t, int64(1), h.peek().songID)

	// upsert of an unseen id needs a free slot
	assert.False(t, h.updatePriority(4, 4))
}

func TestHeapEqualPrioritiesKeepInsertionOrder(t *testing.T) {
	h := newPopularityHeap(4)

	require.True(t, h.insert(1, 5))
	require.True(t, h.insert(2, 5))
	require.True(t, h.insert(3, 5))

	// strict > means no sift swaps among equals: array order survives
	assert.Equal(t, int64(1), h.extractMax().songID)
}

func TestHeapUpdatePriority(t *testing.T) {
	t.Run("unseen id inserts", func(t *testing.T) {
		h := newPopularityHeap(4)
		require.True(t, h.updatePriority(7, 3))
		assert.Equal(t, 1, h.len())
		assert.Equal(t, int64(7), h.peek().songID)
	})

	t.Run("increase sifts up", func(t *testing.T) {
		h := newPopularityHeap(4)
		h.insert(1, 10)
		h.insert(2, 5)
		h.insert(3, 1)

		require.True(t, h.updatePriority(3, 99))
		assert.Equal(t, int64(3), h.peek().songID)
	})

	t.Run("decrease sifts down", func(t *testing.T) {
		h := newPopularityHeap(4)
		h.insert(1, 10)
		h.insert(2, 5)
		h.insert(3, 1)

		require.True(t, h.updatePriority(1, 0))
		assert.Equal(t, int64(2), h.peek().songID)

		p, ok := h.priorityOf(1)
		require.True(t, ok)
		assert.Equal(t, 0.0, p)
	})

	t.Run("equal value is a no-op", func(t *testing.T) {
		h := newPopularityHeap(4)
		h.insert(1, 10)
		h.insert(2, 5)

		require.True(t, h.updatePriority(2, 5))
		assert.Equal(t, int64(1), h.peek().songID)
	})
}

func TestHeapNoDuplicateSongIDs(t *testing.T) {
	h := newPopularityHeap(4)

	require.True(t, h.updatePriority(1, 3))
	require.True(t, h.updatePriority(1, 8))
	require.True(t, h.updatePriority(1, 2))

	assert.Equal(t, 1, h.len(), "updates must not create duplicate entries")
}

func TestHeapSlotMapTracksSwaps(t *testing.T) {
	h := newPopularityHeap(8)
	for i := int64(1); i <= 6; i++ {
		require.True(t, h.insert(i, float64(i)))
	}

	for id, i := range h.slots {
		assert.Equal(t, id, h.nodes[i].songID, "slot map out of step at id %d", id)
	}

	h.extractMax()
	h.updatePriority(2, 40)
	for id, i := range h.slots {
		assert.Equal(t, id, h.nodes[i].songID)
	}
}

func TestHeapOrderInvariant(t *testing.T) {
	h := newPopularityHeap(16)
	scores := []float64{7, 3, 9, 1, 12, 5, 5, 8, 0, 11}
	for i, s := range scores {
		require.True(t, h.insert(int64(i), s))
	}
	h.updatePriority(3, 20)
	h.updatePriority(4, 2)

	for i := 1; i < h.len(); i++ {
		parent := (i - 1) / 2
		assert.GreaterOrEqual(t, h.nodes[parent].priority, h.nodes[i].priority,
			"max-heap property violated at %d", i)
	}
}

func TestHeapCloneIsIndependent(t *testing.T) {
	h := newPopularityHeap(4)
	h.insert(1, 10)
	h.insert(2, 20)

	c := h.clone()
	c.extractMax()
	c.updatePriority(1, 99)

	assert.Equal(t, 2, h.len())
	assert.Equal(t, int64(2), h.peek().songID)
	p, ok := h.priorityOf(1)
	require.True(t, ok)
	assert.Equal(t, 10.0, p)
}
