package engine

// heapEntry pairs a song with its popularity score. At most one entry per
// distinct song id lives in the heap; it is an index, not a queue mirror.
type heapEntry struct {
	songID   int64
	priority float64
}

// noEntry is the sentinel returned by peek/extractMax on an empty heap.
var noEntry = heapEntry{songID: -1, priority: -1.0}

// popularityHeap is a fixed-capacity array-backed binary max-heap over
// (songID, priority), with an id→slot sidecar map so priority updates cost
// O(log n) instead of a linear scan. Capacity is fixed for the heap's
// lifetime; insertions fail once it is reached.
//
// Ordering: sift-up swaps on strictly greater priority only, so equal
// priorities keep insertion order; sift-down prefers the left child on ties.
type popularityHeap struct {
	nodes    []heapEntry
	slots    map[int64]int // song id → index in nodes
	capacity int
}

func newPopularityHeap(capacity int) *popularityHeap {
	if capacity <= 0 {
		return nil
	}
	return &popularityHeap{
		nodes:    make([]heapEntry, 0, capacity),
		slots:    make(map[int64]int, capacity),
		capacity: capacity,
	}
}

// len returns the number of indexed songs.
func (h *popularityHeap) len() int {
	return len(h.nodes)
}

// insert adds a new (songID, priority) node and restores heap order.
// Returns false when the heap is at capacity. Callers are responsible for
// not inserting a song id that is already present; updatePriority is the
// upsert entry point.
func (h *popularityHeap) insert(songID int64, priority float64) bool {
	if len(h.nodes) >= h.capacity {
		return false
	}
	h.nodes = append(h.nodes, heapEntry{songID: songID, priority: priority})
	h.slots[songID] = len(h.nodes) - 1
	h.siftUp(len(h.nodes) - 1)
	return true
}

// extractMax removes and returns the root. Returns the {-1, -1.0} sentinel
// on an empty heap.
func (h *popularityHeap) extractMax() heapEntry {
	if len(h.nodes) == 0 {
		return noEntry
	}

	top := h.nodes[0]
	last := len(h.nodes) - 1
	h.swap(0, last)
	h.nodes = h.nodes[:last]
	delete(h.slots, top.songID)
	if last > 0 {
		h.siftDown(0)
	}
	return top
}

// peek returns the root without removing it; sentinel on empty.
func (h *popularityHeap) peek() heapEntry {
	if len(h.nodes) == 0 {
		return noEntry
	}
	return h.nodes[0]
}

// updatePriority upserts the score for songID: absent ids insert, present
// ids are re-scored in place and sifted in whichever direction the score
// moved. Equal scores are a no-op. Returns false only when an insert was
// needed and the heap is full.
func (h *popularityHeap) updatePriority(songID int64, priority float64) bool {
	i, ok := h.slots[songID]
	if !ok {
		return h.insert(songID, priority)
	}

	old := h.nodes[i].priority
	if priority == old {
		return true
	}
	h.nodes[i].priority = priority
	if priority > old {
		h.siftUp(i)
	} else {
		h.siftDown(i)
	}
	return true
}

// priorityOf reports the indexed score for songID.
func (h *popularityHeap) priorityOf(songID int64) (float64, bool) {
	i, ok := h.slots[songID]
	if !ok {
		return 0, false
	}
	return h.nodes[i].priority, true
}

// clone returns an independent copy. Top-N extraction is destructive, so
// recommendation reads extract from a clone and leave the live index alone.
func (h *popularityHeap) clone() *popularityHeap {
	c := &popularityHeap{
		nodes:    make([]heapEntry, len(h.nodes), h.capacity),
		slots:    make(map[int64]int, len(h.slots)),
		capacity: h.capacity,
	}
	copy(c.nodes, h.nodes)
	for id, i := range h.slots {
		c.slots[id] = i
	}
	return c
}

func (h *popularityHeap) siftUp(i int) {
	for i > 0 {
		parent := (i - 1) / 2
		if h.nodes[i].priority <= h.nodes[parent].priority {
			break
		}
		h.swap(i, parent)
		i = parent
	}
}

func (h *popularityHeap) siftDown(i int) {
	n := len(h.nodes)
	for {
		largest := i
		left, right := 2*i+1, 2*i+2
		if left < n && h.nodes[left].priority > h.nodes[largest].priority {
			largest = left
		}
		if right < n && h.nodes[right].priority > h.nodes[largest].priority {
			largest = right
		}
		if largest == i {
			return
		}
		h.swap(i, largest)
		i = largest
	}
}

// swap exchanges two nodes and keeps the slot map in step.
func (h *popularityHeap) swap(i, j int) {
	if i == j {
		return
	}
	h.nodes[i], h.nodes[j] = h.nodes[j], h.nodes[i]
	h.slots[h.nodes[i].songID] = i
	h.slots[h.nodes[j].songID] = j
}
