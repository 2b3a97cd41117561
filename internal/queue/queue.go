// Package queue implements the binary heaps used by graph traversal.
package queue

import "slices"

// Item is a graph node paired with its distance to the current query.
type Item struct {
	Node     uint32
	Distance float64
}

// Closer reports whether a sorts before b in ascending distance order.
// Ties break on Node ascending so traversal order is deterministic.
func Closer(a, b Item) bool {
	if a.Distance != b.Distance {
		return a.Distance < b.Distance
	}
	return a.Node < b.Node
}

// PriorityQueue is a value-based binary heap of Items.
// A min-heap keeps the closest item on top, a max-heap the farthest.
type PriorityQueue struct {
	isMaxHeap bool
	items     []Item
}

// NewMin creates a queue whose top is the closest item.
func NewMin(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: false,
		items:     make([]Item, 0, capacity),
	}
}

// NewMax creates a queue whose top is the farthest item.
func NewMax(capacity int) *PriorityQueue {
	return &PriorityQueue{
		isMaxHeap: true,
		items:     make([]Item, 0, capacity),
	}
}

// Len returns the number of elements in the queue.
func (pq *PriorityQueue) Len() int { return len(pq.items) }

// Reset clears the queue for reuse.
func (pq *PriorityQueue) Reset() {
	pq.items = pq.items[:0]
}

// TopItem returns the top element of the heap.
func (pq *PriorityQueue) TopItem() (Item, bool) {
	if len(pq.items) == 0 {
		return Item{}, false
	}
	return pq.items[0], true
}

// PushItem inserts an item while maintaining the heap invariant.
func (pq *PriorityQueue) PushItem(item Item) {
	pq.items = append(pq.items, item)
	pq.siftUp(len(pq.items) - 1)
}

// PopItem removes and returns the top element.
func (pq *PriorityQueue) PopItem() (Item, bool) {
	n := len(pq.items)
	if n == 0 {
		return Item{}, false
	}
	root := pq.items[0]
	pq.items[0] = pq.items[n-1]
	pq.items = pq.items[:n-1]
	if len(pq.items) > 0 {
		pq.siftDown(0)
	}
	return root, true
}

// PushItemBounded inserts an item into a max-heap holding at most capacity
// items. When full, the item replaces the top only if it is closer; the
// evicted item is returned.
func (pq *PriorityQueue) PushItemBounded(item Item, capacity int) (Item, bool) {
	if len(pq.items) < capacity {
		pq.PushItem(item)
		return Item{}, false
	}
	top := pq.items[0]
	if !Closer(item, top) {
		return item, true
	}
	pq.items[0] = item
	pq.siftDown(0)
	return top, true
}

// Drain empties the queue and returns its items in ascending distance order.
func (pq *PriorityQueue) Drain() []Item {
	out := slices.Clone(pq.items)
	Sort(out)
	pq.Reset()
	return out
}

// Sort orders items by ascending distance, breaking ties on Node.
func Sort(items []Item) {
	slices.SortFunc(items, func(a, b Item) int {
		switch {
		case Closer(a, b):
			return -1
		case Closer(b, a):
			return 1
		default:
			return 0
		}
	})
}

func (pq *PriorityQueue) less(i, j int) bool {
	if pq.isMaxHeap {
		return Closer(pq.items[j], pq.items[i])
	}
	return Closer(pq.items[i], pq.items[j])
}

func (pq *PriorityQueue) siftUp(i int) {
	for i > 0 {
		p := (i - 1) / 2
		if !pq.less(i, p) {
			return
		}
		pq.items[i], pq.items[p] = pq.items[p], pq.items[i]
		i = p
	}
}

func (pq *PriorityQueue) siftDown(i int) {
	n := len(pq.items)
	for {
		l := 2*i + 1
		if l >= n {
			return
		}
		best := l
		r := l + 1
		if r < n && pq.less(r, l) {
			best = r
		}
		if !pq.less(best, i) {
			return
		}
		pq.items[i], pq.items[best] = pq.items[best], pq.items[i]
		i = best
	}
}
