package hnsw

import (
	"slices"

	"github.com/RoaringBitmap/roaring/v2"
)

// layer is one tier of the graph. Edges are stored directionally so that
// adjacency can be read from either endpoint in O(degree).
type layer struct {
	level   int
	members *roaring.Bitmap
	edges   map[uint32][]uint32
}

func newLayer(level int) *layer {
	return &layer{
		level:   level,
		members: roaring.New(),
		edges:   make(map[uint32][]uint32),
	}
}

func (l *layer) add(id uint32) {
	l.members.Add(id)
}

func (l *layer) contains(id uint32) bool {
	return l.members.Contains(id)
}

func (l *layer) size() int {
	return int(l.members.GetCardinality())
}

// neighbors returns the adjacency list of id. The slice must not be modified.
func (l *layer) neighbors(id uint32) []uint32 {
	return l.edges[id]
}

// link adds the directed edge from -> to unless it already exists.
func (l *layer) link(from, to uint32) bool {
	conns := l.edges[from]
	if slices.Contains(conns, to) {
		return false
	}
	l.edges[from] = append(conns, to)
	return true
}

// setNeighbors replaces the adjacency list of id.
func (l *layer) setNeighbors(id uint32, conns []uint32) {
	l.edges[id] = conns
}

func (l *layer) edgeCount() int {
	n := 0
	for _, conns := range l.edges {
		n += len(conns)
	}
	return n
}
