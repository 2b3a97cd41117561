package hnsw

import (
	"errors"
	"fmt"
)

// ErrInvariantViolation is wrapped by every error returned from Validate.
var ErrInvariantViolation = errors.New("graph invariant violated")

// Validate checks the structural invariants of the graph:
// the ground layer holds every point, each layer is a subset of the one
// below, adjacency lists respect the degree caps and stay within their
// layer, and the entry point sits on the top layer.
func (g *Graph[P]) Validate() error {
	if len(g.points) == 0 {
		if len(g.layers) != 0 {
			return fmt.Errorf("%w: empty graph has %d layers", ErrInvariantViolation, len(g.layers))
		}
		return nil
	}

	if got := g.layers[0].size(); got != len(g.points) {
		return fmt.Errorf("%w: ground layer has %d points, want %d", ErrInvariantViolation, got, len(g.points))
	}

	for lc := 1; lc < len(g.layers); lc++ {
		upper, lower := g.layers[lc].members, g.layers[lc-1].members
		if upper.AndCardinality(lower) != upper.GetCardinality() {
			return fmt.Errorf("%w: level %d is not a subset of level %d", ErrInvariantViolation, lc, lc-1)
		}
		if upper.IsEmpty() {
			return fmt.Errorf("%w: level %d is empty", ErrInvariantViolation, lc)
		}
	}

	for lc, lyr := range g.layers {
		maxConns := g.maxConnections(lc)
		for id, conns := range lyr.edges {
			if !lyr.contains(id) {
				return fmt.Errorf("%w: level %d has edges from non-member %d", ErrInvariantViolation, lc, id)
			}
			if len(conns) > maxConns {
				return fmt.Errorf("%w: node %d has %d edges at level %d, cap %d", ErrInvariantViolation, id, len(conns), lc, maxConns)
			}
			for _, to := range conns {
				if to == id {
					return fmt.Errorf("%w: node %d links to itself at level %d", ErrInvariantViolation, id, lc)
				}
				if !lyr.contains(to) {
					return fmt.Errorf("%w: edge %d -> %d at level %d leaves the layer", ErrInvariantViolation, id, to, lc)
				}
			}
		}
	}

	if !g.layers[len(g.layers)-1].contains(g.entryPoint) {
		return fmt.Errorf("%w: entry point %d is not on the top level", ErrInvariantViolation, g.entryPoint)
	}

	return nil
}
