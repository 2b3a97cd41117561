// Package hnsw implements Hierarchical Navigable Small World graphs.
//
// HNSW provides approximate nearest neighbor search with high recall and
// sub-linear query time. The graph is an in-memory, append-only structure
// with a single writer:
//
// # Layout
//
//   - Points live once in an id-indexed arena; ids are assigned at insertion
//   - Layers are stored in a slice indexed by level
//   - Each layer keeps a roaring bitmap of members and an adjacency map
//   - Level assignment and heuristic tie-breaks draw from one injected RNG
//
// # Parameters
//
//   - M: Max connections per node on levels >= 1
//   - M0: Max connections per node on level 0
//   - EF: Construction beam width
//   - ML: Level distribution scale, levels are floor(-ln(U) * ML)
//
// # Reference
//
// Malkov & Yashunin, "Efficient and robust approximate nearest neighbor search
// using Hierarchical Navigable Small World graphs", IEEE TPAMI 2018.
package hnsw
