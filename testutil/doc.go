// Package testutil provides testing utilities for knngraph.
//
// This package is intended for use in tests, examples and the benchmark
// command only. It provides helpers for generating seeded datasets,
// computing exact nearest neighbors, and verifying search recall.
//
// # Random Vector Generation
//
//	rng := testutil.NewRNG(seed)
//	data := rng.ClusteredVectors(1000, 32, 10, 0.05)
//
// # Exact Search (Ground Truth)
//
//	truth := testutil.BruteForceSearch(data, query, k, distance.Euclidean)
//
// # Recall Verification
//
//	recall := testutil.ComputeRecall(truth, approx)
package testutil
