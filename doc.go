// Package knngraph provides an in-memory approximate nearest neighbor index
// built on a Hierarchical Navigable Small World (HNSW) graph.
//
// The index is generic over the point type and the metric: any P together
// with a distance function satisfying d(a,a)=0, symmetry and non-negativity
// can be indexed. Points receive stable uint32 ids in insertion order.
//
// # Quick Start
//
//	ctx := context.Background()
//	idx, err := knngraph.NewEuclidean(func(o *knngraph.Options) {
//	    o.M = 16
//	    o.EF = 200
//	})
//	if err != nil {
//	    panic(err)
//	}
//
//	ids, err := idx.InsertBatch(ctx, vectors)
//
//	results, err := idx.Search(ctx, query, 10, &knngraph.SearchOptions{EF: 64})
//	for _, r := range results {
//	    fmt.Println(r.ID, r.Distance)
//	}
//
// # Custom Metrics
//
// Any point type works with a matching distance function:
//
//	idx, _ := knngraph.New(distance.Hamming)
//	idx.Insert(ctx, []byte{0b1010})
//
// # Tracing
//
// SearchTrace lazily yields the candidate set before and after the search of
// every level, which makes the greedy descent observable:
//
//	steps, _ := idx.SearchTrace(ctx, query, 3, nil)
//	for step := range steps {
//	    fmt.Println(step.Level, step.Stage, len(step.Candidates))
//	}
//
// # Concurrency
//
// An Index is not safe for concurrent mutation. Searches may run in parallel
// as long as no insertion is in progress.
package knngraph
