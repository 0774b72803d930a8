package search

import (
	"context"
	"encoding/json"
	"time"
)

// Backend is the search backend facade combining all sub-interfaces.
type Backend interface {
	Searcher
	HealthReporter
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Searcher runs a single match-all query against an index.
type Searcher interface {
	Search(ctx context.Context, q *Query) (*Result, error)
}

// HealthReporter returns the backend's self-reported cluster health
// ("green", "yellow", "red").
type HealthReporter interface {
	ClusterHealth(ctx context.Context) (string, error)
}

// Cluster health values reported by backends.
const (
	HealthGreen  = "green"
	HealthYellow = "yellow"
	HealthRed    = "red"
)

// Query is the input for a search. Size <= 0 leaves the page size to the backend.
type Query struct {
	Index string
	Size  int
}

// Result is the ordered output of a search.
type Result struct {
	Total int
	Hits  []Hit
}

// Hit is a single search hit with its raw source payload.
type Hit struct {
	ID     string
	Source json.RawMessage
}
