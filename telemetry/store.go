package telemetry

import (
	"context"
	"time"
)

// RunSummary describes one simulation session for durable storage.
type RunSummary struct {
	RunID      string
	StartedAt  time.Time
	Seed       int64
	Ticks      int64
	Population int
}

// Store defines append-style persistence for census records. The core
// assumes nothing about the storage format beyond "append supported".
type Store interface {
	Init(ctx context.Context) error
	AppendCensus(ctx context.Context, runID string, rows []CensusRow) error
	SaveRunSummary(ctx context.Context, summary RunSummary) error
	Close() error
}
