// Package suspend persists and rehydrates engine.Snapshot records for
// pipelines parked at quiescence (§4.5.7/§3 "resume"). It owns the wire
// codec and the at-most-one-resumer guard; engine itself never touches a
// store.
package suspend

import (
	"context"
	"time"
)

// Summary is the lightweight listing record returned by List, grounded on
// buddy-dag-types.go's Checkpoint{Version,Checksum,DAGName,Timestamp} shape:
// enough to let a caller pick an executionId without paying to decode the
// full snapshot.
type Summary struct {
	ExecutionID     string    `json:"executionId"`
	StructuralHash  string    `json:"structuralHash"`
	ResumptionCount int       `json:"resumptionCount"`
	SuspendedAt     time.Time `json:"suspendedAt"`
}

// Store persists SuspendedExecution snapshots keyed by executionId.
//
// Save is idempotent-by-overwrite: a later Save for the same executionId
// replaces the previous snapshot (a fresh suspension after a resume that
// itself re-suspends). Load returns (nil, nil) for an unknown executionId.
type Store interface {
	Save(ctx context.Context, s *State) error
	Load(ctx context.Context, executionID string) (*State, error)
	Delete(ctx context.Context, executionID string) error
	List(ctx context.Context) ([]Summary, error)
}
