package suspend

import (
	"time"

	"github.com/constellation-engine/core/engine"
)

// State is the stored record for one suspended execution: the engine's
// Snapshot plus the bookkeeping the store layer needs that the engine
// itself has no reason to track.
type State struct {
	Snapshot    *engine.Snapshot
	SuspendedAt time.Time
}

func (s *State) summary() Summary {
	return Summary{
		ExecutionID:     s.Snapshot.ExecutionID,
		StructuralHash:  s.Snapshot.StructuralHash,
		ResumptionCount: s.Snapshot.ResumptionCount,
		SuspendedAt:     s.SuspendedAt,
	}
}
