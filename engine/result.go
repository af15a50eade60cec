package engine

import (
	"time"

	"github.com/constellation-engine/core/ctype"
)

// Options are the execution metadata toggles from §6 "Execution Options".
// All default false. IncludeTimings, IncludeProvenance and
// IncludeResolutionSources populate the corresponding Metadata field;
// IncludeBlockedGraph is accepted but nothing fills Metadata.BlockedGraph,
// so it stays empty.
type Options struct {
	IncludeTimings           bool
	IncludeProvenance        bool
	IncludeBlockedGraph      bool
	IncludeResolutionSources bool
	Debug                    DebugMode
}

// Metadata carries the optional diagnostic fields enabled by Options.
type Metadata struct {
	Timings           map[string]time.Duration    `json:"timings,omitempty"`
	Provenance        map[string]ResolutionSource `json:"provenance,omitempty"`
	BlockedGraph      []string                    `json:"blockedGraph,omitempty"`
	ResolutionSources map[string]ResolutionSource `json:"resolutionSources,omitempty"`
}

// DataSignature is returned to the caller of run/resume (§3).
type DataSignature struct {
	ExecutionID      string
	StructuralHash   string
	ResumptionCount  int
	Status           ExecutionStatus
	Inputs           map[string]ctype.Value
	ComputedNodes    map[string]ctype.Value
	Outputs          map[string]ctype.Value
	MissingInputs    []string
	PendingOutputs   []string
	ModuleStatuses   map[string]ModuleStatus
	SuspendedState   *Snapshot
	Metadata         Metadata
}
