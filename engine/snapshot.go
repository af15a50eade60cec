package engine

import (
	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/dagspec"
)

// Snapshot is the serializable SuspendedExecution record (§3/§4.5.7). The
// suspension subsystem (C6) persists and rehydrates this type; the engine
// only ever produces and consumes it, never a store-specific wrapper.
type Snapshot struct {
	ExecutionID     string                               `json:"executionId"`
	StructuralHash  string                               `json:"structuralHash"`
	ResumptionCount int                                  `json:"resumptionCount"`
	DagSpec         *dagspec.DagSpec                     `json:"dagSpec"`
	ModuleOptions   map[string]dagspec.ModuleCallOptions  `json:"moduleOptions"`
	ProvidedInputs  map[string]ctype.Value                `json:"providedInputs"`
	ComputedValues  map[string]ctype.Value                `json:"computedValues"`
	ModuleStatuses  map[string]ModuleStatus               `json:"moduleStatuses"`
}
