// Package dagspec implements the DAG specification data model, its
// load-time invariants, and the canonicalization/hashing algorithm used to
// compute structural and syntactic content hashes of a pipeline. It
// generalizes kbukum-gokit's dag.Graph/dag.Pipeline into a typed,
// content-addressed specification that never embeds UUIDs or map iteration
// order into anything that must compare equal across renamings.
package dagspec

import (
	"github.com/constellation-engine/core/ctype"
)

// BackoffKind enumerates the retry backoff strategies a module call may use.
type BackoffKind string

const (
	BackoffFixed       BackoffKind = "fixed"
	BackoffLinear      BackoffKind = "linear"
	BackoffExponential BackoffKind = "exponential"
)

// OnError enumerates how a module failure should affect its dependents.
type OnError string

const (
	OnErrorFail OnError = "fail"
	OnErrorSkip OnError = "skip"
)

// ComponentMetadata describes a module's identity and version. Names are
// case-sensitive; Major/Minor follow semver ordering for compatibility
// checks performed by the module registry (C4).
type ComponentMetadata struct {
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Major       int      `json:"major"`
	Minor       int      `json:"minor"`
}

// HTTPConfig optionally advertises a module for external discovery. The
// engine itself never serves HTTP; Published is consumed only by
// constellation.EngineHost.PublishModules, which registers such modules
// with a discovery registry.
type HTTPConfig struct {
	Published bool `json:"published"`
}

// ModuleConfig carries the two timeouts every module node declares.
type ModuleConfig struct {
	InputsTimeoutMs int `json:"inputsTimeoutMs,omitempty"`
	ModuleTimeoutMs int `json:"moduleTimeoutMs,omitempty"`
}

// ModuleNodeSpec describes one module node in a DagSpec. Consumes/Produces
// are ordered slices (not maps) so their order is preserved through
// canonicalization, matching the spec's requirement that consumes/produces
// ordering is significant.
type ModuleNodeSpec struct {
	Metadata          ComponentMetadata  `json:"metadata"`
	Consumes          []NamedType        `json:"consumes"`
	Produces          []NamedType        `json:"produces"`
	Config            ModuleConfig       `json:"config"`
	DefinitionContext map[string]any     `json:"definitionContext,omitempty"`
	HTTPConfig        *HTTPConfig        `json:"httpConfig,omitempty"`
}

// NamedType pairs a parameter or output field name with its declared CType,
// preserving the declaration order a map could not.
type NamedType struct {
	Name string      `json:"name"`
	Type *ctype.Type `json:"-"`
	Sig  string      `json:"type"`
}

// DataNodeSpec describes one data node in a DagSpec.
type DataNodeSpec struct {
	Name            string            `json:"name"`
	Nicknames       map[string]string `json:"nicknames,omitempty"` // module id -> param name
	CType           *ctype.Type       `json:"-"`
	TypeSig         string            `json:"cType"`
	InlineTransform *InlineTransform  `json:"inlineTransform,omitempty"`
	TransformInputs map[string]string `json:"transformInputs,omitempty"` // input name -> data id
}

// ModuleCallOptions are optional per-module runtime knobs. Absent fields
// (nil pointers / zero values where noted) inherit engine defaults. Fields
// with no execution-engine counterpart (Window, CheckpointMs, JoinStrategy,
// BatchSize, BatchTimeoutMs) are carried verbatim through store and
// suspension round-trips and are never interpreted by the engine (§9 Open
// Question).
type ModuleCallOptions struct {
	Retry           int         `json:"retry,omitempty"`
	TimeoutMs       int         `json:"timeoutMs,omitempty"`
	DelayMs         int         `json:"delayMs,omitempty"`
	Backoff         BackoffKind `json:"backoff,omitempty"`
	CacheMs         int         `json:"cacheMs,omitempty"`
	CacheBackend    string      `json:"cacheBackend,omitempty"`
	ThrottleCount   int         `json:"throttleCount,omitempty"`
	ThrottlePerMs   int         `json:"throttlePerMs,omitempty"`
	Concurrency     int         `json:"concurrency,omitempty"`
	OnError         OnError     `json:"onError,omitempty"`
	LazyEval        bool        `json:"lazyEval,omitempty"`
	Priority        int         `json:"priority,omitempty"`
	BatchSize       int         `json:"batchSize,omitempty"`
	BatchTimeoutMs  int         `json:"batchTimeoutMs,omitempty"`
	Window          int         `json:"window,omitempty"`
	CheckpointMs    int         `json:"checkpointMs,omitempty"`
	JoinStrategy    string      `json:"joinStrategy,omitempty"`
}

// Edge is a single (data id, module id) directed edge. DagSpec stores edges
// as slices rather than Go maps/sets because canonicalization must iterate
// them deterministically.
type Edge struct {
	DataID   string `json:"dataId"`
	ModuleID string `json:"moduleId"`
}

// DagSpec is the immutable pipeline graph: the core artifact a compiler
// produces and the engine executes. UUIDs here are arbitrary stable
// identifiers chosen by the compiler; nothing about structural-hash equality
// depends on their literal values.
type DagSpec struct {
	Metadata         ComponentMetadata           `json:"metadata"`
	Modules          map[string]ModuleNodeSpec   `json:"modules"`
	Data             map[string]DataNodeSpec     `json:"data"`
	InEdges          []Edge                      `json:"inEdges"`  // data -> module
	OutEdges         []Edge                      `json:"outEdges"` // module -> data
	DeclaredOutputs  []string                    `json:"declaredOutputs"`
	OutputBindings   map[string]string            `json:"outputBindings"` // output name -> data id
}
