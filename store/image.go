// Package store implements the pipeline store (C3): content-addressed
// persistence of PipelineImages keyed by structural hash, name aliasing, and
// a syntactic index that lets a compiler skip recompilation when source
// text and the registered module set match a prior compile. It generalizes
// kbukum-gokit's dag.Registry (a mutex-guarded name->Node map) from named
// Nodes to hash-addressed Images plus an alias layer.
package store

import (
	"time"

	"github.com/constellation-engine/core/dagspec"
)

// Image is the immutable compiled-pipeline artifact (§3 Pipeline Image).
type Image struct {
	StructuralHash string
	SyntacticHash  string
	DagSpec        *dagspec.DagSpec
	ModuleOptions  map[string]dagspec.ModuleCallOptions
	CompiledAt     time.Time
	SourceHash     string
}

// Store is the pipeline store contract (§4.3). Implementations must make
// every operation atomic with respect to observers: a concurrent reader
// never sees a partially-written Image, and alias updates are
// compare-and-set.
type Store interface {
	// StoreImage persists img keyed by its StructuralHash. Idempotent:
	// re-storing a byte-equivalent image is a no-op.
	StoreImage(img Image) (string, error)
	// GetImage retrieves an image by structural hash.
	GetImage(structuralHash string) (*Image, bool)
	// Alias binds name to structuralHash via compare-and-set.
	Alias(name, structuralHash string) error
	// Resolve looks up the structural hash currently bound to name.
	Resolve(name string) (string, bool)
	// GetByName resolves name and fetches the bound image in one call.
	GetByName(name string) (*Image, bool)
	// ListAliases returns all name -> structuralHash bindings.
	ListAliases() map[string]string
	// RemoveImage deletes the image at structuralHash. Fails (returns
	// false, nil) if any alias still points at it; cascade is not
	// automatic.
	RemoveImage(structuralHash string) (bool, error)
	// IndexSyntactic records that compiling syntacticHash against
	// registryHash previously produced structuralHash.
	IndexSyntactic(syntacticHash, registryHash, structuralHash string)
	// LookupSyntactic returns the structural hash previously recorded for
	// (syntacticHash, registryHash), if any.
	LookupSyntactic(syntacticHash, registryHash string) (string, bool)
	// ListImages returns the structural hashes of all stored images.
	ListImages() []string
}
