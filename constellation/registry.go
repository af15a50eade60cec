package constellation

import (
	"time"

	"github.com/constellation-engine/core/dagspec"
	goerrors "github.com/constellation-engine/core/errors"
	"github.com/constellation-engine/core/module"
	"github.com/constellation-engine/core/store"
)

// Catalog pairs the module registry (C4 — which Callables exist) with the
// pipeline store (C3 — which compiled DagSpecs exist), the two registries a
// run/resume call needs consulted together: InitModules resolves a DagSpec's
// module nodes against the former, while a named/hashed pipeline reference
// resolves against the latter.
type Catalog struct {
	Modules   *module.Registry
	Pipelines store.Store
}

// NewCatalog creates a Catalog. Pass store.NewMemoryStore() or a
// database.PipelineStoreBackend for pipelines, depending on
// EngineConfig.PipelineStoreBackend.
func NewCatalog(pipelines store.Store) *Catalog {
	return &Catalog{Modules: module.NewRegistry(), Pipelines: pipelines}
}

// RegisterModule adds a Callable under its declared identity. Re-registering
// the same name+version replaces the previous Callable, matching
// module.Registry.Register's last-write-wins semantics.
func (c *Catalog) RegisterModule(e module.Entry) {
	c.Modules.Register(e)
}

// DeregisterModule removes a module identity from the registry.
func (c *Catalog) DeregisterModule(name string, major, minor int) {
	c.Modules.Deregister(name, major, minor)
}

// Compile validates d, checks its module nodes against the current module
// registry, computes its structural hash, stores the resulting Image, and
// indexes its syntactic hash under the registry's hash — the "compile" step
// referenced throughout §4 as the producer of a Pipeline Image. If an image
// with the same structural hash already exists, storing is a no-op
// (store.Store.StoreImage is idempotent).
func (c *Catalog) Compile(d *dagspec.DagSpec, moduleOptions map[string]dagspec.ModuleCallOptions) (*store.Image, error) {
	if err := ValidateDagSpec(d); err != nil {
		return nil, err
	}
	if _, err := c.Modules.InitModules(d); err != nil {
		return nil, err
	}

	structuralHash, err := dagspec.StructuralHash(d, moduleOptions)
	if err != nil {
		return nil, err
	}
	sourceText, err := dagspec.CanonicalText(d, moduleOptions)
	if err != nil {
		return nil, err
	}
	syntacticHash := dagspec.SyntacticHash(sourceText)

	img := store.Image{
		StructuralHash: structuralHash,
		SyntacticHash:  syntacticHash,
		DagSpec:        d,
		ModuleOptions:  moduleOptions,
		CompiledAt:     time.Now(),
		SourceHash:     syntacticHash,
	}
	if _, err := c.Pipelines.StoreImage(img); err != nil {
		return nil, err
	}
	c.Pipelines.IndexSyntactic(syntacticHash, c.Modules.Hash(), structuralHash)
	return &img, nil
}

// Resolve looks up an Image by structural hash or, failing that, by alias
// name — the two forms a pipeline reference takes at the run/resume API
// (§6 "pipelineRef").
func (c *Catalog) Resolve(ref string) (*store.Image, error) {
	if img, ok := c.Pipelines.GetImage(ref); ok {
		return img, nil
	}
	if img, ok := c.Pipelines.GetByName(ref); ok {
		return img, nil
	}
	return nil, goerrors.PipelineNotFound(ref)
}

// Callables resolves img's module nodes against the module registry,
// producing the map engine.Run/engine.Resume require.
func (c *Catalog) Callables(img *store.Image) (map[string]module.Callable, error) {
	return c.Modules.InitModules(img.DagSpec)
}

// PublishedModules returns every module node id in d whose HTTPConfig
// marks it Published, the set an EngineHost advertises through
// discovery.Registry.
func PublishedModules(d *dagspec.DagSpec) []string {
	var ids []string
	for id, m := range d.Modules {
		if m.HTTPConfig != nil && m.HTTPConfig.Published {
			ids = append(ids, id)
		}
	}
	return ids
}
