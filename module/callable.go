// Package module implements the module registry (C4): the mapping from a
// ModuleNodeSpec's component identity to the Callable that actually runs
// it. It generalizes kbukum-gokit's dag.Registry from a static map of
// compile-time dag.Node values into a version-aware registry of dynamically
// typed Callables, since a module's input/output shapes are only known at
// runtime from its dagspec.ModuleNodeSpec.
package module

import (
	"context"

	"github.com/constellation-engine/core/ctype"
)

// Callable is a module's runtime behavior: given already-type-checked
// inputs keyed by consumed parameter name, produce outputs keyed by
// produced field name. Implementations must be safe for concurrent use —
// the engine may invoke the same Callable from many executions at once.
type Callable interface {
	// Name returns the component name this Callable implements, matching
	// ComponentMetadata.Name on the ModuleNodeSpec that references it.
	Name() string
	// Call executes the module body. ctx carries the per-call timeout
	// (moduleTimeoutMs) the engine has already applied.
	Call(ctx context.Context, inputs map[string]ctype.Value) (map[string]ctype.Value, error)
}

// CallableFunc adapts a plain function to Callable, mirroring the teacher's
// funcNode test helper pattern (dag/dag_test.go) but promoted to a named,
// reusable adapter rather than a test-only closure.
type CallableFunc struct {
	ModuleName string
	Fn         func(ctx context.Context, inputs map[string]ctype.Value) (map[string]ctype.Value, error)
}

func (f CallableFunc) Name() string { return f.ModuleName }

func (f CallableFunc) Call(ctx context.Context, inputs map[string]ctype.Value) (map[string]ctype.Value, error) {
	return f.Fn(ctx, inputs)
}
