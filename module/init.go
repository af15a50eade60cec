package module

import (
	"github.com/constellation-engine/core/dagspec"
	goerrors "github.com/constellation-engine/core/errors"
)

// InitModules resolves every module node in a DagSpec against the registry,
// returning a map from module id to Callable. It generalizes
// dag.ResolvePipeline's registry.Get lookup loop (there, keyed by component
// name only) to also check the declared major.minor version and the
// consumes/produces signature, since a DagSpec's module node is a versioned,
// typed reference rather than a bare name.
func (r *Registry) InitModules(d *dagspec.DagSpec) (map[string]Callable, error) {
	out := make(map[string]Callable, len(d.Modules))
	for id, spec := range d.Modules {
		entry, err := r.Get(spec.Metadata.Name, spec.Metadata.Major, spec.Metadata.Minor)
		if err != nil {
			return nil, err
		}
		if entry.ConsumesSig != namedTypesSig(spec.Consumes) || entry.ProducesSig != namedTypesSig(spec.Produces) {
			return nil, goerrors.ValidationError("registered module " + spec.Metadata.Name + " signature does not match DagSpec declaration")
		}
		out[id] = entry.Callable
	}
	return out, nil
}

func namedTypesSig(nts []dagspec.NamedType) string {
	s := ""
	for i, nt := range nts {
		if i > 0 {
			s += ","
		}
		s += nt.Name + ":" + nt.Sig
	}
	return s
}
