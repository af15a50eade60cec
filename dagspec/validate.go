package dagspec

import (
	"fmt"

	goerrors "github.com/constellation-engine/core/errors"
)

// Validate checks the six load-time invariants (§3) against d. It returns a
// ValidationError (or a more specific NodeNotFound/CycleDetected) on the
// first violation found; callers that need every violation should call the
// individual check functions directly.
func Validate(d *DagSpec) error {
	if err := checkReferencesExist(d); err != nil {
		return err
	}
	if err := checkSingleWriter(d); err != nil {
		return err
	}
	if err := checkDeclaredOutputsBound(d); err != nil {
		return err
	}
	if _, err := StructuralHash(d, nil); err != nil { // exercises the cycle check
		return err
	}
	if err := checkConsumesConsistency(d); err != nil {
		return err
	}
	if err := checkTransformInputsPresence(d); err != nil {
		return err
	}
	return nil
}

// checkReferencesExist enforces invariant 1: every id referenced by any
// edge or binding exists in the corresponding map.
func checkReferencesExist(d *DagSpec) error {
	for _, e := range d.InEdges {
		if _, ok := d.Data[e.DataID]; !ok {
			return goerrors.NodeNotFound(e.DataID)
		}
		if _, ok := d.Modules[e.ModuleID]; !ok {
			return goerrors.NodeNotFound(e.ModuleID)
		}
	}
	for _, e := range d.OutEdges {
		if _, ok := d.Data[e.DataID]; !ok {
			return goerrors.NodeNotFound(e.DataID)
		}
		if _, ok := d.Modules[e.ModuleID]; !ok {
			return goerrors.NodeNotFound(e.ModuleID)
		}
	}
	for out, dataID := range d.OutputBindings {
		if _, ok := d.Data[dataID]; !ok {
			return goerrors.NodeNotFound(fmt.Sprintf("outputBindings[%s]=%s", out, dataID))
		}
	}
	for id, dn := range d.Data {
		for input, dataID := range dn.TransformInputs {
			if _, ok := d.Data[dataID]; !ok {
				return goerrors.NodeNotFound(fmt.Sprintf("data[%s].transformInputs[%s]=%s", id, input, dataID))
			}
		}
	}
	return nil
}

// checkSingleWriter enforces invariant 2: every data id appears as the
// target of at most one outEdge.
func checkSingleWriter(d *DagSpec) error {
	writer := make(map[string]string, len(d.OutEdges))
	for _, e := range d.OutEdges {
		if prev, ok := writer[e.DataID]; ok && prev != e.ModuleID {
			return goerrors.ValidationError(fmt.Sprintf("data node %q has more than one writer (%q and %q)", e.DataID, prev, e.ModuleID))
		}
		writer[e.DataID] = e.ModuleID
	}
	return nil
}

// checkDeclaredOutputsBound enforces invariant 3: every declaredOutputs
// entry maps through outputBindings to an existing data id.
func checkDeclaredOutputsBound(d *DagSpec) error {
	for _, out := range d.DeclaredOutputs {
		dataID, ok := d.OutputBindings[out]
		if !ok {
			return goerrors.ValidationError(fmt.Sprintf("declared output %q has no outputBindings entry", out))
		}
		if _, ok := d.Data[dataID]; !ok {
			return goerrors.NodeNotFound(dataID)
		}
	}
	return nil
}

// checkConsumesConsistency enforces invariant 5: a module's declared
// consumes types are consistent with the CTypes of the data nodes wired to
// it via inEdges, resolved through the data node's nickname for that
// module.
func checkConsumesConsistency(d *DagSpec) error {
	for _, e := range d.InEdges {
		mod := d.Modules[e.ModuleID]
		dn := d.Data[e.DataID]
		paramName, ok := dn.Nicknames[e.ModuleID]
		if !ok {
			return goerrors.ValidationError(fmt.Sprintf("data node %q has no nickname for module %q", e.DataID, e.ModuleID))
		}
		var declared *NamedType
		for i := range mod.Consumes {
			if mod.Consumes[i].Name == paramName {
				declared = &mod.Consumes[i]
				break
			}
		}
		if declared == nil {
			return goerrors.ValidationError(fmt.Sprintf("module %q declares no consumed param %q", e.ModuleID, paramName))
		}
		if declared.Sig != dn.TypeSig {
			return goerrors.TypeMismatch(fmt.Sprintf("module %q param %q", e.ModuleID, paramName), declared.Sig, dn.TypeSig)
		}
	}
	return nil
}

// checkTransformInputsPresence enforces invariant 6: transformInputs is
// non-empty iff inlineTransform is present.
func checkTransformInputsPresence(d *DagSpec) error {
	for id, dn := range d.Data {
		hasTransform := dn.InlineTransform != nil
		hasInputs := len(dn.TransformInputs) > 0
		if hasTransform != hasInputs {
			return goerrors.ValidationError(fmt.Sprintf("data node %q: inlineTransform present=%t but transformInputs present=%t", id, hasTransform, hasInputs))
		}
	}
	return nil
}
