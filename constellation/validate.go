package constellation

import (
	"fmt"

	"github.com/constellation-engine/core/dagspec"
	goerrors "github.com/constellation-engine/core/errors"
	"github.com/constellation-engine/core/validation"
)

// newValidator is a thin alias so every facade validation call goes through
// the same entry point the rest of the tree uses (validation.New).
func newValidator() *validation.Validator {
	return validation.New()
}

// ValidateDagSpec runs the facade's struct-level checks ahead of
// dagspec.Validate's graph invariants (§4.2). It catches the kind of mistake
// a hand-authored or hand-edited DagSpec is prone to — a blank module name,
// a negative version, a consumes/produces entry with no declared type —
// before the more expensive reference/cycle/single-writer checks run.
func ValidateDagSpec(d *dagspec.DagSpec) error {
	v := newValidator()
	v.Required("metadata.name", d.Metadata.Name)
	v.Min("metadata.major", d.Metadata.Major, 0)
	v.Min("metadata.minor", d.Metadata.Minor, 0)

	for id, m := range d.Modules {
		v.Required(fmt.Sprintf("modules[%s].metadata.name", id), m.Metadata.Name)
		v.Min(fmt.Sprintf("modules[%s].metadata.major", id), m.Metadata.Major, 0)
		for i, nt := range m.Consumes {
			v.Required(fmt.Sprintf("modules[%s].consumes[%d].name", id, i), nt.Name)
			v.Required(fmt.Sprintf("modules[%s].consumes[%d].sig", id, i), nt.Sig)
		}
		for i, nt := range m.Produces {
			v.Required(fmt.Sprintf("modules[%s].produces[%d].name", id, i), nt.Name)
			v.Required(fmt.Sprintf("modules[%s].produces[%d].sig", id, i), nt.Sig)
		}
	}

	for id, dn := range d.Data {
		v.Required(fmt.Sprintf("data[%s].name", id), dn.Name)
		v.Required(fmt.Sprintf("data[%s].cType", id), dn.TypeSig)
	}

	if appErr := v.Validate(); appErr != nil {
		return appErr
	}

	if err := dagspec.Validate(d); err != nil {
		return err
	}
	return nil
}

// validateExecutionID guards run/resume entry points against the empty
// identifier, which would otherwise silently collide across executions in
// any map-keyed store.
func validateExecutionID(executionID string) error {
	if executionID == "" {
		return goerrors.ValidationError("executionId is required")
	}
	return nil
}
