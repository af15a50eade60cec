package dagspec

import (
	"strings"
	"testing"

	"github.com/constellation-engine/core/ctype"
)

func namedType(name string, t *ctype.Type) NamedType {
	return NamedType{Name: name, Type: t, Sig: t.String()}
}

func linearSpec() *DagSpec {
	return &DagSpec{
		Metadata: ComponentMetadata{Name: "linear"},
		Modules: map[string]ModuleNodeSpec{
			"mod-1": {
				Metadata: ComponentMetadata{Name: "double"},
				Consumes: []NamedType{namedType("x", ctype.Int)},
				Produces: []NamedType{namedType("y", ctype.Int)},
			},
		},
		Data: map[string]DataNodeSpec{
			"data-in": {
				Name:      "input",
				TypeSig:   ctype.Int.String(),
				Nicknames: map[string]string{"mod-1": "x"},
			},
			"data-out": {
				Name:    "output",
				TypeSig: ctype.Int.String(),
			},
		},
		InEdges:         []Edge{{DataID: "data-in", ModuleID: "mod-1"}},
		OutEdges:        []Edge{{ModuleID: "mod-1", DataID: "data-out"}},
		DeclaredOutputs: []string{"output"},
		OutputBindings:  map[string]string{"output": "data-out"},
	}
}

func TestValidate_LinearSpecOK(t *testing.T) {
	if err := Validate(linearSpec()); err != nil {
		t.Fatalf("expected valid spec, got %v", err)
	}
}

func TestValidate_UnknownNodeReference(t *testing.T) {
	spec := linearSpec()
	spec.InEdges = append(spec.InEdges, Edge{DataID: "does-not-exist", ModuleID: "mod-1"})
	if err := Validate(spec); err == nil {
		t.Fatalf("expected error for unknown data reference")
	}
}

func TestValidate_SingleWriterViolation(t *testing.T) {
	spec := linearSpec()
	spec.Modules["mod-2"] = ModuleNodeSpec{Metadata: ComponentMetadata{Name: "other"}}
	spec.OutEdges = append(spec.OutEdges, Edge{ModuleID: "mod-2", DataID: "data-out"})
	if err := Validate(spec); err == nil {
		t.Fatalf("expected error for multiple writers of data-out")
	}
}

func TestValidate_CycleRejected(t *testing.T) {
	spec := &DagSpec{
		Modules: map[string]ModuleNodeSpec{
			"mod-1": {Metadata: ComponentMetadata{Name: "m1"}, Consumes: []NamedType{namedType("a", ctype.Int)}},
		},
		Data: map[string]DataNodeSpec{
			"data-a": {
				Name:            "a",
				TypeSig:         ctype.Int.String(),
				InlineTransform: &InlineTransform{Kind: TransformAccess, FieldNames: []string{"a"}},
				TransformInputs: map[string]string{"in": "data-a"},
				Nicknames:       map[string]string{"mod-1": "a"},
			},
		},
		InEdges: []Edge{{DataID: "data-a", ModuleID: "mod-1"}},
	}
	if err := Validate(spec); err == nil {
		t.Fatalf("expected cycle detection error")
	}
}

func TestStructuralHash_StableUnderUUIDRenaming(t *testing.T) {
	a := linearSpec()
	hashA, err := StructuralHash(a, nil)
	if err != nil {
		t.Fatalf("StructuralHash: %v", err)
	}

	b := linearSpec()
	renamed := &DagSpec{
		Metadata: b.Metadata,
		Modules:  map[string]ModuleNodeSpec{"XYZ-module": b.Modules["mod-1"]},
		Data: map[string]DataNodeSpec{
			"XYZ-in":  withNickname(b.Data["data-in"], "mod-1", "XYZ-module"),
			"XYZ-out": b.Data["data-out"],
		},
		InEdges:         []Edge{{DataID: "XYZ-in", ModuleID: "XYZ-module"}},
		OutEdges:        []Edge{{ModuleID: "XYZ-module", DataID: "XYZ-out"}},
		DeclaredOutputs: []string{"output"},
		OutputBindings:  map[string]string{"output": "XYZ-out"},
	}
	hashB, err := StructuralHash(renamed, nil)
	if err != nil {
		t.Fatalf("StructuralHash: %v", err)
	}

	if hashA != hashB {
		t.Fatalf("expected equal structural hashes, got %q and %q", hashA, hashB)
	}
}

func withNickname(dn DataNodeSpec, oldModID, newModID string) DataNodeSpec {
	out := dn
	if param, ok := dn.Nicknames[oldModID]; ok {
		out.Nicknames = map[string]string{newModID: param}
	}
	return out
}

func TestCanonicalText_ContainsAllNodes(t *testing.T) {
	text, err := CanonicalText(linearSpec(), nil)
	if err != nil {
		t.Fatalf("CanonicalText: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(text), "\n")
	if len(lines) != 4 { // 1 module + 2 data nodes + 1 declared-output line
		t.Fatalf("expected 4 canonical lines, got %d:\n%s", len(lines), text)
	}
	last := lines[len(lines)-1]
	if !strings.HasPrefix(last, "output output ") {
		t.Fatalf("expected trailing output line for declared output %q, got %q", "output", last)
	}
}

func TestStructuralHash_ChangesWhenOutputBindingRebinds(t *testing.T) {
	a := linearSpec()
	hashA, err := StructuralHash(a, nil)
	if err != nil {
		t.Fatalf("StructuralHash: %v", err)
	}

	// Rebind the declared output "output" to the input data node instead of
	// the module's own output — same node set and edges, different observable
	// result — the hash must change even though no node/edge was added.
	b := linearSpec()
	b.OutputBindings = map[string]string{"output": "data-in"}
	hashB, err := StructuralHash(b, nil)
	if err != nil {
		t.Fatalf("StructuralHash: %v", err)
	}

	if hashA == hashB {
		t.Fatalf("expected structural hash to change when declared output rebinds to a different data node, got identical hash %q for both", hashA)
	}
}

func TestSyntacticHash_EmptyWhenUnavailable(t *testing.T) {
	if SyntacticHash("") != "" {
		t.Fatalf("expected empty syntactic hash for empty source")
	}
	if SyntacticHash("source") == "" {
		t.Fatalf("expected non-empty syntactic hash for non-empty source")
	}
}
