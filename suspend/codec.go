package suspend

import (
	"encoding/json"
	"time"

	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/dagspec"
	"github.com/constellation-engine/core/engine"
	goerrors "github.com/constellation-engine/core/errors"
)

// typedValue is the self-describing wire form of a ctype.Value: the
// canonical type signature alongside its JSON tree, so Decode can rebuild
// the exact CType a bare json.Unmarshal into map[string]any would lose
// (§4.6 "suspended execution wire format").
type typedValue struct {
	Sig   string `json:"type"`
	Value any    `json:"value"`
}

type envelope struct {
	ExecutionID     string                                `json:"executionId"`
	StructuralHash  string                                `json:"structuralHash"`
	ResumptionCount int                                   `json:"resumptionCount"`
	SuspendedAt     time.Time                              `json:"suspendedAt"`
	DagSpec         *dagspec.DagSpec                      `json:"dagSpec"`
	ModuleOptions   map[string]dagspec.ModuleCallOptions   `json:"moduleOptions"`
	ProvidedInputs  map[string]typedValue                 `json:"providedInputs"`
	ComputedValues  map[string]typedValue                 `json:"computedValues"`
	ModuleStatuses  map[string]engine.ModuleStatus         `json:"moduleStatuses"`
}

func encodeValues(values map[string]ctype.Value) (map[string]typedValue, error) {
	out := make(map[string]typedValue, len(values))
	for id, v := range values {
		raw, err := ctype.ToJSON(v)
		if err != nil {
			return nil, goerrors.Codec("encode-value", err)
		}
		sig := ""
		if t := v.Type(); t != nil {
			sig = t.String()
		}
		out[id] = typedValue{Sig: sig, Value: raw}
	}
	return out, nil
}

func decodeValues(values map[string]typedValue) (map[string]ctype.Value, error) {
	out := make(map[string]ctype.Value, len(values))
	for id, tv := range values {
		t, err := ctype.ParseSignature(tv.Sig)
		if err != nil {
			return nil, goerrors.Codec("decode-value-signature", err)
		}
		v, err := ctype.FromJSON(tv.Value, t)
		if err != nil {
			return nil, goerrors.Codec("decode-value", err)
		}
		out[id] = v
	}
	return out, nil
}

// Encode serializes a State to its durable/wire JSON form.
func Encode(s *State) ([]byte, error) {
	inputs, err := encodeValues(s.Snapshot.ProvidedInputs)
	if err != nil {
		return nil, err
	}
	computed, err := encodeValues(s.Snapshot.ComputedValues)
	if err != nil {
		return nil, err
	}
	env := envelope{
		ExecutionID:     s.Snapshot.ExecutionID,
		StructuralHash:  s.Snapshot.StructuralHash,
		ResumptionCount: s.Snapshot.ResumptionCount,
		SuspendedAt:     s.SuspendedAt,
		DagSpec:         s.Snapshot.DagSpec,
		ModuleOptions:   s.Snapshot.ModuleOptions,
		ProvidedInputs:  inputs,
		ComputedValues:  computed,
		ModuleStatuses:  s.Snapshot.ModuleStatuses,
	}
	data, err := json.Marshal(env)
	if err != nil {
		return nil, goerrors.Codec("marshal-envelope", err)
	}
	return data, nil
}

// Decode rebuilds a State from bytes produced by Encode.
func Decode(data []byte) (*State, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, goerrors.Codec("unmarshal-envelope", err)
	}
	inputs, err := decodeValues(env.ProvidedInputs)
	if err != nil {
		return nil, err
	}
	computed, err := decodeValues(env.ComputedValues)
	if err != nil {
		return nil, err
	}
	return &State{
		Snapshot: &engine.Snapshot{
			ExecutionID:     env.ExecutionID,
			StructuralHash:  env.StructuralHash,
			ResumptionCount: env.ResumptionCount,
			DagSpec:         env.DagSpec,
			ModuleOptions:   env.ModuleOptions,
			ProvidedInputs:  inputs,
			ComputedValues:  computed,
			ModuleStatuses:  env.ModuleStatuses,
		},
		SuspendedAt: env.SuspendedAt,
	}, nil
}
