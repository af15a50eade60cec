package ctype

import (
	"encoding/json"
	"fmt"

	goerrors "github.com/constellation-engine/core/errors"
)

// Strategy names the JSON parsing approach selected for a payload based on
// its size. Selection is adaptive (§3 Data Model, JSON conversion
// strategies): large payloads decode through a bounded streaming
// tokenizer; small and mid-size payloads (Eager and Lazy) are both decoded
// eagerly, so Lazy is a label only, with no on-demand field access.
type Strategy int

const (
	StrategyEager Strategy = iota
	StrategyLazy
	StrategyStreaming
)

func (s Strategy) String() string {
	switch s {
	case StrategyEager:
		return "eager"
	case StrategyLazy:
		return "lazy"
	case StrategyStreaming:
		return "streaming"
	default:
		return "unknown"
	}
}

// Size thresholds, in bytes, that select a parsing Strategy.
const (
	EagerMaxBytes = 10 * 1024
	LazyMaxBytes  = 100 * 1024
)

// DetectStrategy picks the parsing Strategy for a payload of the given size.
func DetectStrategy(payloadBytes int) Strategy {
	switch {
	case payloadBytes < EagerMaxBytes:
		return StrategyEager
	case payloadBytes < LazyMaxBytes:
		return StrategyLazy
	default:
		return StrategyStreaming
	}
}

// ParseJSON decodes a JSON payload into a Value of type t, selecting a
// parsing Strategy by payload size. Eager and Lazy payloads take the same
// path: a full json.Unmarshal followed by FromJSON, producing a fully
// materialized Value; nothing is deferred or cached. Streaming payloads
// are decoded through bounded token-by-token conversion (see
// decodeStreaming) to cap memory use on oversized inputs.
func ParseJSON(data []byte, t *Type) (Value, error) {
	switch DetectStrategy(len(data)) {
	case StrategyEager, StrategyLazy:
		var raw any
		if err := json.Unmarshal(data, &raw); err != nil {
			return Value{}, goerrors.Codec("json-unmarshal", err)
		}
		return FromJSON(raw, t)
	default:
		return decodeStreaming(data, t)
	}
}

// FromJSON converts an already-decoded generic JSON tree (as produced by
// encoding/json into any) into a typed Value, validating it against t.
func FromJSON(raw any, t *Type) (Value, error) {
	if t == nil {
		return Value{}, goerrors.TypeMismatch("json", "<type>", "<nil>")
	}
	switch t.Kind {
	case KindUnit:
		if raw != nil {
			return Value{}, goerrors.TypeMismatch("json", "Unit", fmt.Sprintf("%T", raw))
		}
		return NewUnit(), nil
	case KindBool:
		b, ok := raw.(bool)
		if !ok {
			return Value{}, goerrors.TypeMismatch("json", "Bool", fmt.Sprintf("%T", raw))
		}
		return NewBool(b), nil
	case KindInt:
		n, ok := raw.(float64)
		if !ok || n != float64(int64(n)) {
			return Value{}, goerrors.TypeMismatch("json", "Int", fmt.Sprintf("%T", raw))
		}
		return NewInt(int64(n)), nil
	case KindFloat:
		n, ok := raw.(float64)
		if !ok {
			return Value{}, goerrors.TypeMismatch("json", "Float", fmt.Sprintf("%T", raw))
		}
		return NewFloat(n), nil
	case KindString:
		s, ok := raw.(string)
		if !ok {
			return Value{}, goerrors.TypeMismatch("json", "String", fmt.Sprintf("%T", raw))
		}
		return NewString(s), nil
	case KindList:
		arr, ok := raw.([]any)
		if !ok {
			return Value{}, goerrors.TypeMismatch("json", t.String(), fmt.Sprintf("%T", raw))
		}
		items := make([]Value, len(arr))
		for i, item := range arr {
			v, err := FromJSON(item, t.Elem)
			if err != nil {
				return Value{}, err
			}
			items[i] = v
		}
		return NewList(t.Elem, items)
	case KindMap:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, goerrors.TypeMismatch("json", t.String(), fmt.Sprintf("%T", raw))
		}
		if t.Key.Kind != KindString {
			return Value{}, goerrors.TypeMismatch("json", "Map with String key", t.Key.String())
		}
		pairs := make([]Pair, 0, len(obj))
		for k, item := range obj {
			v, err := FromJSON(item, t.Val)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: NewString(k), Val: v})
		}
		return NewMap(t.Key, t.Val, pairs)
	case KindOption:
		if raw == nil {
			return NewNone(t.Elem), nil
		}
		inner, err := FromJSON(raw, t.Elem)
		if err != nil {
			return Value{}, err
		}
		return NewSome(t.Elem, inner)
	case KindProduct:
		obj, ok := raw.(map[string]any)
		if !ok {
			return Value{}, goerrors.TypeMismatch("json", t.String(), fmt.Sprintf("%T", raw))
		}
		fields := make(map[string]Value, len(t.Fields))
		for _, f := range t.Fields {
			item, present := obj[f.Name]
			if !present {
				if f.Type.Kind == KindOption {
					fields[f.Name] = NewNone(f.Type.Elem)
					continue
				}
				return Value{}, goerrors.InputValidation("", fmt.Sprintf("missing product field %q", f.Name))
			}
			v, err := FromJSON(item, f.Type)
			if err != nil {
				return Value{}, err
			}
			fields[f.Name] = v
		}
		return NewProduct(t, fields)
	default:
		return Value{}, goerrors.TypeMismatch("json", "<unknown>", t.String())
	}
}

// ToJSON converts a Value back to a generic JSON-marshalable tree.
func ToJSON(v Value) (any, error) {
	if v.IsZero() {
		return nil, nil
	}
	switch v.typ.Kind {
	case KindUnit:
		return nil, nil
	case KindBool:
		b, _ := v.Bool()
		return b, nil
	case KindInt:
		i, _ := v.Int()
		return i, nil
	case KindFloat:
		f, _ := v.Float()
		return f, nil
	case KindString:
		s, _ := v.Str()
		return s, nil
	case KindList:
		items, _ := v.List()
		out := make([]any, len(items))
		for i, it := range items {
			jv, err := ToJSON(it)
			if err != nil {
				return nil, err
			}
			out[i] = jv
		}
		return out, nil
	case KindMap:
		pairs, _ := v.MapPairs()
		out := make(map[string]any, len(pairs))
		for _, p := range pairs {
			k, _ := p.Key.Str()
			jv, err := ToJSON(p.Val)
			if err != nil {
				return nil, err
			}
			out[k] = jv
		}
		return out, nil
	case KindOption:
		inner, _ := v.Option()
		if inner == nil {
			return nil, nil
		}
		return ToJSON(*inner)
	case KindProduct:
		fields, _ := v.Fields()
		out := make(map[string]any, len(fields))
		for i, f := range v.typ.Fields {
			jv, err := ToJSON(fields[i])
			if err != nil {
				return nil, err
			}
			out[f.Name] = jv
		}
		return out, nil
	default:
		return nil, goerrors.TypeMismatch("json", "<unknown>", v.typ.String())
	}
}

// MarshalJSON encodes v as JSON bytes.
func MarshalJSON(v Value) ([]byte, error) {
	tree, err := ToJSON(v)
	if err != nil {
		return nil, err
	}
	data, err := json.Marshal(tree)
	if err != nil {
		return nil, goerrors.Codec("json-marshal", err)
	}
	return data, nil
}
