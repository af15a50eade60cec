package ctype

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	goerrors "github.com/constellation-engine/core/errors"
)

// Streaming decode limits. Payloads classified StrategyStreaming (>100KB,
// see DetectStrategy) are decoded token-by-token against the declared Type
// instead of being fully materialized into a generic any tree first, so a
// single oversized payload cannot blow past these caps before the engine
// notices.
const (
	MaxStreamingStackDepth = 50
	MaxStreamingArrayLen   = 1_000_000
	MaxStreamingPayload    = 100 * 1024 * 1024
)

// decodeStreaming converts a JSON payload into a Value of type t using
// json.Decoder's token interface, enforcing MaxStreamingStackDepth,
// MaxStreamingArrayLen, and MaxStreamingPayload along the way.
func decodeStreaming(data []byte, t *Type) (Value, error) {
	if len(data) > MaxStreamingPayload {
		return Value{}, goerrors.ResourceExhausted("json-payload-bytes")
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	v, err := decodeStreamingValue(dec, t, 0)
	if err != nil {
		return Value{}, err
	}
	if _, err := dec.Token(); err != io.EOF {
		return Value{}, goerrors.Codec("json-streaming", fmt.Errorf("trailing data after value"))
	}
	return v, nil
}

func decodeStreamingValue(dec *json.Decoder, t *Type, depth int) (Value, error) {
	if depth > MaxStreamingStackDepth {
		return Value{}, goerrors.ResourceExhausted("json-stack-depth")
	}
	tok, err := dec.Token()
	if err != nil {
		return Value{}, goerrors.Codec("json-streaming", err)
	}
	return decodeStreamingToken(dec, tok, t, depth)
}

func decodeStreamingToken(dec *json.Decoder, tok json.Token, t *Type, depth int) (Value, error) {
	if t == nil {
		return Value{}, goerrors.TypeMismatch("json", "<type>", "<nil>")
	}
	switch v := tok.(type) {
	case nil:
		if t.Kind == KindOption {
			return NewNone(t.Elem), nil
		}
		if t.Kind == KindUnit {
			return NewUnit(), nil
		}
		return Value{}, goerrors.TypeMismatch("json-streaming", t.String(), "null")
	case bool:
		if t.Kind != KindBool {
			return Value{}, goerrors.TypeMismatch("json-streaming", t.String(), "Bool")
		}
		return NewBool(v), nil
	case json.Number:
		return decodeStreamingNumber(v, t)
	case string:
		if t.Kind == KindOption {
			return wrapOptionValue(NewString(v), t)
		}
		if t.Kind != KindString {
			return Value{}, goerrors.TypeMismatch("json-streaming", t.String(), "String")
		}
		return NewString(v), nil
	case json.Delim:
		switch v {
		case '[':
			return decodeStreamingArray(dec, t, depth+1)
		case '{':
			return decodeStreamingObject(dec, t, depth+1)
		default:
			return Value{}, goerrors.Codec("json-streaming", fmt.Errorf("unexpected delimiter %q", v))
		}
	default:
		return Value{}, goerrors.Codec("json-streaming", fmt.Errorf("unhandled token type %T", tok))
	}
}

func decodeStreamingNumber(n json.Number, t *Type) (Value, error) {
	target := t
	if t.Kind == KindOption {
		target = t.Elem
	}
	switch target.Kind {
	case KindInt:
		i, err := n.Int64()
		if err != nil {
			return Value{}, goerrors.TypeMismatch("json-streaming", "Int", "Float")
		}
		return wrapOptionValue(NewInt(i), t)
	case KindFloat:
		f, err := n.Float64()
		if err != nil {
			return Value{}, goerrors.Codec("json-streaming", err)
		}
		return wrapOptionValue(NewFloat(f), t)
	default:
		return Value{}, goerrors.TypeMismatch("json-streaming", t.String(), "Number")
	}
}

func wrapOptionValue(inner Value, t *Type) (Value, error) {
	if t.Kind != KindOption {
		return inner, nil
	}
	return NewSome(t.Elem, inner)
}

func decodeStreamingArray(dec *json.Decoder, t *Type, depth int) (Value, error) {
	elemType := t
	if t.Kind == KindOption {
		elemType = t.Elem
	}
	if elemType.Kind != KindList {
		return Value{}, goerrors.TypeMismatch("json-streaming", t.String(), "List")
	}
	var items []Value
	for dec.More() {
		if len(items) >= MaxStreamingArrayLen {
			return Value{}, goerrors.ResourceExhausted("json-array-length")
		}
		item, err := decodeStreamingValue(dec, elemType.Elem, depth)
		if err != nil {
			return Value{}, err
		}
		items = append(items, item)
	}
	if _, err := dec.Token(); err != nil { // closing ]
		return Value{}, goerrors.Codec("json-streaming", err)
	}
	list, err := NewList(elemType.Elem, items)
	if err != nil {
		return Value{}, err
	}
	return wrapOptionValue(list, t)
}

func decodeStreamingObject(dec *json.Decoder, t *Type, depth int) (Value, error) {
	nodeType := t
	if t.Kind == KindOption {
		nodeType = t.Elem
	}
	switch nodeType.Kind {
	case KindMap:
		if nodeType.Key.Kind != KindString {
			return Value{}, goerrors.TypeMismatch("json-streaming", "Map with String key", nodeType.Key.String())
		}
		var pairs []Pair
		for dec.More() {
			if len(pairs) >= MaxStreamingArrayLen {
				return Value{}, goerrors.ResourceExhausted("json-map-length")
			}
			keyTok, err := dec.Token()
			if err != nil {
				return Value{}, goerrors.Codec("json-streaming", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return Value{}, goerrors.Codec("json-streaming", fmt.Errorf("expected string map key"))
			}
			val, err := decodeStreamingValue(dec, nodeType.Val, depth)
			if err != nil {
				return Value{}, err
			}
			pairs = append(pairs, Pair{Key: NewString(key), Val: val})
		}
		if _, err := dec.Token(); err != nil { // closing }
			return Value{}, goerrors.Codec("json-streaming", err)
		}
		m, err := NewMap(nodeType.Key, nodeType.Val, pairs)
		if err != nil {
			return Value{}, err
		}
		return wrapOptionValue(m, t)
	case KindProduct:
		fields := make(map[string]Value, len(nodeType.Fields))
		fieldType := func(name string) *Type {
			for _, f := range nodeType.Fields {
				if f.Name == name {
					return f.Type
				}
			}
			return nil
		}
		for dec.More() {
			keyTok, err := dec.Token()
			if err != nil {
				return Value{}, goerrors.Codec("json-streaming", err)
			}
			key, ok := keyTok.(string)
			if !ok {
				return Value{}, goerrors.Codec("json-streaming", fmt.Errorf("expected string field name"))
			}
			ft := fieldType(key)
			if ft == nil {
				// unknown field: skip its value
				var discard any
				if err := dec.Decode(&discard); err != nil {
					return Value{}, goerrors.Codec("json-streaming", err)
				}
				continue
			}
			v, err := decodeStreamingValue(dec, ft, depth)
			if err != nil {
				return Value{}, err
			}
			fields[key] = v
		}
		if _, err := dec.Token(); err != nil { // closing }
			return Value{}, goerrors.Codec("json-streaming", err)
		}
		for _, f := range nodeType.Fields {
			if _, present := fields[f.Name]; !present && f.Type.Kind == KindOption {
				fields[f.Name] = NewNone(f.Type.Elem)
			}
		}
		p, err := NewProduct(nodeType, fields)
		if err != nil {
			return Value{}, err
		}
		return wrapOptionValue(p, t)
	default:
		return Value{}, goerrors.TypeMismatch("json-streaming", t.String(), "object")
	}
}
