package ctype

import (
	"fmt"

	goerrors "github.com/constellation-engine/core/errors"
)

// Value is a self-describing, typed value: the boundary representation used
// for inputs, outputs, and anywhere a value crosses the engine's external
// surface (§3 CValue). Every Value carries its own Type so callers can
// validate and introspect it without consulting a DagSpec.
type Value struct {
	typ  *Type
	data any
}

// Type returns the value's runtime type.
func (v Value) Type() *Type { return v.typ }

// IsZero reports whether v is the zero Value (no type set).
func (v Value) IsZero() bool { return v.typ == nil }

func NewUnit() Value { return Value{typ: Unit, data: nil} }

func NewBool(b bool) Value { return Value{typ: Bool, data: b} }

func NewInt(i int64) Value { return Value{typ: Int, data: i} }

func NewFloat(f float64) Value { return Value{typ: Float, data: f} }

func NewString(s string) Value { return Value{typ: String, data: s} }

// NewList constructs a List<elem> value. Every item must already have type
// elem; mismatched items return a TypeMismatch error.
func NewList(elem *Type, items []Value) (Value, error) {
	for i, it := range items {
		if !Equal(it.typ, elem) {
			return Value{}, goerrors.TypeMismatch(fmt.Sprintf("list element %d", i), elem.String(), it.typ.String())
		}
	}
	return Value{typ: List(elem), data: items}, nil
}

// NewMap constructs a Map<key,val> value from ordered pairs (maps in Go have
// no stable iteration order, so callers that need determinism pass pairs).
func NewMap(key, val *Type, pairs []Pair) (Value, error) {
	for i, p := range pairs {
		if !Equal(p.Key.typ, key) {
			return Value{}, goerrors.TypeMismatch(fmt.Sprintf("map key %d", i), key.String(), p.Key.typ.String())
		}
		if !Equal(p.Val.typ, val) {
			return Value{}, goerrors.TypeMismatch(fmt.Sprintf("map value %d", i), val.String(), p.Val.typ.String())
		}
	}
	return Value{typ: Map(key, val), data: append([]Pair(nil), pairs...)}, nil
}

// Pair is one key/value entry of a Map value, kept as an ordered slice so
// Map values are deterministic to hash and serialize.
type Pair struct {
	Key Value
	Val Value
}

// NewSome constructs an Option<elem> value carrying a present inner value.
func NewSome(elem *Type, inner Value) (Value, error) {
	if !Equal(inner.typ, elem) {
		return Value{}, goerrors.TypeMismatch("option value", elem.String(), inner.typ.String())
	}
	return Value{typ: Option(elem), data: &inner}, nil
}

// NewNone constructs an Option<elem> value carrying no inner value.
func NewNone(elem *Type) Value {
	return Value{typ: Option(elem), data: (*Value)(nil)}
}

// NewProduct constructs a Product value. fields must match the product
// type's declared fields by name and position.
func NewProduct(t *Type, fields map[string]Value) (Value, error) {
	if t.Kind != KindProduct {
		return Value{}, goerrors.TypeMismatch("product", "Product", t.String())
	}
	ordered := make([]Value, len(t.Fields))
	for i, f := range t.Fields {
		fv, ok := fields[f.Name]
		if !ok {
			return Value{}, goerrors.InputValidation("", fmt.Sprintf("missing product field %q", f.Name))
		}
		if !Equal(fv.typ, f.Type) {
			return Value{}, goerrors.TypeMismatch(fmt.Sprintf("field %q", f.Name), f.Type.String(), fv.typ.String())
		}
		ordered[i] = fv
	}
	return Value{typ: t, data: ordered}, nil
}

// Bool returns the underlying bool and whether v has Kind Bool.
func (v Value) Bool() (bool, bool) {
	b, ok := v.data.(bool)
	return b, ok && v.typ != nil && v.typ.Kind == KindBool
}

// Int returns the underlying int64 and whether v has Kind Int.
func (v Value) Int() (int64, bool) {
	i, ok := v.data.(int64)
	return i, ok && v.typ != nil && v.typ.Kind == KindInt
}

// Float returns the underlying float64 and whether v has Kind Float.
func (v Value) Float() (float64, bool) {
	f, ok := v.data.(float64)
	return f, ok && v.typ != nil && v.typ.Kind == KindFloat
}

// Str returns the underlying string and whether v has Kind String.
func (v Value) Str() (string, bool) {
	s, ok := v.data.(string)
	return s, ok && v.typ != nil && v.typ.Kind == KindString
}

// List returns the underlying element slice and whether v has Kind List.
func (v Value) List() ([]Value, bool) {
	l, ok := v.data.([]Value)
	return l, ok && v.typ != nil && v.typ.Kind == KindList
}

// MapPairs returns the underlying ordered pairs and whether v has Kind Map.
func (v Value) MapPairs() ([]Pair, bool) {
	m, ok := v.data.([]Pair)
	return m, ok && v.typ != nil && v.typ.Kind == KindMap
}

// Option returns the inner value (if present) and whether v has Kind Option.
func (v Value) Option() (*Value, bool) {
	p, ok := v.data.(*Value)
	return p, ok && v.typ != nil && v.typ.Kind == KindOption
}

// Fields returns the underlying ordered field values and whether v has Kind
// Product.
func (v Value) Fields() ([]Value, bool) {
	f, ok := v.data.([]Value)
	return f, ok && v.typ != nil && v.typ.Kind == KindProduct
}

// Field looks up a named product field value by its declared type's field
// order. Returns (zero, false) if v is not a Product or the field is absent.
func (v Value) Field(name string) (Value, bool) {
	if v.typ == nil || v.typ.Kind != KindProduct {
		return Value{}, false
	}
	fields, _ := v.Fields()
	for i, f := range v.typ.Fields {
		if f.Name == name && i < len(fields) {
			return fields[i], true
		}
	}
	return Value{}, false
}
