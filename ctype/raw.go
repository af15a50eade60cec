package ctype

import goerrors "github.com/constellation-engine/core/errors"

// Raw is the untyped internal value representation used on the hot path
// inside the execution engine. Unlike Value, a Raw carries no Type tag of
// its own; the engine always has the Type available from the DagSpec node
// that produced it, so re-tagging every value in flight would be pure
// overhead. Primitive kinds (Bool, Int, Float, String, Unit) are stored as
// their native Go scalar, avoiding the extra pointer indirection and
// allocation a boxed Value carries for the common case.
type Raw any

// ToRaw strips a Value down to its untyped Raw form for internal use.
func ToRaw(v Value) Raw {
	if v.IsZero() {
		return nil
	}
	switch v.typ.Kind {
	case KindUnit:
		return nil
	case KindBool:
		b, _ := v.Bool()
		return b
	case KindInt:
		i, _ := v.Int()
		return i
	case KindFloat:
		f, _ := v.Float()
		return f
	case KindString:
		s, _ := v.Str()
		return s
	case KindList:
		items, _ := v.List()
		switch v.typ.Elem.Kind {
		case KindInt:
			out := make(RIntList, len(items))
			for i, it := range items {
				out[i], _ = it.Int()
			}
			return out
		case KindFloat:
			out := make(RFloatList, len(items))
			for i, it := range items {
				out[i], _ = it.Float()
			}
			return out
		case KindBool:
			out := make(RBoolList, len(items))
			for i, it := range items {
				out[i], _ = it.Bool()
			}
			return out
		case KindString:
			out := make(RStringList, len(items))
			for i, it := range items {
				out[i], _ = it.Str()
			}
			return out
		default:
			out := make([]Raw, len(items))
			for i, it := range items {
				out[i] = ToRaw(it)
			}
			return out
		}
	case KindMap:
		pairs, _ := v.MapPairs()
		out := make([]RawPair, len(pairs))
		for i, p := range pairs {
			out[i] = RawPair{Key: ToRaw(p.Key), Val: ToRaw(p.Val)}
		}
		return out
	case KindOption:
		inner, _ := v.Option()
		if inner == nil {
			return (*Raw)(nil)
		}
		r := ToRaw(*inner)
		return &r
	case KindProduct:
		fields, _ := v.Fields()
		out := make([]Raw, len(fields))
		for i, f := range fields {
			out[i] = ToRaw(f)
		}
		return out
	default:
		return nil
	}
}

// RawPair is the untyped analogue of Pair, used inside Raw map values.
type RawPair struct {
	Key Raw
	Val Raw
}

// Unboxed primitive list backings. A List<Int>/List<Float>/List<Bool>/
// List<String> is stored as one of these instead of a []Raw of boxed
// scalars, cutting per-element overhead for large numeric collections.
type (
	RIntList    []int64
	RFloatList  []float64
	RBoolList   []bool
	RStringList []string
)

// FromRaw re-attaches a Type to a Raw value, producing a boundary-ready
// Value. Used whenever a raw internal result crosses back out to a caller
// (execution output, suspension snapshot computedValues, etc).
func FromRaw(t *Type, r Raw) (Value, error) {
	if t == nil {
		return Value{}, goerrors.TypeMismatch("raw", "<type>", "<nil>")
	}
	switch t.Kind {
	case KindUnit:
		return NewUnit(), nil
	case KindBool:
		b, ok := r.(bool)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", "Bool", typeName(r))
		}
		return NewBool(b), nil
	case KindInt:
		i, ok := r.(int64)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", "Int", typeName(r))
		}
		return NewInt(i), nil
	case KindFloat:
		f, ok := r.(float64)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", "Float", typeName(r))
		}
		return NewFloat(f), nil
	case KindString:
		s, ok := r.(string)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", "String", typeName(r))
		}
		return NewString(s), nil
	case KindList:
		switch list := r.(type) {
		case RIntList:
			vals := make([]Value, len(list))
			for i, n := range list {
				vals[i] = NewInt(n)
			}
			return NewList(t.Elem, vals)
		case RFloatList:
			vals := make([]Value, len(list))
			for i, n := range list {
				vals[i] = NewFloat(n)
			}
			return NewList(t.Elem, vals)
		case RBoolList:
			vals := make([]Value, len(list))
			for i, b := range list {
				vals[i] = NewBool(b)
			}
			return NewList(t.Elem, vals)
		case RStringList:
			vals := make([]Value, len(list))
			for i, s := range list {
				vals[i] = NewString(s)
			}
			return NewList(t.Elem, vals)
		case []Raw:
			vals := make([]Value, len(list))
			for i, it := range list {
				v, err := FromRaw(t.Elem, it)
				if err != nil {
					return Value{}, err
				}
				vals[i] = v
			}
			return NewList(t.Elem, vals)
		default:
			return Value{}, goerrors.TypeMismatch("raw", t.String(), typeName(r))
		}
	case KindMap:
		pairs, ok := r.([]RawPair)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", t.String(), typeName(r))
		}
		vals := make([]Pair, len(pairs))
		for i, p := range pairs {
			k, err := FromRaw(t.Key, p.Key)
			if err != nil {
				return Value{}, err
			}
			v, err := FromRaw(t.Val, p.Val)
			if err != nil {
				return Value{}, err
			}
			vals[i] = Pair{Key: k, Val: v}
		}
		return NewMap(t.Key, t.Val, vals)
	case KindOption:
		ptr, ok := r.(*Raw)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", t.String(), typeName(r))
		}
		if ptr == nil {
			return NewNone(t.Elem), nil
		}
		inner, err := FromRaw(t.Elem, *ptr)
		if err != nil {
			return Value{}, err
		}
		return NewSome(t.Elem, inner)
	case KindProduct:
		items, ok := r.([]Raw)
		if !ok {
			return Value{}, goerrors.TypeMismatch("raw", t.String(), typeName(r))
		}
		if len(items) != len(t.Fields) {
			return Value{}, goerrors.TypeMismatch("raw", t.String(), "product with wrong field count")
		}
		fields := make(map[string]Value, len(items))
		for i, f := range t.Fields {
			v, err := FromRaw(f.Type, items[i])
			if err != nil {
				return Value{}, err
			}
			fields[f.Name] = v
		}
		return NewProduct(t, fields)
	default:
		return Value{}, goerrors.TypeMismatch("raw", "<unknown>", t.String())
	}
}

func typeName(r Raw) string {
	if r == nil {
		return "nil"
	}
	switch r.(type) {
	case bool:
		return "bool"
	case int64:
		return "int64"
	case float64:
		return "float64"
	case string:
		return "string"
	case []Raw:
		return "[]Raw"
	case RIntList:
		return "RIntList"
	case RFloatList:
		return "RFloatList"
	case RBoolList:
		return "RBoolList"
	case RStringList:
		return "RStringList"
	case []RawPair:
		return "[]RawPair"
	case *Raw:
		return "*Raw"
	default:
		return "unknown"
	}
}
