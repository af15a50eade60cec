// Package ctype implements the engine's closed-sum runtime type system and
// the dual value representations (typed CValue, untyped RawValue) that flow
// through a loaded pipeline. Types are immutable trees built from a fixed set
// of kinds; there is no user-extensible type registry, mirroring the fixed
// Node/Port contract kbukum-gokit's dag package uses for state access.
package ctype

import (
	"fmt"
	"strings"
)

// Kind enumerates the closed set of runtime type constructors.
type Kind int

const (
	KindUnit Kind = iota
	KindBool
	KindInt
	KindFloat
	KindString
	KindList
	KindMap
	KindOption
	KindProduct
)

func (k Kind) String() string {
	switch k {
	case KindUnit:
		return "Unit"
	case KindBool:
		return "Bool"
	case KindInt:
		return "Int"
	case KindFloat:
		return "Float"
	case KindString:
		return "String"
	case KindList:
		return "List"
	case KindMap:
		return "Map"
	case KindOption:
		return "Option"
	case KindProduct:
		return "Product"
	default:
		return "Unknown"
	}
}

// Field is one ordered member of a Product type. Field order is
// significant: two Products with the same field set in different orders are
// distinct types and hash differently.
type Field struct {
	Name string
	Type *Type
}

// Type is a node in the closed-sum runtime type tree. Only the fields
// relevant to Kind are populated; callers should not read fields outside
// that contract.
type Type struct {
	Kind   Kind
	Elem   *Type   // List, Option
	Key    *Type   // Map
	Val    *Type   // Map
	Fields []Field // Product, in declared order
}

var (
	Unit   = &Type{Kind: KindUnit}
	Bool   = &Type{Kind: KindBool}
	Int    = &Type{Kind: KindInt}
	Float  = &Type{Kind: KindFloat}
	String = &Type{Kind: KindString}
)

// List constructs a List<Elem> type.
func List(elem *Type) *Type { return &Type{Kind: KindList, Elem: elem} }

// Map constructs a Map<Key,Val> type.
func Map(key, val *Type) *Type { return &Type{Kind: KindMap, Key: key, Val: val} }

// Option constructs an Option<Elem> type.
func Option(elem *Type) *Type { return &Type{Kind: KindOption, Elem: elem} }

// Product constructs an ordered-field Product type. Fields are kept in the
// order given, and Equal compares them in that order, so two products with
// the same fields in a different order are not equal (§3 ordered fields).
func Product(fields ...Field) *Type {
	return &Type{Kind: KindProduct, Fields: fields}
}

// Equal reports whether two types are structurally identical, including
// Product field order.
func Equal(a, b *Type) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Kind != b.Kind {
		return false
	}
	switch a.Kind {
	case KindList, KindOption:
		return Equal(a.Elem, b.Elem)
	case KindMap:
		return Equal(a.Key, b.Key) && Equal(a.Val, b.Val)
	case KindProduct:
		if len(a.Fields) != len(b.Fields) {
			return false
		}
		for i := range a.Fields {
			if a.Fields[i].Name != b.Fields[i].Name || !Equal(a.Fields[i].Type, b.Fields[i].Type) {
				return false
			}
		}
		return true
	default:
		return true
	}
}

// String renders the canonical type signature grammar used in the DagSpec
// text format (§6): Int, List<T>, Map<K,V>, Option<T>,
// Product{name:T,name2:T2}. Product fields print in declared order, never
// sorted, so the printed signature round-trips through ParseSignature
// losslessly.
func (t *Type) String() string {
	if t == nil {
		return ""
	}
	switch t.Kind {
	case KindList:
		return fmt.Sprintf("List<%s>", t.Elem.String())
	case KindOption:
		return fmt.Sprintf("Option<%s>", t.Elem.String())
	case KindMap:
		return fmt.Sprintf("Map<%s,%s>", t.Key.String(), t.Val.String())
	case KindProduct:
		parts := make([]string, len(t.Fields))
		for i, f := range t.Fields {
			parts[i] = fmt.Sprintf("%s:%s", f.Name, f.Type.String())
		}
		return fmt.Sprintf("Product{%s}", strings.Join(parts, ","))
	default:
		return t.Kind.String()
	}
}
