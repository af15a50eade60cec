package engine

import (
	"fmt"

	"github.com/constellation-engine/core/ctype"
	"github.com/constellation-engine/core/dagspec"
	goerrors "github.com/constellation-engine/core/errors"
)

// evaluateInline computes the value an inline transform produces from its
// already-computed inputs (§4.5.3). Inline transforms are pure and
// closure-free: they never suspend and never schedule a module, so this is
// a plain recursive function rather than a scheduled unit of work.
func evaluateInline(it *dagspec.InlineTransform, inputs map[string]ctype.Value) (ctype.Value, error) {
	switch it.Kind {
	case dagspec.TransformAccess:
		src, err := single(inputs)
		if err != nil {
			return ctype.Value{}, err
		}
		name := it.FieldNames[0]
		fv, ok := src.Field(name)
		if !ok {
			return ctype.Value{}, goerrors.TypeMismatch("inline access", name, "missing field")
		}
		return fv, nil

	case dagspec.TransformProject:
		src, err := single(inputs)
		if err != nil {
			return ctype.Value{}, err
		}
		fields := make(map[string]ctype.Value, len(it.FieldNames))
		projType := make([]ctype.Field, 0, len(it.FieldNames))
		for _, name := range it.FieldNames {
			fv, ok := src.Field(name)
			if !ok {
				return ctype.Value{}, goerrors.TypeMismatch("inline project", name, "missing field")
			}
			fields[name] = fv
			projType = append(projType, ctype.Field{Name: name, Type: fv.Type()})
		}
		return ctype.NewProduct(ctype.Product(projType...), fields)

	case dagspec.TransformMerge:
		fields := make(map[string]ctype.Value)
		projType := make([]ctype.Field, 0)
		for _, name := range it.OperandInputs {
			v, ok := inputs[name]
			if !ok {
				return ctype.Value{}, goerrors.DataNotFound(name)
			}
			fv, ok := v.Fields()
			if !ok {
				return ctype.Value{}, goerrors.TypeMismatch("inline merge", "Product", v.Type().String())
			}
			for i, f := range v.Type().Fields {
				fields[f.Name] = fv[i]
				projType = append(projType, f)
			}
		}
		return ctype.NewProduct(ctype.Product(projType...), fields)

	case dagspec.TransformAnd:
		for _, name := range it.OperandInputs {
			b, ok := boolOf(inputs, name)
			if !ok {
				return ctype.Value{}, goerrors.TypeMismatch("inline and", "Bool", name)
			}
			if !b {
				return ctype.NewBool(false), nil
			}
		}
		return ctype.NewBool(true), nil

	case dagspec.TransformOr:
		for _, name := range it.OperandInputs {
			b, ok := boolOf(inputs, name)
			if !ok {
				return ctype.Value{}, goerrors.TypeMismatch("inline or", "Bool", name)
			}
			if b {
				return ctype.NewBool(true), nil
			}
		}
		return ctype.NewBool(false), nil

	case dagspec.TransformNot:
		b, ok := boolOf(inputs, it.OperandInput)
		if !ok {
			return ctype.Value{}, goerrors.TypeMismatch("inline not", "Bool", it.OperandInput)
		}
		return ctype.NewBool(!b), nil

	case dagspec.TransformConditional:
		cond, ok := boolOf(inputs, it.CondInput)
		if !ok {
			return ctype.Value{}, goerrors.TypeMismatch("inline conditional", "Bool", it.CondInput)
		}
		if cond {
			return mustInput(inputs, it.ThenInput)
		}
		return mustInput(inputs, it.ElseInput)

	case dagspec.TransformGuarded:
		guard, ok := boolOf(inputs, it.GuardInput)
		if !ok {
			return ctype.Value{}, goerrors.TypeMismatch("inline guarded", "Bool", it.GuardInput)
		}
		val, err := mustInput(inputs, it.ValueInput)
		if err != nil {
			return ctype.Value{}, err
		}
		if guard {
			return ctype.NewSome(val.Type(), val)
		}
		return ctype.NewNone(val.Type()), nil

	case dagspec.TransformListFilter, dagspec.TransformListMap, dagspec.TransformListAll, dagspec.TransformListAny:
		return evaluateListOp(it, inputs)

	case dagspec.TransformConstant:
		sig, err := dagspec.ParseSignature(it.ConstantSig)
		if err != nil {
			return ctype.Value{}, err
		}
		return ctype.FromJSON(it.ConstantJSON, sig)

	case dagspec.TransformBranch:
		for _, c := range it.Cases {
			b, ok := boolOf(inputs, c.CaseInput)
			if !ok {
				return ctype.Value{}, goerrors.TypeMismatch("inline branch", "Bool", c.CaseInput)
			}
			if b {
				return mustInput(inputs, c.ResultInput)
			}
		}
		return mustInput(inputs, it.DefaultInput)

	default:
		return ctype.Value{}, goerrors.ValidationError(fmt.Sprintf("unknown inline transform kind %q", it.Kind))
	}
}

func single(inputs map[string]ctype.Value) (ctype.Value, error) {
	for _, v := range inputs {
		return v, nil
	}
	return ctype.Value{}, goerrors.ValidationError("inline transform has no input")
}

func boolOf(inputs map[string]ctype.Value, name string) (bool, bool) {
	v, ok := inputs[name]
	if !ok {
		return false, false
	}
	return v.Bool()
}

func mustInput(inputs map[string]ctype.Value, name string) (ctype.Value, error) {
	v, ok := inputs[name]
	if !ok {
		return ctype.Value{}, goerrors.DataNotFound(name)
	}
	return v, nil
}

func evaluateListOp(it *dagspec.InlineTransform, inputs map[string]ctype.Value) (ctype.Value, error) {
	listVal, ok := inputs[it.ListInput]
	if !ok {
		return ctype.Value{}, goerrors.DataNotFound(it.ListInput)
	}
	items, ok := listVal.List()
	if !ok {
		return ctype.Value{}, goerrors.TypeMismatch("inline list op", "List", listVal.Type().String())
	}

	switch it.Kind {
	case dagspec.TransformListFilter:
		var kept []ctype.Value
		for _, item := range items {
			r, err := evaluateInline(it.Element, map[string]ctype.Value{it.ElementInput: item})
			if err != nil {
				return ctype.Value{}, err
			}
			b, ok := r.Bool()
			if !ok {
				return ctype.Value{}, goerrors.TypeMismatch("listFilter predicate", "Bool", r.Type().String())
			}
			if b {
				kept = append(kept, item)
			}
		}
		return ctype.NewList(listVal.Type().Elem, kept)

	case dagspec.TransformListMap:
		mapped := make([]ctype.Value, 0, len(items))
		var elemType *ctype.Type
		for _, item := range items {
			r, err := evaluateInline(it.Element, map[string]ctype.Value{it.ElementInput: item})
			if err != nil {
				return ctype.Value{}, err
			}
			elemType = r.Type()
			mapped = append(mapped, r)
		}
		if elemType == nil {
			elemType = listVal.Type().Elem
		}
		return ctype.NewList(elemType, mapped)

	case dagspec.TransformListAll:
		for _, item := range items {
			r, err := evaluateInline(it.Element, map[string]ctype.Value{it.ElementInput: item})
			if err != nil {
				return ctype.Value{}, err
			}
			b, ok := r.Bool()
			if !ok || !b {
				return ctype.NewBool(false), nil
			}
		}
		return ctype.NewBool(true), nil

	case dagspec.TransformListAny:
		for _, item := range items {
			r, err := evaluateInline(it.Element, map[string]ctype.Value{it.ElementInput: item})
			if err != nil {
				return ctype.Value{}, err
			}
			b, ok := r.Bool()
			if ok && b {
				return ctype.NewBool(true), nil
			}
		}
		return ctype.NewBool(false), nil
	}

	return ctype.Value{}, goerrors.ValidationError("unreachable list op kind")
}
