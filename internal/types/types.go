// Package types implements the language's flat type lattice: Dyn at
// top, Null at bottom, with Int/Float/Bool/String/Arr/FuncType as
// concrete, structurally-equal members. There is no unification, no
// type variables, no substitutions: a type is either statically known
// or it collapses to Dyn.
package types

import "fmt"

// Kind distinguishes the handful of shapes a Type can take.
type Kind int

const (
	KInt Kind = iota
	KFloat
	KBool
	KString
	KArr
	KFunc
	KDyn
	KNull
	KObject
)

// Type is the interface every member of the lattice implements.
type Type interface {
	Kind() Kind
	String() string
}

type intType struct{}
type floatType struct{}
type boolType struct{}
type stringType struct{}
type dynType struct{}
type nullType struct{}
type objectType struct{}

func (intType) Kind() Kind     { return KInt }
func (intType) String() string { return "int" }

func (floatType) Kind() Kind     { return KFloat }
func (floatType) String() string { return "float" }

func (boolType) Kind() Kind     { return KBool }
func (boolType) String() string { return "bool" }

func (stringType) Kind() Kind     { return KString }
func (stringType) String() string { return "str" }

func (dynType) Kind() Kind     { return KDyn }
func (dynType) String() string { return "dyn" }

func (nullType) Kind() Kind     { return KNull }
func (nullType) String() string { return "null" }

func (objectType) Kind() Kind     { return KObject }
func (objectType) String() string { return "object" }

// Singletons. Concrete scalar types are always these exact values so
// that equality checks can use (==) where convenient, though Equal
// below is the canonical comparison (it also handles Arr/FuncType).
var (
	Int    Type = intType{}
	Float  Type = floatType{}
	Bool   Type = boolType{}
	String Type = stringType{}
	Dyn    Type = dynType{}
	Null   Type = nullType{}
	Object Type = objectType{}
)

// Arr is a homogeneous array type. The element type may itself be Dyn.
type Arr struct {
	Elem Type
}

func (a Arr) Kind() Kind { return KArr }
func (a Arr) String() string {
	if a.Elem == nil {
		return "arr"
	}
	return fmt.Sprintf("arr[%s]", a.Elem.String())
}

// FuncType is the static type of a function value: its formal types and
// its return type.
type FuncType struct {
	Params []Type
	Return Type
}

func (f FuncType) Kind() Kind { return KFunc }
func (f FuncType) String() string {
	s := "("
	for i, p := range f.Params {
		if i > 0 {
			s += ", "
		}
		s += p.String()
	}
	s += ") -> "
	if f.Return != nil {
		s += f.Return.String()
	} else {
		s += "dyn"
	}
	return s
}

// IsArr holds for Arr and String: both are list-shaped at the IR
// level (CList/CString share a layout).
func IsArr(t Type) bool {
	if t == nil {
		return false
	}
	return t.Kind() == KArr || t.Kind() == KString
}

// IsNumeric holds for Int and Float.
func IsNumeric(t Type) bool {
	if t == nil {
		return false
	}
	return t.Kind() == KInt || t.Kind() == KFloat
}

// Equal is structural equality between two types.
func Equal(a, b Type) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	if a.Kind() != b.Kind() {
		return false
	}
	switch av := a.(type) {
	case Arr:
		bv, ok := b.(Arr)
		return ok && Equal(av.Elem, bv.Elem)
	case FuncType:
		bv, ok := b.(FuncType)
		if !ok || len(av.Params) != len(bv.Params) || !Equal(av.Return, bv.Return) {
			return false
		}
		for i := range av.Params {
			if !Equal(av.Params[i], bv.Params[i]) {
				return false
			}
		}
		return true
	default:
		return true // scalar kinds are equal whenever Kind() matches
	}
}

// IsConcrete reports whether t is anything other than Dyn. Null is
// considered concrete (it is the lattice bottom, not "unknown").
func IsConcrete(t Type) bool {
	return t != nil && t.Kind() != KDyn
}
