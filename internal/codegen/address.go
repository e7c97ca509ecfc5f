package codegen

import (
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	stypes "github.com/funvibe/funxyc/internal/types"
)

// Value is the result of lowering one SAST expression: either a raw
// primitive value or a boxed CObj* value. The raw/boxed split mirrors
// the RawAddr/BoxAddr addressing whose storage side lives in
// frame.varSlot.
type Value interface {
	valueNode()
	LLVM() value.Value
}

type RawValue struct {
	V   value.Value
	Typ stypes.Type
}

func (RawValue) valueNode()          {}
func (r RawValue) LLVM() value.Value { return r.V }

type BoxValue struct {
	V value.Value // a CObj*
}

func (BoxValue) valueNode()          {}
func (b BoxValue) LLVM() value.Value { return b.V }

// boxedKind reports whether t is represented boxed (String/Arr/
// FuncType/Dyn/Object/Null) rather than raw (Int/Float/Bool).
func boxedKind(t stypes.Type) bool {
	switch t.Kind() {
	case stypes.KInt, stypes.KFloat, stypes.KBool:
		return false
	default:
		return true
	}
}

// llvmPrimType maps a concrete scalar stypes.Type to its LLVM storage
// type. Only called for Int/Float/Bool, which are the only kinds ever
// held raw.
func llvmPrimType(t stypes.Type) types.Type {
	switch t.Kind() {
	case stypes.KInt:
		return types.I64
	case stypes.KFloat:
		return types.Double
	case stypes.KBool:
		return types.I1
	default:
		panic("codegen: llvmPrimType called on non-primitive type " + t.String())
	}
}
