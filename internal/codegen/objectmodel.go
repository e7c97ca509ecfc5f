// Package codegen is the IR emitter: it lowers a sast.Program to an
// LLVM module (via github.com/llir/llvm) under a uniform tagged-object
// representation — every value is a CObj carrying a data pointer and a
// CType dispatch-table pointer — specializing operations down to raw
// primitive instructions wherever static types are known.
package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/types"
)

// ObjectModel holds the LLVM type handles for the three named
// composites, built once per Emitter.
type ObjectModel struct {
	CObjType  *types.StructType // {data: i8*, type: CType*}
	CObjPtr   *types.PointerType
	CTypeType *types.StructType // 20 opaque i8* dispatch slots
	CTypePtr  *types.PointerType
	CListType *types.StructType // {data: i8* (CObj**), len: i32, cap: i32}
	CListPtr  *types.PointerType

	// Function-pointer shapes for the dispatch table. Slots themselves
	// are stored as bare i8* (a type-erased vtable, the common pattern
	// for a uniform call-indirect table in LLVM-targeting compilers);
	// these are the real signatures each slot is bitcast to/from at its
	// call sites.
	BinaryFnType    *types.FuncType // (CObj*, CObj*) -> CObj*
	UnaryFnType     *types.FuncType // (CObj*) -> CObj*
	IdxParentFnType *types.FuncType // (CObj*, CObj*) -> CObj** (i8**)
	CallFnType      *types.FuncType // (CObj*, CObj**, i32) -> CObj*
}

// dispatchSlots is the fixed order of CType's 20 slots. Index in this
// slice is the struct field index of CTypeType.
var dispatchSlots = []string{
	"add", "sub", "mul", "div", "exp",
	"eq", "neq", "lt", "le", "gt", "ge",
	"and", "or",
	"idx", "idx_parent",
	"neg", "not", "heapify", "print", "call",
}

func slotIndex(name string) int {
	for i, n := range dispatchSlots {
		if n == name {
			return i
		}
	}
	panic("codegen: unknown dispatch slot " + name)
}

// NewObjectModel declares CObj/CType/CList as named struct types on m
// and returns the handles codegen needs throughout.
func NewObjectModel(m *ir.Module) *ObjectModel {
	om := &ObjectModel{}

	// CObj is forward-declared as an opaque identified struct so that
	// CType's function-pointer signatures (which mention CObj*) and
	// CObj's own CType* field can refer to each other.
	cobj := types.NewStruct()
	m.NewTypeDef("CObj", cobj)
	om.CObjType = cobj
	om.CObjPtr = types.NewPointer(cobj)

	ctype := types.NewStruct()
	for range dispatchSlots {
		ctype.Fields = append(ctype.Fields, types.I8Ptr)
	}
	m.NewTypeDef("CType", ctype)
	om.CTypeType = ctype
	om.CTypePtr = types.NewPointer(ctype)

	cobj.Fields = []types.Type{types.I8Ptr, om.CTypePtr}

	clist := types.NewStruct(types.I8Ptr, types.I32, types.I32)
	m.NewTypeDef("CList", clist)
	om.CListType = clist
	om.CListPtr = types.NewPointer(clist)

	om.BinaryFnType = types.NewFunc(om.CObjPtr, om.CObjPtr, om.CObjPtr)
	om.UnaryFnType = types.NewFunc(om.CObjPtr, om.CObjPtr)
	om.IdxParentFnType = types.NewFunc(types.NewPointer(om.CObjPtr), om.CObjPtr, om.CObjPtr)
	om.CallFnType = types.NewFunc(om.CObjPtr, om.CObjPtr, types.NewPointer(om.CObjPtr), types.I32)

	return om
}
