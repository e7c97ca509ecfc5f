package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
)

// primitiveNames lists the primitive types that each get one global,
// statically-initialized CType constant: int, float, bool, char,
// list, string, func.
var primitiveNames = []string{"int", "float", "bool", "char", "list", "string", "func"}

// noopHeapify is the heapify thunk for list/string/func: the receiver
// is returned unchanged, since its data field already references heap
// memory (a CList or a function), never a stack slot.
func (e *Emitter) noopHeapify(typ string) *ir.Func {
	return e.defOp(typ, "heapify", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		b.NewRet(fn.Params[0])
	})
}

// buildDispatchTables defines every per-type operator function, then
// assembles and initializes the seven global CType constants from
// them.
func (e *Emitter) buildDispatchTables() {
	for _, name := range primitiveNames {
		e.ctypes[name] = e.Module.NewGlobal(name+"_ctype", e.OM.CTypeType)
	}

	e.fillCType("int", e.intOps())
	e.fillCType("float", e.floatOps())
	e.fillCType("bool", e.boolOps())
	e.fillCType("char", e.charOps())
	e.fillCType("list", map[string]*ir.Func{
		"add":        e.concatListLike("list"),
		"mul":        e.repeatListLike("list"),
		"idx":        e.listIdx(),
		"idx_parent": e.listIdxParent(),
		"print":      e.printListLike("list", true),
		"heapify":    e.noopHeapify("list"),
	})
	e.fillCType("string", map[string]*ir.Func{
		"add":     e.concatListLike("string"),
		"mul":     e.repeatListLike("string"),
		"idx":     e.stringIdx(),
		"print":   e.printListLike("string", false),
		"heapify": e.noopHeapify("string"),
	})
	e.fillCType("func", map[string]*ir.Func{
		"call":    e.funcCallThunk(),
		"heapify": e.noopHeapify("func"),
	})
}

// fillCType assembles the 20-slot constant struct for one primitive
// type's global CType: a bitcast-to-i8* function pointer for every op
// present in ops, a null i8* everywhere else ("A null slot means the
// operation is unsupported and must raise a runtime error").
func (e *Emitter) fillCType(name string, ops map[string]*ir.Func) {
	fields := make([]constant.Constant, len(dispatchSlots))
	for i, slot := range dispatchSlots {
		if fn, ok := ops[slot]; ok {
			fields[i] = constant.NewBitCast(fn, types.I8Ptr)
		} else {
			fields[i] = constant.NewNull(types.I8Ptr)
		}
	}
	g := e.ctypes[name]
	g.Init = constant.NewStruct(e.OM.CTypeType, fields...)
	g.Immutable = true
}
