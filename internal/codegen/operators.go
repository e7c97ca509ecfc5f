package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

func i32c(v int64) *constant.Int { return constant.NewInt(types.I32, v) }

// gepField indexes into a struct pointer's field, for the CObj
// {data, type} and CList {data, len, cap} layouts.
func (e *Emitter) gepField(b *ir.Block, structType types.Type, ptr value.Value, field int64) value.Value {
	return b.NewGetElementPtr(structType, ptr, i32c(0), i32c(field))
}

func (e *Emitter) loadDataPtr(b *ir.Block, obj value.Value) value.Value {
	return b.NewLoad(types.I8Ptr, e.gepField(b, e.OM.CObjType, obj, 0))
}

func (e *Emitter) loadRaw(b *ir.Block, obj value.Value, rawType types.Type) value.Value {
	data := e.loadDataPtr(b, obj)
	typed := b.NewBitCast(data, types.NewPointer(rawType))
	return b.NewLoad(rawType, typed)
}

// sizeOfRaw is the byte footprint of the LLVM storage type of each raw
// kind this compiler ever boxes: Int/Float stored as 8 bytes, Bool and
// char as 1 byte.
func sizeOfRaw(t types.Type) int64 {
	switch t {
	case types.I64, types.Double:
		return 8
	case types.I1, types.I8:
		return 1
	}
	return 8
}

// boxRaw allocates a fresh CObj whose data points at a freshly
// allocated copy of raw, tagged with ctype. This is both how literal
// evaluation boxes values and how a raw operand is temporarily boxed
// before a generic dispatch.
func (e *Emitter) boxRaw(b *ir.Block, raw value.Value, rawType types.Type, ctype *ir.Global) value.Value {
	dataMem := e.emitMalloc(b, constant.NewInt(types.I64, sizeOfRaw(rawType)))
	typedMem := b.NewBitCast(dataMem, types.NewPointer(rawType))
	b.NewStore(raw, typedMem)

	objMem := e.emitMalloc(b, constant.NewInt(types.I64, 16))
	obj := b.NewBitCast(objMem, e.OM.CObjPtr)
	b.NewStore(dataMem, e.gepField(b, e.OM.CObjType, obj, 0))
	b.NewStore(ctype, e.gepField(b, e.OM.CObjType, obj, 1))
	return obj
}

// opFunc is one entry of the declarative {op -> per-type builder}
// table: a function that, given the
// already-declared <typ>_<op> ir.Func and its entry block, fills in
// the body and returns nothing (the signature itself is uniform and
// built by the caller).
type opFunc func(e *Emitter, fn *ir.Func, b *ir.Block)

// defOp declares "<typ>_<op>" with the canonical binary/unary/call
// signature sig and runs build to populate its body.
func (e *Emitter) defOp(typ, op string, sig *types.FuncType, build opFunc) *ir.Func {
	params := make([]*ir.Param, len(sig.Params))
	for i, p := range sig.Params {
		params[i] = ir.NewParam("", p)
	}
	fn := e.Module.NewFunc(typ+"_"+op, sig.RetType, params...)
	b := fn.NewBlock("entry")
	build(e, fn, b)
	return fn
}

// --- int ---

func (e *Emitter) intOps() map[string]*ir.Func {
	ctype := e.ctypes["int"]
	rawT := types.I64

	arith := func(op string, build func(b *ir.Block, x, y value.Value) value.Value) *ir.Func {
		return e.defOp("int", op, e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			b.NewRet(e.boxRaw(b, build(b, x, y), rawT, ctype))
		})
	}
	cmp := func(op string, pred enum.IPred) *ir.Func {
		return e.defOp("int", op, e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			r := b.NewICmp(pred, x, y)
			b.NewRet(e.boxRaw(b, r, types.I1, e.ctypes["bool"]))
		})
	}

	ops := map[string]*ir.Func{
		"add": arith("add", func(b *ir.Block, x, y value.Value) value.Value { return b.NewAdd(x, y) }),
		"sub": arith("sub", func(b *ir.Block, x, y value.Value) value.Value { return b.NewSub(x, y) }),
		"mul": arith("mul", func(b *ir.Block, x, y value.Value) value.Value { return b.NewMul(x, y) }),
		"div": arith("div", func(b *ir.Block, x, y value.Value) value.Value { return b.NewSDiv(x, y) }),
		"exp": e.defOp("int", "exp", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			xf := b.NewSIToFP(x, types.Double)
			yf := b.NewSIToFP(y, types.Double)
			rf := b.NewCall(e.powFn, xf, yf)
			ri := b.NewFPToSI(rf, types.I64)
			b.NewRet(e.boxRaw(b, ri, rawT, ctype))
		}),
		"eq":  cmp("eq", enum.IPredEQ),
		"neq": cmp("neq", enum.IPredNE),
		"lt":  cmp("lt", enum.IPredSLT),
		"le":  cmp("le", enum.IPredSLE),
		"gt":  cmp("gt", enum.IPredSGT),
		"ge":  cmp("ge", enum.IPredSGE),
		"and": arith("and", func(b *ir.Block, x, y value.Value) value.Value { return b.NewAnd(x, y) }),
		"or":  arith("or", func(b *ir.Block, x, y value.Value) value.Value { return b.NewOr(x, y) }),
		"neg": e.defOp("int", "neg", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			r := b.NewSub(constant.NewInt(types.I64, 0), x)
			b.NewRet(e.boxRaw(b, r, rawT, ctype))
		}),
		"heapify": e.heapifyScalar("int", rawT, ctype),
		"print":   e.printScalar("int", rawT, ctype, "%d"),
	}
	return ops
}

// --- float ---

func (e *Emitter) floatOps() map[string]*ir.Func {
	ctype := e.ctypes["float"]
	rawT := types.Double

	arith := func(op string, build func(b *ir.Block, x, y value.Value) value.Value) *ir.Func {
		return e.defOp("float", op, e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			b.NewRet(e.boxRaw(b, build(b, x, y), rawT, ctype))
		})
	}
	// Unordered-true comparisons: NaN-permissive on purpose.
	cmp := func(op string, pred enum.FPred) *ir.Func {
		return e.defOp("float", op, e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			r := b.NewFCmp(pred, x, y)
			b.NewRet(e.boxRaw(b, r, types.I1, e.ctypes["bool"]))
		})
	}

	return map[string]*ir.Func{
		"add": arith("add", func(b *ir.Block, x, y value.Value) value.Value { return b.NewFAdd(x, y) }),
		"sub": arith("sub", func(b *ir.Block, x, y value.Value) value.Value { return b.NewFSub(x, y) }),
		"mul": arith("mul", func(b *ir.Block, x, y value.Value) value.Value { return b.NewFMul(x, y) }),
		"div": arith("div", func(b *ir.Block, x, y value.Value) value.Value { return b.NewFDiv(x, y) }),
		"exp": e.defOp("float", "exp", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			b.NewRet(e.boxRaw(b, b.NewCall(e.powFn, x, y), rawT, ctype))
		}),
		"eq":      cmp("eq", enum.FPredUEQ),
		"neq":     cmp("neq", enum.FPredUNE),
		"lt":      cmp("lt", enum.FPredULT),
		"le":      cmp("le", enum.FPredULE),
		"gt":      cmp("gt", enum.FPredUGT),
		"ge":      cmp("ge", enum.FPredUGE),
		"neg": e.defOp("float", "neg", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			r := b.NewFSub(constant.NewFloat(types.Double, 0), x)
			b.NewRet(e.boxRaw(b, r, rawT, ctype))
		}),
		"heapify": e.heapifyScalar("float", rawT, ctype),
		"print":   e.printScalar("float", rawT, ctype, "%g"),
	}
}

// --- bool ---

func (e *Emitter) boolOps() map[string]*ir.Func {
	ctype := e.ctypes["bool"]
	rawT := types.I1

	logical := func(op string, build func(b *ir.Block, x, y value.Value) value.Value) *ir.Func {
		return e.defOp("bool", op, e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			b.NewRet(e.boxRaw(b, build(b, x, y), rawT, ctype))
		})
	}
	// Bool arithmetic (matching Bool flows through Add/Sub/Mul):
	// widen to i64, compute, narrow back.
	arithViaInt := func(op string, build func(b *ir.Block, x, y value.Value) value.Value) *ir.Func {
		return e.defOp("bool", op, e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := b.NewZExt(e.loadRaw(b, fn.Params[0], rawT), types.I64)
			y := b.NewZExt(e.loadRaw(b, fn.Params[1], rawT), types.I64)
			r64 := build(b, x, y)
			r := b.NewTrunc(r64, types.I1)
			b.NewRet(e.boxRaw(b, r, rawT, ctype))
		})
	}

	return map[string]*ir.Func{
		"add":     arithViaInt("add", func(b *ir.Block, x, y value.Value) value.Value { return b.NewAdd(x, y) }),
		"sub":     arithViaInt("sub", func(b *ir.Block, x, y value.Value) value.Value { return b.NewSub(x, y) }),
		"mul":     arithViaInt("mul", func(b *ir.Block, x, y value.Value) value.Value { return b.NewMul(x, y) }),
		"eq":      logical("eq", func(b *ir.Block, x, y value.Value) value.Value { return b.NewICmp(enum.IPredEQ, x, y) }),
		"neq":     logical("neq", func(b *ir.Block, x, y value.Value) value.Value { return b.NewICmp(enum.IPredNE, x, y) }),
		"and":     logical("and", func(b *ir.Block, x, y value.Value) value.Value { return b.NewAnd(x, y) }),
		"or":      logical("or", func(b *ir.Block, x, y value.Value) value.Value { return b.NewOr(x, y) }),
		"neg": e.defOp("bool", "neg", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			r := b.NewSub(constant.NewInt(types.I1, 0), x)
			b.NewRet(e.boxRaw(b, r, rawT, ctype))
		}),
		"not": e.defOp("bool", "not", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			r := b.NewXor(x, constant.NewInt(types.I1, 1))
			b.NewRet(e.boxRaw(b, r, rawT, ctype))
		}),
		"heapify": e.heapifyScalar("bool", rawT, ctype),
		"print":   e.printScalar("bool", rawT, ctype, "%d"),
	}
}

// --- char ---

func (e *Emitter) charOps() map[string]*ir.Func {
	ctype := e.ctypes["char"]
	rawT := types.I8

	ops := map[string]*ir.Func{
		"eq": e.defOp("char", "eq", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			r := b.NewICmp(enum.IPredEQ, x, y)
			b.NewRet(e.boxRaw(b, r, types.I1, e.ctypes["bool"]))
		}),
		"neq": e.defOp("char", "neq", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := e.loadRaw(b, fn.Params[0], rawT)
			y := e.loadRaw(b, fn.Params[1], rawT)
			r := b.NewICmp(enum.IPredNE, x, y)
			b.NewRet(e.boxRaw(b, r, types.I1, e.ctypes["bool"]))
		}),
		// The char "or" cell applies logical-or to the integer data,
		// odd as that reads for a character type.
		"or": e.defOp("char", "or", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
			x := b.NewZExt(e.loadRaw(b, fn.Params[0], rawT), types.I64)
			y := b.NewZExt(e.loadRaw(b, fn.Params[1], rawT), types.I64)
			r := b.NewOr(x, y)
			b.NewRet(e.boxRaw(b, b.NewTrunc(r, types.I8), rawT, ctype))
		}),
		"heapify": e.heapifyScalar("char", rawT, ctype),
		"print":   e.printScalar("char", rawT, ctype, "%c"),
	}
	return ops
}

// heapifyScalar copies the raw value from its source CObj's data
// field into a freshly heap-allocated cell and repoints data at it,
// so a box whose payload lived in a stack slot becomes safely
// aliasable.
func (e *Emitter) heapifyScalar(typ string, rawT types.Type, ctype *ir.Global) *ir.Func {
	return e.defOp(typ, "heapify", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		x := e.loadRaw(b, fn.Params[0], rawT)
		mem := e.emitMalloc(b, constant.NewInt(types.I64, sizeOfRaw(rawT)))
		b.NewStore(x, b.NewBitCast(mem, types.NewPointer(rawT)))
		b.NewStore(mem, e.gepField(b, e.OM.CObjType, fn.Params[0], 0))
		b.NewRet(fn.Params[0])
	})
}

// printScalar calls printf(fmt, value) for a scalar CObj and returns
// it unchanged (print's uniform "-> CObj*" signature just passes the
// receiver through, there being nothing else useful to return).
// Sub-i32 operands are widened first, matching C's default argument
// promotion for varargs.
func (e *Emitter) printScalar(typ string, rawT types.Type, ctype *ir.Global, format string) *ir.Func {
	return e.defOp(typ, "print", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		x := e.loadRaw(b, fn.Params[0], rawT)
		arg := x
		if rawT == types.I1 || rawT == types.I8 {
			arg = b.NewZExt(x, types.I32)
		}
		b.NewCall(e.printfFn, e.internString(format), arg)
		b.NewRet(fn.Params[0])
	})
}
