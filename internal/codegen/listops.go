package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"
)

const icmpULT = enum.IPredULT

// boxPointer wraps an already-heap-resident payload (a CList*, or any
// other data pointer bitcast to i8*) in a freshly allocated CObj. Used
// by list/string/func, whose data field references a heap structure
// rather than a bare scalar.
func (e *Emitter) boxPointer(b *ir.Block, dataPtr value.Value, ctype *ir.Global) value.Value {
	objMem := e.emitMalloc(b, constant.NewInt(types.I64, 16))
	obj := b.NewBitCast(objMem, e.OM.CObjPtr)
	b.NewStore(dataPtr, e.gepField(b, e.OM.CObjType, obj, 0))
	b.NewStore(ctype, e.gepField(b, e.OM.CObjType, obj, 1))
	return obj
}

// listStruct reads x's data field as a CList*.
func (e *Emitter) listStruct(b *ir.Block, obj value.Value) value.Value {
	data := e.loadDataPtr(b, obj)
	return b.NewBitCast(data, e.OM.CListPtr)
}

func (e *Emitter) listLen(b *ir.Block, list value.Value) value.Value {
	return b.NewLoad(types.I32, e.gepField(b, e.OM.CListType, list, 1))
}

func (e *Emitter) listArray(b *ir.Block, list value.Value) value.Value {
	data := b.NewLoad(types.I8Ptr, e.gepField(b, e.OM.CListType, list, 0))
	return b.NewBitCast(data, types.NewPointer(e.OM.CObjPtr))
}

// newListStruct allocates a CList with the given element array pointer
// (already an array-of-CObj* on the heap) and length==cap==n.
func (e *Emitter) newListStruct(b *ir.Block, arr value.Value, n value.Value) value.Value {
	mem := e.emitMalloc(b, constant.NewInt(types.I64, 24))
	list := b.NewBitCast(mem, e.OM.CListPtr)
	arrAsI8 := b.NewBitCast(arr, types.I8Ptr)
	b.NewStore(arrAsI8, e.gepField(b, e.OM.CListType, list, 0))
	n32 := b.NewTrunc(n, types.I32)
	b.NewStore(n32, e.gepField(b, e.OM.CListType, list, 1))
	b.NewStore(n32, e.gepField(b, e.OM.CListType, list, 2))
	return list
}

// concatListLike implements the shallow pointer-copy concatenation
// shared by List Add and String Add (CString shares CList's layout):
// no deep copy, the element pointers are duplicated.
func (e *Emitter) concatListLike(typeName string) *ir.Func {
	ctype := e.ctypes[typeName]
	return e.defOp(typeName, "add", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		xl := e.listStruct(b, fn.Params[0])
		yl := e.listStruct(b, fn.Params[1])
		xlen := b.NewZExt(e.listLen(b, xl), types.I64)
		ylen := b.NewZExt(e.listLen(b, yl), types.I64)
		total := b.NewAdd(xlen, ylen)

		elemSize := constant.NewInt(types.I64, 8) // sizeof(CObj*)
		bytes := b.NewMul(total, elemSize)
		newArrMem := e.emitMalloc(b, bytes)

		xarr := b.NewBitCast(e.listArray(b, xl), types.I8Ptr)
		yarr := b.NewBitCast(e.listArray(b, yl), types.I8Ptr)
		b.NewCall(e.memcpyFn, newArrMem, xarr, b.NewMul(xlen, elemSize))
		tailDst := b.NewGetElementPtr(types.I8, newArrMem, b.NewMul(xlen, elemSize))
		b.NewCall(e.memcpyFn, tailDst, yarr, b.NewMul(ylen, elemSize))

		newArr := b.NewBitCast(newArrMem, types.NewPointer(e.OM.CObjPtr))
		list := e.newListStruct(b, newArr, total)
		b.NewRet(e.boxPointer(b, b.NewBitCast(list, types.I8Ptr), ctype))
	})
}

// repeatListLike implements Mul(array|string, Int): the element array
// is copied n times into a freshly allocated buffer, preserving the
// source type: Mul(array, Int) and Mul(String, Int) stay
// array/string.
func (e *Emitter) repeatListLike(typeName string) *ir.Func {
	ctype := e.ctypes[typeName]
	return e.defOp(typeName, "mul", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		src := e.listStruct(b, fn.Params[0])
		n := e.loadRaw(b, fn.Params[1], types.I64)
		srcLen := b.NewZExt(e.listLen(b, src), types.I64)
		elemSize := constant.NewInt(types.I64, 8)

		total := b.NewMul(srcLen, n)
		bytes := b.NewMul(total, elemSize)
		dstMem := e.emitMalloc(b, bytes)
		srcBytes := b.NewBitCast(e.listArray(b, src), types.I8Ptr)
		srcChunkSize := b.NewMul(srcLen, elemSize)

		counter := b.NewAlloca(types.I64)
		b.NewStore(constant.NewInt(types.I64, 0), counter)

		headBlock := fn.NewBlock("repeat.head")
		bodyBlock := fn.NewBlock("repeat.body")
		exitBlock := fn.NewBlock("repeat.exit")
		b.NewBr(headBlock)

		i := headBlock.NewLoad(types.I64, counter)
		cond := headBlock.NewICmp(icmpULT, i, n)
		headBlock.NewCondBr(cond, bodyBlock, exitBlock)

		offset := bodyBlock.NewMul(i, srcChunkSize)
		dst := bodyBlock.NewGetElementPtr(types.I8, dstMem, offset)
		bodyBlock.NewCall(e.memcpyFn, dst, srcBytes, srcChunkSize)
		next := bodyBlock.NewAdd(i, constant.NewInt(types.I64, 1))
		bodyBlock.NewStore(next, counter)
		bodyBlock.NewBr(headBlock)

		newArr := exitBlock.NewBitCast(dstMem, types.NewPointer(e.OM.CObjPtr))
		list := e.newListStruct(exitBlock, newArr, total)
		exitBlock.NewRet(e.boxPointer(exitBlock, exitBlock.NewBitCast(list, types.I8Ptr), ctype))
	})
}

// listIdx returns the element CObj* stored at the index directly, no
// copy.
func (e *Emitter) listIdx() *ir.Func {
	return e.defOp("list", "idx", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		list := e.listStruct(b, fn.Params[0])
		idx := b.NewZExt(e.loadRaw(b, fn.Params[1], types.I64), types.I64)
		arr := e.listArray(b, list)
		slot := b.NewGetElementPtr(e.OM.CObjPtr, arr, idx)
		b.NewRet(b.NewLoad(e.OM.CObjPtr, slot))
	})
}

// listIdxParent returns a pointer to the slot itself, to support
// indexed assignment.
func (e *Emitter) listIdxParent() *ir.Func {
	return e.defOp("list", "idx_parent", e.OM.IdxParentFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		list := e.listStruct(b, fn.Params[0])
		idx := b.NewZExt(e.loadRaw(b, fn.Params[1], types.I64), types.I64)
		arr := e.listArray(b, list)
		slot := b.NewGetElementPtr(e.OM.CObjPtr, arr, idx)
		b.NewRet(slot)
	})
}

// stringIdx returns a freshly allocated single-char CString — unlike
// list idx, which returns the stored CObj* unchanged.
func (e *Emitter) stringIdx() *ir.Func {
	return e.defOp("string", "idx", e.OM.BinaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		list := e.listStruct(b, fn.Params[0])
		idx := b.NewZExt(e.loadRaw(b, fn.Params[1], types.I64), types.I64)
		arr := e.listArray(b, list)
		slot := b.NewGetElementPtr(e.OM.CObjPtr, arr, idx)
		charObj := b.NewLoad(e.OM.CObjPtr, slot)

		oneMem := e.emitMalloc(b, constant.NewInt(types.I64, 8))
		oneArr := b.NewBitCast(oneMem, types.NewPointer(e.OM.CObjPtr))
		b.NewStore(charObj, oneArr)
		newList := e.newListStruct(b, oneArr, constant.NewInt(types.I64, 1))
		b.NewRet(e.boxPointer(b, b.NewBitCast(newList, types.I8Ptr), e.ctypes["string"]))
	})
}

// printListLike emits the list/string print thunks: a list prints
// "[", then every element's print thunk followed unconditionally by
// ", " (the trailing comma before "]" included), then "]"; a string
// prints its characters back to back with no separators or brackets.
func (e *Emitter) printListLike(typeName string, brackets bool) *ir.Func {
	return e.defOp(typeName, "print", e.OM.UnaryFnType, func(e *Emitter, fn *ir.Func, b *ir.Block) {
		list := e.listStruct(b, fn.Params[0])
		length := b.NewZExt(e.listLen(b, list), types.I64)
		arr := e.listArray(b, list)

		if brackets {
			b.NewCall(e.printfFn, e.internString("["))
		}

		counter := b.NewAlloca(types.I64)
		b.NewStore(constant.NewInt(types.I64, 0), counter)

		headBlock := fn.NewBlock(typeName + ".print.head")
		bodyBlock := fn.NewBlock(typeName + ".print.body")
		exitBlock := fn.NewBlock(typeName + ".print.exit")
		b.NewBr(headBlock)

		i := headBlock.NewLoad(types.I64, counter)
		cond := headBlock.NewICmp(icmpULT, i, length)
		headBlock.NewCondBr(cond, bodyBlock, exitBlock)

		slot := bodyBlock.NewGetElementPtr(e.OM.CObjPtr, arr, i)
		elem := bodyBlock.NewLoad(e.OM.CObjPtr, slot)
		elemCType := bodyBlock.NewLoad(e.OM.CTypePtr, e.gepField(bodyBlock, e.OM.CObjType, elem, 1))
		printSlotPtr := bodyBlock.NewGetElementPtr(e.OM.CTypeType, elemCType, i32c(0), i32c(int64(slotIndex("print"))))
		printSlot := bodyBlock.NewLoad(types.I8Ptr, printSlotPtr)
		printFn := bodyBlock.NewBitCast(printSlot, types.NewPointer(e.OM.UnaryFnType))
		bodyBlock.NewCall(printFn, elem)
		if brackets {
			bodyBlock.NewCall(e.printfFn, e.internString(", "))
		}
		next := bodyBlock.NewAdd(i, constant.NewInt(types.I64, 1))
		bodyBlock.NewStore(next, counter)
		bodyBlock.NewBr(headBlock)

		if brackets {
			exitBlock.NewCall(e.printfFn, e.internString("]"))
		}
		exitBlock.NewRet(fn.Params[0])
	})
}

// funcCallThunk implements the func CType's "call" slot for the generic
// calling convention: it simply forwards to the CObj's stashed
// function pointer, which genericFunc stashes in the CObj's data
// field when it binds a declaration to its first-class value.
func (e *Emitter) funcCallThunk() *ir.Func {
	fn := e.Module.NewFunc("func_call", e.OM.CObjPtr,
		ir.NewParam("self", e.OM.CObjPtr),
		ir.NewParam("argv", types.NewPointer(e.OM.CObjPtr)),
		ir.NewParam("argc", types.I32))
	b := fn.NewBlock("entry")
	data := e.loadDataPtr(b, fn.Params[0])
	target := b.NewBitCast(data, types.NewPointer(e.OM.CallFnType))
	b.NewRet(b.NewCall(target, fn.Params[0], fn.Params[1], fn.Params[2]))
	return fn
}
