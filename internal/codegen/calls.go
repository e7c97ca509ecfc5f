// The two calling conventions: every source function gets one generic
// boxed-calling definition (so it is first-class and storable in
// variables), and lazily, one monomorphic definition per distinct
// (function, argument-type-tuple) key. The analyzer's memo already
// collapses identical keys onto the same *sast.FuncRecord, so the
// per-record cache here yields referentially identical IR functions
// for identical keys.
package codegen

import (
	"strings"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/sast"
	stypes "github.com/funvibe/funxyc/internal/types"
)

// genericFunc emits (or returns the cached) generic boxed-calling form
// of record: signature (CObj* self, CObj** argv, i32 argc) -> CObj*.
// It also defines the immutable CObj constant that makes the function
// a first-class value, registered in e.funcGlobals under the source
// name.
func (e *Emitter) genericFunc(record *sast.FuncRecord) (*ir.Func, error) {
	if fn, ok := e.specCache[record]; ok {
		return fn, nil
	}

	fn := e.Module.NewFunc(record.Name+".generic", e.OM.CObjPtr,
		ir.NewParam("self", e.OM.CObjPtr),
		ir.NewParam("argv", types.NewPointer(e.OM.CObjPtr)),
		ir.NewParam("argc", types.I32))
	e.specCache[record] = fn

	if _, ok := e.funcGlobals[record.Name]; !ok {
		obj := e.Module.NewGlobalDef(record.Name+".obj", constant.NewStruct(e.OM.CObjType,
			constant.NewBitCast(fn, types.I8Ptr), e.ctypes["func"]))
		obj.Immutable = true
		e.funcGlobals[record.Name] = obj
	}

	fr := newFrame(e, fn)
	b := fn.NewBlock("entry")
	e.declareLocals(fr, b, record.Locals, record.Body.Statements)

	for i, formal := range record.Formals {
		slotPtr := b.NewGetElementPtr(e.OM.CObjPtr, fn.Params[1], constant.NewInt(types.I64, int64(i)))
		arg := b.NewLoad(e.OM.CObjPtr, slotPtr)
		b = e.bindIncoming(fr, b, formal.Name, record.ArgTypes[i], formal.Type, arg)
	}

	end, err := e.lowerStmt(fr, b, record.Body)
	if err != nil {
		return nil, err
	}
	if end != nil {
		end.NewRet(constant.NewNull(e.OM.CObjPtr))
	}
	return fn, nil
}

// bindIncoming stores one boxed incoming argument into a formal's
// slot, enforcing the formal's explicit type at runtime when it is a
// concrete scalar.
func (e *Emitter) bindIncoming(fr *frame, b *ir.Block, name string, boundType, explicit stypes.Type, arg value.Value) *ir.Block {
	if !boxedKind(boundType) && stypes.IsConcrete(explicit) {
		mismatch := e.typeMismatch(b, arg, boundType)
		b = e.emitCheck(fr, b, mismatch, diagnostics.InvalidAssignType(name))
	}
	return e.storeSlot(fr, b, name, boundType, BoxValue{V: arg})
}

// specializedFunc emits (or returns the cached) monomorphic form of
// record: raw scalar parameters and return where the inferred types
// are concrete, boxed CObj* everywhere else.
func (e *Emitter) specializedFunc(record *sast.FuncRecord) (*ir.Func, error) {
	if fn, ok := e.specCache[record]; ok {
		return fn, nil
	}

	params := make([]*ir.Param, len(record.Formals))
	for i, formal := range record.Formals {
		at := record.ArgTypes[i]
		if boxedKind(at) {
			params[i] = ir.NewParam(formal.Name, e.OM.CObjPtr)
		} else {
			params[i] = ir.NewParam(formal.Name, llvmPrimType(at))
		}
	}
	retRaw := !boxedKind(record.ReturnType)
	var retType types.Type = e.OM.CObjPtr
	if retRaw {
		retType = llvmPrimType(record.ReturnType)
	}

	fn := e.Module.NewFunc(specName(record), retType, params...)
	e.specCache[record] = fn

	fr := newFrame(e, fn)
	fr.retRaw = retRaw
	fr.retType = record.ReturnType
	b := fn.NewBlock("entry")
	e.declareLocals(fr, b, record.Locals, record.Body.Statements)

	for i, formal := range record.Formals {
		at := record.ArgTypes[i]
		fr.allocFor(b, formal.Name, at)
		if boxedKind(at) {
			b = e.storeSlot(fr, b, formal.Name, at, BoxValue{V: fn.Params[i]})
		} else {
			b = e.storeSlot(fr, b, formal.Name, at, RawValue{V: fn.Params[i], Typ: at})
		}
	}

	end, err := e.lowerStmt(fr, b, record.Body)
	if err != nil {
		return nil, err
	}
	if end != nil {
		if retRaw {
			end.NewRet(rawZero(record.ReturnType))
		} else {
			end.NewRet(constant.NewNull(e.OM.CObjPtr))
		}
	}
	return fn, nil
}

// specName mangles a specialization's IR symbol from its source name
// and inferred argument types, e.g. fib.int or scale.float.float.
func specName(record *sast.FuncRecord) string {
	parts := make([]string, 0, len(record.ArgTypes)+1)
	parts = append(parts, record.Name)
	for _, t := range record.ArgTypes {
		parts = append(parts, t.String())
	}
	return strings.Join(parts, ".")
}

// lowerCall dispatches a call through its specialized or generic
// path.
func (e *Emitter) lowerCall(fr *frame, b *ir.Block, n *sast.Call) (Value, *ir.Block, error) {
	switch info := n.Info.(type) {
	case *sast.Specialization:
		if info.Record != nil {
			return e.lowerSpecializedCall(fr, b, n, info.Record)
		}
		// Recursion-broken call: the generic path
		// takes over for this occurrence, with no surrounding Stage.
		return e.lowerGenericCall(fr, b, n, nil, nil)
	case *sast.Stage:
		return e.lowerGenericCall(fr, b, n, info.Entry, info.Exit)
	}
	return nil, nil, diagnostics.Internalf("call carries no dispatch info")
}

func (e *Emitter) lowerSpecializedCall(fr *frame, b *ir.Block, n *sast.Call, record *sast.FuncRecord) (Value, *ir.Block, error) {
	fn, err := e.specializedFunc(record)
	if err != nil {
		return nil, nil, err
	}

	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, nb, err := e.lowerExpr(fr, b, a)
		if err != nil {
			return nil, nil, err
		}
		b = nb
		at := record.ArgTypes[i]
		if boxedKind(at) {
			args[i] = e.ensureBoxed(b, v)
			continue
		}
		if rv, ok := v.(RawValue); ok {
			args[i] = rv.V
			continue
		}
		// Boxed rhs into a raw formal: runtime-check the box's type
		// against the formal's explicit type, then extract the
		// primitive.
		boxed := v.(BoxValue).V
		mismatch := e.typeMismatch(b, boxed, at)
		b = e.emitCheck(fr, b, mismatch, diagnostics.InvalidAssignType(record.Formals[i].Name))
		args[i] = e.loadRaw(b, boxed, llvmPrimType(at))
	}

	result := b.NewCall(fn, args...)
	if !boxedKind(record.ReturnType) {
		return RawValue{V: result, Typ: record.ReturnType}, b, nil
	}
	return BoxValue{V: result}, b, nil
}

// lowerGenericCall is the generic boxed path: entry
// transforms, boxed callee and arguments packed into a stack argv
// array, indirect invocation through the callee CType's call slot,
// exit transforms. The result is always boxed.
func (e *Emitter) lowerGenericCall(fr *frame, b *ir.Block, n *sast.Call, entry, exit []*sast.Transform) (Value, *ir.Block, error) {
	var err error
	for _, t := range entry {
		b, err = e.lowerTransform(fr, b, t)
		if err != nil {
			return nil, nil, err
		}
	}

	calleeV, b, err := e.lowerExpr(fr, b, n.Callee)
	if err != nil {
		return nil, nil, err
	}
	calleeBox := e.ensureBoxed(b, calleeV)

	argc := len(n.Args)
	argvArr := b.NewAlloca(types.NewArray(uint64(argc), e.OM.CObjPtr))
	argv := b.NewGetElementPtr(argvArr.ElemType, argvArr, i32c(0), i32c(0))
	for i, a := range n.Args {
		v, nb, err := e.lowerExpr(fr, b, a)
		if err != nil {
			return nil, nil, err
		}
		b = nb
		boxed := e.ensureBoxed(b, v)
		slot := b.NewGetElementPtr(e.OM.CObjPtr, argv, constant.NewInt(types.I64, int64(i)))
		b.NewStore(boxed, slot)
	}

	ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, calleeBox, 1))
	slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex("call"))))
	fnPtr := b.NewLoad(types.I8Ptr, slotPtr)
	isNull := b.NewICmp(enum.IPredEQ, b.NewPtrToInt(fnPtr, types.I64), constant.NewInt(types.I64, 0))
	b = e.emitCheck(fr, b, isNull, diagnostics.UnsupportedBinaryOp("call"))

	fnPtr = b.NewLoad(types.I8Ptr, slotPtr) // re-read: emitCheck may have split the block
	target := b.NewBitCast(fnPtr, types.NewPointer(e.OM.CallFnType))
	result := b.NewCall(target, calleeBox, argv, constant.NewInt(types.I32, int64(argc)))

	for _, t := range exit {
		b, err = e.lowerTransform(fr, b, t)
		if err != nil {
			return nil, nil, err
		}
	}
	return BoxValue{V: result}, b, nil
}
