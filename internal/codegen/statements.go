package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/sast"
	stypes "github.com/funvibe/funxyc/internal/types"
)

// loopCtx carries the blocks a Break/Continue inside the currently
// lowering loop must branch to. The semant pass rejects
// Break/Continue outside a loop (internal/semant/statements.go), so a
// nil loopCtx reaching one of those nodes here is a compiler bug.
type loopCtx struct {
	headBlock *ir.Block
	exitBlock *ir.Block
}

// lowerStmt lowers one annotated statement. It returns
// the block execution continues in after stmt, or nil if stmt already
// ended its block with a terminator (a Return, Break or Continue, or
// an If whose branches all end that way).
func (e *Emitter) lowerStmt(fr *frame, b *ir.Block, stmt sast.Stmt) (*ir.Block, error) {
	return e.lowerStmtLoop(fr, b, stmt, nil)
}

func (e *Emitter) lowerStmtLoop(fr *frame, b *ir.Block, stmt sast.Stmt, lc *loopCtx) (*ir.Block, error) {
	switch n := stmt.(type) {
	case *sast.Block:
		cur := b
		for _, s := range n.Statements {
			var err error
			cur, err = e.lowerStmtLoop(fr, cur, s, lc)
			if err != nil {
				return nil, err
			}
			if cur == nil {
				return nil, nil
			}
		}
		return cur, nil
	case *sast.Asn:
		return e.lowerAsn(fr, b, n)
	case *sast.If:
		return e.lowerIf(fr, b, n, lc)
	case *sast.While:
		return e.lowerWhile(fr, b, n)
	case *sast.For:
		return e.lowerFor(fr, b, n)
	case *sast.Range:
		return e.lowerRange(fr, b, n)
	case *sast.Return:
		return e.lowerReturn(fr, b, n)
	case *sast.ExprStmt:
		_, cur, err := e.lowerExpr(fr, b, n.Value)
		return cur, err
	case *sast.Print:
		return e.lowerPrint(fr, b, n)
	case *sast.Transform:
		return e.lowerTransform(fr, b, n)
	case *sast.StageStmt:
		cur := b
		for _, t := range n.Entry {
			var err error
			cur, err = e.lowerTransform(fr, cur, t)
			if err != nil {
				return nil, err
			}
		}
		cur, err := e.lowerStmtLoop(fr, cur, n.Body, lc)
		if err != nil || cur == nil {
			return cur, err
		}
		for _, t := range n.Exit {
			cur, err = e.lowerTransform(fr, cur, t)
			if err != nil {
				return nil, err
			}
		}
		return cur, nil
	case *sast.Continue:
		if lc == nil {
			return nil, diagnostics.Internalf("continue lowered outside a loop context")
		}
		b.NewBr(lc.headBlock)
		return nil, nil
	case *sast.Break:
		if lc == nil {
			return nil, diagnostics.Internalf("break lowered outside a loop context")
		}
		b.NewBr(lc.exitBlock)
		return nil, nil
	case *sast.Func:
		// Top-level Func declarations are hoisted by Emit before main is
		// lowered; nested defs have no representation in this object
		// model and the analyzer rejects them, so reaching this case
		// would be a compiler bug.
		return nil, diagnostics.Internalf("nested function declarations are not supported")
	case *sast.TypeDecl, *sast.Nop, *sast.Import, *sast.Class:
		return b, nil
	}
	return nil, diagnostics.Internalf("unhandled SAST statement %T", stmt)
}

// typeMismatch returns an i1 that is true when boxed's CType pointer
// differs from expected's CType global: the explicit-type mismatch
// condition checked at assignments, parameters, and returns.
func (e *Emitter) typeMismatch(b *ir.Block, boxed value.Value, expected stypes.Type) value.Value {
	actual := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, boxed, 1))
	want := e.ctypeFor(expected)
	return b.NewICmp(enum.IPredNE, b.NewPtrToInt(actual, types.I64), b.NewPtrToInt(want, types.I64))
}

// ensureStorage materializes the slot of typ's addressing kind for
// name, respecting ownership: frame-local names get allocas, names
// owned by the module-level global table get ir.Global storage (so a
// Transform on a global inside a function body never shadows it with
// a dead local).
func (e *Emitter) ensureStorage(fr *frame, b *ir.Block, name string, typ stypes.Type) *varSlot {
	if _, isLocal := fr.vars[name]; !isLocal {
		if _, isGlobal := e.globals[name]; isGlobal {
			e.globalStorageFor(name, typ)
			return e.globals[name]
		}
	}
	fr.allocFor(b, name, typ)
	return fr.vars[name]
}

// storeSlot writes v into name's slot, boxing or unboxing as needed
// respecting the addressing mode: a raw target accepting a box
// performs type-check plus data extraction; a box target accepting a
// raw performs a temporary box.
func (e *Emitter) storeSlot(fr *frame, b *ir.Block, name string, typ stypes.Type, v Value) *ir.Block {
	s := e.ensureStorage(fr, b, name, typ)
	if boxedKind(typ) {
		b.NewStore(e.ensureBoxed(b, v), s.Box)
		return b
	}
	if rv, ok := v.(RawValue); ok {
		b.NewStore(rv.V, s.Raw)
		return b
	}
	boxed := v.(BoxValue).V
	b.NewStore(e.loadRaw(b, boxed, llvmPrimType(typ)), s.Raw)
	return b
}

func (e *Emitter) lowerAsn(fr *frame, b *ir.Block, n *sast.Asn) (*ir.Block, error) {
	rhs, b, err := e.lowerExpr(fr, b, n.Value)
	if err != nil {
		return nil, err
	}
	for _, lv := range n.Targets {
		switch t := lv.(type) {
		case *sast.NameLvalue:
			if n.RuntimeCheck != nil {
				boxed := e.ensureBoxed(b, rhs)
				mismatch := e.typeMismatch(b, boxed, n.RuntimeCheck)
				b = e.emitCheck(fr, b, mismatch, diagnostics.InvalidAssignType(t.Name))
			}
			b = e.storeSlot(fr, b, t.Name, t.Typ, rhs)
		case *sast.IndexLvalue:
			var err error
			b, err = e.lowerIndexedStore(fr, b, t, rhs)
			if err != nil {
				return nil, err
			}
		default:
			return nil, diagnostics.Internalf("unhandled lvalue %T", lv)
		}
	}
	return b, nil
}

// lowerIndexedStore stores through an indexed target: dispatch
// through the idx_parent slot, runtime-check index type and bounds,
// and store.
func (e *Emitter) lowerIndexedStore(fr *frame, b *ir.Block, t *sast.IndexLvalue, rhs Value) (*ir.Block, error) {
	listV, b, err := e.lowerExpr(fr, b, t.List)
	if err != nil {
		return nil, err
	}
	idxV, b, err := e.lowerExpr(fr, b, t.Index)
	if err != nil {
		return nil, err
	}
	listBox := e.ensureBoxed(b, listV)
	idxBoxed := e.ensureBoxed(b, idxV)

	ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, listBox, 1))
	slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex("idx_parent"))))
	fnPtr := b.NewLoad(types.I8Ptr, slotPtr)
	isNull := b.NewICmp(enum.IPredEQ, b.NewPtrToInt(fnPtr, types.I64), constant.NewInt(types.I64, 0))
	b = e.emitCheck(fr, b, isNull, msgUnsupportedIdx)

	idxMismatch := e.typeMismatch(b, idxBoxed, stypes.Int)
	b = e.emitCheck(fr, b, idxMismatch, msgUnsupportedIdx)

	idxRaw := e.loadRaw(b, idxBoxed, types.I64)
	list := e.listStruct(b, listBox)
	length := b.NewSExt(e.listLen(b, list), types.I64)
	neg := b.NewICmp(enum.IPredSLT, idxRaw, constant.NewInt(types.I64, 0))
	tooBig := b.NewICmp(enum.IPredSGE, idxRaw, length)
	oob := b.NewOr(neg, tooBig)
	b = e.emitCheck(fr, b, oob, msgIndexOOB)

	fnPtr = b.NewLoad(types.I8Ptr, slotPtr) // re-read: emitCheck may have split the block
	target := b.NewBitCast(fnPtr, types.NewPointer(e.OM.IdxParentFnType))
	slot := b.NewCall(target, listBox, idxBoxed)
	b.NewStore(e.ensureBoxed(b, rhs), slot)
	return b, nil
}

func (e *Emitter) lowerReturn(fr *frame, b *ir.Block, n *sast.Return) (*ir.Block, error) {
	if n.Value == nil {
		if fr.retRaw {
			b.NewRet(rawZero(fr.retType))
		} else {
			b.NewRet(constant.NewNull(e.OM.CObjPtr))
		}
		return nil, nil
	}
	v, b, err := e.lowerExpr(fr, b, n.Value)
	if err != nil {
		return nil, err
	}
	if fr.retRaw {
		if rv, ok := v.(RawValue); ok {
			b.NewRet(rv.V)
			return nil, nil
		}
		// Boxed value into a raw-returning function: explicit-type
		// check, then extract the primitive.
		boxed := v.(BoxValue).V
		mismatch := e.typeMismatch(b, boxed, fr.retType)
		b = e.emitCheck(fr, b, mismatch, diagnostics.InvalidReturnType(fr.retType.String()))
		b.NewRet(e.loadRaw(b, boxed, llvmPrimType(fr.retType)))
		return nil, nil
	}
	b.NewRet(e.ensureBoxed(b, v))
	return nil, nil
}

// lowerPrint lowers a top-level print: dispatch through
// the value's own print slot, then append exactly one '\n'.
func (e *Emitter) lowerPrint(fr *frame, b *ir.Block, n *sast.Print) (*ir.Block, error) {
	v, b, err := e.lowerExpr(fr, b, n.Value)
	if err != nil {
		return nil, err
	}
	boxed := e.ensureBoxed(b, v)
	ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, boxed, 1))
	slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex("print"))))
	fnPtr := b.NewLoad(types.I8Ptr, slotPtr)
	target := b.NewBitCast(fnPtr, types.NewPointer(e.OM.UnaryFnType))
	b.NewCall(target, boxed)
	b.NewCall(e.printfFn, e.internString("\n"))
	return b, nil
}

// lowerTransform implements the transform table: the moves between a
// name's raw and boxed slots.
func (e *Emitter) lowerTransform(fr *frame, b *ir.Block, n *sast.Transform) (*ir.Block, error) {
	fromBoxed, toBoxed := boxedKind(n.From), boxedKind(n.To)

	if fromBoxed == toBoxed {
		// T -> T (no-op), or box-type <-> box-type (String/Arr/FuncType
		// <-> Dyn). Our addressing scheme gives a name only one BoxAddr
		// regardless of which boxed kind is live, so this is a genuine
		// no-op: the same CObj* slot already holds the right pointer.
		return b, nil
	}
	if !fromBoxed && toBoxed {
		// raw-type R -> Dyn: load raw, box it fresh, store the CObj*
		// into the Dyn slot. boxRaw always allocates new heap storage,
		// so the "never references dead stack memory" invariant holds
		// by construction rather than via a deferred needs_heapify flag.
		s := e.ensureStorage(fr, b, n.Name, n.From)
		if s.Raw == nil {
			return nil, diagnostics.Internalf("transform from raw %q but no raw slot exists", n.Name)
		}
		raw := b.NewLoad(llvmPrimType(n.From), s.Raw)
		boxed := e.boxRaw(b, raw, llvmPrimType(n.From), e.ctypeFor(n.From))
		s = e.ensureStorage(fr, b, n.Name, n.To)
		b.NewStore(boxed, s.Box)
		return b, nil
	}
	// Dyn -> raw-type R
	s := e.ensureStorage(fr, b, n.Name, n.From)
	if s.Box == nil {
		return nil, diagnostics.Internalf("transform from dyn but no box slot exists for %q", n.Name)
	}
	boxed := b.NewLoad(e.OM.CObjPtr, s.Box)
	raw := e.loadRaw(b, boxed, llvmPrimType(n.To))
	s = e.ensureStorage(fr, b, n.Name, n.To)
	b.NewStore(raw, s.Raw)
	return b, nil
}

// i1Of extracts a bare i1 from v for use as a branch condition,
// inserting the runtime bool-type check when v arrives boxed
// (badMessage is MsgInvalidBoolIf or MsgInvalidBoolWhile).
func (e *Emitter) i1Of(fr *frame, b *ir.Block, v Value, badMessage string) (value.Value, *ir.Block) {
	if rv, ok := v.(RawValue); ok && rv.Typ.Kind() == stypes.KBool {
		return rv.V, b
	}
	boxed := e.ensureBoxed(b, v)
	mismatch := e.typeMismatch(b, boxed, stypes.Bool)
	b = e.emitCheck(fr, b, mismatch, badMessage)
	return e.loadRaw(b, boxed, types.I1), b
}

func (e *Emitter) lowerIf(fr *frame, b *ir.Block, n *sast.If, lc *loopCtx) (*ir.Block, error) {
	cond, b, err := e.lowerExpr(fr, b, n.Cond)
	if err != nil {
		return nil, err
	}
	condBool, b := e.i1Of(fr, b, cond, msgInvalidBoolIf)

	thenBlock := fr.fn.NewBlock("")
	mergeBlock := fr.fn.NewBlock("")
	elseBlock := mergeBlock
	if n.Else != nil {
		elseBlock = fr.fn.NewBlock("")
	}
	b.NewCondBr(condBool, thenBlock, elseBlock)

	mergeReachable := n.Else == nil

	thenEnd, err := e.lowerStmtLoop(fr, thenBlock, n.Then, lc)
	if err != nil {
		return nil, err
	}
	if thenEnd != nil {
		thenEnd.NewBr(mergeBlock)
		mergeReachable = true
	}

	if n.Else != nil {
		elseEnd, err := e.lowerStmtLoop(fr, elseBlock, n.Else, lc)
		if err != nil {
			return nil, err
		}
		if elseEnd != nil {
			elseEnd.NewBr(mergeBlock)
			mergeReachable = true
		}
	}

	if !mergeReachable {
		mergeBlock.NewUnreachable()
		return nil, nil
	}
	return mergeBlock, nil
}

// lowerWhile compiles a predicate/body block pair.
func (e *Emitter) lowerWhile(fr *frame, b *ir.Block, n *sast.While) (*ir.Block, error) {
	headBlock := fr.fn.NewBlock("")
	bodyBlock := fr.fn.NewBlock("")
	exitBlock := fr.fn.NewBlock("")
	b.NewBr(headBlock)

	cond, head, err := e.lowerExpr(fr, headBlock, n.Cond)
	if err != nil {
		return nil, err
	}
	condBool, head := e.i1Of(fr, head, cond, msgInvalidBoolWhi)
	head.NewCondBr(condBool, bodyBlock, exitBlock)

	bodyEnd, err := e.lowerStmtLoop(fr, bodyBlock, n.Body, &loopCtx{headBlock: headBlock, exitBlock: exitBlock})
	if err != nil {
		return nil, err
	}
	if bodyEnd != nil {
		bodyEnd.NewBr(headBlock)
	}
	return exitBlock, nil
}

// lowerFor iterates a boxed list via its idx slot with a counter
// compared against the list length.
func (e *Emitter) lowerFor(fr *frame, b *ir.Block, n *sast.For) (*ir.Block, error) {
	iterV, b, err := e.lowerExpr(fr, b, n.Iter)
	if err != nil {
		return nil, err
	}
	listBox := e.ensureBoxed(b, iterV)
	list := e.listStruct(b, listBox)
	length := b.NewZExt(e.listLen(b, list), types.I64)

	counter := b.NewAlloca(types.I64)
	b.NewStore(constant.NewInt(types.I64, 0), counter)

	headBlock := fr.fn.NewBlock("")
	bodyBlock := fr.fn.NewBlock("")
	exitBlock := fr.fn.NewBlock("")
	b.NewBr(headBlock)

	i := headBlock.NewLoad(types.I64, counter)
	cond := headBlock.NewICmp(enum.IPredULT, i, length)
	headBlock.NewCondBr(cond, bodyBlock, exitBlock)

	ctypePtr := bodyBlock.NewLoad(e.OM.CTypePtr, e.gepField(bodyBlock, e.OM.CObjType, listBox, 1))
	idxSlotPtr := bodyBlock.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex("idx"))))
	idxFnPtr := bodyBlock.NewLoad(types.I8Ptr, idxSlotPtr)
	idxFn := bodyBlock.NewBitCast(idxFnPtr, types.NewPointer(e.OM.BinaryFnType))
	idxBoxed := e.boxRaw(bodyBlock, i, types.I64, e.ctypes["int"])
	elem := bodyBlock.NewCall(idxFn, listBox, idxBoxed)

	bEntry := e.storeSlot(fr, bodyBlock, n.VarName, n.VarTyp, BoxValue{V: elem})

	bodyEnd, err := e.lowerStmtLoop(fr, bEntry, n.Body, &loopCtx{headBlock: headBlock, exitBlock: exitBlock})
	if err != nil {
		return nil, err
	}
	if bodyEnd != nil {
		next := bodyEnd.NewAdd(i, constant.NewInt(types.I64, 1))
		bodyEnd.NewStore(next, counter)
		bodyEnd.NewBr(headBlock)
	}
	return exitBlock, nil
}

// lowerRange iterates an integer counter 0..n; if n arrived boxed, it
// is explicit-type-checked to Int and extracted.
func (e *Emitter) lowerRange(fr *frame, b *ir.Block, n *sast.Range) (*ir.Block, error) {
	nV, b, err := e.lowerExpr(fr, b, n.N)
	if err != nil {
		return nil, err
	}
	var limit value.Value
	if rv, ok := nV.(RawValue); ok {
		limit = rv.V
	} else {
		boxed := nV.(BoxValue).V
		mismatch := e.typeMismatch(b, boxed, stypes.Int)
		b = e.emitCheck(fr, b, mismatch, msgUnsupportedIdx)
		limit = e.loadRaw(b, boxed, types.I64)
	}

	counter := b.NewAlloca(types.I64)
	b.NewStore(constant.NewInt(types.I64, 0), counter)

	headBlock := fr.fn.NewBlock("")
	bodyBlock := fr.fn.NewBlock("")
	exitBlock := fr.fn.NewBlock("")
	b.NewBr(headBlock)

	i := headBlock.NewLoad(types.I64, counter)
	cond := headBlock.NewICmp(enum.IPredSLT, i, limit)
	headBlock.NewCondBr(cond, bodyBlock, exitBlock)

	bEntry := e.storeSlot(fr, bodyBlock, n.VarName, stypes.Int, RawValue{V: i, Typ: stypes.Int})

	bodyEnd, err := e.lowerStmtLoop(fr, bEntry, n.Body, &loopCtx{headBlock: headBlock, exitBlock: exitBlock})
	if err != nil {
		return nil, err
	}
	if bodyEnd != nil {
		next := bodyEnd.NewAdd(i, constant.NewInt(types.I64, 1))
		bodyEnd.NewStore(next, counter)
		bodyEnd.NewBr(headBlock)
	}
	return exitBlock, nil
}
