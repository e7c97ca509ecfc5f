package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/enum"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/semant"
	stypes "github.com/funvibe/funxyc/internal/types"
)

// lowerExpr lowers one annotated expression. It returns the block
// execution continues in afterward: a runtime check inserted anywhere
// inside expr splits the block it's lowered into, so the caller must
// keep using the returned block rather than the one it passed in.
func (e *Emitter) lowerExpr(fr *frame, b *ir.Block, expr sast.Expr) (Value, *ir.Block, error) {
	switch n := expr.(type) {
	case *sast.Lit:
		return e.lowerLit(fr, b, n)
	case *sast.Var:
		return e.lowerVar(fr, b, n)
	case *sast.Binop:
		return e.lowerBinop(fr, b, n)
	case *sast.Unop:
		return e.lowerUnop(fr, b, n)
	case *sast.Call:
		return e.lowerCall(fr, b, n)
	case *sast.List:
		return e.lowerList(fr, b, n)
	case *sast.ListAccess:
		return e.lowerListAccess(fr, b, n)
	case *sast.Cast:
		return e.lowerCast(fr, b, n)
	case *sast.Field, *sast.Method:
		return nil, nil, diagnostics.Internalf("class field/method access has no object-model lowering")
	}
	return nil, nil, diagnostics.Internalf("unhandled SAST expression %T", expr)
}

func (e *Emitter) lowerLit(fr *frame, b *ir.Block, n *sast.Lit) (Value, *ir.Block, error) {
	switch n.Typ.Kind() {
	case stypes.KInt:
		v, err := semant.ParseIntLiteral(n.Value)
		if err != nil {
			return nil, nil, diagnostics.Internalf("bad int literal %q: %v", n.Value, err)
		}
		return RawValue{V: constant.NewInt(types.I64, v), Typ: stypes.Int}, b, nil
	case stypes.KFloat:
		v, err := semant.ParseFloatLiteral(n.Value)
		if err != nil {
			return nil, nil, diagnostics.Internalf("bad float literal %q: %v", n.Value, err)
		}
		return RawValue{V: constant.NewFloat(types.Double, v), Typ: stypes.Float}, b, nil
	case stypes.KBool:
		v := int64(0)
		if n.Value == "true" {
			v = 1
		}
		return RawValue{V: constant.NewInt(types.I1, v), Typ: stypes.Bool}, b, nil
	case stypes.KString:
		v := e.boxStringLiteral(b, n.Value)
		return v, b, nil
	case stypes.KNull:
		return BoxValue{V: constant.NewNull(e.OM.CObjPtr)}, b, nil
	}
	return nil, nil, diagnostics.Internalf("unhandled literal kind %s", n.Typ)
}

// boxStringLiteral builds a CString: one heap-allocated char CObj per
// byte, collected into a CList-layout array.
func (e *Emitter) boxStringLiteral(b *ir.Block, s string) Value {
	n := int64(len(s))
	arrMem := e.emitMalloc(b, constant.NewInt(types.I64, n*8))
	arr := b.NewBitCast(arrMem, types.NewPointer(e.OM.CObjPtr))
	for i := int64(0); i < n; i++ {
		ch := constant.NewInt(types.I8, int64(s[i]))
		charObj := e.boxRaw(b, ch, types.I8, e.ctypes["char"])
		slot := b.NewGetElementPtr(e.OM.CObjPtr, arr, constant.NewInt(types.I64, i))
		b.NewStore(charObj, slot)
	}
	list := e.newListStruct(b, arr, constant.NewInt(types.I64, n))
	return BoxValue{V: e.boxPointer(b, b.NewBitCast(list, types.I8Ptr), e.ctypes["string"])}
}

// funcValue returns the boxed CObj* of a known top-level function's
// generic form, or nil if name isn't one.
func (e *Emitter) funcValue(name string) value.Value {
	g, ok := e.funcGlobals[name]
	if !ok {
		return nil
	}
	return g
}

// lowerVar loads a name from its slot. A boxed read is checked
// against its null sentinel (uninitialized name); boxed payloads are
// always heap-resident already (boxRaw copies at boxing time), so no
// further move is needed. A name that resolves to no local/global
// slot but matches a known top-level function is its immutable
// generic-form CObj — no alloca needed, since a function's identity
// never changes after it's declared.
func (e *Emitter) lowerVar(fr *frame, b *ir.Block, n *sast.Var) (Value, *ir.Block, error) {
	s := fr.slot(n.Name)
	if boxedKind(n.Typ) {
		if s.Box == nil {
			if fv := e.funcValue(n.Name); fv != nil {
				return BoxValue{V: fv}, b, nil
			}
			// A name the analyzer only resolved dynamically (deferred
			// NoEval lookup): give it the all-null sentinel slot so the
			// defined-check below reports it at runtime.
			s = e.ensureStorage(fr, b, n.Name, stypes.Dyn)
		}
		ptr := b.NewLoad(e.OM.CObjPtr, s.Box)
		isNull := b.NewICmp(enum.IPredEQ, b.NewPtrToInt(ptr, types.I64), constant.NewInt(types.I64, 0))
		b = e.emitCheck(fr, b, isNull, diagnostics.NameNotDefined(n.Name))
		ptr = b.NewLoad(e.OM.CObjPtr, s.Box)
		return BoxValue{V: ptr}, b, nil
	}
	if s.Raw == nil {
		return nil, nil, diagnostics.Internalf("var %q read before any slot was declared", n.Name)
	}
	return RawValue{V: b.NewLoad(llvmPrimType(s.RawType), s.Raw), Typ: s.RawType}, b, nil
}

// lowerBinop lowers a binary operation: raw+numeric dispatches
// directly to an LLVM primitive instruction; anything else boxes both
// operands and dispatches through the left operand's CType slot,
// guarded by a null-slot check, plus a same-type check when an
// operand is statically Dyn.
func (e *Emitter) lowerBinop(fr *frame, b *ir.Block, n *sast.Binop) (Value, *ir.Block, error) {
	left, b, err := e.lowerExpr(fr, b, n.Left)
	if err != nil {
		return nil, nil, err
	}
	right, b, err := e.lowerExpr(fr, b, n.Right)
	if err != nil {
		return nil, nil, err
	}

	if lr, ok := left.(RawValue); ok {
		if rr, ok := right.(RawValue); ok {
			// Int/bool mixes stay raw: the bool side widens to i64 and
			// the operation proceeds as int arithmetic.
			if lr.Typ.Kind() == stypes.KInt && rr.Typ.Kind() == stypes.KBool {
				rr = RawValue{V: b.NewZExt(rr.V, types.I64), Typ: stypes.Int}
			} else if lr.Typ.Kind() == stypes.KBool && rr.Typ.Kind() == stypes.KInt {
				lr = RawValue{V: b.NewZExt(lr.V, types.I64), Typ: stypes.Int}
			}
			if stypes.IsNumeric(lr.Typ) && stypes.Equal(lr.Typ, rr.Typ) {
				// Bitwise and/or have no float instruction; those pairs go
				// through the dispatch path (whose float table has no such
				// slot, making them runtime errors, matching the operator
				// table's holes).
				if !((n.Op == ast.LAnd || n.Op == ast.LOr) && lr.Typ.Kind() == stypes.KFloat) {
					v, err := e.lowerRawBinop(b, n.Op, lr, rr)
					return v, b, err
				}
			}
		}
	}

	lBox := e.ensureBoxed(b, left)
	rBox := e.ensureBoxed(b, right)

	// Repetition commutes: int * list dispatches through the list side,
	// whose mul thunk expects (sequence, count).
	if n.Op == ast.Mul && n.Left.Type().Kind() == stypes.KInt && stypes.IsArr(n.Right.Type()) {
		lBox, rBox = rBox, lBox
	}

	ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, lBox, 1))
	slotName := binopSlotName(n.Op)
	slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex(slotName))))
	fnPtr := b.NewLoad(types.I8Ptr, slotPtr)

	isNull := b.NewICmp(enum.IPredEQ, b.NewPtrToInt(fnPtr, types.I64), constant.NewInt(types.I64, 0))
	b = e.emitCheck(fr, b, isNull, diagnostics.UnsupportedBinaryOp(n.Op.String()))

	// The same-type check only guards operands whose static type is
	// incomplete: a Dyn operand's runtime type is unknown, while a pair
	// of concrete types already passed inference (which admits mixed
	// pairs like list*int that this check would wrongly reject).
	if n.Left.Type().Kind() == stypes.KDyn || n.Right.Type().Kind() == stypes.KDyn {
		rCtypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, rBox, 1))
		typeMismatch := b.NewICmp(enum.IPredNE,
			b.NewPtrToInt(ctypePtr, types.I64), b.NewPtrToInt(rCtypePtr, types.I64))
		b = e.emitCheck(fr, b, typeMismatch, diagnostics.UnsupportedBinaryOp(n.Op.String()))
	}

	fnPtr = b.NewLoad(types.I8Ptr, slotPtr) // re-read: emitCheck may have split the block
	target := b.NewBitCast(fnPtr, types.NewPointer(e.OM.BinaryFnType))
	result := b.NewCall(target, lBox, rBox)
	return BoxValue{V: result}, b, nil
}

func binopSlotName(op ast.BinOp) string {
	switch op {
	case ast.Add:
		return "add"
	case ast.Sub:
		return "sub"
	case ast.Mul:
		return "mul"
	case ast.Div:
		return "div"
	case ast.Exp:
		return "exp"
	case ast.Eq:
		return "eq"
	case ast.Neq:
		return "neq"
	case ast.Lt:
		return "lt"
	case ast.Le:
		return "le"
	case ast.Gt:
		return "gt"
	case ast.Ge:
		return "ge"
	case ast.LAnd:
		return "and"
	case ast.LOr:
		return "or"
	}
	return "add"
}

func (e *Emitter) lowerRawBinop(b *ir.Block, op ast.BinOp, l, r RawValue) (Value, error) {
	isFloat := l.Typ.Kind() == stypes.KFloat
	x, y := l.V, r.V
	switch op {
	case ast.Add:
		if isFloat {
			return RawValue{V: b.NewFAdd(x, y), Typ: l.Typ}, nil
		}
		return RawValue{V: b.NewAdd(x, y), Typ: l.Typ}, nil
	case ast.Sub:
		if isFloat {
			return RawValue{V: b.NewFSub(x, y), Typ: l.Typ}, nil
		}
		return RawValue{V: b.NewSub(x, y), Typ: l.Typ}, nil
	case ast.Mul:
		if isFloat {
			return RawValue{V: b.NewFMul(x, y), Typ: l.Typ}, nil
		}
		return RawValue{V: b.NewMul(x, y), Typ: l.Typ}, nil
	case ast.Div:
		if isFloat {
			return RawValue{V: b.NewFDiv(x, y), Typ: l.Typ}, nil
		}
		return RawValue{V: b.NewSDiv(x, y), Typ: l.Typ}, nil
	case ast.Exp:
		if isFloat {
			return RawValue{V: b.NewCall(e.powFn, x, y), Typ: l.Typ}, nil
		}
		xf, yf := b.NewSIToFP(x, types.Double), b.NewSIToFP(y, types.Double)
		rf := b.NewCall(e.powFn, xf, yf)
		return RawValue{V: b.NewFPToSI(rf, types.I64), Typ: l.Typ}, nil
	case ast.Eq, ast.Neq, ast.Lt, ast.Le, ast.Gt, ast.Ge:
		var v value.Value
		if isFloat {
			v = b.NewFCmp(floatPred(op), x, y)
		} else {
			v = b.NewICmp(intPred(op), x, y)
		}
		return RawValue{V: v, Typ: stypes.Bool}, nil
	case ast.LAnd:
		return RawValue{V: b.NewAnd(x, y), Typ: l.Typ}, nil
	case ast.LOr:
		return RawValue{V: b.NewOr(x, y), Typ: l.Typ}, nil
	}
	return nil, diagnostics.Internalf("unhandled raw binop %s", op)
}

func intPred(op ast.BinOp) enum.IPred {
	switch op {
	case ast.Eq:
		return enum.IPredEQ
	case ast.Neq:
		return enum.IPredNE
	case ast.Lt:
		return enum.IPredSLT
	case ast.Le:
		return enum.IPredSLE
	case ast.Gt:
		return enum.IPredSGT
	default:
		return enum.IPredSGE
	}
}

func floatPred(op ast.BinOp) enum.FPred {
	switch op {
	case ast.Eq:
		return enum.FPredUEQ
	case ast.Neq:
		return enum.FPredUNE
	case ast.Lt:
		return enum.FPredULT
	case ast.Le:
		return enum.FPredULE
	case ast.Gt:
		return enum.FPredUGT
	default:
		return enum.FPredUGE
	}
}

// ensureBoxed temporarily boxes a raw value so the generic dispatch
// path always operates on CObj*.
func (e *Emitter) ensureBoxed(b *ir.Block, v Value) value.Value {
	if bv, ok := v.(BoxValue); ok {
		return bv.V
	}
	rv := v.(RawValue)
	ctype := e.ctypeFor(rv.Typ)
	return e.boxRaw(b, rv.V, llvmPrimType(rv.Typ), ctype)
}

func (e *Emitter) ctypeFor(t stypes.Type) *ir.Global {
	switch t.Kind() {
	case stypes.KInt:
		return e.ctypes["int"]
	case stypes.KFloat:
		return e.ctypes["float"]
	case stypes.KBool:
		return e.ctypes["bool"]
	default:
		return e.ctypes["int"]
	}
}

func (e *Emitter) lowerUnop(fr *frame, b *ir.Block, n *sast.Unop) (Value, *ir.Block, error) {
	operand, b, err := e.lowerExpr(fr, b, n.Operand)
	if err != nil {
		return nil, nil, err
	}
	if rv, ok := operand.(RawValue); ok {
		switch n.Op {
		case ast.Neg:
			if rv.Typ.Kind() == stypes.KFloat {
				return RawValue{V: b.NewFSub(constant.NewFloat(types.Double, 0), rv.V), Typ: rv.Typ}, b, nil
			}
			zero := constant.NewInt(llvmPrimType(rv.Typ).(*types.IntType), 0)
			return RawValue{V: b.NewSub(zero, rv.V), Typ: rv.Typ}, b, nil
		case ast.Not:
			if rv.Typ.Kind() == stypes.KBool {
				return RawValue{V: b.NewXor(rv.V, constant.NewInt(types.I1, 1)), Typ: rv.Typ}, b, nil
			}
		}
	}

	boxV := e.ensureBoxed(b, operand)
	slotName := "neg"
	if n.Op == ast.Not {
		slotName = "not"
	}
	ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, boxV, 1))
	slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex(slotName))))
	fnPtr := b.NewLoad(types.I8Ptr, slotPtr)
	isNull := b.NewICmp(enum.IPredEQ, b.NewPtrToInt(fnPtr, types.I64), constant.NewInt(types.I64, 0))
	b = e.emitCheck(fr, b, isNull, diagnostics.UnsupportedUnaryOp(n.Op.String()))
	fnPtr = b.NewLoad(types.I8Ptr, slotPtr)
	target := b.NewBitCast(fnPtr, types.NewPointer(e.OM.UnaryFnType))
	return BoxValue{V: b.NewCall(target, boxV)}, b, nil
}

func (e *Emitter) lowerList(fr *frame, b *ir.Block, n *sast.List) (Value, *ir.Block, error) {
	count := int64(len(n.Elements))
	arrMem := e.emitMalloc(b, constant.NewInt(types.I64, count*8+8))
	arr := b.NewBitCast(arrMem, types.NewPointer(e.OM.CObjPtr))
	for i, el := range n.Elements {
		v, nb, err := e.lowerExpr(fr, b, el)
		if err != nil {
			return nil, nil, err
		}
		b = nb
		boxed := e.ensureBoxed(b, v)
		slot := b.NewGetElementPtr(e.OM.CObjPtr, arr, constant.NewInt(types.I64, int64(i)))
		b.NewStore(boxed, slot)
	}
	list := e.newListStruct(b, arr, constant.NewInt(types.I64, count))
	return BoxValue{V: e.boxPointer(b, b.NewBitCast(list, types.I8Ptr), e.ctypes["list"])}, b, nil
}

// lowerListAccess reads a concrete Arr receiver's element array
// directly and dispatches String and Dyn receivers through the idx
// slot, guarded by bounds and index-type checks.
func (e *Emitter) lowerListAccess(fr *frame, b *ir.Block, n *sast.ListAccess) (Value, *ir.Block, error) {
	listV, b, err := e.lowerExpr(fr, b, n.List)
	if err != nil {
		return nil, nil, err
	}
	idxV, b, err := e.lowerExpr(fr, b, n.Index)
	if err != nil {
		return nil, nil, err
	}

	listBox := e.ensureBoxed(b, listV)
	var idxRaw value.Value
	if rv, ok := idxV.(RawValue); ok && rv.Typ.Kind() == stypes.KInt {
		idxRaw = rv.V
	} else {
		idxBox := e.ensureBoxed(b, idxV)
		ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, idxBox, 1))
		isInt := b.NewICmp(enum.IPredNE, b.NewPtrToInt(ctypePtr, types.I64), b.NewPtrToInt(e.ctypes["int"], types.I64))
		b = e.emitCheck(fr, b, isInt, msgUnsupportedIdx)
		idxRaw = e.loadRaw(b, idxBox, types.I64)
	}

	// String indexing must allocate a fresh single-char CString, and a
	// Dyn receiver's actual behavior is only known at runtime: both
	// dispatch through the idx slot. A concrete Arr receiver reads the
	// element array directly.
	dispatch := n.Typ.Kind() == stypes.KString || n.List.Type().Kind() == stypes.KDyn
	if dispatch {
		ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, listBox, 1))
		slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex("idx"))))
		fnPtr := b.NewLoad(types.I8Ptr, slotPtr)
		slotNull := b.NewICmp(enum.IPredEQ, b.NewPtrToInt(fnPtr, types.I64), constant.NewInt(types.I64, 0))
		b = e.emitCheck(fr, b, slotNull, msgUnsupportedIdx)
	}

	list := e.listStruct(b, listBox)
	length := b.NewSExt(e.listLen(b, list), types.I64)
	neg := b.NewICmp(enum.IPredSLT, idxRaw, constant.NewInt(types.I64, 0))
	tooBig := b.NewICmp(enum.IPredSGE, idxRaw, length)
	oob := b.NewOr(neg, tooBig)
	b = e.emitCheck(fr, b, oob, msgIndexOOB)

	if dispatch {
		ctypePtr := b.NewLoad(e.OM.CTypePtr, e.gepField(b, e.OM.CObjType, listBox, 1))
		slotPtr := b.NewGetElementPtr(e.OM.CTypeType, ctypePtr, i32c(0), i32c(int64(slotIndex("idx"))))
		fnPtr := b.NewLoad(types.I8Ptr, slotPtr)
		target := b.NewBitCast(fnPtr, types.NewPointer(e.OM.BinaryFnType))
		idxBoxed := e.boxRaw(b, idxRaw, types.I64, e.ctypes["int"])
		return BoxValue{V: b.NewCall(target, listBox, idxBoxed)}, b, nil
	}

	arr := e.listArray(b, list)
	slot := b.NewGetElementPtr(e.OM.CObjPtr, arr, idxRaw)
	return BoxValue{V: b.NewLoad(e.OM.CObjPtr, slot)}, b, nil
}

func (e *Emitter) lowerCast(fr *frame, b *ir.Block, n *sast.Cast) (Value, *ir.Block, error) {
	v, b, err := e.lowerExpr(fr, b, n.Value)
	if err != nil {
		return nil, nil, err
	}
	target := castTargetType(n.Target)

	if rv, ok := v.(RawValue); ok {
		return e.lowerRawCast(b, rv, target)
	}

	boxed := v.(BoxValue).V
	srcType := srcRawGuess(n.Value.Type())
	raw := e.loadRaw(b, boxed, llvmPrimType(srcType))
	return e.lowerRawCast(b, RawValue{V: raw, Typ: srcType}, target)
}

func srcRawGuess(t stypes.Type) stypes.Type {
	if t.Kind() == stypes.KDyn {
		return stypes.Int
	}
	return t
}

func castTargetType(k ast.CastKind) stypes.Type {
	switch k {
	case ast.CastInt:
		return stypes.Int
	case ast.CastFloat:
		return stypes.Float
	case ast.CastBool:
		return stypes.Bool
	default:
		return stypes.String
	}
}

// lowerRawCast lowers an explicit conversion. Int/Float/Bool
// conversions are plain LLVM conversion instructions; a cast to String
// formats the raw value via a small snprintf-into-heap-buffer and wraps
// each resulting byte as a CString, the same representation
// boxStringLiteral builds for string literals.
func (e *Emitter) lowerRawCast(b *ir.Block, rv RawValue, target stypes.Type) (Value, *ir.Block, error) {
	if target.Kind() == stypes.KString {
		return e.raw2string(b, rv)
	}
	switch {
	case rv.Typ.Kind() == stypes.KInt && target.Kind() == stypes.KFloat:
		return RawValue{V: b.NewSIToFP(rv.V, types.Double), Typ: stypes.Float}, b, nil
	case rv.Typ.Kind() == stypes.KFloat && target.Kind() == stypes.KInt:
		return RawValue{V: b.NewFPToSI(rv.V, types.I64), Typ: stypes.Int}, b, nil
	case rv.Typ.Kind() == stypes.KBool && target.Kind() == stypes.KInt:
		return RawValue{V: b.NewZExt(rv.V, types.I64), Typ: stypes.Int}, b, nil
	case rv.Typ.Kind() == stypes.KInt && target.Kind() == stypes.KBool:
		neq := b.NewICmp(enum.IPredNE, rv.V, constant.NewInt(types.I64, 0))
		return RawValue{V: neq, Typ: stypes.Bool}, b, nil
	case rv.Typ.Kind() == stypes.KFloat && target.Kind() == stypes.KBool:
		neq := b.NewFCmp(enum.FPredUNE, rv.V, constant.NewFloat(types.Double, 0))
		return RawValue{V: neq, Typ: stypes.Bool}, b, nil
	case rv.Typ.Kind() == stypes.KBool && target.Kind() == stypes.KFloat:
		return RawValue{V: b.NewUIToFP(rv.V, types.Double), Typ: stypes.Float}, b, nil
	}
	return nil, nil, diagnostics.Internalf("unhandled cast from %s to %s", rv.Typ, target)
}

// raw2string formats rv into a heap buffer via snprintf, then boxes
// each resulting byte as a CString, mirroring boxStringLiteral's
// per-byte char CObj layout. Returns the exit block of its formatting
// loop; the caller must continue emission there.
func (e *Emitter) raw2string(b *ir.Block, rv RawValue) (Value, *ir.Block, error) {
	format := "%d"
	if rv.Typ.Kind() == stypes.KFloat {
		format = "%g"
	}

	arg := rv.V
	if rv.Typ.Kind() == stypes.KBool {
		arg = b.NewZExt(rv.V, types.I32)
	}
	bufSize := int64(32)
	buf := e.emitMalloc(b, constant.NewInt(types.I64, bufSize))
	n := b.NewCall(e.snprintfFn, buf, constant.NewInt(types.I64, bufSize), e.internString(format), arg)
	length := b.NewSExt(n, types.I64)

	arrMem := e.emitMalloc(b, b.NewMul(length, constant.NewInt(types.I64, 8)))
	arr := b.NewBitCast(arrMem, types.NewPointer(e.OM.CObjPtr))

	counter := b.NewAlloca(types.I64)
	b.NewStore(constant.NewInt(types.I64, 0), counter)
	fn := b.Parent
	headBlock := fn.NewBlock("")
	bodyBlock := fn.NewBlock("")
	exitBlock := fn.NewBlock("")
	b.NewBr(headBlock)

	i := headBlock.NewLoad(types.I64, counter)
	cond := headBlock.NewICmp(enum.IPredSLT, i, length)
	headBlock.NewCondBr(cond, bodyBlock, exitBlock)

	srcSlot := bodyBlock.NewGetElementPtr(types.I8, buf, i)
	ch := bodyBlock.NewLoad(types.I8, srcSlot)
	charObj := e.boxRaw(bodyBlock, ch, types.I8, e.ctypes["char"])
	dstSlot := bodyBlock.NewGetElementPtr(e.OM.CObjPtr, arr, i)
	bodyBlock.NewStore(charObj, dstSlot)
	next := bodyBlock.NewAdd(i, constant.NewInt(types.I64, 1))
	bodyBlock.NewStore(next, counter)
	bodyBlock.NewBr(headBlock)

	list := e.newListStruct(exitBlock, arr, length)
	result := e.boxPointer(exitBlock, exitBlock.NewBitCast(list, types.I8Ptr), e.ctypes["string"])
	return BoxValue{V: result}, exitBlock, nil
}
