package codegen

import (
	"fmt"

	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/funvibe/funxyc/internal/sast"
	stypes "github.com/funvibe/funxyc/internal/types"
)

// Emitter lowers one sast.Program into an *ir.Module. It owns the
// module, the object model and the per-primitive CType globals for
// its entire lifetime, plus the specialization cache.
type Emitter struct {
	Module     *ir.Module
	OM         *ObjectModel
	Exceptions bool // gate for inserted runtime checks

	ctypes map[string]*ir.Global // "int","float","bool","char","list","string","func" -> CType global

	printfFn   *ir.Func
	exitFn     *ir.Func
	powFn      *ir.Func
	mallocFn   *ir.Func
	memcpyFn   *ir.Func
	snprintfFn *ir.Func

	// funcGlobals maps each top-level function name to its immutable
	// generic-form CObj constant, which is what makes functions
	// first-class values.
	funcGlobals map[string]*ir.Global

	// globals is module-level variable storage: one varSlot per
	// analyzer-reported global, holding ir.Global slots instead of
	// allocas so that function bodies can reach them too.
	globals map[string]*varSlot

	// specCache is the per-record function cache: because the
	// analyzer's memo hands identical (function, arg-types) keys the
	// same *sast.FuncRecord, keying on the record pointer guarantees
	// identical keys share one IR function, referentially.
	specCache map[*sast.FuncRecord]*ir.Func

	strCounter int // suffix for interned .str.N literal globals
}

// NewEmitter constructs an Emitter ready to Emit one program.
// exceptions gates runtime check insertion.
func NewEmitter(exceptions bool) *Emitter {
	m := ir.NewModule()
	e := &Emitter{
		Module:      m,
		OM:          NewObjectModel(m),
		Exceptions:  exceptions,
		ctypes:      make(map[string]*ir.Global),
		funcGlobals: make(map[string]*ir.Global),
		globals:     make(map[string]*varSlot),
		specCache:   make(map[*sast.FuncRecord]*ir.Func),
	}
	e.declareExternals()
	e.buildDispatchTables()
	return e
}

// declareExternals emits the external symbols the generated code
// links against: printf, exit, pow, plus malloc/memcpy/snprintf,
// which the emitted object model routes every allocation, list copy,
// and to-string conversion through. Allocations are never freed; the
// emitted program leaks by design.
func (e *Emitter) declareExternals() {
	printf := e.Module.NewFunc("printf", types.I32, ir.NewParam("fmt", types.I8Ptr))
	printf.Sig.Variadic = true
	e.printfFn = printf

	e.exitFn = e.Module.NewFunc("exit", types.Void, ir.NewParam("code", types.I32))

	e.powFn = e.Module.NewFunc("pow", types.Double,
		ir.NewParam("x", types.Double), ir.NewParam("y", types.Double))

	e.mallocFn = e.Module.NewFunc("malloc", types.I8Ptr, ir.NewParam("size", types.I64))

	e.memcpyFn = e.Module.NewFunc("memcpy", types.I8Ptr,
		ir.NewParam("dst", types.I8Ptr), ir.NewParam("src", types.I8Ptr), ir.NewParam("n", types.I64))

	snprintf := e.Module.NewFunc("snprintf", types.I32,
		ir.NewParam("buf", types.I8Ptr), ir.NewParam("size", types.I64), ir.NewParam("fmt", types.I8Ptr))
	snprintf.Sig.Variadic = true
	e.snprintfFn = snprintf
}

func (e *Emitter) emitMalloc(b *ir.Block, size value.Value) value.Value {
	return b.NewCall(e.mallocFn, size)
}

// globalStorageFor ensures module-level storage of the addressing kind
// matching typ exists for the global name. Boxed kinds get a CObj*
// slot initialized to null (the use-before-definition sentinel); raw
// kinds get a zero-initialized primitive slot.
func (e *Emitter) globalStorageFor(name string, typ stypes.Type) {
	s, ok := e.globals[name]
	if !ok {
		s = &varSlot{}
		e.globals[name] = s
	}
	if boxedKind(typ) {
		if s.Box == nil {
			s.Box = e.Module.NewGlobalDef("g."+name, constant.NewNull(e.OM.CObjPtr))
		}
		return
	}
	if s.Raw == nil {
		s.Raw = e.Module.NewGlobalDef("g."+name+".raw", rawZero(typ))
		s.RawType = typ
	}
}

func rawZero(t stypes.Type) constant.Constant {
	switch t.Kind() {
	case stypes.KFloat:
		return constant.NewFloat(types.Double, 0)
	case stypes.KBool:
		return constant.NewInt(types.I1, 0)
	default:
		return constant.NewInt(types.I64, 0)
	}
}

// Emit lowers prog's top-level statements into main and returns the
// finished module. main always returns 0; runtime errors exit the
// process directly via the inserted checks rather than via main's
// return value.
func (e *Emitter) Emit(prog *sast.Program) (*ir.Module, error) {
	funcNames := make(map[string]bool)
	var topStmts []sast.Stmt
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*sast.Func); ok {
			funcNames[fn.Record.Name] = true
		} else {
			topStmts = append(topStmts, stmt)
		}
	}

	// Module-level storage for every non-function global, in both
	// addressing kinds a top-level Transform moves through, before any
	// function body that might reference them is lowered.
	for _, g := range prog.Globals {
		if funcNames[g.Name] {
			continue
		}
		e.globalStorageFor(g.Name, g.Typ)
	}
	for _, t := range collectTransforms(topStmts) {
		if funcNames[t.Name] {
			continue
		}
		e.globalStorageFor(t.Name, t.From)
		e.globalStorageFor(t.Name, t.To)
	}

	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*sast.Func); ok {
			if _, err := e.genericFunc(fn.Record); err != nil {
				return nil, err
			}
		}
	}

	main := e.Module.NewFunc("main", types.I32)
	entry := main.NewBlock("entry")

	fs := newFrame(e, main)
	cur := entry
	for _, stmt := range topStmts {
		var err error
		cur, err = e.lowerStmt(fs, cur, stmt)
		if err != nil {
			return nil, err
		}
		if cur == nil {
			break // a terminator already closed the function
		}
	}
	if cur != nil {
		cur.NewRet(constant.NewInt(types.I32, 0))
	}

	return e.Module, nil
}

// globalString defines an immutable global named name holding s plus
// a terminating NUL; internString adds the getelementptr-to-i8*
// accessor used to pass string literals to printf.
func (e *Emitter) globalString(name, s string) *ir.Global {
	data := constant.NewCharArrayFromString(s + "\x00")
	g := e.Module.NewGlobalDef(name, data)
	g.Immutable = true
	return g
}

func (e *Emitter) internString(s string) value.Value {
	e.strCounter++
	name := fmt.Sprintf(".str.%d", e.strCounter)
	g := e.globalString(name, s)
	return constant.NewGetElementPtr(g.ContentType, g,
		constant.NewInt(types.I32, 0), constant.NewInt(types.I32, 0))
}

