package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/value"

	"github.com/funvibe/funxyc/internal/sast"
	stypes "github.com/funvibe/funxyc/internal/types"
)

// varSlot is the per-name storage behind the RawAddr/BoxAddr
// addressing split. A name may own a raw slot, a boxed slot, or both
// (when its flow-inferred type changes mid-scope): at most one is
// "live" at any program point, decided purely by the SAST Typ the
// analyzer already attached to every Var reference — Dyn reads go
// through Box, concrete reads go through Raw. Slots are allocas for
// function locals and ir.Globals for module-level names; both are
// pointers-to-storage as far as load/store lowering cares.
type varSlot struct {
	Raw     value.Value
	RawType stypes.Type
	Box     value.Value
}

// frame is the codegen-time symbol table for one function body (or
// the top-level program, treated as an implicit function for this
// purpose). Unlike internal/semant's Environment, slots are allocated
// once up front and never reassigned: which slot is live at a given
// reference is determined statically from that reference's Typ.
type frame struct {
	e       *Emitter
	fn      *ir.Func
	retRaw  bool        // true when the enclosing function's declared return type is a concrete scalar
	retType stypes.Type // meaningful only when retRaw is true
	vars    map[string]*varSlot
}

func newFrame(e *Emitter, fn *ir.Func) *frame {
	return &frame{e: e, fn: fn, vars: make(map[string]*varSlot)}
}

// slot resolves name to its storage: a frame-local slot if one was
// declared, else the module-level global slot, else a fresh (empty)
// frame-local slot for names materialized mid-lowering (loop
// counters and the like).
func (fr *frame) slot(name string) *varSlot {
	if s, ok := fr.vars[name]; ok {
		return s
	}
	if s, ok := fr.e.globals[name]; ok {
		return s
	}
	s := &varSlot{}
	fr.vars[name] = s
	return s
}

// declare always creates (or returns) a frame-local slot for name,
// shadowing any same-named global — used when allocating storage for
// a function's own locals, which internal/semant scopes the same way.
func (fr *frame) declare(name string) *varSlot {
	s, ok := fr.vars[name]
	if !ok {
		s = &varSlot{}
		fr.vars[name] = s
	}
	return s
}

// declareLocals allocates storage for every name in locals, plus an
// extra slot of the other addressing kind for any name a Transform
// statement in body later moves through.
// Must run once, in the function's entry block, before any statement
// is lowered. Transforms over module-level globals get module-level
// storage instead of a shadowing alloca.
func (e *Emitter) declareLocals(fr *frame, b *ir.Block, locals []sast.Local, body []sast.Stmt) {
	for _, l := range locals {
		fr.allocFor(b, l.Name, l.Typ)
	}
	for _, t := range collectTransforms(body) {
		if _, isLocal := fr.vars[t.Name]; !isLocal {
			if _, isGlobal := e.globals[t.Name]; isGlobal {
				e.globalStorageFor(t.Name, t.From)
				e.globalStorageFor(t.Name, t.To)
				continue
			}
		}
		fr.allocFor(b, t.Name, t.From)
		fr.allocFor(b, t.Name, t.To)
	}
}

// allocFor ensures the frame-local slot matching typ's addressing kind
// exists for name, allocating it if this is the first time it's needed.
func (fr *frame) allocFor(b *ir.Block, name string, typ stypes.Type) {
	s := fr.declare(name)
	if boxedKind(typ) {
		if s.Box == nil {
			box := b.NewAlloca(fr.e.OM.CObjPtr)
			b.NewStore(constant.NewNull(fr.e.OM.CObjPtr), box)
			s.Box = box
		}
		return
	}
	if s.Raw == nil {
		s.Raw = b.NewAlloca(llvmPrimType(typ))
		s.RawType = typ
	}
}

// collectTransforms walks a statement list (including into If/loop
// bodies and Stage wrappers) gathering every Transform node, so
// declareLocals can see every raw<->box move a function body performs
// regardless of which branch it's nested in.
func collectTransforms(stmts []sast.Stmt) []*sast.Transform {
	var out []*sast.Transform
	var walkStmt func(s sast.Stmt)
	walkBlock := func(b *sast.Block) {
		if b == nil {
			return
		}
		for _, s := range b.Statements {
			walkStmt(s)
		}
	}
	walkStmt = func(s sast.Stmt) {
		switch n := s.(type) {
		case *sast.Transform:
			out = append(out, n)
		case *sast.Block:
			walkBlock(n)
		case *sast.If:
			walkBlock(n.Then)
			walkBlock(n.Else)
		case *sast.While:
			walkBlock(n.Body)
		case *sast.For:
			walkBlock(n.Body)
		case *sast.Range:
			walkBlock(n.Body)
		case *sast.StageStmt:
			out = append(out, n.Entry...)
			out = append(out, n.Exit...)
			walkStmt(n.Body)
		}
	}
	for _, s := range stmts {
		walkStmt(s)
	}
	return out
}
