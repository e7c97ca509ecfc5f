// Package semant is the semantic analyzer: a flow-sensitive
// type-inference pass over the untyped AST (internal/ast) that
// produces the annotated SAST (internal/sast).
//
// It is a walker split across per-concern files, with an explicit
// environment threaded by value through recursive descent. Typing is
// flat-lattice flow typing: no type variables, no substitutions, no
// generalization — a type is concrete or it is Dyn.
package semant

import (
	"sort"

	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/types"
)

// Binding is the (explicit type, inferred type, associated data)
// triple kept for every name in the semantic environment. AssocData is
// the function's AST when the name is bound to a known function
// declaration (used for inline specialization); nil otherwise.
type Binding struct {
	Explicit      types.Type
	Inferred      types.Type
	HasAnnotation bool // true iff Explicit came from a real user type annotation
	AssocData     *ast.Func
}

// Environment is an insertion-order-irrelevant mapping from name to
// Binding. It must be cheap to clone at every If/loop iteration so
// that branches can diverge independently before transform synthesis
// reconciles them; Clone gives each branch its own map so mutations
// never alias across branches.
type Environment map[string]Binding

// NewEnvironment returns an empty environment.
func NewEnvironment() Environment { return make(Environment) }

// Clone returns an independent copy of e. Branch-local mutation of the
// clone never affects e.
func (e Environment) Clone() Environment {
	out := make(Environment, len(e))
	for k, v := range e {
		out[k] = v
	}
	return out
}

// Names returns e's keys in sorted order, so every consumer (global
// lists, transform synthesis, emitted storage) is deterministic across
// runs — re-analysis of the same source must produce the same output.
func (e Environment) Names() []string {
	out := make([]string, 0, len(e))
	for k := range e {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// State is the record threaded through the analyzer's recursive
// descent.
type State struct {
	Locals      Environment
	Globals     Environment
	InFunction  bool
	InConditional bool
	InForLoop   bool
	NoEval      bool // deferred-resolution mode while analyzing function bodies (Pass C)

	// CallStackMemo is shared (not cloned) across the whole analysis:
	// it is the specialization recursion guard, keyed by (function AST
	// identity, formal-type tuple).
	CallStackMemo *CallMemo

	// FuncCtx accumulates the current function's observed return type
	// (nil outside any function). It is a shared pointer: every branch
	// State.Clone()s while inside the same function body must feed the
	// same accumulator.
	FuncCtx *FuncCtx
}

// NewState creates the initial analyzer state with empty locals and
// globals and a fresh call-stack memo.
func NewState() State {
	return State{
		Locals:        NewEnvironment(),
		Globals:       NewEnvironment(),
		CallStackMemo: NewCallMemo(),
	}
}

// Clone returns a State whose Locals/Globals are independent of s's, for
// recursing into a branch that may diverge (e.g. one arm of an If).
// CallStackMemo is intentionally shared: it is a whole-analysis
// recursion guard, not per-branch state.
func (s State) Clone() State {
	c := s
	c.Locals = s.Locals.Clone()
	c.Globals = s.Globals.Clone()
	return c
}

// lookup finds name first in Locals then Globals, per ordinary lexical
// scoping.
func (s State) lookup(name string) (Binding, bool) {
	if b, ok := s.Locals[name]; ok {
		return b, true
	}
	b, ok := s.Globals[name]
	return b, ok
}

// define binds name in Locals when InFunction, else Globals: function
// bodies shadow into a local scope while top-level assignments widen
// the global one.
func (s State) define(name string, b Binding) {
	if s.InFunction {
		s.Locals[name] = b
	} else {
		s.Globals[name] = b
	}
}
