package semant

import (
	"strings"

	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/types"
)

// memoKey is (function AST identity, formal-type tuple). FuncPtr
// identity (not structural equality) is deliberate: two distinct
// functions with identical bodies must specialize independently.
type memoKey struct {
	FuncPtr *ast.Func
	Types   string
}

func keyFor(fn *ast.Func, argTypes []types.Type) memoKey {
	parts := make([]string, len(argTypes))
	for i, t := range argTypes {
		parts[i] = t.String()
	}
	return memoKey{FuncPtr: fn, Types: strings.Join(parts, ",")}
}

// CallMemo is the call-stack memo guarding specialization against
// recursion; it is not a full fixed-point solver. While a (function,
// arg-types) key is "active"
// (currently being analyzed higher up the recursive descent), a
// revisit returns Dyn and does not recurse — it lets the generic
// calling path take over rather than looping forever on recursive
// functions. Once a key finishes, its resulting FuncRecord is cached
// so that identical call sites elsewhere in the program share the
// exact same *sast.FuncRecord (referential identity), which is what
// lets internal/codegen's specialization cache (keyed the same way)
// emit one IR function per distinct key rather than one per call site.
type CallMemo struct {
	active map[memoKey]bool
	done   map[memoKey]*sast.FuncRecord
}

// NewCallMemo returns an empty memo.
func NewCallMemo() *CallMemo {
	return &CallMemo{active: make(map[memoKey]bool), done: make(map[memoKey]*sast.FuncRecord)}
}

// Enter marks (fn, argTypes) as being analyzed. cached is the finished
// record if the key is already done (the caller should reuse it
// instead of recursing); alreadyActive is true if the key is already
// active (recursion detected: the caller must break out without
// recursing). Only when both are zero was the key freshly entered, and
// the caller is then responsible for calling Leave once its analysis
// completes.
func (m *CallMemo) Enter(fn *ast.Func, argTypes []types.Type) (key memoKey, alreadyActive bool, cached *sast.FuncRecord) {
	key = keyFor(fn, argTypes)
	if rec, ok := m.done[key]; ok {
		return key, false, rec
	}
	if m.active[key] {
		return key, true, nil
	}
	m.active[key] = true
	return key, false, nil
}

// Leave records the completed specialization and clears the active flag.
func (m *CallMemo) Leave(key memoKey, record *sast.FuncRecord) {
	delete(m.active, key)
	m.done[key] = record
}
