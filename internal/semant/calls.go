// Function calls and specialization.
package semant

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// FuncCtx accumulates the merged return type observed across every
// Return statement in one function body: agreeing types keep that
// type, disagreeing types collapse to Dyn. It is a pointer shared
// across the State clones created for each branch of an If/loop inside
// the function, so returns from either branch feed the same
// accumulator.
type FuncCtx struct {
	Observed *types.Type
	Seen     bool
}

// Merge folds one Return's value type into the accumulator.
func (f *FuncCtx) Merge(t types.Type) {
	if !f.Seen {
		f.Seen = true
		v := t
		f.Observed = &v
		return
	}
	if f.Observed == nil || !types.Equal(*f.Observed, t) {
		dyn := types.Dyn
		f.Observed = &dyn
	}
}

func analyzeCall(s State, n *ast.Call) (sast.Expr, error) {
	args := make([]sast.Expr, len(n.Args))
	argTypes := make([]types.Type, len(n.Args))
	for i, a := range n.Args {
		sa, err := analyzeExpr(s, a)
		if err != nil {
			return nil, err
		}
		args[i] = sa
		argTypes[i] = sa.Type()
	}

	callee, err := analyzeExpr(s, n.Callee)
	if err != nil {
		return nil, err
	}

	if v, ok := n.Callee.(*ast.Var); ok {
		if b, found := s.lookup(v.Name); found && b.AssocData != nil {
			return specializeCall(s, n, callee, b.AssocData, args, argTypes)
		}
	}

	// Dynamic dispatch: the callee isn't a statically known function.
	// Wrap the call in a Stage whose entry transforms dynify every
	// currently-tracked global across the call boundary (an opaque
	// callee may read or mutate them through its boxed view), and
	// whose exit transforms restore them after.
	entry, exit := dynifyGlobals(s, n.Token)
	return &sast.Call{
		Token:  n.Token,
		Callee: callee,
		Args:   args,
		Info:   &sast.Stage{Entry: entry, Exit: exit},
		Typ:    types.Dyn,
	}, nil
}

// dynifyGlobals produces the entry Transforms boxing every
// currently-concrete global to Dyn and the exit Transforms moving
// them back, for the generic call path. The environment itself is
// left unchanged: the round trip is a storage move, not a retyping,
// so code after the call keeps using the static types it had before.
func dynifyGlobals(s State, tok token.Token) (entry, exit []*sast.Transform) {
	for _, name := range s.Globals.Names() {
		b := s.Globals[name]
		if b.Inferred.Kind() == types.KDyn {
			continue
		}
		entry = append(entry, &sast.Transform{Token: tok, Name: name, From: b.Inferred, To: types.Dyn})
		exit = append(exit, &sast.Transform{Token: tok, Name: name, From: types.Dyn, To: b.Inferred})
	}
	return entry, exit
}

// specializeCall resolves a statically-known callee: bind formals
// against the actual argument types, analyze the body under that
// binding (memo-guarded), and attach the resulting record to the call.
func specializeCall(s State, n *ast.Call, callee sast.Expr, fn *ast.Func, args []sast.Expr, argTypes []types.Type) (sast.Expr, error) {
	if len(args) != len(fn.Formals) {
		return nil, diagnostics.New(diagnostics.STypeError, n.Token,
			"%s expects %d argument(s), got %d", fn.Name, len(fn.Formals), len(args))
	}

	key, active, cached := s.CallStackMemo.Enter(fn, argTypes)
	if cached != nil {
		return &sast.Call{Token: n.Token, Callee: callee, Args: args,
			Info: &sast.Specialization{Record: cached}, Typ: cached.ReturnType}, nil
	}
	if active {
		// Recursion guard, not a fixed-point solver: break the cycle
		// by returning Dyn and letting the generic call path take over
		// for this occurrence.
		return &sast.Call{Token: n.Token, Callee: callee, Args: args,
			Info: &sast.Specialization{Record: nil}, Typ: types.Dyn}, nil
	}

	record, err := buildRecord(s, fn, argTypes)
	if err != nil {
		return nil, err
	}
	s.CallStackMemo.Leave(key, record)
	return &sast.Call{Token: n.Token, Callee: callee, Args: args,
		Info: &sast.Specialization{Record: record}, Typ: record.ReturnType}, nil
}

// buildRecord specializes fn against argTypes: step 1 (fresh function
// scope, globals' explicit types cleared to Dyn), step 2 (bind
// formals), body analysis, and step 4's return-type reconciliation.
func buildRecord(s State, fn *ast.Func, argTypes []types.Type) (*sast.FuncRecord, error) {
	fnState := State{
		Locals:        NewEnvironment(),
		Globals:       clearedGlobals(s.Globals),
		InFunction:    true,
		NoEval:        s.NoEval,
		CallStackMemo: s.CallStackMemo,
		FuncCtx:       &FuncCtx{},
	}

	seen := make(map[string]bool, len(fn.Formals))
	for _, formal := range fn.Formals {
		if seen[formal.Name] {
			return nil, diagnostics.New(diagnostics.SSyntaxError, fn.Token,
				"duplicate formal '%s' in function %s", formal.Name, fn.Name)
		}
		seen[formal.Name] = true
	}

	boundTypes := make([]types.Type, len(fn.Formals))
	for i, formal := range fn.Formals {
		res := assign(fnState, formal.Name, formal.Type, argTypes[i], fn.Token)
		if res.Err != nil {
			return nil, res.Err
		}
		fnState.Locals[formal.Name] = res.Binding
		boundTypes[i] = res.Binding.Inferred
	}

	body, err := analyzeBlockStmt(fnState, fn.Body)
	if err != nil {
		return nil, err
	}

	declared := fn.ReturnType
	if declared == nil {
		declared = types.Dyn
	}
	var observed types.Type
	if fnState.FuncCtx.Observed != nil {
		observed = *fnState.FuncCtx.Observed
	}

	finalRet := declared
	if declared.Kind() == types.KDyn {
		switch {
		case observed == nil:
			finalRet = types.Dyn
		case !alwaysReturns(fn.Body):
			// One path returns, another falls off the end: the merged
			// return type is Dyn.
			finalRet = types.Dyn
		default:
			finalRet = observed
		}
	} else {
		if observed == nil {
			return nil, diagnostics.New(diagnostics.STypeError, fn.Token,
				"function %s declared to return %s but has no return statement", fn.Name, declared)
		}
		if observed.Kind() != types.KDyn && !types.Equal(declared, observed) {
			return nil, diagnostics.New(diagnostics.STypeError, fn.Token,
				"function %s declared to return %s but returns %s", fn.Name, declared, observed)
		}
	}

	locals := make([]sast.Local, 0, len(fnState.Locals))
	for _, n := range fnState.Locals.Names() {
		locals = append(locals, sast.Local{Name: n, Typ: fnState.Locals[n].Inferred})
	}

	return &sast.FuncRecord{
		Name:       fn.Name,
		ReturnType: finalRet,
		Formals:    fn.Formals,
		ArgTypes:   boundTypes,
		Locals:     locals,
		Body:       body,
	}, nil
}

// alwaysReturns reports whether every control path through b reaches a
// Return statement. Loops are ignored (their bodies may run zero
// times), so this is a conservative structural check: false means a
// fall-off-the-end path may exist.
func alwaysReturns(b *ast.Block) bool {
	if b == nil {
		return false
	}
	for _, st := range b.Statements {
		switch n := st.(type) {
		case *ast.Return:
			return true
		case *ast.If:
			if n.Else != nil && alwaysReturns(n.Then) && alwaysReturns(n.Else) {
				return true
			}
		case *ast.Block:
			if alwaysReturns(n) {
				return true
			}
		}
	}
	return false
}

// clearedGlobals implements step 1's "keep globals in scope with their
// explicit types cleared to Dyn": inferred types (and the function
// AssocData needed to call other functions) survive; only the
// hard-annotation enforcement is relaxed for the duration of this
// function body.
func clearedGlobals(g Environment) Environment {
	out := make(Environment, len(g))
	for k, v := range g {
		out[k] = Binding{Inferred: v.Inferred, Explicit: types.Dyn, HasAnnotation: false, AssocData: v.AssocData}
	}
	return out
}

// analyzeFuncDecl builds the generic (unspecialized) record bound to a
// top-level Func's own name — the boxed-calling-convention form that
// makes the function first-class. It specializes against the
// function's own declared formal types (Dyn where unannotated), which
// is exactly what makes it "generic".
func analyzeFuncDecl(s State, fn *ast.Func) (*sast.FuncRecord, error) {
	argTypes := make([]types.Type, len(fn.Formals))
	for i, p := range fn.Formals {
		argTypes[i] = p.Type
	}
	return buildRecord(s, fn, argTypes)
}
