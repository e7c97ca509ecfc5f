package semant

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/types"
)

func analyzeBlockStmt(s State, block *ast.Block) (*sast.Block, error) {
	cur := s
	out := make([]sast.Stmt, 0, len(block.Statements))
	for _, st := range block.Statements {
		sst, next, err := analyzeStmt(cur, st)
		if err != nil {
			return nil, err
		}
		out = append(out, sst)
		cur = next
	}
	return &sast.Block{Token: block.Token, Statements: out}, nil
}

func analyzeStmt(s State, stmt ast.Statement) (sast.Stmt, State, error) {
	switch n := stmt.(type) {
	case *ast.Asn:
		return analyzeAsn(s, n)
	case *ast.If:
		return analyzeIf(s, n)
	case *ast.While:
		return analyzeWhile(s, n)
	case *ast.For:
		return analyzeFor(s, n)
	case *ast.Range:
		return analyzeRange(s, n)
	case *ast.Return:
		return analyzeReturn(s, n)
	case *ast.Expr:
		v, err := analyzeExpr(s, n.Value)
		if err != nil {
			return nil, s, err
		}
		return &sast.ExprStmt{Token: n.Token, Value: v}, s, nil
	case *ast.Print:
		v, err := analyzeExpr(s, n.Value)
		if err != nil {
			return nil, s, err
		}
		return &sast.Print{Token: n.Token, Value: v}, s, nil
	case *ast.TypeDecl:
		return &sast.TypeDecl{Token: n.Token, Name: n.Name, Value: n.Value}, s, nil
	case *ast.Nop:
		return &sast.Nop{Token: n.Token}, s, nil
	case *ast.Import:
		return &sast.Import{Token: n.Token, Path: n.Path, Alias: n.Alias}, s, nil
	case *ast.Class:
		// Class declarations parse but never analyze: full class
		// semantics are an explicit non-goal.
		return nil, s, diagnostics.New(diagnostics.SNotImplementedError, n.Token, "class declarations are not supported")
	case *ast.Continue:
		if !s.InForLoop {
			return nil, s, diagnostics.New(diagnostics.SSyntaxError, n.Token, "continue outside of loop")
		}
		return &sast.Continue{Token: n.Token}, s, nil
	case *ast.Break:
		if !s.InForLoop {
			return nil, s, diagnostics.New(diagnostics.SSyntaxError, n.Token, "break outside of loop")
		}
		return &sast.Break{Token: n.Token}, s, nil
	case *ast.Block:
		b, err := analyzeBlockStmt(s, n)
		return b, s, err
	}
	return nil, s, diagnostics.New(diagnostics.SNotImplementedError, stmt.GetToken(), "unsupported statement node %T", stmt)
}

func analyzeAsn(s State, n *ast.Asn) (sast.Stmt, State, error) {
	rhs, err := analyzeExpr(s, n.Value)
	if err != nil {
		return nil, s, err
	}

	lvalues := make([]sast.Lvalue, 0, len(n.Targets))
	var transforms []*sast.Transform
	var runtimeCheck types.Type

	for _, target := range n.Targets {
		switch t := target.(type) {
		case *ast.Var:
			if s.InConditional && !s.exists(t.Name) && n.Annotation != nil {
				// A fresh annotated declaration may not appear for the
				// first time inside a conditional branch, since the two
				// branches could disagree on whether the name exists at
				// all.
				return nil, s, diagnostics.New(diagnostics.STypeError, n.Token,
					"cannot introduce annotated binding '%s' inside a conditional branch", t.Name)
			}
			res := assign(s, t.Name, n.Annotation, rhs.Type(), n.Token)
			if res.Err != nil {
				return nil, s, res.Err
			}
			s.define(t.Name, res.Binding)
			lvalues = append(lvalues, &sast.NameLvalue{Token: t.Token, Name: t.Name, Typ: res.Binding.Inferred})
			if res.Transform != nil {
				transforms = append(transforms, &sast.Transform{Token: n.Token, Name: t.Name, From: res.Transform.From, To: res.Transform.To})
			}
			if res.RuntimeCheck != nil {
				// Folded into the Asn itself; a single Asn assigns to
				// at most one runtime-checked concrete target in
				// practice, so the last one wins if there were several.
				runtimeCheck = res.RuntimeCheck
			}
		case *ast.ListAccess:
			list, err := analyzeExpr(s, t.List)
			if err != nil {
				return nil, s, err
			}
			idx, err := analyzeExpr(s, t.Index)
			if err != nil {
				return nil, s, err
			}
			if _, derr := inferListAccess(list.Type(), idx.Type(), t.Token); derr != nil {
				return nil, s, derr
			}
			lvalues = append(lvalues, &sast.IndexLvalue{Token: t.Token, List: list, Index: idx})
		default:
			return nil, s, diagnostics.New(diagnostics.SSyntaxError, n.Token, "invalid assignment target")
		}
	}

	asnStmt := &sast.Asn{Token: n.Token, Targets: lvalues, Value: rhs, RuntimeCheck: runtimeCheck}
	if len(transforms) == 0 {
		return asnStmt, s, nil
	}
	// The raw->Dyn moves come first: they shift each target's liveness
	// to its boxed slot before the assignment stores the new value
	// there.
	stmts := make([]sast.Stmt, 0, 1+len(transforms))
	for _, t := range transforms {
		stmts = append(stmts, t)
	}
	stmts = append(stmts, asnStmt)
	return &sast.Block{Token: n.Token, Statements: stmts}, s, nil
}

func (s State) exists(name string) bool {
	_, ok := s.lookup(name)
	return ok
}

func analyzeReturn(s State, n *ast.Return) (sast.Stmt, State, error) {
	var v sast.Expr
	retType := types.Dyn
	if n.Value != nil {
		var err error
		v, err = analyzeExpr(s, n.Value)
		if err != nil {
			return nil, s, err
		}
		retType = v.Type()
	} else {
		retType = types.Null
	}
	if s.FuncCtx != nil {
		s.FuncCtx.Merge(retType)
	}
	return &sast.Return{Token: n.Token, Value: v}, s, nil
}

func analyzeIf(s State, n *ast.If) (sast.Stmt, State, error) {
	cond, err := analyzeExpr(s, n.Cond)
	if err != nil {
		return nil, s, err
	}
	if cond.Type().Kind() != types.KBool && cond.Type().Kind() != types.KDyn {
		return nil, s, diagnostics.New(diagnostics.STypeError, n.Token, "if condition must be bool or dyn, got %s", cond.Type())
	}

	thenState := s.Clone()
	thenState.InConditional = true
	thenBlock, err := analyzeBlockStmt(thenState, n.Then)
	if err != nil {
		return nil, s, err
	}

	elseState := s.Clone()
	elseState.InConditional = true
	var elseBlock *sast.Block
	if n.Else != nil {
		elseBlock, err = analyzeBlockStmt(elseState, n.Else)
		if err != nil {
			return nil, s, err
		}
	}

	mergedLocals, leftL, rightL, _ := synthesizeTransforms(thenState.Locals, elseState.Locals, n.Token)
	mergedGlobals, leftG, rightG, _ := synthesizeTransforms(thenState.Globals, elseState.Globals, n.Token)

	left := append(leftL, leftG...)
	right := append(rightL, rightG...)

	if len(left) > 0 {
		thenBlock.Statements = appendTransforms(thenBlock.Statements, left)
	}
	if len(right) > 0 {
		if elseBlock == nil {
			elseBlock = &sast.Block{Token: n.Token}
		}
		elseBlock.Statements = appendTransforms(elseBlock.Statements, right)
	}

	s.Locals = mergedLocals
	s.Globals = mergedGlobals

	return &sast.If{Token: n.Token, Cond: cond, Then: thenBlock, Else: elseBlock}, s, nil
}

func appendTransforms(stmts []sast.Stmt, transforms []*sast.Transform) []sast.Stmt {
	for _, t := range transforms {
		stmts = append(stmts, t)
	}
	return stmts
}

// loopJoin runs the loop fixed-point pass for While/For/Range:
// first-pass the body, compare the post-body environment against
// pre-loop, and if they differ, re-pass the body once more under the
// merged environment so it stabilizes.
func loopJoin(s State, tok ast.Node, firstPass func(State) (*sast.Block, State, error)) (*sast.Block, []*sast.Transform, State, error) {
	bodyState := s.Clone()
	bodyState.InForLoop = true
	firstBody, postState, err := firstPass(bodyState)
	if err != nil {
		return nil, nil, s, err
	}

	mergedLocals, leftL, _, _ := synthesizeTransforms(s.Locals, postState.Locals, tok.GetToken())
	mergedGlobals, leftG, _, _ := synthesizeTransforms(s.Globals, postState.Globals, tok.GetToken())
	entry := append(leftL, leftG...)

	if len(entry) == 0 {
		s.Locals, s.Globals = mergedLocals, mergedGlobals
		return firstBody, nil, s, nil
	}

	// Re-pass under the merged (now-stable) environment.
	secondState := s.Clone()
	secondState.Locals, secondState.Globals = mergedLocals.Clone(), mergedGlobals.Clone()
	secondState.InForLoop = true
	secondBody, _, err := firstPass(secondState)
	if err != nil {
		return nil, nil, s, err
	}

	s.Locals, s.Globals = mergedLocals, mergedGlobals
	return secondBody, entry, s, nil
}

func analyzeWhile(s State, n *ast.While) (sast.Stmt, State, error) {
	cond, err := analyzeExpr(s, n.Cond)
	if err != nil {
		return nil, s, err
	}
	if cond.Type().Kind() != types.KBool && cond.Type().Kind() != types.KDyn {
		return nil, s, diagnostics.New(diagnostics.STypeError, n.Token, "while condition must be bool or dyn, got %s", cond.Type())
	}

	body, entry, next, err := loopJoin(s, n, func(st State) (*sast.Block, State, error) {
		b, e := analyzeBlockStmt(st, n.Body)
		return b, st, e
	})
	if err != nil {
		return nil, s, err
	}
	if len(entry) == 0 {
		return &sast.While{Token: n.Token, Cond: cond, Body: body}, next, nil
	}
	// The predicate re-evaluates every iteration, so it must be typed
	// against the merged (post-dynify) environment, not the pre-loop
	// one — otherwise the head would keep reading a stale raw slot.
	cond, err = analyzeExpr(next, n.Cond)
	if err != nil {
		return nil, s, err
	}
	whileStmt := &sast.While{Token: n.Token, Cond: cond, Body: body}
	return &sast.StageStmt{Token: n.Token, Entry: entry, Body: whileStmt}, next, nil
}

func analyzeFor(s State, n *ast.For) (sast.Stmt, State, error) {
	iter, err := analyzeExpr(s, n.Iter)
	if err != nil {
		return nil, s, err
	}
	if iter.Type().Kind() != types.KDyn && !types.IsArr(iter.Type()) {
		return nil, s, diagnostics.New(diagnostics.STypeError, n.Token, "for loop requires an array or string, got %s", iter.Type())
	}
	elemType := elementTypeOf(iter.Type())

	body, entry, next, err := loopJoin(s, n, func(st State) (*sast.Block, State, error) {
		st.Locals[n.Var] = Binding{Inferred: elemType, Explicit: elemType}
		b, e := analyzeBlockStmt(st, n.Body)
		return b, st, e
	})
	if err != nil {
		return nil, s, err
	}
	forStmt := &sast.For{Token: n.Token, VarName: n.Var, VarTyp: elemType, Iter: iter, Body: body}
	if len(entry) == 0 {
		return forStmt, next, nil
	}
	return &sast.StageStmt{Token: n.Token, Entry: entry, Body: forStmt}, next, nil
}

func elementTypeOf(t types.Type) types.Type {
	switch t.Kind() {
	case types.KString:
		return types.String
	case types.KArr:
		if arr, ok := t.(types.Arr); ok && arr.Elem != nil {
			return arr.Elem
		}
		return types.Dyn
	default:
		return types.Dyn
	}
}

func analyzeRange(s State, n *ast.Range) (sast.Stmt, State, error) {
	count, err := analyzeExpr(s, n.N)
	if err != nil {
		return nil, s, err
	}
	if count.Type().Kind() != types.KInt && count.Type().Kind() != types.KDyn {
		return nil, s, diagnostics.New(diagnostics.STypeError, n.Token, "range requires an int, got %s", count.Type())
	}

	body, entry, next, err := loopJoin(s, n, func(st State) (*sast.Block, State, error) {
		st.Locals[n.Var] = Binding{Inferred: types.Int, Explicit: types.Int}
		b, e := analyzeBlockStmt(st, n.Body)
		return b, st, e
	})
	if err != nil {
		return nil, s, err
	}
	rangeStmt := &sast.Range{Token: n.Token, VarName: n.Var, N: count, Body: body}
	if len(entry) == 0 {
		return rangeStmt, next, nil
	}
	return &sast.StageStmt{Token: n.Token, Entry: entry, Body: rangeStmt}, next, nil
}
