package semant

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/types"
)

// Analyzer drives the semantic pass. It holds no per-run state itself;
// the State record threaded through recursion carries all of that.
type Analyzer struct{}

// New returns a ready-to-use Analyzer.
func New() *Analyzer { return &Analyzer{} }

// Analyze runs the full semantic pass over prog, producing the
// annotated statement list and the detected globals. Analysis is
// fail-fast: the first diagnostic aborts the whole pass.
func (a *Analyzer) Analyze(prog *ast.Program) (*sast.Program, error) {
	s := NewState()

	// Pass A: pre-register every top-level Func's signature so that
	// any other top-level statement (including another function's
	// body, analyzed in Pass C below) can call it regardless of
	// textual order.
	var funcs []*ast.Func
	funcIndex := make(map[string]int)
	for _, stmt := range prog.Statements {
		if fn, ok := stmt.(*ast.Func); ok {
			s.Globals[fn.Name] = Binding{
				Explicit:      funcTypeOf(fn),
				Inferred:      funcTypeOf(fn),
				HasAnnotation: true,
				AssocData:     fn,
			}
			if i, dup := funcIndex[fn.Name]; dup {
				funcs[i] = fn // redefinition: the later def wins
				continue
			}
			funcIndex[fn.Name] = len(funcs)
			funcs = append(funcs, fn)
		}
	}

	// Pass B: walk non-Func top-level statements in source order,
	// threading State so later statements see earlier ones' effects.
	var outStmts []sast.Stmt
	cur := s
	for _, stmt := range prog.Statements {
		if _, ok := stmt.(*ast.Func); ok {
			continue // deferred to Pass C
		}
		out, next, err := analyzeStmt(cur, stmt)
		if err != nil {
			return nil, err
		}
		outStmts = append(outStmts, out)
		cur = next
	}

	// Pass C: analyze function bodies against the fully-settled global
	// environment, in deferred-resolution (NoEval) mode: a name still
	// unresolvable here is bound dynamically and checked at runtime
	// rather than rejected, since only execution order decides whether
	// it exists by then.
	cur.NoEval = true
	var funcStmts []sast.Stmt
	for _, fn := range funcs {
		record, err := analyzeFuncDecl(cur, fn)
		if err != nil {
			return nil, err
		}
		funcStmts = append(funcStmts, &sast.Func{Token: fn.Token, Record: record})
	}
	// Functions are emitted before the statements that call them, so
	// codegen never needs a forward declaration pass of its own.
	allStmts := append(funcStmts, outStmts...)

	globals := make([]sast.Local, 0, len(cur.Globals))
	for _, n := range cur.Globals.Names() {
		globals = append(globals, sast.Local{Name: n, Typ: cur.Globals[n].Inferred})
	}

	return &sast.Program{File: prog.File, Statements: allStmts, Globals: globals}, nil
}

func funcTypeOf(fn *ast.Func) types.Type {
	params := make([]types.Type, len(fn.Formals))
	for i, p := range fn.Formals {
		params[i] = p.Type
	}
	ret := fn.ReturnType
	if ret == nil {
		ret = types.Dyn
	}
	return types.FuncType{Params: params, Return: ret}
}

