package semant

import (
	"strconv"

	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// analyzeExpr type-checks e and returns its SAST form. State is not
// threaded back out: expressions alone never change the environment
// (only Asn statements do); the sole exception, function-call
// specialization, mutates the shared CallStackMemo in place rather
// than the environment.
func analyzeExpr(s State, e ast.Expression) (sast.Expr, error) {
	switch n := e.(type) {
	case *ast.Lit:
		return analyzeLit(n)
	case *ast.Var:
		return analyzeVar(s, n)
	case *ast.Binop:
		return analyzeBinop(s, n)
	case *ast.Unop:
		return analyzeUnop(s, n)
	case *ast.Call:
		return analyzeCall(s, n)
	case *ast.List:
		return analyzeList(s, n)
	case *ast.ListAccess:
		return analyzeListAccess(s, n)
	case *ast.Cast:
		return analyzeCast(s, n)
	case *ast.Field:
		return analyzeField(s, n)
	case *ast.Method:
		return analyzeMethod(s, n)
	}
	return nil, diagnostics.New(diagnostics.SNotImplementedError, e.GetToken(), "unsupported expression node %T", e)
}

func analyzeLit(n *ast.Lit) (sast.Expr, error) {
	var t types.Type
	switch n.Kind {
	case token.INT:
		t = types.Int
	case token.FLOAT:
		t = types.Float
	case token.TRUE, token.FALSE:
		t = types.Bool
	case token.STRING:
		t = types.String
	case token.NULL:
		t = types.Null
	default:
		return nil, diagnostics.New(diagnostics.SSyntaxError, n.Token, "unrecognized literal kind")
	}
	return &sast.Lit{Token: n.Token, Kind: n.Kind, Value: n.Value, Typ: t}, nil
}

func analyzeVar(s State, n *ast.Var) (sast.Expr, error) {
	b, ok := s.lookup(n.Name)
	if !ok {
		if s.NoEval {
			return &sast.Var{Token: n.Token, Name: n.Name, Typ: types.Dyn}, nil
		}
		return nil, diagnostics.New(diagnostics.SNameError, n.Token, "name '%s' is not defined", n.Name)
	}
	return &sast.Var{Token: n.Token, Name: n.Name, Typ: b.Inferred}, nil
}

func analyzeBinop(s State, n *ast.Binop) (sast.Expr, error) {
	left, err := analyzeExpr(s, n.Left)
	if err != nil {
		return nil, err
	}
	right, err := analyzeExpr(s, n.Right)
	if err != nil {
		return nil, err
	}
	t, derr := inferBinop(n.Op, left.Type(), right.Type(), n.Token)
	if derr != nil {
		return nil, derr
	}
	return &sast.Binop{Token: n.Token, Op: n.Op, Left: left, Right: right, Typ: t}, nil
}

func analyzeUnop(s State, n *ast.Unop) (sast.Expr, error) {
	operand, err := analyzeExpr(s, n.Operand)
	if err != nil {
		return nil, err
	}
	t, derr := inferUnop(n.Op, operand.Type(), n.Token)
	if derr != nil {
		return nil, derr
	}
	return &sast.Unop{Token: n.Token, Op: n.Op, Operand: operand, Typ: t}, nil
}

func analyzeList(s State, n *ast.List) (sast.Expr, error) {
	elems := make([]sast.Expr, len(n.Elements))
	elemTypes := make([]types.Type, len(n.Elements))
	for i, el := range n.Elements {
		se, err := analyzeExpr(s, el)
		if err != nil {
			return nil, err
		}
		elems[i] = se
		elemTypes[i] = se.Type()
	}
	return &sast.List{Token: n.Token, Elements: elems, Typ: inferListLiteral(elemTypes)}, nil
}

func analyzeListAccess(s State, n *ast.ListAccess) (sast.Expr, error) {
	list, err := analyzeExpr(s, n.List)
	if err != nil {
		return nil, err
	}
	idx, err := analyzeExpr(s, n.Index)
	if err != nil {
		return nil, err
	}
	t, derr := inferListAccess(list.Type(), idx.Type(), n.Token)
	if derr != nil {
		return nil, derr
	}
	return &sast.ListAccess{Token: n.Token, List: list, Index: idx, Typ: t}, nil
}

func analyzeCast(s State, n *ast.Cast) (sast.Expr, error) {
	v, err := analyzeExpr(s, n.Value)
	if err != nil {
		return nil, err
	}
	t, derr := inferCast(n.Target, v.Type(), n.Token)
	if derr != nil {
		return nil, derr
	}
	return &sast.Cast{Token: n.Token, Target: n.Target, Value: v, Typ: t}, nil
}

// Field and method access belong to the class machinery the language
// leaves out: the parser builds the nodes, the analyzer refuses them.
func analyzeField(s State, n *ast.Field) (sast.Expr, error) {
	return nil, diagnostics.New(diagnostics.SNotImplementedError, n.Token, "field access is not supported")
}

func analyzeMethod(s State, n *ast.Method) (sast.Expr, error) {
	return nil, diagnostics.New(diagnostics.SNotImplementedError, n.Token, "method calls are not supported")
}

// ParseIntLiteral / ParseFloatLiteral are exposed for internal/codegen,
// which needs the same literal text parsed back into Go values when
// building CObj constants.
func ParseIntLiteral(s string) (int64, error)   { return strconv.ParseInt(s, 10, 64) }
func ParseFloatLiteral(s string) (float64, error) { return strconv.ParseFloat(s, 64) }
