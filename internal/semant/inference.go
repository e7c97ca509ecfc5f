package semant

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// inferBinop applies the binary-operator typing rules. tok positions
// any resulting STypeError.
func inferBinop(op ast.BinOp, l, r types.Type, tok token.Token) (types.Type, *diagnostics.DiagnosticError) {
	if l.Kind() == types.KDyn || r.Kind() == types.KDyn {
		return types.Dyn, nil
	}

	switch op {
	case ast.Add, ast.Sub, ast.Mul, ast.Exp:
		if types.Equal(l, r) {
			switch l.Kind() {
			case types.KInt, types.KFloat, types.KBool:
				return l, nil
			case types.KString:
				if op == ast.Add {
					return types.String, nil
				}
			}
			if types.IsArr(l) && op == ast.Add {
				return l, nil
			}
		}
		// Int x Bool (either order) in arithmetic -> Int.
		if (l.Kind() == types.KInt && r.Kind() == types.KBool) || (l.Kind() == types.KBool && r.Kind() == types.KInt) {
			return types.Int, nil
		}
		if op == ast.Mul {
			if types.IsArr(l) && r.Kind() == types.KInt {
				return l, nil
			}
			if types.IsArr(r) && l.Kind() == types.KInt {
				return r, nil
			}
		}
		return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for binary %s: %s and %s", op, l, r)

	case ast.Div:
		if types.Equal(l, r) {
			if l.Kind() == types.KInt {
				return types.Int, nil
			}
			if l.Kind() == types.KFloat {
				return types.Float, nil
			}
		}
		if (l.Kind() == types.KInt && r.Kind() == types.KBool) || (l.Kind() == types.KBool && r.Kind() == types.KInt) {
			return types.Int, nil
		}
		return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for binary %s: %s and %s", op, l, r)

	case ast.Eq, ast.Neq:
		if types.Equal(l, r) {
			return types.Bool, nil
		}
		return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for binary %s: %s and %s", op, l, r)

	case ast.Lt, ast.Le, ast.Gt, ast.Ge:
		if l.Kind() == types.KString || r.Kind() == types.KString {
			if l.Kind() == types.KString && r.Kind() == types.KString {
				return types.Bool, nil
			}
			return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for binary %s: %s and %s", op, l, r)
		}
		if types.Equal(l, r) {
			return types.Bool, nil
		}
		return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for binary %s: %s and %s", op, l, r)

	case ast.LAnd, ast.LOr:
		if types.Equal(l, r) {
			return l, nil
		}
		return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for binary %s: %s and %s", op, l, r)
	}
	return nil, diagnostics.New(diagnostics.STypeError, tok, "unknown binary operator")
}

// inferUnop applies the unary-operator typing rules: Neg preserves
// numeric/bool types, Not preserves its operand type, Dyn passes
// through.
func inferUnop(op ast.UnOp, operand types.Type, tok token.Token) (types.Type, *diagnostics.DiagnosticError) {
	if operand.Kind() == types.KDyn {
		return types.Dyn, nil
	}
	switch op {
	case ast.Neg:
		if operand.Kind() == types.KInt || operand.Kind() == types.KFloat || operand.Kind() == types.KBool {
			return operand, nil
		}
	case ast.Not:
		return operand, nil
	}
	return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type for unary %s: %s", op, operand)
}

// inferListAccess types an indexing expression: the receiver must be
// Dyn or array-shaped, the index Int or Dyn; the result is String for
// a String receiver, else Dyn.
func inferListAccess(listType, indexType types.Type, tok token.Token) (types.Type, *diagnostics.DiagnosticError) {
	if listType.Kind() != types.KDyn && !types.IsArr(listType) {
		return nil, diagnostics.New(diagnostics.STypeError, tok, "unsupported operand type(s) for list access: %s", listType)
	}
	if indexType.Kind() != types.KInt && indexType.Kind() != types.KDyn {
		return nil, diagnostics.New(diagnostics.STypeError, tok, "list index must be int or dyn, got %s", indexType)
	}
	if listType.Kind() == types.KString {
		return types.String, nil
	}
	return types.Dyn, nil
}

// inferCast types an explicit conversion: permitted only when source
// and target differ and at least one side is Dyn, the pair is numeric,
// or the target is String. The target may never be
// Dyn/Arr/FuncType/Null/Object (the grammar only offers the four
// scalar cast forms).
func inferCast(target ast.CastKind, source types.Type, tok token.Token) (types.Type, *diagnostics.DiagnosticError) {
	var targetType types.Type
	switch target {
	case ast.CastInt:
		targetType = types.Int
	case ast.CastFloat:
		targetType = types.Float
	case ast.CastBool:
		targetType = types.Bool
	case ast.CastString:
		targetType = types.String
	}
	if types.Equal(source, targetType) {
		return nil, diagnostics.New(diagnostics.STypeError, tok, "cannot cast %s to itself", source)
	}
	numericPair := types.IsNumeric(source) && types.IsNumeric(targetType)
	if source.Kind() == types.KDyn || targetType.Kind() == types.KString || numericPair {
		return targetType, nil
	}
	return nil, diagnostics.New(diagnostics.STypeError, tok, "invalid cast from %s to %s", source, targetType)
}

// inferListLiteral types a list literal: the common element type if
// all elements match, else an array of Dyn.
func inferListLiteral(elemTypes []types.Type) types.Type {
	if len(elemTypes) == 0 {
		// An empty literal carries no element information at all and
		// stays Dyn (not Arr), even though that can dynify more than
		// strictly necessary at merge points.
		return types.Dyn
	}
	first := elemTypes[0]
	for _, t := range elemTypes[1:] {
		if !types.Equal(t, first) {
			return types.Arr{Elem: types.Dyn}
		}
	}
	return types.Arr{Elem: first}
}
