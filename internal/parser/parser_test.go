package parser_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/lexer"
	"github.com/funvibe/funxyc/internal/parser"
	"github.com/funvibe/funxyc/internal/types"
)

func parse(t *testing.T, input string) *ast.Program {
	t.Helper()
	prog, err := parser.Parse("test.px", lexer.New(input).Tokenize())
	require.NoError(t, err, "input: %s", input)
	return prog
}

func parseErr(t *testing.T, input string) error {
	t.Helper()
	_, err := parser.Parse("test.px", lexer.New(input).Tokenize())
	require.Error(t, err, "input: %s", input)
	return err
}

func TestAssignment(t *testing.T) {
	prog := parse(t, "x = 5\n")
	require.Len(t, prog.Statements, 1)
	asn, ok := prog.Statements[0].(*ast.Asn)
	require.True(t, ok, "expected *ast.Asn, got %T", prog.Statements[0])
	require.Len(t, asn.Targets, 1)
	v := asn.Targets[0].(*ast.Var)
	require.Equal(t, "x", v.Name)
	lit := asn.Value.(*ast.Lit)
	require.Equal(t, "5", lit.Value)
}

func TestChainedAssignment(t *testing.T) {
	prog := parse(t, "x = y = 2\n")
	asn := prog.Statements[0].(*ast.Asn)
	require.Len(t, asn.Targets, 2)
	require.Equal(t, "x", asn.Targets[0].(*ast.Var).Name)
	require.Equal(t, "y", asn.Targets[1].(*ast.Var).Name)
}

func TestAnnotatedAssignment(t *testing.T) {
	prog := parse(t, "x: int = 1\n")
	asn := prog.Statements[0].(*ast.Asn)
	require.True(t, types.Equal(asn.Annotation, types.Int))
}

func TestIndexedAssignment(t *testing.T) {
	prog := parse(t, "xs[0] = 9\n")
	asn := prog.Statements[0].(*ast.Asn)
	_, ok := asn.Targets[0].(*ast.ListAccess)
	require.True(t, ok)
}

func TestPrecedence(t *testing.T) {
	prog := parse(t, "r = 1 + 2 * 3\n")
	asn := prog.Statements[0].(*ast.Asn)
	add := asn.Value.(*ast.Binop)
	require.Equal(t, ast.Add, add.Op)
	mul := add.Right.(*ast.Binop)
	require.Equal(t, ast.Mul, mul.Op)
}

func TestPowerRightAssociative(t *testing.T) {
	prog := parse(t, "r = 2 ** 3 ** 2\n")
	asn := prog.Statements[0].(*ast.Asn)
	outer := asn.Value.(*ast.Binop)
	require.Equal(t, ast.Exp, outer.Op)
	inner := outer.Right.(*ast.Binop)
	require.Equal(t, ast.Exp, inner.Op)
}

func TestComparisonAndLogic(t *testing.T) {
	prog := parse(t, "r = a < b and c >= d\n")
	asn := prog.Statements[0].(*ast.Asn)
	land := asn.Value.(*ast.Binop)
	require.Equal(t, ast.LAnd, land.Op)
	require.Equal(t, ast.Lt, land.Left.(*ast.Binop).Op)
	require.Equal(t, ast.Ge, land.Right.(*ast.Binop).Op)
}

func TestUnary(t *testing.T) {
	prog := parse(t, "r = -x + not y\n")
	asn := prog.Statements[0].(*ast.Asn)
	add := asn.Value.(*ast.Binop)
	require.Equal(t, ast.Neg, add.Left.(*ast.Unop).Op)
	require.Equal(t, ast.Not, add.Right.(*ast.Unop).Op)
}

func TestIfElifElse(t *testing.T) {
	input := "if a:\n    x = 1\nelif b:\n    x = 2\nelse:\n    x = 3\n"
	prog := parse(t, input)
	ifStmt := prog.Statements[0].(*ast.If)
	require.Len(t, ifStmt.Then.Statements, 1)
	require.NotNil(t, ifStmt.Else)
	nested := ifStmt.Else.Statements[0].(*ast.If)
	require.NotNil(t, nested.Else)
}

func TestWhile(t *testing.T) {
	prog := parse(t, "while x < 10:\n    x = x + 1\n")
	w := prog.Statements[0].(*ast.While)
	require.Len(t, w.Body.Statements, 1)
}

func TestForList(t *testing.T) {
	prog := parse(t, "for v in xs:\n    print(v)\n")
	f := prog.Statements[0].(*ast.For)
	require.Equal(t, "v", f.Var)
	_, ok := f.Iter.(*ast.Var)
	require.True(t, ok)
}

func TestForRange(t *testing.T) {
	prog := parse(t, "for i in range(10):\n    print(i)\n")
	r, ok := prog.Statements[0].(*ast.Range)
	require.True(t, ok, "for-in-range should parse to Range, got %T", prog.Statements[0])
	require.Equal(t, "i", r.Var)
}

func TestDef(t *testing.T) {
	input := "def add(a: int, b: int) -> int:\n    return a + b\n"
	prog := parse(t, input)
	fn := prog.Statements[0].(*ast.Func)
	require.Equal(t, "add", fn.Name)
	require.Len(t, fn.Formals, 2)
	require.True(t, types.Equal(fn.Formals[0].Type, types.Int))
	require.True(t, types.Equal(fn.ReturnType, types.Int))
	_, ok := fn.Body.Statements[0].(*ast.Return)
	require.True(t, ok)
}

func TestDefUnannotated(t *testing.T) {
	prog := parse(t, "def f(x):\n    return x\n")
	fn := prog.Statements[0].(*ast.Func)
	require.True(t, types.Equal(fn.Formals[0].Type, types.Dyn))
	require.True(t, types.Equal(fn.ReturnType, types.Dyn))
}

func TestCallAndIndexPostfix(t *testing.T) {
	prog := parse(t, "r = f(1, 2)[0]\n")
	asn := prog.Statements[0].(*ast.Asn)
	la := asn.Value.(*ast.ListAccess)
	call := la.List.(*ast.Call)
	require.Len(t, call.Args, 2)
}

func TestCast(t *testing.T) {
	prog := parse(t, "r = int(x) + float(y)\n")
	asn := prog.Statements[0].(*ast.Asn)
	add := asn.Value.(*ast.Binop)
	require.Equal(t, ast.CastInt, add.Left.(*ast.Cast).Target)
	require.Equal(t, ast.CastFloat, add.Right.(*ast.Cast).Target)
}

func TestListLiteral(t *testing.T) {
	prog := parse(t, "xs = [1, 2, 3]\n")
	asn := prog.Statements[0].(*ast.Asn)
	list := asn.Value.(*ast.List)
	require.Len(t, list.Elements, 3)
}

func TestArrayTypeAnnotation(t *testing.T) {
	prog := parse(t, "xs: [int] = [1]\n")
	asn := prog.Statements[0].(*ast.Asn)
	require.True(t, types.Equal(asn.Annotation, types.Arr{Elem: types.Int}))
}

func TestPrintStatement(t *testing.T) {
	prog := parse(t, "print(1 + 2)\n")
	_, ok := prog.Statements[0].(*ast.Print)
	require.True(t, ok)
}

func TestImport(t *testing.T) {
	prog := parse(t, "import \"lib/math\" as m\n")
	imp := prog.Statements[0].(*ast.Import)
	require.Equal(t, "lib/math", imp.Path)
	require.Equal(t, "m", imp.Alias)
}

func TestSimpleStatements(t *testing.T) {
	prog := parse(t, "pass\nbreak\ncontinue\n")
	_, ok := prog.Statements[0].(*ast.Nop)
	require.True(t, ok)
	_, ok = prog.Statements[1].(*ast.Break)
	require.True(t, ok)
	_, ok = prog.Statements[2].(*ast.Continue)
	require.True(t, ok)
}

func TestFieldAndMethod(t *testing.T) {
	prog := parse(t, "r = o.x + o.f(1)\n")
	asn := prog.Statements[0].(*ast.Asn)
	add := asn.Value.(*ast.Binop)
	require.Equal(t, "x", add.Left.(*ast.Field).Name)
	m := add.Right.(*ast.Method)
	require.Equal(t, "f", m.Name)
	require.Len(t, m.Args, 1)
}

func TestSyntaxErrors(t *testing.T) {
	cases := []string{
		"def f(:\n    pass\n",
		"if x\n    pass\n",
		"x: int\n",
		"1 = x\n",
		"r = (1 + 2\n",
		"x = [1, 2\n",
	}
	for _, input := range cases {
		parseErr(t, input)
	}
}
