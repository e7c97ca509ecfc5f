package semant_test

import (
	"strings"
	"testing"

	"github.com/kr/pretty"
	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/lexer"
	"github.com/funvibe/funxyc/internal/parser"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/semant"
	"github.com/funvibe/funxyc/internal/types"
)

func analyze(t *testing.T, input string) (*sast.Program, error) {
	t.Helper()
	prog, err := parser.Parse("test.px", lexer.New(input).Tokenize())
	require.NoError(t, err, "parse error for input:\n%s", input)
	return semant.New().Analyze(prog)
}

func analyzeOK(t *testing.T, input string) *sast.Program {
	t.Helper()
	prog, err := analyze(t, input)
	require.NoError(t, err, "input:\n%s", input)
	return prog
}

func expectError(t *testing.T, input string, code diagnostics.Code) {
	t.Helper()
	_, err := analyze(t, input)
	require.Error(t, err, "expected %s for input:\n%s", code, input)
	de, ok := err.(*diagnostics.DiagnosticError)
	require.True(t, ok, "expected DiagnosticError, got %T: %v", err, err)
	require.Equal(t, code, de.Code, "wrong code for input:\n%s\ngot: %v", input, err)
}

func globalType(t *testing.T, prog *sast.Program, name string) types.Type {
	t.Helper()
	for _, g := range prog.Globals {
		if g.Name == name {
			return g.Typ
		}
	}
	t.Fatalf("global %q not found in %v", name, prog.Globals)
	return nil
}

// firstCall digs the first sast.Call out of the program's non-Func
// statements, walking Print/ExprStmt/Asn wrappers.
func firstCall(t *testing.T, prog *sast.Program) *sast.Call {
	t.Helper()
	var find func(e sast.Expr) *sast.Call
	find = func(e sast.Expr) *sast.Call {
		switch n := e.(type) {
		case *sast.Call:
			return n
		case *sast.Binop:
			if c := find(n.Left); c != nil {
				return c
			}
			return find(n.Right)
		}
		return nil
	}
	for _, stmt := range prog.Statements {
		switch n := stmt.(type) {
		case *sast.Print:
			if c := find(n.Value); c != nil {
				return c
			}
		case *sast.ExprStmt:
			if c := find(n.Value); c != nil {
				return c
			}
		case *sast.Asn:
			if c := find(n.Value); c != nil {
				return c
			}
		}
	}
	t.Fatal("no call found in program")
	return nil
}

func callsOf(prog *sast.Program) []*sast.Call {
	var out []*sast.Call
	var findE func(e sast.Expr)
	findE = func(e sast.Expr) {
		switch n := e.(type) {
		case *sast.Call:
			out = append(out, n)
			for _, a := range n.Args {
				findE(a)
			}
		case *sast.Binop:
			findE(n.Left)
			findE(n.Right)
		case *sast.Unop:
			findE(n.Operand)
		}
	}
	for _, stmt := range prog.Statements {
		switch n := stmt.(type) {
		case *sast.Print:
			findE(n.Value)
		case *sast.ExprStmt:
			findE(n.Value)
		case *sast.Asn:
			findE(n.Value)
		}
	}
	return out
}

func TestSimpleArithmetic(t *testing.T) {
	prog := analyzeOK(t, "x = 1\ny = 2\nprint(x + y)\n")
	require.True(t, types.Equal(globalType(t, prog, "x"), types.Int))
	require.True(t, types.Equal(globalType(t, prog, "y"), types.Int))
}

func TestReassignmentDynifies(t *testing.T) {
	prog := analyzeOK(t, "x = 1\nx = \"hi\"\nprint(x)\n")
	require.True(t, types.Equal(globalType(t, prog, "x"), types.Dyn))

	// The second assignment must carry a raw->Dyn Transform for x
	// (int literal then string literal).
	found := false
	var walk func(s sast.Stmt)
	walk = func(s sast.Stmt) {
		switch n := s.(type) {
		case *sast.Transform:
			if n.Name == "x" && n.From.Kind() == types.KInt && n.To.Kind() == types.KDyn {
				found = true
			}
		case *sast.Block:
			for _, st := range n.Statements {
				walk(st)
			}
		}
	}
	for _, s := range prog.Statements {
		walk(s)
	}
	require.True(t, found, "expected Transform(x, int, dyn) in SAST:\n%s", pretty.Sprint(prog.Statements))
}

func TestSpecializedCall(t *testing.T) {
	prog := analyzeOK(t, "def f(a: int) -> int:\n    return a + 1\nprint(f(5))\n")
	call := firstCall(t, prog)
	spec, ok := call.Info.(*sast.Specialization)
	require.True(t, ok, "expected Specialization, got %T", call.Info)
	require.NotNil(t, spec.Record)
	require.True(t, types.Equal(spec.Record.ReturnType, types.Int))
	require.Len(t, spec.Record.ArgTypes, 1)
	require.True(t, types.Equal(spec.Record.ArgTypes[0], types.Int))
	require.True(t, types.Equal(call.Type(), types.Int))
}

func TestSpecializationSharing(t *testing.T) {
	// Two call sites with identical argument types share one record,
	// referentially.
	prog := analyzeOK(t, "def f(x):\n    return x + 1\nprint(f(1))\nprint(f(2))\n")
	calls := callsOf(prog)
	require.Len(t, calls, 2)
	r1 := calls[0].Info.(*sast.Specialization).Record
	r2 := calls[1].Info.(*sast.Specialization).Record
	require.NotNil(t, r1)
	require.True(t, r1 == r2, "identical keys must share the same *FuncRecord")
}

func TestSpecializationPerTypeTuple(t *testing.T) {
	// f(1) and f(1.5) produce distinct specializations with int and
	// float return types.
	prog := analyzeOK(t, "def f(x):\n    return x + 1\nprint(f(1))\nprint(f(1.5))\n")
	calls := callsOf(prog)
	require.Len(t, calls, 2)
	r1 := calls[0].Info.(*sast.Specialization).Record
	r2 := calls[1].Info.(*sast.Specialization).Record
	require.False(t, r1 == r2)
	require.True(t, types.Equal(r1.ReturnType, types.Int))
	require.True(t, types.Equal(r2.ReturnType, types.Float))
}

func TestRecursionGuard(t *testing.T) {
	input := "def fact(n: int) -> int:\n" +
		"    if n < 1:\n" +
		"        return 1\n" +
		"    return n * fact(n - 1)\n" +
		"print(fact(5))\n"
	prog := analyzeOK(t, input)
	call := firstCall(t, prog)
	spec := call.Info.(*sast.Specialization)
	require.NotNil(t, spec.Record)
	// The declared return type survives even though the recursive
	// occurrence was broken to Dyn.
	require.True(t, types.Equal(spec.Record.ReturnType, types.Int))
}

func TestDynamicCalleeGetsStage(t *testing.T) {
	// Calling through a variable holding a function is not statically
	// recognized: the generic path with a Stage takes over.
	prog := analyzeOK(t, "def f(x):\n    return x\ng = 1\nh = f\nprint(h(2))\n")
	var stageCall *sast.Call
	for _, c := range callsOf(prog) {
		if _, ok := c.Info.(*sast.Stage); ok {
			stageCall = c
		}
	}
	require.NotNil(t, stageCall, "expected a Stage-dispatched call")
	require.True(t, types.Equal(stageCall.Type(), types.Dyn))
}

func TestIfJoinDynifies(t *testing.T) {
	input := "c = true\n" +
		"if c:\n" +
		"    x = 1\n" +
		"else:\n" +
		"    x = \"s\"\n" +
		"print(x)\n"
	prog := analyzeOK(t, input)
	require.True(t, types.Equal(globalType(t, prog, "x"), types.Dyn),
		"after a conflicting join x must be Dyn")
}

func TestIfJoinAgreeingBranchesKeepType(t *testing.T) {
	input := "c = true\n" +
		"x = 0\n" +
		"if c:\n" +
		"    x = 1\n" +
		"else:\n" +
		"    x = 2\n" +
		"print(x)\n"
	prog := analyzeOK(t, input)
	require.True(t, types.Equal(globalType(t, prog, "x"), types.Int))
}

func TestEmptyListIsDyn(t *testing.T) {
	prog := analyzeOK(t, "e = []\n")
	require.True(t, types.Equal(globalType(t, prog, "e"), types.Dyn),
		"empty list literal has inferred type Dyn")
}

func TestHomogeneousListType(t *testing.T) {
	prog := analyzeOK(t, "xs = [1, 2, 3]\n")
	require.True(t, types.Equal(globalType(t, prog, "xs"), types.Arr{Elem: types.Int}))
}

func TestMixedListType(t *testing.T) {
	prog := analyzeOK(t, "xs = [1, \"a\"]\n")
	require.True(t, types.Equal(globalType(t, prog, "xs"), types.Arr{Elem: types.Dyn}))
}

func TestStringIndexIsString(t *testing.T) {
	prog := analyzeOK(t, "s = \"abc\"\nc = s[0]\n")
	require.True(t, types.Equal(globalType(t, prog, "c"), types.String))
}

func TestLoopDynifiesChangedVar(t *testing.T) {
	// x enters the loop as int and is dynified inside; the loop must
	// be wrapped in a Stage with entry transforms.
	input := "x = 1\n" +
		"b = true\n" +
		"while b:\n" +
		"    x = \"s\"\n" +
		"print(x)\n"
	prog := analyzeOK(t, input)
	require.True(t, types.Equal(globalType(t, prog, "x"), types.Dyn))
	foundStage := false
	for _, s := range prog.Statements {
		if st, ok := s.(*sast.StageStmt); ok {
			foundStage = true
			require.NotEmpty(t, st.Entry, "loop Stage must carry entry transforms")
		}
	}
	require.True(t, foundStage, "expected a StageStmt wrapping the while loop")
}

func TestReturnTypeMismatch(t *testing.T) {
	expectError(t, "def f() -> int:\n    return \"s\"\nprint(f())\n", diagnostics.STypeError)
}

func TestMissingReturn(t *testing.T) {
	expectError(t, "def f() -> int:\n    pass\nprint(f())\n", diagnostics.STypeError)
}

func TestArityMismatch(t *testing.T) {
	expectError(t, "def f(a: int) -> int:\n    return a\nprint(f(1, 2))\n", diagnostics.STypeError)
}

func TestDuplicateFormals(t *testing.T) {
	expectError(t, "def f(a, a):\n    return a\nprint(f(1, 2))\n", diagnostics.SSyntaxError)
}

func TestStaticErrors(t *testing.T) {
	cases := []struct {
		name  string
		input string
		code  diagnostics.Code
	}{
		{"undefined_name", "print(y)\n", diagnostics.SNameError},
		{"binop_mismatch", "x = 1 + \"s\"\n", diagnostics.STypeError},
		{"annotated_reassign", "x: int = 1\nx = \"hi\"\n", diagnostics.STypeError},
		{"annotation_mismatch", "x: int = \"hi\"\n", diagnostics.STypeError},
		{"self_cast", "x = int(1)\n", diagnostics.STypeError},
		{"bad_cast", "x = int([1])\n", diagnostics.STypeError},
		{"string_ordering_mixed", "x = \"a\" < 1\n", diagnostics.STypeError},
		{"if_cond_not_bool", "if 1:\n    pass\n", diagnostics.STypeError},
		{"while_cond_not_bool", "while \"s\":\n    pass\n", diagnostics.STypeError},
		{"for_over_int", "for v in 5:\n    pass\n", diagnostics.STypeError},
		{"range_over_string", "for i in range(\"s\"):\n    pass\n", diagnostics.STypeError},
		{"break_outside_loop", "break\n", diagnostics.SSyntaxError},
		{"continue_outside_loop", "continue\n", diagnostics.SSyntaxError},
		{"neg_string", "x = -\"s\"\n", diagnostics.STypeError},
		{"index_non_list", "x = 1\ny = x[0]\n", diagnostics.STypeError},
		{"non_int_index", "xs = [1]\ny = xs[\"a\"]\n", diagnostics.STypeError},
		{"class_decl", "class P:\n    x: int\n", diagnostics.SNotImplementedError},
		{"annotated_in_branch", "c = true\nif c:\n    x: int = 1\n", diagnostics.STypeError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			expectError(t, tc.input, tc.code)
		})
	}
}

func TestValidCoercions(t *testing.T) {
	inputs := []string{
		"x = 1 + true\n",           // Int x Bool -> Int
		"x = true + false\n",       // Bool arithmetic
		"s = \"a\" + \"b\"\n",      // string concat
		"s = \"ab\" * 3\n",         // string repeat
		"xs = [1] + [2]\n",         // array concat
		"xs = [1] * 2\n",           // array repeat
		"b = \"a\" < \"b\"\n",      // string ordering
		"f = float(1)\n",           // numeric cast
		"s = str(42)\n",            // to-string cast
		"b = 1 == 2\n",             // comparison
		"x = 7 / 2\n",              // int division
		"x = 2 ** 10\n",            // exponent
	}
	for _, input := range inputs {
		analyzeOK(t, input)
	}
}

func TestIdempotentReanalysis(t *testing.T) {
	// Analyzing the same source twice yields structurally identical
	// global typing (re-analysis must be stable).
	input := "x = 1\nif x == 1:\n    y = 1\nelse:\n    y = \"s\"\nprint(y)\n"
	p1 := analyzeOK(t, input)
	p2 := analyzeOK(t, input)
	require.Equal(t, len(p1.Globals), len(p2.Globals))
	for i := range p1.Globals {
		require.Equal(t, p1.Globals[i].Name, p2.Globals[i].Name)
		require.True(t, types.Equal(p1.Globals[i].Typ, p2.Globals[i].Typ),
			"global %s diverged: %s", p1.Globals[i].Name, strings.Join(pretty.Diff(p1.Globals[i], p2.Globals[i]), "; "))
	}
}

func TestForLoopVarElementType(t *testing.T) {
	prog := analyzeOK(t, "xs = [1, 2]\nfor v in xs:\n    print(v)\n")
	// The loop variable takes the element type; iterating an int array
	// leaves no residue in the global environment.
	var loop *sast.For
	for _, st := range prog.Statements {
		if ss, ok := st.(*sast.StageStmt); ok {
			st = ss.Body
		}
		if f, ok := st.(*sast.For); ok {
			loop = f
		}
	}
	require.NotNil(t, loop)
	require.True(t, types.Equal(types.Int, loop.VarTyp), "loop variable typed %s", loop.VarTyp)
	for _, g := range prog.Globals {
		require.NotEqual(t, "v", g.Name, "loop variable must not leak into globals")
	}
}
