package codegen_test

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/funvibe/funxyc/internal/codegen"
	"github.com/funvibe/funxyc/internal/lexer"
	"github.com/funvibe/funxyc/internal/parser"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/semant"
)

func annotate(t *testing.T, input string) *sast.Program {
	t.Helper()
	prog, err := parser.Parse("test.px", lexer.New(input).Tokenize())
	require.NoError(t, err)
	annotated, err := semant.New().Analyze(prog)
	require.NoError(t, err, "input:\n%s", input)
	return annotated
}

func emit(t *testing.T, input string, exceptions bool) string {
	t.Helper()
	e := codegen.NewEmitter(exceptions)
	mod, err := e.Emit(annotate(t, input))
	require.NoError(t, err, "input:\n%s", input)
	return mod.String()
}

func TestModulePrelude(t *testing.T) {
	ll := emit(t, "x = 1\n", true)
	for _, want := range []string{
		"declare i32 @printf(",
		"declare void @exit(",
		"declare double @pow(",
		"define i32 @main()",
		"ret i32 0",
	} {
		require.Contains(t, ll, want)
	}
}

func TestCTypeGlobalsPresent(t *testing.T) {
	ll := emit(t, "x = 1\n", true)
	for _, name := range []string{
		"int_ctype", "float_ctype", "bool_ctype", "char_ctype",
		"list_ctype", "string_ctype", "func_ctype",
	} {
		require.Contains(t, ll, "@"+name+" = ")
	}
}

func TestOperatorThunksPresent(t *testing.T) {
	ll := emit(t, "x = 1\n", true)
	for _, name := range []string{
		"@int_add", "@int_exp", "@float_div", "@bool_not",
		"@char_eq", "@list_idx_parent", "@string_idx", "@func_call",
	} {
		require.Contains(t, ll, name)
	}
}

func TestRawArithmeticStaysUnboxed(t *testing.T) {
	// With fully known int types the emitted main adds raw i64
	// values without any dispatch.
	ll := emit(t, "x = 1\ny = 2\nprint(x + y)\n", true)
	require.Contains(t, ll, "add i64")
}

func TestSpecializedFunctionSignature(t *testing.T) {
	// A single annotated call produces one int->int instance.
	ll := emit(t, "def f(a: int) -> int:\n    return a + 1\nprint(f(5))\n", true)
	require.Contains(t, ll, "f.generic")
	require.Contains(t, ll, "define i64 @f.int(i64")
}

func TestSpecializationNotDuplicated(t *testing.T) {
	// Two call sites with the same key share one IR function.
	ll := emit(t, "def f(x):\n    return x + 1\nprint(f(1))\nprint(f(2))\n", true)
	require.Equal(t, 1, strings.Count(ll, "define i64 @f.int("),
		"same-key call sites must share one specialized definition")
}

func TestSpecializationPerArgumentTuple(t *testing.T) {
	// Int and float instances coexist.
	ll := emit(t, "def f(x):\n    return x + 1\nprint(f(1))\nprint(f(1.5))\n", true)
	require.Contains(t, ll, "define i64 @f.int(")
	require.Contains(t, ll, "define double @f.float(")
}

func TestRuntimeChecksGated(t *testing.T) {
	input := "L = [1, 2, 3]\nx = L[5]\n"
	withChecks := emit(t, input, true)
	require.Contains(t, withChecks, "RuntimeError: list index out of bounds")
	require.Contains(t, withChecks, "call void @exit(i32 1)")

	without := emit(t, input, false)
	require.NotContains(t, without, "RuntimeError")
}

func TestUndefinedCheckOnBoxedVar(t *testing.T) {
	// x is Dyn after the join, so the print reads a boxed slot guarded
	// by the defined-check.
	input := "c = true\nif c:\n    x = 1\nelse:\n    x = \"s\"\nprint(x)\n"
	ll := emit(t, input, true)
	require.Contains(t, ll, "RuntimeError: name 'x' is not defined")
}

func TestDynJoinDispatchesThroughPrintSlot(t *testing.T) {
	// The print of a join-dynified variable goes through the box's
	// CType print slot, i.e. main contains an indirect call rather
	// than a direct @int_print call.
	input := "c = true\nif c:\n    x = 1\nelse:\n    x = \"s\"\nprint(x)\n"
	ll := emit(t, input, true)
	mainBody := ll[strings.Index(ll, "define i32 @main()"):]
	require.NotContains(t, mainBody, "call %CObj* @int_print")
}

func TestReassignmentProducesBothStorageKinds(t *testing.T) {
	// x moves from a raw int slot to a boxed dyn slot; both
	// module-level slots must exist.
	ll := emit(t, "x = 1\nx = \"hi\"\nprint(x)\n", true)
	require.Contains(t, ll, "@g.x = ")
	require.Contains(t, ll, "@g.x.raw = ")
}

func TestGenericCallThroughVariable(t *testing.T) {
	input := "def f(x):\n    return x\ng = f\nprint(g(1))\n"
	ll := emit(t, input, true)
	require.Contains(t, ll, "f.obj")
	require.Contains(t, ll, "f.generic")
}

func TestStringLiteralBuildsCString(t *testing.T) {
	ll := emit(t, "s = \"hi\"\nprint(s)\n", true)
	// Two char CObjs boxed into a list-shaped CString.
	require.Contains(t, ll, "char_ctype")
	require.Contains(t, ll, "string_ctype")
}

func TestWhileLoopBlocks(t *testing.T) {
	input := "x = 0\nwhile x < 3:\n    x = x + 1\nprint(x)\n"
	ll := emit(t, input, true)
	require.Contains(t, ll, "br i1")
	require.Contains(t, ll, "icmp slt i64")
}

func TestForRangeCounts(t *testing.T) {
	ll := emit(t, "for i in range(3):\n    print(i)\n", true)
	require.Contains(t, ll, "icmp slt i64")
}

func TestForListIteratesViaIdxSlot(t *testing.T) {
	ll := emit(t, "xs = [1, 2]\nfor v in xs:\n    print(v)\n", true)
	require.Contains(t, ll, "icmp ult i64")
}

func TestIndexedAssignmentUsesIdxParent(t *testing.T) {
	ll := emit(t, "xs = [1, 2]\nxs[0] = 9\n", true)
	mainBody := ll[strings.Index(ll, "define i32 @main()"):]
	// idx_parent is CType slot 14; main reaches it by that index.
	require.Contains(t, mainBody, ", i32 0, i32 14")
}

func TestPrintAppendsNewline(t *testing.T) {
	ll := emit(t, "print(1)\n", true)
	require.Contains(t, ll, `c"\0A\00"`)
}

func TestCastEmission(t *testing.T) {
	ll := emit(t, "x = float(1)\ny = int(2.5)\ns = str(7)\n", true)
	require.Contains(t, ll, "sitofp")
	require.Contains(t, ll, "fptosi")
	require.Contains(t, ll, "snprintf")
}

func TestSpecializationsReport(t *testing.T) {
	e := codegen.NewEmitter(true)
	prog := annotate(t, "def f(a: int) -> int:\n    return a\nprint(f(1))\n")
	_, err := e.Emit(prog)
	require.NoError(t, err)
	specs := e.Specializations()
	require.Len(t, specs, 2) // generic form + one specialization
	var symbols []string
	for _, s := range specs {
		symbols = append(symbols, s.Symbol)
	}
	require.Contains(t, symbols, "f.generic")
	require.Contains(t, symbols, "f.int")
}
