package pipeline_test

import (
	"strings"
	"testing"

	"github.com/funvibe/funxyc/internal/codegen"
	"github.com/funvibe/funxyc/internal/config"
	"github.com/funvibe/funxyc/internal/lexer"
	"github.com/funvibe/funxyc/internal/parser"
	"github.com/funvibe/funxyc/internal/pipeline"
	"github.com/funvibe/funxyc/internal/semant"
)

func fullPipeline() *pipeline.Pipeline {
	return pipeline.New(
		&lexer.Processor{},
		&parser.Processor{},
		&semant.Processor{},
		&codegen.Processor{},
	)
}

func TestEndToEnd(t *testing.T) {
	src := "def f(a: int) -> int:\n    return a + 1\nprint(f(5))\n"
	ctx := fullPipeline().Run(pipeline.NewContext("main.px", src, config.Default()))
	if ctx.Failed() {
		t.Fatalf("pipeline failed: %v", ctx.FirstError())
	}
	if ctx.Module == nil {
		t.Fatal("no module emitted")
	}
	ll := ctx.Module.String()
	if !strings.Contains(ll, "define i32 @main()") {
		t.Error("emitted module has no main")
	}
	if len(ctx.Specializations) == 0 {
		t.Error("no specializations reported")
	}
}

func TestFirstErrorStopsLaterStages(t *testing.T) {
	src := "x = 1 +\n"
	ctx := fullPipeline().Run(pipeline.NewContext("main.px", src, config.Default()))
	if !ctx.Failed() {
		t.Fatal("expected a failure")
	}
	if ctx.Module != nil {
		t.Error("codegen must not run after an earlier failure")
	}
	if len(ctx.Errors) != 1 {
		t.Errorf("expected exactly one error (fail-fast), got %d: %v", len(ctx.Errors), ctx.Errors)
	}
}

func TestSemanticErrorSurfaces(t *testing.T) {
	src := "x = 1 + \"s\"\n"
	ctx := fullPipeline().Run(pipeline.NewContext("main.px", src, config.Default()))
	err := ctx.FirstError()
	if err == nil {
		t.Fatal("expected a semantic error")
	}
	if !strings.Contains(err.Error(), "STypeError") {
		t.Errorf("expected an STypeError, got %v", err)
	}
}
