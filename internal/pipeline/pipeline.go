// Package pipeline chains the compiler's stages: lex -> parse ->
// semant -> codegen. Each stage ships its own Processor (in its own
// package) and communicates through the shared PipelineContext.
package pipeline

import (
	"github.com/llir/llvm/ir"

	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/config"
	"github.com/funvibe/funxyc/internal/sast"
	"github.com/funvibe/funxyc/internal/token"
)

// PipelineContext carries one source file through every stage.
type PipelineContext struct {
	FilePath string
	Source   string
	Config   *config.Config

	TokenStream []token.Token
	AstRoot     *ast.Program
	Annotated   *sast.Program
	Module      *ir.Module

	// Specializations lists the function instances the emitter defined
	// (source name, argument-type tuple, IR symbol), for the CLI's
	// on-disk specialization cache.
	Specializations []SpecRecord

	Errors []error
}

// SpecRecord mirrors codegen's per-instance record without importing
// it (pipeline sits below every stage).
type SpecRecord struct {
	Func     string
	ArgTypes string
	Symbol   string
}

// NewContext builds a context for one source file under cfg.
func NewContext(path, source string, cfg *config.Config) *PipelineContext {
	return &PipelineContext{FilePath: path, Source: source, Config: cfg}
}

// Failed reports whether any stage recorded an error.
func (ctx *PipelineContext) Failed() bool { return len(ctx.Errors) > 0 }

// FirstError returns the error that terminated the pipeline, or nil.
func (ctx *PipelineContext) FirstError() error {
	if len(ctx.Errors) == 0 {
		return nil
	}
	return ctx.Errors[0]
}

// Processor is one pipeline stage.
type Processor interface {
	Process(ctx *PipelineContext) *PipelineContext
}

// Pipeline represents a sequence of processing stages.
type Pipeline struct {
	processors []Processor
}

func New(processors ...Processor) *Pipeline {
	return &Pipeline{processors: processors}
}

// Run executes the pipeline. Stages self-guard on ctx.Failed(), so the
// first error effectively terminates processing: there is no error
// recovery.
func (p *Pipeline) Run(initialCtx *PipelineContext) *PipelineContext {
	ctx := initialCtx
	for _, processor := range p.processors {
		ctx = processor.Process(ctx)
	}
	return ctx
}
