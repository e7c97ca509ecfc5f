package parser

import (
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/pipeline"
	"github.com/funvibe/funxyc/internal/token"
)

type Processor struct{}

func (pp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	if ctx.TokenStream == nil {
		ctx.Errors = append(ctx.Errors,
			diagnostics.New(diagnostics.SSyntaxError, token.Token{}, "parser: token stream is nil"))
		return ctx
	}
	prog, err := Parse(ctx.FilePath, ctx.TokenStream)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.AstRoot = prog
	return ctx
}
