package lexer

import (
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/pipeline"
	"github.com/funvibe/funxyc/internal/token"
)

type Processor struct{}

func (lp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() {
		return ctx
	}
	toks := New(ctx.Source).Tokenize()
	for _, t := range toks {
		if t.Type == token.ILLEGAL {
			ctx.Errors = append(ctx.Errors,
				diagnostics.New(diagnostics.SSyntaxError, t, "illegal token '%s'", t.Lexeme))
			return ctx
		}
	}
	ctx.TokenStream = toks
	return ctx
}
