package semant

import (
	"github.com/funvibe/funxyc/internal/pipeline"
)

type Processor struct{}

func (sp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.AstRoot == nil {
		return ctx
	}
	prog, err := New().Analyze(ctx.AstRoot)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Annotated = prog
	return ctx
}
