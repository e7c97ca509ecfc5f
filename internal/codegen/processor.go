package codegen

import (
	"github.com/funvibe/funxyc/internal/pipeline"
)

type Processor struct{}

func (cp *Processor) Process(ctx *pipeline.PipelineContext) *pipeline.PipelineContext {
	if ctx.Failed() || ctx.Annotated == nil {
		return ctx
	}
	e := NewEmitter(ctx.Config.Exceptions)
	mod, err := e.Emit(ctx.Annotated)
	if err != nil {
		ctx.Errors = append(ctx.Errors, err)
		return ctx
	}
	ctx.Module = mod
	for _, s := range e.Specializations() {
		ctx.Specializations = append(ctx.Specializations,
			pipeline.SpecRecord{Func: s.Func, ArgTypes: s.ArgTypes, Symbol: s.Symbol})
	}
	return ctx
}
