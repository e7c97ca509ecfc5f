package codegen

import (
	"github.com/llir/llvm/ir"
	"github.com/llir/llvm/ir/constant"
	"github.com/llir/llvm/ir/types"
	"github.com/llir/llvm/ir/value"

	"github.com/funvibe/funxyc/internal/diagnostics"
)

// Runtime error messages, aliased from internal/diagnostics so the
// emitted-code strings and any compiler-side references can never
// drift apart. The compiler itself never prints these; emitted
// programs do.
const (
	msgNotDefined      = diagnostics.MsgNameNotDefined
	msgUnsupportedBin  = diagnostics.MsgUnsupportedBinaryOp
	msgUnsupportedIdx  = diagnostics.MsgUnsupportedListAccess
	msgIndexOOB        = diagnostics.MsgListIndexOutOfBounds
	msgInvalidAssign   = diagnostics.MsgInvalidAssignType
	msgInvalidReturn   = diagnostics.MsgInvalidReturnType
	msgInvalidBoolIf   = diagnostics.MsgInvalidBoolIf
	msgInvalidBoolWhi  = diagnostics.MsgInvalidBoolWhile
	msgUnsupportedUnop = diagnostics.MsgUnsupportedUnaryOp
)

// emitCheck inserts one runtime check: when e.Exceptions is set, split
// the current block on cond (true means "the error condition holds")
// into a fail path that prints message and exits, and a continuation
// that carries on normally. When disabled, the check is skipped
// entirely and b is returned unchanged.
func (e *Emitter) emitCheck(fr *frame, b *ir.Block, cond value.Value, message string) *ir.Block {
	if !e.Exceptions {
		return b
	}
	failBlock := fr.fn.NewBlock("")
	contBlock := fr.fn.NewBlock("")
	b.NewCondBr(cond, failBlock, contBlock)

	failBlock.NewCall(e.printfFn, e.internString(message+"\n"))
	failBlock.NewCall(e.exitFn, constant.NewInt(types.I32, 1))
	failBlock.NewUnreachable()

	return contBlock
}
