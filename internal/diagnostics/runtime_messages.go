package diagnostics

import "fmt"

// Runtime-error message text. These are emitted verbatim into the
// generated program's string constants and printed via printf before
// exit(1); the compiler itself never prints them.

const (
	MsgNameNotDefined          = "RuntimeError: name '%s' is not defined"
	MsgUnsupportedBinaryOp     = "RuntimeError: unsupported operand type(s) for binary %s"
	MsgUnsupportedListAccess   = "RuntimeError: unsupported operand type(s) for list access"
	MsgListIndexOutOfBounds    = "RuntimeError: list index out of bounds"
	MsgInvalidAssignType       = "RuntimeError: invalid type assigned to %s"
	MsgInvalidReturnType       = "RuntimeError: invalid return type (expected %s)"
	MsgInvalidBoolIf           = "RuntimeError: invalid boolean type in if statement"
	MsgInvalidBoolWhile        = "RuntimeError: invalid boolean type in while statement"
	MsgUnsupportedUnaryOp      = "RuntimeError: unsupported operand type for unary %s"
)

// NameNotDefined formats MsgNameNotDefined for name n.
func NameNotDefined(n string) string { return fmt.Sprintf(MsgNameNotDefined, n) }

// UnsupportedBinaryOp formats MsgUnsupportedBinaryOp for operator op.
func UnsupportedBinaryOp(op string) string { return fmt.Sprintf(MsgUnsupportedBinaryOp, op) }

// InvalidAssignType formats MsgInvalidAssignType for name n.
func InvalidAssignType(n string) string { return fmt.Sprintf(MsgInvalidAssignType, n) }

// InvalidReturnType formats MsgInvalidReturnType for the expected type name t.
func InvalidReturnType(t string) string { return fmt.Sprintf(MsgInvalidReturnType, t) }

// UnsupportedUnaryOp formats MsgUnsupportedUnaryOp for operator op.
func UnsupportedUnaryOp(op string) string { return fmt.Sprintf(MsgUnsupportedUnaryOp, op) }
