// Package ast defines the untyped syntax tree produced by the parser
// and consumed by the semantic analyzer (internal/semant).
//
// The node shapes are a small Node/Statement/Expression interface
// family, one struct per grammar production carrying its defining
// Token for error reporting. Consumers dispatch with a plain type
// switch rather than double-dispatch visitors.
package ast

import "github.com/funvibe/funxyc/internal/token"

// Node is the base interface for every AST node.
type Node interface {
	TokenLiteral() string
	GetToken() token.Token
}

// Statement is a Node that represents a statement.
type Statement interface {
	Node
	statementNode()
}

// Expression is a Node that represents an expression.
type Expression interface {
	Node
	expressionNode()
}

// BinOp enumerates the binary operators the type-inference rules
// cover.
type BinOp int

const (
	Add BinOp = iota
	Sub
	Mul
	Div
	Exp
	Eq
	Neq
	Lt
	Le
	Gt
	Ge
	LAnd
	LOr
)

func (op BinOp) String() string {
	return binOpNames[op]
}

var binOpNames = map[BinOp]string{
	Add: "+", Sub: "-", Mul: "*", Div: "/", Exp: "**",
	Eq: "==", Neq: "!=", Lt: "<", Le: "<=", Gt: ">", Ge: ">=",
	LAnd: "and", LOr: "or",
}

// UnOp enumerates the unary operators.
type UnOp int

const (
	Neg UnOp = iota
	Not
)

func (op UnOp) String() string {
	if op == Neg {
		return "-"
	}
	return "not"
}
