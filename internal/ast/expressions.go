package ast

import "github.com/funvibe/funxyc/internal/token"

// Lit is a literal: int, float, bool, string, or null.
type Lit struct {
	Token token.Token
	Kind  token.Type // token.INT, token.FLOAT, token.TRUE/FALSE, token.STRING, token.NULL
	Value string     // raw lexeme; the analyzer/codegen parse it per Kind
}

func (l *Lit) expressionNode()          {}
func (l *Lit) TokenLiteral() string     { return l.Token.Lexeme }
func (l *Lit) GetToken() token.Token    { return l.Token }

// Var references a bound name.
type Var struct {
	Token token.Token
	Name  string
}

func (v *Var) expressionNode()       {}
func (v *Var) TokenLiteral() string  { return v.Token.Lexeme }
func (v *Var) GetToken() token.Token { return v.Token }

// Binop is a binary operator application.
type Binop struct {
	Token token.Token
	Op    BinOp
	Left  Expression
	Right Expression
}

func (b *Binop) expressionNode()       {}
func (b *Binop) TokenLiteral() string  { return b.Token.Lexeme }
func (b *Binop) GetToken() token.Token { return b.Token }

// Unop is a unary operator application.
type Unop struct {
	Token   token.Token
	Op      UnOp
	Operand Expression
}

func (u *Unop) expressionNode()       {}
func (u *Unop) TokenLiteral() string  { return u.Token.Lexeme }
func (u *Unop) GetToken() token.Token { return u.Token }

// Call is a function call expression. Callee is usually a Var but may
// be any expression that statically or dynamically evaluates to a
// function value.
type Call struct {
	Token  token.Token
	Callee Expression
	Args   []Expression
}

func (c *Call) expressionNode()       {}
func (c *Call) TokenLiteral() string  { return c.Token.Lexeme }
func (c *Call) GetToken() token.Token { return c.Token }

// List is a list literal.
type List struct {
	Token    token.Token
	Elements []Expression
}

func (l *List) expressionNode()       {}
func (l *List) TokenLiteral() string  { return l.Token.Lexeme }
func (l *List) GetToken() token.Token { return l.Token }

// ListAccess indexes into an array- or string-typed expression.
type ListAccess struct {
	Token token.Token
	List  Expression
	Index Expression
}

func (la *ListAccess) expressionNode()       {}
func (la *ListAccess) TokenLiteral() string  { return la.Token.Lexeme }
func (la *ListAccess) GetToken() token.Token { return la.Token }

// CastKind names the concrete target primitive of a Cast.
type CastKind int

const (
	CastInt CastKind = iota
	CastFloat
	CastBool
	CastString
)

// Cast is an explicit type conversion, e.g. `int(x)`.
type Cast struct {
	Token  token.Token
	Target CastKind
	Value  Expression
}

func (c *Cast) expressionNode()       {}
func (c *Cast) TokenLiteral() string  { return c.Token.Lexeme }
func (c *Cast) GetToken() token.Token { return c.Token }

// Field accesses a named field of an Object-typed expression.
type Field struct {
	Token  token.Token
	Object Expression
	Name   string
}

func (f *Field) expressionNode()       {}
func (f *Field) TokenLiteral() string  { return f.Token.Lexeme }
func (f *Field) GetToken() token.Token { return f.Token }

// Method is a method-call expression on an Object-typed receiver.
type Method struct {
	Token    token.Token
	Receiver Expression
	Name     string
	Args     []Expression
}

func (m *Method) expressionNode()       {}
func (m *Method) TokenLiteral() string  { return m.Token.Lexeme }
func (m *Method) GetToken() token.Token { return m.Token }
