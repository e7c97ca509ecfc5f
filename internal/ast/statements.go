package ast

import (
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// Block is a sequence of statements sharing one lexical scope (a
// suite, in indentation terms).
type Block struct {
	Token      token.Token
	Statements []Statement
}

func (b *Block) statementNode()       {}
func (b *Block) TokenLiteral() string { return b.Token.Lexeme }
func (b *Block) GetToken() token.Token { return b.Token }

// Asn is an assignment statement. It may target multiple lvalues,
// each either a *Var (name binding) or a *ListAccess (indexed element
// store).
type Asn struct {
	Token      token.Token
	Targets    []Expression // *Var or *ListAccess
	Annotation types.Type   // explicit type annotation, nil if none (e.g. `x: int = 1`)
	Value      Expression
}

func (a *Asn) statementNode()       {}
func (a *Asn) TokenLiteral() string  { return a.Token.Lexeme }
func (a *Asn) GetToken() token.Token { return a.Token }

// If is a conditional with an optional else branch. `elif` chains are
// represented as a nested If in Else.
type If struct {
	Token  token.Token
	Cond   Expression
	Then   *Block
	Else   *Block // nil if no else/elif
}

func (i *If) statementNode()       {}
func (i *If) TokenLiteral() string  { return i.Token.Lexeme }
func (i *If) GetToken() token.Token { return i.Token }

// While is a condition-tested loop.
type While struct {
	Token token.Token
	Cond  Expression
	Body  *Block
}

func (w *While) statementNode()       {}
func (w *While) TokenLiteral() string  { return w.Token.Lexeme }
func (w *While) GetToken() token.Token { return w.Token }

// For iterates the elements of an array- or string-typed expression.
type For struct {
	Token token.Token
	Var   string
	Iter  Expression
	Body  *Block
}

func (f *For) statementNode()       {}
func (f *For) TokenLiteral() string  { return f.Token.Lexeme }
func (f *For) GetToken() token.Token { return f.Token }

// Range iterates an integer counter from 0 (inclusive) to N (exclusive).
type Range struct {
	Token token.Token
	Var   string
	N     Expression
	Body  *Block
}

func (r *Range) statementNode()       {}
func (r *Range) TokenLiteral() string  { return r.Token.Lexeme }
func (r *Range) GetToken() token.Token { return r.Token }

// Return exits the enclosing function, optionally with a value.
type Return struct {
	Token token.Token
	Value Expression // nil for a bare `return`
}

func (r *Return) statementNode()       {}
func (r *Return) TokenLiteral() string  { return r.Token.Lexeme }
func (r *Return) GetToken() token.Token { return r.Token }

// Param is one formal parameter of a Func declaration.
type Param struct {
	Name string
	Type types.Type // types.Dyn if no annotation was given
}

// Func is a function declaration.
type Func struct {
	Token      token.Token
	Name       string
	Formals    []Param
	ReturnType types.Type // types.Dyn if unannotated
	Body       *Block
}

func (f *Func) statementNode()       {}
func (f *Func) TokenLiteral() string  { return f.Token.Lexeme }
func (f *Func) GetToken() token.Token { return f.Token }

// Expr is an expression evaluated for its side effects (e.g. a bare
// call statement).
type Expr struct {
	Token token.Token
	Value Expression
}

func (e *Expr) statementNode()       {}
func (e *Expr) TokenLiteral() string  { return e.Token.Lexeme }
func (e *Expr) GetToken() token.Token { return e.Token }

// Print is the top-level print statement; the emitted program appends
// one trailing '\n'.
type Print struct {
	Token token.Token
	Value Expression
}

func (p *Print) statementNode()       {}
func (p *Print) TokenLiteral() string  { return p.Token.Lexeme }
func (p *Print) GetToken() token.Token { return p.Token }

// TypeDecl introduces a named alias for a type, e.g. `type Meters = int`.
type TypeDecl struct {
	Token token.Token
	Name  string
	Value types.Type
}

func (t *TypeDecl) statementNode()       {}
func (t *TypeDecl) TokenLiteral() string  { return t.Token.Lexeme }
func (t *TypeDecl) GetToken() token.Token { return t.Token }

// Nop is an explicit no-op statement (`pass`).
type Nop struct {
	Token token.Token
}

func (n *Nop) statementNode()       {}
func (n *Nop) TokenLiteral() string  { return n.Token.Lexeme }
func (n *Nop) GetToken() token.Token { return n.Token }

// Import names a module path to load. Import resolution happens
// outside the compiler core; the statement is only recorded.
type Import struct {
	Token token.Token
	Path  string
	Alias string // "" if none
}

func (i *Import) statementNode()       {}
func (i *Import) TokenLiteral() string  { return i.Token.Lexeme }
func (i *Import) GetToken() token.Token { return i.Token }

// ClassField is one field of a Class declaration.
type ClassField struct {
	Name string
	Type types.Type
}

// Class declares an Object-typed record with named, typed fields.
// There is no inheritance, no methods-on-the-declaration, and no
// constructor; the semantic analyzer rejects class declarations as not
// implemented.
type Class struct {
	Token  token.Token
	Name   string
	Fields []ClassField
}

func (c *Class) statementNode()       {}
func (c *Class) TokenLiteral() string  { return c.Token.Lexeme }
func (c *Class) GetToken() token.Token { return c.Token }

// Continue jumps to the next iteration of the enclosing loop.
type Continue struct {
	Token token.Token
}

func (c *Continue) statementNode()       {}
func (c *Continue) TokenLiteral() string  { return c.Token.Lexeme }
func (c *Continue) GetToken() token.Token { return c.Token }

// Break exits the enclosing loop.
type Break struct {
	Token token.Token
}

func (b *Break) statementNode()       {}
func (b *Break) TokenLiteral() string  { return b.Token.Lexeme }
func (b *Break) GetToken() token.Token { return b.Token }

// Program is the root node: a flat list of top-level statements.
type Program struct {
	File       string
	Statements []Statement
}

func (p *Program) TokenLiteral() string {
	if len(p.Statements) > 0 {
		return p.Statements[0].TokenLiteral()
	}
	return ""
}
func (p *Program) GetToken() token.Token {
	if len(p.Statements) > 0 {
		return p.Statements[0].GetToken()
	}
	return token.Token{}
}
