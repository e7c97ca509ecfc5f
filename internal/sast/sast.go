// Package sast defines the annotated AST ("SAST"): a parallel tree to
// internal/ast where every expression carries its inferred
// internal/types.Type, every Call carries either a specialization
// record or a generic dispatch Stage, and a dedicated Transform
// statement records a required runtime re-boxing. It is produced by
// internal/semant and consumed by internal/codegen.
//
// Node shapes mirror internal/ast's: one struct per production,
// carrying the source token for diagnostics.
package sast

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

// Expr is any annotated expression; every implementation carries its
// inferred Type().
type Expr interface {
	GetToken() token.Token
	Type() types.Type
}

// Stmt is any annotated statement.
type Stmt interface {
	GetToken() token.Token
	stmtNode()
}

// ---- expressions ----

type Lit struct {
	Token token.Token
	Kind  token.Type
	Value string
	Typ   types.Type
}

func (l *Lit) GetToken() token.Token { return l.Token }
func (l *Lit) Type() types.Type      { return l.Typ }

type Var struct {
	Token token.Token
	Name  string
	Typ   types.Type
}

func (v *Var) GetToken() token.Token { return v.Token }
func (v *Var) Type() types.Type      { return v.Typ }

type Binop struct {
	Token token.Token
	Op    ast.BinOp
	Left  Expr
	Right Expr
	Typ   types.Type
}

func (b *Binop) GetToken() token.Token { return b.Token }
func (b *Binop) Type() types.Type      { return b.Typ }

type Unop struct {
	Token   token.Token
	Op      ast.UnOp
	Operand Expr
	Typ     types.Type
}

func (u *Unop) GetToken() token.Token { return u.Token }
func (u *Unop) Type() types.Type      { return u.Typ }

// CallInfo is the third component of a Call: either a static
// Specialization (the callee resolved to a known function AST and was
// specialized against the actual argument types) or a Stage (the
// callee is dynamic, so the call goes through the generic boxed
// calling convention, wrapped in dynify/restore Transforms).
type CallInfo interface{ callInfoNode() }

// Specialization is produced when the semantic analyzer recognizes the
// callee statically. Record is nil only when the call-stack memo broke
// a recursive cycle and returned Dyn without recursing.
type Specialization struct {
	Record *FuncRecord
}

func (*Specialization) callInfoNode() {}

// Stage wraps entry/exit Transform lists around a generic call. Body
// is nil (the call mechanics are the Call node itself); loops are
// wrapped by StageStmt instead.
type Stage struct {
	Entry []*Transform
	Body  Stmt
	Exit  []*Transform
}

func (*Stage) callInfoNode() {}

type Call struct {
	Token  token.Token
	Callee Expr
	Args   []Expr
	Info   CallInfo
	Typ    types.Type
}

func (c *Call) GetToken() token.Token { return c.Token }
func (c *Call) Type() types.Type      { return c.Typ }

type List struct {
	Token    token.Token
	Elements []Expr
	Typ      types.Type
}

func (l *List) GetToken() token.Token { return l.Token }
func (l *List) Type() types.Type      { return l.Typ }

type ListAccess struct {
	Token token.Token
	List  Expr
	Index Expr
	Typ   types.Type
}

func (la *ListAccess) GetToken() token.Token { return la.Token }
func (la *ListAccess) Type() types.Type      { return la.Typ }

type Cast struct {
	Token  token.Token
	Target ast.CastKind
	Value  Expr
	Typ    types.Type
}

func (c *Cast) GetToken() token.Token { return c.Token }
func (c *Cast) Type() types.Type      { return c.Typ }

type Field struct {
	Token  token.Token
	Object Expr
	Name   string
	Typ    types.Type
}

func (f *Field) GetToken() token.Token { return f.Token }
func (f *Field) Type() types.Type      { return f.Typ }

type Method struct {
	Token    token.Token
	Receiver Expr
	Name     string
	Args     []Expr
	Typ      types.Type
}

func (m *Method) GetToken() token.Token { return m.Token }
func (m *Method) Type() types.Type      { return m.Typ }

// ---- lvalues ----

// Lvalue is an assignment target: either a plain name or an indexed
// list slot.
type Lvalue interface {
	GetToken() token.Token
	lvalueNode()
}

type NameLvalue struct {
	Token token.Token
	Name  string
	Typ   types.Type // the binding's type after this assignment
}

func (n *NameLvalue) GetToken() token.Token { return n.Token }
func (n *NameLvalue) lvalueNode()           {}

type IndexLvalue struct {
	Token token.Token
	List  Expr
	Index Expr
}

func (i *IndexLvalue) GetToken() token.Token { return i.Token }
func (i *IndexLvalue) lvalueNode()           {}

// ---- statements ----

type Block struct {
	Token      token.Token
	Statements []Stmt
}

func (b *Block) GetToken() token.Token { return b.Token }
func (b *Block) stmtNode()             {}

// Asn is an assignment. RuntimeCheck, when non-nil, is the explicit
// type the codegen must verify the boxed rhs against at runtime.
type Asn struct {
	Token        token.Token
	Targets      []Lvalue
	Value        Expr
	RuntimeCheck types.Type
}

func (a *Asn) GetToken() token.Token { return a.Token }
func (a *Asn) stmtNode()             {}

type If struct {
	Token token.Token
	Cond  Expr
	Then  *Block
	Else  *Block
}

func (i *If) GetToken() token.Token { return i.Token }
func (i *If) stmtNode()             {}

type While struct {
	Token token.Token
	Cond  Expr
	Body  *Block
}

func (w *While) GetToken() token.Token { return w.Token }
func (w *While) stmtNode()             {}

type For struct {
	Token   token.Token
	VarName string
	VarTyp  types.Type
	Iter    Expr
	Body    *Block
}

func (f *For) GetToken() token.Token { return f.Token }
func (f *For) stmtNode()             {}

type Range struct {
	Token   token.Token
	VarName string
	N       Expr
	Body    *Block
}

func (r *Range) GetToken() token.Token { return r.Token }
func (r *Range) stmtNode()             {}

type Return struct {
	Token token.Token
	Value Expr // nil for a bare return
}

func (r *Return) GetToken() token.Token { return r.Token }
func (r *Return) stmtNode()             {}

// Local is one function-local binding discovered by the analyzer:
// (name, inferred type).
type Local struct {
	Name string
	Typ  types.Type
}

// FuncRecord is one analyzed function instance: return type, name,
// formals, locals, body. A given source function may be represented by
// several FuncRecords, one per call-site specialization, each keyed in
// the analyzer's call-stack memo by (function AST identity, formal
// type tuple).
type FuncRecord struct {
	Name       string
	ReturnType types.Type
	Formals    []ast.Param
	// ArgTypes are the inferred types the formals were bound at for this
	// specialization, in formal order. They are the second half of the
	// memo key and determine the specialized IR signature; the generic
	// record's ArgTypes are the declared formal types (Dyn where
	// unannotated).
	ArgTypes []types.Type
	Locals   []Local
	Body     *Block
}

// Func is the SAST function declaration statement. It always carries
// the generic (unspecialized, Dyn-signature) record; additional
// per-call-site FuncRecords live only in Call.Info.
type Func struct {
	Token  token.Token
	Record *FuncRecord
}

func (f *Func) GetToken() token.Token { return f.Token }
func (f *Func) stmtNode()             {}

type ExprStmt struct {
	Token token.Token
	Value Expr
}

func (e *ExprStmt) GetToken() token.Token { return e.Token }
func (e *ExprStmt) stmtNode()             {}

type Print struct {
	Token token.Token
	Value Expr
}

func (p *Print) GetToken() token.Token { return p.Token }
func (p *Print) stmtNode()             {}

type TypeDecl struct {
	Token token.Token
	Name  string
	Value types.Type
}

func (t *TypeDecl) GetToken() token.Token { return t.Token }
func (t *TypeDecl) stmtNode()             {}

type Nop struct {
	Token token.Token
}

func (n *Nop) GetToken() token.Token { return n.Token }
func (n *Nop) stmtNode()             {}

type Import struct {
	Token token.Token
	Path  string
	Alias string
}

func (i *Import) GetToken() token.Token { return i.Token }
func (i *Import) stmtNode()             {}

type ClassField struct {
	Name string
	Typ  types.Type
}

type Class struct {
	Token  token.Token
	Name   string
	Fields []ClassField
}

func (c *Class) GetToken() token.Token { return c.Token }
func (c *Class) stmtNode()             {}

type Continue struct{ Token token.Token }

func (c *Continue) GetToken() token.Token { return c.Token }
func (c *Continue) stmtNode()             {}

type Break struct{ Token token.Token }

func (b *Break) GetToken() token.Token { return b.Token }
func (b *Break) stmtNode()             {}

// Transform moves a name's liveness between a raw slot and a boxed
// slot. It is produced by transform synthesis rather than written by a
// user, and is kept as its own Stmt (not folded into Asn) because it
// must be able to execute between the sub-statements of a Stage.
type Transform struct {
	Token token.Token
	Name  string
	From  types.Type
	To    types.Type
}

func (t *Transform) GetToken() token.Token { return t.Token }
func (t *Transform) stmtNode()             {}

// StageStmt is a Stage used as a statement: it wraps a While/For/Range
// loop with the entry Transforms computed by the loop's fixed-point
// pass. That pass computes no exit Transforms, so Exit is empty for
// loops; after the loop the affected names stay Dyn.
type StageStmt struct {
	Token token.Token
	Entry []*Transform
	Body  Stmt
	Exit  []*Transform
}

func (s *StageStmt) GetToken() token.Token { return s.Token }
func (s *StageStmt) stmtNode()             {}

// Program is the annotated program root plus the globals the analyzer
// discovered.
type Program struct {
	File       string
	Statements []Stmt
	Globals    []Local
}
