// Package parser builds the untyped AST (internal/ast) from the token
// stream internal/lexer produces: a small hand-written
// recursive-descent parser with precedence-climbing expressions.
package parser

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/diagnostics"
	"github.com/funvibe/funxyc/internal/token"
	"github.com/funvibe/funxyc/internal/types"
)

type Parser struct {
	tokens []token.Token
	pos    int
	err    *diagnostics.DiagnosticError
}

func New(tokens []token.Token) *Parser {
	return &Parser{tokens: tokens}
}

// Parse is the convenience entry point: lexer tokens in, program out.
func Parse(file string, tokens []token.Token) (*ast.Program, error) {
	p := New(tokens)
	prog := p.ParseProgram()
	prog.File = file
	if p.err != nil {
		return nil, p.err
	}
	return prog, nil
}

func (p *Parser) cur() token.Token {
	if p.pos < len(p.tokens) {
		return p.tokens[p.pos]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) peek() token.Token {
	if p.pos+1 < len(p.tokens) {
		return p.tokens[p.pos+1]
	}
	return token.Token{Type: token.EOF}
}

func (p *Parser) advance() token.Token {
	tok := p.cur()
	if p.pos < len(p.tokens) {
		p.pos++
	}
	return tok
}

func (p *Parser) expect(t token.Type, what string) (token.Token, bool) {
	if p.cur().Type != t {
		p.fail(p.cur(), "expected %s, got '%s'", what, p.cur().Lexeme)
		return token.Token{}, false
	}
	return p.advance(), true
}

// fail records the first syntax error; later calls are ignored so the
// parser can unwind without cascading diagnostics (the first static
// error terminates the pipeline anyway).
func (p *Parser) fail(tok token.Token, format string, args ...interface{}) {
	if p.err == nil {
		p.err = diagnostics.New(diagnostics.SSyntaxError, tok, format, args...)
	}
}

func (p *Parser) skipNewlines() {
	for p.cur().Type == token.NEWLINE {
		p.advance()
	}
}

func (p *Parser) ParseProgram() *ast.Program {
	prog := &ast.Program{}
	p.skipNewlines()
	for p.cur().Type != token.EOF && p.err == nil {
		stmt := p.parseStatement()
		if stmt != nil {
			prog.Statements = append(prog.Statements, stmt)
		}
		p.skipNewlines()
	}
	return prog
}

func (p *Parser) parseStatement() ast.Statement {
	switch p.cur().Type {
	case token.IF:
		return p.parseIf()
	case token.WHILE:
		return p.parseWhile()
	case token.FOR:
		return p.parseFor()
	case token.DEF:
		return p.parseDef()
	case token.CLASS:
		return p.parseClass()
	case token.RETURN:
		return p.parseReturn()
	case token.PRINT:
		return p.parsePrint()
	case token.IMPORT:
		return p.parseImport()
	case token.PASS:
		tok := p.advance()
		p.endSimple()
		return &ast.Nop{Token: tok}
	case token.BREAK:
		tok := p.advance()
		p.endSimple()
		return &ast.Break{Token: tok}
	case token.CONTINUE:
		tok := p.advance()
		p.endSimple()
		return &ast.Continue{Token: tok}
	}
	return p.parseExprOrAssign()
}

// endSimple consumes the NEWLINE terminating a simple statement.
func (p *Parser) endSimple() {
	switch p.cur().Type {
	case token.NEWLINE:
		p.advance()
	case token.EOF, token.DEDENT:
	default:
		p.fail(p.cur(), "unexpected '%s' after statement", p.cur().Lexeme)
	}
}

// parseExprOrAssign handles both bare expression statements and
// (possibly chained, possibly annotated) assignments:
//
//	x = y = expr
//	x: int = expr
//	xs[0] = expr
func (p *Parser) parseExprOrAssign() ast.Statement {
	tok := p.cur()
	first := p.parseExpression(lowestPrec)
	if first == nil {
		return nil
	}

	var annotation types.Type
	if p.cur().Type == token.COLON {
		if _, ok := first.(*ast.Var); !ok {
			p.fail(p.cur(), "type annotation requires a plain name target")
			return nil
		}
		p.advance()
		annotation = p.parseType()
		if annotation == nil {
			return nil
		}
	}

	if p.cur().Type != token.ASSIGN {
		if annotation != nil {
			p.fail(p.cur(), "annotated declaration requires '='")
			return nil
		}
		p.endSimple()
		return &ast.Expr{Token: tok, Value: first}
	}

	targets := []ast.Expression{first}
	var value ast.Expression
	for p.cur().Type == token.ASSIGN {
		p.advance()
		next := p.parseExpression(lowestPrec)
		if next == nil {
			return nil
		}
		if p.cur().Type == token.ASSIGN {
			targets = append(targets, next)
		} else {
			value = next
		}
	}
	for _, t := range targets {
		switch t.(type) {
		case *ast.Var, *ast.ListAccess:
		default:
			p.fail(tok, "invalid assignment target")
			return nil
		}
	}
	p.endSimple()
	return &ast.Asn{Token: tok, Targets: targets, Annotation: annotation, Value: value}
}

func (p *Parser) parseReturn() ast.Statement {
	tok := p.advance()
	if p.cur().Type == token.NEWLINE || p.cur().Type == token.EOF || p.cur().Type == token.DEDENT {
		p.endSimple()
		return &ast.Return{Token: tok}
	}
	value := p.parseExpression(lowestPrec)
	p.endSimple()
	return &ast.Return{Token: tok, Value: value}
}

func (p *Parser) parsePrint() ast.Statement {
	tok := p.advance()
	if _, ok := p.expect(token.LPAREN, "'(' after print"); !ok {
		return nil
	}
	value := p.parseExpression(lowestPrec)
	if _, ok := p.expect(token.RPAREN, "')'"); !ok {
		return nil
	}
	p.endSimple()
	return &ast.Print{Token: tok, Value: value}
}

func (p *Parser) parseImport() ast.Statement {
	tok := p.advance()
	var path string
	switch p.cur().Type {
	case token.STRING, token.IDENT:
		path = p.advance().Lexeme
	default:
		p.fail(p.cur(), "expected module path after import")
		return nil
	}
	alias := ""
	if p.cur().Type == token.IDENT && p.cur().Lexeme == "as" {
		p.advance()
		name, ok := p.expect(token.IDENT, "alias name")
		if !ok {
			return nil
		}
		alias = name.Lexeme
	}
	p.endSimple()
	return &ast.Import{Token: tok, Path: path, Alias: alias}
}

// parseBlock parses the NEWLINE INDENT stmt+ DEDENT suite every
// compound statement ends with.
func (p *Parser) parseBlock(tok token.Token) *ast.Block {
	if _, ok := p.expect(token.NEWLINE, "newline before indented block"); !ok {
		return nil
	}
	p.skipNewlines()
	if _, ok := p.expect(token.INDENT, "indented block"); !ok {
		return nil
	}
	block := &ast.Block{Token: tok}
	p.skipNewlines()
	for p.cur().Type != token.DEDENT && p.cur().Type != token.EOF && p.err == nil {
		stmt := p.parseStatement()
		if stmt != nil {
			block.Statements = append(block.Statements, stmt)
		}
		p.skipNewlines()
	}
	if p.cur().Type == token.DEDENT {
		p.advance()
	}
	return block
}

func (p *Parser) parseIf() ast.Statement {
	tok := p.advance()
	cond := p.parseExpression(lowestPrec)
	if _, ok := p.expect(token.COLON, "':' after if condition"); !ok {
		return nil
	}
	then := p.parseBlock(tok)
	if then == nil {
		return nil
	}

	var elseBlock *ast.Block
	switch p.cur().Type {
	case token.ELIF:
		nested := p.parseIf()
		if nested == nil {
			return nil
		}
		elseBlock = &ast.Block{Token: tok, Statements: []ast.Statement{nested}}
	case token.ELSE:
		p.advance()
		if _, ok := p.expect(token.COLON, "':' after else"); !ok {
			return nil
		}
		elseBlock = p.parseBlock(tok)
		if elseBlock == nil {
			return nil
		}
	}
	return &ast.If{Token: tok, Cond: cond, Then: then, Else: elseBlock}
}

func (p *Parser) parseWhile() ast.Statement {
	tok := p.advance()
	cond := p.parseExpression(lowestPrec)
	if _, ok := p.expect(token.COLON, "':' after while condition"); !ok {
		return nil
	}
	body := p.parseBlock(tok)
	if body == nil {
		return nil
	}
	return &ast.While{Token: tok, Cond: cond, Body: body}
}

// parseFor handles both list iteration and the `for i in range(n)`
// counting form, which gets its own Range node.
func (p *Parser) parseFor() ast.Statement {
	tok := p.advance()
	name, ok := p.expect(token.IDENT, "loop variable")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.IN, "'in'"); !ok {
		return nil
	}

	if p.cur().Type == token.RANGE && p.peek().Type == token.LPAREN {
		p.advance()
		p.advance()
		n := p.parseExpression(lowestPrec)
		if _, ok := p.expect(token.RPAREN, "')'"); !ok {
			return nil
		}
		if _, ok := p.expect(token.COLON, "':' after for header"); !ok {
			return nil
		}
		body := p.parseBlock(tok)
		if body == nil {
			return nil
		}
		return &ast.Range{Token: tok, Var: name.Lexeme, N: n, Body: body}
	}

	iter := p.parseExpression(lowestPrec)
	if _, ok := p.expect(token.COLON, "':' after for header"); !ok {
		return nil
	}
	body := p.parseBlock(tok)
	if body == nil {
		return nil
	}
	return &ast.For{Token: tok, Var: name.Lexeme, Iter: iter, Body: body}
}

func (p *Parser) parseDef() ast.Statement {
	tok := p.advance()
	name, ok := p.expect(token.IDENT, "function name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.LPAREN, "'('"); !ok {
		return nil
	}
	var formals []ast.Param
	for p.cur().Type != token.RPAREN {
		pname, ok := p.expect(token.IDENT, "parameter name")
		if !ok {
			return nil
		}
		ptype := types.Dyn
		if p.cur().Type == token.COLON {
			p.advance()
			ptype = p.parseType()
			if ptype == nil {
				return nil
			}
		}
		formals = append(formals, ast.Param{Name: pname.Lexeme, Type: ptype})
		if p.cur().Type == token.COMMA {
			p.advance()
		} else if p.cur().Type != token.RPAREN {
			p.fail(p.cur(), "expected ',' or ')' in parameter list")
			return nil
		}
	}
	p.advance() // ')'

	retType := types.Dyn
	if p.cur().Type == token.ARROW {
		p.advance()
		retType = p.parseType()
		if retType == nil {
			return nil
		}
	}
	if _, ok := p.expect(token.COLON, "':' after function header"); !ok {
		return nil
	}
	body := p.parseBlock(tok)
	if body == nil {
		return nil
	}
	return &ast.Func{Token: tok, Name: name.Lexeme, Formals: formals, ReturnType: retType, Body: body}
}

func (p *Parser) parseClass() ast.Statement {
	tok := p.advance()
	name, ok := p.expect(token.IDENT, "class name")
	if !ok {
		return nil
	}
	if _, ok := p.expect(token.COLON, "':' after class name"); !ok {
		return nil
	}
	if _, ok := p.expect(token.NEWLINE, "newline"); !ok {
		return nil
	}
	p.skipNewlines()
	if _, ok := p.expect(token.INDENT, "indented class body"); !ok {
		return nil
	}
	var fields []ast.ClassField
	p.skipNewlines()
	for p.cur().Type != token.DEDENT && p.cur().Type != token.EOF && p.err == nil {
		if p.cur().Type == token.PASS {
			p.advance()
			p.endSimple()
			p.skipNewlines()
			continue
		}
		fname, ok := p.expect(token.IDENT, "field name")
		if !ok {
			return nil
		}
		if _, ok := p.expect(token.COLON, "':' after field name"); !ok {
			return nil
		}
		ftype := p.parseType()
		if ftype == nil {
			return nil
		}
		fields = append(fields, ast.ClassField{Name: fname.Lexeme, Type: ftype})
		p.endSimple()
		p.skipNewlines()
	}
	if p.cur().Type == token.DEDENT {
		p.advance()
	}
	return &ast.Class{Token: tok, Name: name.Lexeme, Fields: fields}
}

// parseType parses a type expression: a primitive type keyword or a
// bracketed array type like [int].
func (p *Parser) parseType() types.Type {
	switch p.cur().Type {
	case token.TYPE_INT:
		p.advance()
		return types.Int
	case token.TYPE_FLOAT:
		p.advance()
		return types.Float
	case token.TYPE_BOOL:
		p.advance()
		return types.Bool
	case token.TYPE_STRING:
		p.advance()
		return types.String
	case token.TYPE_DYN:
		p.advance()
		return types.Dyn
	case token.TYPE_OBJECT:
		p.advance()
		return types.Object
	case token.LBRACKET:
		p.advance()
		elem := p.parseType()
		if elem == nil {
			return nil
		}
		if _, ok := p.expect(token.RBRACKET, "']'"); !ok {
			return nil
		}
		return types.Arr{Elem: elem}
	}
	p.fail(p.cur(), "expected a type, got '%s'", p.cur().Lexeme)
	return nil
}
