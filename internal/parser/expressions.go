package parser

import (
	"github.com/funvibe/funxyc/internal/ast"
	"github.com/funvibe/funxyc/internal/token"
)

// Precedence levels, lowest binding first.
const (
	lowestPrec = iota
	orPrec
	andPrec
	notPrec
	cmpPrec
	sumPrec
	productPrec
	unaryPrec
	powerPrec
	postfixPrec
)

func precedenceOf(t token.Type) int {
	switch t {
	case token.OR:
		return orPrec
	case token.AND:
		return andPrec
	case token.EQ, token.NEQ, token.LT, token.LE, token.GT, token.GE:
		return cmpPrec
	case token.PLUS, token.MINUS:
		return sumPrec
	case token.STAR, token.SLASH:
		return productPrec
	case token.STARSTAR:
		return powerPrec
	case token.LPAREN, token.LBRACKET, token.DOT:
		return postfixPrec
	}
	return lowestPrec
}

func binOpOf(t token.Type) (ast.BinOp, bool) {
	switch t {
	case token.PLUS:
		return ast.Add, true
	case token.MINUS:
		return ast.Sub, true
	case token.STAR:
		return ast.Mul, true
	case token.SLASH:
		return ast.Div, true
	case token.STARSTAR:
		return ast.Exp, true
	case token.EQ:
		return ast.Eq, true
	case token.NEQ:
		return ast.Neq, true
	case token.LT:
		return ast.Lt, true
	case token.LE:
		return ast.Le, true
	case token.GT:
		return ast.Gt, true
	case token.GE:
		return ast.Ge, true
	case token.AND:
		return ast.LAnd, true
	case token.OR:
		return ast.LOr, true
	}
	return 0, false
}

func (p *Parser) parseExpression(minPrec int) ast.Expression {
	left := p.parseUnary()
	if left == nil {
		return nil
	}
	for p.err == nil {
		tok := p.cur()
		prec := precedenceOf(tok.Type)
		if prec <= minPrec {
			break
		}
		switch tok.Type {
		case token.LPAREN:
			left = p.parseCall(left)
		case token.LBRACKET:
			left = p.parseIndex(left)
		case token.DOT:
			left = p.parseFieldOrMethod(left)
		default:
			op, ok := binOpOf(tok.Type)
			if !ok {
				return left
			}
			p.advance()
			// ** is right-associative; everything else left.
			rightMin := prec
			if tok.Type == token.STARSTAR {
				rightMin = prec - 1
			}
			right := p.parseExpression(rightMin)
			if right == nil {
				return nil
			}
			left = &ast.Binop{Token: tok, Op: op, Left: left, Right: right}
		}
		if left == nil {
			return nil
		}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.MINUS:
		p.advance()
		operand := p.parseExpression(unaryPrec)
		if operand == nil {
			return nil
		}
		return &ast.Unop{Token: tok, Op: ast.Neg, Operand: operand}
	case token.NOT, token.BANG:
		p.advance()
		operand := p.parseExpression(notPrec)
		if operand == nil {
			return nil
		}
		return &ast.Unop{Token: tok, Op: ast.Not, Operand: operand}
	}
	return p.parsePrimary()
}

func (p *Parser) parsePrimary() ast.Expression {
	tok := p.cur()
	switch tok.Type {
	case token.INT, token.FLOAT, token.STRING, token.TRUE, token.FALSE, token.NULL:
		p.advance()
		return &ast.Lit{Token: tok, Kind: tok.Type, Value: tok.Lexeme}
	case token.IDENT:
		p.advance()
		return &ast.Var{Token: tok, Name: tok.Lexeme}
	case token.LPAREN:
		p.advance()
		inner := p.parseExpression(lowestPrec)
		if inner == nil {
			return nil
		}
		if _, ok := p.expect(token.RPAREN, "')'"); !ok {
			return nil
		}
		return inner
	case token.LBRACKET:
		return p.parseListLiteral()
	case token.TYPE_INT, token.TYPE_FLOAT, token.TYPE_BOOL, token.TYPE_STRING:
		return p.parseCastExpr()
	}
	p.fail(tok, "unexpected '%s' in expression", tok.Lexeme)
	return nil
}

func (p *Parser) parseListLiteral() ast.Expression {
	tok := p.advance() // '['
	list := &ast.List{Token: tok}
	for p.cur().Type != token.RBRACKET {
		el := p.parseExpression(lowestPrec)
		if el == nil {
			return nil
		}
		list.Elements = append(list.Elements, el)
		if p.cur().Type == token.COMMA {
			p.advance()
		} else if p.cur().Type != token.RBRACKET {
			p.fail(p.cur(), "expected ',' or ']' in list literal")
			return nil
		}
	}
	p.advance() // ']'
	return list
}

// parseCastExpr parses an explicit conversion like int(x) or str(n).
// A type keyword in expression position is only valid as a cast.
func (p *Parser) parseCastExpr() ast.Expression {
	tok := p.advance()
	var target ast.CastKind
	switch tok.Type {
	case token.TYPE_INT:
		target = ast.CastInt
	case token.TYPE_FLOAT:
		target = ast.CastFloat
	case token.TYPE_BOOL:
		target = ast.CastBool
	case token.TYPE_STRING:
		target = ast.CastString
	}
	if _, ok := p.expect(token.LPAREN, "'(' after cast target"); !ok {
		return nil
	}
	value := p.parseExpression(lowestPrec)
	if value == nil {
		return nil
	}
	if _, ok := p.expect(token.RPAREN, "')'"); !ok {
		return nil
	}
	return &ast.Cast{Token: tok, Target: target, Value: value}
}

func (p *Parser) parseCall(callee ast.Expression) ast.Expression {
	tok := p.advance() // '('
	call := &ast.Call{Token: tok, Callee: callee}
	for p.cur().Type != token.RPAREN {
		arg := p.parseExpression(lowestPrec)
		if arg == nil {
			return nil
		}
		call.Args = append(call.Args, arg)
		if p.cur().Type == token.COMMA {
			p.advance()
		} else if p.cur().Type != token.RPAREN {
			p.fail(p.cur(), "expected ',' or ')' in argument list")
			return nil
		}
	}
	p.advance() // ')'
	return call
}

func (p *Parser) parseIndex(list ast.Expression) ast.Expression {
	tok := p.advance() // '['
	idx := p.parseExpression(lowestPrec)
	if idx == nil {
		return nil
	}
	if _, ok := p.expect(token.RBRACKET, "']'"); !ok {
		return nil
	}
	return &ast.ListAccess{Token: tok, List: list, Index: idx}
}

func (p *Parser) parseFieldOrMethod(receiver ast.Expression) ast.Expression {
	tok := p.advance() // '.'
	name, ok := p.expect(token.IDENT, "field or method name")
	if !ok {
		return nil
	}
	if p.cur().Type != token.LPAREN {
		return &ast.Field{Token: tok, Object: receiver, Name: name.Lexeme}
	}
	p.advance() // '('
	method := &ast.Method{Token: tok, Receiver: receiver, Name: name.Lexeme}
	for p.cur().Type != token.RPAREN {
		arg := p.parseExpression(lowestPrec)
		if arg == nil {
			return nil
		}
		method.Args = append(method.Args, arg)
		if p.cur().Type == token.COMMA {
			p.advance()
		} else if p.cur().Type != token.RPAREN {
			p.fail(p.cur(), "expected ',' or ')' in argument list")
			return nil
		}
	}
	p.advance() // ')'
	return method
}
