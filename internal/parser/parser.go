package parser

import (
	"fmt"
	"strconv"

	"coro/internal/ast"
	"coro/internal/diag"
	"coro/internal/lexer"
	"coro/internal/token"
)

// Parser is a recursive-descent parser over the cursor pair
// curToken/peekToken. Every parse method consumes its construct fully,
// leaving curToken on the first unconsumed token; that convention is
// what makes the juxtaposed argument list of `resume` unambiguous to
// scan.
type Parser struct {
	l      *lexer.Lexer
	errors []string
	diags  []diag.Diagnostic

	curToken  token.Token
	peekToken token.Token
}

func New(l *lexer.Lexer) *Parser {
	p := &Parser{
		l:      l,
		errors: []string{},
		diags:  []diag.Diagnostic{},
	}

	// read two tokens, so cur and peek are set
	p.nextToken()
	p.nextToken()

	return p
}

func (p *Parser) Errors() []string               { return p.errors }
func (p *Parser) Diagnostics() []diag.Diagnostic { return p.diags }

func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.l.NextToken()
}

func (p *Parser) errorAt(tok token.Token, format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	p.errors = append(p.errors, fmt.Sprintf("%d:%d: %s", tok.Line, tok.Col, msg))
	p.diags = append(p.diags, diag.Diagnostic{
		Message:  msg,
		Severity: diag.SeverityError,
		Range:    diag.Range{Line: tok.Line, Col: tok.Col, Length: len(tok.Literal)},
	})
}

func (p *Parser) expectCur(tt token.Type) bool {
	if p.curToken.Type == tt {
		return true
	}
	p.errorAt(p.curToken, "expected %s, got %s", tt, describe(p.curToken))
	return false
}

func describe(tok token.Token) string {
	if tok.Type == token.EOF {
		return "end of input"
	}
	return fmt.Sprintf("'%s'", tok.Literal)
}

/* -------------------- program -------------------- */

func (p *Parser) ParseProgram() *ast.Program {
	program := &ast.Program{Binds: []ast.Bind{}}

	for p.curToken.Type != token.EOF {
		before := p.curToken
		bind := p.parseBind()
		if bind != nil {
			program.Binds = append(program.Binds, bind)
		} else if p.curToken == before {
			// Skip the offending token so a malformed program cannot
			// stall the parse.
			p.nextToken()
		}
	}

	return program
}

/* -------------------- binds -------------------- */

func (p *Parser) parseBind() ast.Bind {
	switch p.curToken.Type {
	case token.DEF:
		return p.parseDefBind()
	case token.LET:
		return p.parseLetBind()
	default:
		return p.parseCmd()
	}
}

func (p *Parser) parseDefBind() ast.Bind {
	bind := &ast.DefBind{Token: p.curToken}
	p.nextToken()

	if !p.expectCur(token.IDENT) {
		return nil
	}
	bind.Name = p.curToken.Literal
	p.nextToken()

	for p.curToken.Type == token.IDENT {
		bind.Params = append(bind.Params, p.curToken.Literal)
		p.nextToken()
	}

	if !p.expectCur(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	bind.Body = p.parseCmd()
	if bind.Body == nil {
		return nil
	}
	return bind
}

func (p *Parser) parseLetBind() ast.Bind {
	bind := &ast.LetBind{Token: p.curToken}
	p.nextToken()

	if !p.expectCur(token.IDENT) {
		return nil
	}
	bind.Name = p.curToken.Literal
	p.nextToken()

	if !p.expectCur(token.ASSIGN) {
		return nil
	}
	p.nextToken()

	bind.Init = p.parseCmd()
	if bind.Init == nil {
		return nil
	}
	return bind
}

/* -------------------- commands -------------------- */

func (p *Parser) parseCmd() ast.Cmd {
	switch p.curToken.Type {
	case token.PRINT:
		cmd := &ast.PrintCmd{Token: p.curToken}
		p.nextToken()
		cmd.Value = p.parseExpr()
		if cmd.Value == nil {
			return nil
		}
		return cmd

	case token.CREATE:
		cmd := &ast.CreateCmd{Token: p.curToken}
		p.nextToken()
		if !p.expectCur(token.IDENT) {
			return nil
		}
		cmd.Routine = p.curToken.Literal
		p.nextToken()
		return cmd

	case token.RESUME:
		cmd := &ast.ResumeCmd{Token: p.curToken}
		p.nextToken()
		cmd.Target = p.parseExpr()
		if cmd.Target == nil {
			return nil
		}
		for p.startsExpr(p.curToken.Type) {
			arg := p.parseExpr()
			if arg == nil {
				return nil
			}
			cmd.Args = append(cmd.Args, arg)
		}
		return cmd

	case token.YIELD:
		cmd := &ast.YieldCmd{Token: p.curToken}
		p.nextToken()
		cmd.Value = p.parseExpr()
		if cmd.Value == nil {
			return nil
		}
		return cmd

	case token.WHILE:
		cmd := &ast.WhileCmd{Token: p.curToken}
		p.nextToken()
		cmd.Cond = p.parseExpr()
		if cmd.Cond == nil {
			return nil
		}
		if !p.expectCur(token.DO) {
			return nil
		}
		p.nextToken()
		cmd.Body = p.parseExpr()
		if cmd.Body == nil {
			return nil
		}
		if !p.expectCur(token.END) {
			return nil
		}
		p.nextToken()
		return cmd

	case token.IF:
		cmd := &ast.IfCmd{Token: p.curToken}
		p.nextToken()
		cmd.Cond = p.parseExpr()
		if cmd.Cond == nil {
			return nil
		}
		if !p.expectCur(token.THEN) {
			return nil
		}
		p.nextToken()
		cmd.Then = p.parseExpr()
		if cmd.Then == nil {
			return nil
		}
		if !p.expectCur(token.ELSE) {
			return nil
		}
		p.nextToken()
		cmd.Else = p.parseExpr()
		if cmd.Else == nil {
			return nil
		}
		if !p.expectCur(token.END) {
			return nil
		}
		p.nextToken()
		return cmd

	default:
		return p.parseExpr()
	}
}

func (p *Parser) startsExpr(tt token.Type) bool {
	switch tt {
	case token.LBRACE, token.LPAREN, token.TRUE, token.FALSE,
		token.NUM, token.STRING, token.IDENT, token.NOT, token.MINUS:
		return true
	}
	return false
}

/* -------------------- expressions -------------------- */

// Relational operators are non-associative: `a < b < c` is rejected.
func (p *Parser) parseExpr() ast.Expr {
	left := p.parseAdditive()
	if left == nil {
		return nil
	}

	if p.curToken.Type != token.EQ && p.curToken.Type != token.LT {
		return left
	}

	opTok := p.curToken
	p.nextToken()
	right := p.parseAdditive()
	if right == nil {
		return nil
	}

	if p.curToken.Type == token.EQ || p.curToken.Type == token.LT {
		p.errorAt(p.curToken, "relational operators are non-associative")
		return nil
	}

	return &ast.InfixExpr{Token: opTok, Op: opTok.Type, Left: left, Right: right}
}

func (p *Parser) parseAdditive() ast.Expr {
	left := p.parseMultiplicative()
	if left == nil {
		return nil
	}

	for p.curToken.Type == token.PLUS || p.curToken.Type == token.MINUS {
		opTok := p.curToken
		p.nextToken()
		right := p.parseMultiplicative()
		if right == nil {
			return nil
		}
		left = &ast.InfixExpr{Token: opTok, Op: opTok.Type, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseMultiplicative() ast.Expr {
	left := p.parseUnary()
	if left == nil {
		return nil
	}

	for p.curToken.Type == token.STAR || p.curToken.Type == token.SLASH {
		opTok := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		left = &ast.InfixExpr{Token: opTok, Op: opTok.Type, Left: left, Right: right}
	}
	return left
}

func (p *Parser) parseUnary() ast.Expr {
	if p.curToken.Type == token.NOT || p.curToken.Type == token.MINUS {
		opTok := p.curToken
		p.nextToken()
		right := p.parseUnary()
		if right == nil {
			return nil
		}
		return &ast.PrefixExpr{Token: opTok, Op: opTok.Type, Right: right}
	}
	return p.parseAtom()
}

func (p *Parser) parseAtom() ast.Expr {
	switch p.curToken.Type {
	case token.LBRACE:
		return p.parseBlock()

	case token.LPAREN:
		tok := p.curToken
		p.nextToken()
		if p.curToken.Type == token.RPAREN {
			p.nextToken()
			return &ast.UnitLit{Token: tok}
		}
		inner := p.parseCmd()
		if inner == nil {
			return nil
		}
		if !p.expectCur(token.RPAREN) {
			return nil
		}
		p.nextToken()
		return &ast.GroupExpr{Token: tok, Inner: inner}

	case token.TRUE, token.FALSE:
		lit := &ast.BoolLit{Token: p.curToken, Value: p.curToken.Type == token.TRUE}
		p.nextToken()
		return lit

	case token.NUM:
		tok := p.curToken
		value, err := strconv.ParseFloat(tok.Literal, 64)
		if err != nil {
			p.errorAt(tok, "could not parse %q as a number", tok.Literal)
			return nil
		}
		p.nextToken()
		return &ast.NumberLit{Token: tok, Value: value}

	case token.STRING:
		lit := &ast.StringLit{Token: p.curToken, Value: p.curToken.Literal}
		p.nextToken()
		return lit

	case token.IDENT:
		ident := &ast.Identifier{Token: p.curToken, Name: p.curToken.Literal}
		p.nextToken()
		return ident

	case token.ILLEGAL:
		p.errorAt(p.curToken, "illegal character %q", p.curToken.Literal)
		return nil

	default:
		p.errorAt(p.curToken, "unexpected %s", describe(p.curToken))
		return nil
	}
}

func (p *Parser) parseBlock() ast.Expr {
	block := &ast.BlockExpr{Token: p.curToken}
	p.nextToken()

	if p.curToken.Type == token.RBRACE {
		p.errorAt(p.curToken, "block must contain at least one bind")
		return nil
	}

	bind := p.parseBind()
	if bind == nil {
		return nil
	}
	block.Binds = append(block.Binds, bind)

	for p.curToken.Type == token.SEMICOLON {
		p.nextToken()
		if p.curToken.Type == token.RBRACE {
			// trailing semicolon
			break
		}
		bind = p.parseBind()
		if bind == nil {
			return nil
		}
		block.Binds = append(block.Binds, bind)
	}

	if !p.expectCur(token.RBRACE) {
		return nil
	}
	p.nextToken()
	return block
}
