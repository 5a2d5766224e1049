package ast

import (
	"bytes"
	"strings"

	"coro/internal/token"
)

type Node interface {
	TokenLiteral() string
	String() string
}

// Bind is a top-level or block-level item: a routine definition, a let
// binding, or a bare command.
type Bind interface {
	Node
	bindNode()
}

// Cmd is a command; every command is also a valid bind.
type Cmd interface {
	Bind
	cmdNode()
}

// Expr is an expression; every expression is also a valid command.
type Expr interface {
	Cmd
	exprNode()
}

type Program struct {
	Binds []Bind
}

func (p *Program) TokenLiteral() string {
	if len(p.Binds) > 0 {
		return p.Binds[0].TokenLiteral()
	}
	return ""
}

func (p *Program) String() string {
	var out bytes.Buffer
	for _, b := range p.Binds {
		out.WriteString(b.String())
		out.WriteString("\n")
	}
	return out.String()
}

/* -------------------- Binds -------------------- */

type DefBind struct {
	Token  token.Token // the 'def' token
	Name   string
	Params []string
	Body   Cmd
}

func (*DefBind) bindNode() {}
func (db *DefBind) TokenLiteral() string { return db.Token.Literal }
func (db *DefBind) String() string {
	var out bytes.Buffer
	out.WriteString("def ")
	out.WriteString(db.Name)
	for _, p := range db.Params {
		out.WriteString(" ")
		out.WriteString(p)
	}
	out.WriteString(" = ")
	out.WriteString(db.Body.String())
	return out.String()
}

type LetBind struct {
	Token token.Token // the 'let' token
	Name  string
	Init  Cmd
}

func (*LetBind) bindNode() {}
func (lb *LetBind) TokenLiteral() string { return lb.Token.Literal }
func (lb *LetBind) String() string {
	return "let " + lb.Name + " = " + lb.Init.String()
}

/* -------------------- Commands -------------------- */

type PrintCmd struct {
	Token token.Token // the 'print' token
	Value Expr
}

func (*PrintCmd) bindNode() {}
func (*PrintCmd) cmdNode() {}
func (pc *PrintCmd) TokenLiteral() string { return pc.Token.Literal }
func (pc *PrintCmd) String() string       { return "print " + pc.Value.String() }

type CreateCmd struct {
	Token   token.Token // the 'create' token
	Routine string
}

func (*CreateCmd) bindNode() {}
func (*CreateCmd) cmdNode() {}
func (cc *CreateCmd) TokenLiteral() string { return cc.Token.Literal }
func (cc *CreateCmd) String() string       { return "create " + cc.Routine }

type ResumeCmd struct {
	Token  token.Token // the 'resume' token
	Target Expr
	Args   []Expr
}

func (*ResumeCmd) bindNode() {}
func (*ResumeCmd) cmdNode() {}
func (rc *ResumeCmd) TokenLiteral() string { return rc.Token.Literal }
func (rc *ResumeCmd) String() string {
	parts := []string{"resume", rc.Target.String()}
	for _, a := range rc.Args {
		parts = append(parts, a.String())
	}
	return strings.Join(parts, " ")
}

type YieldCmd struct {
	Token token.Token // the 'yield' token
	Value Expr
}

func (*YieldCmd) bindNode() {}
func (*YieldCmd) cmdNode() {}
func (yc *YieldCmd) TokenLiteral() string { return yc.Token.Literal }
func (yc *YieldCmd) String() string       { return "yield " + yc.Value.String() }

type WhileCmd struct {
	Token token.Token // the 'while' token
	Cond  Expr
	Body  Expr
}

func (*WhileCmd) bindNode() {}
func (*WhileCmd) cmdNode() {}
func (wc *WhileCmd) TokenLiteral() string { return wc.Token.Literal }
func (wc *WhileCmd) String() string {
	return "while " + wc.Cond.String() + " do " + wc.Body.String() + " end"
}

type IfCmd struct {
	Token token.Token // the 'if' token
	Cond  Expr
	Then  Expr
	Else  Expr
}

func (*IfCmd) bindNode() {}
func (*IfCmd) cmdNode() {}
func (ic *IfCmd) TokenLiteral() string { return ic.Token.Literal }
func (ic *IfCmd) String() string {
	return "if " + ic.Cond.String() + " then " + ic.Then.String() +
		" else " + ic.Else.String() + " end"
}

/* -------------------- Expressions -------------------- */

type InfixExpr struct {
	Token token.Token // the operator token
	Op    token.Type
	Left  Expr
	Right Expr
}

func (*InfixExpr) bindNode() {}
func (*InfixExpr) cmdNode() {}
func (*InfixExpr) exprNode() {}
func (ie *InfixExpr) TokenLiteral() string { return ie.Token.Literal }
func (ie *InfixExpr) String() string {
	return "(" + ie.Left.String() + " " + string(ie.Op) + " " + ie.Right.String() + ")"
}

type PrefixExpr struct {
	Token token.Token // the operator token
	Op    token.Type
	Right Expr
}

func (*PrefixExpr) bindNode() {}
func (*PrefixExpr) cmdNode() {}
func (*PrefixExpr) exprNode() {}
func (pe *PrefixExpr) TokenLiteral() string { return pe.Token.Literal }
func (pe *PrefixExpr) String() string {
	op := string(pe.Op)
	if pe.Op == token.NOT {
		op = "not "
	}
	return "(" + op + pe.Right.String() + ")"
}

type BlockExpr struct {
	Token token.Token // the '{' token
	Binds []Bind
}

func (*BlockExpr) bindNode() {}
func (*BlockExpr) cmdNode() {}
func (*BlockExpr) exprNode() {}
func (be *BlockExpr) TokenLiteral() string { return be.Token.Literal }
func (be *BlockExpr) String() string {
	parts := make([]string, 0, len(be.Binds))
	for _, b := range be.Binds {
		parts = append(parts, b.String())
	}
	return "{ " + strings.Join(parts, "; ") + " }"
}

type GroupExpr struct {
	Token token.Token // the '(' token
	Inner Cmd
}

func (*GroupExpr) bindNode() {}
func (*GroupExpr) cmdNode() {}
func (*GroupExpr) exprNode() {}
func (ge *GroupExpr) TokenLiteral() string { return ge.Token.Literal }
func (ge *GroupExpr) String() string       { return "(" + ge.Inner.String() + ")" }

type Identifier struct {
	Token token.Token
	Name  string
}

func (*Identifier) bindNode() {}
func (*Identifier) cmdNode() {}
func (*Identifier) exprNode() {}
func (id *Identifier) TokenLiteral() string { return id.Token.Literal }
func (id *Identifier) String() string       { return id.Name }

type NumberLit struct {
	Token token.Token
	Value float64
}

func (*NumberLit) bindNode() {}
func (*NumberLit) cmdNode() {}
func (*NumberLit) exprNode() {}
func (nl *NumberLit) TokenLiteral() string { return nl.Token.Literal }
func (nl *NumberLit) String() string       { return nl.Token.Literal }

type StringLit struct {
	Token token.Token
	Value string
}

func (*StringLit) bindNode() {}
func (*StringLit) cmdNode() {}
func (*StringLit) exprNode() {}
func (sl *StringLit) TokenLiteral() string { return sl.Token.Literal }
func (sl *StringLit) String() string       { return `"` + sl.Value + `"` }

type BoolLit struct {
	Token token.Token
	Value bool
}

func (*BoolLit) bindNode() {}
func (*BoolLit) cmdNode() {}
func (*BoolLit) exprNode() {}
func (bl *BoolLit) TokenLiteral() string { return bl.Token.Literal }
func (bl *BoolLit) String() string       { return bl.Token.Literal }

type UnitLit struct {
	Token token.Token // the '(' token
}

func (*UnitLit) bindNode() {}
func (*UnitLit) cmdNode() {}
func (*UnitLit) exprNode() {}
func (ul *UnitLit) TokenLiteral() string { return ul.Token.Literal }
func (ul *UnitLit) String() string       { return "()" }
