package parser

import (
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/token"
)

// parseCondOr/parseCondAnd/parseCondNot/parseCondPrimary parse a "[[ ]]"
// conditional expression at the precedence bash documents: "!" binds
// tightest, then "&&", then "||", with "(" ... ")" grouping at any level.
func (p *Parser) parseCondOr() ast.CondExpr {
	left := p.parseCondAnd()
	for p.cur.Type == token.OR_OR {
		p.next()
		p.skipNewlines()
		right := p.parseCondAnd()
		l, r := left, right
		left = ast.CondExpr{Op: ast.CondOr, X: &l, Y: &r}
	}
	return left
}

func (p *Parser) parseCondAnd() ast.CondExpr {
	left := p.parseCondNot()
	for p.cur.Type == token.AND_AND {
		p.next()
		p.skipNewlines()
		right := p.parseCondNot()
		l, r := left, right
		left = ast.CondExpr{Op: ast.CondAnd, X: &l, Y: &r}
	}
	return left
}

func (p *Parser) parseCondNot() ast.CondExpr {
	if p.cur.Type == token.BANG {
		p.next()
		sub := p.parseCondNot()
		return ast.CondExpr{Op: ast.CondNot, Sub: &sub}
	}
	return p.parseCondPrimary()
}

func (p *Parser) parseCondPrimary() ast.CondExpr {
	if p.cur.Type == token.LPAREN {
		p.next()
		p.skipNewlines()
		inner := p.parseCondOr()
		p.skipNewlines()
		p.expect(token.RPAREN)
		return ast.CondExpr{Op: ast.CondGroup, Sub: &inner}
	}

	if p.cur.Type == token.WORD {
		if flag, ok := unaryFlag(p.cur.Literal); ok {
			if p.peek.Type == token.WORD || p.peek.Type == token.ASSIGN {
				p.next()
				operand := p.parseWord()
				return ast.CondExpr{Op: unaryOpFor(flag), Flag: flag, L: operand}
			}
		}
	}

	left := p.parseWord()
	if op, flag, ok := p.condBinaryOpAtCur(); ok {
		p.next()
		right := p.parseWord()
		return ast.CondExpr{Op: op, Flag: flag, L: left, R: right}
	}
	return ast.CondExpr{Op: ast.CondWord, L: left}
}

var unaryFileFlags = map[string]ast.CondOp{
	"e": ast.CondUnaryFile, "f": ast.CondUnaryFile, "d": ast.CondUnaryFile,
	"L": ast.CondUnaryFile, "h": ast.CondUnaryFile, "r": ast.CondUnaryFile,
	"w": ast.CondUnaryFile, "x": ast.CondUnaryFile, "s": ast.CondUnaryFile,
	"b": ast.CondUnaryFile, "c": ast.CondUnaryFile, "p": ast.CondUnaryFile,
	"S": ast.CondUnaryFile, "N": ast.CondUnaryFile, "u": ast.CondUnaryFile,
	"g": ast.CondUnaryFile, "k": ast.CondUnaryFile, "t": ast.CondUnaryFile,
	"O": ast.CondUnaryFile, "G": ast.CondUnaryFile,
	"z": ast.CondStrEmpty, "n": ast.CondStrNonEmpty,
	"v": ast.CondUnaryFile, "o": ast.CondUnaryFile, "R": ast.CondUnaryFile,
}

func unaryFlag(lit string) (string, bool) {
	if len(lit) == 2 && lit[0] == '-' {
		if _, ok := unaryFileFlags[lit[1:]]; ok {
			return lit[1:], true
		}
	}
	return "", false
}

func unaryOpFor(flag string) ast.CondOp {
	return unaryFileFlags[flag]
}

var binaryFileFlags = map[string]bool{"nt": true, "ot": true, "ef": true}
var numericFlags = map[string]ast.CondOp{
	"eq": ast.CondNumEq, "ne": ast.CondNumNe, "lt": ast.CondNumLt,
	"le": ast.CondNumLe, "gt": ast.CondNumGt, "ge": ast.CondNumGe,
}

// condBinaryOpAtCur inspects the current token for a binary test operator
// without consuming it.
func (p *Parser) condBinaryOpAtCur() (ast.CondOp, string, bool) {
	switch p.cur.Type {
	case token.LESS:
		return ast.CondStrLt, "", true
	case token.GREAT:
		return ast.CondStrGt, "", true
	}
	if p.cur.Type != token.WORD {
		return 0, "", false
	}
	lit := p.cur.Literal
	switch lit {
	case "=", "==":
		return ast.CondStrEq, "", true
	case "!=":
		return ast.CondStrNe, "", true
	case "=~":
		return ast.CondRegexMatch, "", true
	}
	if strings.HasPrefix(lit, "-") && len(lit) == 3 {
		flag := lit[1:]
		if binaryFileFlags[flag] {
			return ast.CondBinaryFile, flag, true
		}
		if op, ok := numericFlags[flag]; ok {
			return op, flag, true
		}
	}
	return 0, "", false
}
