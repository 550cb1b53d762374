package parser

import (
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/token"
)

// Arithmetic operator precedence, lowest to highest, mirroring the C-style
// table bash documents for $(( )) / (( )).
const (
	LOWEST_ARITH = iota
	PREC_COMMA
	PREC_ASSIGN
	PREC_TERNARY
	PREC_LOGOR
	PREC_LOGAND
	PREC_BITOR
	PREC_BITXOR
	PREC_BITAND
	PREC_EQUALITY
	PREC_RELATIONAL
	PREC_SHIFT
	PREC_ADDITIVE
	PREC_MULTIPLICATIVE
	PREC_POW
	PREC_UNARY
	PREC_POSTFIX
)

var arithBinOps = map[token.Type]struct {
	op   ast.ArithOp
	prec int
	rassoc bool
}{
	token.ARITH_COMMA:   {ast.ArithComma, PREC_COMMA, false},
	token.ARITH_ASSIGN:  {ast.ArithAssign, PREC_ASSIGN, true},
	token.ARITH_PLUSEQ:  {ast.ArithAddAssign, PREC_ASSIGN, true},
	token.ARITH_MINUSEQ: {ast.ArithSubAssign, PREC_ASSIGN, true},
	token.ARITH_STAREQ:  {ast.ArithMulAssign, PREC_ASSIGN, true},
	token.ARITH_SLASHEQ: {ast.ArithDivAssign, PREC_ASSIGN, true},
	token.ARITH_PCTEQ:   {ast.ArithModAssign, PREC_ASSIGN, true},
	token.ARITH_POWEQ:   {ast.ArithPowAssign, PREC_ASSIGN, true},
	token.ARITH_SHLEQ:   {ast.ArithShlAssign, PREC_ASSIGN, true},
	token.ARITH_SHREQ:   {ast.ArithShrAssign, PREC_ASSIGN, true},
	token.ARITH_ANDEQ:   {ast.ArithAndAssign, PREC_ASSIGN, true},
	token.ARITH_XOREQ:   {ast.ArithXorAssign, PREC_ASSIGN, true},
	token.ARITH_OREQ:    {ast.ArithOrAssign, PREC_ASSIGN, true},
	token.ARITH_OROR:    {ast.ArithLogOr, PREC_LOGOR, false},
	token.ARITH_ANDAND:  {ast.ArithLogAnd, PREC_LOGAND, false},
	token.ARITH_OR:      {ast.ArithBitOr, PREC_BITOR, false},
	token.ARITH_XOR:     {ast.ArithBitXor, PREC_BITXOR, false},
	token.ARITH_AND:     {ast.ArithBitAnd, PREC_BITAND, false},
	token.ARITH_EQ:      {ast.ArithEq, PREC_EQUALITY, false},
	token.ARITH_NE:      {ast.ArithNe, PREC_EQUALITY, false},
	token.ARITH_LT:      {ast.ArithLt, PREC_RELATIONAL, false},
	token.ARITH_LE:      {ast.ArithLe, PREC_RELATIONAL, false},
	token.ARITH_GT:      {ast.ArithGt, PREC_RELATIONAL, false},
	token.ARITH_GE:      {ast.ArithGe, PREC_RELATIONAL, false},
	token.ARITH_SHL:     {ast.ArithShl, PREC_SHIFT, false},
	token.ARITH_SHR:     {ast.ArithShr, PREC_SHIFT, false},
	token.ARITH_PLUS:    {ast.ArithAdd, PREC_ADDITIVE, false},
	token.ARITH_MINUS:   {ast.ArithSub, PREC_ADDITIVE, false},
	token.ARITH_STAR:    {ast.ArithMul, PREC_MULTIPLICATIVE, false},
	token.ARITH_SLASH:   {ast.ArithDiv, PREC_MULTIPLICATIVE, false},
	token.ARITH_PCT:     {ast.ArithMod, PREC_MULTIPLICATIVE, false},
	token.ARITH_POW:     {ast.ArithPow, PREC_POW, true},
}

// parseArithExpr parses an arithmetic expression at the given minimum
// precedence using Pratt-style precedence climbing over the token stream
// produced by the shared lexer operating in arithmetic mode.
func (p *Parser) parseArithExpr(minPrec int) *ast.ArithExpr {
	left := p.parseArithUnary()
	for {
		info, ok := arithBinOps[p.cur.Type]
		if !ok || info.prec < minPrec {
			break
		}
		if p.cur.Type == token.ARITH_QMARK {
			break
		}
		pos := p.cur.Pos
		p.next()
		nextMin := info.prec + 1
		if info.rassoc {
			nextMin = info.prec
		}
		right := p.parseArithExpr(nextMin)
		left = &ast.ArithExpr{IsBinary: true, BinOp: info.op, L: left, R: right, StartPos: pos}
	}
	if p.cur.Type == token.ARITH_QMARK && PREC_TERNARY >= minPrec {
		pos := p.cur.Pos
		p.next()
		then := p.parseArithExpr(PREC_COMMA)
		p.expectArithColon()
		els := p.parseArithExpr(PREC_TERNARY)
		left = &ast.ArithExpr{IsTernary: true, Cond: left, T: then, F: els, StartPos: pos}
	}
	return left
}

func (p *Parser) expectArithColon() {
	if p.cur.Type == token.ARITH_COLON {
		p.next()
		return
	}
	p.errorf("expected ':' in ternary expression, got %s", p.cur.Type)
}

var arithUnaryOps = map[token.Type]ast.ArithOp{
	token.ARITH_MINUS: ast.ArithNeg,
	token.ARITH_PLUS:  ast.ArithPos,
	token.ARITH_BANG:  ast.ArithNot,
	token.ARITH_TILDE: ast.ArithBitNot,
}

func (p *Parser) parseArithUnary() *ast.ArithExpr {
	pos := p.cur.Pos
	if op, ok := arithUnaryOps[p.cur.Type]; ok {
		p.next()
		x := p.parseArithExpr(PREC_UNARY)
		return &ast.ArithExpr{IsUnary: true, UnaryOp: op, X: x, StartPos: pos}
	}
	if p.cur.Type == token.ARITH_INC {
		p.next()
		x := p.parseArithExpr(PREC_UNARY)
		return &ast.ArithExpr{IsUnary: true, UnaryOp: ast.ArithPreInc, X: x, StartPos: pos}
	}
	if p.cur.Type == token.ARITH_DEC {
		p.next()
		x := p.parseArithExpr(PREC_UNARY)
		return &ast.ArithExpr{IsUnary: true, UnaryOp: ast.ArithPreDec, X: x, StartPos: pos}
	}
	return p.parseArithPostfix()
}

func (p *Parser) parseArithPostfix() *ast.ArithExpr {
	x := p.parseArithPrimary()
	for {
		switch p.cur.Type {
		case token.ARITH_INC:
			pos := p.cur.Pos
			p.next()
			x = &ast.ArithExpr{IsUnary: true, UnaryOp: ast.ArithPostInc, X: x, StartPos: pos}
		case token.ARITH_DEC:
			pos := p.cur.Pos
			p.next()
			x = &ast.ArithExpr{IsUnary: true, UnaryOp: ast.ArithPostDec, X: x, StartPos: pos}
		default:
			return x
		}
	}
}

func (p *Parser) parseArithPrimary() *ast.ArithExpr {
	pos := p.cur.Pos
	switch p.cur.Type {
	case token.ARITH_LPAREN:
		p.next()
		inner := p.parseArithExpr(PREC_COMMA)
		if p.cur.Type == token.ARITH_RPAREN {
			p.next()
		} else {
			p.errorf("expected ')' in arithmetic expression, got %s", p.cur.Type)
		}
		return inner
	case token.ARITH_NUMBER:
		lit := p.cur.Literal
		p.next()
		return &ast.ArithExpr{IsLiteral: true, Literal: parseArithNumber(lit), StartPos: pos}
	case token.ARITH_NAME:
		name := p.cur.Literal
		p.next()
		var idx *ast.ArithExpr
		if p.cur.Type == token.ARITH_LBRACK {
			p.next()
			idx = p.parseArithExpr(PREC_COMMA)
			if p.cur.Type == token.ARITH_RBRACK {
				p.next()
			} else {
				p.errorf("expected ']' in array subscript, got %s", p.cur.Type)
			}
		}
		return &ast.ArithExpr{IsVar: true, VarName: name, VarIndex: idx, StartPos: pos}
	default:
		p.errorf("unexpected token %s in arithmetic expression", p.cur.Type)
		p.next()
		return &ast.ArithExpr{IsLiteral: true, Literal: 0, StartPos: pos}
	}
}

// parseArithNumber parses a bash integer literal: decimal, 0x/0X hex, 0
// (octal), or base#value (base 2-64; above base 36 the digits are 0-9,
// a-z, A-Z, '@', '_').
func parseArithNumber(lit string) int64 {
	if i := strings.IndexByte(lit, '#'); i >= 0 {
		base, err := strconv.Atoi(lit[:i])
		if err != nil {
			base = 10
		}
		if base <= 36 {
			n, _ := strconv.ParseInt(lit[i+1:], base, 64)
			return n
		}
		const digits = "0123456789abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ@_"
		var n int64
		for _, c := range lit[i+1:] {
			d := strings.IndexRune(digits, c)
			if d < 0 || d >= base {
				return 0
			}
			n = n*int64(base) + int64(d)
		}
		return n
	}
	if strings.HasPrefix(lit, "0x") || strings.HasPrefix(lit, "0X") {
		n, _ := strconv.ParseInt(lit[2:], 16, 64)
		return n
	}
	if len(lit) > 1 && lit[0] == '0' {
		n, _ := strconv.ParseInt(lit, 8, 64)
		return n
	}
	n, _ := strconv.ParseInt(lit, 10, 64)
	return n
}
