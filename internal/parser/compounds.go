package parser

import (
	"errors"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/token"
)

func bodyStop(stops ...token.Type) func(token.Type) bool {
	return func(t token.Type) bool {
		for _, s := range stops {
			if t == s {
				return true
			}
		}
		return false
	}
}

func (p *Parser) parseIf() *ast.Compound {
	pos := p.cur.Pos
	p.pushBlock("if")
	defer p.popBlock()
	c := &ast.Compound{Kind: ast.KindIf, StartPos: pos}
	p.next() // consume 'if'

	for {
		cond := p.parseScript(bodyStop(token.THEN))
		p.expect(token.THEN)
		then := p.parseScript(bodyStop(token.ELIF, token.ELSE, token.FI))
		c.Cond = append(c.Cond, cond)
		c.Then = append(c.Then, then)
		if p.cur.Type == token.ELIF {
			p.next()
			continue
		}
		break
	}
	if p.cur.Type == token.ELSE {
		p.next()
		c.Else = p.parseScript(bodyStop(token.FI))
	}
	p.expect(token.FI)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseWhileUntil(until bool) *ast.Compound {
	pos := p.cur.Pos
	kind := ast.KindWhile
	if until {
		kind = ast.KindUntil
	}
	p.pushBlock("while/until")
	defer p.popBlock()
	p.next() // consume 'while'/'until'
	c := &ast.Compound{Kind: kind, StartPos: pos}
	c.CondScript = p.parseScript(bodyStop(token.DO))
	p.expect(token.DO)
	c.Body = p.parseScript(bodyStop(token.DONE))
	p.expect(token.DONE)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseFor() *ast.Compound {
	pos := p.cur.Pos
	p.pushBlock("for")
	defer p.popBlock()
	p.next() // consume 'for'

	if p.cur.Type == token.DLPAREN {
		return p.parseCStyleFor(pos)
	}

	c := &ast.Compound{Kind: ast.KindFor, StartPos: pos}
	c.Name = p.cur.Literal
	p.expect(token.WORD)
	p.skipNewlines()
	if p.atIn() {
		p.next()
		for p.cur.Type != token.SEMI && p.cur.Type != token.NEWLINE && p.cur.Type != token.DO && p.cur.Type != token.EOF {
			c.Words = append(c.Words, p.parseWord())
		}
	}
	p.skipTerminators()
	p.expect(token.DO)
	c.Body = p.parseScript(bodyStop(token.DONE))
	p.expect(token.DONE)
	p.parseRedirects(c)
	return c
}

// atIn reports whether the current token is the "in" of a for/select/case
// header. The lexer recognizes reserved words only at command position, so
// after a loop variable or case subject "in" arrives as a plain WORD.
func (p *Parser) atIn() bool {
	return p.cur.Type == token.IN || (p.cur.Type == token.WORD && p.cur.Literal == "in")
}

func (p *Parser) parseCStyleFor(pos token.Position) *ast.Compound {
	c := &ast.Compound{Kind: ast.KindCStyleFor, StartPos: pos}
	raw := p.cur.Literal // the lexer already captured the "(( ... ))" body
	p.next()              // consume the captured '((' ... '))' header token

	ap := newArithParser(raw)
	if ap.cur.Type != token.SEMI {
		c.Init = ap.parseArithExpr(LOWEST_ARITH)
	}
	ap.expectArithSemi()
	if ap.cur.Type != token.SEMI {
		c.Test = ap.parseArithExpr(LOWEST_ARITH)
	}
	ap.expectArithSemi()
	if ap.cur.Type != token.EOF {
		c.Update = ap.parseArithExpr(LOWEST_ARITH)
	}
	p.errors = append(p.errors, ap.errors...)

	p.skipTerminators()
	p.expect(token.DO)
	c.Body = p.parseScript(bodyStop(token.DONE))
	p.expect(token.DONE)
	p.parseRedirects(c)
	return c
}

// newArithParser builds a Parser reading ARITH_* tokens from raw
// arithmetic-expression text already isolated by the main lexer.
func newArithParser(raw string) *Parser {
	return New(lexer.NewArith(raw))
}

// ParseArithString parses raw as a standalone arithmetic expression, for
// callers that only have the already-expanded text of one (an array
// subscript, a "let" operand) rather than a "(( ... ))"/"$(( ... ))" span
// the main lexer has isolated for them.
func ParseArithString(raw string) (*ast.ArithExpr, error) {
	ap := newArithParser(raw)
	expr := ap.parseArithExpr(LOWEST_ARITH)
	if len(ap.errors) > 0 {
		msgs := make([]string, len(ap.errors))
		for i, e := range ap.errors {
			msgs[i] = e.Error()
		}
		return nil, errors.New(strings.Join(msgs, "; "))
	}
	return expr, nil
}

// expectArithSemi consumes the ';' separating C-style for clauses.
func (p *Parser) expectArithSemi() {
	if p.cur.Type == token.SEMI {
		p.next()
		return
	}
	p.errorf("expected ';' in arithmetic for, got %s", p.cur.Type)
}

func (p *Parser) parseCase() *ast.Compound {
	pos := p.cur.Pos
	p.pushBlock("case")
	defer p.popBlock()
	p.next() // consume 'case'
	c := &ast.Compound{Kind: ast.KindCase, StartPos: pos}
	c.Subject = p.parseWord()
	p.skipNewlines()
	if p.atIn() {
		p.next()
	} else {
		p.expect(token.IN)
	}
	p.skipTerminators()
	for p.cur.Type != token.ESAC && p.cur.Type != token.EOF {
		arm := &ast.CaseArm{}
		if p.cur.Type == token.LPAREN {
			p.next()
		}
		arm.Patterns = append(arm.Patterns, p.parseWord())
		for p.cur.Type == token.PIPE {
			p.next()
			arm.Patterns = append(arm.Patterns, p.parseWord())
		}
		p.expect(token.RPAREN)
		p.skipTerminators()
		arm.Body = p.parseScript(bodyStop(token.SEMI_SEMI, token.SEMI_AMP, token.SEMI_SEMI_A, token.ESAC))
		switch p.cur.Type {
		case token.SEMI_SEMI:
			arm.Term = ast.TermBreak
			p.next()
		case token.SEMI_AMP:
			arm.Term = ast.TermFallThru
			p.next()
		case token.SEMI_SEMI_A:
			arm.Term = ast.TermTestNext
			p.next()
		default:
			arm.Term = ast.TermBreak
		}
		p.skipTerminators()
		c.Arms = append(c.Arms, arm)
	}
	p.expect(token.ESAC)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseSelect() *ast.Compound {
	pos := p.cur.Pos
	p.pushBlock("select")
	defer p.popBlock()
	p.next() // consume 'select'
	c := &ast.Compound{Kind: ast.KindSelect, StartPos: pos}
	c.Name = p.cur.Literal
	p.expect(token.WORD)
	p.skipNewlines()
	if p.atIn() {
		p.next()
		for p.cur.Type != token.SEMI && p.cur.Type != token.NEWLINE && p.cur.Type != token.DO && p.cur.Type != token.EOF {
			c.Words = append(c.Words, p.parseWord())
		}
	}
	p.skipTerminators()
	p.expect(token.DO)
	c.Body = p.parseScript(bodyStop(token.DONE))
	p.expect(token.DONE)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseGroup() *ast.Compound {
	pos := p.cur.Pos
	p.pushBlock("group")
	defer p.popBlock()
	p.next() // consume '{'
	c := &ast.Compound{Kind: ast.KindGroup, StartPos: pos}
	c.Inner = p.parseScript(bodyStop(token.RBRACE))
	p.expect(token.RBRACE)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseSubshell() *ast.Compound {
	pos := p.cur.Pos
	p.pushBlock("subshell")
	defer p.popBlock()
	p.next() // consume '('
	c := &ast.Compound{Kind: ast.KindSubshell, StartPos: pos}
	c.Inner = p.parseScript(bodyStop(token.RPAREN))
	p.expect(token.RPAREN)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseArithCmd() *ast.Compound {
	pos := p.cur.Pos
	raw := p.cur.Literal
	p.next() // consume the captured '((' ... '))' header token
	c := &ast.Compound{Kind: ast.KindArithmeticCmd, StartPos: pos}
	ap := newArithParser(raw)
	c.Expr = ap.parseArithExpr(LOWEST_ARITH)
	p.errors = append(p.errors, ap.errors...)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseConditionalCmd() *ast.Compound {
	pos := p.cur.Pos
	p.next() // consume '[['
	c := &ast.Compound{Kind: ast.KindConditionalCmd, StartPos: pos}
	c.CondExpr = p.parseCondOr()
	p.expect(token.DRBRACK)
	p.parseRedirects(c)
	return c
}

func (p *Parser) parseFunctionDef(keywordForm bool) ast.Command {
	pos := p.cur.Pos
	var name string
	if keywordForm {
		p.next() // consume 'function'
		name = p.cur.Literal
		p.next()
		if p.cur.Type == token.LPAREN {
			p.next()
			p.expect(token.RPAREN)
		}
	} else {
		name = p.cur.Literal
		p.next()
		p.expect(token.LPAREN)
		p.expect(token.RPAREN)
	}
	p.skipNewlines()
	body := p.parseCommand()
	compound, ok := body.(*ast.Compound)
	if !ok {
		// A function body must be a compound command; wrap a bare simple
		// command (bash itself requires a compound body, but some scripts
		// in the wild write "f() cmd;" without braces — accept it as an
		// implicit group rather than rejecting the whole parse).
		compound = &ast.Compound{Kind: ast.KindGroup, StartPos: pos}
		if body != nil {
			compound.Inner = &ast.Script{Statements: []*ast.Statement{{
				Pipeline: &ast.Pipeline{Commands: []ast.Command{body}, PipeStderr: []bool{false}, StartPos: pos},
				StartPos: pos,
			}}, StartPos: pos}
		}
	}
	return &ast.FunctionDef{Name: name, Body: compound, StartPos: pos}
}

// parseRedirects consumes any trailing redirections after a compound
// command's closing keyword/token (e.g. "done > out.log", "{ ...; } 2>&1").
func (p *Parser) parseRedirects(c *ast.Compound) {
	for {
		r := p.tryParseRedirect()
		if r == nil {
			return
		}
		c.Redirects = append(c.Redirects, r)
	}
}
