// Package parser implements the recursive-descent grammar of §4.2: script
// → statement-list → statement (&&/|| chain) → pipeline (|/|& chain) →
// command → simple-or-compound, plus the word, arithmetic, and conditional
// subgrammars.
package parser

import (
	"fmt"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/token"
)

// ParseError is a single fatal parse-phase error with its source position.
type ParseError struct {
	Message string
	Pos     token.Position
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s: %s", e.Pos, e.Message)
}

// Parser holds the token cursor and accumulated errors for one parse.
type Parser struct {
	l *lexer.Lexer

	cur  token.Token
	peek token.Token

	errors []*ParseError

	// blockStack names the enclosing block kinds ("if", "for", "case", ...).
	// It is pushed and popped around each block; expect and errorf do not
	// read it, so error messages name only the expected and actual token.
	blockStack []string
}

// New creates a Parser reading tokens from l.
func New(l *lexer.Lexer) *Parser {
	p := &Parser{l: l}
	p.next()
	p.next()
	return p
}

// Errors returns every parse error accumulated so far.
func (p *Parser) Errors() []*ParseError { return p.errors }

// LexErrors returns the lexer's accumulated errors.
func (p *Parser) LexErrors() []lexer.LexerError { return p.l.Errors() }

func (p *Parser) next() {
	p.cur = p.peek
	p.peek = p.l.NextToken()
}

func (p *Parser) errorf(format string, args ...interface{}) {
	p.errors = append(p.errors, &ParseError{Message: fmt.Sprintf(format, args...), Pos: p.cur.Pos})
}

func (p *Parser) pushBlock(name string) { p.blockStack = append(p.blockStack, name) }
func (p *Parser) popBlock()             { p.blockStack = p.blockStack[:len(p.blockStack)-1] }

func (p *Parser) expect(t token.Type) bool {
	if p.cur.Type == t {
		p.next()
		return true
	}
	p.errorf("expected %s, got %s %q", t, p.cur.Type, p.cur.Literal)
	return false
}

// skipNewlines consumes any run of NEWLINE tokens (not ";", which
// skipTerminators also consumes) — used at grammar points where bash allows
// blank lines, e.g. after "&&", "||", "|" and in for/case headers.
func (p *Parser) skipNewlines() {
	for p.cur.Type == token.NEWLINE {
		p.next()
	}
}

func (p *Parser) skipTerminators() {
	for p.cur.Type == token.NEWLINE || p.cur.Type == token.SEMI {
		p.next()
	}
}

// ParseScript parses an entire script: a list of statements terminated by
// EOF.
func ParseScript(l *lexer.Lexer) (*ast.Script, *Parser) {
	p := New(l)
	return p.parseScript(isEOF), p
}

func isEOF(t token.Type) bool { return t == token.EOF }

// parseScript parses statements until stop(p.cur.Type) is true (EOF for the
// top level, or a closing keyword/token for compound-command bodies).
func (p *Parser) parseScript(stop func(token.Type) bool) *ast.Script {
	script := &ast.Script{StartPos: p.cur.Pos}
	p.skipTerminators()
	for !stop(p.cur.Type) && p.cur.Type != token.EOF {
		stmts := p.parseStatementChain()
		if len(stmts) == 0 {
			// parseStatementChain only returns empty on an error it has
			// already recorded; advance to avoid looping forever.
			if !stop(p.cur.Type) && p.cur.Type != token.EOF {
				p.next()
			}
			p.skipTerminators()
			continue
		}
		script.Statements = append(script.Statements, stmts...)
		p.skipTerminators()
	}
	return script
}

// parseStatementChain parses one "pipeline (&&|| pipeline)*" run and
// returns its flattened list of *ast.Statement (each still carrying the
// AndOr operator that links it to the NEXT entry, per the ast.Statement
// doc comment).
func (p *Parser) parseStatementChain() []*ast.Statement {
	first := p.parseOneStatement()
	if first == nil {
		return nil
	}
	chain := []*ast.Statement{first}
	cur := first
	for cur.AndOr != ast.SeqNone {
		p.skipNewlines()
		nxt := p.parseOneStatement()
		if nxt == nil {
			cur.AndOr = ast.SeqNone
			break
		}
		chain = append(chain, nxt)
		cur = nxt
	}
	return chain
}

func (p *Parser) parseOneStatement() *ast.Statement {
	startPos := p.cur.Pos
	negate := false
	if p.cur.Type == token.BANG {
		negate = true
		p.next()
	}
	pipeline := p.parsePipeline()
	if pipeline == nil {
		return nil
	}
	stmt := &ast.Statement{Negate: negate, Pipeline: pipeline, StartPos: startPos}
	switch p.cur.Type {
	case token.AND_AND:
		stmt.AndOr = ast.SeqAnd
		p.next()
	case token.OR_OR:
		stmt.AndOr = ast.SeqOr
		p.next()
	case token.AMP:
		stmt.Background = true
		p.next()
	case token.SEMI:
		p.next()
	}
	return stmt
}

func (p *Parser) parsePipeline() *ast.Pipeline {
	startPos := p.cur.Pos
	cmd := p.parseCommand()
	if cmd == nil {
		return nil
	}
	pl := &ast.Pipeline{StartPos: startPos}
	pl.Commands = append(pl.Commands, cmd)
	pl.PipeStderr = append(pl.PipeStderr, false)
	for p.cur.Type == token.PIPE || p.cur.Type == token.PIPEAMP {
		stderrToo := p.cur.Type == token.PIPEAMP
		pl.PipeStderr[len(pl.PipeStderr)-1] = stderrToo
		p.next()
		p.skipNewlines()
		next := p.parseCommand()
		if next == nil {
			break
		}
		pl.Commands = append(pl.Commands, next)
		pl.PipeStderr = append(pl.PipeStderr, false)
	}
	return pl
}

// parseCommand dispatches to a compound-command parser, a function
// definition, or a simple command based on the current token.
func (p *Parser) parseCommand() ast.Command {
	switch p.cur.Type {
	case token.IF:
		return p.parseIf()
	case token.FOR:
		return p.parseFor()
	case token.WHILE:
		return p.parseWhileUntil(false)
	case token.UNTIL:
		return p.parseWhileUntil(true)
	case token.CASE:
		return p.parseCase()
	case token.SELECT:
		return p.parseSelect()
	case token.LBRACE:
		return p.parseGroup()
	case token.LPAREN:
		return p.parseSubshell()
	case token.DLPAREN:
		return p.parseArithCmd()
	case token.DLBRACK:
		return p.parseConditionalCmd()
	case token.FUNCTION:
		return p.parseFunctionDef(true)
	case token.WORD:
		if p.peek.Type == token.LPAREN {
			return p.parseFunctionDef(false)
		}
	}
	return p.parseSimple()
}
