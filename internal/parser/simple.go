package parser

import (
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/token"
)

// parseSimple parses a simple command: leading assignments, argv words,
// and redirections, interleaved in any order (bash allows redirections
// anywhere in a simple command, not just at the end).
func (p *Parser) parseSimple() ast.Command {
	pos := p.cur.Pos
	s := &ast.Simple{StartPos: pos}

	sawWord := false
	for {
		if r := p.tryParseRedirect(); r != nil {
			s.Redirects = append(s.Redirects, r)
			continue
		}
		if p.cur.Type == token.ASSIGN && !sawWord {
			s.Assignments = append(s.Assignments, p.parseAssignment())
			continue
		}
		if p.cur.Type == token.WORD || p.cur.Type == token.ASSIGN {
			sawWord = true
			s.Words = append(s.Words, p.parseWord())
			continue
		}
		break
	}

	if len(s.Assignments) == 0 && len(s.Words) == 0 && len(s.Redirects) == 0 {
		return nil
	}
	return s
}

func (p *Parser) parseAssignment() *ast.Assignment {
	lit := p.cur.Literal
	pos := p.cur.Pos
	eq := strings.IndexByte(lit, '=')
	name := lit[:eq]
	rest := lit[eq+1:]
	append_ := false
	var idx *ast.Word
	if strings.HasSuffix(name, "+") {
		append_ = true
		name = name[:len(name)-1]
	}
	if lb := strings.IndexByte(name, '['); lb >= 0 && strings.HasSuffix(name, "]") {
		idxSrc := name[lb+1 : len(name)-1]
		name = name[:lb]
		idx = parseWordFromLiteral(idxSrc, pos)
	}
	p.next()
	return &ast.Assignment{Name: name, Index: idx, Append: append_, Value: parseWordFromLiteral(rest, pos)}
}

// tryParseRedirect attempts to parse one redirection operator + target at
// the current position, returning nil (and leaving the cursor untouched)
// if the current token isn't a redirection operator.
func (p *Parser) tryParseRedirect() *ast.Redirect {
	fd := -1
	switch p.cur.Type {
	case token.LESS, token.GREAT, token.DGREAT, token.DLESS, token.DLESS_DASH,
		token.DLESSLESS, token.LESSAMP, token.GREATAMP, token.AMP_GREAT, token.CLOBBER:
		fd = p.cur.Fd
	default:
		return nil
	}
	kindByTok := map[token.Type]ast.RedirKind{
		token.LESS: ast.RedirIn, token.GREAT: ast.RedirOut, token.DGREAT: ast.RedirAppend,
		token.CLOBBER: ast.RedirClobber, token.DLESS: ast.RedirHeredoc,
		token.DLESS_DASH: ast.RedirHeredocTab, token.DLESSLESS: ast.RedirHereString,
		token.LESSAMP: ast.RedirDupIn, token.GREATAMP: ast.RedirDupOut, token.AMP_GREAT: ast.RedirBoth,
	}
	kind := kindByTok[p.cur.Type]
	op := p.cur.Type

	r := &ast.Redirect{Kind: kind, Fd: fd}
	if fd < 0 {
		switch kind {
		case ast.RedirIn, ast.RedirDupIn, ast.RedirHeredoc, ast.RedirHeredocTab, ast.RedirHereString:
			r.Fd = 0
		default:
			r.Fd = 1
		}
	}

	if op == token.DLESS || op == token.DLESS_DASH {
		// The delimiter is the lookahead token: register it before advancing,
		// so the lexer already knows about it when it reaches the end of the
		// line and captures the body there.
		delim := p.peek.Literal
		quoted := wordLiteralIsQuoted(delim)
		delim = stripHeredocDelimQuotes(delim)
		p.l.RegisterHeredoc(delim, op == token.DLESS_DASH, quoted, &r.HeredocBody, &r.HeredocExpand)
		p.next()
		r.Target = parseWordFromLiteral(delim, p.cur.Pos)
		p.next()
		return r
	}

	p.next()
	r.Target = p.parseWord()
	return r
}

func wordLiteralIsQuoted(lit string) bool {
	return strings.ContainsAny(lit, `'"`) || strings.Contains(lit, `\`)
}

func stripHeredocDelimQuotes(lit string) string {
	var sb strings.Builder
	inSingle, inDouble := false, false
	for i := 0; i < len(lit); i++ {
		c := lit[i]
		switch {
		case c == '\'' && !inDouble:
			inSingle = !inSingle
		case c == '"' && !inSingle:
			inDouble = !inDouble
		case c == '\\' && !inSingle && i+1 < len(lit):
			i++
			sb.WriteByte(lit[i])
		default:
			sb.WriteByte(c)
		}
	}
	return sb.String()
}
