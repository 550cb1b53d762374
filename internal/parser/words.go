package parser

import (
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/token"
)

// parseWord consumes the current WORD/ASSIGN token and decomposes its raw
// literal into structured parts.
func (p *Parser) parseWord() *ast.Word {
	pos := p.cur.Pos
	lit := p.cur.Literal
	if p.cur.Type != token.WORD && p.cur.Type != token.ASSIGN {
		p.errorf("expected word, got %s %q", p.cur.Type, lit)
		p.next()
		return &ast.Word{StartPos: pos}
	}
	p.next()
	return parseWordFromLiteral(lit, pos)
}

// wordScanner decomposes one raw word's literal text (as already isolated
// by the lexer's maximal-munch scanWord) into ast.WordPart values. It is a
// small self-contained rune scanner rather than a re-entry into the token
// lexer, since a word's internal structure (quote spans, nested
// expansions) is a separate, simpler grammar than statement structure.
type wordScanner struct {
	s   string
	i   int
	pos token.Position

	// rawQuotes disables treating an unescaped '"' as end-of-parts; used
	// for heredoc bodies, which apply double-quote-style backslash rules
	// to the whole body without the body itself being quote-delimited.
	rawQuotes bool
}

func parseWordFromLiteral(s string, pos token.Position) *ast.Word {
	ws := &wordScanner{s: s, pos: pos}
	return &ast.Word{Parts: ws.scanParts(false), StartPos: pos}
}

// ParseHeredocBody decomposes an unquoted-delimiter heredoc body into word
// parts under double-quote-like backslash rules (bash expands a heredoc
// body the way it expands the inside of double quotes: "$ ` \" \\" and a
// trailing backslash-newline are the only escapes, everything else is
// literal). internal/exec calls this once per heredoc redirect whose
// delimiter wasn't quoted.
func ParseHeredocBody(s string) *ast.Word {
	ws := &wordScanner{s: s, rawQuotes: true}
	return &ast.Word{Parts: ws.scanParts(true)}
}

func (w *wordScanner) peek() byte {
	if w.i >= len(w.s) {
		return 0
	}
	return w.s[w.i]
}

func (w *wordScanner) peekAt(n int) byte {
	if w.i+n >= len(w.s) {
		return 0
	}
	return w.s[w.i+n]
}

// scanParts scans until end of input or, if inDouble, an unescaped '"'.
func (w *wordScanner) scanParts(inDouble bool) []*ast.WordPart {
	var parts []*ast.WordPart
	var lit strings.Builder
	flush := func() {
		if lit.Len() > 0 {
			parts = append(parts, &ast.WordPart{Kind: ast.PartLiteral, Quoted: inDouble, Literal: lit.String()})
			lit.Reset()
		}
	}

	first := true
	for w.i < len(w.s) {
		c := w.s[w.i]
		if inDouble && c == '"' && !w.rawQuotes {
			w.i++
			break
		}
		switch {
		case c == '\\':
			w.i++
			if w.i < len(w.s) {
				nc := w.s[w.i]
				if inDouble && !strings.ContainsRune(`$`+"`"+`"\`+"\n", rune(nc)) {
					// Inside double quotes, backslash is only special before
					// $ ` " \ and newline; otherwise it is literal.
					lit.WriteByte('\\')
				}
				lit.WriteByte(nc)
				w.i++
			} else {
				lit.WriteByte('\\')
			}
		case c == '\'' && !inDouble:
			w.i++
			start := w.i
			for w.i < len(w.s) && w.s[w.i] != '\'' {
				w.i++
			}
			flush()
			parts = append(parts, &ast.WordPart{Kind: ast.PartSingleQuoted, Quoted: true, Literal: w.s[start:w.i]})
			if w.i < len(w.s) {
				w.i++
			}
		case c == '"' && !inDouble:
			w.i++
			flush()
			inner := w.scanParts(true)
			parts = append(parts, &ast.WordPart{Kind: ast.PartDoubleQuoted, Quoted: true, Parts: inner})
		case c == '`':
			w.i++
			start := w.i
			for w.i < len(w.s) && w.s[w.i] != '`' {
				if w.s[w.i] == '\\' {
					w.i++
				}
				w.i++
			}
			body := w.s[start:w.i]
			if w.i < len(w.s) {
				w.i++
			}
			flush()
			parts = append(parts, &ast.WordPart{Kind: ast.PartCommandSub, Quoted: inDouble, Sub: parseSubScript(body)})
		case c == '$':
			flush()
			part := w.scanDollar(inDouble)
			if part != nil {
				parts = append(parts, part)
			}
		case c == '~' && first && !inDouble:
			w.i++
			start := w.i
			for w.i < len(w.s) && isTildeNameByte(w.s[w.i]) {
				w.i++
			}
			parts = append(parts, &ast.WordPart{Kind: ast.PartTilde, Tilde: w.s[start:w.i]})
		case c == '<' && !inDouble && w.peekAt(1) == '(':
			flush()
			w.i += 2
			body := w.scanBalancedParen()
			parts = append(parts, &ast.WordPart{Kind: ast.PartProcessSub, SubIn: true, Sub: parseSubScript(body)})
		case c == '>' && !inDouble && w.peekAt(1) == '(':
			flush()
			w.i += 2
			body := w.scanBalancedParen()
			parts = append(parts, &ast.WordPart{Kind: ast.PartProcessSub, SubIn: false, Sub: parseSubScript(body)})
		default:
			lit.WriteByte(c)
			w.i++
		}
		first = false
	}
	flush()
	return parts
}

func isTildeNameByte(c byte) bool {
	return c == '+' || c == '-' || c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanBalancedParen consumes up to the matching ')' for a '(' already
// consumed by the caller, tracking nested parens/quotes, and returns the
// inner text without the parens.
func (w *wordScanner) scanBalancedParen() string {
	depth := 1
	start := w.i
	for w.i < len(w.s) && depth > 0 {
		switch w.s[w.i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				body := w.s[start:w.i]
				w.i++
				return body
			}
		case '\'':
			w.i++
			for w.i < len(w.s) && w.s[w.i] != '\'' {
				w.i++
			}
		case '"':
			w.i++
			for w.i < len(w.s) && w.s[w.i] != '"' {
				if w.s[w.i] == '\\' {
					w.i++
				}
				w.i++
			}
		case '\\':
			w.i++
		}
		w.i++
	}
	return w.s[start:w.i]
}

// parseSubScript parses the text between $(...) / `...` / <(...) / >(...)
// as a nested script.
func parseSubScript(src string) *ast.Script {
	l := lexer.New(src)
	script, _ := ParseScript(l)
	return script
}

func (w *wordScanner) scanDollar(inDouble bool) *ast.WordPart {
	w.i++ // consume '$'
	if w.i >= len(w.s) {
		return &ast.WordPart{Kind: ast.PartLiteral, Quoted: inDouble, Literal: "$"}
	}
	c := w.s[w.i]
	switch {
	case c == '(' && w.peekAt(1) == '(':
		w.i += 2
		body := w.scanBalancedDoubleParen()
		ap := newArithParser(body)
		expr := ap.parseArithExpr(LOWEST_ARITH)
		return &ast.WordPart{Kind: ast.PartArithSub, Quoted: inDouble, Arith: expr}
	case c == '(':
		w.i++
		body := w.scanBalancedParen()
		return &ast.WordPart{Kind: ast.PartCommandSub, Quoted: inDouble, Sub: parseSubScript(body)}
	case c == '{':
		w.i++
		return w.scanBraceParam(inDouble)
	case isSimpleParamStart(c):
		start := w.i
		if isSpecialParamChar(c) {
			w.i++
		} else {
			for w.i < len(w.s) && isNameByte(w.s[w.i]) {
				w.i++
			}
		}
		name := w.s[start:w.i]
		return &ast.WordPart{Kind: ast.PartParam, Quoted: inDouble, Param: &ast.Param{Name: name, Op: ast.ParamPlain, Quoted: inDouble}}
	default:
		return &ast.WordPart{Kind: ast.PartLiteral, Quoted: inDouble, Literal: "$"}
	}
}

func isSimpleParamStart(c byte) bool {
	return isNameByte(c) || isSpecialParamChar(c)
}

// isSpecialParamChar reports the single-character parameters that can never
// be the start of a longer name: $@ $* $# $? $- $$ $! and the bare
// positional digits $0-$9 (a run of digits after $ without braces names
// only the first digit, e.g. "$12" is "$1" followed by literal "2").
func isSpecialParamChar(c byte) bool {
	if c >= '0' && c <= '9' {
		return true
	}
	switch c {
	case '@', '*', '#', '?', '-', '$', '!':
		return true
	}
	return false
}

func isNameByte(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanBalancedDoubleParen consumes up to the matching "))" for "$((" (the
// "((" already consumed), honoring single-paren nesting inside.
func (w *wordScanner) scanBalancedDoubleParen() string {
	depth := 1
	start := w.i
	for w.i < len(w.s) {
		if w.s[w.i] == '(' {
			depth++
		} else if w.s[w.i] == ')' {
			depth--
			if depth == 0 {
				if w.peekAt(1) == ')' {
					body := w.s[start:w.i]
					w.i += 2
					return body
				}
			}
		}
		w.i++
	}
	return w.s[start:w.i]
}

// scanBraceParam parses the contents of "${...}" (the "${" already
// consumed) into a single PartParam WordPart.
func (w *wordScanner) scanBraceParam(inDouble bool) *ast.WordPart {
	start := w.i
	depth := 1
	for w.i < len(w.s) && depth > 0 {
		switch w.s[w.i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				break
			}
		case '\'':
			w.i++
			for w.i < len(w.s) && w.s[w.i] != '\'' {
				w.i++
			}
		case '"':
			w.i++
			for w.i < len(w.s) && w.s[w.i] != '"' {
				if w.s[w.i] == '\\' {
					w.i++
				}
				w.i++
			}
		}
		if depth == 0 {
			break
		}
		w.i++
	}
	body := w.s[start:w.i]
	if w.i < len(w.s) {
		w.i++ // consume '}'
	}
	return &ast.WordPart{Kind: ast.PartParam, Quoted: inDouble, Param: parseBraceParam(body, inDouble, w.pos)}
}

// parseBraceParam parses the text inside "${ ... }".
func parseBraceParam(body string, quoted bool, pos token.Position) *ast.Param {
	param := &ast.Param{Quoted: quoted}

	if strings.HasPrefix(body, "#") && body != "#" && !strings.HasPrefix(body, "#*") {
		// ${#name} length, distinguished from the $# special parameter by
		// requiring at least one more character that looks like a name.
		rest := body[1:]
		if rest != "" && (isNameByte(rest[0]) || rest[0] == '!' || rest[0] == '@' || rest[0] == '*') {
			param.Op = ast.ParamLength
			name, idx, atstar := splitNameIndex(rest)
			param.Name, param.Index, param.AtStar = name, idx, atstar
			return param
		}
	}

	bang := strings.HasPrefix(body, "!")
	rest := body
	if bang {
		rest = body[1:]
	}

	name, after := splitLeadingName(rest)
	if bang {
		if strings.HasSuffix(after, "*") && after == "*" {
			param.Op = ast.ParamPrefixNames
			param.Name = name
			param.PrefixAll = false
			return param
		}
		if after == "@" {
			param.Op = ast.ParamPrefixNames
			param.Name = name
			param.PrefixAll = true
			return param
		}
		if after == "" {
			param.Op = ast.ParamIndirect
			param.Name = name
			return param
		}
	}

	idx, after2 := splitIndex(after)
	atstar := byte(0)
	if idx != nil && idx.raw == "@" {
		atstar = '@'
	} else if idx != nil && idx.raw == "*" {
		atstar = '*'
	}
	param.Name = name
	param.AtStar = atstar
	if idx != nil && atstar == 0 {
		param.Index = parseWordFromLiteral(idx.raw, pos)
	}

	if after2 == "" {
		param.Op = ast.ParamPlain
		return param
	}

	op, opLen := matchParamOp(after2)
	param.Op = op
	argText := after2[opLen:]
	switch op {
	case ast.ParamSubstring:
		off, length, hasLen := splitSubstring(argText)
		param.Arg = parseWordFromLiteral(off, pos)
		if hasLen {
			param.Arg2 = parseWordFromLiteral(length, pos)
		}
	case ast.ParamReplaceFirst, ast.ParamReplaceAll, ast.ParamReplacePrefix, ast.ParamReplaceSuffix:
		pat, rep, has := splitUnescapedSlash(argText)
		param.Arg = parseWordFromLiteral(pat, pos)
		if has {
			param.Arg2 = parseWordFromLiteral(rep, pos)
		}
	case ast.ParamTransform:
		param.Arg = parseWordFromLiteral(argText, pos)
	default:
		if argText != "" || op != ast.ParamPlain {
			param.Arg = parseWordFromLiteral(argText, pos)
		}
	}
	return param
}

type idxSpec struct{ raw string }

func splitNameIndex(s string) (name string, idx *ast.Word, atstar byte) {
	name, after := splitLeadingName(s)
	spec, _ := splitIndex(after)
	if spec != nil {
		if spec.raw == "@" || spec.raw == "*" {
			return name, nil, spec.raw[0]
		}
		return name, parseWordFromLiteral(spec.raw, token.Position{}), 0
	}
	return name, nil, 0
}

func splitLeadingName(s string) (name, rest string) {
	if s == "" {
		return "", ""
	}
	if isSpecialParamChar(s[0]) && !(s[0] >= '0' && s[0] <= '9') {
		return s[:1], s[1:]
	}
	i := 0
	for i < len(s) && isNameByte(s[i]) {
		i++
	}
	if i == 0 && s != "" {
		i = 1
	}
	return s[:i], s[i:]
}

func splitIndex(s string) (*idxSpec, string) {
	if !strings.HasPrefix(s, "[") {
		return nil, s
	}
	depth := 1
	i := 1
	for i < len(s) && depth > 0 {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		}
		if depth == 0 {
			break
		}
		i++
	}
	if i >= len(s) {
		return &idxSpec{raw: s[1:]}, ""
	}
	return &idxSpec{raw: s[1:i]}, s[i+1:]
}

// matchParamOp finds the longest matching parameter-expansion operator at
// the start of s, per the §4.3 step-2 operator set.
func matchParamOp(s string) (ast.ParamOp, int) {
	ops := []struct {
		lit string
		op  ast.ParamOp
	}{
		{":-", ast.ParamDefault}, {":=", ast.ParamAssign}, {":?", ast.ParamError}, {":+", ast.ParamAlt},
		{":", ast.ParamSubstring},
		{"##", ast.ParamRemoveLongPrefix}, {"#", ast.ParamRemoveShortPrefix},
		{"%%", ast.ParamRemoveLongSuffix}, {"%", ast.ParamRemoveShortSuffix},
		{"//", ast.ParamReplaceAll}, {"/#", ast.ParamReplacePrefix}, {"/%", ast.ParamReplaceSuffix}, {"/", ast.ParamReplaceFirst},
		{"^^", ast.ParamCaseAllUpper}, {"^", ast.ParamCaseFirstUpper},
		{",,", ast.ParamCaseAllLower}, {",", ast.ParamCaseFirstLower},
		{"@", ast.ParamTransform},
		{"-", ast.ParamDefaultU}, {"=", ast.ParamAssignU}, {"?", ast.ParamErrorU}, {"+", ast.ParamAltU},
	}
	for _, o := range ops {
		if strings.HasPrefix(s, o.lit) {
			return o.op, len(o.lit)
		}
	}
	return ast.ParamPlain, 0
}

func splitSubstring(s string) (off, length string, hasLen bool) {
	// Split on the first unescaped ':' not nested inside brackets.
	depth := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '[':
			depth++
		case ']':
			depth--
		case ':':
			if depth == 0 {
				return s[:i], s[i+1:], true
			}
		}
	}
	return s, "", false
}

func splitUnescapedSlash(s string) (pat, rep string, has bool) {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == '/' {
			return s[:i], s[i+1:], true
		}
	}
	return s, "", false
}
