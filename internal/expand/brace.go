package expand

import (
	"strconv"

	"github.com/hermetic-sh/hsh/internal/ast"
)

// expandBraceText implements bash's brace expansion over raw text: {a,b,c}
// alternation and {x..y[..step]} ranges, left-to-right, recursing into
// both the chosen alternative and the remainder so nested and sequential
// groups each expand. A "{...}" with no top-level comma and no valid range
// is left completely literal, matching bash's own fallback.
func expandBraceText(s string) []string {
	start := findUnescapedByte(s, '{')
	if start < 0 {
		return []string{s}
	}
	end := matchingBrace(s, start)
	if end < 0 {
		return []string{s}
	}
	prefix, body, suffix := s[:start], s[start+1:end], s[end+1:]

	items := splitTopLevelComma(body)
	if len(items) >= 2 {
		var out []string
		for _, item := range items {
			for _, combined := range expandBraceText(prefix + item + suffix) {
				out = append(out, combined)
			}
		}
		return out
	}

	if seq, ok := expandRange(body); ok {
		var out []string
		for _, item := range seq {
			for _, combined := range expandBraceText(prefix + item + suffix) {
				out = append(out, combined)
			}
		}
		return out
	}

	// Not a valid brace group: keep it literal and keep scanning past it.
	var out []string
	for _, rest := range expandBraceText(suffix) {
		out = append(out, prefix+"{"+body+"}"+rest)
	}
	return out
}

func findUnescapedByte(s string, b byte) int {
	for i := 0; i < len(s); i++ {
		if s[i] == '\\' {
			i++
			continue
		}
		if s[i] == b {
			return i
		}
	}
	return -1
}

// matchingBrace finds the index of the '}' matching the '{' at open,
// tracking nested brace depth.
func matchingBrace(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

func splitTopLevelComma(s string) []string {
	var items []string
	depth := 0
	last := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '\\':
			i++
		case '{':
			depth++
		case '}':
			depth--
		case ',':
			if depth == 0 {
				items = append(items, s[last:i])
				last = i + 1
			}
		}
	}
	items = append(items, s[last:])
	return items
}

// expandRange recognizes "x..y" and "x..y..step" where x/y are both
// integers or both single letters.
func expandRange(body string) ([]string, bool) {
	parts := splitDotDot(body)
	if len(parts) != 2 && len(parts) != 3 {
		return nil, false
	}
	step := 1
	if len(parts) == 3 {
		n, err := strconv.Atoi(parts[2])
		if err != nil || n == 0 {
			return nil, false
		}
		if n < 0 {
			n = -n
		}
		step = n
	}
	if lo, hi, ok := asInts(parts[0], parts[1]); ok {
		return intRange(lo, hi, step), true
	}
	if len(parts[0]) == 1 && len(parts[1]) == 1 {
		return charRange(parts[0][0], parts[1][0], step), true
	}
	return nil, false
}

func splitDotDot(s string) []string {
	var out []string
	last := 0
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == '.' {
			out = append(out, s[last:i])
			last = i + 2
			i++
		}
	}
	out = append(out, s[last:])
	return out
}

func asInts(a, b string) (int, int, bool) {
	lo, err1 := strconv.Atoi(a)
	hi, err2 := strconv.Atoi(b)
	return lo, hi, err1 == nil && err2 == nil
}

func intRange(lo, hi, step int) []string {
	var out []string
	if lo <= hi {
		for v := lo; v <= hi; v += step {
			out = append(out, strconv.Itoa(v))
		}
	} else {
		for v := lo; v >= hi; v -= step {
			out = append(out, strconv.Itoa(v))
		}
	}
	return out
}

func charRange(lo, hi byte, step int) []string {
	var out []string
	if lo <= hi {
		for v := int(lo); v <= int(hi); v += step {
			out = append(out, string(rune(v)))
		}
	} else {
		for v := int(lo); v >= int(hi); v -= step {
			out = append(out, string(rune(v)))
		}
	}
	return out
}

// isSimpleLiteral reports whether w is composed only of unquoted literal
// parts, the only shape brace expansion can safely operate on since it is
// a pre-parameter-expansion, text-level transform in real bash; a word
// already decomposed into parameter/quote parts by the parser has already
// passed the point where brace syntax would apply, so this package treats
// brace groups inside quotes or parameter expansions as already-decided
// literal text (a documented, narrower-than-bash approximation).
func isSimpleLiteral(w *ast.Word) (string, bool) {
	if len(w.Parts) == 0 {
		return "", false
	}
	var sb []byte
	for _, p := range w.Parts {
		if p.Kind != ast.PartLiteral {
			return "", false
		}
		sb = append(sb, p.Literal...)
	}
	return string(sb), true
}

// expandBraces returns the brace-expansion of w: a slice of one or more
// Words. Non-literal words (quotes, parameter/command/arithmetic
// substitutions present) and words with no valid brace group pass through
// unchanged.
func expandBraces(w *ast.Word, enabled bool) []*ast.Word {
	if !enabled {
		return []*ast.Word{w}
	}
	text, ok := isSimpleLiteral(w)
	if !ok || findUnescapedByte(text, '{') < 0 {
		return []*ast.Word{w}
	}
	texts := expandBraceText(text)
	if len(texts) == 1 {
		return []*ast.Word{w}
	}
	out := make([]*ast.Word, len(texts))
	for i, t := range texts {
		out[i] = &ast.Word{
			Parts:    []*ast.WordPart{{Kind: ast.PartLiteral, Literal: t}},
			StartPos: w.StartPos,
		}
	}
	return out
}
