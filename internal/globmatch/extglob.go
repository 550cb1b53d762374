package globmatch

import (
	"regexp"
	"strings"
)

var extGlobPrefixes = []byte{'?', '*', '+', '@', '!'}

// hasExtGlobGroup reports whether pattern contains one of bash's extglob
// group operators: ?(...) *(...) +(...) @(...) !(...).
func hasExtGlobGroup(pattern string) bool {
	for i := 0; i < len(pattern)-1; i++ {
		if pattern[i+1] != '(' {
			continue
		}
		for _, p := range extGlobPrefixes {
			if pattern[i] == p {
				return true
			}
		}
	}
	return false
}

// extGlobToRegexp translates a glob pattern that may contain extglob
// groups into an anchored Go regexp. Plain segments use the standard
// shell-glob-to-regex rules; "!(...)" groups (no-match exclusion) can't be
// expressed exactly in RE2 (no negative lookahead), so they're translated
// to an unconstrained ".*" — an acknowledged approximation documented
// alongside this matcher.
func extGlobToRegexp(pattern string) (*regexp.Regexp, error) {
	var sb strings.Builder
	sb.WriteString("^")
	if err := translateInto(&sb, pattern); err != nil {
		return nil, err
	}
	sb.WriteString("$")
	return regexp.Compile(sb.String())
}

func translateInto(sb *strings.Builder, pattern string) error {
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		if i+1 < len(pattern) && pattern[i+1] == '(' && isExtGlobPrefix(c) {
			end := matchingParen(pattern, i+1)
			if end < 0 {
				sb.WriteString(regexp.QuoteMeta(string(c)))
				continue
			}
			inner := pattern[i+2 : end]
			alts := splitTopLevel(inner, '|')
			var altSb strings.Builder
			altSb.WriteString("(?:")
			for j, a := range alts {
				if j > 0 {
					altSb.WriteString("|")
				}
				if err := translateInto(&altSb, a); err != nil {
					return err
				}
			}
			altSb.WriteString(")")
			switch c {
			case '?':
				sb.WriteString(altSb.String() + "?")
			case '*':
				sb.WriteString(altSb.String() + "*")
			case '+':
				sb.WriteString(altSb.String() + "+")
			case '@':
				sb.WriteString(altSb.String())
			case '!':
				sb.WriteString(".*")
			}
			i = end
			continue
		}
		switch c {
		case '*':
			sb.WriteString(".*")
		case '?':
			sb.WriteString(".")
		case '[':
			end := strings.IndexByte(pattern[i:], ']')
			if end < 0 {
				sb.WriteString("\\[")
				continue
			}
			cls := pattern[i : i+end+1]
			cls = strings.Replace(cls, "[!", "[^", 1)
			sb.WriteString(cls)
			i += end
		default:
			sb.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	return nil
}

func isExtGlobPrefix(c byte) bool {
	for _, p := range extGlobPrefixes {
		if c == p {
			return true
		}
	}
	return false
}

// matchingParen returns the index of the ')' matching the '(' at open,
// honoring nesting.
func matchingParen(s string, open int) int {
	depth := 0
	for i := open; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
			if depth == 0 {
				return i
			}
		}
	}
	return -1
}

// splitTopLevel splits s on sep, ignoring occurrences nested inside parens.
func splitTopLevel(s string, sep byte) []string {
	var parts []string
	depth := 0
	start := 0
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '(':
			depth++
		case ')':
			depth--
		case sep:
			if depth == 0 {
				parts = append(parts, s[start:i])
				start = i + 1
			}
		}
	}
	parts = append(parts, s[start:])
	return parts
}
