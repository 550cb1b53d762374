// Package globmatch implements the single pattern matcher shared by
// pathname expansion and case-command pattern matching: a `tidwall/match`
// base for plain `*`/`?` patterns, while a pattern with a `[...]` bracket
// expression (POSIX named classes included) or, under extglob, a group
// operator is translated to an anchored regexp; nocasematch folds both
// sides first. tidwall/match handles only `*` and `?` on its own.
package globmatch

import (
	"regexp"
	"strings"

	"github.com/tidwall/match"
	"golang.org/x/text/cases"
)

// Options configures one Match call.
type Options struct {
	NoCaseMatch bool // shopt -s nocasematch
	ExtGlob     bool // shopt -s extglob
}

// Match reports whether name matches pattern under opts.
func Match(name, pattern string, opts Options) bool {
	if opts.NoCaseMatch {
		name = foldCase(name)
		pattern = foldCase(pattern)
	}
	pattern = translatePOSIXClasses(pattern)
	ext := hasExtGlobGroup(pattern)
	if (opts.ExtGlob && ext) || (!ext && hasBracketExpr(pattern)) {
		re, err := extGlobToRegexp(pattern)
		if err == nil {
			return re.MatchString(name)
		}
	}
	return match.Match(name, pattern)
}

// hasBracketExpr reports whether s contains a "[" with a later "]".
func hasBracketExpr(s string) bool {
	i := strings.IndexByte(s, '[')
	return i >= 0 && strings.IndexByte(s[i+1:], ']') >= 0
}

// IsPattern reports whether s contains any unescaped glob metacharacter,
// used to decide whether pathname expansion should even attempt a match
// (an argument with none is passed through literally, per §4.3 step 7).
func IsPattern(s string, extglob bool) bool {
	if match.IsPattern(s) || hasBracketExpr(s) {
		return true
	}
	if extglob && hasExtGlobGroup(s) {
		return true
	}
	return false
}

var caser = cases.Fold()

func foldCase(s string) string {
	return caser.String(s)
}

// translatePOSIXClasses rewrites "[:alpha:]"-style named classes (only
// valid inside a "[...]" bracket expression) into an equivalent plain
// character range, which the regexp translation in extglob.go then copies
// into a regexp character class.
func translatePOSIXClasses(pattern string) string {
	if !strings.Contains(pattern, "[:") {
		return pattern
	}
	var sb strings.Builder
	for i := 0; i < len(pattern); i++ {
		if strings.HasPrefix(pattern[i:], "[:") {
			end := strings.Index(pattern[i:], ":]")
			if end >= 0 {
				name := pattern[i+2 : i+end]
				if rng, ok := posixClasses[name]; ok {
					sb.WriteString(rng)
					i += end + 1
					continue
				}
			}
		}
		sb.WriteByte(pattern[i])
	}
	return sb.String()
}

var posixClasses = map[string]string{
	"alpha":  "a-zA-Z",
	"digit":  "0-9",
	"alnum":  "a-zA-Z0-9",
	"upper":  "A-Z",
	"lower":  "a-z",
	"space":  " \\t\\n\\r\\f\\v",
	"punct":  "!-/:-@\\[-`{-~",
	"blank":  " \\t",
	"cntrl":  "\\x00-\\x1f\\x7f",
	"graph":  "!-~",
	"print":  " -~",
	"xdigit": "0-9a-fA-F",
}
