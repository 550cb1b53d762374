package expand

import (
	"sort"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/globmatch"
	"github.com/hermetic-sh/hsh/internal/state"
)

// expandParam resolves one ${...}/$name parameter expansion. A non-nil
// splitWords return means the parameter denotes multiple fields (an
// unquoted/quoted "$@"/array "[@]"/"[*]" expansion); callers splice those
// in as independent fields rather than treating the return as one string.
func (e *Expander) expandParam(p *ast.Param) (string, []string, error) {
	switch p.Op {
	case ast.ParamIndirect:
		target, _, err := e.resolveBase(p)
		if err != nil {
			return "", nil, err
		}
		inner := &ast.Param{Name: target, Op: ast.ParamPlain}
		return e.expandParam(inner)
	case ast.ParamPrefixNames:
		var names []string
		e.Store.Scope().Range(func(name string, c *state.Cell) bool {
			if strings.HasPrefix(name, p.Name) {
				names = append(names, name)
			}
			return true
		})
		sort.Strings(names)
		sep := " "
		if p.PrefixAll {
			return "", names, nil
		}
		return strings.Join(names, sep), nil, nil
	case ast.ParamLength:
		v, words, err := e.resolveBase(p)
		if err != nil {
			return "", nil, err
		}
		if words != nil {
			return strconv.Itoa(len(words)), nil, nil
		}
		return strconv.Itoa(len(v)), nil, nil
	}

	val, words, err := e.resolveBase(p)
	if err != nil {
		return "", nil, err
	}
	switch p.Op {
	case ast.ParamPlain:
		return val, words, nil
	case ast.ParamDefault, ast.ParamDefaultU:
		if isUnsetOrEmptyFor(p.Op, val, words, e.hasValue(p)) {
			return e.expandArgText(p.Arg)
		}
		return val, words, nil
	case ast.ParamAssign, ast.ParamAssignU:
		if isUnsetOrEmptyFor(p.Op, val, words, e.hasValue(p)) {
			s, _, err := e.expandArgText(p.Arg)
			if err != nil {
				return "", nil, err
			}
			e.Store.Set(p.Name, state.NewScalarCell(s))
			return s, nil, nil
		}
		return val, words, nil
	case ast.ParamError, ast.ParamErrorU:
		if isUnsetOrEmptyFor(p.Op, val, words, e.hasValue(p)) {
			msg, _, _ := e.expandArgText(p.Arg)
			if msg == "" {
				msg = p.Name + ": parameter null or not set"
			}
			return "", nil, &Error{p.Name + ": " + msg}
		}
		return val, words, nil
	case ast.ParamAlt, ast.ParamAltU:
		if !isUnsetOrEmptyFor(p.Op, val, words, e.hasValue(p)) {
			return e.expandArgText(p.Arg)
		}
		return "", nil, nil
	case ast.ParamSubstring:
		return e.substring(p, val, words)
	case ast.ParamRemoveShortPrefix, ast.ParamRemoveLongPrefix,
		ast.ParamRemoveShortSuffix, ast.ParamRemoveLongSuffix:
		pat, _, err := e.expandArgText(p.Arg)
		if err != nil {
			return "", nil, err
		}
		return removeAffix(val, pat, p.Op, e.globOpts()), nil, nil
	case ast.ParamReplaceFirst, ast.ParamReplaceAll, ast.ParamReplacePrefix, ast.ParamReplaceSuffix:
		pat, _, err := e.expandArgText(p.Arg)
		if err != nil {
			return "", nil, err
		}
		rep := ""
		if p.Arg2 != nil {
			rep, _, err = e.expandArgText(p.Arg2)
			if err != nil {
				return "", nil, err
			}
		}
		return replacePattern(val, pat, rep, p.Op, e.globOpts()), nil, nil
	case ast.ParamCaseFirstUpper, ast.ParamCaseAllUpper, ast.ParamCaseFirstLower, ast.ParamCaseAllLower:
		pat := ""
		if p.Arg != nil {
			pat, _, _ = e.expandArgText(p.Arg)
		}
		return transformCase(val, p.Op, pat, e.globOpts()), nil, nil
	case ast.ParamTransform:
		op := ""
		if p.Arg != nil {
			op, _, _ = e.expandArgText(p.Arg)
		}
		return e.transformAt(p, val, words, op)
	}
	return val, words, nil
}

func (e *Expander) hasValue(p *ast.Param) bool {
	_, ok := e.Store.Get(p.Name)
	return ok
}

func isUnsetOrEmptyFor(op ast.ParamOp, val string, words []string, isSet bool) bool {
	colonForm := op == ast.ParamDefault || op == ast.ParamAssign || op == ast.ParamError || op == ast.ParamAlt
	if !isSet {
		return true
	}
	if colonForm {
		return val == "" && len(words) == 0
	}
	return false
}

func (e *Expander) expandArgText(w *ast.Word) (string, []string, error) {
	if w == nil {
		return "", nil, nil
	}
	s, err := e.WordNoSplit(w)
	return s, nil, err
}

func (e *Expander) globOpts() globmatch.Options {
	return globmatch.Options{NoCaseMatch: e.NoCaseMatch, ExtGlob: e.ExtGlob}
}

// resolveBase fetches the raw (pre-operator) value of a parameter
// reference: special parameters, positional parameters, scalar variables,
// or one/all elements of an indexed/associative array.
func (e *Expander) resolveBase(p *ast.Param) (string, []string, error) {
	switch p.Name {
	case "@", "*":
		if p.AtStar == '@' || p.Name == "@" {
			return strings.Join(e.Store.Positional, " "), append([]string(nil), e.Store.Positional...), nil
		}
		return strings.Join(e.Store.Positional, e.firstIFS()), nil, nil
	case "#":
		return strconv.Itoa(len(e.Store.Positional)), nil, nil
	case "?":
		return strconv.Itoa(e.Store.LastExit), nil, nil
	case "$":
		return "1", nil, nil
	case "!":
		return strconv.Itoa(e.Store.LastBg), nil, nil
	case "-":
		return "", nil, nil
	case "0":
		return e.Store.ScriptName, nil, nil
	}
	if isAllDigits(p.Name) {
		n, _ := strconv.Atoi(p.Name)
		if n == 0 {
			return e.Store.ScriptName, nil, nil
		}
		if n-1 < len(e.Store.Positional) {
			return e.Store.Positional[n-1], nil, nil
		}
		return "", nil, nil
	}

	cell, ok := e.Store.Get(p.Name)
	if !ok {
		if e.Store.Options.Nounset {
			return "", nil, &Error{p.Name + ": unbound variable"}
		}
		return "", nil, nil
	}

	if p.Index != nil {
		idxText, err := e.WordNoSplit(p.Index)
		if err != nil {
			return "", nil, err
		}
		if p.AtStar == '@' || p.AtStar == '*' {
			return e.arrayWholeValue(cell, p.AtStar)
		}
		switch cell.Kind {
		case state.KindAssoc:
			return cell.Assoc[idxText], nil, nil
		case state.KindIndexed:
			n, _ := strconv.ParseInt(idxText, 10, 64)
			return cell.Indexed[n], nil, nil
		default:
			return cell.Scalar, nil, nil
		}
	}
	if p.AtStar == '@' || p.AtStar == '*' {
		return e.arrayWholeValue(cell, p.AtStar)
	}
	return cell.AsScalar(), nil, nil
}

func (e *Expander) arrayWholeValue(cell *state.Cell, atStar byte) (string, []string, error) {
	var vals []string
	switch cell.Kind {
	case state.KindIndexed:
		keys := make([]int64, 0, len(cell.Indexed))
		for k := range cell.Indexed {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			vals = append(vals, cell.Indexed[k])
		}
	case state.KindAssoc:
		keys := make([]string, 0, len(cell.Assoc))
		for k := range cell.Assoc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			vals = append(vals, cell.Assoc[k])
		}
	default:
		vals = []string{cell.Scalar}
	}
	if atStar == '@' {
		return strings.Join(vals, " "), vals, nil
	}
	return strings.Join(vals, e.firstIFS()), nil, nil
}

func (e *Expander) firstIFS() string {
	ifs := e.Store.IFS()
	if ifs == "" {
		return ""
	}
	return ifs[:1]
}

func isAllDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

func (e *Expander) substring(p *ast.Param, val string, words []string) (string, []string, error) {
	offText, _, err := e.expandArgText(p.Arg)
	if err != nil {
		return "", nil, err
	}
	off, _ := strconv.Atoi(strings.TrimSpace(offText))
	if words != nil {
		return substringWords(words, off, p.Arg2, e)
	}
	runes := []rune(val)
	n := len(runes)
	if off < 0 {
		off += n
	}
	if off < 0 {
		off = 0
	}
	if off > n {
		off = n
	}
	length := n - off
	if p.Arg2 != nil {
		lenText, _, err := e.expandArgText(p.Arg2)
		if err != nil {
			return "", nil, err
		}
		l, _ := strconv.Atoi(strings.TrimSpace(lenText))
		if l < 0 {
			l = n - off + l
		}
		if l < 0 {
			l = 0
		}
		length = l
	}
	end := off + length
	if end > n {
		end = n
	}
	if end < off {
		end = off
	}
	return string(runes[off:end]), nil, nil
}

func substringWords(words []string, off int, lenWord *ast.Word, e *Expander) (string, []string, error) {
	n := len(words)
	if off < 0 {
		off += n
	}
	if off < 0 {
		off = 0
	}
	if off > n {
		off = n
	}
	length := n - off
	if lenWord != nil {
		lenText, _, err := e.expandArgText(lenWord)
		if err != nil {
			return "", nil, err
		}
		l, _ := strconv.Atoi(strings.TrimSpace(lenText))
		if l < 0 {
			l = n - off + l
		}
		if l < 0 {
			l = 0
		}
		length = l
	}
	end := off + length
	if end > n {
		end = n
	}
	if end < off {
		end = off
	}
	sub := words[off:end]
	return strings.Join(sub, " "), sub, nil
}

// removeAffix implements "#"/"##"/"%"/"%%": shortest/longest-match
// prefix/suffix removal against a glob pattern.
func removeAffix(s, pattern string, op ast.ParamOp, opts globmatch.Options) string {
	switch op {
	case ast.ParamRemoveShortPrefix:
		for k := 0; k <= len(s); k++ {
			if globmatch.Match(s[:k], pattern, opts) {
				return s[k:]
			}
		}
	case ast.ParamRemoveLongPrefix:
		for k := len(s); k >= 0; k-- {
			if globmatch.Match(s[:k], pattern, opts) {
				return s[k:]
			}
		}
	case ast.ParamRemoveShortSuffix:
		for k := 0; k <= len(s); k++ {
			if globmatch.Match(s[len(s)-k:], pattern, opts) {
				return s[:len(s)-k]
			}
		}
	case ast.ParamRemoveLongSuffix:
		for k := len(s); k >= 0; k-- {
			if globmatch.Match(s[len(s)-k:], pattern, opts) {
				return s[:len(s)-k]
			}
		}
	}
	return s
}

// replacePattern implements "/pat/rep" (first), "//pat/rep" (all),
// "/#pat/rep" (anchored prefix), "/%pat/rep" (anchored suffix).
func replacePattern(s, pattern, rep string, op ast.ParamOp, opts globmatch.Options) string {
	switch op {
	case ast.ParamReplacePrefix:
		if n := longestMatchAt(s, 0, pattern, opts); n >= 0 {
			return rep + s[n:]
		}
		return s
	case ast.ParamReplaceSuffix:
		for start := 0; start <= len(s); start++ {
			if globmatch.Match(s[start:], pattern, opts) {
				return s[:start] + rep
			}
		}
		return s
	case ast.ParamReplaceFirst:
		for pos := 0; pos <= len(s); pos++ {
			if n := longestMatchAt(s, pos, pattern, opts); n >= 0 {
				return s[:pos] + rep + s[pos+n:]
			}
		}
		return s
	case ast.ParamReplaceAll:
		var sb strings.Builder
		pos := 0
		for pos <= len(s) {
			if n := longestMatchAt(s, pos, pattern, opts); n >= 0 {
				sb.WriteString(rep)
				if n == 0 {
					if pos < len(s) {
						sb.WriteByte(s[pos])
					}
					pos++
				} else {
					pos += n
				}
				continue
			}
			if pos < len(s) {
				sb.WriteByte(s[pos])
			}
			pos++
		}
		return sb.String()
	}
	return s
}

// longestMatchAt returns the length of the longest s[pos:pos+k] that
// matches pattern exactly, or -1 if none does.
func longestMatchAt(s string, pos int, pattern string, opts globmatch.Options) int {
	if pos > len(s) {
		return -1
	}
	for k := len(s) - pos; k >= 0; k-- {
		if globmatch.Match(s[pos:pos+k], pattern, opts) {
			return k
		}
	}
	return -1
}

func transformCase(s string, op ast.ParamOp, pattern string, opts globmatch.Options) string {
	apply := func(r rune) string {
		switch op {
		case ast.ParamCaseFirstUpper, ast.ParamCaseAllUpper:
			return cases.Upper(language.Und).String(string(r))
		default:
			return cases.Lower(language.Und).String(string(r))
		}
	}
	all := op == ast.ParamCaseAllUpper || op == ast.ParamCaseAllLower
	runes := []rune(s)
	var sb strings.Builder
	for i, r := range runes {
		ch := string(r)
		matches := pattern == "" || globmatch.Match(ch, pattern, opts)
		if matches && (all || i == 0) {
			sb.WriteString(apply(r))
		} else {
			sb.WriteString(ch)
		}
	}
	return sb.String()
}

// transformAt implements the "${x@op}" transform family.
func (e *Expander) transformAt(p *ast.Param, val string, words []string, op string) (string, []string, error) {
	switch op {
	case "Q":
		return shellQuote(val), nil, nil
	case "E":
		return expandEchoEscapes(val), nil, nil
	case "P":
		return val, nil, nil
	case "A":
		return "declare -- " + p.Name + "=" + shellQuote(val), nil, nil
	case "L":
		return cases.Lower(language.Und).String(val), nil, nil
	case "U":
		return cases.Upper(language.Und).String(val), nil, nil
	case "K":
		cell, _ := e.Store.Get(p.Name)
		return declareKeyValues(cell, true), nil, nil
	case "k":
		cell, _ := e.Store.Get(p.Name)
		return declareKeyValues(cell, false), nil, nil
	}
	return "", nil, &Error{"bad substitution: ${" + p.Name + "@" + op + "}"}
}

func shellQuote(s string) string {
	return "'" + strings.ReplaceAll(s, "'", `'\''`) + "'"
}

// expandEchoEscapes is a small local copy of internal/builtin's escape
// expander (the two packages don't share an import edge, and the routine
// is a handful of lines).
func expandEchoEscapes(s string) string {
	var sb strings.Builder
	for i := 0; i < len(s); i++ {
		if s[i] != '\\' || i == len(s)-1 {
			sb.WriteByte(s[i])
			continue
		}
		i++
		switch s[i] {
		case 'n':
			sb.WriteByte('\n')
		case 't':
			sb.WriteByte('\t')
		case 'r':
			sb.WriteByte('\r')
		case '\\':
			sb.WriteByte('\\')
		default:
			sb.WriteByte('\\')
			sb.WriteByte(s[i])
		}
	}
	return sb.String()
}

func declareKeyValues(cell *state.Cell, withValues bool) string {
	if cell == nil {
		return ""
	}
	var parts []string
	switch cell.Kind {
	case state.KindIndexed:
		keys := make([]int64, 0, len(cell.Indexed))
		for k := range cell.Indexed {
			keys = append(keys, k)
		}
		sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
		for _, k := range keys {
			if withValues {
				parts = append(parts, strconv.FormatInt(k, 10)+" "+shellQuote(cell.Indexed[k]))
			} else {
				parts = append(parts, strconv.FormatInt(k, 10))
			}
		}
	case state.KindAssoc:
		keys := make([]string, 0, len(cell.Assoc))
		for k := range cell.Assoc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if withValues {
				parts = append(parts, shellQuote(k)+" "+shellQuote(cell.Assoc[k]))
			} else {
				parts = append(parts, k)
			}
		}
	}
	return strings.Join(parts, " ")
}
