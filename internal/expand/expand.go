// Package expand implements the fixed eight-step word-expansion pipeline:
// brace expansion, tilde expansion, parameter/variable expansion,
// arithmetic expansion, command substitution, word splitting, pathname
// expansion, and quote removal — composed by Expander. Brace, tilde,
// parameter, splitting and pathname steps each have their own file;
// arithmetic expansion and command substitution are handled inline in
// expandParts, and quote removal falls out of how chunks are marked quoted.
package expand

import (
	"strings"

	"github.com/hermetic-sh/hsh/internal/arith"
	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/globmatch"
	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// CommandSubRunner runs a parsed script against store in a subshell and
// returns its captured stdout. internal/exec supplies this via a callback
// rather than internal/expand importing internal/exec, which itself needs
// internal/expand to resolve words before running anything.
type CommandSubRunner func(store *state.Store, script *ast.Script) (string, error)

// Expander threads the dependencies every expansion step needs.
type Expander struct {
	Store   *state.Store
	FS      vfs.FS
	RunSub  CommandSubRunner
	NoGlob  bool // set -f
	NullGlob, FailGlob, DotGlob, GlobStar bool
	NoCaseMatch, ExtGlob                  bool
	BraceExpand                           bool
}

// NewExpander builds an Expander from the current store's options.
func NewExpander(store *state.Store, fs vfs.FS, runSub CommandSubRunner) *Expander {
	o := store.Options
	return &Expander{
		Store: store, FS: fs, RunSub: runSub,
		NoGlob: o.Noglob, NullGlob: o.NullGlob, FailGlob: o.FailGlob,
		DotGlob: o.DotGlob, GlobStar: o.GlobStar,
		NoCaseMatch: o.NoCaseMatch, ExtGlob: o.ExtGlob,
		BraceExpand: o.BraceExpand,
	}
}

// fieldChunk is one piece of a word's fully-resolved text, tagged with
// whether it came from a quoted context (so splitting/globbing skip it).
// hardBreak chunks carry no text; they force a field boundary regardless
// of IFS or quoting, used between elements of an unquoted/quoted "$@" or
// array "[@]" expansion, which always become separate argv fields.
type fieldChunk struct {
	text      string
	quoted    bool
	hardBreak bool
}

// Words runs the full pipeline (all eight steps) over a command's argv
// words, returning the final flat list of argv fields.
func (e *Expander) Words(words []*ast.Word) ([]string, error) {
	var out []string
	for _, w := range words {
		for _, bw := range expandBraces(w, e.BraceExpand) {
			chunks, err := e.expandParts(bw.Parts, true)
			if err != nil {
				return nil, err
			}
			fields, err := e.splitAndGlob(chunks)
			if err != nil {
				return nil, err
			}
			out = append(out, fields...)
		}
	}
	return out, nil
}

// WordNoSplit resolves a single word to one string with no field-splitting
// or pathname expansion — used for assignment right-hand sides, case
// subjects, [[ ]] operands, and redirection targets. Brace expansion still
// applies (bash brace-expands assignment RHS too, though rarely useful).
func (e *Expander) WordNoSplit(w *ast.Word) (string, error) {
	bws := expandBraces(w, e.BraceExpand)
	target := bws[0]
	if len(bws) > 1 {
		// A braced assignment RHS: bash takes the word-split fields and
		// joins them back with the first IFS char; in practice assignment
		// RHS brace groups are rare, so join with a space as a reasonable
		// approximation and say so here rather than silently picking one.
		var parts []string
		for _, bw := range bws {
			chunks, err := e.expandParts(bw.Parts, true)
			if err != nil {
				return "", err
			}
			parts = append(parts, joinChunks(chunks))
		}
		return strings.Join(parts, " "), nil
	}
	chunks, err := e.expandParts(target.Parts, true)
	if err != nil {
		return "", err
	}
	return joinChunks(chunks), nil
}

func joinChunks(chunks []fieldChunk) string {
	var sb strings.Builder
	for _, c := range chunks {
		sb.WriteString(c.text)
	}
	return sb.String()
}

// expandParts walks one word's parts, resolving parameter/command/
// arithmetic substitutions and tilde expansion (steps 2-5), and returns
// the concatenated field chunks (step 8, quote removal, falls out of how
// PartSingleQuoted/PartDoubleQuoted chunks are marked quoted instead of
// carrying literal quote characters).
func (e *Expander) expandParts(parts []*ast.WordPart, atWordStart bool) ([]fieldChunk, error) {
	var out []fieldChunk
	for i, p := range parts {
		isFirst := atWordStart && i == 0
		switch p.Kind {
		case ast.PartLiteral:
			out = append(out, fieldChunk{text: p.Literal, quoted: false})
		case ast.PartSingleQuoted:
			out = append(out, fieldChunk{text: p.Literal, quoted: true})
		case ast.PartDoubleQuoted:
			inner, err := e.expandParts(p.Parts, false)
			if err != nil {
				return nil, err
			}
			for _, c := range inner {
				out = append(out, fieldChunk{text: c.text, quoted: true})
			}
		case ast.PartTilde:
			out = append(out, fieldChunk{text: e.expandTilde(p.Tilde), quoted: false})
			_ = isFirst
		case ast.PartParam:
			v, splitWords, err := e.expandParam(p.Param)
			if err != nil {
				return nil, err
			}
			if splitWords != nil {
				// "$@"/"${arr[@]}" unquoted or quoted-array expansion:
				// each element is its own field, joined chunk-wise so
				// later splitting doesn't re-split already-final fields.
				for j, f := range splitWords {
					if j > 0 {
						out = append(out, fieldChunk{hardBreak: true})
					}
					out = append(out, fieldChunk{text: f, quoted: p.Quoted})
				}
				continue
			}
			out = append(out, fieldChunk{text: v, quoted: p.Quoted})
		case ast.PartCommandSub:
			v, err := e.RunSub(e.Store, p.Sub)
			if err != nil {
				return nil, err
			}
			out = append(out, fieldChunk{text: strings.TrimRight(v, "\n"), quoted: p.Quoted})
		case ast.PartArithSub:
			n, err := arith.Eval(p.Arith, e.Store)
			if err != nil {
				return nil, &Error{err.Error()}
			}
			out = append(out, fieldChunk{text: itoa(n), quoted: p.Quoted})
		case ast.PartProcessSub:
			v, err := e.expandProcessSub(p)
			if err != nil {
				return nil, err
			}
			out = append(out, fieldChunk{text: v, quoted: false})
		}
	}
	return out, nil
}

// Error is a fatal expansion error (bad substitution, unset variable under
// nounset, failed glob under failglob).
type Error struct{ Message string }

func (e *Error) Error() string { return e.Message }

func itoa(n int64) string {
	if n == 0 {
		return "0"
	}
	neg := n < 0
	if neg {
		n = -n
	}
	var buf [20]byte
	i := len(buf)
	for n > 0 {
		i--
		buf[i] = byte('0' + n%10)
		n /= 10
	}
	if neg {
		i--
		buf[i] = '-'
	}
	return string(buf[i:])
}

// splitAndGlob performs step 6 (word splitting on IFS, respecting quoted
// spans and the hard field boundaries expandParts inserts for array/"$@"
// expansion) and step 7 (pathname expansion).
func (e *Expander) splitAndGlob(chunks []fieldChunk) ([]string, error) {
	fields := splitFields(chunks, e.Store.IFS())
	var out []string
	for _, f := range fields {
		matches, didGlob, err := e.globField(f)
		if err != nil {
			return nil, err
		}
		if !didGlob {
			if f.text != "" || f.hadQuote {
				out = append(out, f.text)
			}
			continue
		}
		out = append(out, matches...)
	}
	return out, nil
}

func (e *Expander) globField(f splitField) ([]string, bool, error) {
	if e.NoGlob || f.hadQuote || !globmatch.IsPattern(f.text, e.ExtGlob) {
		return nil, false, nil
	}
	matches := e.glob(f.text)
	if len(matches) == 0 {
		if e.FailGlob {
			return nil, false, &Error{"no match: " + f.text}
		}
		if e.NullGlob {
			return nil, true, nil
		}
		return []string{f.text}, true, nil
	}
	return matches, true, nil
}
