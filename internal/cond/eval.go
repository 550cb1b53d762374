// Package cond evaluates the ast.CondExpr trees internal/parser builds for
// "[[ ]]", against already-expanded operand strings, a virtual filesystem,
// and the nocasematch/extglob shell options. "test"/"[" do not go through
// this package: internal/builtin evaluates their argv directly.
package cond

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/globmatch"
	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// Error is a fatal conditional-evaluation error (bad regex, file I/O error
// other than the expected "doesn't exist").
type Error struct{ Message string }

func (e *Error) Error() string { return e.Message }

// WordExpander resolves a parsed Word to its expanded string value; the
// executor supplies this (running the normal word-expansion pipeline
// without splitting/globbing, since [[ ]] operands are never split).
type WordExpander func(*ast.Word) (string, error)

// Options mirrors the subset of shell options that change [[ ]] semantics.
type Options struct {
	NoCaseMatch bool
	ExtGlob     bool
}

// Eval evaluates expr, calling expand to resolve operand words and fs for
// file-test operators. store receives BASH_REMATCH on a successful =~
// match, matching bash's behavior of setting it after every regex test (a
// nil store skips that side effect).
func Eval(expr ast.CondExpr, expand WordExpander, fs vfs.FS, opts Options, store *state.Store) (bool, error) {
	switch expr.Op {
	case ast.CondAnd:
		l, err := Eval(*expr.X, expand, fs, opts, store)
		if err != nil {
			return false, err
		}
		if !l {
			return false, nil
		}
		return Eval(*expr.Y, expand, fs, opts, store)
	case ast.CondOr:
		l, err := Eval(*expr.X, expand, fs, opts, store)
		if err != nil {
			return false, err
		}
		if l {
			return true, nil
		}
		return Eval(*expr.Y, expand, fs, opts, store)
	case ast.CondNot:
		v, err := Eval(*expr.Sub, expand, fs, opts, store)
		if err != nil {
			return false, err
		}
		return !v, nil
	case ast.CondGroup:
		return Eval(*expr.Sub, expand, fs, opts, store)
	case ast.CondWord:
		s, err := expand(expr.L)
		if err != nil {
			return false, err
		}
		return s != "", nil
	case ast.CondStrEmpty:
		s, err := expand(expr.L)
		if err != nil {
			return false, err
		}
		return s == "", nil
	case ast.CondStrNonEmpty:
		s, err := expand(expr.L)
		if err != nil {
			return false, err
		}
		return s != "", nil
	case ast.CondUnaryFile:
		return evalUnaryFile(expr, expand, fs)
	case ast.CondBinaryFile:
		return evalBinaryFile(expr, expand, fs)
	case ast.CondStrEq, ast.CondStrNe:
		l, r, err := both(expr, expand)
		if err != nil {
			return false, err
		}
		matched := globmatch.Match(l, r, globmatch.Options{NoCaseMatch: opts.NoCaseMatch, ExtGlob: opts.ExtGlob})
		if expr.Op == ast.CondStrNe {
			return !matched, nil
		}
		return matched, nil
	case ast.CondStrLt:
		l, r, err := both(expr, expand)
		if err != nil {
			return false, err
		}
		return l < r, nil
	case ast.CondStrGt:
		l, r, err := both(expr, expand)
		if err != nil {
			return false, err
		}
		return l > r, nil
	case ast.CondRegexMatch:
		l, r, err := both(expr, expand)
		if err != nil {
			return false, err
		}
		pat := r
		if opts.NoCaseMatch {
			pat = "(?i)" + pat
		}
		re, err := regexp.Compile(pat)
		if err != nil {
			return false, &Error{"bad regex in =~: " + err.Error()}
		}
		groups := re.FindStringSubmatch(l)
		if store != nil {
			setRematch(store, groups)
		}
		return groups != nil, nil
	case ast.CondNumEq, ast.CondNumNe, ast.CondNumLt, ast.CondNumLe, ast.CondNumGt, ast.CondNumGe:
		l, r, err := both(expr, expand)
		if err != nil {
			return false, err
		}
		li, ri := parseNum(l), parseNum(r)
		switch expr.Op {
		case ast.CondNumEq:
			return li == ri, nil
		case ast.CondNumNe:
			return li != ri, nil
		case ast.CondNumLt:
			return li < ri, nil
		case ast.CondNumLe:
			return li <= ri, nil
		case ast.CondNumGt:
			return li > ri, nil
		case ast.CondNumGe:
			return li >= ri, nil
		}
	}
	return false, &Error{"unhandled conditional operator"}
}

func both(expr ast.CondExpr, expand WordExpander) (string, string, error) {
	l, err := expand(expr.L)
	if err != nil {
		return "", "", err
	}
	r, err := expand(expr.R)
	if err != nil {
		return "", "", err
	}
	return l, r, nil
}

// setRematch populates BASH_REMATCH with the whole match and capture
// groups from the most recent =~ test, or clears it on no match.
func setRematch(store *state.Store, groups []string) {
	cell := &state.Cell{Kind: state.KindIndexed, Indexed: map[int64]string{}}
	for i, g := range groups {
		cell.Indexed[int64(i)] = g
	}
	store.Set("BASH_REMATCH", cell)
}

func parseNum(s string) int64 {
	s = strings.TrimSpace(s)
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func evalUnaryFile(expr ast.CondExpr, expand WordExpander, fs vfs.FS) (bool, error) {
	p, err := expand(expr.L)
	if err != nil {
		return false, err
	}
	switch expr.Flag {
	case "e":
		return fs.Exists(p), nil
	case "f":
		info, err := fs.Stat(p)
		return err == nil && !info.IsDir, nil
	case "d":
		info, err := fs.Stat(p)
		return err == nil && info.IsDir, nil
	case "L", "h":
		info, err := fs.Lstat(p)
		return err == nil && info.IsLink, nil
	case "s":
		info, err := fs.Stat(p)
		return err == nil && info.Size > 0, nil
	case "r", "w", "x":
		_, err := fs.Stat(p)
		return err == nil, nil // permission bits aren't modeled beyond existence
	case "b", "c", "p", "S":
		return false, nil // no special-file kinds in a hermetic VFS
	case "N":
		info, err := fs.Stat(p)
		return err == nil && !info.ModTime.IsZero(), nil
	case "u", "g", "k":
		return false, nil
	case "O", "G":
		info, err := fs.Stat(p)
		return err == nil && !info.IsDir, nil
	case "v":
		return p != "", nil
	case "o", "R":
		return false, nil
	}
	return false, nil
}

func evalBinaryFile(expr ast.CondExpr, expand WordExpander, fs vfs.FS) (bool, error) {
	l, r, err := both(expr, expand)
	if err != nil {
		return false, err
	}
	li, lerr := fs.Stat(l)
	ri, rerr := fs.Stat(r)
	switch expr.Flag {
	case "nt":
		return rerr != nil || (lerr == nil && li.ModTime.After(ri.ModTime)), nil
	case "ot":
		return lerr != nil || (rerr == nil && li.ModTime.Before(ri.ModTime)), nil
	case "ef":
		lp, lerr2 := fs.Realpath(l)
		rp, rerr2 := fs.Realpath(r)
		return lerr2 == nil && rerr2 == nil && lp == rp, nil
	}
	return false, nil
}
