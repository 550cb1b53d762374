package builtin

import (
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/command"
	"github.com/hermetic-sh/hsh/internal/state"
)

func registerVarBuiltins(r *command.Registry) {
	r.Register("export", builtinExport)
	r.Register("unset", builtinUnset)
	r.Register("readonly", builtinReadonly)
	r.Register("local", builtinLocal)
	r.Register("declare", builtinDeclare)
	r.Register("typeset", builtinDeclare)
	r.Register("set", builtinSet)
	r.Register("shift", builtinShift)
}

// splitAssign splits "name=value" into its parts; a bare "name" returns
// ("name", "", false).
func splitAssign(s string) (name, value string, hasValue bool) {
	if i := strings.IndexByte(s, '='); i >= 0 {
		return s[:i], s[i+1:], true
	}
	return s, "", false
}

func builtinExport(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	if len(args) == 0 || args[0] == "-p" {
		names := make([]string, 0)
		exported := ctx.Store.Exported()
		for name := range exported {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(ctx.Stdout, "export %s=%q\n", name, exported[name])
		}
		return 0, nil
	}
	for _, a := range args {
		name, value, hasValue := splitAssign(a)
		cell, ok := ctx.Store.Get(name)
		if !ok {
			cell = state.NewScalarCell("")
		}
		if hasValue {
			cell.Scalar = value
		}
		cell.Attrs |= state.AttrExported
		ctx.Store.Set(name, cell)
	}
	return 0, nil
}

func builtinUnset(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	funcsOnly := false
	if len(args) > 0 && args[0] == "-f" {
		funcsOnly = true
		args = args[1:]
	} else if len(args) > 0 && args[0] == "-v" {
		args = args[1:]
	}
	for _, name := range args {
		if funcsOnly {
			delete(ctx.Store.Functions, name)
			continue
		}
		if cell, ok := ctx.Store.Get(name); ok && cell.Attrs.Has(state.AttrReadOnly) {
			fmt.Fprintf(ctx.Stderr, "unset: %s: cannot unset: readonly variable\n", name)
			return 1, nil
		}
		ctx.Store.Unset(name)
	}
	return 0, nil
}

func builtinReadonly(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	if len(args) == 0 || args[0] == "-p" {
		names := []string{}
		ctx.Store.Scope().Range(func(name string, c *state.Cell) bool {
			if c.Attrs.Has(state.AttrReadOnly) {
				names = append(names, name)
			}
			return true
		})
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(ctx.Stdout, "readonly %s\n", name)
		}
		return 0, nil
	}
	for _, a := range args {
		name, value, hasValue := splitAssign(a)
		cell, ok := ctx.Store.Get(name)
		if !ok {
			cell = state.NewScalarCell("")
		}
		if hasValue {
			cell.Scalar = value
		}
		cell.Attrs |= state.AttrReadOnly
		ctx.Store.Set(name, cell)
	}
	return 0, nil
}

func builtinLocal(ctx *command.Context) (int, error) {
	for _, a := range ctx.Args[1:] {
		name, value, hasValue := splitAssign(a)
		cell := state.NewScalarCell(value)
		if !hasValue {
			if existing, ok := ctx.Store.Get(name); ok {
				cell = existing.Clone()
			} else {
				cell = state.NewScalarCell("")
			}
		}
		cell.Attrs |= state.AttrLocal
		ctx.Store.Define(name, cell)
	}
	return 0, nil
}

// builtinDeclare implements "declare"/"typeset" with the -a/-A/-i/-x/-r
// flags SPEC_FULL.md calls for; declared container types are distinct from
// implicit array creation via "a[i]=v", matching state.Cell.Kind's
// declared-vs-inferred distinction.
func builtinDeclare(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	var kind state.Kind = state.KindScalar
	var attrs state.Attr
	isContainer := false
	i := 0
	for i < len(args) && strings.HasPrefix(args[i], "-") && args[i] != "-" {
		for _, f := range args[i][1:] {
			switch f {
			case 'a':
				kind, isContainer = state.KindIndexed, true
			case 'A':
				kind, isContainer = state.KindAssoc, true
			case 'i':
				attrs |= state.AttrInteger
			case 'x':
				attrs |= state.AttrExported
			case 'r':
				attrs |= state.AttrReadOnly
			case 'u':
				attrs |= state.AttrUpper
			case 'l':
				attrs |= state.AttrLower
			case 'n':
				attrs |= state.AttrNameRef
			case 'p':
				// declare -p listing: fall through to plain listing below
			}
		}
		i++
	}
	if i == len(args) {
		names := []string{}
		ctx.Store.Scope().Range(func(name string, c *state.Cell) bool {
			names = append(names, name)
			return true
		})
		sort.Strings(names)
		for _, name := range names {
			cell, _ := ctx.Store.Get(name)
			fmt.Fprintf(ctx.Stdout, "declare %s=%q\n", name, cell.AsScalar())
		}
		return 0, nil
	}
	for _, a := range args[i:] {
		name, value, hasValue := splitAssign(a)
		var cell *state.Cell
		if isContainer {
			cell = &state.Cell{Kind: kind}
			if kind == state.KindIndexed {
				cell.Indexed = map[int64]string{}
				if hasValue {
					cell.Indexed[0] = value
				}
			} else {
				cell.Assoc = map[string]string{}
			}
		} else {
			cell = state.NewScalarCell(value)
			if !hasValue {
				if existing, ok := ctx.Store.Get(name); ok {
					cell = existing
				}
			}
		}
		cell.Attrs |= attrs
		ctx.Store.Define(name, cell)
	}
	return 0, nil
}

func builtinSet(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	opts := ctx.Store.Options
	i := 0
	for i < len(args) {
		a := args[i]
		if a == "--" {
			i++
			break
		}
		if len(a) < 2 || (a[0] != '-' && a[0] != '+') {
			break
		}
		on := a[0] == '-'
		if a == "-o" || a == "+o" {
			i++
			if i >= len(args) {
				break
			}
			applyLongOption(opts, args[i], on)
			i++
			continue
		}
		for _, f := range a[1:] {
			applyShortOption(opts, f, on)
		}
		i++
	}
	if i < len(args) || (len(args) > 0 && args[0] == "--") {
		ctx.Store.Positional = append([]string(nil), args[i:]...)
	}
	return 0, nil
}

func applyShortOption(opts *state.Options, f rune, on bool) {
	switch f {
	case 'e':
		opts.Errexit = on
	case 'u':
		opts.Nounset = on
	case 'x':
		opts.Xtrace = on
	case 'v':
		opts.Verbose = on
	case 'f':
		opts.Noglob = on
	case 'C':
		opts.Noclobber = on
	case 'a':
		opts.Allexport = on
	case 'm':
		opts.Monitor = on
	case 'B':
		opts.BraceExpand = on
	}
}

func applyLongOption(opts *state.Options, name string, on bool) {
	switch name {
	case "errexit":
		opts.Errexit = on
	case "nounset":
		opts.Nounset = on
	case "pipefail":
		opts.Pipefail = on
	case "xtrace":
		opts.Xtrace = on
	case "noglob":
		opts.Noglob = on
	case "noclobber":
		opts.Noclobber = on
	case "allexport":
		opts.Allexport = on
	case "monitor":
		opts.Monitor = on
	case "verbose":
		opts.Verbose = on
	}
}

func builtinShift(ctx *command.Context) (int, error) {
	n := 1
	if len(ctx.Args) > 1 {
		if v, err := strconv.Atoi(ctx.Args[1]); err == nil {
			n = v
		}
	}
	if n < 0 || n > len(ctx.Store.Positional) {
		return 1, nil
	}
	ctx.Store.Positional = ctx.Store.Positional[n:]
	return 0, nil
}
