package exec

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/arith"
	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/command"
	"github.com/hermetic-sh/hsh/internal/parser"
	"github.com/hermetic-sh/hsh/internal/shellerr"
	"github.com/hermetic-sh/hsh/internal/state"
)

// runSimple is a simple command: apply leading assignments, expand argv,
// apply redirects, and dispatch by name through functions, then the
// builtin registry. There is no PATH search and no external process —
// every invocable name lives in x.Store.Functions or x.Builtins.
func (x *Executor) runSimple(s *ast.Simple, fds *ioSet) (int, error) {
	argv, err := x.expander().Words(s.Words)
	if err != nil {
		return x.fold(1, err, fds.err)
	}

	if len(argv) == 0 {
		_, err := x.applyAssignments(s.Assignments, true)
		return x.fold(0, err, fds.err)
	}

	name := argv[0]
	special := command.SpecialBuiltins[name]

	restore, err := x.applyAssignments(s.Assignments, special)
	if err != nil {
		return x.fold(1, err, fds.err)
	}
	defer restore()

	if err := x.applyRedirects(s.Redirects, fds); err != nil {
		return x.fold(1, err, x.Stderr)
	}
	for _, sink := range fds.sinks {
		defer func(sink *vfsSink) {
			if err := sink.flush(x.FS); err != nil {
				fmt.Fprintln(x.Stderr, err.Error())
			}
		}(sink)
	}

	if x.Store.Options.Xtrace {
		x.emitTrace(argv, fds)
	}

	x.Store.Counters.CommandsRun++
	if x.Store.Limits.MaxCommands > 0 && x.Store.Counters.CommandsRun > x.Store.Limits.MaxCommands {
		return 2, &shellerr.LimitError{Kind: shellerr.LimitCommands}
	}

	status, err := x.dispatch(name, argv, fds)
	return x.fold(status, err, fds.err)
}

// dispatch resolves name through the function table and then the builtin
// registry, in that order (spec.md §4.6's command-resolution list, minus
// the PATH-search steps this interpreter never performs).
func (x *Executor) dispatch(name string, argv []string, fds *ioSet) (int, error) {
	if fn, ok := x.Store.Functions[name]; ok {
		return x.callFunction(fn, argv, fds)
	}
	if fn, ok := x.Builtins.Lookup(name); ok {
		ctx := &command.Context{
			Args: argv, Stdin: fds.in, Stdout: fds.out, Stderr: fds.err,
			Store: x.Store, FS: x.FS,
			Run:  x.ctxRun,
			Eval: x.ctxEval,
		}
		return fn(ctx)
	}
	return 127, &shellerr.CommandNotFound{Name: name}
}

// ctxRun implements command.Context.Run: it lets a builtin (exec)
// re-enter dispatch for another name/argv pair against the same streams.
func (x *Executor) ctxRun(ctx *command.Context, name string, argv []string) (int, error) {
	fds := &ioSet{in: ctx.Stdin, out: ctx.Stdout, err: ctx.Stderr}
	return x.dispatch(name, argv, fds)
}

// ctxEval implements command.Context.Eval: it lets eval/source parse and run
// script text against the current Store without internal/command importing
// internal/exec.
func (x *Executor) ctxEval(ctx *command.Context, src string) (int, error) {
	sc, err := x.parseScript(src)
	if err != nil {
		return 2, &shellerr.ParseError{Message: err.Error()}
	}
	cx := &Executor{Store: x.Store, FS: x.FS, Builtins: x.Builtins, Stdin: ctx.Stdin, Stdout: ctx.Stdout, Stderr: ctx.Stderr, Deadline: x.Deadline}
	return cx.runStatements(sc.Statements)
}

// applyAssignments evaluates each leading assignment and stores it either
// persistently (bare assignment statements and assignments prefixing a
// special builtin) or temporarily for the duration of the command that
// follows, restored by the returned func once it completes.
func (x *Executor) applyAssignments(assigns []*ast.Assignment, persistent bool) (func(), error) {
	if len(assigns) == 0 {
		return func() {}, nil
	}
	type saved struct {
		name    string
		had     bool
		old     *state.Cell
	}
	var savedCells []saved

	for _, a := range assigns {
		val, err := x.expander().WordNoSplit(a.Value)
		if err != nil {
			return func() {}, err
		}

		if !persistent {
			old, had := x.Store.Get(a.Name)
			savedCells = append(savedCells, saved{a.Name, had, old})
		}

		if err := x.assignOne(a, val); err != nil {
			return func() {}, err
		}
	}

	if persistent {
		return func() {}, nil
	}
	return func() {
		for _, sv := range savedCells {
			if sv.had {
				x.Store.Set(sv.name, sv.old)
			} else {
				x.Store.Unset(sv.name)
			}
		}
	}, nil
}

func (x *Executor) assignOne(a *ast.Assignment, val string) error {
	if a.Index != nil {
		return x.assignIndexed(a, val)
	}
	if !a.Append {
		x.Store.Set(a.Name, state.NewScalarCell(val))
		return nil
	}
	cell, ok := x.Store.Get(a.Name)
	if !ok || cell.Kind == state.KindScalar {
		prev := ""
		if ok {
			prev = cell.Scalar
		}
		x.Store.Set(a.Name, state.NewScalarCell(prev+val))
		return nil
	}
	nc := cell.Clone()
	switch nc.Kind {
	case state.KindIndexed:
		n := int64(len(nc.Indexed))
		nc.Indexed[n] = val
	case state.KindAssoc:
		nc.Assoc[val] = val
	}
	x.Store.Set(a.Name, nc)
	return nil
}

func (x *Executor) assignIndexed(a *ast.Assignment, val string) error {
	idxStr, err := x.expander().WordNoSplit(a.Index)
	if err != nil {
		return err
	}
	cell, ok := x.Store.Get(a.Name)
	if !ok {
		cell = &state.Cell{Kind: state.KindIndexed, Indexed: map[int64]string{}}
	} else {
		cell = cell.Clone()
	}
	if cell.Kind == state.KindAssoc {
		key := idxStr
		if a.Append {
			val = cell.Assoc[key] + val
		}
		cell.Assoc[key] = val
		x.Store.Set(a.Name, cell)
		return nil
	}
	if cell.Kind != state.KindIndexed {
		cell = &state.Cell{Kind: state.KindIndexed, Indexed: map[int64]string{}}
	}
	expr, err := parser.ParseArithString(idxStr)
	if err != nil {
		return &shellerr.RuntimeError{Context: a.Name, Message: "bad array subscript: " + idxStr}
	}
	n, err := arith.Eval(expr, x.Store)
	if err != nil {
		return err
	}
	if a.Append {
		val = cell.Indexed[n] + val
	}
	cell.Indexed[n] = val
	x.Store.Set(a.Name, cell)
	return nil
}

func (x *Executor) emitTrace(argv []string, fds *ioSet) {
	ps4 := "+ "
	if c, ok := x.Store.Get("PS4"); ok && c.Scalar != "" {
		ps4 = c.Scalar
	}
	quoted := make([]string, len(argv))
	for i, a := range argv {
		if strings.ContainsAny(a, " \t\n'\"") {
			quoted[i] = strconv.Quote(a)
		} else {
			quoted[i] = a
		}
	}
	fmt.Fprintf(x.Stderr, "%s%s\n", ps4, strings.Join(quoted, " "))
}
