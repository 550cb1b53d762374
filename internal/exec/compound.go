package exec

import (
	"bufio"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/arith"
	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/cond"
	"github.com/hermetic-sh/hsh/internal/command"
	"github.com/hermetic-sh/hsh/internal/globmatch"
	"github.com/hermetic-sh/hsh/internal/shellerr"
	"github.com/hermetic-sh/hsh/internal/state"
)

// runCompound dispatches a Compound node by Kind. Redirects attached to the
// compound itself (e.g. "{ ...; } >log") apply to the whole body: the
// executor runs its statements with fds already layered by the caller
// (runCommandNode passes the pipeline stage's fds through unchanged, since
// applyRedirects for a Compound's own Redirects happens here rather than in
// runSimple).
func (x *Executor) runCompound(c *ast.Compound, fds *ioSet) (int, error) {
	if len(c.Redirects) > 0 {
		sub := &ioSet{in: fds.in, out: fds.out, err: fds.err}
		if err := x.applyRedirects(c.Redirects, sub); err != nil {
			return x.fold(1, err, fds.err)
		}
		for _, sink := range sub.sinks {
			defer func(s *vfsSink) {
				if err := s.flush(x.FS); err != nil {
					fmt.Fprintln(x.Stderr, err.Error())
				}
			}(sink)
		}
		fds = sub
	}

	switch c.Kind {
	case ast.KindIf:
		return x.runIf(c, fds)
	case ast.KindFor:
		return x.runFor(c, fds)
	case ast.KindCStyleFor:
		return x.runCStyleFor(c, fds)
	case ast.KindWhile:
		return x.runWhileUntil(c, fds, false)
	case ast.KindUntil:
		return x.runWhileUntil(c, fds, true)
	case ast.KindCase:
		return x.runCase(c, fds)
	case ast.KindSelect:
		return x.runSelect(c, fds)
	case ast.KindSubshell:
		return x.runSubshell(c, fds)
	case ast.KindGroup:
		return x.inFds(fds).runStatements(c.Inner.Statements)
	case ast.KindArithmeticCmd:
		return x.runArithmeticCmd(c, fds)
	case ast.KindConditionalCmd:
		return x.runConditionalCmd(c, fds)
	}
	return 1, fmt.Errorf("exec: unknown compound kind %d", c.Kind)
}

// inFds returns an Executor that writes to fds' streams instead of x's own,
// sharing everything else — used for compound bodies that run against the
// live store (group, if/while/for bodies) rather than a subshell snapshot.
func (x *Executor) inFds(fds *ioSet) *Executor {
	if fds.in == x.Stdin && fds.out == x.Stdout && fds.err == x.Stderr {
		return x
	}
	return &Executor{Store: x.Store, FS: x.FS, Builtins: x.Builtins, Stdin: fds.in, Stdout: fds.out, Stderr: fds.err, Deadline: x.Deadline}
}

func (x *Executor) runIf(c *ast.Compound, fds *ioSet) (int, error) {
	xe := x.inFds(fds)
	for i, condScript := range c.Cond {
		status, err := xe.runCondition(condScript.Statements)
		if err != nil {
			return status, err
		}
		if status == 0 {
			return xe.runStatements(c.Then[i].Statements)
		}
	}
	if c.Else != nil {
		return xe.runStatements(c.Else.Statements)
	}
	return 0, nil
}

// runCondition runs an if/while/until condition clause with errexit
// suspended: a nonzero status there is one of errexit's forgiven positions.
func (x *Executor) runCondition(stmts []*ast.Statement) (int, error) {
	saved := x.Store.Options.Errexit
	x.Store.Options.Errexit = false
	defer func() { x.Store.Options.Errexit = saved }()
	return x.runStatements(stmts)
}

func (x *Executor) runFor(c *ast.Compound, fds *ioSet) (int, error) {
	xe := x.inFds(fds)
	values, err := xe.expander().Words(c.Words)
	if err != nil {
		return x.fold(1, err, fds.err)
	}
	status := 0
	iter := 0
	for _, v := range values {
		iter++
		if lim := x.Store.Limits.MaxLoopIterations; lim > 0 && iter > lim {
			return 2, &shellerr.LimitError{Kind: shellerr.LimitLoopIterations}
		}
		x.Store.Set(c.Name, state.NewScalarCell(v))
		status, err = xe.runStatements(c.Body.Statements)
		brk, cont, err2 := handleLoopSignal(err)
		if err2 != nil {
			return status, err2
		}
		if brk {
			break
		}
		_ = cont
	}
	return status, nil
}

func (x *Executor) runCStyleFor(c *ast.Compound, fds *ioSet) (int, error) {
	xe := x.inFds(fds)
	if c.Init != nil {
		if _, err := arith.Eval(c.Init, x.Store); err != nil {
			return x.fold(1, err, fds.err)
		}
	}
	status := 0
	iter := 0
	for {
		if c.Test != nil {
			n, err := arith.Eval(c.Test, x.Store)
			if err != nil {
				return x.fold(1, err, fds.err)
			}
			if n == 0 {
				break
			}
		}
		iter++
		if lim := x.Store.Limits.MaxLoopIterations; lim > 0 && iter > lim {
			return 2, &shellerr.LimitError{Kind: shellerr.LimitLoopIterations}
		}
		var err error
		status, err = xe.runStatements(c.Body.Statements)
		brk, _, err2 := handleLoopSignal(err)
		if err2 != nil {
			return status, err2
		}
		if brk {
			break
		}
		if c.Update != nil {
			if _, err := arith.Eval(c.Update, x.Store); err != nil {
				return x.fold(1, err, fds.err)
			}
		}
	}
	return status, nil
}

func (x *Executor) runWhileUntil(c *ast.Compound, fds *ioSet, until bool) (int, error) {
	xe := x.inFds(fds)
	status := 0
	iter := 0
	for {
		condStatus, err := xe.runCondition(c.CondScript.Statements)
		if err != nil {
			return condStatus, err
		}
		truth := condStatus == 0
		if until {
			truth = !truth
		}
		if !truth {
			break
		}
		iter++
		if lim := x.Store.Limits.MaxLoopIterations; lim > 0 && iter > lim {
			return 2, &shellerr.LimitError{Kind: shellerr.LimitLoopIterations}
		}
		status, err = xe.runStatements(c.Body.Statements)
		brk, _, err2 := handleLoopSignal(err)
		if err2 != nil {
			return status, err2
		}
		if brk {
			break
		}
	}
	return status, nil
}

// handleLoopSignal interprets the error a loop body returned: a
// break/continue Signal is consumed here, decrementing its Levels for an
// enclosing loop when Levels > 1 (re-raised as err2 in that case); any
// other error (including return/exit) propagates unchanged.
func handleLoopSignal(err error) (brk, cont bool, propagate error) {
	if err == nil {
		return false, false, nil
	}
	var sig *command.Signal
	if !errors.As(err, &sig) {
		return false, false, err
	}
	switch sig.Kind {
	case command.SignalBreak:
		if sig.Levels > 1 {
			return true, false, &command.Signal{Kind: command.SignalBreak, Levels: sig.Levels - 1}
		}
		return true, false, nil
	case command.SignalContinue:
		if sig.Levels > 1 {
			return true, false, &command.Signal{Kind: command.SignalContinue, Levels: sig.Levels - 1}
		}
		return false, true, nil
	default:
		return false, false, err
	}
}

func (x *Executor) runCase(c *ast.Compound, fds *ioSet) (int, error) {
	xe := x.inFds(fds)
	subject, err := xe.expander().WordNoSplit(c.Subject)
	if err != nil {
		return x.fold(1, err, fds.err)
	}
	opts := globmatch.Options{NoCaseMatch: x.Store.Options.NoCaseMatch, ExtGlob: x.Store.Options.ExtGlob}

	status := 0
	forced := false
	for i := 0; i < len(c.Arms); i++ {
		arm := c.Arms[i]
		matched := forced
		if !matched {
			for _, pw := range arm.Patterns {
				pat, err := xe.expander().WordNoSplit(pw)
				if err != nil {
					return x.fold(1, err, fds.err)
				}
				if globmatch.Match(subject, pat, opts) {
					matched = true
					break
				}
			}
		}
		if !matched {
			forced = false
			continue
		}
		status, err = xe.runStatements(arm.Body.Statements)
		if err != nil {
			return status, err
		}
		switch arm.Term {
		case ast.TermBreak:
			return status, nil
		case ast.TermFallThru:
			forced = true
		case ast.TermTestNext:
			forced = false
		}
	}
	return status, nil
}

func (x *Executor) runSelect(c *ast.Compound, fds *ioSet) (int, error) {
	xe := x.inFds(fds)
	items, err := xe.expander().Words(c.Words)
	if err != nil {
		return x.fold(1, err, fds.err)
	}
	ps3 := "#? "
	if cell, ok := x.Store.Get("PS3"); ok && cell.Scalar != "" {
		ps3 = cell.Scalar
	}
	reader := bufio.NewReader(fds.in)
	status := 0
	for {
		for i, it := range items {
			fmt.Fprintf(fds.err, "%d) %s\n", i+1, it)
		}
		fmt.Fprint(fds.err, ps3)
		line, rerr := reader.ReadString('\n')
		line = strings.TrimRight(line, "\n")
		if line == "" && rerr != nil {
			return status, nil
		}
		x.Store.Set("REPLY", state.NewScalarCell(line))
		choice := ""
		if n, perr := strconv.Atoi(line); perr == nil && n >= 1 && n <= len(items) {
			choice = items[n-1]
		}
		x.Store.Set(c.Name, state.NewScalarCell(choice))

		status, err = xe.runStatements(c.Body.Statements)
		brk, _, err2 := handleLoopSignal(err)
		if err2 != nil {
			return status, err2
		}
		if brk {
			break
		}
		if rerr != nil {
			break
		}
	}
	return status, nil
}

func (x *Executor) runSubshell(c *ast.Compound, fds *ioSet) (int, error) {
	sub := x.Store.Snapshot()
	cx := x.child(sub, fds.in, fds.out, fds.err)
	status, err := cx.runStatements(c.Inner.Statements)
	x.Store.Restore(sub)
	if err != nil {
		var sig *command.Signal
		if errors.As(err, &sig) {
			return sig.Status, nil
		}
		return status, err
	}
	return status, nil
}

func (x *Executor) runArithmeticCmd(c *ast.Compound, fds *ioSet) (int, error) {
	n, err := arith.Eval(c.Expr, x.Store)
	if err != nil {
		return x.fold(1, err, fds.err)
	}
	if n == 0 {
		return 1, nil
	}
	return 0, nil
}

func (x *Executor) runConditionalCmd(c *ast.Compound, fds *ioSet) (int, error) {
	xe := x.inFds(fds)
	expand := func(w *ast.Word) (string, error) { return xe.expander().WordNoSplit(w) }
	opts := cond.Options{NoCaseMatch: x.Store.Options.NoCaseMatch, ExtGlob: x.Store.Options.ExtGlob}
	ok, err := cond.Eval(c.CondExpr, expand, x.FS, opts, x.Store)
	if err != nil {
		return x.fold(1, err, fds.err)
	}
	if ok {
		return 0, nil
	}
	return 1, nil
}

// callFunction runs fn's body with its compound's own redirects, binding
// argv[1:] as positional parameters within a fresh scope frame, counting
// recursion depth against Limits.MaxRecursionDepth, and absorbing a
// SignalReturn at this boundary (it never propagates past the function that
// consumed it).
func (x *Executor) callFunction(fn *ast.FunctionDef, argv []string, fds *ioSet) (int, error) {
	x.Store.Counters.RecursionDepth++
	defer func() { x.Store.Counters.RecursionDepth-- }()
	if lim := x.Store.Limits.MaxRecursionDepth; lim > 0 && x.Store.Counters.RecursionDepth > lim {
		return 2, &shellerr.LimitError{Kind: shellerr.LimitRecursion}
	}

	savedPositional := x.Store.Positional
	x.Store.Positional = append([]string(nil), argv[1:]...)
	x.Store.PushFrame()
	defer func() {
		x.Store.PopFrame()
		x.Store.Positional = savedPositional
	}()

	status, err := x.runCompound(fn.Body, fds)
	if err != nil {
		var sig *command.Signal
		if errors.As(err, &sig) && sig.Kind == command.SignalReturn {
			return sig.Status, nil
		}
		return status, err
	}
	return status, nil
}
