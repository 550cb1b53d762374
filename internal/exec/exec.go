// Package exec is the statement executor: it walks the AST produced by
// internal/parser, drives control flow, pipelines, subshells, functions,
// redirections and error-exit, and wires together internal/expand,
// internal/arith, internal/cond and internal/command/internal/builtin.
// It imports internal/builtin only to fill the default builtin table in
// New, and supplies the command.Context.Run/.Eval and
// expand.CommandSubRunner callbacks those packages declare as fields.
package exec

import (
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/builtin"
	"github.com/hermetic-sh/hsh/internal/command"
	"github.com/hermetic-sh/hsh/internal/expand"
	"github.com/hermetic-sh/hsh/internal/shellerr"
	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// Executor runs one interpreter invocation's worth of script text against
// a Store and a virtual filesystem. A subshell or command substitution
// runs through a child Executor sharing FS/Builtins but holding its own
// Store snapshot and its own Stdout/Stderr buffer.
type Executor struct {
	Store    *state.Store
	FS       vfs.FS
	Builtins *command.Registry

	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer

	Deadline time.Time // zero means no wall-clock bound
}

// New builds a root Executor with a fresh builtin registry.
func New(store *state.Store, fs vfs.FS, stdin io.Reader, stdout, stderr io.Writer) *Executor {
	r := command.NewRegistry()
	builtin.RegisterAll(r)
	return &Executor{Store: store, FS: fs, Builtins: r, Stdin: stdin, Stdout: stdout, Stderr: stderr}
}

// child creates an Executor that shares FS/Builtins/Deadline but runs
// against its own store and capture streams — used for subshells,
// command/process substitutions, and pipeline stages.
func (x *Executor) child(store *state.Store, stdin io.Reader, stdout, stderr io.Writer) *Executor {
	return &Executor{
		Store: store, FS: x.FS, Builtins: x.Builtins,
		Stdin: stdin, Stdout: stdout, Stderr: stderr,
		Deadline: x.Deadline,
	}
}

func (x *Executor) expander() *expand.Expander {
	return expand.NewExpander(x.Store, x.FS, x.runCommandSub)
}

// runCommandSub implements expand.CommandSubRunner: it runs script against
// a snapshot of store (command substitutions are themselves a subshell
// boundary) and returns captured stdout.
func (x *Executor) runCommandSub(store *state.Store, script *ast.Script) (string, error) {
	sub := store.Snapshot()
	var buf strings.Builder
	cx := x.child(sub, x.Stdin, &buf, x.Stderr)
	_, err := cx.RunScript(script)
	if err != nil && !isSignal(err) {
		return buf.String(), err
	}
	return buf.String(), nil
}

// RunScript runs every top-level statement in script and returns the exit
// status of the last one executed. A command.Signal of kind SignalExit
// unwinds immediately (the caller, hsh.Run or a subshell boundary, is
// responsible for translating it into a final status); any other signal
// reaching here (an orphaned break/continue/return) is a scripting error
// bash itself reports as a warning and otherwise ignores, so it is
// swallowed into the current exit status.
func (x *Executor) RunScript(script *ast.Script) (int, error) {
	status, err := x.runStatements(script.Statements)
	if err != nil {
		var sig *command.Signal
		if errors.As(err, &sig) {
			if sig.Kind == command.SignalExit {
				x.fireTrap("EXIT")
				return sig.Status, err
			}
			return sig.Status, nil
		}
		return status, err
	}
	return status, nil
}

func isSignal(err error) bool {
	var sig *command.Signal
	return errors.As(err, &sig)
}

// propagates reports whether err belongs to one of the classes that must
// unwind the call stack rather than be folded into a plain exit status: a
// control-flow Signal, or one of the two fatal diagnostic classes
// (ParseError, LimitError) that abort the whole invocation per spec.md §7.
// Every other error (command-not-found, a failed redirect, a bad
// expansion) only ever affects the exit status of the one command that
// produced it.
func propagates(err error) bool {
	if err == nil {
		return false
	}
	var sig *command.Signal
	if errors.As(err, &sig) {
		return true
	}
	switch err.(type) {
	case *shellerr.ParseError, *shellerr.LimitError:
		return true
	}
	return false
}

// fold turns a leaf-level error into the command's exit status: a
// propagating error passes through unchanged, anything else is written to
// out as the conventional single diagnostic line and folded away so the
// caller's script keeps running.
func (x *Executor) fold(status int, err error, out io.Writer) (int, error) {
	if err == nil || !propagates(err) {
		if err != nil {
			fmt.Fprintln(out, err.Error())
		}
		return status, nil
	}
	return status, err
}

// runStatements executes a flat statement list. Consecutive entries chain
// through AndOr: a statement only runs if the previous link's operator and
// status allow it ("&&" requires the previous status zero, "||" requires
// it nonzero); a skipped statement leaves status untouched so a later
// link in the same chain still sees the right value to decide on.
func (x *Executor) runStatements(stmts []*ast.Statement) (int, error) {
	status := 0
	for i, st := range stmts {
		run := true
		if i > 0 {
			switch stmts[i-1].AndOr {
			case ast.SeqAnd:
				run = status == 0
			case ast.SeqOr:
				run = status != 0
			}
		}
		if !run {
			continue
		}

		var err error
		status, err = x.runPipeline(st.Pipeline, st.Background)
		if err != nil {
			return status, err
		}
		if st.Negate {
			status = negate(status)
		}
		x.Store.LastExit = status

		if err := x.checkErrexit(st, status); err != nil {
			return status, err
		}
	}
	return status, nil
}

func negate(status int) int {
	if status == 0 {
		return 1
	}
	return 0
}

// checkErrexit aborts the invocation (returning a SignalExit) when set -e
// is active, the statement's status is nonzero, and the statement is not
// in one of bash's forgiven positions: condition clauses (runCondition
// suspends errexit while they run), a non-final
// member of && / ||, a "!"-negated statement, or a non-last pipeline stage
// (handled inside runPipeline unless pipefail is set).
func (x *Executor) checkErrexit(st *ast.Statement, status int) error {
	if !x.Store.Options.Errexit || status == 0 {
		return nil
	}
	if st.Negate {
		return nil
	}
	if st.AndOr == ast.SeqAnd || st.AndOr == ast.SeqOr {
		return nil
	}
	x.fireTrap("ERR")
	return &command.Signal{Kind: command.SignalExit, Status: status}
}

func (x *Executor) fireTrap(name string) {
	action, ok := x.Store.Traps[name]
	if !ok || action == "" {
		return
	}
	delete(x.Store.Traps, name) // EXIT/ERR traps fire at most once per unwind
	_, _ = x.runScriptText(action)
}

// Eval parses and runs src against x's store, the entry point hsh.Run and
// cmd/hsh drive one invocation through. An EXIT trap still registered when
// the script runs to its end fires here.
func (x *Executor) Eval(src string) (int, error) {
	status, err := x.runScriptText(src)
	if err == nil {
		x.fireTrap("EXIT")
	}
	return status, err
}

func (x *Executor) runScriptText(src string) (int, error) {
	sc, err := x.parseScript(src)
	if err != nil {
		return 2, &shellerr.ParseError{Message: err.Error()}
	}
	return x.RunScript(sc)
}
