// Package command defines the contract internal/exec uses to invoke both
// special/regular builtins (internal/builtin) and external commands: a
// fixed argv/stdio/environment shape in, an exit status out.
package command

import (
	"io"

	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// Context carries everything a builtin needs for one invocation. The
// executor builds a fresh Context per simple command; builtins that spawn
// further commands (eval, source, exec) receive the same Context they were
// called with and recurse through its Run (exec) or Eval (eval, source).
type Context struct {
	Args   []string // Args[0] is the command name as typed, unexpanded alias target included
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	Store  *state.Store
	FS     vfs.FS

	// Run lets a builtin (exec) re-enter command
	// dispatch without internal/command depending on internal/exec.
	Run func(ctx *Context, name string, args []string) (int, error)

	// Eval lets eval/source parse and run arbitrary script text against
	// the current Store, again without internal/command importing
	// internal/exec (which itself imports internal/command).
	Eval func(ctx *Context, src string) (int, error)
}

// Func is a builtin implementation. The returned int is the command's exit
// status; a non-nil error signals a fatal failure (I/O error against the
// VFS, etc.) that the executor should report distinctly from a plain
// non-zero exit.
type Func func(ctx *Context) (int, error)

// Registry maps builtin names to their implementations. internal/builtin
// populates one at init via per-concern Register* functions, mirroring the
// teacher's registerXBuiltins split.
type Registry struct {
	fns map[string]Func
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{fns: make(map[string]Func)}
}

// Register adds or replaces the implementation for name.
func (r *Registry) Register(name string, fn Func) {
	r.fns[name] = fn
}

// Lookup returns the implementation for name, if any.
func (r *Registry) Lookup(name string) (Func, bool) {
	fn, ok := r.fns[name]
	return fn, ok
}

// Names returns every registered builtin name, for "type"/"command -v".
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.fns))
	for name := range r.fns {
		names = append(names, name)
	}
	return names
}

// Signal is a non-local control-flow transfer raised by break, continue,
// return, and exit. It travels up as a Go error (errors.As-matched by
// internal/exec) rather than as a field on Context, so that a builtin
// calling Run or Eval (exec, eval, source) doesn't
// need to thread an extra out-parameter through every call site — the
// same tagged-result idea SPEC_FULL.md's executor design note calls for,
// expressed as an error type instead of a bespoke sum type since Go's
// error interface already gives errors.As the matching for free.
type Signal struct {
	Kind   SignalKind
	Levels int // break/continue N
	Status int // return/exit status
}

func (s *Signal) Error() string { return "shell control-flow signal" }

// SignalKind distinguishes the four non-local transfers.
type SignalKind int

const (
	SignalBreak SignalKind = iota
	SignalContinue
	SignalReturn
	SignalExit
)

// SpecialBuiltins names the POSIX special builtins. internal/exec consults
// this set only to make assignments preceding them persist in the current
// shell, independent of how the builtin itself is registered; errors in
// them are handled like any other command's.
var SpecialBuiltins = map[string]bool{
	"break": true, "continue": true, ":": true, ".": true, "eval": true,
	"exec": true, "exit": true, "export": true, "readonly": true,
	"return": true, "set": true, "shift": true, "trap": true, "unset": true,
	"local": true,
}
