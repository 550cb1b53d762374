// Package hsh is the public entry point for the hermetic shell
// interpreter: Run takes script text plus a caller-configured environment
// (working directory, variables, virtual filesystem, resource limits) and
// returns the interpreter's captured stdout, stderr, and exit status.
// Nothing persists between calls except whatever the caller's vfs.FS holds
// onto itself.
package hsh

import (
	"strings"
	"time"

	"github.com/hermetic-sh/hsh/internal/command"
	"github.com/hermetic-sh/hsh/internal/exec"
	"github.com/hermetic-sh/hsh/internal/shellerr"
	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// Limits bounds one Run invocation's resource consumption. Zero fields fall
// back to state.DefaultLimits' values; cmd/hsh additionally populates this
// from a YAML file or HSH_-prefixed environment variables via envconfig.
type Limits struct {
	MaxRecursionDepth int           `envconfig:"MAX_RECURSION" yaml:"maxRecursionDepth"`
	MaxCommands       int           `envconfig:"MAX_COMMANDS" yaml:"maxCommands"`
	MaxLoopIterations int           `envconfig:"MAX_LOOP_ITERATIONS" yaml:"maxLoopIterations"`
	Timeout           time.Duration `envconfig:"TIMEOUT" yaml:"timeout"`
}

// Options configures one Run invocation.
type Options struct {
	Cwd      string            // initial PWD; defaults to "/"
	Env      map[string]string // seeds exported scalar variables
	Args     []string          // positional parameters ($1...); Args[0] becomes $0 when ScriptName is empty
	ScriptName string          // $0; defaults to "hsh" or Args[0]
	Limits   Limits
	FS       vfs.FS            // defaults to a fresh vfs.NewMemFS()
	Builtins *command.Registry // defaults to builtin.RegisterAll's table
	Errexit  bool              // prepend "set -e", mirroring the CLI's -e flag
}

// Run parses and executes script against opts, returning its captured
// output streams and exit status. A non-nil err means a fatal,
// invocation-aborting failure (parse error, resource-limit violation);
// stdout/stderr returned alongside it still hold whatever was captured
// before the abort.
func Run(script string, opts Options) (stdout, stderr string, exitCode int, err error) {
	store := state.New()
	applyLimits(store, opts.Limits)
	seedEnv(store, opts)

	fs := opts.FS
	if fs == nil {
		fs = vfs.NewMemFS()
	}

	var outBuf, errBuf strings.Builder
	x := exec.New(store, fs, strings.NewReader(""), &outBuf, &errBuf)
	if opts.Limits.Timeout > 0 {
		x.Deadline = time.Now().Add(opts.Limits.Timeout)
	}
	if opts.Builtins != nil {
		x.Builtins = opts.Builtins
	}

	src := script
	if opts.Errexit {
		src = "set -e\n" + src
	}

	status, runErr := x.Eval(src)
	return outBuf.String(), errBuf.String(), clampStatus(status), classifyFatal(runErr)
}

func applyLimits(store *state.Store, l Limits) {
	d := state.DefaultLimits()
	if l.MaxRecursionDepth > 0 {
		d.MaxRecursionDepth = l.MaxRecursionDepth
	}
	if l.MaxCommands > 0 {
		d.MaxCommands = l.MaxCommands
	}
	if l.MaxLoopIterations > 0 {
		d.MaxLoopIterations = l.MaxLoopIterations
	}
	store.Limits = d
}

func seedEnv(store *state.Store, opts Options) {
	cwd := opts.Cwd
	if cwd == "" {
		cwd = "/"
	}
	store.Set("PWD", state.NewScalarCell(cwd))
	store.Set("IFS", state.NewScalarCell(" \t\n"))
	store.Set("OPTIND", state.NewScalarCell("1"))

	for name, val := range opts.Env {
		cell := state.NewScalarCell(val)
		cell.Attrs |= state.AttrExported
		store.Set(name, cell)
	}

	name := opts.ScriptName
	if name == "" {
		if len(opts.Args) > 0 {
			name = opts.Args[0]
		} else {
			name = "hsh"
		}
	}
	store.ScriptName = name
	if len(opts.Args) > 0 {
		store.Positional = append([]string(nil), opts.Args[1:]...)
	}
}

// clampStatus mirrors the CLI contract's "exit status capped to 0..255".
func clampStatus(status int) int {
	if status < 0 {
		status = 0
	}
	return status & 0xff
}

// classifyFatal turns an *exec.Executor error that escaped RunScript into
// the err return value Run's callers see: only the taxonomy's fatal
// classes (parse, limit errors) are surfaced as a real error; a SignalExit
// unwind from an explicit "exit" is not an error at all (a script that
// simply runs to its end returns no error in the first place).
func classifyFatal(err error) error {
	if err == nil {
		return nil
	}
	switch err.(type) {
	case *shellerr.ParseError, *shellerr.LimitError:
		return err
	}
	return nil
}
