// Package shellerr formats the diagnostic taxonomy an interpreter
// invocation reports: parse-time syntax errors, runtime command/filesystem
// errors, and execution-limit violations, each carrying the exit status
// its class maps to. internal/exec writes their Error() text as the single
// diagnostic line a fatal failure contributes to captured stderr.
package shellerr

import (
	"fmt"
	"strings"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
)

// ParseError is a lexer/parser-phase failure: unterminated quote or
// substitution, missing keyword, malformed redirection. Always fatal,
// exit status 2.
type ParseError struct {
	Program string // $0, when known
	Message string
	Line    int
	Column  int
}

func (e *ParseError) Error() string {
	prog := e.Program
	if prog == "" {
		prog = "hsh"
	}
	if e.Line > 0 {
		return fmt.Sprintf("%s: line %d:%d: %s", prog, e.Line, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", prog, e.Message)
}

// ExitStatus is always 2 for a parse error, matching spec.md's error
// taxonomy.
func (e *ParseError) ExitStatus() int { return 2 }

// RuntimeError is a command or filesystem failure surfaced as the
// conventional shell diagnostic line; its exit status is carried
// separately by whatever produced it (builtins return their own status
// alongside this error only when the failure is unrecoverable enough to
// abort the invocation, e.g. a redirection target that cannot be opened).
type RuntimeError struct {
	Program string
	Context string // command/builtin name, when known
	Message string
}

func (e *RuntimeError) Error() string {
	prog := e.Program
	if prog == "" {
		prog = "hsh"
	}
	if e.Context != "" {
		return fmt.Sprintf("%s: %s: %s", prog, e.Context, e.Message)
	}
	return fmt.Sprintf("%s: %s", prog, e.Message)
}

// LimitKind tags which execution limit was exceeded.
type LimitKind int

const (
	LimitRecursion LimitKind = iota
	LimitCommands
	LimitLoopIterations
	LimitTimeout
)

func (k LimitKind) String() string {
	switch k {
	case LimitRecursion:
		return "recursion depth exceeded"
	case LimitCommands:
		return "too many commands executed"
	case LimitLoopIterations:
		return "loop iteration limit exceeded"
	case LimitTimeout:
		return "execution timed out"
	default:
		return "execution limit exceeded"
	}
}

// LimitError is fatal, exit status 2, raised when a caller-configured
// resource bound (internal/state.Limits) is exceeded.
type LimitError struct {
	Program string
	Kind    LimitKind
}

func (e *LimitError) Error() string {
	prog := e.Program
	if prog == "" {
		prog = "hsh"
	}
	return fmt.Sprintf("%s: %s", prog, e.Kind)
}

func (e *LimitError) ExitStatus() int { return 2 }

// CommandNotFound and NotExecutable map dispatch failures to their
// conventional exit statuses (127 and 126 respectively, per spec.md
// §4.7/§7).
type CommandNotFound struct {
	Program string
	Name    string
}

func (e *CommandNotFound) Error() string {
	prog := e.Program
	if prog == "" {
		prog = "hsh"
	}
	return fmt.Sprintf("%s: %s: command not found", prog, e.Name)
}

func (e *CommandNotFound) ExitStatus() int { return 127 }

type NotExecutable struct {
	Program string
	Name    string
}

func (e *NotExecutable) Error() string {
	prog := e.Program
	if prog == "" {
		prog = "hsh"
	}
	return fmt.Sprintf("%s: %s: Permission denied", prog, e.Name)
}

func (e *NotExecutable) ExitStatus() int { return 126 }

// FromLexErrors converts a lexer's accumulated errors to ParseErrors, the
// way cmd/hsh's parse and fmt subcommands report a tokenizing failure.
func FromLexErrors(errs []lexer.LexerError, program string) []*ParseError {
	out := make([]*ParseError, 0, len(errs))
	for _, e := range errs {
		out = append(out, &ParseError{Program: program, Message: e.Message})
	}
	return out
}

// FromParseErrors converts a parser's accumulated errors to ParseErrors,
// carrying each one's source position through.
func FromParseErrors(errs []*parser.ParseError, program string) []*ParseError {
	out := make([]*ParseError, 0, len(errs))
	for _, e := range errs {
		out = append(out, &ParseError{
			Program: program,
			Message: e.Message,
			Line:    e.Pos.Line,
			Column:  e.Pos.Column,
		})
	}
	return out
}

// FormatErrors joins one invocation's parse errors into the single
// diagnostic block written to stderr before the "parsing failed" exit.
func FormatErrors(errs []*ParseError) string {
	lines := make([]string, len(errs))
	for i, e := range errs {
		lines[i] = e.Error()
	}
	return strings.Join(lines, "\n")
}
