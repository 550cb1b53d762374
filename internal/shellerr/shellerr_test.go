package shellerr

import (
	"testing"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
	"github.com/hermetic-sh/hsh/internal/token"
)

func TestParseErrorFormatting(t *testing.T) {
	withPos := &ParseError{Program: "myscript", Message: "unexpected token", Line: 4, Column: 9}
	want := "myscript: line 4:9: unexpected token"
	if got := withPos.Error(); got != want {
		t.Errorf("ParseError.Error() = %q, want %q", got, want)
	}

	noPos := &ParseError{Message: "syntax error"}
	if got := noPos.Error(); got != "hsh: syntax error" {
		t.Errorf("ParseError.Error() with no Program = %q, want %q", got, "hsh: syntax error")
	}

	if withPos.ExitStatus() != 2 {
		t.Errorf("ParseError.ExitStatus() = %d, want 2", withPos.ExitStatus())
	}
}

func TestRuntimeErrorFormatting(t *testing.T) {
	e := &RuntimeError{Program: "hsh", Context: "cd", Message: "no such file or directory"}
	want := "hsh: cd: no such file or directory"
	if got := e.Error(); got != want {
		t.Errorf("RuntimeError.Error() = %q, want %q", got, want)
	}

	noContext := &RuntimeError{Message: "generic failure"}
	if got := noContext.Error(); got != "hsh: generic failure" {
		t.Errorf("RuntimeError.Error() with no Context = %q, want %q", got, "hsh: generic failure")
	}
}

func TestLimitErrorFormatting(t *testing.T) {
	e := &LimitError{Program: "hsh", Kind: LimitRecursion}
	want := "hsh: recursion depth exceeded"
	if got := e.Error(); got != want {
		t.Errorf("LimitError.Error() = %q, want %q", got, want)
	}
	if e.ExitStatus() != 2 {
		t.Errorf("LimitError.ExitStatus() = %d, want 2", e.ExitStatus())
	}
}

func TestLimitKindString(t *testing.T) {
	cases := []struct {
		kind LimitKind
		want string
	}{
		{LimitRecursion, "recursion depth exceeded"},
		{LimitCommands, "too many commands executed"},
		{LimitLoopIterations, "loop iteration limit exceeded"},
		{LimitTimeout, "execution timed out"},
	}
	for _, c := range cases {
		if got := c.kind.String(); got != c.want {
			t.Errorf("LimitKind(%d).String() = %q, want %q", c.kind, got, c.want)
		}
	}
}

func TestCommandNotFoundAndNotExecutable(t *testing.T) {
	cnf := &CommandNotFound{Program: "hsh", Name: "frobnicate"}
	if got := cnf.Error(); got != "hsh: frobnicate: command not found" {
		t.Errorf("CommandNotFound.Error() = %q", got)
	}
	if cnf.ExitStatus() != 127 {
		t.Errorf("CommandNotFound.ExitStatus() = %d, want 127", cnf.ExitStatus())
	}

	ne := &NotExecutable{Program: "hsh", Name: "/etc/passwd"}
	if got := ne.Error(); got != "hsh: /etc/passwd: Permission denied" {
		t.Errorf("NotExecutable.Error() = %q", got)
	}
	if ne.ExitStatus() != 126 {
		t.Errorf("NotExecutable.ExitStatus() = %d, want 126", ne.ExitStatus())
	}
}

func TestFromLexErrors(t *testing.T) {
	errs := []lexer.LexerError{
		{Message: "unterminated string", Pos: token.Position{Line: 1, Column: 5}},
	}
	out := FromLexErrors(errs, "hsh")
	if len(out) != 1 {
		t.Fatalf("FromLexErrors returned %d errors, want 1", len(out))
	}
	if out[0].Message != "unterminated string" || out[0].Program != "hsh" {
		t.Errorf("FromLexErrors()[0] = %+v", out[0])
	}
}

func TestFromParseErrors(t *testing.T) {
	errs := []*parser.ParseError{
		{Message: "expected fi", Pos: token.Position{Line: 2, Column: 3}},
	}
	out := FromParseErrors(errs, "hsh")
	if len(out) != 1 {
		t.Fatalf("FromParseErrors returned %d errors, want 1", len(out))
	}
	if out[0].Line != 2 || out[0].Column != 3 || out[0].Message != "expected fi" {
		t.Errorf("FromParseErrors()[0] = %+v", out[0])
	}
}

func TestFormatErrorsJoinsWithNewlines(t *testing.T) {
	errs := []*ParseError{
		{Program: "hsh", Message: "first"},
		{Program: "hsh", Message: "second"},
	}
	got := FormatErrors(errs)
	want := "hsh: first\nhsh: second"
	if got != want {
		t.Errorf("FormatErrors() = %q, want %q", got, want)
	}
}

func TestFormatErrorsEmpty(t *testing.T) {
	if got := FormatErrors(nil); got != "" {
		t.Errorf("FormatErrors(nil) = %q, want empty string", got)
	}
}
