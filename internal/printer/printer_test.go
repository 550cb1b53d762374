package printer

import (
	"testing"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
)

func mustPrint(t *testing.T, src string) string {
	t.Helper()
	l := lexer.New(src)
	script, p := parser.ParseScript(l)
	if errs := p.Errors(); len(errs) > 0 {
		t.Fatalf("parsing %q failed: %v", src, errs)
	}
	if errs := l.Errors(); len(errs) > 0 {
		t.Fatalf("lexing %q failed: %v", src, errs)
	}
	return Print(script)
}

func TestPrintSimpleCommand(t *testing.T) {
	got := mustPrint(t, "echo hello world\n")
	want := "echo hello world\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintPipeline(t *testing.T) {
	got := mustPrint(t, "echo hi | grep h\n")
	want := "echo hi | grep h\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintAndOr(t *testing.T) {
	got := mustPrint(t, "true && echo ok\n")
	want := "true &&\necho ok\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintIf(t *testing.T) {
	got := mustPrint(t, "if true; then echo yes; fi\n")
	want := "if true; then\n  echo yes\nfi\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintForLoop(t *testing.T) {
	got := mustPrint(t, "for x in a b c; do echo $x; done\n")
	want := "for x in a b c; do\n  echo $x\ndone\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintSingleQuoted(t *testing.T) {
	got := mustPrint(t, "echo 'a b'\n")
	want := "echo 'a b'\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintFunctionDef(t *testing.T) {
	got := mustPrint(t, "f() { echo hi; }\n")
	want := "f() {\n  echo hi\n}\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}

func TestPrintRedirect(t *testing.T) {
	got := mustPrint(t, "echo hi > out.txt\n")
	want := "echo hi >out.txt\n"
	if got != want {
		t.Errorf("Print() = %q, want %q", got, want)
	}
}
