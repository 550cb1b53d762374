package cond

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/state"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// litWord builds a single-part literal Word, the shape every test below
// needs as a CondExpr operand.
func litWord(s string) *ast.Word {
	return &ast.Word{Parts: []*ast.WordPart{{Kind: ast.PartLiteral, Literal: s}}}
}

// literalExpand is a WordExpander that returns each word's literal text
// verbatim, standing in for the executor's real expansion pipeline.
func literalExpand(w *ast.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	var out string
	for _, p := range w.Parts {
		out += p.Literal
	}
	return out, nil
}

func TestEvalStringComparisons(t *testing.T) {
	cases := []struct {
		name string
		expr ast.CondExpr
		want bool
	}{
		{"str eq match", ast.CondExpr{Op: ast.CondStrEq, L: litWord("abc"), R: litWord("abc")}, true},
		{"str eq glob", ast.CondExpr{Op: ast.CondStrEq, L: litWord("abc"), R: litWord("a*")}, true},
		{"str eq mismatch", ast.CondExpr{Op: ast.CondStrEq, L: litWord("abc"), R: litWord("xyz")}, false},
		{"str ne", ast.CondExpr{Op: ast.CondStrNe, L: litWord("abc"), R: litWord("xyz")}, true},
		{"str lt", ast.CondExpr{Op: ast.CondStrLt, L: litWord("a"), R: litWord("b")}, true},
		{"str gt", ast.CondExpr{Op: ast.CondStrGt, L: litWord("b"), R: litWord("a")}, true},
		{"str empty true", ast.CondExpr{Op: ast.CondStrEmpty, L: litWord("")}, true},
		{"str empty false", ast.CondExpr{Op: ast.CondStrEmpty, L: litWord("x")}, false},
		{"str nonempty", ast.CondExpr{Op: ast.CondStrNonEmpty, L: litWord("x")}, true},
		{"bare word true", ast.CondExpr{Op: ast.CondWord, L: litWord("set")}, true},
		{"bare word false", ast.CondExpr{Op: ast.CondWord, L: litWord("")}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			got, err := Eval(c.expr, literalExpand, vfs.NewMemFS(), Options{}, nil)
			require.NoError(t, err)
			assert.Equal(t, c.want, got, "Eval(%s)", c.name)
		})
	}
}

// Table-driven via testify/assert, same rationale as internal/arith's suite:
// one assertion line instead of a repeated if/Errorf per comparison operator.
func TestEvalNumericComparisons(t *testing.T) {
	cases := []struct {
		op   ast.CondOp
		l, r string
		want bool
	}{
		{ast.CondNumEq, "3", "3", true},
		{ast.CondNumNe, "3", "4", true},
		{ast.CondNumLt, "3", "4", true},
		{ast.CondNumLe, "4", "4", true},
		{ast.CondNumGt, "5", "4", true},
		{ast.CondNumGe, "4", "4", true},
	}
	for _, c := range cases {
		expr := ast.CondExpr{Op: c.op, L: litWord(c.l), R: litWord(c.r)}
		got, err := Eval(expr, literalExpand, vfs.NewMemFS(), Options{}, nil)
		require.NoError(t, err)
		assert.Equal(t, c.want, got, "Eval(%v %s %s)", c.op, c.l, c.r)
	}
}

func TestEvalLogicalCombinators(t *testing.T) {
	truthy := ast.CondExpr{Op: ast.CondWord, L: litWord("x")}
	falsy := ast.CondExpr{Op: ast.CondWord, L: litWord("")}

	and := ast.CondExpr{Op: ast.CondAnd, X: &truthy, Y: &falsy}
	if got, _ := Eval(and, literalExpand, vfs.NewMemFS(), Options{}, nil); got {
		t.Error("true && false should be false")
	}
	or := ast.CondExpr{Op: ast.CondOr, X: &falsy, Y: &truthy}
	if got, _ := Eval(or, literalExpand, vfs.NewMemFS(), Options{}, nil); !got {
		t.Error("false || true should be true")
	}
	not := ast.CondExpr{Op: ast.CondNot, Sub: &falsy}
	if got, _ := Eval(not, literalExpand, vfs.NewMemFS(), Options{}, nil); !got {
		t.Error("!false should be true")
	}
	group := ast.CondExpr{Op: ast.CondGroup, Sub: &truthy}
	if got, _ := Eval(group, literalExpand, vfs.NewMemFS(), Options{}, nil); !got {
		t.Error("(true) should be true")
	}
}

func TestEvalFileTests(t *testing.T) {
	fs := vfs.NewMemFS()
	if err := fs.WriteFile("/exists.txt", []byte("hi"), vfs.WriteOpts{}); err != nil {
		t.Fatalf("WriteFile error: %v", err)
	}
	if err := fs.Mkdir("/adir", true); err != nil {
		t.Fatalf("Mkdir error: %v", err)
	}

	cases := []struct {
		name string
		flag string
		path string
		want bool
	}{
		{"-e exists", "e", "/exists.txt", true},
		{"-e missing", "e", "/nope.txt", false},
		{"-f regular file", "f", "/exists.txt", true},
		{"-f on dir", "f", "/adir", false},
		{"-d dir", "d", "/adir", true},
		{"-s nonempty", "s", "/exists.txt", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			expr := ast.CondExpr{Op: ast.CondUnaryFile, Flag: c.flag, L: litWord(c.path)}
			got, err := Eval(expr, literalExpand, fs, Options{}, nil)
			if err != nil {
				t.Fatalf("Eval error: %v", err)
			}
			if got != c.want {
				t.Errorf("-%s %s = %v, want %v", c.flag, c.path, got, c.want)
			}
		})
	}
}

func TestEvalRegexMatch(t *testing.T) {
	store := state.New()
	expr := ast.CondExpr{Op: ast.CondRegexMatch, L: litWord("hello123"), R: litWord(`[a-z]+([0-9]+)`)}
	got, err := Eval(expr, literalExpand, vfs.NewMemFS(), Options{}, store)
	if err != nil {
		t.Fatalf("Eval error: %v", err)
	}
	if !got {
		t.Fatal("expected regex match")
	}
	cell, ok := store.Get("BASH_REMATCH")
	if !ok {
		t.Fatal("expected BASH_REMATCH to be set after a successful =~ match")
	}
	if cell.Indexed[0] != "hello123" || cell.Indexed[1] != "123" {
		t.Errorf("BASH_REMATCH = %+v, want whole match and one capture group", cell.Indexed)
	}
}
