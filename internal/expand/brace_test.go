package expand

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hermetic-sh/hsh/internal/ast"
)

// Table-driven via testify/assert: assert.Equal's slice diff output beats a
// hand-rolled reflect.DeepEqual/Errorf pair across this many cases.
func TestExpandBraceTextAlternation(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"a{b,c,d}e", []string{"abe", "ace", "ade"}},
		{"no braces here", []string{"no braces here"}},
		{"{a,b}{1,2}", []string{"a1", "a2", "b1", "b2"}},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, expandBraceText(c.in))
		})
	}
}

func TestExpandBraceTextRanges(t *testing.T) {
	cases := []struct {
		in   string
		want []string
	}{
		{"{1..5}", []string{"1", "2", "3", "4", "5"}},
		{"{5..1}", []string{"5", "4", "3", "2", "1"}},
		{"{1..10..3}", []string{"1", "4", "7", "10"}},
		{"{a..e}", []string{"a", "b", "c", "d", "e"}},
		{"{e..a..2}", []string{"e", "c", "a"}},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			assert.Equal(t, c.want, expandBraceText(c.in))
		})
	}
}

func TestExpandBraceTextInvalidStaysLiteral(t *testing.T) {
	cases := []string{"{single}", "{1..}", "{a,b", "plain}"}
	for _, in := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, []string{in}, expandBraceText(in))
		})
	}
}

func TestIsSimpleLiteral(t *testing.T) {
	lit := &ast.Word{Parts: []*ast.WordPart{{Kind: ast.PartLiteral, Literal: "hi"}}}
	if s, ok := isSimpleLiteral(lit); !ok || s != "hi" {
		t.Errorf("isSimpleLiteral(literal word) = %q, %v, want \"hi\", true", s, ok)
	}

	quoted := &ast.Word{Parts: []*ast.WordPart{{Kind: ast.PartSingleQuoted, Literal: "hi"}}}
	if _, ok := isSimpleLiteral(quoted); ok {
		t.Error("isSimpleLiteral should reject a quoted word part")
	}
}

func TestExpandBracesDisabled(t *testing.T) {
	w := &ast.Word{Parts: []*ast.WordPart{{Kind: ast.PartLiteral, Literal: "{a,b}"}}}
	out := expandBraces(w, false)
	if len(out) != 1 || out[0] != w {
		t.Error("expandBraces with enabled=false should pass the word through unchanged")
	}
}

func TestExpandBracesAlternation(t *testing.T) {
	w := &ast.Word{Parts: []*ast.WordPart{{Kind: ast.PartLiteral, Literal: "file{1,2}.txt"}}}
	out := expandBraces(w, true)
	if len(out) != 2 {
		t.Fatalf("expandBraces returned %d words, want 2", len(out))
	}
	got := []string{out[0].Parts[0].Literal, out[1].Parts[0].Literal}
	assert.Equal(t, []string{"file1.txt", "file2.txt"}, got)
}

func TestExpandBracesNonLiteralPassesThrough(t *testing.T) {
	w := &ast.Word{Parts: []*ast.WordPart{{Kind: ast.PartParam, Param: &ast.Param{Name: "x"}}}}
	out := expandBraces(w, true)
	if len(out) != 1 || out[0] != w {
		t.Error("expandBraces should pass through a word with non-literal parts unchanged")
	}
}
