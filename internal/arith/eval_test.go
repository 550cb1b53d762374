package arith

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hermetic-sh/hsh/internal/parser"
	"github.com/hermetic-sh/hsh/internal/state"
)

func evalString(t *testing.T, store *state.Store, expr string) int64 {
	t.Helper()
	tree, err := parser.ParseArithString(expr)
	require.NoError(t, err, "ParseArithString(%q)", expr)
	v, err := Eval(tree, store)
	require.NoError(t, err, "Eval(%q)", expr)
	return v
}

// Table-driven via testify/assert: this suite is almost pure "expression in,
// integer out" and gains readability from assert.Equal's diff output over
// repeating the same if got != want block 20+ times.
func TestEvalArithmetic(t *testing.T) {
	cases := []struct {
		expr string
		want int64
	}{
		{"1 + 2", 3},
		{"2 * 3 + 4", 10},
		{"2 + 3 * 4", 14},
		{"(2 + 3) * 4", 20},
		{"10 / 3", 3},
		{"10 % 3", 1},
		{"2 ** 10", 1024},
		{"1 == 1", 1},
		{"1 == 2", 0},
		{"1 != 2", 1},
		{"1 < 2 && 2 < 3", 1},
		{"1 > 2 || 2 < 3", 1},
		{"5 & 3", 1},
		{"5 | 2", 7},
		{"5 ^ 1", 4},
		{"1 << 4", 16},
		{"256 >> 4", 16},
		{"1 ? 2 : 3", 2},
		{"0 ? 2 : 3", 3},
		{"-5 + 10", 5},
		{"!0", 1},
		{"!5", 0},
		{"~0", -1},
	}
	for _, c := range cases {
		t.Run(c.expr, func(t *testing.T) {
			store := state.New()
			assert.Equal(t, c.want, evalString(t, store, c.expr), "Eval(%q)", c.expr)
		})
	}
}

func TestEvalVariables(t *testing.T) {
	store := state.New()
	store.Set("x", state.NewScalarCell("5"))
	store.Set("y", state.NewScalarCell("7"))

	assert.Equal(t, int64(12), evalString(t, store, "x + y"))
}

func TestEvalUnsetVariableIsZero(t *testing.T) {
	store := state.New()
	if got := evalString(t, store, "unset_var + 1"); got != 1 {
		t.Errorf("unset_var + 1 = %d, want 1", got)
	}
}

func TestEvalAssignment(t *testing.T) {
	store := state.New()
	store.Set("x", state.NewScalarCell("1"))

	if got := evalString(t, store, "x = 9"); got != 9 {
		t.Errorf("(x = 9) = %d, want 9", got)
	}
	cell, ok := store.Get("x")
	if !ok || cell.Scalar != "9" {
		t.Errorf("after assignment, x = %+v, want scalar 9", cell)
	}
}

func TestEvalNilExpr(t *testing.T) {
	v, err := Eval(nil, state.New())
	if err != nil {
		t.Fatalf("Eval(nil) error: %v", err)
	}
	if v != 0 {
		t.Errorf("Eval(nil) = %d, want 0", v)
	}
}

func TestEvalDivideByZero(t *testing.T) {
	store := state.New()
	tree, err := parser.ParseArithString("1 / 0")
	if err != nil {
		t.Fatalf("ParseArithString error: %v", err)
	}
	if _, err := Eval(tree, store); err == nil {
		t.Error("Eval(1 / 0) should return an error")
	}
}
