// Package arith evaluates the ast.ArithExpr trees internal/parser builds
// for "(( ))", "$(( ))", and C-style for headers, against a state.Store —
// distinct from internal/parser's arithmetic Pratt parser, which only
// builds the tree and never touches variable values.
package arith

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/state"
)

// Error is a fatal arithmetic evaluation error (division by zero, bad
// token in a runtime-constructed expression, etc).
type Error struct{ Message string }

func (e *Error) Error() string { return e.Message }

// Eval evaluates expr against store, returning its integer value.
func Eval(expr *ast.ArithExpr, store *state.Store) (int64, error) {
	if expr == nil {
		return 0, nil
	}
	switch {
	case expr.IsLiteral:
		return expr.Literal, nil
	case expr.IsVar:
		return evalVar(expr, store)
	case expr.IsUnary:
		return evalUnary(expr, store)
	case expr.IsBinary:
		return evalBinary(expr, store)
	case expr.IsTernary:
		c, err := Eval(expr.Cond, store)
		if err != nil {
			return 0, err
		}
		if c != 0 {
			return Eval(expr.T, store)
		}
		return Eval(expr.F, store)
	}
	return 0, &Error{"empty arithmetic expression"}
}

func evalVar(expr *ast.ArithExpr, store *state.Store) (int64, error) {
	name := expr.VarName
	cell, ok := store.Get(name)
	if !ok {
		if expr.VarIndex != nil {
			return 0, nil
		}
		return 0, nil // unset variables evaluate to 0 in arithmetic context
	}
	if expr.VarIndex != nil {
		idx, err := Eval(expr.VarIndex, store)
		if err != nil {
			return 0, err
		}
		switch cell.Kind {
		case state.KindIndexed:
			return parseInt(cell.Indexed[idx]), nil
		case state.KindAssoc:
			return parseInt(cell.Assoc[strconv.FormatInt(idx, 10)]), nil
		default:
			return parseInt(cell.Scalar), nil
		}
	}
	return parseInt(cell.AsScalar()), nil
}

// parseInt parses a cell's textual value as an arithmetic operand: empty
// or non-numeric text evaluates to 0, matching bash's arithmetic coercion
// for unset/string variables (a stricter implementation would raise "bad
// substitution" — deferred to string-typed variables the executor flags
// as "not used in an arithmetic context" before reaching here).
func parseInt(s string) int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		n, _ := strconv.ParseInt(s[2:], 16, 64)
		return n
	}
	if i := strings.IndexByte(s, '#'); i > 0 {
		base, err := strconv.Atoi(s[:i])
		if err == nil {
			n, _ := strconv.ParseInt(s[i+1:], base, 64)
			return n
		}
	}
	if len(s) > 1 && s[0] == '0' {
		if n, err := strconv.ParseInt(s, 8, 64); err == nil {
			return n
		}
	}
	n, _ := strconv.ParseInt(s, 10, 64)
	return n
}

func evalUnary(expr *ast.ArithExpr, store *state.Store) (int64, error) {
	switch expr.UnaryOp {
	case ast.ArithPreInc, ast.ArithPreDec, ast.ArithPostInc, ast.ArithPostDec:
		old, err := Eval(expr.X, store)
		if err != nil {
			return 0, err
		}
		delta := int64(1)
		if expr.UnaryOp == ast.ArithPreDec || expr.UnaryOp == ast.ArithPostDec {
			delta = -1
		}
		newVal := old + delta
		if err := assign(expr.X, newVal, store); err != nil {
			return 0, err
		}
		if expr.UnaryOp == ast.ArithPreInc || expr.UnaryOp == ast.ArithPreDec {
			return newVal, nil
		}
		return old, nil
	}
	x, err := Eval(expr.X, store)
	if err != nil {
		return 0, err
	}
	switch expr.UnaryOp {
	case ast.ArithNeg:
		return -x, nil
	case ast.ArithPos:
		return x, nil
	case ast.ArithNot:
		return boolInt(x == 0), nil
	case ast.ArithBitNot:
		return ^x, nil
	}
	return 0, &Error{"unknown unary arithmetic operator"}
}

func evalBinary(expr *ast.ArithExpr, store *state.Store) (int64, error) {
	if isAssignOp(expr.BinOp) {
		return evalAssign(expr, store)
	}
	if expr.BinOp == ast.ArithLogAnd {
		l, err := Eval(expr.L, store)
		if err != nil {
			return 0, err
		}
		if l == 0 {
			return 0, nil
		}
		r, err := Eval(expr.R, store)
		if err != nil {
			return 0, err
		}
		return boolInt(r != 0), nil
	}
	if expr.BinOp == ast.ArithLogOr {
		l, err := Eval(expr.L, store)
		if err != nil {
			return 0, err
		}
		if l != 0 {
			return 1, nil
		}
		r, err := Eval(expr.R, store)
		if err != nil {
			return 0, err
		}
		return boolInt(r != 0), nil
	}
	if expr.BinOp == ast.ArithComma {
		if _, err := Eval(expr.L, store); err != nil {
			return 0, err
		}
		return Eval(expr.R, store)
	}

	l, err := Eval(expr.L, store)
	if err != nil {
		return 0, err
	}
	r, err := Eval(expr.R, store)
	if err != nil {
		return 0, err
	}
	switch expr.BinOp {
	case ast.ArithAdd:
		return l + r, nil
	case ast.ArithSub:
		return l - r, nil
	case ast.ArithMul:
		return l * r, nil
	case ast.ArithDiv:
		if r == 0 {
			return 0, &Error{"division by 0"}
		}
		return l / r, nil
	case ast.ArithMod:
		if r == 0 {
			return 0, &Error{"division by 0"}
		}
		return l % r, nil
	case ast.ArithPow:
		return intPow(l, r), nil
	case ast.ArithShl:
		return l << uint64(r), nil
	case ast.ArithShr:
		return l >> uint64(r), nil
	case ast.ArithLt:
		return boolInt(l < r), nil
	case ast.ArithLe:
		return boolInt(l <= r), nil
	case ast.ArithGt:
		return boolInt(l > r), nil
	case ast.ArithGe:
		return boolInt(l >= r), nil
	case ast.ArithEq:
		return boolInt(l == r), nil
	case ast.ArithNe:
		return boolInt(l != r), nil
	case ast.ArithBitAnd:
		return l & r, nil
	case ast.ArithBitXor:
		return l ^ r, nil
	case ast.ArithBitOr:
		return l | r, nil
	}
	return 0, &Error{fmt.Sprintf("unknown binary arithmetic operator %v", expr.BinOp)}
}

func isAssignOp(op ast.ArithOp) bool {
	switch op {
	case ast.ArithAssign, ast.ArithAddAssign, ast.ArithSubAssign, ast.ArithMulAssign,
		ast.ArithDivAssign, ast.ArithModAssign, ast.ArithPowAssign, ast.ArithShlAssign,
		ast.ArithShrAssign, ast.ArithAndAssign, ast.ArithXorAssign, ast.ArithOrAssign:
		return true
	}
	return false
}

func evalAssign(expr *ast.ArithExpr, store *state.Store) (int64, error) {
	var newVal int64
	if expr.BinOp == ast.ArithAssign {
		v, err := Eval(expr.R, store)
		if err != nil {
			return 0, err
		}
		newVal = v
	} else {
		old, err := Eval(expr.L, store)
		if err != nil {
			return 0, err
		}
		r, err := Eval(expr.R, store)
		if err != nil {
			return 0, err
		}
		switch expr.BinOp {
		case ast.ArithAddAssign:
			newVal = old + r
		case ast.ArithSubAssign:
			newVal = old - r
		case ast.ArithMulAssign:
			newVal = old * r
		case ast.ArithDivAssign:
			if r == 0 {
				return 0, &Error{"division by 0"}
			}
			newVal = old / r
		case ast.ArithModAssign:
			if r == 0 {
				return 0, &Error{"division by 0"}
			}
			newVal = old % r
		case ast.ArithPowAssign:
			newVal = intPow(old, r)
		case ast.ArithShlAssign:
			newVal = old << uint64(r)
		case ast.ArithShrAssign:
			newVal = old >> uint64(r)
		case ast.ArithAndAssign:
			newVal = old & r
		case ast.ArithXorAssign:
			newVal = old ^ r
		case ast.ArithOrAssign:
			newVal = old | r
		}
	}
	if err := assign(expr.L, newVal, store); err != nil {
		return 0, err
	}
	return newVal, nil
}

// assign writes newVal back to the variable target names, creating a
// plain scalar cell (no integer attribute) if the variable didn't exist yet.
func assign(target *ast.ArithExpr, newVal int64, store *state.Store) error {
	if !target.IsVar {
		return &Error{"assignment target is not a variable"}
	}
	text := strconv.FormatInt(newVal, 10)
	cell, ok := store.Get(target.VarName)
	if !ok {
		cell = state.NewScalarCell("")
	}
	if cell.Attrs.Has(state.AttrReadOnly) {
		return &Error{fmt.Sprintf("%s: readonly variable", target.VarName)}
	}
	if target.VarIndex != nil {
		idx, err := Eval(target.VarIndex, store)
		if err != nil {
			return err
		}
		switch cell.Kind {
		case state.KindAssoc:
			if cell.Assoc == nil {
				cell.Assoc = map[string]string{}
			}
			cell.Assoc[strconv.FormatInt(idx, 10)] = text
		default:
			cell.Kind = state.KindIndexed
			if cell.Indexed == nil {
				cell.Indexed = map[int64]string{}
			}
			cell.Indexed[idx] = text
		}
	} else {
		cell.Scalar = text
		if cell.Kind != state.KindIndexed && cell.Kind != state.KindAssoc {
			cell.Kind = state.KindScalar
		}
	}
	store.Set(target.VarName, cell)
	return nil
}

func boolInt(b bool) int64 {
	if b {
		return 1
	}
	return 0
}

func intPow(base, exp int64) int64 {
	if exp < 0 {
		return 0
	}
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			result *= base
		}
		base *= base
		exp >>= 1
	}
	return result
}
