package builtin

import (
	"strconv"

	"github.com/hermetic-sh/hsh/internal/command"
)

// builtinTest implements the POSIX "test"/"[" algorithm directly against
// already-expanded argv strings — the conditional-expression tree
// internal/cond evaluates belongs to "[[ ]]", which parses its own operand
// words; "test" instead dispatches purely on argument count, per POSIX.
func builtinTest(ctx *command.Context) (int, error) {
	args := ctx.Args[1:]
	if ctx.Args[0] == "[" {
		if len(args) == 0 || args[len(args)-1] != "]" {
			return 2, nil
		}
		args = args[:len(args)-1]
	}
	ok, bad := evalTestArgs(ctx, args)
	if bad {
		return 2, nil
	}
	if ok {
		return 0, nil
	}
	return 1, nil
}

func evalTestArgs(ctx *command.Context, args []string) (ok bool, badUsage bool) {
	switch len(args) {
	case 0:
		return false, false
	case 1:
		return args[0] != "", false
	case 2:
		if args[0] == "!" {
			ok, bad := evalTestArgs(ctx, args[1:])
			return !ok, bad
		}
		return evalUnary(ctx, args[0], args[1])
	case 3:
		if args[0] == "!" {
			ok, bad := evalTestArgs(ctx, args[1:])
			return !ok, bad
		}
		return evalBinary(ctx, args[0], args[1], args[2])
	case 4:
		if args[0] == "!" {
			ok, bad := evalTestArgs(ctx, args[1:])
			return !ok, bad
		}
		if args[0] == "(" && args[3] == ")" {
			return evalTestArgs(ctx, args[1:3])
		}
		return false, true
	default:
		return false, true
	}
}

func evalUnary(ctx *command.Context, flag, operand string) (bool, bool) {
	switch flag {
	case "-z":
		return operand == "", false
	case "-n":
		return operand != "", false
	case "-e":
		return ctx.FS.Exists(operand), false
	case "-f":
		info, err := ctx.FS.Stat(operand)
		return err == nil && !info.IsDir, false
	case "-d":
		info, err := ctx.FS.Stat(operand)
		return err == nil && info.IsDir, false
	case "-s":
		info, err := ctx.FS.Stat(operand)
		return err == nil && info.Size > 0, false
	case "-L", "-h":
		info, err := ctx.FS.Lstat(operand)
		return err == nil && info.IsLink, false
	case "-r", "-w", "-x":
		_, err := ctx.FS.Stat(operand)
		return err == nil, false
	default:
		return false, true
	}
}

func evalBinary(ctx *command.Context, l, op, r string) (bool, bool) {
	switch op {
	case "=", "==":
		return l == r, false
	case "!=":
		return l != r, false
	case "-eq", "-ne", "-lt", "-le", "-gt", "-ge":
		li, lerr := strconv.ParseInt(l, 10, 64)
		ri, rerr := strconv.ParseInt(r, 10, 64)
		if lerr != nil || rerr != nil {
			return false, true
		}
		switch op {
		case "-eq":
			return li == ri, false
		case "-ne":
			return li != ri, false
		case "-lt":
			return li < ri, false
		case "-le":
			return li <= ri, false
		case "-gt":
			return li > ri, false
		case "-ge":
			return li >= ri, false
		}
	case "-nt":
		li, lerr := ctx.FS.Stat(l)
		ri, rerr := ctx.FS.Stat(r)
		return rerr != nil || (lerr == nil && li.ModTime.After(ri.ModTime)), false
	case "-ot":
		li, lerr := ctx.FS.Stat(l)
		ri, rerr := ctx.FS.Stat(r)
		return lerr != nil || (rerr == nil && li.ModTime.Before(ri.ModTime)), false
	case "-ef":
		lp, lerr := ctx.FS.Realpath(l)
		rp, rerr := ctx.FS.Realpath(r)
		return lerr == nil && rerr == nil && lp == rp, false
	}
	return false, true
}
