// Package builtin implements the special and regular builtins the
// executor dispatches to before ever consulting an external command.
// Concerns are split one file per family, mirroring
// internal/bytecode/vm_builtins*.go's registerXBuiltins split in the
// teacher.
package builtin

import (
	"strconv"

	"github.com/hermetic-sh/hsh/internal/command"
)

// RegisterAll populates r with every builtin this package implements.
func RegisterAll(r *command.Registry) {
	registerCoreBuiltins(r)
	registerVarBuiltins(r)
	registerIOBuiltins(r)
	registerControlBuiltins(r)
	registerIntrospectBuiltins(r)
}

func registerCoreBuiltins(r *command.Registry) {
	r.Register(":", builtinColon)
	r.Register("true", builtinTrue)
	r.Register("false", builtinFalse)
	r.Register("exit", builtinExit)
	r.Register("return", builtinReturn)
	r.Register("break", builtinBreak)
	r.Register("continue", builtinContinue)
}

func builtinColon(ctx *command.Context) (int, error) { return 0, nil }
func builtinTrue(ctx *command.Context) (int, error)  { return 0, nil }
func builtinFalse(ctx *command.Context) (int, error) { return 1, nil }

func builtinExit(ctx *command.Context) (int, error) {
	status := ctx.Store.LastExit
	if len(ctx.Args) > 1 {
		n, err := strconv.Atoi(ctx.Args[1])
		if err != nil {
			return 2, &command.Signal{Kind: command.SignalExit, Status: 2}
		}
		status = n
	}
	return status, &command.Signal{Kind: command.SignalExit, Status: status & 0xff}
}

func builtinReturn(ctx *command.Context) (int, error) {
	status := ctx.Store.LastExit
	if len(ctx.Args) > 1 {
		if n, err := strconv.Atoi(ctx.Args[1]); err == nil {
			status = n
		}
	}
	return status, &command.Signal{Kind: command.SignalReturn, Status: status & 0xff}
}

func builtinBreak(ctx *command.Context) (int, error) {
	n := levelsArg(ctx.Args)
	return 0, &command.Signal{Kind: command.SignalBreak, Levels: n}
}

func builtinContinue(ctx *command.Context) (int, error) {
	n := levelsArg(ctx.Args)
	return 0, &command.Signal{Kind: command.SignalContinue, Levels: n}
}

func levelsArg(args []string) int {
	if len(args) > 1 {
		if n, err := strconv.Atoi(args[1]); err == nil && n > 0 {
			return n
		}
	}
	return 1
}
