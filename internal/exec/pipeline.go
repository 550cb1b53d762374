package exec

import (
	"errors"
	"io"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
)

// runPipeline runs a pipeline's stages in source order. There are no real
// OS pipes: each stage but the last runs against an isolated store
// snapshot (a pipeline subshell, same as bash) with its stdout captured
// into a buffer that becomes the next stage's stdin; the last stage is
// isolated the same way unless shopt lastpipe is set, in which case it runs
// against the shared store, matching bash's "last command of a pipeline
// runs in the current shell" exception only when that option is on. Background ("&") pipelines still run to
// completion synchronously — there is no job control to defer them to.
func (x *Executor) runPipeline(p *ast.Pipeline, background bool) (int, error) {
	if len(p.Commands) == 1 {
		return x.runCommandNode(p.Commands[0], &ioSet{in: x.Stdin, out: x.Stdout, err: x.Stderr})
	}

	statuses := make([]int, len(p.Commands))
	var in io.Reader = x.Stdin

	for i, cmd := range p.Commands {
		last := i == len(p.Commands)-1
		isolated := !(last && x.Store.Options.LastPipe)

		out := x.Stdout
		var buf *strings.Builder
		if !last {
			buf = &strings.Builder{}
			out = buf
		}
		errW := x.Stderr
		if i < len(p.PipeStderr) && p.PipeStderr[i] {
			errW = out
		}

		stage := x
		if isolated {
			stage = x.child(x.Store.Snapshot(), in, out, errW)
		}

		status, err := stage.runCommandNode(cmd, &ioSet{in: in, out: out, err: errW})
		statuses[i] = status
		if isolated {
			x.Store.Restore(stage.Store)
		}
		if err != nil {
			if isSignal(err) && isolated {
				// A signal raised inside an isolated pipeline stage is that
				// stage's own subshell unwinding; it never escapes the
				// pipeline.
			} else {
				return status, err
			}
		}

		if buf != nil {
			in = strings.NewReader(buf.String())
		}
	}

	result := statuses[len(statuses)-1]
	if x.Store.Options.Pipefail {
		for i := len(statuses) - 1; i >= 0; i-- {
			if statuses[i] != 0 {
				result = statuses[i]
				break
			}
		}
	}
	return result, nil
}

// runCommandNode dispatches one pipeline stage by its concrete Command
// type: a FunctionDef declares (no exit-status-bearing effect beyond 0), a
// Simple runs through runSimple, and a Compound runs through runCompound.
func (x *Executor) runCommandNode(cmd ast.Command, fds *ioSet) (int, error) {
	switch c := cmd.(type) {
	case *ast.Simple:
		return x.runSimple(c, fds)
	case *ast.Compound:
		return x.runCompound(c, fds)
	case *ast.FunctionDef:
		x.Store.Functions[c.Name] = c
		return 0, nil
	default:
		return 1, errors.New("exec: unknown command node")
	}
}
