package expand

import (
	"strconv"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// expandProcessSub approximates "<(cmd)"/">(cmd)" without real OS pipes or
// concurrent processes (excluded by spec.md's Non-goals): the substituted
// word becomes a synthetic path under /dev/fd in the virtual filesystem.
// For "<(cmd)" the command runs eagerly and its stdout is written to that
// path before the enclosing command sees it, reproducing the one
// observable effect a hermetic interpreter can: the data is there to
// read. For ">(cmd)" there is no later writer to react to, so the path is
// created empty — a documented gap rather than real producer/consumer
// concurrency.
var procSubCounter int

func (e *Expander) expandProcessSub(p *ast.WordPart) (string, error) {
	procSubCounter++
	path := "/dev/fd/sub" + strconv.Itoa(procSubCounter)
	if p.SubIn {
		out, err := e.RunSub(e.Store, p.Sub)
		if err != nil {
			return "", err
		}
		if err := e.FS.WriteFile(path, []byte(out), vfs.WriteOpts{Truncate: true}); err != nil {
			return "", &Error{err.Error()}
		}
		return path, nil
	}
	_ = e.FS.WriteFile(path, nil, vfs.WriteOpts{Truncate: true})
	return path, nil
}
