package exec

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/parser"
	"github.com/hermetic-sh/hsh/internal/shellerr"
	"github.com/hermetic-sh/hsh/internal/vfs"
)

// ioSet is the {stdin, stdout, stderr} triple a simple command runs
// against, built from the parent Executor's streams and then mutated one
// Redirect at a time in source order (a later redirect can see and
// override an earlier one, matching bash's left-to-right rule). sinks
// collects every file-backed writer opened along the way so the caller
// can flush them to the virtual filesystem once the command completes —
// the VFS has no streaming write handle, only whole-file WriteFile.
type ioSet struct {
	in  io.Reader
	out io.Writer
	err io.Writer

	sinks []*vfsSink
}

// vfsSink buffers everything written to a redirected fd; flush commits the
// accumulated bytes to the virtual filesystem.
type vfsSink struct {
	path    string
	append  bool
	pending []byte
}

func (s *vfsSink) Write(p []byte) (int, error) {
	s.pending = append(s.pending, p...)
	return len(p), nil
}

func (s *vfsSink) flush(fs vfs.FS) error {
	opts := vfs.WriteOpts{Truncate: !s.append, Append: s.append}
	if err := fs.WriteFile(s.path, s.pending, opts); err != nil {
		return &shellerr.RuntimeError{Message: s.path + ": " + vfsErrText(err)}
	}
	return nil
}

// applyRedirects expands each redirect's target and layers it onto io.
func (x *Executor) applyRedirects(redirs []*ast.Redirect, fds *ioSet) error {
	for _, r := range redirs {
		if err := x.applyOneRedirect(r, fds); err != nil {
			return err
		}
	}
	return nil
}

func (x *Executor) applyOneRedirect(r *ast.Redirect, fds *ioSet) error {
	fd := r.Fd
	switch r.Kind {
	case ast.RedirIn:
		target, err := x.expandTargetSingle(r.Target)
		if err != nil {
			return err
		}
		data, err := x.FS.ReadFile(target)
		if err != nil {
			return &shellerr.RuntimeError{Message: target + ": " + vfsErrText(err)}
		}
		fds.in = strings.NewReader(string(data))
		return nil

	case ast.RedirOut, ast.RedirAppend, ast.RedirClobber:
		if fd < 0 {
			fd = 1
		}
		target, err := x.expandTargetSingle(r.Target)
		if err != nil {
			return err
		}
		if r.Kind == ast.RedirOut && x.Store.Options.Noclobber && x.FS.Exists(target) {
			if st, serr := x.FS.Stat(target); serr == nil && !st.IsDir {
				return &shellerr.RuntimeError{Message: target + ": cannot overwrite existing file"}
			}
		}
		sink := &vfsSink{path: target, append: r.Kind == ast.RedirAppend}
		fds.sinks = append(fds.sinks, sink)
		x.setOutFd(fds, fd, sink)
		return nil

	case ast.RedirHereString:
		val, err := x.expandTargetSingle(r.Target)
		if err != nil {
			return err
		}
		fds.in = strings.NewReader(val + "\n")
		return nil

	case ast.RedirHeredoc, ast.RedirHeredocTab:
		body := r.HeredocBody
		if r.Kind == ast.RedirHeredocTab {
			body = stripLeadingTabs(body)
		}
		if r.HeredocExpand {
			w := parser.ParseHeredocBody(body)
			v, err := x.expander().WordNoSplit(w)
			if err != nil {
				return err
			}
			body = v
		}
		fds.in = strings.NewReader(body)
		return nil

	case ast.RedirBoth:
		target, err := x.expandTargetSingle(r.Target)
		if err != nil {
			return err
		}
		sink := &vfsSink{path: target}
		fds.sinks = append(fds.sinks, sink)
		fds.out = sink
		fds.err = sink
		return nil

	case ast.RedirDupOut:
		if fd < 0 {
			fd = 1
		}
		return x.dupOut(r, fds, fd)

	case ast.RedirDupIn:
		return x.dupIn(r, fds)
	}
	return nil
}

func (x *Executor) setOutFd(fds *ioSet, fd int, w io.Writer) {
	switch fd {
	case 1:
		fds.out = w
	case 2:
		fds.err = w
	}
}

func (x *Executor) dupOut(r *ast.Redirect, fds *ioSet, fd int) error {
	spec, err := x.expandTargetSingle(r.Target)
	if err != nil {
		return err
	}
	if spec == "-" {
		x.setOutFd(fds, fd, io.Discard)
		return nil
	}
	n, err := strconv.Atoi(spec)
	if err != nil {
		return &shellerr.RuntimeError{Message: "bad file descriptor: " + spec}
	}
	switch n {
	case 1:
		x.setOutFd(fds, fd, fds.out)
	case 2:
		x.setOutFd(fds, fd, fds.err)
	}
	return nil
}

func (x *Executor) dupIn(r *ast.Redirect, fds *ioSet) error {
	spec, err := x.expandTargetSingle(r.Target)
	if err != nil {
		return err
	}
	if spec == "-" {
		fds.in = strings.NewReader("")
	}
	// Duplicating onto another already-open input fd is a no-op here:
	// this interpreter only ever models fd 0 for input.
	return nil
}

func (x *Executor) expandTargetSingle(w *ast.Word) (string, error) {
	if w == nil {
		return "", nil
	}
	return x.expander().WordNoSplit(w)
}

func stripLeadingTabs(body string) string {
	lines := strings.Split(body, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimLeft(l, "\t")
	}
	return strings.Join(lines, "\n")
}

func vfsErrText(err error) string {
	switch {
	case errors.Is(err, vfs.ErrNotFound):
		return "No such file or directory"
	case errors.Is(err, vfs.ErrNotDir):
		return "Not a directory"
	case errors.Is(err, vfs.ErrIsDir):
		return "Is a directory"
	case errors.Is(err, vfs.ErrPermissionDenied):
		return "Permission denied"
	default:
		return err.Error()
	}
}
