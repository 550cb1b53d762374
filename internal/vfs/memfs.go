package vfs

import (
	"os"
	"path"
	"sort"
	"strings"
	"time"
)

type nodeKind int

const (
	kindFile nodeKind = iota
	kindDir
	kindSymlink
)

type node struct {
	kind    nodeKind
	data    []byte
	target  string // kindSymlink
	mode    os.FileMode
	modTime time.Time
}

// MemFS is a hermetic in-memory filesystem: every path is tracked by its
// cleaned absolute form, with directories existing implicitly whenever any
// descendant path is present (explicit Mkdir also records them so an empty
// directory can exist).
type MemFS struct {
	nodes map[string]*node
	now   time.Time
}

// NewMemFS creates an empty filesystem with just the root directory.
func NewMemFS() *MemFS {
	fs := &MemFS{nodes: make(map[string]*node), now: time.Unix(0, 0)}
	fs.nodes["/"] = &node{kind: kindDir, mode: 0755, modTime: fs.now}
	return fs
}

func clean(p string) string {
	if p == "" {
		return "/"
	}
	if !strings.HasPrefix(p, "/") {
		p = "/" + p
	}
	return path.Clean(p)
}

func (fs *MemFS) resolve(p string) string {
	p = clean(p)
	if n, ok := fs.nodes[p]; ok && n.kind == kindSymlink {
		return fs.resolve(n.target)
	}
	return p
}

func (fs *MemFS) parentDirExists(p string) bool {
	dir := path.Dir(p)
	if dir == "/" {
		return true
	}
	n, ok := fs.nodes[dir]
	return ok && n.kind == kindDir
}

func (fs *MemFS) ReadFile(p string) ([]byte, error) {
	rp := fs.resolve(p)
	n, ok := fs.nodes[rp]
	if !ok {
		return nil, ErrNotFound
	}
	if n.kind == kindDir {
		return nil, ErrIsDir
	}
	out := make([]byte, len(n.data))
	copy(out, n.data)
	return out, nil
}

func (fs *MemFS) WriteFile(p string, data []byte, opts WriteOpts) error {
	rp := fs.resolve(p)
	existing, ok := fs.nodes[rp]
	if ok && existing.kind == kindDir {
		return ErrIsDir
	}
	if ok && opts.CreateNew {
		return ErrExists
	}
	if !ok && !fs.parentDirExists(rp) {
		return ErrNotFound
	}
	var content []byte
	switch {
	case ok && opts.Append:
		content = append(append([]byte(nil), existing.data...), data...)
	default:
		content = append([]byte(nil), data...)
	}
	mode := os.FileMode(0644)
	if ok {
		mode = existing.mode
	}
	fs.nodes[rp] = &node{kind: kindFile, data: content, mode: mode, modTime: fs.now}
	return nil
}

func (fs *MemFS) statNode(p string, followLink bool) (FileInfo, error) {
	cp := clean(p)
	target := cp
	if followLink {
		target = fs.resolve(p)
	}
	n, ok := fs.nodes[target]
	if !ok {
		return FileInfo{}, ErrNotFound
	}
	return FileInfo{
		Name:    path.Base(cp),
		Size:    int64(len(n.data)),
		Mode:    n.mode,
		ModTime: n.modTime,
		IsDir:   n.kind == kindDir,
		IsLink:  n.kind == kindSymlink,
	}, nil
}

func (fs *MemFS) Stat(p string) (FileInfo, error)  { return fs.statNode(p, true) }
func (fs *MemFS) Lstat(p string) (FileInfo, error) { return fs.statNode(p, false) }

func (fs *MemFS) ReadDir(p string) ([]DirEntry, error) {
	rp := fs.resolve(p)
	n, ok := fs.nodes[rp]
	if !ok {
		return nil, ErrNotFound
	}
	if n.kind != kindDir {
		return nil, ErrNotDir
	}
	prefix := rp
	if prefix != "/" {
		prefix += "/"
	}
	seen := map[string]bool{}
	var entries []DirEntry
	for k, v := range fs.nodes {
		if k == rp || !strings.HasPrefix(k, prefix) {
			continue
		}
		rest := k[len(prefix):]
		if i := strings.IndexByte(rest, '/'); i >= 0 {
			rest = rest[:i]
			if seen[rest] {
				continue
			}
			seen[rest] = true
			entries = append(entries, DirEntry{Name: rest, IsDir: true})
			continue
		}
		if seen[rest] {
			continue
		}
		seen[rest] = true
		entries = append(entries, DirEntry{Name: rest, IsDir: v.kind == kindDir})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

func (fs *MemFS) Symlink(target, link string) error {
	lp := clean(link)
	if _, ok := fs.nodes[lp]; ok {
		return ErrExists
	}
	if !fs.parentDirExists(lp) {
		return ErrNotFound
	}
	fs.nodes[lp] = &node{kind: kindSymlink, target: target, mode: 0777, modTime: fs.now}
	return nil
}

func (fs *MemFS) Readlink(p string) (string, error) {
	n, ok := fs.nodes[clean(p)]
	if !ok || n.kind != kindSymlink {
		return "", ErrNotFound
	}
	return n.target, nil
}

func (fs *MemFS) Realpath(p string) (string, error) {
	rp := fs.resolve(p)
	if _, ok := fs.nodes[rp]; !ok {
		return "", ErrNotFound
	}
	return rp, nil
}

func (fs *MemFS) Mkdir(p string, recursive bool) error {
	cp := clean(p)
	if n, ok := fs.nodes[cp]; ok {
		if n.kind == kindDir {
			if recursive {
				return nil
			}
			return ErrExists
		}
		return ErrExists
	}
	if !recursive && !fs.parentDirExists(cp) {
		return ErrNotFound
	}
	if recursive {
		var dirs []string
		for d := cp; d != "/"; d = path.Dir(d) {
			dirs = append(dirs, d)
		}
		for i := len(dirs) - 1; i >= 0; i-- {
			if _, ok := fs.nodes[dirs[i]]; !ok {
				fs.nodes[dirs[i]] = &node{kind: kindDir, mode: 0755, modTime: fs.now}
			}
		}
		return nil
	}
	fs.nodes[cp] = &node{kind: kindDir, mode: 0755, modTime: fs.now}
	return nil
}

func (fs *MemFS) Remove(p string, opts RemoveOpts) error {
	cp := clean(p)
	n, ok := fs.nodes[cp]
	if !ok {
		if opts.Force {
			return nil
		}
		return ErrNotFound
	}
	if n.kind == kindDir {
		prefix := cp
		if prefix != "/" {
			prefix += "/"
		}
		var children []string
		for k := range fs.nodes {
			if strings.HasPrefix(k, prefix) {
				children = append(children, k)
			}
		}
		if len(children) > 0 && !opts.Recursive {
			return ErrNotEmpty
		}
		for _, k := range children {
			delete(fs.nodes, k)
		}
	}
	delete(fs.nodes, cp)
	return nil
}

func (fs *MemFS) Chmod(p string, mode os.FileMode) error {
	rp := fs.resolve(p)
	n, ok := fs.nodes[rp]
	if !ok {
		return ErrNotFound
	}
	n.mode = mode
	return nil
}

func (fs *MemFS) Utimes(p string, mtime time.Time) error {
	rp := fs.resolve(p)
	n, ok := fs.nodes[rp]
	if !ok {
		return ErrNotFound
	}
	n.modTime = mtime
	return nil
}

func (fs *MemFS) Exists(p string) bool {
	_, ok := fs.nodes[fs.resolve(p)]
	return ok
}

func (fs *MemFS) Copy(src, dst string, recursive bool) error {
	rsrc := fs.resolve(src)
	n, ok := fs.nodes[rsrc]
	if !ok {
		return ErrNotFound
	}
	rdst := clean(dst)
	if n.kind == kindDir {
		if !recursive {
			return ErrIsDir
		}
		prefix := rsrc
		if prefix != "/" {
			prefix += "/"
		}
		fs.nodes[rdst] = &node{kind: kindDir, mode: n.mode, modTime: fs.now}
		for k, v := range fs.nodes {
			if strings.HasPrefix(k, prefix) {
				rel := strings.TrimPrefix(k, prefix)
				nv := *v
				fs.nodes[rdst+"/"+rel] = &nv
			}
		}
		return nil
	}
	if !fs.parentDirExists(rdst) {
		return ErrNotFound
	}
	nv := *n
	nv.data = append([]byte(nil), n.data...)
	fs.nodes[rdst] = &nv
	return nil
}

func (fs *MemFS) Move(src, dst string) error {
	if err := fs.Copy(src, dst, true); err != nil {
		return err
	}
	return fs.Remove(src, RemoveOpts{Recursive: true})
}
