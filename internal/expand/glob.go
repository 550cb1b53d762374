package expand

import (
	"sort"
	"strings"

	"github.com/hermetic-sh/hsh/internal/globmatch"
)

// glob expands a pathname pattern against e.FS, one path component at a
// time (bash's own algorithm): each segment containing glob metacharacters
// is matched against the directory listing at that level; a component
// with no metacharacters is taken literally and only checked for
// existence, never listed. "**" under globstar recurses through
// subdirectories.
func (e *Expander) glob(pattern string) []string {
	abs := strings.HasPrefix(pattern, "/")
	segs := strings.Split(strings.TrimPrefix(pattern, "/"), "/")
	base := "/"
	if !abs {
		if c, ok := e.Store.Get("PWD"); ok {
			base = c.Scalar
		}
	}
	results := e.globSegs(base, segs)
	sort.Strings(results)
	if !abs {
		for i, r := range results {
			results[i] = strings.TrimPrefix(strings.TrimPrefix(r, base), "/")
		}
	}
	return results
}

func (e *Expander) globSegs(dir string, segs []string) []string {
	if len(segs) == 0 {
		return []string{dir}
	}
	seg := segs[0]
	rest := segs[1:]

	if seg == "**" && e.GlobStar {
		var out []string
		out = append(out, e.globSegs(dir, rest)...)
		entries, err := e.FS.ReadDir(dir)
		if err != nil {
			return out
		}
		for _, en := range entries {
			if !en.IsDir || (!e.DotGlob && strings.HasPrefix(en.Name, ".")) {
				continue
			}
			out = append(out, e.globSegs(joinDir(dir, en.Name), segs)...)
		}
		return out
	}

	if !globmatch.IsPattern(seg, e.ExtGlob) {
		next := joinDir(dir, seg)
		if !e.FS.Exists(next) {
			return nil
		}
		return e.globSegs(next, rest)
	}

	entries, err := e.FS.ReadDir(dir)
	if err != nil {
		return nil
	}
	var out []string
	opts := globmatch.Options{NoCaseMatch: e.NoCaseMatch, ExtGlob: e.ExtGlob}
	for _, en := range entries {
		if strings.HasPrefix(en.Name, ".") && !strings.HasPrefix(seg, ".") && !e.DotGlob {
			continue
		}
		if !globmatch.Match(en.Name, seg, opts) {
			continue
		}
		out = append(out, e.globSegs(joinDir(dir, en.Name), rest)...)
	}
	return out
}

func joinDir(dir, name string) string {
	if dir == "/" {
		return "/" + name
	}
	return dir + "/" + name
}
