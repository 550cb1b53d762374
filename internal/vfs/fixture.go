package vfs

import (
	"os"

	"github.com/goccy/go-yaml"
)

func normalizeMode(m uint32) os.FileMode { return os.FileMode(m) }

// fixtureEntry describes one path in a FromYAML fixture document.
type fixtureEntry struct {
	Path    string `yaml:"path"`
	Content string `yaml:"content"`
	Dir     bool   `yaml:"dir"`
	Symlink string `yaml:"symlink"`
	Mode    uint32 `yaml:"mode"`
}

type fixtureDoc struct {
	Entries []fixtureEntry `yaml:"entries"`
}

// FromYAML builds a MemFS from a YAML fixture document of the form:
//
//	entries:
//	  - path: /home/agent/project/go.mod
//	    content: "module example.com/x\n"
//	  - path: /home/agent/project/bin
//	    dir: true
//	  - path: /home/agent/project/latest
//	    symlink: /home/agent/project/bin
//
// Used to seed hermetic, reproducible filesystems for tests; the CLI has
// no flag that loads a fixture.
func FromYAML(data []byte) (*MemFS, error) {
	var doc fixtureDoc
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, err
	}
	fs := NewMemFS()
	for _, e := range doc.Entries {
		switch {
		case e.Dir:
			if err := fs.Mkdir(e.Path, true); err != nil {
				return nil, err
			}
		case e.Symlink != "":
			if err := fs.Mkdir(parentOf(e.Path), true); err != nil {
				return nil, err
			}
			if err := fs.Symlink(e.Symlink, e.Path); err != nil {
				return nil, err
			}
		default:
			if err := fs.Mkdir(parentOf(e.Path), true); err != nil {
				return nil, err
			}
			if err := fs.WriteFile(e.Path, []byte(e.Content), WriteOpts{Truncate: true}); err != nil {
				return nil, err
			}
			if e.Mode != 0 {
				_ = fs.Chmod(e.Path, normalizeMode(e.Mode))
			}
		}
	}
	return fs, nil
}

func parentOf(p string) string {
	cp := clean(p)
	i := len(cp) - 1
	for i > 0 && cp[i] != '/' {
		i--
	}
	if i == 0 {
		return "/"
	}
	return cp[:i]
}
