package printer

import (
	"fmt"
	"testing"

	"github.com/gkampitakis/go-snaps/snaps"

	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
)

// TestPrintGoldenScripts snapshots the canonical reprint of a handful of
// representative scripts, the way the teacher's fixture-driven interpreter
// tests snapshot their own rendered output.
func TestPrintGoldenScripts(t *testing.T) {
	scripts := []struct {
		name string
		src  string
	}{
		{"pipeline_and_or", "grep foo file.txt | wc -l && echo found || echo missing\n"},
		{"if_elif_else", "if [ \"$x\" = a ]; then echo A; elif [ \"$x\" = b ]; then echo B; else echo other; fi\n"},
		{"for_and_case", "for f in *.txt; do case $f in a*) echo starts-a;; *) echo other;; esac; done\n"},
		{"function_def", "greet() { echo \"hello, $1\"; }\n"},
	}
	for _, s := range scripts {
		t.Run(s.name, func(t *testing.T) {
			l := lexer.New(s.src)
			script, p := parser.ParseScript(l)
			if errs := p.Errors(); len(errs) > 0 {
				t.Fatalf("parsing %q failed: %v", s.src, errs)
			}
			snaps.MatchSnapshot(t, fmt.Sprintf("%s_source", s.name), s.src, fmt.Sprintf("%s_printed", s.name), Print(script))
		})
	}
}
