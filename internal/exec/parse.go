package exec

import (
	"errors"
	"strings"

	"github.com/hermetic-sh/hsh/internal/ast"
	"github.com/hermetic-sh/hsh/internal/lexer"
	"github.com/hermetic-sh/hsh/internal/parser"
)

// parseScript lexes and parses src against the executor's current alias
// table, returning a combined error describing every lex/parse failure
// (eval, source, and trap bodies all funnel through here).
func (x *Executor) parseScript(src string) (*ast.Script, error) {
	l := lexer.New(src, lexer.WithAliasExpansion(func(name string) (string, bool) {
		v, ok := x.Store.Aliases[name]
		return v, ok
	}))
	script, p := parser.ParseScript(l)

	var msgs []string
	for _, e := range p.LexErrors() {
		msgs = append(msgs, e.Error())
	}
	for _, e := range p.Errors() {
		msgs = append(msgs, e.Error())
	}
	if len(msgs) > 0 {
		return nil, errors.New(strings.Join(msgs, "; "))
	}
	return script, nil
}
