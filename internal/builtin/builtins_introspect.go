package builtin

import (
	"fmt"
	"sort"

	"github.com/tidwall/sjson"

	"github.com/hermetic-sh/hsh/internal/command"
)

func registerIntrospectBuiltins(r *command.Registry) {
	r.Register("env", builtinEnv)
}

// builtinEnv renders the exported environment as "name=value" lines by
// default, or as a JSON object with "env --json" — a declare -p-style
// introspection path SPEC_FULL.md's domain-stack wiring calls for,
// exercised by tests rather than real scripts.
func builtinEnv(ctx *command.Context) (int, error) {
	asJSON := false
	for _, a := range ctx.Args[1:] {
		if a == "--json" {
			asJSON = true
		}
	}
	exported := ctx.Store.Exported()
	names := make([]string, 0, len(exported))
	for name := range exported {
		names = append(names, name)
	}
	sort.Strings(names)

	if !asJSON {
		for _, name := range names {
			fmt.Fprintf(ctx.Stdout, "%s=%s\n", name, exported[name])
		}
		return 0, nil
	}

	doc := "{}"
	var err error
	for _, name := range names {
		doc, err = sjson.Set(doc, name, exported[name])
		if err != nil {
			return 1, err
		}
	}
	fmt.Fprintln(ctx.Stdout, doc)
	return 0, nil
}
