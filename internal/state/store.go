package state

import "github.com/hermetic-sh/hsh/internal/ast"

// Store is all process-wide interpreter state threaded through execution:
// the variable scope chain, function and alias tables, shell options,
// positional parameters, exit status, and the resource limits/counters a
// run is bounded by.
type Store struct {
	scope *Scope

	Functions map[string]*ast.FunctionDef
	Aliases   map[string]string

	// Traps maps a pseudo-signal name ("EXIT", "ERR", "DEBUG", "RETURN") to
	// the command text "trap" registered for it; internal/exec fires the
	// EXIT and ERR entries, while DEBUG and RETURN entries are stored only.
	Traps map[string]string

	Options *Options

	Positional []string // $1, $2, ... (Positional[0] is $1)
	ScriptName string   // $0

	LastExit int // $?
	LastBg   int // $! (PID of the last backgrounded job — always 0, no real jobs)

	Limits   Limits
	Counters *Counters

	// The word-splitting field separator is not cached here: IFS() re-reads
	// the IFS variable on every call.
}

// New creates a root Store with default options and limits, an empty
// environment-derived scope, and no positional parameters.
func New() *Store {
	return &Store{
		scope:     NewScope(),
		Functions: make(map[string]*ast.FunctionDef),
		Aliases:   make(map[string]string),
		Traps:     make(map[string]string),
		Options:   NewOptions(),
		Limits:    DefaultLimits(),
		Counters:  &Counters{},
	}
}

// Scope returns the innermost active scope frame.
func (s *Store) Scope() *Scope { return s.scope }

// PushFrame enters a new function-call scope.
func (s *Store) PushFrame() {
	s.scope = NewEnclosedScope(s.scope)
}

// PopFrame leaves the innermost function-call scope, discarding its locals.
// It is a no-op at the global scope (callers should not call it there).
func (s *Store) PopFrame() {
	if s.scope.outer != nil {
		s.scope = s.scope.outer
	}
}

// Get resolves name through the scope chain.
func (s *Store) Get(name string) (*Cell, bool) {
	return s.scope.Get(name)
}

// Set stores a value for name, creating it in the innermost scope that
// doesn't already define name further out, or the current scope otherwise.
func (s *Store) Set(name string, c *Cell) {
	s.scope.Set(name, c)
}

// Define creates or overwrites name in the current scope only (used by
// "local" and function-parameter binding).
func (s *Store) Define(name string, c *Cell) {
	s.scope.Define(name, c)
}

// Unset removes name from whichever scope holds it.
func (s *Store) Unset(name string) {
	s.scope.Unset(name)
}

// IFS returns the current field-separator string, defaulting to space/tab/
// newline when the IFS variable is unset.
func (s *Store) IFS() string {
	if c, ok := s.Get("IFS"); ok {
		return c.Scalar
	}
	return " \t\n"
}

// Exported collects every variable in the full scope chain (innermost wins
// on name collision) that carries AttrExported, for building a subprocess
// or command-substitution environment.
func (s *Store) Exported() map[string]string {
	out := make(map[string]string)
	seen := make(map[string]bool)
	for sc := s.scope; sc != nil; sc = sc.outer {
		sc.Range(func(name string, c *Cell) bool {
			if seen[name] {
				return true
			}
			seen[name] = true
			if c.Attrs.Has(AttrExported) {
				out[name] = c.AsScalar()
			}
			return true
		})
	}
	return out
}

// Snapshot deep-copies everything a subshell needs to run in isolation:
// the full scope chain, functions, aliases, options, positional
// parameters, and exit status. Counters are NOT copied — a subshell shares
// its parent's resource budget, per spec. The virtual filesystem is never
// part of a Store snapshot; callers share it directly.
func (s *Store) Snapshot() *Store {
	ns := &Store{
		Functions:  make(map[string]*ast.FunctionDef, len(s.Functions)),
		Aliases:    make(map[string]string, len(s.Aliases)),
		Traps:      make(map[string]string, len(s.Traps)),
		Options:    s.Options.Clone(),
		Positional: append([]string(nil), s.Positional...),
		ScriptName: s.ScriptName,
		LastExit:   s.LastExit,
		Limits:     s.Limits,
		Counters:   s.Counters, // shared, not cloned
	}
	for k, v := range s.Functions {
		ns.Functions[k] = v
	}
	for k, v := range s.Aliases {
		ns.Aliases[k] = v
	}
	for k, v := range s.Traps {
		ns.Traps[k] = v
	}
	ns.scope = cloneChain(s.scope)
	return ns
}

// cloneChain deep-copies a scope and its entire outer chain.
func cloneChain(sc *Scope) *Scope {
	if sc == nil {
		return nil
	}
	ns := sc.Clone()
	ns.outer = cloneChain(sc.outer)
	return ns
}

// Restore copies mutable result state back from a subshell snapshot into s
// after it completes — bash subshells never leak variable/function/option
// changes back to the parent, so Restore only copies LastExit (the
// subshell's exit status becomes the parent's $? for the command that ran
// it). Counters need no copying: Snapshot shares the pointer.
func (s *Store) Restore(sub *Store) {
	s.LastExit = sub.LastExit
}
