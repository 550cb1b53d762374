package state

// Limits bounds the resources one interpreter invocation may consume. The
// zero value is meaningless; callers should start from DefaultLimits and
// override fields explicitly (the CLI layer additionally loads these from a
// YAML file or environment variables — see hsh.Limits and cmd/hsh).
type Limits struct {
	MaxRecursionDepth int // function-call nesting
	MaxCommands       int // total simple commands executed
	MaxLoopIterations int // per-loop iteration count
}

// DefaultLimits matches the defaults spec.md documents for a caller that
// doesn't override them.
func DefaultLimits() Limits {
	return Limits{
		MaxRecursionDepth: 1000,
		MaxCommands:       100000,
		MaxLoopIterations: 1000000,
	}
}

// Counters tracks live consumption against Limits during one run.
type Counters struct {
	RecursionDepth int
	CommandsRun    int
}

// Clone returns an independent copy of the counters. Subshell snapshotting
// does not use it: Store.Snapshot shares the parent's Counters pointer, so
// a subshell draws on the same budget.
func (c *Counters) Clone() *Counters {
	cp := *c
	return &cp
}
