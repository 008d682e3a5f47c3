package lineage

import "os"

// Environment variables forming the protocol between a process and its children.
const (
	EnvTraceParent = "TRACEPARENT"
	EnvRunID       = "RUN_ID"
	EnvParentID    = "PARENT_ID"
)

// Inherited is the context a process received from whoever launched it.
// It is captured once at startup and treated as immutable afterwards.
type Inherited struct {
	TraceParent    string
	HasTraceParent bool

	RunID    string
	HasRunID bool

	ParentID    string
	HasParentID bool
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// FromLookup captures the inherited context through lookup.
func FromLookup(lookup LookupFunc) Inherited {
	var in Inherited
	in.TraceParent, in.HasTraceParent = lookup(EnvTraceParent)
	in.RunID, in.HasRunID = lookup(EnvRunID)
	in.ParentID, in.HasParentID = lookup(EnvParentID)
	return in
}

// FromEnviron captures the inherited context from the process environment.
func FromEnviron() Inherited {
	return FromLookup(os.LookupEnv)
}

// FromMap captures the inherited context from a map, mostly for tests.
func FromMap(env map[string]string) Inherited {
	return FromLookup(MapLookup(env))
}

// MapLookup returns a LookupFunc backed by env.
func MapLookup(env map[string]string) LookupFunc {
	return func(key string) (string, bool) {
		v, ok := env[key]
		return v, ok
	}
}
