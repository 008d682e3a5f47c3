package lineage

import "fmt"

// IdentityError reports an inherited RUN_ID that is not a valid identifier.
type IdentityError struct {
	Value string
	Err   error
}

func (e *IdentityError) Error() string {
	return fmt.Sprintf("invalid %s %q: %v", EnvRunID, e.Value, e.Err)
}

func (e *IdentityError) Unwrap() error { return e.Err }
