package launcher

import (
	"errors"
	"fmt"
	"os/exec"
	"strings"
)

// SpawnFailed reports that the OS could not start the child process at all.
type SpawnFailed struct {
	Command string
	Cause   error
}

func (e *SpawnFailed) Error() string {
	return fmt.Sprintf("spawn %s: %v", e.Command, e.Cause)
}

func (e *SpawnFailed) Unwrap() error { return e.Cause }

// ChildFailed reports that the child ran but did not exit successfully.
type ChildFailed struct {
	Command string
	Status  string // as reported by the OS, e.g. "exit status 3" or "signal: killed"
	Code    int    // exit code, -1 when terminated by a signal
}

func (e *ChildFailed) Error() string {
	return fmt.Sprintf("spawned process %s failed with status: %s", e.Command, e.Status)
}

// ExitCode maps the outcome of a chain process to its own exit code, so a
// failing descendant makes every ancestor exit non-zero.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var cf *ChildFailed
	if errors.As(err, &cf) && cf.Code > 0 {
		return cf.Code
	}
	return 1
}

func newChildFailed(command string, exitErr *exec.ExitError) *ChildFailed {
	return &ChildFailed{
		Command: command,
		Status:  exitErr.ProcessState.String(),
		Code:    exitErr.ExitCode(),
	}
}

func commandString(path string, args []string) string {
	if len(args) == 0 {
		return path
	}
	return path + " " + strings.Join(args, " ")
}
