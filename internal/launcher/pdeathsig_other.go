//go:build !linux

package launcher

import (
	"os"
	"os/exec"
)

// bindLifetime is a no-op here; context cancellation still stops the child.
func bindLifetime(cmd *exec.Cmd) {}

func terminate(p *os.Process) error {
	return p.Kill()
}
