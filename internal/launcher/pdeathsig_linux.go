//go:build linux

package launcher

import (
	"os"
	"os/exec"
	"syscall"
)

// bindLifetime asks the kernel to kill the child if this process dies.
func bindLifetime(cmd *exec.Cmd) {
	if cmd.SysProcAttr == nil {
		cmd.SysProcAttr = &syscall.SysProcAttr{}
	}
	cmd.SysProcAttr.Pdeathsig = syscall.SIGKILL
}

// terminate lets the child run its shutdown path before exiting.
func terminate(p *os.Process) error {
	return p.Signal(syscall.SIGTERM)
}
