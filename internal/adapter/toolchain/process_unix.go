//go:build unix

package toolchain

import (
	"errors"
	"os/exec"
	"syscall"
)

// configureProcessGroup starts the command in its own process group so a timeout
// kills every descendant, not just the direct child.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
		if errors.Is(err, syscall.ESRCH) {
			return nil
		}
		if err != nil {
			return cmd.Process.Kill()
		}
		return nil
	}
}

// killProcessGroup kills whatever is left of the command's process group once the
// command has been waited for.
func killProcessGroup(cmd *exec.Cmd) {
	if cmd.Process == nil {
		return
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
}
