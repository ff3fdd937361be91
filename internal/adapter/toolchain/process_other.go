//go:build !unix

package toolchain

import "os/exec"

func configureProcessGroup(cmd *exec.Cmd) {
	cmd.Cancel = func() error {
		return cmd.Process.Kill()
	}
}

func killProcessGroup(*exec.Cmd) {}
