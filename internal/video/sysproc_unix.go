//go:build !windows

package video

import (
	"os/exec"
	"syscall"
)

// Players run in their own process group so a kill reaches any helpers
// they spawn.
func sysProcAttr() *syscall.SysProcAttr {
	return withParentDeathSignal(&syscall.SysProcAttr{
		Setpgid: true,
	})
}

func killProcess(cmd *exec.Cmd) error {
	if cmd == nil || cmd.Process == nil {
		return nil
	}
	_ = syscall.Kill(-cmd.Process.Pid, syscall.SIGKILL)
	return cmd.Process.Kill()
}
