//go:build !linux && !windows

package video

import "syscall"

func withParentDeathSignal(attr *syscall.SysProcAttr) *syscall.SysProcAttr {
	return attr
}
