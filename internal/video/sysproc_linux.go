package video

import "syscall"

// On Linux the kernel also terminates the player if pixfeed dies without
// running Shutdown.
func withParentDeathSignal(attr *syscall.SysProcAttr) *syscall.SysProcAttr {
	attr.Pdeathsig = syscall.SIGTERM
	return attr
}
