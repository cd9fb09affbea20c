//go:build !windows

package procrunner

import (
	"os"
	"syscall"
)

// terminateSignal returns the soft-termination signal sent before escalating
// to a hard kill.
func terminateSignal() os.Signal {
	return syscall.SIGTERM
}
