//go:build windows

package procrunner

import "os"

// terminateSignal has no soft-termination analog on Windows; os.Kill is
// used directly and the grace window is skipped by the caller's escalation.
func terminateSignal() os.Signal {
	return os.Kill
}
