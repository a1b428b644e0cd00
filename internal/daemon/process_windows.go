//go:build windows

package daemon

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setSysProcAttr is a no-op on Windows (Setsid not available).
func setSysProcAttr(_ *exec.Cmd) {}

// signalProcess sends a signal to a process.
func signalProcess(process *os.Process, sig os.Signal) error {
	return process.Signal(sig)
}

// processAlive probes whether a process still exists. Signal(0) is not
// deliverable on Windows, but the runtime reports ErrProcessDone for an
// exited process before rejecting the signal itself.
func processAlive(process *os.Process) bool {
	err := process.Signal(syscall.Signal(0))
	return !errors.Is(err, os.ErrProcessDone)
}

// termSignal returns the signal used for graceful shutdown.
// On Windows, os.Kill is the only reliable signal.
func termSignal() os.Signal {
	return os.Kill
}
