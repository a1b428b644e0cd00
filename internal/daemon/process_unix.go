//go:build !windows

package daemon

import (
	"os"
	"os/exec"
	"syscall"
)

// setSysProcAttr detaches the child process from the parent session.
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setsid: true,
	}
}

// signalProcess sends a signal to a process.
func signalProcess(process *os.Process, sig os.Signal) error {
	return process.Signal(sig)
}

// processAlive probes a process with signal 0.
func processAlive(process *os.Process) bool {
	return process.Signal(syscall.Signal(0)) == nil
}

// termSignal returns the signal used for graceful shutdown.
func termSignal() os.Signal {
	return syscall.SIGTERM
}
