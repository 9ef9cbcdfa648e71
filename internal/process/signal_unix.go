//go:build unix

package process

import (
	"os"
	"syscall"
)

// exitSignal returns the signal that terminated the process, if any.
func exitSignal(state *os.ProcessState) (int, bool) {
	status, ok := state.Sys().(syscall.WaitStatus)
	if !ok || !status.Signaled() {
		return 0, false
	}
	return int(status.Signal()), true
}

func interrupt(p *os.Process) error {
	return p.Signal(os.Interrupt)
}
