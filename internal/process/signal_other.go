//go:build !unix

package process

import (
	"os"
)

// exitSignal always reports no signal; only POSIX systems terminate by signal.
func exitSignal(*os.ProcessState) (int, bool) {
	return 0, false
}

// interrupt kills the process since interrupts cannot be delivered here.
func interrupt(p *os.Process) error {
	return p.Kill()
}
