//go:build windows

package proc

import (
	"os"
	"os/exec"
)

func setProcessGroup(cmd *exec.Cmd) {
	// No process groups on Windows; Kill only reaches the direct child.
}

func probeAlive(pid int) bool {
	// The watcher goroutine's exited flag is checked first by Alive;
	// without a cheap probe on Windows, assume running until Wait returns.
	return true
}

func killTree(pid int) {
	if p, err := os.FindProcess(pid); err == nil {
		_ = p.Kill()
	}
}
