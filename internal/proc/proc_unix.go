//go:build !windows

package proc

import (
	"os/exec"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// setProcessGroup puts the child in its own process group so killTree can
// reach any grandchildren the agent spawns.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// probeAlive checks liveness with a null signal. Any probe error (ESRCH,
// EPERM after exit, etc.) reports not-alive.
func probeAlive(pid int) bool {
	return unix.Kill(pid, 0) == nil
}

// killTree sends SIGTERM to the process group, then SIGKILL after a short
// grace period.
func killTree(pid int) {
	pgid, err := unix.Getpgid(pid)
	if err != nil {
		_ = unix.Kill(pid, unix.SIGKILL)
		return
	}
	_ = unix.Kill(-pgid, unix.SIGTERM)
	time.Sleep(100 * time.Millisecond)
	_ = unix.Kill(-pgid, unix.SIGKILL)
}
