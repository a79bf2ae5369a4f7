//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// setSysProcAttr puts the spawned server in its own process group so it
// outlives the CLI and its terminal session
func setSysProcAttr(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{
		Setpgid: true,
		Pgid:    0, // new group led by the server process itself
	}
}
