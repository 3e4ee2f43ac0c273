//go:build !windows

package devserver

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup puts the dev command in its own process group so the
// servers it spawns (npm starting vite or next) can be killed with it.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

func killProcessGroup(p *os.Process) error {
	err := syscall.Kill(-p.Pid, syscall.SIGKILL)
	if errors.Is(err, syscall.ESRCH) {
		return os.ErrProcessDone
	}
	return err
}
