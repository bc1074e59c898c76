//go:build unix

package sandbox

import (
	"errors"
	"os"
	"os/exec"
	"syscall"

	"golang.org/x/sys/unix"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// configureProcess puts the command in its own process group so that a
// timeout kills every descendant, not just the direct child.
func configureProcess(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := unix.Kill(-cmd.Process.Pid, unix.SIGKILL)
		if errors.Is(err, unix.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}

func exitStatus(state *os.ProcessState) repair.ExitStatus {
	if ws, ok := state.Sys().(syscall.WaitStatus); ok && ws.Signaled() {
		return repair.ExitStatus{Kind: repair.ExitSignal, Code: -1, Signal: unix.SignalName(ws.Signal())}
	}
	return repair.ExitStatus{Kind: repair.ExitNormal, Code: state.ExitCode()}
}
