//go:build !unix

package sandbox

import (
	"os"
	"os/exec"

	"github.com/Ajay03299/DevForge/internal/domain/repair"
)

// configureProcess keeps the default Cancel (kill the direct child).
// Process groups are not available on this platform.
func configureProcess(cmd *exec.Cmd) {}

func exitStatus(state *os.ProcessState) repair.ExitStatus {
	return repair.ExitStatus{Kind: repair.ExitNormal, Code: state.ExitCode()}
}
