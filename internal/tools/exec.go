package tools

import (
	"context"
	"os"
	"os/exec"
)

// runCmd executes a command and returns combined output as string.
func runCmd(ctx context.Context, name string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	// Avoid pagers and colored output
	cmd.Env = append(os.Environ(), "NO_COLOR=1", "TERM=dumb")
	out, err := cmd.CombinedOutput()
	if ctx.Err() == context.DeadlineExceeded {
		return "", ctx.Err()
	}
	return string(out), err
}

// Installed reports whether command resolves on PATH (or is an existing
// executable path). It is the probe used for backend selection.
func Installed(command string) bool {
	_, err := exec.LookPath(command)
	return err == nil
}
