package tools

import (
	"context"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// CheckTool detects a tool via its PATH binaries and asks it for a version.
func CheckTool(ctx context.Context, t ToolInfo) CheckResult {
	for _, bin := range t.Binaries {
		path, err := exec.LookPath(bin)
		if err != nil {
			continue
		}
		for _, args := range t.VersionArgs {
			vctx, cancel := context.WithTimeout(ctx, 3*time.Second)
			out, err := runCmd(vctx, path, args...)
			cancel()
			if err == nil && strings.TrimSpace(out) != "" {
				ver := ParseVersion(out)
				if ver == "" {
					ver = strings.Split(strings.TrimSpace(out), "\n")[0]
				}
				return CheckResult{Installed: true, Path: path, Version: ver, Source: fmt.Sprintf("%s %s", bin, strings.Join(args, " "))}
			}
		}
		// Found binary but no version output; still consider installed
		return CheckResult{Installed: true, Path: path, Source: bin}
	}
	return CheckResult{Installed: false, Err: "not found in PATH"}
}

// CheckCommand probes an arbitrary renderer command, using the known
// tool table for version flags when it matches.
func CheckCommand(ctx context.Context, command string) CheckResult {
	t, ok := Lookup(command)
	if !ok {
		t = ToolInfo{ID: ToolID(command), DisplayName: command, Binaries: []string{command}}
	} else {
		t.Binaries = []string{command}
	}
	return CheckTool(ctx, t)
}
