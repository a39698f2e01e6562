package shared

import (
	"fmt"
	"os/exec"
	"runtime"
)

var getRuntime = func() string { return runtime.GOOS }

// OpenPath opens a file or directory with the platform's default handler,
// e.g. a file manager window for a session directory.
//
// Supports macOS, Linux, and Windows platforms.
func OpenPath(path string) error {
	cmd, err := openCommand(getRuntime(), path)
	if err != nil {
		return err
	}

	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to open %s: %w", path, err)
	}

	return nil
}

func openCommand(rt, path string) (*exec.Cmd, error) {
	switch rt {
	case "darwin":
		return exec.Command("open", path), nil
	case "linux":
		return exec.Command("xdg-open", path), nil
	case "windows":
		return exec.Command("explorer", path), nil
	default:
		return nil, fmt.Errorf("unsupported platform: %s", rt)
	}
}
