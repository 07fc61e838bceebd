//go:build !unix

package ocr

import (
	"os/exec"
	"runtime"
	"strconv"
)

func setProcessGroup(*exec.Cmd) {}

func killProcessTree(cmd *exec.Cmd) error {
	if cmd.Process == nil {
		return nil
	}
	if runtime.GOOS == "windows" {
		kill := exec.Command("taskkill", "/T", "/F", "/PID", strconv.Itoa(cmd.Process.Pid))
		if err := kill.Run(); err == nil {
			return nil
		}
	}
	return cmd.Process.Kill()
}
