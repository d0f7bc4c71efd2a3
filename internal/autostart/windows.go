package autostart

import (
	"fmt"
	"os/exec"
	"strings"
)

// WindowsAutoStarter registers a scheduled task that runs at logon.
type WindowsAutoStarter struct {
	taskName string
}

func taskCommand(svc Service) string {
	parts := []string{`"` + svc.ExecPath + `"`}
	parts = append(parts, svc.Args...)
	return strings.Join(parts, " ")
}

func (w *WindowsAutoStarter) Install(svc Service) error {
	cmd := exec.Command("schtasks", "/create",
		"/TN", w.taskName,
		"/TR", taskCommand(svc),
		"/SC", "ONLOGON",
		"/F")

	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to register task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) Uninstall() error {
	cmd := exec.Command("schtasks", "/DELETE", "/TN", w.taskName, "/F")
	out, err := cmd.CombinedOutput()
	if err != nil {
		return fmt.Errorf("failed to remove task: %w\n%s", err, out)
	}

	return nil
}

func (w *WindowsAutoStarter) IsInstalled() (bool, error) {
	cmd := exec.Command("schtasks", "/Query", "/TN", w.taskName)
	if err := cmd.Run(); err != nil {
		return false, nil
	}

	return true, nil
}
