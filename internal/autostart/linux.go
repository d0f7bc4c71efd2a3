package autostart

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"text/template"

	"ingestmon/internal/util"
)

const unitTemplate = `[Unit]
Description={{.Description}}
After=local-fs.target

[Service]
ExecStart={{.ExecStart}}
Restart=on-failure
RestartSec=5

[Install]
WantedBy=default.target
`

var unitTmpl = template.Must(template.New("unit").Parse(unitTemplate))

// LinuxAutoStarter installs a systemd user unit.
type LinuxAutoStarter struct {
	unit string
	dir  string // defaults to ~/.config/systemd/user
	run  func(args ...string) error
}

func (l *LinuxAutoStarter) unitPath() (string, error) {
	dir := l.dir
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", err
		}
		dir = filepath.Join(home, ".config", "systemd", "user")
	}

	return filepath.Join(dir, l.unit), nil
}

func renderUnit(svc Service) ([]byte, error) {
	execStart := append([]string{svc.ExecPath}, svc.Args...)
	for i, arg := range execStart {
		if strings.ContainsAny(arg, " \t\"") {
			execStart[i] = fmt.Sprintf("%q", arg)
		}
	}

	var buf bytes.Buffer
	err := unitTmpl.Execute(&buf, map[string]string{
		"Description": svc.Description,
		"ExecStart":   strings.Join(execStart, " "),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render unit: %w", err)
	}

	return buf.Bytes(), nil
}

func (l *LinuxAutoStarter) systemctl(args ...string) error {
	if l.run != nil {
		return l.run(args...)
	}

	cmd := exec.Command("systemctl", append([]string{"--user"}, args...)...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("failed to run systemctl %v: %w\n%s", args, err, out)
	}

	return nil
}

func (l *LinuxAutoStarter) Install(svc Service) error {
	path, err := l.unitPath()
	if err != nil {
		return err
	}

	unit, err := renderUnit(svc)
	if err != nil {
		return err
	}

	if err := util.AtomicWrite(path, bytes.NewReader(unit), 0644); err != nil {
		return fmt.Errorf("failed to write unit file: %w", err)
	}

	for _, args := range [][]string{
		{"daemon-reload"},
		{"enable", l.unit},
		{"start", l.unit},
	} {
		if err := l.systemctl(args...); err != nil {
			return err
		}
	}

	return nil
}

func (l *LinuxAutoStarter) Uninstall() error {
	// The unit may already be stopped or disabled.
	_ = l.systemctl("stop", l.unit)
	_ = l.systemctl("disable", l.unit)

	path, err := l.unitPath()
	if err != nil {
		return err
	}

	if err := util.RemoveIfExists(path); err != nil {
		return err
	}

	return l.systemctl("daemon-reload")
}

func (l *LinuxAutoStarter) IsInstalled() (bool, error) {
	path, err := l.unitPath()
	if err != nil {
		return false, err
	}

	_, err = os.Stat(path)
	return err == nil, nil
}
