// Package autostart registers the monitor daemon to start at login.
package autostart

import "runtime"

// Service describes what to start.
type Service struct {
	Name        string
	Description string
	ExecPath    string
	Args        []string
}

type AutoStarter interface {
	Install(svc Service) error
	Uninstall() error
	IsInstalled() (bool, error)
}

func New(name string) AutoStarter {
	switch runtime.GOOS {
	case "windows":
		return &WindowsAutoStarter{taskName: name}
	case "linux":
		return &LinuxAutoStarter{unit: name + ".service"}
	default:
		return &UnsupportedAutoStarter{}
	}
}

type UnsupportedAutoStarter struct{}

func (u *UnsupportedAutoStarter) Install(_ Service) error {
	return nil
}

func (u *UnsupportedAutoStarter) Uninstall() error {
	return nil
}

func (u *UnsupportedAutoStarter) IsInstalled() (bool, error) {
	return false, nil
}
