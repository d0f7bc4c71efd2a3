// Package procstat answers whether the transfer tool is currently running.
package procstat

import (
	"context"
	"fmt"

	"github.com/shirou/gopsutil/v3/process"
)

// Checker matches processes by exact executable name, like pgrep -x.
type Checker struct {
	name  string
	names func(ctx context.Context) ([]string, error)
}

func New(name string) *Checker {
	return &Checker{
		name:  name,
		names: processNames,
	}
}

func (c *Checker) Name() string {
	return c.name
}

func (c *Checker) Running(ctx context.Context) (bool, error) {
	names, err := c.names(ctx)
	if err != nil {
		return false, fmt.Errorf("failed to list processes: %w", err)
	}

	for _, n := range names {
		if n == c.name {
			return true, nil
		}
	}

	return false, nil
}

func processNames(ctx context.Context) ([]string, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}

	names := make([]string, 0, len(procs))
	for _, p := range procs {
		// Processes can exit between listing and lookup.
		name, err := p.NameWithContext(ctx)
		if err != nil {
			continue
		}
		names = append(names, name)
	}

	return names, nil
}
