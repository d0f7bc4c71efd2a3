package model

import "time"

// Status is what the daemon publishes after every poll cycle.
type Status struct {
	Syncing   bool             `json:"syncing"`
	Current   *Snapshot        `json:"current"`
	Recent    []CompletedEntry `json:"recent"`
	Error     string           `json:"error,omitempty"`
	UpdatedAt *time.Time       `json:"updated_at"`
}
