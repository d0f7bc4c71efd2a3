package model

import (
	"time"

	"gorm.io/gorm"
)

// Ingest is an archived completed transfer. Unlike CompletedEntry it outlives
// the log window.
type Ingest struct {
	gorm.Model
	Filename    string    `gorm:"not null;uniqueIndex" json:"filename"`
	Throughput  string    `json:"throughput"`
	Size        string    `json:"size,omitempty"`
	CompletedAt time.Time `gorm:"not null;index" json:"completed_at"`
}

func NewIngest(entry CompletedEntry) Ingest {
	return Ingest{
		Filename:    entry.Filename,
		Throughput:  entry.Throughput,
		Size:        entry.Size,
		CompletedAt: entry.Timestamp,
	}
}
