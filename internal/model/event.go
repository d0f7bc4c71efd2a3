package model

import "time"

type EventType string

const (
	EventCreate EventType = "CREATE"
	EventWrite  EventType = "WRITE"
	EventRemove EventType = "REMOVE"
	EventRename EventType = "RENAME"
)

// LogEvent is a change observed on the watched log file.
type LogEvent struct {
	Type      EventType
	Path      string
	Timestamp time.Time
}
