package session

import (
	"time"

	"driftglow/internal/core/model"
)

// State represents the current engine mode.
type State string

const (
	StateIdle         State = "idle"
	StateRunning      State = "running"
	StateCompleted    State = "completed"
	StateStoppedEarly State = "stopped_early"
)

// EventType defines the type of engine event.
type EventType string

const (
	EventProgress    EventType = "progress"
	EventPhaseChange EventType = "phase_change"
	EventCompleted   EventType = "session_completed"
)

// Event represents an engine update for observers.
type Event struct {
	Type      EventType
	Timeline  string
	Feature   model.FeatureID
	Kind      model.EventKind
	Elapsed   time.Duration
	Remaining time.Duration
	Percent   float64
	XP        int
	Completed bool
	At        time.Time
}
