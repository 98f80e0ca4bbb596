package events

import (
	"time"
)

// EventType represents the severity of an event.
type EventType string

const (
	// EventTypeNormal indicates normal, non-problematic events.
	EventTypeNormal EventType = "Normal"

	// EventTypeWarning indicates events that may require attention.
	EventTypeWarning EventType = "Warning"
)

// EventReason represents the reason code for an event.
type EventReason string

// Model events
const (
	// ReasonModelChanged indicates the component registry or cluster state changed
	// and observers should re-render.
	ReasonModelChanged EventReason = "ModelChanged"
)

// Component events
const (
	// ReasonMigrationCompleted indicates a legacy component was migrated.
	ReasonMigrationCompleted EventReason = "MigrationCompleted"

	// ReasonMigrationFailed indicates a legacy component migration failed.
	ReasonMigrationFailed EventReason = "MigrationFailed"
)

// Session events
const (
	// ReasonLoginSucceeded indicates an explicit login completed.
	ReasonLoginSucceeded EventReason = "LoginSucceeded"

	// ReasonLogoutSucceeded indicates an explicit logout completed.
	ReasonLogoutSucceeded EventReason = "LogoutSucceeded"

	// ReasonError carries a user-visible error message.
	ReasonError EventReason = "Error"
)

// Event is a notification delivered to observers.
type Event struct {
	// ID uniquely identifies the event.
	ID string

	// Type is the severity of the event.
	Type EventType

	// Reason is the machine-readable reason code.
	Reason EventReason

	// Message is the human-readable message.
	Message string

	// Timestamp is when the event was published.
	Timestamp time.Time
}

// EventData holds contextual information for event message templating.
type EventData struct {
	// Name is the component or context name involved in the event.
	Name string

	// Path is the filesystem path of the component, if any.
	Path string

	// Server is the cluster server involved in the event, if any.
	Server string

	// Error contains error information for failure events.
	Error string
}

// Notifier is the set of notifications the synchronization core produces.
type Notifier interface {
	// ModelChanged signals that observers should re-read the model.
	ModelChanged()

	// MigrationCompleted signals that a legacy component was migrated.
	MigrationCompleted(name string)

	// MigrationFailed signals that migrating a legacy component failed.
	MigrationFailed(name, path string, err error)

	// Error delivers a user-visible message with the given severity.
	Error(message string, severity EventType)
}

// getEventType returns the appropriate EventType for a given EventReason.
func getEventType(reason EventReason) EventType {
	switch reason {
	case ReasonMigrationFailed, ReasonError:
		return EventTypeWarning
	default:
		return EventTypeNormal
	}
}
