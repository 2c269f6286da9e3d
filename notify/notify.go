package notify

import (
	"context"
	"time"
)

// =============================================================================
// Event Types
// =============================================================================

// EventType represents the type of run event.
type EventType string

// Event type constants.
const (
	EventRunStarted     EventType = "run_started"
	EventRunCompleted   EventType = "run_completed"
	EventRunFailed      EventType = "run_failed"
	EventArtifactSaved  EventType = "artifact_saved"
	EventArtifactDelete EventType = "artifact_deleted"
)

// Severity constants for events.
const (
	SeverityInfo    = "info"
	SeverityWarning = "warning"
	SeverityError   = "error"
)

// =============================================================================
// Event
// =============================================================================

// Event describes a run event.
type Event struct {
	Type      EventType      `json:"type"`
	RunID     string         `json:"run_id"`
	Artifact  string         `json:"artifact,omitempty"`
	Message   string         `json:"message"`
	Severity  string         `json:"severity"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// =============================================================================
// Notifier Interface
// =============================================================================

// Notifier sends notifications about run events.
type Notifier interface {
	// Notify sends a notification. Callers treat failures as non-fatal.
	Notify(ctx context.Context, event Event) error
}
