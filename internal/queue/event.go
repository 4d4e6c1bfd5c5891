// Package queue defines message payloads exchanged over the message broker.
package queue

import "time"

// Event types published on the assignments queue.
const (
    EventAssignmentCreated = "assignment.created"
    EventBurialCompleted   = "burial.completed"
)

// AssignmentEvent is published after an assignment commits and after a
// burial is marked completed.  It carries enough information for
// downstream consumers (registry log, family notification) to act without
// querying the primary database.
type AssignmentEvent struct {
    EventID      string `json:"event_id"`
    Type         string `json:"type"`
    AssignmentID uint64 `json:"assignment_id"`
    DeceasedID   uint64 `json:"deceased_id"`
    GraveID      string `json:"grave_id"`
    Section      string `json:"section,omitempty"`
    AssignedBy   string `json:"assigned_by,omitempty"`
    BurialDate   string `json:"burial_date,omitempty"`
    BurialTime   string `json:"burial_time,omitempty"`
    OccurredAt   string `json:"occurred_at"`
}

// Stamp formats t the way OccurredAt is carried on the wire.
func Stamp(t time.Time) string {
    return t.UTC().Format(time.RFC3339)
}
