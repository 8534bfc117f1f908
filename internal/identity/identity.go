// Package identity provides the opaque identifiers and user-set algebra shared
// by every task-lifecycle component: who a task's creator is, who owns a file,
// and who must approve before a task may be dispatched.
package identity

import "github.com/google/uuid"

type (
	// UserID is an opaque, string-equal identity for a human or service
	// participant. Two UserIDs are the same user iff they compare equal;
	// the core never inspects their contents.
	UserID string

	// ExternalID is a stable, prefixed string identifier used to reference
	// records owned by a foreign subsystem (the function registry, the
	// file-ownership service). The core treats it as an opaque string.
	ExternalID string

	// TaskID uniquely identifies a task for its entire lifetime. It is
	// generated once at creation (NewTaskID) and never reassigned.
	TaskID uuid.UUID
)

// NewTaskID generates a fresh, random TaskID.
func NewTaskID() TaskID {
	return TaskID(uuid.New())
}

// String renders the TaskID in canonical UUID form.
func (t TaskID) String() string {
	return uuid.UUID(t).String()
}

// ParseTaskID parses a canonical UUID string into a TaskID.
func ParseTaskID(s string) (TaskID, error) {
	id, err := uuid.Parse(s)

	return TaskID(id), err
}

// IsZero reports whether t is the zero-value TaskID (never assigned).
func (t TaskID) IsZero() bool {
	return t == TaskID(uuid.Nil)
}
