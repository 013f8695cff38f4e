package domain

import (
	"fmt"

	"github.com/google/uuid"
)

// ProjectID identifies a dialectic project. Project ids are UUIDs.
type ProjectID string

// NewProjectID creates a ProjectID, normalizing the UUID to its canonical form
func NewProjectID(value string) (ProjectID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid project ID %q: %w", value, err)
	}
	return ProjectID(id.String()), nil
}

// String returns the string representation
func (p ProjectID) String() string {
	return string(p)
}

// SessionID identifies one dialectic session within a project
type SessionID string

// NewSessionID creates a SessionID, normalizing the UUID to its canonical form
func NewSessionID(value string) (SessionID, error) {
	id, err := uuid.Parse(value)
	if err != nil {
		return "", fmt.Errorf("invalid session ID %q: %w", value, err)
	}
	return SessionID(id.String()), nil
}

// String returns the string representation
func (s SessionID) String() string {
	return string(s)
}

// NewRandomSessionID returns a fresh session id
func NewRandomSessionID() SessionID {
	return SessionID(uuid.NewString())
}
