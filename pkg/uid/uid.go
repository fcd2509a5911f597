package uid

import "github.com/google/uuid"

// New generates a new random identifier for requests and stored scans.
func New() string {
	return uuid.NewString()
}

// NewOrdered generates a time-ordered (v7) identifier, so ids sort by creation.
// It falls back to a random id if the clock source fails.
func NewOrdered() string {
	id, err := uuid.NewV7()
	if err != nil {
		return New()
	}
	return id.String()
}

// IsValid checks if a string is a valid UUID.
func IsValid(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
