package common

import "github.com/google/uuid"

// NewID generates a new UUID string for companies, jobs and runs
func NewID() string {
	return uuid.New().String()
}
