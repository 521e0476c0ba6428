package utils

import "github.com/google/uuid"

// GenerateID returns a new random identifier for evaluations and submissions.
func GenerateID() string {
	return uuid.NewString()
}
