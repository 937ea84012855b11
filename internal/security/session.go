package security

import (
	"github.com/google/uuid"
)

// GenerateRequestID creates a new UUID used to correlate a request with backend logs
func GenerateRequestID() string {
	return uuid.New().String()
}

// GenerateIdempotencyKey creates a key that lets the backend drop a duplicate order submission
func GenerateIdempotencyKey() string {
	return uuid.New().String()
}
