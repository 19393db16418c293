// Package pkg holds small shared helpers.
package pkg

import (
	"strings"

	"github.com/google/uuid"
)

// GenerateSessionID - returns a new player session identifier.
func GenerateSessionID() string {
	return uuid.NewString()
}

// GenerateGameID - returns a short shareable game identifier.
func GenerateGameID() string {
	id := uuid.NewString()
	return strings.ReplaceAll(id, "-", "")[:8]
}

// GenerateRequestID - returns an identifier used to correlate log lines of
// one decision request. It carries no semantics.
func GenerateRequestID() string {
	return uuid.NewString()
}
