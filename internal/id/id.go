package id

import "github.com/google/uuid"

// NewID creates a unique identifier. Attempt logs written by earlier versions
// of the app carry UUIDv4 strings, so the format must stay a UUID.
func NewID() string {
	return uuid.NewString()
}
