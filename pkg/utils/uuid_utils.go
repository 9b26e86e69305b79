package utils

import (
	"github.com/google/uuid"
)

var newUUIDv7 = uuid.NewV7

// GenerateUUIDv7 returns a time-ordered UUID. Fee history and adjustment
// rows use these as primary keys so insertion order survives in the index.
func GenerateUUIDv7() uuid.UUID {
	id, err := newUUIDv7()
	if err != nil {
		// crypto/rand exhaustion only; fall back to v4
		return uuid.New()
	}
	return id
}
