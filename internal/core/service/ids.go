package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// newID returns a time-ordered UUIDv7 so that sorting by id follows creation
// order.
func newID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func utcNow() time.Time { return time.Now().UTC() }
