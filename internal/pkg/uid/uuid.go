package uid

import "github.com/google/uuid"

// UUID generates version 7 UUIDs, so correlation IDs sort by creation time.
type UUID struct{}

func NewUUID() *UUID {
	return &UUID{}
}

// Generate falls back to a random version 4 UUID when reading the clock fails.
func (*UUID) Generate() string {
	if id, err := uuid.NewV7(); err == nil {
		return id.String()
	}
	return uuid.NewString()
}
