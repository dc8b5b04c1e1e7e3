package types

import (
	"time"

	"github.com/google/uuid"
)

// NewCycleID generates a UUIDv7 load cycle identifier.
// Time-ordered IDs keep log lines for consecutive cycles sorted.
// Panics on clock regression (uuid.Must); acceptable for ID generation.
func NewCycleID() CycleID {
	return CycleID(uuid.Must(uuid.NewV7()).String())
}

// ParseCycleID validates and converts a string to CycleID.
func ParseCycleID(s string) (CycleID, error) {
	_, err := uuid.Parse(s)
	if err != nil {
		return "", err
	}
	return CycleID(s), nil
}

// CycleIDTime extracts the timestamp embedded in a UUIDv7 cycle ID.
// Returns zero time for invalid UUIDs; caller should check IsZero().
func CycleIDTime(id CycleID) time.Time {
	u, err := uuid.Parse(string(id))
	if err != nil {
		return time.Time{}
	}
	sec, nsec := u.Time().UnixTime()
	return time.Unix(sec, nsec)
}
