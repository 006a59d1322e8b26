package models

import "time"

// OneTimeCode is a password-recovery code bound to an email identity.
type OneTimeCode struct {
	ID        int64
	Email     string
	Code      string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// LiveAt reports whether the code is still usable at t. A code is dead at
// exactly its expiry instant.
func (c *OneTimeCode) LiveAt(t time.Time) bool {
	return t.Before(c.ExpiresAt)
}
