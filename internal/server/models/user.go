// Package models defines server-side data models persisted in the database.
package models

import "time"

// User is a registered account. Email and Phone are optional, but at least
// one of them is always set; absent values are nil, never "".
type User struct {
	ID        int64     `json:"id"`
	Name      string    `json:"name"`
	Email     *string   `json:"email"`
	Phone     *string   `json:"phone"`
	CreatedAt time.Time `json:"created_at"`

	// PasswordHash is the encoded digest. It is never serialized.
	PasswordHash string `json:"-"`
}
