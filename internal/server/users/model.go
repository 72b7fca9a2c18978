// Package users owns user records: the model, the storage contract and its
// SQL implementation.
package users

import "time"

// User is a persisted account. Activated only ever goes from false to true.
type User struct {
	ID           int64     `db:"id"`
	Username     string    `db:"username"`
	Email        string    `db:"email"`
	PasswordHash string    `db:"password"`
	Activated    bool      `db:"activated"`
	CreatedAt    time.Time `db:"created_at"`
	UpdatedAt    time.Time `db:"updated_at"`
}

// Public is the user view exposed to clients.
type Public struct {
	Username string `json:"username"`
}

// Public returns the client-facing view of u.
func (u *User) Public() Public {
	return Public{Username: u.Username}
}
