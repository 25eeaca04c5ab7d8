// internal/domain/user.go
package domain

import "time"

// User represents an account holder. The PIN hash is one-way (bcrypt) and is
// never serialized in API responses.
type User struct {
	ID        int64     `db:"id" json:"id"`
	Name      string    `db:"name" json:"name"`
	PINHash   string    `db:"pin_hash" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// NewUser creates a new User instance with an already-hashed PIN.
func NewUser(name, pinHash string) *User {
	return &User{
		Name:      name,
		PINHash:   pinHash,
		CreatedAt: time.Now().UTC(),
	}
}
