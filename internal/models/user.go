package models

import "time"

// Owner is the public profile of a list owner (users/{ownerId}).
// It is written once at registration and never changes.
type Owner struct {
	// ID is the owner id, equal to the account id (UUID format).
	ID string

	// Username is the display name chosen at registration.
	Username string
}

// Account is the authentication record behind an Owner.
type Account struct {
	ID string

	// Email is the login name (unique).
	Email string

	// PasswordHash is the bcrypt hash of the password.
	PasswordHash string

	// CreatedAt is the Unix timestamp when the account was created.
	CreatedAt int64
}

// NewAccount creates an account with a fresh timestamp. The id is assigned by
// the store.
func NewAccount(email, passwordHash string) *Account {
	return &Account{
		Email:        email,
		PasswordHash: passwordHash,
		CreatedAt:    time.Now().Unix(),
	}
}

// Identity is the signed-in user of a session.
type Identity struct {
	ID    string
	Email string
}
