package auth

import (
	"context"
	"errors"
	"fmt"

	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/karkkilista/internal/models"
)

// MinPasswordLength is the shortest password Register accepts.
const MinPasswordLength = 6

var (
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrWeakPassword       = fmt.Errorf("password must be at least %d characters", MinPasswordLength)
	ErrEmailExists        = errors.New("email already registered")
)

// AccountStorage defines the persistence the authenticator needs.
type AccountStorage interface {
	// CreateAccount stores the account and the owner profile in one step and
	// fills in the generated id on both.
	CreateAccount(ctx context.Context, account *models.Account, owner *models.Owner) error
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)
}

// PasswordAuthenticator implements password-based authentication using bcrypt.
type PasswordAuthenticator struct {
	storage AccountStorage
	cost    int
}

// NewPasswordAuthenticator creates a new password-based authenticator.
func NewPasswordAuthenticator(storage AccountStorage) *PasswordAuthenticator {
	return &PasswordAuthenticator{
		storage: storage,
		cost:    bcrypt.DefaultCost,
	}
}

// WithCost overrides the bcrypt cost. Tests use bcrypt.MinCost.
func (a *PasswordAuthenticator) WithCost(cost int) *PasswordAuthenticator {
	a.cost = cost
	return a
}

// ValidateCredential checks if the password meets minimum requirements.
func (a *PasswordAuthenticator) ValidateCredential(credential string) error {
	if len(credential) < MinPasswordLength {
		return ErrWeakPassword
	}
	return nil
}

// Register creates a new account with a hashed password and its owner profile.
func (a *PasswordAuthenticator) Register(ctx context.Context, email, username, credential string) (*models.Account, *models.Owner, error) {
	if err := a.ValidateCredential(credential); err != nil {
		return nil, nil, err
	}

	existing, err := a.storage.GetAccountByEmail(ctx, email)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to look up email: %w", err)
	}
	if existing != nil {
		return nil, nil, ErrEmailExists
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(credential), a.cost)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.NewAccount(email, string(hashed))
	owner := &models.Owner{Username: username}
	if err := a.storage.CreateAccount(ctx, account, owner); err != nil {
		return nil, nil, fmt.Errorf("failed to create account: %w", err)
	}

	return account, owner, nil
}

// Authenticate verifies the email and password, returning the account if valid.
func (a *PasswordAuthenticator) Authenticate(ctx context.Context, email, credential string) (*models.Account, error) {
	account, err := a.storage.GetAccountByEmail(ctx, email)
	if err != nil || account == nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(account.PasswordHash), []byte(credential)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return account, nil
}
