package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage"
)

// CreateAccount inserts the account and its owner profile in one transaction.
func (s *SQLiteStore) CreateAccount(ctx context.Context, account *models.Account, owner *models.Owner) error {
	if account.ID == "" {
		account.ID = uuid.New().String()
	}
	owner.ID = account.ID

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		"INSERT INTO accounts (id, email, password_hash, created_at) VALUES (?, ?, ?, ?)",
		account.ID, account.Email, account.PasswordHash, account.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert account: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		"INSERT INTO users (id, username, seq) VALUES (?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM users))",
		owner.ID, owner.Username,
	)
	if err != nil {
		return fmt.Errorf("failed to insert owner: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	s.hub.Notify(storage.OwnersCollection)
	return nil
}

// GetAccountByEmail retrieves an account by email address.
func (s *SQLiteStore) GetAccountByEmail(ctx context.Context, email string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM accounts WHERE email = ?",
		email,
	).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil // Account not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by email: %w", err)
	}

	return account, nil
}

// GetAccountByID retrieves an account by id.
func (s *SQLiteStore) GetAccountByID(ctx context.Context, id string) (*models.Account, error) {
	account := &models.Account{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, email, password_hash, created_at FROM accounts WHERE id = ?",
		id,
	).Scan(&account.ID, &account.Email, &account.PasswordHash, &account.CreatedAt)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("account %s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account by ID: %w", err)
	}

	return account, nil
}
