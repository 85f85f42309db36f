package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage"
	"github.com/mmynk/karkkilista/internal/storage/feed"
)

// GetOwner reads users/{ownerId}.
func (s *SQLiteStore) GetOwner(ctx context.Context, ownerID string) (*models.Owner, error) {
	owner := &models.Owner{}
	err := s.db.QueryRowContext(ctx,
		"SELECT id, username FROM users WHERE id = ?",
		ownerID,
	).Scan(&owner.ID, &owner.Username)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("owner %s: %w", ownerID, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get owner: %w", err)
	}

	return owner, nil
}

// ListOwners returns all owners in registration order.
func (s *SQLiteStore) ListOwners(ctx context.Context) ([]models.Owner, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT id, username FROM users ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to list owners: %w", err)
	}
	defer rows.Close()

	owners := []models.Owner{}
	for rows.Next() {
		var owner models.Owner
		if err := rows.Scan(&owner.ID, &owner.Username); err != nil {
			return nil, fmt.Errorf("failed to scan owner: %w", err)
		}
		owners = append(owners, owner)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate owners: %w", err)
	}

	return owners, nil
}

// WatchOwners subscribes to the owner directory.
func (s *SQLiteStore) WatchOwners(ctx context.Context) *feed.Subscription[models.Owner] {
	return feed.Watch(ctx, s.hub, storage.OwnersCollection, s.ListOwners, s.retryDelay)
}
