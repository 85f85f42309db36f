package sqlite

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage"
	"github.com/mmynk/karkkilista/internal/storage/feed"
)

// AddItem appends an item to its owner's list.
func (s *SQLiteStore) AddItem(ctx context.Context, item *models.Item) error {
	if item.ID == "" {
		item.ID = uuid.New().String()
	}

	_, err := s.db.ExecContext(ctx,
		`INSERT INTO items (id, owner_id, name, amount, url, price, seq)
		 VALUES (?, ?, ?, ?, ?, ?, (SELECT COALESCE(MAX(seq), 0) + 1 FROM items WHERE owner_id = ?))`,
		item.ID, item.OwnerID, item.Name, item.Amount, item.URL, item.Price, item.OwnerID,
	)
	if err != nil {
		return fmt.Errorf("failed to insert item: %w", err)
	}

	s.hub.Notify(storage.ItemsCollection(item.OwnerID))
	return nil
}

// DeleteItem removes an item from the owner's list.
func (s *SQLiteStore) DeleteItem(ctx context.Context, ownerID, itemID string) error {
	res, err := s.db.ExecContext(ctx,
		"DELETE FROM items WHERE id = ? AND owner_id = ?",
		itemID, ownerID,
	)
	if err != nil {
		return fmt.Errorf("failed to delete item: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check deleted rows: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("item %s: %w", itemID, storage.ErrNotFound)
	}

	s.hub.Notify(storage.ItemsCollection(ownerID))
	return nil
}

// ListItems returns the owner's items in insertion order.
func (s *SQLiteStore) ListItems(ctx context.Context, ownerID string) ([]models.Item, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT id, owner_id, name, amount, url, price FROM items WHERE owner_id = ? ORDER BY seq",
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list items: %w", err)
	}
	defer rows.Close()

	items := []models.Item{}
	for rows.Next() {
		var item models.Item
		if err := rows.Scan(&item.ID, &item.OwnerID, &item.Name, &item.Amount, &item.URL, &item.Price); err != nil {
			return nil, fmt.Errorf("failed to scan item: %w", err)
		}
		items = append(items, item)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate items: %w", err)
	}

	return items, nil
}

// WatchItems subscribes to users/{ownerId}/items.
func (s *SQLiteStore) WatchItems(ctx context.Context, ownerID string) *feed.Subscription[models.Item] {
	load := func(ctx context.Context) ([]models.Item, error) {
		return s.ListItems(ctx, ownerID)
	}
	return feed.Watch(ctx, s.hub, storage.ItemsCollection(ownerID), load, s.retryDelay)
}
