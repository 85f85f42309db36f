// Package storage provides abstractions for persistent data storage.
package storage

import (
	"context"
	"errors"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage/feed"
)

// ErrNotFound is returned when a point read or delete finds nothing.
var ErrNotFound = errors.New("not found")

// Collection keys used for change notifications.
const OwnersCollection = "users"

// ItemsCollection returns the change notification key of an owner's items.
func ItemsCollection(ownerID string) string {
	return OwnersCollection + "/" + ownerID + "/items"
}

// Store defines the document operations the service layer needs.
// This abstraction allows swapping storage backends without changing the
// service layer.
type Store interface {
	// CreateAccount persists a new account and its owner profile. Both get
	// the same generated id.
	CreateAccount(ctx context.Context, account *models.Account, owner *models.Owner) error

	// GetAccountByEmail returns nil, nil when no account uses the email.
	GetAccountByEmail(ctx context.Context, email string) (*models.Account, error)

	// GetAccountByID returns ErrNotFound when the account does not exist.
	GetAccountByID(ctx context.Context, id string) (*models.Account, error)

	// GetOwner is the point read of users/{ownerId}. Returns ErrNotFound when
	// the owner does not exist.
	GetOwner(ctx context.Context, ownerID string) (*models.Owner, error)

	// ListOwners returns every owner profile in registration order.
	ListOwners(ctx context.Context) ([]models.Owner, error)

	// WatchOwners subscribes to the owner directory.
	WatchOwners(ctx context.Context) *feed.Subscription[models.Owner]

	// ListItems returns the owner's items in insertion order.
	ListItems(ctx context.Context, ownerID string) ([]models.Item, error)

	// WatchItems subscribes to users/{ownerId}/items.
	WatchItems(ctx context.Context, ownerID string) *feed.Subscription[models.Item]

	// AddItem appends an item to item.OwnerID's list and fills in item.ID.
	AddItem(ctx context.Context, item *models.Item) error

	// DeleteItem removes the item from the owner's list. Returns ErrNotFound
	// when the owner has no such item.
	DeleteItem(ctx context.Context, ownerID, itemID string) error

	// Close releases any resources held by the store.
	Close() error
}
