package client

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"
	"github.com/cenkalti/backoff/v4"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage"
	"github.com/mmynk/karkkilista/internal/storage/feed"
)

// ErrPermissionDenied is returned when the server refuses an edit.
var ErrPermissionDenied = errors.New("permission denied")

// GetOwner reads one owner profile. A missing owner is storage.ErrNotFound.
func (c *Client) GetOwner(ctx context.Context, ownerID string) (*models.Owner, error) {
	resp, err := c.lists.GetOwner(ctx, connect.NewRequest(&api.GetOwnerRequest{OwnerID: ownerID}))
	if err != nil {
		return nil, fmt.Errorf("get owner %s: %w", ownerID, mapError(err))
	}

	owner := resp.Msg.Owner.ToModel()
	return &owner, nil
}

// AddItem appends item to ownerID's list and returns it with its new id.
func (c *Client) AddItem(ctx context.Context, ownerID string, item models.Item) (*models.Item, error) {
	resp, err := c.lists.AddItem(ctx, connect.NewRequest(&api.AddItemRequest{
		OwnerID: ownerID,
		Item:    api.ItemFromModel(item),
	}))
	if err != nil {
		return nil, fmt.Errorf("add item: %w", mapError(err))
	}

	added := resp.Msg.Item.ToModel(ownerID)
	return &added, nil
}

// RemoveItem deletes an item from ownerID's list.
func (c *Client) RemoveItem(ctx context.Context, ownerID, itemID string) error {
	_, err := c.lists.RemoveItem(ctx, connect.NewRequest(&api.RemoveItemRequest{
		OwnerID: ownerID,
		ItemID:  itemID,
	}))
	if err != nil {
		return fmt.Errorf("remove item %s: %w", itemID, mapError(err))
	}
	return nil
}

// WatchOwners subscribes to the owner directory.
func (c *Client) WatchOwners(ctx context.Context) *feed.Subscription[models.Owner] {
	open := func(ctx context.Context) (*connect.ServerStreamForClient[api.OwnersSnapshot], error) {
		return c.lists.WatchOwners(ctx, connect.NewRequest(&api.WatchOwnersRequest{}))
	}
	convert := func(msg *api.OwnersSnapshot) []models.Owner {
		owners := make([]models.Owner, len(msg.Owners))
		for i, o := range msg.Owners {
			owners[i] = o.ToModel()
		}
		return owners
	}
	return subscribe(ctx, c, "owners", open, convert)
}

// WatchItems subscribes to users/{ownerId}/items.
func (c *Client) WatchItems(ctx context.Context, ownerID string) *feed.Subscription[models.Item] {
	open := func(ctx context.Context) (*connect.ServerStreamForClient[api.ItemsSnapshot], error) {
		return c.lists.WatchItems(ctx, connect.NewRequest(&api.WatchItemsRequest{OwnerID: ownerID}))
	}
	convert := func(msg *api.ItemsSnapshot) []models.Item {
		items := make([]models.Item, len(msg.Items))
		for i, item := range msg.Items {
			items[i] = item.ToModel(ownerID)
		}
		return items
	}
	return subscribe(ctx, c, storage.ItemsCollection(ownerID), open, convert)
}

// subscribe keeps a server stream open for the lifetime of the subscription
// and republishes its snapshots. Broken or refused streams are reopened
// after a backoff delay; the delay resets once a snapshot gets through.
func subscribe[M, T any](
	ctx context.Context,
	c *Client,
	name string,
	open func(context.Context) (*connect.ServerStreamForClient[M], error),
	convert func(*M) []T,
) *feed.Subscription[T] {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(c.ctx, cancel)

	return feed.Start(ctx, func(ctx context.Context, publish func([]T)) {
		defer stop()
		defer cancel()

		b := backoff.WithContext(c.newBackOff(), ctx)
		for {
			stream, err := open(ctx)
			if err == nil {
				for stream.Receive() {
					b.Reset()
					publish(convert(stream.Msg()))
				}
				err = stream.Err()
				stream.Close()
			}
			if ctx.Err() != nil {
				return
			}

			delay := b.NextBackOff()
			if delay == backoff.Stop {
				slog.Error("Subscription gave up", "stream", name, "error", err)
				return
			}
			slog.Warn("Subscription interrupted, reconnecting",
				"stream", name,
				"error", err,
				"retry_in", delay,
			)

			timer := time.NewTimer(delay)
			select {
			case <-ctx.Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
	})
}

// mapError turns connect codes the callers care about into sentinels.
func mapError(err error) error {
	switch connect.CodeOf(err) {
	case connect.CodeNotFound:
		return fmt.Errorf("%w: %w", storage.ErrNotFound, err)
	case connect.CodePermissionDenied:
		return fmt.Errorf("%w: %w", ErrPermissionDenied, err)
	}
	return err
}
