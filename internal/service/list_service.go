package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/karkkilista/internal/api"
	"github.com/mmynk/karkkilista/internal/auth"
	"github.com/mmynk/karkkilista/internal/metrics"
	"github.com/mmynk/karkkilista/internal/middleware"
	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/money"
	"github.com/mmynk/karkkilista/internal/storage"
)

var errNotOwner = errors.New("only the list owner can edit this list")

// ListService implements the Connect ListService.
type ListService struct {
	store  storage.Store
	owners *ownerCache

	// streams ends every open Watch stream when cancelled.
	streams     context.Context
	closeStream context.CancelFunc
}

var _ api.ListServiceHandler = (*ListService)(nil)

// ListServiceOption configures a ListService.
type ListServiceOption func(*ListService)

// WithOwnerCache sizes the owner profile cache.
func WithOwnerCache(size int, ttl time.Duration) ListServiceOption {
	return func(s *ListService) {
		s.owners = newOwnerCache(size, ttl)
	}
}

// NewListService creates a new ListService with the given storage backend.
func NewListService(store storage.Store, opts ...ListServiceOption) *ListService {
	s := &ListService{
		store:  store,
		owners: newOwnerCache(DefaultOwnerCacheSize, DefaultOwnerCacheTTL),
	}
	s.streams, s.closeStream = context.WithCancel(context.Background())
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Close ends all open Watch streams. Unary calls are not affected.
func (s *ListService) Close() {
	s.closeStream()
}

// streamContext is ctx, also cancelled when the service closes.
func (s *ListService) streamContext(ctx context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(ctx)
	stop := context.AfterFunc(s.streams, cancel)
	return ctx, func() {
		stop()
		cancel()
	}
}

// GetOwner is the point read of one owner profile.
func (s *ListService) GetOwner(ctx context.Context, req *connect.Request[api.GetOwnerRequest]) (*connect.Response[api.GetOwnerResponse], error) {
	slog.Info("GetOwner request received", "owner_id", req.Msg.OwnerID)

	if err := api.Validate(req.Msg); err != nil {
		return nil, err
	}

	owner, err := s.owner(ctx, req.Msg.OwnerID)
	if err != nil {
		return nil, err
	}

	return connect.NewResponse(&api.GetOwnerResponse{
		Owner: api.OwnerFromModel(*owner),
	}), nil
}

// WatchOwners streams the owner directory until the client goes away.
func (s *ListService) WatchOwners(ctx context.Context, req *connect.Request[api.WatchOwnersRequest], stream *connect.ServerStream[api.OwnersSnapshot]) error {
	slog.Info("WatchOwners stream opened")

	ctx, cancel := s.streamContext(ctx)
	defer cancel()

	gauge := metrics.ActiveSubscriptions.WithLabelValues(metrics.CollectionOwners)
	gauge.Inc()
	defer gauge.Dec()

	sub := s.store.WatchOwners(ctx)
	defer sub.Unsubscribe()

	for snapshot := range sub.Snapshots() {
		owners := make([]api.Owner, len(snapshot))
		for i, o := range snapshot {
			owners[i] = api.OwnerFromModel(o)
		}
		if err := stream.Send(&api.OwnersSnapshot{Owners: owners}); err != nil {
			slog.Debug("WatchOwners send failed", "error", err)
			return err
		}
	}

	slog.Info("WatchOwners stream closed")
	return nil
}

// WatchItems streams users/{ownerId}/items until the client goes away. An
// unknown owner simply has an empty list.
func (s *ListService) WatchItems(ctx context.Context, req *connect.Request[api.WatchItemsRequest], stream *connect.ServerStream[api.ItemsSnapshot]) error {
	if err := api.Validate(req.Msg); err != nil {
		return err
	}

	ownerID := req.Msg.OwnerID
	slog.Info("WatchItems stream opened", "owner_id", ownerID)

	ctx, cancel := s.streamContext(ctx)
	defer cancel()

	gauge := metrics.ActiveSubscriptions.WithLabelValues(metrics.CollectionItems)
	gauge.Inc()
	defer gauge.Dec()

	sub := s.store.WatchItems(ctx, ownerID)
	defer sub.Unsubscribe()

	for snapshot := range sub.Snapshots() {
		items := make([]api.Item, len(snapshot))
		for i, item := range snapshot {
			items[i] = api.ItemFromModel(item)
		}
		if err := stream.Send(&api.ItemsSnapshot{Items: items}); err != nil {
			slog.Debug("WatchItems send failed", "owner_id", ownerID, "error", err)
			return err
		}
	}

	slog.Info("WatchItems stream closed", "owner_id", ownerID)
	return nil
}

// AddItem appends an item to the caller's own list.
func (s *ListService) AddItem(ctx context.Context, req *connect.Request[api.AddItemRequest]) (*connect.Response[api.AddItemResponse], error) {
	ownerID := req.Msg.OwnerID
	slog.Info("AddItem request received",
		"owner_id", ownerID,
		"user_id", middleware.GetUserID(ctx),
		"name", req.Msg.Item.Name,
	)

	if err := api.Validate(req.Msg); err != nil {
		return nil, err
	}
	if err := validatePrice(req.Msg.Item.Price); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	item := req.Msg.Item.ToModel(ownerID)
	item.ID = ""
	if err := s.store.AddItem(ctx, &item); err != nil {
		slog.Error("AddItem failed", "owner_id", ownerID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	metrics.ItemsAdded.Inc()
	slog.Info("Item added", "owner_id", ownerID, "item_id", item.ID)

	return connect.NewResponse(&api.AddItemResponse{
		Item: api.ItemFromModel(item),
	}), nil
}

// RemoveItem deletes an item from the caller's own list.
func (s *ListService) RemoveItem(ctx context.Context, req *connect.Request[api.RemoveItemRequest]) (*connect.Response[api.RemoveItemResponse], error) {
	ownerID := req.Msg.OwnerID
	slog.Info("RemoveItem request received",
		"owner_id", ownerID,
		"user_id", middleware.GetUserID(ctx),
		"item_id", req.Msg.ItemID,
	)

	if err := api.Validate(req.Msg); err != nil {
		return nil, err
	}

	if err := s.authorize(ctx, ownerID); err != nil {
		return nil, err
	}

	if err := s.store.DeleteItem(ctx, ownerID, req.Msg.ItemID); err != nil {
		slog.Error("RemoveItem failed", "owner_id", ownerID, "item_id", req.Msg.ItemID, "error", err)
		if errors.Is(err, storage.ErrNotFound) {
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	metrics.ItemsRemoved.Inc()
	slog.Info("Item removed", "owner_id", ownerID, "item_id", req.Msg.ItemID)

	return connect.NewResponse(&api.RemoveItemResponse{}), nil
}

// owner reads a profile through the cache. A missing owner is NotFound.
func (s *ListService) owner(ctx context.Context, ownerID string) (*models.Owner, error) {
	if owner, ok := s.owners.Get(ownerID); ok {
		return &owner, nil
	}

	owner, err := s.store.GetOwner(ctx, ownerID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			slog.Warn("Owner not found", "owner_id", ownerID)
			return nil, connect.NewError(connect.CodeNotFound, err)
		}
		slog.Error("GetOwner failed", "owner_id", ownerID, "error", err)
		return nil, connect.NewError(connect.CodeInternal, err)
	}

	s.owners.Set(*owner)
	return owner, nil
}

// authorize applies auth.CanEdit to the caller and the target list.
func (s *ListService) authorize(ctx context.Context, ownerID string) error {
	identity := middleware.GetIdentity(ctx)
	if identity == nil {
		return connect.NewError(connect.CodeUnauthenticated, auth.ErrMissingToken)
	}

	owner, err := s.owner(ctx, ownerID)
	if err != nil {
		return err
	}

	if !auth.CanEdit(identity, owner) {
		slog.Warn("Edit denied", "owner_id", ownerID, "user_id", identity.ID)
		return connect.NewError(connect.CodePermissionDenied, errNotOwner)
	}
	return nil
}

// validatePrice enforces the stored price format on writes: text that parses
// to a non-negative amount.
func validatePrice(price string) error {
	m := money.Parse(price)
	if !m.Valid() || m.Decimal().IsNegative() {
		return connect.NewError(connect.CodeInvalidArgument, fmt.Errorf("invalid price %q", price))
	}
	return nil
}
