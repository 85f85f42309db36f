package listsync

import (
	"context"
	"errors"
	"log/slog"
	"slices"
	"sync"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/money"
	"github.com/mmynk/karkkilista/internal/storage"
	"github.com/mmynk/karkkilista/internal/storage/feed"
)

// Source is where a View reads from. Both the server-side store and the
// network client implement it.
type Source interface {
	GetOwner(ctx context.Context, ownerID string) (*models.Owner, error)
	WatchItems(ctx context.Context, ownerID string) *feed.Subscription[models.Item]
}

// View is the live state of the list at /list/{ownerId}.
type View struct {
	ownerID string

	mu     sync.RWMutex
	owner  *models.Owner
	items  []models.Item
	synced bool

	changes listeners
	sub     *feed.Subscription[models.Item]
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// Open starts the owner lookup and the item subscription of ownerID. The
// view stays open until Close is called or ctx is cancelled.
func Open(ctx context.Context, src Source, ownerID string) *View {
	ctx, cancel := context.WithCancel(ctx)
	v := &View{
		ownerID: ownerID,
		items:   []models.Item{},
		cancel:  cancel,
	}

	v.sub = src.WatchItems(ctx, ownerID)

	v.wg.Add(2)
	go func() {
		defer v.wg.Done()
		v.lookupOwner(ctx, src)
	}()
	go func() {
		defer v.wg.Done()
		for snap := range v.sub.Snapshots() {
			v.replaceItems(snap)
		}
	}()

	return v
}

// lookupOwner reads the owner profile once. A missing owner leaves the view
// loading for good.
func (v *View) lookupOwner(ctx context.Context, src Source) {
	owner, err := src.GetOwner(ctx, v.ownerID)
	if err != nil {
		switch {
		case ctx.Err() != nil:
		case errors.Is(err, storage.ErrNotFound):
			slog.Debug("List owner does not exist", "owner_id", v.ownerID)
		default:
			slog.Error("List owner lookup failed", "owner_id", v.ownerID, "error", err)
		}
		return
	}

	v.mu.Lock()
	v.owner = owner
	v.mu.Unlock()
	v.changes.notify()
}

func (v *View) replaceItems(snap []models.Item) {
	v.mu.Lock()
	v.items = slices.Clone(snap)
	v.synced = true
	v.mu.Unlock()
	v.changes.notify()
}

// OwnerID returns the id the view is bound to.
func (v *View) OwnerID() string {
	return v.ownerID
}

// Owner returns the list owner, or nil while it is still loading.
func (v *View) Owner() *models.Owner {
	v.mu.RLock()
	defer v.mu.RUnlock()

	if v.owner == nil {
		return nil
	}
	o := *v.owner
	return &o
}

// Loading reports whether the owner is still unknown.
func (v *View) Loading() bool {
	return v.Owner() == nil
}

// Synced reports whether at least one item snapshot has arrived.
func (v *View) Synced() bool {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return v.synced
}

// Items returns a copy of the current items in delivery order.
func (v *View) Items() []models.Item {
	v.mu.RLock()
	defer v.mu.RUnlock()
	return slices.Clone(v.items)
}

// GrandTotal sums the prices of the current items. A malformed stored price
// makes the total invalid.
func (v *View) GrandTotal() money.Money {
	v.mu.RLock()
	defer v.mu.RUnlock()

	prices := make([]string, len(v.items))
	for i, item := range v.items {
		prices[i] = item.Price
	}
	return money.Sum(prices...)
}

// OnChange calls fn after the owner arrives and after every snapshot.
func (v *View) OnChange(fn func()) (cancel func()) {
	return v.changes.add(fn)
}

// Close stops the subscription and waits for the view's goroutines.
func (v *View) Close() {
	v.once.Do(func() {
		v.cancel()
		v.sub.Unsubscribe()
		v.wg.Wait()
	})
}
