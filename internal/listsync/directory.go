package listsync

import (
	"context"
	"slices"
	"sync"

	"github.com/mmynk/karkkilista/internal/models"
	"github.com/mmynk/karkkilista/internal/storage/feed"
)

// DirectorySource streams the owner directory.
type DirectorySource interface {
	WatchOwners(ctx context.Context) *feed.Subscription[models.Owner]
}

// Directory is the live list of every owner, shown at /.
type Directory struct {
	mu     sync.RWMutex
	owners []models.Owner
	synced bool

	changes listeners
	sub     *feed.Subscription[models.Owner]
	done    chan struct{}
	once    sync.Once
}

// OpenDirectory subscribes to the owner directory.
func OpenDirectory(ctx context.Context, src DirectorySource) *Directory {
	d := &Directory{
		owners: []models.Owner{},
		sub:    src.WatchOwners(ctx),
		done:   make(chan struct{}),
	}

	go func() {
		defer close(d.done)
		for snap := range d.sub.Snapshots() {
			d.mu.Lock()
			d.owners = slices.Clone(snap)
			d.synced = true
			d.mu.Unlock()
			d.changes.notify()
		}
	}()

	return d
}

// Owners returns a copy of the current directory.
func (d *Directory) Owners() []models.Owner {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return slices.Clone(d.owners)
}

// Synced reports whether the first snapshot has arrived.
func (d *Directory) Synced() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.synced
}

// OnChange calls fn after every snapshot.
func (d *Directory) OnChange(fn func()) (cancel func()) {
	return d.changes.add(fn)
}

// Close stops the subscription.
func (d *Directory) Close() {
	d.once.Do(func() {
		d.sub.Unsubscribe()
		<-d.done
	})
}
