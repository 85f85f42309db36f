// Package listsync keeps a local, live copy of one owner's list (or of the
// owner directory) for a renderer.
//
// Every snapshot from the backend replaces the local copy wholesale, and
// each snapshot is handled completely before the next one is looked at.
package listsync

import "sync"

// listeners is a set of change callbacks.
type listeners struct {
	mu     sync.Mutex
	fns    map[int]func()
	nextID int
}

func (l *listeners) add(fn func()) (cancel func()) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.fns == nil {
		l.fns = make(map[int]func())
	}
	id := l.nextID
	l.nextID++
	l.fns[id] = fn

	return func() {
		l.mu.Lock()
		defer l.mu.Unlock()
		delete(l.fns, id)
	}
}

func (l *listeners) notify() {
	l.mu.Lock()
	fns := make([]func(), 0, len(l.fns))
	for _, fn := range l.fns {
		fns = append(fns, fn)
	}
	l.mu.Unlock()

	for _, fn := range fns {
		fn()
	}
}
