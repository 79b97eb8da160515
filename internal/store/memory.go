package store

import (
	"context"
	"sync"
)

// Memory is the in-process store backend, used by tests and ephemeral
// single-process runs. Change handlers run synchronously on the writer's
// goroutine after the write commits and the lock is released, so handlers
// may freely call back into the store.
type Memory struct {
	mu      sync.Mutex
	data    Data
	nextSub int
	subs    map[int]ChangeHandler
}

// NewMemory returns an empty in-process store.
func NewMemory() *Memory {
	return &Memory{subs: make(map[int]ChangeHandler)}
}

// Get reads a snapshot of the named collections.
func (m *Memory) Get(ctx context.Context, keys ...string) (Data, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out Data
	for _, key := range keys {
		switch key {
		case KeyVideos:
			out.Videos = cloneVideos(m.data.Videos)
		case KeyPlaylists:
			out.Playlists = clonePlaylists(m.data.Playlists)
		}
	}
	return out, nil
}

// Set replaces the collections named by the update, then notifies every
// subscriber with the changed keys.
func (m *Memory) Set(ctx context.Context, u Update) error {
	keys := u.Keys()
	if len(keys) == 0 {
		return nil
	}

	m.mu.Lock()
	if u.Videos != nil {
		m.data.Videos = cloneVideos(*u.Videos)
	}
	if u.Playlists != nil {
		m.data.Playlists = clonePlaylists(*u.Playlists)
	}
	handlers := make([]ChangeHandler, 0, len(m.subs))
	for _, h := range m.subs {
		handlers = append(handlers, h)
	}
	m.mu.Unlock()

	for _, h := range handlers {
		h(keys)
	}
	return nil
}

// Subscribe registers a change handler and returns its cancel func.
func (m *Memory) Subscribe(h ChangeHandler) (func(), error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	id := m.nextSub
	m.nextSub++
	m.subs[id] = h

	return func() {
		m.mu.Lock()
		defer m.mu.Unlock()
		delete(m.subs, id)
	}, nil
}

// Close is a no-op for the in-process backend.
func (m *Memory) Close() error { return nil }
