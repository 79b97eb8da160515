package service

import (
	"context"
	"log"
	"time"

	"github.com/asadsehto/savetube/internal/store"
)

// Janitor is a periodic background job that enforces the cascade
// invariant: playlist entries whose url is no longer in the global saved
// set are pruned. Concurrent full-collection writers can race
// (last-write-wins), so an orphaned entry can survive a lost update; the
// janitor is the backstop that converges the store.
type Janitor struct {
	store    store.Store
	interval time.Duration
	stopCh   chan struct{}
}

// NewJanitor creates a janitor that sweeps every interval.
func NewJanitor(st store.Store, interval time.Duration) *Janitor {
	return &Janitor{
		store:    st,
		interval: interval,
		stopCh:   make(chan struct{}),
	}
}

// Start runs one sweep immediately, then one every interval.
func (j *Janitor) Start(ctx context.Context) {
	log.Printf("janitor: starting (interval=%s)", j.interval)

	j.sweep(ctx)

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			j.sweep(ctx)
		case <-ctx.Done():
			log.Println("janitor: stopping (context cancelled)")
			return
		case <-j.stopCh:
			log.Println("janitor: stopping (stop signal)")
			return
		}
	}
}

// Stop signals the janitor to stop.
func (j *Janitor) Stop() {
	close(j.stopCh)
}

// sweep prunes orphaned playlist entries; it writes only when something
// changed.
func (j *Janitor) sweep(ctx context.Context) {
	data, err := j.store.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if err != nil {
		log.Printf("janitor: load snapshot: %v", err)
		return
	}

	saved := make(map[string]struct{}, len(data.Videos))
	for _, v := range data.Videos {
		saved[v.URL] = struct{}{}
	}

	pruned := 0
	playlists := data.Playlists
	for i := range playlists {
		kept := playlists[i].Videos[:0:0]
		for _, v := range playlists[i].Videos {
			if _, ok := saved[v.URL]; ok {
				kept = append(kept, v)
			} else {
				pruned++
			}
		}
		playlists[i].Videos = kept
	}

	if pruned == 0 {
		return
	}

	if err := j.store.Set(ctx, store.Update{Playlists: &playlists}); err != nil {
		log.Printf("janitor: write playlists: %v", err)
		return
	}
	log.Printf("janitor: sweep complete: pruned %d orphaned entries", pruned)
}
