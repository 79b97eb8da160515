// Package store is the persistence gateway: a change-notifying key/value
// store holding the two top-level collections, shared by the annotation
// daemon and every UI instance. Writes replace a collection wholesale
// (last writer wins; see the janitor worker for the cascade backstop) and
// every committed write is announced to all subscribers, including the
// writer itself.
package store

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/asadsehto/savetube/internal/model"
)

// Top-level collection keys.
const (
	KeyVideos    = "videos"
	KeyPlaylists = "playlists"
)

// Data is a snapshot of the requested collections. Keys absent from the
// store read as empty collections.
type Data struct {
	Videos    []model.VideoRecord
	Playlists []model.Playlist
}

// Update is a full-replace write. A nil field leaves that collection
// untouched; a non-nil field replaces it entirely.
type Update struct {
	Videos    *[]model.VideoRecord
	Playlists *[]model.Playlist
}

// Keys returns the collection keys the update touches.
func (u Update) Keys() []string {
	var keys []string
	if u.Videos != nil {
		keys = append(keys, KeyVideos)
	}
	if u.Playlists != nil {
		keys = append(keys, KeyPlaylists)
	}
	return keys
}

// ChangeHandler receives the set of changed top-level keys after a write
// commits.
type ChangeHandler func(keys []string)

// Store is the gateway contract.
type Store interface {
	// Get reads a snapshot of the named collections.
	Get(ctx context.Context, keys ...string) (Data, error)
	// Set replaces the collections named by the update and notifies
	// subscribers once the write has committed.
	Set(ctx context.Context, u Update) error
	// Subscribe registers a change handler and returns a cancel func.
	Subscribe(h ChangeHandler) (func(), error)
	// Close releases backend resources.
	Close() error
}

// Open selects a backend from the URL scheme: "memory" for the in-process
// store, postgres:// (or postgresql://) for Postgres, redis:// (or
// rediss://) for Redis.
func Open(ctx context.Context, rawURL string, logger zerolog.Logger) (Store, error) {
	switch {
	case rawURL == "" || rawURL == "memory":
		return NewMemory(), nil
	case strings.HasPrefix(rawURL, "postgres://"), strings.HasPrefix(rawURL, "postgresql://"):
		return OpenPostgres(ctx, rawURL, logger)
	case strings.HasPrefix(rawURL, "redis://"), strings.HasPrefix(rawURL, "rediss://"):
		return OpenRedis(ctx, rawURL, logger)
	default:
		return nil, fmt.Errorf("store: unsupported store url %q", rawURL)
	}
}

func cloneVideos(in []model.VideoRecord) []model.VideoRecord {
	if in == nil {
		return nil
	}
	out := make([]model.VideoRecord, len(in))
	copy(out, in)
	return out
}

func clonePlaylists(in []model.Playlist) []model.Playlist {
	if in == nil {
		return nil
	}
	out := make([]model.Playlist, len(in))
	for i, p := range in {
		p.Videos = cloneVideos(p.Videos)
		out[i] = p
	}
	return out
}
