// Package state keeps a rendered UI consistent with the persistence
// gateway. It rebuilds the view state from a fresh snapshot on every
// refresh, applies playlist mutations with read-modify-write on the full
// collections, and re-renders whenever the gateway announces a change
// from any writer, this process included.
package state

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

// View names the UI's top-level screens.
type View int

const (
	// ViewVideos is the default view: the global saved set.
	ViewVideos View = iota
	// ViewPlaylists is the playlist list, or a single open playlist when
	// ActivePlaylistID is set.
	ViewPlaylists
)

// NewPlaylist is the sentinel playlist id that makes AddVideoToPlaylist
// resolve or create a playlist by name instead of by id.
const NewPlaylist = "new"

// ViewState is the derived, non-authoritative UI state. It is rebuilt
// wholesale from the gateway on every refresh.
type ViewState struct {
	Videos           []model.VideoRecord
	Playlists        []model.Playlist
	ActiveView       View
	ActivePlaylistID string
}

// ActivePlaylist resolves the currently open playlist, if any.
func (v ViewState) ActivePlaylist() (model.Playlist, bool) {
	if v.ActivePlaylistID == "" {
		return model.Playlist{}, false
	}
	for _, p := range v.Playlists {
		if p.ID == v.ActivePlaylistID {
			return p, true
		}
	}
	return model.Playlist{}, false
}

// PlaylistVideos returns the playlist's entries with live record fields
// overlaid: a snapshot whose url still exists globally renders with the
// authoritative title and thumbnail.
func (v ViewState) PlaylistVideos(p model.Playlist) []model.VideoRecord {
	live := make(map[string]model.VideoRecord, len(v.Videos))
	for _, rec := range v.Videos {
		live[rec.URL] = rec
	}
	out := make([]model.VideoRecord, len(p.Videos))
	for i, entry := range p.Videos {
		if rec, ok := live[entry.URL]; ok {
			entry.Title = rec.Title
			entry.Thumbnail = rec.Thumbnail
		}
		out[i] = entry
	}
	return out
}

// RenderFunc receives the rebuilt view state after every refresh.
type RenderFunc func(ViewState)

// App owns the UI process's view state. The gateway stays authoritative;
// App never trusts its cached state when mutating.
type App struct {
	store  store.Store
	log    zerolog.Logger
	render RenderFunc

	mu    sync.Mutex
	state ViewState
}

// Option configures an App.
type Option func(*App)

// WithRender sets the render callback.
func WithRender(render RenderFunc) Option {
	return func(a *App) { a.render = render }
}

// WithLogger sets the app logger.
func WithLogger(log zerolog.Logger) Option {
	return func(a *App) { a.log = log }
}

// NewApp builds an App over the gateway.
func NewApp(st store.Store, opts ...Option) *App {
	a := &App{store: st, log: zerolog.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// State returns a copy of the current view state.
func (a *App) State() ViewState {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// SetActiveView switches the top-level view, closing any open playlist.
func (a *App) SetActiveView(v View) {
	a.mu.Lock()
	a.state.ActiveView = v
	a.state.ActivePlaylistID = ""
	a.mu.Unlock()
}

// OpenPlaylist navigates into a playlist from the current state.
func (a *App) OpenPlaylist(id string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	for _, p := range a.state.Playlists {
		if p.ID == id {
			a.state.ActiveView = ViewPlaylists
			a.state.ActivePlaylistID = id
			return nil
		}
	}
	return ErrMissingPlaylist
}

// Refresh loads a full snapshot and rebuilds the view state. With
// maintainView false, navigation resets to the default view. With
// maintainView true the current view is preserved, unless the open
// playlist no longer exists, in which case navigation falls back to the
// playlist list.
func (a *App) Refresh(ctx context.Context, maintainView bool) error {
	snap, err := a.store.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if err != nil {
		return storageErr("load snapshot", err)
	}

	a.mu.Lock()
	next := ViewState{
		Videos:    snap.Videos,
		Playlists: snap.Playlists,
	}
	if maintainView {
		next.ActiveView = a.state.ActiveView
		next.ActivePlaylistID = a.state.ActivePlaylistID
		if _, ok := next.ActivePlaylist(); next.ActivePlaylistID != "" && !ok {
			next.ActiveView = ViewPlaylists
			next.ActivePlaylistID = ""
		}
	}
	a.state = next
	render := a.render
	a.mu.Unlock()

	if render != nil {
		render(next)
	}
	return nil
}

// Watch subscribes to gateway change notifications; each announcement
// triggers a view-preserving refresh, so background saves from the
// annotation daemon and writes from other UI instances show up live.
// The returned cancel func stops the subscription.
func (a *App) Watch(ctx context.Context) (func(), error) {
	cancel, err := a.store.Subscribe(func(keys []string) {
		relevant := false
		for _, k := range keys {
			if k == store.KeyVideos || k == store.KeyPlaylists {
				relevant = true
				break
			}
		}
		if !relevant {
			return
		}
		if err := a.Refresh(ctx, true); err != nil {
			a.log.Error().Err(err).Msg("refresh after change notification failed")
		}
	})
	if err != nil {
		return nil, storageErr("subscribe", err)
	}
	return cancel, nil
}

// CreatePlaylist validates the name against the latest snapshot and
// appends a fresh, empty playlist.
func (a *App) CreatePlaylist(ctx context.Context, name string) (model.Playlist, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return model.Playlist{}, ErrEmptyName
	}

	snap, err := a.store.Get(ctx, store.KeyPlaylists)
	if err != nil {
		return model.Playlist{}, storageErr("load playlists", err)
	}
	for _, p := range snap.Playlists {
		if model.NameEquals(p.Name, name) {
			return model.Playlist{}, ErrDuplicateName
		}
	}

	playlist := model.Playlist{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedAt: time.Now().UTC(),
		Videos:    []model.VideoRecord{},
	}
	playlists := append(snap.Playlists, playlist)
	if err := a.store.Set(ctx, store.Update{Playlists: &playlists}); err != nil {
		return model.Playlist{}, storageErr("write playlists", err)
	}
	return playlist, nil
}

// AddVideoToPlaylist appends a snapshot of the video to the target
// playlist. playlistID NewPlaylist resolves or creates a playlist named
// newName, reusing a case-insensitive match instead of duplicating it.
// The appended snapshot is the authoritative saved record when one
// exists, else the passed-in candidate.
func (a *App) AddVideoToPlaylist(ctx context.Context, video model.VideoRecord, playlistID, newName string) (model.Playlist, error) {
	snap, err := a.store.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if err != nil {
		return model.Playlist{}, storageErr("load snapshot", err)
	}

	playlists := snap.Playlists
	idx := -1
	switch playlistID {
	case NewPlaylist:
		newName = strings.TrimSpace(newName)
		if newName == "" {
			return model.Playlist{}, ErrEmptyName
		}
		for i, p := range playlists {
			if model.NameEquals(p.Name, newName) {
				idx = i
				break
			}
		}
		if idx < 0 {
			playlists = append(playlists, model.Playlist{
				ID:        uuid.NewString(),
				Name:      newName,
				CreatedAt: time.Now().UTC(),
				Videos:    []model.VideoRecord{},
			})
			idx = len(playlists) - 1
		}
	default:
		for i, p := range playlists {
			if p.ID == playlistID {
				idx = i
				break
			}
		}
		if idx < 0 {
			return model.Playlist{}, ErrMissingPlaylist
		}
	}

	if playlists[idx].HasVideo(video.URL) {
		return model.Playlist{}, ErrDuplicateVideo
	}

	entry := video
	for _, rec := range snap.Videos {
		if rec.URL == video.URL {
			entry = rec
			break
		}
	}
	playlists[idx].Videos = append(playlists[idx].Videos, entry)

	if err := a.store.Set(ctx, store.Update{Playlists: &playlists}); err != nil {
		return model.Playlist{}, storageErr("write playlists", err)
	}
	return playlists[idx], nil
}

// RemoveVideo deletes the record by url from the global saved set and
// cascades the removal into every playlist holding the same url.
func (a *App) RemoveVideo(ctx context.Context, url string) error {
	snap, err := a.store.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if err != nil {
		return storageErr("load snapshot", err)
	}

	videos := snap.Videos[:0:0]
	for _, v := range snap.Videos {
		if v.URL != url {
			videos = append(videos, v)
		}
	}

	playlists := snap.Playlists
	for i := range playlists {
		if !playlists[i].HasVideo(url) {
			continue
		}
		kept := playlists[i].Videos[:0:0]
		for _, v := range playlists[i].Videos {
			if v.URL != url {
				kept = append(kept, v)
			}
		}
		playlists[i].Videos = kept
	}

	if err := a.store.Set(ctx, store.Update{Videos: &videos, Playlists: &playlists}); err != nil {
		return storageErr("write snapshot", err)
	}
	return nil
}

// RemoveVideoFromPlaylist removes one playlist's entry for url; the
// global saved set is untouched.
func (a *App) RemoveVideoFromPlaylist(ctx context.Context, playlistID, url string) error {
	snap, err := a.store.Get(ctx, store.KeyPlaylists)
	if err != nil {
		return storageErr("load playlists", err)
	}

	playlists := snap.Playlists
	idx := -1
	for i, p := range playlists {
		if p.ID == playlistID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return ErrMissingPlaylist
	}

	kept := playlists[idx].Videos[:0:0]
	for _, v := range playlists[idx].Videos {
		if v.URL != url {
			kept = append(kept, v)
		}
	}
	playlists[idx].Videos = kept

	if err := a.store.Set(ctx, store.Update{Playlists: &playlists}); err != nil {
		return storageErr("write playlists", err)
	}
	return nil
}

// DeletePlaylist removes the playlist entirely; the global saved set is
// untouched.
func (a *App) DeletePlaylist(ctx context.Context, playlistID string) error {
	snap, err := a.store.Get(ctx, store.KeyPlaylists)
	if err != nil {
		return storageErr("load playlists", err)
	}

	playlists := snap.Playlists[:0:0]
	found := false
	for _, p := range snap.Playlists {
		if p.ID == playlistID {
			found = true
			continue
		}
		playlists = append(playlists, p)
	}
	if !found {
		return ErrMissingPlaylist
	}

	if err := a.store.Set(ctx, store.Update{Playlists: &playlists}); err != nil {
		return storageErr("write playlists", err)
	}
	return nil
}
