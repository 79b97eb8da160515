package state

import (
	"context"
	"errors"
	"testing"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

func seedVideos(t *testing.T, st store.Store, urls ...string) {
	t.Helper()
	videos := make([]model.VideoRecord, len(urls))
	for i, u := range urls {
		videos[i] = model.VideoRecord{URL: u, Title: "title of " + u}
	}
	if err := st.Set(context.Background(), store.Update{Videos: &videos}); err != nil {
		t.Fatalf("seed videos: %v", err)
	}
}

func TestCreatePlaylist(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()

	p, err := app.CreatePlaylist(ctx, "  Watch Later  ")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if p.Name != "Watch Later" {
		t.Errorf("name = %q, want trimmed", p.Name)
	}
	if p.ID == "" {
		t.Error("playlist has no id")
	}
	if p.Videos == nil || len(p.Videos) != 0 {
		t.Error("new playlist should have an empty, non-nil video list")
	}

	data, _ := st.Get(ctx, store.KeyPlaylists)
	if len(data.Playlists) != 1 {
		t.Fatalf("stored %d playlists, want 1", len(data.Playlists))
	}
}

func TestCreatePlaylist_EmptyName(t *testing.T) {
	app := NewApp(store.NewMemory())

	for _, name := range []string{"", "   ", "\t\n"} {
		if _, err := app.CreatePlaylist(context.Background(), name); !errors.Is(err, ErrEmptyName) {
			t.Errorf("CreatePlaylist(%q) err = %v, want ErrEmptyName", name, err)
		}
	}
}

func TestCreatePlaylist_DuplicateNameCaseInsensitive(t *testing.T) {
	app := NewApp(store.NewMemory())
	ctx := context.Background()

	if _, err := app.CreatePlaylist(ctx, "Music"); err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := app.CreatePlaylist(ctx, "music"); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName", err)
	}
	if _, err := app.CreatePlaylist(ctx, "  MUSIC "); !errors.Is(err, ErrDuplicateName) {
		t.Errorf("err = %v, want ErrDuplicateName for padded variant", err)
	}
}

func TestAddVideoToPlaylist(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()
	seedVideos(t, st, "https://example.com/watch?v=1")

	p, err := app.CreatePlaylist(ctx, "Clips")
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := app.AddVideoToPlaylist(ctx,
		model.VideoRecord{URL: "https://example.com/watch?v=1", Title: "stale title"},
		p.ID, "")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if len(got.Videos) != 1 {
		t.Fatalf("playlist has %d entries, want 1", len(got.Videos))
	}
	// The authoritative saved record wins over the caller's copy.
	if got.Videos[0].Title != "title of https://example.com/watch?v=1" {
		t.Errorf("entry title = %q, want the stored record's title", got.Videos[0].Title)
	}
}

func TestAddVideoToPlaylist_MissingPlaylist(t *testing.T) {
	app := NewApp(store.NewMemory())

	_, err := app.AddVideoToPlaylist(context.Background(),
		model.VideoRecord{URL: "https://example.com/v"}, "no-such-id", "")
	if !errors.Is(err, ErrMissingPlaylist) {
		t.Errorf("err = %v, want ErrMissingPlaylist", err)
	}
}

func TestAddVideoToPlaylist_Duplicate(t *testing.T) {
	app := NewApp(store.NewMemory())
	ctx := context.Background()

	p, _ := app.CreatePlaylist(ctx, "Clips")
	video := model.VideoRecord{URL: "https://example.com/v"}

	if _, err := app.AddVideoToPlaylist(ctx, video, p.ID, ""); err != nil {
		t.Fatalf("first add: %v", err)
	}
	if _, err := app.AddVideoToPlaylist(ctx, video, p.ID, ""); !errors.Is(err, ErrDuplicateVideo) {
		t.Errorf("err = %v, want ErrDuplicateVideo", err)
	}
}

func TestAddVideoToPlaylist_NewCreates(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()

	p, err := app.AddVideoToPlaylist(ctx,
		model.VideoRecord{URL: "https://example.com/v"}, NewPlaylist, "Fresh")
	if err != nil {
		t.Fatalf("add: %v", err)
	}
	if p.Name != "Fresh" || len(p.Videos) != 1 {
		t.Errorf("got %+v", p)
	}
}

func TestAddVideoToPlaylist_NewReusesExistingName(t *testing.T) {
	app := NewApp(store.NewMemory())
	ctx := context.Background()

	first, _ := app.AddVideoToPlaylist(ctx,
		model.VideoRecord{URL: "https://example.com/a"}, NewPlaylist, "Mix")
	second, err := app.AddVideoToPlaylist(ctx,
		model.VideoRecord{URL: "https://example.com/b"}, NewPlaylist, "mix")
	if err != nil {
		t.Fatalf("second add: %v", err)
	}
	if second.ID != first.ID {
		t.Error("case-insensitive name match should reuse the playlist")
	}
	if len(second.Videos) != 2 {
		t.Errorf("playlist has %d entries, want 2", len(second.Videos))
	}
}

func TestAddVideoToPlaylist_NewEmptyName(t *testing.T) {
	app := NewApp(store.NewMemory())

	_, err := app.AddVideoToPlaylist(context.Background(),
		model.VideoRecord{URL: "https://example.com/v"}, NewPlaylist, "   ")
	if !errors.Is(err, ErrEmptyName) {
		t.Errorf("err = %v, want ErrEmptyName", err)
	}
}

func TestRemoveVideo_CascadesIntoPlaylists(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()
	seedVideos(t, st, "https://example.com/a", "https://example.com/b")

	p1, _ := app.CreatePlaylist(ctx, "One")
	p2, _ := app.CreatePlaylist(ctx, "Two")
	for _, id := range []string{p1.ID, p2.ID} {
		if _, err := app.AddVideoToPlaylist(ctx, model.VideoRecord{URL: "https://example.com/a"}, id, ""); err != nil {
			t.Fatalf("add to %s: %v", id, err)
		}
	}
	if _, err := app.AddVideoToPlaylist(ctx, model.VideoRecord{URL: "https://example.com/b"}, p1.ID, ""); err != nil {
		t.Fatalf("add b: %v", err)
	}

	if err := app.RemoveVideo(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	data, _ := st.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if len(data.Videos) != 1 || data.Videos[0].URL != "https://example.com/b" {
		t.Errorf("global set = %+v", data.Videos)
	}
	for _, p := range data.Playlists {
		if p.HasVideo("https://example.com/a") {
			t.Errorf("playlist %q still holds the removed url", p.Name)
		}
	}
	// The unrelated entry in One survives.
	for _, p := range data.Playlists {
		if p.ID == p1.ID && !p.HasVideo("https://example.com/b") {
			t.Error("cascade removed an unrelated entry")
		}
	}
}

func TestRemoveVideoFromPlaylist_LeavesGlobalSet(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()
	seedVideos(t, st, "https://example.com/a")

	p, _ := app.CreatePlaylist(ctx, "One")
	app.AddVideoToPlaylist(ctx, model.VideoRecord{URL: "https://example.com/a"}, p.ID, "")

	if err := app.RemoveVideoFromPlaylist(ctx, p.ID, "https://example.com/a"); err != nil {
		t.Fatalf("remove: %v", err)
	}

	data, _ := st.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if len(data.Videos) != 1 {
		t.Error("global set must be untouched")
	}
	if data.Playlists[0].HasVideo("https://example.com/a") {
		t.Error("playlist entry was not removed")
	}
}

func TestRemoveVideoFromPlaylist_MissingPlaylist(t *testing.T) {
	app := NewApp(store.NewMemory())
	if err := app.RemoveVideoFromPlaylist(context.Background(), "nope", "url"); !errors.Is(err, ErrMissingPlaylist) {
		t.Errorf("err = %v, want ErrMissingPlaylist", err)
	}
}

func TestDeletePlaylist(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()
	seedVideos(t, st, "https://example.com/a")

	p, _ := app.CreatePlaylist(ctx, "Doomed")
	app.AddVideoToPlaylist(ctx, model.VideoRecord{URL: "https://example.com/a"}, p.ID, "")

	if err := app.DeletePlaylist(ctx, p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}

	data, _ := st.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if len(data.Playlists) != 0 {
		t.Error("playlist survived deletion")
	}
	if len(data.Videos) != 1 {
		t.Error("deleting a playlist must not touch the global set")
	}

	if err := app.DeletePlaylist(ctx, p.ID); !errors.Is(err, ErrMissingPlaylist) {
		t.Errorf("second delete err = %v, want ErrMissingPlaylist", err)
	}
}

func TestRefresh_MaintainViewFallsBackWhenPlaylistGone(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()

	p, _ := app.CreatePlaylist(ctx, "Open Me")
	if err := app.Refresh(ctx, false); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if err := app.OpenPlaylist(p.ID); err != nil {
		t.Fatalf("open: %v", err)
	}

	// Another writer deletes the open playlist out from under the view.
	empty := []model.Playlist{}
	st.Set(ctx, store.Update{Playlists: &empty})

	if err := app.Refresh(ctx, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}
	vs := app.State()
	if vs.ActiveView != ViewPlaylists {
		t.Errorf("active view = %v, want the playlist list", vs.ActiveView)
	}
	if vs.ActivePlaylistID != "" {
		t.Errorf("active playlist id = %q, want cleared", vs.ActivePlaylistID)
	}
}

func TestRefresh_WithoutMaintainViewResetsNavigation(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()

	p, _ := app.CreatePlaylist(ctx, "Open Me")
	app.Refresh(ctx, false)
	app.OpenPlaylist(p.ID)

	app.Refresh(ctx, false)
	vs := app.State()
	if vs.ActiveView != ViewVideos || vs.ActivePlaylistID != "" {
		t.Errorf("navigation not reset: %+v", vs)
	}
}

func TestWatch_RerendersOnExternalWrite(t *testing.T) {
	st := store.NewMemory()

	renders := 0
	app := NewApp(st, WithRender(func(ViewState) { renders++ }))
	ctx := context.Background()

	cancel, err := app.Watch(ctx)
	if err != nil {
		t.Fatalf("watch: %v", err)
	}
	defer cancel()

	// The memory backend notifies synchronously, so the write below has
	// re-rendered by the time Set returns.
	videos := []model.VideoRecord{{URL: "https://example.com/a"}}
	st.Set(ctx, store.Update{Videos: &videos})

	if renders != 1 {
		t.Fatalf("renders = %d, want 1", renders)
	}
	if len(app.State().Videos) != 1 {
		t.Error("view state was not rebuilt from the write")
	}

	cancel()
	st.Set(ctx, store.Update{Videos: &videos})
	if renders != 1 {
		t.Errorf("cancelled watch still re-rendered (%d)", renders)
	}
}

func TestPlaylistVideos_OverlaysLiveFields(t *testing.T) {
	vs := ViewState{
		Videos: []model.VideoRecord{
			{URL: "a", Title: "fresh title", Thumbnail: "fresh.png"},
		},
	}
	p := model.Playlist{Videos: []model.VideoRecord{
		{URL: "a", Title: "stale title", Thumbnail: "stale.png"},
		{URL: "gone", Title: "snapshot only"},
	}}

	got := vs.PlaylistVideos(p)
	if got[0].Title != "fresh title" || got[0].Thumbnail != "fresh.png" {
		t.Errorf("live fields not overlaid: %+v", got[0])
	}
	if got[1].Title != "snapshot only" {
		t.Errorf("entry without a live record must keep its snapshot: %+v", got[1])
	}
}

func TestStorageError_Wraps(t *testing.T) {
	cause := errors.New("boom")
	err := storageErr("write playlists", cause)

	var se *StorageError
	if !errors.As(err, &se) {
		t.Fatal("not a StorageError")
	}
	if se.Op != "write playlists" {
		t.Errorf("op = %q", se.Op)
	}
	if !errors.Is(err, cause) {
		t.Error("cause is not unwrapped")
	}
}

// The full lifecycle: save two videos, organize them, watch the cascade
// and the view fallback behave together over a live store.
func TestApp_EndToEnd(t *testing.T) {
	st := store.NewMemory()
	app := NewApp(st)
	ctx := context.Background()
	seedVideos(t, st, "https://example.com/a", "https://example.com/b")

	mix, err := app.AddVideoToPlaylist(ctx, model.VideoRecord{URL: "https://example.com/a"}, NewPlaylist, "Mix")
	if err != nil {
		t.Fatalf("add a: %v", err)
	}
	if _, err := app.AddVideoToPlaylist(ctx, model.VideoRecord{URL: "https://example.com/b"}, mix.ID, ""); err != nil {
		t.Fatalf("add b: %v", err)
	}

	app.Refresh(ctx, false)
	if err := app.OpenPlaylist(mix.ID); err != nil {
		t.Fatalf("open: %v", err)
	}

	if err := app.RemoveVideo(ctx, "https://example.com/a"); err != nil {
		t.Fatalf("remove: %v", err)
	}
	if err := app.Refresh(ctx, true); err != nil {
		t.Fatalf("refresh: %v", err)
	}

	vs := app.State()
	open, ok := vs.ActivePlaylist()
	if !ok {
		t.Fatal("open playlist should survive, only its entry was pruned")
	}
	if open.HasVideo("https://example.com/a") {
		t.Error("cascade missed the open playlist")
	}
	if !open.HasVideo("https://example.com/b") {
		t.Error("unrelated entry was pruned")
	}
	if len(vs.Videos) != 1 {
		t.Errorf("global set has %d entries, want 1", len(vs.Videos))
	}
}
