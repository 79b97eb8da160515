package service

import (
	"context"
	"testing"
	"time"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

func seed(t *testing.T, st store.Store, videos []model.VideoRecord, playlists []model.Playlist) {
	t.Helper()
	if err := st.Set(context.Background(), store.Update{Videos: &videos, Playlists: &playlists}); err != nil {
		t.Fatalf("seed: %v", err)
	}
}

func TestJanitor_SweepPrunesOrphans(t *testing.T) {
	st := store.NewMemory()
	seed(t, st,
		[]model.VideoRecord{{URL: "https://example.com/kept"}},
		[]model.Playlist{
			{ID: "p1", Name: "One", Videos: []model.VideoRecord{
				{URL: "https://example.com/kept"},
				{URL: "https://example.com/orphan"},
			}},
			{ID: "p2", Name: "Two", Videos: []model.VideoRecord{
				{URL: "https://example.com/orphan"},
			}},
		})

	j := NewJanitor(st, time.Hour)
	j.sweep(context.Background())

	data, _ := st.Get(context.Background(), store.KeyPlaylists)
	for _, p := range data.Playlists {
		if p.HasVideo("https://example.com/orphan") {
			t.Errorf("playlist %q still holds the orphan", p.Name)
		}
	}
	if !data.Playlists[0].HasVideo("https://example.com/kept") {
		t.Error("sweep pruned a live entry")
	}
}

func TestJanitor_NoOrphansNoWrite(t *testing.T) {
	st := store.NewMemory()
	seed(t, st,
		[]model.VideoRecord{{URL: "https://example.com/kept"}},
		[]model.Playlist{
			{ID: "p1", Name: "One", Videos: []model.VideoRecord{
				{URL: "https://example.com/kept"},
			}},
		})

	writes := 0
	cancel, _ := st.Subscribe(func([]string) { writes++ })
	defer cancel()

	j := NewJanitor(st, time.Hour)
	j.sweep(context.Background())

	if writes != 0 {
		t.Errorf("clean sweep wrote %d times, want 0", writes)
	}
}

func TestStats(t *testing.T) {
	st := store.NewMemory()
	newest := time.Date(2026, 8, 20, 12, 0, 0, 0, time.UTC)
	seed(t, st,
		[]model.VideoRecord{
			{URL: "a", SavedAt: newest.Add(-time.Hour)},
			{URL: "b", SavedAt: newest},
		},
		[]model.Playlist{
			{ID: "p1", Videos: []model.VideoRecord{{URL: "a"}, {URL: "b"}}},
			{ID: "p2", Videos: []model.VideoRecord{{URL: "a"}}},
		})

	resp, err := NewStatsService(st).Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if resp.TotalVideos != 2 || resp.TotalPlaylists != 2 || resp.PlaylistEntries != 3 {
		t.Errorf("got %+v", resp)
	}
	if resp.NewestSave == nil || !resp.NewestSave.Equal(newest) {
		t.Errorf("newest save = %v, want %v", resp.NewestSave, newest)
	}
}

func TestStats_Empty(t *testing.T) {
	resp, err := NewStatsService(store.NewMemory()).Stats(context.Background())
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if resp.TotalVideos != 0 || resp.NewestSave != nil {
		t.Errorf("got %+v", resp)
	}
}
