package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

// SaveService owns the saveVideo write path: it is the single writer for
// first-time saves, enforcing url uniqueness over the global set.
type SaveService struct {
	store store.Store
}

// NewSaveService creates a SaveService over the gateway.
func NewSaveService(st store.Store) *SaveService {
	return &SaveService{store: st}
}

// SaveVideo appends the candidate to the global saved set unless a record
// with the same url already exists, in which case it reports
// SaveStatusExists and leaves the set untouched. The stored record's
// SavedAt is stamped here, not by the caller.
func (s *SaveService) SaveVideo(ctx context.Context, candidate model.VideoRecord) (model.SaveStatus, error) {
	if strings.TrimSpace(candidate.URL) == "" {
		return "", fmt.Errorf("saveVideo: url is required")
	}

	data, err := s.store.Get(ctx, store.KeyVideos)
	if err != nil {
		return "", fmt.Errorf("saveVideo: load videos: %w", err)
	}

	for _, v := range data.Videos {
		if v.URL == candidate.URL {
			return model.SaveStatusExists, nil
		}
	}

	candidate.SavedAt = time.Now().UTC()
	videos := append(data.Videos, candidate)
	if err := s.store.Set(ctx, store.Update{Videos: &videos}); err != nil {
		return "", fmt.Errorf("saveVideo: write videos: %w", err)
	}
	return model.SaveStatusOK, nil
}

// Snapshot reads both collections.
func (s *SaveService) Snapshot(ctx context.Context) (store.Data, error) {
	return s.store.Get(ctx, store.KeyVideos, store.KeyPlaylists)
}
