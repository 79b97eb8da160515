package service

import (
	"context"

	"github.com/asadsehto/savetube/internal/model"
	"github.com/asadsehto/savetube/internal/store"
)

// StatsService computes global statistics from a snapshot.
type StatsService struct {
	store store.Store
}

// NewStatsService creates a StatsService over the gateway.
func NewStatsService(st store.Store) *StatsService {
	return &StatsService{store: st}
}

// Stats builds the global statistics response.
func (s *StatsService) Stats(ctx context.Context) (model.StatsResponse, error) {
	data, err := s.store.Get(ctx, store.KeyVideos, store.KeyPlaylists)
	if err != nil {
		return model.StatsResponse{}, err
	}

	resp := model.StatsResponse{
		TotalVideos:    len(data.Videos),
		TotalPlaylists: len(data.Playlists),
	}
	for _, p := range data.Playlists {
		resp.PlaylistEntries += len(p.Videos)
	}
	for _, v := range data.Videos {
		if resp.NewestSave == nil || v.SavedAt.After(*resp.NewestSave) {
			t := v.SavedAt
			resp.NewestSave = &t
		}
	}
	return resp, nil
}
