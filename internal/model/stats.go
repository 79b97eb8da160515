package model

import "time"

// StatsResponse is the API response for global statistics.
type StatsResponse struct {
	TotalVideos     int        `json:"totalVideos"`
	TotalPlaylists  int        `json:"totalPlaylists"`
	PlaylistEntries int        `json:"playlistEntries"`
	NewestSave      *time.Time `json:"newestSave,omitempty"`
}

// ExportResponse is the API response for a full data dump.
type ExportResponse struct {
	Videos      []VideoRecord `json:"videos"`
	Playlists   []Playlist    `json:"playlists"`
	GeneratedAt time.Time     `json:"generatedAt"`
}
