package model

import (
	"strings"
	"time"
)

// Playlist groups saved videos under a user-chosen name. Names are unique
// case-insensitively. Videos holds denormalized snapshots of VideoRecord
// taken at the time of addition; the view layer overlays live record fields
// on render.
type Playlist struct {
	ID        string        `json:"id"`
	Name      string        `json:"name"`
	CreatedAt time.Time     `json:"createdAt"`
	Videos    []VideoRecord `json:"videos"`
}

// HasVideo reports whether the playlist already contains an entry for url.
func (p *Playlist) HasVideo(url string) bool {
	for _, v := range p.Videos {
		if v.URL == url {
			return true
		}
	}
	return false
}

// NameEquals compares playlist names case-insensitively.
func NameEquals(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), strings.TrimSpace(b))
}
