package model

import "time"

// VideoRecord is a saved video bookmark. The URL is the unique key across
// the global saved set; records are never mutated after creation, only
// deleted.
type VideoRecord struct {
	URL       string    `json:"url"`
	Title     string    `json:"title"`
	Thumbnail string    `json:"thumbnail"`
	SavedAt   time.Time `json:"savedAt"`
}

// Candidate reports whether the record carries enough information to be
// saved. A record without a URL is dropped by the save path.
func (v VideoRecord) Candidate() bool {
	return v.URL != ""
}
