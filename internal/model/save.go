package model

// ActionSaveVideo is the only action the save API accepts.
const ActionSaveVideo = "saveVideo"

// SaveStatus is the outcome of a save request.
type SaveStatus string

const (
	// SaveStatusOK means the video was stored for the first time.
	SaveStatusOK SaveStatus = "ok"
	// SaveStatusExists means a record with the same URL was already
	// present; the request is a no-op, not an error.
	SaveStatusExists SaveStatus = "exists"
)

// SaveRequest is the API request body for saving a video.
type SaveRequest struct {
	Action string      `json:"action"`
	Data   VideoRecord `json:"data"`
}

// SaveResponse is the API response after a save request.
type SaveResponse struct {
	Status SaveStatus `json:"status"`
}
