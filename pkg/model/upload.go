package model

// UploadResult is the decoded response envelope of the upload endpoint.
// Exactly one of Error or the success fields is meaningful.
type UploadResult struct {
	AudioURL             string `json:"audio_url,omitempty"`
	FormattedTranslation string `json:"formatted_translation,omitempty"`
	Error                string `json:"error,omitempty"`
}

// Failed reports whether the server sent an error message. A message made
// only of whitespace still counts.
func (r UploadResult) Failed() bool {
	return r.Error != ""
}

type UIState int

const (
	UIStateIdle UIState = iota
	UIStateUploading
	UIStateSuccess
	UIStateError
)

func (s UIState) String() string {
	switch s {
	case UIStateIdle:
		return "idle"
	case UIStateUploading:
		return "uploading"
	case UIStateSuccess:
		return "success"
	case UIStateError:
		return "error"
	default:
		return "unknown"
	}
}

// State is everything a render needs. Only the fields relevant to Kind are read.
type State struct {
	Kind       UIState
	Message    string
	AudioURL   string
	Transcript string
}
