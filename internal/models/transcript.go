package models

// FailureReason classifies why a transcript could not be produced.
type FailureReason string

const (
	FailureNoCaptions   FailureReason = "no_captions"
	FailureFetchError   FailureReason = "fetch_error"
	FailureAuthRequired FailureReason = "auth_required"
)

// Describe returns the human-readable form of the classification.
func (r FailureReason) Describe() string {
	switch r {
	case FailureNoCaptions:
		return "no captions available"
	case FailureFetchError:
		return "transcript fetch failed"
	case FailureAuthRequired:
		return "authentication required"
	default:
		return string(r)
	}
}

// TranscriptResult is the outcome of one transcript request. Every requested
// video ID produces exactly one, success or failure.
type TranscriptResult struct {
	VideoID string        `json:"video_id"`
	Success bool          `json:"success"`
	Text    string        `json:"text,omitempty"`
	Reason  FailureReason `json:"reason,omitempty"`
	Detail  string        `json:"detail,omitempty"`
}

func NewTranscript(videoID, text string) TranscriptResult {
	return TranscriptResult{VideoID: videoID, Success: true, Text: text}
}

func NewTranscriptFailure(videoID string, reason FailureReason, detail string) TranscriptResult {
	return TranscriptResult{VideoID: videoID, Reason: reason, Detail: detail}
}

// FailureNote is the annotation recorded in the assembled document for a
// failed transcript. Prefers the specific detail over the bare classification.
func (t TranscriptResult) FailureNote() string {
	if t.Detail != "" {
		return t.Detail
	}
	return t.Reason.Describe()
}
