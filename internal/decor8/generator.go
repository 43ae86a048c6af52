// Package decor8 talks to the Decor8 room-design generation API. Jobs are
// asynchronous on the provider side: Submit enqueues one, JobStatus is
// polled until a terminal state. A deterministic stub stands in when no
// API key is configured.
package decor8

import "errors"

// Job states as reported by the provider.
const (
	StateQueued  = "queued"
	StateRunning = "running"
	StateDone    = "done"
	StateFailed  = "failed"
)

var (
	// ErrProviderUnavailable covers transport failures and non-2xx replies.
	ErrProviderUnavailable = errors.New("decor8: provider unavailable")
	// ErrInvalidResponse means the provider answered 2xx but the body is
	// missing a required field (job id on submit, result URL on done).
	ErrInvalidResponse = errors.New("decor8: invalid provider response")
)

type SubmitRequest struct {
	ImageURL    string `json:"image_url"`
	RoomType    string `json:"room_type,omitempty"`
	DesignStyle string `json:"design_style,omitempty"`
	ROI         string `json:"roi,omitempty"`
}

type Job struct {
	State     string
	ResultURL string
}

// Generator is the submit/poll contract the preview service depends on.
type Generator interface {
	Submit(req SubmitRequest) (jobID string, err error)
	JobStatus(jobID string) (Job, error)
}
