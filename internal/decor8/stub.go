package decor8

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Stub synthesizes instant results for environments without Decor8
// credentials. Submit always succeeds; JobStatus always reports done with
// a placeholder URL derived from the job id, so repeated polls and
// restarted processes agree on the result.
type Stub struct{}

func NewStub() *Stub {
	return &Stub{}
}

func (s *Stub) Submit(req SubmitRequest) (string, error) {
	if req.ImageURL == "" {
		return "", fmt.Errorf("%w: image_url is required", ErrInvalidResponse)
	}
	return "stub-" + uuid.NewString(), nil
}

func (s *Stub) JobStatus(jobID string) (Job, error) {
	return Job{
		State:     StateDone,
		ResultURL: StubResultURL(jobID),
	}, nil
}

// StubResultURL derives the placeholder preview URL for a stub job id.
func StubResultURL(jobID string) string {
	return "https://static.decor8.ai/stub/" + strings.TrimPrefix(jobID, "stub-") + "/preview.png"
}
