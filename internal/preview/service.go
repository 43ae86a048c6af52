// Package preview drives a project's design-preview lifecycle: submit a
// generation job to the provider, then map polled job states onto the
// persisted project row. none -> queued -> processing -> done, with error
// reachable from queued/processing; done and error restart only through a
// fresh Start.
package preview

import (
	"errors"

	"github.com/google/uuid"

	"diygenie-backend/internal/decor8"
	"diygenie-backend/internal/models"
)

// ErrImageRequired means neither the project row nor the request carried
// an input image to generate from.
var ErrImageRequired = errors.New("preview: image required")

// ProjectStore is the slice of the database the preview lifecycle touches.
type ProjectStore interface {
	GetProject(projectID, userID uuid.UUID) (*models.Project, error)
	MarkPreviewQueued(projectID uuid.UUID, jobID string) error
	SetPreviewState(projectID uuid.UUID, status string) error
	CompletePreview(projectID uuid.UUID, previewURL string) error
	FailPreview(projectID uuid.UUID) error
}

type Service struct {
	store     ProjectStore
	generator decor8.Generator
}

func NewService(store ProjectStore, generator decor8.Generator) *Service {
	return &Service{
		store:     store,
		generator: generator,
	}
}

type StartOptions struct {
	// ImageURL overrides the stored input image for this run.
	ImageURL    string
	RoomType    string
	DesignStyle string
	ROI         string
}

type StartResult struct {
	Status string
	JobID  string
	URL    string
}

type StatusResult struct {
	Status string
	URL    string
}

// Start validates preconditions in order and submits a generation job.
// A completed preview short-circuits: the cached result comes back and the
// provider is not contacted, so repeated starts are idempotent. A failed
// submit leaves the row untouched for a clean caller retry.
func (s *Service) Start(userID, projectID uuid.UUID, opts StartOptions) (StartResult, error) {
	project, err := s.store.GetProject(projectID, userID)
	if err != nil {
		return StartResult{}, err
	}

	if project.PreviewStatus == models.PreviewStatusDone && project.PreviewURL.Valid {
		return StartResult{
			Status: models.PreviewStatusDone,
			JobID:  project.PreviewJobID.String,
			URL:    project.PreviewURL.String,
		}, nil
	}

	imageURL := opts.ImageURL
	if imageURL == "" && project.InputImageURL.Valid {
		imageURL = project.InputImageURL.String
	}
	if imageURL == "" {
		return StartResult{}, ErrImageRequired
	}

	roomType := opts.RoomType
	if roomType == "" && project.RoomType.Valid {
		roomType = project.RoomType.String
	}
	designStyle := opts.DesignStyle
	if designStyle == "" && project.DesignStyle.Valid {
		designStyle = project.DesignStyle.String
	}

	jobID, err := s.generator.Submit(decor8.SubmitRequest{
		ImageURL:    imageURL,
		RoomType:    roomType,
		DesignStyle: designStyle,
		ROI:         opts.ROI,
	})
	if err != nil {
		return StartResult{}, err
	}

	if err := s.store.MarkPreviewQueued(projectID, jobID); err != nil {
		return StartResult{}, err
	}

	return StartResult{Status: models.PreviewStatusQueued, JobID: jobID}, nil
}

// Status answers one client poll. done is a cache: it returns without a
// provider call, which is what keeps a finished preview from regressing no
// matter how stale the provider's answer to a concurrent poll is. The
// mapped state is persisted on every non-terminal poll so concurrent
// pollers converge on one view. A poll failure mutates nothing.
func (s *Service) Status(userID, projectID uuid.UUID) (StatusResult, error) {
	project, err := s.store.GetProject(projectID, userID)
	if err != nil {
		return StatusResult{}, err
	}

	if project.PreviewStatus == models.PreviewStatusDone && project.PreviewURL.Valid {
		return StatusResult{Status: models.PreviewStatusDone, URL: project.PreviewURL.String}, nil
	}

	if !project.PreviewJobID.Valid {
		// Nothing submitted yet (or a restart cleared it): report as-is.
		return StatusResult{Status: project.PreviewStatus}, nil
	}

	job, err := s.generator.JobStatus(project.PreviewJobID.String)
	if err != nil {
		return StatusResult{}, err
	}

	switch job.State {
	case decor8.StateDone:
		if err := s.store.CompletePreview(projectID, job.ResultURL); err != nil {
			return StatusResult{}, err
		}
		return StatusResult{Status: models.PreviewStatusDone, URL: job.ResultURL}, nil

	case decor8.StateFailed:
		if err := s.store.FailPreview(projectID); err != nil {
			return StatusResult{}, err
		}
		return StatusResult{Status: models.PreviewStatusError}, nil

	case decor8.StateRunning:
		if err := s.store.SetPreviewState(projectID, models.PreviewStatusProcessing); err != nil {
			return StatusResult{}, err
		}
		return StatusResult{Status: models.PreviewStatusProcessing}, nil

	default:
		if err := s.store.SetPreviewState(projectID, models.PreviewStatusQueued); err != nil {
			return StatusResult{}, err
		}
		return StatusResult{Status: models.PreviewStatusQueued}, nil
	}
}
