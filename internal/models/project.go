package models

import (
	"database/sql"
	"time"

	"github.com/google/uuid"
)

// Preview status values for a project. A project starts at none and moves
// forward through queued and processing; done and error are terminal for
// the poll path. A fresh start from none or error begins a new job.
const (
	PreviewStatusNone       = "none"
	PreviewStatusQueued     = "queued"
	PreviewStatusProcessing = "processing"
	PreviewStatusDone       = "done"
	PreviewStatusError      = "error"
)

type Project struct {
	ID            uuid.UUID
	UserID        uuid.UUID
	Name          string
	RoomType      sql.NullString
	DesignStyle   sql.NullString
	InputImageURL sql.NullString
	PreviewStatus string
	PreviewJobID  sql.NullString
	PreviewURL    sql.NullString
	PlanText      sql.NullString
	CreatedAt     time.Time
	UpdatedAt     time.Time
}
