package supabase

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "github.com/lib/pq"

	"diygenie-backend/internal/models"
)

var (
	ErrProjectNotFound = errors.New("project not found")
	ErrProfileNotFound = errors.New("profile not found")
)

type DatabaseClient struct {
	db *sql.DB
}

func NewDatabaseClient(connectionString string) (*DatabaseClient, error) {
	db, err := sql.Open("postgres", connectionString)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return &DatabaseClient{db: db}, nil
}

const projectColumns = `id, user_id, name, room_type, design_style, input_image_url,
	preview_status, preview_job_id, preview_url, plan_text, created_at, updated_at`

func scanProject(row *sql.Row) (*models.Project, error) {
	var p models.Project
	err := row.Scan(
		&p.ID, &p.UserID, &p.Name, &p.RoomType, &p.DesignStyle, &p.InputImageURL,
		&p.PreviewStatus, &p.PreviewJobID, &p.PreviewURL, &p.PlanText, &p.CreatedAt, &p.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (d *DatabaseClient) CreateProject(userID uuid.UUID, name, roomType, designStyle string) (*models.Project, error) {
	row := d.db.QueryRow(`
		INSERT INTO projects (id, user_id, name, room_type, design_style, preview_status)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, ''), 'none')
		RETURNING `+projectColumns+`
	`, uuid.New(), userID, name, roomType, designStyle)

	project, err := scanProject(row)
	if err != nil {
		return nil, fmt.Errorf("failed to create project: %w", err)
	}
	return project, nil
}

// GetProject scopes by owner: a project that exists but belongs to someone
// else is reported as not found, so existence never leaks to non-owners.
func (d *DatabaseClient) GetProject(projectID, userID uuid.UUID) (*models.Project, error) {
	row := d.db.QueryRow(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID)

	project, err := scanProject(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProjectNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get project: %w", err)
	}
	return project, nil
}

func (d *DatabaseClient) ListProjects(userID uuid.UUID) ([]models.Project, error) {
	rows, err := d.db.Query(`
		SELECT `+projectColumns+`
		FROM projects
		WHERE user_id = $1
		ORDER BY created_at DESC
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list projects: %w", err)
	}
	defer rows.Close()

	var projects []models.Project
	for rows.Next() {
		var p models.Project
		err := rows.Scan(
			&p.ID, &p.UserID, &p.Name, &p.RoomType, &p.DesignStyle, &p.InputImageURL,
			&p.PreviewStatus, &p.PreviewJobID, &p.PreviewURL, &p.PlanText, &p.CreatedAt, &p.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan project: %w", err)
		}
		projects = append(projects, p)
	}

	return projects, rows.Err()
}

func (d *DatabaseClient) DeleteProject(projectID, userID uuid.UUID) error {
	_, err := d.db.Exec(`
		DELETE FROM projects
		WHERE id = $1 AND user_id = $2
	`, projectID, userID)
	return err
}

func (d *DatabaseClient) SetProjectImage(projectID uuid.UUID, imageURL string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET input_image_url = $1, updated_at = NOW()
		WHERE id = $2
	`, imageURL, projectID)
	return err
}

// MarkPreviewQueued begins a fresh preview run: job id set, any previous
// result cleared. preview_url must be null whenever status is not done.
func (d *DatabaseClient) MarkPreviewQueued(projectID uuid.UUID, jobID string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET preview_status = 'queued', preview_job_id = $1, preview_url = NULL, updated_at = NOW()
		WHERE id = $2
	`, jobID, projectID)
	return err
}

func (d *DatabaseClient) SetPreviewState(projectID uuid.UUID, status string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET preview_status = $1, updated_at = NOW()
		WHERE id = $2
	`, status, projectID)
	return err
}

func (d *DatabaseClient) CompletePreview(projectID uuid.UUID, previewURL string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET preview_status = 'done', preview_url = $1, updated_at = NOW()
		WHERE id = $2
	`, previewURL, projectID)
	return err
}

func (d *DatabaseClient) FailPreview(projectID uuid.UUID) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET preview_status = 'error', updated_at = NOW()
		WHERE id = $1
	`, projectID)
	return err
}

func (d *DatabaseClient) SetPlanText(projectID uuid.UUID, planText string) error {
	_, err := d.db.Exec(`
		UPDATE projects
		SET plan_text = $1, updated_at = NOW()
		WHERE id = $2
	`, planText, projectID)
	return err
}

func (d *DatabaseClient) GetProfile(userID uuid.UUID) (*models.Profile, error) {
	var p models.Profile
	err := d.db.QueryRow(`
		SELECT user_id, tier, credits_used, period_key, created_at, updated_at
		FROM profiles
		WHERE user_id = $1
	`, userID).Scan(&p.UserID, &p.Tier, &p.CreditsUsed, &p.PeriodKey, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get profile: %w", err)
	}
	return &p, nil
}

// RolloverProfile resets the counter for a new billing period. The write is
// conditional on the stale key, so two concurrent observers of the same
// stale period both succeed harmlessly: the second matches zero rows.
func (d *DatabaseClient) RolloverProfile(userID uuid.UUID, staleKey, currentKey string) error {
	_, err := d.db.Exec(`
		UPDATE profiles
		SET credits_used = 0, period_key = $1, updated_at = NOW()
		WHERE user_id = $2 AND period_key = $3
	`, currentKey, userID, staleKey)
	return err
}

// ConsumeCredit is the compare-and-swap increment: it applies only if the
// row still holds the counter and period the caller read. Returns false
// when another request won the race.
func (d *DatabaseClient) ConsumeCredit(userID uuid.UUID, observedUsed int, periodKey string) (bool, error) {
	res, err := d.db.Exec(`
		UPDATE profiles
		SET credits_used = credits_used + 1, updated_at = NOW()
		WHERE user_id = $1 AND credits_used = $2 AND period_key = $3
	`, userID, observedUsed, periodKey)
	if err != nil {
		return false, fmt.Errorf("failed to consume credit: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read rows affected: %w", err)
	}
	return affected == 1, nil
}

func (d *DatabaseClient) Ping() error {
	return d.db.Ping()
}

func (d *DatabaseClient) Close() error {
	return d.db.Close()
}
