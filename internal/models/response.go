package models

import "time"

type ProjectResponse struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	RoomType      string    `json:"room_type,omitempty"`
	DesignStyle   string    `json:"design_style,omitempty"`
	InputImageURL string    `json:"input_image_url,omitempty"`
	PreviewStatus string    `json:"preview_status"`
	PreviewURL    string    `json:"preview_url,omitempty"`
	PlanText      string    `json:"plan_text,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type ProjectListResponse struct {
	Projects []ProjectSummary `json:"projects"`
}

type ProjectSummary struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	PreviewStatus string    `json:"preview_status"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}

type PreviewStartResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	JobID  string `json:"jobId,omitempty"`
	URL    string `json:"url,omitempty"`
}

type PreviewStatusResponse struct {
	OK     bool   `json:"ok"`
	Status string `json:"status"`
	URL    string `json:"url,omitempty"`
}

type EntitlementsResponse struct {
	OK        bool   `json:"ok"`
	Tier      string `json:"tier,omitempty"`
	Quota     int    `json:"quota"`
	Used      int    `json:"used"`
	Remaining int    `json:"remaining"`
}

type ImageUploadResponse struct {
	OK            bool   `json:"ok"`
	InputImageURL string `json:"input_image_url"`
}

type PlanResponse struct {
	OK        bool   `json:"ok"`
	PlanText  string `json:"plan_text"`
	Remaining int    `json:"remaining"`
}

type HealthResponse struct {
	Status string `json:"status"`
}

type ReadyResponse struct {
	Status   string `json:"status"`
	Database string `json:"database"`
}

type FullHealthResponse struct {
	Status        string `json:"status"`
	Database      string `json:"database"`
	PreviewMode   string `json:"preview_mode"`
	PlanMode      string `json:"plan_mode"`
	StorageBucket string `json:"storage_bucket"`
	Environment   string `json:"environment"`
}
