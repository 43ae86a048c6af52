package models

type CreateProjectRequest struct {
	UserID      string `json:"user_id"`
	Name        string `json:"name"`
	RoomType    string `json:"room_type,omitempty" example:"living_room"`
	DesignStyle string `json:"design_style,omitempty" example:"scandinavian"`
}

type PreviewStartRequest struct {
	UserID string `json:"user_id"`
	// ImageURL overrides the project's stored input image for this run.
	ImageURL    string `json:"image_url,omitempty"`
	RoomType    string `json:"room_type,omitempty"`
	DesignStyle string `json:"design_style,omitempty"`
	// ROI is an optional region-of-interest hint, "x,y,w,h" in image pixels.
	ROI string `json:"roi,omitempty"`
}

type EntitlementsRequest struct {
	UserID string `json:"user_id"`
}

type PlanRequest struct {
	UserID string `json:"user_id"`
	// Brief is free-form context from the app ("small bathroom, rental,
	// budget $400"); forwarded to the plan generator as-is.
	Brief string `json:"brief,omitempty"`
}

type ErrorResponse struct {
	OK      bool   `json:"ok"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
