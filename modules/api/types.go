package api

import (
	"time"

	"github.com/example/taskboard/modules/tasks"
)

// RegisterBody is the registration request body.
type RegisterBody struct {
	Name       string `json:"name"`
	Email      string `json:"email"`
	Password   string `json:"password"`
	Role       string `json:"role,omitempty"`
	Department string `json:"department,omitempty"`
}

// LoginBody is the login request body. RememberDevice is an opaque
// client-chosen device identifier used to prefill the email next time.
type LoginBody struct {
	Email          string `json:"email"`
	Password       string `json:"password"`
	RememberDevice string `json:"remember_device,omitempty"`
}

// RefreshBody is the token refresh request body.
type RefreshBody struct {
	RefreshToken string `json:"refresh_token"`
}

// TokenResponse carries a session token pair.
type TokenResponse struct {
	UserID       string `json:"user_id,omitempty"`
	Name         string `json:"name,omitempty"`
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"`
	TokenType    string `json:"token_type"`
}

// UpdateProfileBody is the profile update request body. Omitted fields are
// left unchanged.
type UpdateProfileBody struct {
	Name       *string `json:"name,omitempty"`
	Role       *string `json:"role,omitempty"`
	Department *string `json:"department,omitempty"`
	Bio        *string `json:"bio,omitempty"`
	AvatarURL  *string `json:"avatar_url,omitempty"`
	Phone      *string `json:"phone,omitempty"`
}

// CreateTaskBody is the task creation request body. Ownership is taken
// from the authenticated session, never from the body.
type CreateTaskBody struct {
	Title          string     `json:"title"`
	Description    string     `json:"description,omitempty"`
	Category       string     `json:"category"`
	Priority       string     `json:"priority,omitempty"`
	Status         string     `json:"status,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	Assignee       string     `json:"assignee,omitempty"`
	Tags           []string   `json:"tags,omitempty"`
	EstimatedHours float64    `json:"estimated_hours,omitempty"`
}

// UpdateTaskBody is the partial task update request body.
type UpdateTaskBody struct {
	Title          *string    `json:"title,omitempty"`
	Description    *string    `json:"description,omitempty"`
	Category       *string    `json:"category,omitempty"`
	Priority       *string    `json:"priority,omitempty"`
	Status         *string    `json:"status,omitempty"`
	DueDate        *time.Time `json:"due_date,omitempty"`
	ClearDueDate   bool       `json:"clear_due_date,omitempty"`
	Assignee       *string    `json:"assignee,omitempty"`
	Tags           *[]string  `json:"tags,omitempty"`
	EstimatedHours *float64   `json:"estimated_hours,omitempty"`
	ActualHours    *float64   `json:"actual_hours,omitempty"`
}

// SaveDraftBody is the draft save request body.
type SaveDraftBody struct {
	Draft tasks.DraftPayload `json:"draft"`
}

// HealthResponse is the health check response.
type HealthResponse struct {
	Status  string         `json:"status"`
	Details map[string]any `json:"details,omitempty"`
}

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
