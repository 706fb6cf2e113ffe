package api

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/example/taskboard/domain/task"
	"github.com/example/taskboard/modules/auth"
	"github.com/gofiber/fiber/v2"
)

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name           string
		err            error
		expectedStatus int
	}{
		{name: "task not found", err: task.ErrNotFound, expectedStatus: http.StatusNotFound},
		{name: "validation failure", err: fmt.Errorf("%w: title is required", task.ErrValidation), expectedStatus: http.StatusBadRequest},
		{name: "invalid credentials", err: auth.ErrInvalidCredentials, expectedStatus: http.StatusUnauthorized},
		{name: "duplicate email", err: auth.ErrUserExists, expectedStatus: http.StatusConflict},
		{name: "invalid email format", err: auth.ErrInvalidEmail, expectedStatus: http.StatusBadRequest},
		{name: "weak password", err: auth.ErrWeakPassword, expectedStatus: http.StatusBadRequest},
		{name: "blank profile name", err: auth.ErrEmptyName, expectedStatus: http.StatusBadRequest},
		{name: "user not found", err: auth.ErrUserNotFound, expectedStatus: http.StatusNotFound},
		{name: "draft store down", err: errors.New("draft store unavailable"), expectedStatus: http.StatusServiceUnavailable},
		{name: "anything else is internal", err: errors.New("disk on fire"), expectedStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := &APIModule{}
			app := fiber.New()
			app.Get("/test", func(c *fiber.Ctx) error {
				return m.handleServiceError(c, tt.err)
			})

			req := httptest.NewRequest("GET", "/test", nil)
			resp, err := app.Test(req, -1)
			if err != nil {
				t.Fatalf("app.Test() error = %v", err)
			}
			defer resp.Body.Close()

			if resp.StatusCode != tt.expectedStatus {
				t.Errorf("status = %v, want %v", resp.StatusCode, tt.expectedStatus)
			}
		})
	}
}
