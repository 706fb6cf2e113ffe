package api

import (
	"encoding/json"
	"log"
	"strconv"
	"strings"

	domain "github.com/example/taskboard/domain/user"
	"github.com/example/taskboard/modules/auth"
	"github.com/example/taskboard/modules/broadcast"
	"github.com/example/taskboard/modules/stats"
	"github.com/example/taskboard/modules/tasks"
	"github.com/go-monolith/mono"
	"github.com/go-monolith/mono/pkg/helper"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

// claims pulls the authenticated identity set by AuthMiddleware.
func claims(c *fiber.Ctx) (*domain.Claims, bool) {
	cl, ok := c.Locals(UserContextKey).(*domain.Claims)
	return cl, ok
}

// call invokes a request-reply service on a dependency's container.
func call[T any](c *fiber.Ctx, container mono.ServiceContainer, service string, req any, resp *T) error {
	return helper.CallRequestReplyService(
		c.UserContext(), container, service, json.Marshal, json.Unmarshal, req, resp,
	)
}

// healthHandler handles GET /health.
func (m *APIModule) healthHandler(c *fiber.Ctx) error {
	return c.JSON(HealthResponse{
		Status: "healthy",
		Details: map[string]any{
			"module":            "api",
			"connected_clients": m.hub.ClientCount(),
		},
	})
}

// register handles POST /api/v1/auth/register.
func (m *APIModule) register(c *fiber.Ctx) error {
	var body RegisterBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	req := auth.RegisterRequest{
		Name:       body.Name,
		Email:      body.Email,
		Password:   body.Password,
		Role:       body.Role,
		Department: body.Department,
	}
	var resp auth.RegisterResponse
	if err := call(c, m.authContainer, "register", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// login handles POST /api/v1/auth/login.
func (m *APIModule) login(c *fiber.Ctx) error {
	var body LoginBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.Email == "" || body.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	req := auth.LoginRequest{
		Email:          body.Email,
		Password:       body.Password,
		RememberDevice: body.RememberDevice,
	}
	var resp auth.LoginResponse
	if err := call(c, m.authContainer, "login", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(TokenResponse{
		UserID:       resp.UserID,
		Name:         resp.Name,
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// refresh handles POST /api/v1/auth/refresh.
func (m *APIModule) refresh(c *fiber.Ctx) error {
	var body RefreshBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if body.RefreshToken == "" {
		return badRequest(c, "Refresh token is required")
	}

	req := auth.RefreshRequest{RefreshToken: body.RefreshToken}
	var resp auth.RefreshResponse
	if err := call(c, m.authContainer, "refresh-token", &req, &resp); err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid or expired refresh token",
		})
	}

	return c.JSON(TokenResponse{
		AccessToken:  resp.AccessToken,
		RefreshToken: resp.RefreshToken,
		ExpiresIn:    resp.ExpiresIn,
		TokenType:    resp.TokenType,
	})
}

// rememberedEmail handles GET /api/v1/auth/remembered-email?device=<id>.
func (m *APIModule) rememberedEmail(c *fiber.Ctx) error {
	device := c.Query("device")
	if device == "" {
		return badRequest(c, "device query parameter is required")
	}

	req := auth.RememberedEmailRequest{Device: device}
	var resp auth.RememberedEmailResponse
	if err := call(c, m.authContainer, "remembered-email", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// getProfile handles GET /api/v1/profile.
func (m *APIModule) getProfile(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	user, err := m.authAdapter.GetUser(c.UserContext(), cl.UserID)
	if err != nil {
		return m.handleServiceError(c, err)
	}
	return c.JSON(user)
}

// updateProfile handles PUT /api/v1/profile.
func (m *APIModule) updateProfile(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body UpdateProfileBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := auth.UpdateProfileRequest{
		UserID:     cl.UserID,
		Name:       body.Name,
		Role:       body.Role,
		Department: body.Department,
		Bio:        body.Bio,
		AvatarURL:  body.AvatarURL,
		Phone:      body.Phone,
	}
	var resp auth.UserResponse
	if err := call(c, m.authContainer, "update-profile", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// listTasks handles GET /api/v1/tasks with filter, sort, and pagination
// query parameters.
func (m *APIModule) listTasks(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.ListTasksRequest{
		OwnerID:  cl.UserID,
		Search:   c.Query("search"),
		Category: c.Query("category"),
		Priority: c.Query("priority"),
		Status:   c.Query("status"),
		SortBy:   c.Query("sort_by"),
		SortDesc: c.QueryBool("sort_desc"),
		Page:     queryInt(c, "page", 1),
		PageSize: queryInt(c, "page_size", 0),
	}
	var resp tasks.ListTasksResponse
	if err := call(c, m.taskContainer, "task.list", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// createTask handles POST /api/v1/tasks.
func (m *APIModule) createTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body CreateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := tasks.CreateTaskRequest{
		Title:          body.Title,
		Description:    body.Description,
		Category:       body.Category,
		Priority:       body.Priority,
		Status:         body.Status,
		DueDate:        body.DueDate,
		Assignee:       body.Assignee,
		Tags:           body.Tags,
		EstimatedHours: body.EstimatedHours,
		OwnerID:        cl.UserID,
	}
	var resp tasks.TaskResponse
	if err := call(c, m.taskContainer, "task.create", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// getTask handles GET /api/v1/tasks/:id.
func (m *APIModule) getTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.GetTaskRequest{TaskID: c.Params("id"), RequesterID: cl.UserID}
	var resp tasks.TaskResponse
	if err := call(c, m.taskContainer, "task.get", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// updateTask handles PUT /api/v1/tasks/:id.
func (m *APIModule) updateTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body UpdateTaskBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := tasks.UpdateTaskRequest{
		TaskID:         c.Params("id"),
		RequesterID:    cl.UserID,
		Title:          body.Title,
		Description:    body.Description,
		Category:       body.Category,
		Priority:       body.Priority,
		Status:         body.Status,
		DueDate:        body.DueDate,
		ClearDueDate:   body.ClearDueDate,
		Assignee:       body.Assignee,
		Tags:           body.Tags,
		EstimatedHours: body.EstimatedHours,
		ActualHours:    body.ActualHours,
	}
	var resp tasks.TaskResponse
	if err := call(c, m.taskContainer, "task.update", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// deleteTask handles DELETE /api/v1/tasks/:id.
func (m *APIModule) deleteTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.DeleteTaskRequest{TaskID: c.Params("id"), RequesterID: cl.UserID}
	var resp tasks.DeleteTaskResponse
	if err := call(c, m.taskContainer, "task.delete", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// toggleTask handles POST /api/v1/tasks/:id/toggle.
func (m *APIModule) toggleTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.ToggleStatusRequest{TaskID: c.Params("id"), RequesterID: cl.UserID}
	var resp tasks.TaskResponse
	if err := call(c, m.taskContainer, "task.toggle-status", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// duplicateTask handles POST /api/v1/tasks/:id/duplicate.
func (m *APIModule) duplicateTask(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.DuplicateTaskRequest{TaskID: c.Params("id"), RequesterID: cl.UserID}
	var resp tasks.TaskResponse
	if err := call(c, m.taskContainer, "task.duplicate", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(resp)
}

// saveDraft handles PUT /api/v1/tasks/draft.
func (m *APIModule) saveDraft(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	var body SaveDraftBody
	if err := c.BodyParser(&body); err != nil {
		return badRequest(c, "Invalid request body")
	}

	req := tasks.SaveDraftRequest{OwnerID: cl.UserID, Draft: body.Draft}
	var resp tasks.SaveDraftResponse
	if err := call(c, m.taskContainer, "task.save-draft", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// getDraft handles GET /api/v1/tasks/draft.
func (m *APIModule) getDraft(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.GetDraftRequest{OwnerID: cl.UserID}
	var resp tasks.GetDraftResponse
	if err := call(c, m.taskContainer, "task.get-draft", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// discardDraft handles DELETE /api/v1/tasks/draft.
func (m *APIModule) discardDraft(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := tasks.DiscardDraftRequest{OwnerID: cl.UserID}
	var resp tasks.DiscardDraftResponse
	if err := call(c, m.taskContainer, "task.discard-draft", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// getStats handles GET /api/v1/stats.
func (m *APIModule) getStats(c *fiber.Ctx) error {
	cl, ok := claims(c)
	if !ok {
		return unauthenticated(c)
	}

	req := stats.SnapshotRequest{OwnerID: cl.UserID}
	var resp stats.SnapshotResponse
	if err := call(c, m.statsContainer, "stats.snapshot", &req, &resp); err != nil {
		return m.handleServiceError(c, err)
	}

	return c.JSON(resp)
}

// handleWebSocket handles WebSocket connections at /ws. The acting
// identity was resolved before the upgrade.
func (m *APIModule) handleWebSocket(c *websocket.Conn) {
	cl, ok := c.Locals(UserContextKey).(*domain.Claims)
	if !ok {
		_ = c.Close()
		return
	}

	client := &broadcast.Client{
		ID:     uuid.New().String(),
		UserID: cl.UserID,
		Conn:   c,
	}

	m.hub.Register(client)
	defer func() {
		m.hub.Unregister(client)
		log.Printf("[api] WebSocket client disconnected: %s (user %s)", client.ID, cl.UserID)
	}()

	log.Printf("[api] WebSocket client connected: %s (user %s)", client.ID, cl.UserID)

	welcome := broadcast.Notification{Type: "connected"}
	if err := c.WriteJSON(welcome); err != nil {
		log.Printf("[api] Failed to send welcome: %v", err)
		return
	}

	// The feed is one-way: drain client frames until the peer goes away.
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			if websocket.IsCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("[api] Client %s closed connection", client.ID)
			} else {
				log.Printf("[api] Read error from %s: %v", client.ID, err)
			}
			return
		}
	}
}

func badRequest(c *fiber.Ctx, message string) error {
	return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
		Error:   "bad_request",
		Message: message,
	})
}

func unauthenticated(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
		Error:   "unauthorized",
		Message: "User not authenticated",
	})
}

func queryInt(c *fiber.Ctx, key string, fallback int) int {
	if v := c.Query(key); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			return parsed
		}
	}
	return fallback
}

// handleServiceError maps service errors to HTTP responses. It matches
// known error messages so internals never leak to the client.
func (m *APIModule) handleServiceError(c *fiber.Ctx, err error) error {
	errStr := err.Error()

	switch {
	case strings.Contains(errStr, "task not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "Task not found",
		})
	case strings.Contains(errStr, "validation failed"):
		return c.Status(fiber.StatusBadRequest).JSON(ErrorResponse{
			Error:   "validation_error",
			Message: errStr,
		})
	case strings.Contains(errStr, "invalid email or password"):
		return c.Status(fiber.StatusUnauthorized).JSON(ErrorResponse{
			Error:   "unauthorized",
			Message: "Invalid email or password",
		})
	case strings.Contains(errStr, "user with this email already exists"):
		return c.Status(fiber.StatusConflict).JSON(ErrorResponse{
			Error:   "conflict",
			Message: "User with this email already exists",
		})
	case strings.Contains(errStr, "invalid email format"):
		return badRequest(c, "Invalid email format")
	case strings.Contains(errStr, "password must be at least"):
		return badRequest(c, "Password must be at least 8 characters")
	case strings.Contains(errStr, "password must be at most"):
		return badRequest(c, "Password must be at most 72 characters")
	case strings.Contains(errStr, "name cannot be empty"):
		return badRequest(c, "Name cannot be empty")
	case strings.Contains(errStr, "user not found"):
		return c.Status(fiber.StatusNotFound).JSON(ErrorResponse{
			Error:   "not_found",
			Message: "User not found",
		})
	case strings.Contains(errStr, "draft store unavailable"):
		return c.Status(fiber.StatusServiceUnavailable).JSON(ErrorResponse{
			Error:   "unavailable",
			Message: "Draft storage is unavailable",
		})
	default:
		// Log the actual error but don't expose it to the client
		log.Printf("[api] Internal error: %v", err)
		return c.Status(fiber.StatusInternalServerError).JSON(ErrorResponse{
			Error:   "internal_error",
			Message: "An internal error occurred",
		})
	}
}
