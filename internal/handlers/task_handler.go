package handlers

import (
	"net/http"
	"time"

	"mentorhub-api/internal/board"
	"mentorhub-api/internal/middleware"
	"mentorhub-api/internal/models"
	"mentorhub-api/internal/store"

	"github.com/gin-gonic/gin"
)

// TaskHandler serves the board's HTTP surface. All mutations go through the
// synchronization service; the handler only shapes requests and responses.
type TaskHandler struct {
	svc *board.Service
}

func NewTaskHandler(svc *board.Service) *TaskHandler {
	return &TaskHandler{svc: svc}
}

// CreateTaskRequest represents the request payload for creating a task
type CreateTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Assignee    string              `json:"assignee" binding:"required"`
	Status      models.TaskStatus   `json:"status"`
	Priority    models.TaskPriority `json:"priority"`
	Deadline    *time.Time          `json:"deadline"`
	Project     string              `json:"project"`
}

// UpdateTaskRequest represents the request payload for updating a task.
// Title, status and priority are required; the rest keep their current
// values when omitted.
type UpdateTaskRequest struct {
	Title       string              `json:"title" binding:"required"`
	Description string              `json:"description"`
	Assignee    string              `json:"assignee"`
	Status      models.TaskStatus   `json:"status" binding:"required"`
	Priority    models.TaskPriority `json:"priority" binding:"required"`
	Deadline    *time.Time          `json:"deadline"`
	Project     string              `json:"project"`
}

// MoveTaskRequest represents a minimal request to change status
type MoveTaskRequest struct {
	Status models.TaskStatus `json:"status" binding:"required"`
}

// AttachmentRequest carries attachment metadata; the file itself is uploaded
// to blob storage by a separate collaborator.
type AttachmentRequest struct {
	Name        string `json:"name" binding:"required"`
	URL         string `json:"url" binding:"required"`
	ContentType string `json:"contentType"`
	Size        int64  `json:"size"`
}

// VoiceNoteRequest carries voice-note metadata.
type VoiceNoteRequest struct {
	URL        string `json:"url" binding:"required"`
	Duration   int    `json:"duration"`
	Transcript string `json:"transcript"`
}

func actor(c *gin.Context) (board.Actor, bool) {
	a, ok := middleware.ActorFrom(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Identity not found in token"})
	}
	return a, ok
}

// List handles GET /api/tasks
// Optional query params: status, assignee, priority (equality filters, combinable).
func (h *TaskHandler) List(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}

	filter := store.TaskFilter{
		Status:     models.TaskStatus(c.Query("status")),
		AssigneeID: c.Query("assignee"),
		Priority:   models.TaskPriority(c.Query("priority")),
	}

	tasks, err := h.svc.ListTasks(c.Request.Context(), filter)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, tasks)
}

// Get handles GET /api/tasks/:id
func (h *TaskHandler) Get(c *gin.Context) {
	if _, ok := actor(c); !ok {
		return
	}

	task, err := h.svc.GetTask(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Create handles POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req CreateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.svc.CreateTask(c.Request.Context(), a, board.CreateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.Assignee,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		ProjectID:   req.Project,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, task)
}

// Update handles PUT /api/tasks/:id
func (h *TaskHandler) Update(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req UpdateTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.svc.UpdateTask(c.Request.Context(), a, c.Param("id"), board.UpdateTaskInput{
		Title:       req.Title,
		Description: req.Description,
		AssigneeID:  req.Assignee,
		Status:      req.Status,
		Priority:    req.Priority,
		Deadline:    req.Deadline,
		ProjectID:   req.Project,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Move handles PUT /api/tasks/:id/move
// Status-only transition; any column may move to any other column.
func (h *TaskHandler) Move(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req MoveTaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.svc.MoveTask(c.Request.Context(), a, c.Param("id"), req.Status)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// Delete handles DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	taskID := c.Param("id")
	if err := h.svc.DeleteTask(c.Request.Context(), a, taskID); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message": "Task deleted",
		"id":      taskID,
	})
}

// AddAttachment handles POST /api/tasks/:id/attachments
func (h *TaskHandler) AddAttachment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req AttachmentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.svc.AddAttachment(c.Request.Context(), a, c.Param("id"), models.Attachment{
		Name:        req.Name,
		URL:         req.URL,
		ContentType: req.ContentType,
		Size:        req.Size,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// RemoveAttachment handles DELETE /api/tasks/:id/attachments/:attachmentId
func (h *TaskHandler) RemoveAttachment(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	task, err := h.svc.RemoveAttachment(c.Request.Context(), a, c.Param("id"), c.Param("attachmentId"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// AddVoiceNote handles POST /api/tasks/:id/voice-notes
func (h *TaskHandler) AddVoiceNote(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	var req VoiceNoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	task, err := h.svc.AddVoiceNote(c.Request.Context(), a, c.Param("id"), models.VoiceNote{
		URL:        req.URL,
		Duration:   req.Duration,
		Transcript: req.Transcript,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, task)
}

// DashboardStats handles GET /api/tasks/dashboard-stats
// Returns the authenticated user's board summary.
func (h *TaskHandler) DashboardStats(c *gin.Context) {
	a, ok := actor(c)
	if !ok {
		return
	}

	stats, err := h.svc.Stats(c.Request.Context(), a.UserID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}
