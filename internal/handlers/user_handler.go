package handlers

import (
	"net/http"

	"mentorhub-api/internal/models"
	"mentorhub-api/internal/store"

	"github.com/gin-gonic/gin"
)

// UserHandler serves user listings for assignee pickers.
type UserHandler struct {
	store *store.TaskStore
}

func NewUserHandler(taskStore *store.TaskStore) *UserHandler {
	return &UserHandler{store: taskStore}
}

type UserResponse struct {
	ID    string      `json:"id"`
	Name  string      `json:"name"`
	Email string      `json:"email"`
	Role  models.Role `json:"role"`
}

// List returns all users (protected)
// GET /api/users
func (h *UserHandler) List(c *gin.Context) {
	users, err := h.store.ListUsers(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	// Map to safe response payload
	resp := make([]UserResponse, 0, len(users))
	for _, u := range users {
		resp = append(resp, UserResponse{
			ID:    u.ID,
			Name:  u.Name,
			Email: u.Email,
			Role:  u.Role,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"users": resp,
		"count": len(resp),
	})
}
