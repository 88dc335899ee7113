package handlers

import (
	"errors"
	"net/http"

	"mentorhub-api/internal/policy"
	"mentorhub-api/internal/store"

	"github.com/gin-gonic/gin"
)

// respondError maps the service/store error taxonomy onto HTTP statuses:
// policy denial -> 403, validation -> 400, missing task -> 404, anything
// else -> 500 (transient store failures are not retried here).
func respondError(c *gin.Context, err error) {
	var denied *policy.DeniedError
	var invalid *store.ValidationError

	switch {
	case errors.As(err, &denied):
		c.JSON(http.StatusForbidden, gin.H{
			"error":      denied.Reason,
			"actorRole":  denied.ActorRole,
			"targetRole": denied.TargetRole,
		})
	case errors.As(err, &invalid):
		c.JSON(http.StatusBadRequest, gin.H{
			"error": invalid.Error(),
			"field": invalid.Field,
		})
	case errors.Is(err, store.ErrTaskNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "Task not found"})
	case errors.Is(err, store.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "User not found"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Server error"})
	}
}
