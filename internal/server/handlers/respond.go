package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ecovolt-ph/ecovolt-backend/internal/domain/models"
)

// Context keys set by the auth middleware.
const (
	CtxUserID      = "auth.user_id"
	CtxDisplayName = "auth.display_name"
)

// respondError maps domain errors onto HTTP statuses and a uniform JSON body.
func respondError(c *gin.Context, err error) {
	var vErr *models.ValidationError
	if errors.As(err, &vErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": vErr.Reason})
		return
	}

	var nfErr *models.NotFoundError
	if errors.As(err, &nfErr) {
		c.JSON(http.StatusNotFound, gin.H{"error": nfErr.Error()})
		return
	}

	var suErr *models.StoreUnavailableError
	if errors.As(err, &suErr) {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "storage temporarily unavailable"})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
