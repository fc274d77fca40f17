package handlers

import (
	"errors"
	"net/http"

	"connect-service/internal/models"
	"connect-service/internal/services"
	"connect-service/pkg/response"

	"github.com/gin-gonic/gin"
)

// respondError maps a service error to its HTTP status and application
// error code. Duplicate-edge failures additionally carry the surviving
// edge's status so the client can render the right next action.
func respondError(c *gin.Context, err error) {
	var exists *services.AlreadyExistsError
	if errors.As(err, &exists) {
		c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Code:   response.CodeAlreadyExists,
			Error:  exists.Error(),
			Status: string(exists.Status),
		})
		return
	}

	status := http.StatusInternalServerError
	code := response.CodeUnavailable

	switch {
	case errors.Is(err, services.ErrInvalidInput):
		status, code = http.StatusBadRequest, response.CodeInvalidInput
	case errors.Is(err, services.ErrSelfReference):
		status, code = http.StatusBadRequest, response.CodeSelfReference
	case errors.Is(err, services.ErrAlreadyAccepted):
		status, code = http.StatusBadRequest, response.CodeAlreadyAccepted
	case errors.Is(err, services.ErrAlreadyRejected):
		status, code = http.StatusBadRequest, response.CodeAlreadyRejected
	case errors.Is(err, services.ErrInvalidParticipants):
		status, code = http.StatusBadRequest, response.CodeInvalidParticipants
	case errors.Is(err, services.ErrIntroducerNotEligible):
		status, code = http.StatusBadRequest, response.CodeIntroducerNotEligible
	case errors.Is(err, services.ErrAlreadyConnected):
		status, code = http.StatusBadRequest, response.CodeAlreadyConnected
	case errors.Is(err, services.ErrDuplicateRequest):
		status, code = http.StatusBadRequest, response.CodeDuplicateRequest
	case errors.Is(err, services.ErrNotRespondable):
		status, code = http.StatusBadRequest, response.CodeNotRespondable
	case errors.Is(err, services.ErrNotCancellable):
		status, code = http.StatusBadRequest, response.CodeNotCancellable
	case errors.Is(err, services.ErrNotYetIntroduced):
		status, code = http.StatusBadRequest, response.CodeNotYetIntroduced
	case errors.Is(err, services.ErrForbidden):
		status, code = http.StatusForbidden, response.CodeForbidden
	case errors.Is(err, services.ErrNotFound):
		status, code = http.StatusNotFound, response.CodeNotFound
	case errors.Is(err, services.ErrUnavailable):
		status, code = http.StatusServiceUnavailable, response.CodeUnavailable
	}

	c.JSON(status, models.ErrorResponse{Code: code, Error: err.Error()})
}

// currentUserID reads the authenticated user set by the auth middleware.
func currentUserID(c *gin.Context) (uint, bool) {
	userID, exists := c.Get("user_id")
	if !exists {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "unauthorized"})
		return 0, false
	}
	id, ok := userID.(uint)
	if !ok {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "invalid user ID type"})
		return 0, false
	}
	return id, true
}
