package handlers

import (
	"errors"
	"net/http"

	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"
	"connect-service/internal/services"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// UserHandler exposes directory reads. Profiles are maintained by the
// identity collaborator; the graph engine only consumes the attributes
// that feed scoring.
type UserHandler struct {
	userRepo postgres.UserRepository
}

func NewUserHandler(userRepo postgres.UserRepository) *UserHandler {
	return &UserHandler{userRepo: userRepo}
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/profile [get]
func (h *UserHandler) GetProfile(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	h.respondUser(c, actorID)
}

// GetUser godoc
// @Summary Get a user profile by ID
// @Tags users
// @Produce json
// @Security BearerAuth
// @Param id path int true "User ID"
// @Success 200 {object} models.UserResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /users/{id} [get]
func (h *UserHandler) GetUser(c *gin.Context) {
	if _, ok := currentUserID(c); !ok {
		return
	}
	userID, ok := pathID(c, "id")
	if !ok {
		return
	}
	h.respondUser(c, userID)
}

func (h *UserHandler) respondUser(c *gin.Context, userID uint) {
	user, err := h.userRepo.FindByID(userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			respondError(c, services.ErrNotFound)
			return
		}
		respondError(c, services.ErrUnavailable)
		return
	}
	c.JSON(http.StatusOK, models.NewUserResponse(user))
}
