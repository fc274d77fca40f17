package handlers

import (
	"net/http"

	"connect-service/internal/models"
	"connect-service/internal/services"

	"github.com/gin-gonic/gin"
)

type IntroductionHandler struct {
	introductionService *services.IntroductionService
}

func NewIntroductionHandler(introductionService *services.IntroductionService) *IntroductionHandler {
	return &IntroductionHandler{introductionService: introductionService}
}

// CreateIntroduction godoc
// @Summary Request an introduction through a mutual connection
// @Description The introducer must be connected with both the requester and the target
// @Tags introductions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateIntroductionRequest true "Introduction request"
// @Success 201 {object} models.IntroductionResponse
// @Failure 400 {object} models.ErrorResponse "Ineligible introducer, already connected, or duplicate request"
// @Router /introductions [post]
func (h *IntroductionHandler) CreateIntroduction(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateIntroductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.introductionService.Request(c.Request.Context(), actorID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewIntroductionResponse(record))
}

// RespondIntroduction godoc
// @Summary Accept or decline an introduction request
// @Description Introducer only; accepting renders the introduction message and completes the request
// @Tags introductions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Introduction request ID"
// @Param request body models.RespondIntroductionRequest true "Response"
// @Success 200 {object} models.IntroductionResponse
// @Failure 400 {object} models.ErrorResponse "Request expired or already processed"
// @Failure 403 {object} models.ErrorResponse
// @Router /introductions/{id}/respond [put]
func (h *IntroductionHandler) RespondIntroduction(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	reqID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.RespondIntroductionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.introductionService.Respond(c.Request.Context(), reqID, actorID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewIntroductionResponse(record))
}

// RecordTargetResponse godoc
// @Summary Record the target's acknowledgment of a completed introduction
// @Tags introductions
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Introduction request ID"
// @Param request body models.TargetResponseRequest true "Target response"
// @Success 200 {object} models.IntroductionResponse
// @Failure 400 {object} models.ErrorResponse "Introduction not yet completed"
// @Failure 403 {object} models.ErrorResponse
// @Router /introductions/{id}/target-response [put]
func (h *IntroductionHandler) RecordTargetResponse(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	reqID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.TargetResponseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	record, err := h.introductionService.RecordTargetResponse(c.Request.Context(), reqID, actorID, &req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewIntroductionResponse(record))
}

// CancelIntroduction godoc
// @Summary Cancel a pending introduction request
// @Description Requester only, and only while the request is still pending
// @Tags introductions
// @Produce json
// @Security BearerAuth
// @Param id path int true "Introduction request ID"
// @Success 200 {object} models.IntroductionResponse
// @Failure 400 {object} models.ErrorResponse "Request already processed"
// @Failure 403 {object} models.ErrorResponse
// @Router /introductions/{id} [delete]
func (h *IntroductionHandler) CancelIntroduction(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	reqID, ok := pathID(c, "id")
	if !ok {
		return
	}

	record, err := h.introductionService.Cancel(c.Request.Context(), reqID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewIntroductionResponse(record))
}

// ListIntroductions godoc
// @Summary List my introduction requests
// @Tags introductions
// @Produce json
// @Security BearerAuth
// @Param role query string false "Filter by role" Enums(requester, introducer, target)
// @Param status query string false "Filter by status"
// @Success 200 {object} map[string][]models.IntroductionResponse
// @Router /introductions [get]
func (h *IntroductionHandler) ListIntroductions(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	role := c.Query("role")
	status := models.IntroductionStatus(c.Query("status"))

	records, err := h.introductionService.ListByUser(c.Request.Context(), actorID, role, status)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"introductions": records})
}
