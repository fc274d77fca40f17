package handlers

import (
	"net/http"
	"strconv"

	"connect-service/internal/models"
	"connect-service/internal/services"

	"github.com/gin-gonic/gin"
)

type ConnectionHandler struct {
	connectionService *services.ConnectionService
	strengthService   *services.StrengthService
	suggestionService *services.SuggestionService
}

func NewConnectionHandler(
	connectionService *services.ConnectionService,
	strengthService *services.StrengthService,
	suggestionService *services.SuggestionService,
) *ConnectionHandler {
	return &ConnectionHandler{
		connectionService: connectionService,
		strengthService:   strengthService,
		suggestionService: suggestionService,
	}
}

// CreateConnection godoc
// @Summary Send a connection request
// @Description Create a pending connection edge from the current user to the recipient
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateConnectionRequest true "Connection request"
// @Success 201 {object} models.ConnectionResponse
// @Failure 400 {object} models.ErrorResponse "Self reference or edge already exists"
// @Failure 404 {object} models.ErrorResponse "Recipient does not exist"
// @Router /connections [post]
func (h *ConnectionHandler) CreateConnection(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	var req models.CreateConnectionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.connectionService.CreateRequest(c.Request.Context(), actorID, req.RecipientID, req.Message)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, models.NewConnectionResponse(conn, actorID))
}

// AcceptConnection godoc
// @Summary Accept a pending connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} models.ConnectionResponse
// @Failure 400 {object} models.ErrorResponse "Already accepted or rejected"
// @Failure 403 {object} models.ErrorResponse "Actor is not the recipient"
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/accept [put]
func (h *ConnectionHandler) AcceptConnection(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	connID, ok := pathID(c, "id")
	if !ok {
		return
	}

	conn, err := h.connectionService.Accept(c.Request.Context(), connID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewConnectionResponse(conn, actorID))
}

// RejectConnection godoc
// @Summary Reject a pending connection request
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} models.ConnectionResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/reject [put]
func (h *ConnectionHandler) RejectConnection(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	connID, ok := pathID(c, "id")
	if !ok {
		return
	}

	conn, err := h.connectionService.Reject(c.Request.Context(), connID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewConnectionResponse(conn, actorID))
}

// RemoveConnection godoc
// @Summary Remove a connection
// @Description Delete the edge entirely, whatever its status
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} map[string]string
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id} [delete]
func (h *ConnectionHandler) RemoveConnection(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	connID, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.connectionService.Remove(c.Request.Context(), connID, actorID); err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Connection removed"})
}

// GetConnectionStatus godoc
// @Summary Connection status with another user
// @Description Edge status between the current user and userId, from the caller's perspective
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} models.PairStatusResponse
// @Router /connections/status/{userId} [get]
func (h *ConnectionHandler) GetConnectionStatus(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	status, err := h.connectionService.StatusBetween(c.Request.Context(), actorID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, status)
}

// ListConnections godoc
// @Summary List my accepted connections
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.ConnectionResponse
// @Router /connections [get]
func (h *ConnectionHandler) ListConnections(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	conns, err := h.connectionService.ListConnections(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"connections": conns})
}

// ListConnectionRequests godoc
// @Summary List incoming pending connection requests
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string][]models.ConnectionResponse
// @Router /connections/requests [get]
func (h *ConnectionHandler) ListConnectionRequests(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}

	conns, err := h.connectionService.ListPendingRequests(c.Request.Context(), actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"requests": conns})
}

// GetMutualConnections godoc
// @Summary Mutual connections with another user
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param userId path int true "Other user ID"
// @Success 200 {object} models.MutualConnectionsResponse
// @Router /connections/mutual/{userId} [get]
func (h *ConnectionHandler) GetMutualConnections(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	otherID, ok := pathID(c, "userId")
	if !ok {
		return
	}

	profiles, err := h.suggestionService.MutualConnectionProfiles(c.Request.Context(), actorID, otherID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.MutualConnectionsResponse{
		MutualConnections: profiles,
		Count:             len(profiles),
	})
}

// GetSuggestions godoc
// @Summary Ranked connection suggestions
// @Description Non-connected users ranked by mutuals, location, type, skills and verification
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param limit query int false "Maximum suggestions to return" default(10)
// @Success 200 {object} models.SuggestionsResponse
// @Router /connections/suggestions [get]
func (h *ConnectionHandler) GetSuggestions(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	limit := 10
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid limit"})
			return
		}
		limit = parsed
	}

	suggestions, err := h.suggestionService.Suggestions(c.Request.Context(), actorID, limit)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.SuggestionsResponse{Suggestions: suggestions})
}

// GetConnectionStrength godoc
// @Summary Recalculate and return an edge's strength score
// @Tags connections
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Success 200 {object} models.StrengthResponse
// @Failure 403 {object} models.ErrorResponse
// @Failure 404 {object} models.ErrorResponse
// @Router /connections/{id}/strength [get]
func (h *ConnectionHandler) GetConnectionStrength(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	connID, ok := pathID(c, "id")
	if !ok {
		return
	}

	strength, err := h.strengthService.Recalculate(c.Request.Context(), connID, actorID)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, strength)
}

// RecordInteraction godoc
// @Summary Record a typed interaction on a connection
// @Description Applies the interaction type's increment atomically to the edge strength
// @Tags connections
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Connection ID"
// @Param request body models.RecordInteractionRequest true "Interaction"
// @Success 200 {object} models.ConnectionResponse
// @Failure 400 {object} models.ErrorResponse "Unknown type or edge not accepted"
// @Router /connections/{id}/interactions [post]
func (h *ConnectionHandler) RecordInteraction(c *gin.Context) {
	actorID, ok := currentUserID(c)
	if !ok {
		return
	}
	connID, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req models.RecordInteractionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	conn, err := h.strengthService.RecordInteraction(c.Request.Context(), connID, actorID, req.Type)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, models.NewConnectionResponse(conn, actorID))
}

func pathID(c *gin.Context, name string) (uint, bool) {
	raw := c.Param(name)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + name})
		return 0, false
	}
	return uint(id), true
}
