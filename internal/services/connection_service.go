package services

import (
	"context"
	"errors"
	"time"

	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// ConnectionService owns the edge lifecycle: request, accept, reject, remove,
// and perspective-aware status lookups.
type ConnectionService struct {
	connRepo postgres.ConnectionRepository
	userRepo postgres.UserRepository
	events   *EventService
	now      func() time.Time
}

func NewConnectionService(connRepo postgres.ConnectionRepository, userRepo postgres.UserRepository, events *EventService) *ConnectionService {
	return &ConnectionService{
		connRepo: connRepo,
		userRepo: userRepo,
		events:   events,
		now:      time.Now,
	}
}

const maxConnectionMessageLen = 500

// CreateRequest creates a pending edge from initiator to recipient. The
// uniqueness check is the insert itself: the store's unique index on the
// canonical pair decides the winner when two requests race, and the loser is
// reported with the surviving edge's status.
func (s *ConnectionService) CreateRequest(ctx context.Context, initiatorID, recipientID uint, message string) (*models.Connection, error) {
	if initiatorID == recipientID {
		return nil, ErrSelfReference
	}
	if len(message) > maxConnectionMessageLen {
		return nil, ErrInvalidInput
	}
	if _, err := s.userRepo.FindByID(recipientID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUnavailable
	}

	low, high := models.CanonicalPair(initiatorID, recipientID)
	conn := &models.Connection{
		UserLowID:   low,
		UserHighID:  high,
		InitiatorID: initiatorID,
		Status:      models.ConnectionStatusPending,
		Message:     message,
		Trend:       models.TrendStable,
	}

	if err := s.connRepo.Create(conn); err != nil {
		if errors.Is(err, postgres.ErrDuplicatePair) {
			return nil, s.alreadyExists(initiatorID, recipientID)
		}
		return nil, ErrUnavailable
	}
	return conn, nil
}

func (s *ConnectionService) alreadyExists(viewerID, otherID uint) error {
	existing, err := s.connRepo.FindByPair(viewerID, otherID)
	if err != nil {
		// The edge won the race but vanished before we could read it;
		// report the constraint violation without status context.
		return &AlreadyExistsError{Status: models.PairStatusNone}
	}
	return &AlreadyExistsError{
		Status:       existing.StatusFor(viewerID),
		ConnectionID: existing.ID,
	}
}

// Accept transitions a pending edge to accepted. Only the non-initiating
// endpoint may accept; connectedAt is set on the first acceptance only.
func (s *ConnectionService) Accept(ctx context.Context, connID, actorID uint) (*models.Connection, error) {
	conn, err := s.findOwned(connID, actorID)
	if err != nil {
		return nil, err
	}
	if conn.InitiatorID == actorID {
		return nil, ErrForbidden
	}
	if conn.Status == models.ConnectionStatusAccepted {
		return nil, ErrAlreadyAccepted
	}
	if conn.Status == models.ConnectionStatusRejected {
		return nil, ErrAlreadyRejected
	}

	conn.Status = models.ConnectionStatusAccepted
	if conn.ConnectedAt == nil {
		now := s.now()
		conn.ConnectedAt = &now
	}
	if err := s.connRepo.Save(conn); err != nil {
		return nil, ErrUnavailable
	}

	s.events.ConnectionAccepted(ctx, conn)
	return conn, nil
}

// Reject transitions a pending edge to its terminal rejected state.
func (s *ConnectionService) Reject(ctx context.Context, connID, actorID uint) (*models.Connection, error) {
	conn, err := s.findOwned(connID, actorID)
	if err != nil {
		return nil, err
	}
	if conn.InitiatorID == actorID {
		return nil, ErrForbidden
	}
	if conn.Status == models.ConnectionStatusAccepted {
		return nil, ErrAlreadyAccepted
	}
	if conn.Status == models.ConnectionStatusRejected {
		return nil, ErrAlreadyRejected
	}

	conn.Status = models.ConnectionStatusRejected
	if err := s.connRepo.Save(conn); err != nil {
		return nil, ErrUnavailable
	}
	return conn, nil
}

// Remove deletes the edge entirely, whatever its status. Either endpoint
// may remove it.
func (s *ConnectionService) Remove(ctx context.Context, connID, actorID uint) error {
	conn, err := s.findOwned(connID, actorID)
	if err != nil {
		return err
	}
	if err := s.connRepo.Delete(conn.ID); err != nil {
		return ErrUnavailable
	}
	return nil
}

// StatusBetween reports the edge status between viewer and other, from the
// viewer's perspective.
func (s *ConnectionService) StatusBetween(ctx context.Context, viewerID, otherID uint) (models.PairStatusResponse, error) {
	if viewerID == otherID {
		return models.PairStatusResponse{}, ErrSelfReference
	}
	conn, err := s.connRepo.FindByPair(viewerID, otherID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.PairStatusResponse{Status: models.PairStatusNone}, nil
		}
		return models.PairStatusResponse{}, ErrUnavailable
	}
	id := conn.ID
	return models.PairStatusResponse{
		Status:       conn.StatusFor(viewerID),
		ConnectionID: &id,
	}, nil
}

// ListConnections returns the viewer's accepted edges.
func (s *ConnectionService) ListConnections(ctx context.Context, viewerID uint) ([]models.ConnectionResponse, error) {
	conns, err := s.connRepo.ListForUser(viewerID, models.ConnectionStatusAccepted)
	if err != nil {
		return nil, ErrUnavailable
	}
	return s.toResponses(conns, viewerID), nil
}

// ListPendingRequests returns pending edges awaiting the viewer's answer.
func (s *ConnectionService) ListPendingRequests(ctx context.Context, viewerID uint) ([]models.ConnectionResponse, error) {
	conns, err := s.connRepo.ListPendingReceived(viewerID)
	if err != nil {
		return nil, ErrUnavailable
	}
	return s.toResponses(conns, viewerID), nil
}

func (s *ConnectionService) toResponses(conns []models.Connection, viewerID uint) []models.ConnectionResponse {
	responses := make([]models.ConnectionResponse, 0, len(conns))
	for i := range conns {
		responses = append(responses, models.NewConnectionResponse(&conns[i], viewerID))
	}
	return responses
}

func (s *ConnectionService) findOwned(connID, actorID uint) (*models.Connection, error) {
	conn, err := s.connRepo.FindByID(connID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUnavailable
	}
	if !conn.Involves(actorID) {
		return nil, ErrForbidden
	}
	return conn, nil
}
