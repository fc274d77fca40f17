package postgres

import (
	"errors"
	"fmt"
	"time"

	"connect-service/internal/models"

	"gorm.io/gorm"
)

// ErrDuplicatePair is returned when an insert hits the unique index on the
// canonical (user_low_id, user_high_id) pair. The caller looks up the
// surviving edge to report its status.
var ErrDuplicatePair = errors.New("connection already exists for pair")

type ConnectionRepository interface {
	Create(conn *models.Connection) error
	FindByID(id uint) (*models.Connection, error)
	FindByPair(userA, userB uint) (*models.Connection, error)
	Save(conn *models.Connection) error
	Delete(id uint) error

	ListForUser(userID uint, status models.ConnectionStatus) ([]models.Connection, error)
	ListPendingReceived(userID uint) ([]models.Connection, error)
	AcceptedNeighborIDs(userID uint) ([]uint, error)
	NeighborIDsAnyStatus(userID uint) ([]uint, error)

	ApplyInteraction(connID uint, delta int, at time.Time) error
	CreateInteraction(interaction *models.Interaction) error
	InteractionCountsSince(connID uint, since time.Time) (map[models.InteractionType]int64, error)
	UpdateStrength(connID uint, strength int, trend models.StrengthTrend, at time.Time) error
}

type connectionRepository struct {
	db *gorm.DB
}

func NewConnectionRepository(db *gorm.DB) ConnectionRepository {
	return &connectionRepository{db: db}
}

func (r *connectionRepository) Create(conn *models.Connection) error {
	if err := r.db.Create(conn).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrDuplicatePair
		}
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

func (r *connectionRepository) FindByID(id uint) (*models.Connection, error) {
	var conn models.Connection
	if err := r.db.First(&conn, id).Error; err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) FindByPair(userA, userB uint) (*models.Connection, error) {
	low, high := models.CanonicalPair(userA, userB)
	var conn models.Connection
	err := r.db.Where("user_low_id = ? AND user_high_id = ?", low, high).First(&conn).Error
	if err != nil {
		return nil, err
	}
	return &conn, nil
}

func (r *connectionRepository) Save(conn *models.Connection) error {
	return r.db.Save(conn).Error
}

func (r *connectionRepository) Delete(id uint) error {
	// Interactions go with the edge; no soft delete for either.
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Unscoped().Where("connection_id = ?", id).Delete(&models.Interaction{}).Error; err != nil {
			return err
		}
		return tx.Unscoped().Delete(&models.Connection{}, id).Error
	})
}

func (r *connectionRepository) ListForUser(userID uint, status models.ConnectionStatus) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.
		Where("(user_low_id = ? OR user_high_id = ?) AND status = ?", userID, userID, status).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

func (r *connectionRepository) ListPendingReceived(userID uint) ([]models.Connection, error) {
	var conns []models.Connection
	err := r.db.
		Where("(user_low_id = ? OR user_high_id = ?) AND initiator_id != ? AND status = ?",
			userID, userID, userID, models.ConnectionStatusPending).
		Order("created_at DESC").
		Find(&conns).Error
	return conns, err
}

// AcceptedNeighborIDs returns the accepted-edge neighbors of userID using the
// per-endpoint indexes; one query, O(degree) rows.
func (r *connectionRepository) AcceptedNeighborIDs(userID uint) ([]uint, error) {
	return r.neighborIDs(userID, string(models.ConnectionStatusAccepted))
}

func (r *connectionRepository) NeighborIDsAnyStatus(userID uint) ([]uint, error) {
	return r.neighborIDs(userID, "")
}

func (r *connectionRepository) neighborIDs(userID uint, status string) ([]uint, error) {
	var conns []models.Connection
	q := r.db.Select("user_low_id", "user_high_id").
		Where("user_low_id = ? OR user_high_id = ?", userID, userID)
	if status != "" {
		q = q.Where("status = ?", status)
	}
	if err := q.Find(&conns).Error; err != nil {
		return nil, fmt.Errorf("failed to load neighbors: %w", err)
	}
	ids := make([]uint, 0, len(conns))
	for _, c := range conns {
		ids = append(ids, c.OtherEnd(userID))
	}
	return ids, nil
}

// ApplyInteraction bumps the strength score in place. The increment runs as
// a single SQL expression so concurrent interaction events on the same edge
// cannot lose updates to a stale read.
func (r *connectionRepository) ApplyInteraction(connID uint, delta int, at time.Time) error {
	res := r.db.Model(&models.Connection{}).
		Where("id = ?", connID).
		Updates(map[string]interface{}{
			"strength":            gorm.Expr("LEAST(strength + ?, 100)", delta),
			"last_interaction_at": at,
		})
	if res.Error != nil {
		return fmt.Errorf("failed to apply interaction: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

func (r *connectionRepository) CreateInteraction(interaction *models.Interaction) error {
	return r.db.Create(interaction).Error
}

func (r *connectionRepository) InteractionCountsSince(connID uint, since time.Time) (map[models.InteractionType]int64, error) {
	var rows []struct {
		Type  models.InteractionType
		Count int64
	}
	err := r.db.Model(&models.Interaction{}).
		Select("type, COUNT(*) AS count").
		Where("connection_id = ? AND created_at >= ?", connID, since).
		Group("type").
		Scan(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count interactions: %w", err)
	}
	counts := make(map[models.InteractionType]int64, len(rows))
	for _, row := range rows {
		counts[row.Type] = row.Count
	}
	return counts, nil
}

func (r *connectionRepository) UpdateStrength(connID uint, strength int, trend models.StrengthTrend, at time.Time) error {
	return r.db.Model(&models.Connection{}).
		Where("id = ?", connID).
		Updates(map[string]interface{}{
			"strength":           strength,
			"trend":              trend,
			"last_calculated_at": at,
		}).Error
}
