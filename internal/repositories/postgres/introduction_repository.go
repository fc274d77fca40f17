package postgres

import (
	"fmt"
	"time"

	"connect-service/internal/models"

	"gorm.io/gorm"
)

type IntroductionRepository interface {
	Create(req *models.IntroductionRequest) error
	FindByID(id uint) (*models.IntroductionRequest, error)
	Save(req *models.IntroductionRequest) error
	// HasActiveRequest reports whether a live (not declined/cancelled, not
	// expired) request already exists for the requester/target pair.
	HasActiveRequest(requesterID, targetID uint, now time.Time) (bool, error)
	ListByUser(userID uint, role string, status models.IntroductionStatus) ([]models.IntroductionRequest, error)
}

type introductionRepository struct {
	db *gorm.DB
}

func NewIntroductionRepository(db *gorm.DB) IntroductionRepository {
	return &introductionRepository{db: db}
}

func (r *introductionRepository) Create(req *models.IntroductionRequest) error {
	if err := r.db.Create(req).Error; err != nil {
		return fmt.Errorf("failed to create introduction request: %w", err)
	}
	return nil
}

func (r *introductionRepository) FindByID(id uint) (*models.IntroductionRequest, error) {
	var req models.IntroductionRequest
	if err := r.db.First(&req, id).Error; err != nil {
		return nil, err
	}
	return &req, nil
}

func (r *introductionRepository) Save(req *models.IntroductionRequest) error {
	return r.db.Save(req).Error
}

func (r *introductionRepository) HasActiveRequest(requesterID, targetID uint, now time.Time) (bool, error) {
	var count int64
	err := r.db.Model(&models.IntroductionRequest{}).
		Where("requester_id = ? AND target_id = ?", requesterID, targetID).
		Where("status NOT IN ?", []models.IntroductionStatus{
			models.IntroductionStatusDeclined,
			models.IntroductionStatusCancelled,
		}).
		Where("expires_at > ?", now).
		Count(&count).Error
	if err != nil {
		return false, fmt.Errorf("failed to check active requests: %w", err)
	}
	return count > 0, nil
}

func (r *introductionRepository) ListByUser(userID uint, role string, status models.IntroductionStatus) ([]models.IntroductionRequest, error) {
	q := r.db.Model(&models.IntroductionRequest{})
	switch role {
	case "requester":
		q = q.Where("requester_id = ?", userID)
	case "introducer":
		q = q.Where("introducer_id = ?", userID)
	case "target":
		q = q.Where("target_id = ?", userID)
	default:
		q = q.Where("requester_id = ? OR introducer_id = ? OR target_id = ?", userID, userID, userID)
	}
	if status != "" {
		q = q.Where("status = ?", status)
	}
	var reqs []models.IntroductionRequest
	err := q.Order("created_at DESC").Find(&reqs).Error
	return reqs, err
}
