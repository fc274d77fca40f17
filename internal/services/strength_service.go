package services

import (
	"context"
	"errors"
	"time"

	"connect-service/internal/config"
	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// StrengthService scores connection edges 0-100 from attribute similarity,
// mutual connections, interaction history and relationship duration.
type StrengthService struct {
	connRepo postgres.ConnectionRepository
	userRepo postgres.UserRepository
	policy   config.PolicyConfig
	now      func() time.Time
}

func NewStrengthService(connRepo postgres.ConnectionRepository, userRepo postgres.UserRepository, policy config.PolicyConfig) *StrengthService {
	return &StrengthService{
		connRepo: connRepo,
		userRepo: userRepo,
		policy:   policy,
		now:      time.Now,
	}
}

// Recalculate computes the full strength score for the edge, derives the
// trend against the previously stored score and persists both. Only an
// endpoint of the edge may trigger it.
func (s *StrengthService) Recalculate(ctx context.Context, connID, actorID uint) (*models.StrengthResponse, error) {
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

	score, err := s.computeScore(conn)
	if err != nil {
		return nil, err
	}

	trend := models.TrendStable
	switch {
	case score > conn.Strength:
		trend = models.TrendIncreasing
	case score < conn.Strength:
		trend = models.TrendDecreasing
	}

	now := s.now()
	if err := s.connRepo.UpdateStrength(conn.ID, score, trend, now); err != nil {
		return nil, ErrUnavailable
	}
	return &models.StrengthResponse{
		ConnectionID:     conn.ID,
		Strength:         score,
		Trend:            trend,
		LastCalculatedAt: &now,
	}, nil
}

func (s *StrengthService) computeScore(conn *models.Connection) (int, error) {
	userLow, err := s.userRepo.FindByID(conn.UserLowID)
	if err != nil {
		return 0, ErrUnavailable
	}
	userHigh, err := s.userRepo.FindByID(conn.UserHighID)
	if err != nil {
		return 0, ErrUnavailable
	}

	score := s.attributeSimilarity(userLow, userHigh)

	mutuals, err := s.mutualCount(conn.UserLowID, conn.UserHighID)
	if err != nil {
		return 0, err
	}
	score += s.mutualContribution(mutuals)

	interactions, err := s.interactionContribution(conn.ID)
	if err != nil {
		return 0, err
	}
	score += interactions

	score += s.durationBonus(conn)

	return clampScore(score), nil
}

func (s *StrengthService) attributeSimilarity(a, b *models.User) int {
	score := 0
	if a.ProfessionalType != "" && a.ProfessionalType == b.ProfessionalType {
		score += s.policy.StrengthTypeBonus
	}
	if a.Location != "" && a.Location == b.Location {
		score += s.policy.StrengthLocationBonus
	}
	skills := toSet(a.Skills)
	shared := 0
	for _, skill := range b.Skills {
		if skills[skill] {
			shared++
		}
	}
	skillScore := shared * s.policy.StrengthSkillPoints
	if skillScore > s.policy.StrengthSkillCap {
		skillScore = s.policy.StrengthSkillCap
	}
	return score + skillScore
}

func (s *StrengthService) mutualCount(a, b uint) (int, error) {
	neighborsA, err := s.connRepo.AcceptedNeighborIDs(a)
	if err != nil {
		return 0, ErrUnavailable
	}
	neighborsB, err := s.connRepo.AcceptedNeighborIDs(b)
	if err != nil {
		return 0, ErrUnavailable
	}
	return len(intersectIDs(neighborsA, neighborsB)), nil
}

// mutualContribution counts 2 points per mutual up to StrengthMutualFull,
// then 1 point each up to StrengthMutualTail. Hub users with hundreds of
// shared connections cannot run the score away.
func (s *StrengthService) mutualContribution(mutuals int) int {
	full := mutuals
	if full > s.policy.StrengthMutualFull {
		full = s.policy.StrengthMutualFull
	}
	contribution := full * 2
	tail := mutuals - s.policy.StrengthMutualFull
	if tail > 0 {
		if tail > s.policy.StrengthMutualTail-s.policy.StrengthMutualFull {
			tail = s.policy.StrengthMutualTail - s.policy.StrengthMutualFull
		}
		contribution += tail
	}
	return contribution
}

func (s *StrengthService) interactionContribution(connID uint) (int, error) {
	since := s.now().Add(-s.policy.InteractionWindow)
	counts, err := s.connRepo.InteractionCountsSince(connID, since)
	if err != nil {
		return 0, ErrUnavailable
	}
	total := 0
	for itype, count := range counts {
		total += s.policy.InteractionIncrements[string(itype)] * int(count)
	}
	return total, nil
}

func (s *StrengthService) durationBonus(conn *models.Connection) int {
	if conn.Status != models.ConnectionStatusAccepted || conn.ConnectedAt == nil {
		return 0
	}
	steps := int(s.now().Sub(*conn.ConnectedAt) / s.policy.StrengthDurationStep)
	if steps > s.policy.StrengthDurationCap {
		steps = s.policy.StrengthDurationCap
	}
	if steps < 0 {
		steps = 0
	}
	return steps
}

// RecordInteraction is the incremental path: persist the interaction event
// and bump the score in place with the type's fixed increment. The bump is
// a single atomic SQL update, so concurrent interaction sources on the same
// edge cannot lose increments.
func (s *StrengthService) RecordInteraction(ctx context.Context, connID, actorID uint, itype models.InteractionType) (*models.Connection, error) {
	delta, ok := s.policy.InteractionIncrements[string(itype)]
	if !ok {
		return nil, ErrInvalidInput
	}

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
	if conn.Status != models.ConnectionStatusAccepted {
		return nil, ErrInvalidInput
	}

	if err := s.connRepo.CreateInteraction(&models.Interaction{
		ConnectionID: connID,
		ActorID:      actorID,
		Type:         itype,
	}); err != nil {
		return nil, ErrUnavailable
	}
	if err := s.connRepo.ApplyInteraction(connID, delta, s.now()); err != nil {
		return nil, ErrUnavailable
	}

	updated, err := s.connRepo.FindByID(connID)
	if err != nil {
		// The edge can be removed between the bump and the re-read.
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUnavailable
	}
	return updated, nil
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > 100 {
		return 100
	}
	return score
}
