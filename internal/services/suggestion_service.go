package services

import (
	"context"
	"errors"
	"sort"

	"connect-service/internal/config"
	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// SuggestionService computes mutual connections and ranks non-connected
// candidates by relevance.
type SuggestionService struct {
	connRepo postgres.ConnectionRepository
	userRepo postgres.UserRepository
	policy   config.PolicyConfig
}

func NewSuggestionService(connRepo postgres.ConnectionRepository, userRepo postgres.UserRepository, policy config.PolicyConfig) *SuggestionService {
	return &SuggestionService{
		connRepo: connRepo,
		userRepo: userRepo,
		policy:   policy,
	}
}

// MutualConnections intersects the accepted-neighbor sets of the two users.
// Two indexed neighbor queries, O(deg(x) + deg(y)).
func (s *SuggestionService) MutualConnections(ctx context.Context, userX, userY uint) ([]uint, error) {
	neighborsX, err := s.connRepo.AcceptedNeighborIDs(userX)
	if err != nil {
		return nil, ErrUnavailable
	}
	neighborsY, err := s.connRepo.AcceptedNeighborIDs(userY)
	if err != nil {
		return nil, ErrUnavailable
	}
	mutual := intersectIDs(neighborsX, neighborsY)

	// Neither endpoint counts as its own mutual connection.
	filtered := mutual[:0]
	for _, id := range mutual {
		if id != userX && id != userY {
			filtered = append(filtered, id)
		}
	}
	return filtered, nil
}

// MutualConnectionProfiles resolves mutual connection IDs to profiles.
func (s *SuggestionService) MutualConnectionProfiles(ctx context.Context, userX, userY uint) ([]models.UserResponse, error) {
	ids, err := s.MutualConnections(ctx, userX, userY)
	if err != nil {
		return nil, err
	}
	users, err := s.userRepo.FindByIDs(ids)
	if err != nil {
		return nil, ErrUnavailable
	}
	responses := make([]models.UserResponse, 0, len(users))
	for i := range users {
		responses = append(responses, models.NewUserResponse(&users[i]))
	}
	return responses, nil
}

// AreConnected reports whether an accepted edge exists between the users.
func (s *SuggestionService) AreConnected(ctx context.Context, userX, userY uint) (bool, error) {
	conn, err := s.connRepo.FindByPair(userX, userY)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, ErrUnavailable
	}
	return conn.Status == models.ConnectionStatusAccepted, nil
}

// Suggestions ranks users the viewer has no edge with (any status) by
//
//	score = w1*mutuals + w2*[sameLocation] + w3*[sameType] + w4*commonSkills + w5*[verified]
//
// dropping non-positive scores, sorted score desc then newest profile first.
func (s *SuggestionService) Suggestions(ctx context.Context, viewerID uint, limit int) ([]models.Suggestion, error) {
	viewer, err := s.userRepo.FindByID(viewerID)
	if err != nil {
		return nil, ErrUnavailable
	}

	neighbors, err := s.connRepo.NeighborIDsAnyStatus(viewerID)
	if err != nil {
		return nil, ErrUnavailable
	}
	exclude := append(neighbors, viewerID)

	candidates, err := s.userRepo.FindCandidates(exclude)
	if err != nil {
		return nil, ErrUnavailable
	}

	viewerNeighbors, err := s.connRepo.AcceptedNeighborIDs(viewerID)
	if err != nil {
		return nil, ErrUnavailable
	}
	viewerSkills := toSet(viewer.Skills)

	suggestions := make([]models.Suggestion, 0, len(candidates))
	for i := range candidates {
		candidate := &candidates[i]
		candidateNeighbors, err := s.connRepo.AcceptedNeighborIDs(candidate.ID)
		if err != nil {
			return nil, ErrUnavailable
		}
		mutuals := len(intersectIDs(viewerNeighbors, candidateNeighbors))

		score := s.policy.SuggestionMutualWeight * mutuals
		if viewer.Location != "" && candidate.Location == viewer.Location {
			score += s.policy.SuggestionLocationWeight
		}
		if viewer.ProfessionalType != "" && candidate.ProfessionalType == viewer.ProfessionalType {
			score += s.policy.SuggestionTypeWeight
		}
		common := 0
		for _, skill := range candidate.Skills {
			if viewerSkills[skill] {
				common++
			}
		}
		score += s.policy.SuggestionSkillWeight * common
		if candidate.Verified() {
			score += s.policy.SuggestionVerifiedWeight
		}

		if score <= 0 {
			continue
		}
		suggestions = append(suggestions, models.Suggestion{
			User:                  models.NewUserResponse(candidate),
			Score:                 score,
			MutualConnectionCount: mutuals,
		})
	}

	sort.SliceStable(suggestions, func(i, j int) bool {
		if suggestions[i].Score != suggestions[j].Score {
			return suggestions[i].Score > suggestions[j].Score
		}
		return suggestions[i].User.CreatedAt.After(suggestions[j].User.CreatedAt)
	})

	if limit > 0 && len(suggestions) > limit {
		suggestions = suggestions[:limit]
	}
	return suggestions, nil
}

func intersectIDs(a, b []uint) []uint {
	if len(a) == 0 || len(b) == 0 {
		return nil
	}
	set := make(map[uint]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	var out []uint
	for _, id := range b {
		if _, ok := set[id]; ok {
			out = append(out, id)
			delete(set, id) // dedupe
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}
