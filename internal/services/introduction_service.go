package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"connect-service/internal/config"
	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// DefaultIntroTemplate is the message rendered when the introducer accepts
// without supplying their own wording.
const DefaultIntroTemplate = `Hi {{targetName}},

I'd like to introduce you to {{requesterName}}. They reached out about {{purpose}} and I thought you two should talk.

In their words: "{{requesterMessage}}"

Best,
{{introducerName}}`

var placeholderPattern = regexp.MustCompile(`\{\{(\w+)\}\}`)

// renderIntroTemplate substitutes every {{placeholder}} in a single pass
// over the template. A substituted value containing a placeholder token is
// emitted literally rather than re-expanded.
func renderIntroTemplate(template string, values map[string]string) string {
	return placeholderPattern.ReplaceAllStringFunc(template, func(match string) string {
		key := match[2 : len(match)-2]
		if value, ok := values[key]; ok {
			return value
		}
		return match
	})
}

// IntroductionService coordinates the three-party brokering workflow:
// requester asks introducer to introduce them to target.
type IntroductionService struct {
	introRepo   postgres.IntroductionRepository
	userRepo    postgres.UserRepository
	suggestions *SuggestionService
	events      *EventService
	policy      config.PolicyConfig
	now         func() time.Time
}

func NewIntroductionService(
	introRepo postgres.IntroductionRepository,
	userRepo postgres.UserRepository,
	suggestions *SuggestionService,
	events *EventService,
	policy config.PolicyConfig,
) *IntroductionService {
	return &IntroductionService{
		introRepo:   introRepo,
		userRepo:    userRepo,
		suggestions: suggestions,
		events:      events,
		policy:      policy,
		now:         time.Now,
	}
}

const (
	maxIntroSubjectLen = 200
	maxIntroMessageLen = 1000
)

// Request creates a pending introduction request after checking the four
// eligibility guards in order: distinct participants, introducer connected
// to both sides, requester and target not yet connected, no live duplicate.
func (s *IntroductionService) Request(ctx context.Context, requesterID uint, req *models.CreateIntroductionRequest) (*models.IntroductionRequest, error) {
	if requesterID == req.IntroducerID || requesterID == req.TargetID || req.IntroducerID == req.TargetID {
		return nil, ErrInvalidParticipants
	}
	if req.Subject == "" || len(req.Subject) > maxIntroSubjectLen ||
		req.Message == "" || len(req.Message) > maxIntroMessageLen ||
		!models.ValidPurpose(req.Purpose) {
		return nil, ErrInvalidInput
	}

	withRequester, err := s.suggestions.AreConnected(ctx, req.IntroducerID, requesterID)
	if err != nil {
		return nil, err
	}
	withTarget, err := s.suggestions.AreConnected(ctx, req.IntroducerID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if !withRequester || !withTarget {
		return nil, ErrIntroducerNotEligible
	}

	connected, err := s.suggestions.AreConnected(ctx, requesterID, req.TargetID)
	if err != nil {
		return nil, err
	}
	if connected {
		return nil, ErrAlreadyConnected
	}

	now := s.now()
	exists, err := s.introRepo.HasActiveRequest(requesterID, req.TargetID, now)
	if err != nil {
		return nil, ErrUnavailable
	}
	if exists {
		return nil, ErrDuplicateRequest
	}

	record := &models.IntroductionRequest{
		RequesterID:  requesterID,
		IntroducerID: req.IntroducerID,
		TargetID:     req.TargetID,
		Subject:      req.Subject,
		Message:      req.Message,
		Purpose:      req.Purpose,
		Status:       models.IntroductionStatusPending,
		ExpiresAt:    now.Add(s.policy.IntroductionExpiry),
	}
	if err := s.introRepo.Create(record); err != nil {
		return nil, ErrUnavailable
	}

	s.events.IntroductionRequested(ctx, record)
	return record, nil
}

// Respond is the introducer's one-time accept or decline. Accepting renders
// the introduction message and completes the record in the same step.
func (s *IntroductionService) Respond(ctx context.Context, reqID, actorID uint, resp *models.RespondIntroductionRequest) (*models.IntroductionRequest, error) {
	record, err := s.find(reqID)
	if err != nil {
		return nil, err
	}
	if record.IntroducerID != actorID {
		return nil, ErrForbidden
	}
	now := s.now()
	if !record.IsRespondable(now) {
		return nil, ErrNotRespondable
	}

	record.IntroducerResponse = resp.Message
	record.IntroducerRespondedAt = &now

	switch resp.Action {
	case "decline":
		record.Status = models.IntroductionStatusDeclined
	case "accept":
		if err := s.completeIntroduction(record, resp.CustomIntroMessage, now); err != nil {
			return nil, err
		}
	default:
		return nil, ErrInvalidInput
	}

	if err := s.introRepo.Save(record); err != nil {
		return nil, ErrUnavailable
	}

	s.events.IntroductionResponded(ctx, record)
	return record, nil
}

func (s *IntroductionService) completeIntroduction(record *models.IntroductionRequest, customTemplate string, now time.Time) error {
	participants, err := s.userRepo.FindByIDs([]uint{record.RequesterID, record.IntroducerID, record.TargetID})
	if err != nil || len(participants) != 3 {
		return ErrUnavailable
	}
	names := make(map[uint]string, 3)
	for i := range participants {
		names[participants[i].ID] = participants[i].DisplayName()
	}

	template := DefaultIntroTemplate
	if customTemplate != "" {
		template = customTemplate
	}
	values := map[string]string{
		"requesterName":    names[record.RequesterID],
		"introducerName":   names[record.IntroducerID],
		"targetName":       names[record.TargetID],
		"purpose":          string(record.Purpose),
		"requesterMessage": record.Message,
	}

	record.IntroSubject = fmt.Sprintf("Introduction: %s", record.Subject)
	record.IntroMessage = renderIntroTemplate(template, values)
	record.IntroSentAt = &now
	record.Status = models.IntroductionStatusCompleted
	return nil
}

// RecordTargetResponse stores the target's optional acknowledgment after a
// completed introduction; the record's status does not change.
func (s *IntroductionService) RecordTargetResponse(ctx context.Context, reqID, actorID uint, resp *models.TargetResponseRequest) (*models.IntroductionRequest, error) {
	record, err := s.find(reqID)
	if err != nil {
		return nil, err
	}
	if record.TargetID != actorID {
		return nil, ErrForbidden
	}
	if record.Status != models.IntroductionStatusCompleted {
		return nil, ErrNotYetIntroduced
	}

	now := s.now()
	accepted := resp.Accepted
	record.TargetAccepted = &accepted
	record.TargetResponse = resp.Message
	record.TargetRespondedAt = &now

	if err := s.introRepo.Save(record); err != nil {
		return nil, ErrUnavailable
	}
	return record, nil
}

// Cancel lets the requester withdraw a still-pending request.
func (s *IntroductionService) Cancel(ctx context.Context, reqID, actorID uint) (*models.IntroductionRequest, error) {
	record, err := s.find(reqID)
	if err != nil {
		return nil, err
	}
	if record.RequesterID != actorID {
		return nil, ErrForbidden
	}
	if record.Status != models.IntroductionStatusPending || record.IsExpired(s.now()) {
		return nil, ErrNotCancellable
	}

	record.Status = models.IntroductionStatusCancelled
	if err := s.introRepo.Save(record); err != nil {
		return nil, ErrUnavailable
	}
	return record, nil
}

// ListByUser returns introduction requests the user participates in,
// optionally filtered by role and status.
func (s *IntroductionService) ListByUser(ctx context.Context, userID uint, role string, status models.IntroductionStatus) ([]models.IntroductionResponse, error) {
	records, err := s.introRepo.ListByUser(userID, role, status)
	if err != nil {
		return nil, ErrUnavailable
	}
	responses := make([]models.IntroductionResponse, 0, len(records))
	for i := range records {
		responses = append(responses, models.NewIntroductionResponse(&records[i]))
	}
	return responses, nil
}

func (s *IntroductionService) find(reqID uint) (*models.IntroductionRequest, error) {
	record, err := s.introRepo.FindByID(reqID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, ErrUnavailable
	}
	return record, nil
}
