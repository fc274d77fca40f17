package services

import (
	"strings"
	"testing"
	"time"

	"connect-service/internal/config"
	"connect-service/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type introFixture struct {
	svc       *IntroductionService
	connSvc   *ConnectionService
	introRepo *fakeIntroductionRepo
	userRepo  *fakeUserRepo

	requester  *models.User
	introducer *models.User
	target     *models.User
}

// newIntroFixture wires the usual triangle: introducer is connected to both
// requester and target, who are not connected to each other.
func newIntroFixture(t *testing.T) *introFixture {
	t.Helper()
	connRepo := newFakeConnectionRepo()
	userRepo := newFakeUserRepo()
	introRepo := newFakeIntroductionRepo()
	policy := config.DefaultPolicy()

	connSvc := NewConnectionService(connRepo, userRepo, nil)
	suggSvc := NewSuggestionService(connRepo, userRepo, policy)
	svc := NewIntroductionService(introRepo, userRepo, suggSvc, nil, policy)

	f := &introFixture{
		svc:        svc,
		connSvc:    connSvc,
		introRepo:  introRepo,
		userRepo:   userRepo,
		requester:  newTestUser(userRepo, "valentina", models.ProfessionalTypeModel, "Milan"),
		introducer: newTestUser(userRepo, "hugo", models.ProfessionalTypePhotographer, "Paris"),
		target:     newTestUser(userRepo, "amara", models.ProfessionalTypeDesigner, "London"),
	}
	connectUsers(t, connSvc, f.requester.ID, f.introducer.ID)
	connectUsers(t, connSvc, f.introducer.ID, f.target.ID)
	return f
}

func (f *introFixture) createRequest() *models.CreateIntroductionRequest {
	return &models.CreateIntroductionRequest{
		IntroducerID: f.introducer.ID,
		TargetID:     f.target.ID,
		Subject:      "Runway collaboration",
		Message:      "I admire her SS collection and would love to work together.",
		Purpose:      models.PurposeCollaboration,
	}
}

func TestIntroductionRequest(t *testing.T) {
	f := newIntroFixture(t)
	before := time.Now()

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)
	assert.Equal(t, models.IntroductionStatusPending, record.Status)
	assert.Equal(t, f.requester.ID, record.RequesterID)
	assert.Equal(t, f.introducer.ID, record.IntroducerID)
	assert.Equal(t, f.target.ID, record.TargetID)

	// Expiry is 30 days out.
	wantExpiry := before.Add(30 * 24 * time.Hour)
	assert.WithinDuration(t, wantExpiry, record.ExpiresAt, time.Minute)
}

func TestIntroductionRequestDistinctParticipants(t *testing.T) {
	f := newIntroFixture(t)

	req := f.createRequest()
	req.IntroducerID = f.requester.ID
	_, err := f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	req = f.createRequest()
	req.TargetID = f.requester.ID
	_, err = f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidParticipants)

	req = f.createRequest()
	req.TargetID = f.introducer.ID
	_, err = f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidParticipants)
}

func TestIntroductionRequestIntroducerMustKnowBothSides(t *testing.T) {
	f := newIntroFixture(t)
	stranger := newTestUser(f.userRepo, "kenji", models.ProfessionalTypeStylist, "Tokyo")

	// Introducer has no edge to the requester.
	req := f.createRequest()
	_, err := f.svc.Request(contextTODO(), stranger.ID, &models.CreateIntroductionRequest{
		IntroducerID: f.introducer.ID,
		TargetID:     f.target.ID,
		Subject:      req.Subject,
		Message:      req.Message,
		Purpose:      req.Purpose,
	})
	assert.ErrorIs(t, err, ErrIntroducerNotEligible)

	// Introducer has no edge to the target.
	req = f.createRequest()
	req.TargetID = stranger.ID
	_, err = f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrIntroducerNotEligible)
}

func TestIntroductionRequestPartiesAlreadyConnected(t *testing.T) {
	f := newIntroFixture(t)
	connectUsers(t, f.connSvc, f.requester.ID, f.target.ID)

	_, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	assert.ErrorIs(t, err, ErrAlreadyConnected)
}

func TestIntroductionRequestDuplicate(t *testing.T) {
	f := newIntroFixture(t)

	_, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	assert.ErrorIs(t, err, ErrDuplicateRequest)
}

func TestIntroductionRequestValidation(t *testing.T) {
	f := newIntroFixture(t)

	req := f.createRequest()
	req.Subject = ""
	_, err := f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = f.createRequest()
	req.Subject = strings.Repeat("s", maxIntroSubjectLen+1)
	_, err = f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = f.createRequest()
	req.Message = strings.Repeat("m", maxIntroMessageLen+1)
	_, err = f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = f.createRequest()
	req.Purpose = models.IntroductionPurpose("gossip")
	_, err = f.svc.Request(contextTODO(), f.requester.ID, req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIntroductionAcceptRendersDefaultTemplate(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	responded, err := f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{
		Action:  "accept",
		Message: "Happy to connect you two.",
	})
	require.NoError(t, err)

	assert.Equal(t, models.IntroductionStatusCompleted, responded.Status)
	assert.Equal(t, "Introduction: Runway collaboration", responded.IntroSubject)
	require.NotNil(t, responded.IntroSentAt)
	require.NotNil(t, responded.IntroducerRespondedAt)
	assert.Equal(t, "Happy to connect you two.", responded.IntroducerResponse)

	assert.Contains(t, responded.IntroMessage, "Hi amara,")
	assert.Contains(t, responded.IntroMessage, "introduce you to valentina")
	assert.Contains(t, responded.IntroMessage, "about collaboration")
	assert.Contains(t, responded.IntroMessage, record.Message)
	assert.Contains(t, responded.IntroMessage, "Best,\nhugo")
	assert.NotContains(t, responded.IntroMessage, "{{")
}

func TestIntroductionAcceptWithCustomMessage(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	responded, err := f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{
		Action:             "accept",
		CustomIntroMessage: "{{targetName}}, meet {{requesterName}}!",
	})
	require.NoError(t, err)
	assert.Equal(t, "amara, meet valentina!", responded.IntroMessage)
}

func TestIntroductionDeclineIsTerminal(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	responded, err := f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{
		Action:  "decline",
		Message: "I don't know her well enough.",
	})
	require.NoError(t, err)
	assert.Equal(t, models.IntroductionStatusDeclined, responded.Status)
	assert.Empty(t, responded.IntroMessage)

	// A declined request cannot be answered again, either way.
	_, err = f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{Action: "accept"})
	assert.ErrorIs(t, err, ErrNotRespondable)

	// But it no longer blocks a fresh request for the same pair.
	_, err = f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	assert.NoError(t, err)
}

func TestIntroductionRespondAuthorization(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	for _, actor := range []uint{f.requester.ID, f.target.ID} {
		_, err = f.svc.Respond(contextTODO(), record.ID, actor, &models.RespondIntroductionRequest{Action: "accept"})
		assert.ErrorIs(t, err, ErrForbidden)
	}

	_, err = f.svc.Respond(contextTODO(), 999, f.introducer.ID, &models.RespondIntroductionRequest{Action: "accept"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{Action: "maybe"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestIntroductionExpiry(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	// Move the service clock past the expiry window.
	f.svc.now = func() time.Time { return record.ExpiresAt.Add(time.Hour) }

	_, err = f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{Action: "accept"})
	assert.ErrorIs(t, err, ErrNotRespondable)

	_, err = f.svc.Cancel(contextTODO(), record.ID, f.requester.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	// An expired pending request no longer counts as a live duplicate.
	_, err = f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	assert.NoError(t, err)
}

func TestIntroductionTargetResponse(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	// Not answerable before the introduction is actually made.
	_, err = f.svc.RecordTargetResponse(contextTODO(), record.ID, f.target.ID, &models.TargetResponseRequest{Accepted: true})
	assert.ErrorIs(t, err, ErrNotYetIntroduced)

	_, err = f.svc.Respond(contextTODO(), record.ID, f.introducer.ID, &models.RespondIntroductionRequest{Action: "accept"})
	require.NoError(t, err)

	_, err = f.svc.RecordTargetResponse(contextTODO(), record.ID, f.requester.ID, &models.TargetResponseRequest{Accepted: true})
	assert.ErrorIs(t, err, ErrForbidden)

	updated, err := f.svc.RecordTargetResponse(contextTODO(), record.ID, f.target.ID, &models.TargetResponseRequest{
		Accepted: true,
		Message:  "Thanks, always happy to meet new talent.",
	})
	require.NoError(t, err)
	// The acknowledgment is stored without changing the record's status.
	assert.Equal(t, models.IntroductionStatusCompleted, updated.Status)
	require.NotNil(t, updated.TargetAccepted)
	assert.True(t, *updated.TargetAccepted)
	require.NotNil(t, updated.TargetRespondedAt)
}

func TestIntroductionCancel(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	_, err = f.svc.Cancel(contextTODO(), record.ID, f.introducer.ID)
	assert.ErrorIs(t, err, ErrForbidden)

	cancelled, err := f.svc.Cancel(contextTODO(), record.ID, f.requester.ID)
	require.NoError(t, err)
	assert.Equal(t, models.IntroductionStatusCancelled, cancelled.Status)

	_, err = f.svc.Cancel(contextTODO(), record.ID, f.requester.ID)
	assert.ErrorIs(t, err, ErrNotCancellable)

	// Cancelled requests free the pair for a new attempt.
	_, err = f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	assert.NoError(t, err)
}

func TestIntroductionListByUser(t *testing.T) {
	f := newIntroFixture(t)

	record, err := f.svc.Request(contextTODO(), f.requester.ID, f.createRequest())
	require.NoError(t, err)

	asRequester, err := f.svc.ListByUser(contextTODO(), f.requester.ID, "requester", "")
	require.NoError(t, err)
	require.Len(t, asRequester, 1)
	assert.Equal(t, record.ID, asRequester[0].ID)

	asIntroducer, err := f.svc.ListByUser(contextTODO(), f.introducer.ID, "introducer", "")
	require.NoError(t, err)
	assert.Len(t, asIntroducer, 1)

	// Role filter excludes other participations.
	asTargetRequester, err := f.svc.ListByUser(contextTODO(), f.target.ID, "requester", "")
	require.NoError(t, err)
	assert.Empty(t, asTargetRequester)

	completed, err := f.svc.ListByUser(contextTODO(), f.requester.ID, "", models.IntroductionStatusCompleted)
	require.NoError(t, err)
	assert.Empty(t, completed)
}

func TestRenderIntroTemplate(t *testing.T) {
	values := map[string]string{
		"a": "first",
		"b": "has {{a}} inside",
	}

	// Single pass: a substituted value containing a placeholder token is not
	// expanded again.
	out := renderIntroTemplate("{{a}} and {{b}}", values)
	assert.Equal(t, "first and has {{a}} inside", out)

	// Unknown placeholders are left intact.
	out = renderIntroTemplate("hello {{missing}}", values)
	assert.Equal(t, "hello {{missing}}", out)
}
