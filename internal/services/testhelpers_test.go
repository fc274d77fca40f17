package services

import (
	"context"
	"sync"
	"time"

	"connect-service/internal/models"
	"connect-service/internal/repositories/postgres"

	"gorm.io/gorm"
)

// In-memory repository fakes. They mirror the store-layer contracts the
// services rely on, including the canonical-pair uniqueness rule and the
// clamped in-place strength increment.

type fakeConnectionRepo struct {
	mu           sync.Mutex
	nextID       uint
	conns        map[uint]*models.Connection
	interactions []models.Interaction
}

func newFakeConnectionRepo() *fakeConnectionRepo {
	return &fakeConnectionRepo{conns: make(map[uint]*models.Connection)}
}

func (f *fakeConnectionRepo) Create(conn *models.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, existing := range f.conns {
		if existing.UserLowID == conn.UserLowID && existing.UserHighID == conn.UserHighID {
			return postgres.ErrDuplicatePair
		}
	}
	f.nextID++
	conn.ID = f.nextID
	conn.CreatedAt = time.Now()
	copied := *conn
	f.conns[conn.ID] = &copied
	return nil
}

func (f *fakeConnectionRepo) FindByID(id uint) (*models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *conn
	return &copied, nil
}

func (f *fakeConnectionRepo) FindByPair(userA, userB uint) (*models.Connection, error) {
	low, high := models.CanonicalPair(userA, userB)
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, conn := range f.conns {
		if conn.UserLowID == low && conn.UserHighID == high {
			copied := *conn
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeConnectionRepo) Save(conn *models.Connection) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *conn
	f.conns[conn.ID] = &copied
	return nil
}

func (f *fakeConnectionRepo) Delete(id uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.conns, id)
	kept := f.interactions[:0]
	for _, i := range f.interactions {
		if i.ConnectionID != id {
			kept = append(kept, i)
		}
	}
	f.interactions = kept
	return nil
}

func (f *fakeConnectionRepo) ListForUser(userID uint, status models.ConnectionStatus) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Connection
	for _, conn := range f.conns {
		if conn.Involves(userID) && conn.Status == status {
			out = append(out, *conn)
		}
	}
	return out, nil
}

func (f *fakeConnectionRepo) ListPendingReceived(userID uint) ([]models.Connection, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.Connection
	for _, conn := range f.conns {
		if conn.Involves(userID) && conn.InitiatorID != userID && conn.Status == models.ConnectionStatusPending {
			out = append(out, *conn)
		}
	}
	return out, nil
}

func (f *fakeConnectionRepo) AcceptedNeighborIDs(userID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uint
	for _, conn := range f.conns {
		if conn.Involves(userID) && conn.Status == models.ConnectionStatusAccepted {
			out = append(out, conn.OtherEnd(userID))
		}
	}
	return out, nil
}

func (f *fakeConnectionRepo) NeighborIDsAnyStatus(userID uint) ([]uint, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []uint
	for _, conn := range f.conns {
		if conn.Involves(userID) {
			out = append(out, conn.OtherEnd(userID))
		}
	}
	return out, nil
}

func (f *fakeConnectionRepo) ApplyInteraction(connID uint, delta int, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[connID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conn.Strength += delta
	if conn.Strength > 100 {
		conn.Strength = 100
	}
	conn.LastInteractionAt = &at
	return nil
}

func (f *fakeConnectionRepo) CreateInteraction(interaction *models.Interaction) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	interaction.CreatedAt = time.Now()
	f.interactions = append(f.interactions, *interaction)
	return nil
}

func (f *fakeConnectionRepo) InteractionCountsSince(connID uint, since time.Time) (map[models.InteractionType]int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	counts := make(map[models.InteractionType]int64)
	for _, i := range f.interactions {
		if i.ConnectionID == connID && !i.CreatedAt.Before(since) {
			counts[i.Type]++
		}
	}
	return counts, nil
}

func (f *fakeConnectionRepo) UpdateStrength(connID uint, strength int, trend models.StrengthTrend, at time.Time) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	conn, ok := f.conns[connID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	conn.Strength = strength
	conn.Trend = trend
	conn.LastCalculatedAt = &at
	return nil
}

type fakeUserRepo struct {
	mu     sync.Mutex
	nextID uint
	users  map[uint]*models.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{users: make(map[uint]*models.User)}
}

func (f *fakeUserRepo) Create(user *models.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	user.ID = f.nextID
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now()
	}
	copied := *user
	f.users[user.ID] = &copied
	return nil
}

func (f *fakeUserRepo) FindByID(id uint) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *user
	return &copied, nil
}

func (f *fakeUserRepo) FindByIDs(ids []uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.User
	for _, id := range ids {
		if user, ok := f.users[id]; ok {
			out = append(out, *user)
		}
	}
	return out, nil
}

func (f *fakeUserRepo) FindByEmail(email string) (*models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, user := range f.users {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) FindCandidates(excludeIDs []uint) ([]models.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	excluded := make(map[uint]bool, len(excludeIDs))
	for _, id := range excludeIDs {
		excluded[id] = true
	}
	var out []models.User
	for _, user := range f.users {
		if !excluded[user.ID] {
			out = append(out, *user)
		}
	}
	return out, nil
}

type fakeIntroductionRepo struct {
	mu     sync.Mutex
	nextID uint
	reqs   map[uint]*models.IntroductionRequest
}

func newFakeIntroductionRepo() *fakeIntroductionRepo {
	return &fakeIntroductionRepo{reqs: make(map[uint]*models.IntroductionRequest)}
}

func (f *fakeIntroductionRepo) Create(req *models.IntroductionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	req.ID = f.nextID
	req.CreatedAt = time.Now()
	copied := *req
	f.reqs[req.ID] = &copied
	return nil
}

func (f *fakeIntroductionRepo) FindByID(id uint) (*models.IntroductionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	req, ok := f.reqs[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *req
	return &copied, nil
}

func (f *fakeIntroductionRepo) Save(req *models.IntroductionRequest) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	copied := *req
	f.reqs[req.ID] = &copied
	return nil
}

func (f *fakeIntroductionRepo) HasActiveRequest(requesterID, targetID uint, now time.Time) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, req := range f.reqs {
		if req.RequesterID != requesterID || req.TargetID != targetID {
			continue
		}
		if req.Status == models.IntroductionStatusDeclined || req.Status == models.IntroductionStatusCancelled {
			continue
		}
		if req.ExpiresAt.After(now) {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeIntroductionRepo) ListByUser(userID uint, role string, status models.IntroductionStatus) ([]models.IntroductionRequest, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []models.IntroductionRequest
	for _, req := range f.reqs {
		switch role {
		case "requester":
			if req.RequesterID != userID {
				continue
			}
		case "introducer":
			if req.IntroducerID != userID {
				continue
			}
		case "target":
			if req.TargetID != userID {
				continue
			}
		default:
			if req.RequesterID != userID && req.IntroducerID != userID && req.TargetID != userID {
				continue
			}
		}
		if status != "" && req.Status != status {
			continue
		}
		out = append(out, *req)
	}
	return out, nil
}

// newTestUser registers a user with the given directory attributes.
func newTestUser(repo *fakeUserRepo, username string, ptype models.ProfessionalType, location string, skills ...string) *models.User {
	user := &models.User{
		Username:         username,
		Email:            username + "@connect.test",
		FullName:         username,
		ProfessionalType: ptype,
		Location:         location,
		Skills:           skills,
		VerificationTier: models.VerificationTierBasic,
	}
	_ = repo.Create(user)
	return user
}

func contextTODO() context.Context {
	return context.Background()
}

// connectUsers creates and accepts an edge between two users.
func connectUsers(t interface{ Fatalf(string, ...any) }, svc *ConnectionService, initiator, recipient uint) *models.Connection {
	conn, err := svc.CreateRequest(contextTODO(), initiator, recipient, "")
	if err != nil {
		t.Fatalf("create request %d->%d: %v", initiator, recipient, err)
	}
	accepted, err := svc.Accept(contextTODO(), conn.ID, recipient)
	if err != nil {
		t.Fatalf("accept %d->%d: %v", initiator, recipient, err)
	}
	return accepted
}
