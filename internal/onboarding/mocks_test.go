package onboarding

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/catalog"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

// memRepo is an in-memory Repository for exercising the workflow services
// without a running mongod.
type memRepo struct {
	mu          sync.Mutex
	clients     map[string]*ClientOnboarding
	consultants map[string]*ConsultantOnboarding
}

func newMemRepo() *memRepo {
	return &memRepo{
		clients:     make(map[string]*ClientOnboarding),
		consultants: make(map[string]*ConsultantOnboarding),
	}
}

func (r *memRepo) InsertClient(_ context.Context, rec *ClientOnboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clients[rec.ClientID] = rec
	return nil
}

func (r *memRepo) FindClient(_ context.Context, clientID string) (*ClientOnboarding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.clients[clientID]
	if !ok {
		return nil, ErrOnboardingNotFound
	}
	return rec, nil
}

func (r *memRepo) ReplaceClient(_ context.Context, rec *ClientOnboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.clients[rec.ClientID]; !ok {
		return ErrOnboardingNotFound
	}
	r.clients[rec.ClientID] = rec
	return nil
}

func (r *memRepo) ListClients(_ context.Context) ([]*ClientOnboarding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*ClientOnboarding{}
	for _, rec := range r.clients {
		out = append(out, rec)
	}
	return out, nil
}

func (r *memRepo) InsertConsultant(_ context.Context, rec *ConsultantOnboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.consultants[rec.ConsultantID] = rec
	return nil
}

func (r *memRepo) FindConsultant(_ context.Context, consultantID string) (*ConsultantOnboarding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.consultants[consultantID]
	if !ok {
		return nil, ErrOnboardingNotFound
	}
	return rec, nil
}

func (r *memRepo) ReplaceConsultant(_ context.Context, rec *ConsultantOnboarding) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.consultants[rec.ConsultantID]; !ok {
		return ErrOnboardingNotFound
	}
	r.consultants[rec.ConsultantID] = rec
	return nil
}

func (r *memRepo) ListConsultants(_ context.Context) ([]*ConsultantOnboarding, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []*ConsultantOnboarding{}
	for _, rec := range r.consultants {
		out = append(out, rec)
	}
	return out, nil
}

// fakeDirectory is an in-memory UserDirectory recording profile updates
type fakeDirectory struct {
	users          map[uuid.UUID]*users.User
	profileUpdates []map[string]interface{}
	updateErr      error
}

func newFakeDirectory(entries ...*users.User) *fakeDirectory {
	d := &fakeDirectory{users: make(map[uuid.UUID]*users.User)}
	for _, u := range entries {
		d.users[u.ID] = u
	}
	return d
}

func (d *fakeDirectory) FindUser(_ context.Context, id uuid.UUID) (*users.User, error) {
	u, ok := d.users[id]
	if !ok {
		return nil, users.ErrUserNotFound
	}
	return u, nil
}

func (d *fakeDirectory) UpdateProfile(_ context.Context, _ uuid.UUID, fields map[string]interface{}) error {
	if d.updateErr != nil {
		return d.updateErr
	}
	d.profileUpdates = append(d.profileUpdates, fields)
	return nil
}

// spyNotifier records every dispatched notification
type spyNotifier struct {
	mu   sync.Mutex
	sent []sentNotification
}

type sentNotification struct {
	recipient string
	kind      notifications.TemplateKind
	payload   map[string]interface{}
}

func (n *spyNotifier) Notify(_ context.Context, recipient string, kind notifications.TemplateKind, payload map[string]interface{}) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, sentNotification{recipient: recipient, kind: kind, payload: payload})
}

func (n *spyNotifier) kinds() []notifications.TemplateKind {
	n.mu.Lock()
	defer n.mu.Unlock()
	out := make([]notifications.TemplateKind, 0, len(n.sent))
	for _, s := range n.sent {
		out = append(out, s.kind)
	}
	return out
}

// stubCatalog serves fixed candidate lists to the recommendation engine
type stubCatalog struct {
	services    []catalog.Service
	consultants []catalog.ConsultantProfile
	err         error
}

func (c *stubCatalog) ListPublishedServices(_ context.Context, _ int) ([]catalog.Service, error) {
	return c.services, c.err
}

func (c *stubCatalog) ListAvailableConsultants(_ context.Context, _ int) ([]catalog.ConsultantProfile, error) {
	return c.consultants, c.err
}

func testUser(role users.Role) *users.User {
	id := uuid.New()
	return &users.User{
		ID:          id,
		Email:       id.String() + "@example.com",
		DisplayName: "Test " + string(role),
		Role:        role,
	}
}

func testLogger() *zap.Logger {
	return zap.NewNop()
}
