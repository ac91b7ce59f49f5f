package onboarding

import (
	"context"

	"github.com/google/uuid"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/catalog"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/notifications"
	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/users"
)

// UserDirectory is the identity collaborator: role precondition checks and
// best-effort profile mirroring go through it.
type UserDirectory interface {
	FindUser(ctx context.Context, id uuid.UUID) (*users.User, error)
	UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error
}

// Notifier dispatches notifications fire-and-forget. Implementations log
// delivery failures instead of returning them.
type Notifier interface {
	Notify(ctx context.Context, recipient string, kind notifications.TemplateKind, payload map[string]interface{})
}

// CandidateCatalog exposes read-only queries over published services and
// available consultants for the recommendation engine.
type CandidateCatalog interface {
	ListPublishedServices(ctx context.Context, limit int) ([]catalog.Service, error)
	ListAvailableConsultants(ctx context.Context, limit int) ([]catalog.ConsultantProfile, error)
}
