package catalog

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Repository provides read-only queries over the candidate catalogs.
// Retrieval order (newest first) is stable and is what the recommendation
// engine presents; scoring does not re-sort it.
type Repository interface {
	ListPublishedServices(ctx context.Context, limit int) ([]Service, error)
	ListAvailableConsultants(ctx context.Context, limit int) ([]ConsultantProfile, error)
}

// PostgresRepository implements Repository using PostgreSQL
type PostgresRepository struct {
	db *sqlx.DB
}

// NewPostgresRepository creates a new catalog repository
func NewPostgresRepository(db *sqlx.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) ListPublishedServices(ctx context.Context, limit int) ([]Service, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, name, category, description, industries, status, created_at
		FROM catalog_services
		WHERE status = $1
		ORDER BY created_at DESC
		LIMIT $2`

	services := []Service{}
	if err := r.db.SelectContext(ctx, &services, query, ServicePublished, limit); err != nil {
		return nil, fmt.Errorf("failed to list published services: %w", err)
	}
	return services, nil
}

func (r *PostgresRepository) ListAvailableConsultants(ctx context.Context, limit int) ([]ConsultantProfile, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, user_id, display_name, headline, skills, industries, hourly_rate, availability, created_at
		FROM consultant_profiles
		WHERE availability = $1
		ORDER BY created_at DESC
		LIMIT $2`

	profiles := []ConsultantProfile{}
	if err := r.db.SelectContext(ctx, &profiles, query, AvailabilityAvailable, limit); err != nil {
		return nil, fmt.Errorf("failed to list available consultants: %w", err)
	}
	return profiles, nil
}
