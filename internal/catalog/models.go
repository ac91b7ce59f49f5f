package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
)

// ServiceStatus represents the publication state of a catalog service
type ServiceStatus string

const (
	ServiceDraft     ServiceStatus = "draft"
	ServicePublished ServiceStatus = "published"
	ServiceArchived  ServiceStatus = "archived"
)

// Availability represents whether a consultant accepts new engagements
type Availability string

const (
	AvailabilityAvailable   Availability = "available"
	AvailabilityUnavailable Availability = "unavailable"
)

// Service is a published consulting service offering
type Service struct {
	ID          uuid.UUID      `db:"id" json:"id"`
	Name        string         `db:"name" json:"name"`
	Category    string         `db:"category" json:"category"`
	Description string         `db:"description" json:"description"`
	Industries  pq.StringArray `db:"industries" json:"industries"`
	Status      ServiceStatus  `db:"status" json:"status"`
	CreatedAt   time.Time      `db:"created_at" json:"created_at"`
}

// ConsultantProfile is the public catalog entry for a consultant
type ConsultantProfile struct {
	ID           uuid.UUID      `db:"id" json:"id"`
	UserID       uuid.UUID      `db:"user_id" json:"user_id"`
	DisplayName  string         `db:"display_name" json:"display_name"`
	Headline     string         `db:"headline" json:"headline"`
	Skills       pq.StringArray `db:"skills" json:"skills"`
	Industries   pq.StringArray `db:"industries" json:"industries"`
	HourlyRate   float64        `db:"hourly_rate" json:"hourly_rate"`
	Availability Availability   `db:"availability" json:"availability"`
	CreatedAt    time.Time      `db:"created_at" json:"created_at"`
}
