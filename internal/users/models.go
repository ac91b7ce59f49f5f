package users

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Role identifies which side of the marketplace a user belongs to
type Role string

const (
	RoleClient     Role = "client"
	RoleConsultant Role = "consultant"
	RoleAdmin      Role = "admin"
)

// User is a directory entry for any marketplace participant
type User struct {
	ID           uuid.UUID         `gorm:"type:uuid;primaryKey" json:"id"`
	Email        string            `gorm:"size:255;uniqueIndex;not null" json:"email"`
	PasswordHash string            `gorm:"size:255;not null" json:"-"`
	DisplayName  string            `gorm:"size:120" json:"display_name"`
	Role         Role              `gorm:"size:20;index;not null" json:"role"`
	CompanyName  string            `gorm:"size:200" json:"company_name,omitempty"`
	Industry     string            `gorm:"size:120" json:"industry,omitempty"`
	Phone        string            `gorm:"size:40" json:"phone,omitempty"`
	Profile      datatypes.JSONMap `json:"profile,omitempty"`
	IsActive     bool              `gorm:"default:true" json:"is_active"`
	CreatedAt    time.Time         `json:"created_at"`
	UpdatedAt    time.Time         `json:"updated_at"`
}

// RegisterRequest is the payload for creating a directory entry
type RegisterRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Password    string `json:"password" binding:"required,min=8"`
	DisplayName string `json:"display_name" binding:"required"`
	Role        Role   `json:"role" binding:"required"`
	CompanyName string `json:"company_name"`
	Industry    string `json:"industry"`
}
