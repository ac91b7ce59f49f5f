package users

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/datatypes"
)

var (
	// ErrEmailTaken is returned when registering with an existing email
	ErrEmailTaken = errors.New("email is already registered")
	// ErrInvalidCredentials is returned on a failed login attempt
	ErrInvalidCredentials = errors.New("invalid email or password")
)

// Service provides the user directory business logic
type Service struct {
	repo   Repository
	logger *zap.Logger
}

// NewService creates a new users service
func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Register creates a new directory entry with a hashed password
func (s *Service) Register(ctx context.Context, req RegisterRequest) (*User, error) {
	switch req.Role {
	case RoleClient, RoleConsultant, RoleAdmin:
	default:
		return nil, fmt.Errorf("invalid role %q", req.Role)
	}

	if existing, err := s.repo.FindByEmail(ctx, req.Email); err == nil && existing != nil {
		return nil, ErrEmailTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &User{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
		Role:         req.Role,
		CompanyName:  req.CompanyName,
		Industry:     req.Industry,
		IsActive:     true,
		CreatedAt:    time.Now(),
		UpdatedAt:    time.Now(),
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.logger.Info("User registered",
		zap.String("user_id", user.ID.String()),
		zap.String("role", string(user.Role)))

	return user, nil
}

// Authenticate verifies a login attempt and returns the matching user
func (s *Service) Authenticate(ctx context.Context, email, password string) (*User, error) {
	user, err := s.repo.FindByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}

// FindUser looks up a directory entry by ID
func (s *Service) FindUser(ctx context.Context, id uuid.UUID) (*User, error) {
	return s.repo.FindByID(ctx, id)
}

// UpdateProfile merges the given fields into a user's profile. Well-known
// keys update their dedicated columns; everything else lands in the
// free-form profile blob. Existing keys not present in fields are preserved.
func (s *Service) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if user.Profile == nil {
		user.Profile = datatypes.JSONMap{}
	}
	for key, value := range fields {
		switch key {
		case "company_name":
			if v, ok := value.(string); ok {
				user.CompanyName = v
			}
		case "industry":
			if v, ok := value.(string); ok {
				user.Industry = v
			}
		case "phone":
			if v, ok := value.(string); ok {
				user.Phone = v
			}
		case "display_name":
			if v, ok := value.(string); ok {
				user.DisplayName = v
			}
		default:
			user.Profile[key] = value
		}
	}
	user.UpdatedAt = time.Now()

	return s.repo.Update(ctx, user)
}
