package documents

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Service handles file uploads attached to onboarding records
type Service struct {
	store  ObjectStore
	logger *zap.Logger
}

// NewService creates a new documents service
func NewService(store ObjectStore, logger *zap.Logger) *Service {
	return &Service{store: store, logger: logger}
}

// UploadFile stores a file under the given folder and returns its URL.
// Keys are prefixed with a fresh UUID so uploads never collide.
func (s *Service) UploadFile(ctx context.Context, file io.Reader, folder, filename, contentType string) (string, error) {
	key := fmt.Sprintf("%s/%s-%s", folder, uuid.New().String(), filename)
	url, err := s.store.Upload(ctx, key, file, contentType)
	if err != nil {
		return "", err
	}
	s.logger.Info("File uploaded", zap.String("key", key))
	return url, nil
}

// GenerateContractDocument renders a signed agreement as PDF and stores it
func (s *Service) GenerateContractDocument(ctx context.Context, contractType, consultantName string, signedAt time.Time) (string, error) {
	pdf, err := RenderContract(contractType, consultantName, signedAt)
	if err != nil {
		return "", err
	}
	key := fmt.Sprintf("contracts/%s-%s.pdf", contractType, uuid.New().String())
	return s.store.Upload(ctx, key, bytes.NewReader(pdf), "application/pdf")
}
