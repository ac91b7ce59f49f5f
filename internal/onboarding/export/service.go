package export

import (
	"context"
	"fmt"
	"io"

	"consultbridge/marketplace-portal/marketplace-portal-backend/internal/onboarding"
)

// StatisticsSource supplies the aggregate view for the summary section
type StatisticsSource interface {
	Statistics(ctx context.Context) (*onboarding.Statistics, error)
}

// Service renders onboarding exports
type Service struct {
	repo  onboarding.Repository
	stats StatisticsSource
}

// NewService creates an export service
func NewService(repo onboarding.Repository, stats StatisticsSource) *Service {
	return &Service{repo: repo, stats: stats}
}

type snapshot struct {
	clients     []map[string]interface{}
	consultants []map[string]interface{}
	summary     []map[string]interface{}
}

func (s *Service) load(ctx context.Context) (*snapshot, error) {
	clients, err := s.repo.ListClients(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list client onboardings: %w", err)
	}
	consultants, err := s.repo.ListConsultants(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list consultant onboardings: %w", err)
	}
	stats, err := s.stats.Statistics(ctx)
	if err != nil {
		return nil, err
	}
	return &snapshot{
		clients:     clientRows(clients),
		consultants: consultantRows(consultants),
		summary:     summaryRows(stats),
	}, nil
}

// WriteCSV writes the full onboarding snapshot as three CSV sections
// separated by blank lines.
func (s *Service) WriteCSV(ctx context.Context, w io.Writer) error {
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}

	exporter := NewCSVExporter(w)
	if err := exporter.WriteSection(clientColumns, snap.clients); err != nil {
		return err
	}
	if err := exporter.Flush(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if err := exporter.WriteSection(consultantColumns, snap.consultants); err != nil {
		return err
	}
	if err := exporter.Flush(); err != nil {
		return err
	}
	if _, err := io.WriteString(w, "\n"); err != nil {
		return err
	}
	if err := exporter.WriteSection(summaryColumns, snap.summary); err != nil {
		return err
	}
	return exporter.Flush()
}

// WriteExcel writes the full onboarding snapshot as a three-sheet workbook
func (s *Service) WriteExcel(ctx context.Context, w io.Writer) error {
	snap, err := s.load(ctx)
	if err != nil {
		return err
	}

	exporter, err := NewExcelExporter()
	if err != nil {
		return err
	}
	defer exporter.Close()

	if err := exporter.AddSheet("Clients", clientColumns, snap.clients); err != nil {
		return err
	}
	if err := exporter.AddSheet("Consultants", consultantColumns, snap.consultants); err != nil {
		return err
	}
	if err := exporter.AddSheet("Summary", summaryColumns, snap.summary); err != nil {
		return err
	}
	return exporter.WriteTo(w)
}
