package incident

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Service struct {
	repo ReportRepository
	now  func() time.Time
}

func NewService(repo ReportRepository) *Service {
	return &Service{repo: repo, now: time.Now}
}

func (s *Service) CreateReport(ctx context.Context, r *Report) error {
	if r.Description == "" {
		return fmt.Errorf("description is required")
	}
	if r.OccurredAt.IsZero() {
		return fmt.Errorf("occurred_at is required")
	}
	if !validCategories[r.Category] {
		return fmt.Errorf("invalid category: %s", r.Category)
	}
	if !validSeverities[r.Severity] {
		return fmt.Errorf("invalid severity: %s", r.Severity)
	}
	if !r.Anonymous && (r.ReporterID == nil || *r.ReporterID == "") {
		return fmt.Errorf("reporter_id is required for non-anonymous reports")
	}
	if r.Anonymous {
		r.ReporterID = nil
	}
	if r.Status == "" {
		r.Status = "open"
	}
	if !validStatuses[r.Status] {
		return fmt.Errorf("invalid status: %s", r.Status)
	}
	return s.repo.Create(ctx, r)
}

func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListReports(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	return s.repo.List(ctx, limit, offset)
}

// HadRecentIncident implements registry.IncidentChecker: it reports whether
// the beneficiary has a reported incident inside the lookback window.
func (s *Service) HadRecentIncident(ctx context.Context, beneficiaryID uuid.UUID, window time.Duration) (bool, error) {
	count, err := s.repo.CountSince(ctx, beneficiaryID, s.now().Add(-window))
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
