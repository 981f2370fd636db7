package registry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// IncidentChecker reports whether a beneficiary had a reported incident
// within the lookback window. Implemented by the incident domain.
type IncidentChecker interface {
	HadRecentIncident(ctx context.Context, beneficiaryID uuid.UUID, window time.Duration) (bool, error)
}

type Service struct {
	repo           BeneficiaryRepository
	incidents      IncidentChecker
	incidentWindow time.Duration
}

func NewService(repo BeneficiaryRepository, incidents IncidentChecker, incidentWindow time.Duration) *Service {
	return &Service{repo: repo, incidents: incidents, incidentWindow: incidentWindow}
}

func (s *Service) GetBeneficiary(ctx context.Context, id uuid.UUID) (*Beneficiary, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBeneficiaries(ctx context.Context, limit, offset int) ([]*Beneficiary, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListActive(ctx context.Context) ([]*Beneficiary, error) {
	return s.repo.ListActive(ctx)
}

// Snapshot assembles the engine view of one beneficiary, consulting the
// incident collaborator for the recent-incident flag. An incident lookup
// failure surfaces as an error rather than silently defaulting the flag.
func (s *Service) Snapshot(ctx context.Context, id uuid.UUID) (Snapshot, error) {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Snapshot{}, fmt.Errorf("load beneficiary %s: %w", id, err)
	}
	return s.snapshotOf(ctx, b)
}

// ActiveSnapshots assembles snapshots for every active beneficiary, used for
// the ward tension aggregate.
func (s *Service) ActiveSnapshots(ctx context.Context) ([]Snapshot, error) {
	items, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	snaps := make([]Snapshot, 0, len(items))
	for _, b := range items {
		snap, err := s.snapshotOf(ctx, b)
		if err != nil {
			return nil, err
		}
		snaps = append(snaps, snap)
	}
	return snaps, nil
}

func (s *Service) snapshotOf(ctx context.Context, b *Beneficiary) (Snapshot, error) {
	snap := b.ToSnapshot()
	if s.incidents != nil {
		recent, err := s.incidents.HadRecentIncident(ctx, b.ID, s.incidentWindow)
		if err != nil {
			return Snapshot{}, fmt.Errorf("incident lookup for %s: %w", b.ID, err)
		}
		snap.RecentIncident = recent
	}
	return snap, nil
}
