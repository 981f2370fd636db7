package risk

import (
	"context"

	"github.com/google/uuid"

	"github.com/basira/care-server/internal/domain/registry"
)

// Service wires the pure scoring core to the beneficiary registry so the
// dashboard layer can assess individuals and whole wards.
type Service struct {
	registry   *registry.Service
	rules      RuleSet
	thresholds Thresholds
}

func NewService(reg *registry.Service, rules RuleSet, thresholds Thresholds) *Service {
	return &Service{registry: reg, rules: rules, thresholds: thresholds}
}

// AssessSnapshot scores a caller-supplied snapshot. history, when present,
// holds prior scores oldest first and determines the trend; without it the
// trend is omitted.
func (s *Service) AssessSnapshot(snap registry.Snapshot, history []int) Assessment {
	score, factors := Score(snap, s.rules)
	return Assessment{
		Score:   score,
		Level:   s.thresholds.Classify(score),
		Factors: factors,
		Trend:   ComputeTrend(history),
	}
}

// Assess loads the subject's snapshot from the registry and scores it.
func (s *Service) Assess(ctx context.Context, beneficiaryID uuid.UUID) (Assessment, error) {
	snap, err := s.registry.Snapshot(ctx, beneficiaryID)
	if err != nil {
		return Assessment{}, err
	}
	return s.AssessSnapshot(snap, nil), nil
}

// WardTension recomputes the cohort aggregate on demand over all active
// beneficiaries. Nothing is stored.
func (s *Service) WardTension(ctx context.Context) (int, error) {
	snaps, err := s.registry.ActiveSnapshots(ctx)
	if err != nil {
		return 0, err
	}
	scores := make([]int, len(snaps))
	for i, snap := range snaps {
		scores[i], _ = Score(snap, s.rules)
	}
	return Aggregate(scores), nil
}
