package risk

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/basira/care-server/internal/domain/registry"
)

type mockBeneficiaryRepo struct {
	byID   map[uuid.UUID]*registry.Beneficiary
	active []*registry.Beneficiary
	err    error
}

func (m *mockBeneficiaryRepo) GetByID(ctx context.Context, id uuid.UUID) (*registry.Beneficiary, error) {
	if m.err != nil {
		return nil, m.err
	}
	b, ok := m.byID[id]
	if !ok {
		return nil, errors.New("not found")
	}
	return b, nil
}

func (m *mockBeneficiaryRepo) List(ctx context.Context, limit, offset int) ([]*registry.Beneficiary, int, error) {
	return m.active, len(m.active), m.err
}

func (m *mockBeneficiaryRepo) ListActive(ctx context.Context) ([]*registry.Beneficiary, error) {
	return m.active, m.err
}

type staticChecker bool

func (s staticChecker) HadRecentIncident(ctx context.Context, id uuid.UUID, window time.Duration) (bool, error) {
	return bool(s), nil
}

func strPtr(s string) *string { return &s }

func newTestService(repo *mockBeneficiaryRepo, recent bool) *Service {
	reg := registry.NewService(repo, staticChecker(recent), 30*24*time.Hour)
	return NewService(reg, DefaultRuleSet(), DefaultThresholds())
}

func TestService_Assess(t *testing.T) {
	id := uuid.New()
	repo := &mockBeneficiaryRepo{byID: map[uuid.UUID]*registry.Beneficiary{
		id: {
			ID:               id,
			FullName:         "Test Subject",
			Alerts:           []string{"epilepsy", "fallRisk"},
			Bedridden:        true,
			MedicalDiagnosis: strPtr("epilepsy"),
			Status:           "active",
		},
	}}
	svc := newTestService(repo, true)

	a, err := svc.Assess(context.Background(), id)
	if err != nil {
		t.Fatalf("Assess: %v", err)
	}
	// epilepsy 30 + mobility 25 + recent incident 20
	if a.Score != 75 {
		t.Fatalf("expected score 75, got %d", a.Score)
	}
	if a.Level != LevelHigh {
		t.Fatalf("expected level high, got %q", a.Level)
	}
	if a.Trend != TrendUnknown {
		t.Fatalf("expected unknown trend without history, got %q", a.Trend)
	}
}

func TestService_Assess_UnknownBeneficiary(t *testing.T) {
	svc := newTestService(&mockBeneficiaryRepo{byID: map[uuid.UUID]*registry.Beneficiary{}}, false)
	if _, err := svc.Assess(context.Background(), uuid.New()); err == nil {
		t.Fatal("expected error for unknown beneficiary")
	}
}

func TestService_AssessSnapshot_WithHistory(t *testing.T) {
	svc := newTestService(&mockBeneficiaryRepo{}, false)
	a := svc.AssessSnapshot(registry.Snapshot{Alerts: []string{"diabetic"}}, []int{10, 15, 30})
	if a.Score != 15 {
		t.Fatalf("expected score 15, got %d", a.Score)
	}
	if a.Trend != TrendIncreasing {
		t.Fatalf("expected increasing trend, got %q", a.Trend)
	}
}

func TestService_WardTension(t *testing.T) {
	repo := &mockBeneficiaryRepo{active: []*registry.Beneficiary{
		{ID: uuid.New(), Alerts: []string{"epilepsy"}, Status: "active"},            // 30
		{ID: uuid.New(), Alerts: []string{"fallRisk"}, Status: "active"},            // 25
		{ID: uuid.New(), Alerts: []string{"epilepsy", "diabetic"}, Status: "active"}, // 45
	}}
	svc := newTestService(repo, false)

	tension, err := svc.WardTension(context.Background())
	if err != nil {
		t.Fatalf("WardTension: %v", err)
	}
	// round((30 + 25 + 45) / 3) = 33
	if tension != 33 {
		t.Fatalf("expected ward tension 33, got %d", tension)
	}
}

func TestService_WardTension_EmptyWard(t *testing.T) {
	svc := newTestService(&mockBeneficiaryRepo{}, false)
	tension, err := svc.WardTension(context.Background())
	if err != nil {
		t.Fatalf("WardTension: %v", err)
	}
	if tension != 0 {
		t.Fatalf("expected 0 for empty ward, got %d", tension)
	}
}

func TestService_WardTension_RepoError(t *testing.T) {
	svc := newTestService(&mockBeneficiaryRepo{err: errors.New("db down")}, false)
	if _, err := svc.WardTension(context.Background()); err == nil {
		t.Fatal("expected error when registry fails")
	}
}
