package incident

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
)

type stubReportRepo struct {
	created []*Report
	counts  map[uuid.UUID]int
	since   time.Time
	err     error
}

func (s *stubReportRepo) Create(ctx context.Context, r *Report) error {
	if s.err != nil {
		return s.err
	}
	r.ID = uuid.New()
	s.created = append(s.created, r)
	return nil
}

func (s *stubReportRepo) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	for _, r := range s.created {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, errors.New("not found")
}

func (s *stubReportRepo) List(ctx context.Context, limit, offset int) ([]*Report, int, error) {
	return s.created, len(s.created), s.err
}

func (s *stubReportRepo) CountSince(ctx context.Context, beneficiaryID uuid.UUID, since time.Time) (int, error) {
	if s.err != nil {
		return 0, s.err
	}
	s.since = since
	return s.counts[beneficiaryID], nil
}

func strPtr(s string) *string { return &s }

func validReport() *Report {
	id := uuid.New()
	return &Report{
		BeneficiaryID: &id,
		Category:      "fall",
		Severity:      "moderate",
		Description:   "slipped near the bathroom",
		OccurredAt:    time.Now().Add(-time.Hour),
		ReporterID:    strPtr("nurse-1"),
	}
}

func TestCreateReport(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewService(repo)

	r := validReport()
	if err := svc.CreateReport(context.Background(), r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if r.ID == uuid.Nil {
		t.Fatal("expected assigned id")
	}
	if r.Status != "open" {
		t.Fatalf("expected default status open, got %q", r.Status)
	}
}

func TestCreateReport_Validation(t *testing.T) {
	svc := NewService(&stubReportRepo{})

	cases := []struct {
		name   string
		mutate func(*Report)
	}{
		{"missing description", func(r *Report) { r.Description = "" }},
		{"missing occurred_at", func(r *Report) { r.OccurredAt = time.Time{} }},
		{"invalid category", func(r *Report) { r.Category = "alien_abduction" }},
		{"invalid severity", func(r *Report) { r.Severity = "apocalyptic" }},
		{"invalid status", func(r *Report) { r.Status = "pending" }},
		{"missing reporter", func(r *Report) { r.ReporterID = nil }},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			r := validReport()
			c.mutate(r)
			if err := svc.CreateReport(context.Background(), r); err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCreateReport_AnonymousStripsReporter(t *testing.T) {
	repo := &stubReportRepo{}
	svc := NewService(repo)

	r := validReport()
	r.Anonymous = true
	r.ReporterID = strPtr("nurse-1")
	if err := svc.CreateReport(context.Background(), r); err != nil {
		t.Fatalf("CreateReport: %v", err)
	}
	if r.ReporterID != nil {
		t.Fatal("anonymous reports must not retain the reporter id")
	}
}

func TestCreateReport_AnonymousWithoutReporter(t *testing.T) {
	svc := NewService(&stubReportRepo{})
	r := validReport()
	r.Anonymous = true
	r.ReporterID = nil
	if err := svc.CreateReport(context.Background(), r); err != nil {
		t.Fatalf("anonymous report must not require a reporter: %v", err)
	}
}

func TestHadRecentIncident(t *testing.T) {
	id := uuid.New()
	repo := &stubReportRepo{counts: map[uuid.UUID]int{id: 2}}
	svc := NewService(repo)

	fixed := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	recent, err := svc.HadRecentIncident(context.Background(), id, 30*24*time.Hour)
	if err != nil {
		t.Fatalf("HadRecentIncident: %v", err)
	}
	if !recent {
		t.Fatal("expected recent incident")
	}
	wantSince := fixed.Add(-30 * 24 * time.Hour)
	if !repo.since.Equal(wantSince) {
		t.Fatalf("window start %v, want %v", repo.since, wantSince)
	}

	recent, err = svc.HadRecentIncident(context.Background(), uuid.New(), 30*24*time.Hour)
	if err != nil {
		t.Fatalf("HadRecentIncident: %v", err)
	}
	if recent {
		t.Fatal("expected no incident for subject without reports")
	}
}

func TestHadRecentIncident_RepoError(t *testing.T) {
	svc := NewService(&stubReportRepo{err: errors.New("db down")})
	if _, err := svc.HadRecentIncident(context.Background(), uuid.New(), time.Hour); err == nil {
		t.Fatal("expected error when the store fails")
	}
}
