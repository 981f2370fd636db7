package culture

import (
	"context"
	"testing"
	"time"
)

func TestStaticProvider_Window(t *testing.T) {
	start := time.Date(2026, 2, 17, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 3, 19, 0, 0, 0, 0, time.UTC)
	p := NewStaticProvider("ramadan", start, end)

	cases := []struct {
		name string
		now  time.Time
		want string
	}{
		{"before window", start.Add(-time.Hour), ""},
		{"at start", start, "ramadan"},
		{"inside window", start.AddDate(0, 0, 10), "ramadan"},
		{"at end", end, ""},
		{"after window", end.Add(time.Hour), ""},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			p.Now = func() time.Time { return c.now }
			got, err := p.CulturalContext(context.Background())
			if err != nil {
				t.Fatalf("CulturalContext: %v", err)
			}
			if got.Observance != c.want {
				t.Fatalf("observance %q, want %q", got.Observance, c.want)
			}
		})
	}
}

func TestStaticProvider_NoObservance(t *testing.T) {
	p := NewStaticProvider("", time.Time{}, time.Time{})
	got, err := p.CulturalContext(context.Background())
	if err != nil {
		t.Fatalf("CulturalContext: %v", err)
	}
	if got.Observance != "" {
		t.Fatalf("expected empty observance, got %q", got.Observance)
	}
}

func TestNoneProvider(t *testing.T) {
	got, err := NoneProvider{}.CulturalContext(context.Background())
	if err != nil {
		t.Fatalf("CulturalContext: %v", err)
	}
	if got != (Context{}) {
		t.Fatalf("expected zero context, got %+v", got)
	}
}
