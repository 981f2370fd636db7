// Package culture supplies the environment context consulted by ethical
// rules: religious observances, communal meal times, visiting periods.
// The evaluator itself carries no calendar logic; it only reads the
// Context a Provider hands it.
package culture

import (
	"context"
	"time"
)

// Context is the environment snapshot passed into ethical rule predicates.
type Context struct {
	// Observance names the active religious or cultural observance
	// ("ramadan", "eid", ...), empty when none is active.
	Observance string
	// CommunalMealtime is true during shared meals, when removal from the
	// group carries extra social cost.
	CommunalMealtime bool
	// VisitingHours is true while family visits are allowed.
	VisitingHours bool
}

// Provider resolves the current environment context. Implementations may
// consult a Hijri calendar service or the facility's activity schedule.
type Provider interface {
	CulturalContext(ctx context.Context) (Context, error)
}

// StaticProvider serves a fixed observance window from configuration. It is
// the fallback for deployments without a calendar integration.
type StaticProvider struct {
	Observance string
	Start      time.Time
	End        time.Time
	Now        func() time.Time
}

func NewStaticProvider(observance string, start, end time.Time) *StaticProvider {
	return &StaticProvider{Observance: observance, Start: start, End: end, Now: time.Now}
}

func (p *StaticProvider) CulturalContext(ctx context.Context) (Context, error) {
	now := p.Now()
	out := Context{}
	if p.Observance != "" && !now.Before(p.Start) && now.Before(p.End) {
		out.Observance = p.Observance
	}
	return out, nil
}

// NoneProvider always reports an empty context.
type NoneProvider struct{}

func (NoneProvider) CulturalContext(ctx context.Context) (Context, error) {
	return Context{}, nil
}
