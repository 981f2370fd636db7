package conscience

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/basira/care-server/internal/domain/registry"
	"github.com/basira/care-server/internal/platform/culture"
)

// Service ties the pure evaluator to its collaborators: the beneficiary
// registry for snapshots, the culture provider for environment context, and
// the recorder for the audit trail.
type Service struct {
	evaluator *Evaluator
	registry  *registry.Service
	provider  culture.Provider
	recorder  *Recorder
}

func NewService(evaluator *Evaluator, reg *registry.Service, provider culture.Provider, recorder *Recorder) *Service {
	if provider == nil {
		provider = culture.NoneProvider{}
	}
	return &Service{evaluator: evaluator, registry: reg, provider: provider, recorder: recorder}
}

// EvaluateAction loads the subject's snapshot and the current environment
// context and runs the evaluator. A context-provider failure degrades to an
// empty context rather than blocking the evaluation; a registry failure is
// fatal since no decision can be made about an unknown subject.
func (s *Service) EvaluateAction(ctx context.Context, action ProposedAction, beneficiaryID uuid.UUID) (Decision, error) {
	if err := action.Validate(); err != nil {
		return Decision{}, err
	}
	if beneficiaryID == uuid.Nil {
		return Decision{}, fmt.Errorf("%w: beneficiary id is required", ErrValidation)
	}

	snap, err := s.registry.Snapshot(ctx, beneficiaryID)
	if err != nil {
		return Decision{}, err
	}

	env, err := s.provider.CulturalContext(ctx)
	if err != nil {
		env = culture.Context{}
	}

	d := s.evaluator.Evaluate(action, snap, env)
	d.IdempotencyKey = uuid.NewString()
	return d, nil
}

// EvaluateSnapshot runs the evaluator over a caller-supplied snapshot,
// bypassing the registry. Used by in-process callers that already hold one.
func (s *Service) EvaluateSnapshot(ctx context.Context, action ProposedAction, snap registry.Snapshot) (Decision, error) {
	if err := action.Validate(); err != nil {
		return Decision{}, err
	}
	env, err := s.provider.CulturalContext(ctx)
	if err != nil {
		env = culture.Context{}
	}
	d := s.evaluator.Evaluate(action, snap, env)
	d.IdempotencyKey = uuid.NewString()
	return d, nil
}

// FinalizeAndRecord moves a decision to finalized and appends it to the
// audit log. The caller's copy of the decision is not trusted: the gate and
// status are re-derived from the score before finalizing, so a gated
// decision always needs its approver, including on a recording retry. A
// recording failure is returned as an ErrPersistence warning; the finalized
// decision stands regardless, and retrying with the same decision is
// duplicate-safe through its idempotency key.
func (s *Service) FinalizeAndRecord(ctx context.Context, d Decision, finalAction, humanApprover string) (Decision, error) {
	d = s.evaluator.Reconcile(d)
	if err := d.Finalize(humanApprover); err != nil {
		return d, err
	}
	if err := s.recorder.Record(ctx, d, finalAction, humanApprover); err != nil {
		return d, err
	}
	d.Status = StatusRecorded
	return d, nil
}

// ListLog exposes the append-only decision log for review.
func (s *Service) ListLog(ctx context.Context, beneficiaryID uuid.UUID, limit, offset int) ([]*LogEntry, int, error) {
	if beneficiaryID != uuid.Nil {
		return s.recorder.log.ListByBeneficiary(ctx, beneficiaryID, limit, offset)
	}
	return s.recorder.log.List(ctx, limit, offset)
}
