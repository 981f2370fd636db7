package conscience

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// LogEntry is the persisted, append-only snapshot of a finalized decision.
// The store assigns its timestamp; once written it is immutable.
type LogEntry struct {
	ID                    uuid.UUID      `db:"id" json:"id"`
	IdempotencyKey        string         `db:"idempotency_key" json:"idempotency_key"`
	BeneficiaryID         uuid.UUID      `db:"beneficiary_id" json:"beneficiary_id"`
	ProposedAction        ActionType     `db:"proposed_action" json:"proposed_action"`
	Reason                string         `db:"reason" json:"reason"`
	InitiatedBy           string         `db:"initiated_by" json:"initiated_by"`
	EthicalScore          int            `db:"ethical_score" json:"ethical_score"`
	DignityImpact         DignityImpact  `db:"dignity_impact" json:"dignity_impact"`
	AutonomyImpact        AutonomyImpact `db:"autonomy_impact" json:"autonomy_impact"`
	RequiresHumanApproval bool           `db:"requires_human_approval" json:"requires_human_approval"`
	Alternatives          []string       `db:"alternatives" json:"alternatives"`
	Reasoning             []string       `db:"reasoning" json:"reasoning"`
	Outcome               string         `db:"outcome" json:"outcome"` // approved | auto_approved
	HumanApprover         *string        `db:"human_approver" json:"human_approver,omitempty"`
	FinalAction           string         `db:"final_action" json:"final_action"`
	RecordedAt            time.Time      `db:"recorded_at" json:"recorded_at"`
}

// DecisionLog is the append-only audit store. Inserts must tolerate retries
// keyed by the caller-supplied idempotency key; no update or delete exists.
type DecisionLog interface {
	Insert(ctx context.Context, entry *LogEntry) error
	List(ctx context.Context, limit, offset int) ([]*LogEntry, int, error)
	ListByBeneficiary(ctx context.Context, beneficiaryID uuid.UUID, limit, offset int) ([]*LogEntry, int, error)
}

// Recorder serializes finalized decisions to the audit store. The write is
// the engine's single I/O boundary: it runs under a bounded timeout, and a
// failure is surfaced as an ErrPersistence warning without unwinding the
// action already taken.
type Recorder struct {
	log     DecisionLog
	timeout time.Duration
	logger  zerolog.Logger
}

func NewRecorder(log DecisionLog, timeout time.Duration, logger zerolog.Logger) *Recorder {
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Recorder{log: log, timeout: timeout, logger: logger}
}

// Record builds an immutable log entry from a finalized decision and appends
// it. The entry is a lossless superset of the decision plus finalAction and
// the approver. The entry is keyed by the decision's idempotency key, so
// recording the same decision again after a failure stores at most one row.
func (r *Recorder) Record(ctx context.Context, d Decision, finalAction string, humanApprover string) error {
	if d.Status != StatusFinalized {
		return fmt.Errorf("%w: decision must be finalized before recording, status %q", ErrValidation, d.Status)
	}
	if finalAction == "" {
		return fmt.Errorf("%w: final_action is required", ErrValidation)
	}
	if d.IdempotencyKey == "" {
		return fmt.Errorf("%w: decision idempotency key is required", ErrValidation)
	}

	entry := &LogEntry{
		IdempotencyKey:        d.IdempotencyKey,
		BeneficiaryID:         d.SubjectID,
		ProposedAction:        d.ProposedAction.Type,
		Reason:                d.ProposedAction.Reason,
		InitiatedBy:           d.ProposedAction.InitiatedBy,
		EthicalScore:          d.EthicalScore,
		DignityImpact:         d.DignityImpact,
		AutonomyImpact:        d.AutonomyImpact,
		RequiresHumanApproval: d.RequiresHumanApproval,
		Alternatives:          d.Alternatives,
		Reasoning:             d.Reasoning,
		Outcome:               "auto_approved",
		FinalAction:           finalAction,
	}
	if humanApprover != "" {
		entry.Outcome = "approved"
		approver := humanApprover
		entry.HumanApprover = &approver
	}

	writeCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	if err := r.log.Insert(writeCtx, entry); err != nil {
		r.logger.Warn().Err(err).
			Str("beneficiary_id", d.SubjectID.String()).
			Str("proposed_action", string(d.ProposedAction.Type)).
			Msg("failed to record conscience decision")
		return fmt.Errorf("%w: %v", ErrPersistence, err)
	}
	return nil
}
