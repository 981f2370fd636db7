// Package conscience evaluates proposed protective actions against the
// facility's ethical principles, producing a bounded score, an impact
// classification, and an approval gate, and records finalized decisions to
// an append-only log.
package conscience

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// ErrValidation marks malformed or missing required input. Required identity
// fields are never silently defaulted.
var ErrValidation = errors.New("validation error")

// ErrPersistence marks an audit-store write failure. It is a warning: the
// decision already taken is never unwound by it.
var ErrPersistence = errors.New("persistence error")

// ActionType enumerates the protective actions the engine can evaluate.
type ActionType string

const (
	ActionIsolation        ActionType = "ISOLATION"
	ActionRestraint        ActionType = "RESTRAINT"
	ActionMedicationChange ActionType = "MEDICATION_CHANGE"
	ActionTransfer         ActionType = "TRANSFER"
	ActionDischarge        ActionType = "DISCHARGE"
	ActionRoutineCare      ActionType = "ROUTINE_CARE"
)

var validActionTypes = map[ActionType]bool{
	ActionIsolation: true, ActionRestraint: true, ActionMedicationChange: true,
	ActionTransfer: true, ActionDischarge: true, ActionRoutineCare: true,
}

// DignityPreservingSet parses configured action type names into the
// evaluator's allow-list. Unknown names are rejected rather than ignored.
func DignityPreservingSet(names []string) (map[ActionType]bool, error) {
	set := make(map[ActionType]bool, len(names))
	for _, name := range names {
		t := ActionType(strings.ToUpper(strings.TrimSpace(name)))
		if !validActionTypes[t] {
			return nil, fmt.Errorf("%w: unknown action type %q", ErrValidation, name)
		}
		set[t] = true
	}
	return set, nil
}

// ProposedAction is created by a staff member or automated monitor
// immediately before evaluation.
type ProposedAction struct {
	Type        ActionType `json:"type"`
	Reason      string     `json:"reason"`
	InitiatedBy string     `json:"initiated_by"`
}

// Validate fails fast on missing required fields.
func (a ProposedAction) Validate() error {
	if !validActionTypes[a.Type] {
		return fmt.Errorf("%w: unknown action type %q", ErrValidation, a.Type)
	}
	if a.Reason == "" {
		return fmt.Errorf("%w: reason is required", ErrValidation)
	}
	if a.InitiatedBy == "" {
		return fmt.Errorf("%w: initiated_by is required", ErrValidation)
	}
	return nil
}

// DignityImpact classifies how the action affects the subject's dignity.
type DignityImpact string

const (
	DignityPositive DignityImpact = "positive"
	DignityNeutral  DignityImpact = "neutral"
	DignityNegative DignityImpact = "negative"
)

// AutonomyImpact classifies how the action affects self-determination.
type AutonomyImpact string

const (
	AutonomyPreserved AutonomyImpact = "preserved"
	AutonomyLimited   AutonomyImpact = "limited"
	AutonomyViolated  AutonomyImpact = "violated"
)

// Status tracks a decision through its lifecycle:
// proposed → evaluated → {auto_approvable | pending_approval} → finalized → recorded.
// pending_approval is terminal until a human approver is supplied.
type Status string

const (
	StatusAutoApprovable  Status = "auto_approvable"
	StatusPendingApproval Status = "pending_approval"
	StatusFinalized       Status = "finalized"
	StatusRecorded        Status = "recorded"
)

// Decision is the engine's structured judgment on one proposed action.
// It is derived, immutable in substance once evaluated; only its lifecycle
// status advances.
type Decision struct {
	ProposedAction ProposedAction `json:"proposed_action"`
	SubjectID      uuid.UUID      `json:"subject_id"`
	// IdempotencyKey is assigned once at evaluation time and carried through
	// finalization, so recording the same decision twice stores one entry.
	IdempotencyKey        string         `json:"idempotency_key"`
	EthicalScore          int            `json:"ethical_score"`
	DignityImpact         DignityImpact  `json:"dignity_impact"`
	AutonomyImpact        AutonomyImpact `json:"autonomy_impact"`
	RequiresHumanApproval bool           `json:"requires_human_approval"`
	Alternatives          []string       `json:"alternatives"`
	Reasoning             []string       `json:"reasoning"`
	Status                Status         `json:"status"`
}

// Finalize advances the decision toward recording. A gated decision cannot
// be finalized without a human approver; ambiguity biases toward review,
// never toward auto-approval.
func (d *Decision) Finalize(approver string) error {
	switch d.Status {
	case StatusAutoApprovable:
		d.Status = StatusFinalized
		return nil
	case StatusPendingApproval:
		if approver == "" {
			return fmt.Errorf("%w: decision requires a human approver", ErrValidation)
		}
		d.Status = StatusFinalized
		return nil
	default:
		return fmt.Errorf("%w: cannot finalize decision in status %q", ErrValidation, d.Status)
	}
}
