package conscience

import (
	"github.com/basira/care-server/internal/domain/registry"
	"github.com/basira/care-server/internal/platform/culture"
)

const scoreCeiling = 100

// EngineConfig holds the evaluator's tuning. It is constructed once at
// startup and never mutated.
type EngineConfig struct {
	// Scores below ApprovalThreshold gate the action behind human review.
	ApprovalThreshold int
	// Scores above MinorConcernAt classify as neutral dignity impact.
	MinorConcernAt int
	// DignityPreserving lists action types allowed a positive impact when
	// no principle objects (routine-care style actions).
	DignityPreserving map[ActionType]bool
}

// DefaultEngineConfig mirrors the facility's standing policy: review below
// 60, minor concern above 70, and only routine care presumed
// dignity-preserving.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		ApprovalThreshold: 60,
		MinorConcernAt:    70,
		DignityPreserving: map[ActionType]bool{ActionRoutineCare: true},
	}
}

// Evaluator applies an ethical rule set to proposed actions.
// It is pure, stateless, and safe for concurrent use.
type Evaluator struct {
	cfg   EngineConfig
	rules EthicalRuleSet
}

func NewEvaluator(cfg EngineConfig, rules EthicalRuleSet) *Evaluator {
	return &Evaluator{cfg: cfg, rules: rules}
}

// Evaluate scores the proposed action against the subject's snapshot and the
// environment context. It starts from the ceiling, subtracts each matching
// rule's penalty in declaration order, clamps to [0,100], and derives the
// impact classifications and the approval gate. The gate is a pure function
// of the score and the configured threshold. An empty rule set yields the
// ceiling score and no gate.
func (e *Evaluator) Evaluate(action ProposedAction, snap registry.Snapshot, env culture.Context) Decision {
	score := scoreCeiling
	var alternatives, reasoning []string
	autonomy := AutonomyPreserved

	for _, rule := range e.rules {
		if rule.Predicate == nil || !rule.Predicate(action, snap, env) {
			continue
		}
		score -= rule.Penalty
		reasoning = append(reasoning, rule.Label)
		alternatives = append(alternatives, rule.Alternatives...)
		autonomy = worseAutonomy(autonomy, rule.Autonomy)
	}

	score = clampScore(score)

	d := Decision{
		ProposedAction:        action,
		SubjectID:             snap.SubjectID,
		EthicalScore:          score,
		DignityImpact:         e.dignityImpact(action.Type, score),
		AutonomyImpact:        autonomy,
		RequiresHumanApproval: score < e.cfg.ApprovalThreshold,
		Alternatives:          alternatives,
		Reasoning:             reasoning,
	}
	if d.RequiresHumanApproval {
		d.Status = StatusPendingApproval
	} else {
		d.Status = StatusAutoApprovable
	}
	return d
}

// Reconcile re-derives the approval gate, lifecycle status, and dignity
// impact of an externally supplied decision from its score and the
// configured thresholds. The gate is never trusted from the wire: a caller
// cannot lower it by editing the decision's fields, only the clamped score
// and the threshold decide it.
func (e *Evaluator) Reconcile(d Decision) Decision {
	d.EthicalScore = clampScore(d.EthicalScore)
	d.RequiresHumanApproval = d.EthicalScore < e.cfg.ApprovalThreshold
	d.DignityImpact = e.dignityImpact(d.ProposedAction.Type, d.EthicalScore)
	if d.RequiresHumanApproval {
		d.Status = StatusPendingApproval
	} else {
		d.Status = StatusAutoApprovable
	}
	return d
}

func clampScore(score int) int {
	if score < 0 {
		return 0
	}
	if score > scoreCeiling {
		return scoreCeiling
	}
	return score
}

// dignityImpact: positive only for an untouched score on an allow-listed
// action; neutral above the minor-concern threshold; negative otherwise.
func (e *Evaluator) dignityImpact(t ActionType, score int) DignityImpact {
	if score == scoreCeiling && e.cfg.DignityPreserving[t] {
		return DignityPositive
	}
	if score > e.cfg.MinorConcernAt {
		return DignityNeutral
	}
	return DignityNegative
}

func worseAutonomy(current, candidate AutonomyImpact) AutonomyImpact {
	rank := map[AutonomyImpact]int{AutonomyPreserved: 0, AutonomyLimited: 1, AutonomyViolated: 2}
	if rank[candidate] > rank[current] {
		return candidate
	}
	return current
}
