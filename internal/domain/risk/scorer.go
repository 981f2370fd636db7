package risk

import "github.com/basira/care-server/internal/domain/registry"

const (
	// ScoreFloor and ScoreCeiling bound every assessment score.
	ScoreFloor   = 0
	ScoreCeiling = 100
)

// Score evaluates every rule against the snapshot, summing weights of
// matching rules and collecting their labels in declaration order. The
// result is clamped to [ScoreFloor, ScoreCeiling]. Pure: no I/O, no
// randomness, no mutation of the snapshot.
func Score(snap registry.Snapshot, rules RuleSet) (int, []string) {
	score := 0
	var factors []string
	for _, rule := range rules {
		if rule.Predicate != nil && rule.Predicate(snap) {
			score += rule.Weight
			factors = append(factors, rule.Label)
		}
	}
	return clamp(score), factors
}

func clamp(score int) int {
	if score < ScoreFloor {
		return ScoreFloor
	}
	if score > ScoreCeiling {
		return ScoreCeiling
	}
	return score
}
