package risk

import (
	"reflect"
	"testing"

	"github.com/google/uuid"

	"github.com/basira/care-server/internal/domain/registry"
)

func TestScore_HighRiskProfile(t *testing.T) {
	// epilepsy 30 + mobility 25; fallRisk and bedridden share the mobility rule
	snap := registry.Snapshot{
		SubjectID: uuid.New(),
		Alerts:    []string{"epilepsy", "fallRisk"},
		Bedridden: true,
	}

	score, factors := Score(snap, DefaultRuleSet())
	if score != 55 {
		t.Fatalf("expected score 55, got %d", score)
	}
	if len(factors) != 2 {
		t.Fatalf("expected 2 factors, got %d: %v", len(factors), factors)
	}
}

func TestScore_CriticalProfile(t *testing.T) {
	snap := registry.Snapshot{
		SubjectID:   uuid.New(),
		Alerts:      []string{"epilepsy", "fallRisk"},
		Bedridden:   true,
		Psychiatric: true,
	}

	score, _ := Score(snap, DefaultRuleSet())
	// epilepsy 30 + mobility 25 + psychiatric 10 = 65
	if score != 65 {
		t.Fatalf("expected score 65, got %d", score)
	}
}

func TestScore_EmptySnapshot(t *testing.T) {
	score, factors := Score(registry.Snapshot{}, DefaultRuleSet())
	if score != 0 {
		t.Fatalf("expected score 0 for empty snapshot, got %d", score)
	}
	if factors != nil {
		t.Fatalf("expected no factors, got %v", factors)
	}
}

func TestScore_CustomRuleTable(t *testing.T) {
	bedridden := true
	rules, err := Compile([]RuleSpec{
		{ID: "epilepsy", Label: "Epilepsy", Weight: 30, When: Condition{AnyAlert: []string{"epilepsy"}}},
		{ID: "fall-risk", Label: "Fall risk", Weight: 25, When: Condition{AnyAlert: []string{"fallRisk"}}},
		{ID: "bedridden", Label: "Bedridden", Weight: 25, When: Condition{Bedridden: &bedridden}},
	})
	if err != nil {
		t.Fatal(err)
	}

	snap := registry.Snapshot{Alerts: []string{"epilepsy", "fallRisk"}, Bedridden: true}
	score, factors := Score(snap, rules)
	if score != 80 {
		t.Fatalf("expected score 80, got %d", score)
	}
	if len(factors) != 3 {
		t.Fatalf("expected 3 factors, got %v", factors)
	}
	if level := DefaultThresholds().Classify(score); level != LevelCritical {
		t.Fatalf("expected critical, got %q", level)
	}
}

func TestScore_ClampedAtCeiling(t *testing.T) {
	rules := RuleSet{
		{ID: "a", Label: "A", Weight: 60, Predicate: func(registry.Snapshot) bool { return true }},
		{ID: "b", Label: "B", Weight: 60, Predicate: func(registry.Snapshot) bool { return true }},
	}
	score, _ := Score(registry.Snapshot{}, rules)
	if score != ScoreCeiling {
		t.Fatalf("expected score clamped to %d, got %d", ScoreCeiling, score)
	}
}

func TestScore_Deterministic(t *testing.T) {
	snap := registry.Snapshot{
		Diagnosis:      "Epilepsy with comorbid diabetes",
		Bedridden:      true,
		Psychiatric:    true,
		RecentIncident: true,
	}
	rules := DefaultRuleSet()

	firstScore, firstFactors := Score(snap, rules)
	for i := 0; i < 50; i++ {
		score, factors := Score(snap, rules)
		if score != firstScore {
			t.Fatalf("run %d: score %d differs from first run %d", i, score, firstScore)
		}
		if !reflect.DeepEqual(factors, firstFactors) {
			t.Fatalf("run %d: factors %v differ from first run %v", i, factors, firstFactors)
		}
	}
}

func TestScore_FactorsFollowDeclarationOrder(t *testing.T) {
	snap := registry.Snapshot{
		Alerts:         []string{"diabetic", "epilepsy"},
		RecentIncident: true,
	}
	_, factors := Score(snap, DefaultRuleSet())

	want := []string{
		"Epilepsy diagnosis (seizure risk)",
		"Diabetes (insulin monitoring)",
		"Reported incident within window",
	}
	if !reflect.DeepEqual(factors, want) {
		t.Fatalf("factors out of declaration order:\n got %v\nwant %v", factors, want)
	}
}

func TestScore_MonotoneInMatchedRules(t *testing.T) {
	base := registry.Snapshot{Alerts: []string{"epilepsy"}}
	worse := registry.Snapshot{Alerts: []string{"epilepsy"}, RecentIncident: true}

	baseScore, _ := Score(base, DefaultRuleSet())
	worseScore, _ := Score(worse, DefaultRuleSet())
	if worseScore <= baseScore {
		t.Fatalf("adding a matched factor must not lower the score: %d -> %d", baseScore, worseScore)
	}
}

func TestScore_DiagnosisMatchIsCaseInsensitive(t *testing.T) {
	snap := registry.Snapshot{Diagnosis: "Refractory EPILEPSY"}
	score, _ := Score(snap, DefaultRuleSet())
	if score != 30 {
		t.Fatalf("expected 30 from diagnosis match, got %d", score)
	}
}
