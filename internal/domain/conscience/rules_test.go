package conscience

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/basira/care-server/internal/domain/registry"
	"github.com/basira/care-server/internal/platform/culture"
)

func TestEthicalCondition_Matches(t *testing.T) {
	bedridden := true
	cond := EthicalCondition{
		Actions:    []ActionType{ActionIsolation},
		Observance: "ramadan",
		Bedridden:  &bedridden,
	}

	action := ProposedAction{Type: ActionIsolation}
	snap := registry.Snapshot{Bedridden: true}
	env := culture.Context{Observance: "ramadan"}

	if !cond.Matches(action, snap, env) {
		t.Fatal("all clauses hold, expected match")
	}
	if cond.Matches(ProposedAction{Type: ActionRestraint}, snap, env) {
		t.Fatal("action outside the list must not match")
	}
	if cond.Matches(action, snap, culture.Context{}) {
		t.Fatal("missing observance must not match")
	}
	if cond.Matches(action, registry.Snapshot{}, env) {
		t.Fatal("bedridden clause must hold")
	}
}

func TestEthicalCondition_EmptyMatchesAnyAction(t *testing.T) {
	cond := EthicalCondition{}
	for _, at := range []ActionType{ActionIsolation, ActionRestraint, ActionDischarge} {
		if !cond.Matches(ProposedAction{Type: at}, registry.Snapshot{}, culture.Context{}) {
			t.Fatalf("empty condition must match %s", at)
		}
	}
}

func TestCompileEthical_Validation(t *testing.T) {
	cases := []struct {
		name  string
		specs []EthicalRuleSpec
		want  string
	}{
		{"missing id", []EthicalRuleSpec{{Penalty: 10}}, "missing id"},
		{"duplicate id", []EthicalRuleSpec{{ID: "x"}, {ID: "x"}}, "duplicate"},
		{"negative penalty", []EthicalRuleSpec{{ID: "x", Penalty: -1}}, "negative"},
		{"invalid autonomy", []EthicalRuleSpec{{ID: "x", Autonomy: "revoked"}}, "invalid autonomy"},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := CompileEthical(c.specs)
			if err == nil || !strings.Contains(err.Error(), c.want) {
				t.Fatalf("expected error containing %q, got %v", c.want, err)
			}
		})
	}
}

func TestLoadEthicalRuleSet(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ethical.yaml")
	content := `
ethical_rules:
  - id: isolation-liberty
    label: Isolation restricts freedom.
    penalty: 30
    alternatives:
      - Intensive observation
    autonomy: limited
    when:
      actions: [ISOLATION]
  - id: restraint-last-resort
    label: Restraint is a last resort.
    penalty: 50
    autonomy: violated
    when:
      actions: [RESTRAINT]
`
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}

	rules, err := LoadEthicalRuleSet(path)
	if err != nil {
		t.Fatalf("LoadEthicalRuleSet: %v", err)
	}
	if len(rules) != 2 {
		t.Fatalf("expected 2 rules, got %d", len(rules))
	}

	d := NewEvaluator(DefaultEngineConfig(), rules).Evaluate(
		ProposedAction{Type: ActionRestraint, Reason: "r", InitiatedBy: "n"},
		registry.Snapshot{}, culture.Context{})
	if d.EthicalScore != 50 {
		t.Fatalf("expected loaded rules to score 50, got %d", d.EthicalScore)
	}
	if d.AutonomyImpact != AutonomyViolated {
		t.Fatalf("expected autonomy violated, got %q", d.AutonomyImpact)
	}
}

func TestLoadEthicalRuleSet_EmptyFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.yaml")
	if err := os.WriteFile(path, []byte("ethical_rules: []\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadEthicalRuleSet(path); err == nil {
		t.Fatal("expected error for file with no rules")
	}
}
