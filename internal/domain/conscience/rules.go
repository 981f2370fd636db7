package conscience

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/basira/care-server/internal/domain/registry"
	"github.com/basira/care-server/internal/platform/culture"
)

// EthicalRule is a named, weighted principle. When its predicate matches the
// (action, snapshot, environment) triple, its penalty is subtracted from the
// ceiling score and its label and alternatives carry into the decision.
type EthicalRule struct {
	ID           string
	Label        string
	Penalty      int
	Alternatives []string
	// Autonomy marks how far the rule's concern restricts self-determination;
	// the worst matched value classifies the decision.
	Autonomy  AutonomyImpact
	Predicate func(ProposedAction, registry.Snapshot, culture.Context) bool
}

// EthicalRuleSet is an ordered collection of principles; evaluation follows
// declaration order.
type EthicalRuleSet []EthicalRule

// EthicalCondition is the declarative predicate form. Actions narrows the
// rule to specific action types (empty = any); the remaining clauses must
// all hold when set.
type EthicalCondition struct {
	Actions    []ActionType `yaml:"actions"`
	Observance string       `yaml:"observance"`
	AnyAlert   []string     `yaml:"any_alert"`
	Bedridden  *bool        `yaml:"bedridden"`
}

func (c EthicalCondition) Matches(action ProposedAction, snap registry.Snapshot, env culture.Context) bool {
	if len(c.Actions) > 0 {
		matched := false
		for _, t := range c.Actions {
			if action.Type == t {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if c.Observance != "" && env.Observance != c.Observance {
		return false
	}
	if len(c.AnyAlert) > 0 {
		matched := false
		for _, tag := range c.AnyAlert {
			if snap.HasAlert(tag) {
				matched = true
				break
			}
		}
		if !matched {
			return false
		}
	}
	if c.Bedridden != nil && snap.Bedridden != *c.Bedridden {
		return false
	}
	return true
}

// EthicalRuleSpec is the YAML shape of one principle.
type EthicalRuleSpec struct {
	ID           string           `yaml:"id"`
	Label        string           `yaml:"label"`
	Penalty      int              `yaml:"penalty"`
	Alternatives []string         `yaml:"alternatives"`
	Autonomy     AutonomyImpact   `yaml:"autonomy"`
	When         EthicalCondition `yaml:"when"`
}

type ethicalRuleFile struct {
	Rules []EthicalRuleSpec `yaml:"ethical_rules"`
}

// CompileEthical turns rule specs into an executable rule set, preserving order.
func CompileEthical(specs []EthicalRuleSpec) (EthicalRuleSet, error) {
	seen := make(map[string]bool, len(specs))
	rules := make(EthicalRuleSet, 0, len(specs))
	for _, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("ethical rule missing id")
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("duplicate ethical rule id %q", spec.ID)
		}
		seen[spec.ID] = true
		if spec.Penalty < 0 {
			return nil, fmt.Errorf("ethical rule %q has negative penalty %d", spec.ID, spec.Penalty)
		}
		switch spec.Autonomy {
		case "", AutonomyLimited, AutonomyViolated:
		default:
			return nil, fmt.Errorf("ethical rule %q has invalid autonomy %q", spec.ID, spec.Autonomy)
		}
		when := spec.When
		rules = append(rules, EthicalRule{
			ID:           spec.ID,
			Label:        spec.Label,
			Penalty:      spec.Penalty,
			Alternatives: spec.Alternatives,
			Autonomy:     spec.Autonomy,
			Predicate:    when.Matches,
		})
	}
	return rules, nil
}

// LoadEthicalRuleSet reads principles from a YAML file and compiles them.
func LoadEthicalRuleSet(path string) (EthicalRuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read ethical rules %s: %w", path, err)
	}
	var f ethicalRuleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse ethical rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("ethical rules %s: no rules defined", path)
	}
	return CompileEthical(f.Rules)
}

// DefaultEthicalRules carries the facility's standing principles: dignity
// over mechanics, minimal intervention, restraint as last resort, and
// cultural context awareness.
func DefaultEthicalRules() EthicalRuleSet {
	rules, err := CompileEthical([]EthicalRuleSpec{
		{
			ID:      "isolation-liberty",
			Label:   "Isolation restricts the beneficiary's freedom and may harm their dignity.",
			Penalty: 30,
			Alternatives: []string{
				"Intensive observation instead of isolation",
				"Assign a personal companion",
			},
			Autonomy: AutonomyLimited,
			When:     EthicalCondition{Actions: []ActionType{ActionIsolation}},
		},
		{
			ID:      "restraint-last-resort",
			Label:   "Physical restraint is a last resort only.",
			Penalty: 50,
			Alternatives: []string{
				"Verbal de-escalation",
				"Remove environmental stressors",
			},
			Autonomy: AutonomyViolated,
			When:     EthicalCondition{Actions: []ActionType{ActionRestraint}},
		},
		{
			ID:      "isolation-observance",
			Label:   "Isolation during Ramadan deprives the beneficiary of its spiritual and communal atmosphere.",
			Penalty: 15,
			Alternatives: []string{
				"Supervised participation in the communal iftar",
			},
			When: EthicalCondition{Actions: []ActionType{ActionIsolation}, Observance: "ramadan"},
		},
	})
	if err != nil {
		panic(err) // defaults are static; a failure here is a programming error
	}
	return rules
}
