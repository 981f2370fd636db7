// Package risk computes bounded, deterministic risk scores for beneficiaries
// from weighted rule tables, classifies them into levels, and aggregates a
// cohort-wide tension metric.
package risk

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/basira/care-server/internal/domain/registry"
)

// Rule is a named, weighted predicate over a beneficiary snapshot.
// Rules are immutable after construction.
type Rule struct {
	ID        string
	Label     string
	Weight    int
	Predicate func(registry.Snapshot) bool
}

// RuleSet is an ordered collection of rules. Evaluation order is declaration
// order; scoring never depends on match time.
type RuleSet []Rule

// Condition is the declarative form of a rule predicate, loadable from YAML.
// A condition matches when ANY of its listed clauses holds, mirroring how
// clinical flags overlap (a seizure alert and an epilepsy diagnosis indicate
// the same underlying risk).
type Condition struct {
	AnyAlert          []string `yaml:"any_alert"`
	DiagnosisContains []string `yaml:"diagnosis_contains"`
	Bedridden         *bool    `yaml:"bedridden"`
	Psychiatric       *bool    `yaml:"psychiatric"`
	RecentIncident    *bool    `yaml:"recent_incident"`
}

// Matches evaluates the condition against a snapshot. Missing snapshot
// fields never match; they are never an error.
func (c Condition) Matches(snap registry.Snapshot) bool {
	for _, tag := range c.AnyAlert {
		if snap.HasAlert(tag) {
			return true
		}
	}
	for _, term := range c.DiagnosisContains {
		if snap.DiagnosisContains(term) {
			return true
		}
	}
	if c.Bedridden != nil && snap.Bedridden == *c.Bedridden {
		return true
	}
	if c.Psychiatric != nil && snap.Psychiatric == *c.Psychiatric {
		return true
	}
	if c.RecentIncident != nil && snap.RecentIncident == *c.RecentIncident {
		return true
	}
	return false
}

// RuleSpec is the YAML shape of one rule.
type RuleSpec struct {
	ID     string    `yaml:"id"`
	Label  string    `yaml:"label"`
	Weight int       `yaml:"weight"`
	When   Condition `yaml:"when"`
}

type ruleFile struct {
	Rules []RuleSpec `yaml:"risk_rules"`
}

// Compile turns rule specs into an executable RuleSet, preserving order.
func Compile(specs []RuleSpec) (RuleSet, error) {
	seen := make(map[string]bool, len(specs))
	rules := make(RuleSet, 0, len(specs))
	for _, spec := range specs {
		if spec.ID == "" {
			return nil, fmt.Errorf("risk rule missing id")
		}
		if seen[spec.ID] {
			return nil, fmt.Errorf("duplicate risk rule id %q", spec.ID)
		}
		seen[spec.ID] = true
		if spec.Weight < 0 {
			return nil, fmt.Errorf("risk rule %q has negative weight %d", spec.ID, spec.Weight)
		}
		when := spec.When
		rules = append(rules, Rule{
			ID:        spec.ID,
			Label:     spec.Label,
			Weight:    spec.Weight,
			Predicate: when.Matches,
		})
	}
	return rules, nil
}

// LoadRuleSet reads rule specs from a YAML file and compiles them.
func LoadRuleSet(path string) (RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read risk rules %s: %w", path, err)
	}
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse risk rules %s: %w", path, err)
	}
	if len(f.Rules) == 0 {
		return nil, fmt.Errorf("risk rules %s: no rules defined", path)
	}
	return Compile(f.Rules)
}

func boolPtr(b bool) *bool { return &b }

// DefaultRuleSet carries the facility's standing clinical factors.
func DefaultRuleSet() RuleSet {
	rules, err := Compile([]RuleSpec{
		{
			ID: "epilepsy", Label: "Epilepsy diagnosis (seizure risk)", Weight: 30,
			When: Condition{AnyAlert: []string{"epilepsy"}, DiagnosisContains: []string{"epilepsy"}},
		},
		{
			ID: "diabetes", Label: "Diabetes (insulin monitoring)", Weight: 15,
			When: Condition{AnyAlert: []string{"diabetic"}, DiagnosisContains: []string{"diabetes"}},
		},
		{
			ID: "mobility", Label: "Fall risk / bedridden", Weight: 25,
			When: Condition{AnyAlert: []string{"fallRisk"}, Bedridden: boolPtr(true)},
		},
		{
			ID: "psychiatric", Label: "Psychiatric follow-up", Weight: 10,
			When: Condition{Psychiatric: boolPtr(true)},
		},
		{
			ID: "recent-incident", Label: "Reported incident within window", Weight: 20,
			When: Condition{RecentIncident: boolPtr(true)},
		},
	})
	if err != nil {
		panic(err) // defaults are static; a failure here is a programming error
	}
	return rules
}
