// Package implication derives suggested narrative consequences from the
// biology and environment fields of a worksheet.
package implication

import "worldsheet/internal/fieldpath"

// Implication is a fired rule plus the field names that made it fire.
type Implication struct {
	ID                     string   `json:"id"`
	PerceivedConstant      string   `json:"perceivedConstant"`
	ArchetypeChannel       string   `json:"archetypeChannel"`
	Explanation            string   `json:"explanation"`
	BiologyFactors         []string `json:"biologyFactors"`
	EnvironmentFactors     []string `json:"environmentFactors"`
	SuggestedArchetypeForm string   `json:"suggestedArchetypeForm,omitempty"`
}

// Engine evaluates a fixed rule table. It holds no state between calls.
type Engine struct {
	rules []Rule
}

func NewEngine(rules []Rule) *Engine {
	return &Engine{rules: append([]Rule(nil), rules...)}
}

func (e *Engine) Rules() []Rule {
	return append([]Rule(nil), e.rules...)
}

// Evaluate scans every rule against state and returns the fired ones in
// table order.
func (e *Engine) Evaluate(state map[string]any) []Implication {
	out := []Implication{}
	for _, rule := range e.rules {
		if rule.Inert() {
			continue
		}
		biology, biologyOK := matchCategory(state, rule.BiologyConditions)
		environment, environmentOK := matchCategory(state, rule.EnvironmentConditions)
		if !biologyOK || !environmentOK {
			continue
		}
		out = append(out, Implication{
			ID:                     rule.ID,
			PerceivedConstant:      rule.PerceivedConstant,
			ArchetypeChannel:       rule.ArchetypeChannel,
			Explanation:            rule.Explanation,
			BiologyFactors:         biology,
			EnvironmentFactors:     environment,
			SuggestedArchetypeForm: rule.SuggestedArchetypeForm,
		})
	}
	return out
}

// matchCategory ORs the conditions of one category and returns the leaf
// names of every condition that held. An absent category holds trivially;
// one listed without conditions never does.
func matchCategory(state map[string]any, conditions []Condition) ([]string, bool) {
	factors := []string{}
	if conditions == nil {
		return factors, true
	}
	for _, c := range conditions {
		if Matches(state, c) {
			factors = append(factors, fieldpath.Leaf(c.Field))
		}
	}
	return factors, len(factors) > 0
}
