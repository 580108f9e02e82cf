package implication

import (
	_ "embed"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed rules.yaml
var defaultRules []byte

// Rule suggests a narrative consequence when any biology condition and any
// environment condition hold. An omitted (nil) category places no
// constraint, a category listed with no conditions never holds, and a rule
// with neither category never fires.
type Rule struct {
	ID                     string      `yaml:"id" json:"id"`
	BiologyConditions      []Condition `yaml:"biologyConditions,omitempty" json:"biologyConditions,omitempty"`
	EnvironmentConditions  []Condition `yaml:"environmentConditions,omitempty" json:"environmentConditions,omitempty"`
	PerceivedConstant      string      `yaml:"perceivedConstant" json:"perceivedConstant"`
	ArchetypeChannel       string      `yaml:"archetypeChannel" json:"archetypeChannel"`
	Explanation            string      `yaml:"explanation" json:"explanation"`
	SuggestedArchetypeForm string      `yaml:"suggestedArchetypeForm,omitempty" json:"suggestedArchetypeForm,omitempty"`
}

// Inert reports whether the rule carries no conditions at all.
func (r Rule) Inert() bool {
	return len(r.BiologyConditions) == 0 && len(r.EnvironmentConditions) == 0
}

// EmptyCategories names the categories that are listed but hold no
// conditions, which keeps the rule from ever firing.
func (r Rule) EmptyCategories() []string {
	var out []string
	if r.BiologyConditions != nil && len(r.BiologyConditions) == 0 {
		out = append(out, "biologyConditions")
	}
	if r.EnvironmentConditions != nil && len(r.EnvironmentConditions) == 0 {
		out = append(out, "environmentConditions")
	}
	return out
}

type ruleFile struct {
	Version int    `yaml:"version"`
	Rules   []Rule `yaml:"rules"`
}

func DefaultRules() ([]Rule, error) {
	return ParseRules(defaultRules)
}

func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading implication rules: %w", err)
	}
	return ParseRules(data)
}

// ParseRules decodes a rule table in declaration order. Authoring defects
// such as duplicate ids are left to validate.CheckTables.
func ParseRules(data []byte) ([]Rule, error) {
	var file ruleFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("loading implication rules: %w", err)
	}
	if file.Version != 1 {
		return nil, fmt.Errorf("loading implication rules: unsupported version: %d", file.Version)
	}
	if file.Rules == nil {
		file.Rules = []Rule{}
	}
	return file.Rules, nil
}
