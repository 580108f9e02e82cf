package linking

import (
	_ "embed"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

//go:embed links.yaml
var defaultLinks []byte

// LinkConfig declares one slot through which a source tool pulls fields from
// a worksheet of TargetTool.
type LinkConfig struct {
	Key         string   `yaml:"key" json:"key"`
	TargetTool  string   `yaml:"targetTool" json:"targetTool"`
	Label       string   `yaml:"label" json:"label"`
	SyncFields  []string `yaml:"syncFields" json:"syncFields"`
	Description string   `yaml:"description,omitempty" json:"description,omitempty"`
}

// Registry maps a source tool-type to the link slots it declares.
type Registry struct {
	Version int                     `yaml:"version"`
	Tools   []string                `yaml:"tools"`
	Links   map[string][]LinkConfig `yaml:"links"`

	toolIndex map[string]struct{}
}

func DefaultRegistry() (*Registry, error) {
	return ParseRegistry(defaultLinks)
}

func LoadRegistry(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("loading link registry: %w", err)
	}
	return ParseRegistry(data)
}

// ParseRegistry decodes a link table. Well-formedness (unique keys, known
// target tools) is not enforced here; see validate.CheckTables.
func ParseRegistry(data []byte) (*Registry, error) {
	var r Registry
	if err := yaml.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("loading link registry: %w", err)
	}
	if r.Version != 1 {
		return nil, fmt.Errorf("loading link registry: unsupported version: %d", r.Version)
	}

	r.toolIndex = make(map[string]struct{}, len(r.Tools))
	for _, tool := range r.Tools {
		r.toolIndex[tool] = struct{}{}
	}
	if r.Links == nil {
		r.Links = map[string][]LinkConfig{}
	}
	return &r, nil
}

// ConfigsFor returns the slots declared by toolType, in declaration order.
// A tool without links yields an empty list.
func (r *Registry) ConfigsFor(toolType string) []LinkConfig {
	if r == nil {
		return []LinkConfig{}
	}
	configs := r.Links[toolType]
	out := make([]LinkConfig, len(configs))
	copy(out, configs)
	return out
}

func (r *Registry) ConfigFor(toolType, key string) (LinkConfig, bool) {
	if r == nil {
		return LinkConfig{}, false
	}
	for _, cfg := range r.Links[toolType] {
		if cfg.Key == key {
			return cfg, true
		}
	}
	return LinkConfig{}, false
}

func (r *Registry) IsKnownTool(toolType string) bool {
	if r == nil {
		return false
	}
	_, ok := r.toolIndex[toolType]
	return ok
}

// SourceTools lists every tool-type that declares at least one slot.
func (r *Registry) SourceTools() []string {
	if r == nil {
		return nil
	}
	tools := make([]string, 0, len(r.Links))
	for tool, configs := range r.Links {
		if len(configs) > 0 {
			tools = append(tools, tool)
		}
	}
	sort.Strings(tools)
	return tools
}
