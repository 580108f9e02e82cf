package parser

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Document is one worksheet exported as markdown with YAML frontmatter.
type Document struct {
	Frontmatter map[string]any
	ID          string
	Title       string
	ToolType    string
	Data        map[string]any
	Body        string
	SourceFile  string
}

var (
	ErrNoFrontmatter = errors.New("no frontmatter found")
	ErrInvalidYAML   = errors.New("invalid YAML in frontmatter")
	ErrMissingTitle  = errors.New("frontmatter missing required 'title' field")
	ErrMissingType   = errors.New("frontmatter missing required 'type' field")
	ErrInvalidData   = errors.New("frontmatter 'data' must be a map")
)

func ParseFile(path string) (*Document, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	doc, err := Parse(data)
	if err != nil {
		return nil, err
	}
	doc.SourceFile = path
	return doc, nil
}

func Parse(content []byte) (*Document, error) {
	trimmed := bytes.TrimLeft(content, "\ufeff\n\r\t ")
	trimmed = bytes.ReplaceAll(trimmed, []byte("\r\n"), []byte("\n"))
	if !bytes.HasPrefix(trimmed, []byte("---\n")) {
		return nil, ErrNoFrontmatter
	}

	rest := trimmed[len("---\n"):]
	end := bytes.Index(rest, []byte("---\n"))
	if end == -1 {
		return nil, ErrNoFrontmatter
	}

	yamlBytes := rest[:end]
	body := string(rest[end+len("---\n"):])

	var frontmatter map[string]any
	if err := yaml.Unmarshal(yamlBytes, &frontmatter); err != nil {
		return nil, ErrInvalidYAML
	}

	title, ok := frontmatter["title"].(string)
	if !ok || strings.TrimSpace(title) == "" {
		return nil, ErrMissingTitle
	}

	toolType, ok := frontmatter["type"].(string)
	if !ok || strings.TrimSpace(toolType) == "" {
		return nil, ErrMissingType
	}

	id, err := parseID(frontmatter["id"])
	if err != nil {
		return nil, err
	}

	data, err := parseData(frontmatter["data"])
	if err != nil {
		return nil, err
	}

	return &Document{
		Frontmatter: frontmatter,
		ID:          id,
		Title:       strings.TrimSpace(title),
		ToolType:    strings.TrimSpace(toolType),
		Data:        data,
		Body:        body,
	}, nil
}

func parseID(value any) (string, error) {
	switch v := value.(type) {
	case nil:
		return "", nil
	case string:
		return strings.TrimSpace(v), nil
	default:
		return "", fmt.Errorf("id must be a string")
	}
}

// parseData converts the YAML data block into the shape a JSON decoder
// would produce, so stored payloads look the same however they arrived.
func parseData(value any) (map[string]any, error) {
	if value == nil {
		return map[string]any{}, nil
	}
	if _, ok := value.(map[string]any); !ok {
		return nil, ErrInvalidData
	}

	encoded, err := json.Marshal(value)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	var data map[string]any
	if err := json.Unmarshal(encoded, &data); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return data, nil
}
