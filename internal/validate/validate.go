package validate

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"worldsheet/internal/implication"
	"worldsheet/internal/linking"
	"worldsheet/internal/store"
)

type Severity string

const (
	SeverityError Severity = "error"
	SeverityWarn  Severity = "warning"
)

const (
	codeDuplicateLinkKey     = "duplicate_link_key"
	codeUnknownSourceTool    = "unknown_source_tool"
	codeUnknownTargetTool    = "unknown_target_tool"
	codeEmptySyncFields      = "empty_sync_fields"
	codeInertRule            = "inert_rule"
	codeEmptyCategory        = "empty_category"
	codeDuplicateRuleID      = "duplicate_rule_id"
	codeEmptyConditionValues = "empty_condition_values"
	codeMalformedLinkRef     = "malformed_link_ref"
	codeBrokenLink           = "broken_link"
	codeUnsyncedField        = "unsynced_field"
)

type Issue struct {
	Severity  Severity `json:"severity"`
	Code      string   `json:"code"`
	Message   string   `json:"message"`
	Tool      string   `json:"tool,omitempty"`
	Key       string   `json:"key,omitempty"`
	Rule      string   `json:"rule,omitempty"`
	Worksheet string   `json:"worksheet,omitempty"`
}

type Report struct {
	Issues []Issue `json:"issues"`
}

// HasErrors reports whether any issue is error severity.
func (r *Report) HasErrors() bool {
	if r == nil {
		return false
	}
	for _, issue := range r.Issues {
		if issue.Severity == SeverityError {
			return true
		}
	}
	return false
}

// CheckTables reports authoring defects in the link and rule tables.
func CheckTables(registry *linking.Registry, rules []implication.Rule) Report {
	issues := make([]Issue, 0)
	issues = append(issues, checkRegistry(registry)...)
	issues = append(issues, checkRules(rules)...)
	return Report{Issues: issues}
}

// Run checks the tables and then every stored worksheet of worldID for
// link refs that are malformed, dangling or carry fields outside their slot.
func Run(ctx context.Context, registry *linking.Registry, rules []implication.Rule, reader WorksheetReader, worldID string) (*Report, error) {
	if registry == nil {
		return nil, fmt.Errorf("link registry is required")
	}
	if reader == nil {
		return nil, fmt.Errorf("worksheet reader is required")
	}

	report := CheckTables(registry, rules)

	worksheets, err := reader.ListWorksheets(ctx, worldID, "")
	if err != nil {
		return nil, fmt.Errorf("list worksheets: %w", err)
	}

	known := make(map[string]string, len(worksheets))
	for _, ws := range worksheets {
		known[ws.ID] = ws.ToolType
	}

	for _, ws := range worksheets {
		for _, cfg := range registry.ConfigsFor(ws.ToolType) {
			ref, err := linking.LoadRef(ws.Data, cfg.Key)
			if err != nil {
				if !errors.Is(err, linking.ErrMalformedRef) {
					return nil, err
				}
				report.Issues = append(report.Issues, worksheetIssue(ws, cfg.Key, SeverityError, codeMalformedLinkRef, err.Error()))
				continue
			}
			if ref == nil {
				continue
			}

			tool, exists, err := targetTool(ctx, reader, known, ref.WorksheetID)
			if err != nil {
				return nil, fmt.Errorf("get worksheet %s: %w", ref.WorksheetID, err)
			}
			switch {
			case !exists:
				report.Issues = append(report.Issues, worksheetIssue(ws, cfg.Key, SeverityWarn, codeBrokenLink,
					fmt.Sprintf("linked worksheet %s no longer exists", ref.WorksheetID)))
			case tool != cfg.TargetTool:
				report.Issues = append(report.Issues, worksheetIssue(ws, cfg.Key, SeverityWarn, codeBrokenLink,
					fmt.Sprintf("linked worksheet %s is a %s, not a %s", ref.WorksheetID, tool, cfg.TargetTool)))
			}

			for _, field := range unsyncedFields(ref, cfg) {
				report.Issues = append(report.Issues, worksheetIssue(ws, cfg.Key, SeverityError, codeUnsyncedField,
					fmt.Sprintf("synced field %s is not declared by the slot", field)))
			}
		}
	}

	return &report, nil
}

func checkRegistry(registry *linking.Registry) []Issue {
	if registry == nil {
		return nil
	}

	var issues []Issue
	for _, tool := range registry.SourceTools() {
		if !registry.IsKnownTool(tool) {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeUnknownSourceTool,
				Message:  fmt.Sprintf("links declared for unknown tool: %s", tool),
				Tool:     tool,
			})
		}

		seen := make(map[string]struct{})
		for _, cfg := range registry.ConfigsFor(tool) {
			if _, dup := seen[cfg.Key]; dup {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeDuplicateLinkKey,
					Message:  fmt.Sprintf("duplicate link key: %s", cfg.Key),
					Tool:     tool,
					Key:      cfg.Key,
				})
			}
			seen[cfg.Key] = struct{}{}

			if !registry.IsKnownTool(cfg.TargetTool) {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeUnknownTargetTool,
					Message:  fmt.Sprintf("link targets unknown tool: %s", cfg.TargetTool),
					Tool:     tool,
					Key:      cfg.Key,
				})
			}
			if len(cfg.SyncFields) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityWarn,
					Code:     codeEmptySyncFields,
					Message:  "link syncs no fields",
					Tool:     tool,
					Key:      cfg.Key,
				})
			}
		}
	}
	return issues
}

func checkRules(rules []implication.Rule) []Issue {
	var issues []Issue
	seen := make(map[string]struct{})
	for i, rule := range rules {
		id := rule.ID
		if strings.TrimSpace(id) == "" {
			id = fmt.Sprintf("#%d", i)
		}
		if _, dup := seen[id]; dup {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeDuplicateRuleID,
				Message:  fmt.Sprintf("duplicate rule id: %s", id),
				Rule:     id,
			})
		}
		seen[id] = struct{}{}

		if rule.Inert() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeInertRule,
				Message:  "rule has no conditions and never fires",
				Rule:     id,
			})
		}

		for _, category := range rule.EmptyCategories() {
			issues = append(issues, Issue{
				Severity: SeverityError,
				Code:     codeEmptyCategory,
				Message:  fmt.Sprintf("%s is listed without conditions, so the rule never fires", category),
				Rule:     id,
			})
		}

		conditions := append(append([]implication.Condition(nil), rule.BiologyConditions...), rule.EnvironmentConditions...)
		for _, c := range conditions {
			if len(c.Values) == 0 {
				issues = append(issues, Issue{
					Severity: SeverityError,
					Code:     codeEmptyConditionValues,
					Message:  fmt.Sprintf("condition on %s allows no values", c.Field),
					Rule:     id,
				})
			}
		}
	}
	return issues
}

// targetTool resolves the tool type of a link target, consulting the world's
// listing before falling back to a direct read.
func targetTool(ctx context.Context, reader WorksheetReader, known map[string]string, id string) (string, bool, error) {
	if tool, ok := known[id]; ok {
		return tool, true, nil
	}
	target, err := reader.GetWorksheet(ctx, id)
	if err != nil || target == nil {
		return "", false, err
	}
	return target.ToolType, true, nil
}

func unsyncedFields(ref *linking.Ref, cfg linking.LinkConfig) []string {
	var out []string
	for field := range ref.SyncedData {
		if field == linking.TitleField || containsString(cfg.SyncFields, field) {
			continue
		}
		out = append(out, field)
	}
	sort.Strings(out)
	return out
}

func worksheetIssue(ws store.Worksheet, key string, severity Severity, code, message string) Issue {
	return Issue{
		Severity:  severity,
		Code:      code,
		Message:   message,
		Tool:      ws.ToolType,
		Key:       key,
		Worksheet: ws.ID,
	}
}

func containsString(values []string, target string) bool {
	for _, value := range values {
		if value == target {
			return true
		}
	}
	return false
}
