package mcp

import (
	"context"
	"fmt"
	"time"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"worldsheet/internal/implication"
	"worldsheet/internal/linking"
	"worldsheet/internal/store"
	"worldsheet/internal/validate"
)

type WorksheetInput struct {
	WorksheetID string `json:"worksheet_id" jsonschema:"source worksheet id"`
}

type SlotInput struct {
	WorksheetID string `json:"worksheet_id" jsonschema:"source worksheet id"`
	Key         string `json:"key" jsonschema:"link slot key"`
}

type LinkWorksheetInput struct {
	WorksheetID string `json:"worksheet_id" jsonschema:"source worksheet id"`
	Key         string `json:"key" jsonschema:"link slot key"`
	TargetID    string `json:"target_id" jsonschema:"worksheet to link to"`
}

type CheckLinksInput struct {
	WorldID string `json:"world_id" jsonschema:"world to check"`
}

type EvaluateImplicationsInput struct {
	WorksheetID string   `json:"worksheet_id" jsonschema:"worksheet whose fields are evaluated"`
	Dismissed   []string `json:"dismissed,omitempty" jsonschema:"implication ids to hide"`
}

type RefOutput struct {
	WorksheetID string         `json:"worksheet_id"`
	SyncedAt    string         `json:"synced_at"`
	SyncedData  map[string]any `json:"synced_data"`
}

type SlotOutput struct {
	Key        string     `json:"key"`
	Label      string     `json:"label"`
	TargetTool string     `json:"target_tool"`
	SyncFields []string   `json:"sync_fields"`
	State      string     `json:"state"`
	Ref        *RefOutput `json:"ref,omitempty"`
	Problem    string     `json:"problem,omitempty"`
}

type ListLinkSlotsOutput struct {
	Slots []SlotOutput `json:"slots"`
}

type WorksheetSummaryOutput struct {
	ID       string `json:"id"`
	Title    string `json:"title"`
	ToolType string `json:"tool_type"`
}

type ListLinkCandidatesOutput struct {
	Candidates []WorksheetSummaryOutput `json:"candidates"`
}

type LinkResultOutput struct {
	Applied bool       `json:"applied"`
	Ref     *RefOutput `json:"ref,omitempty"`
}

type UnlinkOutput struct {
	Key string `json:"key"`
}

type CheckLinksOutput struct {
	Issues []validate.Issue `json:"issues"`
}

type ImplicationsOutput struct {
	Implications []implication.Implication `json:"implications"`
	Dismissed    int                       `json:"dismissed"`
}

type WorksheetOutput struct {
	ID        string         `json:"id"`
	WorldID   string         `json:"world_id"`
	ToolType  string         `json:"tool_type"`
	Title     string         `json:"title"`
	Data      map[string]any `json:"data"`
	UpdatedAt string         `json:"updated_at"`
}

func (s *Server) registerTools() {
	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_link_slots",
		Description: "List the link slots of a worksheet with their state (unlinked, fresh, stale)",
	}, s.handleListLinkSlots)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "list_link_candidates",
		Description: "List worksheets in the same world that a slot can link to",
	}, s.handleListLinkCandidates)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "link_worksheet",
		Description: "Link a slot to a target worksheet and copy its synced fields",
	}, s.handleLinkWorksheet)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "refresh_link",
		Description: "Re-copy synced fields from a slot's current target",
	}, s.handleRefreshLink)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "unlink_worksheet",
		Description: "Remove a slot's link, including a broken one",
	}, s.handleUnlinkWorksheet)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "check_links",
		Description: "Report malformed, broken and inconsistent links across a world",
	}, s.handleCheckLinks)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "evaluate_implications",
		Description: "Suggest narrative implications from a worksheet's biology and linked environment",
	}, s.handleEvaluateImplications)

	sdk.AddTool(s.mcp, &sdk.Tool{
		Name:        "get_worksheet",
		Description: "Retrieve a worksheet and its data",
	}, s.handleGetWorksheet)
}

func (s *Server) handleListLinkSlots(ctx context.Context, req *sdk.CallToolRequest, input WorksheetInput) (*sdk.CallToolResult, ListLinkSlotsOutput, error) {
	if input.WorksheetID == "" {
		return nil, ListLinkSlotsOutput{}, fmt.Errorf("worksheet_id is required")
	}
	statuses, err := s.links.Slots(ctx, input.WorksheetID)
	if err != nil {
		return nil, ListLinkSlotsOutput{}, s.fail("list_link_slots", err)
	}

	output := make([]SlotOutput, 0, len(statuses))
	for _, status := range statuses {
		output = append(output, slotOutputFromStatus(status))
	}
	return nil, ListLinkSlotsOutput{Slots: output}, nil
}

func (s *Server) handleListLinkCandidates(ctx context.Context, req *sdk.CallToolRequest, input SlotInput) (*sdk.CallToolResult, ListLinkCandidatesOutput, error) {
	if input.WorksheetID == "" || input.Key == "" {
		return nil, ListLinkCandidatesOutput{}, fmt.Errorf("worksheet_id and key are required")
	}
	items, err := s.links.Candidates(ctx, input.WorksheetID, input.Key)
	if err != nil {
		return nil, ListLinkCandidatesOutput{}, s.fail("list_link_candidates", err)
	}

	output := make([]WorksheetSummaryOutput, 0, len(items))
	for _, item := range items {
		output = append(output, WorksheetSummaryOutput{ID: item.ID, Title: item.Title, ToolType: item.ToolType})
	}
	return nil, ListLinkCandidatesOutput{Candidates: output}, nil
}

func (s *Server) handleLinkWorksheet(ctx context.Context, req *sdk.CallToolRequest, input LinkWorksheetInput) (*sdk.CallToolResult, LinkResultOutput, error) {
	if input.WorksheetID == "" || input.Key == "" || input.TargetID == "" {
		return nil, LinkResultOutput{}, fmt.Errorf("worksheet_id, key and target_id are required")
	}
	ref, err := s.links.Select(ctx, input.WorksheetID, input.Key, input.TargetID)
	if err != nil {
		return nil, LinkResultOutput{}, s.fail("link_worksheet", err)
	}
	return nil, linkResultOutput(ref), nil
}

func (s *Server) handleRefreshLink(ctx context.Context, req *sdk.CallToolRequest, input SlotInput) (*sdk.CallToolResult, LinkResultOutput, error) {
	if input.WorksheetID == "" || input.Key == "" {
		return nil, LinkResultOutput{}, fmt.Errorf("worksheet_id and key are required")
	}
	ref, err := s.links.Refresh(ctx, input.WorksheetID, input.Key)
	if err != nil {
		return nil, LinkResultOutput{}, s.fail("refresh_link", err)
	}
	return nil, linkResultOutput(ref), nil
}

func (s *Server) handleUnlinkWorksheet(ctx context.Context, req *sdk.CallToolRequest, input SlotInput) (*sdk.CallToolResult, UnlinkOutput, error) {
	if input.WorksheetID == "" || input.Key == "" {
		return nil, UnlinkOutput{}, fmt.Errorf("worksheet_id and key are required")
	}
	if err := s.links.Unlink(ctx, input.WorksheetID, input.Key); err != nil {
		return nil, UnlinkOutput{}, s.fail("unlink_worksheet", err)
	}
	return nil, UnlinkOutput{Key: input.Key}, nil
}

func (s *Server) handleCheckLinks(ctx context.Context, req *sdk.CallToolRequest, input CheckLinksInput) (*sdk.CallToolResult, CheckLinksOutput, error) {
	if input.WorldID == "" {
		return nil, CheckLinksOutput{}, fmt.Errorf("world_id is required")
	}
	report, err := validate.Run(ctx, s.links.Registry(), s.engine.Rules(), s.db, input.WorldID)
	if err != nil {
		return nil, CheckLinksOutput{}, s.fail("check_links", err)
	}
	return nil, CheckLinksOutput{Issues: report.Issues}, nil
}

func (s *Server) handleEvaluateImplications(ctx context.Context, req *sdk.CallToolRequest, input EvaluateImplicationsInput) (*sdk.CallToolResult, ImplicationsOutput, error) {
	ws, err := s.worksheet(ctx, input.WorksheetID)
	if err != nil {
		return nil, ImplicationsOutput{}, s.fail("evaluate_implications", err)
	}

	state := linking.Overlay(ws.Data, s.links.Registry().ConfigsFor(ws.ToolType))
	all := s.engine.Evaluate(state)
	visible := implication.NewDismissals(input.Dismissed...).Visible(all)
	return nil, ImplicationsOutput{Implications: visible, Dismissed: len(all) - len(visible)}, nil
}

func (s *Server) handleGetWorksheet(ctx context.Context, req *sdk.CallToolRequest, input WorksheetInput) (*sdk.CallToolResult, WorksheetOutput, error) {
	ws, err := s.worksheet(ctx, input.WorksheetID)
	if err != nil {
		return nil, WorksheetOutput{}, s.fail("get_worksheet", err)
	}
	return nil, worksheetOutputFromStore(ws), nil
}

func (s *Server) worksheet(ctx context.Context, id string) (*store.Worksheet, error) {
	if id == "" {
		return nil, fmt.Errorf("worksheet_id is required")
	}
	ws, err := s.db.GetWorksheet(ctx, id)
	if err != nil {
		return nil, err
	}
	if ws == nil {
		return nil, fmt.Errorf("%w: %s", store.ErrNotFound, id)
	}
	return ws, nil
}

func slotOutputFromStatus(status linking.SlotStatus) SlotOutput {
	out := SlotOutput{
		Key:        status.Config.Key,
		Label:      status.Config.Label,
		TargetTool: status.Config.TargetTool,
		SyncFields: append([]string{}, status.Config.SyncFields...),
		State:      status.State.String(),
		Ref:        refOutput(status.Ref),
	}
	if status.Malformed != nil {
		out.Problem = status.Malformed.Error()
	}
	return out
}

func linkResultOutput(ref *linking.Ref) LinkResultOutput {
	return LinkResultOutput{Applied: ref != nil, Ref: refOutput(ref)}
}

func refOutput(ref *linking.Ref) *RefOutput {
	if ref == nil {
		return nil
	}
	return &RefOutput{
		WorksheetID: ref.WorksheetID,
		SyncedAt:    ref.SyncedAt.UTC().Format(time.RFC3339Nano),
		SyncedData:  ref.SyncedData,
	}
}

func worksheetOutputFromStore(ws *store.Worksheet) WorksheetOutput {
	data := map[string]any{}
	for key, value := range ws.Data {
		data[key] = value
	}
	return WorksheetOutput{
		ID:        ws.ID,
		WorldID:   ws.WorldID,
		ToolType:  ws.ToolType,
		Title:     ws.Title,
		Data:      data,
		UpdatedAt: ws.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}
