package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"worldsheet/internal/implication"
	"worldsheet/internal/linking"
	"worldsheet/internal/store"
)

func implicationsCmd() *cobra.Command {
	var dismissed []string
	cmd := &cobra.Command{
		Use:   "implications <worksheet-id>",
		Short: "Suggest archetypes from a worksheet's biology and linked environment",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImplications(cmd, args[0], dismissed)
		},
	}
	cmd.Flags().StringSliceVar(&dismissed, "dismiss", nil, "Implication ids to hide")
	return cmd
}

func runImplications(cmd *cobra.Command, worksheetID string, dismissed []string) error {
	ctx := context.Background()

	p, err := loadProject(ctx, true)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	ws, err := p.db.GetWorksheet(ctx, worksheetID)
	if err != nil {
		return err
	}
	if ws == nil {
		return fmt.Errorf("%w: %s", store.ErrNotFound, worksheetID)
	}

	state := linking.Overlay(ws.Data, p.registry.ConfigsFor(ws.ToolType))
	items := implication.NewDismissals(dismissed...).Visible(implication.NewEngine(p.rules).Evaluate(state))

	out := cmd.OutOrStdout()
	if len(items) == 0 {
		fmt.Fprintln(out, "No implications.")
		return nil
	}
	for i, item := range items {
		if i > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "%s [%s]\n", item.PerceivedConstant, item.ID)
		fmt.Fprintf(out, "  channel: %s\n", item.ArchetypeChannel)
		factors := append(append([]string{}, item.BiologyFactors...), item.EnvironmentFactors...)
		fmt.Fprintf(out, "  because: %s\n", strings.Join(factors, ", "))
		if item.SuggestedArchetypeForm != "" {
			fmt.Fprintf(out, "  form: %s\n", item.SuggestedArchetypeForm)
		}
		fmt.Fprintf(out, "  %s\n", item.Explanation)
	}
	return nil
}
