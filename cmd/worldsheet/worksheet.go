package main

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"worldsheet/internal/ingest"
	"worldsheet/internal/store"
)

func worksheetCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "worksheet",
		Short: "Show and import worksheets",
	}
	cmd.AddCommand(worksheetShowCmd())
	cmd.AddCommand(worksheetListCmd())
	cmd.AddCommand(worksheetImportCmd())
	return cmd
}

func worksheetShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <worksheet-id>",
		Short: "Print a worksheet and its data",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := loadProject(ctx, true)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			ws, err := p.db.GetWorksheet(ctx, args[0])
			if err != nil {
				return err
			}
			if ws == nil {
				return fmt.Errorf("%w: %s", store.ErrNotFound, args[0])
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "ID: %s\n", ws.ID)
			fmt.Fprintf(out, "World: %s\n", ws.WorldID)
			fmt.Fprintf(out, "Tool: %s\n", ws.ToolType)
			fmt.Fprintf(out, "Title: %s\n", ws.Title)
			data, err := json.MarshalIndent(ws.Data, "", "  ")
			if err != nil {
				return fmt.Errorf("encoding worksheet data: %w", err)
			}
			fmt.Fprintf(out, "Data: %s\n", data)
			return nil
		},
	}
}

func worksheetListCmd() *cobra.Command {
	var tool string
	cmd := &cobra.Command{
		Use:   "list <world-id>",
		Short: "List the worksheets of a world",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := loadProject(ctx, true)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			items, err := p.db.ListWorksheets(ctx, args[0], tool)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(items) == 0 {
				fmt.Fprintln(out, "No worksheets found.")
				return nil
			}
			for _, item := range items {
				fmt.Fprintf(out, "%s  %s (%s)\n", item.ID, item.Title, item.ToolType)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&tool, "tool", "", "Tool type to filter")
	return cmd
}

func worksheetImportCmd() *cobra.Command {
	var worldID string
	var exclude []string
	cmd := &cobra.Command{
		Use:   "import <path>...",
		Short: "Import markdown worksheets into a world",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			p, err := loadProject(ctx, true)
			if err != nil {
				return err
			}
			defer p.Close(ctx)

			result, err := ingest.Run(ctx, p.registry, p.db, args, ingest.Options{WorldID: worldID, Exclude: exclude}, p.logger)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Import complete.")
			fmt.Fprintf(out, "  Created:       %d\n", result.Created)
			fmt.Fprintf(out, "  Updated:       %d\n", result.Updated)
			fmt.Fprintf(out, "  Unchanged:     %d\n", result.Unchanged)
			fmt.Fprintf(out, "  Files skipped: %d\n", result.FilesSkipped)

			if len(result.Errors) > 0 {
				fmt.Fprintf(out, "\nErrors (%d):\n", len(result.Errors))
				for _, item := range result.Errors {
					fmt.Fprintf(out, "  - %v\n", item)
				}
				return fmt.Errorf("import completed with errors")
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&worldID, "world", "", "World to import into")
	cmd.Flags().StringSliceVar(&exclude, "exclude", nil, "Paths to skip")
	_ = cmd.MarkFlagRequired("world")
	return cmd
}
