package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

func linksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "links [tool]",
		Short: "Show the link slots a tool declares",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			tool := ""
			if len(args) > 0 {
				tool = args[0]
			}
			return runLinks(cmd, tool)
		},
	}
	return cmd
}

func runLinks(cmd *cobra.Command, tool string) error {
	ctx := context.Background()

	p, err := loadProject(ctx, false)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	out := cmd.OutOrStdout()
	if tool == "" {
		for _, source := range p.registry.SourceTools() {
			fmt.Fprintln(out, source)
		}
		return nil
	}
	if !p.registry.IsKnownTool(tool) {
		return fmt.Errorf("unknown tool: %s", tool)
	}

	configs := p.registry.ConfigsFor(tool)
	if len(configs) == 0 {
		fmt.Fprintf(out, "%s declares no links.\n", tool)
		return nil
	}
	for _, cfg := range configs {
		fmt.Fprintf(out, "%s -> %s (%s)\n", cfg.Key, cfg.TargetTool, cfg.Label)
		if cfg.Description != "" {
			fmt.Fprintf(out, "  %s\n", cfg.Description)
		}
		fmt.Fprintf(out, "  syncs: %s\n", strings.Join(cfg.SyncFields, ", "))
	}
	return nil
}
