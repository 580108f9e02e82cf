package main

import (
	"context"
	"fmt"
	"io"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"worldsheet/internal/linking"
)

func linkCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "link",
		Short: "Inspect and change the links of a worksheet",
	}
	cmd.AddCommand(linkStatusCmd())
	cmd.AddCommand(linkCandidatesCmd())
	cmd.AddCommand(linkSelectCmd())
	cmd.AddCommand(linkRefreshCmd())
	cmd.AddCommand(linkUnlinkCmd())
	return cmd
}

func linkStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status <worksheet-id>",
		Short: "Show every slot of a worksheet and whether its link still resolves",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLinks(func(ctx context.Context, links *linking.Service) error {
				statuses, err := links.Slots(ctx, args[0])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(statuses) == 0 {
					fmt.Fprintln(out, "No link slots.")
					return nil
				}
				for _, status := range statuses {
					printStatus(out, status)
				}
				return nil
			})
		},
	}
}

func linkCandidatesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "candidates <worksheet-id> <key>",
		Short: "List worksheets a slot can link to",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLinks(func(ctx context.Context, links *linking.Service) error {
				items, err := links.Candidates(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()
				if len(items) == 0 {
					fmt.Fprintln(out, "No candidates found.")
					return nil
				}
				for _, item := range items {
					fmt.Fprintf(out, "%s  %s\n", item.ID, item.Title)
				}
				return nil
			})
		},
	}
}

func linkSelectCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "select <worksheet-id> <key> <target-id>",
		Short: "Link a slot to a worksheet and copy its synced fields",
		Args:  cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLinks(func(ctx context.Context, links *linking.Service) error {
				ref, err := links.Select(ctx, args[0], args[1], args[2])
				if err != nil {
					return err
				}
				return printApplied(cmd.OutOrStdout(), args[1], ref)
			})
		},
	}
}

func linkRefreshCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "refresh <worksheet-id> <key>",
		Short: "Re-copy synced fields from the slot's current target",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLinks(func(ctx context.Context, links *linking.Service) error {
				ref, err := links.Refresh(ctx, args[0], args[1])
				if err != nil {
					return err
				}
				if ref == nil {
					return fmt.Errorf("link %s is broken; unlink it or select a new target", args[1])
				}
				return printApplied(cmd.OutOrStdout(), args[1], ref)
			})
		},
	}
}

func linkUnlinkCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "unlink <worksheet-id> <key>",
		Short: "Remove a slot's link",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLinks(func(ctx context.Context, links *linking.Service) error {
				if err := links.Unlink(ctx, args[0], args[1]); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Unlinked %s.\n", args[1])
				return nil
			})
		},
	}
}

func withLinks(fn func(ctx context.Context, links *linking.Service) error) error {
	ctx := context.Background()

	p, err := loadProject(ctx, true)
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	return fn(ctx, p.links())
}

func printStatus(out io.Writer, status linking.SlotStatus) {
	fmt.Fprintf(out, "%s -> %s: %s\n", status.Config.Key, status.Config.TargetTool, status.State)
	if status.Malformed != nil {
		fmt.Fprintf(out, "  %v\n", status.Malformed)
		return
	}
	if status.Ref == nil {
		return
	}
	title, _ := status.Ref.SyncedData[linking.TitleField].(string)
	fmt.Fprintf(out, "  target: %s %s\n", status.Ref.WorksheetID, title)
	fmt.Fprintf(out, "  synced: %s\n", status.Ref.SyncedAt.Format(time.RFC3339))
}

func printApplied(out io.Writer, key string, ref *linking.Ref) error {
	if ref == nil {
		fmt.Fprintf(out, "Link %s was superseded by a newer request.\n", key)
		return nil
	}
	fmt.Fprintf(out, "Linked %s to %s at %s.\n", key, ref.WorksheetID, ref.SyncedAt.Format(time.RFC3339))

	fields := make([]string, 0, len(ref.SyncedData))
	for field := range ref.SyncedData {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		fmt.Fprintf(out, "  %s: %v\n", field, ref.SyncedData[field])
	}
	return nil
}
