package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"worldsheet/internal/validate"
)

func validateCmd() *cobra.Command {
	var worldID string
	cmd := &cobra.Command{
		Use:   "validate",
		Short: "Check the link and rule tables, and the links of a world",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(cmd, worldID)
		},
	}
	cmd.Flags().StringVar(&worldID, "world", "", "Also check every worksheet link in this world")
	return cmd
}

func runValidate(cmd *cobra.Command, worldID string) error {
	ctx := context.Background()

	p, err := loadProject(ctx, worldID != "")
	if err != nil {
		return err
	}
	defer p.Close(ctx)

	var report *validate.Report
	if worldID == "" {
		tables := validate.CheckTables(p.registry, p.rules)
		report = &tables
	} else {
		report, err = validate.Run(ctx, p.registry, p.rules, p.db, worldID)
		if err != nil {
			return err
		}
	}

	out := cmd.OutOrStdout()
	var errorIssues []validate.Issue
	var warnIssues []validate.Issue
	for _, issue := range report.Issues {
		switch issue.Severity {
		case validate.SeverityError:
			errorIssues = append(errorIssues, issue)
		case validate.SeverityWarn:
			warnIssues = append(warnIssues, issue)
		}
	}

	if len(errorIssues) == 0 && len(warnIssues) == 0 {
		fmt.Fprintln(out, "No issues found.")
		return nil
	}

	if len(errorIssues) > 0 {
		fmt.Fprintf(out, "Errors (%d):\n", len(errorIssues))
		printIssues(out, errorIssues)
	}
	if len(warnIssues) > 0 {
		if len(errorIssues) > 0 {
			fmt.Fprintln(out, "")
		}
		fmt.Fprintf(out, "Warnings (%d):\n", len(warnIssues))
		printIssues(out, warnIssues)
	}

	if len(errorIssues) > 0 {
		return fmt.Errorf("validation found errors")
	}
	return nil
}

func printIssues(out io.Writer, issues []validate.Issue) {
	for _, issue := range issues {
		location := issue.Tool
		switch {
		case issue.Rule != "":
			location = "rule " + issue.Rule
		case issue.Worksheet != "":
			location = fmt.Sprintf("%s [%s.%s]", issue.Worksheet, issue.Tool, issue.Key)
		case issue.Key != "":
			location = fmt.Sprintf("%s.%s", issue.Tool, issue.Key)
		}
		fmt.Fprintf(out, "  - %s: %s (%s)\n", location, issue.Message, issue.Code)
	}
}
