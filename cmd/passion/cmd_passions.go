package main

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// passionsCmd shows the scored passion profile for a child
var passionsCmd = &cobra.Command{
	Use:   "passions [child-id]",
	Short: "Show a child's passion profile",
	Long: `Show the scored passion domains and insights for a child.

Domains and insights are fetched concurrently; scores come from every
assessment the child has completed so far.`,
	Args: cobra.ExactArgs(1),
	RunE: runPassions,
}

func runPassions(cmd *cobra.Command, args []string) error {
	a, err := newApp(logger)
	if err != nil {
		return err
	}

	childID, err := strconv.Atoi(args[0])
	if err != nil {
		return fmt.Errorf("child id must be a number: %w", err)
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	profile, err := a.client.PassionProfileFor(ctx, childID)
	if err != nil {
		return err
	}

	if len(profile.Domains) == 0 && len(profile.Insights) == 0 {
		fmt.Println("No passion data yet. Run an assessment first: passion")
		return nil
	}

	if len(profile.Domains) > 0 {
		fmt.Println("Domains:")
		for _, d := range profile.Domains {
			line := fmt.Sprintf("  %-16s %3.0f%%", d.Domain, d.ConfidenceScore*100)
			if d.StrengthLevel != "" {
				line += "  " + d.StrengthLevel
			}
			if d.Trend != "" {
				line += "  (" + d.Trend + ")"
			}
			fmt.Println(line)
		}
	}

	if len(profile.Insights) > 0 {
		fmt.Println("Insights:")
		for _, ins := range profile.Insights {
			marker := " "
			if ins.Highlighted {
				marker = "*"
			}
			fmt.Printf("  %s %s\n    %s\n", marker, ins.Title, ins.Description)
		}
	}
	return nil
}
