package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/vicinitylabs/vicinity"
	"github.com/vicinitylabs/vicinity/internal/presentation/tui"
	"github.com/vicinitylabs/vicinity/pkg/schema"
)

var stepsCmd = &cobra.Command{
	Use:   "steps",
	Short: "Show the onboarding wizard schema",
	Long:  `Prints every wizard step with its required and optional fields, rendered for the terminal.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		tui.PrintBanner(strings.TrimSpace(vicinity.Version))

		registry := schema.Default()
		render := tui.NewRenderer()

		out, err := render(stepsMarkdown(registry))
		if err != nil {
			return fmt.Errorf("failed to render steps: %w", err)
		}
		fmt.Print(out)
		return nil
	},
}

func stepsMarkdown(registry *schema.Registry) string {
	var b strings.Builder
	b.WriteString("# Onboarding steps\n\n")

	for _, step := range registry.Steps() {
		fmt.Fprintf(&b, "## Step %d: %s\n\n", step.Number, step.Title)
		if len(step.Required) > 0 {
			b.WriteString("**Required**\n\n")
			for _, field := range step.Required {
				fmt.Fprintf(&b, "- `%s`\n", field)
			}
			b.WriteString("\n")
		}
		if len(step.Optional) > 0 {
			b.WriteString("**Optional**\n\n")
			for _, field := range step.Optional {
				fmt.Fprintf(&b, "- `%s`\n", field)
			}
			b.WriteString("\n")
		}
	}
	return b.String()
}

func init() {
	rootCmd.AddCommand(stepsCmd)
}
