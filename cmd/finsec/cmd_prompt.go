package main

import (
	"fmt"
	"strings"

	"finsec/internal/prompt"
	"finsec/internal/usecase"

	"github.com/spf13/cobra"
)

var (
	promptCategory string
	promptRisk     string
	promptScenario string
)

// promptCmd prints the payload that would be sent for one use case
var promptCmd = &cobra.Command{
	Use:   "prompt [use case]",
	Short: "Print the backend prompt for a use case",
	Long: `Builds the system and user instructions for one use case without calling
the backend.

Example:
  finsec prompt "Wire transfer sanctions screening" --risk High --category Sanctions`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPrompt,
}

func init() {
	promptCmd.Flags().StringVar(&promptCategory, "category", "", "Use case category (default Compliance)")
	promptCmd.Flags().StringVar(&promptRisk, "risk", "", "Risk level: Low, Medium, High (default High)")
	promptCmd.Flags().StringVar(&promptScenario, "scenario", "", "Scenario description")
}

func runPrompt(cmd *cobra.Command, args []string) error {
	uc := usecase.UseCase{
		UseCase:  strings.Join(args, " "),
		Category: promptCategory,
		Scenario: promptScenario,
	}
	if promptRisk != "" {
		risk, ok := usecase.ParseRisk(promptRisk)
		if !ok {
			return fmt.Errorf("invalid risk level: %s (valid: Low, Medium, High)", promptRisk)
		}
		uc.Risk = risk
	}

	payload, err := prompt.Build(uc)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, "=== System ===")
	fmt.Fprintln(out, payload.System)
	fmt.Fprintln(out)
	fmt.Fprintln(out, "=== User ===")
	fmt.Fprintln(out, payload.User)
	return nil
}
