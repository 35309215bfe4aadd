package cli

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/hitsim/hitsim/internal/app"
	"github.com/hitsim/hitsim/internal/domain/combo"
	"github.com/hitsim/hitsim/internal/domain/model"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("212"))
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
	valueStyle  = lipgloss.NewStyle().Bold(true)
	missStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("203"))
)

func newSimulateCmd() *cobra.Command {
	var (
		objects    int
		misses     int
		accuracy   float64
		good       int
		acceptable int
		nested     []int
		jsonOutput bool
	)

	cmd := &cobra.Command{
		Use:   "simulate",
		Short: "Synthesize a judgement distribution for a play",
		Long:  "Synthesize judgement counts for a play so the weighted accuracy comes as close to the target as the miss count allows.",
		RunE: func(cmd *cobra.Command, args []string) error {
			play := model.Play{
				Objects:  objects,
				Misses:   misses,
				Accuracy: accuracy,
			}
			if cmd.Flags().Changed("good") {
				play.Good = &good
			}
			if cmd.Flags().Changed("acceptable") {
				play.Acceptable = &acceptable
			}
			for _, n := range nested {
				play.Nested = append(play.Nested, combo.Object{Nested: n})
			}

			svc := app.New()
			result, err := svc.Simulate(cmd.Context(), play)
			if err != nil {
				return fmt.Errorf("simulation failed: %w", err)
			}

			if jsonOutput {
				enc := json.NewEncoder(cmd.OutOrStdout())
				enc.SetIndent("", "  ")
				return enc.Encode(result)
			}

			fmt.Fprintln(cmd.OutOrStdout(), renderResult(result))
			return nil
		},
	}

	cmd.Flags().IntVar(&objects, "objects", 0, "number of judged objects")
	cmd.Flags().IntVar(&misses, "misses", 0, "number of missed objects")
	cmd.Flags().Float64Var(&accuracy, "accuracy", 1.0, "target accuracy in [0,1]")
	cmd.Flags().IntVar(&good, "good", 0, "explicit good count (switches to explicit mode)")
	cmd.Flags().IntVar(&acceptable, "acceptable", 0, "explicit acceptable count (switches to explicit mode)")
	cmd.Flags().IntSliceVar(&nested, "nested", nil, "per-object nested sub-unit counts for max combo")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "print the result as JSON")

	return cmd
}

func renderResult(r model.Result) string {
	var b strings.Builder

	b.WriteString(headerStyle.Render("judgement distribution"))
	b.WriteString("\n")
	b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("perfect:   "), valueStyle.Render(fmt.Sprintf("%d", r.Distribution.Perfect))))
	b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("good:      "), valueStyle.Render(fmt.Sprintf("%d", r.Distribution.Good))))
	b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("acceptable:"), valueStyle.Render(fmt.Sprintf("%d", r.Distribution.Acceptable))))
	b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("miss:      "), missStyle.Render(fmt.Sprintf("%d", r.Distribution.Miss))))
	b.WriteString(fmt.Sprintf("  %s %s\n", labelStyle.Render("accuracy:  "), valueStyle.Render(fmt.Sprintf("%.4f", r.Accuracy))))
	b.WriteString(fmt.Sprintf("  %s %s", labelStyle.Render("max combo: "), valueStyle.Render(fmt.Sprintf("%d", r.MaxCombo))))

	return b.String()
}
