package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// summaryFlags holds the flag values for the summary command.
type summaryFlags struct {
	JSON    bool
	Verbose bool
}

// summaryOutput is the top-level JSON output type for the summary command.
type summaryOutput struct {
	Total      int                    `json:"total"`
	Passed     int                    `json:"passed"`
	Failed     int                    `json:"failed"`
	Broken     int                    `json:"broken"`
	Skipped    int                    `json:"skipped"`
	Unknown    int                    `json:"unknown"`
	DurationMS int64                  `json:"duration_ms"`
	Results    []backend.SummaryEntry `json:"results,omitempty"`
}

// newSummaryCmd creates the "heron summary" command.
func newSummaryCmd() *cobra.Command {
	var flags summaryFlags

	cmd := &cobra.Command{
		Use:   "summary [results-dir]",
		Short: "Summarize a results directory with a pass-rate bar",
		Long: `Read every result document in the given directory (default from heron.toml)
and print aggregate counts with a pass-rate bar.

Use --verbose to list individual results. Use --json for structured output
suitable for scripting.`,
		Example: `  # Summarize the configured output directory
  heron summary

  # Summarize an explicit directory, listing every result
  heron summary build/results --verbose

  # Structured JSON output
  heron summary --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSummary(cmd, args, flags)
		},
	}

	cmd.Flags().BoolVar(&flags.JSON, "json", false, "Output structured JSON to stdout")
	cmd.Flags().BoolVar(&flags.Verbose, "verbose", false, "List individual results")

	return cmd
}

func init() {
	rootCmd.AddCommand(newSummaryCmd())
}

// runSummary is the command's RunE function.
func runSummary(cmd *cobra.Command, args []string, flags summaryFlags) error {
	dir := ""
	if len(args) == 1 {
		dir = args[0]
	} else {
		rc, err := resolveWithOverrides(nil)
		if err != nil {
			return err
		}
		dir = rc.Config.Report.OutputDir
	}

	summary, err := backend.LoadSummary(cmd.Context(), dir)
	if err != nil {
		return err
	}

	if flags.JSON {
		return renderSummaryJSON(cmd.OutOrStdout(), summary, flags.Verbose)
	}

	// Human-readable output goes to stderr; stdout stays clean for --json.
	out := cmd.ErrOrStderr()
	fmt.Fprintln(out, renderSummaryReport(summary, dir, flags.Verbose))

	if summary.Failed() {
		return fmt.Errorf("%d failed, %d broken",
			summary.Count(lifecycle.StatusFailed), summary.Count(lifecycle.StatusBroken))
	}
	return nil
}

// renderSummaryJSON serialises the summary to JSON and writes it to w.
func renderSummaryJSON(w io.Writer, s *backend.Summary, verbose bool) error {
	out := summaryOutput{
		Total:      s.Total,
		Passed:     s.Count(lifecycle.StatusPassed),
		Failed:     s.Count(lifecycle.StatusFailed),
		Broken:     s.Count(lifecycle.StatusBroken),
		Skipped:    s.Count(lifecycle.StatusSkipped),
		Unknown:    s.Count(lifecycle.StatusUnknown),
		DurationMS: s.DurationMS,
	}
	if verbose {
		out.Results = s.Entries
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// renderSummaryReport returns a styled report for the whole directory:
//
//	Heron Summary - build/results
//	=============================
//	████████████░░░░░░░░ 85% passed (17/20)
//	17 passed, 2 failed, 1 skipped in 4.2s
func renderSummaryReport(s *backend.Summary, dir string, verbose bool) string {
	const passBarWidth = 40

	headerStyle := lipgloss.NewStyle().Bold(true)
	passedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("10"))  // green
	failedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("9"))   // red
	brokenStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("11"))  // yellow
	skippedStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("8"))  // dark gray

	title := fmt.Sprintf("Heron Summary - %s", dir)

	var sb strings.Builder
	sb.WriteString(headerStyle.Render(title))
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("=", len(title)))
	sb.WriteString("\n")

	if s.Total == 0 {
		sb.WriteString("No results found.\n")
		return sb.String()
	}

	passed := s.Count(lifecycle.StatusPassed)
	rate := float64(passed) / float64(s.Total)

	// Static pass-rate bar using bubbles/progress ViewAs. WithoutPercentage
	// because the percentage is rendered in the fraction text instead.
	bar := progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(passBarWidth),
		progress.WithoutPercentage(),
	)
	sb.WriteString(bar.ViewAs(rate))
	sb.WriteString(fmt.Sprintf(" %.0f%% passed (%d/%d)\n", rate*100, passed, s.Total))

	var parts []string
	if passed > 0 {
		parts = append(parts, passedStyle.Render(fmt.Sprintf("%d passed", passed)))
	}
	if n := s.Count(lifecycle.StatusFailed); n > 0 {
		parts = append(parts, failedStyle.Render(fmt.Sprintf("%d failed", n)))
	}
	if n := s.Count(lifecycle.StatusBroken); n > 0 {
		parts = append(parts, brokenStyle.Render(fmt.Sprintf("%d broken", n)))
	}
	if n := s.Count(lifecycle.StatusSkipped); n > 0 {
		parts = append(parts, skippedStyle.Render(fmt.Sprintf("%d skipped", n)))
	}
	if n := s.Count(lifecycle.StatusUnknown); n > 0 {
		parts = append(parts, fmt.Sprintf("%d unknown", n))
	}
	sb.WriteString(strings.Join(parts, ", "))
	sb.WriteString(fmt.Sprintf(" in %s\n", (time.Duration(s.DurationMS) * time.Millisecond).Round(100*time.Millisecond)))

	if verbose {
		sb.WriteString("\n")
		for _, e := range s.Entries {
			name := e.Name
			if e.FullName != "" {
				name = e.FullName
			}
			sb.WriteString(fmt.Sprintf("  %-10s %s\n", statusLabel(e.Status), name))
		}
	}

	return sb.String()
}

// statusLabel renders a status with its conventional color.
func statusLabel(status lifecycle.Status) string {
	switch status {
	case lifecycle.StatusPassed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")).Render("passed")
	case lifecycle.StatusFailed:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Render("failed")
	case lifecycle.StatusBroken:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("broken")
	case lifecycle.StatusSkipped:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("8")).Render("skipped")
	default:
		return "unknown"
	}
}
