package cli

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Heron/internal/tui"
)

// watchFlags holds the flag values for the watch command.
type watchFlags struct {
	Interval time.Duration
}

// newWatchCmd creates the "heron watch" command.
func newWatchCmd() *cobra.Command {
	var flags watchFlags

	cmd := &cobra.Command{
		Use:   "watch [results-dir]",
		Short: "Watch a results directory live in the terminal",
		Long: `Open a terminal UI that polls the results directory (default from
heron.toml) and shows aggregate counts and individual results as they are
written.`,
		Example: `  # Watch the configured output directory
  heron watch

  # Watch an explicit directory, polling every 5 seconds
  heron watch build/results --interval 5s`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
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

			model := tui.NewWatch(tui.WatchConfig{Dir: dir, Interval: flags.Interval})
			if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
				return fmt.Errorf("running watch UI: %w", err)
			}
			return nil
		},
	}

	cmd.Flags().DurationVar(&flags.Interval, "interval", tui.DefaultPollInterval, "Poll interval")

	return cmd
}

func init() {
	rootCmd.AddCommand(newWatchCmd())
}
