package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Heron/internal/config"
)

// initFlags holds the flag values for the init command.
type initFlags struct {
	OutputDir string
	PlanPath  string
	Clean     bool
	Force     bool
	NoInput   bool
}

// newInitCmd creates the "heron init" command. It scaffolds a heron.toml in
// the current directory, interactively unless --no-input is given.
func newInitCmd() *cobra.Command {
	var flags initFlags

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create a heron.toml in the current directory",
		Long: `Write a starter heron.toml. Without --no-input an interactive form asks for
the output directory and optional selection plan; with it, flag values (or
defaults) are used directly.`,
		Example: `  # Interactive setup
  heron init

  # Non-interactive, accepting defaults
  heron init --no-input

  # Non-interactive with explicit values
  heron init --no-input -o build/results --plan testplan.json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", config.DefaultOutputDir, "Results directory to write into heron.toml")
	cmd.Flags().StringVar(&flags.PlanPath, "plan", "", "Selection plan path to write into heron.toml")
	cmd.Flags().BoolVar(&flags.Clean, "clean", false, "Configure runs to clean the output directory first")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Overwrite an existing heron.toml")
	cmd.Flags().BoolVar(&flags.NoInput, "no-input", false, "Skip the interactive form and use flag values")

	return cmd
}

func init() {
	rootCmd.AddCommand(newInitCmd())
}

// runInit is the RunE handler for the init command.
func runInit(cmd *cobra.Command, flags initFlags) error {
	vars := config.TemplateVars{
		OutputDir: flags.OutputDir,
		Clean:     flags.Clean,
		PlanPath:  flags.PlanPath,
	}

	if !flags.NoInput {
		if err := runInitForm(&vars); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				fmt.Fprintln(cmd.ErrOrStderr(), "Aborted.")
				return nil
			}
			return fmt.Errorf("running init form: %w", err)
		}
	}

	destDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("getting current directory: %w", err)
	}

	path, err := config.RenderConfigTemplate(destDir, vars, flags.Force)
	if err != nil {
		return err
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Created %s\n", path)
	return nil
}

// runInitForm collects template variables interactively, pre-filled with the
// current values of vars.
func runInitForm(vars *config.TemplateVars) error {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Output directory").
				Description("Where result, container, and attachment files are written.").
				Value(&vars.OutputDir).
				Validate(func(s string) error {
					if s == "" {
						return errors.New("output directory must not be empty")
					}
					return nil
				}),
			huh.NewInput().
				Title("Selection plan path").
				Description("Optional testplan file; leave empty for none.").
				Value(&vars.PlanPath),
			huh.NewConfirm().
				Title("Clean output directory before each run?").
				Value(&vars.Clean),
		),
	).
		WithTheme(huh.ThemeCharm()).
		Run()
}
