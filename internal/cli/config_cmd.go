package cli

import (
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Heron/internal/config"
)

// configCmd is the parent "config" namespace command. It has no action of its
// own -- it groups debug and validate subcommands.
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Configuration management commands",
	Long:  "Inspect, validate, and debug Heron configuration.",
	// RunE shows help when invoked with no subcommand.
	RunE: func(cmd *cobra.Command, args []string) error {
		return cmd.Help()
	},
}

// configDebugCmd implements "heron config debug".
// It prints the fully-resolved configuration with source annotations.
var configDebugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Show resolved configuration with source annotations",
	Long: `Display the fully-resolved configuration showing each value and
the source where it came from (cli flag, environment variable, config file, or default).`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, _, err := loadAndResolveConfig()
		if err != nil {
			return err
		}
		printResolvedConfig(cmd, resolved)
		return nil
	},
}

// configValidateCmd implements "heron config validate".
// It validates the resolved configuration and reports all errors and warnings.
var configValidateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate configuration and report issues",
	Long:  "Check the configuration for errors and warnings.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		resolved, meta, err := loadAndResolveConfig()
		if err != nil {
			return err
		}
		result := config.Validate(resolved.Config, meta)
		printValidationResult(cmd, result)
		if result.HasErrors() {
			return fmt.Errorf("configuration has %d error(s)", len(result.Errors()))
		}
		return nil
	},
}

func init() {
	configCmd.AddCommand(configDebugCmd)
	configCmd.AddCommand(configValidateCmd)
	rootCmd.AddCommand(configCmd)
}

// loadAndResolveConfig loads and resolves the configuration from all sources
// (file, env, CLI flags). It returns the resolved config, the TOML metadata
// (nil when no file was found), and any loading error.
//
// When flagConfig is set, that path is used directly. Otherwise,
// config.FindConfigFile searches upward from the current directory.
func loadAndResolveConfig() (*config.ResolvedConfig, *toml.MetaData, error) {
	var (
		fileCfg *config.Config
		meta    *toml.MetaData
		cfgPath string
	)

	if flagConfig != "" {
		// Explicit --config path provided.
		cfgPath = flagConfig
		fc, md, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, nil, fmt.Errorf("loading config: %w", err)
		}
		fileCfg = fc
		meta = &md
	} else {
		// Auto-detect heron.toml by walking up from cwd.
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, nil, fmt.Errorf("finding config file: %w", err)
		}
		if found != "" {
			cfgPath = found
			fc, md, err := config.LoadFromFile(cfgPath)
			if err != nil {
				return nil, nil, fmt.Errorf("loading config: %w", err)
			}
			fileCfg = fc
			meta = &md
		}
	}

	resolved := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, nil)
	resolved.Path = cfgPath

	return resolved, meta, nil
}

// ---- Lipgloss styles --------------------------------------------------------

// sourceStyle returns a lipgloss style for a given ConfigSource.
// When --no-color is active, lipgloss automatically strips ANSI because
// the root PersistentPreRunE sets the color profile to Ascii.
func sourceStyle(src config.ConfigSource) lipgloss.Style {
	switch src {
	case config.SourceFile:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("12")) // bright blue
	case config.SourceEnv:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("11")) // bright yellow
	case config.SourceCLI:
		return lipgloss.NewStyle().Foreground(lipgloss.Color("9")) // bright red
	default: // SourceDefault
		return lipgloss.NewStyle().Foreground(lipgloss.Color("10")) // bright green
	}
}

var (
	styleHeader    = lipgloss.NewStyle().Bold(true)
	styleSeparator = lipgloss.NewStyle()
	styleSection   = lipgloss.NewStyle().Bold(true)
	styleErrorLbl  = lipgloss.NewStyle().Foreground(lipgloss.Color("9")).Bold(true)  // red
	styleWarnLbl   = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Bold(true) // yellow
	styleSuccess   = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))            // green
)

// ---- printResolvedConfig ----------------------------------------------------

const fieldWidth = 24 // column width for field names

// printResolvedConfig writes the formatted resolved configuration to cmd's
// output writer (stdout by default).
func printResolvedConfig(cmd *cobra.Command, rc *config.ResolvedConfig) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Configuration Debug")
	sep := styleSeparator.Render(strings.Repeat("=", len("Configuration Debug")))
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out)

	if rc.Path != "" {
		fmt.Fprintf(out, "Config file: %s\n", rc.Path)
	} else {
		fmt.Fprintln(out, "Config file: none found")
	}
	fmt.Fprintln(out)

	// --- [report] ---
	fmt.Fprintln(out, styleSection.Render("[report]"))
	printField(out, "output_dir", fmtStr(rc.Config.Report.OutputDir), rc.Sources["report.output_dir"])
	printField(out, "clean", fmt.Sprintf("%t", rc.Config.Report.Clean), rc.Sources["report.clean"])
	fmt.Fprintln(out)

	// --- [plan] ---
	fmt.Fprintln(out, styleSection.Render("[plan]"))
	printField(out, "path", fmtStr(rc.Config.Plan.Path), rc.Sources["plan.path"])
	fmt.Fprintln(out)

	// --- [links] (sorted for determinism) ---
	if len(rc.Config.Links) > 0 {
		fmt.Fprintln(out, styleSection.Render("[links]"))
		for _, name := range sortedKeys(rc.Config.Links) {
			printField(out, name, fmtStr(rc.Config.Links[name]), rc.Sources["links."+name])
		}
		fmt.Fprintln(out)
	}

	// --- [labels] (sorted for determinism) ---
	if len(rc.Config.Labels) > 0 {
		fmt.Fprintln(out, styleSection.Render("[labels]"))
		for _, name := range sortedKeys(rc.Config.Labels) {
			printField(out, name, fmtStr(rc.Config.Labels[name]), rc.Sources["labels."+name])
		}
		fmt.Fprintln(out)
	}
}

// sortedKeys returns the map's keys in sorted order.
func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// printField writes a single key = value (source: ...) line.
func printField(out io.Writer, name, value string, src config.ConfigSource) {
	// Left-pad the field name to fieldWidth.
	padded := fmt.Sprintf("  %-*s", fieldWidth, name)
	srcLabel := sourceStyle(src).Render(fmt.Sprintf("(source: %s)", src))
	line := fmt.Sprintf("%s = %-40s %s\n", padded, value, srcLabel)
	fmt.Fprint(out, line)
}

// fmtStr formats a string value for display (quoted).
func fmtStr(s string) string {
	return fmt.Sprintf("%q", s)
}

// ---- printValidationResult --------------------------------------------------

// printValidationResult writes the formatted validation report to cmd's
// output writer.
func printValidationResult(cmd *cobra.Command, result *config.ValidationResult) {
	out := cmd.OutOrStdout()

	header := styleHeader.Render("Configuration Validation")
	sep := styleSeparator.Render(strings.Repeat("=", len("Configuration Validation")))
	fmt.Fprintln(out, header)
	fmt.Fprintln(out, sep)
	fmt.Fprintln(out)

	errs := result.Errors()
	warns := result.Warnings()

	if len(errs) == 0 && len(warns) == 0 {
		fmt.Fprintln(out, styleSuccess.Render("No issues found."))
		return
	}

	if len(errs) > 0 {
		fmt.Fprintln(out, styleErrorLbl.Render("Errors:"))
		for _, issue := range errs {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	if len(warns) > 0 {
		fmt.Fprintln(out, styleWarnLbl.Render("Warnings:"))
		for _, issue := range warns {
			fmt.Fprintf(out, "  [%s] %s\n", issue.Field, issue.Message)
		}
		fmt.Fprintln(out)
	}

	fmt.Fprintf(out, "%d error(s), %d warning(s)\n", len(errs), len(warns))
}
