package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/config"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
	"github.com/AbdelazizMoustafa10m/Heron/internal/logging"
	"github.com/AbdelazizMoustafa10m/Heron/internal/session"
)

// maxEventLine bounds a single NDJSON line; attachments travel base64-encoded
// inside events, so lines can get large.
const maxEventLine = 16 * 1024 * 1024

// replayFlags holds the flag values for the replay command.
type replayFlags struct {
	OutputDir string
	Clean     bool
}

// newReplayCmd creates the "heron replay" command.
func newReplayCmd() *cobra.Command {
	var flags replayFlags

	cmd := &cobra.Command{
		Use:   "replay [events-file]",
		Short: "Replay an event stream into report documents",
		Long: `Read newline-delimited JSON lifecycle events from a file (or stdin when no
file is given), route each event to its worker's session, then replay every
session through the state machine and write result, container, and attachment
files into the output directory.

Sessions are replayed strictly one at a time, in the order their workers first
appeared in the stream.`,
		Example: `  # Replay a captured event stream
  heron replay events.ndjson

  # Pipe events from a test runner
  my-runner --emit-events | heron replay -o build/results

  # Start from a clean output directory
  heron replay events.ndjson --clean`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runReplay(cmd, args, flags)
		},
	}

	cmd.Flags().StringVarP(&flags.OutputDir, "output-dir", "o", "", "Results directory (default from heron.toml, env: HERON_OUTPUT_DIR)")
	cmd.Flags().BoolVar(&flags.Clean, "clean", false, "Remove the output directory before replaying (env: HERON_CLEAN)")

	return cmd
}

func init() {
	rootCmd.AddCommand(newReplayCmd())
}

// runReplay is the command's RunE function.
func runReplay(cmd *cobra.Command, args []string, flags replayFlags) error {
	logger := logging.New("replay")

	overrides := &config.CLIOverrides{}
	if cmd.Flags().Changed("output-dir") {
		overrides.OutputDir = &flags.OutputDir
	}
	if cmd.Flags().Changed("clean") {
		overrides.Clean = &flags.Clean
	}

	rc, err := resolveWithOverrides(overrides)
	if err != nil {
		return err
	}

	in := cmd.InOrStdin()
	source := "stdin"
	if len(args) == 1 {
		f, err := os.Open(args[0])
		if err != nil {
			return fmt.Errorf("opening events file: %w", err)
		}
		defer f.Close() //nolint:errcheck
		in = f
		source = args[0]
	}

	outputDir := rc.Config.Report.OutputDir
	if rc.Config.Report.Clean {
		if err := os.RemoveAll(outputDir); err != nil {
			return fmt.Errorf("cleaning output directory %s: %w", outputDir, err)
		}
	}

	writer, err := backend.NewFileWriter(outputDir, backend.WithLogger(logger))
	if err != nil {
		return err
	}
	registry := session.NewRegistry(writer, session.WithLogger(logger))

	events, err := readEvents(in, registry)
	if err != nil {
		return fmt.Errorf("reading events from %s: %w", source, err)
	}
	logger.Info("event stream read", "source", source, "events", events, "sessions", registry.Len())

	if err := registry.DrainAll(cmd.Context()); err != nil {
		return fmt.Errorf("replaying sessions: %w", err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "Replayed %d event(s) into %s\n", events, outputDir)
	return nil
}

// resolveWithOverrides resolves configuration like loadAndResolveConfig but
// layers command-specific flag overrides on top.
func resolveWithOverrides(overrides *config.CLIOverrides) (*config.ResolvedConfig, error) {
	cfgPath := flagConfig
	if cfgPath == "" {
		found, err := config.FindConfigFile(".")
		if err != nil {
			return nil, fmt.Errorf("finding config file: %w", err)
		}
		cfgPath = found
	}

	var fileCfg *config.Config
	if cfgPath != "" {
		fc, _, err := config.LoadFromFile(cfgPath)
		if err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
		fileCfg = fc
	}

	rc := config.Resolve(config.NewDefaults(), fileCfg, os.LookupEnv, overrides)
	rc.Path = cfgPath
	return rc, nil
}

// readEvents decodes NDJSON envelopes from r and pushes each message into the
// session owned by its execution context. Blank lines are skipped; a malformed
// line aborts with its line number.
func readEvents(r io.Reader, registry *session.Registry) (int, error) {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), maxEventLine)

	count := 0
	line := 0
	for scanner.Scan() {
		line++
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}

		var env lifecycle.Envelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return count, fmt.Errorf("line %d: %w", line, err)
		}
		registry.Push(env.Context, env.Message)
		count++
	}
	if err := scanner.Err(); err != nil {
		return count, err
	}
	return count, nil
}
