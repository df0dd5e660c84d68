package e2e_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVersionCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	out := tp.runExpectSuccess("version")
	assert.Contains(t, out, "heron")
}

func TestVersionCommandJSON(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	out := tp.runExpectSuccess("version", "--json")
	assert.Contains(t, out, `"version"`)
}

func TestInitCommandNoInput(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	out := tp.runExpectSuccess("init", "--no-input", "-o", "build/results")

	assert.Contains(t, out, "Created")

	data, err := os.ReadFile(filepath.Join(tp.Dir, "heron.toml"))
	require.NoError(t, err, "heron.toml should be created by init")
	assert.Contains(t, string(data), `output_dir = "build/results"`)
}

func TestInitCommandRefusesOverwrite(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	tp.writeConfig("[report]\noutput_dir = \"keep-me\"\n")

	out, _ := tp.runExpectFailure("init", "--no-input")
	assert.Contains(t, out, "already exists")

	// The original file is untouched.
	data, err := os.ReadFile(filepath.Join(tp.Dir, "heron.toml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "keep-me")
}

func TestConfigDebugCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	tp.writeConfig(`[report]
output_dir = "build/results"

[links]
issue = "https://tracker.example/{}"
`)

	out := tp.runExpectSuccess("config", "debug")
	assert.Contains(t, out, "Configuration Debug")
	assert.Contains(t, out, `"build/results"`)
	assert.Contains(t, out, "(source: file)")
	assert.Contains(t, out, "[links]")
}

func TestConfigValidateCommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	tp.writeConfig("[report]\noutput_dir = \"results\"\n")

	out := tp.runExpectSuccess("config", "validate")
	assert.Contains(t, out, "Configuration Validation")
}

func TestConfigValidateFailsOnBadConfig(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	tp.writeConfig(`[report]
output_dir = ""

[links]
issue = "https://tracker.example/no-placeholder"
`)

	out, _ := tp.runExpectFailure("config", "validate")
	assert.Contains(t, out, "Errors:")
	assert.Contains(t, out, "report.output_dir")
}

func TestMissingConfigFallsBackToDefaults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	// No heron.toml -- config debug should still show defaults.
	out := tp.runExpectSuccess("config", "debug")
	assert.Contains(t, out, "Configuration Debug")
	assert.Contains(t, out, "(source: default)")
}

func TestEnvOverridesConfigFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	tp.writeConfig("[report]\noutput_dir = \"from-file\"\n")

	cmd := tp.run("config", "debug")
	cmd.Env = append(cmd.Env, "HERON_OUTPUT_DIR=from-env")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "config debug failed:\n%s", string(out))
	assert.Contains(t, string(out), `"from-env"`)
	assert.Contains(t, string(out), "(source: env)")
}

func TestNoArgsShowsHelp(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	out := tp.runExpectSuccess()
	assert.Contains(t, out, "heron")
	assert.Contains(t, out, "Usage")
}

func TestConfigHelpSubcommand(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	out := tp.runExpectSuccess("config", "--help")
	assert.Contains(t, out, "config")
	assert.Contains(t, out, "debug")
	assert.Contains(t, out, "validate")
}
