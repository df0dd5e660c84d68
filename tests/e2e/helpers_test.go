package e2e_test

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// testProject is an isolated working directory with a freshly built heron
// binary. Every test gets its own so runs cannot interfere.
type testProject struct {
	Dir        string
	BinaryPath string
	t          *testing.T
}

// newTestProject builds the heron binary into a fresh temp directory and
// returns a testProject ready for use.
func newTestProject(t *testing.T) *testProject {
	t.Helper()

	dir := t.TempDir()

	binary := filepath.Join(dir, "heron")
	if runtime.GOOS == "windows" {
		binary += ".exe"
	}
	build := exec.Command("go", "build", "-o", binary, "./cmd/heron")
	build.Dir = projectRoot()
	out, err := build.CombinedOutput()
	require.NoError(t, err, "building heron: %s", string(out))

	return &testProject{Dir: dir, BinaryPath: binary, t: t}
}

// projectRoot returns the absolute path to the root of the heron repository.
// It uses runtime.Caller(0) to find this source file's location and navigates
// two directories up (tests/e2e/ -> tests/ -> repo root).
func projectRoot() string {
	_, thisFile, _, _ := runtime.Caller(0)
	return filepath.Join(filepath.Dir(thisFile), "..", "..")
}

// writeConfig writes content to heron.toml in tp.Dir.
func (tp *testProject) writeConfig(content string) {
	tp.t.Helper()
	err := os.WriteFile(filepath.Join(tp.Dir, "heron.toml"), []byte(content), 0o644)
	require.NoError(tp.t, err)
}

// writeEvents writes NDJSON envelope lines to name in tp.Dir and returns the
// absolute path.
func (tp *testProject) writeEvents(name string, lines ...string) string {
	tp.t.Helper()
	path := filepath.Join(tp.Dir, name)
	err := os.WriteFile(path, []byte(strings.Join(lines, "\n")+"\n"), 0o644)
	require.NoError(tp.t, err)
	return path
}

// run creates an exec.Cmd for heron rooted in tp.Dir.
func (tp *testProject) run(args ...string) *exec.Cmd {
	cmd := exec.Command(tp.BinaryPath, args...)
	cmd.Dir = tp.Dir
	cmd.Env = append(os.Environ(),
		"NO_COLOR=1",            // disable ANSI color in output
		"HERON_LOG_FORMAT=json", // structured logs for easier parsing
	)
	return cmd
}

// runExpectSuccess runs heron and asserts exit code 0.
// Returns combined stdout+stderr output.
func (tp *testProject) runExpectSuccess(args ...string) string {
	tp.t.Helper()
	cmd := tp.run(args...)
	out, err := cmd.CombinedOutput()
	require.NoError(tp.t, err, "heron %v failed:\n%s", args, string(out))
	return string(out)
}

// runExpectFailure runs heron and asserts a non-zero exit code.
// Returns combined output and the exit code.
func (tp *testProject) runExpectFailure(args ...string) (string, int) {
	tp.t.Helper()
	cmd := tp.run(args...)
	out, err := cmd.CombinedOutput()
	require.Error(tp.t, err, "heron %v expected to fail but succeeded:\n%s", args, string(out))
	var exitErr *exec.ExitError
	require.True(tp.t, errors.As(err, &exitErr), "expected *exec.ExitError, got %T: %v", err, err)
	return string(out), exitErr.ExitCode()
}

// resultFiles globs tp.Dir/<dir> for result documents.
func (tp *testProject) resultFiles(dir string) []string {
	tp.t.Helper()
	matches, err := filepath.Glob(filepath.Join(tp.Dir, dir, "*-result.json"))
	require.NoError(tp.t, err)
	return matches
}

// containerFiles globs tp.Dir/<dir> for container documents.
func (tp *testProject) containerFiles(dir string) []string {
	tp.t.Helper()
	matches, err := filepath.Glob(filepath.Join(tp.Dir, dir, "*-container.json"))
	require.NoError(tp.t, err)
	return matches
}

// envelope formats one NDJSON line routing a message to the given context.
// message is the JSON object body of the lifecycle message.
func envelope(context, message string) string {
	if context == "" {
		return fmt.Sprintf(`{"message":%s}`, message)
	}
	return fmt.Sprintf(`{"context":%q,"message":%s}`, context, message)
}

// passingTestEvents returns a minimal event stream for one passing test
// wrapped in a suite, routed to context.
func passingTestEvents(context, suite, test string) []string {
	return []string{
		envelope(context, fmt.Sprintf(`{"kind":"suite_start","name":%q}`, suite)),
		envelope(context, fmt.Sprintf(`{"kind":"test_start","name":%q,"start":1000}`, test)),
		envelope(context, fmt.Sprintf(`{"kind":"test_info","fullName":"%s.%s"}`, suite, test)),
		envelope(context, `{"kind":"test_end","status":"passed","stage":"finished","stop":2000,"duration":1000}`),
		envelope(context, `{"kind":"suite_end"}`),
	}
}
