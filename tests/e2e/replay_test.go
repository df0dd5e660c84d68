package e2e_test

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReplaySingleSession(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	events := tp.writeEvents("events.ndjson", passingTestEvents("worker-1", "auth", "login")...)

	out := tp.runExpectSuccess("replay", events, "-o", "results")
	assert.Contains(t, out, "Replayed 5 event(s)")

	results := tp.resultFiles("results")
	require.Len(t, results, 1, "one test produces one result document")
	require.Len(t, tp.containerFiles("results"), 1, "one suite produces one container")

	data, err := os.ReadFile(results[0])
	require.NoError(t, err)
	var doc map[string]any
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "login", doc["name"])
	assert.Equal(t, "auth.login", doc["fullName"])
	assert.Equal(t, "passed", doc["status"])
}

func TestReplayMultipleWorkersAreSeparated(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)

	// Interleave two workers in one stream; each still yields its own test.
	a := passingTestEvents("worker-1", "auth", "login")
	b := passingTestEvents("worker-2", "billing", "invoice")
	var lines []string
	for i := range a {
		lines = append(lines, a[i], b[i])
	}
	events := tp.writeEvents("events.ndjson", lines...)

	tp.runExpectSuccess("replay", events, "-o", "results")

	assert.Len(t, tp.resultFiles("results"), 2)
	assert.Len(t, tp.containerFiles("results"), 2)
}

func TestReplayReadsStdin(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)

	cmd := tp.run("replay", "-o", "results")
	cmd.Stdin = strings.NewReader(strings.Join(passingTestEvents("", "auth", "login"), "\n") + "\n")
	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "replay from stdin failed:\n%s", string(out))

	assert.Len(t, tp.resultFiles("results"), 1)
}

func TestReplayUsesConfiguredOutputDir(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	tp.writeConfig("[report]\noutput_dir = \"configured-results\"\n")
	events := tp.writeEvents("events.ndjson", passingTestEvents("w", "auth", "login")...)

	tp.runExpectSuccess("replay", events)

	assert.Len(t, tp.resultFiles("configured-results"), 1)
}

func TestReplayCleanRemovesStaleResults(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	stale := filepath.Join(tp.Dir, "results", "stale-result.json")
	require.NoError(t, os.MkdirAll(filepath.Dir(stale), 0o755))
	require.NoError(t, os.WriteFile(stale, []byte(`{"status":"failed"}`), 0o644))

	events := tp.writeEvents("events.ndjson", passingTestEvents("w", "auth", "login")...)
	tp.runExpectSuccess("replay", events, "-o", "results", "--clean")

	_, err := os.Stat(stale)
	assert.True(t, os.IsNotExist(err), "stale result should be removed by --clean")
	assert.Len(t, tp.resultFiles("results"), 1)
}

func TestReplayMalformedLineFailsWithLineNumber(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	events := tp.writeEvents("events.ndjson",
		envelope("w", `{"kind":"test_start","name":"ok","start":1}`),
		"{not json",
	)

	out, _ := tp.runExpectFailure("replay", events, "-o", "results")
	assert.Contains(t, out, "line 2")
}

func TestReplayMissingEventsFile(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	out, _ := tp.runExpectFailure("replay", "no-such-file.ndjson")
	assert.Contains(t, out, "no-such-file.ndjson")
}

func TestReplayAttachmentIsContentAddressed(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping E2E test in short mode")
	}
	t.Parallel()

	tp := newTestProject(t)
	events := tp.writeEvents("events.ndjson",
		envelope("w", `{"kind":"test_start","name":"snap","start":1}`),
		// "body" is base64 on the wire ("hello" -> aGVsbG8=).
		envelope("w", `{"kind":"attachment","name":"log","body":"aGVsbG8=","mediaType":"text/plain"}`),
		envelope("w", `{"kind":"test_end","status":"passed","stage":"finished","stop":2,"duration":1}`),
	)

	tp.runExpectSuccess("replay", events, "-o", "results")

	attachments, err := filepath.Glob(filepath.Join(tp.Dir, "results", "*-attachment*"))
	require.NoError(t, err)
	require.Len(t, attachments, 1)

	data, err := os.ReadFile(attachments[0])
	require.NoError(t, err)
	assert.Equal(t, "hello", string(data))
}
