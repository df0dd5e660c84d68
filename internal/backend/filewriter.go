package backend

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/cespare/xxhash/v2"
	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// extByMediaType maps attachment media types to file extensions. Unlisted
// types get no extension; report viewers fall back to the declared type.
var extByMediaType = map[string]string{
	"application/json": ".json",
	"application/xml":  ".xml",
	"text/plain":       ".txt",
	"text/csv":         ".csv",
	"text/html":        ".html",
	"image/png":        ".png",
	"image/jpeg":       ".jpg",
	"image/svg+xml":    ".svg",
	"video/webm":       ".webm",
}

// FileWriter implements Backend by writing result, container, and attachment
// files into a results directory. Handles are indices into arena tables; a
// record leaves its table when it is written out.
//
// All methods are safe for concurrent use, although the replay engine only
// ever drives one session at a time.
type FileWriter struct {
	dir    string
	logger *log.Logger

	mu       sync.Mutex
	nextRef  uint64
	scopes   map[ScopeRef]*ContainerResult
	tests    map[TestRef]*testEntry
	fixtures map[FixtureRef]*FixtureResult
}

// testEntry pairs a test record with its open-step stack. The stack tracks
// where incoming step_start/step_stop/attachment messages nest.
type testEntry struct {
	result *TestResult
	open   []*StepResult
}

// FileWriterOption configures a FileWriter.
type FileWriterOption func(*FileWriter)

// WithLogger attaches a charmbracelet/log Logger. When nil the writer
// operates silently.
func WithLogger(logger *log.Logger) FileWriterOption {
	return func(fw *FileWriter) { fw.logger = logger }
}

// NewFileWriter creates a FileWriter rooted at dir, creating the directory
// if needed.
func NewFileWriter(dir string, opts ...FileWriterOption) (*FileWriter, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("backend: creating results dir %q: %w", dir, err)
	}
	fw := &FileWriter{
		dir:      dir,
		scopes:   make(map[ScopeRef]*ContainerResult),
		tests:    make(map[TestRef]*testEntry),
		fixtures: make(map[FixtureRef]*FixtureResult),
	}
	for _, opt := range opts {
		opt(fw)
	}
	return fw, nil
}

// Dir returns the results directory the writer persists into.
func (fw *FileWriter) Dir() string { return fw.dir }

// StartScope implements Backend.
func (fw *FileWriter) StartScope() ScopeRef {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	ref := ScopeRef(fw.alloc())
	fw.scopes[ref] = &ContainerResult{
		UUID:  newUUID(),
		Start: lifecycle.Now(),
	}
	return ref
}

// WriteScope implements Backend. The container document is written and the
// handle released.
func (fw *FileWriter) WriteScope(ctx context.Context, ref ScopeRef) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backend: write scope: %w", err)
	}

	fw.mu.Lock()
	container, ok := fw.scopes[ref]
	if ok {
		delete(fw.scopes, ref)
	}
	fw.mu.Unlock()

	if !ok {
		return fmt.Errorf("backend: write scope: unknown handle %d", ref)
	}

	if container.Stop == 0 {
		container.Stop = lifecycle.Now()
	}
	path := filepath.Join(fw.dir, container.UUID+"-container.json")
	if err := writeJSON(path, container); err != nil {
		return err
	}
	fw.logf("container written", "uuid", container.UUID, "children", len(container.Children))
	return nil
}

// StartTest implements Backend. The new test's UUID is registered as a child
// of every scope in scopePath.
func (fw *FileWriter) StartTest(attrs TestAttrs, scopePath []ScopeRef) TestRef {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	result := &TestResult{
		UUID:       newUUID(),
		Name:       attrs.Name,
		Stage:      lifecycle.StageRunning,
		Start:      attrs.Start,
		Labels:     attrs.Labels,
		Parameters: attrs.Parameters,
	}

	for _, scope := range scopePath {
		if container, ok := fw.scopes[scope]; ok {
			container.Children = append(container.Children, result.UUID)
		}
	}

	ref := TestRef(fw.alloc())
	fw.tests[ref] = &testEntry{result: result}
	return ref
}

// UpdateTest implements Backend.
func (fw *FileWriter) UpdateTest(ref TestRef, mutate func(*TestResult)) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if entry, ok := fw.tests[ref]; ok {
		mutate(entry.result)
	}
}

// StopTest implements Backend.
func (fw *FileWriter) StopTest(ctx context.Context, ref TestRef, stop StopInfo) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backend: stop test: %w", err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	entry, ok := fw.tests[ref]
	if !ok {
		return fmt.Errorf("backend: stop test: unknown handle %d", ref)
	}

	result := entry.result
	result.Stop = stop.Stop
	if result.Stop == 0 && stop.Duration > 0 {
		result.Stop = result.Start + stop.Duration
	}
	if result.Stage == "" || result.Stage == lifecycle.StageRunning {
		result.Stage = lifecycle.StageFinished
	}
	return nil
}

// WriteTest implements Backend. The result document is written and the
// handle released.
func (fw *FileWriter) WriteTest(ctx context.Context, ref TestRef) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backend: write test: %w", err)
	}

	fw.mu.Lock()
	entry, ok := fw.tests[ref]
	if ok {
		delete(fw.tests, ref)
	}
	fw.mu.Unlock()

	if !ok {
		return fmt.Errorf("backend: write test: unknown handle %d", ref)
	}

	result := entry.result
	if result.Status == "" {
		result.Status = lifecycle.StatusUnknown
	}
	path := filepath.Join(fw.dir, result.UUID+"-result.json")
	if err := writeJSON(path, result); err != nil {
		return err
	}
	fw.logf("result written", "uuid", result.UUID, "name", result.Name, "status", result.Status)
	return nil
}

// StartFixture implements Backend. It declines when scope is zero or no
// longer open.
func (fw *FileWriter) StartFixture(scope ScopeRef, kind lifecycle.HookKind, attrs FixtureAttrs) (FixtureRef, bool) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	container, ok := fw.scopes[scope]
	if !ok {
		return 0, false
	}

	fixture := &FixtureResult{
		Name:  attrs.Name,
		Stage: lifecycle.StageRunning,
		Start: attrs.Start,
	}
	if kind == lifecycle.HookAfter {
		container.Afters = append(container.Afters, fixture)
	} else {
		container.Befores = append(container.Befores, fixture)
	}

	ref := FixtureRef(fw.alloc())
	fw.fixtures[ref] = fixture
	return ref, true
}

// UpdateFixture implements Backend.
func (fw *FileWriter) UpdateFixture(ref FixtureRef, mutate func(*FixtureResult)) {
	fw.mu.Lock()
	defer fw.mu.Unlock()

	if fixture, ok := fw.fixtures[ref]; ok {
		mutate(fixture)
	}
}

// StopFixture implements Backend. The fixture record stays aliased inside
// its container, which persists it on WriteScope; only the handle is
// released here.
func (fw *FileWriter) StopFixture(ctx context.Context, ref FixtureRef, stop StopInfo) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backend: stop fixture: %w", err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	fixture, ok := fw.fixtures[ref]
	if !ok {
		return fmt.Errorf("backend: stop fixture: unknown handle %d", ref)
	}
	delete(fw.fixtures, ref)

	fixture.Stop = stop.Stop
	if fixture.Status == "" {
		fixture.Status = lifecycle.StatusUnknown
	}
	if fixture.Stage == "" || fixture.Stage == lifecycle.StageRunning {
		fixture.Stage = lifecycle.StageFinished
	}
	return nil
}

// ApplyMessages implements Backend. Step messages maintain the per-test
// open-step stack; metadata merges into the record; attachments are written
// to content-addressed files and referenced from the innermost open step.
func (fw *FileWriter) ApplyMessages(ctx context.Context, ref TestRef, msgs []lifecycle.Message) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("backend: apply messages: %w", err)
	}

	fw.mu.Lock()
	defer fw.mu.Unlock()

	entry, ok := fw.tests[ref]
	if !ok {
		return fmt.Errorf("backend: apply messages: unknown handle %d", ref)
	}

	for _, msg := range msgs {
		switch msg.Kind {
		case lifecycle.KindStepStart:
			step := &StepResult{
				Name:  msg.Name,
				Stage: lifecycle.StageRunning,
				Start: msg.Start,
			}
			if parent := entry.currentStep(); parent != nil {
				parent.Steps = append(parent.Steps, step)
			} else {
				entry.result.Steps = append(entry.result.Steps, step)
			}
			entry.open = append(entry.open, step)

		case lifecycle.KindStepStop:
			step := entry.currentStep()
			if step == nil {
				continue
			}
			entry.open = entry.open[:len(entry.open)-1]
			step.Status = msg.Status
			if step.Status == "" {
				step.Status = lifecycle.StatusUnknown
			}
			step.Stage = lifecycle.StageFinished
			step.Stop = msg.Stop
			step.StatusDetails = msg.Details

		case lifecycle.KindMetadata:
			entry.result.Labels = append(entry.result.Labels, msg.Labels...)
			entry.result.Parameters = append(entry.result.Parameters, msg.Parameters...)

		case lifecycle.KindAttachment:
			att, err := fw.writeAttachment(msg)
			if err != nil {
				return err
			}
			if step := entry.currentStep(); step != nil {
				step.Attachments = append(step.Attachments, att)
			} else {
				entry.result.Attachments = append(entry.result.Attachments, att)
			}

		default:
			// Structural messages never reach ApplyMessages; ignore.
		}
	}
	return nil
}

// currentStep returns the innermost open step, or nil when none is open.
func (te *testEntry) currentStep() *StepResult {
	if len(te.open) == 0 {
		return nil
	}
	return te.open[len(te.open)-1]
}

// writeAttachment persists the attachment payload under a content-addressed
// name (xxhash of the decoded bytes) so identical payloads attached from
// multiple tests share one file. Callers hold fw.mu.
func (fw *FileWriter) writeAttachment(msg lifecycle.Message) (Attachment, error) {
	body := msg.Body
	if msg.Encoding == lifecycle.EncodingBase64 {
		decoded, err := base64.StdEncoding.DecodeString(string(body))
		if err != nil {
			return Attachment{}, fmt.Errorf("backend: decoding attachment %q: %w", msg.Name, err)
		}
		body = decoded
	}

	source := fmt.Sprintf("%016x-attachment%s", xxhash.Sum64(body), extByMediaType[msg.MediaType])
	path := filepath.Join(fw.dir, source)

	// Content-addressed: an existing file with this name has identical bytes.
	if _, err := os.Stat(path); err != nil {
		if err := os.WriteFile(path, body, 0o644); err != nil {
			return Attachment{}, fmt.Errorf("backend: writing attachment %q: %w", msg.Name, err)
		}
	}
	fw.logf("attachment written", "name", msg.Name, "source", source, "bytes", len(body))

	return Attachment{Name: msg.Name, Source: source, Type: msg.MediaType}, nil
}

// alloc issues the next handle value. Callers hold fw.mu.
func (fw *FileWriter) alloc() uint64 {
	fw.nextRef++
	return fw.nextRef
}

// logf writes a debug log line when a logger is attached.
func (fw *FileWriter) logf(msg string, kvs ...any) {
	if fw.logger == nil {
		return
	}
	fw.logger.Debug(msg, kvs...)
}

// writeJSON marshals v and writes it via a temp file plus rename so readers
// never observe a partially written document.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("backend: marshaling %s: %w", filepath.Base(path), err)
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("backend: writing %s: %w", filepath.Base(path), err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp) //nolint:errcheck
		return fmt.Errorf("backend: renaming %s: %w", filepath.Base(path), err)
	}
	return nil
}

// newUUID returns a random RFC 4122 version 4 UUID string.
func newUUID() string {
	var b [16]byte
	if _, err := rand.Read(b[:]); err != nil {
		panic(fmt.Sprintf("backend: reading random bytes: %v", err))
	}
	b[6] = (b[6] & 0x0f) | 0x40
	b[8] = (b[8] & 0x3f) | 0x80

	dst := make([]byte, 36)
	hex.Encode(dst[0:8], b[0:4])
	dst[8] = '-'
	hex.Encode(dst[9:13], b[4:6])
	dst[13] = '-'
	hex.Encode(dst[14:18], b[6:8])
	dst[18] = '-'
	hex.Encode(dst[19:23], b[8:10])
	dst[23] = '-'
	hex.Encode(dst[24:36], b[10:16])
	return string(dst)
}
