// Package backend defines the report-store contract consumed by the replay
// engine, together with the file-backed implementation that persists
// Allure-compatible result files.
//
// The contract is handle-based: Start* operations allocate an entry in an
// arena table and return an opaque integer reference; Update* mutates the
// in-memory record; Stop*/Write* persist and release it. A backend is only
// required to tolerate calls in the order the replay engine issues them --
// never out-of-order or concurrent calls for the same handle.
package backend

import (
	"context"

	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// ScopeRef is an opaque handle to an open grouping scope. The zero value is
// never issued and means "no scope".
type ScopeRef uint64

// TestRef is an opaque handle to an open test. The zero value is never
// issued and means "no test".
type TestRef uint64

// FixtureRef is an opaque handle to an open fixture. The zero value is never
// issued and means "no fixture".
type FixtureRef uint64

// TestAttrs carries the initial attributes of a test at start time.
type TestAttrs struct {
	Name       string
	Start      int64
	Labels     []lifecycle.Label
	Parameters []lifecycle.Parameter
}

// FixtureAttrs carries the initial attributes of a fixture at start time.
type FixtureAttrs struct {
	Name  string
	Start int64
}

// StopInfo carries the terminal timing applied when a test or fixture stops.
// A zero Stop means "not reported"; implementations fill in what they can.
type StopInfo struct {
	Stop     int64
	Duration int64
}

// Backend is the report-store contract. Operations that persist data take a
// context and return an error; the replay engine awaits each such call before
// consuming the next message, so a failure aborts the remaining pass.
type Backend interface {
	// StartScope opens a new grouping scope and returns its handle.
	StartScope() ScopeRef

	// WriteScope persists the scope record and releases its handle.
	WriteScope(ctx context.Context, ref ScopeRef) error

	// StartTest opens a test registered under every scope in scopePath
	// (outermost first) and returns its handle.
	StartTest(attrs TestAttrs, scopePath []ScopeRef) TestRef

	// UpdateTest applies mutate to the in-memory test record. Unknown
	// handles are ignored.
	UpdateTest(ref TestRef, mutate func(*TestResult))

	// StopTest marks the test finished with the given terminal timing.
	StopTest(ctx context.Context, ref TestRef, stop StopInfo) error

	// WriteTest persists the test record and releases its handle.
	WriteTest(ctx context.Context, ref TestRef) error

	// StartFixture opens a setup/teardown fixture under the given scope.
	// It reports false when it declines, e.g. because no scope is open.
	StartFixture(scope ScopeRef, kind lifecycle.HookKind, attrs FixtureAttrs) (FixtureRef, bool)

	// UpdateFixture applies mutate to the in-memory fixture record.
	// Unknown handles are ignored.
	UpdateFixture(ref FixtureRef, mutate func(*FixtureResult))

	// StopFixture marks the fixture finished with the given terminal timing.
	StopFixture(ctx context.Context, ref FixtureRef, stop StopInfo) error

	// ApplyMessages routes step, metadata, and attachment messages to the
	// open test identified by ref.
	ApplyMessages(ctx context.Context, ref TestRef, msgs []lifecycle.Message) error
}
