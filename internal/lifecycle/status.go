package lifecycle

// Status is the terminal outcome of a test, fixture, or step.
// String values are used (not iota) so they round-trip cleanly through the
// JSON result files and the NDJSON event stream.
type Status string

const (
	// StatusFailed indicates an assertion failure.
	StatusFailed Status = "failed"

	// StatusBroken indicates an unexpected error outside the assertions,
	// such as a thrown exception in a hook.
	StatusBroken Status = "broken"

	// StatusPassed indicates successful completion.
	StatusPassed Status = "passed"

	// StatusSkipped indicates the item was deselected or aborted before running.
	StatusSkipped Status = "skipped"

	// StatusUnknown is the zero-value status for items whose outcome was
	// never reported. Force-closed nodes keep whatever status they already
	// carried; when none was ever set, this is what remains.
	StatusUnknown Status = "unknown"
)

// Stage describes where in its lifecycle an item currently is.
type Stage string

const (
	// StageScheduled means the item is declared but has not started.
	StageScheduled Stage = "scheduled"

	// StageRunning means the item is currently executing.
	StageRunning Stage = "running"

	// StageFinished means the item completed normally.
	StageFinished Stage = "finished"

	// StagePending means the item is deferred.
	StagePending Stage = "pending"

	// StageInterrupted means the item was cut short, e.g. by a timeout or a
	// forced close when a sibling started while it was still open.
	StageInterrupted Stage = "interrupted"
)

// HookKind distinguishes setup fixtures from teardown fixtures.
type HookKind string

const (
	// HookBefore marks a setup fixture (before / beforeEach style).
	HookBefore HookKind = "before"

	// HookAfter marks a teardown fixture (after / afterEach / afterAll style).
	HookAfter HookKind = "after"
)

// StatusDetails carries the failure message and stack trace attached to a
// non-passing item.
type StatusDetails struct {
	Message string `json:"message,omitempty"`
	Trace   string `json:"trace,omitempty"`
	Known   bool   `json:"known,omitempty"`
	Muted   bool   `json:"muted,omitempty"`
	Flaky   bool   `json:"flaky,omitempty"`
}

// Label is a name/value classifier attached to a test result, such as
// feature, suite, severity, or host labels.
type Label struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Well-known label names used by Heron itself.
const (
	// LabelFeature is the label carrying the owning feature-level suite name.
	LabelFeature = "feature"

	// LabelSuite is the label carrying the immediate suite name.
	LabelSuite = "suite"

	// LabelHost is the label carrying the execution host.
	LabelHost = "host"

	// LabelThread is the label carrying the execution-context identifier.
	LabelThread = "thread"
)

// Parameter is a named argument value recorded against a test result.
type Parameter struct {
	Name     string `json:"name"`
	Value    string `json:"value"`
	Excluded bool   `json:"excluded,omitempty"`
	Mode     string `json:"mode,omitempty"`
}
