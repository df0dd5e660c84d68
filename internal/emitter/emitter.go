// Package emitter provides the producer-side push helpers that framework
// adapters use to feed a session. It owns the compensating-event logic:
// before pushing, it consults the session's pending predicates so the replay
// machine never receives a failure with nothing to attach it to.
package emitter

import (
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
	"github.com/AbdelazizMoustafa10m/Heron/internal/session"
)

// Emitter pushes lifecycle messages into one worker's session. It is not
// safe for concurrent use; each worker owns its emitter, mirroring the
// one-producer-per-session rule.
type Emitter struct {
	session   *session.Session
	contextID string
}

// New returns an emitter bound to the session owned by contextID,
// creating the session in the registry if needed.
func New(registry *session.Registry, contextID string) *Emitter {
	s := registry.GetOrCreate(contextID)
	return &Emitter{session: s, contextID: s.ContextID()}
}

// Session returns the underlying session, mainly for predicate queries.
func (e *Emitter) Session() *session.Session { return e.session }

// StartSuite opens a grouping; feature marks it as a feature-level suite.
func (e *Emitter) StartSuite(name string, feature bool) {
	e.session.Push(lifecycle.SuiteStart(name, feature))
}

// EndSuite closes the innermost grouping.
func (e *Emitter) EndSuite() {
	e.session.Push(lifecycle.SuiteEnd())
}

// StartTest opens a test and immediately labels it with its execution
// context and, when one is open, its owning feature suite.
func (e *Emitter) StartTest(name string) {
	e.session.Push(lifecycle.TestStart(name, lifecycle.Now()))

	labels := []lifecycle.Label{{Name: lifecycle.LabelThread, Value: e.contextID}}
	if feature, ok := e.session.CurrentFeature(); ok {
		labels = append(labels, lifecycle.Label{Name: lifecycle.LabelFeature, Value: feature})
	}
	e.session.Push(lifecycle.Metadata(labels, nil))
}

// SetFullName records the canonical identity of the current test.
func (e *Emitter) SetFullName(fullName string) {
	e.session.Push(lifecycle.TestInfo(fullName))
}

// EndTest closes the current test with the given outcome. details may be nil.
func (e *Emitter) EndTest(status lifecycle.Status, details *lifecycle.StatusDetails) {
	e.session.Push(lifecycle.TestEnd(status, lifecycle.StageFinished, lifecycle.Now(), 0, details))
}

// StartStep opens a step inside the current test. Dropped by the replay
// machine when no test is open.
func (e *Emitter) StartStep(name string) {
	e.session.Push(lifecycle.StepStart(name, lifecycle.Now()))
}

// EndStep closes the innermost step. details may be nil.
func (e *Emitter) EndStep(status lifecycle.Status, details *lifecycle.StatusDetails) {
	e.session.Push(lifecycle.StepStop(status, lifecycle.Now(), details))
}

// StartHook opens a setup/teardown fixture.
func (e *Emitter) StartHook(name string, kind lifecycle.HookKind) {
	e.session.Push(lifecycle.HookStart(name, kind, lifecycle.Now()))
}

// EndHook closes the innermost fixture. Pushing with no open fixture is
// harmless: the replay machine treats the unmatched end as a no-op.
func (e *Emitter) EndHook(status lifecycle.Status, details *lifecycle.StatusDetails) {
	e.session.Push(lifecycle.HookEnd(status, lifecycle.Now(), 0, details))
}

// AddLabels attaches labels to the current test.
func (e *Emitter) AddLabels(labels ...lifecycle.Label) {
	e.session.Push(lifecycle.Metadata(labels, nil))
}

// AddParameters attaches parameters to the current test.
func (e *Emitter) AddParameters(params ...lifecycle.Parameter) {
	e.session.Push(lifecycle.Metadata(nil, params))
}

// Attach records an attachment against the current test or its open step.
func (e *Emitter) Attach(name string, body []byte, mediaType string) {
	e.session.Push(lifecycle.Attachment(name, body, mediaType, ""))
}

// SkipTest records a test that was declared but deselected, so it shows up
// in the report as skipped rather than vanishing.
func (e *Emitter) SkipTest(name, fullName, reason string) {
	e.StartTest(name)
	if fullName != "" {
		e.SetFullName(fullName)
	}
	var details *lifecycle.StatusDetails
	if reason != "" {
		details = &lifecycle.StatusDetails{Message: reason}
	}
	e.EndTest(lifecycle.StatusSkipped, details)
}

// DeclareSuite implements testplan.Declarer.
func (e *Emitter) DeclareSuite(name string, feature bool) { e.StartSuite(name, feature) }

// CloseSuite implements testplan.Declarer.
func (e *Emitter) CloseSuite() { e.EndSuite() }

// DeclareTest implements testplan.Declarer. The report identifier is not
// recorded; identity comes from fullName.
func (e *Emitter) DeclareTest(_, fullName, name string) {
	e.StartTest(name)
	if fullName != "" {
		e.SetFullName(fullName)
	}
}

// ReportFixtureFailure records a broken fixture. When neither a test nor a
// fixture is currently open the failure would otherwise have no node to hang
// on, so a synthetic test is started first and closed as broken after the
// fixture is reported.
func (e *Emitter) ReportFixtureFailure(name string, kind lifecycle.HookKind, details *lifecycle.StatusDetails) {
	synthesized := !e.session.HasPendingTest() && !e.session.HasPendingHook()
	if synthesized {
		e.StartTest(name)
	}

	e.session.Push(lifecycle.HookStart(name, kind, lifecycle.Now()))
	e.session.Push(lifecycle.HookEnd(lifecycle.StatusBroken, lifecycle.Now(), 0, details))

	if synthesized {
		e.EndTest(lifecycle.StatusBroken, details)
	}
}
