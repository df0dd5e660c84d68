package session

import (
	"context"
	"fmt"
	"regexp"

	"github.com/charmbracelet/log"

	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// afterAllPattern recognizes fixture names of "after all" teardown hooks,
// e.g. `"after all" hook: cleanup` or `afterAll`. Such a fixture logically
// lives outside the still-open test, so the test is finalized before the
// fixture is recorded.
var afterAllPattern = regexp.MustCompile(`(?i)\bafter\s*all\b`)

// Replayer converts a session's message log into backend operations.
// It performs a single ordered pass, awaiting each backend call before
// consuming the next message -- no rewinding, and no look-ahead beyond
// knowing whether the current message is the last one.
type Replayer struct {
	backend backend.Backend
	logger  *log.Logger
}

// ReplayerOption configures a Replayer.
type ReplayerOption func(*Replayer)

// WithReplayLogger attaches a charmbracelet/log Logger to the replayer.
// When nil the replayer operates silently.
func WithReplayLogger(logger *log.Logger) ReplayerOption {
	return func(rp *Replayer) { rp.logger = logger }
}

// NewReplayer creates a replayer that issues operations against b.
func NewReplayer(b backend.Backend, opts ...ReplayerOption) *Replayer {
	rp := &Replayer{backend: b}
	for _, opt := range opts {
		opt(rp)
	}
	return rp
}

// Replay processes every message in the session's log exactly once, in
// append order. After the last message any still-open test is finalized and
// every remaining scope is closed in LIFO order, so no dangling open nodes
// survive a completed replay. The first backend failure aborts the pass and
// propagates; messages already processed have already been written.
func (rp *Replayer) Replay(ctx context.Context, s *Session) error {
	msgs := s.messages
	for i := range msgs {
		last := i == len(msgs)-1
		if err := rp.apply(ctx, s, msgs[i], last); err != nil {
			return fmt.Errorf("session %q: message %d (%s): %w", s.contextID, i, msgs[i].Kind, err)
		}
	}

	// End-of-log drain.
	if err := rp.finalizeOpenTest(ctx, s); err != nil {
		return fmt.Errorf("session %q: draining test: %w", s.contextID, err)
	}
	for len(s.scopes) > 0 {
		if err := rp.closeScope(ctx, s); err != nil {
			return fmt.Errorf("session %q: draining scope: %w", s.contextID, err)
		}
	}
	return nil
}

// apply executes the transition for one message.
func (rp *Replayer) apply(ctx context.Context, s *Session, msg lifecycle.Message, last bool) error {
	rp.logf("replaying", "context", s.contextID, "kind", msg.Kind, "name", msg.Name)

	switch msg.Kind {
	case lifecycle.KindSuiteStart:
		// Finalize-before-open: a new grouping never leaves a test dangling.
		if err := rp.finalizeOpenTest(ctx, s); err != nil {
			return err
		}
		s.scopes = append(s.scopes, rp.backend.StartScope())

	case lifecycle.KindSuiteEnd:
		if last {
			// A scope closes only after any test it scoped is finalized.
			if err := rp.finalizeOpenTest(ctx, s); err != nil {
				return err
			}
		}
		if err := rp.flushStopped(ctx, s); err != nil {
			return err
		}
		return rp.closeScope(ctx, s)

	case lifecycle.KindTestStart:
		if err := rp.finalizeOpenTest(ctx, s); err != nil {
			return err
		}
		scopePath := make([]backend.ScopeRef, len(s.scopes))
		copy(scopePath, s.scopes)
		ref := rp.backend.StartTest(backend.TestAttrs{Name: msg.Name, Start: msg.Start}, scopePath)
		s.tests = append(s.tests, ref)
		s.openSteps = 0

	case lifecycle.KindTestInfo:
		ref := s.currentTest()
		if ref == 0 {
			ref = s.stopped
		}
		if ref != 0 {
			fullName := msg.FullName
			rp.backend.UpdateTest(ref, func(r *backend.TestResult) {
				r.FullName = fullName
			})
		}

	case lifecycle.KindTestEnd:
		return rp.stopTest(ctx, s, msg, last)

	case lifecycle.KindHookStart:
		// An after-all fixture does not belong inside the still-open test.
		if afterAllPattern.MatchString(msg.Name) && len(s.tests) > 0 {
			if err := rp.finalizeOpenTest(ctx, s); err != nil {
				return err
			}
		}
		ref, ok := rp.backend.StartFixture(s.currentScope(), msg.Hook, backend.FixtureAttrs{Name: msg.Name, Start: msg.Start})
		if ok {
			s.fixtures = append(s.fixtures, ref)
		}

	case lifecycle.KindHookEnd:
		if len(s.fixtures) == 0 {
			return nil
		}
		ref := s.fixtures[len(s.fixtures)-1]
		s.fixtures = s.fixtures[:len(s.fixtures)-1]
		status, details := msg.Status, msg.Details
		rp.backend.UpdateFixture(ref, func(f *backend.FixtureResult) {
			f.Status = status
			f.StatusDetails = details
		})
		return rp.backend.StopFixture(ctx, ref, backend.StopInfo{Stop: msg.Stop, Duration: msg.Duration})

	case lifecycle.KindStepStart:
		if len(s.tests) == 0 {
			return nil
		}
		s.openSteps++
		return rp.backend.ApplyMessages(ctx, s.currentTest(), []lifecycle.Message{msg})

	case lifecycle.KindStepStop:
		if len(s.tests) == 0 {
			return nil
		}
		if s.openSteps > 0 {
			s.openSteps--
		}
		return rp.backend.ApplyMessages(ctx, s.currentTest(), []lifecycle.Message{msg})

	case lifecycle.KindMetadata, lifecycle.KindAttachment:
		if len(s.tests) == 0 {
			// No test context to attach to.
			return nil
		}
		return rp.backend.ApplyMessages(ctx, s.currentTest(), []lifecycle.Message{msg})

	default:
		return fmt.Errorf("unknown message kind %q", msg.Kind)
	}
	return nil
}

// stopTest handles a test_end message: force-closes dangling steps with the
// test's terminal status and stop time, applies the outcome, and stops the
// test. The write is deferred to the next structural boundary unless this is
// the last message, so late test_info updates can still land.
func (rp *Replayer) stopTest(ctx context.Context, s *Session, msg lifecycle.Message, last bool) error {
	if len(s.tests) == 0 {
		return nil
	}
	ref := s.tests[len(s.tests)-1]
	s.tests = s.tests[:len(s.tests)-1]

	for s.openSteps > 0 {
		s.openSteps--
		forced := lifecycle.StepStop(msg.Status, msg.Stop, nil)
		if err := rp.backend.ApplyMessages(ctx, ref, []lifecycle.Message{forced}); err != nil {
			return err
		}
	}

	status, stage, details := msg.Status, msg.Stage, msg.Details
	rp.backend.UpdateTest(ref, func(r *backend.TestResult) {
		r.Status = status
		if stage != "" {
			r.Stage = stage
		}
		if details != nil {
			r.StatusDetails = details
		}
	})
	if err := rp.backend.StopTest(ctx, ref, backend.StopInfo{Stop: msg.Stop, Duration: msg.Duration}); err != nil {
		return err
	}

	if err := rp.flushStopped(ctx, s); err != nil {
		return err
	}
	if last {
		return rp.backend.WriteTest(ctx, ref)
	}
	s.stopped = ref
	return nil
}

// finalizeOpenTest persists whatever test is still in flight: first the
// stopped-but-unwritten test, then the innermost open one. An open test is
// force-closed -- dangling steps closed without an explicit status, the test
// stopped with whatever status it already carried -- and written. Nothing is
// discarded.
func (rp *Replayer) finalizeOpenTest(ctx context.Context, s *Session) error {
	if err := rp.flushStopped(ctx, s); err != nil {
		return err
	}
	if len(s.tests) == 0 {
		return nil
	}
	ref := s.tests[len(s.tests)-1]
	s.tests = s.tests[:len(s.tests)-1]

	for s.openSteps > 0 {
		s.openSteps--
		forced := lifecycle.StepStop("", 0, nil)
		if err := rp.backend.ApplyMessages(ctx, ref, []lifecycle.Message{forced}); err != nil {
			return err
		}
	}
	if err := rp.backend.StopTest(ctx, ref, backend.StopInfo{}); err != nil {
		return err
	}
	return rp.backend.WriteTest(ctx, ref)
}

// flushStopped writes the stopped-but-unwritten test, if any.
func (rp *Replayer) flushStopped(ctx context.Context, s *Session) error {
	if s.stopped == 0 {
		return nil
	}
	ref := s.stopped
	s.stopped = 0
	return rp.backend.WriteTest(ctx, ref)
}

// closeScope pops the innermost scope and persists it. Popping an empty
// stack is a no-op.
func (rp *Replayer) closeScope(ctx context.Context, s *Session) error {
	if len(s.scopes) == 0 {
		return nil
	}
	ref := s.scopes[len(s.scopes)-1]
	s.scopes = s.scopes[:len(s.scopes)-1]
	return rp.backend.WriteScope(ctx, ref)
}

// logf writes a debug log line when a logger is attached.
func (rp *Replayer) logf(msg string, kvs ...any) {
	if rp.logger == nil {
		return
	}
	rp.logger.Debug(msg, kvs...)
}
