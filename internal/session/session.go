// Package session owns the per-worker message logs and the replay state
// machine that converts them into report-backend operations.
//
// Producers push lifecycle messages into a session (cheap, synchronous,
// append-only); at the drain point the Registry replays each session's log
// exactly once, in append order, against the backend. The log is the single
// source of truth: "is something currently open" is always derived from it
// (see pending.go) rather than mirrored in separate flags.
package session

import (
	"github.com/AbdelazizMoustafa10m/Heron/internal/backend"
	"github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"
)

// DefaultContext is the execution-context identifier used when a run has a
// single worker and no explicit identifier.
const DefaultContext = "default"

// Session holds the append-only message log of one execution context plus
// the replay-time stacks of open scopes, tests, and fixtures.
//
// A session is owned by exactly one producer goroutine until it is drained;
// Push is not synchronized. Registry.Push provides the locked map lookup
// that lets concurrent workers each reach their own session safely.
type Session struct {
	contextID string
	messages  []lifecycle.Message

	// Replay state, owned by the Replayer during Replay. The scope, test,
	// and fixture stacks are LIFO; popping an empty stack is a no-op.
	scopes    []backend.ScopeRef
	tests     []backend.TestRef
	fixtures  []backend.FixtureRef
	stopped   backend.TestRef // stopped but not yet written; zero when none
	openSteps int             // open steps of the current test only
}

// newSession creates an empty session bound to the given context identifier.
func newSession(contextID string) *Session {
	return &Session{contextID: contextID}
}

// ContextID returns the execution-context identifier this session belongs to.
func (s *Session) ContextID() string { return s.contextID }

// Push appends msg to the session log. Messages are immutable once appended
// and insertion order is authoritative.
func (s *Session) Push(msg lifecycle.Message) {
	s.messages = append(s.messages, msg)
}

// Len returns the number of messages accumulated so far.
func (s *Session) Len() int { return len(s.messages) }

// Messages returns the underlying log. Callers must treat it as read-only.
func (s *Session) Messages() []lifecycle.Message { return s.messages }

// currentTest returns the innermost open test handle, or zero when none.
func (s *Session) currentTest() backend.TestRef {
	if len(s.tests) == 0 {
		return 0
	}
	return s.tests[len(s.tests)-1]
}

// currentScope returns the innermost open scope handle, or zero when none.
func (s *Session) currentScope() backend.ScopeRef {
	if len(s.scopes) == 0 {
		return 0
	}
	return s.scopes[len(s.scopes)-1]
}
