package session

import "github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"

// Pending predicates answer "is a node of this kind currently open" by
// comparing the position of the last start marker against the position of
// its paired end marker in the message log. No separate bookkeeping exists
// to drift out of sync: producers can query state before the replay pass has
// consumed anything.

// HasPendingSuite reports whether a suite is open in the log.
func (s *Session) HasPendingSuite() bool {
	return s.pending(lifecycle.KindSuiteStart, lifecycle.KindSuiteEnd)
}

// HasPendingTest reports whether a test is open in the log.
func (s *Session) HasPendingTest() bool {
	return s.pending(lifecycle.KindTestStart, lifecycle.KindTestEnd)
}

// HasPendingStep reports whether a step is open in the log.
func (s *Session) HasPendingStep() bool {
	return s.pending(lifecycle.KindStepStart, lifecycle.KindStepStop)
}

// HasPendingHook reports whether a fixture is open in the log.
func (s *Session) HasPendingHook() bool {
	return s.pending(lifecycle.KindHookStart, lifecycle.KindHookEnd)
}

// pending reports whether the last start marker occurs after the last end
// marker (or no end exists yet).
func (s *Session) pending(start, end lifecycle.Kind) bool {
	return s.lastIndex(start) > s.lastIndex(end)
}

// lastIndex returns the index of the most recent message of the given kind,
// or -1 when none exists.
func (s *Session) lastIndex(kind lifecycle.Kind) int {
	for i := len(s.messages) - 1; i >= 0; i-- {
		if s.messages[i].Kind == kind {
			return i
		}
	}
	return -1
}

// CurrentFeature returns the name of the most recent still-open suite that
// is marked as a feature-level grouping. It reports false when no such suite
// is open. Producers use it to retroactively label tests with their owning
// feature name.
func (s *Session) CurrentFeature() (string, bool) {
	closed := 0
	for i := len(s.messages) - 1; i >= 0; i-- {
		switch s.messages[i].Kind {
		case lifecycle.KindSuiteEnd:
			closed++
		case lifecycle.KindSuiteStart:
			if closed > 0 {
				closed--
				continue
			}
			if s.messages[i].Feature {
				return s.messages[i].Name, true
			}
			// Still-open but not feature-level; keep scanning outward.
		}
	}
	return "", false
}
