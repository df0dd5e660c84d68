package testplan

// Declarer receives test declarations during collection. Implementations
// typically run the declared test and record its lifecycle; the emitter's
// Emitter satisfies this interface.
type Declarer interface {
	// DeclareSuite opens a grouping; feature marks a feature-level suite.
	DeclareSuite(name string, feature bool)

	// CloseSuite closes the innermost open grouping.
	CloseSuite()

	// DeclareTest declares a runnable test. id is the numeric report
	// identifier (may be empty), fullName the canonical identity, name the
	// display name.
	DeclareTest(id, fullName, name string)
}

// SkipFunc is called for each declaration the plan deselects, so the run can
// surface the test as skipped instead of silently dropping it.
type SkipFunc func(id, fullName, name string)

// Filtered decorates a Declarer with plan-based selection. Declarations of
// deselected tests never reach the wrapped declarer; they go to the skip
// callback instead. Filtering applies only to declarers wrapped explicitly;
// an unwrapped declarer is never affected.
type Filtered struct {
	next Declarer
	plan *Plan
	skip SkipFunc

	path []string // open suite names, outermost first
}

// FilteredOption configures a Filtered declarer.
type FilteredOption func(*Filtered)

// WithSkipFunc sets the callback invoked for deselected tests. Without one,
// deselected declarations are dropped.
func WithSkipFunc(fn SkipFunc) FilteredOption {
	return func(f *Filtered) { f.skip = fn }
}

// NewFiltered wraps next with selection against plan. A nil plan yields a
// pass-through declarer.
func NewFiltered(next Declarer, plan *Plan, opts ...FilteredOption) *Filtered {
	f := &Filtered{next: next, plan: plan}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// DeclareSuite implements Declarer. Suites always pass through; only tests
// are filtered.
func (f *Filtered) DeclareSuite(name string, feature bool) {
	f.path = append(f.path, name)
	f.next.DeclareSuite(name, feature)
}

// CloseSuite implements Declarer.
func (f *Filtered) CloseSuite() {
	if len(f.path) > 0 {
		f.path = f.path[:len(f.path)-1]
	}
	f.next.CloseSuite()
}

// DeclareTest implements Declarer, forwarding only plan-selected tests.
func (f *Filtered) DeclareTest(id, fullName, name string) {
	if f.plan.Selects(id, fullName) {
		f.next.DeclareTest(id, fullName, name)
		return
	}
	if f.skip != nil {
		f.skip(id, fullName, name)
	}
}

// SuitePath returns a copy of the currently open suite names, outermost
// first.
func (f *Filtered) SuitePath() []string {
	path := make([]string, len(f.path))
	copy(path, f.path)
	return path
}
