// Package testplan loads selection plans and filters test declarations
// against them. A plan lists the tests a run should execute, identified by
// numeric ID or by selector; selectors may be exact full names or doublestar
// glob patterns.
package testplan

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// EnvPlanPath names the environment variable pointing at a plan file.
// Producers and the CLI both honor it.
const EnvPlanPath = "HERON_TESTPLAN_PATH"

// Plan is a parsed selection plan.
type Plan struct {
	// Version is the plan format version, carried through unchanged.
	Version string `json:"version,omitempty"`

	// Tests lists the selected tests. An empty list selects nothing;
	// a nil *Plan selects everything.
	Tests []Entry `json:"tests"`
}

// Entry selects one test or a pattern of tests. Either field may be empty;
// an entry with both empty never matches.
type Entry struct {
	// ID matches a test's numeric report identifier.
	ID json.Number `json:"id,omitempty"`

	// Selector matches a test's full name, either exactly or as a
	// doublestar glob when it contains pattern metacharacters.
	Selector string `json:"selector,omitempty"`
}

// Load reads and parses the plan file at path.
func Load(path string) (*Plan, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("testplan: reading plan %q: %w", path, err)
	}

	var plan Plan
	if err := json.Unmarshal(data, &plan); err != nil {
		return nil, fmt.Errorf("testplan: parsing plan %q: %w", path, err)
	}
	return &plan, nil
}

// FromEnv loads the plan named by EnvPlanPath. When the variable is unset or
// empty it returns (nil, nil): no plan, everything selected.
func FromEnv() (*Plan, error) {
	path := os.Getenv(EnvPlanPath)
	if path == "" {
		return nil, nil
	}
	return Load(path)
}

// Selects reports whether the test identified by id and fullName is part of
// the plan. A nil plan selects every test.
func (p *Plan) Selects(id, fullName string) bool {
	if p == nil {
		return true
	}
	for _, e := range p.Tests {
		if e.matches(id, fullName) {
			return true
		}
	}
	return false
}

// matches reports whether this entry selects the given test.
func (e Entry) matches(id, fullName string) bool {
	if id != "" && e.ID.String() == id {
		return true
	}
	if e.Selector == "" || fullName == "" {
		return false
	}
	if e.Selector == fullName {
		return true
	}
	if strings.ContainsAny(e.Selector, "*?[{") {
		ok, err := doublestar.Match(e.Selector, fullName)
		return err == nil && ok
	}
	return false
}
