package backend

import "github.com/AbdelazizMoustafa10m/Heron/internal/lifecycle"

// TestResult is the JSON document written as <uuid>-result.json.
// Timestamps are epoch milliseconds.
type TestResult struct {
	UUID          string                    `json:"uuid"`
	HistoryID     string                    `json:"historyId,omitempty"`
	Name          string                    `json:"name"`
	FullName      string                    `json:"fullName,omitempty"`
	Status        lifecycle.Status          `json:"status"`
	Stage         lifecycle.Stage           `json:"stage,omitempty"`
	StatusDetails *lifecycle.StatusDetails  `json:"statusDetails,omitempty"`
	Start         int64                     `json:"start,omitempty"`
	Stop          int64                     `json:"stop,omitempty"`
	Labels        []lifecycle.Label         `json:"labels,omitempty"`
	Parameters    []lifecycle.Parameter     `json:"parameters,omitempty"`
	Steps         []*StepResult             `json:"steps,omitempty"`
	Attachments   []Attachment              `json:"attachments,omitempty"`
}

// StepResult is a (possibly nested) step recorded inside a test or fixture.
type StepResult struct {
	Name          string                   `json:"name"`
	Status        lifecycle.Status         `json:"status"`
	Stage         lifecycle.Stage          `json:"stage,omitempty"`
	StatusDetails *lifecycle.StatusDetails `json:"statusDetails,omitempty"`
	Start         int64                    `json:"start,omitempty"`
	Stop          int64                    `json:"stop,omitempty"`
	Steps         []*StepResult            `json:"steps,omitempty"`
	Attachments   []Attachment             `json:"attachments,omitempty"`
}

// FixtureResult is a setup or teardown entry inside a container document.
type FixtureResult struct {
	Name          string                   `json:"name"`
	Status        lifecycle.Status         `json:"status"`
	Stage         lifecycle.Stage          `json:"stage,omitempty"`
	StatusDetails *lifecycle.StatusDetails `json:"statusDetails,omitempty"`
	Start         int64                    `json:"start,omitempty"`
	Stop          int64                    `json:"stop,omitempty"`
}

// ContainerResult is the JSON document written as <uuid>-container.json.
// Children lists the UUIDs of the tests the scope groups.
type ContainerResult struct {
	UUID     string           `json:"uuid"`
	Children []string         `json:"children,omitempty"`
	Befores  []*FixtureResult `json:"befores,omitempty"`
	Afters   []*FixtureResult `json:"afters,omitempty"`
	Start    int64            `json:"start,omitempty"`
	Stop     int64            `json:"stop,omitempty"`
}

// Attachment references a persisted attachment file from a test or step.
type Attachment struct {
	Name   string `json:"name"`
	Source string `json:"source"`
	Type   string `json:"type,omitempty"`
}
