// Package lifecycle defines the message vocabulary exchanged between test
// producers and the replay engine.
//
// Producers append Messages describing what happened -- never what to do.
// Each message is immutable once appended to a session log; the replay engine
// in internal/session consumes the log exactly once, in append order, and
// never calls back into a producer.
package lifecycle

import "time"

// Kind identifies the lifecycle event a Message describes. String values are
// used (not iota) so messages round-trip cleanly through NDJSON event streams.
type Kind string

const (
	// KindSuiteStart opens a grouping scope. Carries Name and Feature.
	KindSuiteStart Kind = "suite_start"

	// KindSuiteEnd closes the innermost open grouping scope.
	KindSuiteEnd Kind = "suite_end"

	// KindTestStart opens a test. Carries Name and Start.
	KindTestStart Kind = "test_start"

	// KindTestInfo updates the most recently opened test's identity in
	// place. Carries FullName.
	KindTestInfo Kind = "test_info"

	// KindTestEnd closes the current test. Carries Status, Stage, Stop,
	// Duration, and Details.
	KindTestEnd Kind = "test_end"

	// KindHookStart opens a setup/teardown fixture. Carries Name, Hook,
	// and Start.
	KindHookStart Kind = "hook_start"

	// KindHookEnd closes the innermost open fixture. Carries Status,
	// Details, Stop, and Duration.
	KindHookEnd Kind = "hook_end"

	// KindStepStart opens a step inside the current test. Carries Name
	// and Start.
	KindStepStart Kind = "step_start"

	// KindStepStop closes the innermost open step. Carries Status, Stop,
	// and Details.
	KindStepStop Kind = "step_stop"

	// KindMetadata attaches labels and parameters to the current test.
	KindMetadata Kind = "metadata"

	// KindAttachment attaches arbitrary content to the current test or its
	// innermost open step. Carries Name, Body, MediaType, and Encoding.
	KindAttachment Kind = "attachment"
)

// EncodingBase64 in Message.Encoding marks Body as base64 text that must be
// decoded before the attachment payload is persisted.
const EncodingBase64 = "base64"

// Message is a single lifecycle event. It is a tagged union: Kind selects
// which of the payload fields are meaningful; all others are left at their
// zero values. All timestamps are epoch milliseconds and durations are
// milliseconds, matching the report-store convention.
type Message struct {
	Kind Kind `json:"kind"`

	// Name is the display name for suite_start, test_start, hook_start,
	// step_start, and attachment messages.
	Name string `json:"name,omitempty"`

	// Feature marks a suite_start as a feature-level grouping. Tests opened
	// underneath it are retroactively labeled with the feature name.
	Feature bool `json:"feature,omitempty"`

	// FullName is the canonical test identity carried by test_info.
	FullName string `json:"fullName,omitempty"`

	// Hook distinguishes before/after fixtures on hook_start.
	Hook HookKind `json:"hook,omitempty"`

	Status  Status         `json:"status,omitempty"`
	Stage   Stage          `json:"stage,omitempty"`
	Details *StatusDetails `json:"statusDetails,omitempty"`

	Start    int64 `json:"start,omitempty"`
	Stop     int64 `json:"stop,omitempty"`
	Duration int64 `json:"duration,omitempty"`

	Labels     []Label     `json:"labels,omitempty"`
	Parameters []Parameter `json:"parameters,omitempty"`

	// Body is the attachment payload. encoding/json serializes it as
	// base64 text on the wire regardless of Encoding, which only describes
	// how a producer encoded the bytes it put here.
	Body      []byte `json:"body,omitempty"`
	MediaType string `json:"mediaType,omitempty"`
	Encoding  string `json:"encoding,omitempty"`
}

// Envelope is the NDJSON wire form of a message: one envelope per line,
// routing the message to the session owned by the given execution context.
// An empty Context routes to the default session.
type Envelope struct {
	Context string  `json:"context,omitempty"`
	Message Message `json:"message"`
}

// Now returns the current wall-clock time in epoch milliseconds, the unit
// used by every timestamp in this package.
func Now() int64 {
	return time.Now().UnixMilli()
}

// SuiteStart builds a suite_start message.
func SuiteStart(name string, feature bool) Message {
	return Message{Kind: KindSuiteStart, Name: name, Feature: feature}
}

// SuiteEnd builds a suite_end message.
func SuiteEnd() Message {
	return Message{Kind: KindSuiteEnd}
}

// TestStart builds a test_start message.
func TestStart(name string, start int64) Message {
	return Message{Kind: KindTestStart, Name: name, Start: start}
}

// TestInfo builds a test_info message.
func TestInfo(fullName string) Message {
	return Message{Kind: KindTestInfo, FullName: fullName}
}

// TestEnd builds a test_end message. details may be nil.
func TestEnd(status Status, stage Stage, stop, duration int64, details *StatusDetails) Message {
	return Message{Kind: KindTestEnd, Status: status, Stage: stage, Stop: stop, Duration: duration, Details: details}
}

// HookStart builds a hook_start message.
func HookStart(name string, kind HookKind, start int64) Message {
	return Message{Kind: KindHookStart, Name: name, Hook: kind, Start: start}
}

// HookEnd builds a hook_end message. details may be nil.
func HookEnd(status Status, stop, duration int64, details *StatusDetails) Message {
	return Message{Kind: KindHookEnd, Status: status, Stop: stop, Duration: duration, Details: details}
}

// StepStart builds a step_start message.
func StepStart(name string, start int64) Message {
	return Message{Kind: KindStepStart, Name: name, Start: start}
}

// StepStop builds a step_stop message. details may be nil.
func StepStop(status Status, stop int64, details *StatusDetails) Message {
	return Message{Kind: KindStepStop, Status: status, Stop: stop, Details: details}
}

// Metadata builds a metadata message.
func Metadata(labels []Label, parameters []Parameter) Message {
	return Message{Kind: KindMetadata, Labels: labels, Parameters: parameters}
}

// Attachment builds an attachment message. encoding is empty for raw bytes
// or EncodingBase64 when body holds base64 text.
func Attachment(name string, body []byte, mediaType, encoding string) Message {
	return Message{Kind: KindAttachment, Name: name, Body: body, MediaType: mediaType, Encoding: encoding}
}
