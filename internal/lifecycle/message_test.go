package lifecycle

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConstructorsSetKind(t *testing.T) {
	t.Parallel()

	tests := []struct {
		msg  Message
		want Kind
	}{
		{SuiteStart("s", true), KindSuiteStart},
		{SuiteEnd(), KindSuiteEnd},
		{TestStart("t", 1), KindTestStart},
		{TestInfo("pkg.t"), KindTestInfo},
		{TestEnd(StatusPassed, StageFinished, 2, 1, nil), KindTestEnd},
		{HookStart("h", HookBefore, 1), KindHookStart},
		{HookEnd(StatusPassed, 2, 1, nil), KindHookEnd},
		{StepStart("st", 1), KindStepStart},
		{StepStop(StatusFailed, 2, nil), KindStepStop},
		{Metadata(nil, nil), KindMetadata},
		{Attachment("a", []byte("x"), "text/plain", ""), KindAttachment},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, tc.msg.Kind)
	}
}

func TestEnvelopeWireShape(t *testing.T) {
	t.Parallel()

	env := Envelope{
		Context: "worker-1",
		Message: TestStart("login works", 1700000000000),
	}
	data, err := json.Marshal(env)
	require.NoError(t, err)

	// Kinds travel as strings, zero-valued payload fields are omitted.
	assert.JSONEq(t,
		`{"context":"worker-1","message":{"kind":"test_start","name":"login works","start":1700000000000}}`,
		string(data))
}

func TestEnvelopeDefaultContextOmitted(t *testing.T) {
	t.Parallel()

	data, err := json.Marshal(Envelope{Message: SuiteEnd()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"message":{"kind":"suite_end"}}`, string(data))
}

func TestEnvelopeRoundTrip(t *testing.T) {
	t.Parallel()

	in := Envelope{
		Context: "w2",
		Message: TestEnd(StatusFailed, StageFinished, 42, 10, &StatusDetails{
			Message: "assertion failed",
			Trace:   "at cart_test:12",
			Flaky:   true,
		}),
	}
	data, err := json.Marshal(in)
	require.NoError(t, err)

	var out Envelope
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, in, out)
}

func TestNowIsEpochMillis(t *testing.T) {
	t.Parallel()

	got := Now()
	want := time.Now().UnixMilli()
	assert.InDelta(t, want, got, 2000)
}
