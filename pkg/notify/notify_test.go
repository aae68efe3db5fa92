package notify

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNotify(t *testing.T) {
	sender := "someSender"
	run := "someRunId"
	pipeline := "somePipelineId"
	expectedMessage := "some stuff happened, foo=11"
	fmtstr := "some stuff happened, foo=%d"
	fmtval := 11
	ch := make(Chan, 3)
	t.Setenv("LOG_LEVEL", LevelStrDebug)

	notifier := New(ch, nil, sender, run, pipeline)

	notifier.Notify(LevelDebug, fmtstr, fmtval)
	event := <-ch
	expectedEvent := Event{
		Level:    "DEBUG",
		Sender:   sender,
		Run:      run,
		Pipeline: pipeline,
		Message:  expectedMessage,
		Func:     "notify.TestNotify",
	}
	event.Timestamp = ""
	assert.Equal(t, expectedEvent, event)

	notifier.Notify(LevelInfo, fmtstr, fmtval)
	event = <-ch
	expectedEvent.Level = "INFO"
	event.Timestamp = ""
	assert.Equal(t, expectedEvent, event)
}

func TestNotifyLevelFiltering(t *testing.T) {
	ch := make(Chan, 3)
	t.Setenv("LOG_LEVEL", LevelStrWarn)

	notifier := New(ch, nil, "s", "r", "p")
	notifier.Notify(LevelInfo, "should be filtered")
	assert.Len(t, ch, 0)

	notifier.Notify(LevelError, "should pass")
	assert.Len(t, ch, 1)

	notifier.SetNotifyLevel(LevelDebug)
	notifier.Notify(LevelDebug, "now passes")
	assert.Len(t, ch, 2)
}

func TestNotifyNonBlocking(t *testing.T) {
	ch := make(Chan, 1)
	notifier := New(ch, nil, "s", "r", "p")

	// Second send must not block when the channel is full.
	notifier.Notify(LevelInfo, "one")
	notifier.Notify(LevelInfo, "two")
	assert.Len(t, ch, 1)
}

func TestLevelNames(t *testing.T) {
	assert.Equal(t, LevelInfo, Level("INFO"))
	assert.Equal(t, LevelInvalid, Level("whatever"))
	assert.Equal(t, "WARN", LevelName(LevelWarn))
	assert.Equal(t, "INVALID", LevelName(42))
}
