package log

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLog_FormatsLevelCategoryAndFields(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Warn(CatCodec, "rejected structured text", "target", "details", "len", 9)

	out := buf.String()
	require.Contains(t, out, "[WARN] [codec] rejected structured text")
	require.Contains(t, out, "target=details")
	require.Contains(t, out, "len=9")
}

func TestLog_OddFieldCountMarksMissing(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	Info(CatStore, "appended", "id")

	require.Contains(t, buf.String(), "id=<missing>")
}

func TestLog_MinLevelFilters(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetMinLevel(LevelWarn)

	Debug(CatUI, "hidden")
	Error(CatUI, "shown")

	require.NotContains(t, buf.String(), "hidden")
	require.Contains(t, buf.String(), "shown")
}

func TestLog_Disabled(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetEnabled(false)

	Error(CatExtract, "nothing")

	require.Empty(t, buf.String())
}

func TestErrorErr_AppendsError(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	ErrorErr(CatExtract, "request failed", errors.New("boom"), "provider", "gemini")

	require.Contains(t, buf.String(), "provider=gemini")
	require.Contains(t, buf.String(), "error=boom")
}

func TestNewListener_ReceivesEntries(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	listener := NewListener(ctx)
	require.NotNil(t, listener)

	Info(CatEdit, "saved draft")

	msg := make(chan any, 1)
	go func() { msg <- listener.Listen()() }()

	select {
	case m := <-msg:
		event, ok := m.(LogEvent)
		require.True(t, ok)
		require.Contains(t, event.Payload, "saved draft")
	case <-time.After(time.Second):
		require.Fail(t, "timeout waiting for log event")
	}
}
