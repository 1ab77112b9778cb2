// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"errors"
	"io"
	"os/exec"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRecognizer struct {
	available bool
	startErr  error
	starts    int
	stops     int
	cb        Callbacks
}

func (f *fakeRecognizer) Available() bool { return f.available }

func (f *fakeRecognizer) Start(cb Callbacks) error {
	f.starts++
	f.cb = cb
	return f.startErr
}

func (f *fakeRecognizer) Stop() { f.stops++ }

func quietLogger() *log.Logger { return log.New(io.Discard) }

func receive(t *testing.T, a *Adapter) Event {
	t.Helper()
	select {
	case ev := <-a.Events():
		return ev
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for voice event")
		return Event{}
	}
}

func TestAdapter_RecognizedFlow(t *testing.T) {
	rec := &fakeRecognizer{available: true}
	a := NewAdapter(rec, quietLogger())

	require.NoError(t, a.Start())
	assert.Equal(t, StateListening, a.State())

	require.NoError(t, a.Start())
	assert.Equal(t, 1, rec.starts, "start while listening is a no-op")

	rec.cb.OnResult("  what time is it  ")
	assert.Equal(t, StateRecognized, a.State())
	assert.Equal(t, Event{Transcript: "what time is it"}, receive(t, a))

	rec.cb.OnEnd()
	assert.Equal(t, StateIdle, a.State())
}

func TestAdapter_UnsupportedSignalledOnce(t *testing.T) {
	rec := &fakeRecognizer{available: false}
	a := NewAdapter(rec, quietLogger())

	assert.ErrorIs(t, a.Start(), ErrUnsupported)
	assert.NoError(t, a.Start())
	assert.NoError(t, a.Start())
	assert.Zero(t, rec.starts)
	assert.Equal(t, StateIdle, a.State())
	assert.False(t, a.Available())

	nilAdapter := NewAdapter(nil, quietLogger())
	assert.False(t, nilAdapter.Available())
	assert.ErrorIs(t, nilAdapter.Start(), ErrUnsupported)

	rec.available = true
	assert.True(t, a.Available())
}

func TestAdapter_RecognizerError(t *testing.T) {
	rec := &fakeRecognizer{available: true}
	a := NewAdapter(rec, quietLogger())
	require.NoError(t, a.Start())

	rec.cb.OnError(errors.New("microphone busy"))
	assert.Equal(t, StateError, a.State())

	ev := receive(t, a)
	var re *RecognitionError
	require.True(t, errors.As(ev.Err, &re))
	assert.Contains(t, re.Error(), "microphone busy")

	rec.cb.OnEnd()
	assert.Equal(t, StateIdle, a.State())
}

func TestAdapter_StartFailure(t *testing.T) {
	rec := &fakeRecognizer{available: true, startErr: errors.New("no device")}
	a := NewAdapter(rec, quietLogger())

	err := a.Start()
	var re *RecognitionError
	require.True(t, errors.As(err, &re))
	assert.Equal(t, StateIdle, a.State())
	assert.Empty(t, a.Events(), "start failure must not queue an event")

	rec.startErr = nil
	require.NoError(t, a.Start())
	rec.cb.OnResult("second try")
	assert.Equal(t, "second try", receive(t, a).Transcript)
}

func TestAdapter_StopIgnoresStaleCallbacks(t *testing.T) {
	rec := &fakeRecognizer{available: true}
	a := NewAdapter(rec, quietLogger())

	a.Stop()
	assert.Zero(t, rec.stops, "stop while idle is a no-op")

	require.NoError(t, a.Start())
	stale := rec.cb
	a.Stop()
	assert.Equal(t, 1, rec.stops)
	assert.Equal(t, StateIdle, a.State())

	require.NoError(t, a.Start())
	stale.OnResult("late words")
	stale.OnEnd()
	assert.Equal(t, StateListening, a.State())
	assert.Empty(t, a.Events())
}

func TestAdapter_Toggle(t *testing.T) {
	rec := &fakeRecognizer{available: true}
	a := NewAdapter(rec, quietLogger())

	require.NoError(t, a.Toggle())
	assert.True(t, a.Listening())
	require.NoError(t, a.Toggle())
	assert.False(t, a.Listening())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "listening", StateListening.String())
	assert.Equal(t, "State(9)", State(9).String())
}

func TestCommandRecognizer(t *testing.T) {
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}

	t.Run("first line is the transcript", func(t *testing.T) {
		a := NewAdapter(NewCommandRecognizer("sh", "-c", "echo; echo hello charlie; echo ignored"), quietLogger())
		require.NoError(t, a.Start())
		assert.Equal(t, "hello charlie", receive(t, a).Transcript)
	})

	t.Run("silence is an error", func(t *testing.T) {
		a := NewAdapter(NewCommandRecognizer("sh", "-c", "true"), quietLogger())
		require.NoError(t, a.Start())
		assert.ErrorIs(t, receive(t, a).Err, ErrNoSpeech)
	})

	t.Run("missing command is unavailable", func(t *testing.T) {
		assert.False(t, NewCommandRecognizer("definitely-not-a-real-stt-binary").Available())
		assert.False(t, NewCommandRecognizer("").Available())
	})
}
