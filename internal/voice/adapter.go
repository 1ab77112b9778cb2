// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package voice adapts a platform speech recognizer into a small state
// machine that produces transcripts for the chat controller.
//
// States: Idle -> Listening -> (Recognized -> Idle | Error -> Idle).
package voice

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/charmbracelet/log"
	"golang.org/x/text/unicode/norm"
)

// =============================================================================
// ERRORS
// =============================================================================

// ErrUnsupported is returned once when no recognizer is available.
var ErrUnsupported = errors.New("speech recognition is not available on this system")

// ErrNoSpeech is reported when a session ends without a transcript.
var ErrNoSpeech = errors.New("no speech was recognized")

// RecognitionError wraps a failure reported by the recognizer.
type RecognitionError struct {
	Cause error
}

func (e *RecognitionError) Error() string {
	return "speech recognition failed: " + e.Cause.Error()
}

func (e *RecognitionError) Unwrap() error {
	return e.Cause
}

// =============================================================================
// STATE
// =============================================================================

// State is the adapter's position in the recognition lifecycle.
type State int

const (
	StateIdle State = iota
	StateListening
	StateRecognized
	StateError
)

func (s State) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateListening:
		return "listening"
	case StateRecognized:
		return "recognized"
	case StateError:
		return "error"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// =============================================================================
// RECOGNIZER CAPABILITY
// =============================================================================

// Callbacks are invoked by a Recognizer, possibly from another goroutine.
type Callbacks struct {
	OnResult func(transcript string)
	OnError  func(err error)
	OnEnd    func()
}

// Recognizer is a speech-to-text capability.
type Recognizer interface {
	Available() bool
	Start(cb Callbacks) error
	Stop()
}

// Event is a recognition outcome delivered on Adapter.Events.
type Event struct {
	Transcript string
	Err        error
}

// =============================================================================
// ADAPTER
// =============================================================================

// Adapter owns one Recognizer. Safe for concurrent use.
type Adapter struct {
	mu     sync.Mutex
	rec    Recognizer
	state  State
	warned bool
	gen    int
	events chan Event
	logger *log.Logger
}

// NewAdapter wraps rec. A nil rec behaves as an unavailable recognizer.
func NewAdapter(rec Recognizer, logger *log.Logger) *Adapter {
	if logger == nil {
		logger = log.Default()
	}
	return &Adapter{
		rec:    rec,
		events: make(chan Event, 4),
		logger: logger,
	}
}

// Events delivers transcripts and recognition errors.
func (a *Adapter) Events() <-chan Event {
	return a.events
}

// State returns the current state.
func (a *Adapter) State() State {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.state
}

// Listening reports whether a session is active.
func (a *Adapter) Listening() bool {
	return a.State() == StateListening
}

// Available reports whether a recognizer is configured and usable.
func (a *Adapter) Available() bool {
	return a.rec != nil && a.rec.Available()
}

// Start begins a recognition session. It is a no-op while listening.
// When no recognizer is available it returns ErrUnsupported the first time
// and nil afterwards.
func (a *Adapter) Start() error {
	a.mu.Lock()
	if a.state == StateListening {
		a.mu.Unlock()
		return nil
	}
	if a.rec == nil || !a.rec.Available() {
		warned := a.warned
		a.warned = true
		a.mu.Unlock()
		if warned {
			return nil
		}
		a.logger.Warn("voice input unavailable")
		return ErrUnsupported
	}
	a.gen++
	gen := a.gen
	a.state = StateListening
	a.mu.Unlock()

	err := a.rec.Start(Callbacks{
		OnResult: func(t string) { a.onResult(gen, t) },
		OnError:  func(err error) { a.onError(gen, err) },
		OnEnd:    func() { a.onEnd(gen) },
	})
	if err != nil {
		// The caller reports the returned error; no event is queued.
		a.mu.Lock()
		if gen == a.gen {
			a.state = StateIdle
		}
		a.mu.Unlock()
		a.logger.Error("voice start failed", "err", err)
		return &RecognitionError{Cause: err}
	}
	a.logger.Debug("voice listening")
	return nil
}

// Stop ends the active session. It is a no-op when not listening.
func (a *Adapter) Stop() {
	a.mu.Lock()
	if a.state != StateListening {
		a.mu.Unlock()
		return
	}
	a.gen++
	a.state = StateIdle
	a.mu.Unlock()

	a.rec.Stop()
	a.logger.Debug("voice stopped")
}

// Toggle starts a session when idle and stops it when listening.
func (a *Adapter) Toggle() error {
	if a.Listening() {
		a.Stop()
		return nil
	}
	return a.Start()
}

func (a *Adapter) onResult(gen int, transcript string) {
	transcript = norm.NFC.String(strings.TrimSpace(transcript))

	a.mu.Lock()
	if gen != a.gen || a.state != StateListening || transcript == "" {
		a.mu.Unlock()
		return
	}
	a.state = StateRecognized
	a.mu.Unlock()

	a.emit(Event{Transcript: transcript})
}

func (a *Adapter) onError(gen int, err error) {
	a.mu.Lock()
	if gen != a.gen {
		a.mu.Unlock()
		return
	}
	a.state = StateError
	a.mu.Unlock()

	var re *RecognitionError
	if !errors.As(err, &re) {
		err = &RecognitionError{Cause: err}
	}
	a.logger.Error("voice recognition failed", "err", err)
	a.emit(Event{Err: err})
}

func (a *Adapter) onEnd(gen int) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if gen == a.gen {
		a.state = StateIdle
	}
}

func (a *Adapter) emit(ev Event) {
	select {
	case a.events <- ev:
	default:
		a.logger.Warn("voice event dropped", "transcript", ev.Transcript, "err", ev.Err)
	}
}
