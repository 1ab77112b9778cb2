// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/Seabass-up/Charlie-Chat/internal/util"
)

// MaxSpeechLength bounds the text handed to a speech command, in columns.
const MaxSpeechLength = 2000

// ErrEmptySpeech is returned when there is nothing to say.
var ErrEmptySpeech = errors.New("no text to speak")

// Speaker reads text aloud on the local machine.
type Speaker interface {
	Available() bool
	Speak(ctx context.Context, text string) error
}

// Synthesizer turns text into audio bytes (WAV) for the backend.
type Synthesizer interface {
	Available() bool
	Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error)
}

// SynthesisRequest is one text-to-speech job.
type SynthesisRequest struct {
	Text       string
	Voice      string
	SampleRate int
}

// =============================================================================
// COMMAND SPEAKER
// =============================================================================

// CommandSpeaker runs an external text-to-speech program. The text is
// written to its stdin. Speak discards stdout; Synthesize returns it as the
// audio. The voice and sample rate are passed as CHARLIE_TTS_VOICE and
// CHARLIE_TTS_SAMPLE_RATE.
type CommandSpeaker struct {
	Command string
	Args    []string
}

// NewCommandSpeaker creates a speaker for command.
func NewCommandSpeaker(command string, args ...string) *CommandSpeaker {
	return &CommandSpeaker{Command: command, Args: args}
}

// Available reports whether the command can be found on PATH.
func (s *CommandSpeaker) Available() bool {
	if strings.TrimSpace(s.Command) == "" {
		return false
	}
	_, err := exec.LookPath(s.Command)
	return err == nil
}

// Speak blocks until the command has read text aloud.
func (s *CommandSpeaker) Speak(ctx context.Context, text string) error {
	_, err := s.run(ctx, SynthesisRequest{Text: text}, false)
	return err
}

// Synthesize returns the audio the command writes to stdout.
func (s *CommandSpeaker) Synthesize(ctx context.Context, req SynthesisRequest) ([]byte, error) {
	audio, err := s.run(ctx, req, true)
	if err != nil {
		return nil, err
	}
	if len(audio) == 0 {
		return nil, fmt.Errorf("%s produced no audio", s.Command)
	}
	return audio, nil
}

func (s *CommandSpeaker) run(ctx context.Context, req SynthesisRequest, capture bool) ([]byte, error) {
	text := strings.TrimSpace(req.Text)
	if text == "" {
		return nil, ErrEmptySpeech
	}
	if !s.Available() {
		return nil, ErrUnsupported
	}

	cmd := exec.CommandContext(ctx, s.Command, s.Args...)
	cmd.Stdin = strings.NewReader(util.Truncate(text, MaxSpeechLength))
	cmd.Env = os.Environ()
	if req.Voice != "" {
		cmd.Env = append(cmd.Env, "CHARLIE_TTS_VOICE="+req.Voice)
	}
	if req.SampleRate > 0 {
		cmd.Env = append(cmd.Env, "CHARLIE_TTS_SAMPLE_RATE="+strconv.Itoa(req.SampleRate))
	}

	var stdout, stderr bytes.Buffer
	if capture {
		cmd.Stdout = &stdout
	}
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s: %w: %s", s.Command, err, msg)
		}
		return nil, fmt.Errorf("%s: %w", s.Command, err)
	}
	return stdout.Bytes(), nil
}
