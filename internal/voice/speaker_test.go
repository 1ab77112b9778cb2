// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"context"
	"errors"
	"os/exec"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

func TestCommandSpeaker_Available(t *testing.T) {
	assert.False(t, NewCommandSpeaker("").Available())
	assert.False(t, NewCommandSpeaker("charlie-no-such-tts-binary").Available())
}

func TestCommandSpeaker_Synthesize(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	t.Run("stdout is the audio", func(t *testing.T) {
		s := NewCommandSpeaker("sh", "-c", "printf 'RIFF'; cat")
		audio, err := s.Synthesize(ctx, SynthesisRequest{Text: "  hello  "})
		require.NoError(t, err)
		assert.Equal(t, "RIFFhello", string(audio))
	})

	t.Run("voice and rate reach the command", func(t *testing.T) {
		s := NewCommandSpeaker("sh", "-c", `printf '%s/%s' "$CHARLIE_TTS_VOICE" "$CHARLIE_TTS_SAMPLE_RATE"`)
		audio, err := s.Synthesize(ctx, SynthesisRequest{Text: "hi", Voice: "amy", SampleRate: 22050})
		require.NoError(t, err)
		assert.Equal(t, "amy/22050", string(audio))
	})

	t.Run("long text is truncated", func(t *testing.T) {
		s := NewCommandSpeaker("sh", "-c", "cat")
		audio, err := s.Synthesize(ctx, SynthesisRequest{Text: strings.Repeat("a", MaxSpeechLength*2)})
		require.NoError(t, err)
		assert.LessOrEqual(t, len(audio), MaxSpeechLength+3)
	})

	t.Run("no output", func(t *testing.T) {
		_, err := NewCommandSpeaker("sh", "-c", "cat >/dev/null").Synthesize(ctx, SynthesisRequest{Text: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "produced no audio")
	})

	t.Run("failure carries stderr", func(t *testing.T) {
		_, err := NewCommandSpeaker("sh", "-c", "echo model missing >&2; exit 3").Synthesize(ctx, SynthesisRequest{Text: "hi"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "model missing")
	})
}

func TestCommandSpeaker_Speak(t *testing.T) {
	requireShell(t)
	ctx := context.Background()

	require.NoError(t, NewCommandSpeaker("sh", "-c", "cat").Speak(ctx, "read this"))
	assert.ErrorIs(t, NewCommandSpeaker("sh", "-c", "cat").Speak(ctx, "   "), ErrEmptySpeech)

	err := NewCommandSpeaker("charlie-no-such-tts-binary").Speak(ctx, "hi")
	assert.True(t, errors.Is(err, ErrUnsupported))
}
