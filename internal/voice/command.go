// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package voice

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
	"sync"
)

// CommandRecognizer runs an external speech-to-text program and takes the
// first non-empty line it prints as the transcript.
type CommandRecognizer struct {
	Command string
	Args    []string

	mu     sync.Mutex
	cancel context.CancelFunc
}

// NewCommandRecognizer creates a recognizer for command.
func NewCommandRecognizer(command string, args ...string) *CommandRecognizer {
	return &CommandRecognizer{Command: command, Args: args}
}

// Available reports whether the command can be found on PATH.
func (r *CommandRecognizer) Available() bool {
	if strings.TrimSpace(r.Command) == "" {
		return false
	}
	_, err := exec.LookPath(r.Command)
	return err == nil
}

// Start launches the command. Callbacks run on a background goroutine.
func (r *CommandRecognizer) Start(cb Callbacks) error {
	ctx, cancel := context.WithCancel(context.Background())

	cmd := exec.CommandContext(ctx, r.Command, r.Args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return err
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return err
	}

	r.mu.Lock()
	r.cancel = cancel
	r.mu.Unlock()

	go func() {
		defer cb.OnEnd()
		defer cancel()

		got := false
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}
			got = true
			cb.OnResult(line)
			break
		}
		if got {
			cancel()
		}
		waitErr := cmd.Wait()

		switch {
		case got:
		case ctx.Err() != nil:
			// stopped by the user
		case waitErr != nil:
			msg := strings.TrimSpace(stderr.String())
			if msg != "" {
				waitErr = fmt.Errorf("%w: %s", waitErr, msg)
			}
			cb.OnError(waitErr)
		default:
			cb.OnError(ErrNoSpeech)
		}
	}()
	return nil
}

// Stop kills the running command, if any.
func (r *CommandRecognizer) Stop() {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.cancel != nil {
		r.cancel()
		r.cancel = nil
	}
}
