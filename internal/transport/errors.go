// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package transport

import (
	"errors"
	"fmt"
	"net/http"
)

// TransportError is returned for network failures and non-2xx responses.
type TransportError struct {
	Method   string
	Endpoint string

	// StatusCode is zero when no response was received.
	StatusCode int

	// Detail is the error message reported by the server, if any.
	Detail string

	Cause error
}

func (e *TransportError) Error() string {
	prefix := e.Method + " " + e.Endpoint
	if e.StatusCode != 0 {
		msg := fmt.Sprintf("%s: server returned %d %s", prefix, e.StatusCode, http.StatusText(e.StatusCode))
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		if e.Cause != nil {
			msg += ": " + e.Cause.Error()
		}
		return msg
	}
	if e.Cause != nil {
		return prefix + ": " + e.Cause.Error()
	}
	return prefix + ": request failed"
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Unreachable reports whether the request never got a response.
func (e *TransportError) Unreachable() bool {
	return e.StatusCode == 0
}

// Summarize turns an error into the short sentence shown in the conversation.
func Summarize(err error) string {
	if err == nil {
		return ""
	}
	var te *TransportError
	if !errors.As(err, &te) {
		return err.Error()
	}
	switch {
	case te.Unreachable():
		return "Could not reach the Charlie backend. Is `charlie serve` running?"
	case te.Detail != "":
		return fmt.Sprintf("The server returned an error (%d): %s", te.StatusCode, te.Detail)
	default:
		return fmt.Sprintf("The server returned an error (%d %s).", te.StatusCode, http.StatusText(te.StatusCode))
	}
}
