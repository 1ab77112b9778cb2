// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat implements the turn lifecycle of a conversation.
//
// A send moves through Idle -> Sending -> (Rendered | Failed) -> Idle. While
// a send is outstanding the session's IsSending flag is set and any further
// send is rejected, never queued.
//
// The controller offers a split-phase API for event-loop UIs:
//
//	p, ok := ctrl.BeginInput()        // mutates the session, no I/O
//	out := ctrl.Dispatch(ctx, p)      // network only, safe off the loop
//	ctrl.Finish(out)                  // mutates the session, no I/O
//
// Send and SendText run the three phases in sequence for callers that can
// block, such as the REPL.
package chat
