/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package agent

// ConnectionState is the shared state of the connection slot. It is
// transitioned only by a compare-and-swap (accept, session release) or by an
// unconditional store in Close. ShuttingDown is terminal.
type ConnectionState int32

const (
	// StateAwaitingConnection means no agent is connected; the duplex loop
	// is parked on the connection handoff channel.
	StateAwaitingConnection ConnectionState = iota

	// StateActive means exactly one agent connection is live.
	StateActive

	// StateShuttingDown means Close has run; no further connections are
	// accepted and all workers unwind.
	StateShuttingDown
)

func (s ConnectionState) String() string {
	switch s {
	case StateAwaitingConnection:
		return "AwaitingConnection"
	case StateActive:
		return "Active"
	case StateShuttingDown:
		return "ShuttingDown"
	default:
		return "Unknown"
	}
}
