/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package signal defines the application-level debug signals exchanged with
// the in-target agent and the registry mapping numeric signal ids to signal
// types. The connection supervisor treats signals as opaque id+payload pairs
// and depends on the registry only through Encode and Decode.
package signal

// Outbound is a debug request sent from the supervisor to the agent.
type Outbound interface {
	// MarshalPayload produces the signal's wire payload, excluding the frame
	// envelope (length prefix and signal id).
	MarshalPayload() ([]byte, error)
}

// Inbound is a debug event received from the agent.
type Inbound interface {
	// UnmarshalPayload parses the signal's wire payload.
	UnmarshalPayload(data []byte) error
}
