/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package agent

import "errors"

var (
	// ErrServerClosed is returned when using a server that has shut down.
	ErrServerClosed = errors.New("agent server is closed")

	// ErrAlreadyStarted is returned when Start is called twice.
	ErrAlreadyStarted = errors.New("agent server already started")

	// ErrNotStarted is returned when using a server before Start.
	ErrNotStarted = errors.New("agent server not started")
)
