/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package agent implements the supervisor side of the in-target agent protocol.

# Architecture Overview

A Server owns a listening socket and exactly one live agent connection at a
time. Frames on the wire are length-prefixed binary envelopes (see the wire
package); application signals are serialized through a signal.Registry.

# Worker Loops

The server runs four long-lived goroutines communicating only through the
connection state, a one-capacity connection handoff channel, two unbounded
intake queues and a FIFO staging queue:

  - accept loop: owns the listener. The first connection is handed to the
    duplex loop; any further attempt while a session is active receives a
    single Busy frame and is closed.
  - duplex loop: owns the live connection exclusively. It reads with a fixed
    deadline tick, reassembling inbound frames from arbitrary fragments; a
    read timeout doubles as the flush tick that drains the outbound staging
    queue onto the socket, bounding outbound latency by one tick.
  - write processor: takes submitted outbound signals, serializes them via
    the registry, and appends them to the staging queue in FIFO order.
  - read processor: takes reassembled frames, decodes them via the registry,
    and dispatches the resulting signals to the configured Dispatcher.

# Connection Lifecycle

State moves AwaitingConnection -> Active on accept and back to
AwaitingConnection when the session ends with a transport fault, so a new
agent may connect. ShuttingDown, entered by Close, is terminal: Close clears
the staging queue, delivers a best-effort Exit frame to the live connection,
closes the listener and waits for all workers to unwind.
*/
package agent
