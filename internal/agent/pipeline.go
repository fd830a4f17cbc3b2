/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package agent

import (
	"context"
	"fmt"
)

// writeProcessor serializes submitted outbound signals and stages them for
// the duplex loop's flush tick, preserving submission order. A serialization
// fault is fatal to this worker: the error is surfaced, not swallowed.
func (s *Server) writeProcessor(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case sig, ok := <-s.outbound.Out:
			if !ok {
				return nil
			}

			id, payload, encodeErr := s.registry.Encode(sig)
			if encodeErr != nil {
				return fmt.Errorf("unrecoverable outbound serialization fault: %w", encodeErr)
			}

			if s.State() == StateShuttingDown {
				return nil
			}
			s.staging.Enqueue(outboundUnit{id: id, payload: payload})
		}
	}
}

// readProcessor decodes reassembled inbound frames and dispatches the
// resulting signals. A decode fault drops the frame and the loop continues;
// inbound processing survives a misbehaving agent.
func (s *Server) readProcessor(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case frame, ok := <-s.inbound.Out:
			if !ok {
				return nil
			}

			sig, decodeErr := s.registry.Decode(frame.ID, frame.Payload)
			if decodeErr != nil {
				s.log.Error(decodeErr, "Dropping undecodable signal",
					"id", frame.ID, "payloadSize", len(frame.Payload))
				continue
			}

			if dispatcher := s.currentDispatcher(); dispatcher != nil {
				dispatcher.Dispatch(sig)
			} else {
				s.log.V(1).Info("No dispatcher configured, discarding signal",
					"signal", fmt.Sprintf("%T", sig))
			}
		}
	}
}
