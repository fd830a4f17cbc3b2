/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package agent

import (
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"

	"github.com/microsoft/jdbg/internal/wire"
)

const readBufferSize = 32 * 1024

// duplexLoop waits for the accept loop to hand over a connection, then owns
// it exclusively for the life of the session. After a session ends with a
// transport fault the state returns to AwaitingConnection so a new agent may
// connect; the loop itself exits only on shutdown.
func (s *Server) duplexLoop(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case conn, ok := <-s.connCh:
			if !ok {
				return nil
			}

			log := s.log.WithValues(
				"connection", uuid.NewString(),
				"remote", conn.RemoteAddr().String())
			log.Info("Session started")

			if sessionErr := s.runSession(ctx, conn, log); sessionErr != nil {
				log.Error(sessionErr, "Session ended")
			} else {
				log.Info("Session ended")
			}

			s.releaseSession(conn)
		}
	}
}

// runSession reads the connection with a fixed deadline tick, reassembling
// inbound frames and emitting them onto the inbound queue. A timed-out read
// is the flush tick: the staging queue is drained to the socket in FIFO
// order. Returns nil on orderly teardown, an error on a transport fault.
func (s *Server) runSession(ctx context.Context, conn net.Conn, log logr.Logger) error {
	reassembler := wire.NewReassembler(s.cfg.MaxFrameSize)
	buf := make([]byte, readBufferSize)

	for {
		if ctx.Err() != nil || s.State() != StateActive {
			return nil
		}

		if err := conn.SetReadDeadline(time.Now().Add(s.readTick)); err != nil {
			return fmt.Errorf("failed to arm read deadline: %w", err)
		}

		n, readErr := conn.Read(buf)
		if n > 0 {
			frames, feedErr := reassembler.Feed(buf[:n])
			for _, frame := range frames {
				select {
				case s.inbound.In <- frame:
				case <-ctx.Done():
					return nil
				}
			}
			if feedErr != nil {
				return fmt.Errorf("malformed inbound frame: %w", feedErr)
			}
		}

		if readErr == nil {
			continue
		}

		if errors.Is(readErr, os.ErrDeadlineExceeded) {
			// Nothing to read within the tick; let the outbound path make
			// progress.
			if flushErr := s.flushStaged(conn); flushErr != nil {
				return flushErr
			}
			continue
		}

		if ctx.Err() != nil || s.State() != StateActive {
			// Close tore the connection down underneath us.
			return nil
		}
		return fmt.Errorf("transport fault: %w", readErr)
	}
}

// flushStaged drains the outbound staging queue onto the connection. The
// connection lock serializes these writes against the shutdown path's exit
// frame; nothing is transmitted once the state turns terminal.
func (s *Server) flushStaged(conn net.Conn) error {
	s.connMu.Lock()
	defer s.connMu.Unlock()

	if s.State() != StateActive {
		return nil
	}
	for _, unit := range s.staging.DrainAll() {
		if err := wire.WriteFrame(conn, unit.id, unit.payload); err != nil {
			return fmt.Errorf("failed to flush staged signal %d: %w", unit.id, err)
		}
	}
	return nil
}

// releaseSession clears the connection slot and re-arms acceptance unless
// the server is shutting down.
func (s *Server) releaseSession(conn net.Conn) {
	s.connMu.Lock()
	if s.conn == conn {
		s.conn = nil
	}
	s.connMu.Unlock()

	_ = conn.Close()
	s.state.CompareAndSwap(int32(StateActive), int32(StateAwaitingConnection))
}
