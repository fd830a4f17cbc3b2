/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package agent

import (
	"context"
	"fmt"
	"net"

	"github.com/microsoft/jdbg/internal/signal"
)

// acceptLoop blocks on the listener. The connection winning the
// AwaitingConnection -> Active transition is handed to the duplex loop; any
// other connection receives a single Busy frame and is closed without
// disturbing the live session.
func (s *Server) acceptLoop(ctx context.Context) error {
	for {
		conn, acceptErr := s.listener.Accept()
		if acceptErr != nil {
			if ctx.Err() != nil || s.State() == StateShuttingDown {
				return nil
			}
			// A listener fault outside shutdown is unrecoverable.
			return fmt.Errorf("accept failed: %w", acceptErr)
		}

		if !s.state.CompareAndSwap(int32(StateAwaitingConnection), int32(StateActive)) {
			s.rejectBusy(conn)
			continue
		}

		s.connMu.Lock()
		s.conn = conn
		s.connMu.Unlock()

		select {
		case s.connCh <- conn:
			s.log.Info("Agent connected", "remote", conn.RemoteAddr().String())
		case <-ctx.Done():
			_ = conn.Close()
			return nil
		}
	}
}

func (s *Server) rejectBusy(conn net.Conn) {
	defer func() {
		_ = conn.Close()
	}()

	if err := s.writeDirect(conn, &signal.Busy{}); err != nil {
		s.log.Error(err, "Failed to send busy rejection", "remote", conn.RemoteAddr().String())
		return
	}
	s.log.Info("Rejected concurrent connection", "remote", conn.RemoteAddr().String())
}
