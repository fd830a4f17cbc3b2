/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package agent

import (
	"context"
	"fmt"
	"net"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"

	"github.com/microsoft/jdbg/internal/wire"
)

// Client is a minimal agent-side peer speaking the frame protocol. It backs
// integration tests and local tooling; the real agent lives inside the
// target VM.
type Client struct {
	conn        net.Conn
	reassembler *wire.Reassembler
	readBuf     []byte
	pending     []wire.Frame

	mu     sync.Mutex
	closed bool
}

// Dial connects to the agent server, retrying with exponential backoff until
// the context is done or the backoff gives up.
func Dial(ctx context.Context, address string) (*Client, error) {
	policy := backoff.NewExponentialBackOff()
	policy.InitialInterval = 50 * time.Millisecond
	policy.MaxElapsedTime = 15 * time.Second

	var conn net.Conn
	operation := func() error {
		var d net.Dialer
		c, dialErr := d.DialContext(ctx, "tcp", address)
		if dialErr != nil {
			return dialErr
		}
		conn = c
		return nil
	}

	if err := backoff.Retry(operation, backoff.WithContext(policy, ctx)); err != nil {
		return nil, fmt.Errorf("failed to dial agent server at %s: %w", address, err)
	}

	return NewClient(conn), nil
}

// NewClient wraps an established connection.
func NewClient(conn net.Conn) *Client {
	return &Client{
		conn:        conn,
		reassembler: wire.NewReassembler(0),
		readBuf:     make([]byte, readBufferSize),
	}
}

// Send writes one frame.
func (c *Client) Send(id uint32, payload []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return ErrServerClosed
	}
	return wire.WriteFrame(c.conn, id, payload)
}

// Recv blocks until one complete frame has been reassembled from the stream.
func (c *Client) Recv() (wire.Frame, error) {
	if len(c.pending) > 0 {
		frame := c.pending[0]
		c.pending = c.pending[1:]
		return frame, nil
	}

	for {
		n, readErr := c.conn.Read(c.readBuf)
		if n > 0 {
			frames, feedErr := c.reassembler.Feed(c.readBuf[:n])
			if feedErr != nil {
				return wire.Frame{}, fmt.Errorf("malformed frame from server: %w", feedErr)
			}
			if len(frames) > 0 {
				c.pending = append(c.pending, frames[1:]...)
				return frames[0], nil
			}
		}
		if readErr != nil {
			return wire.Frame{}, readErr
		}
	}
}

// SetReadDeadline bounds the next Recv.
func (c *Client) SetReadDeadline(t time.Time) error {
	return c.conn.SetReadDeadline(t)
}

func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return c.conn.Close()
}
