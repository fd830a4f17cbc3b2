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
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/smallnest/chanx"

	"github.com/microsoft/jdbg/internal/signal"
	"github.com/microsoft/jdbg/internal/wire"
	"github.com/microsoft/jdbg/pkg/queue"
)

const (
	// DefaultReadTick is the duplex loop's read deadline. A timed-out read
	// doubles as the outbound flush tick, so this also bounds outbound
	// latency.
	DefaultReadTick = 1000 * time.Millisecond

	// directWriteTimeout bounds the synchronous busy-rejection and exit
	// frame writes so a stalled peer cannot wedge the accept loop or Close.
	directWriteTimeout = 5 * time.Second

	// shutdownExitCode is carried by the final Exit frame.
	shutdownExitCode = 3

	// intakeQueueCapacity is the initial capacity of the unbounded intake
	// queues; they grow without bound beyond it.
	intakeQueueCapacity = 16
)

// Dispatcher consumes decoded inbound signals. The introspection layer
// supplies one; it is invoked once per successfully decoded signal, from the
// read-processor goroutine.
type Dispatcher interface {
	Dispatch(sig signal.Inbound)
}

// DispatchFunc adapts a function to the Dispatcher interface.
type DispatchFunc func(sig signal.Inbound)

func (f DispatchFunc) Dispatch(sig signal.Inbound) {
	f(sig)
}

// ServerConfig contains configuration for the agent server.
type ServerConfig struct {
	// Address is the address to listen on if Listener is nil.
	Address string

	// Listener is the network listener to accept agent connections on.
	// If nil, the server listens on Address.
	Listener net.Listener

	// Registry serializes outbound signals and deserializes inbound ones.
	// If nil, signal.DefaultRegistry() is used.
	Registry *signal.Registry

	// Dispatcher receives decoded inbound signals. If nil, inbound signals
	// are logged and discarded.
	Dispatcher Dispatcher

	// ReadTick is the duplex loop's read deadline and outbound flush tick.
	// Zero selects DefaultReadTick.
	ReadTick time.Duration

	// MaxFrameSize bounds the declared length of inbound frames.
	// Zero selects wire.DefaultMaxFrameSize.
	MaxFrameSize int

	// Logger is the logger for the server.
	Logger logr.Logger
}

// outboundUnit is a serialized signal staged for transmission.
type outboundUnit struct {
	id      uint32
	payload []byte
}

// Server supervises the single agent connection and its four worker loops.
type Server struct {
	cfg      ServerConfig
	log      logr.Logger
	registry *signal.Registry
	readTick time.Duration

	dispatchMu sync.RWMutex
	dispatcher Dispatcher

	state    atomic.Int32
	listener net.Listener

	// connMu guards conn, the live transport handle. The accept loop
	// assigns it, the duplex loop uses it, and Close tears it down.
	connMu sync.Mutex
	conn   net.Conn

	// connCh is the single-item handoff from the accept loop to the duplex
	// loop; it preserves the "wait until a connection is populated"
	// semantics of the connection slot.
	connCh chan net.Conn

	outbound *chanx.UnboundedChan[signal.Outbound]
	inbound  *chanx.UnboundedChan[wire.Frame]
	staging  *queue.ConcurrentQueue[outboundUnit]

	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	started   atomic.Bool
	closeOnce sync.Once
	closeErr  error
}

// NewServer creates an agent server. Start must be called before use.
func NewServer(cfg ServerConfig) *Server {
	log := cfg.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	registry := cfg.Registry
	if registry == nil {
		registry = signal.DefaultRegistry()
	}

	readTick := cfg.ReadTick
	if readTick <= 0 {
		readTick = DefaultReadTick
	}

	return &Server{
		cfg:        cfg,
		log:        log,
		registry:   registry,
		readTick:   readTick,
		dispatcher: cfg.Dispatcher,
		connCh:     make(chan net.Conn, 1),
		staging:    queue.NewConcurrentQueue[outboundUnit](0),
	}
}

// SetDispatcher installs the inbound signal sink. It must be called before
// Start; the introspection layer typically needs the server first, so the
// dispatcher cannot always be part of the config.
func (s *Server) SetDispatcher(d Dispatcher) {
	s.dispatchMu.Lock()
	defer s.dispatchMu.Unlock()
	s.dispatcher = d
}

// Start binds the listener and launches the four worker loops. It does not
// block; Close shuts the server down.
func (s *Server) Start(ctx context.Context) error {
	if !s.started.CompareAndSwap(false, true) {
		return ErrAlreadyStarted
	}

	listener := s.cfg.Listener
	if listener == nil {
		var listenErr error
		listener, listenErr = net.Listen("tcp", s.cfg.Address)
		if listenErr != nil {
			s.started.Store(false)
			return fmt.Errorf("failed to listen on %s: %w", s.cfg.Address, listenErr)
		}
	}
	s.listener = listener

	s.ctx, s.cancel = context.WithCancel(ctx)
	s.outbound = chanx.NewUnboundedChan[signal.Outbound](s.ctx, intakeQueueCapacity)
	s.inbound = chanx.NewUnboundedChan[wire.Frame](s.ctx, intakeQueueCapacity)

	s.log.Info("Agent server listening", "address", listener.Addr().String())

	s.runWorker("accept", s.acceptLoop)
	s.runWorker("duplex", s.duplexLoop)
	s.runWorker("write-processor", s.writeProcessor)
	s.runWorker("read-processor", s.readProcessor)

	return nil
}

// Addr returns the listener address, or nil before Start.
func (s *Server) Addr() net.Addr {
	if s.listener == nil {
		return nil
	}
	return s.listener.Addr()
}

// State returns the current connection state.
func (s *Server) State() ConnectionState {
	return ConnectionState(s.state.Load())
}

// Write enqueues an outbound signal for transmission. It never blocks on
// socket I/O; the signal reaches the wire within one flush tick once the
// connection is active.
func (s *Server) Write(sig signal.Outbound) error {
	if !s.started.Load() {
		return ErrNotStarted
	}
	if s.State() == StateShuttingDown {
		return ErrServerClosed
	}

	select {
	case s.outbound.In <- sig:
		return nil
	case <-s.ctx.Done():
		return ErrServerClosed
	}
}

// Close executes the shutdown protocol: mark the state terminal, discard
// staged frames, deliver a best-effort Exit frame on the live connection,
// close the listener, and wait for all workers to unwind. It is idempotent.
func (s *Server) Close() error {
	if !s.started.Load() {
		return nil
	}

	s.closeOnce.Do(func() {
		s.state.Store(int32(StateShuttingDown))

		// Staged but not yet flushed frames are discarded; delivery is
		// best-effort by contract.
		s.staging.Clear()

		s.connMu.Lock()
		if s.conn != nil {
			exit := &signal.Exit{Code: shutdownExitCode, Reason: "debugger exit"}
			if err := s.writeDirect(s.conn, exit); err != nil {
				s.log.V(1).Info("Failed to deliver exit signal", "error", err.Error())
			}
			_ = s.conn.Close()
			s.conn = nil
		}
		s.connMu.Unlock()

		if err := s.listener.Close(); err != nil {
			s.closeErr = fmt.Errorf("failed to close listener: %w", err)
		}

		s.cancel()
		s.wg.Wait()
		s.log.Info("Agent server stopped")
	})

	return s.closeErr
}

// writeDirect encodes a signal and writes it synchronously to conn, outside
// the outbound queue. Used for busy rejections and the final exit frame.
func (s *Server) writeDirect(conn net.Conn, sig signal.Outbound) error {
	id, payload, err := s.registry.Encode(sig)
	if err != nil {
		return err
	}

	_ = conn.SetWriteDeadline(time.Now().Add(directWriteTimeout))
	defer func() {
		_ = conn.SetWriteDeadline(time.Time{})
	}()

	return wire.WriteFrame(conn, id, payload)
}

func (s *Server) currentDispatcher() Dispatcher {
	s.dispatchMu.RLock()
	defer s.dispatchMu.RUnlock()
	return s.dispatcher
}

func (s *Server) runWorker(name string, fn func(ctx context.Context) error) {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		if err := fn(s.ctx); err != nil {
			s.log.Error(err, "Worker terminated abnormally", "worker", name)
		}
	}()
}
