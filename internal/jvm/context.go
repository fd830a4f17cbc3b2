/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package jvm holds the state of the debug session against a target JVM:
// the attached process, breakpoints, source paths, and the signals received
// from the in-target agent. It is the supervisor's inbound dispatch sink.
//
// The actual JDWP attach/breakpoint machinery lives outside this repository;
// this package owns the session bookkeeping and the agent conversation.
package jvm

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-logr/logr"

	"github.com/microsoft/jdbg/internal/signal"
	"github.com/microsoft/jdbg/pkg/container"
)

// eventHistorySize bounds the retained agent event history.
const eventHistorySize = 128

// AgentServer is the slice of the connection supervisor the session context
// needs: enqueueing outbound signals and executing the shutdown protocol.
type AgentServer interface {
	Write(sig signal.Outbound) error
	Close() error
}

// Breakpoint is one breakpoint registered against the target.
type Breakpoint struct {
	Class  string
	Source string
	Line   int
}

func (b Breakpoint) key() string {
	return fmt.Sprintf("%s:%d", b.Source, b.Line)
}

// MethodKey identifies a method within the target.
type MethodKey struct {
	Class  string
	Method string
}

// AgentEvent is one inbound signal with its arrival time.
type AgentEvent struct {
	Time   time.Time
	Signal signal.Inbound
}

// Context is the per-session debug state. It replaces the original design's
// process-wide singleton: construct one at startup and hand it to every
// component that needs it.
type Context struct {
	log    logr.Logger
	server AgentServer

	mu            sync.Mutex
	attachedPID   int32
	vmName        string
	closeOnDetach bool
	sourcePaths   map[string]string     // class FQN -> source file path
	breakpoints   map[string]Breakpoint // "source:line" -> breakpoint
	methods       map[MethodKey][]byte  // bytecode received from the agent
	history       *container.RingBuffer[AgentEvent]
}

// NewContext creates the session context. It implements the supervisor's
// Dispatcher interface; install it with SetDispatcher before starting the
// server.
func NewContext(server AgentServer, log logr.Logger) *Context {
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &Context{
		log:           log,
		server:        server,
		attachedPID:   -1,
		closeOnDetach: true,
		sourcePaths:   make(map[string]string),
		breakpoints:   make(map[string]Breakpoint),
		methods:       make(map[MethodKey][]byte),
		history:       container.NewBoundedRingBuffer[AgentEvent](eventHistorySize),
	}
}

// Dispatch routes one decoded inbound signal. Called from the supervisor's
// read-processor goroutine.
func (c *Context) Dispatch(sig signal.Inbound) {
	c.mu.Lock()
	c.history.Push(AgentEvent{Time: time.Now(), Signal: sig})
	c.mu.Unlock()

	switch s := sig.(type) {
	case *signal.Hello:
		c.mu.Lock()
		c.vmName = s.VMName
		c.mu.Unlock()
		c.log.Info("Agent hello", "pid", s.PID, "vm", s.VMName)

	case *signal.MethodData:
		c.mu.Lock()
		c.methods[MethodKey{Class: s.Class, Method: s.Method}] = s.Bytecode
		c.mu.Unlock()
		c.log.Info("Received method bytecode",
			"class", s.Class, "method", s.Method, "size", len(s.Bytecode))

	default:
		c.log.V(1).Info("Unhandled agent signal", "signal", fmt.Sprintf("%T", sig))
	}
}

// Attach binds the session to the JVM running at pid. The process must be a
// live JVM; the agent inside it connects to the supervisor on its own.
func (c *Context) Attach(ctx context.Context, pid int32) error {
	c.mu.Lock()
	current := c.attachedPID
	c.mu.Unlock()

	if current == pid {
		c.log.Info("Process already attached", "pid", pid)
		return nil
	}
	if current > 0 {
		return fmt.Errorf("already attached to pid %d; detach first", current)
	}

	jvms, err := AvailableJVMs(ctx)
	if err != nil {
		return fmt.Errorf("failed to enumerate JVM processes: %w", err)
	}

	for _, proc := range jvms {
		if proc.PID == pid {
			c.mu.Lock()
			c.attachedPID = pid
			c.mu.Unlock()
			c.log.Info("Attached", "pid", pid, "command", proc.Command)
			return nil
		}
	}
	return fmt.Errorf("no JVM found with pid %d", pid)
}

// Detach ends the session: all bookkeeping is cleared and, unless
// SetCloseOnDetach(false) was called, the agent server shuts down.
// Detaching when not attached is a no-op.
func (c *Context) Detach() error {
	c.mu.Lock()
	if c.attachedPID == -1 {
		c.mu.Unlock()
		return nil
	}
	pid := c.attachedPID
	c.attachedPID = -1
	c.vmName = ""
	c.sourcePaths = make(map[string]string)
	c.breakpoints = make(map[string]Breakpoint)
	c.methods = make(map[MethodKey][]byte)
	c.history.Clear()
	closeServer := c.closeOnDetach
	c.mu.Unlock()

	c.log.Info("Detached from JVM", "pid", pid)

	if closeServer {
		if err := c.server.Close(); err != nil {
			return fmt.Errorf("failed to close agent server on detach: %w", err)
		}
	}
	return nil
}

// SetCloseOnDetach controls whether Detach also shuts down the agent server.
func (c *Context) SetCloseOnDetach(enabled bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeOnDetach = enabled
}

// AttachedPID returns the attached process id, or -1.
func (c *Context) AttachedPID() int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.attachedPID
}

// VMName returns the name the agent reported in its hello signal.
func (c *Context) VMName() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.vmName
}

// SetBreakpoint registers a breakpoint and asks the agent for the bytecode
// of the enclosing method.
func (c *Context) SetBreakpoint(bp Breakpoint, method, signature string) error {
	c.mu.Lock()
	if _, exists := c.breakpoints[bp.key()]; exists {
		c.mu.Unlock()
		return fmt.Errorf("breakpoint already set at %s", bp.key())
	}
	c.breakpoints[bp.key()] = bp
	c.mu.Unlock()

	req := &signal.RequestMethod{Class: bp.Class, Method: method, Signature: signature}
	if err := c.server.Write(req); err != nil {
		c.mu.Lock()
		delete(c.breakpoints, bp.key())
		c.mu.Unlock()
		return fmt.Errorf("failed to request method for breakpoint %s: %w", bp.key(), err)
	}

	c.log.Info("Breakpoint set", "class", bp.Class, "location", bp.key())
	return nil
}

// ClearBreakpoint removes a breakpoint, reporting whether it existed.
func (c *Context) ClearBreakpoint(source string, line int) bool {
	key := fmt.Sprintf("%s:%d", source, line)
	c.mu.Lock()
	defer c.mu.Unlock()
	_, existed := c.breakpoints[key]
	delete(c.breakpoints, key)
	return existed
}

// Breakpoints returns all registered breakpoints.
func (c *Context) Breakpoints() []Breakpoint {
	c.mu.Lock()
	defer c.mu.Unlock()
	bps := make([]Breakpoint, 0, len(c.breakpoints))
	for _, bp := range c.breakpoints {
		bps = append(bps, bp)
	}
	return bps
}

// MethodBytecode returns the bytecode the agent delivered for a method.
func (c *Context) MethodBytecode(class, method string) ([]byte, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	bytecode, ok := c.methods[MethodKey{Class: class, Method: method}]
	return bytecode, ok
}

// History returns the retained agent events, oldest first.
func (c *Context) History() []AgentEvent {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.history.Items()
}

// AddSourcePath maps a class to its source file for LookupLine.
func (c *Context) AddSourcePath(class, path string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.sourcePaths[class] = path
}

// LookupLine returns a source excerpt around line for the given class, with
// the target line marked. Returns an error if no source path is registered.
func (c *Context) LookupLine(class string, line, contextLines int) (string, error) {
	c.mu.Lock()
	path, ok := c.sourcePaths[class]
	c.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("no source path registered for class %s", class)
	}
	return excerptFile(path, line, contextLines)
}
