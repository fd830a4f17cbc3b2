// Copyright (c) Microsoft Corporation. All rights reserved.

package concurrency

// AutoResetEvent is a level-triggered notification primitive: Set makes the
// event signaled, and receiving from WaitChannel consumes the signal.
// Multiple Set calls before a wait coalesce into a single wakeup.
type AutoResetEvent struct {
	channel chan struct{}
}

func NewAutoResetEvent(initialState bool) *AutoResetEvent {
	e := &AutoResetEvent{
		channel: make(chan struct{}, 1),
	}
	if initialState {
		e.Set()
	}
	return e
}

// WaitChannel returns the channel that delivers the signal.
// ONLY ONE CONSUMING GOROUTINE should receive from it.
func (e *AutoResetEvent) WaitChannel() <-chan struct{} {
	return e.channel
}

// Set signals the event. Never blocks the caller.
func (e *AutoResetEvent) Set() {
	select {
	case e.channel <- struct{}{}:
	default:
	}
}

// Clear consumes a pending signal, if any. Never blocks the caller.
func (e *AutoResetEvent) Clear() {
	select {
	case <-e.channel:
	default:
	}
}
