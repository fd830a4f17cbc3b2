// Copyright (c) Microsoft Corporation. All rights reserved.

// Package queue implements a generic, thread-safe FIFO queue using a single
// lock and a dynamically sized circular buffer.
package queue

import (
	"sync"

	"github.com/microsoft/jdbg/pkg/concurrency"
	"github.com/microsoft/jdbg/pkg/container"
)

// ConcurrentQueue is a FIFO queue safe for concurrent producers and consumers.
// A capacity of zero means the queue is unbounded.
type ConcurrentQueue[T any] struct {
	lock    sync.Mutex
	newData *concurrency.AutoResetEvent
	buf     *container.RingBuffer[T]
}

func NewConcurrentQueue[T any](capacity int) *ConcurrentQueue[T] {
	return &ConcurrentQueue[T]{
		buf:     container.NewBoundedRingBuffer[T](capacity),
		newData: concurrency.NewAutoResetEvent(false),
	}
}

func (q *ConcurrentQueue[T]) Enqueue(v T) {
	q.lock.Lock()
	defer q.lock.Unlock()
	defer q.newData.Set()
	q.buf.Push(v)
}

func (q *ConcurrentQueue[T]) Dequeue() (T, bool) {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.buf.Pop()
}

// DrainAll removes and returns all queued items in FIFO order.
func (q *ConcurrentQueue[T]) DrainAll() []T {
	q.lock.Lock()
	defer q.lock.Unlock()

	if q.buf.Empty() {
		return nil
	}
	items := q.buf.Items()
	q.buf.Clear()
	return items
}

// Clear discards all queued items.
func (q *ConcurrentQueue[T]) Clear() {
	q.lock.Lock()
	defer q.lock.Unlock()
	q.buf.Clear()
}

func (q *ConcurrentQueue[T]) Len() int {
	q.lock.Lock()
	defer q.lock.Unlock()
	return q.buf.Len()
}

// NewData returns a channel that delivers a value whenever data is enqueued.
// ONLY ONE CONSUMING GOROUTINE should use this channel.
func (q *ConcurrentQueue[T]) NewData() <-chan struct{} {
	return q.newData.WaitChannel()
}
