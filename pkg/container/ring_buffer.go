// Copyright (c) Microsoft Corporation. All rights reserved.

package container

const (
	minBufSize   = 8 // must be a power of 2
	growthFactor = 2

	UnlimitedCapacity = 0
)

// RingBuffer is a FIFO ring buffer that grows as needed when items are added.
// A bounded buffer discards the oldest item when pushed at capacity.
// It is not goroutine-safe.
type RingBuffer[T any] struct {
	buf      []T
	count    int
	head     int // read index
	tail     int // write index
	capacity int // maximum number of items (UnlimitedCapacity for none)
}

func NewRingBuffer[T any]() *RingBuffer[T] {
	return &RingBuffer[T]{
		buf:      make([]T, minBufSize),
		capacity: UnlimitedCapacity,
	}
}

func NewBoundedRingBuffer[T any](capacity int) *RingBuffer[T] {
	if capacity <= 0 {
		return NewRingBuffer[T]()
	}

	bufSize := minBufSize
	for bufSize < capacity {
		bufSize *= growthFactor
	}
	return &RingBuffer[T]{
		buf:      make([]T, bufSize),
		capacity: capacity,
	}
}

// Push appends an item to the buffer, growing it if necessary.
// A bounded buffer at capacity overwrites the oldest item instead.
func (rb *RingBuffer[T]) Push(v T) {
	if rb.capacity != UnlimitedCapacity && rb.count == rb.capacity {
		rb.buf[rb.tail] = v
		rb.tail = rb.next(rb.tail)
		rb.head = rb.next(rb.head)
		return
	}

	if rb.count == len(rb.buf) {
		rb.grow()
	}

	rb.buf[rb.tail] = v
	rb.tail = rb.next(rb.tail)
	rb.count++
}

// Pop removes and returns the oldest item, reporting whether one was present.
func (rb *RingBuffer[T]) Pop() (T, bool) {
	var zero T
	if rb.count == 0 {
		return zero, false
	}

	v := rb.buf[rb.head]
	rb.buf[rb.head] = zero // release the reference for the garbage collector
	rb.head = rb.next(rb.head)
	rb.count--
	return v, true
}

// Peek returns the oldest item without removing it.
func (rb *RingBuffer[T]) Peek() (T, bool) {
	if rb.count == 0 {
		var zero T
		return zero, false
	}
	return rb.buf[rb.head], true
}

func (rb *RingBuffer[T]) Len() int {
	return rb.count
}

func (rb *RingBuffer[T]) Empty() bool {
	return rb.count == 0
}

// Clear discards all buffered items.
func (rb *RingBuffer[T]) Clear() {
	var zero T
	for i := range rb.buf {
		rb.buf[i] = zero
	}
	rb.head = 0
	rb.tail = 0
	rb.count = 0
}

// Items returns the buffered items, oldest first.
func (rb *RingBuffer[T]) Items() []T {
	items := make([]T, 0, rb.count)
	for i, idx := 0, rb.head; i < rb.count; i, idx = i+1, rb.next(idx) {
		items = append(items, rb.buf[idx])
	}
	return items
}

func (rb *RingBuffer[T]) next(idx int) int {
	return (idx + 1) & (len(rb.buf) - 1)
}

func (rb *RingBuffer[T]) grow() {
	newBuf := make([]T, len(rb.buf)*growthFactor)
	n := copy(newBuf, rb.buf[rb.head:])
	copy(newBuf[n:], rb.buf[:rb.tail])
	rb.buf = newBuf
	rb.head = 0
	rb.tail = rb.count
}
