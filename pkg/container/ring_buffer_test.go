// Copyright (c) Microsoft Corporation. All rights reserved.

package container

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRingBufferFIFO(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer[int]()
	for i := 0; i < 100; i++ {
		rb.Push(i)
	}
	require.Equal(t, 100, rb.Len())

	for i := 0; i < 100; i++ {
		v, ok := rb.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}

	_, ok := rb.Pop()
	assert.False(t, ok)
	assert.True(t, rb.Empty())
}

func TestRingBufferGrowPreservesOrder(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer[int]()

	// Interleave pushes and pops so head is not at zero when the buffer grows.
	for i := 0; i < 6; i++ {
		rb.Push(i)
	}
	for i := 0; i < 4; i++ {
		v, ok := rb.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
	for i := 6; i < 40; i++ {
		rb.Push(i)
	}

	for i := 4; i < 40; i++ {
		v, ok := rb.Pop()
		require.True(t, ok)
		require.Equal(t, i, v)
	}
}

func TestBoundedRingBufferDiscardsOldest(t *testing.T) {
	t.Parallel()

	rb := NewBoundedRingBuffer[int](4)
	for i := 0; i < 10; i++ {
		rb.Push(i)
	}

	require.Equal(t, 4, rb.Len())
	assert.Equal(t, []int{6, 7, 8, 9}, rb.Items())
}

func TestRingBufferClear(t *testing.T) {
	t.Parallel()

	rb := NewRingBuffer[string]()
	rb.Push("a")
	rb.Push("b")
	rb.Clear()

	assert.True(t, rb.Empty())
	_, ok := rb.Peek()
	assert.False(t, ok)

	rb.Push("c")
	v, ok := rb.Pop()
	require.True(t, ok)
	assert.Equal(t, "c", v)
}
