/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package wire

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeFrameLayout(t *testing.T) {
	t.Parallel()

	encoded := EncodeFrame(7, []byte("abcdef"))

	// Length counts id + payload and excludes itself.
	expected := []byte{
		0, 0, 0, 10, // length = 4 + 6
		0, 0, 0, 7, // signal id
		'a', 'b', 'c', 'd', 'e', 'f',
	}
	assert.Equal(t, expected, encoded)
}

func TestEncodeFrameEmptyPayload(t *testing.T) {
	t.Parallel()

	encoded := EncodeFrame(42, nil)
	assert.Equal(t, []byte{0, 0, 0, 4, 0, 0, 0, 42}, encoded)
}

func TestWriteFrame(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, WriteFrame(&buf, 9, []byte{1, 2, 3}))
	assert.Equal(t, EncodeFrame(9, []byte{1, 2, 3}), buf.Bytes())
}

func TestReassemblerSingleFeed(t *testing.T) {
	t.Parallel()

	r := NewReassembler(0)
	frames, err := r.Feed(EncodeFrame(7, []byte("abcdef")))
	require.NoError(t, err)

	require.Len(t, frames, 1)
	assert.Equal(t, uint32(7), frames[0].ID)
	assert.Equal(t, []byte("abcdef"), frames[0].Payload)
	assert.Equal(t, 0, r.Pending())
}

func TestReassemblerSplitReads(t *testing.T) {
	t.Parallel()

	// The frame [0,0,0,10][0,0,0,7]["abcdef"] delivered in reads of 5, 4 and
	// 5 bytes must produce exactly one frame {id:7, payload:"abcdef"}.
	encoded := EncodeFrame(7, []byte("abcdef"))
	require.Len(t, encoded, 14)

	r := NewReassembler(0)

	frames, err := r.Feed(encoded[:5])
	require.NoError(t, err)
	require.Empty(t, frames)

	frames, err = r.Feed(encoded[5:9])
	require.NoError(t, err)
	require.Empty(t, frames)

	frames, err = r.Feed(encoded[9:])
	require.NoError(t, err)
	require.Len(t, frames, 1)
	assert.Equal(t, uint32(7), frames[0].ID)
	assert.Equal(t, []byte("abcdef"), frames[0].Payload)
}

// TestReassemblerFragmentationInvariance verifies that feeding a frame
// sequence in chunks of any size yields the same frames as one contiguous
// block.
func TestReassemblerFragmentationInvariance(t *testing.T) {
	t.Parallel()

	var stream []byte
	stream = append(stream, EncodeFrame(1, []byte("hello"))...)
	stream = append(stream, EncodeFrame(2, nil)...)
	stream = append(stream, EncodeFrame(3, bytes.Repeat([]byte{0xAB}, 300))...)
	stream = append(stream, EncodeFrame(4, []byte{0, 0, 0, 0})...)

	whole := NewReassembler(0)
	expected, err := whole.Feed(stream)
	require.NoError(t, err)
	require.Len(t, expected, 4)

	for chunkSize := 1; chunkSize <= len(stream); chunkSize++ {
		r := NewReassembler(0)
		var got []Frame
		for start := 0; start < len(stream); start += chunkSize {
			end := min(start+chunkSize, len(stream))
			frames, feedErr := r.Feed(stream[start:end])
			require.NoError(t, feedErr)
			got = append(got, frames...)
		}
		require.Equal(t, expected, got, "chunk size %d", chunkSize)
		require.Equal(t, 0, r.Pending(), "chunk size %d", chunkSize)
	}
}

func TestReassemblerMultipleFramesOneFeed(t *testing.T) {
	t.Parallel()

	var stream []byte
	for i := uint32(1); i <= 5; i++ {
		stream = append(stream, EncodeFrame(i, []byte{byte(i)})...)
	}

	r := NewReassembler(0)
	frames, err := r.Feed(stream)
	require.NoError(t, err)

	require.Len(t, frames, 5)
	for i, f := range frames {
		assert.Equal(t, uint32(i+1), f.ID)
		assert.Equal(t, []byte{byte(i + 1)}, f.Payload)
	}
}

func TestReassemblerRejectsOversizedFrame(t *testing.T) {
	t.Parallel()

	r := NewReassembler(64)
	_, err := r.Feed([]byte{0, 0, 1, 0}) // declares 256 bytes
	require.ErrorIs(t, err, ErrFrameTooLarge)
}

func TestReassemblerRejectsShortLength(t *testing.T) {
	t.Parallel()

	r := NewReassembler(0)
	_, err := r.Feed([]byte{0, 0, 0, 3}) // cannot hold a signal id
	require.ErrorIs(t, err, ErrFrameTooShort)
}

func TestReassemblerErrorPreservesCompletedFrames(t *testing.T) {
	t.Parallel()

	stream := EncodeFrame(1, []byte("ok"))
	stream = append(stream, 0, 0, 0, 1) // malformed follow-up length

	r := NewReassembler(0)
	frames, err := r.Feed(stream)
	require.ErrorIs(t, err, ErrFrameTooShort)
	require.Len(t, frames, 1)
	assert.Equal(t, uint32(1), frames[0].ID)
}
