/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package wire

import (
	"encoding/binary"
	"fmt"
)

// pendingNone marks that the current frame's length prefix is not yet complete.
const pendingNone = -1

// Reassembler incrementally decodes frames from a fragmented byte stream.
// Bytes may arrive split at arbitrary boundaries; surplus bytes beyond a
// completed frame are carried into the next one and nothing is discarded.
// Reassembler is not goroutine-safe; the duplex loop is its only caller.
type Reassembler struct {
	acc          []byte
	pendingLen   int // declared length of the in-flight frame, pendingNone until the prefix is complete
	maxFrameSize int
}

// NewReassembler creates a reassembler enforcing the given frame size bound.
// A non-positive bound selects DefaultMaxFrameSize.
func NewReassembler(maxFrameSize int) *Reassembler {
	if maxFrameSize <= 0 {
		maxFrameSize = DefaultMaxFrameSize
	}
	return &Reassembler{
		pendingLen:   pendingNone,
		maxFrameSize: maxFrameSize,
	}
}

// Feed accepts the next fragment of the stream and returns all frames it
// completes, in wire order. A malformed length prefix poisons the stream and
// returns an error; the connection must be torn down at that point.
func (r *Reassembler) Feed(p []byte) ([]Frame, error) {
	r.acc = append(r.acc, p...)

	var frames []Frame
	for {
		if r.pendingLen == pendingNone {
			if len(r.acc) < LengthSize {
				break
			}
			declared := binary.BigEndian.Uint32(r.acc)
			if declared < IDSize {
				return frames, fmt.Errorf("%w: declared length %d", ErrFrameTooShort, declared)
			}
			if int64(declared) > int64(r.maxFrameSize) {
				return frames, fmt.Errorf("%w: declared length %d, maximum %d",
					ErrFrameTooLarge, declared, r.maxFrameSize)
			}
			r.pendingLen = int(declared)
			r.acc = r.acc[LengthSize:]
		}

		if len(r.acc) < r.pendingLen {
			break
		}

		id := binary.BigEndian.Uint32(r.acc)
		payload := make([]byte, r.pendingLen-IDSize)
		copy(payload, r.acc[IDSize:r.pendingLen])
		frames = append(frames, Frame{ID: id, Payload: payload})

		// Carry surplus bytes into the next frame.
		rest := len(r.acc) - r.pendingLen
		copy(r.acc, r.acc[r.pendingLen:])
		r.acc = r.acc[:rest]
		r.pendingLen = pendingNone
	}

	return frames, nil
}

// Pending reports how many buffered bytes await frame completion.
func (r *Reassembler) Pending() int {
	return len(r.acc)
}
