/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package wire implements the agent wire protocol framing.
//
// A frame is a length-prefixed binary envelope:
//
//	Length(4 bytes, BE uint32) || SignalId(4 bytes, BE uint32) || Payload(Length-4 bytes)
//
// Length counts the signal id plus the payload and excludes itself.
// EncodeFrame and WriteFrame produce frames; Reassembler turns an arbitrarily
// fragmented byte stream back into frames.
package wire

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
)

const (
	// LengthSize is the size of the length prefix in bytes.
	LengthSize = 4

	// IDSize is the size of the signal id in bytes.
	IDSize = 4

	// DefaultMaxFrameSize bounds the declared length of a single frame.
	// The wire format itself places no limit on payload size; this bound
	// exists to keep a misbehaving peer from exhausting memory.
	DefaultMaxFrameSize = 16 << 20
)

var (
	// ErrFrameTooLarge is returned when a frame declares a length above the
	// reassembler's configured maximum.
	ErrFrameTooLarge = errors.New("frame exceeds maximum size")

	// ErrFrameTooShort is returned when a frame declares a length that cannot
	// hold a signal id.
	ErrFrameTooShort = errors.New("frame length shorter than signal id")
)

// Frame is one reassembled unit of the wire protocol.
type Frame struct {
	ID      uint32
	Payload []byte
}

// EncodeFrame produces the wire bytes for one frame.
func EncodeFrame(id uint32, payload []byte) []byte {
	buf := make([]byte, LengthSize+IDSize+len(payload))
	binary.BigEndian.PutUint32(buf, uint32(IDSize+len(payload)))
	binary.BigEndian.PutUint32(buf[LengthSize:], id)
	copy(buf[LengthSize+IDSize:], payload)
	return buf
}

// WriteFrame writes one complete frame to w.
func WriteFrame(w io.Writer, id uint32, payload []byte) error {
	if _, err := w.Write(EncodeFrame(id, payload)); err != nil {
		return fmt.Errorf("failed to write frame: %w", err)
	}
	return nil
}
