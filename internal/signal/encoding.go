/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package signal

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"
)

// Payload fields use big-endian fixed-width integers and strings prefixed by
// a uint16 byte length, matching the Java agent's DataOutputStream
// writeInt/writeUTF conventions.

type payloadWriter struct {
	buf bytes.Buffer
}

func (w *payloadWriter) writeUint32(v uint32) {
	var b [4]byte
	binary.BigEndian.PutUint32(b[:], v)
	w.buf.Write(b[:])
}

func (w *payloadWriter) writeInt32(v int32) {
	w.writeUint32(uint32(v))
}

func (w *payloadWriter) writeString(s string) error {
	if len(s) > math.MaxUint16 {
		return fmt.Errorf("string field of %d bytes exceeds the %d byte limit", len(s), math.MaxUint16)
	}
	var b [2]byte
	binary.BigEndian.PutUint16(b[:], uint16(len(s)))
	w.buf.Write(b[:])
	w.buf.WriteString(s)
	return nil
}

// writeBytes appends raw bytes with no length prefix; only valid as the
// final, variable-length field of a payload.
func (w *payloadWriter) writeBytes(p []byte) {
	w.buf.Write(p)
}

func (w *payloadWriter) bytes() []byte {
	return w.buf.Bytes()
}

type payloadReader struct {
	data []byte
	off  int
}

func newPayloadReader(data []byte) *payloadReader {
	return &payloadReader{data: data}
}

func (r *payloadReader) readUint32() (uint32, error) {
	if r.off+4 > len(r.data) {
		return 0, fmt.Errorf("truncated uint32 field: %w", io.ErrUnexpectedEOF)
	}
	v := binary.BigEndian.Uint32(r.data[r.off:])
	r.off += 4
	return v, nil
}

func (r *payloadReader) readInt32() (int32, error) {
	v, err := r.readUint32()
	return int32(v), err
}

func (r *payloadReader) readString() (string, error) {
	if r.off+2 > len(r.data) {
		return "", fmt.Errorf("truncated string length: %w", io.ErrUnexpectedEOF)
	}
	n := int(binary.BigEndian.Uint16(r.data[r.off:]))
	r.off += 2
	if r.off+n > len(r.data) {
		return "", fmt.Errorf("truncated string field: %w", io.ErrUnexpectedEOF)
	}
	s := string(r.data[r.off : r.off+n])
	r.off += n
	return s, nil
}

// rest returns all remaining payload bytes.
func (r *payloadReader) rest() []byte {
	p := make([]byte, len(r.data)-r.off)
	copy(p, r.data[r.off:])
	r.off = len(r.data)
	return p
}
