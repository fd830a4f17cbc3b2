/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package signal

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeResolvesRegisteredID(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	id, payload, err := reg.Encode(&Busy{})
	require.NoError(t, err)
	assert.Equal(t, IDBusy, id)
	assert.Empty(t, payload)

	id, _, err = reg.Encode(&Exit{Code: 3, Reason: "debugger exit"})
	require.NoError(t, err)
	assert.Equal(t, IDExit, id)
}

func TestEncodeUnregisteredType(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	_, _, err := reg.Encode(&Exit{})
	require.ErrorIs(t, err, ErrNotRegistered)
}

func TestDecodeUnknownID(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()
	_, err := reg.Decode(0xDEAD, nil)
	require.ErrorIs(t, err, ErrUnknownSignal)
}

func TestDuplicateRegistration(t *testing.T) {
	t.Parallel()

	reg := NewRegistry()
	require.NoError(t, reg.RegisterOutbound(1, &Busy{}))

	err := reg.RegisterOutbound(1, &Exit{})
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	err = reg.RegisterOutbound(9, &Busy{})
	require.ErrorIs(t, err, ErrDuplicateRegistration)

	err = reg.RegisterInbound(1, func() Inbound { return &Hello{} })
	require.ErrorIs(t, err, ErrDuplicateRegistration)
}

func TestExitPayloadLayout(t *testing.T) {
	t.Parallel()

	payload, err := (&Exit{Code: 3, Reason: "bye"}).MarshalPayload()
	require.NoError(t, err)

	expected := []byte{
		0, 0, 0, 3, // code
		0, 3, 'b', 'y', 'e', // uint16-length-prefixed reason
	}
	assert.Equal(t, expected, payload)
}

func TestRequestMethodPayloadLayout(t *testing.T) {
	t.Parallel()

	sig := &RequestMethod{Class: "com.example.Main", Method: "run", Signature: "()V"}
	payload, err := sig.MarshalPayload()
	require.NoError(t, err)

	r := newPayloadReader(payload)
	class, err := r.readString()
	require.NoError(t, err)
	method, err := r.readString()
	require.NoError(t, err)
	sigStr, err := r.readString()
	require.NoError(t, err)

	assert.Equal(t, "com.example.Main", class)
	assert.Equal(t, "run", method)
	assert.Equal(t, "()V", sigStr)
}

func TestHelloRoundTrip(t *testing.T) {
	t.Parallel()

	var w payloadWriter
	w.writeInt32(12345)
	require.NoError(t, w.writeString("OpenJDK 64-Bit Server VM"))

	reg := DefaultRegistry()
	decoded, err := reg.Decode(IDHello, w.bytes())
	require.NoError(t, err)

	hello, ok := decoded.(*Hello)
	require.True(t, ok)
	assert.Equal(t, int32(12345), hello.PID)
	assert.Equal(t, "OpenJDK 64-Bit Server VM", hello.VMName)
}

func TestMethodDataRoundTrip(t *testing.T) {
	t.Parallel()

	bytecode := []byte{0xCA, 0xFE, 0xBA, 0xBE, 0x00, 0x01}
	var w payloadWriter
	require.NoError(t, w.writeString("com.example.Main"))
	require.NoError(t, w.writeString("run"))
	w.writeBytes(bytecode)

	reg := DefaultRegistry()
	decoded, err := reg.Decode(IDMethodData, w.bytes())
	require.NoError(t, err)

	md, ok := decoded.(*MethodData)
	require.True(t, ok)
	assert.Equal(t, "com.example.Main", md.Class)
	assert.Equal(t, "run", md.Method)
	assert.Equal(t, bytecode, md.Bytecode)
}

func TestDecodeTruncatedPayload(t *testing.T) {
	t.Parallel()

	reg := DefaultRegistry()

	_, err := reg.Decode(IDHello, []byte{0, 0}) // not even a full PID
	require.Error(t, err)

	_, err = reg.Decode(IDMethodData, []byte{0, 5, 'a'}) // string length overruns
	require.Error(t, err)
}
