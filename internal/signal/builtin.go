/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package signal

// Built-in signal ids. Busy and Exit are reserved: the supervisor writes them
// directly to the transport outside the normal outbound queue, during
// accept-rejection and shutdown.
const (
	IDBusy          uint32 = 1
	IDExit          uint32 = 2
	IDRequestMethod uint32 = 3
	IDHello         uint32 = 4
	IDMethodData    uint32 = 5
)

// DefaultRegistry returns a registry with all built-in signals registered.
func DefaultRegistry() *Registry {
	r := NewRegistry()

	// Registration of built-ins cannot collide; ignore the error returns.
	_ = r.RegisterOutbound(IDBusy, &Busy{})
	_ = r.RegisterOutbound(IDExit, &Exit{})
	_ = r.RegisterOutbound(IDRequestMethod, &RequestMethod{})
	_ = r.RegisterInbound(IDHello, func() Inbound { return &Hello{} })
	_ = r.RegisterInbound(IDMethodData, func() Inbound { return &MethodData{} })

	return r
}

// Busy rejects a connection attempt while another agent is connected.
// Its payload is empty.
type Busy struct{}

func (s *Busy) MarshalPayload() ([]byte, error) {
	return nil, nil
}

// Exit tells the agent the supervisor is shutting down.
type Exit struct {
	Code   int32
	Reason string
}

func (s *Exit) MarshalPayload() ([]byte, error) {
	var w payloadWriter
	w.writeInt32(s.Code)
	if err := w.writeString(s.Reason); err != nil {
		return nil, err
	}
	return w.bytes(), nil
}

// RequestMethod asks the agent for the bytecode of a method, sent when a
// breakpoint is placed in it.
type RequestMethod struct {
	Class     string
	Method    string
	Signature string
}

func (s *RequestMethod) MarshalPayload() ([]byte, error) {
	var w payloadWriter
	for _, field := range []string{s.Class, s.Method, s.Signature} {
		if err := w.writeString(field); err != nil {
			return nil, err
		}
	}
	return w.bytes(), nil
}

// Hello is the agent's first signal after connecting, identifying the target
// virtual machine.
type Hello struct {
	PID    int32
	VMName string
}

func (s *Hello) UnmarshalPayload(data []byte) error {
	r := newPayloadReader(data)
	var err error
	if s.PID, err = r.readInt32(); err != nil {
		return err
	}
	s.VMName, err = r.readString()
	return err
}

// MethodData carries the bytecode of one method from the agent, answering a
// RequestMethod signal.
type MethodData struct {
	Class    string
	Method   string
	Bytecode []byte
}

func (s *MethodData) UnmarshalPayload(data []byte) error {
	r := newPayloadReader(data)
	var err error
	if s.Class, err = r.readString(); err != nil {
		return err
	}
	if s.Method, err = r.readString(); err != nil {
		return err
	}
	s.Bytecode = r.rest()
	return nil
}
