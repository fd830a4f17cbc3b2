/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package signal

import (
	"errors"
	"fmt"
	"reflect"
	"sync"
)

var (
	// ErrUnknownSignal is returned when decoding a frame whose signal id has
	// no registered inbound type.
	ErrUnknownSignal = errors.New("unknown signal id")

	// ErrNotRegistered is returned when encoding an outbound signal whose
	// type has not been registered.
	ErrNotRegistered = errors.New("signal type not registered")

	// ErrDuplicateRegistration is returned when a signal id or type is
	// registered twice.
	ErrDuplicateRegistration = errors.New("duplicate signal registration")
)

// Registry is a bidirectional mapping between numeric signal ids and signal
// types. Outbound types map to the id stamped on their frames; inbound ids
// map to a factory producing a value to unmarshal into.
// Registry is safe for concurrent use.
type Registry struct {
	mu       sync.RWMutex
	outbound map[reflect.Type]uint32
	inbound  map[uint32]func() Inbound
	knownIDs map[uint32]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		outbound: make(map[reflect.Type]uint32),
		inbound:  make(map[uint32]func() Inbound),
		knownIDs: make(map[uint32]struct{}),
	}
}

// RegisterOutbound associates id with the concrete type of prototype.
func (r *Registry) RegisterOutbound(id uint32, prototype Outbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	t := reflect.TypeOf(prototype)
	if _, exists := r.outbound[t]; exists {
		return fmt.Errorf("%w: outbound type %s", ErrDuplicateRegistration, t)
	}
	if _, exists := r.knownIDs[id]; exists {
		return fmt.Errorf("%w: signal id %d", ErrDuplicateRegistration, id)
	}

	r.outbound[t] = id
	r.knownIDs[id] = struct{}{}
	return nil
}

// RegisterInbound associates id with a factory for the inbound signal type.
func (r *Registry) RegisterInbound(id uint32, factory func() Inbound) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.knownIDs[id]; exists {
		return fmt.Errorf("%w: signal id %d", ErrDuplicateRegistration, id)
	}

	r.inbound[id] = factory
	r.knownIDs[id] = struct{}{}
	return nil
}

// Encode resolves the signal's id and serializes its payload.
func (r *Registry) Encode(sig Outbound) (uint32, []byte, error) {
	r.mu.RLock()
	id, registered := r.outbound[reflect.TypeOf(sig)]
	r.mu.RUnlock()

	if !registered {
		return 0, nil, fmt.Errorf("%w: %T", ErrNotRegistered, sig)
	}

	payload, err := sig.MarshalPayload()
	if err != nil {
		return 0, nil, fmt.Errorf("failed to marshal %T payload: %w", sig, err)
	}
	return id, payload, nil
}

// Decode constructs the inbound signal registered for id and parses the
// payload into it.
func (r *Registry) Decode(id uint32, payload []byte) (Inbound, error) {
	r.mu.RLock()
	factory, registered := r.inbound[id]
	r.mu.RUnlock()

	if !registered {
		return nil, fmt.Errorf("%w: %d", ErrUnknownSignal, id)
	}

	sig := factory()
	if err := sig.UnmarshalPayload(payload); err != nil {
		return nil, fmt.Errorf("failed to unmarshal signal %d payload: %w", id, err)
	}
	return sig, nil
}
