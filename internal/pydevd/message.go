/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"

	"github.com/google/go-cmp/cmp"
	"github.com/google/go-cmp/cmp/cmpopts"
)

const unknownMessageCommand = "???"

// Message is a single pydevd protocol message: a command, a sequence number and a typed payload.
// Messages are immutable once constructed.
type Message struct {
	cmd     CommandID
	seq     Sequence
	payload Payload
	handler *Handler
	cause   *Message
}

// NewMessage validates the command and sequence and wraps the payload.
// The payload must be a Payload or a string (which becomes Text).
func NewMessage(cmd CommandID, seq Sequence, payload any) (*Message, error) {
	return newMessage(DefaultCommands, cmd, seq, payload)
}

func newMessage(commands *CommandTable, cmd CommandID, seq Sequence, payload any) (*Message, error) {
	if !commands.Has(cmd) {
		return nil, newInvalidMessageError(nil, "bad cmdid", fmt.Errorf("%w: %d", ErrUnknownCommand, int(cmd)))
	}
	if seq < 0 {
		return nil, newInvalidMessageError(nil, "bad seq", fmt.Errorf("seq must be a non-negative int, got %d", int(seq)))
	}

	var p Payload
	switch tp := payload.(type) {
	case nil:
		return nil, newInvalidMessageError(nil, "bad payload", fmt.Errorf("payload is missing"))
	case Payload:
		p = tp
	case string:
		p = Text(tp)
	default:
		return nil, newInvalidMessageError(nil, "bad payload", fmt.Errorf("unsupported payload type %T", payload))
	}

	return &Message{cmd: cmd, seq: seq, payload: p}, nil
}

// FromOrigin creates a message with a fresh sequence number for the origin, minted from the counter.
func FromOrigin(counter *SequenceCounter, origin Origin, cmd CommandID, payload any) (*Message, error) {
	if counter == nil {
		counter = DefaultSequenceCounter
	}
	seq, err := counter.Next(origin)
	if err != nil {
		return nil, err
	}
	return NewMessage(cmd, seq, payload)
}

// FromOriginDebugger creates a message with a fresh odd sequence number from the default counter.
func FromOriginDebugger(cmd CommandID, payload any) (*Message, error) {
	return FromOrigin(DefaultSequenceCounter, OriginDebugger, cmd, payload)
}

// FromOriginDaemon creates a message with a fresh even sequence number from the default counter.
func FromOriginDaemon(cmd CommandID, payload any) (*Message, error) {
	return FromOrigin(DefaultSequenceCounter, OriginDaemon, cmd, payload)
}

// Command returns the symbolic command name, or "???" if the code is unknown.
func (m *Message) Command() string {
	if name, found := DefaultCommands.Name(m.cmd); found {
		return name
	}
	return unknownMessageCommand
}

func (m *Message) CommandID() CommandID {
	return m.cmd
}

func (m *Message) Sequence() Sequence {
	return m.seq
}

func (m *Message) Origin() Origin {
	return m.seq.Origin()
}

func (m *Message) Payload() Payload {
	return m.payload
}

// PayloadText renders the payload with the handler it was decoded with, if any.
func (m *Message) PayloadText() string {
	if m.handler != nil && m.handler.Render != nil {
		return m.handler.Render(m.payload)
	}
	return renderPayload(m.payload)
}

// PayloadType returns the name of the handler that produced the payload, or "text".
func (m *Message) PayloadType() string {
	if m.handler != nil {
		return m.handler.Name
	}
	return TextHandler.Name
}

// Cause returns the request this message answers, or nil.
func (m *Message) Cause() *Message {
	return m.cause
}

// IsResponse reports whether the message was decoded as the answer to a known request.
func (m *Message) IsResponse() bool {
	return m.cause != nil
}

// Kind is derived from the cause and sequence parity.
func (m *Message) Kind() Kind {
	return kindOf(m.seq, m.cause != nil)
}

func kindOf(seq Sequence, hasCause bool) Kind {
	switch {
	case hasCause:
		return KindResponse
	case seq.Origin() == OriginDebugger:
		return KindRequest
	default:
		return KindEvent
	}
}

// WithCause returns a copy of the message that answers the given request.
func (m *Message) WithCause(cause *Message) *Message {
	cp := *m
	cp.cause = cause
	return &cp
}

// Equal compares command, sequence and payload. The cause is not compared.
// Nil and empty lists in payloads compare equal; both render identically.
func (m *Message) Equal(other *Message) bool {
	if m == nil || other == nil {
		return m == other
	}
	return m.cmd == other.cmd && m.seq == other.seq && cmp.Equal(m.payload, other.payload, cmpopts.EquateEmpty())
}

func (m *Message) String() string {
	return fmt.Sprintf("%s seq=%d payload=%s", m.cmd, int(m.seq), m.PayloadType())
}
