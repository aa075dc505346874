/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"bytes"
	"fmt"
	"strings"
)

const fieldSeparator = "\t"

// Codec converts between wire lines and Messages, resolving payload handlers through a Registry.
// Codec holds no mutable state of its own and is safe for concurrent use.
type Codec struct {
	registry *Registry
	commands *CommandTable
}

func NewCodec(registry *Registry) *Codec {
	return &Codec{
		registry: registry,
		commands: registry.Commands(),
	}
}

func (c *Codec) Registry() *Registry {
	return c.registry
}

// Decode parses a single wire line. The trailing newline is optional.
// If cause is not nil the line is decoded as the response to that request.
func (c *Codec) Decode(line []byte, cause *Message) (*Message, error) {
	trimmed := string(bytes.TrimSuffix(bytes.TrimSuffix(line, []byte("\n")), []byte("\r")))

	parts := strings.SplitN(trimmed, fieldSeparator, 3)
	if len(parts) < 3 {
		return nil, newMalformedMessageError(trimmed, fmt.Sprintf("expected 3 tab-separated fields, got %d", len(parts)))
	}
	fields := &RawFields{Command: parts[0], Sequence: parts[1], Text: parts[2]}

	if fields.Command == "" {
		return nil, newInvalidMessageError(fields, "missing cmdid", nil)
	}
	if fields.Sequence == "" {
		return nil, newInvalidMessageError(fields, "missing seq", nil)
	}

	cmd, err := c.commands.ToID(fields.Command)
	if err != nil {
		return nil, newInvalidMessageError(fields, "bad cmdid", err)
	}
	seq, err := ParseSequence(fields.Sequence)
	if err != nil {
		return nil, newInvalidMessageError(fields, "bad seq", err)
	}

	text := unquote(fields.Text)

	if cause != nil && seq.Origin() != OriginDebugger {
		return nil, newInvalidMessageError(fields, "bad seq", fmt.Errorf("a response must echo an odd request seq, got %d", int(seq)))
	}

	// The candidate carries the raw text so matchers can inspect it before a payload type is chosen.
	candidate := &Message{cmd: cmd, seq: seq, payload: Text(text), cause: cause}

	var handler *Handler
	if cause != nil {
		handler, err = c.registry.LookUpResponse(cause, candidate)
	} else {
		handler, err = c.registry.LookUp(cmd, candidate.Kind(), LookUpOptions{Message: candidate})
	}
	if err != nil {
		return nil, newUnsupportedMessageError(fields, err)
	}
	if handler == nil {
		return nil, newUnsupportedMessageError(fields, fmt.Errorf("%w: no payload handler for %s %s", ErrUnsupportedCommand, candidate.Kind(), cmd))
	}

	payload, err := handler.Parse(text)
	if err != nil {
		return nil, newInvalidMessageError(fields, "bad payload", err)
	}

	candidate.payload = payload
	candidate.handler = handler
	return candidate, nil
}

// DecodeCorrelated decodes a line, looking up the causing request by sequence number.
// The lookup is consulted only for odd sequences; it may return nil for unsolicited requests.
func (c *Codec) DecodeCorrelated(line []byte, lookup func(Sequence) *Message) (*Message, error) {
	var cause *Message
	if lookup != nil {
		if seq, ok := peekSequence(line); ok && seq.Origin() == OriginDebugger {
			cause = lookup(seq)
		}
	}
	return c.Decode(line, cause)
}

func peekSequence(line []byte) (Sequence, bool) {
	parts := bytes.SplitN(line, []byte(fieldSeparator), 3)
	if len(parts) < 3 {
		return 0, false
	}
	seq, err := ParseSequence(string(parts[1]))
	if err != nil {
		return 0, false
	}
	return seq, true
}

// Encode renders a message as a wire line, including the trailing newline.
func (c *Codec) Encode(msg *Message) []byte {
	return []byte(fmt.Sprintf("%d\t%d\t%s\n", int(msg.cmd), int(msg.seq), quote(msg.PayloadText())))
}
