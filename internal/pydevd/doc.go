/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

/*
Package pydevd implements the wire protocol spoken between a debug adapter and
the pydevd debugger daemon running inside a Python debuggee.

# Wire Format

Every message is a single line with three tab-separated fields:

	<command-code>\t<sequence-number>\t<percent-encoded-payload-text>\n

The command code identifies the operation (see CommandTable). The sequence
number correlates requests with their responses; its parity encodes the side
that originated the message:

  - odd: the debug adapter ("debugger")
  - even: pydevd ("daemon")

A reply from pydevd echoes the sequence number of the request it answers, so
an odd sequence on an inbound line means "response" whenever the causing
request is known.

# Key Components

  - CommandID / CommandTable: validated command codes and their symbolic names
  - Sequence / SequenceCounter: origin-tagged correlation IDs
  - Registry: maps (command, kind) pairs to payload handlers, with ordered
    matchers for responses that ride on the shared CMD_RETURN command
  - Codec: frames, deframes and resolves payloads
  - Payload types: ThreadRequest, SetBreakRequest, GetVariableRequest, etc.
  - ReadMessages: a lazy stream of decoded messages and stream failures
  - Session: request/response correlation over a Transport

# Usage

	registry, err := pydevd.DefaultRegistry()
	if err != nil {
		return err
	}
	codec := pydevd.NewCodec(registry)

	msg, err := codec.Decode([]byte("102\t1\t\n"), nil)
	if err != nil {
		return err
	}
	log.Info("Decoded message", "command", msg.Command(), "origin", msg.Origin())

Payload types are bound to commands once, when the registry is built (see
registrations.go). The registry is read-only afterwards; Register may still be
called at runtime and takes the registry lock.
*/
package pydevd
