/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"errors"
	"fmt"
	"io"
	"iter"
	"net"

	"github.com/go-logr/logr"
)

// Stream directions reported by StreamFailure.
const (
	DirectionRecv = "recv"
	DirectionSend = "send"
)

// LineReader returns one wire line per call, with or without the trailing newline.
type LineReader interface {
	ReadLine() ([]byte, error)
}

// StreamFailure is yielded by ReadMessages in place of a message that could not be read or decoded.
type StreamFailure struct {
	Direction string

	// Message is the message being sent, for send failures.
	Message *Message

	Err error
}

func (f *StreamFailure) Error() string {
	if f.Message != nil {
		return fmt.Sprintf("%s failed for %s: %v", f.Direction, f.Message, f.Err)
	}
	return fmt.Sprintf("%s failed: %v", f.Direction, f.Err)
}

func (f *StreamFailure) Unwrap() error {
	return f.Err
}

// StreamOptions customizes ReadMessages.
type StreamOptions struct {
	// Codec decodes the lines. If nil, a codec over DefaultRegistry() is used.
	Codec *Codec

	// Cause returns the request a message with the given sequence answers, or nil.
	// Only consulted for odd sequence numbers.
	Cause func(Sequence) *Message

	Logger logr.Logger
}

// ReadMessages returns a lazy sequence of decoded messages read from the reader.
//
// stop is checked before every read; the sequence ends when it returns true, when the consumer stops
// iterating, or when the reader reports that no more lines can arrive (io.EOF, closed connection).
// Lines that cannot be read or decoded are yielded as (nil, *StreamFailure) and reading continues.
func ReadMessages(reader LineReader, stop func() bool, opts StreamOptions) iter.Seq2[*Message, error] {
	log := opts.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	return func(yield func(*Message, error) bool) {
		codec := opts.Codec
		if codec == nil {
			registry, err := DefaultRegistry()
			if err != nil {
				yield(nil, &StreamFailure{Direction: DirectionRecv, Err: err})
				return
			}
			codec = NewCodec(registry)
		}

		for {
			if stop != nil && stop() {
				return
			}

			line, readErr := reader.ReadLine()
			if readErr != nil {
				if IsEndOfStream(readErr) {
					log.V(1).Info("Message stream ended", "reason", readErr.Error())
					return
				}
				if !yield(nil, &StreamFailure{Direction: DirectionRecv, Err: readErr}) {
					return
				}
				continue
			}

			msg, decodeErr := codec.DecodeCorrelated(line, opts.Cause)
			if decodeErr != nil {
				log.V(1).Info("Could not decode message", "line", string(line), "error", decodeErr.Error())
				if !yield(nil, &StreamFailure{Direction: DirectionRecv, Err: decodeErr}) {
					return
				}
				continue
			}

			if !yield(msg, nil) {
				return
			}
		}
	}
}

// IsEndOfStream reports whether a read error means the other side is gone for good.
func IsEndOfStream(err error) bool {
	return errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed)
}
