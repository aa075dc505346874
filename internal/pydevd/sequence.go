/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"iter"
	"strconv"
	"sync/atomic"
)

// Origin identifies the side of a debugging session that produced a message.
// What pydevd calls the "debugger" is the debug adapter; pydevd calls itself the "daemon".
type Origin string

const (
	OriginDebugger Origin = "debugger"
	OriginDaemon   Origin = "daemon"
)

// Kind is the role of a message in the protocol's interaction pattern.
type Kind string

const (
	KindRequest  Kind = "request"
	KindResponse Kind = "response"
	KindEvent    Kind = "event"
)

var allKinds = []Kind{KindRequest, KindResponse, KindEvent}

func (k Kind) valid() bool {
	return k == KindRequest || k == KindResponse || k == KindEvent
}

// Sequence is a message correlation ID. Odd values originate from the debugger, even values from the daemon.
type Sequence int

// NewSequence wraps an explicit value. It does not affect any counter.
func NewSequence(seq int) (Sequence, error) {
	if seq < 0 {
		return 0, fmt.Errorf("seq must be a non-negative int, got %d", seq)
	}
	return Sequence(seq), nil
}

// ParseSequence parses a decimal sequence number as found on the wire.
func ParseSequence(s string) (Sequence, error) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("seq must be a non-negative int, got %q", s)
	}
	return NewSequence(n)
}

// Origin is derived from the parity of the sequence.
func (s Sequence) Origin() Origin {
	if s%2 == 1 {
		return OriginDebugger
	}
	return OriginDaemon
}

func (s Sequence) String() string {
	return strconv.Itoa(int(s))
}

// SequenceCounter mints fresh sequence numbers for both origins.
// The counter advances by 2 on every mint, so the two origins never produce the same value.
// SequenceCounter is safe for concurrent use.
type SequenceCounter struct {
	next atomic.Int64
}

// DefaultSequenceCounter is the process-wide counter used by FromOriginDebugger and FromOriginDaemon.
var DefaultSequenceCounter = NewSequenceCounter()

func NewSequenceCounter() *SequenceCounter {
	return &SequenceCounter{}
}

func (c *SequenceCounter) advance() int64 {
	return c.next.Add(2) - 2
}

// NextOdd returns a fresh debugger-origin sequence.
func (c *SequenceCounter) NextOdd() Sequence {
	return Sequence(c.advance() + 1)
}

// NextEven returns a fresh daemon-origin sequence.
func (c *SequenceCounter) NextEven() Sequence {
	return Sequence(c.advance())
}

// Next returns a fresh sequence whose parity matches the origin.
func (c *SequenceCounter) Next(origin Origin) (Sequence, error) {
	switch origin {
	case OriginDebugger:
		return c.NextOdd(), nil
	case OriginDaemon:
		return c.NextEven(), nil
	default:
		return 0, fmt.Errorf("unsupported origin %q", origin)
	}
}

// Current returns the value the next mint will start from.
func (c *SequenceCounter) Current() int64 {
	return c.next.Load()
}

// Reset rewinds the counter to zero. Not safe to call while other goroutines are minting.
func (c *SequenceCounter) Reset() {
	c.next.Store(0)
}

// Sequences returns an infinite sequence of fresh values for the origin.
// Every pull advances the shared counter; iterating again does not restart it.
func (c *SequenceCounter) Sequences(origin Origin) iter.Seq[Sequence] {
	mint := c.NextOdd
	if origin == OriginDaemon {
		mint = c.NextEven
	}

	return func(yield func(Sequence) bool) {
		for {
			if !yield(mint()) {
				return
			}
		}
	}
}
