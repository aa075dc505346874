/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-logr/logr"
	"github.com/google/uuid"
	"github.com/smallnest/chanx"
)

const (
	// DefaultRequestTimeout is how long SendRequest waits for a response if the session config does not say otherwise.
	DefaultRequestTimeout = 10 * time.Second

	messageChanInitialCapacity = 16
)

// SessionConfig holds the configuration for creating a Session.
type SessionConfig struct {
	// Transport is the connection to pydevd. Required.
	Transport Transport

	// Registry resolves payload handlers. If nil, DefaultRegistry() is used.
	Registry *Registry

	// Counter mints request sequence numbers. If nil, a fresh counter is used.
	Counter *SequenceCounter

	// RequestTimeout bounds SendRequest. If zero, DefaultRequestTimeout is used.
	RequestTimeout time.Duration

	// Logger for session operations. If not set, logging is disabled.
	Logger logr.Logger
}

// Session is the debug adapter's side of a connection to pydevd.
//
// Requests sent with SendRequest are correlated with their responses by sequence number.
// Events pydevd sends are delivered on the Messages channel. pydevd never originates odd sequences,
// so a reply that arrives after its request timed out is counted as a failure and dropped.
type Session struct {
	id             string
	transport      Transport
	codec          *Codec
	counter        *SequenceCounter
	pending        *pendingRequestMap
	requestTimeout time.Duration
	log            logr.Logger

	// messages delivers unsolicited messages; Run is its only writer.
	messages *chanx.UnboundedChan[*Message]
	failures atomic.Int64
	running  atomic.Bool

	lifetimeCtx context.Context
	cancel      context.CancelFunc
	closeOnce   sync.Once
	closeErr    error
}

// NewSession creates a session over the transport. The session is closed when lifetimeCtx is done
// or Close is called. Call Run to start reading.
func NewSession(lifetimeCtx context.Context, config SessionConfig) (*Session, error) {
	if config.Transport == nil {
		return nil, fmt.Errorf("session transport must not be nil")
	}

	registry := config.Registry
	if registry == nil {
		var err error
		if registry, err = DefaultRegistry(); err != nil {
			return nil, err
		}
	}

	counter := config.Counter
	if counter == nil {
		counter = NewSequenceCounter()
	}

	timeout := config.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}

	log := config.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	id := uuid.New().String()
	sessionCtx, cancel := context.WithCancel(lifetimeCtx)

	return &Session{
		id:             id,
		transport:      config.Transport,
		codec:          NewCodec(registry),
		counter:        counter,
		pending:        newPendingRequestMap(),
		requestTimeout: timeout,
		log:            log.WithValues("session", id),
		messages:       chanx.NewUnboundedChan[*Message](sessionCtx, messageChanInitialCapacity),
		lifetimeCtx:    sessionCtx,
		cancel:         cancel,
	}, nil
}

func (s *Session) ID() string {
	return s.id
}

// Messages returns the channel of events and unsolicited responses.
// The channel is closed when the session ends.
func (s *Session) Messages() <-chan *Message {
	return s.messages.Out
}

// Failures returns the number of lines that could not be read or decoded so far.
func (s *Session) Failures() int64 {
	return s.failures.Load()
}

// Run reads messages until the transport reaches end of stream, ctx is done, or the session is closed.
// Pending requests fail with ErrSessionClosed when Run returns. Run may only be called once.
func (s *Session) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return fmt.Errorf("session %s is already running", s.id)
	}

	runCtx, cancelRun := context.WithCancel(ctx)
	defer cancelRun()

	go func() {
		select {
		case <-runCtx.Done():
		case <-s.lifetimeCtx.Done():
		}
		// Unblocks the pending ReadLine.
		_ = s.transport.Close()
	}()

	defer func() {
		s.pending.DrainWithError(ErrSessionClosed)
		close(s.messages.In)
	}()

	stop := func() bool {
		return runCtx.Err() != nil || s.lifetimeCtx.Err() != nil
	}
	opts := StreamOptions{Codec: s.codec, Cause: s.pending.Peek, Logger: s.log}

	s.log.V(1).Info("Session started")
	for msg, err := range ReadMessages(s.transport, stop, opts) {
		if err != nil {
			s.handleFailure(err)
			continue
		}
		s.dispatch(msg)
	}
	s.log.V(1).Info("Session ended", "failures", s.failures.Load())

	return ctx.Err()
}

func (s *Session) dispatch(msg *Message) {
	s.log.V(1).Info("Received message", "command", msg.Command(), "seq", int(msg.Sequence()), "kind", msg.Kind())

	if msg.Origin() == OriginDebugger {
		if msg.IsResponse() {
			if p := s.pending.Get(msg.Sequence()); p != nil {
				p.deliver(msg, nil)
				return
			}
		}
		s.handleFailure(fmt.Errorf("%w: %s with seq %d", ErrUnexpectedResponse, msg.Command(), int(msg.Sequence())))
		return
	}

	select {
	case s.messages.In <- msg:
	case <-s.lifetimeCtx.Done():
	}
}

func (s *Session) handleFailure(err error) {
	s.failures.Add(1)

	// A response that fails to decode still answers its request.
	var msgErr *MessageError
	if errors.As(err, &msgErr) && msgErr.Fields != nil {
		if seq, parseErr := ParseSequence(msgErr.Fields.Sequence); parseErr == nil && seq.Origin() == OriginDebugger {
			if p := s.pending.Get(seq); p != nil {
				p.deliver(nil, err)
				return
			}
		}
	}

	s.log.Error(err, "Could not process message from pydevd")
}

// SendRequest sends a request and waits for its response.
//
// The wait ends with ErrRequestTimeout after the session's request timeout, with ctx's error if ctx ends
// first, or with ErrSessionClosed. A CMD_ERROR reply is returned together with an ErrRequestFailed error.
func (s *Session) SendRequest(ctx context.Context, cmd CommandID, payload any) (*Message, error) {
	if s.lifetimeCtx.Err() != nil {
		return nil, ErrSessionClosed
	}
	if err := s.codec.Registry().Resolve(cmd, KindRequest, false); err != nil {
		return nil, err
	}

	req, err := newMessage(s.codec.commands, cmd, s.counter.NextOdd(), payload)
	if err != nil {
		return nil, err
	}

	p := newPendingRequest(req)
	s.pending.Add(req.Sequence(), p)

	if err = s.write(req); err != nil {
		s.pending.Get(req.Sequence())
		return nil, err
	}

	timeoutCtx, cancel := context.WithTimeout(ctx, s.requestTimeout)
	defer cancel()

	select {
	case res := <-p.responseChan:
		if res.err != nil {
			return nil, res.err
		}
		if errResp, isErr := res.msg.Payload().(ErrorResponse); isErr {
			return res.msg, fmt.Errorf("%w: %s: %s", ErrRequestFailed, req.Command(), errResp.Text)
		}
		return res.msg, nil

	case <-timeoutCtx.Done():
		s.pending.Get(req.Sequence())
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return nil, fmt.Errorf("%w: %s seq %d after %s", ErrRequestTimeout, req.Command(), int(req.Sequence()), s.requestTimeout)

	case <-s.lifetimeCtx.Done():
		return nil, ErrSessionClosed
	}
}

// Notify sends a request without waiting for a response.
func (s *Session) Notify(cmd CommandID, payload any) (*Message, error) {
	if s.lifetimeCtx.Err() != nil {
		return nil, ErrSessionClosed
	}

	msg, err := newMessage(s.codec.commands, cmd, s.counter.NextOdd(), payload)
	if err != nil {
		return nil, err
	}
	if err = s.write(msg); err != nil {
		return nil, err
	}
	return msg, nil
}

func (s *Session) write(msg *Message) error {
	if writeErr := s.transport.WriteLine(s.codec.Encode(msg)); writeErr != nil {
		return &StreamFailure{Direction: DirectionSend, Message: msg, Err: writeErr}
	}
	s.log.V(1).Info("Sent message", "command", msg.Command(), "seq", int(msg.Sequence()))
	return nil
}

// Close ends the session, closing the transport and failing pending requests with ErrSessionClosed.
func (s *Session) Close() error {
	s.closeOnce.Do(func() {
		s.cancel()
		s.closeErr = s.transport.Close()
		s.pending.DrainWithError(ErrSessionClosed)
	})
	return s.closeErr
}
