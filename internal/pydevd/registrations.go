/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"sync"

	"github.com/go-logr/logr"
)

// Payload handlers for the modeled subset of the protocol.
var (
	RunRequestHandler                  = NewHandler("RunRequest", parseEmpty[RunRequest], nil)
	ListThreadsRequestHandler          = NewHandler("ListThreadsRequest", parseEmpty[ListThreadsRequest], nil)
	ThreadRequestHandler               = NewHandler("ThreadRequest", parseThreadRequest, nil)
	GetVariableRequestHandler          = NewHandler("GetVariableRequest", parseGetVariableRequest, nil)
	GetFrameRequestHandler             = NewHandler("GetFrameRequest", parseGetFrameRequest, nil)
	ChangeVariableRequestHandler       = NewHandler("ChangeVariableRequest", parseChangeVariableRequest, nil)
	SetBreakRequestHandler             = NewHandler("SetBreakRequest", parseSetBreakRequest, nil)
	RemoveBreakRequestHandler          = NewHandler("RemoveBreakRequest", parseRemoveBreakRequest, nil)
	AddExceptionBreakRequestHandler    = NewHandler("AddExceptionBreakRequest", parseAddExceptionBreakRequest, nil)
	RemoveExceptionBreakRequestHandler = NewHandler("RemoveExceptionBreakRequest", parseRemoveExceptionBreakRequest, nil)
	VersionRequestHandler              = NewHandler("VersionRequest", parseVersionRequest, nil)

	VersionResponseHandler        = NewHandler("VersionResponse", parseVersionResponse, nil)
	VariablesResponseHandler      = NewHandler("VariablesResponse", parseVariablesResponse, nil)
	ReturnResponseHandler         = NewHandler("ReturnResponse", parseReturnResponse, nil)
	ListThreadsResponseHandler    = NewHandler("ListThreadsResponse", parseListThreadsResponse, nil)
	ChangeVariableResponseHandler = NewHandler("ChangeVariableResponse", parseChangeVariableResponse, nil)
	ErrorResponseHandler          = NewHandler("ErrorResponse", parseErrorResponse, nil)

	ThreadEventHandler         = NewHandler("ThreadEvent", parseThreadEvent, nil)
	ExceptionTraceEventHandler = NewHandler("ExceptionTraceEvent", parseExceptionTraceEvent, nil)
)

type registration struct {
	cmd     CommandID
	kind    Kind
	handler *Handler

	// For responses that ride on a shared command (e.g. CMD_RETURN): the command the reply
	// arrives with, and the matcher that picks this payload type out of it.
	via   CommandID
	match MatchFunc
}

// registrations is applied in order; responses that ride on CMD_RETURN need the generic
// ReturnResponse registered before them.
var registrations = []registration{
	{cmd: CmdReturn, kind: KindResponse, handler: ReturnResponseHandler},
	{cmd: CmdError, kind: KindResponse, handler: ErrorResponseHandler},

	{cmd: CmdRun, kind: KindRequest, handler: RunRequestHandler},
	{cmd: CmdListThreads, kind: KindRequest, handler: ListThreadsRequestHandler},
	{cmd: CmdListThreads, kind: KindResponse, handler: ListThreadsResponseHandler, via: CmdReturn, match: matchReturnFor(CmdListThreads)},
	{cmd: CmdThreadSuspend, kind: KindRequest, handler: ThreadRequestHandler},
	{cmd: CmdThreadRun, kind: KindRequest, handler: ThreadRequestHandler},
	{cmd: CmdStepInto, kind: KindRequest, handler: ThreadRequestHandler},
	{cmd: CmdStepOver, kind: KindRequest, handler: ThreadRequestHandler},
	{cmd: CmdStepReturn, kind: KindRequest, handler: ThreadRequestHandler},

	{cmd: CmdSetBreak, kind: KindRequest, handler: SetBreakRequestHandler},
	{cmd: CmdRemoveBreak, kind: KindRequest, handler: RemoveBreakRequestHandler},
	{cmd: CmdAddExceptionBreak, kind: KindRequest, handler: AddExceptionBreakRequestHandler},
	{cmd: CmdRemoveExceptionBreak, kind: KindRequest, handler: RemoveExceptionBreakRequestHandler},

	{cmd: CmdGetFrame, kind: KindRequest, handler: GetFrameRequestHandler},
	{cmd: CmdGetFrame, kind: KindResponse, handler: VariablesResponseHandler},
	{cmd: CmdGetVariable, kind: KindRequest, handler: GetVariableRequestHandler},
	{cmd: CmdGetVariable, kind: KindResponse, handler: VariablesResponseHandler},
	{cmd: CmdChangeVariable, kind: KindRequest, handler: ChangeVariableRequestHandler},
	{cmd: CmdChangeVariable, kind: KindResponse, handler: ChangeVariableResponseHandler, via: CmdReturn, match: matchReturnFor(CmdChangeVariable)},

	{cmd: CmdVersion, kind: KindRequest, handler: VersionRequestHandler},
	{cmd: CmdVersion, kind: KindResponse, handler: VersionResponseHandler},

	{cmd: CmdThreadCreate, kind: KindEvent, handler: ThreadEventHandler},
	{cmd: CmdThreadKill, kind: KindEvent, handler: ThreadEventHandler},
	{cmd: CmdThreadSuspend, kind: KindEvent, handler: ThreadEventHandler},
	{cmd: CmdThreadRun, kind: KindEvent, handler: ThreadEventHandler},
	{cmd: CmdSendCurrExceptionTrace, kind: KindEvent, handler: ExceptionTraceEventHandler},
	{cmd: CmdSendCurrExceptionTraceProceeded, kind: KindEvent, handler: ThreadEventHandler},
}

// RegisterResponse binds the reply type for a request.
//
// If via is zero the reply carries the request's own command and the handler is registered for it
// exclusively. Otherwise the reply arrives as the via command: the handler is added as a matcher there
// (via must already have an exclusive handler) and also registered exclusively under the request command.
func (r *Registry) RegisterResponse(request CommandID, handler *Handler, via CommandID, match MatchFunc) error {
	if via != 0 {
		if match == nil {
			return fmt.Errorf("response %s for %s via %s needs a matcher", handler.Name, request, via)
		}

		existing, err := r.LookUp(via, KindResponse, LookUpOptions{Strict: true})
		if err != nil {
			return fmt.Errorf("response %s not registered: %w", via, err)
		}
		if existing == nil {
			return fmt.Errorf("response %s not registered: %w", via, ErrUnsupportedCommand)
		}

		if err = r.Register(via, KindResponse, handler, WithMatcher(match)); err != nil {
			return err
		}
	}

	return r.Register(request, KindResponse, handler)
}

func applyRegistrations(r *Registry, regs []registration) error {
	for _, reg := range regs {
		var err error
		if reg.kind == KindResponse {
			err = r.RegisterResponse(reg.cmd, reg.handler, reg.via, reg.match)
		} else {
			err = r.Register(reg.cmd, reg.kind, reg.handler)
		}
		if err != nil {
			return fmt.Errorf("could not register %s for %s %s: %w", reg.handler.Name, reg.kind, reg.cmd, err)
		}
	}
	return nil
}

// NewDefaultRegistry creates a registry over the default command sets with every modeled payload type registered.
func NewDefaultRegistry(log logr.Logger) (*Registry, error) {
	r := NewRegistry(RegistryConfig{Logger: log})
	if err := applyRegistrations(r, registrations); err != nil {
		return nil, err
	}
	return r, nil
}

// DefaultRegistry returns a process-wide registry built by NewDefaultRegistry on first use.
var DefaultRegistry = sync.OnceValues(func() (*Registry, error) {
	return NewDefaultRegistry(logr.Discard())
})
