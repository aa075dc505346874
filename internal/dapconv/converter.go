/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

// Package dapconv translates decoded pydevd messages into Debug Adapter Protocol messages.
package dapconv

import (
	"fmt"
	"strings"
	"sync"

	"github.com/google/go-dap"

	"github.com/microsoft/pydevd-adapter/internal/pydevd"
)

// sequenceCounter provides thread-safe DAP sequence number generation.
type sequenceCounter struct {
	mu  sync.Mutex
	seq int
}

// Next returns the next sequence number.
func (c *sequenceCounter) Next() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	return c.seq
}

// Converter turns pydevd events and replies into DAP messages.
//
// Container variables get a DAP variablesReference; Reference maps it back to the
// pydevd request that lists the container's children. A Converter is safe for concurrent use.
type Converter struct {
	seq sequenceCounter

	refsMu  sync.Mutex
	nextRef int
	refs    map[int]pydevd.GetVariableRequest
}

func NewConverter() *Converter {
	return &Converter{
		refs: make(map[int]pydevd.GetVariableRequest),
	}
}

func (c *Converter) newEvent(event string) dap.Event {
	return dap.Event{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  c.seq.Next(),
			Type: "event",
		},
		Event: event,
	}
}

func (c *Converter) newResponse(requestSeq int, command string) dap.Response {
	return dap.Response{
		ProtocolMessage: dap.ProtocolMessage{
			Seq:  c.seq.Next(),
			Type: "response",
		},
		RequestSeq: requestSeq,
		Success:    true,
		Command:    command,
	}
}

// Event translates a pydevd event. The second return value is false for messages
// that have no DAP counterpart.
func (c *Converter) Event(msg *pydevd.Message) (dap.Message, bool) {
	if msg == nil || msg.Kind() != pydevd.KindEvent {
		return nil, false
	}

	switch p := msg.Payload().(type) {
	case pydevd.ThreadEvent:
		switch msg.CommandID() {
		case pydevd.CmdThreadCreate:
			return &dap.ThreadEvent{
				Event: c.newEvent("thread"),
				Body:  dap.ThreadEventBody{Reason: "started", ThreadId: p.ThreadID},
			}, true

		case pydevd.CmdThreadKill:
			return &dap.ThreadEvent{
				Event: c.newEvent("thread"),
				Body:  dap.ThreadEventBody{Reason: "exited", ThreadId: p.ThreadID},
			}, true

		case pydevd.CmdThreadSuspend:
			return &dap.StoppedEvent{
				Event: c.newEvent("stopped"),
				Body:  dap.StoppedEventBody{Reason: "pause", ThreadId: p.ThreadID},
			}, true

		case pydevd.CmdSendCurrExceptionTraceProceeded:
			return &dap.StoppedEvent{
				Event: c.newEvent("stopped"),
				Body:  dap.StoppedEventBody{Reason: "exception", ThreadId: p.ThreadID},
			}, true

		case pydevd.CmdThreadRun:
			c.ResetReferences()
			return &dap.ContinuedEvent{
				Event: c.newEvent("continued"),
				Body:  dap.ContinuedEventBody{ThreadId: p.ThreadID},
			}, true
		}

	case pydevd.ExceptionTraceEvent:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Thread %d raised %s", p.ThreadID, p.ExceptionType)
		if p.Description != "" {
			fmt.Fprintf(&sb, ": %s", p.Description)
		}
		sb.WriteString("\n")
		if p.Trace != "" {
			sb.WriteString(strings.TrimSuffix(p.Trace, "\n"))
			sb.WriteString("\n")
		}
		return &dap.OutputEvent{
			Event: c.newEvent("output"),
			Body:  dap.OutputEventBody{Category: "stderr", Output: sb.String()},
		}, true
	}

	return nil, false
}

// ThreadsResponse answers a DAP threads request from a pydevd thread list reply.
func (c *Converter) ThreadsResponse(requestSeq int, msg *pydevd.Message) (*dap.ThreadsResponse, error) {
	if msg == nil {
		return nil, fmt.Errorf("no thread list reply")
	}
	list, isList := msg.Payload().(pydevd.ListThreadsResponse)
	if !isList {
		return nil, fmt.Errorf("unexpected reply to thread list: %s", msg)
	}

	threads := make([]dap.Thread, 0, len(list.Threads))
	for _, t := range list.Threads {
		threads = append(threads, dap.Thread{Id: t.ID, Name: t.Name})
	}

	return &dap.ThreadsResponse{
		Response: c.newResponse(requestSeq, "threads"),
		Body:     dap.ThreadsResponseBody{Threads: threads},
	}, nil
}

// Variables translates the children listed in a pydevd variables reply. parent is the request
// the reply answers; containers get a reference whose request lists their own children.
func (c *Converter) Variables(parent pydevd.GetVariableRequest, msg *pydevd.Message) ([]dap.Variable, error) {
	if msg == nil {
		return nil, fmt.Errorf("no variables reply")
	}
	list, isList := msg.Payload().(pydevd.VariablesResponse)
	if !isList {
		return nil, fmt.Errorf("unexpected reply to variables request: %s", msg)
	}

	vars := make([]dap.Variable, 0, len(list.Variables))
	for _, v := range list.Variables {
		dv := dap.Variable{
			Name:  v.Name,
			Value: v.Value,
			Type:  v.Type,
		}
		if v.IsContainer {
			dv.VariablesReference = c.addReference(childRequest(parent, v.Name))
		}
		vars = append(vars, dv)
	}
	return vars, nil
}

// VariablesResponse answers a DAP variables request with variables returned by Variables or FrameVariables.
func (c *Converter) VariablesResponse(requestSeq int, vars []dap.Variable) *dap.VariablesResponse {
	if vars == nil {
		vars = []dap.Variable{}
	}
	return &dap.VariablesResponse{
		Response: c.newResponse(requestSeq, "variables"),
		Body:     dap.VariablesResponseBody{Variables: vars},
	}
}

// FrameVariables is Variables for the reply to CMD_GET_FRAME.
func (c *Converter) FrameVariables(frame pydevd.GetFrameRequest, msg *pydevd.Message) ([]dap.Variable, error) {
	return c.Variables(pydevd.GetVariableRequest{ThreadID: frame.ThreadID, FrameID: frame.FrameID, Scope: frame.Scope}, msg)
}

// Reference returns the pydevd request that lists the children behind a variablesReference.
func (c *Converter) Reference(ref int) (pydevd.GetVariableRequest, bool) {
	c.refsMu.Lock()
	defer c.refsMu.Unlock()
	req, found := c.refs[ref]
	return req, found
}

// ResetReferences forgets all variable references. DAP references are only valid while the
// debuggee stays suspended; Event calls it when a thread resumes.
func (c *Converter) ResetReferences() {
	c.refsMu.Lock()
	defer c.refsMu.Unlock()
	c.refs = make(map[int]pydevd.GetVariableRequest)
}

func (c *Converter) addReference(req pydevd.GetVariableRequest) int {
	c.refsMu.Lock()
	defer c.refsMu.Unlock()
	c.nextRef++
	c.refs[c.nextRef] = req
	return c.nextRef
}

func childRequest(parent pydevd.GetVariableRequest, name string) pydevd.GetVariableRequest {
	child := parent
	if parent.Attributes == "" {
		child.Attributes = name
	} else {
		child.Attributes = parent.Attributes + "\t" + name
	}
	return child
}
