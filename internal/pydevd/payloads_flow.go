/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"strconv"
)

// RunRequest tells pydevd that configuration is done and the debuggee may start.
type RunRequest struct{}

func (RunRequest) Render() string { return "" }

// ListThreadsRequest asks for the live threads. The reply is a ListThreadsResponse.
type ListThreadsRequest struct{}

func (ListThreadsRequest) Render() string { return "" }

func parseEmpty[T Payload](text string) (Payload, error) {
	if err := ensureEmpty(text); err != nil {
		return nil, err
	}
	var p T
	return p, nil
}

// ThreadRequest targets a single thread: suspend, resume and the step commands.
type ThreadRequest struct {
	ThreadID int
}

func (r ThreadRequest) Render() string {
	return strconv.Itoa(r.ThreadID)
}

func parseThreadRequest(text string) (Payload, error) {
	id, err := parseIntField("thread ID", text)
	if err != nil {
		return nil, err
	}
	return ThreadRequest{ThreadID: id}, nil
}

// ThreadEvent reports a change in a thread's lifecycle or run state.
type ThreadEvent struct {
	ThreadID int
}

func (e ThreadEvent) Render() string {
	return strconv.Itoa(e.ThreadID)
}

func parseThreadEvent(text string) (Payload, error) {
	id, err := parseIntField("thread ID", text)
	if err != nil {
		return nil, err
	}
	return ThreadEvent{ThreadID: id}, nil
}

// ReturnResponse is the generic reply carried by CMD_RETURN when no more specific payload type matches.
type ReturnResponse struct {
	Text string
}

func (r ReturnResponse) Render() string {
	return r.Text
}

func parseReturnResponse(text string) (Payload, error) {
	return ReturnResponse{Text: text}, nil
}

// ErrorResponse is pydevd's reply to a request it could not carry out.
type ErrorResponse struct {
	Text string
}

func (r ErrorResponse) Render() string {
	return r.Text
}

func parseErrorResponse(text string) (Payload, error) {
	return ErrorResponse{Text: text}, nil
}
