/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"strings"
)

// How the adapter identifies breakpoints in SetBreakRequest/RemoveBreakRequest.
const (
	BreakpointsByID   = "ID"
	BreakpointsByLine = "LINE"
)

// VersionRequest opens the handshake: the adapter's protocol version, the client OS,
// and how breakpoints are identified.
type VersionRequest struct {
	Version       string
	OS            string
	BreakpointsBy string
}

func (r VersionRequest) Render() string {
	return strings.Join([]string{r.Version, r.OS, r.BreakpointsBy}, "\t")
}

func parseVersionRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 1, "version", "os", "breakpoints by")
	if err != nil {
		return nil, err
	}

	version, err := requireField("version", fields[0])
	if err != nil {
		return nil, err
	}

	switch fields[2] {
	case "", BreakpointsByID, BreakpointsByLine:
	default:
		return nil, invalidField("breakpoints by", fields[2], fmt.Errorf("must be %s or %s", BreakpointsByID, BreakpointsByLine))
	}

	return VersionRequest{Version: version, OS: fields[1], BreakpointsBy: fields[2]}, nil
}

// VersionResponse carries the pydevd version.
type VersionResponse struct {
	Version string
}

func (r VersionResponse) Render() string {
	return r.Version
}

func parseVersionResponse(text string) (Payload, error) {
	version, err := requireField("version", text)
	if err != nil {
		return nil, err
	}
	return VersionResponse{Version: version}, nil
}

// ExceptionTraceEvent reports the exception a suspended thread is stopped on.
type ExceptionTraceEvent struct {
	ThreadID      int
	ExceptionType string
	Description   string
	Trace         string
}

func (e ExceptionTraceEvent) Render() string {
	return fmt.Sprintf("%d\t%s\t%s\t%s", e.ThreadID, e.ExceptionType, e.Description, e.Trace)
}

func parseExceptionTraceEvent(text string) (Payload, error) {
	fields, err := splitFields(text, 1, "thread ID", "exception type", "description", "trace")
	if err != nil {
		return nil, err
	}
	id, err := parseIntField("thread ID", fields[0])
	if err != nil {
		return nil, err
	}
	return ExceptionTraceEvent{
		ThreadID:      id,
		ExceptionType: fields[1],
		Description:   fields[2],
		Trace:         fields[3],
	}, nil
}
