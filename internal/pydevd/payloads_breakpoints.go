/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"strconv"
	"strings"
)

const (
	// BreakpointTypePython is the breakpoint type for plain Python source lines.
	BreakpointTypePython = "python-line"

	exceptionPrefix = "python-"
)

// SetBreakRequest adds or replaces a line breakpoint.
type SetBreakRequest struct {
	ID         int
	Type       string
	Path       string
	Line       int
	Function   Optional[string]
	Condition  Optional[string]
	Expression Optional[string]
}

func (r SetBreakRequest) Render() string {
	return strings.Join([]string{
		strconv.Itoa(r.ID),
		r.Type,
		r.Path,
		strconv.Itoa(r.Line),
		renderOptionalText(r.Function),
		renderOptionalText(r.Condition),
		renderOptionalText(r.Expression),
	}, "\t")
}

func parseSetBreakRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 4, "breakpoint ID", "breakpoint type", "path", "line", "function", "condition", "expression")
	if err != nil {
		return nil, err
	}

	id, err := parseIntField("breakpoint ID", fields[0])
	if err != nil {
		return nil, err
	}
	bpType, err := requireField("breakpoint type", fields[1])
	if err != nil {
		return nil, err
	}
	path, err := requireField("path", fields[2])
	if err != nil {
		return nil, err
	}
	line, err := parseIntField("line", fields[3])
	if err != nil {
		return nil, err
	}
	if line < 0 {
		return nil, invalidField("line", fields[3], fmt.Errorf("must not be negative"))
	}

	return SetBreakRequest{
		ID:         id,
		Type:       bpType,
		Path:       path,
		Line:       line,
		Function:   parseOptionalText(fields[4]),
		Condition:  parseOptionalText(fields[5]),
		Expression: parseOptionalText(fields[6]),
	}, nil
}

// RemoveBreakRequest removes a breakpoint previously added with SetBreakRequest.
type RemoveBreakRequest struct {
	Type string
	Path string
	ID   int
}

func (r RemoveBreakRequest) Render() string {
	return fmt.Sprintf("%s\t%s\t%d", r.Type, r.Path, r.ID)
}

func parseRemoveBreakRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 3, "breakpoint type", "path", "breakpoint ID")
	if err != nil {
		return nil, err
	}

	bpType, err := requireField("breakpoint type", fields[0])
	if err != nil {
		return nil, err
	}
	path, err := requireField("path", fields[1])
	if err != nil {
		return nil, err
	}
	id, err := parseIntField("breakpoint ID", fields[2])
	if err != nil {
		return nil, err
	}

	return RemoveBreakRequest{Type: bpType, Path: path, ID: id}, nil
}

func parseExceptionName(s string) (string, error) {
	if s == "" {
		return "", missingField("exception")
	}
	name, found := strings.CutPrefix(s, exceptionPrefix)
	if !found || name == "" {
		return "", invalidField("exception", s, fmt.Errorf("must start with %q", exceptionPrefix))
	}
	return name, nil
}

func parseFlagField(field string, s string) (bool, error) {
	switch s {
	case "", "0":
		return false, nil
	case "1":
		return true, nil
	default:
		return false, invalidField(field, s, fmt.Errorf("must be 0 or 1"))
	}
}

func renderFlag(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

// AddExceptionBreakRequest makes pydevd suspend when the named exception is raised.
// Exception is the exception class name, e.g. "ValueError".
type AddExceptionBreakRequest struct {
	Exception         string
	NotifyAlways      bool
	NotifyOnTerminate bool
	IgnoreLibraries   bool
}

func (r AddExceptionBreakRequest) Render() string {
	return strings.Join([]string{
		exceptionPrefix + r.Exception,
		renderFlag(r.NotifyAlways),
		renderFlag(r.NotifyOnTerminate),
		renderFlag(r.IgnoreLibraries),
	}, "\t")
}

func parseAddExceptionBreakRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 1, "exception", "notify always", "notify on terminate", "ignore libraries")
	if err != nil {
		return nil, err
	}

	name, err := parseExceptionName(fields[0])
	if err != nil {
		return nil, err
	}

	req := AddExceptionBreakRequest{Exception: name}
	if req.NotifyAlways, err = parseFlagField("notify always", fields[1]); err != nil {
		return nil, err
	}
	if req.NotifyOnTerminate, err = parseFlagField("notify on terminate", fields[2]); err != nil {
		return nil, err
	}
	if req.IgnoreLibraries, err = parseFlagField("ignore libraries", fields[3]); err != nil {
		return nil, err
	}
	return req, nil
}

// RemoveExceptionBreakRequest undoes AddExceptionBreakRequest.
type RemoveExceptionBreakRequest struct {
	Exception string
}

func (r RemoveExceptionBreakRequest) Render() string {
	return exceptionPrefix + r.Exception
}

func parseRemoveExceptionBreakRequest(text string) (Payload, error) {
	name, err := parseExceptionName(text)
	if err != nil {
		return nil, err
	}
	return RemoveExceptionBreakRequest{Exception: name}, nil
}
