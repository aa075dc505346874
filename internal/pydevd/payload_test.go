/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestThreadInfoRender(t *testing.T) {
	t.Parallel()

	info := ThreadInfo{ID: 7, Name: "worker"}
	assert.Equal(t, `<thread name="worker" id="7" />`, info.Render())

	parsed, err := ParseThreadInfo(info.Render())
	require.NoError(t, err)
	assert.Equal(t, info, parsed)

	unsafe := ThreadInfo{ID: 8, Name: `a&b "c" <d>`}
	rendered := unsafe.Render()
	assert.NotContains(t, rendered, `"c"`, "quotes in the name must not end the attribute")
	assert.NotContains(t, rendered, "<d>")
	assert.Contains(t, rendered, "&amp;")

	parsed, err = ParseThreadInfo(rendered)
	require.NoError(t, err)
	assert.Equal(t, unsafe, parsed)
}

func TestThreadInfoRoundTripsThroughDecode(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	cause := mustMessage(t, CmdListThreads, 1, ListThreadsRequest{})
	reply := mustMessage(t, CmdReturn, 1, ListThreadsResponse{Threads: []ThreadInfo{{ID: 7, Name: "worker"}}})

	decoded, err := codec.Decode(codec.Encode(reply), cause)
	require.NoError(t, err)
	assert.Equal(t, ListThreadsResponse{Threads: []ThreadInfo{{ID: 7, Name: "worker"}}}, decoded.Payload())
}

func TestListThreadsResponseSkipsInternalThreads(t *testing.T) {
	t.Parallel()

	text := `<xml><thread name="MainThread" id="1" /><thread name="pydevd.Reader" id="2" /><thread name="pydevd.Writer" id="3" /><thread name="worker" id="4" /></xml>`
	p, err := parseListThreadsResponse(text)
	require.NoError(t, err)
	assert.Equal(t, ListThreadsResponse{Threads: []ThreadInfo{{ID: 1, Name: "MainThread"}, {ID: 4, Name: "worker"}}}, p)

	_, err = parseListThreadsResponse(`<xml><thread name="x" /></xml>`)
	require.ErrorIs(t, err, ErrMissingField)

	_, err = parseListThreadsResponse(`<xml><thread`)
	require.ErrorIs(t, err, ErrInvalidField)
}

func TestVariablesResponseParse(t *testing.T) {
	t.Parallel()

	text := `<xml><var name="x" type="int" value="1" /><var name="items" type="list" value="%5B1%2C%202%5D" isContainer="True" /></xml>`
	p, err := parseVariablesResponse(text)
	require.NoError(t, err)
	assert.Equal(t, VariablesResponse{Variables: []Variable{
		{Name: "x", Type: "int", Value: "1"},
		{Name: "items", Type: "list", Value: "[1, 2]", IsContainer: true},
	}}, p)

	_, err = parseChangeVariableResponse("<xml></xml>")
	require.ErrorIs(t, err, ErrMissingField)
}

func TestPayloadFieldErrors(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name    string
		parse   ParseFunc
		text    string
		missing bool
		field   string
	}{
		{"thread request without ID", parseThreadRequest, "", true, "thread ID"},
		{"thread request with bad ID", parseThreadRequest, "abc", false, "thread ID"},
		{"get frame without scope", parseGetFrameRequest, "1\t2", true, "scope"},
		{"get frame with bad scope", parseGetFrameRequest, "1\t2\tLOCAL", false, "scope"},
		{"get frame with empty scope", parseGetFrameRequest, "1\t2\t", true, "scope"},
		{"get variable without frame", parseGetVariableRequest, "1", true, "frame ID"},
		{"change variable without name", parseChangeVariableRequest, "1\t2\tFRAME", true, "name"},
		{"set break without line", parseSetBreakRequest, "1\tpython-line\t/a.py", true, "line"},
		{"set break with bad line", parseSetBreakRequest, "1\tpython-line\t/a.py\tten", false, "line"},
		{"set break with negative line", parseSetBreakRequest, "1\tpython-line\t/a.py\t-3", false, "line"},
		{"set break without path", parseSetBreakRequest, "1\tpython-line\t\t3", true, "path"},
		{"remove break with bad ID", parseRemoveBreakRequest, "python-line\t/a.py\tx", false, "breakpoint ID"},
		{"add exception break without prefix", parseAddExceptionBreakRequest, "ValueError\t1\t0\t0", false, "exception"},
		{"add exception break with bad flag", parseAddExceptionBreakRequest, "python-ValueError\t2", false, "notify always"},
		{"remove exception break without name", parseRemoveExceptionBreakRequest, "", true, "exception"},
		{"version without version", parseVersionRequest, "", true, "version"},
		{"version with bad breakpoints mode", parseVersionRequest, "1.1\tUNIX\tNAME", false, "breakpoints by"},
		{"version reply without version", parseVersionResponse, "", true, "version"},
		{"exception trace with bad thread", parseExceptionTraceEvent, "x\tValueError", false, "thread ID"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			_, err := tc.parse(tc.text)
			require.ErrorIs(t, err, ErrUnexpectedPayload)

			var fieldErr *FieldError
			require.ErrorAs(t, err, &fieldErr)
			assert.Equal(t, tc.field, fieldErr.Field)
			if tc.missing {
				assert.ErrorIs(t, err, ErrMissingField)
			} else {
				assert.ErrorIs(t, err, ErrInvalidField)
			}
		})
	}
}

func TestSetBreakRequestOptionalFields(t *testing.T) {
	t.Parallel()

	p, err := parseSetBreakRequest("4\tpython-line\t/a.py\t12\tNone\tx == 1\tNone")
	require.NoError(t, err)
	req := p.(SetBreakRequest)

	_, hasFunction := req.Function.Get()
	assert.False(t, hasFunction, "None marks an absent function")
	cond, hasCondition := req.Condition.Get()
	assert.True(t, hasCondition)
	assert.Equal(t, "x == 1", cond)

	p, err = parseSetBreakRequest("4\tpython-line\t/a.py\t12")
	require.NoError(t, err)
	assert.Equal(t, SetBreakRequest{ID: 4, Type: "python-line", Path: "/a.py", Line: 12}, p, "trailing fields are optional")
}

func TestChangeVariableRequestNameAndValue(t *testing.T) {
	t.Parallel()

	p, err := parseChangeVariableRequest("1\t2\tFRAME\tobj\tattr\t42")
	require.NoError(t, err)
	assert.Equal(t, ChangeVariableRequest{ThreadID: 1, FrameID: 2, Scope: ScopeFrame, Name: "obj.attr", Value: Present("42")}, p)

	p, err = parseChangeVariableRequest("1\t2\tFRAME\tx\t")
	require.NoError(t, err)
	assert.Equal(t, Present(""), p.(ChangeVariableRequest).Value, "an empty value is still a value")
}

func TestTextHandlers(t *testing.T) {
	t.Parallel()

	p, err := TextHandler.Parse("anything\tgoes")
	require.NoError(t, err)
	assert.Equal(t, "anything\tgoes", TextHandler.Render(p))

	_, err = NoPayloadHandler.Parse("x")
	require.ErrorIs(t, err, ErrUnexpectedPayload)

	p, err = NoPayloadHandler.Parse("")
	require.NoError(t, err)
	assert.Equal(t, "", NoPayloadHandler.Render(p))
}
