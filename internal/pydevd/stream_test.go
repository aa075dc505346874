/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/microsoft/pydevd-adapter/pkg/testutil"
)

type streamItem struct {
	msg *Message
	err error
}

func collect(t *testing.T, reader LineReader, stop func() bool, opts StreamOptions) []streamItem {
	var items []streamItem
	for msg, err := range ReadMessages(reader, stop, opts) {
		items = append(items, streamItem{msg: msg, err: err})
		require.Less(t, len(items), 100, "stream should have ended")
	}
	return items
}

func TestReadMessagesContinuesAfterBadLine(t *testing.T) {
	t.Parallel()

	reader := testutil.NewTestLineReader().AddLines(
		"103\t2\t1",
		"104\t4",
		"105\t6\t1\n",
	)

	items := collect(t, reader, nil, StreamOptions{Codec: newTestCodec(t), Logger: testLog(t)})
	require.Len(t, items, 3)

	require.NoError(t, items[0].err)
	assert.Equal(t, CmdThreadCreate, items[0].msg.CommandID())
	assert.Equal(t, ThreadEvent{ThreadID: 1}, items[0].msg.Payload())

	require.Nil(t, items[1].msg)
	var failure *StreamFailure
	require.ErrorAs(t, items[1].err, &failure)
	assert.Equal(t, DirectionRecv, failure.Direction)
	assert.ErrorIs(t, items[1].err, ErrMalformedMessage)

	require.NoError(t, items[2].err)
	assert.Equal(t, CmdThreadSuspend, items[2].msg.CommandID())
	assert.Equal(t, KindEvent, items[2].msg.Kind())
}

func TestReadMessagesReportsReadErrors(t *testing.T) {
	t.Parallel()

	readErr := errors.New("connection reset")
	reader := testutil.NewTestLineReader().
		AddError(readErr).
		AddLines("106\t2\t3")

	items := collect(t, reader, nil, StreamOptions{})
	require.Len(t, items, 2)
	assert.ErrorIs(t, items[0].err, readErr)
	require.NoError(t, items[1].err)
	assert.Equal(t, ThreadEvent{ThreadID: 3}, items[1].msg.Payload())
}

func TestReadMessagesStops(t *testing.T) {
	t.Parallel()

	lines := []string{"103\t2\t1", "103\t4\t2", "103\t6\t3"}

	t.Run("stop function", func(t *testing.T) {
		t.Parallel()

		reader := testutil.NewTestLineReader().AddLines(lines...)
		delivered := 0
		stop := func() bool { return delivered == 2 }

		for _, err := range ReadMessages(reader, stop, StreamOptions{}) {
			require.NoError(t, err)
			delivered++
		}
		assert.Equal(t, 2, delivered)
		assert.Equal(t, 2, reader.Reads(), "no read should happen once stop returns true")
	})

	t.Run("consumer break", func(t *testing.T) {
		t.Parallel()

		reader := testutil.NewTestLineReader().AddLines(lines...)
		for range ReadMessages(reader, nil, StreamOptions{}) {
			break
		}
		assert.Equal(t, 1, reader.Reads())
	})

	t.Run("stop before first read", func(t *testing.T) {
		t.Parallel()

		reader := testutil.NewTestLineReader().AddLines(lines...)
		items := collect(t, reader, func() bool { return true }, StreamOptions{})
		assert.Empty(t, items)
		assert.Equal(t, 0, reader.Reads())
	})
}

func TestReadMessagesCorrelatesResponses(t *testing.T) {
	t.Parallel()

	codec := newTestCodec(t)
	request := mustMessage(t, CmdListThreads, 1, ListThreadsRequest{})
	reply := mustMessage(t, CmdReturn, 1, ListThreadsResponse{Threads: []ThreadInfo{{ID: 1, Name: "MainThread"}}})

	reader := testutil.NewTestLineReader().AddLines(string(codec.Encode(reply)))
	cause := func(seq Sequence) *Message {
		if seq == request.Sequence() {
			return request
		}
		return nil
	}

	items := collect(t, reader, nil, StreamOptions{Codec: codec, Cause: cause})
	require.Len(t, items, 1)
	require.NoError(t, items[0].err)
	assert.True(t, items[0].msg.IsResponse())
	assert.Equal(t, reply.Payload(), items[0].msg.Payload())
}
