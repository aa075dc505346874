/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/microsoft/pydevd-adapter/pkg/testutil"
)

const sampleTrace = "501\t1\t1.1%09UNIX%09LINE\n" +
	"501\t1\t1.9\n" +
	"102\t3\t\n" +
	"502\t3\t%3Cxml%3E%3Cthread%20name%3D%22MainThread%22%20id%3D%221%22%20%2F%3E%3C%2Fxml%3E\n" +
	"103\t2\t1\n" +
	"bogus\n"

type decodedMessage struct {
	Command     string `json:"command" yaml:"command"`
	Seq         int    `json:"seq" yaml:"seq"`
	Kind        string `json:"kind" yaml:"kind"`
	InReplyTo   string `json:"inReplyTo" yaml:"inReplyTo"`
	PayloadType string `json:"payloadType" yaml:"payloadType"`
}

type decodedLine struct {
	Line    int             `json:"line" yaml:"line"`
	Message *decodedMessage `json:"message" yaml:"message"`
	Error   string          `json:"error" yaml:"error"`
}

func readJSONLines(t *testing.T, data []byte) []decodedLine {
	dec := json.NewDecoder(bytes.NewReader(data))
	var lines []decodedLine
	for {
		var l decodedLine
		if err := dec.Decode(&l); err != nil {
			require.ErrorIs(t, err, io.EOF)
			return lines
		}
		lines = append(lines, l)
	}
}

func assertSampleTrace(t *testing.T, lines []decodedLine) {
	require.Len(t, lines, 6)
	for i, l := range lines {
		assert.Equal(t, i+1, l.Line)
	}

	require.NotNil(t, lines[0].Message)
	assert.Equal(t, decodedMessage{Command: "CMD_VERSION", Seq: 1, Kind: "request", PayloadType: "VersionRequest"}, *lines[0].Message)

	require.NotNil(t, lines[1].Message)
	assert.Equal(t, decodedMessage{Command: "CMD_VERSION", Seq: 1, Kind: "response", InReplyTo: "CMD_VERSION", PayloadType: "VersionResponse"}, *lines[1].Message)

	require.NotNil(t, lines[2].Message)
	assert.Equal(t, "request", lines[2].Message.Kind)

	require.NotNil(t, lines[3].Message)
	assert.Equal(t, decodedMessage{Command: "CMD_RETURN", Seq: 3, Kind: "response", InReplyTo: "CMD_LIST_THREADS", PayloadType: "ListThreadsResponse"}, *lines[3].Message)

	require.NotNil(t, lines[4].Message)
	assert.Equal(t, decodedMessage{Command: "CMD_THREAD_CREATE", Seq: 2, Kind: "event", PayloadType: "ThreadEvent"}, *lines[4].Message)

	assert.Nil(t, lines[5].Message)
	assert.Contains(t, lines[5].Error, "bad line-formatted message")
}

func TestDecodeTraceJSON(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := decodeTrace(strings.NewReader(sampleTrace), &out, decodeFlags{format: OutputJSON}, testutil.NewLogForTesting(t.Name()))
	require.NoError(t, err)

	assertSampleTrace(t, readJSONLines(t, out.Bytes()))
	assert.Contains(t, out.String(), `"Name":"MainThread"`, "payload fields are printed")
}

func TestDecodeTraceYAML(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := decodeTrace(strings.NewReader(sampleTrace), &out, decodeFlags{format: OutputYAML}, testutil.NewLogForTesting(t.Name()))
	require.NoError(t, err)

	dec := yaml.NewDecoder(&out)
	var lines []decodedLine
	for {
		var l decodedLine
		if decodeErr := dec.Decode(&l); decodeErr != nil {
			require.True(t, errors.Is(decodeErr, io.EOF))
			break
		}
		lines = append(lines, l)
	}
	assertSampleTrace(t, lines)
}

func TestDecodeTraceFailOnError(t *testing.T) {
	t.Parallel()

	var out bytes.Buffer
	err := decodeTrace(strings.NewReader(sampleTrace), &out, decodeFlags{format: OutputJSON, failOnError: true}, testutil.NewLogForTesting(t.Name()))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 6 lines")
	assert.Len(t, readJSONLines(t, out.Bytes()), 6, "every line is still printed")

	out.Reset()
	err = decodeTrace(strings.NewReader("103\t2\t1\n"), &out, decodeFlags{format: OutputJSON, failOnError: true}, testutil.NewLogForTesting(t.Name()))
	require.NoError(t, err)
}

func TestDecodeCommandReadsFileAndStdin(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "trace.txt")
	require.NoError(t, os.WriteFile(path, []byte(sampleTrace), 0o600))

	cmd := NewDecodeCommand(testutil.NewLogForTesting(t.Name()))
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetArgs([]string{path})
	require.NoError(t, cmd.Execute())
	assertSampleTrace(t, readJSONLines(t, out.Bytes()))

	cmd = NewDecodeCommand(testutil.NewLogForTesting(t.Name()))
	out.Reset()
	cmd.SetOut(&out)
	cmd.SetIn(strings.NewReader(sampleTrace))
	cmd.SetArgs([]string{"--output", "json"})
	require.NoError(t, cmd.Execute())
	assertSampleTrace(t, readJSONLines(t, out.Bytes()))

	cmd = NewDecodeCommand(testutil.NewLogForTesting(t.Name()))
	cmd.SetOut(io.Discard)
	cmd.SetArgs([]string{filepath.Join(t.TempDir(), "missing.txt")})
	require.Error(t, cmd.Execute())
}
