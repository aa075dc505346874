/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"bufio"
	"bytes"
	"fmt"
	"net"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/microsoft/pydevd-adapter/internal/pydevd"
	"github.com/microsoft/pydevd-adapter/pkg/testutil"
)

const connectTestTimeout = 20 * time.Second

// servePydevd accepts one connection and plays a short pydevd session on it:
// the version handshake, a thread list, a thread event and an event the adapter does not support,
// after which it hangs up.
func servePydevd(t *testing.T, listener net.Listener, requests chan<- string) {
	conn, err := listener.Accept()
	if err != nil {
		return
	}
	defer conn.Close()

	reader := bufio.NewReader(conn)
	readRequest := func() (pydevd.CommandID, string, bool) {
		line, readErr := reader.ReadString('\n')
		if readErr != nil {
			return 0, "", false
		}
		requests <- strings.TrimSuffix(line, "\n")
		fields := strings.SplitN(strings.TrimSuffix(line, "\n"), "\t", 3)
		if len(fields) != 3 {
			return 0, "", false
		}
		var code int
		_, _ = fmt.Sscanf(fields[0], "%d", &code)
		return pydevd.ForceCommandID(code), fields[1], true
	}

	cmd, seq, ok := readRequest()
	if !ok || cmd != pydevd.CmdVersion {
		return
	}
	fmt.Fprintf(conn, "501\t%s\t1.9\n", seq)

	cmd, seq, ok = readRequest()
	if !ok || cmd != pydevd.CmdListThreads {
		return
	}
	fmt.Fprintf(conn, "502\t%s\t%s\n", seq, "%3Cxml%3E%3Cthread%20name%3D%22MainThread%22%20id%3D%221%22%20%2F%3E%3C%2Fxml%3E")

	fmt.Fprintf(conn, "103\t2\t1\n")
	fmt.Fprintf(conn, "116\t4\thello\n")
}

func runConnect(t *testing.T, dapOutput bool) (string, []string) {
	ctx, cancel := testutil.GetTestContext(t, connectTestTimeout)
	defer cancel()

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	defer listener.Close()

	requests := make(chan string, 10)
	served := make(chan struct{})
	go func() {
		defer close(served)
		servePydevd(t, listener, requests)
	}()

	var envFiles []string
	cmd := NewConnectCommand(testutil.NewLogForTesting(t.Name()), &envFiles)
	var out bytes.Buffer
	cmd.SetOut(&out)
	args := []string{"--address", listener.Addr().String(), "--request-timeout", "5s"}
	if dapOutput {
		args = append(args, "--dap")
	}
	cmd.SetArgs(args)

	require.NoError(t, cmd.ExecuteContext(ctx))
	<-served
	close(requests)

	var sent []string
	for r := range requests {
		sent = append(sent, r)
	}
	return out.String(), sent
}

func TestConnectTracesPydevdMessages(t *testing.T) {
	t.Parallel()

	output, sent := runConnect(t, false)

	require.Len(t, sent, 2)
	assert.True(t, strings.HasPrefix(sent[0], "501\t1\t1.1%09"), "the handshake is sent first: %q", sent[0])
	assert.True(t, strings.HasSuffix(sent[0], "%09LINE"))
	assert.Equal(t, "102\t3\t", sent[1])

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2, "the unsupported event is logged, not printed")
	assert.Contains(t, lines[0], `"payloadType":"ListThreadsResponse"`)
	assert.Contains(t, lines[0], `"inReplyTo":"CMD_LIST_THREADS"`)
	assert.Contains(t, lines[1], `"command":"CMD_THREAD_CREATE"`)
}

func TestConnectTranslatesToDAP(t *testing.T) {
	t.Parallel()

	output, _ := runConnect(t, true)

	lines := strings.Split(strings.TrimSpace(output), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], `"command":"threads"`)
	assert.Contains(t, lines[0], `"name":"MainThread"`)
	assert.Contains(t, lines[1], `"event":"thread"`)
	assert.Contains(t, lines[1], `"reason":"started"`)
}

func TestConnectFailsWithoutPydevd(t *testing.T) {
	t.Parallel()

	var envFiles []string
	cmd := NewConnectCommand(testutil.NewLogForTesting(t.Name()), &envFiles)
	cmd.SetArgs([]string{"--address", "not-an-address"})
	require.Error(t, cmd.Execute())
}
