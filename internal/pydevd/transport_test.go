/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"bufio"
	"context"
	"io"
	"net"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/net/nettest"

	"github.com/microsoft/pydevd-adapter/pkg/resiliency"
	"github.com/microsoft/pydevd-adapter/pkg/testutil"
)

func TestTCPTransportReadWrite(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	transport := NewTCPTransport(client)
	defer transport.Close()

	serverReader := bufio.NewReader(server)
	done := make(chan string, 2)
	go func() {
		for i := 0; i < 2; i++ {
			line, err := serverReader.ReadString('\n')
			if err != nil {
				return
			}
			done <- line
		}
	}()

	require.NoError(t, transport.WriteLine([]byte("102\t1\t")))
	require.NoError(t, transport.WriteLine([]byte("101\t3\t\n")))
	assert.Equal(t, "102\t1\t\n", <-done, "a missing newline is added")
	assert.Equal(t, "101\t3\t\n", <-done, "an existing newline is kept")

	go func() {
		_, _ = server.Write([]byte("103\t2\t1\n103\t4\t2"))
		_ = server.Close()
	}()

	line, err := transport.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "103\t2\t1", string(line))

	line, err = transport.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "103\t4\t2", string(line), "a final unterminated line is still returned")

	_, err = transport.ReadLine()
	require.Error(t, err)
	assert.True(t, IsEndOfStream(err))
}

func TestTransportCloseUnblocksRead(t *testing.T) {
	t.Parallel()

	client, server := net.Pipe()
	defer server.Close()
	transport := NewTCPTransport(client)

	readErr := make(chan error, 1)
	go func() {
		_, err := transport.ReadLine()
		readErr <- err
	}()

	require.NoError(t, transport.Close())
	require.NoError(t, transport.Close(), "closing twice is fine")

	select {
	case err := <-readErr:
		require.Error(t, err)
		assert.True(t, IsEndOfStream(err))
	case <-time.After(5 * time.Second):
		t.Fatal("ReadLine should return after Close")
	}

	require.Error(t, transport.WriteLine([]byte("101\t1\t")))
}

func TestStdioTransport(t *testing.T) {
	t.Parallel()

	inReader, inWriter := io.Pipe()
	outReader, outWriter := io.Pipe()
	transport := NewStdioTransport(inReader, outWriter)
	defer transport.Close()

	go func() {
		_, _ = inWriter.Write([]byte("501\t1\t1.9\n"))
	}()
	line, err := transport.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "501\t1\t1.9", string(line))

	var wg sync.WaitGroup
	wg.Add(1)
	var written string
	go func() {
		defer wg.Done()
		written, _ = bufio.NewReader(outReader).ReadString('\n')
	}()
	require.NoError(t, transport.WriteLine([]byte("501\t3\t1.1")))
	wg.Wait()
	assert.Equal(t, "501\t3\t1.1\n", written)
}

func TestDialTCP(t *testing.T) {
	t.Parallel()

	ctx, cancel := testutil.GetTestContext(t, 20*time.Second)
	defer cancel()

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	defer listener.Close()

	accepted := make(chan net.Conn, 1)
	go func() {
		conn, acceptErr := listener.Accept()
		if acceptErr == nil {
			accepted <- conn
		}
	}()

	transport, err := DialTCP(ctx, listener.Addr().String(), logr.Discard())
	require.NoError(t, err)
	defer transport.Close()

	conn := <-accepted
	defer conn.Close()
	_, err = conn.Write([]byte("103\t2\t1\n"))
	require.NoError(t, err)

	line, err := transport.ReadLine()
	require.NoError(t, err)
	assert.Equal(t, "103\t2\t1", string(line))
}

func TestDialTCPRejectsBadAddress(t *testing.T) {
	t.Parallel()

	_, err := DialTCP(context.Background(), "no-port", logr.Discard())
	require.Error(t, err)
}

func TestDialTCPGivesUpWhenContextEnds(t *testing.T) {
	t.Parallel()

	// Grab a free port, then release it so nothing is listening there.
	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	_, err = DialTCP(ctx, address, logr.Discard())
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestDialTCPGivesUpAfterMaxElapsedTime(t *testing.T) {
	t.Parallel()

	listener, err := nettest.NewLocalListener("tcp")
	require.NoError(t, err)
	address := listener.Addr().String()
	require.NoError(t, listener.Close())

	ctx, cancel := testutil.GetTestContext(t, 20*time.Second)
	defer cancel()

	cfg := resiliency.BackoffConfig{
		InitialInterval: 20 * time.Millisecond,
		MaxInterval:     50 * time.Millisecond,
		MaxElapsedTime:  300 * time.Millisecond,
	}
	_, err = dialTCP(ctx, address, cfg, logr.Discard())
	require.Error(t, err)
	assert.NotErrorIs(t, err, context.DeadlineExceeded)
	assert.NoError(t, ctx.Err(), "dialing should stop before the context ends")
}

func TestNewLineReader(t *testing.T) {
	t.Parallel()

	reader := NewLineReader(strings.NewReader("103\t2\t1\n\n103\t4\t2"))

	var lines []string
	for {
		line, err := reader.ReadLine()
		if err != nil {
			require.ErrorIs(t, err, io.EOF)
			break
		}
		lines = append(lines, string(line))
	}
	assert.Equal(t, []string{"103\t2\t1", "", "103\t4\t2"}, lines)
}
