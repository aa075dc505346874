/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"sync"

	"github.com/go-logr/logr"

	"github.com/microsoft/pydevd-adapter/pkg/resiliency"
)

var errTransportClosed = errors.New("transport is closed")

// Transport carries pydevd wire lines.
// ReadLine and WriteLine may be called concurrently with each other; concurrent writes are serialized.
type Transport interface {
	LineReader

	// WriteLine writes one line, adding the trailing newline if it is missing, and flushes it.
	WriteLine(line []byte) error

	// Close closes the transport. Blocked ReadLine calls return with an error.
	Close() error
}

type lineTransport struct {
	reader  *bufio.Reader
	writer  *bufio.Writer
	closers []io.Closer

	// writeMu serializes writes
	writeMu sync.Mutex

	closed bool
	mu     sync.Mutex
}

// NewTCPTransport creates a Transport over an established connection.
func NewTCPTransport(conn net.Conn) Transport {
	return &lineTransport{
		reader:  bufio.NewReader(conn),
		writer:  bufio.NewWriter(conn),
		closers: []io.Closer{conn},
	}
}

// NewStdioTransport creates a Transport reading from in and writing to out.
func NewStdioTransport(in io.ReadCloser, out io.WriteCloser) Transport {
	return &lineTransport{
		reader:  bufio.NewReader(in),
		writer:  bufio.NewWriter(out),
		closers: []io.Closer{in, out},
	}
}

// DialTCP connects to pydevd listening at address, retrying with exponential back-off until
// the connection succeeds, the context is done, or resiliency.DefaultBackoffConfig.MaxElapsedTime
// has passed. A malformed address is not retried.
func DialTCP(ctx context.Context, address string, log logr.Logger) (Transport, error) {
	return dialTCP(ctx, address, resiliency.DefaultBackoffConfig, log)
}

func dialTCP(ctx context.Context, address string, cfg resiliency.BackoffConfig, log logr.Logger) (Transport, error) {
	if _, _, splitErr := net.SplitHostPort(address); splitErr != nil {
		return nil, fmt.Errorf("invalid pydevd address %q: %w", address, splitErr)
	}

	var d net.Dialer
	conn, dialErr := resiliency.RetryGet(ctx, cfg.NewExponentialBackOff(), func() (net.Conn, error) {
		c, err := d.DialContext(ctx, "tcp", address)
		if err != nil {
			log.V(1).Info("Could not connect to pydevd, will retry", "address", address, "error", err.Error())
			return nil, err
		}
		return c, nil
	})
	if dialErr != nil {
		return nil, fmt.Errorf("failed to dial TCP %s: %w", address, dialErr)
	}

	return NewTCPTransport(conn), nil
}

func (t *lineTransport) isClosed() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.closed
}

// ReadLine returns the next line without its trailing newline. A final line that is not
// newline-terminated is returned as is; the following call reports io.EOF.
func (t *lineTransport) ReadLine() ([]byte, error) {
	if t.isClosed() {
		return nil, fmt.Errorf("failed to read pydevd message: %w", net.ErrClosed)
	}

	line, readErr := readLine(t.reader)
	if readErr != nil {
		if t.isClosed() {
			readErr = errors.Join(readErr, net.ErrClosed)
		}
		return nil, fmt.Errorf("failed to read pydevd message: %w", readErr)
	}
	return line, nil
}

func readLine(r *bufio.Reader) ([]byte, error) {
	line, readErr := r.ReadBytes('\n')
	if readErr != nil {
		if errors.Is(readErr, io.EOF) && len(line) > 0 {
			return line, nil
		}
		return nil, readErr
	}
	return bytes.TrimSuffix(line, []byte("\n")), nil
}

type readerLines struct {
	reader *bufio.Reader
}

// NewLineReader reads wire lines from r, for example a captured trace file.
func NewLineReader(r io.Reader) LineReader {
	return &readerLines{reader: bufio.NewReader(r)}
}

func (l *readerLines) ReadLine() ([]byte, error) {
	return readLine(l.reader)
}

func (t *lineTransport) WriteLine(line []byte) error {
	if t.isClosed() {
		return errTransportClosed
	}

	t.writeMu.Lock()
	defer t.writeMu.Unlock()

	if _, writeErr := t.writer.Write(line); writeErr != nil {
		return fmt.Errorf("failed to write pydevd message: %w", writeErr)
	}
	if !bytes.HasSuffix(line, []byte("\n")) {
		if writeErr := t.writer.WriteByte('\n'); writeErr != nil {
			return fmt.Errorf("failed to write pydevd message: %w", writeErr)
		}
	}

	if flushErr := t.writer.Flush(); flushErr != nil {
		return fmt.Errorf("failed to flush pydevd message: %w", flushErr)
	}

	return nil
}

func (t *lineTransport) Close() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.closed {
		return nil
	}
	t.closed = true

	var errs []error
	for _, c := range t.closers {
		if closeErr := c.Close(); closeErr != nil {
			errs = append(errs, closeErr)
		}
	}
	return errors.Join(errs...)
}
