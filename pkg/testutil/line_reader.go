/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package testutil

import (
	"io"
	"sync"
)

type lineReaderEntry struct {
	line []byte
	err  error
}

// TestLineReader replays a scripted timeline of lines and read errors.
// Once the timeline is exhausted every read returns io.EOF.
type TestLineReader struct {
	mu       sync.Mutex
	timeline []lineReaderEntry
	reads    int
}

func NewTestLineReader() *TestLineReader {
	return &TestLineReader{}
}

// AddLines appends lines to the timeline.
func (r *TestLineReader) AddLines(lines ...string) *TestLineReader {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range lines {
		r.timeline = append(r.timeline, lineReaderEntry{line: []byte(l)})
	}
	return r
}

// AddError appends a read error to the timeline. A nil error is replaced with io.EOF.
func (r *TestLineReader) AddError(err error) *TestLineReader {
	if err == nil {
		err = io.EOF
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.timeline = append(r.timeline, lineReaderEntry{err: err})
	return r
}

func (r *TestLineReader) ReadLine() ([]byte, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.reads++
	if len(r.timeline) == 0 {
		return nil, io.EOF
	}

	entry := r.timeline[0]
	r.timeline = r.timeline[1:]
	return entry.line, entry.err
}

// Reads returns the number of ReadLine calls so far.
func (r *TestLineReader) Reads() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.reads
}
