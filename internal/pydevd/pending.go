/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"sync"
)

type pendingResult struct {
	msg *Message
	err error
}

// pendingRequest tracks a request that is awaiting a response.
type pendingRequest struct {
	request *Message

	// responseChan receives exactly one result. It is buffered so delivery never blocks.
	responseChan chan pendingResult
}

func newPendingRequest(request *Message) *pendingRequest {
	return &pendingRequest{
		request:      request,
		responseChan: make(chan pendingResult, 1),
	}
}

func (p *pendingRequest) deliver(msg *Message, err error) {
	p.responseChan <- pendingResult{msg: msg, err: err}
}

// pendingRequestMap is a thread-safe map of pending requests keyed by sequence number.
type pendingRequestMap struct {
	mu       sync.Mutex
	requests map[Sequence]*pendingRequest
}

func newPendingRequestMap() *pendingRequestMap {
	return &pendingRequestMap{
		requests: make(map[Sequence]*pendingRequest),
	}
}

func (m *pendingRequestMap) Add(seq Sequence, req *pendingRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[seq] = req
}

// Get retrieves and removes a pending request from the map.
// Returns nil if no request exists for the given sequence number.
func (m *pendingRequestMap) Get(seq Sequence) *pendingRequest {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[seq]
	if !ok {
		return nil
	}

	delete(m.requests, seq)
	return req
}

// Peek returns the request message pending under the sequence number without removing it.
func (m *pendingRequestMap) Peek(seq Sequence) *Message {
	m.mu.Lock()
	defer m.mu.Unlock()

	if req, ok := m.requests[seq]; ok {
		return req.request
	}
	return nil
}

func (m *pendingRequestMap) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

// DrainWithError fails every pending request with err and clears the map.
func (m *pendingRequestMap) DrainWithError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, req := range m.requests {
		req.deliver(nil, err)
	}

	m.requests = make(map[Sequence]*pendingRequest)
}
