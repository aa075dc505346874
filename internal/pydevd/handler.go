/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

// ParseFunc builds a payload from decoded wire text.
type ParseFunc func(text string) (Payload, error)

// RenderFunc produces the wire text for a payload.
type RenderFunc func(p Payload) string

// Handler binds wire text to a payload type and back.
type Handler struct {
	// Name identifies the payload type in logs and diagnostics.
	Name   string
	Parse  ParseFunc
	Render RenderFunc
}

// NewHandler creates a handler. If render is nil the payload's own Render method is used.
func NewHandler(name string, parse ParseFunc, render RenderFunc) *Handler {
	if render == nil {
		render = renderPayload
	}
	return &Handler{
		Name:   name,
		Parse:  parse,
		Render: render,
	}
}

func renderPayload(p Payload) string {
	if p == nil {
		return ""
	}
	return p.Render()
}

var (
	// TextHandler passes payload text through unchanged in both directions.
	TextHandler = NewHandler("text", parseText, nil)

	// NoPayloadHandler is for commands that carry no payload. It rejects any text.
	NoPayloadHandler = NewHandler("none", func(text string) (Payload, error) {
		if err := ensureEmpty(text); err != nil {
			return nil, err
		}
		return Text(""), nil
	}, nil)
)

// MatchFunc decides whether a candidate message belongs to a payload type.
// It returns matched=false to let the next matcher try; a nil handler with matched=true selects
// the matcher's default handler. An error is treated as "no match".
type MatchFunc func(msg *Message, kind Kind, cause *Message) (handler *Handler, matched bool, err error)

type matcher struct {
	match   MatchFunc
	handler *Handler
}
