/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"github.com/microsoft/pydevd-adapter/internal/pydevd"
)

// messageRecord is the printable form of a decoded message.
type messageRecord struct {
	Command     string         `json:"command" yaml:"command"`
	CommandID   int            `json:"commandId" yaml:"commandId"`
	Sequence    int            `json:"seq" yaml:"seq"`
	Origin      pydevd.Origin  `json:"origin" yaml:"origin"`
	Kind        pydevd.Kind    `json:"kind" yaml:"kind"`
	InReplyTo   string         `json:"inReplyTo,omitempty" yaml:"inReplyTo,omitempty"`
	PayloadType string         `json:"payloadType" yaml:"payloadType"`
	Payload     pydevd.Payload `json:"payload" yaml:"payload"`
}

func newMessageRecord(msg *pydevd.Message) *messageRecord {
	rec := &messageRecord{
		Command:     msg.Command(),
		CommandID:   int(msg.CommandID()),
		Sequence:    int(msg.Sequence()),
		Origin:      msg.Origin(),
		Kind:        msg.Kind(),
		PayloadType: msg.PayloadType(),
		Payload:     msg.Payload(),
	}
	if cause := msg.Cause(); cause != nil {
		rec.InReplyTo = cause.Command()
	}
	return rec
}

// lineRecord is one line of a decoded trace: either a message or the reason it could not be decoded.
type lineRecord struct {
	Line    int            `json:"line" yaml:"line"`
	Message *messageRecord `json:"message,omitempty" yaml:"message,omitempty"`
	Error   string         `json:"error,omitempty" yaml:"error,omitempty"`
}
