/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnknownCommand is returned when a command code is absent from the command table.
	ErrUnknownCommand = errors.New("unknown command")

	// ErrAlreadyRegistered is returned when a command already has an exclusive handler for a kind.
	ErrAlreadyRegistered = errors.New("command already registered")

	// ErrUnsupportedCommand is returned when a command is possible for a kind but not handled by this build.
	ErrUnsupportedCommand = errors.New("unsupported command")

	// ErrUnsupportedKind is returned for a message kind other than request, response, or event.
	ErrUnsupportedKind = errors.New("unsupported kind")

	// ErrMalformedMessage is returned when a wire line does not split into the expected fields.
	ErrMalformedMessage = errors.New("malformed message")

	// ErrInvalidMessage is returned when a message is structurally present but semantically broken.
	ErrInvalidMessage = errors.New("invalid message")

	// ErrUnsupportedMessage is returned when no payload handler resolves for a well-formed message.
	// Errors carrying it also match ErrInvalidMessage.
	ErrUnsupportedMessage = errors.New("unsupported message")

	// ErrUnexpectedPayload is returned when payload text does not fit the expected payload shape.
	ErrUnexpectedPayload = errors.New("unexpected payload")

	// ErrMissingField is returned when a required payload field is absent.
	ErrMissingField = errors.New("missing field")

	// ErrInvalidField is returned when a payload field is present but its value is not valid.
	ErrInvalidField = errors.New("invalid field")

	// ErrRequestTimeout is returned when a request does not receive a response in time.
	ErrRequestTimeout = errors.New("request timeout")

	// ErrSessionClosed is returned when a session is used after it has been closed.
	ErrSessionClosed = errors.New("session is closed")

	// ErrRequestFailed is returned when pydevd answers a request with CMD_ERROR.
	ErrRequestFailed = errors.New("request failed")

	// ErrUnexpectedResponse is reported when pydevd sends an odd sequence that no request is waiting on.
	ErrUnexpectedResponse = errors.New("unexpected response")
)

// RawFields are the three wire fields of a message, before any validation.
type RawFields struct {
	Command  string
	Sequence string
	Text     string
}

func (f RawFields) String() string {
	return fmt.Sprintf("(%q, %q, %q)", f.Command, f.Sequence, f.Text)
}

// MessageError describes a message that could not be decoded or constructed.
// The class (malformed, invalid or unsupported) is reported through errors.Is.
type MessageError struct {
	// Line is the raw line as received, if the error happened during decoding.
	Line string

	// Fields holds the wire fields when framing succeeded.
	Fields *RawFields

	Reason string
	Err    error

	classes []error
}

func (e *MessageError) Error() string {
	var sb strings.Builder
	switch {
	case errors.Is(e, ErrUnsupportedMessage):
		sb.WriteString("unsupported message")
	case errors.Is(e, ErrMalformedMessage):
		sb.WriteString("bad line-formatted message")
	default:
		sb.WriteString("invalid message")
	}

	if e.Fields != nil {
		sb.WriteString(" ")
		sb.WriteString(e.Fields.String())
	} else if e.Line != "" {
		sb.WriteString(fmt.Sprintf(" %q", e.Line))
	}

	if e.Reason != "" {
		sb.WriteString(" (reason: ")
		sb.WriteString(e.Reason)
		sb.WriteString(")")
	}

	if e.Err != nil {
		sb.WriteString(": ")
		sb.WriteString(e.Err.Error())
	}

	return sb.String()
}

func (e *MessageError) Unwrap() []error {
	errs := make([]error, 0, len(e.classes)+1)
	errs = append(errs, e.classes...)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

func newMalformedMessageError(line string, reason string) *MessageError {
	return &MessageError{
		Line:    line,
		Reason:  reason,
		classes: []error{ErrMalformedMessage},
	}
}

func newInvalidMessageError(fields *RawFields, reason string, err error) *MessageError {
	return &MessageError{
		Fields:  fields,
		Reason:  reason,
		Err:     err,
		classes: []error{ErrInvalidMessage},
	}
}

func newUnsupportedMessageError(fields *RawFields, err error) *MessageError {
	return &MessageError{
		Fields:  fields,
		Reason:  "unsupported command",
		Err:     err,
		classes: []error{ErrUnsupportedMessage, ErrInvalidMessage},
	}
}

// FieldError reports a payload field that is missing or carries an invalid value.
// It matches ErrUnexpectedPayload and either ErrMissingField or ErrInvalidField.
type FieldError struct {
	Field   string
	Value   string
	Missing bool
	Err     error
}

func missingField(field string) *FieldError {
	return &FieldError{Field: field, Missing: true}
}

func invalidField(field string, value string, err error) *FieldError {
	return &FieldError{Field: field, Value: value, Err: err}
}

func (e *FieldError) Error() string {
	if e.Missing {
		return fmt.Sprintf("missing %s", e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s %q: %v", e.Field, e.Value, e.Err)
	}
	return fmt.Sprintf("invalid %s %q", e.Field, e.Value)
}

func (e *FieldError) Unwrap() []error {
	errs := []error{ErrUnexpectedPayload}
	if e.Missing {
		errs = append(errs, ErrMissingField)
	} else {
		errs = append(errs, ErrInvalidField)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// IsMessageError returns true if the error indicates a message that could not be framed,
// validated or resolved to a payload handler.
func IsMessageError(err error) bool {
	return errors.Is(err, ErrMalformedMessage) ||
		errors.Is(err, ErrInvalidMessage) ||
		errors.Is(err, ErrUnsupportedMessage)
}

// IsPayloadError returns true if the error indicates payload text that does not fit its payload type.
func IsPayloadError(err error) bool {
	return errors.Is(err, ErrUnexpectedPayload)
}

// IsRegistryError returns true if the error was produced by command resolution or registration.
func IsRegistryError(err error) bool {
	return errors.Is(err, ErrUnknownCommand) ||
		errors.Is(err, ErrUnsupportedCommand) ||
		errors.Is(err, ErrAlreadyRegistered) ||
		errors.Is(err, ErrUnsupportedKind)
}
