/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"strconv"
	"strings"
)

// Payload is the typed body of a message. Render returns the wire text (before percent-encoding).
// Each payload type also has a ParseFunc that builds it from wire text; the pair is bound to
// commands through a Handler.
type Payload interface {
	Render() string
}

// Text is an unparsed payload. It renders to itself.
type Text string

func (t Text) Render() string {
	return string(t)
}

func parseText(text string) (Payload, error) {
	return Text(text), nil
}

// Optional is a payload field whose absence is distinct from its zero value.
type Optional[T any] struct {
	Value   T
	Present bool
}

func Present[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

func Absent[T any]() Optional[T] {
	return Optional[T]{}
}

func (o Optional[T]) Get() (T, bool) {
	return o.Value, o.Present
}

// Scope selects where a variable is looked up.
type Scope string

const (
	ScopeGlobal Scope = "GLOBAL"
	ScopeFrame  Scope = "FRAME"
)

func parseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeGlobal, ScopeFrame:
		return Scope(s), nil
	case "":
		return "", missingField("scope")
	default:
		return "", invalidField("scope", s, fmt.Errorf("must be %s or %s", ScopeGlobal, ScopeFrame))
	}
}

func ensureEmpty(text string) error {
	if text != "" {
		return fmt.Errorf("%w: got %q", ErrUnexpectedPayload, text)
	}
	return nil
}

func parseIntField(field string, s string) (int, error) {
	if s == "" {
		return 0, missingField(field)
	}
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, invalidField(field, s, nil)
	}
	return n, nil
}

func requireField(field string, s string) (string, error) {
	if s == "" {
		return "", missingField(field)
	}
	return s, nil
}

// splitFields splits text into at most len(names) tab-separated fields. The last field keeps any
// remaining tabs. A required field that is absent produces a missing-field error naming it.
func splitFields(text string, required int, names ...string) ([]string, error) {
	fields := strings.SplitN(text, "\t", len(names))
	if len(fields) < required {
		return nil, missingField(names[len(fields)])
	}
	for len(fields) < len(names) {
		fields = append(fields, "")
	}
	return fields, nil
}

const noneValue = "None"

func parseOptionalText(s string) Optional[string] {
	if s == noneValue || s == "" {
		return Absent[string]()
	}
	return Present(s)
}

func renderOptionalText(o Optional[string]) string {
	if v, ok := o.Get(); ok {
		return v
	}
	return noneValue
}

var xmlAttrEscaper = strings.NewReplacer(
	`&`, "&amp;",
	`<`, "&lt;",
	`>`, "&gt;",
	`"`, "&quot;",
	`'`, "&apos;",
)

// quoteAttr prepares a value for an XML attribute the way pydevd does:
// percent-quote first, then escape what XML cannot carry.
func quoteAttr(s string) string {
	return xmlAttrEscaper.Replace(quote(s))
}

// unquoteAttr reverses quoteAttr on an attribute value already unescaped by the XML decoder.
func unquoteAttr(s string) string {
	return unquote(s)
}
