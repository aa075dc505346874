/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestQuote(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		text   string
		quoted string
	}{
		{"", ""},
		{"plain_text-1.0~", "plain_text-1.0~"},
		{"/src/my app.py", "/src/my%20app.py"},
		{"a\tb\nc", "a%09b%0Ac"},
		{"x+y=z&w", "x%2By%3Dz%26w"},
		{"<xml>", "%3Cxml%3E"},
		{"C:\\src", "C%3A%5Csrc"},
		{"héllo", "h%C3%A9llo"},
	}

	for _, tc := range testCases {
		assert.Equal(t, tc.quoted, quote(tc.text), "quote(%q)", tc.text)
		assert.Equal(t, tc.text, unquote(tc.quoted), "unquote(%q)", tc.quoted)
	}
}

func TestUnquoteKeepsMalformedEscapes(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "%zz", unquote("%zz"))
	assert.Equal(t, "100%", unquote("100%"))
	assert.Equal(t, "%2", unquote("%2"))
	assert.Equal(t, "a%g1 b", unquote("a%g1%20b"))
	assert.Equal(t, "a+b", unquote("a+b"), "plus is not a space")
	assert.Equal(t, "/", unquote("%2f"), "lower-case hex digits decode")
}
