/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// Threads named with this prefix belong to pydevd itself and are never reported.
const internalThreadPrefix = "pydevd."

// ThreadInfo describes one thread in a ListThreadsResponse.
type ThreadInfo struct {
	ID   int
	Name string
}

// Render produces the <thread> element. The name is percent-quoted, then XML-escaped.
func (t ThreadInfo) Render() string {
	return fmt.Sprintf(`<thread name="%s" id="%d" />`, quoteAttr(t.Name), t.ID)
}

type xmlThread struct {
	Name string `xml:"name,attr"`
	ID   string `xml:"id,attr"`
}

func (x xmlThread) threadInfo() (ThreadInfo, error) {
	id, err := parseIntField("thread ID", x.ID)
	if err != nil {
		return ThreadInfo{}, err
	}
	return ThreadInfo{ID: id, Name: unquoteAttr(x.Name)}, nil
}

// ParseThreadInfo parses a single <thread> element as rendered by ThreadInfo.Render.
func ParseThreadInfo(text string) (ThreadInfo, error) {
	var x xmlThread
	if err := xml.Unmarshal([]byte(text), &x); err != nil {
		return ThreadInfo{}, invalidField("thread", text, err)
	}
	return x.threadInfo()
}

// ListThreadsResponse is the reply to CMD_LIST_THREADS. It rides on CMD_RETURN.
type ListThreadsResponse struct {
	Threads []ThreadInfo
}

func (r ListThreadsResponse) Render() string {
	var sb strings.Builder
	sb.WriteString("<xml>")
	for _, t := range r.Threads {
		sb.WriteString(t.Render())
	}
	sb.WriteString("</xml>")
	return sb.String()
}

type xmlThreadList struct {
	XMLName xml.Name    `xml:"xml"`
	Threads []xmlThread `xml:"thread"`
}

func parseListThreadsResponse(text string) (Payload, error) {
	var doc xmlThreadList
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, invalidField("thread list", text, err)
	}

	resp := ListThreadsResponse{}
	for _, x := range doc.Threads {
		info, err := x.threadInfo()
		if err != nil {
			return nil, err
		}
		if strings.HasPrefix(info.Name, internalThreadPrefix) {
			continue
		}
		resp.Threads = append(resp.Threads, info)
	}
	return resp, nil
}

// matchReturnFor selects a payload type for CMD_RETURN replies to the given request command.
// Without a known cause nothing matches and the generic ReturnResponse is used.
func matchReturnFor(request CommandID) MatchFunc {
	return func(msg *Message, kind Kind, cause *Message) (*Handler, bool, error) {
		if kind != KindResponse || msg.CommandID() != CmdReturn || cause == nil {
			return nil, false, nil
		}
		return nil, cause.CommandID() == request, nil
	}
}
