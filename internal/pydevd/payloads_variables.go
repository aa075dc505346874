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

const containerTrue = "True"

// GetFrameRequest asks for the variables of a stack frame.
type GetFrameRequest struct {
	ThreadID int
	FrameID  int
	Scope    Scope
}

func (r GetFrameRequest) Render() string {
	return fmt.Sprintf("%d\t%d\t%s", r.ThreadID, r.FrameID, r.Scope)
}

func parseGetFrameRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 3, "thread ID", "frame ID", "scope")
	if err != nil {
		return nil, err
	}
	thread, frame, scope, err := parseFrameRef(fields)
	if err != nil {
		return nil, err
	}
	return GetFrameRequest{ThreadID: thread, FrameID: frame, Scope: scope}, nil
}

func parseFrameRef(fields []string) (int, int, Scope, error) {
	thread, err := parseIntField("thread ID", fields[0])
	if err != nil {
		return 0, 0, "", err
	}
	frame, err := parseIntField("frame ID", fields[1])
	if err != nil {
		return 0, 0, "", err
	}
	scope, err := parseScope(fields[2])
	if err != nil {
		return 0, 0, "", err
	}
	return thread, frame, scope, nil
}

// GetVariableRequest asks for the children of a variable. Attributes is the tab-separated
// attribute path below the scope, passed through verbatim.
type GetVariableRequest struct {
	ThreadID   int
	FrameID    int
	Scope      Scope
	Attributes string
}

func (r GetVariableRequest) Render() string {
	return fmt.Sprintf("%d\t%d\t%s\t%s", r.ThreadID, r.FrameID, r.Scope, r.Attributes)
}

func parseGetVariableRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 3, "thread ID", "frame ID", "scope", "attributes")
	if err != nil {
		return nil, err
	}
	thread, frame, scope, err := parseFrameRef(fields)
	if err != nil {
		return nil, err
	}
	return GetVariableRequest{ThreadID: thread, FrameID: frame, Scope: scope, Attributes: fields[3]}, nil
}

// ChangeVariableRequest assigns a new value to a variable. The value may be absent,
// in which case only the variable name is sent.
type ChangeVariableRequest struct {
	ThreadID int
	FrameID  int
	Scope    Scope
	Name     string
	Value    Optional[string]
}

func (r ChangeVariableRequest) Render() string {
	text := fmt.Sprintf("%d\t%d\t%s\t%s", r.ThreadID, r.FrameID, r.Scope, r.Name)
	if v, ok := r.Value.Get(); ok {
		text += "\t" + v
	}
	return text
}

func parseChangeVariableRequest(text string) (Payload, error) {
	fields, err := splitFields(text, 4, "thread ID", "frame ID", "scope", "name")
	if err != nil {
		return nil, err
	}
	thread, frame, scope, err := parseFrameRef(fields)
	if err != nil {
		return nil, err
	}

	// The value follows the last tab; any tabs before it separate the parts of a dotted name.
	req := ChangeVariableRequest{ThreadID: thread, FrameID: frame, Scope: scope}
	nameAndValue := fields[3]
	if i := strings.LastIndex(nameAndValue, "\t"); i >= 0 {
		req.Name = strings.ReplaceAll(nameAndValue[:i], "\t", ".")
		req.Value = Present(nameAndValue[i+1:])
	} else {
		req.Name = nameAndValue
	}

	if req.Name == "" {
		return nil, missingField("name")
	}
	return req, nil
}

// Variable is a single <var> element in a variables reply.
type Variable struct {
	Name        string
	Type        string
	Value       string
	IsContainer bool
}

func (v Variable) Render() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<var name="%s" type="%s" value="%s"`, quoteAttr(v.Name), quoteAttr(v.Type), quoteAttr(v.Value))
	if v.IsContainer {
		fmt.Fprintf(&sb, ` isContainer="%s"`, containerTrue)
	}
	sb.WriteString(" />")
	return sb.String()
}

type xmlVar struct {
	Name        string `xml:"name,attr"`
	Type        string `xml:"type,attr"`
	Value       string `xml:"value,attr"`
	IsContainer string `xml:"isContainer,attr"`
}

func (x xmlVar) variable() Variable {
	return Variable{
		Name:        unquoteAttr(x.Name),
		Type:        unquoteAttr(x.Type),
		Value:       unquoteAttr(x.Value),
		IsContainer: x.IsContainer == containerTrue,
	}
}

type xmlVarList struct {
	XMLName xml.Name `xml:"xml"`
	Vars    []xmlVar `xml:"var"`
}

func parseVarList(text string) ([]Variable, error) {
	var doc xmlVarList
	if err := xml.Unmarshal([]byte(text), &doc); err != nil {
		return nil, invalidField("variables", text, err)
	}

	var vars []Variable
	for _, x := range doc.Vars {
		vars = append(vars, x.variable())
	}
	return vars, nil
}

func renderVarList(vars []Variable) string {
	var sb strings.Builder
	sb.WriteString("<xml>")
	for _, v := range vars {
		sb.WriteString(v.Render())
	}
	sb.WriteString("</xml>")
	return sb.String()
}

// VariablesResponse is the reply to CMD_GET_VARIABLE and CMD_GET_FRAME.
type VariablesResponse struct {
	Variables []Variable
}

func (r VariablesResponse) Render() string {
	return renderVarList(r.Variables)
}

func parseVariablesResponse(text string) (Payload, error) {
	vars, err := parseVarList(text)
	if err != nil {
		return nil, err
	}
	return VariablesResponse{Variables: vars}, nil
}

// ChangeVariableResponse is the reply to CMD_CHANGE_VARIABLE: the variable after assignment.
// It rides on CMD_RETURN.
type ChangeVariableResponse struct {
	Variable Variable
}

func (r ChangeVariableResponse) Render() string {
	return renderVarList([]Variable{r.Variable})
}

func parseChangeVariableResponse(text string) (Payload, error) {
	vars, err := parseVarList(text)
	if err != nil {
		return nil, err
	}
	if len(vars) == 0 {
		return nil, missingField("var")
	}
	return ChangeVariableResponse{Variable: vars[0]}, nil
}
