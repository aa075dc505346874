/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"k8s.io/apimachinery/pkg/util/sets"
)

// pydevd command codes.
const (
	CmdRun                             CommandID = 101
	CmdListThreads                     CommandID = 102
	CmdThreadCreate                    CommandID = 103
	CmdThreadKill                      CommandID = 104
	CmdThreadSuspend                   CommandID = 105
	CmdThreadRun                       CommandID = 106
	CmdStepInto                        CommandID = 107
	CmdStepOver                        CommandID = 108
	CmdStepReturn                      CommandID = 109
	CmdGetVariable                     CommandID = 110
	CmdSetBreak                        CommandID = 111
	CmdRemoveBreak                     CommandID = 112
	CmdEvaluateExpression              CommandID = 113
	CmdGetFrame                        CommandID = 114
	CmdExecExpression                  CommandID = 115
	CmdWriteToConsole                  CommandID = 116
	CmdChangeVariable                  CommandID = 117
	CmdRunToLine                       CommandID = 118
	CmdReloadCode                      CommandID = 119
	CmdGetCompletions                  CommandID = 120
	CmdConsoleExec                     CommandID = 121
	CmdAddExceptionBreak               CommandID = 122
	CmdRemoveExceptionBreak            CommandID = 123
	CmdLoadSource                      CommandID = 124
	CmdAddDjangoExceptionBreak         CommandID = 125
	CmdRemoveDjangoExceptionBreak      CommandID = 126
	CmdSetNextStatement                CommandID = 127
	CmdSmartStepInto                   CommandID = 128
	CmdExit                            CommandID = 129
	CmdSignatureCallTrace              CommandID = 130
	CmdSetPyException                  CommandID = 131
	CmdGetFileContents                 CommandID = 132
	CmdSetPropertyTrace                CommandID = 133
	CmdEvaluateConsoleExpression       CommandID = 134
	CmdRunCustomOperation              CommandID = 135
	CmdGetBreakpointException          CommandID = 136
	CmdStepCaughtException             CommandID = 137
	CmdSendCurrExceptionTrace          CommandID = 138
	CmdSendCurrExceptionTraceProceeded CommandID = 139
	CmdIgnoreThrownExceptionAt         CommandID = 140
	CmdEnableDontTrace                 CommandID = 141
	CmdShowConsole                     CommandID = 142
	CmdGetArray                        CommandID = 143
	CmdStepIntoMyCode                  CommandID = 144
	CmdGetConcurrencyEvent             CommandID = 145
	CmdShowReturnValues                CommandID = 146
	CmdInputRequested                  CommandID = 147
	CmdGetDescription                  CommandID = 148
	CmdProcessCreated                  CommandID = 149
	CmdShowCythonWarning               CommandID = 150
	CmdVersion                         CommandID = 501
	CmdReturn                          CommandID = 502
	CmdError                           CommandID = 901
)

// IDToMeaning is the command table published by the pydevd runtime, keyed by the decimal code.
var IDToMeaning = map[string]string{
	"101": "CMD_RUN",
	"102": "CMD_LIST_THREADS",
	"103": "CMD_THREAD_CREATE",
	"104": "CMD_THREAD_KILL",
	"105": "CMD_THREAD_SUSPEND",
	"106": "CMD_THREAD_RUN",
	"107": "CMD_STEP_INTO",
	"108": "CMD_STEP_OVER",
	"109": "CMD_STEP_RETURN",
	"110": "CMD_GET_VARIABLE",
	"111": "CMD_SET_BREAK",
	"112": "CMD_REMOVE_BREAK",
	"113": "CMD_EVALUATE_EXPRESSION",
	"114": "CMD_GET_FRAME",
	"115": "CMD_EXEC_EXPRESSION",
	"116": "CMD_WRITE_TO_CONSOLE",
	"117": "CMD_CHANGE_VARIABLE",
	"118": "CMD_RUN_TO_LINE",
	"119": "CMD_RELOAD_CODE",
	"120": "CMD_GET_COMPLETIONS",
	"121": "CMD_CONSOLE_EXEC",
	"122": "CMD_ADD_EXCEPTION_BREAK",
	"123": "CMD_REMOVE_EXCEPTION_BREAK",
	"124": "CMD_LOAD_SOURCE",
	"125": "CMD_ADD_DJANGO_EXCEPTION_BREAK",
	"126": "CMD_REMOVE_DJANGO_EXCEPTION_BREAK",
	"127": "CMD_SET_NEXT_STATEMENT",
	"128": "CMD_SMART_STEP_INTO",
	"129": "CMD_EXIT",
	"130": "CMD_SIGNATURE_CALL_TRACE",
	"131": "CMD_SET_PY_EXCEPTION",
	"132": "CMD_GET_FILE_CONTENTS",
	"133": "CMD_SET_PROPERTY_TRACE",
	"134": "CMD_EVALUATE_CONSOLE_EXPRESSION",
	"135": "CMD_RUN_CUSTOM_OPERATION",
	"136": "CMD_GET_BREAKPOINT_EXCEPTION",
	"137": "CMD_STEP_CAUGHT_EXCEPTION",
	"138": "CMD_SEND_CURR_EXCEPTION_TRACE",
	"139": "CMD_SEND_CURR_EXCEPTION_TRACE_PROCEEDED",
	"140": "CMD_IGNORE_THROWN_EXCEPTION_AT",
	"141": "CMD_ENABLE_DONT_TRACE",
	"142": "CMD_SHOW_CONSOLE",
	"143": "CMD_GET_ARRAY",
	"144": "CMD_STEP_INTO_MY_CODE",
	"145": "CMD_GET_CONCURRENCY_EVENT",
	"146": "CMD_SHOW_RETURN_VALUES",
	"147": "CMD_INPUT_REQUESTED",
	"148": "CMD_GET_DESCRIPTION",
	"149": "CMD_PROCESS_CREATED",
	"150": "CMD_SHOW_CYTHON_WARNING",
	"501": "CMD_VERSION",
	"502": "CMD_RETURN",
	"901": "CMD_ERROR",
}

// DefaultCommands is the command table built from IDToMeaning.
var DefaultCommands = mustCommandTable(IDToMeaning)

func mustCommandTable(meanings map[string]string) *CommandTable {
	t, err := NewCommandTable(meanings)
	if err != nil {
		panic(err)
	}
	return t
}

// CommandSets describes which commands are legal and which are handled, per message kind.
type CommandSets struct {
	// Possible holds the commands pydevd may legitimately send or accept for each kind.
	Possible map[Kind]sets.Set[CommandID]

	// Supported holds the commands this build handles for each kind. It is a subset of Possible.
	Supported map[Kind]sets.Set[CommandID]

	// ResponsesByRequest maps a request command to the command pydevd uses for its reply.
	ResponsesByRequest map[CommandID]CommandID
}

// DefaultCommandSets returns a fresh copy of the command sets for the supported pydevd version.
func DefaultCommandSets() CommandSets {
	responsesByRequest := map[CommandID]CommandID{
		CmdVersion:                   CmdVersion,
		CmdListThreads:               CmdReturn,
		CmdChangeVariable:            CmdReturn,
		CmdGetVariable:               CmdGetVariable,
		CmdGetFrame:                  CmdGetFrame,
		CmdEvaluateExpression:        CmdEvaluateExpression,
		CmdExecExpression:            CmdEvaluateExpression,
		CmdConsoleExec:               CmdEvaluateExpression,
		CmdGetCompletions:            CmdGetCompletions,
		CmdGetFileContents:           CmdGetFileContents,
		CmdLoadSource:                CmdLoadSource,
		CmdEvaluateConsoleExpression: CmdEvaluateConsoleExpression,
		CmdRunCustomOperation:        CmdRunCustomOperation,
		CmdGetArray:                  CmdGetArray,
		CmdGetDescription:            CmdGetDescription,
	}

	possibleRequests := sets.New(
		CmdRun, CmdVersion, CmdListThreads,
		CmdThreadKill, CmdThreadSuspend, CmdThreadRun,
		CmdStepInto, CmdStepIntoMyCode, CmdStepOver, CmdStepReturn, CmdSmartStepInto,
		CmdRunToLine, CmdSetNextStatement, CmdReloadCode,
		CmdGetVariable, CmdChangeVariable, CmdGetFrame, CmdGetArray, CmdGetCompletions, CmdGetDescription,
		CmdSetBreak, CmdRemoveBreak,
		CmdAddExceptionBreak, CmdRemoveExceptionBreak,
		CmdAddDjangoExceptionBreak, CmdRemoveDjangoExceptionBreak,
		CmdEvaluateExpression, CmdExecExpression, CmdConsoleExec, CmdEvaluateConsoleExpression,
		CmdSetPyException, CmdSetPropertyTrace, CmdGetFileContents, CmdLoadSource,
		CmdRunCustomOperation, CmdIgnoreThrownExceptionAt, CmdEnableDontTrace, CmdShowReturnValues,
	)

	// Responses that never share a command with a request.
	responsesOnly := sets.New(CmdReturn, CmdError)

	possibleResponses := sets.New[CommandID]().Union(responsesOnly)
	for _, resp := range responsesByRequest {
		possibleResponses.Insert(resp)
	}

	possibleEvents := sets.New(
		CmdThreadCreate, CmdThreadKill, CmdThreadSuspend, CmdThreadRun,
		CmdSendCurrExceptionTrace, CmdSendCurrExceptionTraceProceeded,
		CmdExit, CmdGetBreakpointException, CmdProcessCreated, CmdShowConsole, CmdWriteToConsole,
	)

	return CommandSets{
		Possible: map[Kind]sets.Set[CommandID]{
			KindRequest:  possibleRequests,
			KindResponse: possibleResponses,
			KindEvent:    possibleEvents,
		},
		Supported: map[Kind]sets.Set[CommandID]{
			KindRequest: sets.New(
				CmdRun, CmdVersion, CmdListThreads,
				CmdThreadSuspend, CmdThreadRun,
				CmdStepInto, CmdStepOver, CmdStepReturn,
				CmdGetVariable, CmdChangeVariable, CmdGetFrame,
				CmdSetBreak, CmdRemoveBreak,
				CmdAddExceptionBreak, CmdRemoveExceptionBreak,
			),
			KindResponse: sets.New(CmdVersion, CmdReturn, CmdError, CmdGetVariable, CmdGetFrame),
			KindEvent: sets.New(
				CmdThreadCreate, CmdThreadKill, CmdThreadSuspend, CmdThreadRun,
				CmdSendCurrExceptionTrace, CmdSendCurrExceptionTraceProceeded,
			),
		},
		ResponsesByRequest: responsesByRequest,
	}
}
