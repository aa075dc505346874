/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"os"
	"runtime"

	"github.com/microsoft/pydevd-adapter/pkg/logger"
)

func IsWindows() bool {
	return runtime.GOOS == "windows"
}

func LineSep() string {
	if IsWindows() {
		return "\r\n"
	}
	return "\n"
}

// ErrorExit reports err on stderr, flushes the log and exits with the given code.
func ErrorExit(log *logger.Logger, err error, code int) {
	log.Error(err, "Command failed")
	_, _ = os.Stderr.WriteString(err.Error() + LineSep())
	log.Flush()
	os.Exit(code)
}

// pydevdOS is the OS name pydevd expects in the CMD_VERSION handshake.
func pydevdOS() string {
	if IsWindows() {
		return "WINDOWS"
	}
	return "UNIX"
}
