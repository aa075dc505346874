/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package version

import (
	"runtime/debug"
	"strconv"
	"time"
)

const (
	DevelopmentVersion = "dev"
)

// Set at link time with -ldflags "-X".
var (
	ProductVersion = DevelopmentVersion
	CommitHash     = ""
	BuildTimestamp = ""
)

type VersionOutput struct {
	Version    string     `json:"version" yaml:"version"`
	CommitHash string     `json:"commitHash,omitempty" yaml:"commitHash,omitempty"`
	BuildTime  *time.Time `json:"buildTimestamp,omitempty" yaml:"buildTimestamp,omitempty"`
	GoVersion  string     `json:"goVersion,omitempty" yaml:"goVersion,omitempty"`

	// Protocol is the pydevd protocol version announced in the CMD_VERSION handshake.
	Protocol string `json:"protocol" yaml:"protocol"`
}

// ProtocolVersion is sent to pydevd in the CMD_VERSION request.
const ProtocolVersion = "1.1"

// parseBuildTimestamp accepts Unix seconds or RFC 3339.
func parseBuildTimestamp(s string) *time.Time {
	if s == "" {
		return nil
	}
	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		t := time.Unix(secs, 0).UTC()
		return &t
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t
	}
	return nil
}

func Version() VersionOutput {
	productVersion := ProductVersion
	if productVersion == "" {
		productVersion = DevelopmentVersion
	}

	commit := CommitHash
	var goVersion string
	if info, found := debug.ReadBuildInfo(); found {
		goVersion = info.GoVersion
		if commit == "" {
			for _, setting := range info.Settings {
				if setting.Key == "vcs.revision" {
					commit = setting.Value
				}
			}
		}
	}

	return VersionOutput{
		Version:    productVersion,
		CommitHash: commit,
		BuildTime:  parseBuildTimestamp(BuildTimestamp),
		GoVersion:  goVersion,
		Protocol:   ProtocolVersion,
	}
}
