/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/microsoft/pydevd-adapter/pkg/logger"
)

func NewRootCommand(log *logger.Logger) (*cobra.Command, error) {
	var envFiles []string

	rootCmd := &cobra.Command{
		SilenceErrors: true,
		Use:           "pydevdtrace",
		Short:         "Talks the pydevd debugger wire protocol",
		Long: `Talks the pydevd debugger wire protocol.

pydevdtrace decodes captured pydevd traces and connects to a running pydevd to trace what it sends.`,
		SilenceUsage:     true,
		PersistentPreRun: LogVersion(log.Logger, "Starting pydevdtrace..."),
	}

	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	log.AddLevelFlag(rootCmd.PersistentFlags())
	rootCmd.PersistentFlags().StringArrayVar(&envFiles, envFileFlagName, nil, "Read configuration variables from this env file. Can be repeated; the process environment takes precedence.")

	if cmd, err := NewVersionCommand(log.Logger); err != nil {
		return nil, fmt.Errorf("could not set up 'version' command: %w", err)
	} else {
		rootCmd.AddCommand(cmd)
	}

	rootCmd.AddCommand(NewDecodeCommand(log.Logger))
	rootCmd.AddCommand(NewConnectCommand(log.Logger, &envFiles))
	rootCmd.AddCommand(NewVariablesCommand(log.Logger, &envFiles))
	rootCmd.AddCommand(NewCommandsCommand())

	return rootCmd, nil
}
