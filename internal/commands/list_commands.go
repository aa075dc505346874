/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/microsoft/pydevd-adapter/internal/pydevd"
)

type listCommandsFlags struct {
	format        OutputFormat
	kind          string
	supportedOnly bool
}

func NewCommandsCommand() *cobra.Command {
	flags := listCommandsFlags{format: OutputJSON}

	commandsCmd := &cobra.Command{
		Use:   "commands",
		Short: "Lists the pydevd commands and how each is handled",
		Long: `Lists, for every message kind, the pydevd commands that can appear with that kind,
whether they are supported, and the payload types registered for them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return listCommands(cmd.OutOrStdout(), flags)
		},
	}

	addOutputFlag(commandsCmd, &flags.format)
	commandsCmd.Flags().StringVar(&flags.kind, "kind", "", "Only list commands for this kind: 'request', 'response' or 'event'.")
	commandsCmd.Flags().BoolVar(&flags.supportedOnly, "supported", false, "Only list supported commands.")

	return commandsCmd
}

func listCommands(out io.Writer, flags listCommandsFlags) error {
	switch pydevd.Kind(flags.kind) {
	case "", pydevd.KindRequest, pydevd.KindResponse, pydevd.KindEvent:
	default:
		return fmt.Errorf("unknown kind %q: %w", flags.kind, pydevd.ErrUnsupportedKind)
	}

	registry, err := pydevd.DefaultRegistry()
	if err != nil {
		return err
	}

	w := newRecordWriter(out, flags.format)
	for _, b := range registry.Bindings() {
		if flags.kind != "" && b.Kind != pydevd.Kind(flags.kind) {
			continue
		}
		if flags.supportedOnly && !b.Supported {
			continue
		}
		if err = w.Write(b); err != nil {
			return err
		}
	}
	return w.Close()
}
