/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"

	"github.com/microsoft/pydevd-adapter/internal/pydevd"
)

type decodeFlags struct {
	format      OutputFormat
	failOnError bool
}

func NewDecodeCommand(log logr.Logger) *cobra.Command {
	flags := decodeFlags{format: OutputJSON}

	decodeCmd := &cobra.Command{
		Use:   "decode [FILE]",
		Short: "Decodes a captured pydevd message trace",
		Long: `Decodes a captured pydevd message trace, one wire line per line.

Reads standard input when no file is given. A line with an odd sequence number that repeats the
sequence of an earlier request is decoded as the reply to that request.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			in := cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				file, err := os.Open(args[0])
				if err != nil {
					return fmt.Errorf("could not open trace file: %w", err)
				}
				defer file.Close()
				in = file
			}
			return decodeTrace(in, cmd.OutOrStdout(), flags, log.WithName("decode"))
		},
	}

	addOutputFlag(decodeCmd, &flags.format)
	decodeCmd.Flags().BoolVar(&flags.failOnError, "fail-on-error", false, "Exit with an error if any line could not be decoded.")

	return decodeCmd
}

func decodeTrace(in io.Reader, out io.Writer, flags decodeFlags, log logr.Logger) error {
	registry, err := pydevd.DefaultRegistry()
	if err != nil {
		return err
	}

	// Requests seen so far that have not been answered yet.
	requests := map[pydevd.Sequence]*pydevd.Message{}
	opts := pydevd.StreamOptions{
		Codec:  pydevd.NewCodec(registry),
		Cause:  func(seq pydevd.Sequence) *pydevd.Message { return requests[seq] },
		Logger: log,
	}

	w := newRecordWriter(out, flags.format)
	lineNo, failures := 0, 0

	for msg, msgErr := range pydevd.ReadMessages(pydevd.NewLineReader(in), nil, opts) {
		lineNo++
		rec := lineRecord{Line: lineNo}

		if msgErr != nil {
			failures++
			rec.Error = msgErr.Error()
		} else {
			switch msg.Kind() {
			case pydevd.KindRequest:
				requests[msg.Sequence()] = msg
			case pydevd.KindResponse:
				delete(requests, msg.Sequence())
			}
			rec.Message = newMessageRecord(msg)
		}

		if err = w.Write(rec); err != nil {
			return err
		}
	}

	if err = w.Close(); err != nil {
		return err
	}

	log.V(1).Info("Trace decoded", "lines", lineNo, "failures", failures, "unanswered", len(requests))
	if failures > 0 && flags.failOnError {
		return fmt.Errorf("%d of %d lines could not be decoded", failures, lineNo)
	}
	return nil
}
