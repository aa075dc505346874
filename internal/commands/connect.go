/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-logr/logr"
	"github.com/google/go-dap"
	"github.com/spf13/cobra"

	"github.com/microsoft/pydevd-adapter/internal/dapconv"
	"github.com/microsoft/pydevd-adapter/internal/pydevd"
	"github.com/microsoft/pydevd-adapter/internal/version"
)

type connectFlags struct {
	format OutputFormat
	dap    bool
	resume bool
}

func NewConnectCommand(log logr.Logger, envFiles *[]string) *cobra.Command {
	flags := connectFlags{format: OutputJSON}

	connectCmd := &cobra.Command{
		Use:   "connect",
		Short: "Connects to pydevd and traces its messages",
		Long: `Connects to a pydevd instance, performs the version handshake, lists the debuggee threads
and prints every message pydevd sends until interrupted or until pydevd disconnects.

The address and request timeout can also be set with the ` + PYDEVD_ADDRESS + ` and ` + PYDEVD_REQUEST_TIMEOUT + `
environment variables, or in an env file passed with --` + envFileFlagName + `.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			env, err := readEnvironment(*envFiles)
			if err != nil {
				return err
			}
			cfg, err := resolveConnectConfig(cmd.Flags(), env)
			if err != nil {
				return err
			}
			return connect(cmd.Context(), cmd, cfg, flags, log.WithName("connect"))
		},
	}

	addConnectionFlags(connectCmd)
	connectCmd.Flags().BoolVar(&flags.dap, "dap", false, "Print Debug Adapter Protocol messages instead of pydevd messages, skipping messages DAP has no counterpart for.")
	connectCmd.Flags().BoolVar(&flags.resume, "resume", false, "Send CMD_RUN after the handshake so a debuggee waiting for the debugger starts running.")
	addOutputFlag(connectCmd, &flags.format)

	return connectCmd
}

func addConnectionFlags(cmd *cobra.Command) {
	cmd.Flags().String(addressFlagName, defaultAddress, "The host:port pydevd listens on.")
	cmd.Flags().Duration(requestTimeoutFlagName, pydevd.DefaultRequestTimeout, "How long to wait for each pydevd reply.")
}

// traceWriter prints messages either as pydevd records or as their DAP translation.
type traceWriter struct {
	w         recordWriter
	converter *dapconv.Converter
}

func (t *traceWriter) message(msg *pydevd.Message) error {
	if t.converter == nil {
		return t.w.Write(newMessageRecord(msg))
	}
	if converted, ok := t.converter.Event(msg); ok {
		return t.w.Write(converted)
	}
	return nil
}

func (t *traceWriter) threads(reply *pydevd.Message) error {
	if t.converter == nil {
		return t.w.Write(newMessageRecord(reply))
	}
	res, err := t.converter.ThreadsResponse(0, reply)
	if err != nil {
		return err
	}
	return t.w.Write(dap.Message(res))
}

// openSession dials pydevd, starts reading from it and performs the version handshake.
// The returned channel receives the result of Session.Run once the session ends.
func openSession(ctx context.Context, cfg connectConfig, log logr.Logger) (*pydevd.Session, <-chan error, error) {
	log.Info("Connecting to pydevd", "address", cfg.Address)
	transport, err := pydevd.DialTCP(ctx, cfg.Address, log)
	if err != nil {
		return nil, nil, err
	}

	session, err := pydevd.NewSession(ctx, pydevd.SessionConfig{
		Transport:      transport,
		RequestTimeout: cfg.RequestTimeout,
		Logger:         log,
	})
	if err != nil {
		_ = transport.Close()
		return nil, nil, err
	}

	runDone := make(chan error, 1)
	go func() {
		runDone <- session.Run(ctx)
	}()

	reply, err := session.SendRequest(ctx, pydevd.CmdVersion, pydevd.VersionRequest{
		Version:       version.ProtocolVersion,
		OS:            pydevdOS(),
		BreakpointsBy: pydevd.BreakpointsByLine,
	})
	if err != nil {
		_ = session.Close()
		return nil, nil, fmt.Errorf("version handshake failed: %w", err)
	}
	if v, isVersion := reply.Payload().(pydevd.VersionResponse); isVersion {
		log.Info("Connected to pydevd", "session", session.ID(), "pydevdVersion", v.Version)
	}

	return session, runDone, nil
}

// waitForSession waits for the session to stop reading. Cancellation is a normal way to end.
func waitForSession(session *pydevd.Session, runDone <-chan error, log logr.Logger) error {
	runErr := <-runDone
	log.Info("Disconnected from pydevd", "failures", session.Failures())
	if runErr != nil && !errors.Is(runErr, context.Canceled) {
		return runErr
	}
	return nil
}

func connect(ctx context.Context, cmd *cobra.Command, cfg connectConfig, flags connectFlags, log logr.Logger) error {
	session, runDone, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer session.Close()

	out := &traceWriter{w: newRecordWriter(cmd.OutOrStdout(), flags.format)}
	if flags.dap {
		out.converter = dapconv.NewConverter()
	}
	defer func() { _ = out.w.Close() }()

	reply, err := session.SendRequest(ctx, pydevd.CmdListThreads, pydevd.ListThreadsRequest{})
	if err != nil {
		return fmt.Errorf("could not list threads: %w", err)
	}
	if err = out.threads(reply); err != nil {
		return err
	}

	if flags.resume {
		if _, err = session.Notify(pydevd.CmdRun, pydevd.RunRequest{}); err != nil {
			return fmt.Errorf("could not resume the debuggee: %w", err)
		}
	}

	for msg := range session.Messages() {
		if err = out.message(msg); err != nil {
			return err
		}
	}

	return waitForSession(session, runDone, log)
}
