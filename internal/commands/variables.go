/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package commands

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-logr/logr"
	"github.com/google/go-dap"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/microsoft/pydevd-adapter/internal/dapconv"
	"github.com/microsoft/pydevd-adapter/internal/pydevd"
)

// scopeValue is a pflag.Value for the scope of a variables lookup.
type scopeValue pydevd.Scope

func (s *scopeValue) Set(v string) error {
	switch pydevd.Scope(strings.ToUpper(v)) {
	case pydevd.ScopeFrame:
		*s = scopeValue(pydevd.ScopeFrame)
	case pydevd.ScopeGlobal:
		*s = scopeValue(pydevd.ScopeGlobal)
	default:
		return fmt.Errorf("unknown scope %q (expected 'frame' or 'global')", v)
	}
	return nil
}

func (s *scopeValue) String() string {
	if s == nil || *s == "" {
		return strings.ToLower(string(pydevd.ScopeFrame))
	}
	return strings.ToLower(string(*s))
}

func (s *scopeValue) Type() string {
	return "scope"
}

var _ pflag.Value = new(scopeValue)

type variablesFlags struct {
	format OutputFormat
	dap    bool
	thread int
	frame  int
	scope  scopeValue
	depth  int
}

func NewVariablesCommand(log logr.Logger, envFiles *[]string) *cobra.Command {
	flags := variablesFlags{format: OutputJSON, scope: scopeValue(pydevd.ScopeFrame)}

	variablesCmd := &cobra.Command{
		Use:   "variables",
		Short: "Lists the variables of a frame of a suspended thread",
		Long: `Connects to a pydevd instance, performs the version handshake and asks for the variables
of one frame of a suspended thread. Container variables are expanded down to --depth levels,
one reply per container.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if flags.depth < 0 {
				return fmt.Errorf("--depth must not be negative, got %d", flags.depth)
			}
			env, err := readEnvironment(*envFiles)
			if err != nil {
				return err
			}
			cfg, err := resolveConnectConfig(cmd.Flags(), env)
			if err != nil {
				return err
			}
			return listVariables(cmd.Context(), cmd, cfg, flags, log.WithName("variables"))
		},
	}

	addConnectionFlags(variablesCmd)
	variablesCmd.Flags().IntVar(&flags.thread, "thread", 0, "The ID of the suspended thread.")
	variablesCmd.Flags().IntVar(&flags.frame, "frame", 0, "The ID of the frame to inspect.")
	variablesCmd.Flags().Var(&flags.scope, "scope", "Where to look variables up, 'frame' or 'global'.")
	variablesCmd.Flags().IntVar(&flags.depth, "depth", 0, "How many levels of container variables to expand.")
	variablesCmd.Flags().BoolVar(&flags.dap, "dap", false, "Print Debug Adapter Protocol variables responses instead of pydevd messages.")
	addOutputFlag(variablesCmd, &flags.format)
	_ = variablesCmd.MarkFlagRequired("thread")
	_ = variablesCmd.MarkFlagRequired("frame")

	return variablesCmd
}

type expandableRef struct {
	ref   int
	level int
}

func containerRefs(vars []dap.Variable, level int) []expandableRef {
	var refs []expandableRef
	for _, v := range vars {
		if v.VariablesReference > 0 {
			refs = append(refs, expandableRef{ref: v.VariablesReference, level: level})
		}
	}
	return refs
}

func listVariables(ctx context.Context, cmd *cobra.Command, cfg connectConfig, flags variablesFlags, log logr.Logger) error {
	session, runDone, err := openSession(ctx, cfg, log)
	if err != nil {
		return err
	}

	out := newRecordWriter(cmd.OutOrStdout(), flags.format)
	converter := dapconv.NewConverter()

	write := func(reply *pydevd.Message, vars []dap.Variable) error {
		if flags.dap {
			return out.Write(converter.VariablesResponse(0, vars))
		}
		return out.Write(newMessageRecord(reply))
	}

	listErr := func() error {
		frame := pydevd.GetFrameRequest{ThreadID: flags.thread, FrameID: flags.frame, Scope: pydevd.Scope(flags.scope)}
		reply, err := session.SendRequest(ctx, pydevd.CmdGetFrame, frame)
		if err != nil {
			return fmt.Errorf("could not get frame %d of thread %d: %w", flags.frame, flags.thread, err)
		}
		vars, err := converter.FrameVariables(frame, reply)
		if err != nil {
			return err
		}
		if err = write(reply, vars); err != nil {
			return err
		}

		queue := containerRefs(vars, 1)
		for len(queue) > 0 {
			next := queue[0]
			queue = queue[1:]
			if next.level > flags.depth {
				continue
			}
			req, found := converter.Reference(next.ref)
			if !found {
				continue
			}

			reply, err = session.SendRequest(ctx, pydevd.CmdGetVariable, req)
			if err != nil {
				return fmt.Errorf("could not expand %q: %w", strings.ReplaceAll(req.Attributes, "\t", "."), err)
			}
			children, err := converter.Variables(req, reply)
			if err != nil {
				return err
			}
			if err = write(reply, children); err != nil {
				return err
			}
			queue = append(queue, containerRefs(children, next.level+1)...)
		}
		return nil
	}()

	_ = out.Close()
	_ = session.Close()
	if waitErr := waitForSession(session, runDone, log); listErr == nil {
		listErr = waitErr
	}
	return listErr
}
