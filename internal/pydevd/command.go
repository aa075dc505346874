/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
)

const (
	unknownCommandName = "UNKNOWN"
	commandNamePrefix  = "CMD_"
)

// CommandID is a pydevd command code. Values obtained from NewCommandID, CommandIDFromName
// or ToCommandID are guaranteed to be present in the default command table.
type CommandID int

// NewCommandID validates the code against the default command table.
func NewCommandID(code int) (CommandID, error) {
	return DefaultCommands.ID(code)
}

// CommandIDFromName returns the command ID for a symbolic name such as "CMD_LIST_THREADS".
func CommandIDFromName(name string) (CommandID, error) {
	return DefaultCommands.IDFromName(name)
}

// ForceCommandID wraps a code without validating it. Use it only to carry raw values for diagnostics.
func ForceCommandID(code int) CommandID {
	return CommandID(code)
}

// ToCommandID converts an int, a decimal string, a "CMD_*" name, or an existing CommandID
// into a validated CommandID. An existing CommandID is returned unchanged.
func ToCommandID(v any) (CommandID, error) {
	return DefaultCommands.ToID(v)
}

// Name returns the symbolic name from the default command table, or "UNKNOWN".
func (id CommandID) Name() string {
	if name, found := DefaultCommands.Name(id); found {
		return name
	}
	return unknownCommandName
}

func (id CommandID) String() string {
	return fmt.Sprintf("%s (%d)", id.Name(), int(id))
}

// CommandTable is a read-only mapping between command codes and their symbolic names.
type CommandTable struct {
	names map[CommandID]string
	ids   map[string]CommandID
}

// NewCommandTable builds a table from a mapping of string-encoded codes to names,
// which is how the pydevd runtime publishes its command meanings.
func NewCommandTable(meanings map[string]string) (*CommandTable, error) {
	t := &CommandTable{
		names: make(map[CommandID]string, len(meanings)),
		ids:   make(map[string]CommandID, len(meanings)),
	}

	for codeStr, name := range meanings {
		code, err := strconv.Atoi(codeStr)
		if err != nil {
			return nil, fmt.Errorf("command code %q for %s is not a number: %w", codeStr, name, err)
		}
		if existing, found := t.ids[name]; found {
			return nil, fmt.Errorf("command name %s is used by both %d and %d", name, existing, code)
		}
		t.names[CommandID(code)] = name
		t.ids[name] = CommandID(code)
	}

	return t, nil
}

// Has reports whether the code is present in the table.
func (t *CommandTable) Has(id CommandID) bool {
	_, found := t.names[id]
	return found
}

// Name returns the symbolic name for the command.
func (t *CommandTable) Name(id CommandID) (string, bool) {
	name, found := t.names[id]
	return name, found
}

// ID validates the code against the table.
func (t *CommandTable) ID(code int) (CommandID, error) {
	id := CommandID(code)
	if !t.Has(id) {
		return 0, fmt.Errorf("%w: %d", ErrUnknownCommand, code)
	}
	return id, nil
}

// IDFromName looks up a command by its symbolic name.
func (t *CommandTable) IDFromName(name string) (CommandID, error) {
	id, found := t.ids[name]
	if !found {
		return 0, fmt.Errorf("%w: %q", ErrUnknownCommand, name)
	}
	return id, nil
}

// ToID converts an int, a decimal string, a "CMD_*" name, or an existing CommandID into a
// CommandID validated against the table.
func (t *CommandTable) ToID(v any) (CommandID, error) {
	switch tv := v.(type) {
	case CommandID:
		if !t.Has(tv) {
			return 0, fmt.Errorf("%w: %d", ErrUnknownCommand, int(tv))
		}
		return tv, nil
	case int:
		return t.ID(tv)
	case string:
		s := strings.TrimSpace(tv)
		if strings.HasPrefix(s, commandNamePrefix) {
			return t.IDFromName(s)
		}
		code, err := strconv.Atoi(s)
		if err != nil {
			return 0, fmt.Errorf("bad command ID (expected int, got %q): %w", tv, ErrUnknownCommand)
		}
		return t.ID(code)
	default:
		return 0, fmt.Errorf("bad command ID (expected int, got %T): %w", v, ErrUnknownCommand)
	}
}

// IDs returns all command IDs in the table, in ascending order.
func (t *CommandTable) IDs() []CommandID {
	ids := make([]CommandID, 0, len(t.names))
	for id := range t.names {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
