/*---------------------------------------------------------------------------------------------
 *  Copyright (c) Microsoft Corporation. All rights reserved.
 *  Licensed under the MIT License. See LICENSE in the project root for license information.
 *--------------------------------------------------------------------------------------------*/

package pydevd

import (
	"fmt"
	"slices"
	"sync"

	"github.com/go-logr/logr"
	"k8s.io/apimachinery/pkg/util/sets"
)

// RegistryConfig holds the configuration for creating a Registry.
type RegistryConfig struct {
	// Commands is the command table used to validate registrations.
	// If nil, DefaultCommands is used.
	Commands *CommandTable

	// Sets describes possible and supported commands per kind.
	// If Possible is nil, DefaultCommandSets() is used.
	Sets CommandSets

	// Logger for registry operations. If not set, logging is disabled.
	Logger logr.Logger
}

type kindTable struct {
	possible  sets.Set[CommandID]
	supported sets.Set[CommandID]
	handlers  map[CommandID]*Handler
	matchers  map[CommandID][]matcher
}

// Registry maps (command, kind) pairs to payload handlers.
//
// A command may have one exclusive handler per kind, and any number of matchers that are tried
// in registration order before the exclusive handler. Matchers let several payload types share
// one wire command, e.g. replies that all arrive as CMD_RETURN.
//
// The registry is normally populated once at startup. Lookups take a read lock and registrations
// take the write lock, so runtime re-registration is safe but serializes with decoding.
type Registry struct {
	mu                 sync.RWMutex
	commands           *CommandTable
	kinds              map[Kind]*kindTable
	responsesByRequest map[CommandID]CommandID
	log                logr.Logger
}

// NewRegistry creates an empty registry (no handlers) over the configured command sets.
func NewRegistry(config RegistryConfig) *Registry {
	log := config.Logger
	if log.GetSink() == nil {
		log = logr.Discard()
	}

	commands := config.Commands
	if commands == nil {
		commands = DefaultCommands
	}

	cmdSets := config.Sets
	if cmdSets.Possible == nil {
		cmdSets = DefaultCommandSets()
	}

	r := &Registry{
		commands:           commands,
		kinds:              make(map[Kind]*kindTable, len(allKinds)),
		responsesByRequest: make(map[CommandID]CommandID, len(cmdSets.ResponsesByRequest)),
		log:                log,
	}

	for _, kind := range allKinds {
		possible := cmdSets.Possible[kind]
		if possible == nil {
			possible = sets.New[CommandID]()
		}
		supported := cmdSets.Supported[kind]
		if supported == nil {
			supported = sets.New[CommandID]()
		}

		r.kinds[kind] = &kindTable{
			possible:  possible.Clone(),
			supported: supported.Clone(),
			handlers:  make(map[CommandID]*Handler),
			matchers:  make(map[CommandID][]matcher),
		}
	}

	for req, resp := range cmdSets.ResponsesByRequest {
		r.responsesByRequest[req] = resp
	}

	return r
}

// Commands returns the command table the registry validates against.
func (r *Registry) Commands() *CommandTable {
	return r.commands
}

type registerOptions struct {
	match MatchFunc
	force bool
}

// RegisterOption customizes a Register call.
type RegisterOption func(*registerOptions)

// WithMatcher registers the handler as the default of a matcher instead of exclusively.
func WithMatcher(match MatchFunc) RegisterOption {
	return func(o *registerOptions) {
		o.match = match
	}
}

// WithForce replaces an existing exclusive handler instead of failing with ErrAlreadyRegistered.
func WithForce() RegisterOption {
	return func(o *registerOptions) {
		o.force = true
	}
}

// Register binds a handler to a command for a kind.
//
// Without WithMatcher the handler becomes the command's exclusive handler; registering a second one
// fails with ErrAlreadyRegistered unless WithForce is passed. With WithMatcher the (matcher, handler)
// pair is appended to the command's ordered matcher list.
func (r *Registry) Register(cmd CommandID, kind Kind, handler *Handler, opts ...RegisterOption) error {
	if !r.commands.Has(cmd) {
		return fmt.Errorf("bad command ID (expected int, got %d): %w", int(cmd), ErrUnknownCommand)
	}

	var o registerOptions
	for _, opt := range opts {
		opt(&o)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if o.match == nil {
		return r.registerHandlerLocked(cmd, kind, handler, o.force)
	}
	return r.registerMatcherLocked(cmd, kind, o.match, handler)
}

func (r *Registry) registerMatcherLocked(cmd CommandID, kind Kind, match MatchFunc, handler *Handler) error {
	kt, err := r.resolveLocked(cmd, kind, true)
	if err != nil {
		return err
	}

	kt.matchers[cmd] = append(kt.matchers[cmd], matcher{match: match, handler: handler})
	return nil
}

func (r *Registry) registerHandlerLocked(cmd CommandID, kind Kind, handler *Handler, force bool) error {
	kt, err := r.resolveLocked(cmd, kind, false)
	if err != nil {
		return err
	}

	if existing, found := kt.handlers[cmd]; found {
		if !force {
			return fmt.Errorf("%w: %s command %s", ErrAlreadyRegistered, kind, cmd)
		}
		r.log.Info("Replacing registered handler", "kind", kind, "command", cmd, "previous", existing.Name, "handler", handler.Name)
	}

	kt.handlers[cmd] = handler
	return nil
}

// Resolve checks that the command may be handled for the kind.
//
// In strict mode the command must be possible for the kind. In non-strict mode a response command
// that is not directly possible is retried as the request it answers: if the reply to that request
// rides on a supported response command, the request command itself is accepted.
// A command that is possible but not supported fails with ErrUnsupportedCommand.
func (r *Registry) Resolve(cmd CommandID, kind Kind, strict bool) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	_, err := r.resolveLocked(cmd, kind, strict)
	return err
}

func (r *Registry) resolveLocked(cmd CommandID, kind Kind, strict bool) (*kindTable, error) {
	kt, found := r.kinds[kind]
	if !found {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedKind, kind)
	}

	supported := kt.supported
	if strict {
		if !kt.possible.Has(cmd) {
			return nil, fmt.Errorf("%w: unknown %s command %s", ErrUnknownCommand, kind, cmd)
		}
	} else {
		supported = r.checkPossibleLocked(cmd, kind, kt)
		if supported == nil {
			return nil, fmt.Errorf("%w: unknown %s command %s", ErrUnknownCommand, kind, cmd)
		}
	}

	if !supported.Has(cmd) {
		return nil, fmt.Errorf("%w: %s command %s", ErrUnsupportedCommand, kind, cmd)
	}

	return kt, nil
}

// checkPossibleLocked returns the set the command must belong to in order to be supported,
// or nil if the command is not possible for the kind at all.
func (r *Registry) checkPossibleLocked(cmd CommandID, kind Kind, kt *kindTable) sets.Set[CommandID] {
	if kt.possible.Has(cmd) {
		return kt.supported
	}
	if kind != KindResponse {
		return nil
	}

	resp, found := r.responsesByRequest[cmd]
	if !found || !kt.possible.Has(resp) {
		return nil
	}

	if kt.supported.Has(resp) {
		return sets.New(cmd)
	}
	return kt.supported
}

// LookUpOptions controls handler lookup.
type LookUpOptions struct {
	// Message is the candidate message offered to matchers. Matchers are skipped when it is nil.
	Message *Message

	// Cause is the request that prompted the candidate message, if known.
	Cause *Message

	// Strict requires the command to be possible for the kind and skips matchers.
	Strict bool
}

// LookUp returns the handler for a command and kind.
//
// Matchers registered for the command are tried in registration order; the first one that matches
// wins. Otherwise the exclusive handler is returned. A nil handler with a nil error means the command
// resolves but nothing is registered for it.
func (r *Registry) LookUp(cmd CommandID, kind Kind, opts LookUpOptions) (*Handler, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kt, err := r.resolveLocked(cmd, kind, opts.Strict)
	if err != nil {
		return nil, err
	}

	if !opts.Strict && opts.Message != nil {
		if handler := r.matchLocked(kt, cmd, kind, opts.Message, opts.Cause); handler != nil {
			return handler, nil
		}
	}

	return kt.handlers[cmd], nil
}

func (r *Registry) matchLocked(kt *kindTable, cmd CommandID, kind Kind, msg *Message, cause *Message) *Handler {
	for i, m := range kt.matchers[cmd] {
		handler, matched, err := m.match(msg, kind, cause)
		if err != nil {
			r.log.V(1).Info("Matcher failed, trying the next one", "command", cmd, "kind", kind, "index", i, "error", err)
			continue
		}
		if !matched {
			continue
		}
		if handler == nil {
			handler = m.handler
		}
		return handler
	}

	return nil
}

// LookUpResponse returns the handler for the reply to a request.
//
// When the reply carries the request's own command (or is not known yet) the request command is looked
// up strictly first; that covers requests whose reply type is fully determined by the request. Otherwise,
// or if that yields nothing, the reply's command is looked up with the request as the matchers' cause.
func (r *Registry) LookUpResponse(request *Message, response *Message) (*Handler, error) {
	if request == nil {
		return nil, fmt.Errorf("%w: response lookup needs the causing request", ErrInvalidMessage)
	}

	if response == nil || response.CommandID() == request.CommandID() {
		handler, err := r.LookUp(request.CommandID(), KindResponse, LookUpOptions{Strict: true})
		if response == nil || (err == nil && handler != nil) {
			return handler, err
		}
		if err != nil {
			r.log.V(1).Info("No direct response handler for request, trying response command", "request", request.CommandID(), "error", err)
		}
	}

	return r.LookUp(response.CommandID(), KindResponse, LookUpOptions{Message: response, Cause: request})
}

// Binding describes how one command is handled for one kind.
type Binding struct {
	Kind      Kind      `json:"kind" yaml:"kind"`
	Command   CommandID `json:"code" yaml:"code"`
	Name      string    `json:"name" yaml:"name"`
	Possible  bool      `json:"possible" yaml:"possible"`
	Supported bool      `json:"supported" yaml:"supported"`
	Handler   string    `json:"handler,omitempty" yaml:"handler,omitempty"`
	Matchers  []string  `json:"matchers,omitempty" yaml:"matchers,omitempty"`
}

// Bindings reports every command that is possible for a kind or has something registered for it,
// ordered by kind and then by command.
func (r *Registry) Bindings() []Binding {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var bindings []Binding
	for _, kind := range allKinds {
		kt := r.kinds[kind]

		cmds := kt.possible.Clone()
		for cmd := range kt.handlers {
			cmds.Insert(cmd)
		}
		for cmd := range kt.matchers {
			cmds.Insert(cmd)
		}

		sorted := cmds.UnsortedList()
		slices.Sort(sorted)

		for _, cmd := range sorted {
			name, _ := r.commands.Name(cmd)
			b := Binding{
				Kind:      kind,
				Command:   cmd,
				Name:      name,
				Possible:  kt.possible.Has(cmd),
				Supported: kt.supported.Has(cmd),
			}
			if h, found := kt.handlers[cmd]; found && h != nil {
				b.Handler = h.Name
			}
			for _, m := range kt.matchers[cmd] {
				if m.handler != nil {
					b.Matchers = append(b.Matchers, m.handler.Name)
				}
			}
			bindings = append(bindings, b)
		}
	}

	return bindings
}
