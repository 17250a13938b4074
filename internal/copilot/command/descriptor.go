// Package command turns model output into validated entity operations.
package command

import (
	"strings"

	"xpilot-copilot/internal/common/errors"
)

// Actions understood by the dispatcher.
const (
	ActionCreate = "Create"
	ActionUpdate = "Update"
	ActionDelete = "Delete"
	ActionGet    = "Get"
	ActionGetAll = "GetAll"

	// ActionError marks a descriptor that carries a failure instead of a command.
	ActionError = "error"
)

// Error descriptor entities.
const (
	EntityNone    = ""
	EntityUnknown = "unknown"
)

// Error descriptor parameter keys.
const (
	ParamReason      = "reason"
	ParamRawJSON     = "rawJson"
	ParamRawResponse = "rawResponse"
)

var canonicalActions = map[string]string{
	"create": ActionCreate,
	"update": ActionUpdate,
	"delete": ActionDelete,
	"get":    ActionGet,
	"getall": ActionGetAll,
}

// CanonicalAction returns the canonical spelling of action, ignoring case.
func CanonicalAction(action string) (string, bool) {
	a, ok := canonicalActions[strings.ToLower(strings.TrimSpace(action))]
	return a, ok
}

func requiresID(action string) bool {
	return action == ActionUpdate || action == ActionDelete || action == ActionGet
}

// Parameters are the named command arguments.
type Parameters map[string]Value

// Get looks a key up exactly, then ignoring case.
func (p Parameters) Get(key string) (Value, bool) {
	if v, ok := p[key]; ok {
		return v, true
	}
	for k, v := range p {
		if strings.EqualFold(k, key) {
			return v, true
		}
	}
	return Value{}, false
}

// Text extracts the named parameter as text.
func (p Parameters) Text(key string) (string, bool) {
	v, ok := p.Get(key)
	if !ok {
		return "", false
	}
	return v.Extract()
}

// Descriptor is a parsed command. Key matching on decode is case-insensitive.
type Descriptor struct {
	Action     string     `json:"Action"`
	Entity     string     `json:"Entity"`
	Parameters Parameters `json:"Parameters"`

	failure *errors.StandardError
}

// IsError reports an error descriptor.
func (d *Descriptor) IsError() bool {
	return d != nil && strings.EqualFold(d.Action, ActionError)
}

// Reason is the user-safe failure text of an error descriptor.
func (d *Descriptor) Reason() string {
	if d == nil {
		return ""
	}
	s, _ := d.Parameters.Text(ParamReason)
	return s
}

// Err returns the typed failure behind an error descriptor, or nil.
func (d *Descriptor) Err() error {
	if !d.IsError() {
		return nil
	}
	if d.failure != nil {
		return d.failure
	}
	return errors.NewParseFailureError(d.Reason(), "")
}

// NewErrorDescriptor builds an error descriptor carrying failure as its reason.
func NewErrorDescriptor(entity string, failure *errors.StandardError, extra Parameters) *Descriptor {
	params := Parameters{ParamReason: String(failure.Message)}
	for k, v := range extra {
		params[k] = v
	}
	return &Descriptor{
		Action:     ActionError,
		Entity:     entity,
		Parameters: params,
		failure:    failure,
	}
}
