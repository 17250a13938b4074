package command

import (
	"fmt"
	"strings"

	"xpilot-copilot/internal/common/errors"
)

// Validate checks a descriptor in a fixed order and returns the first violation.
func (d *Dispatcher) Validate(cmd *Descriptor) error {
	_, err := d.validate(cmd)
	return err
}

type validated struct {
	action string
	entity registration
	id     string
}

func (d *Dispatcher) validate(cmd *Descriptor) (*validated, error) {
	if cmd == nil {
		return nil, errors.NewValidationFailureError("Command cannot be null")
	}
	if strings.TrimSpace(cmd.Action) == "" {
		return nil, errors.NewValidationFailureError("Action is required")
	}
	if strings.TrimSpace(cmd.Entity) == "" {
		return nil, errors.NewValidationFailureError("Entity is required")
	}

	action, ok := CanonicalAction(cmd.Action)
	if !ok {
		return nil, errors.NewValidationFailureError(fmt.Sprintf("Unsupported action '%s'", cmd.Action))
	}

	reg, ok := d.routes[strings.ToLower(strings.TrimSpace(cmd.Entity))]
	if !ok {
		return nil, errors.NewValidationFailureError(fmt.Sprintf("Unsupported entity '%s'", cmd.Entity))
	}

	v := &validated{action: action, entity: reg}
	if requiresID(action) {
		idField := reg.route.IDField()
		raw, present := cmd.Parameters.Get(idField)
		if !present {
			return nil, errors.NewValidationFailureError(
				fmt.Sprintf("'%s' parameter is missing for %s on %s", idField, cmd.Action, cmd.Entity))
		}
		id, ok := raw.Extract()
		if !ok {
			return nil, errors.NewValidationFailureError(
				fmt.Sprintf("'%s' must have a valid value for %s on %s", idField, cmd.Action, cmd.Entity))
		}
		v.id = id
	}
	return v, nil
}
