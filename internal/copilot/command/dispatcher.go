package command

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/common/metrics"
	"xpilot-copilot/internal/models"
)

// Executor is what workers and the pipeline depend on.
type Executor interface {
	Execute(ctx context.Context, d *Descriptor) *models.OperationResult
}

type registration struct {
	name  string
	route Route
}

// Dispatcher validates descriptors and routes them to registered entities.
// Register everything before the first Execute; the route table is not locked.
type Dispatcher struct {
	routes map[string]registration
	logger logger.Logger
}

var _ Executor = (*Dispatcher)(nil)

func NewDispatcher(log logger.Logger) *Dispatcher {
	return &Dispatcher{
		routes: make(map[string]registration),
		logger: log.With(map[string]interface{}{"component": "command-dispatcher"}),
	}
}

// Register adds an entity route. Entity names match case-insensitively.
func (d *Dispatcher) Register(entity string, route Route) {
	d.routes[strings.ToLower(entity)] = registration{name: entity, route: route}
}

// Entities lists registered entity names, sorted.
func (d *Dispatcher) Entities() []string {
	names := make([]string, 0, len(d.routes))
	for _, r := range d.routes {
		names = append(names, r.name)
	}
	sort.Strings(names)
	return names
}

// Execute validates and dispatches one descriptor. Collaborator errors and panics become
// a generic DOWNSTREAM_FAILURE result; their detail is only logged.
func (d *Dispatcher) Execute(ctx context.Context, cmd *Descriptor) (result *models.OperationResult) {
	if cmd.IsError() {
		code := errors.CodeOf(cmd.Err())
		d.record(cmd.Action, cmd.Entity, "rejected")
		return models.Failed(cmd.Reason(), string(code))
	}

	v, err := d.validate(cmd)
	if err != nil {
		stdErr := errors.Normalize(err)
		d.record(actionOf(cmd), entityOf(cmd), "invalid")
		return models.Failed(stdErr.Message, string(stdErr.Code))
	}

	log := d.logger.With(map[string]interface{}{
		"action": v.action,
		"entity": v.entity.name,
		"id":     v.id,
	})

	defer func() {
		if r := recover(); r != nil {
			log.Error("Entity operation panicked", map[string]interface{}{"panic": fmt.Sprint(r)})
			d.record(v.action, v.entity.name, "panic")
			result = d.downstreamFailure(v, fmt.Errorf("panic: %v", r))
		}
	}()

	res, err := v.entity.route.Execute(ctx, v.action, v.id, cmd.Parameters)
	switch {
	case err != nil:
		log.Error("Entity operation failed", map[string]interface{}{"error": err.Error()})
		d.record(v.action, v.entity.name, "error")
		return d.downstreamFailure(v, err)
	case res == nil:
		log.Error("Entity operation returned no result", nil)
		d.record(v.action, v.entity.name, "error")
		return d.downstreamFailure(v, fmt.Errorf("nil result"))
	case !res.Success:
		if res.Code == "" {
			res.Code = string(errors.ErrCodeDownstreamFailure)
		}
		log.Warn("Entity operation reported failure", map[string]interface{}{"message": res.Message})
		d.record(v.action, v.entity.name, "failed")
		return res
	default:
		log.Info("Entity operation succeeded", nil)
		d.record(v.action, v.entity.name, "success")
		return res
	}
}

func (d *Dispatcher) downstreamFailure(v *validated, err error) *models.OperationResult {
	stdErr := errors.NewDownstreamFailureError(v.action, v.entity.name, err)
	return models.Failed(stdErr.Message, string(stdErr.Code))
}

func (d *Dispatcher) record(action, entity, outcome string) {
	metrics.CommandExecutions.WithLabelValues(action, entity, outcome).Inc()
}

// label helpers keep metric cardinality bounded for invalid input
func actionOf(cmd *Descriptor) string {
	if cmd == nil {
		return "none"
	}
	if a, ok := CanonicalAction(cmd.Action); ok {
		return a
	}
	return "unsupported"
}

func entityOf(cmd *Descriptor) string {
	if cmd == nil || strings.TrimSpace(cmd.Entity) == "" {
		return "none"
	}
	return "requested"
}
