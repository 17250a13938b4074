package command

import (
	"context"
	"fmt"

	"xpilot-copilot/internal/models"
)

// Operations is the entity-operation collaborator for one entity type.
type Operations[T any] interface {
	Create(ctx context.Context, entity T) (*models.OperationResult, error)
	Update(ctx context.Context, entity T) (*models.OperationResult, error)
	Delete(ctx context.Context, id string) (*models.OperationResult, error)
	Get(ctx context.Context, id string) (*models.OperationResult, error)
	GetAll(ctx context.Context) (*models.OperationResult, error)
}

// Mapper builds an entity value from command parameters.
type Mapper[T any] interface {
	Map(params Parameters) T
}

// MapperFunc adapts a function to Mapper.
type MapperFunc[T any] func(params Parameters) T

func (f MapperFunc[T]) Map(params Parameters) T { return f(params) }

// Route executes canonical actions for one registered entity.
type Route interface {
	IDField() string
	Execute(ctx context.Context, action, id string, params Parameters) (*models.OperationResult, error)
}

type entityRoute[T any] struct {
	idField string
	mapper  Mapper[T]
	ops     Operations[T]
}

// NewEntityRoute binds an identifier field, mapper and operations for one entity type.
func NewEntityRoute[T any](idField string, mapper Mapper[T], ops Operations[T]) Route {
	return &entityRoute[T]{idField: idField, mapper: mapper, ops: ops}
}

func (r *entityRoute[T]) IDField() string { return r.idField }

func (r *entityRoute[T]) Execute(ctx context.Context, action, id string, params Parameters) (*models.OperationResult, error) {
	switch action {
	case ActionCreate:
		return r.ops.Create(ctx, r.mapper.Map(params))
	case ActionUpdate:
		return r.ops.Update(ctx, r.mapper.Map(params))
	case ActionDelete:
		return r.ops.Delete(ctx, id)
	case ActionGet:
		return r.ops.Get(ctx, id)
	case ActionGetAll:
		return r.ops.GetAll(ctx)
	default:
		return nil, fmt.Errorf("action %q has no route", action)
	}
}
