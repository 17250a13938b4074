// Package odata stores copilot entities in Business Central through its OData web services.
package odata

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"xpilot-copilot/internal/common/businesscentral"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/common/validation"
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/models"
)

// Entity describes how one entity type is addressed in Business Central.
type Entity[T any] struct {
	Name      string
	EntitySet string
	KeyField  string
	Key       func(T) string
	Schema    string
}

// Store implements command.Operations for one entity. Transport failures are returned as
// errors; OData status failures become failed results.
type Store[T any] struct {
	client    *businesscentral.Client
	entity    Entity[T]
	validator *validation.DocumentValidator
	logger    logger.Logger
}

var _ command.Operations[models.Customer] = (*Store[models.Customer])(nil)

func New[T any](client *businesscentral.Client, entity Entity[T], log logger.Logger) (*Store[T], error) {
	v, err := validation.NewDocumentValidator(entity.Schema)
	if err != nil {
		return nil, fmt.Errorf("invalid %s schema: %w", entity.Name, err)
	}
	return &Store[T]{
		client:    client,
		entity:    entity,
		validator: v,
		logger: log.With(map[string]interface{}{
			"component": "odata-store",
			"entity":    entity.Name,
		}),
	}, nil
}

func (s *Store[T]) path(id string) string {
	return businesscentral.KeyPath(s.entity.EntitySet, s.entity.KeyField, id)
}

func (s *Store[T]) Create(ctx context.Context, e T) (*models.OperationResult, error) {
	if res := s.validate("Create", e); res != nil {
		return res, nil
	}

	created := e
	if err := s.client.Create(ctx, s.entity.EntitySet, e, &created); err != nil {
		return s.failure("Create", s.entity.Key(e), err)
	}

	s.logger.Info("Entity created", map[string]interface{}{"id": s.entity.Key(e)})
	return models.Succeeded(fmt.Sprintf("Create: %s created successfully.", s.entity.Name), created), nil
}

func (s *Store[T]) Update(ctx context.Context, e T) (*models.OperationResult, error) {
	id := strings.TrimSpace(s.entity.Key(e))
	if id == "" {
		return models.Failed(fmt.Sprintf("Update failed: valid %s is required", s.entity.KeyField), ""), nil
	}
	if res := s.validate("Update", e); res != nil {
		return res, nil
	}

	etag, err := s.client.Get(ctx, s.path(id), nil)
	if err != nil {
		return s.failure("Update", id, err)
	}

	s.logger.Debug("Updating entity", map[string]interface{}{"id": id, "etag": etag})
	if err := s.client.Patch(ctx, s.path(id), etag, e); err != nil {
		return s.failure("Update", id, err)
	}

	s.logger.Info("Entity updated", map[string]interface{}{"id": id})
	return models.Succeeded(fmt.Sprintf("Update: %s updated successfully.", s.entity.Name), e), nil
}

func (s *Store[T]) Delete(ctx context.Context, id string) (*models.OperationResult, error) {
	if err := s.client.Delete(ctx, s.path(id)); err != nil {
		return s.failure("Delete", id, err)
	}

	s.logger.Info("Entity deleted", map[string]interface{}{"id": id})
	return models.Succeeded(fmt.Sprintf("Delete: %s deleted successfully.", s.entity.Name), models.DeletedRef{DeletedID: id}), nil
}

func (s *Store[T]) Get(ctx context.Context, id string) (*models.OperationResult, error) {
	var out T
	if _, err := s.client.Get(ctx, s.path(id), &out); err != nil {
		return s.failure("Get", id, err)
	}
	return models.Succeeded(fmt.Sprintf("Get: %s retrieved.", s.entity.Name), out), nil
}

func (s *Store[T]) GetAll(ctx context.Context) (*models.OperationResult, error) {
	out := []T{}
	if err := s.client.List(ctx, s.entity.EntitySet, &out); err != nil {
		return s.failure("GetAll", "", err)
	}
	return models.Succeeded(fmt.Sprintf("GetAll: Retrieved %d records.", len(out)), out), nil
}

func (s *Store[T]) validate(op string, e T) *models.OperationResult {
	res, err := s.validator.Validate(e)
	if err != nil {
		return models.Failed(fmt.Sprintf("%s failed: invalid %s payload", op, s.entity.Name), "")
	}
	if !res.Valid {
		return models.Failed(fmt.Sprintf("%s failed: %s", op, strings.Join(res.GetErrorMessages(), "; ")), "")
	}
	return nil
}

// failure turns an OData status into a failed result and passes transport errors through.
func (s *Store[T]) failure(op, id string, err error) (*models.OperationResult, error) {
	var se *businesscentral.StatusError
	if !errors.As(err, &se) {
		return nil, err
	}

	s.logger.Error("OData operation failed", map[string]interface{}{
		"operation": op,
		"id":        id,
		"status":    se.StatusCode,
		"body":      se.Body,
	})

	if se.StatusCode == http.StatusNotFound && id != "" {
		return models.Failed(fmt.Sprintf("%s failed: %s '%s' not found", op, s.entity.Name, id), ""), nil
	}
	return models.Failed(fmt.Sprintf("%s failed: %s", op, statusReason(se.StatusCode)), ""), nil
}

func statusReason(status int) string {
	switch status {
	case http.StatusBadRequest:
		return "Bad request"
	case http.StatusUnauthorized:
		return "Unauthorized"
	case http.StatusForbidden:
		return "Forbidden"
	case http.StatusNotFound:
		return "Not found"
	case http.StatusConflict:
		return "Conflict"
	case http.StatusPreconditionFailed:
		return "Record was changed by another user"
	case http.StatusInternalServerError:
		return "Server error"
	default:
		return fmt.Sprintf("status %d", status)
	}
}
