// Package postgres stores copilot entities in PostgreSQL.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	apperrors "xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/models"

	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type scanner interface {
	Scan(dest ...interface{}) error
}

// base holds what both entity stores share.
type base struct {
	db     *sql.DB
	entity string
	logger logger.Logger
}

func newBase(db *sql.DB, entity string, log logger.Logger) base {
	return base{
		db:     db,
		entity: entity,
		logger: log.With(map[string]interface{}{"component": "postgres-store", "entity": entity}),
	}
}

func (b base) notFound(op, id string) *models.OperationResult {
	return models.Failed(fmt.Sprintf("%s failed: %s '%s' not found", op, b.entity, id), "")
}

// insertFailure maps a duplicate key to a failed result; other errors are query failures.
func (b base) insertFailure(id string, err error) (*models.OperationResult, error) {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == uniqueViolation {
		return models.Failed(fmt.Sprintf("Create failed: %s '%s' already exists", b.entity, id), ""), nil
	}
	return nil, b.queryFailure("create", err)
}

func (b base) queryFailure(op string, err error) error {
	b.logger.Error("Query failed", map[string]interface{}{"operation": op, "error": err.Error()})
	return apperrors.NewQueryExecutionFailedError(op+"_"+b.entity, err)
}

// exec runs a keyed statement and reports a missing row as a failed result.
func (b base) exec(ctx context.Context, op, query, id string, args ...interface{}) (*models.OperationResult, bool, error) {
	res, err := b.db.ExecContext(ctx, query, args...)
	if err != nil {
		return nil, false, b.queryFailure(op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, false, b.queryFailure(op, err)
	}
	if n == 0 {
		return b.notFound(op, id), false, nil
	}
	return nil, true, nil
}

func createdAt(t *time.Time) time.Time {
	if t == nil || t.IsZero() {
		return time.Now().UTC()
	}
	return t.UTC()
}

func timePtr(nt sql.NullTime) *time.Time {
	if !nt.Valid {
		return nil
	}
	t := nt.Time.UTC()
	return &t
}
