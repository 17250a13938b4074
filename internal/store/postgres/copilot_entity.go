package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/models"
)

type CopilotEntityStore struct {
	base
}

var _ command.Operations[models.CopilotEntity] = (*CopilotEntityStore)(nil)

func NewCopilotEntityStore(db *sql.DB, log logger.Logger) *CopilotEntityStore {
	return &CopilotEntityStore{base: newBase(db, models.EntityCopilotEntity, log)}
}

func (s *CopilotEntityStore) Create(ctx context.Context, e models.CopilotEntity) (*models.OperationResult, error) {
	if e.EntityID == "" {
		return models.Failed("Create failed: Entity_ID is required", ""), nil
	}
	if e.Status == "" {
		e.Status = models.StatusOpen
	}
	at := createdAt(e.CreatedAt)
	if _, err := s.db.ExecContext(ctx, insertCopilotEntity,
		e.EntityID, e.CustomerID, e.Title, e.Description, e.Status, at); err != nil {
		return s.insertFailure(e.EntityID, err)
	}
	e.CreatedAt = &at
	return models.Succeeded("Create: CopilotEntity created successfully.", e), nil
}

func (s *CopilotEntityStore) Update(ctx context.Context, e models.CopilotEntity) (*models.OperationResult, error) {
	res, ok, err := s.exec(ctx, "Update", updateCopilotEntity, e.EntityID,
		e.EntityID, e.CustomerID, e.Title, e.Description, e.Status)
	if !ok {
		return res, err
	}
	return models.Succeeded("Update: CopilotEntity updated successfully.", e), nil
}

func (s *CopilotEntityStore) Delete(ctx context.Context, id string) (*models.OperationResult, error) {
	res, ok, err := s.exec(ctx, "Delete", deleteCopilotEntity, id, id)
	if !ok {
		return res, err
	}
	return models.Succeeded("Delete: CopilotEntity deleted successfully.", models.DeletedRef{DeletedID: id}), nil
}

func (s *CopilotEntityStore) Get(ctx context.Context, id string) (*models.OperationResult, error) {
	e, err := scanCopilotEntity(s.db.QueryRowContext(ctx, selectCopilotEntity, id))
	if errors.Is(err, sql.ErrNoRows) {
		return s.notFound("Get", id), nil
	}
	if err != nil {
		return nil, s.queryFailure("get", err)
	}
	return models.Succeeded("Get: CopilotEntity retrieved.", e), nil
}

func (s *CopilotEntityStore) GetAll(ctx context.Context) (*models.OperationResult, error) {
	rows, err := s.db.QueryContext(ctx, selectCopilotEntities)
	if err != nil {
		return nil, s.queryFailure("list", err)
	}
	defer rows.Close()

	out := []models.CopilotEntity{}
	for rows.Next() {
		e, err := scanCopilotEntity(rows)
		if err != nil {
			return nil, s.queryFailure("list", err)
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailure("list", err)
	}
	return models.Succeeded(fmt.Sprintf("GetAll: Retrieved %d records.", len(out)), out), nil
}

func scanCopilotEntity(row scanner) (models.CopilotEntity, error) {
	var (
		e                             models.CopilotEntity
		customer, title, desc, status sql.NullString
		created                       sql.NullTime
	)
	if err := row.Scan(&e.EntityID, &customer, &title, &desc, &status, &created); err != nil {
		return models.CopilotEntity{}, err
	}
	e.CustomerID = customer.String
	e.Title = title.String
	e.Description = desc.String
	e.Status = status.String
	e.CreatedAt = timePtr(created)
	return e, nil
}
