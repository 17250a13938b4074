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

type CustomerStore struct {
	base
}

var _ command.Operations[models.Customer] = (*CustomerStore)(nil)

func NewCustomerStore(db *sql.DB, log logger.Logger) *CustomerStore {
	return &CustomerStore{base: newBase(db, models.EntityCustomer, log)}
}

func (s *CustomerStore) Create(ctx context.Context, c models.Customer) (*models.OperationResult, error) {
	if c.CustomerID == "" {
		return models.Failed("Create failed: Customer_ID is required", ""), nil
	}
	at := createdAt(c.CreatedAt)
	if _, err := s.db.ExecContext(ctx, insertCustomer,
		c.CustomerID, c.FullName, c.Username, c.Email, c.PhoneNumber, at); err != nil {
		return s.insertFailure(c.CustomerID, err)
	}
	c.CreatedAt = &at
	return models.Succeeded("Create: Customer created successfully.", c), nil
}

func (s *CustomerStore) Update(ctx context.Context, c models.Customer) (*models.OperationResult, error) {
	res, ok, err := s.exec(ctx, "Update", updateCustomer, c.CustomerID,
		c.CustomerID, c.FullName, c.Username, c.Email, c.PhoneNumber)
	if !ok {
		return res, err
	}
	return models.Succeeded("Update: Customer updated successfully.", c), nil
}

func (s *CustomerStore) Delete(ctx context.Context, id string) (*models.OperationResult, error) {
	res, ok, err := s.exec(ctx, "Delete", deleteCustomer, id, id)
	if !ok {
		return res, err
	}
	return models.Succeeded("Delete: Customer deleted successfully.", models.DeletedRef{DeletedID: id}), nil
}

func (s *CustomerStore) Get(ctx context.Context, id string) (*models.OperationResult, error) {
	c, err := scanCustomer(s.db.QueryRowContext(ctx, selectCustomer, id))
	if errors.Is(err, sql.ErrNoRows) {
		return s.notFound("Get", id), nil
	}
	if err != nil {
		return nil, s.queryFailure("get", err)
	}
	return models.Succeeded("Get: Customer retrieved.", c), nil
}

func (s *CustomerStore) GetAll(ctx context.Context) (*models.OperationResult, error) {
	rows, err := s.db.QueryContext(ctx, selectCustomers)
	if err != nil {
		return nil, s.queryFailure("list", err)
	}
	defer rows.Close()

	out := []models.Customer{}
	for rows.Next() {
		c, err := scanCustomer(rows)
		if err != nil {
			return nil, s.queryFailure("list", err)
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, s.queryFailure("list", err)
	}
	return models.Succeeded(fmt.Sprintf("GetAll: Retrieved %d records.", len(out)), out), nil
}

func scanCustomer(row scanner) (models.Customer, error) {
	var (
		c                        models.Customer
		name, user, email, phone sql.NullString
		created                  sql.NullTime
	)
	if err := row.Scan(&c.CustomerID, &name, &user, &email, &phone, &created); err != nil {
		return models.Customer{}, err
	}
	c.FullName = name.String
	c.Username = user.String
	c.Email = email.String
	c.PhoneNumber = phone.String
	c.CreatedAt = timePtr(created)
	return c, nil
}
