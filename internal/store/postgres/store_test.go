package postgres

import (
	"context"
	"database/sql"
	"testing"
	"time"

	apperrors "xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherEqual))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, mock
}

var customerColumns = []string{"customer_id", "full_name", "username", "email", "phone_number", "created_at"}

// ====== Customer ======

func TestCustomerStore_Create(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(insertCustomer).
		WithArgs("55", "Jane", "", "jane@example.com", "", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := s.Create(context.Background(), models.Customer{CustomerID: "55", FullName: "Jane", Email: "jane@example.com"})
	require.NoError(t, err)
	assert.True(t, res.Success)
	assert.NotNil(t, res.Data.(models.Customer).CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCustomerStore_CreateDuplicate(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(insertCustomer).
		WithArgs("55", "", "", "", "", sqlmock.AnyArg()).
		WillReturnError(&pq.Error{Code: uniqueViolation})

	res, err := s.Create(context.Background(), models.Customer{CustomerID: "55"})
	require.NoError(t, err)
	assert.Equal(t, "Create failed: Customer '55' already exists", res.Message)
}

func TestCustomerStore_CreateDBError(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(insertCustomer).WillReturnError(sql.ErrConnDone)

	res, err := s.Create(context.Background(), models.Customer{CustomerID: "55"})
	assert.Nil(t, res)
	assert.True(t, apperrors.HasCode(err, apperrors.ErrCodeQueryExecutionFailed))
}

func TestCustomerStore_UpdateNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(updateCustomer).
		WithArgs("9", "Max", "", "", "").
		WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := s.Update(context.Background(), models.Customer{CustomerID: "9", FullName: "Max"})
	require.NoError(t, err)
	assert.False(t, res.Success)
	assert.Equal(t, "Update failed: Customer '9' not found", res.Message)
}

func TestCustomerStore_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(deleteCustomer).WithArgs("9").WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := s.Delete(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, models.DeletedRef{DeletedID: "9"}, res.Data)
}

func TestCustomerStore_Get(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	mock.ExpectQuery(selectCustomer).WithArgs("9").
		WillReturnRows(sqlmock.NewRows(customerColumns).AddRow("9", "Max", nil, "max@example.com", nil, created))

	res, err := s.Get(context.Background(), "9")
	require.NoError(t, err)
	c := res.Data.(models.Customer)
	assert.Equal(t, "Max", c.FullName)
	assert.Empty(t, c.Username)
	assert.Equal(t, created, *c.CreatedAt)
}

func TestCustomerStore_GetNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(selectCustomer).WithArgs("9").WillReturnError(sql.ErrNoRows)

	res, err := s.Get(context.Background(), "9")
	require.NoError(t, err)
	assert.Equal(t, "Get failed: Customer '9' not found", res.Message)
}

func TestCustomerStore_GetAll(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCustomerStore(db, logger.NewTestLogger(t))

	mock.ExpectQuery(selectCustomers).WillReturnRows(sqlmock.NewRows(customerColumns).
		AddRow("1", "A", nil, nil, nil, nil).
		AddRow("2", "B", nil, nil, nil, nil))

	res, err := s.GetAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "GetAll: Retrieved 2 records.", res.Message)
	assert.Len(t, res.Data, 2)
	assert.NoError(t, mock.ExpectationsWereMet())
}

// ====== CopilotEntity ======

func TestCopilotEntityStore_CreateDefaultsStatus(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCopilotEntityStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(insertCopilotEntity).
		WithArgs("E1", "55", "Follow up", "", models.StatusOpen, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	res, err := s.Create(context.Background(), models.CopilotEntity{EntityID: "E1", CustomerID: "55", Title: "Follow up"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusOpen, res.Data.(models.CopilotEntity).Status)
}

func TestCopilotEntityStore_UpdateAndGet(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCopilotEntityStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(updateCopilotEntity).
		WithArgs("E1", "", "", "", models.StatusCompleted).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(selectCopilotEntity).WithArgs("E1").
		WillReturnRows(sqlmock.NewRows([]string{"entity_id", "customer_id", "title", "description", "status", "created_at"}).
			AddRow("E1", "55", "Follow up", nil, models.StatusCompleted, nil))

	res, err := s.Update(context.Background(), models.CopilotEntity{EntityID: "E1", Status: models.StatusCompleted})
	require.NoError(t, err)
	assert.True(t, res.Success)

	res, err = s.Get(context.Background(), "E1")
	require.NoError(t, err)
	e := res.Data.(models.CopilotEntity)
	assert.Equal(t, models.StatusCompleted, e.Status)
	assert.Nil(t, e.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCopilotEntityStore_DeleteNotFound(t *testing.T) {
	db, mock := newMockDB(t)
	s := NewCopilotEntityStore(db, logger.NewTestLogger(t))

	mock.ExpectExec(deleteCopilotEntity).WithArgs("E9").WillReturnResult(sqlmock.NewResult(0, 0))

	res, err := s.Delete(context.Background(), "E9")
	require.NoError(t, err)
	assert.Equal(t, "Delete failed: CopilotEntity 'E9' not found", res.Message)
}
