package command

import (
	"context"
	"testing"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ====== Mocks ======

type widget struct {
	ID   string
	Name string
}

type MockWidgetOps struct {
	mock.Mock
}

func (m *MockWidgetOps) result(args mock.Arguments) (*models.OperationResult, error) {
	if r := args.Get(0); r != nil {
		return r.(*models.OperationResult), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockWidgetOps) Create(ctx context.Context, w widget) (*models.OperationResult, error) {
	return m.result(m.Called(ctx, w))
}

func (m *MockWidgetOps) Update(ctx context.Context, w widget) (*models.OperationResult, error) {
	return m.result(m.Called(ctx, w))
}

func (m *MockWidgetOps) Delete(ctx context.Context, id string) (*models.OperationResult, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockWidgetOps) Get(ctx context.Context, id string) (*models.OperationResult, error) {
	return m.result(m.Called(ctx, id))
}

func (m *MockWidgetOps) GetAll(ctx context.Context) (*models.OperationResult, error) {
	return m.result(m.Called(ctx))
}

var widgetMapper = MapperFunc[widget](func(p Parameters) widget {
	id, _ := p.Text("Widget_ID")
	name, _ := p.Text("Name")
	return widget{ID: id, Name: name}
})

func newTestDispatcher(t *testing.T) (*Dispatcher, *MockWidgetOps) {
	ops := &MockWidgetOps{}
	d := NewDispatcher(logger.NewTestLogger(t))
	d.Register("Widget", NewEntityRoute[widget]("Widget_ID", widgetMapper, ops))
	return d, ops
}

// ====== Validation ======

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		cmd     *Descriptor
		wantErr string
	}{
		{name: "nil", cmd: nil, wantErr: "Command cannot be null"},
		{name: "blank action", cmd: &Descriptor{Action: " ", Entity: "Widget"}, wantErr: "Action is required"},
		{name: "blank entity", cmd: &Descriptor{Action: "Get", Entity: ""}, wantErr: "Entity is required"},
		{name: "unsupported action", cmd: &Descriptor{Action: "Archive", Entity: "Widget"}, wantErr: "Unsupported action 'Archive'"},
		{name: "unsupported entity", cmd: &Descriptor{Action: "Get", Entity: "Gadget"}, wantErr: "Unsupported entity 'Gadget'"},
		{
			name:    "missing id",
			cmd:     &Descriptor{Action: "delete", Entity: "widget", Parameters: Parameters{}},
			wantErr: "'Widget_ID' parameter is missing for delete on widget",
		},
		{
			name:    "null id",
			cmd:     &Descriptor{Action: "Update", Entity: "Widget", Parameters: Parameters{"Widget_ID": Null()}},
			wantErr: "'Widget_ID' must have a valid value for Update on Widget",
		},
		{
			name:    "blank id",
			cmd:     &Descriptor{Action: "Get", Entity: "Widget", Parameters: Parameters{"Widget_ID": String("  ")}},
			wantErr: "'Widget_ID' must have a valid value for Get on Widget",
		},
		{name: "getall needs no id", cmd: &Descriptor{Action: "GetAll", Entity: "WIDGET"}},
		{name: "create needs no id", cmd: &Descriptor{Action: "Create", Entity: "Widget"}},
		{
			name: "numeric id",
			cmd:  &Descriptor{Action: "Get", Entity: "Widget", Parameters: Parameters{"widget_id": Number("9")}},
		},
	}

	d, _ := newTestDispatcher(t)
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := d.Validate(tt.cmd)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, errors.Normalize(err).Message)
			assert.True(t, errors.HasCode(err, errors.ErrCodeValidationFailure))
		})
	}
}

// ====== Execution ======

func TestExecute_RoutesActions(t *testing.T) {
	ctx := context.Background()
	d, ops := newTestDispatcher(t)

	ops.On("Create", mock.Anything, widget{ID: "1", Name: "Bolt"}).Return(models.Succeeded("Create: done", nil), nil).Once()
	ops.On("Get", mock.Anything, "9").Return(models.Succeeded("Get: ok", widget{ID: "9"}), nil).Once()
	ops.On("Delete", mock.Anything, "3").Return(models.Succeeded("Delete: ok", models.DeletedRef{DeletedID: "3"}), nil).Once()
	ops.On("GetAll", mock.Anything).Return(models.Succeeded("GetAll: ok", []widget{}), nil).Once()

	res := d.Execute(ctx, &Descriptor{Action: "create", Entity: "widget",
		Parameters: Parameters{"Widget_ID": String("1"), "Name": String("Bolt")}})
	assert.True(t, res.Success)

	res = d.Execute(ctx, &Descriptor{Action: "GET", Entity: "Widget", Parameters: Parameters{"Widget_ID": Number("9.0")}})
	assert.True(t, res.Success)
	assert.Equal(t, widget{ID: "9"}, res.Data)

	res = d.Execute(ctx, &Descriptor{Action: "Delete", Entity: "Widget", Parameters: Parameters{"Widget_ID": String(" 3 ")}})
	assert.Equal(t, models.DeletedRef{DeletedID: "3"}, res.Data)

	res = d.Execute(ctx, &Descriptor{Action: "getall", Entity: "Widget"})
	assert.True(t, res.Success)

	ops.AssertExpectations(t)
}

func TestExecute_ErrorDescriptor(t *testing.T) {
	d, ops := newTestDispatcher(t)
	cmd := NewErrorDescriptor(EntityUnknown, errors.NewParseFailureError("Parsed result was missing required fields.", ""), nil)

	res := d.Execute(context.Background(), cmd)

	assert.False(t, res.Success)
	assert.Equal(t, "Parsed result was missing required fields.", res.Message)
	assert.Equal(t, string(errors.ErrCodeParseFailure), res.Code)
	ops.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
}

func TestExecute_ValidationFailure(t *testing.T) {
	d, _ := newTestDispatcher(t)

	res := d.Execute(context.Background(), &Descriptor{Action: "Update", Entity: "Widget"})

	assert.False(t, res.Success)
	assert.Equal(t, "'Widget_ID' parameter is missing for Update on Widget", res.Message)
	assert.Equal(t, string(errors.ErrCodeValidationFailure), res.Code)
}

func TestExecute_DownstreamFailures(t *testing.T) {
	tests := []struct {
		name  string
		setup func(ops *MockWidgetOps)
	}{
		{
			name: "collaborator error",
			setup: func(ops *MockWidgetOps) {
				ops.On("Get", mock.Anything, "1").Return(nil, assert.AnError)
			},
		},
		{
			name: "nil result",
			setup: func(ops *MockWidgetOps) {
				ops.On("Get", mock.Anything, "1").Return(nil, nil)
			},
		},
		{
			name: "panic",
			setup: func(ops *MockWidgetOps) {
				ops.On("Get", mock.Anything, "1").Run(func(mock.Arguments) { panic("boom") })
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, ops := newTestDispatcher(t)
			tt.setup(ops)

			res := d.Execute(context.Background(), &Descriptor{Action: "Get", Entity: "Widget",
				Parameters: Parameters{"Widget_ID": String("1")}})

			require.NotNil(t, res)
			assert.False(t, res.Success)
			assert.Equal(t, "Failed to get Widget. Please try again later.", res.Message)
			assert.Equal(t, string(errors.ErrCodeDownstreamFailure), res.Code)
			assert.NotContains(t, res.Message, assert.AnError.Error())
		})
	}
}

func TestExecute_FailedResultGetsCode(t *testing.T) {
	d, ops := newTestDispatcher(t)
	ops.On("Get", mock.Anything, "1").Return(&models.OperationResult{Success: false, Message: "Get failed: not found"}, nil)

	res := d.Execute(context.Background(), &Descriptor{Action: "Get", Entity: "Widget",
		Parameters: Parameters{"Widget_ID": String("1")}})

	assert.False(t, res.Success)
	assert.Equal(t, "Get failed: not found", res.Message)
	assert.Equal(t, string(errors.ErrCodeDownstreamFailure), res.Code)
}

func TestEntities(t *testing.T) {
	d, _ := newTestDispatcher(t)
	d.Register("Apple", NewEntityRoute[widget]("Apple_ID", widgetMapper, &MockWidgetOps{}))
	assert.Equal(t, []string{"Apple", "Widget"}, d.Entities())
}
