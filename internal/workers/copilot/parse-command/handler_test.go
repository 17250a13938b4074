package parsecommand

import (
	"context"
	"encoding/json"
	"testing"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/command"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockParser struct {
	mock.Mock
}

func (m *MockParser) Parse(ctx context.Context, prompt, modelID string) *command.Descriptor {
	args := m.Called(ctx, prompt, modelID)
	if d := args.Get(0); d != nil {
		return d.(*command.Descriptor)
	}
	return nil
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "copilot-process",
		ElementId:          "Activity_ParseCommand",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, parser Parser) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Parser:       parser,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

func TestHandler_NewHandler(t *testing.T) {
	_, err := NewHandler(HandlerOptions{CustomConfig: DefaultConfig()})
	assert.ErrorContains(t, err, "parser is required")

	h, err := NewHandler(HandlerOptions{Parser: &MockParser{}})
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), h.GetConfig())
	assert.Equal(t, TaskType, h.GetTaskType())
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockParser{})

	input, err := h.parseInput(createMockJob(1, map[string]interface{}{
		"prompt": "create customer Acme",
		"model":  " gpt-4o ",
	}))
	require.NoError(t, err)
	assert.Equal(t, &Input{Prompt: "create customer Acme", Model: "gpt-4o"}, input)

	_, err = h.parseInput(createMockJob(2, map[string]interface{}{"prompt": "create customer Acme"}))
	assert.Equal(t, errors.ErrCodeValidationFailed, errors.CodeOf(err))
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name       string
		descriptor *command.Descriptor
		wantParsed bool
		wantJSON   string
	}{
		{
			name: "command",
			descriptor: &command.Descriptor{
				Action:     "Create",
				Entity:     "Customer",
				Parameters: command.Parameters{"Name": command.String("Acme")},
			},
			wantParsed: true,
			wantJSON:   `{"command":{"Action":"Create","Entity":"Customer","Parameters":{"Name":"Acme"}},"parsed":true}`,
		},
		{
			name: "error descriptor",
			descriptor: command.NewErrorDescriptor(command.EntityNone,
				errors.NewProviderNotFoundError("nope"), nil),
			wantParsed: false,
			wantJSON:   `{"command":{"Action":"error","Entity":"","Parameters":{"reason":"Model 'nope' is not supported."}},"parsed":false}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parser := &MockParser{}
			parser.On("Parse", mock.Anything, "prompt", "model").Return(tt.descriptor)

			out, err := newTestHandler(t, parser).Execute(context.Background(), &Input{Prompt: "prompt", Model: "model"})
			require.NoError(t, err)
			assert.Same(t, tt.descriptor, out.Command)
			assert.Equal(t, tt.wantParsed, out.Parsed)

			raw, err := json.Marshal(out.toVariables())
			require.NoError(t, err)
			assert.JSONEq(t, tt.wantJSON, string(raw))
		})
	}
}

func TestHandler_Execute_NoDescriptor(t *testing.T) {
	parser := &MockParser{}
	parser.On("Parse", mock.Anything, "p", "m").Return(nil)

	_, err := newTestHandler(t, parser).Execute(context.Background(), &Input{Prompt: "p", Model: "m"})
	assert.Equal(t, errors.ErrCodeInternal, errors.CodeOf(err))
}
