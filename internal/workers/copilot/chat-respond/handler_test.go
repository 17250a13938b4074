package chatrespond

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"xpilot-copilot/internal/common/config"
	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/pipeline"
	"xpilot-copilot/internal/models"

	"github.com/camunda/zeebe/clients/go/v8/pkg/entities"
	"github.com/camunda/zeebe/clients/go/v8/pkg/pb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ==========================
// Mock Chatter
// ==========================

type MockChatter struct {
	mock.Mock
}

func (m *MockChatter) Chat(ctx context.Context, req pipeline.Request) *models.ChatResponse {
	args := m.Called(ctx, req)
	return args.Get(0).(*models.ChatResponse)
}

func createMockJob(key int64, variables map[string]interface{}) entities.Job {
	variablesJSON, _ := json.Marshal(variables)

	return entities.Job{ActivatedJob: &pb.ActivatedJob{
		Key:                key,
		Type:               TaskType,
		ProcessInstanceKey: key * 10,
		BpmnProcessId:      "copilot-process",
		ElementId:          "Activity_ChatRespond",
		CustomHeaders:      "{}",
		Worker:             "test-worker",
		Retries:            3,
		Variables:          string(variablesJSON),
	}}
}

func newTestHandler(t *testing.T, chatter Chatter) *Handler {
	t.Helper()
	h, err := NewHandler(HandlerOptions{
		CustomConfig: DefaultConfig(),
		Chatter:      chatter,
		Logger:       logger.NewTestLogger(t),
	})
	require.NoError(t, err)
	return h
}

// ==========================
// Tests
// ==========================

func TestHandler_NewHandler(t *testing.T) {
	h, err := NewHandler(HandlerOptions{
		AppConfig: &config.Config{Workers: map[string]config.WorkerConfig{
			WorkerName: {Enabled: true, MaxJobsActive: 2, Timeout: 120000},
		}},
		Chatter: &MockChatter{},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, h.GetConfig().MaxJobsActive)
	assert.Equal(t, 2*time.Minute, h.GetConfig().Timeout)

	_, err = NewHandler(HandlerOptions{})
	assert.ErrorContains(t, err, "chatter is required")

	_, err = NewHandler(HandlerOptions{CustomConfig: &Config{MaxJobsActive: 1}, Chatter: &MockChatter{}})
	assert.ErrorContains(t, err, "timeout must be positive")
}

func TestHandler_ParseInput(t *testing.T) {
	h := newTestHandler(t, &MockChatter{})

	t.Run("all fields", func(t *testing.T) {
		input, err := h.parseInput(createMockJob(1, map[string]interface{}{
			"prompt":    "What is a G/L account?",
			"model":     "llama-3",
			"context":   "1. list customers",
			"sessionId": " s-1 ",
		}))
		require.NoError(t, err)
		assert.Equal(t, &Input{
			Prompt:    "What is a G/L account?",
			Model:     "llama-3",
			Context:   "1. list customers",
			SessionID: "s-1",
		}, input)
	})

	t.Run("optional fields absent", func(t *testing.T) {
		input, err := h.parseInput(createMockJob(2, map[string]interface{}{"prompt": "hi", "model": "m"}))
		require.NoError(t, err)
		assert.Empty(t, input.Context)
		assert.Empty(t, input.SessionID)
	})

	t.Run("context of wrong type", func(t *testing.T) {
		_, err := h.parseInput(createMockJob(3, map[string]interface{}{"prompt": "hi", "model": "m", "context": 5}))
		assert.Equal(t, errors.ErrCodeValidationFailed, errors.CodeOf(err))
	})

	t.Run("missing prompt", func(t *testing.T) {
		_, err := h.parseInput(createMockJob(4, map[string]interface{}{"model": "m"}))
		assert.Equal(t, errors.ErrCodeValidationFailed, errors.CodeOf(err))
	})
}

func TestHandler_Execute(t *testing.T) {
	tests := []struct {
		name string
		resp *models.ChatResponse
	}{
		{
			name: "answered",
			resp: &models.ChatResponse{Response: "A G/L account records...", ModelUsed: "llama-3-70b", Status: models.ChatStatusSuccess},
		},
		{
			name: "provider failure completes with error status",
			resp: &models.ChatResponse{Response: "Model 'x' is not supported.", ModelUsed: "x", Status: models.ChatStatusError},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			chatter := &MockChatter{}
			input := &Input{Prompt: "p", Model: "m", Context: "c", SessionID: "s"}
			chatter.On("Chat", mock.Anything, pipeline.Request{
				Prompt: "p", ModelID: "m", SessionID: "s", Context: "c",
			}).Return(tt.resp)

			out, err := newTestHandler(t, chatter).Execute(context.Background(), input)
			require.NoError(t, err)
			assert.Equal(t, map[string]interface{}{
				"response":  tt.resp.Response,
				"modelUsed": tt.resp.ModelUsed,
				"status":    tt.resp.Status,
			}, out.toVariables())
			chatter.AssertExpectations(t)
		})
	}
}

func TestHandler_Execute_NilInput(t *testing.T) {
	_, err := newTestHandler(t, &MockChatter{}).Execute(context.Background(), nil)
	assert.Error(t, err)
}
