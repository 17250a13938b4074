package pipeline

import (
	"context"
	"testing"

	apperrors "xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/audit"
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/copilot/knowledge"
	"xpilot-copilot/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// ====== Mocks ======

type MockClassifier struct{ mock.Mock }

func (m *MockClassifier) Classify(ctx context.Context, prompt, modelID string) models.Classification {
	return m.Called(ctx, prompt, modelID).Get(0).(models.Classification)
}

type MockResponder struct{ mock.Mock }

func (m *MockResponder) Respond(ctx context.Context, env models.PromptEnvelope, modelID string) *models.ChatResponse {
	return m.Called(ctx, env, modelID).Get(0).(*models.ChatResponse)
}

type MockParser struct{ mock.Mock }

func (m *MockParser) Parse(ctx context.Context, prompt, modelID string) *command.Descriptor {
	return m.Called(ctx, prompt, modelID).Get(0).(*command.Descriptor)
}

type MockExecutor struct{ mock.Mock }

func (m *MockExecutor) Execute(ctx context.Context, d *command.Descriptor) *models.OperationResult {
	return m.Called(ctx, d).Get(0).(*models.OperationResult)
}

type MockHistory struct{ mock.Mock }

func (m *MockHistory) Append(ctx context.Context, sessionID, prompt string) error {
	return m.Called(ctx, sessionID, prompt).Error(0)
}

func (m *MockHistory) Context(ctx context.Context, sessionID string) (string, error) {
	args := m.Called(ctx, sessionID)
	return args.String(0), args.Error(1)
}

type MockKnowledge struct{ mock.Mock }

func (m *MockKnowledge) Retrieve(ctx context.Context, query string) (*knowledge.Context, error) {
	args := m.Called(ctx, query)
	if k := args.Get(0); k != nil {
		return k.(*knowledge.Context), args.Error(1)
	}
	return nil, args.Error(1)
}

type MockAuditor struct{ mock.Mock }

func (m *MockAuditor) PublishCommandExecuted(ctx context.Context, event audit.Event) {
	m.Called(ctx, event)
}

type mocks struct {
	classifier *MockClassifier
	responder  *MockResponder
	parser     *MockParser
	executor   *MockExecutor
	history    *MockHistory
	knowledge  *MockKnowledge
	auditor    *MockAuditor
}

func newTestCopilot(t *testing.T) (*Copilot, *mocks) {
	m := &mocks{
		classifier: &MockClassifier{}, responder: &MockResponder{}, parser: &MockParser{},
		executor: &MockExecutor{}, history: &MockHistory{}, knowledge: &MockKnowledge{}, auditor: &MockAuditor{},
	}
	c := New(Dependencies{
		Classifier: m.classifier, Responder: m.responder, Parser: m.parser, Executor: m.executor,
		History: m.history, Knowledge: m.knowledge, Auditor: m.auditor, Logger: logger.NewTestLogger(t),
	})
	return c, m
}

// ====== Tests ======

func TestProcess_Question(t *testing.T) {
	c, m := newTestCopilot(t)
	req := Request{Prompt: "what is a dimension?", ModelID: "gpt-4o", SessionID: "s1"}

	m.classifier.On("Classify", mock.Anything, req.Prompt, "gpt-4o").Return(models.ClassificationQuestion)
	m.history.On("Context", mock.Anything, "s1").Return("1. list customers", nil)
	m.knowledge.On("Retrieve", mock.Anything, req.Prompt).Return(&knowledge.Context{Text: "Dimensions tag entries."}, nil)
	m.responder.On("Respond", mock.Anything, models.PromptEnvelope{
		Prompt: req.Prompt, Context: "1. list customers", Knowledge: "Dimensions tag entries.",
	}, "gpt-4o").Return(&models.ChatResponse{Response: "A dimension is...", ModelUsed: "gpt-4o", Status: models.ChatStatusSuccess})
	m.history.On("Append", mock.Anything, "s1", req.Prompt).Return(nil)

	out := c.Process(context.Background(), req)

	_, err := uuid.Parse(out.RequestID)
	assert.NoError(t, err)
	assert.Equal(t, models.ClassificationQuestion, out.Type)
	assert.Equal(t, "A dimension is...", out.Response)
	assert.Equal(t, models.ChatStatusSuccess, out.Status)
	assert.Nil(t, out.Command)
	m.responder.AssertExpectations(t)
	m.history.AssertExpectations(t)
	m.parser.AssertNotCalled(t, "Parse", mock.Anything, mock.Anything, mock.Anything)
}

func TestProcess_QuestionDegradesWithoutHistoryOrKnowledge(t *testing.T) {
	c, m := newTestCopilot(t)
	req := Request{Prompt: "hi", ModelID: "gpt-4o", SessionID: "s1", Context: "caller context"}

	m.classifier.On("Classify", mock.Anything, "hi", "gpt-4o").Return(models.ClassificationQuestion)
	m.history.On("Context", mock.Anything, "s1").Return("", assert.AnError)
	m.knowledge.On("Retrieve", mock.Anything, "hi").Return(nil, apperrors.NewSearchQueryFailedError("idx", assert.AnError))
	m.responder.On("Respond", mock.Anything, models.PromptEnvelope{Prompt: "hi", Context: "caller context"}, "gpt-4o").
		Return(&models.ChatResponse{Response: "hello", ModelUsed: "gpt-4o", Status: models.ChatStatusSuccess})
	m.history.On("Append", mock.Anything, "s1", "hi").Return(assert.AnError)

	out := c.Process(context.Background(), req)

	assert.Equal(t, "hello", out.Response)
	m.responder.AssertExpectations(t)
}

func TestProcess_CommandExecuted(t *testing.T) {
	c, m := newTestCopilot(t)
	req := Request{Prompt: "delete customer 7", ModelID: "gpt-4o"}
	d := &command.Descriptor{Action: "Delete", Entity: "Customer", Parameters: command.Parameters{"Customer_ID": command.String("7")}}
	res := models.Succeeded("Delete: Entity deleted successfully.", models.DeletedRef{DeletedID: "7"})

	m.classifier.On("Classify", mock.Anything, req.Prompt, "gpt-4o").Return(models.ClassificationCommand)
	m.parser.On("Parse", mock.Anything, req.Prompt, "gpt-4o").Return(d)
	m.executor.On("Execute", mock.Anything, d).Return(res)
	m.auditor.On("PublishCommandExecuted", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Action == "Delete" && e.Entity == "Customer" && e.Outcome == audit.OutcomeSuccess && e.RequestID != ""
	})).Return()
	m.history.On("Append", mock.Anything, "", req.Prompt).Return(nil)

	out := c.Process(context.Background(), req)

	assert.Equal(t, models.ClassificationCommand, out.Type)
	assert.Same(t, d, out.Command)
	assert.Same(t, res, out.Result)
	assert.Equal(t, models.ChatStatusSuccess, out.Status)
	assert.Equal(t, "Delete: Entity deleted successfully.", out.Response)
	m.auditor.AssertExpectations(t)
}

func TestProcess_ParseFailureSkipsExecution(t *testing.T) {
	c, m := newTestCopilot(t)
	req := Request{Prompt: "make something", ModelID: "nope"}
	d := command.NewErrorDescriptor(command.EntityNone, apperrors.NewProviderNotFoundError("nope"), nil)

	m.classifier.On("Classify", mock.Anything, req.Prompt, "nope").Return(models.ClassificationCommand)
	m.parser.On("Parse", mock.Anything, req.Prompt, "nope").Return(d)
	m.history.On("Append", mock.Anything, "", req.Prompt).Return(nil)

	out := c.Process(context.Background(), req)

	assert.Equal(t, models.ChatStatusError, out.Status)
	assert.Equal(t, "Model 'nope' is not supported.", out.Response)
	require.NotNil(t, out.Result)
	assert.False(t, out.Result.Success)
	assert.Equal(t, string(apperrors.ErrCodeProviderNotFound), out.Result.Code)
	m.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
	m.auditor.AssertNotCalled(t, "PublishCommandExecuted", mock.Anything, mock.Anything)
}

func TestProcess_FailedCommandIsAudited(t *testing.T) {
	c, m := newTestCopilot(t)
	req := Request{Prompt: "get customer 9", ModelID: "gpt-4o"}
	d := &command.Descriptor{Action: "Get", Entity: "Customer", Parameters: command.Parameters{"Customer_ID": command.String("9")}}

	m.classifier.On("Classify", mock.Anything, req.Prompt, "gpt-4o").Return(models.ClassificationCommand)
	m.parser.On("Parse", mock.Anything, req.Prompt, "gpt-4o").Return(d)
	m.executor.On("Execute", mock.Anything, d).Return(models.Failed("Get failed: status 404", string(apperrors.ErrCodeDownstreamFailure)))
	m.auditor.On("PublishCommandExecuted", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.Outcome == audit.OutcomeFailed && e.Code == string(apperrors.ErrCodeDownstreamFailure)
	})).Return()
	m.history.On("Append", mock.Anything, "", req.Prompt).Return(nil)

	out := c.Process(context.Background(), req)

	assert.Equal(t, models.ChatStatusError, out.Status)
	assert.Equal(t, "Get failed: status 404", out.Response)
	m.auditor.AssertExpectations(t)
}

func TestNew_OptionalDependencies(t *testing.T) {
	cl, rs := &MockClassifier{}, &MockResponder{}
	c := New(Dependencies{Classifier: cl, Responder: rs})

	cl.On("Classify", mock.Anything, "hi", "m").Return(models.ClassificationQuestion)
	rs.On("Respond", mock.Anything, models.PromptEnvelope{Prompt: "hi"}, "m").
		Return(&models.ChatResponse{Response: "hey", ModelUsed: "m", Status: models.ChatStatusSuccess})

	out := c.Process(context.Background(), Request{Prompt: "hi", ModelID: "m", SessionID: "s"})
	assert.Equal(t, "hey", out.Response)
}

func TestChat_SkipsClassification(t *testing.T) {
	c, m := newTestCopilot(t)
	req := Request{Prompt: "how do I post a journal?", ModelID: "claude", SessionID: "s2"}

	m.history.On("Context", mock.Anything, "s2").Return("", nil)
	m.knowledge.On("Retrieve", mock.Anything, req.Prompt).Return(&knowledge.Context{}, nil)
	m.responder.On("Respond", mock.Anything, models.PromptEnvelope{Prompt: req.Prompt}, "claude").
		Return(&models.ChatResponse{Response: "Open the journal page.", ModelUsed: "claude-3", Status: models.ChatStatusSuccess})
	m.history.On("Append", mock.Anything, "s2", req.Prompt).Return(nil)

	resp := c.Chat(context.Background(), req)

	assert.Equal(t, "Open the journal page.", resp.Response)
	assert.Equal(t, "claude-3", resp.ModelUsed)
	m.classifier.AssertNotCalled(t, "Classify", mock.Anything, mock.Anything, mock.Anything)
	m.history.AssertExpectations(t)
}

func TestExecute_AuditsWithSession(t *testing.T) {
	c, m := newTestCopilot(t)
	d := &command.Descriptor{Action: "GetAll", Entity: "Customer", Parameters: command.Parameters{}}
	res := models.Succeeded("GetAll: Retrieved 0 records.", []models.Customer{})

	m.executor.On("Execute", mock.Anything, d).Return(res)
	m.auditor.On("PublishCommandExecuted", mock.Anything, mock.MatchedBy(func(e audit.Event) bool {
		return e.SessionID == "s3" && e.Action == "GetAll" && e.Outcome == audit.OutcomeSuccess
	})).Return()

	assert.Same(t, res, c.Execute(context.Background(), "s3", d))
	m.auditor.AssertExpectations(t)
	m.history.AssertNotCalled(t, "Append", mock.Anything, mock.Anything, mock.Anything)
}

func TestExecute_ErrorDescriptor(t *testing.T) {
	c, m := newTestCopilot(t)
	d := command.NewErrorDescriptor("Customer", apperrors.NewParseFailureError("Invalid JSON from model", "eof"), nil)

	res := c.Execute(context.Background(), "", d)

	assert.False(t, res.Success)
	assert.Equal(t, "Invalid JSON from model", res.Message)
	assert.Equal(t, string(apperrors.ErrCodeParseFailure), res.Code)
	m.executor.AssertNotCalled(t, "Execute", mock.Anything, mock.Anything)
}
