// Package pipeline runs the full prompt flow: classify, then answer or execute.
package pipeline

import (
	"context"
	"strings"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/audit"
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/copilot/knowledge"
	"xpilot-copilot/internal/models"

	"github.com/google/uuid"
)

// Collaborator interfaces, satisfied by the copilot packages.
type (
	Classifier interface {
		Classify(ctx context.Context, prompt, modelID string) models.Classification
	}
	Responder interface {
		Respond(ctx context.Context, env models.PromptEnvelope, modelID string) *models.ChatResponse
	}
	Parser interface {
		Parse(ctx context.Context, prompt, modelID string) *command.Descriptor
	}
	History interface {
		Append(ctx context.Context, sessionID, prompt string) error
		Context(ctx context.Context, sessionID string) (string, error)
	}
	Knowledge interface {
		Retrieve(ctx context.Context, query string) (*knowledge.Context, error)
	}
)

type Request struct {
	Prompt    string
	ModelID   string
	SessionID string
	// Context is used when no history store is configured or the session has none.
	Context string
}

type Outcome struct {
	RequestID string                  `json:"requestId"`
	Type      models.Classification   `json:"type"`
	Response  string                  `json:"response"`
	ModelUsed string                  `json:"modelUsed"`
	Status    string                  `json:"status"`
	Command   *command.Descriptor     `json:"command,omitempty"`
	Result    *models.OperationResult `json:"result,omitempty"`
}

// Dependencies wires the pipeline. History, Knowledge and Auditor are optional.
type Dependencies struct {
	Classifier Classifier
	Responder  Responder
	Parser     Parser
	Executor   command.Executor
	History    History
	Knowledge  Knowledge
	Auditor    audit.Auditor
	Logger     logger.Logger
}

type Copilot struct {
	deps   Dependencies
	logger logger.Logger
}

func New(deps Dependencies) *Copilot {
	log := deps.Logger
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &Copilot{
		deps:   deps,
		logger: log.With(map[string]interface{}{"component": "copilot-pipeline"}),
	}
}

// Process never fails outward. The prompt is appended to the session history afterwards.
func (c *Copilot) Process(ctx context.Context, req Request) *Outcome {
	out := &Outcome{RequestID: uuid.New().String()}
	log := c.requestLogger(out.RequestID, req)

	out.Type = c.deps.Classifier.Classify(ctx, req.Prompt, req.ModelID)
	log.Info("Prompt classified", map[string]interface{}{"type": string(out.Type)})

	if out.Type.IsCommand() {
		out.ModelUsed = req.ModelID
		out.Command = c.deps.Parser.Parse(ctx, req.Prompt, req.ModelID)
		out.Result = c.execute(ctx, out.RequestID, req.SessionID, out.Command, log)
		out.Response = out.Result.Message
		out.Status = models.ChatStatusSuccess
		if !out.Result.Success {
			out.Status = models.ChatStatusError
		}
	} else {
		resp := c.question(ctx, req, log)
		out.Response = resp.Response
		out.ModelUsed = resp.ModelUsed
		out.Status = resp.Status
	}

	c.remember(ctx, req, log)
	return out
}

// Chat answers req as a question without classifying it.
func (c *Copilot) Chat(ctx context.Context, req Request) *models.ChatResponse {
	log := c.requestLogger(uuid.New().String(), req)
	resp := c.question(ctx, req, log)
	c.remember(ctx, req, log)
	return resp
}

// Execute runs an already parsed command and audits it.
func (c *Copilot) Execute(ctx context.Context, sessionID string, d *command.Descriptor) *models.OperationResult {
	requestID := uuid.New().String()
	log := c.requestLogger(requestID, Request{SessionID: sessionID})
	return c.execute(ctx, requestID, sessionID, d, log)
}

func (c *Copilot) requestLogger(requestID string, req Request) logger.Logger {
	return c.logger.With(map[string]interface{}{
		"requestId": requestID,
		"model":     req.ModelID,
		"sessionId": req.SessionID,
	})
}

func (c *Copilot) remember(ctx context.Context, req Request, log logger.Logger) {
	if c.deps.History == nil {
		return
	}
	if err := c.deps.History.Append(ctx, req.SessionID, req.Prompt); err != nil {
		log.Warn("Failed to append history", map[string]interface{}{"error": err.Error()})
	}
}

func (c *Copilot) question(ctx context.Context, req Request, log logger.Logger) *models.ChatResponse {
	env := models.PromptEnvelope{Prompt: req.Prompt, Context: req.Context}

	if c.deps.History != nil && strings.TrimSpace(req.SessionID) != "" {
		h, err := c.deps.History.Context(ctx, req.SessionID)
		if err != nil {
			log.Warn("Failed to load history", map[string]interface{}{"error": err.Error()})
		} else if h != "" {
			env.Context = h
		}
	}

	if c.deps.Knowledge != nil {
		k, err := c.deps.Knowledge.Retrieve(ctx, req.Prompt)
		if err != nil {
			log.Warn("Knowledge retrieval failed", map[string]interface{}{
				"errorCode": string(errors.CodeOf(err)),
			})
		} else if k != nil {
			env.Knowledge = k.Text
		}
	}

	return c.deps.Responder.Respond(ctx, env, req.ModelID)
}

func (c *Copilot) execute(ctx context.Context, requestID, sessionID string, d *command.Descriptor, log logger.Logger) *models.OperationResult {
	if d.IsError() {
		log.Warn("Command not executed", map[string]interface{}{"reason": d.Reason()})
		return models.Failed(d.Reason(), string(errors.CodeOf(d.Err())))
	}

	res := c.deps.Executor.Execute(ctx, d)

	if c.deps.Auditor != nil && d != nil {
		outcome := audit.OutcomeSuccess
		if !res.Success {
			outcome = audit.OutcomeFailed
		}
		c.deps.Auditor.PublishCommandExecuted(ctx, audit.Event{
			RequestID: requestID,
			SessionID: sessionID,
			Action:    d.Action,
			Entity:    d.Entity,
			Outcome:   outcome,
			Code:      res.Code,
			Message:   res.Message,
		})
	}
	return res
}
