// Package chat answers Question prompts through the configured provider.
package chat

import (
	"context"
	"strings"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/llm"
	"xpilot-copilot/internal/copilot/provider"
	"xpilot-copilot/internal/models"
)

const systemContext = `
You are an AI assistant for Microsoft Dynamics 365 Business Central, covering its functional use,
development, AL coding and extensions.
You are given a chat context with the user's most recent requests. Use it only when it helps answer
the current prompt and do not refer the user back to it; it is visible to you alone.
Keep responses under 2048 characters when possible.
Questions outside Business Central may be answered too, always grounded in the user prompt.
Recent user activity (last 5 requests):
`

const knowledgeHeader = "\nRelevant documentation:\n"

const closing = "\nNow, process the following user command carefully:\n"

// DefaultMaxContextChars bounds the rolling context copied into the preamble.
const DefaultMaxContextChars = 4000

type Options struct {
	MaxContextChars int
}

// Responder never fails outward; failures come back as Status=error responses.
type Responder struct {
	providers       provider.Resolver
	completer       llm.Completer
	maxContextChars int
	logger          logger.Logger
}

func NewResponder(providers provider.Resolver, completer llm.Completer, opts Options, log logger.Logger) *Responder {
	if opts.MaxContextChars <= 0 {
		opts.MaxContextChars = DefaultMaxContextChars
	}
	return &Responder{
		providers:       providers,
		completer:       completer,
		maxContextChars: opts.MaxContextChars,
		logger:          log.With(map[string]interface{}{"component": "chat-responder"}),
	}
}

func (r *Responder) Respond(ctx context.Context, env models.PromptEnvelope, modelID string) *models.ChatResponse {
	p, err := r.providers.Resolve(modelID)
	if err != nil {
		return failure(errors.Normalize(err).Message, modelID)
	}

	if err := llm.RequireCredential(p); err != nil {
		return failure(errors.Normalize(err).Message+". Check your secrets.", p.ModelID)
	}

	raw, err := r.completer.Complete(ctx, p, r.BuildPrompt(env), llm.PurposeChat)
	if err != nil {
		stdErr := errors.Normalize(err)
		r.logger.Warn("Chat completion failed", map[string]interface{}{
			"model":     modelID,
			"provider":  p.Name,
			"errorCode": string(stdErr.Code),
			"details":   stdErr.Details,
		})
		msg := stdErr.Message
		if stdErr.Code == errors.ErrCodeCredentialMissing {
			msg += ". Check your secrets."
		}
		return failure(msg, p.ModelID)
	}

	return &models.ChatResponse{
		Response:  llm.Answer(raw, p),
		ModelUsed: p.ModelID,
		Status:    models.ChatStatusSuccess,
	}
}

// BuildPrompt renders the preamble, the bounded context, optional knowledge and the prompt.
func (r *Responder) BuildPrompt(env models.PromptEnvelope) string {
	var b strings.Builder
	b.WriteString(systemContext)
	b.WriteString(tail(env.Context, r.maxContextChars))
	b.WriteString("\n")
	if k := strings.TrimSpace(env.Knowledge); k != "" {
		b.WriteString(knowledgeHeader)
		b.WriteString(k)
		b.WriteString("\n")
	}
	b.WriteString(closing)
	b.WriteString("\nUser command: ")
	b.WriteString(env.Prompt)
	return b.String()
}

// tail keeps the last limit runes of s.
func tail(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[len(r)-limit:])
}

func failure(msg, modelUsed string) *models.ChatResponse {
	return &models.ChatResponse{
		Response:  msg,
		ModelUsed: modelUsed,
		Status:    models.ChatStatusError,
	}
}
