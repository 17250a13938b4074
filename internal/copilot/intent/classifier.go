// Package intent decides whether a prompt is a Question or a Command.
package intent

import (
	"context"
	"strings"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/common/metrics"
	"xpilot-copilot/internal/copilot/llm"
	"xpilot-copilot/internal/copilot/provider"
	"xpilot-copilot/internal/models"
)

const instruction = `You are a Business Central Copilot.
Classify the user prompt into one of two types:
- a question or informational query is a Question
- an action request (create, update, delete, get) is a Command
Return only one word: 'Command' or 'Question'.
User prompt:
`

// Classifier never fails outward; every failure classifies as Question.
type Classifier struct {
	providers provider.Resolver
	completer llm.Completer
	logger    logger.Logger
}

func NewClassifier(providers provider.Resolver, completer llm.Completer, log logger.Logger) *Classifier {
	return &Classifier{
		providers: providers,
		completer: completer,
		logger:    log.With(map[string]interface{}{"component": "intent-classifier"}),
	}
}

func (c *Classifier) Classify(ctx context.Context, prompt, modelID string) models.Classification {
	result := c.classify(ctx, prompt, modelID)
	metrics.IntentClassifications.WithLabelValues(string(result)).Inc()
	return result
}

func (c *Classifier) classify(ctx context.Context, prompt, modelID string) models.Classification {
	p, err := c.providers.Resolve(modelID)
	if err != nil || p.EndpointURL == "" {
		c.logger.Warn("Classification skipped, provider unavailable", map[string]interface{}{
			"model": modelID,
		})
		return models.ClassificationQuestion
	}

	raw, err := c.completer.Complete(ctx, p, BuildPrompt(prompt), llm.PurposeClassification)
	if err != nil {
		c.logger.Warn("Classification call failed", map[string]interface{}{
			"model":     modelID,
			"provider":  p.Name,
			"errorCode": string(errors.CodeOf(err)),
		})
		return models.ClassificationQuestion
	}

	text, err := llm.Extract(raw, p)
	if err != nil {
		c.logger.Warn("Classification response had no answer", map[string]interface{}{
			"model":  modelID,
			"reason": err.Error(),
		})
		return models.ClassificationQuestion
	}

	return Normalize(text)
}

// BuildPrompt prefixes the fixed classification instruction.
func BuildPrompt(prompt string) string {
	return instruction + prompt
}

// Normalize maps free model text to a classification.
func Normalize(text string) models.Classification {
	if strings.Contains(strings.ToLower(strings.TrimSpace(text)), "command") {
		return models.ClassificationCommand
	}
	return models.ClassificationQuestion
}
