package processprompt

import (
	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/models"
)

type Input struct {
	Prompt    string `json:"prompt"`
	Model     string `json:"model"`
	SessionID string `json:"sessionId,omitempty"`
	Context   string `json:"context,omitempty"`
}

type Output struct {
	RequestID string                  `json:"requestId"`
	Type      models.Classification   `json:"type"`
	Response  string                  `json:"response"`
	ModelUsed string                  `json:"modelUsed"`
	Status    string                  `json:"status"`
	Command   *command.Descriptor     `json:"command,omitempty"`
	Result    *models.OperationResult `json:"result,omitempty"`
}
