// internal/models/copilot.go
package models

// Classification is the outcome of intent classification.
type Classification string

const (
	ClassificationQuestion Classification = "Question"
	ClassificationCommand  Classification = "Command"
)

func (c Classification) IsCommand() bool {
	return c == ClassificationCommand
}

// PromptEnvelope is what the chat path sends to a provider.
type PromptEnvelope struct {
	Prompt    string `json:"prompt"`
	Context   string `json:"context,omitempty"`
	Knowledge string `json:"knowledge,omitempty"`
}

const (
	ChatStatusSuccess = "success"
	ChatStatusError   = "error"
)

type ChatResponse struct {
	Response  string `json:"response"`
	ModelUsed string `json:"modelUsed"`
	Status    string `json:"status"`
}

// OperationResult is returned by every entity operation.
type OperationResult struct {
	Success bool        `json:"success"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Code    string      `json:"code,omitempty"`
}

func Succeeded(message string, data interface{}) *OperationResult {
	return &OperationResult{Success: true, Message: message, Data: data}
}

func Failed(message, code string) *OperationResult {
	return &OperationResult{Success: false, Message: message, Code: code}
}

// DeletedRef is the data payload of a successful delete.
type DeletedRef struct {
	DeletedID string `json:"DeletedId"`
}
