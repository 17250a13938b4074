package classifyintent

import "xpilot-copilot/internal/models"

type Input struct {
	Prompt string `json:"prompt"`
	Model  string `json:"model"`
}

type Output struct {
	Type models.Classification `json:"type"`
}
