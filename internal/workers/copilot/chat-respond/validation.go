package chatrespond

import "xpilot-copilot/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"prompt", "model"},
		Properties: map[string]validation.Property{
			"prompt": {
				Type:        "string",
				Description: "Question to answer",
				MinLength:   intPtr(1),
			},
			"model": {
				Type:        "string",
				Description: "Model id resolved through the provider registry",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
			"context": {
				Type:        "string",
				Description: "Conversation context used when the session has no history",
			},
			"sessionId": {
				Type:        "string",
				Description: "Chat session for rolling history",
				MaxLength:   intPtr(200),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"response", "modelUsed", "status"},
		Properties: map[string]validation.Property{
			"response":  {Type: "string", Description: "Answer text or user-safe failure message"},
			"modelUsed": {Type: "string", Description: "Model that produced the answer"},
			"status":    {Type: "string", Enum: []string{"success", "error"}},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
