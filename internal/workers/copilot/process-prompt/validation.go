package processprompt

import "xpilot-copilot/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"prompt", "model"},
		Properties: map[string]validation.Property{
			"prompt": {
				Type:        "string",
				Description: "Free-form user prompt",
				MinLength:   intPtr(1),
			},
			"model": {
				Type:        "string",
				Description: "Model id resolved through the provider registry",
				MinLength:   intPtr(1),
				MaxLength:   intPtr(200),
			},
			"sessionId": {
				Type:        "string",
				Description: "Chat session for rolling history and audit",
				MaxLength:   intPtr(200),
			},
			"context": {
				Type:        "string",
				Description: "Conversation context used when the session has no history",
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"requestId", "type", "response", "modelUsed", "status"},
		Properties: map[string]validation.Property{
			"requestId": {Type: "string", Description: "Request correlation id"},
			"type":      {Type: "string", Enum: []string{"Question", "Command"}},
			"response":  {Type: "string", Description: "Answer text or command result message"},
			"modelUsed": {Type: "string", Description: "Model that served the request"},
			"status":    {Type: "string", Enum: []string{"success", "error"}},
			"command":   {Type: "object", Description: "Parsed command, for Command prompts"},
			"result":    {Type: "object", Description: "Operation result, for Command prompts"},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
