package executecommand

import "xpilot-copilot/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"command"},
		Properties: map[string]validation.Property{
			"command": {
				Type:        "object",
				Description: "Command descriptor produced by copilot.command.parse",
				Properties: map[string]validation.Property{
					"Action":     {Type: "string"},
					"Entity":     {Type: "string"},
					"Parameters": {Type: "object"},
				},
			},
			"sessionId": {
				Type:        "string",
				Description: "Chat session, recorded on the audit event",
				MaxLength:   intPtr(200),
			},
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"success", "message"},
		Properties: map[string]validation.Property{
			"success": {Type: "boolean", Description: "Whether the operation succeeded"},
			"message": {Type: "string", Description: "User-facing result message"},
			"data":    {Type: "object", Description: "Operation payload"},
			"code":    {Type: "string", Description: "Failure code"},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
