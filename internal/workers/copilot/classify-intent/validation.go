package classifyintent

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
		},
		AdditionalProperties: true,
	}
}

func GetOutputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"type"},
		Properties: map[string]validation.Property{
			"type": {
				Type:        "string",
				Description: "Prompt classification",
				Enum:        []string{"Question", "Command"},
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
