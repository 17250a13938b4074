package parsecommand

import "xpilot-copilot/internal/common/validation"

func GetInputSchema() validation.JSONSchema {
	return validation.JSONSchema{
		Type:     "object",
		Required: []string{"prompt", "model"},
		Properties: map[string]validation.Property{
			"prompt": {
				Type:        "string",
				Description: "Natural-language command",
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
		Required: []string{"command", "parsed"},
		Properties: map[string]validation.Property{
			"command": {
				Type:        "object",
				Description: "Command descriptor; Action is \"error\" when parsing failed",
				Required:    []string{"Action", "Entity", "Parameters"},
			},
			"parsed": {
				Type:        "boolean",
				Description: "False when command holds an error descriptor",
			},
		},
	}
}

func intPtr(i int) *int {
	return &i
}
