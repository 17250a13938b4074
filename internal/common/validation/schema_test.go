package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func intPtr(i int) *int { return &i }

var promptSchema = JSONSchema{
	Type: "object",
	Properties: map[string]Property{
		"prompt":    {Type: "string", MinLength: intPtr(1)},
		"model":     {Type: "string", MinLength: intPtr(1)},
		"sessionId": {Type: "string"},
		"mode":      {Type: "string", Enum: []string{"auto", "chat"}},
	},
	Required: []string{"prompt", "model"},
}

func TestValidateInput(t *testing.T) {
	tests := []struct {
		name       string
		input      map[string]interface{}
		wantValid  bool
		wantFields []string
	}{
		{
			name:      "valid",
			input:     map[string]interface{}{"prompt": "hi", "model": "gpt-4o"},
			wantValid: true,
		},
		{
			name:       "missing required and blank prompt",
			input:      map[string]interface{}{"prompt": "   "},
			wantFields: []string{"model", "prompt"},
		},
		{
			name:       "wrong type",
			input:      map[string]interface{}{"prompt": 12.0, "model": "m"},
			wantFields: []string{"prompt"},
		},
		{
			name:       "extra field and bad enum",
			input:      map[string]interface{}{"prompt": "p", "model": "m", "mode": "x", "other": true},
			wantFields: []string{"mode", "other"},
		},
		{
			name:       "nil required value",
			input:      map[string]interface{}{"prompt": nil, "model": "m"},
			wantFields: []string{"prompt"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := ValidateInput(tt.input, promptSchema)
			assert.Equal(t, tt.wantValid, res.Valid)
			var fields []string
			for _, e := range res.Errors {
				fields = append(fields, e.Field)
			}
			assert.Equal(t, tt.wantFields, fields)
		})
	}
}

func TestValidateActivityNaming(t *testing.T) {
	assert.NoError(t, ValidateActivityNaming("copilot.intent.classify"))
	assert.Error(t, ValidateActivityNaming("copilot-intent-classify"))
	assert.Error(t, ValidateActivityNaming("Copilot.Intent.Classify"))
}

func TestDocumentValidator(t *testing.T) {
	v, err := NewDocumentValidator(`{
		"type": "object",
		"properties": {
			"Email": {"type": "string", "format": "email"},
			"Status": {"enum": ["Open", "Completed"]}
		},
		"required": ["Status"]
	}`)
	require.NoError(t, err)

	res, err := v.Validate(map[string]interface{}{"Status": "Open", "Email": "a@b.co"})
	require.NoError(t, err)
	assert.True(t, res.Valid)

	res, err = v.Validate(map[string]interface{}{"Status": "Nope", "Email": "not-an-email"})
	require.NoError(t, err)
	assert.False(t, res.Valid)
	assert.Len(t, res.Errors, 2)
}

func TestNewDocumentValidator_BadSchema(t *testing.T) {
	_, err := NewDocumentValidator(`{"type": 42}`)
	assert.Error(t, err)
}
