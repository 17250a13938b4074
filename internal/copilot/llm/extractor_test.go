package llm

import (
	"strings"
	"testing"

	"xpilot-copilot/internal/copilot/provider"

	"github.com/stretchr/testify/assert"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		p       provider.Provider
		want    string
		wantErr error
	}{
		{"openai content", `{"choices":[{"message":{"role":"assistant","content":"Command"}}]}`, openAIProvider, "Command", nil},
		{"openai empty choices", `{"choices":[]}`, openAIProvider, "", ErrNoContent},
		{"openai missing choices", `{"id":"x"}`, openAIProvider, "", ErrNoContent},
		{"openai null content", `{"choices":[{"message":{"content":null}}]}`, openAIProvider, "", ErrNoContent},
		{"openai no content key", `{"choices":[{"message":{"role":"assistant"}}]}`, openAIProvider, "", ErrNoAnswer},
		{"openai invalid json", `not json`, openAIProvider, "", ErrInvalidJSON},
		{"anthropic completion", `{"completion":"Question"}`, anthropicProvider, "Question", nil},
		{"anthropic content blocks", `{"content":[{"type":"text","text":"Hel"},{"type":"text","text":"lo"}]}`, anthropicProvider, "Hello", nil},
		{"anthropic nothing", `{"id":"msg"}`, anthropicProvider, "", ErrNoCompletion},
		{"anthropic null completion", `{"completion":null}`, anthropicProvider, "", ErrNoCompletion},
		{"generic body", `{"response":"hi"}`, genericProvider, `{"response":"hi"}`, nil},
		{"generic invalid", `<html>`, genericProvider, "", ErrInvalidJSON},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Extract([]byte(tt.body), tt.p)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestAnswer_DisplayStrings(t *testing.T) {
	assert.Equal(t, "No content", Answer([]byte(`{"choices":[]}`), openAIProvider))
	assert.Equal(t, "No completion", Answer([]byte(`{}`), anthropicProvider))
	assert.Equal(t, "Failed to parse LLM response JSON.", Answer([]byte(`{`), openAIProvider))
	assert.Equal(t, "No valid answer found in LLM response.", Answer([]byte(`{"choices":[{"message":{}}]}`), openAIProvider))
	assert.Equal(t, "Hi there", Answer([]byte(`{"choices":[{"message":{"content":"Hi there"}}]}`), openAIProvider))
}

func TestAnswer_GenericTruncation(t *testing.T) {
	long := `"` + strings.Repeat("é", 600) + `"`
	got := Answer([]byte(long), genericProvider)

	assert.True(t, strings.HasSuffix(got, "..."))
	assert.Equal(t, 503, len([]rune(got)))

	short := `{"a":1}`
	assert.Equal(t, short, Answer([]byte(short), genericProvider))
}
