package llm

import (
	"encoding/json"
	stderrors "errors"
	"strings"

	"xpilot-copilot/internal/copilot/provider"
)

// Extraction sentinels. Their text is the display form used by Answer.
var (
	ErrInvalidJSON  = stderrors.New("Failed to parse LLM response JSON.")
	ErrNoContent    = stderrors.New("No content")
	ErrNoCompletion = stderrors.New("No completion")
	ErrNoAnswer     = stderrors.New("No valid answer found in LLM response.")
)

// genericAnswerLimit bounds generic-family display answers, in runes.
const genericAnswerLimit = 500

type openAIEnvelope struct {
	Choices []struct {
		Message map[string]json.RawMessage `json:"message"`
	} `json:"choices"`
}

type anthropicEnvelope struct {
	Completion *string `json:"completion"`
	Content    []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

// Extract returns the raw answer text carried by a provider response body.
func Extract(raw []byte, p provider.Provider) (string, error) {
	if !json.Valid(raw) {
		return "", ErrInvalidJSON
	}

	switch p.Family {
	case provider.FamilyOpenAI:
		var env openAIEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return "", ErrNoAnswer
		}
		if len(env.Choices) == 0 {
			return "", ErrNoContent
		}
		content, ok := env.Choices[0].Message["content"]
		if !ok {
			return "", ErrNoAnswer
		}
		var text *string
		if err := json.Unmarshal(content, &text); err != nil {
			return "", ErrNoAnswer
		}
		if text == nil {
			return "", ErrNoContent
		}
		return *text, nil

	case provider.FamilyAnthropic:
		var env anthropicEnvelope
		if err := json.Unmarshal(raw, &env); err != nil {
			return "", ErrNoAnswer
		}
		if env.Completion != nil {
			return *env.Completion, nil
		}
		var b strings.Builder
		found := false
		for _, block := range env.Content {
			if block.Type == "text" {
				b.WriteString(block.Text)
				found = true
			}
		}
		if !found {
			return "", ErrNoCompletion
		}
		return b.String(), nil

	default:
		return string(raw), nil
	}
}

// Answer is the display form of a response body and never fails.
func Answer(raw []byte, p provider.Provider) string {
	text, err := Extract(raw, p)
	if err != nil {
		return err.Error()
	}
	if p.Family != provider.FamilyOpenAI && p.Family != provider.FamilyAnthropic {
		return truncateRunes(text, genericAnswerLimit)
	}
	return text
}

func truncateRunes(s string, limit int) string {
	r := []rune(s)
	if len(r) <= limit {
		return s
	}
	return string(r[:limit]) + "..."
}
