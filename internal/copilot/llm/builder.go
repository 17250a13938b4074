// Package llm builds provider wire requests, extracts answers from provider envelopes and
// performs the bounded provider call.
package llm

import (
	"encoding/json"
	"fmt"
	"net/http"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/copilot/provider"
)

// Purpose selects sampling parameters and system instructions.
type Purpose string

const (
	PurposeClassification Purpose = "classification"
	PurposeCommand        Purpose = "command"
	PurposeChat           Purpose = "chat"
)

const anthropicVersion = "2023-06-01"

type profile struct {
	temperature float64
	maxTokens   int
	system      string
	// openAISystem sends system as a leading message for openai-style vendors
	openAISystem bool
	// anthropicTemperature sends temperature to anthropic-style vendors
	anthropicTemperature bool
}

var profiles = map[Purpose]profile{
	PurposeClassification: {
		temperature: 0,
		maxTokens:   10,
		system:      "You are a helpful assistant. Return only 'Command' or 'Question'.",
	},
	PurposeCommand: {
		temperature:          0.4,
		maxTokens:            1000,
		system:               "You are an AI assistant specialized in generating structured commands for Microsoft Dynamics 365 Business Central. Only return JSON.",
		openAISystem:         true,
		anthropicTemperature: true,
	},
	PurposeChat: {
		temperature: 0.7,
		maxTokens:   1000,
		system:      "You are a helpful assistant.",
	},
}

// anthropic-style requests carry one token budget for every purpose
const anthropicMaxTokens = 1000

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type openAIRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
}

type anthropicRequest struct {
	Model       string    `json:"model"`
	MaxTokens   int       `json:"max_tokens"`
	Messages    []message `json:"messages"`
	System      string    `json:"system,omitempty"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type genericRequest struct {
	Prompt string `json:"prompt"`
}

// Build returns the serialized body and headers for one provider call. It performs no I/O.
func Build(prompt string, p provider.Provider, purpose Purpose) ([]byte, http.Header, error) {
	prof, ok := profiles[purpose]
	if !ok {
		return nil, nil, fmt.Errorf("unknown request purpose %q", purpose)
	}

	headers := http.Header{}
	headers.Set("Content-Type", "application/json")

	var payload interface{}
	switch p.Family {
	case provider.FamilyOpenAI:
		msgs := make([]message, 0, 2)
		if prof.openAISystem {
			msgs = append(msgs, message{Role: "system", Content: prof.system})
		}
		msgs = append(msgs, message{Role: "user", Content: prompt})
		payload = openAIRequest{
			Model:       p.WireModel(),
			Messages:    msgs,
			Temperature: prof.temperature,
			MaxTokens:   prof.maxTokens,
		}
		setBearer(headers, p)

	case provider.FamilyAnthropic:
		req := anthropicRequest{
			Model:     p.WireModel(),
			MaxTokens: anthropicMaxTokens,
			Messages:  []message{{Role: "user", Content: prompt}},
			System:    prof.system,
		}
		if prof.anthropicTemperature {
			t := prof.temperature
			req.Temperature = &t
		}
		payload = req
		if p.HasSecret() {
			headers.Set("x-api-key", p.Secret)
		}
		headers.Set("anthropic-version", anthropicVersion)

	default:
		payload = genericRequest{Prompt: prompt}
		setBearer(headers, p)
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to marshal %s request: %w", p.Family, err)
	}
	return body, headers, nil
}

func setBearer(h http.Header, p provider.Provider) {
	if p.HasSecret() {
		h.Set("Authorization", "Bearer "+p.Secret)
	}
}

// RequireCredential fails keyed providers that have no secret.
func RequireCredential(p provider.Provider) error {
	if p.MissingCredential() {
		return errors.NewCredentialMissingError(p.Name)
	}
	return nil
}
