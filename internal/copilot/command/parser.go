package command

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"strings"

	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/llm"
	"xpilot-copilot/internal/copilot/provider"
)

const commandInstruction = `You convert natural language into one structured JSON command for Business Central data operations.
Return only JSON, with no explanation or surrounding text.
Supported actions: Create, Update, Delete, Get, GetAll. Get reads one record by key, GetAll lists every record.

Entities and fields:

1. Customer:
- Customer_ID
- Full_Name
- Username
- Email
- Phone_Number
- Created_At

2. CopilotEntity:
- Entity_ID
- Customer_ID
- Title
- Description
- Status (one of Open, InProgress, Completed, Cancelled)
- Created_At

The JSON object has exactly these keys:
- "Action": one of the supported actions
- "Entity": Customer or CopilotEntity
- "Parameters": field/value pairs of the entity

Example:
{
  "Action": "Create",
  "Entity": "Customer",
  "Parameters": {
    "Customer_ID": "55",
    "Full_Name": "Jane Doe",
    "Email": "jane@example.com",
    "Phone_Number": "1234567890"
  }
}

Rules:
1. Customer_ID and Entity_ID are always strings, never numbers.
2. Fill every field of the entity: parse what the user gave and generate plausible values for the rest.
3. Update, Delete and Get always include the primary key of the entity (Customer_ID for Customer, Entity_ID for CopilotEntity).
4. Do not explain. Only return JSON.
`

const (
	reasonNoContent     = "No content extracted from LLM response."
	reasonMissingFields = "Parsed result was missing required fields."
	reasonInvalidJSON   = "Invalid JSON in model output"
)

// Parser asks a provider for a command and decodes its answer. It never fails outward.
type Parser struct {
	providers provider.Resolver
	completer llm.Completer
	logger    logger.Logger
}

func NewParser(providers provider.Resolver, completer llm.Completer, log logger.Logger) *Parser {
	return &Parser{
		providers: providers,
		completer: completer,
		logger:    log.With(map[string]interface{}{"component": "command-parser"}),
	}
}

// BuildPrompt appends the user command to the fixed instruction.
func BuildPrompt(prompt string) string {
	return commandInstruction + "\nUser command: " + prompt
}

func (p *Parser) Parse(ctx context.Context, prompt, modelID string) *Descriptor {
	prov, err := p.providers.Resolve(modelID)
	if err != nil {
		return p.fail(EntityNone, errors.Normalize(err), nil)
	}

	raw, err := p.completer.Complete(ctx, prov, BuildPrompt(prompt), llm.PurposeCommand)
	if err != nil {
		return p.fail(EntityNone, errors.Normalize(err), nil)
	}

	text, err := llm.Extract(raw, prov)
	if err != nil {
		reason := reasonNoContent
		if stderrors.Is(err, llm.ErrInvalidJSON) {
			reason = llm.ErrInvalidJSON.Error()
		}
		return p.fail(EntityUnknown,
			errors.NewExtractionFailureError(reason, err.Error()),
			Parameters{ParamRawResponse: String(string(raw))})
	}

	cleaned := CleanJSON(text)
	if cleaned == "" {
		return p.fail(EntityUnknown,
			errors.NewExtractionFailureError(reasonNoContent, "blank model output"),
			Parameters{ParamRawResponse: String(string(raw))})
	}

	var d Descriptor
	if err := json.Unmarshal([]byte(cleaned), &d); err != nil {
		return p.fail(EntityUnknown,
			errors.NewParseFailureError(fmt.Sprintf("%s: %s", reasonInvalidJSON, err.Error()), cleaned),
			Parameters{ParamRawJSON: String(cleaned)})
	}

	d.Action = strings.TrimSpace(d.Action)
	d.Entity = strings.TrimSpace(d.Entity)
	if d.Action == "" || d.Entity == "" {
		return p.fail(EntityUnknown,
			errors.NewParseFailureError(reasonMissingFields, cleaned),
			Parameters{ParamRawJSON: String(cleaned)})
	}
	if d.Parameters == nil {
		d.Parameters = Parameters{}
	}

	p.logger.Debug("Command parsed", map[string]interface{}{
		"model":  modelID,
		"action": d.Action,
		"entity": d.Entity,
	})
	return &d
}

func (p *Parser) fail(entity string, failure *errors.StandardError, extra Parameters) *Descriptor {
	p.logger.Warn("Command parsing failed", map[string]interface{}{
		"errorCode": string(failure.Code),
		"reason":    failure.Message,
		"details":   failure.Details,
	})
	return NewErrorDescriptor(entity, failure, extra)
}

// CleanJSON trims model output and strips a markdown code fence around a JSON object.
func CleanJSON(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return s
	}
	return s[start : end+1]
}
