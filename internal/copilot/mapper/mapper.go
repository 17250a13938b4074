// Package mapper turns command parameters into entity values.
package mapper

import (
	"strings"
	"time"

	"xpilot-copilot/internal/copilot/command"
	"xpilot-copilot/internal/models"
)

// Identifier fields of the registered entities.
const (
	CustomerIDField = "Customer_ID"
	EntityIDField   = "Entity_ID"
)

var timeLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// ParseTime accepts RFC 3339 and plain date or date-time text. Values without a zone are UTC.
func ParseTime(s string) (*time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, false
	}
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			u := t.UTC()
			return &u, true
		}
	}
	return nil, false
}

func text(p command.Parameters, key string) string {
	s, _ := p.Text(key)
	return s
}

func timestamp(p command.Parameters, key string) *time.Time {
	s, ok := p.Text(key)
	if !ok {
		return nil
	}
	t, _ := ParseTime(s)
	return t
}

// Customer maps Customer parameters. Unknown keys are ignored and unparseable dates are dropped.
var Customer = command.MapperFunc[models.Customer](func(p command.Parameters) models.Customer {
	return models.Customer{
		CustomerID:  text(p, CustomerIDField),
		FullName:    text(p, "Full_Name"),
		Username:    text(p, "Username"),
		Email:       text(p, "Email"),
		PhoneNumber: text(p, "Phone_Number"),
		CreatedAt:   timestamp(p, "Created_At"),
	}
})

// CopilotEntity maps CopilotEntity parameters. Status is normalized to the known vocabulary
// when it matches ignoring case and spacing.
var CopilotEntity = command.MapperFunc[models.CopilotEntity](func(p command.Parameters) models.CopilotEntity {
	return models.CopilotEntity{
		EntityID:    text(p, EntityIDField),
		CustomerID:  text(p, CustomerIDField),
		Title:       text(p, "Title"),
		Description: text(p, "Description"),
		Status:      normalizeStatus(text(p, "Status")),
		CreatedAt:   timestamp(p, "Created_At"),
	}
})

func normalizeStatus(s string) string {
	folded := strings.ReplaceAll(strings.ReplaceAll(s, " ", ""), "_", "")
	for _, known := range models.CopilotStatuses {
		if strings.EqualFold(folded, known) {
			return known
		}
	}
	return s
}
