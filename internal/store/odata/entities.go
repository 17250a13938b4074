package odata

import (
	"xpilot-copilot/internal/common/businesscentral"
	"xpilot-copilot/internal/common/logger"
	"xpilot-copilot/internal/copilot/mapper"
	"xpilot-copilot/internal/models"
)

const customerSchema = `{
	"type": "object",
	"properties": {
		"Customer_ID":  {"type": "string", "minLength": 1},
		"Full_Name":    {"type": "string", "maxLength": 100},
		"Username":     {"type": "string", "maxLength": 50},
		"Email":        {"type": "string", "format": "email"},
		"Phone_Number": {"type": "string", "maxLength": 30},
		"Created_At":   {"type": "string", "format": "date-time"}
	},
	"required": ["Customer_ID"]
}`

const copilotEntitySchema = `{
	"type": "object",
	"properties": {
		"Entity_ID":   {"type": "string", "minLength": 1},
		"Customer_ID": {"type": "string"},
		"Title":       {"type": "string", "maxLength": 100},
		"Description": {"type": "string", "maxLength": 2048},
		"Status":      {"enum": ["Open", "InProgress", "Completed", "Cancelled"]},
		"Created_At":  {"type": "string", "format": "date-time"}
	},
	"required": ["Entity_ID"]
}`

func NewCustomerStore(client *businesscentral.Client, entitySet string, log logger.Logger) (*Store[models.Customer], error) {
	return New(client, Entity[models.Customer]{
		Name:      models.EntityCustomer,
		EntitySet: entitySet,
		KeyField:  mapper.CustomerIDField,
		Key:       func(c models.Customer) string { return c.CustomerID },
		Schema:    customerSchema,
	}, log)
}

func NewCopilotEntityStore(client *businesscentral.Client, entitySet string, log logger.Logger) (*Store[models.CopilotEntity], error) {
	return New(client, Entity[models.CopilotEntity]{
		Name:      models.EntityCopilotEntity,
		EntitySet: entitySet,
		KeyField:  mapper.EntityIDField,
		Key:       func(e models.CopilotEntity) string { return e.EntityID },
		Schema:    copilotEntitySchema,
	}, log)
}
