// Package provider resolves model identifiers to immutable provider descriptors.
package provider

import "strings"

// Family selects request shape and response extraction.
type Family string

const (
	FamilyOpenAI    Family = "openai-style"
	FamilyAnthropic Family = "anthropic-style"
	FamilyGeneric   Family = "generic"
)

// FamilyOf maps a configured vendor name to its wire family.
func FamilyOf(vendor string) Family {
	switch strings.ToLower(strings.TrimSpace(vendor)) {
	case "openai", "mistral", "together", "groq":
		return FamilyOpenAI
	case "anthropic":
		return FamilyAnthropic
	default:
		return FamilyGeneric
	}
}

// Provider describes one configured model. Values are copied out of the registry and
// never mutated.
type Provider struct {
	Name        string `json:"name"`
	Vendor      string `json:"vendor"`
	Family      Family `json:"family"`
	ModelID     string `json:"modelId"`
	ModelName   string `json:"modelName"`
	EndpointURL string `json:"endpointUrl"`
	RequiresKey bool   `json:"requiresKey"`
	Secret      string `json:"-"`
}

// WireModel is the model name sent to the vendor.
func (p Provider) WireModel() string {
	if p.ModelName != "" {
		return p.ModelName
	}
	return p.ModelID
}

// HasSecret reports a non-blank resolved secret.
func (p Provider) HasSecret() bool {
	return strings.TrimSpace(p.Secret) != ""
}

// MissingCredential is true for keyed providers without a secret.
func (p Provider) MissingCredential() bool {
	return p.RequiresKey && !p.HasSecret()
}
