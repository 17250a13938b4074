package provider

import (
	"fmt"
	"strings"

	"xpilot-copilot/internal/common/config"
	"xpilot-copilot/internal/common/errors"
	"xpilot-copilot/internal/common/logger"
)

// Resolver is what the classifier, parser and responder depend on.
type Resolver interface {
	Resolve(modelID string) (Provider, error)
}

// Registry is built once at startup and is read-only afterwards.
type Registry struct {
	byID      map[string]Provider
	providers []Provider
}

var _ Resolver = (*Registry)(nil)

// NewRegistry resolves secrets and indexes providers by case-folded model id.
// Unresolved secrets are kept blank so the provider fails per request.
func NewRegistry(cfgs []config.LLMProviderConfig, secrets SecretStore, log logger.Logger) (*Registry, error) {
	r := &Registry{
		byID:      make(map[string]Provider, len(cfgs)),
		providers: make([]Provider, 0, len(cfgs)),
	}

	for i, c := range cfgs {
		key := foldID(c.Model)
		if key == "" {
			return nil, fmt.Errorf("provider %d (%s): model id is required", i, c.Name)
		}
		if prev, dup := r.byID[key]; dup {
			return nil, fmt.Errorf("provider %q: model id %q already registered by %q", c.Name, c.Model, prev.Name)
		}

		p := Provider{
			Name:        c.Name,
			Vendor:      c.Provider,
			Family:      FamilyOf(c.Provider),
			ModelID:     strings.TrimSpace(c.Model),
			ModelName:   strings.TrimSpace(c.ModelName),
			EndpointURL: strings.TrimSpace(c.BaseURL),
			RequiresKey: c.RequiresKey,
		}
		if p.RequiresKey && secrets != nil {
			if secret, ok := secrets.Lookup(c.APIKey); ok {
				p.Secret = secret
			}
		}
		if p.MissingCredential() && log != nil {
			log.Warn("LLM provider has no API key", map[string]interface{}{
				"provider": p.Name,
				"model":    p.ModelID,
				"keyRef":   c.APIKey,
				"envKey":   EnvKey(c.APIKey),
			})
		}

		r.byID[key] = p
		r.providers = append(r.providers, p)
	}

	return r, nil
}

// Resolve returns the provider registered for modelID, ignoring case.
func (r *Registry) Resolve(modelID string) (Provider, error) {
	p, ok := r.byID[foldID(modelID)]
	if !ok {
		return Provider{}, errors.NewProviderNotFoundError(modelID)
	}
	return p, nil
}

// Providers returns a copy in configuration order.
func (r *Registry) Providers() []Provider {
	out := make([]Provider, len(r.providers))
	copy(out, r.providers)
	return out
}

func foldID(id string) string {
	return strings.ToLower(strings.TrimSpace(id))
}
