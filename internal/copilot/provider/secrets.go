package provider

import (
	"os"
	"strings"
)

// SecretStore resolves an api key reference to its secret.
type SecretStore interface {
	Lookup(ref string) (string, bool)
}

// ConfigSecretStore reads llm.api_keys first and then LLM_API_KEY_<REF> from the
// environment.
type ConfigSecretStore struct {
	keys   map[string]string
	getenv func(string) string
}

func NewConfigSecretStore(keys map[string]string) *ConfigSecretStore {
	folded := make(map[string]string, len(keys))
	for k, v := range keys {
		folded[strings.ToLower(k)] = v
	}
	return &ConfigSecretStore{keys: folded, getenv: os.Getenv}
}

func (s *ConfigSecretStore) Lookup(ref string) (string, bool) {
	if ref == "" {
		return "", false
	}
	if v := strings.TrimSpace(s.keys[strings.ToLower(ref)]); v != "" {
		return v, true
	}
	if v := strings.TrimSpace(s.getenv(EnvKey(ref))); v != "" {
		return v, true
	}
	return "", false
}

// EnvKey is the environment variable consulted for ref.
func EnvKey(ref string) string {
	var b strings.Builder
	b.WriteString("LLM_API_KEY_")
	for _, r := range strings.ToUpper(ref) {
		if (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		} else {
			b.WriteByte('_')
		}
	}
	return b.String()
}
