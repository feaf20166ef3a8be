package domain

import (
	"os"
	"strings"
)

// ProviderType selects the client factory used to talk to a provider.
type ProviderType string

const (
	ProviderOpenAI ProviderType = "openai"
	ProviderOllama ProviderType = "ollama"
)

// ProviderDescriptor is the immutable configuration of a single model provider.
// It is loaded once at process start and never mutated afterwards.
type ProviderDescriptor struct {
	Name            string       `json:"name" yaml:"name" mapstructure:"name" validate:"required"`
	Type            ProviderType `json:"type" yaml:"type" mapstructure:"type" validate:"omitempty,oneof=openai ollama"`
	APIBase         string       `json:"api_base" yaml:"api_base" mapstructure:"api_base" validate:"required,url"`
	APIKey          string       `json:"-" yaml:"api_key" mapstructure:"api_key"`
	ModelsSuggested []string     `json:"models_suggested" yaml:"models_suggested" mapstructure:"models_suggested"`
	Local           bool         `json:"local" yaml:"local" mapstructure:"local"`
}

// IsLocal reports whether the provider runs offline (e.g. Ollama on localhost).
// Local providers are never used for real benchmark execution.
func (p ProviderDescriptor) IsLocal() bool {
	return p.Local || p.Type == ProviderOllama
}

// KeyEnvVar returns the conventional environment variable holding the provider key,
// e.g. "Together AI" -> "TOGETHER_AI_API_KEY".
func (p ProviderDescriptor) KeyEnvVar() string {
	name := strings.ToUpper(strings.TrimSpace(p.Name))
	name = strings.NewReplacer(" ", "_", "-", "_", ".", "_").Replace(name)
	return name + "_API_KEY"
}

// ResolvedKey returns the configured key, falling back to KeyEnvVar.
// A key of the form "ENV:NAME" is read from the NAME environment variable.
func (p ProviderDescriptor) ResolvedKey() string {
	if name, ok := strings.CutPrefix(p.APIKey, "ENV:"); ok {
		return os.Getenv(name)
	}
	if p.APIKey != "" {
		return p.APIKey
	}
	return os.Getenv(p.KeyEnvVar())
}

// HasKey reports whether a non-empty API key can be resolved.
func (p ProviderDescriptor) HasKey() bool {
	return strings.TrimSpace(p.ResolvedKey()) != ""
}
