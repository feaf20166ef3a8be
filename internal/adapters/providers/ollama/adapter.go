package ollama

import (
	"github.com/nulzo/model-radar/internal/adapters/providers/openai"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/httpclient"
	"github.com/nulzo/model-radar/internal/registry"
)

func init() {
	registry.Register(domain.ProviderOllama, NewAdapter)
}

// NewAdapter creates an Ollama adapter on top of Ollama's OpenAI-compatible /v1 surface.
// Ollama providers are always local, so they are never benchmarked for real.
func NewAdapter(desc domain.ProviderDescriptor, client httpclient.HTTPClient) (ports.ModelProvider, error) {
	if desc.APIBase == "" {
		desc.APIBase = "http://localhost:11434/v1"
	}
	desc.Local = true
	return openai.NewAdapter(desc, client)
}
