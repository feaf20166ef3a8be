package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/httpclient"
)

// Factory creates a ModelProvider for a descriptor, sharing the given HTTP client.
type Factory func(desc domain.ProviderDescriptor, client httpclient.HTTPClient) (ports.ModelProvider, error)

var (
	mu        sync.RWMutex
	factories = make(map[domain.ProviderType]Factory)
)

// Register makes a provider factory available to the system.
// 'type' is the key (e.g., "openai", "ollama").
func Register(providerType domain.ProviderType, f Factory) {
	mu.Lock()
	defer mu.Unlock()
	if _, exists := factories[providerType]; exists {
		panic(fmt.Sprintf("provider factory %s already registered", providerType))
	}
	factories[providerType] = f
}

// Get retrieves a factory to create a provider of a specific type.
func Get(providerType domain.ProviderType) (Factory, error) {
	mu.RLock()
	defer mu.RUnlock()
	f, ok := factories[providerType]
	if !ok {
		return nil, fmt.Errorf("provider factory not found for type: %s", providerType)
	}
	return f, nil
}

// Types lists registered provider types in sorted order.
func Types() []domain.ProviderType {
	mu.RLock()
	defer mu.RUnlock()
	out := make([]domain.ProviderType, 0, len(factories))
	for t := range factories {
		out = append(out, t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Build creates one provider per descriptor. An empty Type defaults to "openai", since
// most providers expose an OpenAI-compatible surface.
func Build(descs []domain.ProviderDescriptor, client httpclient.HTTPClient) ([]ports.ModelProvider, error) {
	providers := make([]ports.ModelProvider, 0, len(descs))
	for _, d := range descs {
		if d.Type == "" {
			d.Type = domain.ProviderOpenAI
		}
		f, err := Get(d.Type)
		if err != nil {
			return nil, &domain.ConfigError{Field: "providers." + d.Name + ".type", Reason: err.Error()}
		}
		p, err := f(d, client)
		if err != nil {
			return nil, fmt.Errorf("create provider %s: %w", d.Name, err)
		}
		providers = append(providers, p)
	}
	return providers, nil
}
