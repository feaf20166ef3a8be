package ports

import (
	"context"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/pkg/api"
)

// ModelProvider defines the contract every provider client implements.
type ModelProvider interface {
	Name() string
	Descriptor() domain.ProviderDescriptor

	// Models lists the provider's live models from its models endpoint.
	Models(ctx context.Context) ([]api.ModelDescriptor, error)
	// Chat issues a single non-streaming chat completion.
	Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error)
}
