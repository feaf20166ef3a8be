// Package mocks provides testify mocks for the ports interfaces.
package mocks

import (
	"context"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/pkg/api"
	"github.com/stretchr/testify/mock"
)

// MockProvider implements ports.ModelProvider for testing
type MockProvider struct {
	mock.Mock
	Desc domain.ProviderDescriptor
}

func NewProvider(name string, suggested ...string) *MockProvider {
	return &MockProvider{Desc: domain.ProviderDescriptor{
		Name:            name,
		Type:            domain.ProviderOpenAI,
		APIBase:         "http://" + name + ".invalid/v1",
		ModelsSuggested: suggested,
	}}
}

func (m *MockProvider) Name() string { return m.Desc.Name }

func (m *MockProvider) Descriptor() domain.ProviderDescriptor { return m.Desc }

func (m *MockProvider) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]api.ModelDescriptor), args.Error(1)
}

func (m *MockProvider) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*api.ChatResponse), args.Error(1)
}
