package openai_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nulzo/model-radar/internal/adapters/providers/openai"
	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newAdapter(t *testing.T, srv *httptest.Server) *openai.Adapter {
	t.Helper()
	p, err := openai.NewAdapter(domain.ProviderDescriptor{
		Name:    "OpenAI Test",
		APIBase: srv.URL + "/v1",
		APIKey:  "test-key",
	}, srv.Client())
	require.NoError(t, err)
	return p.(*openai.Adapter)
}

func TestOpenAIChat(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "POST", r.Method)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{
			"id": "chatcmpl-123",
			"model": "gpt-3.5-turbo-0613",
			"choices": [{
				"index": 0,
				"message": {"role": "assistant", "content": "Hello there!"},
				"finish_reason": "stop"
			}],
			"usage": {"prompt_tokens": 9, "completion_tokens": 12, "total_tokens": 21}
		}`))
	}))
	defer server.Close()

	adapter := newAdapter(t, server)

	resp, err := adapter.Chat(context.Background(), api.UserPrompt("gpt-3.5-turbo", "Hi", 100))

	require.NoError(t, err)
	assert.Equal(t, "Hello there!", resp.Content())
	assert.Equal(t, 21, resp.Usage.TotalTokens)
	assert.Equal(t, "OpenAI Test", adapter.Name())
}

func TestOpenAIModels_Shapes(t *testing.T) {
	tests := []struct {
		name string
		body string
		ids  []string
	}{
		{
			name: "object with data",
			body: `{"object":"list","data":[{"id":"gpt-4o","created":1715367049,"owned_by":"system"},{"id":"gpt-4o-mini"}]}`,
			ids:  []string{"gpt-4o", "gpt-4o-mini"},
		},
		{
			name: "bare array of strings",
			body: `["llama-3.1-8b-instant", "mixtral-8x7b"]`,
			ids:  []string{"llama-3.1-8b-instant", "mixtral-8x7b"},
		},
		{
			name: "bare array of objects",
			body: `[{"id":"gemini-1.5-flash"}]`,
			ids:  []string{"gemini-1.5-flash"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/v1/models", r.URL.Path)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			models, err := newAdapter(t, server).Models(context.Background())
			require.NoError(t, err)

			ids := make([]string, 0, len(models))
			for _, m := range models {
				ids = append(ids, m.ID)
			}
			assert.Equal(t, tt.ids, ids)
		})
	}
}

func TestOpenAIModels_UpstreamErrorIsProblem(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"bad key","type":"invalid_request_error","code":"invalid_api_key"}}`))
	}))
	defer server.Close()

	_, err := newAdapter(t, server).Models(context.Background())

	var problem *domain.Problem
	require.True(t, errors.As(err, &problem))
	assert.Equal(t, http.StatusUnauthorized, problem.Status)
	assert.Equal(t, "bad key", problem.Detail)
}

func TestOpenAIModels_MalformedBody(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"object":"list"}`))
	}))
	defer server.Close()

	_, err := newAdapter(t, server).Models(context.Background())
	assert.Error(t, err)
}
