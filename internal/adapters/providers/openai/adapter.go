package openai

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/nulzo/model-radar/internal/core/domain"
	"github.com/nulzo/model-radar/internal/core/ports"
	"github.com/nulzo/model-radar/internal/httpclient"
	"github.com/nulzo/model-radar/internal/registry"
	"github.com/nulzo/model-radar/pkg/api"
)

func init() {
	registry.Register(domain.ProviderOpenAI, NewAdapter)
}

// Adapter talks to any provider exposing the OpenAI-compatible /models and /chat/completions endpoints.
type Adapter struct {
	desc   domain.ProviderDescriptor
	client httpclient.HTTPClient
}

func NewAdapter(desc domain.ProviderDescriptor, client httpclient.HTTPClient) (ports.ModelProvider, error) {
	if desc.APIBase == "" {
		desc.APIBase = "https://api.openai.com/v1"
	}
	if client == nil {
		client = &http.Client{Timeout: 60 * time.Second}
	}
	return &Adapter{
		desc:   desc,
		client: client,
	}, nil
}

func (a *Adapter) Name() string {
	return a.desc.Name
}

func (a *Adapter) Descriptor() domain.ProviderDescriptor {
	return a.desc
}

// upstreamErrorResponse mirrors the standard OpenAI error shape
type upstreamErrorResponse struct {
	Error struct {
		Message string      `json:"message"`
		Type    string      `json:"type"`
		Code    interface{} `json:"code"`
	} `json:"error"`
}

func (a *Adapter) handleUpstreamError(err error) error {
	var upstreamErr *httpclient.UpstreamError
	if !errors.As(err, &upstreamErr) {
		return err
	}

	var apiErr upstreamErrorResponse
	if jsonErr := json.Unmarshal(upstreamErr.Body, &apiErr); jsonErr != nil || apiErr.Error.Message == "" {
		return domain.New(
			upstreamErr.StatusCode,
			"Upstream Error",
			string(upstreamErr.Body),
			domain.WithExtension("provider", a.desc.Name),
			domain.WithLog(err),
		)
	}

	return domain.New(
		upstreamErr.StatusCode,
		"Upstream Provider Error",
		apiErr.Error.Message,
		domain.WithExtension("provider", a.desc.Name),
		domain.WithExtension("upstream_code", apiErr.Error.Code),
		domain.WithExtension("upstream_type", apiErr.Error.Type),
		domain.WithLog(err),
	)
}

func (a *Adapter) headers() map[string]string {
	headers := map[string]string{}
	if key := a.desc.ResolvedKey(); key != "" {
		headers["Authorization"] = "Bearer " + key
	} else {
		// some OpenAI-compatible servers reject a missing header outright
		headers["Authorization"] = "Bearer EMPTY"
	}
	return headers
}

func (a *Adapter) url(path string) string {
	return fmt.Sprintf("%s/%s", strings.TrimRight(a.desc.APIBase, "/"), path)
}

func (a *Adapter) Models(ctx context.Context) ([]api.ModelDescriptor, error) {
	var resp api.ModelsResponse
	if err := httpclient.SendRequest(ctx, a.client, http.MethodGet, a.url("models"), a.headers(), nil, &resp); err != nil {
		return nil, a.handleUpstreamError(err)
	}
	return resp.Data, nil
}

func (a *Adapter) Chat(ctx context.Context, req *api.ChatRequest) (*api.ChatResponse, error) {
	var resp api.ChatResponse

	// ensure stream is false for this method
	req.Stream = false

	if err := httpclient.SendRequest(ctx, a.client, http.MethodPost, a.url("chat/completions"), a.headers(), req, &resp); err != nil {
		return nil, a.handleUpstreamError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("chat completion from %s has no choices", a.desc.Name)
	}

	return &resp, nil
}
