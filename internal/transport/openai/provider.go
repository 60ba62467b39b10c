// Package openai reports the state of the OpenAI-compatible AI provider.
package openai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/lightsoft-dev/light-archive/internal/domain"
)

// Status messages returned by Provider.Status.
const (
	MessageMissing    = "OPENAI_API_KEY가 설정되지 않았습니다"
	MessageMalformed  = "OPENAI_API_KEY 형식이 올바르지 않습니다"
	MessageConfigured = "API Key가 설정되어 있습니다"
)

// Config holds the provider settings.
type Config struct {
	APIKey  string
	BaseURL string
}

// Status reports whether a usable key is configured.
type Status struct {
	Configured bool
	Message    string
}

// Provider wraps an OpenAI-compatible client.
type Provider struct {
	client *openai.Client
	status Status
}

// NewProvider creates a provider. The key is checked for the sk- prefix only;
// no request is made.
func NewProvider(cfg Config) *Provider {
	p := &Provider{status: keyStatus(cfg.APIKey)}
	if p.status.Configured {
		clientCfg := openai.DefaultConfig(cfg.APIKey)
		if cfg.BaseURL != "" {
			clientCfg.BaseURL = cfg.BaseURL
		}
		p.client = openai.NewClientWithConfig(clientCfg)
	}
	return p
}

// Status returns the key status.
func (p *Provider) Status() Status { return p.status }

// HealthCheck verifies API reachability via ListModels (free endpoint).
func (p *Provider) HealthCheck(ctx context.Context) error {
	if p.client == nil {
		return fmt.Errorf("%s: %w", p.status.Message, domain.ErrAIProviderError)
	}
	if _, err := p.client.ListModels(ctx); err != nil {
		return parseAPIError(err)
	}
	return nil
}

func keyStatus(key string) Status {
	switch {
	case key == "":
		return Status{Message: MessageMissing}
	case !strings.HasPrefix(key, "sk-"):
		return Status{Message: MessageMalformed}
	default:
		return Status{Configured: true, Message: MessageConfigured}
	}
}

// parseAPIError wraps provider failures with domain.ErrAIProviderError.
func parseAPIError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		return fmt.Errorf("ai provider error %d: %s: %w", apiErr.HTTPStatusCode, apiErr.Message, domain.ErrAIProviderError)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		return fmt.Errorf("ai provider error %d: %w", reqErr.HTTPStatusCode, domain.ErrAIProviderError)
	}
	return fmt.Errorf("list models: %w: %w", err, domain.ErrAIProviderError)
}
