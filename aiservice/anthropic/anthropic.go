// Package anthropic backs the inference boundary with the Anthropic
// Messages API. It is an alternative to the OpenAI provider for
// deployments standardized on Claude models.
package anthropic

import (
	"context"
	"errors"
	"strings"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/missionai/agrimesh/core"
	"github.com/missionai/agrimesh/resilience"
)

// Options configure the Anthropic provider.
type Options struct {
	Model       anthropic.Model
	Temperature float64
	MaxTokens   int64
	APIKey      string
}

// Provider implements the inference boundary over the Anthropic client.
type Provider struct {
	client *anthropic.Client
	opts   Options
}

var _ core.InferenceService = (*Provider)(nil)

// New creates a Provider, reading the API key from the environment unless
// one is set in the options.
func New(optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}

	var clientOpts []option.RequestOption
	if opts.APIKey != "" {
		clientOpts = append(clientOpts, option.WithAPIKey(opts.APIKey))
	}
	client := anthropic.NewClient(clientOpts...)
	return &Provider{client: &client, opts: opts}
}

// NewFromClient creates a Provider from an existing client.
func NewFromClient(client *anthropic.Client, optFns ...func(o *Options)) *Provider {
	opts := defaultOptions()
	for _, fn := range optFns {
		fn(&opts)
	}
	return &Provider{client: client, opts: opts}
}

func defaultOptions() Options {
	return Options{
		Model:       anthropic.ModelClaude3_5Sonnet20241022,
		Temperature: 0.3,
		MaxTokens:   1024,
	}
}

// Infer runs the prompt against the Messages API and concatenates the text
// blocks of the reply.
func (p *Provider) Infer(ctx context.Context, prompt string) (string, error) {
	resp, err := p.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:       p.opts.Model,
		MaxTokens:   p.opts.MaxTokens,
		Temperature: anthropic.Float(p.opts.Temperature),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	})
	if err != nil {
		return "", classify(core.ServiceInference, err)
	}

	var b strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			b.WriteString(block.AsText().Text)
		}
	}
	if b.Len() == 0 {
		return "", resilience.NewTransientError(core.ServiceInference, resilience.CodeServerError,
			errors.New("empty model response"))
	}
	return b.String(), nil
}

// classify maps SDK errors onto the resilience layer's retryability model.
func classify(service string, err error) error {
	var apiErr *anthropic.Error
	if !errors.As(err, &apiErr) {
		return resilience.NewTransientError(service, resilience.CodeServerError, err)
	}
	switch {
	case apiErr.StatusCode == 429:
		return resilience.NewTransientError(service, resilience.CodeThrottled, err)
	case apiErr.StatusCode >= 500:
		return resilience.NewTransientError(service, resilience.CodeServerError, err)
	case apiErr.StatusCode == 401 || apiErr.StatusCode == 403:
		return resilience.NewPermanentError(service, resilience.CodeAccessDenied, err)
	case apiErr.StatusCode == 404:
		return resilience.NewPermanentError(service, resilience.CodeNotFound, err)
	default:
		return resilience.NewPermanentError(service, resilience.CodeValidation, err)
	}
}
