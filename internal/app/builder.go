package app

import (
	"context"
	"fmt"

	"ideaforge/internal/llm"
	"ideaforge/internal/llm/gemini"
	"ideaforge/internal/llm/groq"
	"ideaforge/internal/llm/openai"
	"ideaforge/internal/storage"
	"ideaforge/pkg/config"
	"ideaforge/pkg/prompts"
)

type BuildOptions struct {
	// Provider overrides cfg.Provider when set.
	Provider string
	// Remote connects to GCS when gcs.enabled is set.
	Remote bool
}

func BuildService(ctx context.Context, cfg *config.Config, opts BuildOptions) (*Service, error) {
	p, err := prompts.Load()
	if err != nil {
		return nil, err
	}

	provider := opts.Provider
	if provider == "" {
		provider = cfg.Provider
	}

	factory, err := NewFactory(ctx, cfg, provider, p)
	if err != nil {
		return nil, err
	}
	// Load only resolves the secret of the configured provider.
	if err := cfg.ResolveSecret(ctx, provider); err != nil {
		return nil, err
	}

	localStorage := storage.NewLocalStorage(cfg.Output.Dir)
	history := storage.NewHistory(localStorage.HistoryPath(), cfg.Output.HistorySize)

	var remote *storage.GCSStorage
	if opts.Remote && cfg.GCS.Enabled {
		remote, err = storage.NewGCSStorage(ctx, cfg.GCSBucket, cfg.GCS.Prefix, cfg.ClientOptions()...)
		if err != nil {
			return nil, err
		}
	}

	return NewService(ServiceOptions{
		Config:   cfg,
		Provider: provider,
		Factory:  factory,
		Local:    localStorage,
		History:  history,
		Remote:   remote,
	}), nil
}

// NewFactory returns a constructor for clients of the given provider. Each
// client is bound to the credential of a single request.
func NewFactory(ctx context.Context, cfg *config.Config, provider string, p *prompts.Prompts) (llm.Factory, error) {
	switch provider {
	case config.ProviderOpenAI:
		return func(credential string) (llm.Client, error) {
			completer := openai.NewClient(credential, openai.Config{
				BaseURL:     cfg.OpenAI.BaseURL,
				Model:       cfg.OpenAI.Model,
				Temperature: cfg.Temperature(config.ProviderOpenAI),
				Timeout:     cfg.OpenAI.Timeout,
				MaxRetries:  cfg.OpenAI.MaxRetries,
			})
			return llm.NewPromptClient(completer, p), nil
		}, nil

	case config.ProviderGroq:
		return func(credential string) (llm.Client, error) {
			completer, err := groq.NewClient(credential, groq.Config{
				BaseURL:     cfg.Groq.BaseURL,
				Model:       cfg.Groq.Model,
				Temperature: cfg.Temperature(config.ProviderGroq),
			})
			if err != nil {
				return nil, err
			}
			return llm.NewPromptClient(completer, p), nil
		}, nil

	case config.ProviderGemini:
		return func(credential string) (llm.Client, error) {
			completer, err := gemini.NewClient(ctx, credential, gemini.Config{
				BaseURL:     cfg.Gemini.BaseURL,
				Model:       cfg.Gemini.Model,
				Temperature: cfg.Temperature(config.ProviderGemini),
			})
			if err != nil {
				return nil, err
			}
			return llm.NewPromptClient(completer, p), nil
		}, nil

	default:
		return nil, fmt.Errorf("unknown provider %q", provider)
	}
}
