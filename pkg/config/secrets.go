package config

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"cloud.google.com/go/secretmanager/apiv1/secretmanagerpb"
	"google.golang.org/api/option"
)

type secretSource interface {
	Access(ctx context.Context, name string) ([]byte, error)
	Close() error
}

var newSecretSource = func(ctx context.Context, opts ...option.ClientOption) (secretSource, error) {
	client, err := secretmanager.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("create secret manager client: %w", err)
	}
	return &secretManager{client: client}, nil
}

type secretManager struct {
	client *secretmanager.Client
}

func (s *secretManager) Access(ctx context.Context, name string) ([]byte, error) {
	resp, err := s.client.AccessSecretVersion(ctx, &secretmanagerpb.AccessSecretVersionRequest{Name: name})
	if err != nil {
		return nil, err
	}
	return resp.GetPayload().GetData(), nil
}

func (s *secretManager) Close() error {
	return s.client.Close()
}

// ClientOptions returns the Google Cloud client options shared by Secret
// Manager and Cloud Storage.
func (c *Config) ClientOptions() []option.ClientOption {
	var opts []option.ClientOption
	if c.GoogleCredentialsFile != "" {
		opts = append(opts, option.WithCredentialsFile(c.GoogleCredentialsFile))
	}
	return opts
}

func resolveSecrets(ctx context.Context, cfg *Config) error {
	return cfg.ResolveSecret(ctx, cfg.Provider)
}

// ResolveSecret fetches the API key for provider from Secret Manager when
// secrets are enabled and no key was set in the environment.
func (c *Config) ResolveSecret(ctx context.Context, provider string) error {
	if !c.Secrets.Enabled || c.APIKey(provider) != "" {
		return nil
	}
	if c.GCPProject == "" {
		return fmt.Errorf("secrets enabled but GOOGLE_CLOUD_PROJECT is not set")
	}

	source, err := newSecretSource(ctx, c.ClientOptions()...)
	if err != nil {
		return err
	}
	defer func() { _ = source.Close() }()

	secret := c.SecretName(provider)
	name := fmt.Sprintf("projects/%s/secrets/%s/versions/latest", c.GCPProject, secret)

	data, err := source.Access(ctx, name)
	if err != nil {
		return fmt.Errorf("access secret %s: %w", secret, err)
	}

	key := strings.TrimSpace(string(data))
	switch provider {
	case ProviderGroq:
		c.GroqAPIKey = key
	case ProviderGemini:
		c.GeminiAPIKey = key
	default:
		c.OpenAIAPIKey = key
	}

	slog.Debug("Loaded API key from Secret Manager", "provider", provider, "secret", secret)
	return nil
}

// SecretName returns the Secret Manager secret holding the key for provider.
func (c *Config) SecretName(provider string) string {
	switch provider {
	case ProviderGroq:
		return c.Secrets.GroqSecret
	case ProviderGemini:
		return c.Secrets.GeminiSecret
	default:
		return c.Secrets.OpenAISecret
	}
}
