package app

import (
	"errors"

	"ideaforge/internal/llm"
	"ideaforge/internal/storage"
	"ideaforge/pkg/config"
)

type Service struct {
	cfg      *config.Config
	provider string
	factory  llm.Factory
	local    *storage.LocalStorage
	history  *storage.History
	remote   *storage.GCSStorage
}

type ServiceOptions struct {
	Config   *config.Config
	Provider string
	Factory  llm.Factory
	Local    *storage.LocalStorage
	History  *storage.History
	Remote   *storage.GCSStorage
}

func NewService(opts ServiceOptions) *Service {
	provider := opts.Provider
	if provider == "" && opts.Config != nil {
		provider = opts.Config.Provider
	}
	return &Service{
		cfg:      opts.Config,
		provider: provider,
		factory:  opts.Factory,
		local:    opts.Local,
		history:  opts.History,
		remote:   opts.Remote,
	}
}

func (s *Service) Config() *config.Config       { return s.cfg }
func (s *Service) Provider() string             { return s.provider }
func (s *Service) Local() *storage.LocalStorage { return s.local }
func (s *Service) History() *storage.History    { return s.history }
func (s *Service) Remote() *storage.GCSStorage  { return s.remote }
func (s *Service) Model() string                { return s.cfg.Model(s.provider) }

// Credential returns override when set, otherwise the configured key for the
// active provider.
func (s *Service) Credential(override string) string {
	if override != "" {
		return override
	}
	return s.cfg.APIKey(s.provider)
}

func (s *Service) NewClient(credential string) (llm.Client, error) {
	if s.factory == nil {
		return nil, errors.New("no text-generation provider configured")
	}
	return s.factory(credential)
}

func (s *Service) Close() error {
	if s.remote != nil {
		return s.remote.Close()
	}
	return nil
}
