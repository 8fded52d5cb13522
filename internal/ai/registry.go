package ai

import (
	"errors"
	"fmt"
	"sync"

	"github.com/DisaAst/chathub-bot/internal/logger"
)

var ErrProviderNotFound = errors.New("provider not found")

// Registry maps provider names to backends and resolves provider:model
// references for callers.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]Provider
	logger    logger.Logger
}

func NewRegistry(log logger.Logger) *Registry {
	return &Registry{
		providers: make(map[string]Provider),
		logger:    log,
	}
}

func (r *Registry) Register(name string, provider Provider) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = provider
}

func (r *Registry) Get(name string) (Provider, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	if provider, ok := r.providers[name]; ok {
		return provider, nil
	}
	return nil, fmt.Errorf("%w: %s", ErrProviderNotFound, name)
}

func (r *Registry) Providers() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	return names
}

// Resolve splits a provider:model spec and looks the provider up.
func (r *Registry) Resolve(spec string) (Provider, string, error) {
	providerName, modelName, err := ParseModelSpec(spec)
	if err != nil {
		return nil, "", err
	}
	provider, err := r.Get(providerName)
	if err != nil {
		return nil, "", err
	}
	return provider, modelName, nil
}
