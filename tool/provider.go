package tool

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/sweetpotato0/chainsocket/pkg/logging"
)

// Provider supplies tools from an external source.
type Provider interface {
	// Tools returns the provider's current tool definitions.
	Tools(ctx context.Context) ([]*Tool, error)
	// Close releases resources owned by the provider.
	Close() error
	// ToolsChanged returns a channel that fires when the tool set is updated.
	// Providers that do not support live updates should return nil.
	ToolsChanged() <-chan struct{}
}

// providerSet tracks the providers feeding a registry and their watchers.
type providerSet struct {
	mu       sync.Mutex
	watchers map[Provider]context.CancelFunc
	loaded   []Provider
}

// AddProvider loads the provider's tools and keeps them current while the
// provider reports changes. Close stops the watchers and closes the providers.
func (r *Registry) AddProvider(ctx context.Context, provider Provider) error {
	if provider == nil {
		return errors.New("tool provider is nil")
	}
	if err := r.syncProvider(ctx, provider); err != nil {
		return err
	}

	set := &r.providers
	set.mu.Lock()
	set.loaded = append(set.loaded, provider)
	set.mu.Unlock()

	r.startWatcher(provider)
	return nil
}

func (r *Registry) syncProvider(ctx context.Context, provider Provider) error {
	tools, err := provider.Tools(ctx)
	if err != nil {
		return fmt.Errorf("load tools from provider: %w", err)
	}

	for _, t := range tools {
		if t == nil || t.Name == "" {
			continue
		}
		if err := r.Upsert(t); err != nil {
			return err
		}
	}
	return nil
}

func (r *Registry) startWatcher(provider Provider) {
	ch := provider.ToolsChanged()
	if ch == nil {
		return
	}

	set := &r.providers
	set.mu.Lock()
	if set.watchers == nil {
		set.watchers = make(map[Provider]context.CancelFunc)
	}
	if _, exists := set.watchers[provider]; exists {
		set.mu.Unlock()
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	set.watchers[provider] = cancel
	set.mu.Unlock()

	go r.watchProvider(ctx, provider, ch)
}

func (r *Registry) watchProvider(ctx context.Context, provider Provider, ch <-chan struct{}) {
	logger := logging.WithComponent("tool")
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-ch:
			if !ok {
				return
			}
			if err := r.syncProvider(ctx, provider); err != nil {
				logger.Warn("failed to refresh tools", "error", err)
			}
		}
	}
}

// Close stops provider watchers and closes every provider added to the registry.
func (r *Registry) Close() error {
	set := &r.providers
	set.mu.Lock()
	for p, cancel := range set.watchers {
		cancel()
		delete(set.watchers, p)
	}
	loaded := set.loaded
	set.loaded = nil
	set.mu.Unlock()

	var errs []error
	for _, p := range loaded {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
