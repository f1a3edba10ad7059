package providers

import (
	"log/slog"
	"time"

	"github.com/citypulse/citypulse/app/cfg"
	"github.com/citypulse/citypulse/app/database"
)

// Registry holds the assembled provider set in registration order.
type Registry struct {
	providers []Provider
}

func NewRegistry() *Registry {
	return &Registry{}
}

func (r *Registry) Add(p Provider) {
	r.providers = append(r.providers, p)
}

// Enabled returns enabled providers in registration order.
func (r *Registry) Enabled() []Provider {
	enabled := make([]Provider, 0, len(r.providers))
	for _, p := range r.providers {
		if p.Enabled() {
			enabled = append(enabled, p)
		}
	}
	return enabled
}

// Names lists the names of enabled providers.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.providers))
	for _, p := range r.Enabled() {
		names = append(names, p.Name())
	}
	return names
}

// BuildRegistry assembles concrete adapters from loaded provider configs,
// wraps each in the response cache, and skips providers whose required
// credential is absent.
func BuildRegistry(configCache *ConfigCache, cache database.ResponseCache, c *cfg.Cfg) *Registry {
	registry := NewRegistry()
	timeout := time.Duration(c.RequestTimeoutMs) * time.Millisecond

	for _, name := range configCache.Names() {
		config, err := configCache.GetConfig(name)
		if err != nil {
			continue
		}

		fetcher := NewFetcher(name, timeout, c.UserAgent)

		var adapter Provider
		switch name {
		case "citylife":
			if c.CityLifeAPIKey == "" {
				slog.Warn("Provider disabled: missing API key", "provider", name)
				continue
			}
			adapter = NewCityLife(config, fetcher, c.CityLifeAPIKey)
		case "museums":
			if c.MuseumsAPIKey == "" {
				slog.Warn("Provider disabled: missing API key", "provider", name)
				continue
			}
			adapter = NewMuseums(config, fetcher, c.MuseumsAPIKey)
		case "eventfeed":
			adapter = NewEventFeed(config, fetcher)
		default:
			slog.Warn("Unknown provider in configuration, skipping", "provider", name)
			continue
		}

		ttl := time.Duration(config.Settings.CacheTTL) * time.Minute
		if config.Settings.CacheTTL == 0 {
			ttl = time.Duration(c.CacheTTLMinutes) * time.Minute
		}

		registry.Add(NewCached(adapter, cache, ttl))
		slog.Debug("Provider registered", "provider", name, "cache_ttl", ttl.String())
	}

	return registry
}
