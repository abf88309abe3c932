package llm

import (
	"context"
	"time"

	"github.com/rotisserie/eris"

	"github.com/llmpulse/radar/pkg/chatcompat"
	"github.com/llmpulse/radar/pkg/gemini"
)

// VendorConfig holds per-vendor transport settings. APIKey is resolved at
// startup from config and never logged.
type VendorConfig struct {
	URL     string  `mapstructure:"url"`
	APIKey  string  `mapstructure:"api_key"`
	RateRPS float64 `mapstructure:"rate_rps"`
}

// RegistryConfig wires the registry from application config.
type RegistryConfig struct {
	Vendors      map[string]VendorConfig
	GeminiAPIKey string
	Timeout      time.Duration
	Cores        []Core
}

// Registry maps core ids to ready clients. One chatcompat client is built
// per configured vendor and shared by every core on that vendor.
type Registry struct {
	cores   []Core
	byID    map[string]Core
	vendors map[string]chatcompat.Client
	gemini  gemini.Client
}

// NewRegistry builds clients for every configured vendor. The Gemini client
// is only created when an API key is present; cores on unconfigured vendors
// stay listed but fail at call time.
func NewRegistry(ctx context.Context, cfg RegistryConfig) (*Registry, error) {
	cores := cfg.Cores
	if len(cores) == 0 {
		cores = DefaultCores()
	}

	r := &Registry{
		cores:   cores,
		byID:    make(map[string]Core, len(cores)),
		vendors: make(map[string]chatcompat.Client, len(cfg.Vendors)),
	}
	for _, core := range cores {
		r.byID[core.ID] = core
	}

	for vendor, vc := range cfg.Vendors {
		if vc.URL == "" {
			return nil, eris.Errorf("llm: vendor %q has no endpoint URL", vendor)
		}
		opts := []chatcompat.Option{}
		if cfg.Timeout > 0 {
			opts = append(opts, chatcompat.WithTimeout(cfg.Timeout))
		}
		if vc.RateRPS > 0 {
			opts = append(opts, chatcompat.WithRateLimit(vc.RateRPS, 1))
		}
		r.vendors[vendor] = chatcompat.NewClient(vc.URL, vc.APIKey, opts...)
	}

	if cfg.GeminiAPIKey != "" {
		gc, err := gemini.NewClient(ctx, cfg.GeminiAPIKey)
		if err != nil {
			return nil, eris.Wrap(err, "llm: init gemini client")
		}
		r.gemini = gc
	}

	return r, nil
}

// Cores lists the configured cores in order.
func (r *Registry) Cores() []Core { return r.cores }

// Resolve returns the core for id, falling back to the first configured
// core when id is empty or unknown.
func (r *Registry) Resolve(id string) Core {
	if core, ok := r.byID[id]; ok {
		return core
	}
	return r.cores[0]
}

// ClientFor returns a client bound to the given core.
func (r *Registry) ClientFor(core Core) (Client, error) {
	if core.Family == FamilyNativeStructured {
		if r.gemini == nil {
			return nil, eris.Errorf("llm: core %q requires a Gemini API key", core.ID)
		}
		return &geminiClient{provider: core.Provider, model: core.ID, cli: r.gemini}, nil
	}

	cli, ok := r.vendors[core.Provider]
	if !ok {
		return nil, eris.Errorf("llm: vendor %q is not configured", core.Provider)
	}
	return &chatClient{provider: core.Provider, model: core.ID, cli: cli}, nil
}

// ChatClient binds an arbitrary model on a configured chat-completion
// vendor. The generation fallback chain uses this for models that are not
// part of the core table.
func (r *Registry) ChatClient(vendor, modelID string) (Client, error) {
	cli, ok := r.vendors[vendor]
	if !ok {
		return nil, eris.Errorf("llm: vendor %q is not configured", vendor)
	}
	return &chatClient{provider: vendor, model: modelID, cli: cli}, nil
}
