package module

import (
	"context"
	"time"

	"codeexplainer/internal/adapters/gemini"
	"codeexplainer/internal/adapters/openai"
	"codeexplainer/internal/core/ratelimit"
	"codeexplainer/internal/core/sanitize"
	"codeexplainer/internal/platform/config"
	"codeexplainer/internal/services/explain/domain"
)

// Options holds configuration settings for the explain module
type Options struct {
	RateLimit    int
	RateWindow   time.Duration
	MaxCodeChars int
}

// FromConfig extracts Options from the given config.Conf
func FromConfig(cfg config.Conf) Options {
	c := cfg.Prefix("CORE_API_")
	return Options{
		RateLimit:    c.MayPositiveInt("RATE_LIMIT", ratelimit.DefaultLimit),
		RateWindow:   c.MayDuration("RATE_WINDOW", ratelimit.DefaultWindow),
		MaxCodeChars: c.MayPositiveInt("MAX_CODE_CHARS", sanitize.DefaultMaxChars),
	}
}

// ProviderOptions selects the generative backend
type ProviderOptions struct {
	Provider string
	APIKey   string
	Model    string
	BaseURL  string
}

// ProviderFromConfig reads AI_PROVIDER, AI_API_KEY, AI_MODEL and AI_BASE_URL
func ProviderFromConfig(cfg config.Conf) ProviderOptions {
	c := cfg.Prefix("AI_")
	return ProviderOptions{
		Provider: c.MayEnum("PROVIDER", gemini.Provider, gemini.Provider, openai.Provider),
		APIKey:   c.MustString("API_KEY"),
		Model:    c.MayString("MODEL", ""),
		BaseURL:  c.MayString("BASE_URL", ""),
	}
}

// NewGenerator builds the configured backend
func NewGenerator(ctx context.Context, o ProviderOptions) (domain.Generator, error) {
	if o.Provider == openai.Provider {
		return openai.New(openai.Config{APIKey: o.APIKey, Model: o.Model, BaseURL: o.BaseURL})
	}
	return gemini.New(ctx, gemini.Config{APIKey: o.APIKey, Model: o.Model})
}
