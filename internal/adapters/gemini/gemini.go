// Package gemini generates explanations with Google's Gemini models
package gemini

import (
	"context"
	"errors"
	"iter"
	"time"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/platform/metrics"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// Provider labels metrics and logs
const Provider = "gemini"

// DefaultModel is used when no model is configured
const DefaultModel = "gemini-1.5-flash"

var errEmpty = errors.New("empty response")

// Config selects the key and model
type Config struct {
	APIKey string
	Model  string
}

// models is the slice of *genai.Models the client calls
type models interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) iter.Seq2[*genai.GenerateContentResponse, error]
}

// Client sends one prompt per call; nothing is retried
type Client struct {
	m     models
	model string
	now   func() time.Time
}

// New dials the Gemini API
func New(ctx context.Context, cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, perr.Unavailablef("gemini api key is required")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, perr.Wrap(err, perr.ErrorCodeUnavailable, "gemini client")
	}
	return newClient(c.Models, cfg.Model), nil
}

func newClient(m models, model string) *Client {
	if model == "" {
		model = DefaultModel
	}
	return &Client{m: m, model: model, now: time.Now}
}

// Name reports the provider and model
func (c *Client) Name() string { return Provider + ":" + c.model }

// Explain returns the full generated text
func (c *Client) Explain(ctx context.Context, prompt string) (string, error) {
	start := c.now()
	resp, err := c.m.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	var text string
	if err == nil {
		if text = resp.Text(); text == "" {
			err = errEmpty
		}
	}
	metrics.ObserveGeneration(Provider, false, err, c.now().Sub(start))
	if err != nil {
		return "", c.fail(ctx, err, false)
	}
	return text, nil
}

// Stream yields fragments in arrival order
// The sequence is single use; breaking out of the loop stops the upstream request.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		start := c.now()
		var failed error
		defer func() { metrics.ObserveGeneration(Provider, true, failed, c.now().Sub(start)) }()

		got := false
		for resp, err := range c.m.GenerateContentStream(ctx, c.model, genai.Text(prompt), nil) {
			if err != nil {
				failed = err
				yield("", c.fail(ctx, err, true))
				return
			}
			frag := resp.Text()
			if frag == "" {
				continue
			}
			got = true
			if !yield(frag, nil) {
				return
			}
		}
		if !got {
			failed = errEmpty
			yield("", c.fail(ctx, errEmpty, true))
		}
	}
}

func (c *Client) fail(ctx context.Context, cause error, stream bool) error {
	logger.C(ctx).WithLevel(failLevel(ctx)).Err(cause).
		Str("provider", Provider).
		Str("model", c.model).
		Bool("stream", stream).
		Msg("generation failed")
	return perr.Generation(cause)
}

// failLevel keeps callers hanging up out of the error log
func failLevel(ctx context.Context) zerolog.Level {
	if ctx.Err() != nil {
		return zerolog.InfoLevel
	}
	return zerolog.ErrorLevel
}
