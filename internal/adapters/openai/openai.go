// Package openai generates explanations through any OpenAI compatible chat endpoint
package openai

import (
	"context"
	"errors"
	"io"
	"iter"
	"time"

	perr "codeexplainer/internal/platform/errors"
	"codeexplainer/internal/platform/logger"
	"codeexplainer/internal/platform/metrics"

	"github.com/rs/zerolog"
	goopenai "github.com/sashabaranov/go-openai"
)

// Provider labels metrics and logs
const Provider = "openai"

// DefaultModel is used when no model is configured
const DefaultModel = "gpt-4o-mini"

var errEmpty = errors.New("empty response")

// Config selects the key, model and an optional base url for compatible servers
type Config struct {
	APIKey  string
	Model   string
	BaseURL string
}

// Client sends one chat completion per call; nothing is retried
type Client struct {
	c     *goopenai.Client
	model string
	now   func() time.Time
}

// New builds a client; no request is made until the first call
func New(cfg Config) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, perr.Unavailablef("openai api key is required")
	}
	oc := goopenai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		oc.BaseURL = cfg.BaseURL
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	return &Client{c: goopenai.NewClientWithConfig(oc), model: model, now: time.Now}, nil
}

// Name reports the provider and model
func (c *Client) Name() string { return Provider + ":" + c.model }

func (c *Client) request(prompt string, stream bool) goopenai.ChatCompletionRequest {
	return goopenai.ChatCompletionRequest{
		Model:  c.model,
		Stream: stream,
		Messages: []goopenai.ChatCompletionMessage{
			{Role: goopenai.ChatMessageRoleUser, Content: prompt},
		},
	}
}

// Explain returns the first choice's content
func (c *Client) Explain(ctx context.Context, prompt string) (string, error) {
	start := c.now()
	resp, err := c.c.CreateChatCompletion(ctx, c.request(prompt, false))
	var text string
	if err == nil {
		if len(resp.Choices) > 0 {
			text = resp.Choices[0].Message.Content
		}
		if text == "" {
			err = errEmpty
		}
	}
	metrics.ObserveGeneration(Provider, false, err, c.now().Sub(start))
	if err != nil {
		return "", c.fail(ctx, err, false)
	}
	return text, nil
}

// Stream yields content deltas in arrival order
// The sequence is single use; breaking out of the loop closes the upstream stream.
func (c *Client) Stream(ctx context.Context, prompt string) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		start := c.now()
		var failed error
		defer func() { metrics.ObserveGeneration(Provider, true, failed, c.now().Sub(start)) }()

		s, err := c.c.CreateChatCompletionStream(ctx, c.request(prompt, true))
		if err != nil {
			failed = err
			yield("", c.fail(ctx, err, true))
			return
		}
		defer s.Close()

		got := false
		for {
			chunk, err := s.Recv()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				failed = err
				yield("", c.fail(ctx, err, true))
				return
			}
			if len(chunk.Choices) == 0 || chunk.Choices[0].Delta.Content == "" {
				continue
			}
			got = true
			if !yield(chunk.Choices[0].Delta.Content, nil) {
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
