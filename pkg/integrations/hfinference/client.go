// Package hfinference provides a client for Hugging Face Inference API
// style text-generation endpoints.
//
// The endpoint contract is deliberately loose: it may fail, time out, or
// return low-quality text. Callers are expected to tolerate all three; the
// explanation engine falls back to templates on any error.
package hfinference

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/depexplain/depexplain/pkg/cache"
	"github.com/depexplain/depexplain/pkg/integrations"
)

// DefaultBaseURL is the hosted inference endpoint prefix.
const DefaultBaseURL = "https://api-inference.huggingface.co/models"

// DefaultModel is used when no model is configured. Small and available on
// the free tier; quality is handled by the caller's fallback.
const DefaultModel = "gpt2"

// Client calls a text-generation endpoint and caches responses.
//
// All methods are safe for concurrent use.
type Client struct {
	*integrations.Client
	baseURL string
	model   string
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the endpoint prefix (e.g. for self-hosted
// inference servers or tests).
func WithBaseURL(url string) Option {
	return func(c *Client) { c.baseURL = strings.TrimSuffix(url, "/") }
}

// WithModel selects the model name appended to the base URL.
func WithModel(model string) Option {
	return func(c *Client) { c.model = model }
}

// NewClient creates an inference client.
//
// Parameters:
//   - backend: cache backend for generated text (use cache.NewNullCache() for none)
//   - keyer: cache key generator; nil uses cache.NewDefaultKeyer()
//   - ttl: how long generated text stays cached
//   - token: API token; empty uses the anonymous free tier
func NewClient(backend cache.Cache, keyer cache.Keyer, ttl time.Duration, token string, opts ...Option) *Client {
	headers := map[string]string{}
	if token != "" {
		headers["Authorization"] = "Bearer " + token
	}
	c := &Client{
		Client:  integrations.NewClient(backend, keyer, "hf", ttl, headers),
		baseURL: DefaultBaseURL,
		model:   DefaultModel,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Name identifies the provider in reports and logs.
func (c *Client) Name() string { return "huggingface" }

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

type generateRequest struct {
	Inputs     string             `json:"inputs"`
	Parameters generateParameters `json:"parameters"`
}

type generateParameters struct {
	MaxNewTokens   int     `json:"max_new_tokens"`
	Temperature    float64 `json:"temperature"`
	ReturnFullText bool    `json:"return_full_text"`
}

type generateResponse struct {
	GeneratedText string `json:"generated_text"`
}

// Generate sends prompt to the endpoint and returns the generated text.
//
// Responses are cached by provider, model, and prompt digest. Returns an
// error for transport failures, non-200 statuses, and empty generations;
// the caller decides how to degrade.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	var text string
	err := c.CachedExplanation(ctx, c.Name(), c.model, cache.Hash([]byte(prompt)), false, &text, func() error {
		return c.generate(ctx, prompt, &text)
	})
	if err != nil {
		return "", err
	}
	return text, nil
}

func (c *Client) generate(ctx context.Context, prompt string, out *string) error {
	payload := generateRequest{
		Inputs: prompt,
		Parameters: generateParameters{
			MaxNewTokens:   200,
			Temperature:    0.7,
			ReturnFullText: false,
		},
	}

	var resp []generateResponse
	url := fmt.Sprintf("%s/%s", c.baseURL, c.model)
	if err := c.PostJSON(ctx, url, payload, &resp); err != nil {
		return err
	}

	if len(resp) == 0 || strings.TrimSpace(resp[0].GeneratedText) == "" {
		return fmt.Errorf("%w: empty generation", integrations.ErrNetwork)
	}
	*out = strings.TrimSpace(resp[0].GeneratedText)
	return nil
}
