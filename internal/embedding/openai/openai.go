// Package openai is an OpenAI-compatible embeddings client. It also accepts
// the Ollama-native response shape so a local model server can stand in.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"golang.org/x/sync/errgroup"

	"eduverse/internal/embedding"
)

// ErrMissingAPIKey is returned when the configured environment variable is empty.
var ErrMissingAPIKey = goerr.New("missing API key")

// Client implements domain.Embedder over HTTP.
type Client struct {
	baseURL     string
	apiKey      string
	model       string
	client      *http.Client
	maxRetries  int
	parallelism int
	normalize   bool
}

// Config configures the OpenAI-compatible embeddings client.
type Config struct {
	BaseURL     string
	APIKeyEnv   string
	Model       string
	Timeout     time.Duration
	MaxRetries  int
	Parallelism int
	// Normalize rescales returned vectors to unit length, for servers that
	// do not do so themselves.
	Normalize bool
}

// NewClient creates a new embeddings client using the provided configuration.
func NewClient(cfg Config) (*Client, error) {
	if cfg.APIKeyEnv == "" {
		cfg.APIKeyEnv = "OPENAI_API_KEY"
	}
	key := os.Getenv(cfg.APIKeyEnv)
	if key == "" {
		return nil, goerr.Wrap(ErrMissingAPIKey, "embedder init failed", goerr.V("env", cfg.APIKeyEnv))
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = "https://api.openai.com/v1"
	}
	if cfg.Model == "" {
		cfg.Model = "text-embedding-3-small"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries < 0 {
		cfg.MaxRetries = 0
	}
	if cfg.Parallelism <= 0 {
		cfg.Parallelism = 4
	}
	return &Client{
		baseURL:     cfg.BaseURL,
		apiKey:      key,
		model:       cfg.Model,
		client:      &http.Client{Timeout: cfg.Timeout},
		maxRetries:  cfg.MaxRetries,
		parallelism: cfg.Parallelism,
		normalize:   cfg.Normalize,
	}, nil
}

// Name returns the identifier of this embedder implementation.
func (c *Client) Name() string { return "openai" }

// Embed returns one vector per text, requesting them with bounded parallelism.
// Output order matches input order.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float64, error) {
	out := make([][]float64, len(texts))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(c.parallelism)
	for i, text := range texts {
		g.Go(func() error {
			v, err := c.embedOne(ctx, text)
			if err != nil {
				return goerr.Wrap(err, "embedding request failed", goerr.V("index", i))
			}
			if c.normalize {
				v = embedding.Normalize(v)
			}
			out[i] = v
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) embedOne(ctx context.Context, text string) ([]float64, error) {
	type reqBody struct {
		Input  string `json:"input,omitempty"`
		Prompt string `json:"prompt,omitempty"`
		Model  string `json:"model"`
	}
	url := fmt.Sprintf("%s/embeddings", c.baseURL)
	data, err := json.Marshal(reqBody{Input: text, Prompt: text, Model: c.model})
	if err != nil {
		return nil, goerr.Wrap(err, "failed to encode request")
	}

	var lastErr error
	var retryAfter time.Duration
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			if err := sleep(ctx, backoff(attempt-1, retryAfter)); err != nil {
				return nil, err
			}
			retryAfter = 0
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
		if err != nil {
			return nil, goerr.Wrap(err, "failed to create request")
		}
		req.Header.Set("Content-Type", "application/json")
		req.Header.Set("Authorization", "Bearer "+c.apiKey)

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = goerr.Wrap(err, "embeddings call failed", goerr.V("url", url))
			continue
		}
		payload, readErr := io.ReadAll(resp.Body)
		_ = resp.Body.Close()

		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			lastErr = goerr.New("embeddings server unavailable", goerr.V("status", resp.Status))
			retryAfter = parseRetryAfter(resp.Header.Get("Retry-After"))
			continue
		}
		if resp.StatusCode >= 300 {
			return nil, goerr.New("embeddings request rejected", goerr.V("status", resp.Status))
		}
		if readErr != nil {
			lastErr = goerr.Wrap(readErr, "failed to read response")
			continue
		}
		if v := decodeEmbedding(payload); len(v) > 0 {
			return v, nil
		}
		lastErr = goerr.New("no embedding returned")
	}
	return nil, lastErr
}

// decodeEmbedding accepts the OpenAI shape first, then the Ollama-native
// { "embedding": [...] } shape.
func decodeEmbedding(payload []byte) []float64 {
	var openaiOut struct {
		Data []struct {
			Embedding []float64 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(payload, &openaiOut); err == nil {
		if len(openaiOut.Data) > 0 && len(openaiOut.Data[0].Embedding) > 0 {
			return openaiOut.Data[0].Embedding
		}
	}
	var ollamaOut struct {
		Embedding []float64 `json:"embedding"`
	}
	if err := json.Unmarshal(payload, &ollamaOut); err == nil {
		return ollamaOut.Embedding
	}
	return nil
}

func sleep(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// maxBackoff bounds both the exponential delay and a server's Retry-After.
const maxBackoff = 5 * time.Second

func retryDelay(attempt int) time.Duration {
	// 200ms << 5 already exceeds maxBackoff; larger shifts would overflow.
	attempt = min(max(attempt, 0), 5)
	return min(200*time.Millisecond<<attempt, maxBackoff)
}

// backoff is the wait before retry number attempt+1. A server-supplied
// Retry-After replaces the exponential delay when it is longer.
func backoff(attempt int, retryAfter time.Duration) time.Duration {
	return max(retryDelay(attempt), retryAfter)
}

// parseRetryAfter reads a Retry-After header given in seconds. Anything
// else, including an HTTP date, counts as absent.
func parseRetryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(v)
	if err != nil || secs <= 0 {
		return 0
	}
	return min(time.Duration(secs)*time.Second, maxBackoff)
}
