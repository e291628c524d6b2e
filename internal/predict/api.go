package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/imkarma/taskboard/internal/config"
)

// Provider endpoints. Tests point these at a local server via WithEndpoint.
var endpoints = map[string]string{
	"openai":    "https://api.openai.com/v1/chat/completions",
	"anthropic": "https://api.anthropic.com/v1/messages",
	"google":    "https://generativelanguage.googleapis.com/v1beta/models",
}

// outputPaths locate the completion text in each provider's response.
var outputPaths = map[string]string{
	"openai":    "choices.0.message.content",
	"anthropic": "content.0.text",
	"google":    "candidates.0.content.parts.0.text",
}

// API asks an LLM provider's HTTP API for a category.
type API struct {
	cfg      config.Predictor
	apiKey   string
	endpoint string
	client   *http.Client
}

// APIOption customizes an API predictor.
type APIOption func(*API)

// WithEndpoint overrides the provider URL.
func WithEndpoint(u string) APIOption {
	return func(a *API) { a.endpoint = u }
}

// NewAPI creates a predictor that calls the configured provider.
func NewAPI(cfg config.Predictor, opts ...APIOption) (*API, error) {
	endpoint, ok := endpoints[cfg.Provider]
	if !ok {
		return nil, fmt.Errorf("unsupported API provider: %s", cfg.Provider)
	}

	apiKey := os.Getenv(cfg.APIKeyEnv)
	if apiKey == "" {
		return nil, fmt.Errorf("predictor: environment variable %s is not set", cfg.APIKeyEnv)
	}

	timeout := time.Duration(cfg.DefaultTimeout()) * time.Second

	a := &API{
		cfg:      cfg,
		apiKey:   apiKey,
		endpoint: endpoint,
		client:   &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(a)
	}
	return a, nil
}

func (a *API) Name() string { return "api:" + a.cfg.Provider }

// Predict sends a classification prompt and parses the CATEGORY line.
func (a *API) Predict(ctx context.Context, title, description string) (string, error) {
	req, err := a.newRequest(ctx, buildPrompt(title, description))
	if err != nil {
		return "", err
	}

	httpResp, err := a.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("API call failed: %w", err)
	}
	defer httpResp.Body.Close()

	respBody, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	if httpResp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("API returned status %d: %s", httpResp.StatusCode, string(respBody))
	}

	if !gjson.ValidBytes(respBody) {
		return "", fmt.Errorf("parse response: invalid JSON")
	}
	output := gjson.GetBytes(respBody, outputPaths[a.cfg.Provider]).String()

	category := ParseCategory(output)
	if category == "" {
		return "", ErrNoPrediction
	}
	return category, nil
}

// newRequest builds the provider-specific HTTP request for prompt.
func (a *API) newRequest(ctx context.Context, prompt string) (*http.Request, error) {
	var body map[string]any
	target := a.endpoint
	header := http.Header{}

	switch a.cfg.Provider {
	case "openai":
		body = map[string]any{
			"model": a.cfg.Model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"max_tokens": 32,
		}
		header.Set("Authorization", "Bearer "+a.apiKey)
	case "anthropic":
		body = map[string]any{
			"model":      a.cfg.Model,
			"max_tokens": 32,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
		}
		header.Set("x-api-key", a.apiKey)
		header.Set("anthropic-version", "2023-06-01")
	case "google":
		model := a.cfg.Model
		if model == "" {
			model = "gemini-2.5-flash"
		}
		target = fmt.Sprintf("%s/%s:generateContent?key=%s", strings.TrimRight(a.endpoint, "/"), url.PathEscape(model), url.QueryEscape(a.apiKey))
		body = map[string]any{
			"contents": []map[string]any{
				{
					"parts": []map[string]string{
						{"text": prompt},
					},
				},
			},
		}
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, target, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header = header
	req.Header.Set("Content-Type", "application/json")
	return req, nil
}

func buildPrompt(title, description string) string {
	var sb strings.Builder
	sb.WriteString("Classify this to-do item into a short category name (one or two words, e.g. ")
	for i, r := range rules {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(r.category)
	}
	sb.WriteString(").\n\n")
	fmt.Fprintf(&sb, "Title: %s\nDescription: %s\n\n", title, description)
	sb.WriteString("Reply with exactly one line:\nCATEGORY: <name>\n")
	return sb.String()
}
