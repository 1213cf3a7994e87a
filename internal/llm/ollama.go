package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"unicode/utf8"
)

// DefaultGenerateURL is the native Ollama generation endpoint on localhost.
const DefaultGenerateURL = "http://localhost:11434/api/generate"

// OllamaClient talks to Ollama's native API: POST /api/generate for
// completions and GET /api/tags for the model list. Timeouts come from the
// caller's context.
type OllamaClient struct {
	GenerateURL string // defaults to DefaultGenerateURL
	HTTPClient  *http.Client
}

var _ Backend = (*OllamaClient)(nil)

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

type generateResponse struct {
	Response string `json:"response"`
	Error    string `json:"error"`
}

func (c *OllamaClient) httpClient() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	return http.DefaultClient
}

func (c *OllamaClient) generateURL() string {
	if strings.TrimSpace(c.GenerateURL) == "" {
		return DefaultGenerateURL
	}
	return c.GenerateURL
}

// Generate posts {model, prompt, stream:false} and returns the response text.
func (c *OllamaClient) Generate(ctx context.Context, model string, prompt string) (string, error) {
	payload, err := json.Marshal(generateRequest{Model: model, Prompt: prompt, Stream: false})
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.generateURL(), bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient().Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("generate status %d: %s", resp.StatusCode, truncate(string(body), 200))
	}
	var out generateResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if out.Error != "" {
		return "", fmt.Errorf("generate: %s", out.Error)
	}
	return out.Response, nil
}

// BaseURL strips the API path from GenerateURL, e.g.
// http://host:11434/api/generate -> http://host:11434.
func (c *OllamaClient) BaseURL() string {
	return BaseURL(c.generateURL())
}

// BaseURL derives a server base address from an endpoint address by
// dropping everything from the first /api path segment onwards.
func BaseURL(endpoint string) string {
	u, err := url.Parse(strings.TrimSpace(endpoint))
	if err != nil || u.Host == "" {
		return strings.TrimRight(endpoint, "/")
	}
	segs := strings.Split(u.Path, "/")
	for i, seg := range segs {
		if seg == "api" {
			segs = segs[:i]
			break
		}
	}
	u.Path = strings.TrimRight(strings.Join(segs, "/"), "/")
	u.RawPath = ""
	u.RawQuery = ""
	u.Fragment = ""
	return u.String()
}

// ListModelNames returns the names reported by /api/tags.
func (c *OllamaClient) ListModelNames(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL()+"/api/tags", nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	resp, err := c.httpClient().Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("list models status: %d", resp.StatusCode)
	}
	var tags struct {
		Models []struct {
			Name  string `json:"name"`
			Model string `json:"model"`
		} `json:"models"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, fmt.Errorf("decode models: %w", err)
	}
	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		if m.Name != "" {
			names = append(names, m.Name)
		}
		if m.Model != "" && m.Model != m.Name {
			names = append(names, m.Model)
		}
	}
	return names, nil
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
