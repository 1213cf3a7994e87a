package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/searchfacts/internal/facts"
	"github.com/hyperifyio/searchfacts/internal/fetch"
	"github.com/hyperifyio/searchfacts/internal/llm"
	"github.com/hyperifyio/searchfacts/internal/search"
)

// Record is one output entry. Error is always serialized (null when the page
// was fetched); Facts only when extraction produced text.
type Record struct {
	Title string  `json:"title"`
	URL   string  `json:"url"`
	Error *string `json:"error"`
	Facts string  `json:"facts,omitempty"`
}

// Response is the successful result of a search request.
type Response struct {
	Results []Record `json:"results"`
}

// ErrorResponse is printed instead of a Response when a request cannot run.
type ErrorResponse struct {
	Error string `json:"error"`
}

// ErrSearchFailed wraps fatal search backend failures.
var ErrSearchFailed = errors.New("search failed")

// App wires search, fetch and extraction into one pipeline.
type App struct {
	cfg       Config
	provider  search.Provider
	fetcher   *fetch.Fetcher
	extractor *facts.Extractor
	gate      *llm.Gate
}

// New validates cfg and builds the backends it names. No network calls are
// made until the first request.
func New(cfg Config) (*App, error) {
	ApplyDefaults(&cfg)
	if err := ValidateConfig(cfg); err != nil {
		return nil, err
	}
	hc := newHTTPClient(!cfg.SkipTLSVerify)

	provider, err := newProvider(cfg, hc)
	if err != nil {
		return nil, err
	}
	backend, err := newBackend(cfg, hc)
	if err != nil {
		return nil, err
	}
	gate := &llm.Gate{Lister: backend, Model: cfg.Model}

	log.Debug().
		Str("provider", provider.Name()).
		Str("fetch", cfg.FetchBackend).
		Str("llm", cfg.LLMBackend).
		Str("model", cfg.Model).
		Msg("pipeline configured")

	return &App{
		cfg:      cfg,
		provider: provider,
		fetcher: &fetch.Fetcher{
			Renderer:      newRenderer(cfg, hc),
			MaxConcurrent: cfg.MaxConcurrent,
		},
		extractor: &facts.Extractor{Generator: backend, Gate: gate, Model: cfg.Model},
		gate:      gate,
	}, nil
}

func newProvider(cfg Config, hc *http.Client) (search.Provider, error) {
	switch cfg.SearchProvider {
	case "", ProviderDuckDuckGo:
		return &search.DuckDuckGo{HTTPClient: hc}, nil
	case ProviderSearxNG:
		return &search.SearxNG{BaseURL: cfg.SearxURL, APIKey: cfg.SearxKey, HTTPClient: hc}, nil
	case ProviderFile:
		return &search.FileProvider{Path: cfg.SearchFile}, nil
	}
	return nil, fmt.Errorf("unknown search provider %q", cfg.SearchProvider)
}

func newBackend(cfg Config, hc *http.Client) (llm.Backend, error) {
	switch cfg.LLMBackend {
	case "", BackendOllama:
		return &llm.OllamaClient{GenerateURL: cfg.GenerateURL, HTTPClient: hc}, nil
	case BackendOpenAI:
		return llm.NewOpenAIGenerator(cfg.GenerateURL, cfg.LLMAPIKey, hc), nil
	}
	return nil, fmt.Errorf("unknown llm backend %q", cfg.LLMBackend)
}

func newRenderer(cfg Config, hc *http.Client) fetch.Renderer {
	if cfg.FetchBackend == FetchChromedp {
		return &fetch.ChromeRenderer{
			UserAgent: search.BrowserUserAgent,
			ExecPath:  cfg.ChromePath,
			Timeout:   cfg.FetchTimeout,
		}
	}
	return &fetch.HTTPRenderer{Client: &fetch.Client{
		HTTPClient:        hc,
		UserAgent:         search.BrowserUserAgent,
		PerRequestTimeout: cfg.FetchTimeout,
		RedirectMaxHops:   5,
		MaxConcurrent:     cfg.MaxConcurrent,
	}}
}

// ModelStatus reports the memoized model availability.
func (a *App) ModelStatus() llm.Status {
	return a.gate.Status()
}

// Search runs the pipeline for one query. The only error it returns is a
// fatal search failure; per-page failures are reported inside the records.
func (a *App) Search(ctx context.Context, query string, topK int) (Response, error) {
	k := search.Clamp(topK)
	hits, err := a.provider.Search(ctx, query, k)
	if err != nil {
		log.Error().Err(err).Str("query", query).Str("provider", a.provider.Name()).Msg("search failed")
		return Response{}, fmt.Errorf("%w: %w", ErrSearchFailed, err)
	}
	if len(hits) > k {
		hits = hits[:k]
	}
	log.Info().Str("query", query).Int("k", k).Int("hits", len(hits)).Msg("search done")

	urls := make([]string, len(hits))
	for i, h := range hits {
		urls[i] = h.URL
	}
	outcomes := a.fetcher.FetchAll(ctx, urls)
	extracted := a.extractAll(ctx, query, outcomes)

	records := make([]Record, len(hits))
	for i, h := range hits {
		records[i] = Record{Title: h.Title, URL: h.URL}
		if outcomes[i].Failed() {
			msg := outcomes[i].Err.Error()
			records[i].Error = &msg
		}
		if extracted[i].OK() {
			records[i].Facts = extracted[i].Text
		}
	}
	return Response{Results: records}, nil
}

// extractAll runs one extraction per outcome and waits for the slowest.
// Failed fetches contribute empty content, which short-circuits.
func (a *App) extractAll(ctx context.Context, query string, outcomes []fetch.Outcome) []facts.Result {
	results := make([]facts.Result, len(outcomes))
	var g errgroup.Group
	if a.cfg.MaxConcurrent > 0 {
		g.SetLimit(a.cfg.MaxConcurrent)
	}
	for i, o := range outcomes {
		g.Go(func() error {
			content := ""
			if !o.Failed() {
				content = o.Content
			}
			results[i] = a.extractor.Extract(ctx, content, query)
			return nil
		})
	}
	_ = g.Wait()
	return results
}
