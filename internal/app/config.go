package app

import (
	"time"

	"github.com/hyperifyio/searchfacts/internal/llm"
)

// Config holds runtime configuration for the application.
type Config struct {
	// LLM
	GenerateURL string // Ollama /api/generate endpoint, or OpenAI-compatible base URL
	Model       string
	LLMBackend  string // "ollama" or "openai"
	LLMAPIKey   string

	// Search
	SearchProvider string // "duckduckgo", "searxng" or "file"
	SearxURL       string
	SearxKey       string
	SearchFile     string

	// Fetch
	FetchBackend  string // "http" or "chromedp"
	FetchTimeout  time.Duration
	MaxConcurrent int
	ChromePath    string

	// Behavior
	SkipTLSVerify bool
	Verbose       bool
}

const (
	BackendOllama = "ollama"
	BackendOpenAI = "openai"

	ProviderDuckDuckGo = "duckduckgo"
	ProviderSearxNG    = "searxng"
	ProviderFile       = "file"

	FetchHTTP     = "http"
	FetchChromedp = "chromedp"

	defaultFetchTimeout = 30 * time.Second
)

// ApplyDefaults fills every field still unset after flags, env and file
// config have been applied.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}
	if cfg.LLMBackend == "" {
		cfg.LLMBackend = BackendOllama
	}
	if cfg.GenerateURL == "" && cfg.LLMBackend == BackendOllama {
		cfg.GenerateURL = llm.DefaultGenerateURL
	}
	if cfg.SearchProvider == "" {
		cfg.SearchProvider = ProviderDuckDuckGo
	}
	if cfg.FetchBackend == "" {
		cfg.FetchBackend = FetchHTTP
	}
	if cfg.FetchTimeout <= 0 {
		cfg.FetchTimeout = defaultFetchTimeout
	}
}
