package app

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvToConfig populates unset fields of cfg from environment variables.
// Explicit cfg values take precedence over env.
func ApplyEnvToConfig(cfg *Config) {
	if cfg == nil {
		return
	}

	setString := func(dst *string, keys ...string) {
		if *dst != "" {
			return
		}
		for _, k := range keys {
			if v := strings.TrimSpace(os.Getenv(k)); v != "" {
				*dst = v
				return
			}
		}
	}
	setString(&cfg.GenerateURL, "OLLAMA_URL", "LLM_BASE_URL")
	setString(&cfg.Model, "OLLAMA_MODEL", "LLM_MODEL")
	setString(&cfg.LLMBackend, "LLM_BACKEND")
	setString(&cfg.LLMAPIKey, "LLM_API_KEY")

	setString(&cfg.SearchProvider, "SEARCH_PROVIDER")
	// Support both SEARX_URL and SEARXNG_URL; prefer SEARX_URL if set
	setString(&cfg.SearxURL, "SEARX_URL", "SEARXNG_URL")
	setString(&cfg.SearxKey, "SEARX_KEY", "SEARXNG_KEY")
	setString(&cfg.SearchFile, "SEARCH_FILE")

	setString(&cfg.FetchBackend, "FETCH_BACKEND")
	setString(&cfg.ChromePath, "CHROME_PATH")
	if cfg.FetchTimeout == 0 {
		if d, ok := parseDurationEnv("FETCH_TIMEOUT"); ok {
			cfg.FetchTimeout = d
		}
	}
	if cfg.MaxConcurrent == 0 {
		if s := strings.TrimSpace(os.Getenv("MAX_CONCURRENT")); s != "" {
			if n, err := strconv.Atoi(s); err == nil {
				cfg.MaxConcurrent = n
			}
		}
	}

	if !cfg.Verbose {
		cfg.Verbose = envTrue("VERBOSE")
	}
	if !cfg.SkipTLSVerify {
		if s := strings.ToLower(strings.TrimSpace(os.Getenv("SSL_VERIFY"))); s == "0" || s == "false" || s == "no" || s == "off" {
			cfg.SkipTLSVerify = true
		}
	}
}

// parseDurationEnv accepts Go durations ("45s") and bare seconds ("45").
func parseDurationEnv(key string) (time.Duration, bool) {
	s := strings.TrimSpace(os.Getenv(key))
	if s == "" {
		return 0, false
	}
	if d, err := time.ParseDuration(s); err == nil && d > 0 {
		return d, true
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return time.Duration(n) * time.Second, true
	}
	return 0, false
}

func envTrue(key string) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv(key))) {
	case "1", "true", "yes", "on":
		return true
	}
	return false
}
