package app

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	yaml "gopkg.in/yaml.v3"
)

// FileConfig represents the single-file configuration schema.
// Nested sections map naturally to flags and env.
type FileConfig struct {
	LLM struct {
		URL     string `yaml:"url" json:"url"`
		Model   string `yaml:"model" json:"model"`
		Backend string `yaml:"backend" json:"backend"`
		APIKey  string `yaml:"key" json:"key"`
	} `yaml:"llm" json:"llm"`

	Search struct {
		Provider string `yaml:"provider" json:"provider"`
		File     string `yaml:"file" json:"file"`
	} `yaml:"search" json:"search"`

	Searx struct {
		URL string `yaml:"url" json:"url"`
		Key string `yaml:"key" json:"key"`
	} `yaml:"searx" json:"searx"`

	Fetch struct {
		Backend       string   `yaml:"backend" json:"backend"`
		Timeout       Duration `yaml:"timeout" json:"timeout"`
		MaxConcurrent int      `yaml:"maxConcurrent" json:"maxConcurrent"`
		ChromePath    string   `yaml:"chromePath" json:"chromePath"`
	} `yaml:"fetch" json:"fetch"`

	SSLVerify *bool `yaml:"sslVerify" json:"sslVerify"`
	Verbose   bool  `yaml:"verbose" json:"verbose"`
}

// Duration accepts "30s" style strings or bare seconds in config files.
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	return d.set(value.Value)
}

func (d *Duration) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	return d.set(strings.Trim(string(b), `"`))
}

func (d *Duration) set(s string) error {
	s = strings.TrimSpace(s)
	if s == "" {
		*d = 0
		return nil
	}
	if v, err := time.ParseDuration(s); err == nil {
		*d = Duration(v)
		return nil
	}
	var secs float64
	if _, err := fmt.Sscanf(s, "%g", &secs); err != nil {
		return fmt.Errorf("invalid duration %q", s)
	}
	*d = Duration(time.Duration(secs * float64(time.Second)))
	return nil
}

// LoadConfigFile reads YAML or JSON into FileConfig.
func LoadConfigFile(path string) (FileConfig, error) {
	var fc FileConfig
	b, err := os.ReadFile(path)
	if err != nil {
		return fc, err
	}
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse yaml: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(b, &fc); err != nil {
			return fc, fmt.Errorf("parse json: %w", err)
		}
	default:
		// Try YAML then JSON
		if err := yaml.Unmarshal(b, &fc); err != nil {
			if jerr := json.Unmarshal(b, &fc); jerr != nil {
				return fc, fmt.Errorf("parse config: %v (yaml) / %v (json)", err, jerr)
			}
		}
	}
	return fc, nil
}

// ApplyFileConfig overlays values from FileConfig into cfg for any fields that
// are still unset in cfg, so flags and env keep precedence.
func ApplyFileConfig(cfg *Config, fc FileConfig) {
	if cfg == nil {
		return
	}
	fill := func(dst *string, v string) {
		if *dst == "" && strings.TrimSpace(v) != "" {
			*dst = strings.TrimSpace(v)
		}
	}
	fill(&cfg.GenerateURL, fc.LLM.URL)
	fill(&cfg.Model, fc.LLM.Model)
	fill(&cfg.LLMBackend, fc.LLM.Backend)
	fill(&cfg.LLMAPIKey, fc.LLM.APIKey)

	fill(&cfg.SearchProvider, fc.Search.Provider)
	fill(&cfg.SearchFile, fc.Search.File)
	fill(&cfg.SearxURL, fc.Searx.URL)
	fill(&cfg.SearxKey, fc.Searx.Key)

	fill(&cfg.FetchBackend, fc.Fetch.Backend)
	fill(&cfg.ChromePath, fc.Fetch.ChromePath)
	if cfg.FetchTimeout == 0 && fc.Fetch.Timeout > 0 {
		cfg.FetchTimeout = time.Duration(fc.Fetch.Timeout)
	}
	if cfg.MaxConcurrent == 0 && fc.Fetch.MaxConcurrent != 0 {
		cfg.MaxConcurrent = fc.Fetch.MaxConcurrent
	}

	if !cfg.SkipTLSVerify && fc.SSLVerify != nil && !*fc.SSLVerify {
		cfg.SkipTLSVerify = true
	}
	if !cfg.Verbose && fc.Verbose {
		cfg.Verbose = true
	}
}

// ValidateConfig performs minimal schema validation for required settings.
func ValidateConfig(cfg Config) error {
	if strings.TrimSpace(cfg.Model) == "" {
		return errors.New("config: llm model is required (set OLLAMA_MODEL)")
	}
	switch cfg.LLMBackend {
	case "", BackendOllama, BackendOpenAI:
	default:
		return fmt.Errorf("config: unknown llm backend %q", cfg.LLMBackend)
	}
	switch cfg.SearchProvider {
	case "", ProviderDuckDuckGo:
	case ProviderSearxNG:
		if strings.TrimSpace(cfg.SearxURL) == "" {
			return errors.New("config: searxng provider requires a URL (set SEARX_URL)")
		}
	case ProviderFile:
		if strings.TrimSpace(cfg.SearchFile) == "" {
			return errors.New("config: file provider requires a path (set SEARCH_FILE)")
		}
	default:
		return fmt.Errorf("config: unknown search provider %q", cfg.SearchProvider)
	}
	switch cfg.FetchBackend {
	case "", FetchHTTP, FetchChromedp:
	default:
		return fmt.Errorf("config: unknown fetch backend %q", cfg.FetchBackend)
	}
	if cfg.MaxConcurrent < 0 {
		return errors.New("config: negative concurrency is not allowed")
	}
	if cfg.FetchTimeout < 0 {
		return errors.New("config: negative fetch timeout is not allowed")
	}
	return nil
}
