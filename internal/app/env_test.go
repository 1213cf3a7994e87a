package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestLoadEnvFiles_LoadsKeyValues(t *testing.T) {
	t.Setenv("FOO", "")
	t.Setenv("BAR", "")
	t.Setenv("BAZ", "")

	dir := t.TempDir()
	envPath := filepath.Join(dir, ".env.test")
	content := "\n# sample dotenv file\nFOO=alpha\nexport BAR=\"beta gamma\"\nBAZ=delta # trailing\n=ignored\n"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("write dotenv: %v", err)
	}

	if err := LoadEnvFiles(envPath); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}

	if got := os.Getenv("FOO"); got != "alpha" {
		t.Fatalf("FOO=%q, want alpha", got)
	}
	if got := os.Getenv("BAR"); got != "beta gamma" {
		t.Fatalf("BAR=%q, want %q", got, "beta gamma")
	}
	if got := os.Getenv("BAZ"); got != "delta" {
		t.Fatalf("BAZ=%q, want delta", got)
	}
}

// Later files override earlier ones when loading multiple dotenv files.
func TestLoadEnvFiles_OverrideOrder(t *testing.T) {
	t.Setenv("K", "")
	dir := t.TempDir()
	a := filepath.Join(dir, ".env.a")
	b := filepath.Join(dir, ".env.b")
	if err := os.WriteFile(a, []byte("K=first\n"), 0o600); err != nil {
		t.Fatalf("write a: %v", err)
	}
	if err := os.WriteFile(b, []byte("K=second\n"), 0o600); err != nil {
		t.Fatalf("write b: %v", err)
	}

	if err := LoadEnvFiles(a, filepath.Join(dir, "missing"), b); err != nil {
		t.Fatalf("LoadEnvFiles error: %v", err)
	}
	if got := os.Getenv("K"); got != "second" {
		t.Fatalf("override order failed: got %q, want second", got)
	}
}

func TestApplyEnvToConfig_FromEnv(t *testing.T) {
	t.Setenv("OLLAMA_URL", "")
	t.Setenv("LLM_BASE_URL", "http://llm.example/api/generate")
	t.Setenv("OLLAMA_MODEL", "llama3.1:8b")
	t.Setenv("SEARX_URL", "")
	t.Setenv("SEARXNG_URL", "http://searxng.example")
	t.Setenv("SEARCH_PROVIDER", "searxng")
	t.Setenv("FETCH_TIMEOUT", "45")
	t.Setenv("MAX_CONCURRENT", "2")
	t.Setenv("VERBOSE", "1")
	t.Setenv("SSL_VERIFY", "false")

	var cfg Config
	ApplyEnvToConfig(&cfg)
	if cfg.GenerateURL != "http://llm.example/api/generate" {
		t.Fatalf("GenerateURL=%q, want fallback from LLM_BASE_URL", cfg.GenerateURL)
	}
	if cfg.Model != "llama3.1:8b" {
		t.Fatalf("Model=%q", cfg.Model)
	}
	if cfg.SearxURL != "http://searxng.example" || cfg.SearchProvider != ProviderSearxNG {
		t.Fatalf("search settings not applied: %+v", cfg)
	}
	if cfg.FetchTimeout != 45*time.Second {
		t.Fatalf("FetchTimeout=%v, want 45s", cfg.FetchTimeout)
	}
	if cfg.MaxConcurrent != 2 || !cfg.Verbose || !cfg.SkipTLSVerify {
		t.Fatalf("unexpected cfg: %+v", cfg)
	}
}

func TestApplyEnvToConfig_ExplicitValuesWin(t *testing.T) {
	t.Setenv("OLLAMA_MODEL", "from-env")
	t.Setenv("FETCH_TIMEOUT", "5s")
	cfg := Config{Model: "from-flag", FetchTimeout: time.Second}
	ApplyEnvToConfig(&cfg)
	if cfg.Model != "from-flag" || cfg.FetchTimeout != time.Second {
		t.Fatalf("env overrode explicit values: %+v", cfg)
	}
}
