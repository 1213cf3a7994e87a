package main

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchfacts/internal/app"
)

// Exit statuses. A missing query is a request-level error and still exits 0.
const (
	exitOK           = 0
	exitSearchFailed = 1
	exitConfig       = 2
)

func main() {
	// Logging setup; stdout carries only the JSON response.
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	os.Exit(run(context.Background(), os.Args[1:], os.Stdin, os.Stdout))
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) int {
	fs := flag.NewFlagSet("searchfacts", flag.ContinueOnError)
	var (
		cfg         app.Config
		configPath  string
		envFiles    string
		showVersion bool
	)
	fs.StringVar(&configPath, "config", os.Getenv("SEARCHFACTS_CONFIG"), "Path to YAML or JSON config file")
	fs.StringVar(&envFiles, "env", ".env", "Comma-separated dotenv files to load before reading the environment")
	fs.BoolVar(&cfg.Verbose, "v", false, "Verbose logging")
	fs.BoolVar(&showVersion, "version", false, "Print version and exit")
	fs.StringVar(&cfg.GenerateURL, "llm.url", "", "Generation endpoint (Ollama /api/generate or OpenAI-compatible base URL)")
	fs.StringVar(&cfg.Model, "llm.model", "", "Model name")
	fs.StringVar(&cfg.LLMBackend, "llm.backend", "", "Generation backend: ollama or openai")
	fs.StringVar(&cfg.SearchProvider, "search.provider", "", "Search provider: duckduckgo, searxng or file")
	fs.StringVar(&cfg.SearchFile, "search.file", "", "Path to JSON results file for the file provider")
	fs.StringVar(&cfg.SearxURL, "searx.url", "", "SearxNG base URL")
	fs.StringVar(&cfg.FetchBackend, "fetch.backend", "", "Page fetch backend: http or chromedp")
	fs.DurationVar(&cfg.FetchTimeout, "fetch.timeout", 0, "Per-page fetch timeout (default 30s)")
	fs.IntVar(&cfg.MaxConcurrent, "max.concurrent", 0, "Cap on concurrent fetches and extractions (0 = one per result)")
	if err := fs.Parse(args); err != nil {
		return exitConfig
	}
	if showVersion {
		fmt.Fprintf(stdout, "searchfacts %s (%s, %s)\n", app.BuildVersion, app.BuildCommit, app.BuildDate)
		return exitOK
	}

	if err := app.LoadEnvFiles(splitList(envFiles)...); err != nil {
		log.Warn().Err(err).Msg("dotenv load failed")
	}
	app.ApplyEnvToConfig(&cfg)
	if configPath != "" {
		fc, err := app.LoadConfigFile(configPath)
		if err != nil {
			log.Error().Err(err).Str("path", configPath).Msg("config file")
			writeJSON(stdout, app.ErrorResponse{Error: fmt.Sprintf("config: %v", err)})
			return exitConfig
		}
		app.ApplyFileConfig(&cfg, fc)
	}
	app.ApplyDefaults(&cfg)

	if cfg.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	req, err := app.ParseRequest(readLine(stdin))
	if errors.Is(err, app.ErrMissingQuery) {
		writeJSON(stdout, app.ErrorResponse{Error: err.Error()})
		return exitOK
	}

	a, err := app.New(cfg)
	if err != nil {
		log.Error().Err(err).Msg("init failed")
		writeJSON(stdout, app.ErrorResponse{Error: err.Error()})
		return exitConfig
	}

	out, err := a.Handle(ctx, req)
	writeJSON(stdout, out)
	if err != nil {
		return exitSearchFailed
	}
	return exitOK
}

// readLine returns the first line of r without its terminator, or nil when
// nothing is available.
func readLine(r io.Reader) []byte {
	if r == nil {
		return nil
	}
	line, err := bufio.NewReader(r).ReadBytes('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		log.Debug().Err(err).Msg("stdin read")
		return nil
	}
	return line
}

func writeJSON(w io.Writer, v any) {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		log.Error().Err(err).Msg("encode response")
	}
}

func splitList(s string) []string {
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if v := strings.TrimSpace(p); v != "" {
			out = append(out, v)
		}
	}
	return out
}
