package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchfacts/internal/search"
)

// debugsearch runs only the search step and prints the retained hits.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	var (
		provider string
		searxURL string
		file     string
		k        int
	)
	flag.StringVar(&provider, "provider", envOr("SEARCH_PROVIDER", "duckduckgo"), "duckduckgo, searxng or file")
	flag.StringVar(&searxURL, "searx.url", envOr("SEARX_URL", "http://localhost:8888"), "SearxNG base URL")
	flag.StringVar(&file, "file", os.Getenv("SEARCH_FILE"), "JSON results file for the file provider")
	flag.IntVar(&k, "k", search.MaxResults, "Number of results (clamped)")
	flag.Parse()

	q := "What is love?"
	if flag.NArg() > 0 {
		q = strings.Join(flag.Args(), " ")
	}

	var prov search.Provider
	switch provider {
	case "searxng":
		prov = &search.SearxNG{BaseURL: searxURL}
	case "file":
		prov = &search.FileProvider{Path: file}
	default:
		prov = &search.DuckDuckGo{}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Second)
	defer cancel()
	res, err := prov.Search(ctx, q, search.Clamp(k))
	if err != nil {
		log.Error().Err(err).Str("provider", prov.Name()).Str("query", q).Msg("search failed")
		os.Exit(1)
	}
	for i, r := range res {
		fmt.Printf("%d. %s | %s\n", i+1, r.Title, r.URL)
		if r.Snippet != "" {
			fmt.Printf("   %s\n", r.Snippet)
		}
	}
}

func envOr(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}
