package search

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// SearxNG queries a SearxNG instance's JSON /search endpoint.
type SearxNG struct {
	BaseURL    string
	APIKey     string // optional
	HTTPClient *http.Client
	UserAgent  string // optional custom UA
	// Timeout bounds the whole lookup. Zero means 20s.
	Timeout time.Duration
}

func (s *SearxNG) Name() string { return "searxng" }

func (s *SearxNG) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(s.BaseURL) == "" {
		return nil, errors.New("missing searxng base url")
	}
	ctx, cancel := withSearchTimeout(ctx, s.Timeout)
	defer cancel()
	limit = Clamp(limit)
	u, err := url.Parse(strings.TrimSpace(s.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("parse searxng url: %w", err)
	}
	if !strings.HasSuffix(u.Path, "/search") {
		u.Path = strings.TrimRight(u.Path, "/") + "/search"
	}
	q := u.Query()
	q.Set("q", query)
	q.Set("format", "json")
	q.Set("safesearch", "1")
	q.Set("categories", "general")
	if s.APIKey != "" {
		q.Set("apikey", s.APIKey)
	}
	u.RawQuery = q.Encode()

	body, err := getBody(ctx, s.HTTPClient, u.String(), s.UserAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	var sr searxResponse
	if err := json.NewDecoder(body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("decode searxng response: %w", err)
	}
	out := make([]Result, 0, limit)
	for _, r := range sr.Results {
		link := strings.TrimSpace(r.URL)
		if link == "" {
			continue
		}
		out = append(out, Result{Title: collapse(r.Title), URL: link, Snippet: collapse(r.Content), Source: s.Name()})
		if len(out) == limit {
			break
		}
	}
	log.Debug().Str("query", query).Int("hits", len(out)).Msg("searxng results")
	return out, nil
}

type searxResponse struct {
	Results []struct {
		Title   string `json:"title"`
		URL     string `json:"url"`
		Content string `json:"content"`
	} `json:"results"`
}
