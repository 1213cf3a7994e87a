package search

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"strings"
)

// FileProvider loads search results from a local JSON file for offline use.
// The JSON file format is an array of objects: {"title": "...", "url": "...", "snippet": "..."}.
// Entries are matched case-insensitively against the query; an empty query
// matches everything.
type FileProvider struct {
	Path string
}

func (f *FileProvider) Name() string { return "file" }

func (f *FileProvider) Search(_ context.Context, query string, limit int) ([]Result, error) {
	if strings.TrimSpace(f.Path) == "" {
		return nil, errors.New("file provider path is empty")
	}
	b, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, err
	}
	var raw []Result
	if err := json.Unmarshal(b, &raw); err != nil {
		return nil, err
	}
	limit = Clamp(limit)
	terms := strings.Fields(strings.ToLower(query))
	out := make([]Result, 0, limit)
	for _, r := range raw {
		if r.URL == "" {
			continue
		}
		if !matchesAny(strings.ToLower(r.Title+" "+r.Snippet), terms) {
			continue
		}
		r.Source = f.Name()
		out = append(out, r)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

func matchesAny(haystack string, terms []string) bool {
	if len(terms) == 0 {
		return true
	}
	for _, t := range terms {
		if strings.Contains(haystack, t) {
			return true
		}
	}
	return false
}
