package app

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/hyperifyio/searchfacts/internal/search"
)

func TestParseRequest(t *testing.T) {
	cases := []struct {
		name  string
		line  string
		query string
		topK  int
		err   error
	}{
		{"empty line", "", "", 0, ErrMissingQuery},
		{"empty object", "{}", "", 0, ErrMissingQuery},
		{"malformed json", "{not json", "", 0, ErrMissingQuery},
		{"non-object json", `["x"]`, "", 0, ErrMissingQuery},
		{"empty query", `{"query":""}`, "", 0, ErrMissingQuery},
		{"query default top_k", `{"query":"go"}`, "go", search.MaxResults, nil},
		{"q alias", `{"q":"go"}`, "go", search.MaxResults, nil},
		{"falsy query falls back to q", `{"query":"","q":"alias"}`, "alias", search.MaxResults, nil},
		{"numeric query", `{"query":42}`, "42", search.MaxResults, nil},
		{"top_k int", `{"query":"x","top_k":2}`, "x", 2, nil},
		{"top_k string", `{"query":"x","top_k":" 2 "}`, "x", 2, nil},
		{"top_k float truncates", `{"query":"x","top_k":2.9}`, "x", 2, nil},
		{"top_k bad string", `{"query":"x","top_k":"bad"}`, "x", 5, nil},
		{"top_k object", `{"query":"x","top_k":{"n":1}}`, "x", 5, nil},
		{"top_k true", `{"query":"x","top_k":true}`, "x", 1, nil},
		{"limit alias", `{"query":"x","limit":1}`, "x", 1, nil},
		{"zero top_k falls back to limit", `{"query":"x","top_k":0,"limit":2}`, "x", 2, nil},
		{"null top_k uses default", `{"query":"x","top_k":null}`, "x", search.MaxResults, nil},
		{"negative top_k", `{"query":"x","top_k":-3}`, "x", -3, nil},
		{"huge top_k string", `{"query":"x","top_k":"99999999999999999999"}`, "x", 2147483647, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req, err := ParseRequest([]byte(tc.line))
			if !errors.Is(err, tc.err) {
				t.Fatalf("err=%v, want %v", err, tc.err)
			}
			if err != nil {
				return
			}
			if req.Query != tc.query || req.TopK != tc.topK {
				t.Fatalf("got %+v, want query=%q topK=%d", req, tc.query, tc.topK)
			}
		})
	}
}

func TestHandle_BadTopKFallsBackToFive(t *testing.T) {
	f := newFixture([]search.Result{hit("A")}, map[string]string{"https://a.example/": "alpha-body"})
	req, err := ParseRequest([]byte(`{"query":"x","top_k":"bad"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if _, err := f.app.Handle(context.Background(), req); err != nil {
		t.Fatalf("handle: %v", err)
	}
	// 5 clamps to MaxResults before reaching the provider.
	if got := f.provider.limits; len(got) != 1 || got[0] != search.MaxResults {
		t.Fatalf("provider limits = %v", got)
	}
}

func TestHandle_SearchFailureIsStructured(t *testing.T) {
	f := newFixture(nil, nil)
	f.provider.err = fmt.Errorf("%w: %d", search.ErrStatus, 502)
	out, err := f.app.Handle(context.Background(), Request{Query: "x", TopK: 3})
	if !errors.Is(err, ErrSearchFailed) {
		t.Fatalf("expected search failure, got %v", err)
	}
	b, _ := json.Marshal(out)
	if string(b) != `{"error":"search failed: search backend status: 502"}` {
		t.Fatalf("got %s", b)
	}
}

func TestHandle_Success(t *testing.T) {
	f := newFixture([]search.Result{hit("A")}, map[string]string{"https://a.example/": "alpha-body"})
	req, err := ParseRequest([]byte(`{"query":"x","limit":"1"}`))
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	out, err := f.app.Handle(context.Background(), req)
	if err != nil {
		t.Fatalf("handle: %v", err)
	}
	resp, ok := out.(Response)
	if !ok || len(resp.Results) != 1 || resp.Results[0].Facts != "- A fact." {
		t.Fatalf("unexpected output: %#v", out)
	}
}
