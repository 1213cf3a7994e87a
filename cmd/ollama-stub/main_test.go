package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/hyperifyio/searchfacts/internal/llm"
)

func TestStub_ServesOllamaAPI(t *testing.T) {
	srv := httptest.NewServer(newMux("stub:latest"))
	defer srv.Close()

	c := &llm.OllamaClient{GenerateURL: srv.URL + "/api/generate"}
	names, err := c.ListModelNames(context.Background())
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(names) == 0 || names[0] != "stub:latest" {
		t.Fatalf("names=%v", names)
	}

	out, err := c.Generate(context.Background(), "stub", "Rules...\n\nPage content:\n\nGo 1.0 shipped in 2012. It is fast! Third one? Fourth.")
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	want := "- Go 1.0 shipped in 2012.\n- It is fast!\n- Third one?"
	if out != want {
		t.Fatalf("got %q, want %q", out, want)
	}

	if _, err := c.Generate(context.Background(), "other", "x"); err == nil {
		t.Fatalf("expected error for unknown model")
	}
}

func TestStub_RejectsGet(t *testing.T) {
	srv := httptest.NewServer(newMux("m"))
	defer srv.Close()
	resp, err := http.Get(srv.URL + "/api/generate")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("status=%d", resp.StatusCode)
	}
}

func TestSummarize_NotFound(t *testing.T) {
	if got := summarize("Page content:\n\n   "); got != "not found" {
		t.Fatalf("got %q", got)
	}
	if got := summarize("no marker here"); !strings.HasPrefix(got, "- no marker here") {
		t.Fatalf("got %q", got)
	}
}
