package main

import (
	"encoding/json"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// ollama-stub serves /api/tags and /api/generate so the pipeline can be run
// end to end without a model. Generation echoes the first sentences of the
// page content as bullet points.
func main() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})

	model := os.Getenv("MODEL_ID")
	if strings.TrimSpace(model) == "" {
		model = "test-model:latest"
	}
	addr := os.Getenv("ADDR")
	if strings.TrimSpace(addr) == "" {
		addr = ":11434"
	}

	log.Info().Str("addr", addr).Str("model", model).Msg("ollama-stub listening")
	if err := http.ListenAndServe(addr, newMux(model)); err != nil {
		log.Fatal().Err(err).Msg("listen")
	}
}

type generateRequest struct {
	Model  string `json:"model"`
	Prompt string `json:"prompt"`
	Stream bool   `json:"stream"`
}

func newMux(model string) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/api/tags", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]any{
			"models": []map[string]any{{"name": model, "model": model}},
		})
	})
	mux.HandleFunc("/api/generate", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			writeJSON(w, http.StatusMethodNotAllowed, map[string]string{"error": "method not allowed"})
			return
		}
		defer r.Body.Close()
		var req generateRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body"})
			return
		}
		if req.Model != model && req.Model+":latest" != model {
			writeJSON(w, http.StatusNotFound, map[string]string{"error": "model '" + req.Model + "' not found"})
			return
		}
		log.Debug().Int("prompt_chars", len(req.Prompt)).Msg("generate")
		writeJSON(w, http.StatusOK, map[string]any{
			"model":    req.Model,
			"response": summarize(req.Prompt),
			"done":     true,
		})
	})
	return mux
}

var sentenceEnd = regexp.MustCompile(`[.!?](\s|$)`)

// summarize returns up to three sentences from the page content section of
// the prompt, or "not found" when there is none.
func summarize(prompt string) string {
	content := prompt
	if _, after, ok := strings.Cut(prompt, "Page content:"); ok {
		content = after
	}
	content = strings.Join(strings.Fields(content), " ")
	var bullets []string
	for len(content) > 0 && len(bullets) < 3 {
		loc := sentenceEnd.FindStringIndex(content)
		end := len(content)
		if loc != nil {
			end = loc[0] + 1
		}
		if s := strings.TrimSpace(content[:end]); s != "" {
			bullets = append(bullets, "- "+s)
		}
		content = strings.TrimSpace(content[end:])
	}
	if len(bullets) == 0 {
		return "not found"
	}
	return strings.Join(bullets, "\n")
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
