package facts

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/rs/zerolog/log"

	"github.com/hyperifyio/searchfacts/internal/llm"
)

const (
	// DefaultMaxChars bounds how much page content goes into one prompt.
	DefaultMaxChars = 6000
	defaultTimeout  = 60 * time.Second

	// NotFound is what the model is told to answer when the page has nothing relevant.
	NotFound = "not found"
)

// Result is the outcome of one extraction. An empty Text with a nil Err
// means the extractor ran and found nothing; a non-nil Err means it did not
// run to completion.
type Result struct {
	Text string
	Err  error
}

// OK reports whether the result carries usable facts.
func (r Result) OK() bool {
	return r.Err == nil && r.Text != ""
}

// Availability is the gate consulted before each model call.
type Availability interface {
	Ensure(ctx context.Context) llm.Status
}

// Extractor distills page content into query-relevant facts with one
// generation call per page.
type Extractor struct {
	Generator llm.Generator
	Gate      Availability
	Model     string
	MaxChars  int           // defaults to DefaultMaxChars
	Timeout   time.Duration // per generation call; defaults to 60s
}

// Extract never returns an error directly; failures are carried in Result.
func (e *Extractor) Extract(ctx context.Context, content string, query string) (res Result) {
	if strings.TrimSpace(content) == "" {
		return Result{}
	}
	if e.Generator == nil || strings.TrimSpace(e.Model) == "" {
		return Result{Err: errors.New("extractor not configured")}
	}
	if e.Gate != nil {
		if s := e.Gate.Ensure(ctx); !s.Available {
			err := s.Err
			if err == nil {
				err = errors.New("model unavailable")
			}
			log.Warn().Err(err).Str("model", e.Model).Msg("fact extraction skipped")
			return Result{Err: err}
		}
	}

	maxChars := e.MaxChars
	if maxChars <= 0 {
		maxChars = DefaultMaxChars
	}
	prompt := BuildPrompt(truncateRunes(content, maxChars), query)

	timeout := e.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	defer func() {
		if r := recover(); r != nil {
			res = Result{Err: fmt.Errorf("generation panic: %v", r)}
		}
	}()
	out, err := e.Generator.Generate(ctx, e.Model, prompt)
	if err != nil {
		log.Warn().Err(err).Str("model", e.Model).Msg("fact extraction failed")
		return Result{Err: err}
	}
	return Result{Text: strings.TrimSpace(out)}
}

// BuildPrompt asks for facts from content that answer query, and nothing else.
func BuildPrompt(content string, query string) string {
	var sb strings.Builder
	sb.WriteString("You extract facts from a single web page to answer a search query.")
	sb.WriteString("\n\nQuery: ")
	sb.WriteString(strings.TrimSpace(query))
	sb.WriteString("\n\nRules:")
	sb.WriteString("\n- Use only concrete facts stated in the page content below: names, numbers, dates, definitions, specific claims.")
	sb.WriteString("\n- Only include facts relevant to the query.")
	sb.WriteString("\n- Ignore navigation menus, cookie and legal notices, ads, sign-up prompts and other boilerplate.")
	sb.WriteString("\n- Answer in at most 5 short bullet points and under 120 words.")
	sb.WriteString("\n- If the page has no facts relevant to the query, reply exactly: ")
	sb.WriteString(NotFound)
	sb.WriteString("\n\nPage content:\n\n")
	sb.WriteString(content)
	return sb.String()
}

func truncateRunes(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
