package fetch

import (
	"context"
	"fmt"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/hyperifyio/searchfacts/internal/extract"
)

// Renderer opens rendering sessions. One session serves a whole batch.
type Renderer interface {
	Open(ctx context.Context) (Session, error)
}

// Session renders individual URLs. Render must be safe for concurrent use.
type Session interface {
	Render(ctx context.Context, url string) (extract.Page, error)
	Close() error
}

// Outcome is the result of fetching one URL: Content on success, Err on
// failure. Exactly one of the two is meaningful.
type Outcome struct {
	URL     string
	Content string
	Err     error
}

// Failed reports whether the fetch did not produce content.
func (o Outcome) Failed() bool { return o.Err != nil }

// Fetcher fans a batch of URLs out over a single Renderer session.
type Fetcher struct {
	Renderer Renderer
	// MaxConcurrent caps in-flight renders. Zero means one task per URL.
	MaxConcurrent int
}

// FetchAll renders every URL concurrently and returns one Outcome per URL in
// input order. A failing URL never affects its siblings, and FetchAll itself
// never fails: session errors are reported on every position.
func (f *Fetcher) FetchAll(ctx context.Context, urls []string) []Outcome {
	out := make([]Outcome, len(urls))
	if len(urls) == 0 {
		return out
	}
	for i, u := range urls {
		out[i].URL = u
	}

	sess, err := f.Renderer.Open(ctx)
	if err != nil {
		log.Warn().Err(err).Int("urls", len(urls)).Msg("render session failed to open")
		for i := range out {
			out[i].Err = fmt.Errorf("open session: %w", err)
		}
		return out
	}
	defer func() {
		if err := sess.Close(); err != nil {
			log.Debug().Err(err).Msg("render session close")
		}
	}()

	limit := f.MaxConcurrent
	if limit <= 0 || limit > len(urls) {
		limit = len(urls)
	}
	var g errgroup.Group
	g.SetLimit(limit)
	for i, u := range urls {
		g.Go(func() error {
			out[i] = renderOne(ctx, sess, u)
			if out[i].Failed() {
				log.Warn().Err(out[i].Err).Str("url", u).Msg("fetch failed")
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}

func renderOne(ctx context.Context, sess Session, u string) (o Outcome) {
	o.URL = u
	defer func() {
		if r := recover(); r != nil {
			o.Content = ""
			o.Err = fmt.Errorf("render panic: %v", r)
		}
	}()
	page, err := sess.Render(ctx, u)
	if err != nil {
		o.Err = err
		return o
	}
	o.Content = page.Content()
	return o
}
