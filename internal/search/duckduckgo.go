package search

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/rs/zerolog/log"
)

const (
	// DuckDuckGoHTMLURL is the no-JavaScript results endpoint.
	DuckDuckGoHTMLURL = "https://html.duckduckgo.com/html/"
	duckDuckGoDomain  = "duckduckgo.com"

	// BrowserUserAgent is sent with result page requests; the HTML endpoint
	// serves a bot challenge to obviously automated agents.
	BrowserUserAgent = "Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) " +
		"AppleWebKit/537.36 (KHTML, like Gecko) " +
		"Chrome/120.0.0.0 Safari/537.36"

	defaultSearchTimeout = 20 * time.Second
)

// ErrStatus is wrapped by providers when the backend answers with a non-2xx status.
var ErrStatus = errors.New("search backend status")

// DuckDuckGo implements Provider by scraping the DuckDuckGo HTML results page.
// Redirect wrappers are unwrapped and anything still pointing at DuckDuckGo
// itself (ads, trackers) is dropped.
type DuckDuckGo struct {
	Endpoint   string // defaults to DuckDuckGoHTMLURL
	HTTPClient *http.Client
	UserAgent  string // defaults to BrowserUserAgent
	// Timeout bounds the whole lookup. Zero means 20s.
	Timeout time.Duration
}

func (d *DuckDuckGo) Name() string { return "duckduckgo" }

func (d *DuckDuckGo) Search(ctx context.Context, query string, limit int) ([]Result, error) {
	ctx, cancel := withSearchTimeout(ctx, d.Timeout)
	defer cancel()
	limit = Clamp(limit)
	endpoint := d.Endpoint
	if endpoint == "" {
		endpoint = DuckDuckGoHTMLURL
	}
	u, err := url.Parse(endpoint)
	if err != nil {
		return nil, fmt.Errorf("parse endpoint: %w", err)
	}
	q := u.Query()
	q.Set("q", query)
	u.RawQuery = q.Encode()

	body, err := getBody(ctx, d.HTTPClient, u.String(), d.UserAgent)
	if err != nil {
		return nil, err
	}
	defer body.Close()
	out, err := parseResults(body, limit)
	if err != nil {
		return nil, err
	}
	for i := range out {
		out[i].Source = d.Name()
	}
	log.Debug().Str("query", query).Int("hits", len(out)).Msg("duckduckgo results")
	return out, nil
}

// parseResults walks the .result blocks of a results page in document order
// and keeps at most limit content links.
func parseResults(r io.Reader, limit int) ([]Result, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse results html: %w", err)
	}
	out := make([]Result, 0, limit)
	doc.Find(".result").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		link := s.Find(".result__a").First()
		href, ok := link.Attr("href")
		if !ok || strings.TrimSpace(href) == "" {
			return true
		}
		target, keep := resolveLink(strings.TrimSpace(href))
		if !keep {
			log.Debug().Str("href", href).Msg("dropping backend-internal link")
			return true
		}
		out = append(out, Result{
			Title:   collapse(link.Text()),
			URL:     target,
			Snippet: collapse(s.Find(".result__snippet").First().Text()),
		})
		return len(out) < limit
	})
	return out, nil
}

// resolveLink normalizes a result href to its content URL. The second return
// is false when the link belongs to the search backend itself.
func resolveLink(href string) (string, bool) {
	if strings.HasPrefix(href, "//") {
		href = "https:" + href
	}
	u, err := url.Parse(href)
	if err != nil {
		return href, true
	}
	if isBackendHost(u.Hostname()) && strings.HasPrefix(u.Path, "/l/") {
		if target := u.Query().Get("uddg"); target != "" {
			href = target
			if u, err = url.Parse(href); err != nil {
				return href, true
			}
		}
	}
	if isBackendHost(u.Hostname()) {
		return "", false
	}
	return href, true
}

// isBackendHost reports whether host is DuckDuckGo or one of its subdomains.
// An empty host means a relative link on the results page, which also
// resolves to the backend.
func isBackendHost(host string) bool {
	host = strings.ToLower(strings.TrimSuffix(host, "."))
	return host == "" || host == duckDuckGoDomain || strings.HasSuffix(host, "."+duckDuckGoDomain)
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
