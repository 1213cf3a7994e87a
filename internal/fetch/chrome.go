package fetch

import (
	"context"
	"fmt"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/hyperifyio/searchfacts/internal/extract"
)

// ChromeRenderer renders pages in headless Chrome. Each session owns one
// browser process; each URL gets its own tab.
type ChromeRenderer struct {
	UserAgent string
	// ExecPath overrides Chrome discovery when set.
	ExecPath string
	// Timeout bounds each page render. Zero means 30s.
	Timeout time.Duration
}

func (r *ChromeRenderer) Open(ctx context.Context) (Session, error) {
	opts := append(chromedp.DefaultExecAllocatorOptions[:],
		chromedp.Flag("headless", true),
	)
	if r.UserAgent != "" {
		opts = append(opts, chromedp.UserAgent(r.UserAgent))
	}
	if r.ExecPath != "" {
		opts = append(opts, chromedp.ExecPath(r.ExecPath))
	}
	actx, cancelAlloc := chromedp.NewExecAllocator(context.WithoutCancel(ctx), opts...)
	bctx, cancelBrowser := chromedp.NewContext(actx)
	// An empty Run starts the browser so launch errors surface here.
	if err := chromedp.Run(bctx); err != nil {
		cancelBrowser()
		cancelAlloc()
		return nil, fmt.Errorf("start browser: %w", err)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &chromeSession{browser: bctx, timeout: timeout, cancel: func() {
		cancelBrowser()
		cancelAlloc()
	}}, nil
}

type chromeSession struct {
	browser context.Context
	timeout time.Duration
	cancel  func()
}

func (s *chromeSession) Render(ctx context.Context, rawURL string) (extract.Page, error) {
	tctx, cancelTab := chromedp.NewContext(s.browser)
	defer cancelTab()
	tctx, cancelTimeout := context.WithTimeout(tctx, s.timeout)
	defer cancelTimeout()
	stop := context.AfterFunc(ctx, cancelTab)
	defer stop()

	var html string
	err := chromedp.Run(tctx,
		chromedp.Navigate(rawURL),
		chromedp.WaitReady("body", chromedp.ByQuery),
		chromedp.OuterHTML("html", &html, chromedp.ByQuery),
	)
	if err != nil {
		return extract.Page{}, err
	}
	return extract.Convert([]byte(html), rawURL), nil
}

func (s *chromeSession) Close() error {
	s.cancel()
	return nil
}
