package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"golang.org/x/sync/singleflight"
)

// ErrModelNotFound is wrapped when the configured model is not served.
var ErrModelNotFound = errors.New("Model not found")

const defaultGateTimeout = 10 * time.Second

// Status is the memoized outcome of a model availability check.
type Status struct {
	Checked   bool
	Available bool
	Err       error
}

// Gate checks once whether Model is served by Lister and remembers the answer
// until Reset. Concurrent first callers share a single in-flight check.
type Gate struct {
	Lister  ModelLister
	Model   string
	Timeout time.Duration // per check; defaults to 10s

	mu     sync.Mutex
	status *Status
	flight singleflight.Group
}

// Status returns the stored status without checking. Before the first check
// it reports the optimistic initial state.
func (g *Gate) Status() Status {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == nil {
		return Status{Available: true}
	}
	return *g.status
}

// Reset forgets the stored status so the next Ensure checks again.
func (g *Gate) Reset() {
	g.mu.Lock()
	g.status = nil
	g.mu.Unlock()
}

func (g *Gate) stored() (Status, bool) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.status == nil {
		return Status{}, false
	}
	return *g.status, true
}

// Ensure returns the stored status, running the availability check first if
// none is stored. The check itself ignores ctx cancellation and runs under
// its own timeout.
func (g *Gate) Ensure(ctx context.Context) Status {
	if s, ok := g.stored(); ok {
		return s
	}
	v, _, _ := g.flight.Do("check", func() (any, error) {
		if s, ok := g.stored(); ok {
			return s, nil
		}
		s := g.check(ctx)
		g.mu.Lock()
		g.status = &s
		g.mu.Unlock()
		return s, nil
	})
	return v.(Status)
}

func (g *Gate) check(ctx context.Context) Status {
	if g.Lister == nil {
		return Status{Checked: true, Err: errors.New("model lister not configured")}
	}
	timeout := g.Timeout
	if timeout <= 0 {
		timeout = defaultGateTimeout
	}
	ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()

	names, err := g.Lister.ListModelNames(ctx)
	if err != nil {
		log.Warn().Err(err).Str("model", g.Model).Msg("model availability check failed")
		return Status{Checked: true, Err: err}
	}
	if !hasModel(names, g.Model) {
		err := fmt.Errorf("%w: %s", ErrModelNotFound, g.Model)
		log.Warn().Strs("models", names).Str("model", g.Model).Msg("model not served")
		return Status{Checked: true, Err: err}
	}
	log.Info().Str("model", g.Model).Msg("model available")
	return Status{Checked: true, Available: true}
}

// hasModel matches exactly, treating an untagged name as ":latest".
func hasModel(names []string, model string) bool {
	model = strings.TrimSpace(model)
	if model == "" {
		return false
	}
	for _, n := range names {
		if n == model {
			return true
		}
		if !strings.Contains(model, ":") && n == model+":latest" {
			return true
		}
	}
	return false
}
