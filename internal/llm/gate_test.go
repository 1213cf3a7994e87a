package llm

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type countingLister struct {
	names []string
	err   error
	delay time.Duration
	calls atomic.Int32
}

func (l *countingLister) ListModelNames(ctx context.Context) ([]string, error) {
	l.calls.Add(1)
	if l.delay > 0 {
		time.Sleep(l.delay)
	}
	return l.names, l.err
}

func TestGate_InitialStatus(t *testing.T) {
	g := &Gate{Lister: &countingLister{}, Model: "m"}
	s := g.Status()
	if s.Checked || !s.Available || s.Err != nil {
		t.Fatalf("unexpected initial status: %+v", s)
	}
}

func TestGate_ModelMissing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"models":[{"name":"other:latest"}]}`))
	}))
	defer srv.Close()

	g := &Gate{Lister: &OllamaClient{GenerateURL: srv.URL + "/api/generate"}, Model: "llama3.1:8b"}
	s := g.Ensure(context.Background())
	if !s.Checked || s.Available {
		t.Fatalf("expected checked and unavailable, got %+v", s)
	}
	if !errors.Is(s.Err, ErrModelNotFound) || s.Err.Error() != "Model not found: llama3.1:8b" {
		t.Fatalf("unexpected error: %v", s.Err)
	}
}

func TestGate_ListFailureIsStored(t *testing.T) {
	l := &countingLister{err: errors.New("connection refused")}
	g := &Gate{Lister: l, Model: "m"}
	s := g.Ensure(context.Background())
	if s.Available || s.Err == nil || !strings.Contains(s.Err.Error(), "connection refused") {
		t.Fatalf("unexpected status: %+v", s)
	}
}

func TestGate_ChecksOnlyOnce(t *testing.T) {
	l := &countingLister{names: []string{"other"}}
	g := &Gate{Lister: l, Model: "m"}
	first := g.Ensure(context.Background())
	second := g.Ensure(context.Background())
	if first.Available || second.Available {
		t.Fatalf("expected unavailable")
	}
	if n := l.calls.Load(); n != 1 {
		t.Fatalf("expected a single availability check, got %d", n)
	}
}

func TestGate_ConcurrentFirstUseSharesOneCheck(t *testing.T) {
	l := &countingLister{names: []string{"m"}, delay: 50 * time.Millisecond}
	g := &Gate{Lister: l, Model: "m"}

	var wg sync.WaitGroup
	start := make(chan struct{})
	results := make([]Status, 8)
	for i := range results {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			results[i] = g.Ensure(context.Background())
		}()
	}
	close(start)
	wg.Wait()

	if n := l.calls.Load(); n != 1 {
		t.Fatalf("expected one check for concurrent callers, got %d", n)
	}
	for i, s := range results {
		if !s.Checked || !s.Available || s.Err != nil {
			t.Fatalf("caller %d: unexpected status %+v", i, s)
		}
	}
}

func TestGate_ResetAllowsRecheck(t *testing.T) {
	l := &countingLister{names: []string{"m"}}
	g := &Gate{Lister: l, Model: "m"}
	g.Ensure(context.Background())
	g.Reset()
	if g.Status().Checked {
		t.Fatalf("expected unchecked after reset")
	}
	g.Ensure(context.Background())
	if n := l.calls.Load(); n != 2 {
		t.Fatalf("expected two checks across reset, got %d", n)
	}
}

func TestGate_CallerCancellationDoesNotPoisonCheck(t *testing.T) {
	lister := listerFunc(func(ctx context.Context) ([]string, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return []string{"m"}, nil
	})
	g := &Gate{Lister: lister, Model: "m"}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if s := g.Ensure(ctx); !s.Available {
		t.Fatalf("expected available despite cancelled caller, got %+v", s)
	}
}

type listerFunc func(ctx context.Context) ([]string, error)

func (f listerFunc) ListModelNames(ctx context.Context) ([]string, error) { return f(ctx) }

func TestHasModel(t *testing.T) {
	tests := []struct {
		names []string
		model string
		want  bool
	}{
		{[]string{"llama3.1:8b"}, "llama3.1:8b", true},
		{[]string{"llama3:latest"}, "llama3", true},
		{[]string{"llama3:8b"}, "llama3", false},
		{[]string{"other:latest"}, "llama3.1:8b", false},
		{[]string{"m"}, "", false},
	}
	for _, tt := range tests {
		if got := hasModel(tt.names, tt.model); got != tt.want {
			t.Errorf("hasModel(%v, %q) = %v, want %v", tt.names, tt.model, got, tt.want)
		}
	}
}
