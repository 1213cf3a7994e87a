package llm

import (
	"context"
)

// Generator produces a completion for a single prompt. Implementations make
// exactly one non-streaming backend call per invocation.
type Generator interface {
	Generate(ctx context.Context, model string, prompt string) (string, error)
}

// ModelLister reports the model names a backend currently serves.
type ModelLister interface {
	ListModelNames(ctx context.Context) ([]string, error)
}

// Backend is a generation backend that can also report its models.
type Backend interface {
	Generator
	ModelLister
}
