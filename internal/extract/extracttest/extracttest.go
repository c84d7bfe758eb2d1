// Package extracttest provides Extractor doubles for tests of code that
// depends on extraction.
package extracttest

import (
	"context"
	"sync"

	"github.com/zjrosen/automator/internal/workflow"
)

// Static returns the same result for every call and records the prompts.
type Static struct {
	Automation workflow.Automation
	Err        error

	mu      sync.Mutex
	prompts []string
}

// Extract implements extract.Extractor.
func (s *Static) Extract(ctx context.Context, prompt string) (workflow.Automation, error) {
	s.mu.Lock()
	s.prompts = append(s.prompts, prompt)
	s.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return workflow.Automation{}, err
	}
	if s.Err != nil {
		return workflow.Automation{}, s.Err
	}
	return s.Automation.Clone(), nil
}

// Prompts returns every prompt received so far.
func (s *Static) Prompts() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.prompts...)
}

// Func adapts a function to extract.Extractor.
type Func func(ctx context.Context, prompt string) (workflow.Automation, error)

// Extract implements extract.Extractor.
func (f Func) Extract(ctx context.Context, prompt string) (workflow.Automation, error) {
	return f(ctx, prompt)
}
