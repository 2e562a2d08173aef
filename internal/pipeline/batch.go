// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package pipeline

import (
	"context"
	"fmt"

	"github.com/sourcegraph/conc/pool"

	"github.com/pdiddy/docgen/pkg/types"
)

// BatchResult holds the outcome of a batch generation run. Results and
// States are in request order.
type BatchResult struct {
	Saved     int
	Cancelled int
	Failed    int
	Results   []types.GenerateResult
	States    []*types.RunState
}

// Total returns the number of requests processed.
func (r BatchResult) Total() int {
	return r.Saved + r.Cancelled + r.Failed
}

// HasFailures reports whether any request failed. Cancelled requests are
// not failures.
func (r BatchResult) HasFailures() bool {
	return r.Failed > 0
}

// Summary returns the one-line tally printed after a batch.
func (r BatchResult) Summary() string {
	return fmt.Sprintf("Batch summary: %d saved, %d cancelled, %d failed (total: %d)",
		r.Saved, r.Cancelled, r.Failed, r.Total())
}

// GenerateBatch runs Generate for every request with at most workers runs in
// flight (one when workers < 1). Each run has its own state. It continues
// after individual failures and prints one line per failure.
func (o *Orchestrator) GenerateBatch(ctx context.Context, reqs []GenerateRequest, workers int) BatchResult {
	if workers < 1 {
		workers = 1
	}

	result := BatchResult{
		Results: make([]types.GenerateResult, len(reqs)),
		States:  make([]*types.RunState, len(reqs)),
	}

	p := pool.New().WithMaxGoroutines(workers)
	for i, req := range reqs {
		p.Go(func() {
			state := types.NewRunState(req.TemplatePath)
			result.Results[i] = o.Generate(ctx, req, state)
			result.States[i] = state
		})
	}
	p.Wait()

	for i, res := range result.Results {
		switch res.Outcome {
		case types.OutcomeSaved:
			result.Saved++
		case types.OutcomeCancelled:
			result.Cancelled++
		default:
			result.Failed++
			o.printf("failed: %s: %s\n", label(reqs[i], i), res.Error)
		}
	}
	return result
}

func label(req GenerateRequest, i int) string {
	if req.Destination != "" {
		return req.Destination
	}
	return fmt.Sprintf("record %d", i+1)
}

func (o *Orchestrator) printf(format string, args ...any) {
	o.outMu.Lock()
	fmt.Fprintf(o.out, format, args...)
	o.outMu.Unlock()
}
