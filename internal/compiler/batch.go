package compiler

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/roach88/systolic/internal/hardware"
	"github.com/roach88/systolic/internal/ir"
)

// Request is one independent compilation in a batch.
type Request struct {
	Name   string
	Source string
	Shapes map[string]ir.Dims
	Config hardware.Config
	Strict bool
}

// Outcome pairs a request with its result. Exactly one of Program and Err
// is set.
type Outcome struct {
	Request Request
	Program *hardware.Program
	Err     error
}

// CompileAll compiles reqs in parallel, at most limit at a time (limit <= 0
// means unbounded). Outcomes are returned in request order. A failing
// compilation does not stop the others; only cancellation of ctx aborts the
// batch, in which case the context error is returned.
func CompileAll(ctx context.Context, reqs []Request, limit int, opts ...Option) ([]Outcome, error) {
	outcomes := make([]Outcome, len(reqs))

	g, ctx := errgroup.WithContext(ctx)
	if limit > 0 {
		g.SetLimit(limit)
	}
	for i, req := range reqs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			reqOpts := opts
			if req.Strict {
				reqOpts = append(append([]Option(nil), opts...), WithStrictVariables())
			}
			prog, err := CompileSource(req.Source, req.Shapes, req.Config, reqOpts...)
			outcomes[i] = Outcome{Request: req, Program: prog, Err: err}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}
