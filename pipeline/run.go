package pipeline

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/vegasq/tibble/output"
	"github.com/vegasq/tibble/reader"
	"github.com/vegasq/tibble/tibble"
)

// Run reads the pipeline input, applies its steps and writes the output
// when one is set. The result is returned either way.
func Run(ctx context.Context, p *Pipeline, logger *zap.Logger) (*tibble.Tibble, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	logger = logger.With(zap.String("pipeline", p.Name))

	t, err := reader.ReadMultipleFiles(ctx, p.path(p.Input))
	if err != nil {
		return nil, fmt.Errorf("failed to read input: %w", err)
	}
	logger.Debug("input loaded",
		zap.String("input", p.Input),
		zap.Int("rows", t.Nrow()),
		zap.Int("cols", t.Ncol()))

	t, err = p.Apply(ctx, t, logger)
	if err != nil {
		return nil, err
	}

	if p.Output != "" {
		if err := output.WriteFile(p.path(p.Output), t); err != nil {
			return nil, fmt.Errorf("failed to write output: %w", err)
		}
		logger.Info("output written",
			zap.String("output", p.Output),
			zap.Int("rows", t.Nrow()))
	}
	return t, nil
}

// Apply runs the steps against t, checking ctx between steps
func (p *Pipeline) Apply(ctx context.Context, t *tibble.Tibble, logger *zap.Logger) (*tibble.Tibble, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	for i, step := range p.Steps {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		v, ok := verbs[step.Verb]
		if !ok {
			return nil, fmt.Errorf("step %d: %w: unknown verb %q", i+1, ErrInvalidPipeline, step.Verb)
		}

		start := time.Now()
		out, err := v.apply(ctx, p, t, step)
		if err != nil {
			return nil, fmt.Errorf("step %d (%s): %w", i+1, step.Verb, err)
		}
		t = out
		logger.Debug("step applied",
			zap.Int("step", i+1),
			zap.String("verb", step.Verb),
			zap.Strings("groupby", step.GroupBy),
			zap.Int("rows", t.Nrow()),
			zap.Int("cols", t.Ncol()),
			zap.Duration("elapsed", time.Since(start)))
	}
	return t, nil
}
