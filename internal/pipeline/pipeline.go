// Package pipeline wires the loaders, the join, the color scale, and the
// two renderers into a single run.
package pipeline

import (
	"context"
	"os"
	"path/filepath"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/chicago-health-atlas/healthmap/internal/config"
	"github.com/chicago-health-atlas/healthmap/internal/geodata"
	"github.com/chicago-health-atlas/healthmap/internal/join"
	"github.com/chicago-health-atlas/healthmap/internal/render/poster"
	"github.com/chicago-health-atlas/healthmap/internal/render/webmap"
	"github.com/chicago-health-atlas/healthmap/internal/scale"
	"github.com/chicago-health-atlas/healthmap/internal/tabular"
)

// Pipeline runs the full load, join, scale, and dual-render sequence.
type Pipeline struct {
	cfg    *config.Config
	poster *poster.Renderer
	webmap *webmap.Renderer
}

// Result describes the artifacts of a completed run.
type Result struct {
	PosterPath string
	WebmapPath string
	Features   int
	Summary    scale.Summary
}

// New creates a Pipeline with renderers built from configuration.
func New(cfg *config.Config) *Pipeline {
	return &Pipeline{
		cfg:    cfg,
		poster: poster.New(cfg.Poster),
		webmap: webmap.New(cfg.Webmap),
	}
}

// Columns lists the metric columns available in the tabular source.
func (p *Pipeline) Columns(ctx context.Context) ([]string, error) {
	table, err := tabular.Load(ctx, p.cfg.Metric.Path)
	if err != nil {
		return nil, err
	}
	return table.MetricColumns(), nil
}

// Run executes the pipeline for one metric. Fatal errors (missing source,
// schema violation, unknown metric) abort before any artifact is written;
// the two renderers then run concurrently over the read-only joined set.
func (p *Pipeline) Run(ctx context.Context, metric string) (*Result, error) {
	log := zap.L().With(
		zap.String("component", "pipeline"),
		zap.String("run_id", uuid.NewString()),
		zap.String("metric", metric),
	)
	log.Info("starting run")

	boundaries, err := geodata.Load(p.cfg.Geo.Path)
	if err != nil {
		return nil, err
	}
	table, err := tabular.Load(ctx, p.cfg.Metric.Path)
	if err != nil {
		return nil, err
	}

	joined, err := join.Join(boundaries, table, metric)
	if err != nil {
		return nil, err
	}

	values := join.Values(joined)
	bounds := scale.Compute(values)
	summary := scale.Summarize(values)
	log.Info("metric distribution",
		zap.Int("values", summary.Count),
		zap.Int("nulls", summary.Nulls),
		zap.Float64("min", summary.Min),
		zap.Float64("max", summary.Max),
		zap.Float64("mean", summary.Mean),
		zap.Float64("scale_low", bounds.Low),
		zap.Float64("scale_high", bounds.High),
	)

	if err := os.MkdirAll(p.cfg.Output.Dir, 0o755); err != nil {
		return nil, err
	}

	result := &Result{
		PosterPath: filepath.Join(p.cfg.Output.Dir, p.cfg.Output.PosterFile),
		WebmapPath: filepath.Join(p.cfg.Output.Dir, p.cfg.Output.WebmapFile),
		Features:   len(joined),
		Summary:    summary,
	}

	// The renderers share only the read-only joined set.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		data, err := p.poster.Render(gctx, joined, bounds, metric)
		if err != nil {
			return err
		}
		return os.WriteFile(result.PosterPath, data, 0o644)
	})
	g.Go(func() error {
		data, err := p.webmap.Render(joined, metric)
		if err != nil {
			return err
		}
		return os.WriteFile(result.WebmapPath, data, 0o644)
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	log.Info("run complete",
		zap.String("poster", result.PosterPath),
		zap.String("webmap", result.WebmapPath),
		zap.Int("features", result.Features),
	)
	return result, nil
}
