package job

import (
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"renditionmaker/logger"
	"renditionmaker/models"
)

type PlannerOptions struct {
	// Concurrency bounds how many pairs run at once. 1 keeps plan order.
	Concurrency int
	// GenerationTimeout bounds each generator call. Zero means no bound.
	GenerationTimeout time.Duration
	Now               func() time.Time
}

// Planner runs the rendition pairs of a JobConfig against one asset.
type Planner struct {
	generator RenditionGenerator
	store     AssetStore
	opts      PlannerOptions
}

func NewPlanner(generator RenditionGenerator, store AssetStore, opts PlannerOptions) *Planner {
	if opts.Concurrency < 1 {
		opts.Concurrency = 1
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	return &Planner{generator: generator, store: store, opts: opts}
}

// Plan lists the pairs of cfg in dispatch order: dimension tokens outer,
// MIME types inner.
func Plan(cfg models.JobConfig) []models.PlannedPair {
	pairs := make([]models.PlannedPair, 0, len(cfg.DimensionTokens)*len(cfg.MimeTypes))
	for _, dim := range cfg.DimensionTokens {
		for _, mt := range cfg.MimeTypes {
			pairs = append(pairs, models.PlannedPair{
				Index:          len(pairs),
				DimensionToken: dim,
				MimeType:       mt,
			})
		}
	}
	return pairs
}

// Execute attempts every planned pair. Malformed dimensions, skips and
// generator failures are recorded per pair in the report and never abort the
// remaining pairs. Pairs that are generated or skipped stamp attribution on
// the asset; failed pairs do not.
func (p *Planner) Execute(ctx context.Context, asset *models.Asset, cfg models.JobConfig, actorID string) models.ExecutionReport {
	report := models.ExecutionReport{AssetPath: asset.Path, StartedAt: p.opts.Now()}
	pairs := Plan(cfg)
	results := make([]models.PairResult, len(pairs))

	// the asset's own MIME type is fixed for the execution, so is the decision
	skip := ShouldSkip(asset.MimeType, cfg.SkipMimeTypes)

	var mu sync.Mutex
	var g errgroup.Group
	g.SetLimit(p.opts.Concurrency)

	for i, pair := range pairs {
		if ctx.Err() != nil {
			results[i] = models.PairResult{PlannedPair: pair, Outcome: models.OutcomeCancelled, Error: ctx.Err().Error()}
			continue
		}
		g.Go(func() error {
			res, rec := p.runPair(ctx, asset, cfg, pair, skip, actorID)
			results[i] = res
			if rec != nil {
				mu.Lock()
				if report.Attribution == nil || !rec.Timestamp.Before(report.Attribution.Timestamp) {
					report.Attribution = rec
				}
				mu.Unlock()
			}
			return nil
		})
	}
	_ = g.Wait()

	report.Pairs = results
	report.FinishedAt = p.opts.Now()
	logger.Infof("rendition execution for %s finished: %d generated, %d skipped, %d malformed, %d failed",
		asset.Path,
		report.Count(models.OutcomeGenerated),
		report.Count(models.OutcomeSkipped),
		report.Count(models.OutcomeMalformed),
		report.Count(models.OutcomeFailed))
	return report
}

func (p *Planner) runPair(ctx context.Context, asset *models.Asset, cfg models.JobConfig, pair models.PlannedPair, skip bool, actorID string) (models.PairResult, *models.AttributionRecord) {
	res := models.PairResult{PlannedPair: pair}
	logger.Debugf("pair %d: mimeType=%s dimension=%s", pair.Index, pair.MimeType, pair.DimensionToken)

	spec, ok := ParseDimension(pair.DimensionToken)
	if !ok {
		res.Outcome = models.OutcomeMalformed
		res.Error = fmt.Sprintf("malformed dimension %q", pair.DimensionToken)
		return res, nil
	}

	if skip {
		res.Outcome = models.OutcomeSkipped
	} else {
		req := models.RenditionRequest{
			Dimension:       spec,
			MimeType:        pair.MimeType,
			Quality:         cfg.Quality,
			MimeTypesToKeep: cfg.MimeTypesToKeep,
			UserID:          actorID,
		}
		if err := p.generate(ctx, asset, req); err != nil {
			logger.Errorf("rendition %dx%d %s for %s failed: %v", spec.Width, spec.Height, pair.MimeType, asset.Path, err)
			res.Outcome = models.OutcomeFailed
			res.Error = err.Error()
			return res, nil
		}
		res.Outcome = models.OutcomeGenerated
	}

	rec, err := StampAttribution(ctx, p.store, asset, actorID, p.opts.Now())
	if err != nil {
		logger.Errorf("%v", err)
		res.Error = err.Error()
		return res, nil
	}
	return res, &rec
}

// generate calls the generator under the configured timeout. The call runs
// in its own goroutine so a generator that ignores ctx still times out.
func (p *Planner) generate(ctx context.Context, asset *models.Asset, req models.RenditionRequest) error {
	if p.opts.GenerationTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.opts.GenerationTimeout)
		defer cancel()
	}

	done := make(chan error, 1)
	go func() {
		done <- p.generator.Generate(ctx, asset, req)
	}()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("rendition generation: %w", err)
		}
		return nil
	case <-ctx.Done():
		return fmt.Errorf("rendition generation: %w", ctx.Err())
	}
}
