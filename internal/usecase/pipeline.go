package usecase

import (
	"context"
	"fmt"
	"time"

	"CurvePull/internal/domain/models"
	domrepo "CurvePull/internal/domain/repository"
	"CurvePull/internal/service/source"
	"CurvePull/internal/services/analytics"
	"CurvePull/pkg/config"
	"CurvePull/pkg/logger"
	"CurvePull/pkg/util"
)

// Pipeline runs one refresh cycle: fetch every configured series, merge
// into the daily panel, derive slopes and the cross-country spread, and
// persist the result. Mirror and events are optional enrichment; a run
// succeeds as long as fetching and persisting do.
type Pipeline struct {
	cfg     *config.Config
	sources map[string]domrepo.SeriesSource
	store   domrepo.PanelStore
	mirror  domrepo.PanelMirror
	events  domrepo.RunEvents
	metrics domrepo.Metrics
	l       *logger.Logger
}

func NewPipeline(
	cfg *config.Config,
	sources map[string]domrepo.SeriesSource,
	store domrepo.PanelStore,
	mirror domrepo.PanelMirror,
	events domrepo.RunEvents,
	metrics domrepo.Metrics,
	l *logger.Logger,
) *Pipeline {
	return &Pipeline{
		cfg:     cfg,
		sources: sources,
		store:   store,
		mirror:  mirror,
		events:  events,
		metrics: metrics,
		l:       l,
	}
}

// defaultStartDate bounds history when pipeline.start_date is unset.
var defaultStartDate = time.Date(2015, 1, 1, 0, 0, 0, 0, time.UTC)

// Run executes one full refresh and returns the processed panel.
func (pl *Pipeline) Run(ctx context.Context) (*models.Panel, error) {
	started := time.Now()
	panel, err := pl.run(ctx)
	elapsed := time.Since(started).Seconds()

	if err != nil {
		pl.metrics.RecordRun("failure", elapsed)
		pl.l.Error("pipeline run failed", logger.Error(err), logger.Float64("seconds", elapsed))
		return nil, err
	}

	pl.metrics.RecordRun("success", elapsed)
	pl.metrics.SetPanelRows(panel.Len())
	if panel.Len() > 0 {
		pl.metrics.SetLastPanelDate(panel.Dates()[panel.Len()-1])
	}
	pl.l.Info("pipeline run complete",
		logger.Int("rows", panel.Len()),
		logger.Int("columns", len(panel.Columns())),
		logger.Float64("seconds", elapsed))
	return panel, nil
}

func (pl *Pipeline) run(ctx context.Context) (*models.Panel, error) {
	start := util.ParseDateDefault(pl.cfg.Pipeline.StartDate, defaultStartDate)

	series := pl.fetchAll(ctx, start)
	if len(series) == 0 {
		pl.metrics.RecordError("fetch")
		return nil, fmt.Errorf("no series fetched successfully")
	}

	panel, err := analytics.Merge(series)
	if err != nil {
		return nil, err
	}

	analytics.ForwardFill(panel, pl.cfg.YieldColumns())
	analytics.Slopes(panel, pl.tenorMappings())
	analytics.CrossCountrySpread(panel, pl.cfg.Pipeline.Spread.USColumn, pl.cfg.Pipeline.Spread.CAColumn)

	if err := pl.store.Save(ctx, panel); err != nil {
		pl.metrics.RecordError("store")
		return nil, fmt.Errorf("save panel: %w", err)
	}

	if pl.mirror != nil {
		if err := pl.mirror.Mirror(ctx, panel); err != nil {
			pl.metrics.RecordError("mirror")
			pl.l.Warn("panel mirror failed", logger.Error(err))
		}
	}

	if pl.events != nil && panel.Len() > 0 {
		lastDate := panel.Dates()[panel.Len()-1]
		if err := pl.events.PanelRefreshed(ctx, panel.Len(), lastDate); err != nil {
			pl.metrics.RecordError("events")
			pl.l.Warn("panel refresh event failed", logger.Error(err))
		}
	}

	return panel, nil
}

// fetchAll pulls every configured series, skipping (and logging) failures
// so one unavailable provider does not block the rest of the panel.
func (pl *Pipeline) fetchAll(ctx context.Context, start time.Time) []models.NamedSeries {
	out := make([]models.NamedSeries, 0, len(pl.cfg.Series))
	for _, spec := range pl.cfg.Series {
		src, ok := pl.sources[spec.Source]
		if !ok {
			pl.l.Warn("no source registered",
				logger.String("source", spec.Source),
				logger.String("series", spec.Name))
			continue
		}

		fetchStart := time.Now()
		obs, err := src.Fetch(ctx, spec.ID, start)
		pl.metrics.RecordLatency("fetch", time.Since(fetchStart).Seconds())
		if err != nil {
			pl.metrics.RecordError("fetch")
			pl.l.Warn("series fetch failed",
				logger.String("source", spec.Source),
				logger.String("series", spec.Name),
				logger.Error(err))
			continue
		}
		if len(obs) == 0 {
			pl.l.Warn("series returned no observations",
				logger.String("source", spec.Source),
				logger.String("series", spec.Name))
			continue
		}

		pl.metrics.RecordSeriesFetched(spec.Source, spec.Name, len(obs))
		pl.l.Debug("series fetched",
			logger.String("series", spec.Name),
			logger.Int("rows", len(obs)))

		if pl.cfg.Pipeline.RawDir != "" {
			if _, err := source.WriteSnapshot(pl.cfg.Pipeline.RawDir, spec.Source, spec.Name, obs); err != nil {
				pl.l.Warn("raw snapshot failed",
					logger.String("series", spec.Name),
					logger.Error(err))
			}
		}

		out = append(out, models.NamedSeries{Name: spec.Name, Observations: obs})
	}
	return out
}

func (pl *Pipeline) tenorMappings() map[string]models.TenorMapping {
	out := make(map[string]models.TenorMapping)
	for country, m := range pl.cfg.TenorColumns() {
		out[country] = models.TenorMapping(m)
	}
	return out
}
