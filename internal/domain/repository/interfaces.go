package repository

import (
	"context"
	"time"

	"CurvePull/internal/domain/models"
)

// SeriesSource fetches one raw series as dated observations covering an
// open-ended range from start. Implementations own retries and timeouts;
// the pipeline treats a fetch as a single opaque call.
type SeriesSource interface {
	Fetch(ctx context.Context, seriesID string, start time.Time) ([]models.Observation, error)
}

// PanelStore persists the processed panel and reads it back.
type PanelStore interface {
	Save(ctx context.Context, p *models.Panel) error
	Load(ctx context.Context) (*models.Panel, error)
}

// PanelMirror copies the processed panel into a secondary store for SQL
// consumers. Mirroring is best-effort enrichment, never the system of record.
type PanelMirror interface {
	Mirror(ctx context.Context, p *models.Panel) error
}

// RunEvents announces completed pipeline runs to downstream consumers.
type RunEvents interface {
	PanelRefreshed(ctx context.Context, rows int, lastDate time.Time) error
	Close() error
}

// Metrics records pipeline and serving metrics.
type Metrics interface {
	RecordRun(result string, seconds float64)
	RecordSeriesFetched(source, series string, rows int)
	RecordError(kind string)
	SetPanelRows(n int)
	SetLastPanelDate(t time.Time)
	RecordLatency(op string, seconds float64)
}
