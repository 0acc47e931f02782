package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"CurvePull/internal/domain/models"
	domrepo "CurvePull/internal/domain/repository"
	"CurvePull/internal/services/analytics"
	"CurvePull/pkg/cache"
	"CurvePull/pkg/config"
	"CurvePull/pkg/logger"
)

// ErrNoPanel is returned when no panel has been computed or loaded yet.
var ErrNoPanel = errors.New("no panel available")

// PanelService holds the latest processed panel and serves derived views
// (changes, rolling vol) on demand. Derived views are cached; the cache is
// versioned so a refresh invalidates prior entries without explicit deletes.
type PanelService struct {
	cfg      *config.Config
	pipeline *Pipeline
	store    domrepo.PanelStore
	cache    cache.Service
	cacheTTL time.Duration
	l        *logger.Logger

	mu      sync.RWMutex
	panel   *models.Panel
	version int64
}

func NewPanelService(
	cfg *config.Config,
	pipeline *Pipeline,
	store domrepo.PanelStore,
	cacheSvc cache.Service,
	l *logger.Logger,
) *PanelService {
	ttl := cfg.Cache.TTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &PanelService{
		cfg:      cfg,
		pipeline: pipeline,
		store:    store,
		cache:    cacheSvc,
		cacheTTL: ttl,
		l:        l,
	}
}

// Refresh runs the pipeline and swaps in the new panel.
func (s *PanelService) Refresh(ctx context.Context) error {
	panel, err := s.pipeline.Run(ctx)
	if err != nil {
		return err
	}
	s.setPanel(panel)
	return nil
}

// LoadStored restores the panel from the persisted output, used at startup
// when a fresh fetch is unavailable or undesired.
func (s *PanelService) LoadStored(ctx context.Context) error {
	panel, err := s.store.Load(ctx)
	if err != nil {
		return err
	}
	s.setPanel(panel)
	return nil
}

func (s *PanelService) setPanel(p *models.Panel) {
	s.mu.Lock()
	s.panel = p
	s.version++
	s.mu.Unlock()
}

func (s *PanelService) current() (*models.Panel, int64, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.panel == nil {
		return nil, 0, ErrNoPanel
	}
	return s.panel, s.version, nil
}

// Panel returns the latest panel rendered for transport.
func (s *PanelService) Panel() (models.PanelView, error) {
	p, _, err := s.current()
	if err != nil {
		return models.PanelView{}, err
	}
	return models.ViewOf(p), nil
}

// Slopes returns the subset of the panel holding derived slope and spread
// columns.
func (s *PanelService) Slopes() (models.PanelView, error) {
	p, _, err := s.current()
	if err != nil {
		return models.PanelView{}, err
	}

	view := models.ViewOf(p)
	derived := models.PanelView{
		Dates:  view.Dates,
		Values: make(map[string][]*float64),
	}
	yields := make(map[string]bool)
	for _, name := range s.cfg.Series {
		yields[name.Name] = true
	}
	for _, name := range view.Columns {
		if yields[name] {
			continue
		}
		derived.Columns = append(derived.Columns, name)
		derived.Values[name] = view.Values[name]
	}
	return derived, nil
}

// Changes computes (or serves cached) multi-horizon basis-point changes for
// the yield columns, optionally filtered by series and horizon.
func (s *PanelService) Changes(ctx context.Context, seriesFilter, horizonFilter string) ([]models.ChangeRow, error) {
	p, version, err := s.current()
	if err != nil {
		return nil, err
	}

	key := cache.Key("changes", version, seriesFilter, horizonFilter)
	var rows []models.ChangeRow
	if ok := s.cacheGet(ctx, key, &rows); ok {
		return rows, nil
	}

	points := analytics.Changes(p, s.cfg.YieldColumns())
	rows = make([]models.ChangeRow, 0, len(points))
	for _, row := range models.RowsOf(points) {
		if seriesFilter != "" && row.Series != seriesFilter {
			continue
		}
		if horizonFilter != "" && string(row.Horizon) != horizonFilter {
			continue
		}
		rows = append(rows, row)
	}

	s.cacheSet(ctx, key, rows)
	return rows, nil
}

// Vol computes (or serves cached) rolling realized volatility over the
// requested window for the yield columns.
func (s *PanelService) Vol(ctx context.Context, window int) (models.PanelView, error) {
	p, version, err := s.current()
	if err != nil {
		return models.PanelView{}, err
	}
	if window <= 0 {
		window = s.cfg.Pipeline.VolWindow
	}

	key := cache.Key("vol", version, window)
	var view models.PanelView
	if ok := s.cacheGet(ctx, key, &view); ok {
		return view, nil
	}

	vol := analytics.RollingVol(p, s.cfg.YieldColumns(), window)
	view = models.ViewOf(vol)

	s.cacheSet(ctx, key, view)
	return view, nil
}

// Spread returns the cross-country 10Y spread series, or ErrNoPanel-style
// absence when the spread column was never derived.
func (s *PanelService) Spread() (models.PanelView, error) {
	p, _, err := s.current()
	if err != nil {
		return models.PanelView{}, err
	}
	col, ok := p.Column(analytics.SpreadColumn)
	if !ok {
		return models.PanelView{}, fmt.Errorf("column %s not present", analytics.SpreadColumn)
	}

	dates := p.Dates()
	view := models.PanelView{
		Dates:   make([]string, len(dates)),
		Columns: []string{analytics.SpreadColumn},
		Values:  make(map[string][]*float64, 1),
	}
	vals := make([]*float64, len(col))
	for i, d := range dates {
		view.Dates[i] = d.Format("2006-01-02")
		vals[i] = models.FloatPtr(col[i])
	}
	view.Values[analytics.SpreadColumn] = vals
	return view, nil
}

func (s *PanelService) cacheGet(ctx context.Context, key string, out interface{}) bool {
	if s.cache == nil {
		return false
	}
	raw, err := s.cache.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.l.Warn("cache get failed", logger.String("key", key), logger.Error(err))
		}
		return false
	}
	if err := json.Unmarshal([]byte(raw), out); err != nil {
		s.l.Warn("cache entry corrupt", logger.String("key", key), logger.Error(err))
		return false
	}
	return true
}

func (s *PanelService) cacheSet(ctx context.Context, key string, v interface{}) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, key, string(raw), s.cacheTTL); err != nil {
		s.l.Warn("cache set failed", logger.String("key", key), logger.Error(err))
	}
}
