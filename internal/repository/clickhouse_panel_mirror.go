package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"CurvePull/internal/domain/models"
	drepo "CurvePull/internal/domain/repository"
	pkgch "CurvePull/pkg/clickhouse"
	applogger "CurvePull/pkg/logger"
)

// CHPanelMirror copies the processed panel into ClickHouse in long form
// (date, series, value), one row per non-missing observation, for SQL
// consumers that prefer the warehouse over the file outputs. The file
// store remains the system of record.
type CHPanelMirror struct {
	db    *sql.DB
	table string
	l     *applogger.Logger
}

// NewCHPanelMirror creates a mirror writing to the given table
// (database-qualified, e.g. "curvepull.panel_long").
func NewCHPanelMirror(ch *pkgch.Client, table string) *CHPanelMirror {
	return &CHPanelMirror{db: ch.DB(), table: table}
}

// SetLogger injects a structured logger.
func (m *CHPanelMirror) SetLogger(l *applogger.Logger) { m.l = l }

// Mirror replaces the table contents with the panel. Each run rewrites the
// whole history; panels are small (decades of daily rows) and ReplacingMergeTree
// merge semantics are not worth the bookkeeping.
func (m *CHPanelMirror) Mirror(ctx context.Context, p *models.Panel) error {
	start := time.Now()

	if _, err := m.db.ExecContext(ctx, "TRUNCATE TABLE "+m.table); err != nil {
		return fmt.Errorf("truncate %s: %w", m.table, err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin mirror tx: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, fmt.Sprintf("INSERT INTO %s (date, series, value) VALUES (?, ?, ?)", m.table))
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare mirror insert: %w", err)
	}

	dates := p.Dates()
	rows := 0
	for _, col := range p.Columns() {
		for i := range dates {
			v := p.At(col, i)
			if models.IsMissing(v) {
				continue
			}
			if _, err := stmt.ExecContext(ctx, dates[i], col, v); err != nil {
				_ = tx.Rollback()
				return fmt.Errorf("mirror insert: %w", err)
			}
			rows++
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit mirror: %w", err)
	}

	if m.l != nil {
		m.l.Info("panel mirrored to clickhouse",
			applogger.String("table", m.table),
			applogger.Int("rows", rows),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

var _ drepo.PanelMirror = (*CHPanelMirror)(nil)
