package repository

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/parquet-go/parquet-go"

	"CurvePull/internal/domain/models"
	drepo "CurvePull/internal/domain/repository"
	applogger "CurvePull/pkg/logger"
	"CurvePull/pkg/util"
)

// FilePanelStore persists the processed panel as both a Parquet file
// (columnar, exact numeric types) and a CSV file (row text), two views of
// the same logical table. Each write goes to a temp file in the target
// directory and is published with an atomic rename, so a reader never
// observes a partial file.
type FilePanelStore struct {
	dir         string
	parquetName string
	csvName     string
	l           *applogger.Logger
}

// NewFilePanelStore creates a file store writing into dir.
func NewFilePanelStore(dir, parquetName, csvName string) *FilePanelStore {
	if parquetName == "" {
		parquetName = "daily.parquet"
	}
	if csvName == "" {
		csvName = "daily.csv"
	}
	return &FilePanelStore{dir: dir, parquetName: parquetName, csvName: csvName}
}

// SetLogger injects a structured logger.
func (s *FilePanelStore) SetLogger(l *applogger.Logger) { s.l = l }

// ParquetPath returns the columnar output path.
func (s *FilePanelStore) ParquetPath() string { return filepath.Join(s.dir, s.parquetName) }

// CSVPath returns the row-text output path.
func (s *FilePanelStore) CSVPath() string { return filepath.Join(s.dir, s.csvName) }

// Save writes both representations. I/O errors surface unmodified.
func (s *FilePanelStore) Save(_ context.Context, p *models.Panel) error {
	start := time.Now()
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("output dir: %w", err)
	}
	if err := s.saveParquet(p); err != nil {
		return err
	}
	if err := s.saveCSV(p); err != nil {
		return err
	}
	if s.l != nil {
		s.l.Info("panel saved",
			applogger.String("parquet", s.ParquetPath()),
			applogger.String("csv", s.CSVPath()),
			applogger.Int("rows", p.Len()),
			applogger.Int("columns", len(p.Columns())),
			applogger.Duration("duration_ms", time.Since(start)),
		)
	}
	return nil
}

// Load reads the panel back, preferring Parquet and falling back to CSV.
func (s *FilePanelStore) Load(ctx context.Context) (*models.Panel, error) {
	if _, err := os.Stat(s.ParquetPath()); err == nil {
		return s.LoadParquet(ctx)
	}
	return s.LoadCSV(ctx)
}

func (s *FilePanelStore) saveParquet(p *models.Panel) error {
	cols := p.Columns()
	group := parquet.Group{"date": parquet.String()}
	for _, c := range cols {
		group[c] = parquet.Optional(parquet.Leaf(parquet.DoubleType))
	}
	schema := parquet.NewSchema("panel", group)

	dates := p.Dates()
	rows := make([]map[string]any, 0, p.Len())
	for i := range dates {
		row := map[string]any{"date": dates[i].Format(util.DateLayout)}
		for _, c := range cols {
			if v := p.At(c, i); !models.IsMissing(v) {
				row[c] = v
			}
		}
		rows = append(rows, row)
	}

	return s.publish(s.ParquetPath(), func(f *os.File) error {
		w := parquet.NewGenericWriter[map[string]any](f, schema)
		if _, err := w.Write(rows); err != nil {
			return fmt.Errorf("write parquet rows: %w", err)
		}
		if err := w.Close(); err != nil {
			return fmt.Errorf("close parquet writer: %w", err)
		}
		return nil
	})
}

func (s *FilePanelStore) saveCSV(p *models.Panel) error {
	cols := p.Columns()
	dates := p.Dates()
	return s.publish(s.CSVPath(), func(f *os.File) error {
		var b strings.Builder
		b.WriteString("date")
		for _, c := range cols {
			b.WriteByte(',')
			b.WriteString(c)
		}
		b.WriteByte('\n')
		for i := range dates {
			b.WriteString(dates[i].Format(util.DateLayout))
			for _, c := range cols {
				b.WriteByte(',')
				if v := p.At(c, i); !models.IsMissing(v) {
					b.WriteString(strconv.FormatFloat(v, 'g', -1, 64))
				}
			}
			b.WriteByte('\n')
		}
		if _, err := io.WriteString(f, b.String()); err != nil {
			return fmt.Errorf("write csv: %w", err)
		}
		return nil
	})
}

// publish writes via a temp file in the same directory, fsyncs, then
// renames over the destination.
func (s *FilePanelStore) publish(dest string, write func(*os.File) error) error {
	tmp, err := os.CreateTemp(s.dir, filepath.Base(dest)+".tmp-*")
	if err != nil {
		return fmt.Errorf("create temp: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return fmt.Errorf("sync temp: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		return fmt.Errorf("publish %s: %w", dest, err)
	}
	return nil
}

// LoadParquet reads the columnar representation.
func (s *FilePanelStore) LoadParquet(_ context.Context) (*models.Panel, error) {
	f, err := os.Open(s.ParquetPath())
	if err != nil {
		return nil, fmt.Errorf("open parquet: %w", err)
	}
	defer f.Close()

	st, err := f.Stat()
	if err != nil {
		return nil, fmt.Errorf("stat parquet: %w", err)
	}
	pf, err := parquet.OpenFile(f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("open parquet file: %w", err)
	}

	cols := make([]string, 0, len(pf.Schema().Fields()))
	for _, field := range pf.Schema().Fields() {
		if field.Name() != "date" {
			cols = append(cols, field.Name())
		}
	}

	rows, err := parquet.Read[map[string]any](f, st.Size())
	if err != nil {
		return nil, fmt.Errorf("read parquet rows: %w", err)
	}

	dates := make([]time.Time, 0, len(rows))
	values := make(map[string][]float64, len(cols))
	for _, c := range cols {
		values[c] = make([]float64, 0, len(rows))
	}
	for _, row := range rows {
		ds, _ := row["date"].(string)
		d, ok := util.ParseDate(ds)
		if !ok {
			continue
		}
		dates = append(dates, d)
		for _, c := range cols {
			v := models.Missing()
			if raw, ok := row[c]; ok && raw != nil {
				if x, ok := raw.(float64); ok {
					v = x
				}
			}
			values[c] = append(values[c], v)
		}
	}

	panel := models.NewPanel(dates)
	for _, c := range cols {
		panel.SetColumn(c, values[c])
	}
	return panel, nil
}

// LoadCSV reads the row-text representation. Unparseable numerics degrade
// to NaN rather than aborting the load.
func (s *FilePanelStore) LoadCSV(_ context.Context) (*models.Panel, error) {
	f, err := os.Open(s.CSVPath())
	if err != nil {
		return nil, fmt.Errorf("open csv: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	if len(header) == 0 || header[0] != "date" {
		return nil, fmt.Errorf("csv: first column must be date, got %q", header)
	}
	cols := header[1:]

	dates := make([]time.Time, 0, 4096)
	values := make(map[string][]float64, len(cols))
	for _, c := range cols {
		values[c] = make([]float64, 0, 4096)
	}
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv row: %w", err)
		}
		d, ok := util.ParseDate(rec[0])
		if !ok {
			continue
		}
		dates = append(dates, d)
		for j, c := range cols {
			v := models.Missing()
			if j+1 < len(rec) {
				if x, err := strconv.ParseFloat(rec[j+1], 64); err == nil {
					v = x
				}
			}
			values[c] = append(values[c], v)
		}
	}

	panel := models.NewPanel(dates)
	for _, c := range cols {
		panel.SetColumn(c, values[c])
	}
	return panel, nil
}

var _ drepo.PanelStore = (*FilePanelStore)(nil)
