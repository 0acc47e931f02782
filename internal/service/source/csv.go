package source

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

	"CurvePull/internal/domain/models"
	drepo "CurvePull/internal/domain/repository"
	"CurvePull/pkg/util"
)

// CSVDir implements SeriesSource over local two-column date,value files,
// for offline runs and sample datasets. The series ID is the file name
// without extension.
type CSVDir struct {
	dir string
}

// NewCSVDir creates a local CSV source rooted at dir.
func NewCSVDir(dir string) *CSVDir {
	return &CSVDir{dir: dir}
}

// Fetch reads {dir}/{seriesID}.csv, keeping observations at or after start.
// Unparseable values become NaN.
func (s *CSVDir) Fetch(_ context.Context, seriesID string, start time.Time) ([]models.Observation, error) {
	path := filepath.Join(s.dir, seriesID+".csv")
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open series file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	header := true
	out := make([]models.Observation, 0, 1024)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", path, err)
		}
		if header {
			header = false
			continue
		}
		if len(rec) < 2 {
			continue
		}
		d, ok := util.ParseDate(rec[0])
		if !ok {
			continue
		}
		if d.Before(start) {
			continue
		}
		v := models.Missing()
		if x, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64); err == nil {
			v = x
		}
		out = append(out, models.Observation{Date: d, Value: v})
	}
	return out, nil
}

var _ drepo.SeriesSource = (*CSVDir)(nil)
