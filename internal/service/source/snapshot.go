package source

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"CurvePull/internal/domain/models"
	"CurvePull/pkg/util"
)

// WriteSnapshot dumps the raw observations of one fetched series to
// {dir}/{source}_{name}_{today}.csv, mirroring what the pipeline consumed
// on a given day. Snapshot failures should not abort a run; callers log
// and continue.
func WriteSnapshot(dir, sourceName, seriesName string, obs []models.Observation) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("raw dir: %w", err)
	}
	name := fmt.Sprintf("%s_%s_%s.csv", sourceName, seriesName, time.Now().UTC().Format(util.DateLayout))
	path := filepath.Join(dir, name)

	var b strings.Builder
	b.WriteString("date,value\n")
	for _, o := range obs {
		b.WriteString(o.Date.Format(util.DateLayout))
		b.WriteByte(',')
		if !models.IsMissing(o.Value) {
			b.WriteString(strconv.FormatFloat(o.Value, 'g', -1, 64))
		}
		b.WriteByte('\n')
	}
	if err := os.WriteFile(path, []byte(b.String()), 0o644); err != nil {
		return "", fmt.Errorf("write snapshot: %w", err)
	}
	return path, nil
}
