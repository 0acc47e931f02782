package source

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"CurvePull/internal/domain/models"
	drepo "CurvePull/internal/domain/repository"
	"CurvePull/internal/service/ratelimit"
	xhttp "CurvePull/pkg/http"
	"CurvePull/pkg/util"
)

// FRED implements SeriesSource against the St. Louis Fed fredgraph CSV
// endpoint, which serves daily series without an API key.
type FRED struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rlCap   float64
	rlRate  float64
}

// NewFRED creates a FRED source.
func NewFRED(baseURL string, client *xhttp.Client, limiter *ratelimit.Limiter, rlCap, rlRate float64) *FRED {
	return &FRED{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: limiter,
		rlCap:   rlCap,
		rlRate:  rlRate,
	}
}

// Fetch retrieves one series from the start date. Non-numeric values
// (FRED reports gaps as ".") become NaN, never errors.
func (f *FRED) Fetch(ctx context.Context, seriesID string, start time.Time) ([]models.Observation, error) {
	if f.limiter != nil {
		if err := f.limiter.Wait(ctx, "fred", f.rlCap, f.rlRate); err != nil {
			return nil, err
		}
	}

	var body []byte
	err := f.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method: xhttp.MethodGet,
		URL:    f.baseURL + "/graph/fredgraph.csv",
		QueryParams: map[string][]string{
			"id":   {seriesID},
			"cosd": {start.Format(util.DateLayout)},
		},
	}, &body)
	if err != nil {
		return nil, fmt.Errorf("fred fetch %s: %w", seriesID, err)
	}

	obs, err := parseFredCSV(body)
	if err != nil {
		return nil, fmt.Errorf("fred parse %s: %w", seriesID, err)
	}
	return obs, nil
}

// parseFredCSV reads the two-column fredgraph payload: a header row, then
// one row per date with the series value in the second column.
func parseFredCSV(b []byte) ([]models.Observation, error) {
	r := csv.NewReader(strings.NewReader(string(b)))
	r.FieldsPerRecord = -1

	header := true
	out := make([]models.Observation, 0, 4096)
	for {
		rec, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
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
		v := models.Missing()
		if x, err := strconv.ParseFloat(strings.TrimSpace(rec[1]), 64); err == nil {
			v = x
		}
		out = append(out, models.Observation{Date: d, Value: v})
	}
	return out, nil
}

var _ drepo.SeriesSource = (*FRED)(nil)
