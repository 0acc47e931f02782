package source

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	"CurvePull/internal/domain/models"
	drepo "CurvePull/internal/domain/repository"
	"CurvePull/internal/service/ratelimit"
	xhttp "CurvePull/pkg/http"
	"CurvePull/pkg/util"
)

// recentFallbackWindow is roughly 15 years of business-day observations,
// requested when the Valet API rejects the start_date form for a series.
const recentFallbackWindow = 5000

// BoC implements SeriesSource against the Bank of Canada Valet
// observations API.
type BoC struct {
	baseURL string
	client  *xhttp.Client
	limiter *ratelimit.Limiter
	rlCap   float64
	rlRate  float64
}

// NewBoC creates a Bank of Canada Valet source.
func NewBoC(baseURL string, client *xhttp.Client, limiter *ratelimit.Limiter, rlCap, rlRate float64) *BoC {
	return &BoC{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		limiter: limiter,
		rlCap:   rlCap,
		rlRate:  rlRate,
	}
}

type bocResponse struct {
	Observations []map[string]json.RawMessage `json:"observations"`
}

type bocValue struct {
	V string `json:"v"`
}

// Fetch retrieves one series from the start date, falling back to a large
// recent window when the dated form is rejected. Empty values become NaN.
func (b *BoC) Fetch(ctx context.Context, seriesID string, start time.Time) ([]models.Observation, error) {
	if b.limiter != nil {
		if err := b.limiter.Wait(ctx, "boc", b.rlCap, b.rlRate); err != nil {
			return nil, err
		}
	}

	var resp bocResponse
	err := b.get(ctx, seriesID, map[string][]string{
		"start_date": {start.Format(util.DateLayout)},
	}, &resp)
	if err != nil {
		// Some series 404 on start_date; retry with a recent window.
		err = b.get(ctx, seriesID, map[string][]string{
			"recent": {strconv.Itoa(recentFallbackWindow)},
		}, &resp)
	}
	if err != nil {
		return nil, fmt.Errorf("boc fetch %s: %w", seriesID, err)
	}

	out := make([]models.Observation, 0, len(resp.Observations))
	for _, row := range resp.Observations {
		rawDate, ok := row["d"]
		if !ok {
			continue
		}
		var ds string
		if err := json.Unmarshal(rawDate, &ds); err != nil {
			continue
		}
		d, ok := util.ParseDate(ds)
		if !ok {
			continue
		}
		v := models.Missing()
		if raw, ok := row[seriesID]; ok {
			var bv bocValue
			if err := json.Unmarshal(raw, &bv); err == nil && bv.V != "" {
				if x, err := strconv.ParseFloat(bv.V, 64); err == nil {
					v = x
				}
			}
		}
		out = append(out, models.Observation{Date: d, Value: v})
	}
	return out, nil
}

func (b *BoC) get(ctx context.Context, seriesID string, params map[string][]string, dest interface{}) error {
	return b.client.SendAndParse(ctx, &xhttp.RequestOptions{
		Method:      xhttp.MethodGet,
		URL:         b.baseURL + "/valet/observations/" + seriesID,
		Headers:     map[string]string{"Accept": "application/json"},
		QueryParams: params,
	}, dest)
}

var _ drepo.SeriesSource = (*BoC)(nil)
