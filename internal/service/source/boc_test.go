package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/domain/models"
	xhttp "CurvePull/pkg/http"
)

func TestBoCFetchParsesObservations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/valet/observations/FXUSDCAD", r.URL.Path)
		assert.Equal(t, "2024-01-01", r.URL.Query().Get("start_date"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"observations": [
				{"d": "2024-01-02", "FXUSDCAD": {"v": "1.3501"}},
				{"d": "2024-01-03", "FXUSDCAD": {"v": ""}},
				{"d": "2024-01-04", "FXUSDCAD": {"v": "1.3489"}}
			]
		}`))
	}))
	defer srv.Close()

	b := NewBoC(srv.URL, xhttp.NewClient(), nil, 0, 0)
	obs, err := b.Fetch(context.Background(), "FXUSDCAD", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, obs, 3)

	assert.Equal(t, 1.3501, obs[0].Value)
	assert.True(t, models.IsMissing(obs[1].Value))
	assert.Equal(t, 1.3489, obs[2].Value)
}

func TestBoCFetchFallsBackToRecent(t *testing.T) {
	var sawRecent bool
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("start_date") != "" {
			http.Error(w, "bad series for start_date", http.StatusNotFound)
			return
		}
		sawRecent = r.URL.Query().Get("recent") != ""
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"observations": [{"d": "2024-01-02", "X": {"v": "2.5"}}]}`))
	}))
	defer srv.Close()

	b := NewBoC(srv.URL, xhttp.NewClient(), nil, 0, 0)
	obs, err := b.Fetch(context.Background(), "X", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, obs, 1)
	assert.True(t, sawRecent)
	assert.Equal(t, 2.5, obs[0].Value)
}

func TestBoCFetchBothFormsFail(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "unknown series", http.StatusNotFound)
	}))
	defer srv.Close()

	b := NewBoC(srv.URL, xhttp.NewClient(), nil, 0, 0)
	_, err := b.Fetch(context.Background(), "X", time.Now())
	require.Error(t, err)
}
