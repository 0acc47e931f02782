package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"CurvePull/internal/domain/models"
)

func TestCSVDirFetch(t *testing.T) {
	dir := t.TempDir()
	body := "date,value\n2023-12-29,4.0\n2024-01-02,4.05\n2024-01-03,\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "US_10Y.csv"), []byte(body), 0o644))

	s := NewCSVDir(dir)
	obs, err := s.Fetch(context.Background(), "US_10Y", time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	require.Len(t, obs, 2, "rows before start are dropped")

	assert.Equal(t, 4.05, obs[0].Value)
	assert.True(t, models.IsMissing(obs[1].Value))
}

func TestCSVDirFetchMissingFile(t *testing.T) {
	s := NewCSVDir(t.TempDir())
	_, err := s.Fetch(context.Background(), "nope", time.Now())
	require.Error(t, err)
}

func TestWriteSnapshot(t *testing.T) {
	dir := t.TempDir()
	obs := []models.Observation{
		{Date: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC), Value: 4.05},
		{Date: time.Date(2024, 1, 3, 0, 0, 0, 0, time.UTC), Value: models.Missing()},
	}

	path, err := WriteSnapshot(dir, "fred", "US_10Y", obs)
	require.NoError(t, err)

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "date,value\n2024-01-02,4.05\n2024-01-03,\n", string(b))
}
