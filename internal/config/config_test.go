package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "runsheets.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "table", cfg.Extract.Strategy)
	assert.Equal(t, "pdftotext", cfg.Extract.PdfToTextPath)
	assert.Equal(t, 30, cfg.Extract.TimeoutSecs)
	assert.InDelta(t, 0.4, cfg.Scorer.ActivityWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Scorer.AddressWeight, 1e-9)
	assert.InDelta(t, 0.3, cfg.Scorer.PostcodeWeight, 1e-9)
	assert.Equal(t, 4, cfg.Batch.MaxConcurrent)
	assert.InDelta(t, 8.0, cfg.Batch.LaunchesPerSec, 1e-9)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_EnvOverride(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("RUNSHEET_STORE_DRIVER", "postgres")
	t.Setenv("RUNSHEET_BATCH_MAX_CONCURRENT", "8")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, 8, cfg.Batch.MaxConcurrent)
}

func TestInitLogger(t *testing.T) {
	require.NoError(t, InitLogger(LogConfig{Level: "debug", Format: "console"}))
	require.NoError(t, InitLogger(LogConfig{Level: "info", Format: "json"}))
	assert.Error(t, InitLogger(LogConfig{Level: "chatty", Format: "json"}))
}
