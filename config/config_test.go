package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kscan/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_EmptyPath_AllDefaults(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Strategy.MAShort)
	assert.Equal(t, 20, cfg.Strategy.MALong)
	assert.Equal(t, 60, cfg.Strategy.LookbackDays)
	assert.Equal(t, 0.90, cfg.Strategy.PullbackRatio)
	assert.Equal(t, 0.70, cfg.Strategy.VolumeRatio)
	assert.Equal(t, 0.0, cfg.Strategy.JThreshold)
	assert.Equal(t, 1.0, cfg.Strategy.ChangeThreshold)
	assert.Equal(t, 9, cfg.Strategy.KDJN)
	assert.Equal(t, 12, cfg.Strategy.MACDFast)
	assert.Equal(t, 26, cfg.Strategy.MACDSlow)
	assert.Equal(t, 30, cfg.Strategy.MinBars)
	assert.Equal(t, 9.5, cfg.Strategy.LimitUpPct)

	assert.Equal(t, 0.10, cfg.Backtest.TakeProfitPct)
	assert.Equal(t, 0.05, cfg.Backtest.StopLossPct)
	assert.Equal(t, 10, cfg.Backtest.MaxHoldingDays)
	assert.Equal(t, 90, cfg.Backtest.WindowDays)

	assert.Equal(t, 120, cfg.Scanner.DataDays)
	assert.Equal(t, 30, cfg.Scanner.TopN)
	assert.Equal(t, "kscan.db", cfg.Storage.DSN)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.Equal(t, "docs", cfg.Report.DocsDir)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "text", cfg.Log.Format)
}

func TestLoad_FileOverridesDefaults(t *testing.T) {
	path := writeConfig(t, `
strategy:
  ma_short: 10
  ma_long: 30
  volume_ratio: 0.5
backtest:
  take_profit_pct: 0.15
  window_days: 60
scanner:
  interval_minutes: 60
  max_symbols: 200
storage:
  dsn: "/tmp/test.db"
log:
  level: "debug"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Strategy.MAShort)
	assert.Equal(t, 30, cfg.Strategy.MALong)
	assert.Equal(t, 0.5, cfg.Strategy.VolumeRatio)
	assert.Equal(t, 0.15, cfg.Backtest.TakeProfitPct)
	assert.Equal(t, 60, cfg.Backtest.WindowDays)
	assert.Equal(t, 200, cfg.Scanner.MaxSymbols)
	assert.Equal(t, "/tmp/test.db", cfg.Storage.DSN)
	assert.Equal(t, "debug", cfg.Log.Level)

	// Lo no especificado conserva su default.
	assert.Equal(t, 0.05, cfg.Backtest.StopLossPct)
	assert.Equal(t, 9, cfg.Strategy.KDJN)
}

func TestLoad_MissingFile_Error(t *testing.T) {
	_, err := config.Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestLoad_MalformedYAML_Error(t *testing.T) {
	path := writeConfig(t, "strategy: [esto no es un mapa")
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestLoad_EnvOverridesLog(t *testing.T) {
	t.Setenv("LOG_LEVEL", "warn")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "warn", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_InvertedMAs_ValidationError(t *testing.T) {
	path := writeConfig(t, `
strategy:
  ma_short: 20
  ma_long: 5
`)
	_, err := config.Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "ma_short")
}

func TestLoad_LookbackBeyondData_ValidationError(t *testing.T) {
	path := writeConfig(t, `
strategy:
  lookback_days: 200
scanner:
  data_days: 120
`)
	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestScanInterval(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, "6h0m0s", cfg.ScanInterval().String())
}
