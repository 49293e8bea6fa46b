package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/alejandrodnm/kscan/config"
	"github.com/alejandrodnm/kscan/internal/adapters/eastmoney"
	"github.com/alejandrodnm/kscan/internal/adapters/notify"
	"github.com/alejandrodnm/kscan/internal/adapters/storage"
	"github.com/alejandrodnm/kscan/internal/application/scanner"
	"github.com/alejandrodnm/kscan/internal/backtest"
	"github.com/alejandrodnm/kscan/internal/domain/strategy"
	"github.com/alejandrodnm/kscan/internal/indicator"
	"github.com/alejandrodnm/kscan/internal/ports"
)

func main() {
	configPath := flag.String("config", "", "path to config file (empty = built-in defaults)")
	once := flag.Bool("once", false, "run one scan cycle and exit")
	backtestMode := flag.Bool("backtest", false, "replay the strategy over the historical window and exit")
	dateStr := flag.String("date", "", "evaluation date YYYY-MM-DD (default: latest bar, implies -once)")
	top := flag.Int("top", 0, "cap reported signals at N (overrides config)")
	maxSymbols := flag.Int("max", 0, "cap the universe at N symbols (smoke runs)")
	dryRun := flag.Bool("dry-run", false, "evaluate without persisting or writing reports")
	verbose := flag.Bool("verbose", false, "set log level to debug")
	logFormat := flag.String("format", "", "log format: text|json (overrides config)")
	validate := flag.Bool("validate", false, "print step-by-step condition checks for top 3 signals")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "err", err, "path", *configPath)
		os.Exit(1)
	}

	if *verbose {
		cfg.Log.Level = "debug"
	}
	if *logFormat != "" {
		cfg.Log.Format = *logFormat
	}
	setupLogger(cfg.Log)

	var evalDate time.Time
	if *dateStr != "" {
		evalDate, err = time.ParseInLocation("2006-01-02", *dateStr, time.UTC)
		if err != nil {
			slog.Error("invalid -date, want YYYY-MM-DD", "err", err, "date", *dateStr)
			os.Exit(1)
		}
	}

	slog.Info("kscan starting",
		"config", *configPath,
		"interval", cfg.ScanInterval(),
		"once", *once,
		"backtest", *backtestMode,
		"dry_run", *dryRun,
	)

	client := eastmoney.NewClient(eastmoney.Config{
		SpotBase:       cfg.API.SpotBase,
		KlineBase:      cfg.API.KlineBase,
		RequestsPerSec: cfg.API.RequestsPerSec,
		Burst:          cfg.API.Burst,
		Timeout:        cfg.APITimeout(),
		MaxRetries:     uint64(cfg.API.MaxRetries),
	})

	// Velas diarias: cliente directo, o decorado con el cache parquet
	// para no re-descargar el histórico completo en cada ciclo.
	var bars ports.BarProvider = client
	if cfg.Storage.DataDir != "" {
		bars = storage.NewCachedBars(client, storage.NewParquetBarCache(cfg.Storage.DataDir))
	}

	var store *storage.SQLiteStorage
	var st ports.Storage
	if !*dryRun {
		store, err = storage.NewSQLiteStorage(cfg.Storage.DSN, cfg.Storage.RetentionDays)
		if err != nil {
			slog.Error("failed to open storage", "err", err, "dsn", cfg.Storage.DSN)
			os.Exit(1)
		}
		defer store.Close()
		st = store
	}

	notifiers := []ports.Notifier{notify.NewConsole(*validate, notify.Thresholds{
		VolumeRatio:     cfg.Strategy.VolumeRatio,
		ChangeThreshold: cfg.Strategy.ChangeThreshold,
		JThreshold:      cfg.Strategy.JThreshold,
		DiffThreshold:   cfg.Strategy.DiffThreshold,
		PullbackRatio:   cfg.Strategy.PullbackRatio,
	})}
	if store != nil && cfg.Report.DocsDir != "" {
		notifiers = append(notifiers, notify.NewHTMLReport(cfg.Report.DocsDir, cfg.Report.SiteTitle, store))
	}

	strat := strategy.New(strategy.Config{
		MAShort:         cfg.Strategy.MAShort,
		MALong:          cfg.Strategy.MALong,
		LookbackDays:    cfg.Strategy.LookbackDays,
		SwingWindow:     cfg.Strategy.SwingWindow,
		PullbackRatio:   cfg.Strategy.PullbackRatio,
		VolumeRatio:     cfg.Strategy.VolumeRatio,
		JThreshold:      cfg.Strategy.JThreshold,
		DiffThreshold:   cfg.Strategy.DiffThreshold,
		ChangeThreshold: cfg.Strategy.ChangeThreshold,
	})

	analyzer := scanner.NewAnalyzer(
		scanner.AnalyzerConfig{MinBars: cfg.Strategy.MinBars, LimitUpPct: cfg.Strategy.LimitUpPct},
		strat,
		indicator.Config{
			MAPeriods:      []int{cfg.Strategy.MAShort, cfg.Strategy.MALong},
			VolumeMAPeriod: cfg.Strategy.VolumeMAPeriod,
			KDJN:           cfg.Strategy.KDJN,
			KDJM1:          cfg.Strategy.KDJM1,
			KDJM2:          cfg.Strategy.KDJM2,
			MACDFast:       cfg.Strategy.MACDFast,
			MACDSlow:       cfg.Strategy.MACDSlow,
			MACDSignal:     cfg.Strategy.MACDSignal,
		},
	)

	scanCfg := scanner.DefaultConfig()
	scanCfg.ScanInterval = cfg.ScanInterval()
	scanCfg.Workers = cfg.Scanner.Workers
	scanCfg.DataDays = cfg.Scanner.DataDays
	scanCfg.BacktestDays = cfg.Backtest.WindowDays
	scanCfg.TopN = cfg.Scanner.TopN
	scanCfg.EvalDate = evalDate
	scanCfg.Once = *once || !evalDate.IsZero()
	scanCfg.DryRun = *dryRun
	scanCfg.Simulation = backtest.Config{
		TakeProfitPct:  cfg.Backtest.TakeProfitPct,
		StopLossPct:    cfg.Backtest.StopLossPct,
		MaxHoldingDays: cfg.Backtest.MaxHoldingDays,
	}
	scanCfg.Filter.MinPrice = cfg.Scanner.MinPrice
	scanCfg.Filter.MaxSymbols = cfg.Scanner.MaxSymbols
	if *top > 0 {
		scanCfg.TopN = *top
	}
	if *maxSymbols > 0 {
		scanCfg.Filter.MaxSymbols = *maxSymbols
	}

	s := scanner.New(scanCfg, client, bars, st, notifiers, analyzer)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if *backtestMode {
		runBacktest(ctx, s)
		return
	}

	if err := s.Run(ctx); err != nil {
		slog.Error("scanner exited with error", "err", err)
		os.Exit(1)
	}

	slog.Info("kscan stopped cleanly")
}

func setupLogger(cfg config.LogConfig) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if cfg.Format == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	slog.SetDefault(slog.New(handler))
}
