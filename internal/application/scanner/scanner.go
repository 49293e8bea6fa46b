package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/kscan/internal/backtest"
	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/alejandrodnm/kscan/internal/ports"
)

// Config contiene la configuración del scanner.
type Config struct {
	ScanInterval time.Duration
	Workers      int       // goroutines para análisis paralelo (0 = NumCPU*2)
	DataDays     int       // días de calendario de histórico por símbolo
	BacktestDays int       // velas de la ventana de backtest
	TopN         int       // máximo de señales a reportar (0 = todas)
	EvalDate     time.Time // evalúa como si la serie acabara aquí (zero = última vela)
	Filter       FilterConfig
	Simulation   backtest.Config
	Once         bool // un solo ciclo en vez del loop con ticker
	DryRun       bool // evalúa pero no persiste
}

// DefaultConfig devuelve la configuración estándar del scanner.
func DefaultConfig() Config {
	return Config{
		ScanInterval: 6 * time.Hour,
		Workers:      0,
		DataDays:     120,
		BacktestDays: 90,
		TopN:         30,
		Filter:       DefaultFilterConfig(),
		Simulation:   backtest.DefaultConfig(),
	}
}

// Scanner es el orquestador principal del loop de escaneo.
type Scanner struct {
	cfg       Config
	quotes    ports.QuoteProvider
	bars      ports.BarProvider
	storage   ports.Storage
	notifiers []ports.Notifier
	analyzer  *Analyzer
	filter    *Filter
}

// New crea un Scanner con todas las dependencias inyectadas.
// El Analyzer (y con él la strategy) se construye fuera (cmd/) para
// respetar la inversión de dependencias.
func New(
	cfg Config,
	quotes ports.QuoteProvider,
	bars ports.BarProvider,
	storage ports.Storage,
	notifiers []ports.Notifier,
	analyzer *Analyzer,
) *Scanner {
	return &Scanner{
		cfg:       cfg,
		quotes:    quotes,
		bars:      bars,
		storage:   storage,
		notifiers: notifiers,
		analyzer:  analyzer,
		filter:    NewFilter(cfg.Filter),
	}
}

// Run ejecuta el loop de escaneo hasta que el contexto se cancele.
// Si cfg.Once está activo, solo ejecuta un ciclo.
func (s *Scanner) Run(ctx context.Context) error {
	slog.Info("scanner starting",
		"interval", s.cfg.ScanInterval,
		"once", s.cfg.Once,
		"dry_run", s.cfg.DryRun,
		"workers", s.cfg.Workers,
	)

	if err := s.runCycle(ctx); err != nil {
		slog.Error("scan cycle failed", "err", err)
		if s.cfg.Once {
			return err
		}
	}

	if s.cfg.Once {
		return nil
	}

	ticker := time.NewTicker(s.cfg.ScanInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("scanner stopped")
			return nil
		case <-ticker.C:
			if err := s.runCycle(ctx); err != nil {
				slog.Error("scan cycle failed", "err", err)
			}
		}
	}
}

// RunOnce ejecuta exactamente un ciclo de escaneo y devuelve las señales
// rankeadas, sin notificar ni persistir.
func (s *Scanner) RunOnce(ctx context.Context) ([]domain.Signal, error) {
	signals, _, err := s.cycle(ctx)
	return signals, err
}

// runCycle ejecuta un ciclo completo y notifica/persiste los resultados.
func (s *Scanner) runCycle(ctx context.Context) error {
	start := time.Now()

	signals, universe, err := s.cycle(ctx)
	if err != nil {
		return err
	}

	runID := uuid.NewString()
	now := time.Now().UTC()
	for i := range signals {
		signals[i].RunID = runID
		signals[i].CreatedAt = now
	}

	fallback := now
	if !s.cfg.EvalDate.IsZero() {
		fallback = s.cfg.EvalDate
	}
	date := signalDate(signals, fallback)
	for _, n := range s.notifiers {
		if err := n.NotifySignals(ctx, date, signals); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if s.storage != nil && !s.cfg.DryRun {
		if err := s.storage.SaveSignals(ctx, signals); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("scan cycle complete",
		"run_id", runID,
		"universe", universe,
		"signals", len(signals),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return nil
}

// cycle hace fetch → filtro de universo → análisis concurrente → rank
// y devuelve las señales junto al tamaño del universo analizado.
func (s *Scanner) cycle(ctx context.Context) ([]domain.Signal, int, error) {
	quotes, err := s.quotes.FetchQuotes(ctx)
	if err != nil {
		return nil, 0, fmt.Errorf("scanner.cycle: fetch quotes: %w", err)
	}

	universe := s.filter.Universe(quotes)
	slog.Info("universe selected", "quotes", len(quotes), "universe", len(universe))

	signals := scanConcurrent(ctx, s.analyzer, s.bars, universe, s.cfg.DataDays, s.cfg.EvalDate, s.cfg.Workers)

	ranked := rankByOversold(signals)
	if s.cfg.TopN > 0 && len(ranked) > s.cfg.TopN {
		ranked = ranked[:s.cfg.TopN]
	}
	return ranked, len(universe), nil
}

// rankByOversold ordena por J ascendente: el más sobrevendido primero.
// A igual J, por código para que el reporte sea estable.
func rankByOversold(signals []domain.Signal) []domain.Signal {
	sort.Slice(signals, func(i, j int) bool {
		if signals[i].J != signals[j].J {
			return signals[i].J < signals[j].J
		}
		return signals[i].Code < signals[j].Code
	})
	return signals
}

// signalDate devuelve la fecha de evaluación del ciclo: la vela más
// reciente entre las señales, o la fecha actual (UTC) si no hubo ninguna.
func signalDate(signals []domain.Signal, now time.Time) time.Time {
	if len(signals) == 0 {
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	}
	date := signals[0].Date
	for _, s := range signals[1:] {
		if s.Date.After(date) {
			date = s.Date
		}
	}
	return date
}
