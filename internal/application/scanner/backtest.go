package scanner

// backtest.go — valida la estrategia contra el histórico real del mercado.
//
// Para cada símbolo del universo:
// 1. Descarga (o lee del cache) su histórico diario
// 2. Reproduce la señal vela a vela dentro de la ventana de backtest
// 3. Simula cada entrada con las reglas de salida reales (TP/SL/timeout)
// Al final agrega todas las operaciones en un BacktestResult.

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/alejandrodnm/kscan/internal/backtest"
	"github.com/alejandrodnm/kscan/internal/domain"
)

// RunBacktest recorre el universo completo, simula la estrategia sobre la
// ventana de backtest configurada y devuelve el agregado. Notifica y
// persiste el resultado salvo en dry-run.
func (s *Scanner) RunBacktest(ctx context.Context) (domain.BacktestResult, error) {
	start := time.Now()

	quotes, err := s.quotes.FetchQuotes(ctx)
	if err != nil {
		return domain.BacktestResult{}, fmt.Errorf("scanner.RunBacktest: fetch quotes: %w", err)
	}

	universe := s.filter.Universe(quotes)
	slog.Info("backtest starting",
		"universe", len(universe),
		"window_bars", s.cfg.BacktestDays,
		"take_profit", s.cfg.Simulation.TakeProfitPct,
		"stop_loss", s.cfg.Simulation.StopLossPct,
		"max_holding", s.cfg.Simulation.MaxHoldingDays,
	)

	trades := backtestConcurrent(ctx, s.analyzer, s.bars, universe,
		s.cfg.DataDays, s.cfg.BacktestDays, s.cfg.EvalDate, s.cfg.Simulation, s.cfg.Workers)

	from, to := tradeWindow(trades, time.Now().UTC())
	result := backtest.Aggregate(trades, from, to)
	result.RunID = uuid.NewString()

	for _, n := range s.notifiers {
		if err := n.NotifyBacktest(ctx, result); err != nil {
			slog.Warn("notifier error", "err", err)
		}
	}

	if s.storage != nil && !s.cfg.DryRun {
		if err := s.storage.SaveBacktest(ctx, result); err != nil {
			slog.Warn("storage error", "err", err)
		}
	}

	slog.Info("backtest complete",
		"run_id", result.RunID,
		"trades", result.TotalTrades,
		"win_rate", fmt.Sprintf("%.1f%%", result.WinRate*100),
		"cumulative", fmt.Sprintf("%.2f%%", result.CumulativeReturn*100),
		"duration", time.Since(start).Round(time.Millisecond),
	)
	return result, nil
}

// tradeWindow calcula la ventana temporal cubierta por las operaciones:
// de la compra más antigua a la venta más reciente. Sin operaciones,
// ambos extremos son la fecha actual.
func tradeWindow(trades []domain.TradeRecord, now time.Time) (from, to time.Time) {
	if len(trades) == 0 {
		day := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
		return day, day
	}
	from, to = trades[0].BuyDate, trades[0].SellDate
	for _, t := range trades[1:] {
		if t.BuyDate.Before(from) {
			from = t.BuyDate
		}
		if t.SellDate.After(to) {
			to = t.SellDate
		}
	}
	return from, to
}
