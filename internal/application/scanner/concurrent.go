package scanner

// concurrent.go — worker pool para el análisis paralelo de símbolos.
//
// Recorrer ~5000 símbolos A-share en secuencia tarda minutos aunque el
// histórico venga del cache; con un pool de workers el ciclo baja a segundos.
// Cada worker hace fetch del histórico (cache + HTTP con rate limit) y
// ejecuta el pipeline de análisis, que es CPU puro.

import (
	"context"
	"errors"
	"log/slog"
	"runtime"
	"sync"
	"time"

	"github.com/alejandrodnm/kscan/internal/backtest"
	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/alejandrodnm/kscan/internal/ports"
)

// scanConcurrent evalúa la señal del día para cada símbolo del universo
// usando un worker pool. Devuelve solo las señales que pasan.
//
// Con evalDate no-zero recorta cada serie a esa fecha y exige que el
// símbolo tenga vela exactamente ese día; un símbolo suspendido ese día
// no produce señal en vez de evaluar la vela anterior como si fuera actual.
//
// Si workers <= 0 usa runtime.NumCPU() × 2 para saturar los cores
// disponibles mientras parte del pool espera red.
func scanConcurrent(
	ctx context.Context,
	analyzer *Analyzer,
	bars ports.BarProvider,
	universe []domain.Quote,
	dataDays int,
	evalDate time.Time,
	workers int,
) []domain.Signal {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	workCh := make(chan domain.Quote, len(universe))
	resultCh := make(chan domain.Signal, len(universe))

	// Worker pool: cada worker toma símbolos de workCh y envía señales a resultCh.
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range workCh {
				series, err := bars.FetchDaily(ctx, q.Code, dataDays)
				if err != nil {
					slog.Warn("fetch daily failed", "code", q.Code, "err", err)
					continue
				}

				series = seriesUpTo(series, evalDate)
				if !evalDate.IsZero() {
					if len(series) == 0 || !sameDay(series[len(series)-1].Date, evalDate) {
						slog.Debug("no bar at eval date", "code", q.Code, "date", evalDate.Format("2006-01-02"))
						continue
					}
				}

				sig, err := analyzer.EvaluateLatest(q.Code, q.Name, series)
				if err != nil {
					if !errors.Is(err, ErrInsufficientBars) {
						slog.Debug("evaluate failed", "code", q.Code, "err", err)
					}
					continue
				}
				if sig.Passes {
					resultCh <- sig
				}
			}
		}()
	}

	for _, q := range universe {
		workCh <- q
	}
	close(workCh)

	// Cerrar resultCh cuando todos los workers terminen.
	go func() {
		wg.Wait()
		close(resultCh)
	}()

	signals := make([]domain.Signal, 0)
	for sig := range resultCh {
		signals = append(signals, sig)
	}

	slog.Debug("concurrent scan complete",
		"symbols", len(universe),
		"signals", len(signals),
		"workers", workers,
	)

	return signals
}

// backtestConcurrent recorre el histórico de cada símbolo del universo
// con el mismo pool y acumula las operaciones simuladas de todos.
//
// Con evalDate no-zero la ventana de backtest termina en esa fecha; aquí
// basta recortar la serie, sin exigir vela ese día exacto.
func backtestConcurrent(
	ctx context.Context,
	analyzer *Analyzer,
	bars ports.BarProvider,
	universe []domain.Quote,
	dataDays int,
	backtestDays int,
	evalDate time.Time,
	sim backtest.Config,
	workers int,
) []domain.TradeRecord {
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	workCh := make(chan domain.Quote, len(universe))
	resultCh := make(chan []domain.TradeRecord, len(universe))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for q := range workCh {
				series, err := bars.FetchDaily(ctx, q.Code, dataDays)
				if err != nil {
					slog.Warn("fetch daily failed", "code", q.Code, "err", err)
					continue
				}

				trades, err := analyzer.ScanHistory(q.Code, q.Name, seriesUpTo(series, evalDate), backtestDays, sim)
				if err != nil {
					slog.Debug("history scan failed", "code", q.Code, "err", err)
					continue
				}
				if len(trades) > 0 {
					resultCh <- trades
				}
			}
		}()
	}

	for _, q := range universe {
		workCh <- q
	}
	close(workCh)

	go func() {
		wg.Wait()
		close(resultCh)
	}()

	var all []domain.TradeRecord
	for trades := range resultCh {
		all = append(all, trades...)
	}

	slog.Debug("concurrent history scan complete",
		"symbols", len(universe),
		"trades", len(all),
		"workers", workers,
	)

	return all
}

// seriesUpTo recorta la serie a las velas con fecha <= date.
// Con date zero devuelve la serie completa. La serie llega ordenada
// del provider, así que basta cortar por la cola.
func seriesUpTo(bars []domain.Bar, date time.Time) []domain.Bar {
	if date.IsZero() {
		return bars
	}
	cut := len(bars)
	for cut > 0 && bars[cut-1].Date.After(date) {
		cut--
	}
	return bars[:cut]
}

// sameDay compara solo año/mes/día.
func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}
