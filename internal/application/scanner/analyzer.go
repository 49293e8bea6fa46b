package scanner

import (
	"errors"
	"fmt"

	"github.com/alejandrodnm/kscan/internal/backtest"
	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/alejandrodnm/kscan/internal/domain/strategy"
	"github.com/alejandrodnm/kscan/internal/indicator"
)

// ErrInsufficientBars marca un símbolo sin histórico suficiente para
// evaluar. No es un fallo: el scanner lo salta y sigue con el resto.
var ErrInsufficientBars = errors.New("insufficient bars")

// AnalyzerConfig contiene las exclusiones a nivel de evaluación.
type AnalyzerConfig struct {
	MinBars    int     // histórico mínimo para evaluar un símbolo
	LimitUpPct float64 // cambio % desde el que se considera limit-up (entrada inejecutable)
}

// DefaultAnalyzerConfig devuelve las exclusiones estándar del mercado A-share.
func DefaultAnalyzerConfig() AnalyzerConfig {
	return AnalyzerConfig{
		MinBars:    30,
		LimitUpPct: 9.5,
	}
}

// Analyzer ejecuta el pipeline por símbolo: validar la serie, enriquecer
// con indicadores y delegar el veredicto a la Strategy inyectada.
type Analyzer struct {
	cfg        AnalyzerConfig
	strategy   strategy.Strategy
	indicators indicator.Config
}

// NewAnalyzer crea un Analyzer que delega en la strategy dada.
func NewAnalyzer(cfg AnalyzerConfig, strat strategy.Strategy, indicators indicator.Config) *Analyzer {
	if cfg.MinBars <= 0 {
		cfg.MinBars = DefaultAnalyzerConfig().MinBars
	}
	if cfg.LimitUpPct <= 0 {
		cfg.LimitUpPct = DefaultAnalyzerConfig().LimitUpPct
	}
	return &Analyzer{cfg: cfg, strategy: strat, indicators: indicators}
}

// EvaluateLatest evalúa la señal sobre la última vela del histórico.
//
// Exclusiones previas a la estrategia: serie no cronológica (error del
// caller), menos de MinBars velas, o día limit-up (pct ≥ LimitUpPct,
// la compra no se llenaría).
func (a *Analyzer) EvaluateLatest(code, name string, bars []domain.Bar) (domain.Signal, error) {
	if err := domain.ValidateSeries(bars); err != nil {
		return domain.Signal{}, fmt.Errorf("scanner.EvaluateLatest: %s: %w", code, err)
	}
	if len(bars) < a.cfg.MinBars {
		return domain.Signal{}, fmt.Errorf("scanner.EvaluateLatest: %s: %w: %d < %d",
			code, ErrInsufficientBars, len(bars), a.cfg.MinBars)
	}

	idx := len(bars) - 1
	if bars[idx].PctChange >= a.cfg.LimitUpPct {
		return domain.Signal{
			Date:      bars[idx].Date,
			Code:      code,
			Name:      name,
			Close:     bars[idx].Close,
			PctChange: bars[idx].PctChange,
		}, nil
	}

	enriched := indicator.Enrich(bars, a.indicators)
	return a.strategy.Evaluate(code, name, enriched, idx), nil
}

// ScanHistory recorre el histórico de un símbolo evaluando la señal en
// cada vela dentro de la ventana de backtest y simulando la operación
// cuando hay señal. Tras cada salida retoma en la vela siguiente, así
// nunca hay posiciones solapadas del mismo símbolo.
//
// Las operaciones que siguen abiertas al acabar la serie se descartan:
// sin salida no hay retorno que puntuar.
func (a *Analyzer) ScanHistory(code, name string, bars []domain.Bar, backtestDays int, sim backtest.Config) ([]domain.TradeRecord, error) {
	if err := domain.ValidateSeries(bars); err != nil {
		return nil, fmt.Errorf("scanner.ScanHistory: %s: %w", code, err)
	}
	if len(bars) <= a.cfg.MinBars {
		return nil, nil
	}

	enriched := indicator.Enrich(bars, a.indicators)

	start := a.cfg.MinBars
	if backtestDays > 0 && len(bars)-backtestDays > start {
		start = len(bars) - backtestDays
	}

	var trades []domain.TradeRecord
	for i := start; i < len(bars); {
		if bars[i].PctChange >= a.cfg.LimitUpPct {
			i++
			continue
		}

		sig := a.strategy.Evaluate(code, name, enriched, i)
		if !sig.Passes {
			i++
			continue
		}

		trade, exit, ok := backtest.Simulate(code, name, bars, i, sim)
		if !ok {
			// La serie terminó con la posición abierta; una entrada
			// posterior aún puede resolverse, así que seguimos.
			i++
			continue
		}
		trades = append(trades, trade)
		i = exit + 1
	}
	return trades, nil
}
