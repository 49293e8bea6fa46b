package scanner_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kscan/internal/application/scanner"
	"github.com/alejandrodnm/kscan/internal/backtest"
	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/alejandrodnm/kscan/internal/domain/strategy"
	"github.com/alejandrodnm/kscan/internal/indicator"
	"github.com/alejandrodnm/kscan/internal/ports"
)

// --- mocks ---

type mockQuoteProvider struct {
	quotes []domain.Quote
	err    error
}

func (m *mockQuoteProvider) FetchQuotes(_ context.Context) ([]domain.Quote, error) {
	return m.quotes, m.err
}

type mockBarProvider struct {
	series map[string][]domain.Bar
	errFor string // código cuyo fetch falla
}

func (m *mockBarProvider) FetchDaily(_ context.Context, code string, _ int) ([]domain.Bar, error) {
	if code == m.errFor {
		return nil, errors.New("API down")
	}
	return m.series[code], nil
}

type mockNotifier struct {
	date    time.Time
	signals []domain.Signal
	results []domain.BacktestResult
	err     error
}

func (m *mockNotifier) NotifySignals(_ context.Context, date time.Time, signals []domain.Signal) error {
	m.date = date
	m.signals = signals
	return m.err
}

func (m *mockNotifier) NotifyBacktest(_ context.Context, result domain.BacktestResult) error {
	m.results = append(m.results, result)
	return m.err
}

type mockStorage struct {
	signals []domain.Signal
	results []domain.BacktestResult
	err     error
}

func (m *mockStorage) SaveSignals(_ context.Context, signals []domain.Signal) error {
	m.signals = signals
	return m.err
}

func (m *mockStorage) SaveBacktest(_ context.Context, result domain.BacktestResult) error {
	m.results = append(m.results, result)
	return m.err
}

func (m *mockStorage) SignalDates(_ context.Context, _ int) ([]time.Time, error) {
	return nil, nil
}

func (m *mockStorage) SignalsOn(_ context.Context, _ time.Time) ([]domain.Signal, error) {
	return nil, nil
}

func (m *mockStorage) Close() error { return nil }

// stubStrategy emite señal en los índices marcados por código.
type stubStrategy struct {
	at map[string]map[int]bool
}

func (s stubStrategy) Name() string { return "stub" }

func (s stubStrategy) Evaluate(code, name string, bars []domain.EnrichedBar, idx int) domain.Signal {
	return domain.Signal{
		Date:   bars[idx].Date,
		Code:   code,
		Name:   name,
		Close:  bars[idx].Close,
		Passes: s.at[code][idx],
	}
}

// --- helpers ---

func day(i int) time.Time {
	return time.Date(2025, 6, 2, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i)
}

// signalBars construye la serie que dispara la señal en el décimo día:
// nueve días planos en 10.00 con rangos altos (hunden el RSV) y un
// décimo que cierra en 11 con la mitad del volumen medio.
func signalBars() []domain.Bar {
	bars := make([]domain.Bar, 10)
	for i := 0; i < 9; i++ {
		bars[i] = domain.Bar{
			Date: day(i), Open: 10, High: 30, Low: 10, Close: 10,
			Volume: 100, PctChange: 0,
		}
	}
	bars[9] = domain.Bar{
		Date: day(9), Open: 10, High: 11, Low: 10.8, Close: 11,
		Volume: 44.4444444444, PctChange: 2,
	}
	return bars
}

// flatBars no dispara nunca: volumen constante → 量比 = 1.
func flatBars() []domain.Bar {
	bars := make([]domain.Bar, 10)
	for i := range bars {
		bars[i] = domain.Bar{
			Date: day(i), Open: 10, High: 30, Low: 10, Close: 10,
			Volume: 100, PctChange: 0,
		}
	}
	return bars
}

func quote(code, name string) domain.Quote {
	return domain.Quote{Code: code, Name: name, Price: 10, PctChange: 0, Volume: 100, Amount: 1000}
}

func testAnalyzer() *scanner.Analyzer {
	strat := strategy.New(strategy.Config{
		MAShort:         3,
		MALong:          5,
		LookbackDays:    10,
		SwingWindow:     3,
		PullbackRatio:   0.90,
		VolumeRatio:     0.70,
		JThreshold:      0,
		DiffThreshold:   0,
		ChangeThreshold: 2,
	})
	ind := indicator.Config{
		MAPeriods:      []int{3, 5},
		VolumeMAPeriod: 5,
		KDJN:           9,
		KDJM1:          3,
		KDJM2:          3,
		MACDFast:       3,
		MACDSlow:       5,
		MACDSignal:     3,
	}
	return scanner.NewAnalyzer(scanner.AnalyzerConfig{MinBars: 5, LimitUpPct: 9.5}, strat, ind)
}

func newTestScanner(
	mq ports.QuoteProvider,
	mb ports.BarProvider,
	st ports.Storage,
	n ports.Notifier,
	analyzer *scanner.Analyzer,
) *scanner.Scanner {
	cfg := scanner.DefaultConfig()
	cfg.Once = true
	cfg.Workers = 2
	var notifiers []ports.Notifier
	if n != nil {
		notifiers = []ports.Notifier{n}
	}
	return scanner.New(cfg, mq, mb, st, notifiers, analyzer)
}

// --- tests ---

func TestScanner_RunOnce_Success(t *testing.T) {
	mq := &mockQuoteProvider{quotes: []domain.Quote{
		quote("600000", "浦发银行"),
		quote("000002", "万科A"),
	}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{
		"600000": signalBars(),
		"000002": flatBars(),
	}}

	s := newTestScanner(mq, mb, nil, nil, testAnalyzer())
	signals, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	require.Len(t, signals, 1)

	sig := signals[0]
	assert.Equal(t, "600000", sig.Code)
	assert.True(t, sig.Passes)
	assert.Equal(t, day(9), sig.Date)
	assert.InDelta(t, 0.50, sig.VolumeRatio, 0.001)
	assert.Contains(t, sig.Reason, "符合买点信号")
}

func TestScanner_RunOnce_ExcludesST(t *testing.T) {
	// El símbolo ST dispararía la señal, pero el filtro de universo lo
	// descarta antes de analizarlo.
	mq := &mockQuoteProvider{quotes: []domain.Quote{
		quote("600000", "浦发银行"),
		quote("600001", "ST海航"),
	}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{
		"600000": signalBars(),
		"600001": signalBars(),
	}}

	s := newTestScanner(mq, mb, nil, nil, testAnalyzer())
	signals, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "600000", signals[0].Code)
}

func TestScanner_RunOnce_QuoteProviderError(t *testing.T) {
	mq := &mockQuoteProvider{err: errors.New("API down")}
	s := newTestScanner(mq, &mockBarProvider{}, nil, nil, testAnalyzer())

	_, err := s.RunOnce(context.Background())
	assert.Error(t, err)
}

func TestScanner_RunOnce_FetchFailureSkipsSymbol(t *testing.T) {
	// El fetch de un símbolo falla: se salta ese símbolo y el ciclo sigue.
	mq := &mockQuoteProvider{quotes: []domain.Quote{
		quote("600000", "浦发银行"),
		quote("000002", "万科A"),
	}}
	mb := &mockBarProvider{
		series: map[string][]domain.Bar{"000002": flatBars()},
		errFor: "600000",
	}

	s := newTestScanner(mq, mb, nil, nil, testAnalyzer())
	signals, err := s.RunOnce(context.Background())

	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestScanner_RunOnce_TopNCapsResults(t *testing.T) {
	mq := &mockQuoteProvider{quotes: []domain.Quote{
		quote("600000", "浦发银行"),
		quote("000001", "平安银行"),
	}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{
		"600000": signalBars(),
		"000001": signalBars(),
	}}

	cfg := scanner.DefaultConfig()
	cfg.Once = true
	cfg.TopN = 1
	s := scanner.New(cfg, mq, mb, nil, nil, testAnalyzer())

	signals, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, signals, 1)
	// Mismo J en ambos → desempate estable por código.
	assert.Equal(t, "000001", signals[0].Code)
}

func TestScanner_Run_OnceNotifiesAndPersists(t *testing.T) {
	mq := &mockQuoteProvider{quotes: []domain.Quote{quote("600000", "浦发银行")}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{"600000": signalBars()}}
	notifier := &mockNotifier{}
	storage := &mockStorage{}

	s := newTestScanner(mq, mb, storage, notifier, testAnalyzer())
	require.NoError(t, s.Run(context.Background()))

	require.Len(t, notifier.signals, 1)
	assert.Equal(t, day(9), notifier.date)

	require.Len(t, storage.signals, 1)
	saved := storage.signals[0]
	assert.NotEmpty(t, saved.RunID)
	assert.False(t, saved.CreatedAt.IsZero())
}

func TestScanner_Run_DryRunSkipsStorage(t *testing.T) {
	mq := &mockQuoteProvider{quotes: []domain.Quote{quote("600000", "浦发银行")}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{"600000": signalBars()}}
	notifier := &mockNotifier{}
	storage := &mockStorage{}

	cfg := scanner.DefaultConfig()
	cfg.Once = true
	cfg.DryRun = true
	s := scanner.New(cfg, mq, mb, storage, []ports.Notifier{notifier}, testAnalyzer())

	require.NoError(t, s.Run(context.Background()))
	assert.Len(t, notifier.signals, 1, "dry-run sigue notificando")
	assert.Empty(t, storage.signals, "dry-run no persiste")
}

func TestScanner_RunBacktest_AggregatesUniverse(t *testing.T) {
	// Dos símbolos, una operación cada uno: 000001 toca take-profit
	// (+15%) y 600000 toca stop-loss (−6%). Ambos entran el día 3.
	mq := &mockQuoteProvider{quotes: []domain.Quote{
		quote("000001", "平安银行"),
		quote("600000", "浦发银行"),
	}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{
		"000001": barsWith(10, 10, 10, 10, 11.5, 10, 10, 10, 10, 10, 10, 10),
		"600000": barsWith(10, 10, 10, 10, 9.4, 10, 10, 10, 10, 10, 10, 10),
	}}
	notifier := &mockNotifier{}
	storage := &mockStorage{}

	stub := stubStrategy{at: map[string]map[int]bool{
		"000001": {3: true},
		"600000": {3: true},
	}}
	analyzer := scanner.NewAnalyzer(
		scanner.AnalyzerConfig{MinBars: 3, LimitUpPct: 9.5}, stub, indicator.Default())

	cfg := scanner.DefaultConfig()
	cfg.Workers = 2
	cfg.BacktestDays = 0 // sin recorte de ventana: escanea desde MinBars
	cfg.Simulation = backtest.Config{TakeProfitPct: 0.10, StopLossPct: 0.05, MaxHoldingDays: 3}
	s := scanner.New(cfg, mq, mb, storage, []ports.Notifier{notifier}, analyzer)

	result, err := s.RunBacktest(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalTrades)
	assert.Equal(t, 1, result.Wins)
	assert.Equal(t, 1, result.Losses)
	assert.InDelta(t, 0.5, result.WinRate, 1e-9)

	// P/L ratio = 0.15 / 0.06 = 2.5
	require.True(t, result.HasProfitLossRatio)
	assert.InDelta(t, 2.5, result.ProfitLossRatio, 1e-9)

	// Acumulado en orden cronológico (empate por código): 1.15 × 0.94 − 1
	assert.InDelta(t, 1.15*0.94-1, result.CumulativeReturn, 1e-9)

	assert.Equal(t, day(3), result.StartDate)
	assert.Equal(t, day(4), result.EndDate)
	assert.NotEmpty(t, result.RunID)

	require.Len(t, result.Trades, 2)
	assert.Equal(t, "000001", result.Trades[0].Code)
	assert.Equal(t, domain.SellTakeProfit, result.Trades[0].SellReason)
	assert.Equal(t, domain.SellStopLoss, result.Trades[1].SellReason)

	require.Len(t, notifier.results, 1)
	require.Len(t, storage.results, 1)
	assert.Equal(t, result.RunID, storage.results[0].RunID)
}

func TestScanner_RunBacktest_QuoteProviderError(t *testing.T) {
	mq := &mockQuoteProvider{err: errors.New("API down")}
	s := newTestScanner(mq, &mockBarProvider{}, nil, nil, testAnalyzer())

	_, err := s.RunBacktest(context.Background())
	assert.Error(t, err)
}

func TestScanner_RunOnce_EvalDateCutsSeries(t *testing.T) {
	// La señal de signalBars dispara en el día 9. Evaluar "como si fuera"
	// el día 8 recorta la serie y evalúa la vela plana de ese día, que no
	// dispara; el día 9 la encuentra intacta.
	mq := &mockQuoteProvider{quotes: []domain.Quote{quote("600000", "浦发银行")}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{"600000": signalBars()}}

	cfg := scanner.DefaultConfig()
	cfg.Once = true
	cfg.Workers = 2
	cfg.EvalDate = day(9)
	s := scanner.New(cfg, mq, mb, nil, nil, testAnalyzer())

	signals, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, day(9), signals[0].Date)

	cfg.EvalDate = day(8)
	s = scanner.New(cfg, mq, mb, nil, nil, testAnalyzer())

	signals, err = s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestScanner_RunOnce_EvalDateWithoutBarSkipsSymbol(t *testing.T) {
	// La serie termina el día 9. Pedir el día 10 no debe evaluar la vela
	// del 9 como si fuera la actual: el símbolo no cotizó ese día.
	mq := &mockQuoteProvider{quotes: []domain.Quote{quote("600000", "浦发银行")}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{"600000": signalBars()}}

	cfg := scanner.DefaultConfig()
	cfg.Once = true
	cfg.Workers = 2
	cfg.EvalDate = day(10)
	s := scanner.New(cfg, mq, mb, nil, nil, testAnalyzer())

	signals, err := s.RunOnce(context.Background())
	require.NoError(t, err)
	assert.Empty(t, signals)
}

func TestScanner_RunBacktest_EvalDateBoundsWindow(t *testing.T) {
	// El stub dispara en los índices 3 y 8. Con EvalDate en el día 6 la
	// serie se recorta antes de la segunda entrada: queda solo la primera
	// operación (take-profit en el día 4).
	mq := &mockQuoteProvider{quotes: []domain.Quote{quote("000001", "平安银行")}}
	mb := &mockBarProvider{series: map[string][]domain.Bar{
		"000001": barsWith(10, 10, 10, 10, 11.5, 10, 10, 10, 10, 10, 10, 10),
	}}

	stub := stubStrategy{at: map[string]map[int]bool{
		"000001": {3: true, 8: true},
	}}
	analyzer := scanner.NewAnalyzer(
		scanner.AnalyzerConfig{MinBars: 3, LimitUpPct: 9.5}, stub, indicator.Default())

	cfg := scanner.DefaultConfig()
	cfg.Workers = 2
	cfg.BacktestDays = 0
	cfg.Simulation = backtest.Config{TakeProfitPct: 0.10, StopLossPct: 0.05, MaxHoldingDays: 3}
	s := scanner.New(cfg, mq, mb, nil, nil, analyzer)

	result, err := s.RunBacktest(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, result.TotalTrades)

	cfg.EvalDate = day(6)
	s = scanner.New(cfg, mq, mb, nil, nil, analyzer)

	result, err = s.RunBacktest(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, result.TotalTrades)
	assert.Equal(t, domain.SellTakeProfit, result.Trades[0].SellReason)
}

// barsWith crea una serie diaria con los cierres dados y OHLC plano.
func barsWith(closes ...float64) []domain.Bar {
	bars := make([]domain.Bar, len(closes))
	for i, c := range closes {
		bars[i] = domain.Bar{
			Date: day(i), Open: c, High: c, Low: c, Close: c,
			Volume: 100,
		}
	}
	return bars
}
