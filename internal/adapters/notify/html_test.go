package notify_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/alejandrodnm/kscan/internal/adapters/notify"
	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- mocks ---

type mockHistory struct {
	dates []time.Time
	err   error
}

func (m *mockHistory) SignalDates(ctx context.Context, limit int) ([]time.Time, error) {
	return m.dates, m.err
}

func readPage(t *testing.T, dir string, rel string) string {
	t.Helper()
	raw, err := os.ReadFile(filepath.Join(dir, rel))
	require.NoError(t, err, rel)
	return string(raw)
}

// --- tests ---

func TestHTMLReport_NotifySignals_WritesPages(t *testing.T) {
	dir := t.TempDir()
	h := notify.NewHTMLReport(dir, "测试筛选", nil)

	err := h.NotifySignals(context.Background(), day("2025-06-10"), []domain.Signal{
		makeSignal("600000", "浦发银行", -5.2),
	})
	require.NoError(t, err)

	daily := readPage(t, dir, "daily.html")
	assert.Contains(t, daily, "600000")
	assert.Contains(t, daily, "浦发银行")
	assert.Contains(t, daily, "符合买点信号")
	assert.Contains(t, daily, "测试筛选")

	// copia fechada con CSS relativo
	dated := readPage(t, dir, filepath.Join("history", "2025-06-10.html"))
	assert.Contains(t, dated, "../assets/style.css")

	index := readPage(t, dir, "index.html")
	assert.Contains(t, index, "history/2025-06-10.html")

	css := readPage(t, dir, filepath.Join("assets", "style.css"))
	assert.Contains(t, css, "tabular-nums")
}

func TestHTMLReport_NotifySignals_Empty(t *testing.T) {
	dir := t.TempDir()
	h := notify.NewHTMLReport(dir, "", nil)

	err := h.NotifySignals(context.Background(), day("2025-06-10"), nil)
	require.NoError(t, err)

	daily := readPage(t, dir, "daily.html")
	assert.Contains(t, daily, "无买点信号")
}

func TestHTMLReport_IndexMergesStoredDates(t *testing.T) {
	dir := t.TempDir()
	history := &mockHistory{dates: []time.Time{day("2025-06-09"), day("2025-06-06")}}
	h := notify.NewHTMLReport(dir, "kscan", history)

	err := h.NotifySignals(context.Background(), day("2025-06-10"), []domain.Signal{
		makeSignal("600000", "浦发银行", -5.2),
	})
	require.NoError(t, err)

	index := readPage(t, dir, "index.html")
	assert.Contains(t, index, "2025-06-10")
	assert.Contains(t, index, "2025-06-09")
	assert.Contains(t, index, "2025-06-06")

	// La fecha recién escrita debe listarse primero
	assert.Less(t,
		strings.Index(index, "2025-06-10.html"),
		strings.Index(index, "2025-06-09.html"),
	)
}

func TestHTMLReport_NotifyBacktest(t *testing.T) {
	dir := t.TempDir()
	h := notify.NewHTMLReport(dir, "kscan", nil)

	result := makeResult([]domain.TradeRecord{
		makeTrade("600000", 0.10, domain.SellTakeProfit),
		makeTrade("000002", -0.05, domain.SellStopLoss),
	})

	err := h.NotifyBacktest(context.Background(), result)
	require.NoError(t, err)

	page := readPage(t, dir, "backtest.html")
	assert.Contains(t, page, "50.0%")
	assert.Contains(t, page, "+4.50%") // acumulado
	assert.Contains(t, page, "止盈")
	assert.Contains(t, page, "600000")
}

func TestHTMLReport_Regeneration(t *testing.T) {
	dir := t.TempDir()
	h := notify.NewHTMLReport(dir, "kscan", nil)
	ctx := context.Background()
	signals := []domain.Signal{makeSignal("600000", "浦发银行", -5.2)}

	require.NoError(t, h.NotifySignals(ctx, day("2025-06-10"), signals))
	require.NoError(t, h.NotifySignals(ctx, day("2025-06-10"), signals))

	// Re-generar no duplica la fecha en el índice
	index := readPage(t, dir, "index.html")
	assert.Equal(t, 1, strings.Count(index, "history/2025-06-10.html"))
}
