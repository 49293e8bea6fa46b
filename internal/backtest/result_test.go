package backtest

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kscan/internal/domain"
)

func TestAggregate_Empty(t *testing.T) {
	res := Aggregate(nil, bt(1), bt(90))
	assert.Equal(t, 0, res.TotalTrades)
	assert.Equal(t, 0.0, res.WinRate)
	assert.False(t, res.HasProfitLossRatio)
	assert.Empty(t, res.Trades)
}

func TestAggregate_Stats(t *testing.T) {
	// Retornos +10%, −5%, +6% y 0%:
	//   win_rate  = 2/4 = 0.5 (el 0% no cuenta como ganador ni perdedor)
	//   avg       = 0.11/4 = 0.0275
	//   P/L ratio = media de ganadores (0.08) / |media de perdedores| (0.05) = 1.6
	//   acumulado = 1.10 × 0.95 × 1.06 × 1.00 − 1 = 0.1077
	trades := []domain.TradeRecord{
		trade("600001", bt(1), 0.10),
		trade("600002", bt(2), -0.05),
		trade("600003", bt(3), 0.06),
		trade("600004", bt(4), 0.0),
	}

	res := Aggregate(trades, bt(1), bt(30))
	assert.Equal(t, 4, res.TotalTrades)
	assert.Equal(t, 2, res.Wins)
	assert.Equal(t, 1, res.Losses)
	assert.InDelta(t, 0.5, res.WinRate, 1e-9)
	assert.InDelta(t, 0.0275, res.AvgReturn, 1e-9)
	assert.InDelta(t, 0.10, res.MaxProfit, 1e-9)
	assert.InDelta(t, -0.05, res.MaxLoss, 1e-9)
	require.True(t, res.HasProfitLossRatio)
	assert.InDelta(t, 1.6, res.ProfitLossRatio, 1e-9)
	assert.InDelta(t, 0.1077, res.CumulativeReturn, 0.0001)
}

func TestAggregate_NoLosers_RatioUndefined(t *testing.T) {
	trades := []domain.TradeRecord{
		trade("600001", bt(1), 0.10),
		trade("600002", bt(2), 0.20),
	}

	res := Aggregate(trades, bt(1), bt(30))
	assert.False(t, res.HasProfitLossRatio)
	assert.Equal(t, 0.0, res.ProfitLossRatio)
	assert.InDelta(t, 1.0, res.WinRate, 1e-9)
	// 1.1 × 1.2 − 1 = 0.32
	assert.InDelta(t, 0.32, res.CumulativeReturn, 1e-9)
	// max_loss sigue siendo el mínimo de los retornos aunque sea positivo
	assert.InDelta(t, 0.10, res.MaxLoss, 1e-9)
}

func TestAggregate_OrdersChronologically(t *testing.T) {
	trades := []domain.TradeRecord{
		trade("600003", bt(9), 0.01),
		trade("600001", bt(2), 0.02),
		trade("600002", bt(5), 0.03),
	}

	res := Aggregate(trades, bt(1), bt(30))
	require.Len(t, res.Trades, 3)
	assert.Equal(t, "600001", res.Trades[0].Code)
	assert.Equal(t, "600002", res.Trades[1].Code)
	assert.Equal(t, "600003", res.Trades[2].Code)
	// el slice de entrada no se reordena
	assert.Equal(t, "600003", trades[0].Code)
}

func TestAggregate_SameDayTieBrokenByCode(t *testing.T) {
	trades := []domain.TradeRecord{
		trade("600002", bt(3), 0.01),
		trade("600001", bt(3), 0.02),
	}

	res := Aggregate(trades, bt(1), bt(30))
	assert.Equal(t, "600001", res.Trades[0].Code)
	assert.Equal(t, "600002", res.Trades[1].Code)
}

// --- helpers ---

func bt(day int) time.Time {
	return time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, day)
}

func trade(code string, buy time.Time, ret float64) domain.TradeRecord {
	return domain.TradeRecord{
		Code:        code,
		Name:        "测试",
		BuyDate:     buy,
		BuyPrice:    10,
		SellDate:    buy.AddDate(0, 0, 3),
		SellPrice:   10 * (1 + ret),
		SellReason:  domain.SellTimeout,
		ReturnPct:   ret,
		HoldingDays: 3,
	}
}
