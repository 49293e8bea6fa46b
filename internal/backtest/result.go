package backtest

// result.go — agregación de trades en estadísticas de la estrategia.

import (
	"math"
	"sort"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// Aggregate reduce un conjunto de trades resueltos a un BacktestResult.
// Los trades se ordenan por fecha de compra (desempate por código) y el
// retorno acumulado se compone sobre ese orden: una unidad de capital
// reinvertida trade a trade. El resto de métricas son reducciones
// conmutativas, el orden no las afecta.
func Aggregate(trades []domain.TradeRecord, start, end time.Time) domain.BacktestResult {
	res := domain.BacktestResult{StartDate: start, EndDate: end}
	if len(trades) == 0 {
		return res
	}

	ordered := make([]domain.TradeRecord, len(trades))
	copy(ordered, trades)
	sort.SliceStable(ordered, func(i, j int) bool {
		if !ordered[i].BuyDate.Equal(ordered[j].BuyDate) {
			return ordered[i].BuyDate.Before(ordered[j].BuyDate)
		}
		return ordered[i].Code < ordered[j].Code
	})
	res.Trades = ordered
	res.TotalTrades = len(ordered)

	var sum, winSum, lossSum float64
	maxProfit := math.Inf(-1)
	maxLoss := math.Inf(1)
	cum := 1.0

	for _, t := range ordered {
		r := t.ReturnPct
		sum += r
		cum *= 1 + r
		if r > maxProfit {
			maxProfit = r
		}
		if r < maxLoss {
			maxLoss = r
		}
		switch {
		case r > 0:
			res.Wins++
			winSum += r
		case r < 0:
			res.Losses++
			lossSum += r
		}
	}

	res.WinRate = float64(res.Wins) / float64(res.TotalTrades)
	res.AvgReturn = sum / float64(res.TotalTrades)
	res.MaxProfit = maxProfit
	res.MaxLoss = maxLoss
	res.CumulativeReturn = cum - 1

	// El ratio ganancia/pérdida solo existe con al menos un perdedor.
	if res.Losses > 0 {
		avgLoss := math.Abs(lossSum / float64(res.Losses))
		var avgWin float64
		if res.Wins > 0 {
			avgWin = winSum / float64(res.Wins)
		}
		res.ProfitLossRatio = avgWin / avgLoss
		res.HasProfitLossRatio = true
	}
	return res
}
