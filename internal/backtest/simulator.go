package backtest

// simulator.go — máquina de estados de un trade simulado.
//
// Estados: OPEN → {take_profit, stop_loss, timeout}. Cada día posterior a la
// entrada se evalúan las reglas en orden fijo y gana la primera que se
// cumpla: take-profit antes que stop-loss (en un gap que cruce ambos
// umbrales el desempate es deliberadamente optimista) y ambos antes que el
// timeout. Entrada y salida siempre al cierre del día.

import "github.com/alejandrodnm/kscan/internal/domain"

// Config son los parámetros del ciclo de vida del trade.
type Config struct {
	TakeProfitPct  float64 // 0.10 = +10% sobre el precio de compra
	StopLossPct    float64 // 0.05 = −5%
	MaxHoldingDays int     // bars de trading antes del cierre forzoso
}

// DefaultConfig devuelve los parámetros estándar de simulación.
func DefaultConfig() Config {
	return Config{
		TakeProfitPct:  0.10,
		StopLossPct:    0.05,
		MaxHoldingDays: 10,
	}
}

// Simulate resuelve el trade que entra al cierre de bars[entry].
// Devuelve el registro, el índice del bar de salida y true; o ok=false
// si la serie se agota con el trade aún abierto — ese trade no se puede
// puntuar y se descarta en vez de inventarle una salida.
func Simulate(code, name string, bars []domain.Bar, entry int, cfg Config) (domain.TradeRecord, int, bool) {
	buy := bars[entry]
	tp := buy.Close * (1 + cfg.TakeProfitPct)
	sl := buy.Close * (1 - cfg.StopLossPct)

	for j := entry + 1; j < len(bars); j++ {
		day := bars[j]
		held := j - entry

		var reason domain.SellReason
		switch {
		case day.Close >= tp:
			reason = domain.SellTakeProfit
		case day.Close <= sl:
			reason = domain.SellStopLoss
		case held >= cfg.MaxHoldingDays:
			reason = domain.SellTimeout
		default:
			continue
		}

		return domain.TradeRecord{
			Code:        code,
			Name:        name,
			BuyDate:     buy.Date,
			BuyPrice:    buy.Close,
			SellDate:    day.Date,
			SellPrice:   day.Close,
			SellReason:  reason,
			ReturnPct:   (day.Close - buy.Close) / buy.Close,
			HoldingDays: held,
		}, j, true
	}
	return domain.TradeRecord{}, -1, false
}
