package domain

import "time"

// SellReason es la regla de salida que cerró un trade simulado.
// Las tres reglas son mutuamente excluyentes y con precedencia fija:
// take-profit antes que stop-loss antes que timeout.
type SellReason int

const (
	SellTakeProfit SellReason = iota
	SellStopLoss
	SellTimeout
)

func (r SellReason) String() string {
	switch r {
	case SellTakeProfit:
		return "take_profit"
	case SellStopLoss:
		return "stop_loss"
	default:
		return "timeout"
	}
}

// Label devuelve la etiqueta que ve el operador en los reportes.
func (r SellReason) Label() string {
	switch r {
	case SellTakeProfit:
		return "止盈"
	case SellStopLoss:
		return "止损"
	default:
		return "超时"
	}
}

// ParseSellReason reconstruye el enum desde su forma persistida.
func ParseSellReason(s string) SellReason {
	switch s {
	case "take_profit":
		return SellTakeProfit
	case "stop_loss":
		return SellStopLoss
	default:
		return SellTimeout
	}
}

// TradeRecord es un trade simulado ya resuelto. Lo produce el
// simulador para exactamente una señal y es inmutable después.
//
// HoldingDays cuenta bars de trading entre entrada y salida
// (índice de venta − índice de compra), no días de calendario.
type TradeRecord struct {
	Code        string
	Name        string
	BuyDate     time.Time
	BuyPrice    float64
	SellDate    time.Time
	SellPrice   float64
	SellReason  SellReason
	ReturnPct   float64 // (venta − compra) / compra
	HoldingDays int
}

// Win devuelve true si el trade cerró en positivo.
func (t TradeRecord) Win() bool {
	return t.ReturnPct > 0
}

// BacktestResult agrega un conjunto de TradeRecords. Trades ordenados
// por BuyDate cronológico (el retorno acumulado se define sobre ese
// orden); el resto de métricas son reducciones conmutativas.
type BacktestResult struct {
	StartDate time.Time
	EndDate   time.Time
	RunID     string // uuid del backtest que lo produjo

	TotalTrades int
	Wins        int
	Losses      int

	WinRate   float64 // wins / total; 0 si no hay trades
	AvgReturn float64
	MaxProfit float64
	MaxLoss   float64

	// ProfitLossRatio = media de retornos positivos / |media de negativos|.
	// Solo está definido con al menos un trade perdedor; si no, queda en 0
	// y HasProfitLossRatio lo señala.
	ProfitLossRatio    float64
	HasProfitLossRatio bool

	// CumulativeReturn = ∏(1+r) − 1 sobre los trades en orden cronológico:
	// una unidad de capital reinvertida secuencialmente.
	CumulativeReturn float64

	Trades []TradeRecord
}
