package notify

// console.go — reporte por terminal: tabla de picks del día y resumen
// de backtest. Es el notificador por defecto; el HTML es opcional.

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/olekukonko/tablewriter"
)

// maxTradeRows limita el detalle por-trade del backtest; con ~5000
// símbolos y 90 días la lista completa no cabe en una terminal.
const maxTradeRows = 50

// Thresholds son los umbrales de la estrategia que el modo validate
// imprime junto a cada valor, para que el desglose sea auto-contenido.
type Thresholds struct {
	VolumeRatio     float64
	ChangeThreshold float64
	JThreshold      float64
	DiffThreshold   float64
	PullbackRatio   float64
}

// Console implementa ports.Notifier escribiendo tablas a un writer.
type Console struct {
	out      io.Writer
	validate bool
	th       Thresholds
}

// NewConsole crea un notificador que escribe a stdout.
func NewConsole(validate bool, th Thresholds) *Console {
	return &Console{out: os.Stdout, validate: validate, th: th}
}

// NewConsoleWriter crea un notificador para tests.
func NewConsoleWriter(w io.Writer, validate bool, th Thresholds) *Console {
	return &Console{out: w, validate: validate, th: th}
}

// NotifySignals imprime la tabla de señales del día.
func (c *Console) NotifySignals(_ context.Context, date time.Time, signals []domain.Signal) error {
	day := date.Format("2006-01-02")
	if len(signals) == 0 {
		fmt.Fprintf(c.out, "\n[%s] 无买点信号 — no signals today\n", day)
		return nil
	}

	fmt.Fprintf(c.out, "\n=== 每日选股 %s — %d signals ===\n", day, len(signals))

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "代码", "名称", "收盘", "量比", "涨跌%", "J值", "DIFF", "回调", "理由")

	for i, sig := range signals {
		table.Append(
			fmt.Sprintf("%d", i+1),
			sig.Code,
			sig.Name,
			fmt.Sprintf("%.2f", sig.Close),
			fmt.Sprintf("%.2f", sig.VolumeRatio),
			fmt.Sprintf("%+.2f", sig.PctChange),
			fmt.Sprintf("%.2f", sig.J),
			fmt.Sprintf("%.3f", sig.Diff),
			fmt.Sprintf("%.1f%%", sig.PullbackDepth*100),
			sig.Reason,
		)
	}
	table.Render()

	fmt.Fprintln(c.out, "  量比 = 量/均量 (<0.70 缩量) | J值 <0 超卖 | DIFF >0 多头 | 回调 = 距前高")
	fmt.Fprintln(c.out, "  仅供研究参考，不构成投资建议")

	if c.validate {
		c.printValidation(signals)
	}
	return nil
}

// printValidation imprime el cálculo condición a condición de los top 3,
// con el umbral al lado de cada valor.
func (c *Console) printValidation(signals []domain.Signal) {
	top := signals
	if len(top) > 3 {
		top = signals[:3]
	}

	fmt.Fprintln(c.out, "\n=== 信号验证 — condición a condición ===")

	for i, sig := range top {
		fmt.Fprintf(c.out, "\n--- #%d: %s %s  %s ---\n",
			i+1, sig.Code, sig.Name, sig.Date.Format("2006-01-02"))

		fmt.Fprintf(c.out, "  1. 缩量:   量比 %.2f < %.2f  %s\n",
			sig.VolumeRatio, c.th.VolumeRatio, mark(sig.VolumeRatio < c.th.VolumeRatio))
		fmt.Fprintf(c.out, "  2. 企稳:   涨跌 %+.2f%% ≤ %+.2f%%  %s\n",
			sig.PctChange, c.th.ChangeThreshold, mark(sig.PctChange <= c.th.ChangeThreshold))
		fmt.Fprintf(c.out, "  3. 超卖:   J值 %.2f < %.2f  %s\n",
			sig.J, c.th.JThreshold, mark(sig.J < c.th.JThreshold))
		fmt.Fprintf(c.out, "  4. 多头:   DIFF %.3f > %.3f  %s\n",
			sig.Diff, c.th.DiffThreshold, mark(sig.Diff > c.th.DiffThreshold))
		fmt.Fprintf(c.out, "  前提:      回撤 %.1f%%，前高 × %.2f 未破\n",
			sig.PullbackDepth*100, c.th.PullbackRatio)
	}
	fmt.Fprintln(c.out)
}

func mark(ok bool) string {
	if ok {
		return "✓"
	}
	return "✗"
}

// NotifyBacktest imprime el resumen del backtest y el detalle de trades.
func (c *Console) NotifyBacktest(_ context.Context, result domain.BacktestResult) error {
	fmt.Fprintf(c.out, "\n=== 策略回测 %s → %s ===\n",
		result.StartDate.Format("2006-01-02"), result.EndDate.Format("2006-01-02"))

	if result.TotalTrades == 0 {
		fmt.Fprintln(c.out, "  窗口内没有已平仓的交易 — no resolved trades in window")
		return nil
	}

	fmt.Fprintf(c.out, "  交易次数: %d   胜率: %.1f%% (%d胜 / %d负)\n",
		result.TotalTrades, result.WinRate*100, result.Wins, result.Losses)
	fmt.Fprintf(c.out, "  平均收益: %+.2f%%   累计收益: %+.2f%%\n",
		result.AvgReturn*100, result.CumulativeReturn*100)
	fmt.Fprintf(c.out, "  最大单笔盈利: %+.2f%%   最大单笔亏损: %+.2f%%\n",
		result.MaxProfit*100, result.MaxLoss*100)
	if result.HasProfitLossRatio {
		fmt.Fprintf(c.out, "  盈亏比: %.2f\n", result.ProfitLossRatio)
	} else {
		fmt.Fprintln(c.out, "  盈亏比: — (无亏损交易)")
	}

	table := tablewriter.NewWriter(c.out)
	table.Header("#", "代码", "名称", "买入日", "买价", "卖出日", "卖价", "收益%", "持有天", "原因")

	shown := len(result.Trades)
	if shown > maxTradeRows {
		shown = maxTradeRows
	}
	for i, t := range result.Trades[:shown] {
		table.Append(
			fmt.Sprintf("%d", i+1),
			t.Code,
			t.Name,
			t.BuyDate.Format("01-02"),
			fmt.Sprintf("%.2f", t.BuyPrice),
			t.SellDate.Format("01-02"),
			fmt.Sprintf("%.2f", t.SellPrice),
			fmt.Sprintf("%+.2f", t.ReturnPct*100),
			fmt.Sprintf("%d", t.HoldingDays),
			t.SellReason.Label(),
		)
	}
	table.Render()

	if rest := len(result.Trades) - shown; rest > 0 {
		fmt.Fprintf(c.out, "  ... y %d trades más (ver SQLite para el detalle completo)\n", rest)
	}
	fmt.Fprintln(c.out, "  原因: 止盈 = take-profit | 止损 = stop-loss | 超时 = max holding")

	if result.CumulativeReturn > 0 {
		fmt.Fprintf(c.out, "\n  >>> 策略验证: 正收益 — cumulative %+.2f%% over %d trades\n\n",
			result.CumulativeReturn*100, result.TotalTrades)
	} else {
		fmt.Fprintf(c.out, "\n  >>> 策略验证: 负收益 — review thresholds before trading\n\n")
	}
	return nil
}
