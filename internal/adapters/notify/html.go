package notify

// html.go — reportes HTML estáticos bajo docs/, pensados para servirse
// tal cual (GitHub Pages, nginx). Cada scan escribe daily.html más una
// copia fechada en history/, y reconstruye el índice; regenerar es
// idempotente.

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// historyReader es lo que el índice necesita del storage. Puede ser
// nil: entonces el índice solo lista la fecha recién generada.
type historyReader interface {
	SignalDates(ctx context.Context, limit int) ([]time.Time, error)
}

// HTMLReport implementa ports.Notifier escribiendo páginas estáticas.
type HTMLReport struct {
	dir     string
	title   string
	history historyReader
}

// NewHTMLReport crea el notificador. dir es el directorio de salida
// (se crea si no existe al primer reporte).
func NewHTMLReport(dir, title string, history historyReader) *HTMLReport {
	if title == "" {
		title = "kscan"
	}
	return &HTMLReport{dir: dir, title: title, history: history}
}

// --- páginas ---

type dailyRow struct {
	Index       int
	Code        string
	Name        string
	Close       string
	VolumeRatio string
	PctChange   string
	ChangeClass string
	J           string
	Diff        string
	Pullback    string
	Reason      string
}

type dailyPage struct {
	Title     string
	Date      string
	Generated string
	CSSPath   string
	IndexPath string
	Rows      []dailyRow
}

type tradeRow struct {
	Index       int
	Code        string
	Name        string
	BuyDate     string
	BuyPrice    string
	SellDate    string
	SellPrice   string
	ReturnPct   string
	ReturnClass string
	HoldingDays int
	SellReason  string
}

type backtestPage struct {
	Title     string
	StartDate string
	EndDate   string
	Generated string
	HasTrades bool

	TotalTrades int
	WinRate     string
	AvgReturn   string
	Cumulative  string
	MaxProfit   string
	MaxLoss     string
	PLRatio     string

	Rows []tradeRow
}

type indexPage struct {
	Title     string
	Generated string
	Dates     []string
}

// NotifySignals escribe la página del día, su copia en history/ y
// reconstruye el índice.
func (h *HTMLReport) NotifySignals(ctx context.Context, date time.Time, signals []domain.Signal) error {
	day := date.Format("2006-01-02")

	rows := make([]dailyRow, 0, len(signals))
	for i, sig := range signals {
		rows = append(rows, dailyRow{
			Index:       i + 1,
			Code:        sig.Code,
			Name:        sig.Name,
			Close:       fmt.Sprintf("%.2f", sig.Close),
			VolumeRatio: fmt.Sprintf("%.2f", sig.VolumeRatio),
			PctChange:   fmt.Sprintf("%+.2f", sig.PctChange),
			ChangeClass: changeClass(sig.PctChange),
			J:           fmt.Sprintf("%.2f", sig.J),
			Diff:        fmt.Sprintf("%.3f", sig.Diff),
			Pullback:    fmt.Sprintf("%.1f%%", sig.PullbackDepth*100),
			Reason:      sig.Reason,
		})
	}

	page := dailyPage{
		Title:     h.title,
		Date:      day,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
		CSSPath:   "assets/style.css",
		IndexPath: "index.html",
		Rows:      rows,
	}
	if err := h.writePage(dailyTmpl, page, "daily.html"); err != nil {
		return fmt.Errorf("notify.NotifySignals: %w", err)
	}

	// copia fechada para el archivo histórico
	page.CSSPath = "../assets/style.css"
	page.IndexPath = "../index.html"
	if err := h.writePage(dailyTmpl, page, filepath.Join("history", day+".html")); err != nil {
		return fmt.Errorf("notify.NotifySignals: %w", err)
	}

	if err := h.rebuildIndex(ctx, day); err != nil {
		return fmt.Errorf("notify.NotifySignals: %w", err)
	}
	return h.ensureAssets()
}

// NotifyBacktest escribe la página del backtest.
func (h *HTMLReport) NotifyBacktest(ctx context.Context, result domain.BacktestResult) error {
	rows := make([]tradeRow, 0, len(result.Trades))
	for i, t := range result.Trades {
		rows = append(rows, tradeRow{
			Index:       i + 1,
			Code:        t.Code,
			Name:        t.Name,
			BuyDate:     t.BuyDate.Format("2006-01-02"),
			BuyPrice:    fmt.Sprintf("%.2f", t.BuyPrice),
			SellDate:    t.SellDate.Format("2006-01-02"),
			SellPrice:   fmt.Sprintf("%.2f", t.SellPrice),
			ReturnPct:   fmt.Sprintf("%+.2f", t.ReturnPct*100),
			ReturnClass: changeClass(t.ReturnPct),
			HoldingDays: t.HoldingDays,
			SellReason:  t.SellReason.Label(),
		})
	}

	plRatio := "—"
	if result.HasProfitLossRatio {
		plRatio = fmt.Sprintf("%.2f", result.ProfitLossRatio)
	}

	page := backtestPage{
		Title:       h.title,
		StartDate:   result.StartDate.Format("2006-01-02"),
		EndDate:     result.EndDate.Format("2006-01-02"),
		Generated:   time.Now().Format("2006-01-02 15:04:05"),
		HasTrades:   result.TotalTrades > 0,
		TotalTrades: result.TotalTrades,
		WinRate:     fmt.Sprintf("%.1f%%", result.WinRate*100),
		AvgReturn:   fmt.Sprintf("%+.2f%%", result.AvgReturn*100),
		Cumulative:  fmt.Sprintf("%+.2f%%", result.CumulativeReturn*100),
		MaxProfit:   fmt.Sprintf("%+.2f%%", result.MaxProfit*100),
		MaxLoss:     fmt.Sprintf("%+.2f%%", result.MaxLoss*100),
		PLRatio:     plRatio,
		Rows:        rows,
	}
	if err := h.writePage(backtestTmpl, page, "backtest.html"); err != nil {
		return fmt.Errorf("notify.NotifyBacktest: %w", err)
	}

	if err := h.rebuildIndex(ctx, ""); err != nil {
		return fmt.Errorf("notify.NotifyBacktest: %w", err)
	}
	return h.ensureAssets()
}

// --- helpers ---

// rebuildIndex regenera index.html con las fechas del storage más la
// fecha recién escrita (que aún no está persistida cuando nos llaman).
func (h *HTMLReport) rebuildIndex(ctx context.Context, justWritten string) error {
	seen := map[string]bool{}
	var dates []string
	if h.history != nil {
		stored, err := h.history.SignalDates(ctx, 90)
		if err != nil {
			return fmt.Errorf("read history dates: %w", err)
		}
		for _, d := range stored {
			key := d.Format("2006-01-02")
			seen[key] = true
			dates = append(dates, key)
		}
	}
	if justWritten != "" && !seen[justWritten] {
		dates = append(dates, justWritten)
	}
	// YYYY-MM-DD ordena lexicográficamente; más reciente primero
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	page := indexPage{
		Title:     h.title,
		Generated: time.Now().Format("2006-01-02 15:04:05"),
		Dates:     dates,
	}
	return h.writePage(indexTmpl, page, "index.html")
}

// writePage renderiza la plantilla y escribe el fichero, creando los
// directorios intermedios.
func (h *HTMLReport) writePage(tmpl *template.Template, data any, rel string) error {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("render %s: %w", rel, err)
	}

	path := filepath.Join(h.dir, rel)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir for %s: %w", rel, err)
	}
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write %s: %w", rel, err)
	}
	return nil
}

// ensureAssets escribe la hoja de estilos compartida.
func (h *HTMLReport) ensureAssets() error {
	path := filepath.Join(h.dir, "assets", "style.css")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("notify.ensureAssets: mkdir: %w", err)
	}
	if err := os.WriteFile(path, []byte(styleCSS), 0o644); err != nil {
		return fmt.Errorf("notify.ensureAssets: write css: %w", err)
	}
	return nil
}

// changeClass mapea el signo a la clase CSS: en A股 el rojo es subida.
func changeClass(v float64) string {
	switch {
	case v > 0:
		return "up"
	case v < 0:
		return "down"
	default:
		return ""
	}
}
