package eastmoney

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
)

const (
	klinePath = "/api/qt/stock/kline/get"
	// klt=101: velas diarias; fqt=1: precios forward-adjusted (前复权).
	klineKLT = 101
	klineFQT = 1
	// fields2 fija el orden CSV que espera parseKline.
	klineFields1 = "f1,f2,f3,f4,f5,f6"
	klineFields2 = "f51,f52,f53,f54,f55,f56,f57,f58,f59,f60,f61"
	// end en el futuro lejano: push2his trunca al último día de trading.
	klineEndDate = "20500101"
)

// FetchDaily devuelve hasta `days` días de calendario de velas diarias
// del símbolo, de más antigua a más reciente.
func (c *Client) FetchDaily(ctx context.Context, code string, days int) ([]domain.Bar, error) {
	beg := time.Now().UTC().AddDate(0, 0, -days).Format("20060102")
	return c.fetchDailyFrom(ctx, code, beg)
}

// FetchDailySince devuelve las velas desde la fecha dada (inclusive).
// Lo usa el cache de velas para rellenar solo el hueco que falta.
func (c *Client) FetchDailySince(ctx context.Context, code string, since time.Time) ([]domain.Bar, error) {
	return c.fetchDailyFrom(ctx, code, since.Format("20060102"))
}

func (c *Client) fetchDailyFrom(ctx context.Context, code, beg string) ([]domain.Bar, error) {
	url := fmt.Sprintf("%s%s?secid=%s&klt=%d&fqt=%d&beg=%s&end=%s&fields1=%s&fields2=%s",
		c.klineBase, klinePath, domain.SecIDFor(code), klineKLT, klineFQT,
		beg, klineEndDate, klineFields1, klineFields2)

	var resp klineResponse
	if err := c.get(ctx, c.klineLimiter, url, &resp); err != nil {
		return nil, fmt.Errorf("eastmoney.FetchDaily: %s: %w", code, err)
	}
	if resp.Data == nil {
		return nil, fmt.Errorf("eastmoney.FetchDaily: %s: símbolo sin datos", code)
	}

	bars, err := parseKlines(resp.Data.Klines)
	if err != nil {
		return nil, fmt.Errorf("eastmoney.FetchDaily: %s: %w", code, err)
	}

	slog.Debug("fetched daily klines", "code", code, "bars", len(bars))
	return bars, nil
}
