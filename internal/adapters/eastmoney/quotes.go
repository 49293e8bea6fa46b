package eastmoney

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/alejandrodnm/kscan/internal/domain"
)

const (
	spotPath = "/api/qt/clist/get"
	// fs = A-shares de Shanghai y Shenzhen (main board, ChiNext, STAR).
	spotFS     = "m:0+t:6,m:0+t:80,m:1+t:2,m:1+t:23"
	spotFields = "f2,f3,f5,f6,f12,f14"
	pageSize   = 200
)

// FetchQuotes devuelve el snapshot spot de todos los A-shares de Shanghai
// y Shenzhen. Pagina automáticamente hasta cubrir el total que reporta el API.
func (c *Client) FetchQuotes(ctx context.Context) ([]domain.Quote, error) {
	var all []domain.Quote
	total := -1

	for page := 1; total < 0 || len(all) < total; page++ {
		url := fmt.Sprintf("%s%s?pn=%d&pz=%d&po=1&np=1&fid=f3&fs=%s&fields=%s",
			c.spotBase, spotPath, page, pageSize, spotFS, spotFields)

		var resp spotResponse
		if err := c.get(ctx, c.spotLimiter, url, &resp); err != nil {
			return nil, fmt.Errorf("eastmoney.FetchQuotes: page %d: %w", page, err)
		}
		if resp.Data == nil || len(resp.Data.Diff) == 0 {
			break
		}

		total = resp.Data.Total
		all = append(all, mapSpotRows(resp.Data.Diff)...)

		slog.Debug("fetched spot page",
			"page", page,
			"count", len(resp.Data.Diff),
			"total", len(all),
			"reported_total", total,
		)
	}

	slog.Info("spot snapshot fetched", "symbols", len(all))
	return all, nil
}
