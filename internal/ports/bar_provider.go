package ports

import (
	"context"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// BarProvider obtiene velas diarias (OHLCV ajustado qfq) de un símbolo.
type BarProvider interface {
	// FetchDaily devuelve hasta días `days` de velas diarias del símbolo,
	// ordenadas de más antigua a más reciente.
	FetchDaily(ctx context.Context, code string, days int) ([]domain.Bar, error)
}
