package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// Storage persiste señales diarias y resultados de backtest.
type Storage interface {
	// SaveSignals persiste las señales encontradas en un ciclo de escaneo.
	SaveSignals(ctx context.Context, signals []domain.Signal) error

	// SaveBacktest persiste el resumen y las operaciones de un backtest.
	SaveBacktest(ctx context.Context, result domain.BacktestResult) error

	// SignalDates devuelve las últimas fechas con señales guardadas,
	// de más reciente a más antigua, hasta `limit` fechas.
	SignalDates(ctx context.Context, limit int) ([]time.Time, error)

	// SignalsOn devuelve las señales guardadas en la fecha dada.
	SignalsOn(ctx context.Context, date time.Time) ([]domain.Signal, error)

	// Close cierra la conexión a la base de datos limpiamente.
	Close() error
}
