package ports

import (
	"context"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// Notifier presenta los resultados del escaneo al usuario.
type Notifier interface {
	// NotifySignals muestra las señales del día, ordenadas por J ascendente.
	// En la implementación de consola, imprime una tabla formateada.
	NotifySignals(ctx context.Context, date time.Time, signals []domain.Signal) error

	// NotifyBacktest muestra el resumen de un backtest y sus operaciones.
	NotifyBacktest(ctx context.Context, result domain.BacktestResult) error
}
