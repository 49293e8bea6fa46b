package ports

import (
	"context"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// BarCache persiste velas diarias por símbolo para evitar descargas
// repetidas. La implementación garantiza orden cronológico y fechas únicas.
type BarCache interface {
	// Load devuelve las velas cacheadas del símbolo, vacío si no hay nada.
	Load(ctx context.Context, code string) ([]domain.Bar, error)

	// Save fusiona las velas con las ya cacheadas y reescribe el cache.
	Save(ctx context.Context, code string, bars []domain.Bar) error
}
