package ports

import (
	"context"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// QuoteProvider obtiene el snapshot spot del mercado: el universo de
// símbolos A-share con su último precio, cambio y volumen.
type QuoteProvider interface {
	// FetchQuotes devuelve todos los símbolos de Shanghai y Shenzhen.
	// Pagina automáticamente hasta agotar el listado.
	FetchQuotes(ctx context.Context) ([]domain.Quote, error)
}
