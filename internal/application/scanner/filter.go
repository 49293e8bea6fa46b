package scanner

import (
	"github.com/alejandrodnm/kscan/internal/domain"
)

// FilterConfig contiene los criterios de selección del universo.
type FilterConfig struct {
	// ExcludeST descarta símbolos ST/*ST y en proceso de deslistado (退).
	ExcludeST bool
	// ExcludeSuspended descarta símbolos sin precio o sin volumen (suspendidos).
	ExcludeSuspended bool
	// MinPrice descarta símbolos con precio por debajo de este valor.
	MinPrice float64
	// MaxSymbols limita el universo a los primeros N símbolos (0 = sin límite).
	// Útil para smoke runs sin recorrer el mercado entero.
	MaxSymbols int
}

// DefaultFilterConfig devuelve una selección de universo conservadora.
func DefaultFilterConfig() FilterConfig {
	return FilterConfig{
		ExcludeST:        true,
		ExcludeSuspended: true,
		MinPrice:         0,
		MaxSymbols:       0,
	}
}

// Filter selecciona qué símbolos del snapshot spot entran al análisis.
type Filter struct {
	cfg FilterConfig
}

// NewFilter crea un Filter con la configuración dada.
func NewFilter(cfg FilterConfig) *Filter {
	return &Filter{cfg: cfg}
}

// Universe devuelve los símbolos que pasan todos los criterios,
// truncado a MaxSymbols si está configurado.
func (f *Filter) Universe(quotes []domain.Quote) []domain.Quote {
	result := make([]domain.Quote, 0, len(quotes))
	for _, q := range quotes {
		if !f.passes(q) {
			continue
		}
		result = append(result, q)
		if f.cfg.MaxSymbols > 0 && len(result) >= f.cfg.MaxSymbols {
			break
		}
	}
	return result
}

// passes devuelve true si el símbolo supera todos los criterios.
func (f *Filter) passes(q domain.Quote) bool {
	if f.cfg.ExcludeST && q.IsST() {
		return false
	}
	if f.cfg.ExcludeSuspended && q.Suspended() {
		return false
	}
	if f.cfg.MinPrice > 0 && q.Price < f.cfg.MinPrice {
		return false
	}
	return true
}
