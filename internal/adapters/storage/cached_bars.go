package storage

// cached_bars.go — decorador de BarProvider con caché local.
//
// Primera pasada de un símbolo: fetch completo y se cachea. Pasadas
// siguientes: solo se pide el hueco desde la última vela cacheada
// (incluida, por si la fuente revisó la vela del día) y se mergea.
// Con ~5000 símbolos por ciclo esto reduce el tráfico contra la API
// a una fracción del fetch completo.

import (
	"context"
	"log/slog"
	"sort"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/alejandrodnm/kscan/internal/ports"
)

// barFetcher es lo que el decorador necesita de la fuente remota:
// el fetch por ventana del port más el fetch incremental por fecha.
type barFetcher interface {
	FetchDaily(ctx context.Context, code string, days int) ([]domain.Bar, error)
	FetchDailySince(ctx context.Context, code string, since time.Time) ([]domain.Bar, error)
}

// CachedBars implementa ports.BarProvider delegando en un fetcher
// remoto y una caché local de velas.
type CachedBars struct {
	fetch barFetcher
	cache ports.BarCache
}

// NewCachedBars construye el decorador.
func NewCachedBars(fetch barFetcher, cache ports.BarCache) *CachedBars {
	return &CachedBars{fetch: fetch, cache: cache}
}

// FetchDaily devuelve las velas de los últimos `days` días del símbolo,
// sirviendo de caché todo lo posible.
func (c *CachedBars) FetchDaily(ctx context.Context, code string, days int) ([]domain.Bar, error) {
	cached, err := c.cache.Load(ctx, code)
	if err != nil {
		slog.Warn("bar cache read failed", "code", code, "error", err)
		cached = nil
	}

	if len(cached) == 0 {
		bars, err := c.fetch.FetchDaily(ctx, code, days)
		if err != nil {
			return nil, err
		}
		if len(bars) > 0 {
			if err := c.cache.Save(ctx, code, bars); err != nil {
				slog.Warn("bar cache write failed", "code", code, "error", err)
			}
		}
		return bars, nil
	}

	last := cached[len(cached)-1].Date
	fresh, err := c.fetch.FetchDailySince(ctx, code, last)
	if err != nil {
		// una caché algo rancia sigue valiendo más que un ciclo perdido
		slog.Warn("incremental fetch failed, serving cached bars",
			"code", code, "since", last.Format("2006-01-02"), "error", err)
		return trimWindow(cached, days), nil
	}

	if len(fresh) > 0 {
		if err := c.cache.Save(ctx, code, fresh); err != nil {
			slog.Warn("bar cache write failed", "code", code, "error", err)
		}
	}
	return trimWindow(mergeBars(cached, fresh), days), nil
}

// mergeBars combina dos series dedupe-ando por fecha; a igual fecha
// gana la vela fresh. Devuelve orden cronológico.
func mergeBars(cached, fresh []domain.Bar) []domain.Bar {
	byDate := make(map[string]domain.Bar, len(cached)+len(fresh))
	for _, b := range cached {
		byDate[b.DateKey()] = b
	}
	for _, b := range fresh {
		byDate[b.DateKey()] = b
	}

	merged := make([]domain.Bar, 0, len(byDate))
	for _, b := range byDate {
		merged = append(merged, b)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date.Before(merged[j].Date) })
	return merged
}

// trimWindow recorta la serie a los últimos `days` días de calendario.
// El corte es relativo a la última vela, no a hoy, para que una serie
// histórica (o un mercado cerrado varios días) no se quede vacía.
func trimWindow(bars []domain.Bar, days int) []domain.Bar {
	if days <= 0 || len(bars) == 0 {
		return bars
	}
	cutoff := bars[len(bars)-1].Date.AddDate(0, 0, -days)
	i := sort.Search(len(bars), func(i int) bool {
		return !bars[i].Date.Before(cutoff)
	})
	return bars[i:]
}
