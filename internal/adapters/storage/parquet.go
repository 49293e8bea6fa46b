package storage

// parquet.go — caché local de velas diarias en ficheros parquet.
//
// Layout: <dir>/daily/<CÓDIGO>/<AÑO>.parquet, una fila por vela.
// Save hace merge por fecha con lo ya escrito (gana la vela entrante),
// de modo que el fetch incremental solo necesita aportar el hueco y
// re-escribe únicamente los años tocados.

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
	"github.com/parquet-go/parquet-go"
)

// barRow es el schema parquet de una vela. La fecha va como timestamp
// en milisegundos UTC (medianoche del día de trading).
type barRow struct {
	Date      int64   `parquet:"date,timestamp(millisecond)"`
	Open      float64 `parquet:"open"`
	High      float64 `parquet:"high"`
	Low       float64 `parquet:"low"`
	Close     float64 `parquet:"close"`
	Volume    float64 `parquet:"volume"`
	Amount    float64 `parquet:"amount"`
	PctChange float64 `parquet:"pct_change"`
}

// ParquetBarCache implementa ports.BarCache sobre un directorio local.
type ParquetBarCache struct {
	dir string
}

// NewParquetBarCache crea la caché bajo el directorio dado. No toca
// el disco hasta el primer Save.
func NewParquetBarCache(dir string) *ParquetBarCache {
	return &ParquetBarCache{dir: dir}
}

// Load lee todas las velas cacheadas de un símbolo, en orden
// cronológico. Un símbolo sin caché devuelve lista vacía, no error.
func (c *ParquetBarCache) Load(ctx context.Context, code string) ([]domain.Bar, error) {
	dir := c.symbolDir(code)
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("storage.Load: read dir %q: %w", dir, err)
	}

	var bars []domain.Bar
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".parquet") {
			continue
		}
		rows, err := parquet.ReadFile[barRow](filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, fmt.Errorf("storage.Load: read %s/%s: %w", code, entry.Name(), err)
		}
		for _, row := range rows {
			bars = append(bars, row.bar())
		}
	}

	sort.Slice(bars, func(i, j int) bool { return bars[i].Date.Before(bars[j].Date) })
	return bars, nil
}

// Save mergea las velas dadas con las ya cacheadas, por año. Velas
// con la misma fecha se sobreescriben con la versión entrante.
func (c *ParquetBarCache) Save(ctx context.Context, code string, bars []domain.Bar) error {
	if len(bars) == 0 {
		return nil
	}

	byYear := make(map[int][]barRow)
	for _, b := range bars {
		year := b.Date.UTC().Year()
		byYear[year] = append(byYear[year], rowFrom(b))
	}

	for year, incoming := range byYear {
		path := c.yearPath(code, year)

		var existing []barRow
		if _, err := os.Stat(path); err == nil {
			existing, err = parquet.ReadFile[barRow](path)
			if err != nil {
				return fmt.Errorf("storage.Save: read %s/%d: %w", code, year, err)
			}
		}

		merged := mergeBarRows(existing, incoming)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("storage.Save: mkdir for %s: %w", code, err)
		}
		if err := parquet.WriteFile(path, merged); err != nil {
			return fmt.Errorf("storage.Save: write %s/%d: %w", code, year, err)
		}
	}
	return nil
}

func (c *ParquetBarCache) symbolDir(code string) string {
	return filepath.Join(c.dir, "daily", code)
}

func (c *ParquetBarCache) yearPath(code string, year int) string {
	return filepath.Join(c.symbolDir(code), fmt.Sprintf("%d.parquet", year))
}

// mergeBarRows combina dos listas de filas dedupe-ando por fecha;
// a igual fecha gana la fila entrante. Devuelve orden cronológico.
func mergeBarRows(existing, incoming []barRow) []barRow {
	byDate := make(map[int64]barRow, len(existing)+len(incoming))
	for _, row := range existing {
		byDate[row.Date] = row
	}
	for _, row := range incoming {
		byDate[row.Date] = row
	}

	merged := make([]barRow, 0, len(byDate))
	for _, row := range byDate {
		merged = append(merged, row)
	}
	sort.Slice(merged, func(i, j int) bool { return merged[i].Date < merged[j].Date })
	return merged
}

func rowFrom(b domain.Bar) barRow {
	return barRow{
		Date:      b.Date.UTC().UnixMilli(),
		Open:      b.Open,
		High:      b.High,
		Low:       b.Low,
		Close:     b.Close,
		Volume:    b.Volume,
		Amount:    b.Amount,
		PctChange: b.PctChange,
	}
}

func (r barRow) bar() domain.Bar {
	return domain.Bar{
		Date:      time.UnixMilli(r.Date).UTC(),
		Open:      r.Open,
		High:      r.High,
		Low:       r.Low,
		Close:     r.Close,
		Volume:    r.Volume,
		Amount:    r.Amount,
		PctChange: r.PctChange,
	}
}
