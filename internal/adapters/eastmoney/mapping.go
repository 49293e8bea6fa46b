package eastmoney

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// mapSpotRows convierte los DTOs del listado spot a domain.Quote.
// Los símbolos sin código se descartan.
func mapSpotRows(rows []spotRow) []domain.Quote {
	quotes := make([]domain.Quote, 0, len(rows))
	for _, r := range rows {
		if r.Code == "" {
			continue
		}
		quotes = append(quotes, domain.Quote{
			Code: r.Code,
			Name: r.Name,
			// precio y cambio llegan ×100
			Price:     float64(r.Price) / 100,
			PctChange: float64(r.PctChange) / 100,
			Volume:    float64(r.Volume),
			Amount:    float64(r.Amount),
		})
	}
	return quotes
}

// Campos CSV de una vela en el orden de fields2 (f51..f61).
const (
	klineDate = iota
	klineOpen
	klineClose
	klineHigh
	klineLow
	klineVolume
	klineAmount
	klineAmplitude
	klinePctChange

	klineMinFields = klinePctChange + 1
)

// parseKline convierte una vela CSV del endpoint histórico a domain.Bar.
func parseKline(line string) (domain.Bar, error) {
	fields := strings.Split(line, ",")
	if len(fields) < klineMinFields {
		return domain.Bar{}, fmt.Errorf("eastmoney.parseKline: %d campos, esperaba ≥ %d: %q",
			len(fields), klineMinFields, line)
	}

	date, err := time.ParseInLocation("2006-01-02", fields[klineDate], time.UTC)
	if err != nil {
		return domain.Bar{}, fmt.Errorf("eastmoney.parseKline: fecha %q: %w", fields[klineDate], err)
	}

	nums := make([]float64, klineMinFields)
	for _, i := range []int{klineOpen, klineClose, klineHigh, klineLow, klineVolume, klineAmount, klinePctChange} {
		v, err := strconv.ParseFloat(fields[i], 64)
		if err != nil {
			return domain.Bar{}, fmt.Errorf("eastmoney.parseKline: campo %d %q: %w", i, fields[i], err)
		}
		nums[i] = v
	}

	return domain.Bar{
		Date:      date,
		Open:      nums[klineOpen],
		Close:     nums[klineClose],
		High:      nums[klineHigh],
		Low:       nums[klineLow],
		Volume:    nums[klineVolume],
		Amount:    nums[klineAmount],
		PctChange: nums[klinePctChange],
	}, nil
}

// parseKlines convierte todas las velas, saltando las malformadas.
// Devuelve error solo si ninguna línea parsea.
func parseKlines(lines []string) ([]domain.Bar, error) {
	bars := make([]domain.Bar, 0, len(lines))
	var firstErr error
	for _, line := range lines {
		bar, err := parseKline(line)
		if err != nil {
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		bars = append(bars, bar)
	}
	if len(bars) == 0 && firstErr != nil {
		return nil, firstErr
	}
	return bars, nil
}
