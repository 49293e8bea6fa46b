package domain

import "fmt"

// ValidateSeries comprueba el contrato de entrada del core: fechas
// estrictamente crecientes, sin duplicados. Una serie desordenada es
// un error del caller; el core no ordena ni deduplica por su cuenta.
func ValidateSeries(bars []Bar) error {
	for i := 1; i < len(bars); i++ {
		if !bars[i].Date.After(bars[i-1].Date) {
			return fmt.Errorf("domain.ValidateSeries: bar %d (%s) no es posterior a bar %d (%s)",
				i, bars[i].DateKey(), i-1, bars[i-1].DateKey())
		}
	}
	return nil
}
