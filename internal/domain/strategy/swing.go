package strategy

// swing.go — detección de swing points y validación del retroceso acotado.
//
// Un swing high es un bar cuyo High es el máximo entre los `window` bars
// anteriores y posteriores; los swing lows son simétricos sobre Low. Los
// bordes de la ventana no pueden ser candidatos (no tienen vecindario
// completo) y los empates se resuelven al índice más temprano: un extremo
// repetido más tarde no cuenta como nuevo swing.

import "github.com/alejandrodnm/kscan/internal/domain"

// DetectSwings extrae los extremos locales de la ventana en orden
// cronológico. Con menos de 2×window+1 bars no hay candidatos posibles.
func DetectSwings(bars []domain.EnrichedBar, window int) []domain.SwingPoint {
	if window <= 0 || len(bars) < 2*window+1 {
		return nil
	}
	var points []domain.SwingPoint
	for i := window; i < len(bars)-window; i++ {
		if isSwingHigh(bars, i, window) {
			points = append(points, domain.SwingPoint{Index: i, Price: bars[i].High, Kind: domain.SwingHigh})
		}
		if isSwingLow(bars, i, window) {
			points = append(points, domain.SwingPoint{Index: i, Price: bars[i].Low, Kind: domain.SwingLow})
		}
	}
	return points
}

// CheckPullback recorre los swing points en orden y comprueba que cada
// swing low aguante por encima de su swing high inmediatamente anterior
// × ratio. Un solo retroceso que rompa el límite invalida el patrón
// entero, recupere o no después.
//
// Devuelve la profundidad máxima observada (0.06 = 6% bajo el high
// previo) y el veredicto. Ventanas sin pares high→low pasan de forma
// vacía con profundidad 0.
func CheckPullback(points []domain.SwingPoint, ratio float64) (float64, bool) {
	var lastHigh, depth float64
	for _, p := range points {
		switch p.Kind {
		case domain.SwingHigh:
			lastHigh = p.Price
		case domain.SwingLow:
			if lastHigh <= 0 {
				continue
			}
			r := p.Price / lastHigh
			if d := 1 - r; d > depth {
				depth = d
			}
			if r < ratio {
				return depth, false
			}
		}
	}
	return depth, true
}

// TrendIntact es la precondición de tendencia: media corta por encima de
// la larga y cierre por encima de la corta. Medias en warm-up fallan la
// precondición.
func TrendIntact(b domain.EnrichedBar, maShort, maLong int) bool {
	s, ok := b.MAAt(maShort)
	if !ok {
		return false
	}
	l, ok := b.MAAt(maLong)
	if !ok {
		return false
	}
	return s > l && b.Close > s
}

// --- helpers internos ---

func isSwingHigh(bars []domain.EnrichedBar, i, w int) bool {
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		if bars[j].High > bars[i].High {
			return false
		}
		// empate: gana el índice más temprano
		if j < i && bars[j].High == bars[i].High {
			return false
		}
	}
	return true
}

func isSwingLow(bars []domain.EnrichedBar, i, w int) bool {
	for j := i - w; j <= i+w; j++ {
		if j == i {
			continue
		}
		if bars[j].Low < bars[i].Low {
			return false
		}
		if j < i && bars[j].Low == bars[i].Low {
			return false
		}
	}
	return true
}
