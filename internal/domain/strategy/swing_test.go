package strategy

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/kscan/internal/domain"
)

func TestDetectSwings_SingleHigh(t *testing.T) {
	// Tienda de campaña: máximo estricto en i=3, lows también en pico
	// (el mínimo queda en los bordes, que no son candidatos).
	highs := []float64{10, 11, 12, 13, 12, 11, 10}
	bars := barsFromHighs(highs, -1)

	points := DetectSwings(bars, 3)
	require.Len(t, points, 1)
	assert.Equal(t, 3, points[0].Index)
	assert.Equal(t, 13.0, points[0].Price)
	assert.Equal(t, domain.SwingHigh, points[0].Kind)
}

func TestDetectSwings_TieResolvesToEarliestIndex(t *testing.T) {
	// Dos bars con high 12: solo el primero (i=2) puede ser swing high.
	highs := []float64{10, 11, 12, 12, 11, 10, 9}
	bars := barsFromHighs(highs, -1)

	points := DetectSwings(bars, 2)
	var swingHighs []domain.SwingPoint
	for _, p := range points {
		if p.Kind == domain.SwingHigh {
			swingHighs = append(swingHighs, p)
		}
	}
	require.Len(t, swingHighs, 1)
	assert.Equal(t, 2, swingHighs[0].Index)
}

func TestDetectSwings_BoundariesExcluded(t *testing.T) {
	// Serie creciente: el máximo vive en el borde derecho → sin candidatos.
	highs := []float64{1, 2, 3, 4, 5, 6, 7}
	points := DetectSwings(barsFromHighs(highs, -1), 2)
	assert.Empty(t, points)
}

func TestDetectSwings_FlatSeries_NoPoints(t *testing.T) {
	highs := []float64{10, 10, 10, 10, 10, 10, 10}
	points := DetectSwings(barsFromHighs(highs, -1), 2)
	assert.Empty(t, points)
}

func TestDetectSwings_WindowLargerThanSeries(t *testing.T) {
	highs := []float64{1, 2, 3}
	assert.Nil(t, DetectSwings(barsFromHighs(highs, -1), 3))
}

func TestDetectSwings_EnlargingLookbackKeepsPoints(t *testing.T) {
	// Pico de highs en i=10 y valle de lows en i=20. Ampliar la ventana
	// de bars nunca elimina un swing que siga cumpliendo la condición
	// local (su vecindario ±window no cambia).
	bars := make([]domain.EnrichedBar, 30)
	for i := range bars {
		high := 20 - absf(float64(i-10))
		low := 5 + 0.5*absf(float64(i-20))
		bars[i] = mkSwingBar(i, high, low, (high+low)/2)
	}

	sub := DetectSwings(bars[7:24], 3)
	full := DetectSwings(bars, 3)

	require.Len(t, sub, 2)
	require.Len(t, full, 2)
	// Mismos puntos: offset 7 entre índices relativos y absolutos.
	assert.Equal(t, sub[0].Index+7, full[0].Index)
	assert.Equal(t, sub[0].Price, full[0].Price)
	assert.Equal(t, sub[1].Index+7, full[1].Index)
	assert.Equal(t, sub[1].Price, full[1].Price)
	assert.Equal(t, domain.SwingHigh, full[0].Kind)
	assert.Equal(t, domain.SwingLow, full[1].Kind)
}

// --- CheckPullback ---

func TestCheckPullback_ShallowRetracementPasses(t *testing.T) {
	points := []domain.SwingPoint{
		{Index: 3, Price: 10.0, Kind: domain.SwingHigh},
		{Index: 8, Price: 9.5, Kind: domain.SwingLow},
	}
	depth, ok := CheckPullback(points, 0.90)
	assert.True(t, ok)
	assert.InDelta(t, 0.05, depth, 1e-9)
}

func TestCheckPullback_DeepRetracementFails(t *testing.T) {
	points := []domain.SwingPoint{
		{Index: 3, Price: 10.0, Kind: domain.SwingHigh},
		{Index: 8, Price: 8.9, Kind: domain.SwingLow}, // 0.89 < 0.90
	}
	depth, ok := CheckPullback(points, 0.90)
	assert.False(t, ok)
	assert.InDelta(t, 0.11, depth, 1e-9)
}

func TestCheckPullback_SecondPairFails(t *testing.T) {
	// Primer par aguanta (0.95), el segundo rompe (9.5/11 ≈ 0.864).
	points := []domain.SwingPoint{
		{Index: 2, Price: 10.0, Kind: domain.SwingHigh},
		{Index: 5, Price: 9.5, Kind: domain.SwingLow},
		{Index: 9, Price: 11.0, Kind: domain.SwingHigh},
		{Index: 12, Price: 9.5, Kind: domain.SwingLow},
	}
	depth, ok := CheckPullback(points, 0.90)
	assert.False(t, ok)
	assert.InDelta(t, 1-9.5/11.0, depth, 1e-9)
}

func TestCheckPullback_ViolationInvalidatesDespiteRecovery(t *testing.T) {
	// La recuperación posterior no rehabilita el patrón.
	points := []domain.SwingPoint{
		{Index: 2, Price: 10.0, Kind: domain.SwingHigh},
		{Index: 5, Price: 8.5, Kind: domain.SwingLow},
		{Index: 9, Price: 12.0, Kind: domain.SwingHigh},
		{Index: 12, Price: 11.9, Kind: domain.SwingLow},
	}
	_, ok := CheckPullback(points, 0.90)
	assert.False(t, ok)
}

func TestCheckPullback_LowWithoutPriorHighIgnored(t *testing.T) {
	points := []domain.SwingPoint{
		{Index: 1, Price: 5.0, Kind: domain.SwingLow},
		{Index: 4, Price: 10.0, Kind: domain.SwingHigh},
		{Index: 7, Price: 9.6, Kind: domain.SwingLow},
	}
	depth, ok := CheckPullback(points, 0.90)
	assert.True(t, ok)
	assert.InDelta(t, 0.04, depth, 1e-9)
}

func TestCheckPullback_NoPairs_VacuousPass(t *testing.T) {
	depth, ok := CheckPullback(nil, 0.90)
	assert.True(t, ok)
	assert.Equal(t, 0.0, depth)
}

// --- TrendIntact ---

func TestTrendIntact(t *testing.T) {
	b := domain.EnrichedBar{
		Bar: domain.Bar{Close: 11.5},
		MA:  map[int]float64{5: 11.0, 20: 10.0},
	}
	assert.True(t, TrendIntact(b, 5, 20))

	// cierre por debajo de la media corta
	b.Close = 10.9
	assert.False(t, TrendIntact(b, 5, 20))

	// media corta por debajo de la larga
	b.Close = 11.5
	b.MA = map[int]float64{5: 9.0, 20: 10.0}
	assert.False(t, TrendIntact(b, 5, 20))

	// media en warm-up
	b.MA = map[int]float64{5: 11.0}
	assert.False(t, TrendIntact(b, 5, 20))
}

// --- helpers ---

func mkSwingBar(i int, high, low, close float64) domain.EnrichedBar {
	return domain.EnrichedBar{Bar: domain.Bar{
		Date:  time.Date(2025, 3, 3, 0, 0, 0, 0, time.UTC).AddDate(0, 0, i),
		High:  high,
		Low:   low,
		Close: close,
	}}
}

// barsFromHighs construye bars con los highs dados; lowOffset desplaza
// el low respecto al high (−1 ⇒ low = high − 1).
func barsFromHighs(highs []float64, lowOffset float64) []domain.EnrichedBar {
	bars := make([]domain.EnrichedBar, len(highs))
	for i, h := range highs {
		bars[i] = mkSwingBar(i, h, h+lowOffset, h+lowOffset/2)
	}
	return bars
}

func absf(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
