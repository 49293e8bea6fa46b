package domain

import "time"

// Bar es una vela diaria de una acción A-share, ya ajustada (qfq).
// PctChange viene calculado por la fuente contra el cierre anterior
// (incluyendo ajustes corporativos); el core lo consume tal cual y
// nunca lo recalcula.
type Bar struct {
	Date      time.Time
	Open      float64
	High      float64
	Low       float64
	Close     float64
	Volume    float64 // en lotes (手), como lo entrega la fuente
	Amount    float64 // importe negociado en CNY
	PctChange float64 // variación diaria en %, con signo
}

// EnrichedBar es un Bar más sus indicadores derivados. Los campos
// derivados son función pura del bar actual y de todos los anteriores
// de la serie — nunca de bars futuros.
//
// Convención de warm-up: un puntero nil (o una clave ausente en MA)
// significa "todavía no hay historia suficiente". No es un error;
// los consumidores deben saltarse la evaluación de esos bars.
type EnrichedBar struct {
	Bar

	// MA contiene la media simple de cierre por cada periodo configurado.
	// Clave ausente = warm-up.
	MA map[int]float64

	VolumeMA *float64 // media simple de volumen

	// KDJ
	K *float64
	D *float64
	J *float64

	// MACD
	Diff *float64 // EMA(fast) - EMA(slow)
	DEA  *float64 // EMA(Diff, signal)
	MACD *float64 // 2 × (Diff - DEA), el histograma clásico chino
}

// MAAt devuelve la media móvil del periodo pedido y si está definida.
func (b EnrichedBar) MAAt(period int) (float64, bool) {
	v, ok := b.MA[period]
	return v, ok
}

// VolumeRatio devuelve volumen / media de volumen (量比 aproximado).
// Si la media no está definida o no es positiva devuelve 1 (neutro),
// que nunca califica como contracción de volumen.
func (b EnrichedBar) VolumeRatio() float64 {
	if b.VolumeMA == nil || *b.VolumeMA <= 0 {
		return 1
	}
	return b.Volume / *b.VolumeMA
}

// HasKDJ devuelve true si el oscilador ya salió del warm-up.
func (b EnrichedBar) HasKDJ() bool {
	return b.K != nil && b.D != nil && b.J != nil
}

// HasMACD devuelve true si DIFF y DEA ya están definidos.
func (b EnrichedBar) HasMACD() bool {
	return b.Diff != nil && b.DEA != nil
}

// DateKey devuelve la fecha en formato YYYY-MM-DD, la clave natural
// de un bar diario en storage y reportes.
func (b Bar) DateKey() string {
	return b.Date.Format("2006-01-02")
}
