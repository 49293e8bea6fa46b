package domain

import "time"

// Signal es el veredicto de la estrategia para un (stock, fecha).
// Lleva un snapshot de los valores que lo justifican para que el
// reporte sea auto-explicativo sin re-derivar indicadores.
type Signal struct {
	Date time.Time
	Code string
	Name string

	Passes bool
	Reason string // justificación legible, en el idioma del operador

	// --- snapshot de condiciones ---
	Close         float64
	VolumeRatio   float64 // volumen / VOL_MA
	PctChange     float64
	J             float64
	Diff          float64
	PullbackDepth float64 // retroceso máximo bajo el swing high previo (0.06 = 6%)

	// --- trazabilidad ---
	RunID     string // uuid del ciclo de scan que lo emitió
	CreatedAt time.Time
}

// SwingKind distingue los dos tipos de extremo local.
type SwingKind int

const (
	SwingHigh SwingKind = iota
	SwingLow
)

func (k SwingKind) String() string {
	if k == SwingHigh {
		return "high"
	}
	return "low"
}

// SwingPoint es un extremo local de la serie: un máximo sobre High o
// un mínimo sobre Low. Se recalcula por ventana de análisis y no se
// persiste separado de la serie que lo produjo.
type SwingPoint struct {
	Index int // índice dentro de la ventana analizada
	Price float64
	Kind  SwingKind
}
