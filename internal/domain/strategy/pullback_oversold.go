package strategy

// pullback_oversold.go — estrategia "缩量超卖": tendencia alcista con
// retroceso suave que hace un día de pausa sobrevendido.
//
// Condiciones del día (todas a la vez):
//   - contracción de volumen: volumen < VOL_MA5 × volume_ratio
//   - día sin fuerza: variación diaria con signo ≤ change_threshold
//   - sobreventa del oscilador: J < j_threshold
//   - tendencia de medio plazo viva: DIFF > diff_threshold
//
// Más la precondición estructural sobre la ventana de lookback: media
// corta > media larga, cierre > media corta, y ningún swing low rompió
// el swing high previo × pullback_ratio.

import (
	"fmt"

	"github.com/alejandrodnm/kscan/internal/domain"
)

// Config parametriza la estrategia. Los ceros estructurales (periodos,
// ratios) se rellenan en New; los umbrales 0 de J y DIFF son valores
// reales, no ausencia.
type Config struct {
	MAShort      int
	MALong       int
	LookbackDays int
	SwingWindow  int

	PullbackRatio   float64
	VolumeRatio     float64
	JThreshold      float64
	DiffThreshold   float64
	ChangeThreshold float64 // en %, comparado con signo (≤)
}

// PullbackOversold implementa Strategy con las reglas de arriba.
type PullbackOversold struct {
	cfg Config
}

// New crea la estrategia rellenando los defaults estructurales.
func New(cfg Config) *PullbackOversold {
	if cfg.MAShort <= 0 {
		cfg.MAShort = 5
	}
	if cfg.MALong <= 0 {
		cfg.MALong = 20
	}
	if cfg.LookbackDays <= 0 {
		cfg.LookbackDays = 60
	}
	if cfg.SwingWindow <= 0 {
		cfg.SwingWindow = 3
	}
	if cfg.PullbackRatio <= 0 {
		cfg.PullbackRatio = 0.90
	}
	if cfg.VolumeRatio <= 0 {
		cfg.VolumeRatio = 0.70
	}
	return &PullbackOversold{cfg: cfg}
}

func (s *PullbackOversold) Name() string { return "pullback_oversold" }

// Evaluate decide la señal para bars[idx] usando solo ese bar y los
// anteriores. Indicadores todavía en warm-up → Passes=false sin más.
func (s *PullbackOversold) Evaluate(code, name string, bars []domain.EnrichedBar, idx int) domain.Signal {
	b := bars[idx]
	sig := domain.Signal{
		Date:      b.Date,
		Code:      code,
		Name:      name,
		Close:     b.Close,
		PctChange: b.PctChange,
	}

	// Historia insuficiente: exclusión definida, nunca error.
	if b.VolumeMA == nil || b.J == nil || b.Diff == nil {
		return sig
	}

	sig.VolumeRatio = b.VolumeRatio()
	sig.J = *b.J
	sig.Diff = *b.Diff

	volumeOK := sig.VolumeRatio < s.cfg.VolumeRatio
	changeOK := b.PctChange <= s.cfg.ChangeThreshold
	kdjOK := sig.J < s.cfg.JThreshold
	macdOK := sig.Diff > s.cfg.DiffThreshold

	// Precondición estructural sobre la ventana de lookback.
	start := idx - s.cfg.LookbackDays + 1
	if start < 0 {
		start = 0
	}
	window := bars[start : idx+1]
	trendOK := TrendIntact(b, s.cfg.MAShort, s.cfg.MALong)
	depth, pullbackOK := CheckPullback(DetectSwings(window, s.cfg.SwingWindow), s.cfg.PullbackRatio)
	sig.PullbackDepth = depth

	sig.Passes = volumeOK && changeOK && kdjOK && macdOK && trendOK && pullbackOK
	if sig.Passes {
		sig.Reason = reason(sig)
	}
	return sig
}

// reason produce la justificación que ve el operador, con el valor de
// cada condición para que la señal se explique sola.
func reason(sig domain.Signal) string {
	return fmt.Sprintf(
		"缩量（量比%.2f）涨跌%.1f%%，J值%.1f进入超卖区，DIFF %.2f保持多头，回撤%.1f%%未破前高，符合买点信号。",
		sig.VolumeRatio, sig.PctChange, sig.J, sig.Diff, sig.PullbackDepth*100,
	)
}
