package indicator

// indicator.go — motor de indicadores: MA, KDJ, MACD y media de volumen.
//
// Todo el paquete es función pura sobre la serie de entrada: misma serie y
// misma config producen siempre la misma salida. Las recursiones (K, D, las
// EMAs) se implementan como un fold con acumulador explícito; los bars de
// entrada nunca se mutan. Un campo en warm-up queda a nil — es un resultado
// parcial definido, no un error, y con series cortas simplemente quedan más
// campos sin definir.

import "github.com/alejandrodnm/kscan/internal/domain"

// Config reúne los periodos de todos los indicadores derivados.
type Config struct {
	MAPeriods      []int // medias simples de cierre (duplicados se ignoran)
	VolumeMAPeriod int   // media simple de volumen

	// KDJ: ventana de RSV y suavizados de K y D.
	KDJN  int
	KDJM1 int
	KDJM2 int

	// MACD: EMAs rápida/lenta sobre cierre y periodo de la señal (DEA).
	MACDFast   int
	MACDSlow   int
	MACDSignal int
}

// Default devuelve la parametrización clásica del mercado chino:
// MA 5/20, VOL_MA5, KDJ 9/3/3, MACD 12/26/9.
func Default() Config {
	return Config{
		MAPeriods:      []int{5, 20},
		VolumeMAPeriod: 5,
		KDJN:           9,
		KDJM1:          3,
		KDJM2:          3,
		MACDFast:       12,
		MACDSlow:       26,
		MACDSignal:     9,
	}
}

// acc es el acumulador del fold: el estado recursivo que cada bar
// hereda del anterior.
type acc struct {
	prevK float64
	prevD float64

	emaFast ema
	emaSlow ema
	dea     ema
}

// Enrich deriva los indicadores configurados sobre una serie diaria ya
// ordenada. La salida tiene la misma longitud y orden que la entrada.
//
// Convenciones de cálculo (fijas, para que los backtests sean
// reproducibles):
//
//	MA(p)        = media simple de los p cierres hasta el bar actual;
//	               indefinida los primeros p−1 bars.
//	RSV          = (C − LLn) / (HHn − LLn) × 100 sobre los n últimos bars;
//	               50 si el rango es cero. Definido desde el bar n−1.
//	K            = (m1−1)/m1 × K₋₁ + 1/m1 × RSV, con K₋₁ = D₋₁ = 50 como
//	               semilla en el primer RSV definido.
//	D            = (m2−1)/m2 × D₋₁ + 1/m2 × K;  J = 3K − 2D.
//	EMA(p)       = α·C + (1−α)·EMA₋₁ con α = 2/(p+1), sembrada con la media
//	               simple de los primeros p valores.
//	DIFF         = EMA(fast) − EMA(slow); definido desde el bar slow−1.
//	DEA          = EMA(DIFF, signal), sembrada igual; desde slow+signal−2.
//	MACD         = 2 × (DIFF − DEA).
func Enrich(bars []domain.Bar, cfg Config) []domain.EnrichedBar {
	out := make([]domain.EnrichedBar, len(bars))
	periods := uniquePeriods(cfg.MAPeriods)

	doKDJ := cfg.KDJN > 0 && cfg.KDJM1 > 0 && cfg.KDJM2 > 0
	doMACD := cfg.MACDFast > 0 && cfg.MACDSlow > 0 && cfg.MACDSignal > 0

	st := acc{
		prevK:   50,
		prevD:   50,
		emaFast: newEMA(cfg.MACDFast),
		emaSlow: newEMA(cfg.MACDSlow),
		dea:     newEMA(cfg.MACDSignal),
	}

	// Sumas rodantes para las medias simples: O(1) por bar y periodo.
	closeSums := make(map[int]float64, len(periods))
	var volSum float64

	for i, b := range bars {
		eb := domain.EnrichedBar{Bar: b, MA: make(map[int]float64, len(periods))}

		// --- medias simples de cierre ---
		for _, p := range periods {
			closeSums[p] += b.Close
			if i >= p {
				closeSums[p] -= bars[i-p].Close
			}
			if i >= p-1 {
				eb.MA[p] = closeSums[p] / float64(p)
			}
		}

		// --- media de volumen ---
		if p := cfg.VolumeMAPeriod; p > 0 {
			volSum += b.Volume
			if i >= p {
				volSum -= bars[i-p].Volume
			}
			if i >= p-1 {
				v := volSum / float64(p)
				eb.VolumeMA = &v
			}
		}

		// --- KDJ ---
		if doKDJ && i >= cfg.KDJN-1 {
			rsv := rsvAt(bars, i, cfg.KDJN)
			k := float64(cfg.KDJM1-1)/float64(cfg.KDJM1)*st.prevK + rsv/float64(cfg.KDJM1)
			d := float64(cfg.KDJM2-1)/float64(cfg.KDJM2)*st.prevD + k/float64(cfg.KDJM2)
			j := 3*k - 2*d
			st.prevK, st.prevD = k, d
			eb.K, eb.D, eb.J = &k, &d, &j
		}

		// --- MACD ---
		if doMACD {
			fast, fastOK := st.emaFast.feed(b.Close)
			slow, slowOK := st.emaSlow.feed(b.Close)
			if fastOK && slowOK {
				diff := fast - slow
				eb.Diff = &diff
				if dea, ok := st.dea.feed(diff); ok {
					hist := 2 * (diff - dea)
					eb.DEA, eb.MACD = &dea, &hist
				}
			}
		}

		out[i] = eb
	}
	return out
}

// --- helpers internos ---

// rsvAt calcula el RSV del bar i sobre la ventana [i−n+1, i].
// Rango cero (HH == LL) devuelve el neutro 50 en vez de dividir por cero.
func rsvAt(bars []domain.Bar, i, n int) float64 {
	hh := bars[i].High
	ll := bars[i].Low
	for j := i - n + 1; j < i; j++ {
		if bars[j].High > hh {
			hh = bars[j].High
		}
		if bars[j].Low < ll {
			ll = bars[j].Low
		}
	}
	if hh == ll {
		return 50
	}
	return (bars[i].Close - ll) / (hh - ll) * 100
}

// uniquePeriods filtra periodos no positivos y duplicados conservando
// el orden. Un duplicado rompería las sumas rodantes compartidas.
func uniquePeriods(ps []int) []int {
	seen := make(map[int]bool, len(ps))
	out := make([]int, 0, len(ps))
	for _, p := range ps {
		if p <= 0 || seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// ema es una media móvil exponencial sembrada con la media simple de
// sus primeros `period` valores, la convención de seeding fijada para
// todo el proyecto.
type ema struct {
	period int
	alpha  float64
	sum    float64 // acumulado de la semilla
	n      int     // valores consumidos durante la semilla
	value  float64
	ready  bool
}

func newEMA(period int) ema {
	return ema{period: period, alpha: 2 / float64(period+1)}
}

// feed consume el siguiente valor y devuelve la EMA y si ya está definida.
func (e *ema) feed(v float64) (float64, bool) {
	if !e.ready {
		e.sum += v
		e.n++
		if e.n < e.period {
			return 0, false
		}
		e.value = e.sum / float64(e.period)
		e.ready = true
		return e.value, true
	}
	e.value = e.alpha*v + (1-e.alpha)*e.value
	return e.value, true
}
