package config

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config es la configuración completa de kscan.
type Config struct {
	Strategy StrategyConfig `yaml:"strategy"`
	Backtest BacktestConfig `yaml:"backtest"`
	Scanner  ScannerConfig  `yaml:"scanner"`
	API      APIConfig      `yaml:"api"`
	Storage  StorageConfig  `yaml:"storage"`
	Report   ReportConfig   `yaml:"report"`
	Log      LogConfig      `yaml:"log"`
}

// StrategyConfig parametriza la señal de compra y sus exclusiones.
// Los umbrales de J y DIFF valen 0 por defecto: 0 es un valor real
// (J < 0 = sobreventa, DIFF > 0 = tendencia viva), no ausencia.
type StrategyConfig struct {
	MAShort      int `yaml:"ma_short"`
	MALong       int `yaml:"ma_long"`
	LookbackDays int `yaml:"lookback_days"`
	SwingWindow  int `yaml:"swing_window"`

	PullbackRatio   float64 `yaml:"pullback_ratio"`
	VolumeRatio     float64 `yaml:"volume_ratio"`
	JThreshold      float64 `yaml:"j_threshold"`
	DiffThreshold   float64 `yaml:"diff_threshold"`
	ChangeThreshold float64 `yaml:"change_threshold"` // en %, comparado con signo (≤)

	KDJN  int `yaml:"kdj_n"`
	KDJM1 int `yaml:"kdj_m1"`
	KDJM2 int `yaml:"kdj_m2"`

	MACDFast   int `yaml:"macd_fast"`
	MACDSlow   int `yaml:"macd_slow"`
	MACDSignal int `yaml:"macd_signal"`

	VolumeMAPeriod int `yaml:"volume_ma_period"`

	MinBars    int     `yaml:"min_bars"`     // histórico mínimo para evaluar
	LimitUpPct float64 `yaml:"limit_up_pct"` // % desde el que se considera limit-up
}

// BacktestConfig controla la simulación de operaciones.
type BacktestConfig struct {
	TakeProfitPct  float64 `yaml:"take_profit_pct"` // 0.10 = +10%
	StopLossPct    float64 `yaml:"stop_loss_pct"`   // 0.05 = −5%
	MaxHoldingDays int     `yaml:"max_holding_days"`
	WindowDays     int     `yaml:"window_days"` // velas de la ventana de backtest
}

// ScannerConfig controla el loop de escaneo y la selección de universo.
type ScannerConfig struct {
	IntervalMinutes int     `yaml:"interval_minutes"`
	Workers         int     `yaml:"workers"`     // 0 = NumCPU × 2
	MaxSymbols      int     `yaml:"max_symbols"` // 0 = mercado entero
	MinPrice        float64 `yaml:"min_price"`
	DataDays        int     `yaml:"data_days"` // días de calendario de histórico por símbolo
	TopN            int     `yaml:"top_n"`     // máximo de señales a reportar
}

// APIConfig contiene los knobs del cliente de EastMoney. Los campos en
// cero toman los defaults del cliente.
type APIConfig struct {
	SpotBase       string  `yaml:"spot_base"`
	KlineBase      string  `yaml:"kline_base"`
	RequestsPerSec float64 `yaml:"requests_per_sec"`
	Burst          int     `yaml:"burst"`
	TimeoutSeconds int     `yaml:"timeout_seconds"`
	MaxRetries     int     `yaml:"max_retries"`
}

// StorageConfig controla dónde se persisten los datos.
type StorageConfig struct {
	DSN           string `yaml:"dsn"`      // ruta al archivo SQLite, o ":memory:"
	DataDir       string `yaml:"data_dir"` // caché parquet de velas diarias
	RetentionDays int    `yaml:"retention_days"`
}

// ReportConfig controla los reportes HTML estáticos.
type ReportConfig struct {
	DocsDir   string `yaml:"docs_dir"` // directorio de salida de las páginas
	SiteTitle string `yaml:"site_title"`
}

// LogConfig controla el formato y nivel de logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug | info | warn | error
	Format string `yaml:"format"` // text | json
}

// Load carga la configuración desde el archivo YAML y el archivo .env si
// existe. Con path vacío arranca de los defaults sin leer disco. Las
// variables de entorno sobreescriben el YAML para las keys que correspondan.
func Load(path string) (*Config, error) {
	// Cargar .env si existe (silencia error si no hay archivo)
	_ = godotenv.Load()

	var cfg Config
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("config.Load: read %q: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("config.Load: parse YAML: %w", err)
		}
	}

	applyEnvOverrides(&cfg)
	setDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return &cfg, nil
}

// ScanInterval devuelve el intervalo de escaneo como time.Duration.
func (c *Config) ScanInterval() time.Duration {
	return time.Duration(c.Scanner.IntervalMinutes) * time.Minute
}

// APITimeout devuelve el timeout HTTP como time.Duration.
func (c *Config) APITimeout() time.Duration {
	return time.Duration(c.API.TimeoutSeconds) * time.Second
}

// applyEnvOverrides sobreescribe valores con variables de entorno si están presentes.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Log.Level = v
	}
	if v := os.Getenv("LOG_FORMAT"); v != "" {
		cfg.Log.Format = v
	}
}

// setDefaults asegura que los valores requeridos tengan valores sensatos.
func setDefaults(cfg *Config) {
	if cfg.Strategy.MAShort <= 0 {
		cfg.Strategy.MAShort = 5
	}
	if cfg.Strategy.MALong <= 0 {
		cfg.Strategy.MALong = 20
	}
	if cfg.Strategy.LookbackDays <= 0 {
		cfg.Strategy.LookbackDays = 60
	}
	if cfg.Strategy.SwingWindow <= 0 {
		cfg.Strategy.SwingWindow = 3
	}
	if cfg.Strategy.PullbackRatio <= 0 {
		cfg.Strategy.PullbackRatio = 0.90
	}
	if cfg.Strategy.VolumeRatio <= 0 {
		cfg.Strategy.VolumeRatio = 0.70
	}
	if cfg.Strategy.ChangeThreshold == 0 {
		cfg.Strategy.ChangeThreshold = 1
	}
	if cfg.Strategy.KDJN <= 0 {
		cfg.Strategy.KDJN = 9
	}
	if cfg.Strategy.KDJM1 <= 0 {
		cfg.Strategy.KDJM1 = 3
	}
	if cfg.Strategy.KDJM2 <= 0 {
		cfg.Strategy.KDJM2 = 3
	}
	if cfg.Strategy.MACDFast <= 0 {
		cfg.Strategy.MACDFast = 12
	}
	if cfg.Strategy.MACDSlow <= 0 {
		cfg.Strategy.MACDSlow = 26
	}
	if cfg.Strategy.MACDSignal <= 0 {
		cfg.Strategy.MACDSignal = 9
	}
	if cfg.Strategy.VolumeMAPeriod <= 0 {
		cfg.Strategy.VolumeMAPeriod = 5
	}
	if cfg.Strategy.MinBars <= 0 {
		cfg.Strategy.MinBars = 30
	}
	if cfg.Strategy.LimitUpPct <= 0 {
		cfg.Strategy.LimitUpPct = 9.5
	}

	if cfg.Backtest.TakeProfitPct <= 0 {
		cfg.Backtest.TakeProfitPct = 0.10
	}
	if cfg.Backtest.StopLossPct <= 0 {
		cfg.Backtest.StopLossPct = 0.05
	}
	if cfg.Backtest.MaxHoldingDays <= 0 {
		cfg.Backtest.MaxHoldingDays = 10
	}
	if cfg.Backtest.WindowDays <= 0 {
		cfg.Backtest.WindowDays = 90
	}

	if cfg.Scanner.IntervalMinutes <= 0 {
		cfg.Scanner.IntervalMinutes = 360 // el mercado solo cambia una vez al día
	}
	if cfg.Scanner.DataDays <= 0 {
		cfg.Scanner.DataDays = 120
	}
	if cfg.Scanner.TopN <= 0 {
		cfg.Scanner.TopN = 30
	}

	if cfg.Storage.DSN == "" {
		cfg.Storage.DSN = "kscan.db"
	}
	if cfg.Storage.DataDir == "" {
		cfg.Storage.DataDir = "data"
	}
	if cfg.Storage.RetentionDays <= 0 {
		cfg.Storage.RetentionDays = 180
	}

	if cfg.Report.DocsDir == "" {
		cfg.Report.DocsDir = "docs"
	}
	if cfg.Report.SiteTitle == "" {
		cfg.Report.SiteTitle = "kscan"
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "text"
	}
}

// Validate comprueba las relaciones que setDefaults no puede arreglar.
func (c *Config) Validate() error {
	if c.Strategy.MAShort >= c.Strategy.MALong {
		return fmt.Errorf("strategy: ma_short (%d) debe ser menor que ma_long (%d)",
			c.Strategy.MAShort, c.Strategy.MALong)
	}
	if c.Strategy.MACDFast >= c.Strategy.MACDSlow {
		return fmt.Errorf("strategy: macd_fast (%d) debe ser menor que macd_slow (%d)",
			c.Strategy.MACDFast, c.Strategy.MACDSlow)
	}
	if c.Strategy.PullbackRatio > 1 {
		return fmt.Errorf("strategy: pullback_ratio (%.2f) debe estar en (0, 1]", c.Strategy.PullbackRatio)
	}
	if c.Backtest.StopLossPct >= 1 {
		return fmt.Errorf("backtest: stop_loss_pct (%.2f) debe ser menor que 1", c.Backtest.StopLossPct)
	}
	if c.Strategy.LookbackDays > c.Scanner.DataDays {
		return fmt.Errorf("strategy: lookback_days (%d) no cabe en scanner.data_days (%d)",
			c.Strategy.LookbackDays, c.Scanner.DataDays)
	}
	return nil
}
