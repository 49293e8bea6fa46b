package storage

// sqlite.go — persistencia de señales, operaciones simuladas y runs.
//
// Estrategia:
//   - `signals`: una fila por (fecha, código) con UPSERT — relanzar el scan
//     del día reescribe la señal sin duplicarla.
//   - `trades`: una fila por (código, fecha de compra) del último backtest.
//   - `runs`: resumen ligero por ejecución (scan o backtest). Siempre 1 fila.
//   - Prune automático al arrancar: todo lo anterior a la retención.

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/alejandrodnm/kscan/internal/domain"
	_ "modernc.org/sqlite"
)

const schema = `
-- Señales diarias del scanner
CREATE TABLE IF NOT EXISTS signals (
    date         TEXT NOT NULL,             -- YYYY-MM-DD de la vela evaluada
    code         TEXT NOT NULL,
    name         TEXT NOT NULL,
    close        REAL NOT NULL DEFAULT 0,
    volume_ratio REAL NOT NULL DEFAULT 0,
    pct_change   REAL NOT NULL DEFAULT 0,
    j            REAL NOT NULL DEFAULT 0,
    diff         REAL NOT NULL DEFAULT 0,
    pullback     REAL NOT NULL DEFAULT 0,
    reason       TEXT NOT NULL DEFAULT '',
    run_id       TEXT NOT NULL,
    created_at   DATETIME NOT NULL,
    PRIMARY KEY (date, code)
);

-- Operaciones simuladas del último backtest por símbolo
CREATE TABLE IF NOT EXISTS trades (
    code         TEXT    NOT NULL,
    name         TEXT    NOT NULL,
    buy_date     TEXT    NOT NULL,          -- YYYY-MM-DD
    buy_price    REAL    NOT NULL,
    sell_date    TEXT    NOT NULL,
    sell_price   REAL    NOT NULL,
    sell_reason  TEXT    NOT NULL,          -- take_profit | stop_loss | timeout
    return_pct   REAL    NOT NULL,
    holding_days INTEGER NOT NULL,
    run_id       TEXT    NOT NULL,
    created_at   DATETIME NOT NULL,
    PRIMARY KEY (code, buy_date)
);

-- Resumen por ejecución
CREATE TABLE IF NOT EXISTS runs (
    id      TEXT PRIMARY KEY,
    kind    TEXT NOT NULL,                  -- scan | backtest
    run_at  DATETIME NOT NULL,
    signals INTEGER NOT NULL DEFAULT 0,
    trades  INTEGER NOT NULL DEFAULT 0
);

CREATE INDEX IF NOT EXISTS idx_signals_date ON signals(date DESC);
CREATE INDEX IF NOT EXISTS idx_trades_buy   ON trades(buy_date DESC);
CREATE INDEX IF NOT EXISTS idx_runs_at      ON runs(run_at DESC);
`

const (
	dateLayout       = "2006-01-02"
	defaultRetention = 180 // días
)

// SQLiteStorage implementa ports.Storage usando SQLite (pure Go, sin CGo).
type SQLiteStorage struct {
	db *sql.DB
}

// NewSQLiteStorage abre (o crea) la base de datos en la ruta dada.
// Aplica el schema y limpia filas más antiguas que retentionDays
// (0 = default de 180 días).
func NewSQLiteStorage(path string, retentionDays int) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("storage.NewSQLiteStorage: open %q: %w", path, err)
	}
	db.SetMaxOpenConns(1) // SQLite es single-writer
	db.SetMaxIdleConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("storage.NewSQLiteStorage: apply schema: %w", err)
	}

	if retentionDays <= 0 {
		retentionDays = defaultRetention
	}
	s := &SQLiteStorage{db: db}
	s.pruneOld(context.Background(), retentionDays)
	return s, nil
}

// SaveSignals persiste las señales de un ciclo más su fila de resumen.
func (s *SQLiteStorage) SaveSignals(ctx context.Context, signals []domain.Signal) error {
	if len(signals) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveSignals: begin tx: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, kind, run_at, signals, trades) VALUES (?, 'scan', ?, ?, 0)`,
		signals[0].RunID, time.Now().UTC(), len(signals),
	); err != nil {
		return fmt.Errorf("storage.SaveSignals: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO signals
			(date, code, name, close, volume_ratio, pct_change, j, diff,
			 pullback, reason, run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(date, code) DO UPDATE SET
			name         = excluded.name,
			close        = excluded.close,
			volume_ratio = excluded.volume_ratio,
			pct_change   = excluded.pct_change,
			j            = excluded.j,
			diff         = excluded.diff,
			pullback     = excluded.pullback,
			reason       = excluded.reason,
			run_id       = excluded.run_id,
			created_at   = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveSignals: prepare: %w", err)
	}
	defer stmt.Close()

	for _, sig := range signals {
		if _, err := stmt.ExecContext(ctx,
			sig.Date.Format(dateLayout),
			sig.Code,
			sig.Name,
			sig.Close,
			sig.VolumeRatio,
			sig.PctChange,
			sig.J,
			sig.Diff,
			sig.PullbackDepth,
			sig.Reason,
			sig.RunID,
			sig.CreatedAt.UTC(),
		); err != nil {
			return fmt.Errorf("storage.SaveSignals: upsert %s: %w", sig.Code, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveSignals: commit: %w", err)
	}
	return nil
}

// SaveBacktest persiste la fila de resumen del run y todas sus operaciones.
func (s *SQLiteStorage) SaveBacktest(ctx context.Context, result domain.BacktestResult) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("storage.SaveBacktest: begin tx: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx,
		`INSERT OR REPLACE INTO runs (id, kind, run_at, signals, trades) VALUES (?, 'backtest', ?, 0, ?)`,
		result.RunID, now, result.TotalTrades,
	); err != nil {
		return fmt.Errorf("storage.SaveBacktest: insert run: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO trades
			(code, name, buy_date, buy_price, sell_date, sell_price,
			 sell_reason, return_pct, holding_days, run_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(code, buy_date) DO UPDATE SET
			name         = excluded.name,
			buy_price    = excluded.buy_price,
			sell_date    = excluded.sell_date,
			sell_price   = excluded.sell_price,
			sell_reason  = excluded.sell_reason,
			return_pct   = excluded.return_pct,
			holding_days = excluded.holding_days,
			run_id       = excluded.run_id,
			created_at   = excluded.created_at
	`)
	if err != nil {
		return fmt.Errorf("storage.SaveBacktest: prepare: %w", err)
	}
	defer stmt.Close()

	for _, t := range result.Trades {
		if _, err := stmt.ExecContext(ctx,
			t.Code,
			t.Name,
			t.BuyDate.Format(dateLayout),
			t.BuyPrice,
			t.SellDate.Format(dateLayout),
			t.SellPrice,
			t.SellReason.String(),
			t.ReturnPct,
			t.HoldingDays,
			result.RunID,
			now,
		); err != nil {
			return fmt.Errorf("storage.SaveBacktest: upsert %s/%s: %w",
				t.Code, t.BuyDate.Format(dateLayout), err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("storage.SaveBacktest: commit: %w", err)
	}
	return nil
}

// SignalDates devuelve las últimas fechas con señales, de más reciente
// a más antigua.
func (s *SQLiteStorage) SignalDates(ctx context.Context, limit int) ([]time.Time, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT DISTINCT date FROM signals ORDER BY date DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("storage.SignalDates: query: %w", err)
	}
	defer rows.Close()

	var dates []time.Time
	for rows.Next() {
		var raw string
		if err := rows.Scan(&raw); err != nil {
			return nil, fmt.Errorf("storage.SignalDates: scan row: %w", err)
		}
		d, err := time.ParseInLocation(dateLayout, raw, time.UTC)
		if err != nil {
			return nil, fmt.Errorf("storage.SignalDates: parse date %q: %w", raw, err)
		}
		dates = append(dates, d)
	}
	return dates, rows.Err()
}

// SignalsOn devuelve las señales de una fecha, ordenadas por J ascendente
// (las más sobrevendidas primero, igual que el reporte).
func (s *SQLiteStorage) SignalsOn(ctx context.Context, date time.Time) ([]domain.Signal, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT date, code, name, close, volume_ratio, pct_change, j, diff,
		       pullback, reason, run_id, created_at
		FROM signals
		WHERE date = ?
		ORDER BY j ASC, code ASC
	`, date.Format(dateLayout))
	if err != nil {
		return nil, fmt.Errorf("storage.SignalsOn: query: %w", err)
	}
	defer rows.Close()

	var signals []domain.Signal
	for rows.Next() {
		var sig domain.Signal
		var rawDate string
		var createdAt time.Time

		if err := rows.Scan(
			&rawDate,
			&sig.Code,
			&sig.Name,
			&sig.Close,
			&sig.VolumeRatio,
			&sig.PctChange,
			&sig.J,
			&sig.Diff,
			&sig.PullbackDepth,
			&sig.Reason,
			&sig.RunID,
			&createdAt,
		); err != nil {
			return nil, fmt.Errorf("storage.SignalsOn: scan row: %w", err)
		}

		sig.Date, _ = time.ParseInLocation(dateLayout, rawDate, time.UTC)
		sig.CreatedAt = createdAt
		sig.Passes = true // solo se persisten señales que pasan
		signals = append(signals, sig)
	}
	return signals, rows.Err()
}

// Close cierra la conexión a la base de datos.
func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

// pruneOld elimina filas más antiguas que la retención para mantener
// la DB ligera.
func (s *SQLiteStorage) pruneOld(ctx context.Context, retentionDays int) {
	cutoff := time.Now().UTC().AddDate(0, 0, -retentionDays)
	cutoffDate := cutoff.Format(dateLayout)
	s.db.ExecContext(ctx, `DELETE FROM signals WHERE date < ?`, cutoffDate)
	s.db.ExecContext(ctx, `DELETE FROM trades WHERE buy_date < ?`, cutoffDate)
	s.db.ExecContext(ctx, `DELETE FROM runs WHERE run_at < ?`, cutoff)
}
