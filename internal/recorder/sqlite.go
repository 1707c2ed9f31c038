package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"

	"BreadthSentinel/internal/model"
)

// SQLiteRecorder persists run and signal history to a SQLite database.
type SQLiteRecorder struct {
	db *sql.DB
	mu sync.Mutex
}

// NewSQLiteRecorder opens (or creates) the SQLite database and runs migrations.
func NewSQLiteRecorder(dbPath string) (*SQLiteRecorder, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	// WAL so dashboards can read while the sentinel writes.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	r := &SQLiteRecorder{db: db}
	if err := r.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	log.Printf("[INFO] sqlite recorder opened: %s", dbPath)
	return r, nil
}

func (r *SQLiteRecorder) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			run_id         TEXT PRIMARY KEY,
			timestamp      INTEGER NOT NULL,
			mode           TEXT,
			lookback_days  INTEGER,
			status         TEXT,
			reason         TEXT,
			generated_days INTEGER,
			from_date      TEXT,
			to_date        TEXT,
			lit_count      INTEGER,
			trigger_count  INTEGER,
			latest_state   TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_ts ON runs(timestamp)`,

		`CREATE TABLE IF NOT EXISTS signal_days (
			id              INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id          TEXT NOT NULL,
			date            TEXT NOT NULL,
			advances        INTEGER,
			declines        INTEGER,
			net_advances    INTEGER,
			new_highs       INTEGER,
			new_lows        INTEGER,
			threshold_count INTEGER,
			trin            REAL,
			oscillator      REAL,
			trend_up        INTEGER,
			cluster_count   INTEGER,
			base_signal     INTEGER,
			state           TEXT,
			mode            TEXT,
			risk            TEXT,
			triggered       INTEGER,
			lamp_on         INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_days_date ON signal_days(date)`,
		`CREATE INDEX IF NOT EXISTS idx_signal_days_run ON signal_days(run_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordRun(evt *RunEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	ts := evt.StartedAt
	if ts.IsZero() {
		ts = time.Now()
	}
	_, err := r.db.Exec(`INSERT OR REPLACE INTO runs
		(run_id, timestamp, mode, lookback_days, status, reason,
		 generated_days, from_date, to_date, lit_count, trigger_count, latest_state)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?)`,
		evt.RunID, ts.Unix(), evt.Mode, evt.LookbackDays, evt.Status, evt.Reason,
		evt.GeneratedDays, evt.FromDate, evt.ToDate, evt.LitCount, evt.TriggerCount, evt.LatestState,
	)
	return err
}

// RecordSignals writes every classified row of a run in one transaction.
func (r *SQLiteRecorder) RecordSignals(runID string, rows []model.BreadthRow) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	stmt, err := tx.Prepare(`INSERT INTO signal_days
		(run_id, date, advances, declines, net_advances, new_highs, new_lows,
		 threshold_count, trin, oscillator, trend_up, cluster_count,
		 base_signal, state, mode, risk, triggered, lamp_on)
		VALUES (?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?,?)`)
	if err != nil {
		tx.Rollback()
		return fmt.Errorf("prepare: %w", err)
	}
	defer stmt.Close()

	for _, row := range rows {
		_, err := stmt.Exec(
			runID, row.Date,
			nullInt(row.Advances), nullInt(row.Declines), nullInt(row.NetAdvances),
			nullInt(row.NewHighs), nullInt(row.NewLows), nullInt(row.ThresholdCount),
			nullFloat(row.Trin), nullFloat(row.Oscillator), nullBool(row.TrendCondition),
			row.ClusterSignalCount, row.BaseSignal,
			string(row.State), string(row.Mode), string(row.Risk),
			row.Triggered, row.LampOn,
		)
		if err != nil {
			tx.Rollback()
			return fmt.Errorf("insert %s: %w", row.Date, err)
		}
	}
	return tx.Commit()
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}

func nullInt(v *int) sql.NullInt64 {
	if v == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*v), Valid: true}
}

func nullFloat(v *float64) sql.NullFloat64 {
	if v == nil {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: *v, Valid: true}
}

func nullBool(v *bool) sql.NullBool {
	if v == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *v, Valid: true}
}
