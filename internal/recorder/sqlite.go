package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists observations to a SQLite database.
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

	// WAL mode so external readers don't block the tracker's writes.
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
		`CREATE TABLE IF NOT EXISTS price_ticks (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			currency    TEXT NOT NULL,
			price       REAL,
			observed_at TEXT,
			fetch_error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_ticks_ts ON price_ticks(timestamp)`,

		`CREATE TABLE IF NOT EXISTS history_refreshes (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			currency    TEXT NOT NULL,
			points      INTEGER,
			oldest_date TEXT,
			newest_date TEXT,
			fetch_error TEXT
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_ts ON history_refreshes(timestamp)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordTick(tick *PriceTick) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO price_ticks
		(timestamp, currency, price, observed_at, fetch_error)
		VALUES (?,?,?,?,?)`,
		time.Now().Unix(), tick.Currency, tick.Price, tick.ObservedAt, tick.FetchError,
	)
	return err
}

func (r *SQLiteRecorder) RecordHistoryRefresh(evt *HistoryRefresh) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO history_refreshes
		(timestamp, currency, points, oldest_date, newest_date, fetch_error)
		VALUES (?,?,?,?,?,?)`,
		time.Now().Unix(), evt.Currency, evt.Points, evt.OldestDate, evt.NewestDate, evt.FetchError,
	)
	return err
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
