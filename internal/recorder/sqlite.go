package recorder

import (
	"database/sql"
	"fmt"
	"log"
	"sync"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteRecorder persists acquisition and prediction history to SQLite.
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

	// WAL mode so ad-hoc analysis reads don't block the bot's writes.
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
		`CREATE TABLE IF NOT EXISTS acquisitions (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			lottery_id  TEXT NOT NULL,
			kind        TEXT NOT NULL,
			source      TEXT,
			provenance  TEXT NOT NULL,
			entry_count INTEGER NOT NULL,
			elapsed_ms  INTEGER
		)`,
		`CREATE INDEX IF NOT EXISTS idx_acq_ts ON acquisitions(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_acq_lottery ON acquisitions(lottery_id)`,

		`CREATE TABLE IF NOT EXISTS prediction_snapshots (
			id          INTEGER PRIMARY KEY AUTOINCREMENT,
			timestamp   INTEGER NOT NULL,
			lottery_id  TEXT NOT NULL,
			rank        INTEGER NOT NULL,
			animal_id   TEXT NOT NULL,
			animal_name TEXT NOT NULL,
			probability REAL NOT NULL,
			confidence  TEXT NOT NULL,
			rationale   TEXT,
			refined     INTEGER NOT NULL,
			history_len INTEGER NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_pred_ts ON prediction_snapshots(timestamp)`,
		`CREATE INDEX IF NOT EXISTS idx_pred_lottery ON prediction_snapshots(lottery_id)`,
	}

	for _, s := range stmts {
		if _, err := r.db.Exec(s); err != nil {
			return fmt.Errorf("exec %q: %w", s[:40], err)
		}
	}
	return nil
}

func (r *SQLiteRecorder) RecordAcquisition(evt *AcquisitionEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, err := r.db.Exec(`INSERT INTO acquisitions
		(timestamp, lottery_id, kind, source, provenance, entry_count, elapsed_ms)
		VALUES (?,?,?,?,?,?,?)`,
		time.Now().Unix(), evt.LotteryID, string(evt.Kind), evt.Source,
		string(evt.Provenance), evt.Entries, evt.ElapsedMs,
	)
	return err
}

func (r *SQLiteRecorder) RecordPrediction(snap *PredictionSnapshot) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	now := time.Now().Unix()
	refined := 0
	if snap.Refined {
		refined = 1
	}
	for rank, p := range snap.Top {
		_, err := r.db.Exec(`INSERT INTO prediction_snapshots
			(timestamp, lottery_id, rank, animal_id, animal_name, probability, confidence, rationale, refined, history_len)
			VALUES (?,?,?,?,?,?,?,?,?,?)`,
			now, snap.LotteryID, rank+1, p.Animal.ID, p.Animal.Name,
			p.Probability, string(p.Confidence), p.Rationale, refined, snap.HistoryLen,
		)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *SQLiteRecorder) Close() error {
	log.Println("[INFO] closing sqlite recorder")
	return r.db.Close()
}
