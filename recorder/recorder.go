// Package recorder appends guidance events and per-tick telemetry to a
// SQLite file for post-incident review.
package recorder

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

const schema = `
CREATE TABLE IF NOT EXISTS ticks (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TIMESTAMP NOT NULL,
	area INTEGER NOT NULL,
	tvoc_ppb INTEGER NOT NULL,
	eco2_ppm INTEGER NOT NULL,
	concentration_ppm REAL NOT NULL,
	pitch_deg REAL NOT NULL,
	hazard REAL NOT NULL,
	direction TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS events (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	at TIMESTAMP NOT NULL,
	kind TEXT NOT NULL,
	detail TEXT NOT NULL
);
`

// TickRecord is one row of pipeline telemetry.
type TickRecord struct {
	At            time.Time
	Area          int32
	TVOCppb       uint16
	ECO2ppm       uint16
	Concentration float64
	Pitch         float64
	Hazard        float64
	Direction     string
}

type Recorder struct {
	db *sql.DB
}

func Open(path string) (*Recorder, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open event log: %w", err)
	}
	// single writer, WAL keeps readers out of its way
	db.SetMaxOpenConns(1)
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("enable WAL: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create event log schema: %w", err)
	}
	return &Recorder{db: db}, nil
}

func (r *Recorder) Tick(t TickRecord) error {
	_, err := r.db.Exec(
		`INSERT INTO ticks (at, area, tvoc_ppb, eco2_ppm, concentration_ppm, pitch_deg, hazard, direction)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		t.At, t.Area, t.TVOCppb, t.ECO2ppm, t.Concentration, t.Pitch, t.Hazard, t.Direction,
	)
	return err
}

// Event records a discrete occurrence: an alert being raised, a replan, a
// reported no-route condition.
func (r *Recorder) Event(kind, detail string) error {
	_, err := r.db.Exec(
		`INSERT INTO events (at, kind, detail) VALUES (?, ?, ?)`,
		time.Now(), kind, detail,
	)
	return err
}

func (r *Recorder) TickCount() (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM ticks`).Scan(&n)
	return n, err
}

func (r *Recorder) EventCount(kind string) (int, error) {
	var n int
	err := r.db.QueryRow(`SELECT COUNT(*) FROM events WHERE kind = ?`, kind).Scan(&n)
	return n, err
}

func (r *Recorder) Close() error {
	return r.db.Close()
}
