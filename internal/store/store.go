// Package store records per-frame detection reports in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ironsheep/retrotape-tracker/internal/tracker"
)

// Report is one recorded frame.
type Report struct {
	ID        int64     `json:"id"`
	Module    string    `json:"module"`
	Seq       uint64    `json:"seq"`
	Time      time.Time `json:"time"`
	Found     bool      `json:"found"`
	CenterX   int       `json:"center_x"`
	CenterY   int       `json:"center_y"`
	StdX      int       `json:"std_x"`
	StdY      int       `json:"std_y"`
	Width     int       `json:"width"`
	Height    int       `json:"height"`
	Lines     int       `json:"lines"`
	Serial    string    `json:"serial,omitempty"`
	ElapsedUS int64     `json:"elapsed_us"`
}

// NewReport flattens a module result into a Report.
func NewReport(module string, res *tracker.Result) Report {
	r := Report{
		Module:    module,
		Seq:       res.Seq,
		Time:      res.Time,
		Lines:     len(res.Lines),
		Serial:    res.Serial,
		ElapsedUS: res.Elapsed.Microseconds(),
	}
	if t := res.Target; t != nil {
		r.Found = true
		r.CenterX, r.CenterY = t.Center.X, t.Center.Y
		r.StdX, r.StdY = t.Std.X, t.Std.Y
		r.Width, r.Height = t.Bounds.Width(), t.Bounds.Height()
	}
	return r
}

// Stats summarizes the recorded frames.
type Stats struct {
	Frames       int64   `json:"frames"`
	Found        int64   `json:"found"`
	HitRate      float64 `json:"hit_rate"`
	AvgElapsedUS float64 `json:"avg_elapsed_us"`
}

// Recorder wraps the SQLite connection with serialized writes.
type Recorder struct {
	conn *sql.DB
	mu   sync.RWMutex
}

// Open creates or opens the database at path and applies the schema.
func Open(path string) (*Recorder, error) {
	conn, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	conn.SetMaxOpenConns(1)
	conn.SetMaxIdleConns(1)
	conn.SetConnMaxLifetime(0)

	r := &Recorder{conn: conn}
	if err := r.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return r, nil
}

func (r *Recorder) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS reports (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		module TEXT NOT NULL,
		seq INTEGER NOT NULL,
		timestamp DATETIME NOT NULL,
		found INTEGER NOT NULL DEFAULT 0,
		center_x INTEGER DEFAULT 0,
		center_y INTEGER DEFAULT 0,
		std_x INTEGER DEFAULT 0,
		std_y INTEGER DEFAULT 0,
		width INTEGER DEFAULT 0,
		height INTEGER DEFAULT 0,
		lines INTEGER DEFAULT 0,
		serial TEXT DEFAULT '',
		elapsed_us INTEGER DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_reports_timestamp ON reports(timestamp);
	CREATE INDEX IF NOT EXISTS idx_reports_module ON reports(module);
	`
	_, err := r.conn.Exec(schema)
	return err
}

// Record inserts a report and returns its id.
func (r *Recorder) Record(ctx context.Context, rep Report) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	result, err := r.conn.ExecContext(ctx, `
		INSERT INTO reports (module, seq, timestamp, found, center_x, center_y, std_x, std_y, width, height, lines, serial, elapsed_us)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, rep.Module, int64(rep.Seq), rep.Time.UTC(), rep.Found, rep.CenterX, rep.CenterY, rep.StdX, rep.StdY,
		rep.Width, rep.Height, rep.Lines, rep.Serial, rep.ElapsedUS)
	if err != nil {
		return 0, fmt.Errorf("failed to insert report: %w", err)
	}
	return result.LastInsertId()
}

// Recent returns up to limit reports, newest first.
func (r *Recorder) Recent(ctx context.Context, limit int) ([]Report, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.conn.QueryContext(ctx, `
		SELECT id, module, seq, timestamp, found, center_x, center_y, std_x, std_y, width, height, lines, serial, elapsed_us
		FROM reports ORDER BY id DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	var reports []Report
	for rows.Next() {
		var rep Report
		var seq int64
		if err := rows.Scan(&rep.ID, &rep.Module, &seq, &rep.Time, &rep.Found, &rep.CenterX, &rep.CenterY,
			&rep.StdX, &rep.StdY, &rep.Width, &rep.Height, &rep.Lines, &rep.Serial, &rep.ElapsedUS); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		rep.Seq = uint64(seq)
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}

// Stats aggregates every recorded report.
func (r *Recorder) Stats(ctx context.Context) (Stats, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var s Stats
	var avg sql.NullFloat64
	err := r.conn.QueryRowContext(ctx, `
		SELECT COUNT(*), COALESCE(SUM(found), 0), AVG(elapsed_us) FROM reports
	`).Scan(&s.Frames, &s.Found, &avg)
	if err != nil {
		return Stats{}, fmt.Errorf("failed to query stats: %w", err)
	}
	if s.Frames > 0 {
		s.HitRate = float64(s.Found) / float64(s.Frames)
	}
	s.AvgElapsedUS = avg.Float64
	return s, nil
}

// Close closes the database connection.
func (r *Recorder) Close() error {
	return r.conn.Close()
}
