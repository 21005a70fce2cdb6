// Package store persists raw source records, comparison reports, index
// snapshots, and integrity alerts in a local SQLite database. The database is
// the audit trail: every comparison run leaves a durable report row plus a
// YAML evidence file on disk.
package store

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/assureops/crosscheck/pkg/declarations"
	"github.com/assureops/crosscheck/pkg/errors"
	"github.com/assureops/crosscheck/pkg/logging"
	"github.com/assureops/crosscheck/pkg/report"
)

// Store handles persistence for the comparison engine.
type Store struct {
	db *sql.DB
}

// Open opens (or creates) the SQLite database at path and runs migrations.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, errors.WrapPersistence("open database", err)
	}
	// SQLite allows one writer at a time; a single connection avoids
	// SQLITE_BUSY under the scheduler's overlapping jobs.
	db.SetMaxOpenConns(1)

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, errors.WrapPersistence("migrate database", err)
	}

	logging.Debug().Str("path", path).Msg("Database initialized")
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS raw_records (
		source TEXT NOT NULL,
		reference TEXT NOT NULL,
		payload TEXT NOT NULL,
		collected_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (source, reference)
	);

	CREATE INDEX IF NOT EXISTS idx_raw_records_source ON raw_records(source);

	CREATE TABLE IF NOT EXISTS source_runs (
		source TEXT PRIMARY KEY,
		staged INTEGER NOT NULL,
		excluded INTEGER NOT NULL,
		staged_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS comparison_reports (
		id TEXT PRIMARY KEY,
		generated_at DATETIME NOT NULL,
		schema_version INTEGER NOT NULL,
		confidence_score INTEGER NOT NULL,
		passed INTEGER NOT NULL,
		recommendation TEXT NOT NULL,
		payload TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_reports_generated ON comparison_reports(generated_at DESC);

	CREATE TABLE IF NOT EXISTS index_snapshot (
		reference TEXT PRIMARY KEY,
		raw_end_date TEXT NOT NULL,
		active INTEGER NOT NULL,
		jurisdiction TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS integrity_alerts (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		report_id TEXT NOT NULL,
		severity TEXT NOT NULL,
		message TEXT NOT NULL,
		acknowledged INTEGER DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		FOREIGN KEY (report_id) REFERENCES comparison_reports(id)
	);

	CREATE INDEX IF NOT EXISTS idx_alerts_report ON integrity_alerts(report_id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ReplaceSource replaces all staged records for one source inside a single
// transaction, so readers never observe a half-written collection run. A
// duplicate natural key within the run keeps the last occurrence rather than
// failing the whole ingest. The excluded count records how many raw records
// did not survive normalization, so later comparison reports can show them.
func (s *Store) ReplaceSource(ctx context.Context, source string, decls []declarations.Declaration, excluded int) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapPersistence("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM raw_records WHERE source = ?", source); err != nil {
		return errors.WrapPersistence("clear source records", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO raw_records (source, reference, payload)
		VALUES (?, ?, ?)
	`)
	if err != nil {
		return errors.WrapPersistence("prepare insert", err)
	}
	defer stmt.Close()

	for _, d := range decls {
		payload, err := json.Marshal(d)
		if err != nil {
			return errors.WrapPersistence("marshal record", err)
		}
		if _, err := stmt.ExecContext(ctx, source, d.Reference.String(), string(payload)); err != nil {
			return errors.WrapPersistence("insert record", err)
		}
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT OR REPLACE INTO source_runs (source, staged, excluded)
		VALUES (?, ?, ?)
	`, source, len(decls), excluded); err != nil {
		return errors.WrapPersistence("record source run", err)
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapPersistence("commit source records", err)
	}
	logging.Debug().Str("source", source).Int("count", len(decls)).Int("excluded", excluded).Msg("Source records replaced")
	return nil
}

// SourceExcluded returns how many raw records were excluded during the last
// ingest of one source. Zero when the source has never been staged.
func (s *Store) SourceExcluded(ctx context.Context, source string) (int, error) {
	var excluded int
	err := s.db.QueryRowContext(ctx, `
		SELECT excluded FROM source_runs WHERE source = ?
	`, source).Scan(&excluded)
	if err == sql.ErrNoRows {
		return 0, nil
	}
	if err != nil {
		return 0, errors.WrapPersistence("query source run", err)
	}
	return excluded, nil
}

// LoadSource returns all staged records for one source, ordered by reference.
func (s *Store) LoadSource(ctx context.Context, source string) ([]declarations.Declaration, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM raw_records WHERE source = ? ORDER BY reference
	`, source)
	if err != nil {
		return nil, errors.WrapPersistence("query source records", err)
	}
	defer rows.Close()

	var decls []declarations.Declaration
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.WrapPersistence("scan record", err)
		}
		var d declarations.Declaration
		if err := json.Unmarshal([]byte(payload), &d); err != nil {
			return nil, errors.WrapPersistence("unmarshal record", err)
		}
		decls = append(decls, d)
	}
	return decls, rows.Err()
}

// AppendReport persists a comparison report. Reports are append-only.
func (s *Store) AppendReport(ctx context.Context, r *report.ComparisonReport) error {
	payload, err := json.Marshal(r)
	if err != nil {
		return errors.WrapPersistence("marshal report", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO comparison_reports (id, generated_at, schema_version, confidence_score, passed, recommendation, payload)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, r.ID.String(), r.GeneratedAt.Time(), r.SchemaVersion, r.ConfidenceScore, boolInt(r.Passed), r.Recommendation.String(), string(payload))
	if err != nil {
		return errors.WrapPersistence("insert report", err)
	}
	return nil
}

// GetReport loads one report by ID. Returns ErrNotFound when no such report
// exists.
func (s *Store) GetReport(ctx context.Context, id uuid.UUID) (*report.ComparisonReport, error) {
	var payload string
	err := s.db.QueryRowContext(ctx, `
		SELECT payload FROM comparison_reports WHERE id = ?
	`, id.String()).Scan(&payload)
	if err == sql.ErrNoRows {
		return nil, errors.ErrNotFound
	}
	if err != nil {
		return nil, errors.WrapPersistence("query report", err)
	}

	var r report.ComparisonReport
	if err := json.Unmarshal([]byte(payload), &r); err != nil {
		return nil, errors.WrapPersistence("unmarshal report", err)
	}
	return &r, nil
}

// ListReports returns the most recent reports, newest first.
func (s *Store) ListReports(ctx context.Context, limit int) ([]report.ComparisonReport, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT payload FROM comparison_reports ORDER BY generated_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, errors.WrapPersistence("query reports", err)
	}
	defer rows.Close()

	var reports []report.ComparisonReport
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, errors.WrapPersistence("scan report", err)
		}
		var r report.ComparisonReport
		if err := json.Unmarshal([]byte(payload), &r); err != nil {
			return nil, errors.WrapPersistence("unmarshal report", err)
		}
		reports = append(reports, r)
	}
	return reports, rows.Err()
}

// PreviousIndex loads the stored index snapshot, ordered by reference. An
// empty result means no baseline has been captured yet.
func (s *Store) PreviousIndex(ctx context.Context) ([]declarations.IndexEntry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT reference, raw_end_date, active, jurisdiction
		FROM index_snapshot ORDER BY reference
	`)
	if err != nil {
		return nil, errors.WrapPersistence("query index snapshot", err)
	}
	defer rows.Close()

	var entries []declarations.IndexEntry
	for rows.Next() {
		var e declarations.IndexEntry
		var ref, jurisdiction string
		var active int
		if err := rows.Scan(&ref, &e.RawEndDate, &active, &jurisdiction); err != nil {
			return nil, errors.WrapPersistence("scan index entry", err)
		}
		e.Reference = declarations.Reference(ref)
		e.Active = active != 0
		e.Jurisdiction = declarations.Jurisdiction(jurisdiction)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// ReplaceIndex swaps the stored snapshot for the current one in a single
// transaction. The snapshot is either fully the old one or fully the new
// one, never a mix.
func (s *Store) ReplaceIndex(ctx context.Context, entries []declarations.IndexEntry) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return errors.WrapPersistence("begin transaction", err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, "DELETE FROM index_snapshot"); err != nil {
		return errors.WrapPersistence("clear index snapshot", err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO index_snapshot (reference, raw_end_date, active, jurisdiction)
		VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return errors.WrapPersistence("prepare insert", err)
	}
	defer stmt.Close()

	for _, e := range entries {
		if _, err := stmt.ExecContext(ctx, e.Reference.String(), e.RawEndDate, boolInt(e.Active), e.Jurisdiction.String()); err != nil {
			return errors.WrapPersistence("insert index entry", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.WrapPersistence("commit index snapshot", err)
	}
	logging.Debug().Int("count", len(entries)).Msg("Index snapshot replaced")
	return nil
}

// SaveAlert records an integrity alert raised against a report.
func (s *Store) SaveAlert(ctx context.Context, reportID uuid.UUID, severity, message string) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO integrity_alerts (report_id, severity, message)
		VALUES (?, ?, ?)
	`, reportID.String(), severity, message)
	if err != nil {
		return errors.WrapPersistence("insert alert", err)
	}
	return nil
}

// Alert is one row from the integrity alert log.
type Alert struct {
	ID           int64
	ReportID     uuid.UUID
	Severity     string
	Message      string
	Acknowledged bool
}

// ListAlerts returns unacknowledged alerts, oldest first.
func (s *Store) ListAlerts(ctx context.Context) ([]Alert, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, report_id, severity, message, acknowledged
		FROM integrity_alerts WHERE acknowledged = 0 ORDER BY id
	`)
	if err != nil {
		return nil, errors.WrapPersistence("query alerts", err)
	}
	defer rows.Close()

	var alerts []Alert
	for rows.Next() {
		var a Alert
		var reportID string
		var ack int
		if err := rows.Scan(&a.ID, &reportID, &a.Severity, &a.Message, &ack); err != nil {
			return nil, errors.WrapPersistence("scan alert", err)
		}
		id, err := uuid.Parse(reportID)
		if err != nil {
			return nil, errors.WrapPersistence("parse alert report id", err)
		}
		a.ReportID = id
		a.Acknowledged = ack != 0
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	return s.db.Close()
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
