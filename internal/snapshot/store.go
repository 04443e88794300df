// Package snapshot persists vintage matrices and popularity counters between
// runs, using various database backends.
package snapshot

import (
	"database/sql"
	"fmt"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver
	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver
	_ "modernc.org/sqlite"             // SQLite driver

	"github.com/vintlab/vint/internal/contract"
	"github.com/vintlab/vint/schema"
)

// StoreImpl handles durable snapshot storage using various database backends.
type StoreImpl struct {
	db      *sql.DB
	backend schema.DatabaseBackend
	connStr string
}

var _ contract.SnapshotStore = &StoreImpl{} // Compile-time check

// NewStore opens a snapshot store for the given backend and runs its schema
// migrations. A NoneBackend store accepts writes and drops them.
func NewStore(backend schema.DatabaseBackend, connStr string) (contract.SnapshotStore, error) {
	if backend == schema.NoneBackend {
		return &StoreImpl{backend: backend, connStr: connStr}, nil
	}

	db, err := openDB(backend, connStr)
	if err != nil {
		return nil, err
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to %s snapshot store. Check that the server is running and connection parameters are valid: %w", backend, err)
	}
	if err := migrateUp(db, backend); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate snapshot schema: %w", err)
	}
	return &StoreImpl{db: db, backend: backend, connStr: connStr}, nil
}

// openDB dials the backend without pinging or migrating.
func openDB(backend schema.DatabaseBackend, connStr string) (*sql.DB, error) {
	switch backend {
	case schema.SQLiteBackend:
		dbPath := connStr
		if dbPath == "" {
			dbPath = contract.GetDBFilePath()
		}
		db, err := sql.Open("sqlite", dbPath)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize SQLite snapshot at %q: %w. Ensure the directory is writable", dbPath, err)
		}
		// Limit SQLite to a single open connection to avoid "database is locked" errors
		db.SetMaxOpenConns(1)
		return db, nil

	case schema.MySQLBackend:
		// connStr should be:
		// user:password@tcp(host:port)/dbname
		db, err := sql.Open("mysql", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MySQL snapshot store: %w. Check connection format: user:password@tcp(host:port)/dbname", err)
		}
		return db, nil

	case schema.PostgreSQLBackend:
		// connStr should be:
		// host=localhost port=5432 user=postgres password=secret dbname=postgres
		db, err := sql.Open("pgx", connStr)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to PostgreSQL snapshot store: %w. Check connection format: host=localhost port=5432 user=postgres dbname=mydb", err)
		}
		return db, nil

	default:
		return nil, fmt.Errorf("unsupported snapshot backend: %s. Must be sqlite, mysql, postgresql, or none", backend)
	}
}

// SaveSeries upserts series metadata.
func (s *StoreImpl) SaveSeries(meta schema.Series) error {
	if s.db == nil {
		return nil
	}
	minVintage := ""
	if !meta.MinVintage.IsZero() {
		minVintage = meta.MinVintage.Format(schema.DateFormat)
	}
	query := s.upsertSeriesQuery()
	_, err := s.db.Exec(query, meta.ID, meta.Title, string(meta.Frequency), meta.Units, minVintage)
	return err
}

// LoadSeries returns every persisted series definition.
func (s *StoreImpl) LoadSeries() ([]schema.Series, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT series_id, title, frequency, units, min_vintage FROM vint_series ORDER BY series_id`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []schema.Series
	for rows.Next() {
		var meta schema.Series
		var freq, minVintage string
		if err := rows.Scan(&meta.ID, &meta.Title, &freq, &meta.Units, &minVintage); err != nil {
			return nil, err
		}
		meta.Frequency = schema.Frequency(freq)
		if minVintage != "" {
			t, err := time.Parse(schema.DateFormat, minVintage)
			if err != nil {
				return nil, fmt.Errorf("corrupt min_vintage %q for %s: %w", minVintage, meta.ID, err)
			}
			meta.MinVintage = t
		}
		out = append(out, meta)
	}
	return out, rows.Err()
}

// SaveRecords upserts revision triples for a series inside one transaction.
func (s *StoreImpl) SaveRecords(seriesID string, records []schema.Revision) error {
	if s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	query := s.upsertRevisionQuery()
	for _, rec := range records {
		if _, err := tx.Exec(query, seriesID,
			rec.ObservationDate.Format(schema.DateFormat),
			rec.VintageDate.Format(schema.DateFormat),
			rec.Value); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadRecords returns every persisted triple for a series, sorted by
// observation date then vintage date.
func (s *StoreImpl) LoadRecords(seriesID string) ([]schema.Revision, error) {
	if s.db == nil {
		return nil, nil
	}
	query := fmt.Sprintf(`SELECT observation_date, vintage_date, value FROM vint_revisions
		WHERE series_id = %s ORDER BY observation_date, vintage_date`, s.placeholder(1))
	rows, err := s.db.Query(query, seriesID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []schema.Revision
	for rows.Next() {
		var obsStr, vinStr string
		var rec schema.Revision
		if err := rows.Scan(&obsStr, &vinStr, &rec.Value); err != nil {
			return nil, err
		}
		if rec.ObservationDate, err = time.Parse(schema.DateFormat, obsStr); err != nil {
			return nil, fmt.Errorf("corrupt observation date %q: %w", obsStr, err)
		}
		if rec.VintageDate, err = time.Parse(schema.DateFormat, vinStr); err != nil {
			return nil, fmt.Errorf("corrupt vintage date %q: %w", vinStr, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveAccessCounts replaces the persisted popularity counters. The slice
// order becomes the persisted first-seen order.
func (s *StoreImpl) SaveAccessCounts(ranks []schema.SeriesRank) error {
	if s.db == nil {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	if _, err := tx.Exec(`DELETE FROM vint_access`); err != nil {
		_ = tx.Rollback()
		return err
	}
	query := s.insertAccessQuery()
	for i, r := range ranks {
		if _, err := tx.Exec(query, r.SeriesID, r.Hits, i); err != nil {
			_ = tx.Rollback()
			return err
		}
	}
	return tx.Commit()
}

// LoadAccessCounts returns the persisted popularity counters in first-seen
// order.
func (s *StoreImpl) LoadAccessCounts() ([]schema.SeriesRank, error) {
	if s.db == nil {
		return nil, nil
	}
	rows, err := s.db.Query(`SELECT series_id, hits FROM vint_access ORDER BY first_seen`)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []schema.SeriesRank
	for rows.Next() {
		var r schema.SeriesRank
		if err := rows.Scan(&r.SeriesID, &r.Hits); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetStatus returns status information about the snapshot store.
func (s *StoreImpl) GetStatus() (schema.SnapshotStatus, error) {
	status := schema.SnapshotStatus{Backend: s.backend, Location: s.location(), SizeBytes: -1}
	if s.db == nil {
		return status, nil
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM vint_series`).Scan(&status.SeriesCount); err != nil {
		return status, err
	}
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM vint_revisions`).Scan(&status.RevisionCount); err != nil {
		return status, err
	}
	if s.backend == schema.SQLiteBackend {
		if info, err := os.Stat(s.location()); err == nil {
			status.SizeBytes = info.Size()
		}
	}
	return status, nil
}

// Clear drops all persisted data but keeps the schema.
func (s *StoreImpl) Clear() error {
	if s.db == nil {
		return nil
	}
	for _, table := range []string{"vint_access", "vint_revisions", "vint_series"} {
		if _, err := s.db.Exec(`DELETE FROM ` + table); err != nil {
			return err
		}
	}
	return nil
}

// Close closes the underlying connection.
func (s *StoreImpl) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

// location describes where the data lives, for status output.
func (s *StoreImpl) location() string {
	if s.backend == schema.SQLiteBackend {
		if s.connStr != "" {
			return s.connStr
		}
		return contract.GetDBFilePath()
	}
	return s.connStr
}

// placeholder returns the n-th parameter placeholder for the backend.
func (s *StoreImpl) placeholder(n int) string {
	if s.backend == schema.PostgreSQLBackend {
		return fmt.Sprintf("$%d", n)
	}
	return "?" // SQLite and MySQL
}

// upsertSeriesQuery returns the series UPSERT for the backend.
func (s *StoreImpl) upsertSeriesQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return `INSERT INTO vint_series (series_id, title, frequency, units, min_vintage) VALUES (?, ?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE title = new.title, frequency = new.frequency, units = new.units, min_vintage = new.min_vintage`
	case schema.PostgreSQLBackend:
		return `INSERT INTO vint_series (series_id, title, frequency, units, min_vintage) VALUES ($1, $2, $3, $4, $5)
			ON CONFLICT (series_id) DO UPDATE SET title = EXCLUDED.title, frequency = EXCLUDED.frequency, units = EXCLUDED.units, min_vintage = EXCLUDED.min_vintage`
	default: // SQLite
		return `INSERT OR REPLACE INTO vint_series (series_id, title, frequency, units, min_vintage) VALUES (?, ?, ?, ?, ?)`
	}
}

// upsertRevisionQuery returns the revision UPSERT for the backend.
func (s *StoreImpl) upsertRevisionQuery() string {
	switch s.backend {
	case schema.MySQLBackend:
		return `INSERT INTO vint_revisions (series_id, observation_date, vintage_date, value) VALUES (?, ?, ?, ?) AS new
			ON DUPLICATE KEY UPDATE value = new.value`
	case schema.PostgreSQLBackend:
		return `INSERT INTO vint_revisions (series_id, observation_date, vintage_date, value) VALUES ($1, $2, $3, $4)
			ON CONFLICT (series_id, observation_date, vintage_date) DO UPDATE SET value = EXCLUDED.value`
	default: // SQLite
		return `INSERT OR REPLACE INTO vint_revisions (series_id, observation_date, vintage_date, value) VALUES (?, ?, ?, ?)`
	}
}

// insertAccessQuery returns the access-counter INSERT for the backend.
func (s *StoreImpl) insertAccessQuery() string {
	if s.backend == schema.PostgreSQLBackend {
		return `INSERT INTO vint_access (series_id, hits, first_seen) VALUES ($1, $2, $3)`
	}
	return `INSERT INTO vint_access (series_id, hits, first_seen) VALUES (?, ?, ?)`
}
