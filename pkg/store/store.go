// Package store persists learnlog records in a local SQLite file.
//
// The engine hands the store a complete record set (one value per key) and
// the store replaces what it holds in a single transaction, so a reader
// never sees half of a save. An append-only activity log sits beside the
// records for the history views.
package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/daviddao/learnlog/pkg/model"

	_ "modernc.org/sqlite"
)

// Store is a SQLite-backed record store in WAL mode.
type Store struct {
	db   *sql.DB
	path string
	now  func() time.Time
}

// New opens (or creates) the database at path and applies the schema.
func New(path string) (*Store, error) {
	dsn := path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(60000)&_pragma=synchronous(NORMAL)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxLifetime(30 * time.Minute)

	s := &Store{db: db, path: path, now: time.Now}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Path returns the database file path.
func (s *Store) Path() string { return s.path }

// Close closes the database connection.
func (s *Store) Close() error { return s.db.Close() }

func retryOnContention(ctx context.Context, fn func() error) error {
	return retryOp(ctx, defaultRetryConfig, fn)
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS records (
		key        TEXT PRIMARY KEY,
		value      TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS activity (
		id         INTEGER PRIMARY KEY AUTOINCREMENT,
		kind       TEXT NOT NULL,
		subject    TEXT,
		detail     TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_kind ON activity(kind, id);
	`
	_, err := s.db.Exec(schema)
	return err
}

// ---------------------------------------------------------------------------
// Records
// ---------------------------------------------------------------------------

// LoadRecords returns every stored record. An empty database yields an
// empty, non-nil set.
func (s *Store) LoadRecords(ctx context.Context) (model.Records, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT key, value FROM records ORDER BY key`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	recs := make(model.Records)
	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, err
		}
		recs[key] = []byte(value)
	}
	return recs, rows.Err()
}

// SaveRecords replaces the stored record set with recs in one transaction.
// Keys absent from recs are removed.
func (s *Store) SaveRecords(ctx context.Context, recs model.Records) error {
	now := s.now().UTC().Format(time.RFC3339Nano)
	return retryOnContention(ctx, func() error {
		tx, err := s.db.BeginTx(ctx, nil)
		if err != nil {
			return err
		}
		defer tx.Rollback()

		if _, err := tx.ExecContext(ctx, `DELETE FROM records`); err != nil {
			return err
		}
		for key, value := range recs {
			if _, err := tx.ExecContext(ctx,
				`INSERT INTO records (key, value, updated_at) VALUES (?, ?, ?)`,
				key, string(value), now,
			); err != nil {
				return fmt.Errorf("insert %s: %w", key, err)
			}
		}
		return tx.Commit()
	})
}

// LastSaved returns the newest updated_at across records, or the zero
// time when nothing has been saved.
func (s *Store) LastSaved(ctx context.Context) (time.Time, error) {
	var ts sql.NullString
	if err := s.db.QueryRowContext(ctx, `SELECT MAX(updated_at) FROM records`).Scan(&ts); err != nil {
		return time.Time{}, err
	}
	if !ts.Valid {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339Nano, ts.String)
}

// ---------------------------------------------------------------------------
// Activity log
// ---------------------------------------------------------------------------

// Activity is one entry in the append-only activity log.
type Activity struct {
	ID        int64     `json:"id"`
	Kind      string    `json:"kind"`
	Subject   string    `json:"subject,omitempty"`
	Detail    string    `json:"detail,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// Activity kinds written by the CLI.
const (
	KindCompleted   = "completed"
	KindUncompleted = "uncompleted"
	KindReviewed    = "reviewed"
	KindMilestone   = "milestone"
	KindQuiz        = "quiz"
	KindImport      = "import"
	KindCheckin     = "checkin"
)

// AppendActivity adds an entry and returns its row id. A zero CreatedAt is
// set to the current time.
func (s *Store) AppendActivity(ctx context.Context, a *Activity) (int64, error) {
	if a.CreatedAt.IsZero() {
		a.CreatedAt = s.now()
	}
	var id int64
	err := retryOnContention(ctx, func() error {
		res, err := s.db.ExecContext(ctx,
			`INSERT INTO activity (kind, subject, detail, created_at) VALUES (?, ?, ?, ?)`,
			a.Kind, a.Subject, a.Detail, a.CreatedAt.UTC().Format(time.RFC3339Nano),
		)
		if err != nil {
			return err
		}
		id, err = res.LastInsertId()
		return err
	})
	if err != nil {
		return 0, err
	}
	a.ID = id
	return id, nil
}

// ListActivity returns the newest limit entries, newest first. An empty
// kind matches every entry; limit <= 0 means no limit.
func (s *Store) ListActivity(ctx context.Context, kind string, limit int) ([]Activity, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, kind, COALESCE(subject, ''), COALESCE(detail, ''), created_at
		 FROM activity WHERE (? = '' OR kind = ?) ORDER BY id DESC LIMIT ?`,
		kind, kind, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var created string
		if err := rows.Scan(&a.ID, &a.Kind, &a.Subject, &a.Detail, &created); err != nil {
			return nil, err
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, created)
		out = append(out, a)
	}
	return out, rows.Err()
}
