package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/giantswarm/sysroot/internal/fileutil"
	"github.com/giantswarm/sysroot/internal/fingerprint"
	"github.com/giantswarm/sysroot/internal/sentinel"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"
)

// ErrUnsupportedPath is returned for ledger paths the SQLite URI form cannot
// carry verbatim.
const ErrUnsupportedPath = sentinel.Error("ledger path must not contain '?' or '#'")

// ValidatePath reports whether path can be opened as a ledger.
func ValidatePath(path string) error {
	if strings.ContainsAny(path, "?#") {
		return fmt.Errorf("%w: %q", ErrUnsupportedPath, path)
	}
	return nil
}

const schema = `
CREATE TABLE IF NOT EXISTS builds (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	target      TEXT    NOT NULL,
	lib_dir     TEXT    NOT NULL,
	fingerprint TEXT    NOT NULL,
	src_dir     TEXT    NOT NULL,
	commit_hash TEXT    NOT NULL,
	mode        TEXT    NOT NULL,
	artifacts   INTEGER NOT NULL,
	duration_ms INTEGER NOT NULL,
	finished_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS builds_by_target ON builds (target, id);
`

// Record is one completed installation.
type Record struct {
	Target      string
	LibDir      string
	Fingerprint fingerprint.Fingerprint
	SrcDir      string
	Commit      string
	Mode        string
	Artifacts   int
	Duration    time.Duration
	FinishedAt  time.Time
}

// Ledger is an open handle on the history database.
type Ledger struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if needed) the ledger database at path.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Ledger, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := ValidatePath(path); err != nil {
		return nil, err
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("prepare ledger dir: %w", err)
	}

	// WAL plus a generous busy timeout lets concurrent builds of different
	// targets append without tripping over each other's write locks.
	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(30000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open ledger %s: %w", path, err)
	}
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create ledger schema: %w", err)
	}
	return &Ledger{db: db, log: logger}, nil
}

// Close closes the database.
func (l *Ledger) Close() error {
	if err := l.db.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	return nil
}

// Append stores r. A zero FinishedAt is set to now.
func (l *Ledger) Append(ctx context.Context, r Record) error {
	if r.FinishedAt.IsZero() {
		r.FinishedAt = time.Now()
	}
	const stmt = `
		INSERT INTO builds (target, lib_dir, fingerprint, src_dir, commit_hash, mode, artifacts, duration_ms, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	if _, err := l.db.ExecContext(ctx, stmt,
		r.Target, r.LibDir, r.Fingerprint.String(), r.SrcDir, r.Commit, r.Mode,
		r.Artifacts, r.Duration.Milliseconds(), r.FinishedAt.UnixNano(),
	); err != nil {
		return fmt.Errorf("insert build record: %w", err)
	}
	l.log.Debug("ledger record appended", "target", r.Target, "fingerprint", r.Fingerprint)
	return nil
}

// Last returns the most recent record for target. The boolean is false when
// target has never been installed.
func (l *Ledger) Last(ctx context.Context, target string) (Record, bool, error) {
	records, err := l.History(ctx, target, 1)
	if err != nil {
		return Record{}, false, err
	}
	if len(records) == 0 {
		return Record{}, false, nil
	}
	return records[0], true, nil
}

// History returns up to limit records for target, newest first. A limit of
// zero or less returns all of them.
func (l *Ledger) History(ctx context.Context, target string, limit int) ([]Record, error) {
	const query = `
		SELECT target, lib_dir, fingerprint, src_dir, commit_hash, mode, artifacts, duration_ms, finished_at
		FROM builds WHERE target = ? ORDER BY id DESC LIMIT ?`
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}

	rows, err := l.db.QueryContext(ctx, query, target, limit)
	if err != nil {
		return nil, fmt.Errorf("query build records: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below reports read errors

	var records []Record
	for rows.Next() {
		r, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate build records: %w", err)
	}
	return records, nil
}

func scanRecord(rows *sql.Rows) (Record, error) {
	var (
		r          Record
		fp         string
		durationMS int64
		finished   int64
	)
	if err := rows.Scan(&r.Target, &r.LibDir, &fp, &r.SrcDir, &r.Commit, &r.Mode, &r.Artifacts, &durationMS, &finished); err != nil {
		return Record{}, fmt.Errorf("scan build record: %w", err)
	}
	v, err := strconv.ParseUint(fp, 10, 64)
	if err != nil {
		return Record{}, errors.Join(fmt.Errorf("corrupt fingerprint %q in ledger", fp), err)
	}
	r.Fingerprint = fingerprint.Fingerprint(v)
	r.Duration = time.Duration(durationMS) * time.Millisecond
	r.FinishedAt = time.Unix(0, finished)
	return r, nil
}
