package history

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"time"

	// Register the pure-Go SQLite driver (no CGO required).
	_ "modernc.org/sqlite"

	"github.com/phip1611/unix-exec-piper/internal/fileutil"
)

// schema is applied on every Open; CREATE TABLE IF NOT EXISTS keeps it
// idempotent across processes sharing one history file.
const schema = `
CREATE TABLE IF NOT EXISTS chains (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	command     TEXT    NOT NULL,
	background  INTEGER NOT NULL,
	pids        TEXT    NOT NULL,
	exit_codes  TEXT,
	started_at  TEXT    NOT NULL,
	finished_at TEXT
)`

// Entry is one recorded chain execution. FinishedAt and ExitCodes are zero
// until the completion has been recorded.
type Entry struct {
	ID         int64
	Command    string
	Background bool
	Pids       []int
	ExitCodes  []int
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store records executed command chains in a SQLite database.
// A Store is safe for use from a single goroutine; the launching loop of a
// shell is inherently sequential.
type Store struct {
	db  *sql.DB
	log *slog.Logger
}

// Open opens (creating if necessary) the history database at path.
// Schema initialization is guarded by a file lock at path+".lock" so that
// several shell processes pointing at the same history file cannot race the
// first CREATE TABLE. If logger is nil, slog.Default() is used.
func Open(ctx context.Context, path string, logger *slog.Logger) (*Store, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := fileutil.EnsureDirForFile(path); err != nil {
		return nil, fmt.Errorf("history dir: %w", err)
	}

	// WAL with a busy timeout tolerates concurrent writers from other shell
	// processes; NORMAL synchronous is fine for history data, losing the
	// last entries on a crash is acceptable.
	dsn := fmt.Sprintf(
		"file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)",
		path,
	)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open history db %s: %w", path, err)
	}
	// Short-lived sequential sessions, not a pool.
	db.SetMaxOpenConns(1)

	fl, err := acquireFileLock(ctx, path+".lock")
	if err != nil {
		_ = db.Close()
		return nil, err
	}
	_, initErr := db.ExecContext(ctx, schema)
	releaseFileLock(logger, fl)
	if initErr != nil {
		_ = db.Close()
		return nil, fmt.Errorf("initialize history schema: %w", initErr)
	}

	return &Store{db: db, log: logger}, nil
}

// RecordLaunch inserts a row for a freshly launched chain and returns its id
// for the later completion record.
func (s *Store) RecordLaunch(ctx context.Context, command string, background bool, pids []int) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO chains (command, background, pids, started_at) VALUES (?, ?, ?, ?)`,
		command, boolToInt(background), joinInts(pids), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return 0, fmt.Errorf("record chain launch: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("chain launch row id: %w", err)
	}
	s.log.Debug("history: chain recorded", "id", id, "command", command)
	return id, nil
}

// RecordCompletion stores the collected exit codes for a previously recorded
// launch. Recording completion twice for the same id simply overwrites with
// identical data, so callers need no stronger guard than their own bookkeeping.
func (s *Store) RecordCompletion(ctx context.Context, id int64, exitCodes []int) error {
	if _, err := s.db.ExecContext(ctx,
		`UPDATE chains SET exit_codes = ?, finished_at = ? WHERE id = ?`,
		joinInts(exitCodes), time.Now().UTC().Format(time.RFC3339Nano), id,
	); err != nil {
		return fmt.Errorf("record chain completion %d: %w", id, err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, command, background, pids, exit_codes, started_at, finished_at
		 FROM chains ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close() //nolint:errcheck // rows.Err() below catches read errors

	var entries []Entry
	for rows.Next() {
		var (
			e          Entry
			background int
			pids       string
			exitCodes  sql.NullString
			startedAt  string
			finishedAt sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.Command, &background, &pids, &exitCodes, &startedAt, &finishedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		e.Background = background != 0
		if e.Pids, err = splitInts(pids); err != nil {
			return nil, fmt.Errorf("history row %d pids: %w", e.ID, err)
		}
		if exitCodes.Valid {
			if e.ExitCodes, err = splitInts(exitCodes.String); err != nil {
				return nil, fmt.Errorf("history row %d exit codes: %w", e.ID, err)
			}
		}
		if e.StartedAt, err = time.Parse(time.RFC3339Nano, startedAt); err != nil {
			return nil, fmt.Errorf("history row %d started_at: %w", e.ID, err)
		}
		if finishedAt.Valid {
			if e.FinishedAt, err = time.Parse(time.RFC3339Nano, finishedAt.String); err != nil {
				return nil, fmt.Errorf("history row %d finished_at: %w", e.ID, err)
			}
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate history rows: %w", err)
	}
	return entries, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	if err := s.db.Close(); err != nil {
		return fmt.Errorf("close history db: %w", err)
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// joinInts renders ints space-separated; the empty slice renders empty.
func joinInts(vals []int) string {
	parts := make([]string, 0, len(vals))
	for _, v := range vals {
		parts = append(parts, strconv.Itoa(v))
	}
	return strings.Join(parts, " ")
}

func splitInts(s string) ([]int, error) {
	if s == "" {
		return nil, nil
	}
	parts := strings.Fields(s)
	vals := make([]int, 0, len(parts))
	for _, p := range parts {
		v, err := strconv.Atoi(p)
		if err != nil {
			return nil, fmt.Errorf("parse %q: %w", p, err)
		}
		vals = append(vals, v)
	}
	return vals, nil
}
