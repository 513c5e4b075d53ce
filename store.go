package lumen

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// ErrNotFound is returned when a requested snapshot does not exist.
var ErrNotFound = errors.New("not found")

// timeFormat has a fixed width so created_at sorts lexically.
const timeFormat = "2006-01-02T15:04:05.000000000Z07:00"

// Snapshot is one accepted revision of the site configuration.
type Snapshot struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"createdAt"`
	Source    string    `json:"source"`
	Checksum  string    `json:"checksum"`
	Site      Site      `json:"site"`
}

// Store keeps configuration snapshots in SQLite.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// NewStore opens (or creates) the SQLite database at path, ensures the data
// directory exists, and creates the schema.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	// Pragmas in the DSN apply to every pooled connection. Transactions
	// take the write lock up front so concurrent Saves queue on busy_timeout.
	db, err := sql.Open("sqlite", path+"?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)&_pragma=synchronous(NORMAL)&_txlock=immediate")
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(4)
	s := &Store{db: db, now: time.Now}
	if err := s.ensureSchema(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ensureSchema() error {
	_, err := s.db.Exec(`
CREATE TABLE IF NOT EXISTS snapshots (
    id TEXT PRIMARY KEY,
    created_at TEXT NOT NULL,
    source TEXT NOT NULL,
    checksum TEXT NOT NULL,
    body TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_snapshots_created_at ON snapshots(created_at);
`)
	return err
}

// Checksum is the hex sha256 of the canonical JSON encoding of site.
func Checksum(site Site) (string, error) {
	b, err := json.Marshal(site)
	if err != nil {
		return "", err
	}
	return checksumOf(b), nil
}

func checksumOf(b []byte) string {
	sum := sha256.Sum256(b)
	return hex.EncodeToString(sum[:])
}

// Save stores site as a new snapshot unless it is identical to the latest
// one. It reports whether a row was written. The comparison and the insert
// run in one transaction.
func (s *Store) Save(ctx context.Context, site Site, source string) (Snapshot, bool, error) {
	body, err := json.Marshal(site)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("encode snapshot: %w", err)
	}
	checksum := checksumOf(body)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback()

	latest, err := scanSnapshot(tx.QueryRowContext(ctx, latestQuery))
	switch {
	case err == nil && latest.Checksum == checksum:
		return latest, false, nil
	case err != nil && !errors.Is(err, ErrNotFound):
		return Snapshot{}, false, err
	}

	snap := Snapshot{
		ID:        uuid.NewString(),
		CreatedAt: s.now().UTC(),
		Source:    source,
		Checksum:  checksum,
		Site:      site.Clone(),
	}
	_, err = tx.ExecContext(ctx,
		`INSERT INTO snapshots (id, created_at, source, checksum, body) VALUES (?, ?, ?, ?, ?)`,
		snap.ID, snap.CreatedAt.Format(timeFormat), snap.Source, snap.Checksum, string(body))
	if err != nil {
		return Snapshot{}, false, fmt.Errorf("insert snapshot: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return Snapshot{}, false, fmt.Errorf("commit: %w", err)
	}
	return snap, true, nil
}

const latestQuery = `SELECT id, created_at, source, checksum, body FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT 1`

// Latest returns the most recent snapshot.
func (s *Store) Latest(ctx context.Context) (Snapshot, error) {
	return scanSnapshot(s.db.QueryRowContext(ctx, latestQuery))
}

// Get returns the snapshot with the given id.
func (s *Store) Get(ctx context.Context, id string) (Snapshot, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, created_at, source, checksum, body FROM snapshots WHERE id = ?`, id)
	return scanSnapshot(row)
}

// List returns up to limit snapshots, newest first. limit <= 0 means all.
func (s *Store) List(ctx context.Context, limit int) ([]Snapshot, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, created_at, source, checksum, body FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		snap, err := scanSnapshot(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, snap)
	}
	return out, rows.Err()
}

// Prune deletes all but the newest keep snapshots and returns how many were removed.
func (s *Store) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.db.ExecContext(ctx, `
DELETE FROM snapshots WHERE id NOT IN (
    SELECT id FROM snapshots ORDER BY created_at DESC, rowid DESC LIMIT ?
)`, keep)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// StartPruneScheduler prunes every interval until the returned stop function
// is called.
func (s *Store) StartPruneScheduler(keep int, interval time.Duration, onErr func(error)) func() {
	ticker := time.NewTicker(interval)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case <-ticker.C:
				if _, err := s.Prune(context.Background(), keep); err != nil && onErr != nil {
					onErr(err)
				}
			case <-done:
				ticker.Stop()
				return
			}
		}
	}()

	var once sync.Once
	return func() { once.Do(func() { close(done) }) }
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSnapshot(r rowScanner) (Snapshot, error) {
	var id, createdAt, source, checksum, body string
	if err := r.Scan(&id, &createdAt, &source, &checksum, &body); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Snapshot{}, ErrNotFound
		}
		return Snapshot{}, err
	}
	ts, err := time.Parse(timeFormat, createdAt)
	if err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: created_at: %w", id, err)
	}
	var site Site
	if err := json.Unmarshal([]byte(body), &site); err != nil {
		return Snapshot{}, fmt.Errorf("snapshot %s: decode: %w", id, err)
	}
	return Snapshot{ID: id, CreatedAt: ts, Source: source, Checksum: checksum, Site: site}, nil
}
