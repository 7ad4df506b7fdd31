package out

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	_ "modernc.org/sqlite"

	"dinod/internal/modules/session/domain"
	sessionout "dinod/internal/modules/session/port/out"
	apperrors "dinod/internal/platform/errors"
)

// SQLiteSnapshotStore keeps the whole session aggregate as one JSON row. The
// daemon saves after every mutating tick, so writes stay cheap and the
// on-disk state is always a complete, consistent snapshot.
type SQLiteSnapshotStore struct {
	dbPath string

	mu sync.Mutex
	db *sql.DB
}

var _ sessionout.SnapshotStore = (*SQLiteSnapshotStore)(nil)

func NewSQLiteSnapshotStore(dbPath string) *SQLiteSnapshotStore {
	return &SQLiteSnapshotStore{dbPath: dbPath}
}

func (s *SQLiteSnapshotStore) Load(ctx context.Context) (domain.Session, error) {
	db, err := s.open(ctx)
	if err != nil {
		return domain.Session{}, err
	}

	var payload []byte
	row := db.QueryRowContext(ctx, `SELECT payload FROM session_snapshot WHERE id = 1`)
	if err := row.Scan(&payload); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.Session{}, apperrors.ErrNoSnapshot
		}
		return domain.Session{}, fmt.Errorf("read snapshot: %w", err)
	}

	var session domain.Session
	if err := json.Unmarshal(payload, &session); err != nil {
		return domain.Session{}, fmt.Errorf("%w: %v", apperrors.ErrSnapshotCorrupt, err)
	}
	if session.SessionStartedAt.IsZero() {
		return domain.Session{}, fmt.Errorf("%w: missing session start", apperrors.ErrSnapshotCorrupt)
	}
	return session, nil
}

func (s *SQLiteSnapshotStore) Save(ctx context.Context, session domain.Session) error {
	db, err := s.open(ctx)
	if err != nil {
		return err
	}
	payload, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode snapshot: %w", err)
	}
	_, err = db.ExecContext(ctx, `
		INSERT INTO session_snapshot (id, payload, saved_at)
		VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT(id) DO UPDATE SET payload = excluded.payload, saved_at = excluded.saved_at
	`, payload)
	if err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

func (s *SQLiteSnapshotStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

func (s *SQLiteSnapshotStore) open(ctx context.Context) (*sql.DB, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.db != nil {
		return s.db, nil
	}
	if err := os.MkdirAll(filepath.Dir(s.dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create data dir: %w", err)
	}
	db, err := sql.Open("sqlite", s.dbPath)
	if err != nil {
		return nil, fmt.Errorf("open snapshot db: %w", err)
	}
	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	s.db = db
	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS session_snapshot (
			id INTEGER PRIMARY KEY CHECK (id = 1),
			payload BLOB NOT NULL,
			saved_at TIMESTAMP NOT NULL
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure snapshot schema: %w", err)
	}
	return nil
}
