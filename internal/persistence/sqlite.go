package persistence

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/golang/glog"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// SQLite stores records in a single-file database. Every save is kept as a
// revision; Load returns the newest.
type SQLite struct {
	db *sql.DB
}

var _ Backend = (*SQLite)(nil)

// OpenSQLite opens or creates the database at path.
func OpenSQLite(path string) (*SQLite, error) {
	if path == "" {
		return nil, fmt.Errorf("empty db path")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	if err := initPragmas(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if err := initSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	glog.Infof("persistence: opened %s", path)
	return &SQLite{db: db}, nil
}

func initPragmas(db *sql.DB) error {
	pragmas := []string{
		"PRAGMA journal_mode=WAL;",
		"PRAGMA synchronous=NORMAL;",
		"PRAGMA busy_timeout=5000;",
		"PRAGMA temp_store=MEMORY;",
	}
	for _, p := range pragmas {
		if _, err := db.Exec(p); err != nil {
			return err
		}
	}
	return nil
}

func initSchema(db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS revisions (
			revision TEXT PRIMARY KEY,
			player TEXT NOT NULL,
			data BLOB NOT NULL,
			updated_at TEXT NOT NULL
		);`,
		`CREATE INDEX IF NOT EXISTS revisions_player ON revisions(player, revision);`,
	}
	for _, s := range stmts {
		if _, err := db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (s *SQLite) Load(ctx context.Context, player string) (Record, bool, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT revision, data, updated_at FROM revisions WHERE player = ? ORDER BY revision DESC LIMIT 1`,
		player)
	var (
		rev, updated string
		data         []byte
	)
	if err := row.Scan(&rev, &data, &updated); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Record{}, false, nil
		}
		return Record{}, false, fmt.Errorf("load %s: %w", player, err)
	}
	id, err := ulid.ParseStrict(rev)
	if err != nil {
		return Record{}, false, fmt.Errorf("load %s: revision %q: %w", player, rev, err)
	}
	at, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return Record{}, false, fmt.Errorf("load %s: updated_at %q: %w", player, updated, err)
	}
	return Record{Player: player, Revision: id, Data: data, UpdatedAt: at}, true, nil
}

func (s *SQLite) Save(ctx context.Context, player string, data []byte) (Record, error) {
	rec := newRecord(player, data)
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO revisions(revision, player, data, updated_at) VALUES (?, ?, ?, ?)`,
		rec.Revision.String(), player, rec.Data, rec.UpdatedAt.Format(time.RFC3339Nano))
	if err != nil {
		return Record{}, fmt.Errorf("save %s: %w", player, err)
	}
	return rec, nil
}

func (s *SQLite) Players(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT DISTINCT player FROM revisions ORDER BY player`)
	if err != nil {
		return nil, fmt.Errorf("list players: %w", err)
	}
	defer rows.Close()
	var out []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// Prune keeps the newest keep revisions per player.
func (s *SQLite) Prune(ctx context.Context, keep int) (int64, error) {
	if keep < 1 {
		keep = 1
	}
	res, err := s.db.ExecContext(ctx, `
		DELETE FROM revisions WHERE revision IN (
			SELECT revision FROM (
				SELECT revision, ROW_NUMBER() OVER (PARTITION BY player ORDER BY revision DESC) AS rn
				FROM revisions
			) WHERE rn > ?
		)`, keep)
	if err != nil {
		return 0, fmt.Errorf("prune: %w", err)
	}
	return res.RowsAffected()
}

func (s *SQLite) Close() error {
	return s.db.Close()
}
