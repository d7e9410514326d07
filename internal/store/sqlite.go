package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ctxmem/ctxmem/internal/model"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
// Pass ":memory:" for an ephemeral in-memory store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	if dbPath != ":memory:" {
		dir := filepath.Dir(dbPath)
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create db dir: %w", err)
		}
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	// Single connection: keeps in-memory databases on one handle and
	// matches the single-logical-writer model.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS memories (
		id           INTEGER PRIMARY KEY AUTOINCREMENT,
		content      TEXT NOT NULL,
		memory_type  TEXT NOT NULL,
		context      TEXT,
		created_at   TEXT NOT NULL,
		updated_at   TEXT NOT NULL,
		access_count INTEGER NOT NULL DEFAULT 0,
		last_accessed TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_memories_type ON memories(memory_type);
	CREATE INDEX IF NOT EXISTS idx_memories_created ON memories(created_at DESC);
	CREATE INDEX IF NOT EXISTS idx_memories_content ON memories(content);

	CREATE TABLE IF NOT EXISTS tags (
		id   INTEGER PRIMARY KEY AUTOINCREMENT,
		name TEXT UNIQUE NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tags_name ON tags(name);

	CREATE TABLE IF NOT EXISTS memory_tags (
		memory_id INTEGER NOT NULL REFERENCES memories(id) ON DELETE CASCADE,
		tag_id    INTEGER NOT NULL REFERENCES tags(id) ON DELETE CASCADE,
		PRIMARY KEY (memory_id, tag_id)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

func (s *SQLiteStore) CreateMemory(ctx context.Context, p CreateParams) (int64, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	var contextPtr *string
	if p.Context != "" {
		contextPtr = &p.Context
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO memories (content, memory_type, context, created_at, updated_at, access_count)
		 VALUES (?, ?, ?, ?, ?, 0)`,
		p.Content, string(p.Type), contextPtr, now, now)
	if err != nil {
		return 0, fmt.Errorf("insert memory: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}

	if err := replaceTagsTx(ctx, tx, id, p.Tags); err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}
	return id, nil
}

// replaceTagsTx inserts association rows for the given tag names, creating
// tag rows as needed. Existing associations for the memory must already be
// cleared by the caller when replacing.
func replaceTagsTx(ctx context.Context, tx *sql.Tx, memoryID int64, tags []string) error {
	for _, name := range tags {
		tagID, err := getOrCreateTagTx(ctx, tx, name)
		if err != nil {
			return err
		}
		_, err = tx.ExecContext(ctx,
			`INSERT OR IGNORE INTO memory_tags (memory_id, tag_id) VALUES (?, ?)`,
			memoryID, tagID)
		if err != nil {
			return fmt.Errorf("associate tag %q: %w", name, err)
		}
	}
	return nil
}

func getOrCreateTagTx(ctx context.Context, tx *sql.Tx, name string) (int64, error) {
	var id int64
	err := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id)
	if err == nil {
		return id, nil
	}
	if err != sql.ErrNoRows {
		return 0, err
	}

	res, err := tx.ExecContext(ctx, `INSERT INTO tags (name) VALUES (?)`, name)
	if err != nil {
		// Lost a creation race: the unique constraint guarantees the
		// row now exists, so re-read it.
		if rerr := tx.QueryRowContext(ctx, `SELECT id FROM tags WHERE name = ?`, name).Scan(&id); rerr == nil {
			return id, nil
		}
		return 0, fmt.Errorf("create tag %q: %w", name, err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) GetMemory(ctx context.Context, id int64) (*model.Memory, error) {
	now := time.Now().UTC().Format(time.RFC3339)

	// Bump access tracking first; zero affected rows means the id is absent
	// and nothing mutates.
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		now, id)
	if err != nil {
		return nil, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}

	row := s.db.QueryRowContext(ctx,
		`SELECT id, content, memory_type, context, created_at, updated_at, access_count, last_accessed
		 FROM memories WHERE id = ?`, id)
	m, err := scanMemory(row)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, nil
		}
		return nil, err
	}

	m.Tags, err = s.loadTags(ctx, id)
	if err != nil {
		return nil, err
	}
	return &m, nil
}

func (s *SQLiteStore) TouchMemory(ctx context.Context, id int64) (bool, error) {
	now := time.Now().UTC().Format(time.RFC3339)
	res, err := s.db.ExecContext(ctx,
		`UPDATE memories SET access_count = access_count + 1, last_accessed = ? WHERE id = ?`,
		now, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) UpdateMemory(ctx context.Context, id int64, p UpdateParams) (bool, error) {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return false, err
	}
	defer tx.Rollback()

	var exists int64
	if err := tx.QueryRowContext(ctx, `SELECT id FROM memories WHERE id = ?`, id).Scan(&exists); err != nil {
		if err == sql.ErrNoRows {
			return false, nil
		}
		return false, err
	}

	// updated_at refreshes on content/context changes only, never on a
	// tag-only update.
	if p.Content != nil || p.Context != nil {
		set := []string{"updated_at = ?"}
		args := []interface{}{time.Now().UTC().Format(time.RFC3339)}
		if p.Content != nil {
			set = append(set, "content = ?")
			args = append(args, *p.Content)
		}
		if p.Context != nil {
			set = append(set, "context = ?")
			if *p.Context == "" {
				args = append(args, nil)
			} else {
				args = append(args, *p.Context)
			}
		}
		args = append(args, id)
		_, err = tx.ExecContext(ctx,
			`UPDATE memories SET `+strings.Join(set, ", ")+` WHERE id = ?`, args...)
		if err != nil {
			return false, fmt.Errorf("update memory: %w", err)
		}
	}

	if p.Tags != nil {
		// Replace the full association set rather than diffing.
		_, err = tx.ExecContext(ctx, `DELETE FROM memory_tags WHERE memory_id = ?`, id)
		if err != nil {
			return false, err
		}
		if err := replaceTagsTx(ctx, tx, id, p.Tags); err != nil {
			return false, err
		}
	}

	if err := tx.Commit(); err != nil {
		return false, err
	}
	return true, nil
}

func (s *SQLiteStore) DeleteMemory(ctx context.Context, id int64) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM memories WHERE id = ?`, id)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (s *SQLiteStore) ListMemories(ctx context.Context, p ListParams) ([]model.Memory, error) {
	where := []string{}
	args := []interface{}{}
	if p.Type != "" {
		where = append(where, "memory_type = ?")
		args = append(args, string(p.Type))
	}

	query := `SELECT id, content, memory_type, context, created_at, updated_at, access_count, last_accessed
	          FROM memories`
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, id DESC"
	query, args = paginate(query, args, p.Limit, p.Offset)

	return s.queryMemories(ctx, query, args...)
}

func (s *SQLiteStore) CountMemories(ctx context.Context, typ model.MemoryType) (int, error) {
	var count int
	var err error
	if typ != "" {
		err = s.db.QueryRowContext(ctx,
			`SELECT COUNT(*) FROM memories WHERE memory_type = ?`, string(typ)).Scan(&count)
	} else {
		err = s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM memories`).Scan(&count)
	}
	return count, err
}

func (s *SQLiteStore) ClearMemories(ctx context.Context, typ model.MemoryType) (int, error) {
	var res sql.Result
	var err error
	if typ != "" {
		res, err = s.db.ExecContext(ctx, `DELETE FROM memories WHERE memory_type = ?`, string(typ))
	} else {
		res, err = s.db.ExecContext(ctx, `DELETE FROM memories`)
	}
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	return int(n), err
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// DB exposes the underlying handle for maintenance queries.
func (s *SQLiteStore) DB() *sql.DB {
	return s.db
}

// paginate appends LIMIT/OFFSET clauses. An OFFSET needs a LIMIT in SQLite;
// -1 means unbounded.
func paginate(query string, args []interface{}, limit, offset int) (string, []interface{}) {
	if limit <= 0 && offset <= 0 {
		return query, args
	}
	if limit <= 0 {
		limit = -1
	}
	query += " LIMIT ?"
	args = append(args, limit)
	if offset > 0 {
		query += " OFFSET ?"
		args = append(args, offset)
	}
	return query, args
}

// queryMemories runs a memory SELECT and resolves each row's tag set.
func (s *SQLiteStore) queryMemories(ctx context.Context, query string, args ...interface{}) ([]model.Memory, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var memories []model.Memory
	for rows.Next() {
		m, err := scanMemory(rows)
		if err != nil {
			return nil, err
		}
		memories = append(memories, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range memories {
		memories[i].Tags, err = s.loadTags(ctx, memories[i].ID)
		if err != nil {
			return nil, err
		}
	}
	return memories, nil
}

// loadTags materializes a memory's tag-name set via the link table.
func (s *SQLiteStore) loadTags(ctx context.Context, memoryID int64) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT t.name FROM tags t
		 JOIN memory_tags mt ON t.id = mt.tag_id
		 WHERE mt.memory_id = ?
		 ORDER BY t.name`, memoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

type scanner interface {
	Scan(dest ...interface{}) error
}

// scanMemory reads one memory row. Timestamps are stored as RFC3339 and
// parsed strictly; an unparseable value is corruption and surfaces as an
// error rather than a silent nil.
func scanMemory(row scanner) (model.Memory, error) {
	var m model.Memory
	var typ, createdAt, updatedAt string
	var contextStr, lastAccessed sql.NullString

	err := row.Scan(&m.ID, &m.Content, &typ, &contextStr, &createdAt, &updatedAt, &m.AccessCount, &lastAccessed)
	if err != nil {
		return m, err
	}

	m.Type = model.MemoryType(typ)
	if contextStr.Valid {
		m.Context = contextStr.String
	}

	if m.CreatedAt, err = parseStoredTime(createdAt); err != nil {
		return m, fmt.Errorf("memory %d: created_at: %w", m.ID, err)
	}
	if m.UpdatedAt, err = parseStoredTime(updatedAt); err != nil {
		return m, fmt.Errorf("memory %d: updated_at: %w", m.ID, err)
	}
	if lastAccessed.Valid {
		t, err := parseStoredTime(lastAccessed.String)
		if err != nil {
			return m, fmt.Errorf("memory %d: last_accessed: %w", m.ID, err)
		}
		m.LastAccessed = &t
	}

	return m, nil
}

func parseStoredTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("malformed timestamp %q", s)
	}
	return t, nil
}
