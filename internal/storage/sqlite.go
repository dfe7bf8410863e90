package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"fidakune/internal/graph"
	"fidakune/internal/lexicon"
	"fidakune/internal/snapshot"

	_ "github.com/mattn/go-sqlite3"
)

// ErrEmpty is returned when no snapshot of the requested kind has been saved.
var ErrEmpty = errors.New("no snapshot stored")

const (
	kindVocabulary = "vocabulary"
	kindGraph      = "graph"
)

type SQLiteStore struct {
	db *sql.DB
	// writeMu serializes snapshot writes.
	writeMu sync.Mutex
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS snapshots (
			kind TEXT PRIMARY KEY,
			metadata JSON,
			saved_at TIMESTAMP
		);`,
		`CREATE TABLE IF NOT EXISTS entries (
			position INTEGER PRIMARY KEY,
			word TEXT NOT NULL,
			pronunciation TEXT,
			definition TEXT,
			domain TEXT,
			examples JSON,
			etymology TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS graph_nodes (
			position INTEGER NOT NULL,
			id TEXT PRIMARY KEY,
			label TEXT,
			type TEXT,
			definition TEXT,
			domain TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS graph_edges (
			position INTEGER PRIMARY KEY,
			source TEXT NOT NULL,
			target TEXT NOT NULL,
			relationship TEXT NOT NULL,
			strength REAL NOT NULL,
			description TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_entries_word ON entries(word);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// --- VocabularyStore Implementation ---

func (s *SQLiteStore) SaveVocabulary(ctx context.Context, v *snapshot.Vocabulary) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Snapshot semantics: the stored vocabulary is replaced as a whole.
	if _, err := tx.ExecContext(ctx, `DELETE FROM entries`); err != nil {
		return err
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO entries (position, word, pronunciation, definition, domain, examples, etymology)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, e := range v.Entries {
		examples, err := json.Marshal(e.Examples)
		if err != nil {
			return err
		}
		if _, err := stmt.ExecContext(ctx, i, e.Word, e.Pronunciation, e.Definition, string(e.Domain), examples, e.Etymology); err != nil {
			return fmt.Errorf("failed to save entry %q: %w", e.Word, err)
		}
	}

	if err := saveMetadata(ctx, tx, kindVocabulary, v.Metadata); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadVocabulary(ctx context.Context) (*snapshot.Vocabulary, error) {
	meta, err := s.loadMetadata(ctx, kindVocabulary)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, "SELECT word, pronunciation, definition, domain, examples, etymology FROM entries ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query entries: %w", err)
	}
	defer rows.Close()

	v := &snapshot.Vocabulary{Metadata: meta, Entries: []lexicon.Entry{}}
	for rows.Next() {
		var e lexicon.Entry
		var domain string
		var examples []byte
		if err := rows.Scan(&e.Word, &e.Pronunciation, &e.Definition, &domain, &examples, &e.Etymology); err != nil {
			return nil, fmt.Errorf("failed to scan entry: %w", err)
		}
		e.Domain = lexicon.Domain(domain)
		if len(examples) > 0 {
			if err := json.Unmarshal(examples, &e.Examples); err != nil {
				return nil, fmt.Errorf("failed to decode examples of %q: %w", e.Word, err)
			}
		}
		v.Entries = append(v.Entries, e)
	}
	return v, rows.Err()
}

// --- GraphStore Implementation ---

func (s *SQLiteStore) SaveGraph(ctx context.Context, g *snapshot.Graph) error {
	s.writeMu.Lock()
	defer s.writeMu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM graph_nodes`); err != nil {
		return err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM graph_edges`); err != nil {
		return err
	}

	// 1. Save Nodes
	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO graph_nodes (position, id, label, type, definition, domain)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for i, n := range g.Nodes {
		if _, err := stmt.ExecContext(ctx, i, n.ID, n.Label, string(n.Type), n.Definition, n.Domain); err != nil {
			return fmt.Errorf("failed to save node %q: %w", n.ID, err)
		}
	}

	// 2. Save Edges
	edgeStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO graph_edges (position, source, target, relationship, strength, description)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer edgeStmt.Close()

	for i, e := range g.Edges {
		if _, err := edgeStmt.ExecContext(ctx, i, e.Source, e.Target, string(e.Relationship), e.Strength, e.Description); err != nil {
			return err
		}
	}

	if err := saveMetadata(ctx, tx, kindGraph, g.Metadata); err != nil {
		return err
	}
	return tx.Commit()
}

func (s *SQLiteStore) LoadGraph(ctx context.Context) (*snapshot.Graph, error) {
	meta, err := s.loadMetadata(ctx, kindGraph)
	if err != nil {
		return nil, err
	}
	g := &snapshot.Graph{Metadata: meta, Nodes: []graph.Node{}, Edges: []graph.Edge{}}

	// 1. Load Nodes
	rows, err := s.db.QueryContext(ctx, "SELECT id, label, type, definition, domain FROM graph_nodes ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query nodes: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var n graph.Node
		var typ string
		if err := rows.Scan(&n.ID, &n.Label, &typ, &n.Definition, &n.Domain); err != nil {
			return nil, fmt.Errorf("failed to scan node: %w", err)
		}
		n.Type = graph.NodeType(typ)
		g.Nodes = append(g.Nodes, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	// 2. Load Edges
	edgeRows, err := s.db.QueryContext(ctx, "SELECT source, target, relationship, strength, description FROM graph_edges ORDER BY position")
	if err != nil {
		return nil, fmt.Errorf("failed to query edges: %w", err)
	}
	defer edgeRows.Close()

	for edgeRows.Next() {
		var e graph.Edge
		var rel string
		if err := edgeRows.Scan(&e.Source, &e.Target, &rel, &e.Strength, &e.Description); err != nil {
			return nil, fmt.Errorf("failed to scan edge: %w", err)
		}
		e.Relationship = graph.Relationship(rel)
		g.Edges = append(g.Edges, e)
	}

	return g, edgeRows.Err()
}

// SavedAt reports when a snapshot of kind was last written.
func (s *SQLiteStore) SavedAt(ctx context.Context, kind string) (time.Time, error) {
	var at time.Time
	err := s.db.QueryRowContext(ctx, "SELECT saved_at FROM snapshots WHERE kind = ?", kind).Scan(&at)
	if errors.Is(err, sql.ErrNoRows) {
		return time.Time{}, ErrEmpty
	}
	return at, err
}

func saveMetadata(ctx context.Context, tx *sql.Tx, kind string, meta snapshot.Metadata) error {
	raw, err := json.Marshal(meta)
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshots (kind, metadata, saved_at) VALUES (?, ?, ?)
		ON CONFLICT(kind) DO UPDATE SET metadata=excluded.metadata, saved_at=excluded.saved_at
	`, kind, raw, time.Now().UTC())
	return err
}

func (s *SQLiteStore) loadMetadata(ctx context.Context, kind string) (snapshot.Metadata, error) {
	var meta snapshot.Metadata
	var raw []byte
	err := s.db.QueryRowContext(ctx, "SELECT metadata FROM snapshots WHERE kind = ?", kind).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return meta, ErrEmpty
	}
	if err != nil {
		return meta, err
	}
	if len(raw) > 0 {
		if err := json.Unmarshal(raw, &meta); err != nil {
			return meta, fmt.Errorf("failed to decode %s metadata: %w", kind, err)
		}
	}
	return meta, nil
}
